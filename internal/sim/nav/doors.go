package nav

import "sort"

// BlockingThreshold is the open-amount below which a door blocks passage.
const BlockingThreshold = 0.5

// OpenStep is how much a door's open-amount moves per tick while animating.
const OpenStep = 0.25

// Door is a mutual-exclusion passage point. Agents that want to cross while
// the door blocks enqueue FIFO; only the queue head may begin transit, and a
// transit mark is held until the agent clears the door's center plane by the
// configured margin, so release is positional, not timed.
type Door struct {
	ID   string
	Pos  Vec2i
	Open float64 // 0 closed .. 1 open

	// HoldClosed keeps the door shut regardless of its queue; the owning
	// world's derive layer marks held-closed doors as blocked cells.
	HoldClosed bool

	queue   []string
	transit string // agent currently passing, "" if none
}

// Blocking reports whether the door currently stops passage (closed or still
// opening).
func (d *Door) Blocking() bool { return d.Open < BlockingThreshold }

func (d *Door) QueueLen() int { return len(d.queue) }

func (d *Door) InTransit(agentID string) bool { return d.transit == agentID }

// Arbiter owns all doors and their wait queues.
type Arbiter struct {
	doors map[string]*Door
}

func NewArbiter() *Arbiter {
	return &Arbiter{doors: map[string]*Door{}}
}

func (ar *Arbiter) Add(d *Door) {
	if d == nil || d.ID == "" {
		return
	}
	ar.doors[d.ID] = d
}

func (ar *Arbiter) Remove(doorID string) {
	delete(ar.doors, doorID)
}

func (ar *Arbiter) Get(doorID string) *Door {
	return ar.doors[doorID]
}

// DoorAt returns the door occupying tile p, if any.
func (ar *Arbiter) DoorAt(p Vec2i) *Door {
	best := ""
	for id, d := range ar.doors {
		if d.Pos != p {
			continue
		}
		if best == "" || id < best {
			best = id
		}
	}
	if best == "" {
		return nil
	}
	return ar.doors[best]
}

// Enqueue adds the agent to the door's wait queue. Re-enqueueing an agent
// already queued is a no-op, so callers may request every tick.
func (ar *Arbiter) Enqueue(doorID, agentID string) bool {
	d := ar.doors[doorID]
	if d == nil {
		return false
	}
	for _, id := range d.queue {
		if id == agentID {
			return true
		}
	}
	d.queue = append(d.queue, agentID)
	return true
}

// BeginTransit grants passage to the agent if the door is passable and the
// agent is at the head of the queue (or the queue is empty). At most one agent
// transits a door at a time.
func (ar *Arbiter) BeginTransit(doorID, agentID string) bool {
	d := ar.doors[doorID]
	if d == nil || d.Blocking() {
		return false
	}
	if d.transit != "" && d.transit != agentID {
		return false
	}
	if len(d.queue) > 0 && d.queue[0] != agentID {
		return false
	}
	d.transit = agentID
	return true
}

// EndTransit clears the agent's transit mark and queue entry. Called once the
// agent's position crosses the door's center plane by the clearance margin.
func (ar *Arbiter) EndTransit(doorID, agentID string) {
	d := ar.doors[doorID]
	if d == nil {
		return
	}
	if d.transit == agentID {
		d.transit = ""
	}
	d.dropFromQueue(agentID)
}

// DropAgent removes the agent from every queue and transit mark. Used on task
// change and death so no stale entry outlives its owner.
func (ar *Arbiter) DropAgent(agentID string) {
	for _, d := range ar.doors {
		if d.transit == agentID {
			d.transit = ""
		}
		d.dropFromQueue(agentID)
	}
}

func (d *Door) dropFromQueue(agentID string) {
	for i, id := range d.queue {
		if id == agentID {
			d.queue = append(d.queue[:i], d.queue[i+1:]...)
			return
		}
	}
}

// Step animates doors: a door with waiters or a transiting agent opens unless
// held closed; an idle door drifts shut.
func (ar *Arbiter) Step() {
	for _, d := range ar.doors {
		wantOpen := !d.HoldClosed && (len(d.queue) > 0 || d.transit != "")
		if wantOpen {
			d.Open += OpenStep
			if d.Open > 1 {
				d.Open = 1
			}
		} else {
			d.Open -= OpenStep
			if d.Open < 0 {
				d.Open = 0
			}
		}
	}
}

// Sweep drops queue entries and transit marks belonging to agents the caller
// no longer recognizes. Run every tick; stale references are cleared, never
// propagated.
func (ar *Arbiter) Sweep(agentAlive func(id string) bool) int {
	dropped := 0
	for _, d := range ar.doors {
		if d.transit != "" && !agentAlive(d.transit) {
			d.transit = ""
			dropped++
		}
		keep := d.queue[:0]
		for _, id := range d.queue {
			if agentAlive(id) {
				keep = append(keep, id)
			} else {
				dropped++
			}
		}
		d.queue = keep
	}
	return dropped
}

// SortedDoors returns doors in ID order for deterministic iteration.
func (ar *Arbiter) SortedDoors() []*Door {
	ids := make([]string, 0, len(ar.doors))
	for id := range ar.doors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Door, 0, len(ids))
	for _, id := range ids {
		out = append(out, ar.doors[id])
	}
	return out
}
