package world

import (
	"sort"

	"colonysim.ai/internal/sim/nav"
	"colonysim.ai/internal/sim/tasks"
	"colonysim.ai/internal/sim/work"
)

// adjacentApproach categories interact from a neighboring tile, so the target
// center being unreachable is legitimate and the reachability check is
// skipped.
func adjacentApproach(cat tasks.Category) bool {
	return cat == tasks.CategoryConstruction || cat == tasks.CategoryRepair
}

// sortCandidates orders the merged list: ascending priority, then affinity
// toward the agent's in-progress category (so an agent mid-harvest does not
// oscillate to an equally good haul), then ascending distance, then target ID
// for a stable total order.
func sortCandidates(cands []work.Candidate, current *tasks.Task) {
	curCat := tasks.Category("")
	if current != nil {
		curCat = current.Category
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if curCat != "" {
			ai, bi := a.Category == curCat, b.Category == curCat
			if ai != bi {
				return ai
			}
		}
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		return a.Target.ID < b.Target.ID
	})
}

// assignTask runs one full decision pass for an unassigned agent: scan,
// rank, validate within the reachability budget, commit the winner.
func (w *World) assignTask(a *Agent, nowTick uint64) {
	cands := w.manager.ScanAll(w.contextFor(a))

	// Budget-exhaustion retry guard: skip the previously fallback-assigned
	// target once instead of silently repeating the same bad assignment.
	skip := a.skipTargetID
	a.skipTargetID = ""

	if len(cands) == 0 {
		w.ensureWander(a, nowTick)
		return
	}
	sortCandidates(cands, a.Task)

	checks := 0
	for _, c := range cands {
		if skip != "" && c.Target.ID == skip {
			continue
		}
		if !adjacentApproach(c.Category) {
			if checks >= w.cfg.ReachabilityBudget {
				break
			}
			checks++
			goal, ok := w.interactionPoint(c.Target)
			if !ok {
				continue
			}
			if len(w.planner.FindPathAvoid(a.Tile(), goal, w.danger)) == 0 {
				continue
			}
		}
		if w.commit(a, c, nowTick, true) {
			return
		}
	}

	if checks >= w.cfg.ReachabilityBudget {
		w.counters.BudgetExhausted++
		// Degrade: assign the best-priority candidate without validation and
		// surface it through the counters, not an error.
		best := cands[0]
		if best.Target.ID != skip && w.commit(a, best, nowTick, false) {
			w.counters.FallbackAssignments++
			a.skipTargetID = best.Target.ID
			return
		}
	}

	w.ensureWander(a, nowTick)
}

// maybePreempt switches a working agent to strictly more urgent work. Equal
// priority never preempts, so agents do not thrash between peer jobs; the
// affinity tiebreak in sortCandidates only matters on a full reassignment.
func (w *World) maybePreempt(a *Agent, nowTick uint64) {
	cur := a.Task
	if cur == nil || a.Sleeping {
		return
	}
	curPrio := a.PriorityFor(cur.Category)
	cands := w.manager.ScanAll(w.contextFor(a))
	if len(cands) == 0 {
		return
	}
	sortCandidates(cands, cur)
	for _, c := range cands {
		if c.Priority >= curPrio {
			break
		}
		if !adjacentApproach(c.Category) {
			goal, ok := w.interactionPoint(c.Target)
			if !ok {
				continue
			}
			if len(w.planner.FindPathAvoid(a.Tile(), goal, w.danger)) == 0 {
				continue
			}
		}
		if w.commit(a, c, nowTick, true) {
			return
		}
	}
}

// ensureWander starts a wander only if the agent is not already on one, so an
// in-progress stroll is not re-rolled every decision pass.
func (w *World) ensureWander(a *Agent, nowTick uint64) {
	if a.Task != nil && a.Task.Kind == tasks.KindWander {
		return
	}
	w.startWander(a, nowTick)
}

// commit acquires whatever exclusivity the candidate's kind implies, then
// writes the task onto the agent. Reservation failure (raced since the scan)
// returns false and leaves the agent unassigned.
func (w *World) commit(a *Agent, c work.Candidate, nowTick uint64, validated bool) bool {
	// Release always precedes acquisition for the same agent. The old task
	// goes with its holds: a failed acquisition must not leave the agent on a
	// task whose reservations were already stripped.
	w.releaseFor(a)
	a.Task = nil

	switch c.Kind {
	case tasks.KindBuild:
		site := w.buildings[c.Target.ID]
		if site == nil || site.Complete {
			return false
		}
		if !w.ledger.ReserveCrew(a.ID, site.ID, site.CrewCap()) {
			return false
		}
	case tasks.KindSleep:
		bed := w.buildings[c.Target.ID]
		if bed == nil {
			return false
		}
		if !w.ledger.ReserveSleep(a.ID, bed.ID, bed.Capacity) {
			return false
		}
	case tasks.KindHarvest, tasks.KindCutPlant, tasks.KindMine, tasks.KindHaul:
		if !w.ledger.ClaimPoint(a.ID, c.Target.ID) {
			return false
		}
	}

	a.Task = &tasks.Task{
		TaskID:      w.newTaskID(),
		Category:    c.Category,
		Kind:        c.Kind,
		Target:      c.Target,
		Payload:     c.Payload,
		StartedTick: nowTick,
		Validated:   validated,
	}
	w.lastStep.Assignments = append(w.lastStep.Assignments, AssignmentRecord{
		AgentID:   a.ID,
		Category:  string(c.Category),
		Kind:      string(c.Kind),
		TargetID:  c.Target.ID,
		Validated: validated,
	})
	return true
}

// setTask replaces the agent's task. Cancellation is synchronous and
// unconditional: reservations, door-queue membership, and the in-flight path
// are freed before the new task is considered. Skipping this ordering leaks
// resources.
func (w *World) setTask(a *Agent, t *tasks.Task) {
	w.releaseFor(a)
	a.Task = t
}

// releaseFor frees everything the agent holds, including any carried item,
// which drops at its feet. Idempotent.
func (w *World) releaseFor(a *Agent) {
	w.ledger.ReleaseAllFor(a.ID)
	w.doors.DropAgent(a.ID)
	w.dropCarried(a)
	a.WaitingDoor = ""
	a.TransitDoor = ""
	a.Path = nil
	a.jitter = jitterState{}
	a.stuckTicks = 0
	if a.Sleeping {
		a.Sleeping = false
	}
}

// startWander gives an idle agent an explicit wander task toward a nearby
// free tile, drawn from the world's seeded RNG.
func (w *World) startWander(a *Agent, nowTick uint64) {
	dest := a.Tile()
	for i := 0; i < 10; i++ {
		cand := nav.Vec2i{
			X: a.Tile().X + w.rng.Intn(2*w.cfg.WanderRadius+1) - w.cfg.WanderRadius,
			Y: a.Tile().Y + w.rng.Intn(2*w.cfg.WanderRadius+1) - w.cfg.WanderRadius,
		}
		if w.grid.InBounds(cand) && !w.grid.BlockedAt(cand) {
			dest = cand
			break
		}
	}
	w.setTask(a, &tasks.Task{
		TaskID:      w.newTaskID(),
		Category:    tasks.CategoryIdle,
		Kind:        tasks.KindWander,
		Target:      tasks.TargetRef{Kind: tasks.TargetTile, Pos: v2ToTask(dest)},
		StartedTick: nowTick,
		Validated:   true,
	})
}

// interactionPoint resolves where an agent must stand to work a target: the
// target tile itself when walkable, otherwise the first free adjacent tile in
// fixed order. Wall work always happens from an adjacent tile so the builder
// is not standing inside the wall when it completes. ok is false when the
// target is fully enclosed.
func (w *World) interactionPoint(t tasks.TargetRef) (nav.Vec2i, bool) {
	pos := v2FromTask(t.Pos)
	fromAdjacent := false
	if t.Kind == tasks.TargetBuilding {
		if b := w.buildings[t.ID]; b != nil && b.Kind == KindWall {
			fromAdjacent = true
		}
	}
	if !fromAdjacent && w.grid.InBounds(pos) && !w.grid.BlockedAt(pos) {
		return pos, true
	}
	for _, d := range [4]nav.Vec2i{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
		n := pos.Add(d)
		if w.grid.InBounds(n) && !w.grid.BlockedAt(n) {
			return n, true
		}
	}
	return nav.Vec2i{}, false
}
