package world

import (
	"colonysim.ai/internal/sim/nav"
	"colonysim.ai/internal/sim/tasks"
)

// stuckGiveUpTicks is how many consecutive failed repaths an agent tolerates
// before abandoning the task.
const stuckGiveUpTicks = 10

// jitterState tracks the signed trend of distance-to-waypoint. Repeated sign
// flips near a waypoint mean the agent is bouncing across it; the controller
// snaps past instead of fighting toward the center forever.
type jitterState struct {
	lastDist    float64
	haveLast    bool
	lastTrend   int // -1 approaching, +1 receding
	flips       int
	windowStart uint64
}

// observe feeds one tick's distance sample and reports whether the flip
// threshold was crossed within the window.
func (j *jitterState) observe(dist float64, nowTick uint64, windowTicks, threshold int) bool {
	if nowTick-j.windowStart > uint64(windowTicks) {
		j.windowStart = nowTick
		j.flips = 0
	}
	if !j.haveLast {
		j.haveLast = true
		j.lastDist = dist
		return false
	}
	trend := 0
	switch {
	case dist < j.lastDist:
		trend = -1
	case dist > j.lastDist:
		trend = 1
	}
	j.lastDist = dist
	if trend == 0 {
		return false
	}
	if j.lastTrend != 0 && trend != j.lastTrend {
		j.flips++
	}
	j.lastTrend = trend
	return j.flips >= threshold
}

// goalFor resolves the tile an agent's current task walks toward. ok is false
// when the agent has no destination this tick (no task, stale target, target
// fully enclosed).
func (w *World) goalFor(a *Agent) (nav.Vec2i, bool) {
	t := a.Task
	if t == nil {
		return nav.Vec2i{}, false
	}
	switch t.Target.Kind {
	case tasks.TargetTile:
		return v2FromTask(t.Target.Pos), true
	case tasks.TargetAgent:
		other := w.agents[t.Target.ID]
		if other == nil {
			return nav.Vec2i{}, false
		}
		return other.Tile(), true
	case tasks.TargetBuilding:
		if w.buildings[t.Target.ID] == nil {
			return nav.Vec2i{}, false
		}
	case tasks.TargetResource:
		if w.resources[t.Target.ID] == nil {
			return nav.Vec2i{}, false
		}
	}
	return w.interactionPoint(t.Target)
}

// atGoal reports arrival at the task's interaction point.
func (w *World) atGoal(a *Agent) bool {
	goal, ok := w.goalFor(a)
	if !ok {
		return false
	}
	return a.Tile() == goal && tileCenter(goal).Sub(a.Pos).Len() <= w.cfg.ArriveRadius
}

// moveAgent is the per-tick motion pass. Every agent gets one, whether or not
// it was admitted for a decision pass this tick.
func (w *World) moveAgent(a *Agent, nowTick uint64) {
	if a.Downed || a.Sleeping {
		return
	}
	goal, ok := w.goalFor(a)
	if !ok {
		a.Path = nil
		return
	}
	// Arrival means the goal tile's center is within the arrive radius, not
	// merely crossing onto the tile. Short of the radius the agent keeps
	// steering toward the center.
	if a.Tile() == goal && tileCenter(goal).Sub(a.Pos).Len() <= w.cfg.ArriveRadius {
		a.Path = nil
		return
	}

	// Repath is goal-driven only: goal drifted beyond tolerance, or no
	// usable path. Never on a timer.
	if a.Path == nil || a.Path.Done() || a.Path.GoalMoved(goal, w.cfg.RepathTolerance) {
		w.counters.Repaths++
		wps := w.planner.FindPathAvoid(a.Tile(), goal, w.danger)
		if len(wps) == 0 {
			a.Path = nil
			a.stuckTicks++
			return
		}
		a.Path = nav.NewPath(wps, goal)
		a.jitter = jitterState{}
		a.stuckTicks = 0
	}

	wp, ok := a.Path.Current()
	if !ok {
		return
	}

	// Door protocol: a blocking door on the next waypoint halts the agent in
	// its FIFO queue; passage is granted by the arbiter, one agent at a time.
	if a.TransitDoor == "" {
		if d := w.doorAt(wp); d != nil {
			if d.Blocking() || !w.doors.BeginTransit(d.ID, a.ID) {
				w.doors.Enqueue(d.ID, a.ID)
				a.WaitingDoor = d.ID
				return
			}
			a.WaitingDoor = ""
			a.TransitDoor = d.ID
		}
	}

	// Advance toward the waypoint. Speed is modulated by the occupied tile's
	// cost multiplier: fast floors speed agents up, rough terrain slows them.
	speed := a.Speed / w.grid.CostAt(a.Tile())
	target := tileCenter(wp)
	delta := target.Sub(a.Pos)
	dist := delta.Len()
	if dist <= speed {
		a.Pos = target
	} else {
		a.Pos = Vec2f{X: a.Pos.X + delta.X/dist*speed, Y: a.Pos.Y + delta.Y/dist*speed}
	}

	// Transit release is positional: past the door center by the clearance
	// margin, the queue entry clears deterministically.
	if a.TransitDoor != "" {
		d := w.doors.Get(a.TransitDoor)
		if d == nil {
			a.TransitDoor = ""
		} else if a.Tile() != d.Pos && tileCenter(d.Pos).Sub(a.Pos).Len() >= w.cfg.DoorClearance {
			w.doors.EndTransit(d.ID, a.ID)
			a.TransitDoor = ""
		}
	}

	newDist := tileCenter(wp).Sub(a.Pos).Len()
	if newDist <= w.cfg.ArriveRadius {
		a.Path.Advance()
		a.jitter = jitterState{}
		return
	}
	if a.jitter.observe(newDist, nowTick, w.cfg.JitterWindowTicks, w.cfg.JitterThreshold) {
		// Resolved jitter: snap past the contested waypoint.
		a.Pos = tileCenter(wp)
		a.Path.Advance()
		a.jitter = jitterState{}
		w.counters.JitterSnaps++
	}
}

func (w *World) doorAt(p nav.Vec2i) *nav.Door {
	if id, ok := w.doorAtTile[p]; ok {
		return w.doors.Get(id)
	}
	return nil
}
