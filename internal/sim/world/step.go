package world

import "colonysim.ai/internal/sim/tasks"

// Step advances the world exactly one tick and returns its log entry. Order
// within a tick is fixed: queued edits, nav rebuilds, door animation and
// sweep, agent health transitions, admission, then for each agent (in ID
// order) the decision/work pass if admitted and the motion pass always.
func (w *World) Step() TickLogEntry {
	w.tick++
	w.lastStep = TickLogEntry{WorldID: w.cfg.ID, Tick: w.tick}

	edits := w.pendingEdits
	w.pendingEdits = nil
	for _, apply := range edits {
		apply()
	}
	w.counters.EditsApplied += uint64(len(edits))
	w.counters.CellsRederived += uint64(w.grid.FlushRebuilds())

	w.doors.Step()
	w.counters.DoorSweeps += uint64(w.doors.Sweep(func(id string) bool {
		return w.agents[id] != nil
	}))

	w.stepHealth()

	admitted := w.admitAgents()
	w.lastStep.Admitted = len(admitted)

	for _, a := range w.SortedAgents() {
		if admitted[a.ID] {
			w.counters.FullPasses++
			a.lastFullPass = w.tick
			w.decide(a)
			w.workTick(a, w.tick)
		} else {
			w.counters.CheapPasses++
		}
		w.moveAgent(a, w.tick)
		if !a.Sleeping && !a.Downed {
			a.Rest -= restDecay
			if a.Rest < 0 {
				a.Rest = 0
			}
		}
	}

	w.lastStep.Agents = len(w.agents)
	w.lastStep.Buildings = len(w.buildings)
	w.lastStep.Resources = len(w.resources)
	w.lastStep.Counters = w.counters
	w.lastStep.Digest = w.digest()
	return w.lastStep
}

// decide runs the assignment portion of a full pass: drop stale tasks, then
// look for work if idle or merely strolling.
func (w *World) decide(a *Agent) {
	if a.Downed {
		if a.Task != nil {
			w.setTask(a, nil)
		}
		return
	}
	if a.Task != nil && w.taskStale(a) {
		w.setTask(a, nil)
	}
	// Give up on targets that stayed unreachable; the skip guard stops an
	// immediate re-pick of the same one.
	if a.Task != nil && a.stuckTicks > stuckGiveUpTicks {
		a.skipTargetID = a.Task.Target.ID
		w.setTask(a, nil)
	}
	// Idle strolls yield to any real work that appeared; busy agents only
	// switch for strictly more urgent work.
	if a.Task == nil || a.Task.Category == tasks.CategoryIdle {
		w.assignTask(a, w.tick)
		return
	}
	w.maybePreempt(a, w.tick)
}

// stepHealth applies the collapse/death transitions. Death removes the agent
// after releasing everything it held; the door sweep next tick is the backstop
// for anything the release missed.
func (w *World) stepHealth() {
	for _, a := range w.SortedAgents() {
		if a.Health <= 0 {
			w.releaseFor(a)
			delete(w.agents, a.ID)
			w.counters.AgentDeaths++
			continue
		}
		if !a.Downed && a.healthFrac() < downThreshold {
			a.Downed = true
			w.setTask(a, nil)
		}
	}
}
