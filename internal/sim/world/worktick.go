package world

import (
	"fmt"

	"colonysim.ai/internal/sim/tasks"
	"colonysim.ai/internal/sim/work"
)

// Per-tick work rates.
const (
	buildRate   = 1.0
	repairRate  = 2.0
	tendRate    = 2.0
	restRecover = 0.02
	restDecay   = 0.001

	// downThreshold is the health fraction below which an agent collapses and
	// needs tending.
	downThreshold = 0.25

	// researchTicks is how long one bench session lasts.
	researchTicks = 50
)

// taskStale reports whether the task's target no longer supports the work:
// destroyed, already finished, or claimed out from under the agent.
func (w *World) taskStale(a *Agent) bool {
	t := a.Task
	if t == nil {
		return false
	}
	switch t.Target.Kind {
	case tasks.TargetBuilding:
		b := w.buildings[t.Target.ID]
		if b == nil {
			return true
		}
		switch t.Kind {
		case tasks.KindBuild:
			return b.Complete
		case tasks.KindRepair:
			return !b.Damaged()
		}
	case tasks.TargetResource:
		r := w.resources[t.Target.ID]
		if r == nil {
			return true
		}
		if holder, held := w.ledger.PointHolder(r.ID); held && holder != a.ID {
			return true
		}
		// Haul retargets to the stockpile after pickup; the original item no
		// longer exists then, handled above only for the pre-pickup phase.
	case tasks.TargetAgent:
		other := w.agents[t.Target.ID]
		if other == nil {
			return true
		}
		if t.Kind == tasks.KindTend {
			return !other.Downed
		}
	}
	return false
}

// workTick advances the agent's task once it has arrived at the interaction
// point. Movement is handled separately; this only applies effort.
func (w *World) workTick(a *Agent, nowTick uint64) {
	t := a.Task
	if t == nil {
		return
	}
	if !w.atGoal(a) {
		return
	}

	switch t.Kind {
	case tasks.KindBuild:
		site := w.buildings[t.Target.ID]
		if site == nil || site.Complete {
			w.completeTask(a)
			return
		}
		site.WorkLeft -= buildRate
		if site.WorkLeft <= 0 {
			site.WorkLeft = 0
			site.Complete = true
			site.HP = site.MaxHP
			// Completion can introduce blocking tiles (walls).
			w.grid.RequestFullRebuild()
			w.completeTask(a)
		}

	case tasks.KindRepair:
		b := w.buildings[t.Target.ID]
		if b == nil || !b.Damaged() {
			w.completeTask(a)
			return
		}
		b.HP += repairRate
		if b.HP >= b.MaxHP {
			b.HP = b.MaxHP
			w.completeTask(a)
		}

	case tasks.KindHarvest, tasks.KindCutPlant, tasks.KindMine:
		r := w.resources[t.Target.ID]
		if r == nil {
			w.completeTask(a)
			return
		}
		r.Amount--
		if r.Amount <= 0 {
			w.removeResourceNow(r.ID)
			w.completeTask(a)
		}

	case tasks.KindHaul:
		w.haulTick(a, t)

	case tasks.KindTend:
		patient := w.agents[t.Target.ID]
		if patient == nil || !patient.Downed {
			w.completeTask(a)
			return
		}
		patient.Health += tendRate
		if patient.Health > patient.MaxHealth {
			patient.Health = patient.MaxHealth
		}
		if patient.healthFrac() >= downThreshold {
			patient.Downed = false
			w.completeTask(a)
		}

	case tasks.KindResearch:
		bench := w.buildings[t.Target.ID]
		if bench == nil {
			w.completeTask(a)
			return
		}
		if !w.ledger.Enter(a.ID, bench.ID, bench.Capacity) {
			w.completeTask(a)
			return
		}
		if nowTick-t.StartedTick >= researchTicks {
			w.counters.ResearchSessions++
			w.completeTask(a)
		}

	case tasks.KindSleep:
		bed := w.buildings[t.Target.ID]
		if bed == nil {
			w.completeTask(a)
			return
		}
		// Arrival converts the sleep reservation into occupancy; the two never
		// double-count against capacity.
		if !a.Sleeping {
			if !w.ledger.Enter(a.ID, bed.ID, bed.Capacity) {
				w.completeTask(a)
				return
			}
			a.Sleeping = true
		}
		a.Rest += restRecover
		if a.Rest >= 1 {
			a.Rest = 1
			w.completeTask(a)
		}

	case tasks.KindWander:
		w.completeTask(a)
	}
}

// haulTick runs the two-phase haul: walk to the item and pick it up, then walk
// to the stockpile and drop it.
func (w *World) haulTick(a *Agent, t *tasks.Task) {
	payload, _ := t.Payload.(tasks.HaulPayload)
	if a.Carrying == "" {
		item := w.resources[t.Target.ID]
		if item == nil {
			w.completeTask(a)
			return
		}
		a.Carrying = item.ID
		w.removeResourceNow(item.ID)

		dest := w.buildings[payload.DestID]
		if dest == nil {
			// Destination vanished mid-haul; drop the item where we stand.
			w.dropCarried(a)
			w.completeTask(a)
			return
		}
		// Retarget the remaining leg without releasing anything.
		t.Target = tasks.TargetRef{Kind: tasks.TargetBuilding, ID: dest.ID, Pos: v2ToTask(dest.Center())}
		a.Path = nil
		return
	}

	if w.buildings[t.Target.ID] == nil {
		w.dropCarried(a)
		w.completeTask(a)
		return
	}
	a.Carrying = ""
	w.counters.ItemsHauled++
	w.completeTask(a)
}

// dropCarried converts the carried item back into a loose resource at the
// agent's feet so nothing is destroyed by an interrupted haul.
func (w *World) dropCarried(a *Agent) {
	if a.Carrying == "" {
		return
	}
	a.Carrying = ""
	w.nextResource++
	r := &Resource{ID: fmt.Sprintf("R_%04d", w.nextResource), Kind: work.ResourceItem, Pos: a.Tile(), Amount: 1}
	w.resources[r.ID] = r
	w.resourceAt[r.Pos] = r.ID
	w.grid.RequestPartialRebuild(r.Pos, 1)
}

// completeTask finishes or abandons the agent's task, releasing everything it
// held. The budget-exhaustion retry guard clears with it.
func (w *World) completeTask(a *Agent) {
	w.counters.TasksCompleted++
	w.setTask(a, nil)
	a.skipTargetID = ""
}
