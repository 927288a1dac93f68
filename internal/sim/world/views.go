package world

import (
	"sort"

	"colonysim.ai/internal/sim/work"
)

// worldEnv adapts the world into the read-only snapshot work givers consume.
// Slices are sorted by ID so scans are deterministic.
type worldEnv struct {
	w *World
}

func (e worldEnv) Sites() []work.SiteView {
	var out []work.SiteView
	for id, b := range e.w.buildings {
		if b.Complete {
			continue
		}
		out = append(out, work.SiteView{
			ID:       id,
			Pos:      v2ToTask(b.Center()),
			CrewCap:  b.CrewCap(),
			CrewSize: e.w.ledger.CrewSize(id),
			WorkLeft: b.WorkLeft,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (e worldEnv) Buildings() []work.BuildingView {
	var out []work.BuildingView
	for id, b := range e.w.buildings {
		if !b.Complete {
			continue
		}
		out = append(out, work.BuildingView{
			ID:           id,
			Kind:         b.Kind,
			Pos:          v2ToTask(b.Center()),
			Capacity:     b.Capacity,
			Occupants:    e.w.ledger.Occupants(id),
			PendingSleep: e.w.ledger.PendingSleep(id),
			Damaged:      b.Damaged(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (e worldEnv) Resources() []work.ResourceView {
	var out []work.ResourceView
	for id, r := range e.w.resources {
		holder, _ := e.w.ledger.PointHolder(id)
		out = append(out, work.ResourceView{
			ID:     id,
			Kind:   r.Kind,
			Pos:    v2ToTask(r.Pos),
			Amount: r.Amount,
			Marked: r.Marked,
			Holder: holder,
			DestID: r.DestID,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (e worldEnv) Agents() []work.AgentView {
	var out []work.AgentView
	for id, a := range e.w.agents {
		out = append(out, work.AgentView{
			ID:       id,
			Pos:      v2ToTask(a.Tile()),
			Health:   a.healthFrac(),
			Rest:     a.Rest,
			Downed:   a.Downed,
			InCombat: a.InCombat,
			Sleeping: a.Sleeping,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (w *World) contextFor(a *Agent) *work.Context {
	return &work.Context{
		Env: worldEnv{w: w},
		Agent: work.AgentView{
			ID:       a.ID,
			Pos:      v2ToTask(a.Tile()),
			Health:   a.healthFrac(),
			Rest:     a.Rest,
			Downed:   a.Downed,
			InCombat: a.InCombat,
			Sleeping: a.Sleeping,
		},
		Priority: a.PriorityFor,
		Enabled:  a.CategoryEnabled,
	}
}
