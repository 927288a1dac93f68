package world

import "sort"

// Importance weights. Visible and fighting agents must win admission over
// idle off-screen ones; sleepers are cheap to simulate and score lowest.
const (
	scoreViewport = 100.0
	scoreCombat   = 80.0
	scoreHurt     = 40.0
	scoreSleeping = -50.0
	scoreStarved  = 10.0 // per tick since last full pass, so nobody starves
)

func (w *World) importance(a *Agent) float64 {
	s := scoreStarved * float64(w.tick-a.lastFullPass)
	if w.viewport.Contains(a.Tile()) {
		s += scoreViewport
	}
	if a.InCombat {
		s += scoreCombat
	}
	s += scoreHurt * (1 - a.healthFrac())
	if a.Sleeping {
		s += scoreSleeping
	}
	return s
}

// admitAgents picks the top-K agents by importance for a full decision pass
// this tick. Everyone else still gets the cheap motion pass. Ties break on ID
// so admission is deterministic across runs.
func (w *World) admitAgents() map[string]bool {
	agents := w.SortedAgents()
	k := w.cfg.AdmissionBudget
	if k >= len(agents) {
		full := make(map[string]bool, len(agents))
		for _, a := range agents {
			full[a.ID] = true
		}
		return full
	}
	type scored struct {
		id    string
		score float64
	}
	ranked := make([]scored, 0, len(agents))
	for _, a := range agents {
		ranked = append(ranked, scored{a.ID, w.importance(a)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})
	admitted := make(map[string]bool, k)
	for _, s := range ranked[:k] {
		admitted[s.id] = true
	}
	return admitted
}
