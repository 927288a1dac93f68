package world

import (
	"colonysim.ai/internal/sim/nav"
	"colonysim.ai/internal/sim/work"
)

// Resource is a point object agents claim exclusively: trees, rock, ore
// deposits, berry bushes, loose items awaiting hauling.
type Resource struct {
	ID     string
	Kind   string // work.ResourceTree etc.
	Pos    nav.Vec2i
	Amount int

	// Marked designates trees for cutting and rock/ore for mining.
	Marked bool

	// DestID is the stockpile a loose item should be hauled to.
	DestID string
}

func (r *Resource) initDefaults() {
	if r.Amount <= 0 {
		r.Amount = 1
	}
}

// blocksTile: mineable mass blocks movement until extracted; plants and items
// are walked over.
func (r *Resource) blocksTile() bool {
	return r.Kind == work.ResourceRock || r.Kind == work.ResourceOre
}
