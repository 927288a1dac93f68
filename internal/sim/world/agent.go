package world

import (
	"math"

	"colonysim.ai/internal/sim/nav"
	"colonysim.ai/internal/sim/tasks"
)

// Vec2f is a world-space position. Agents move continuously between tile
// centers; the occupied tile is the floor of the position.
type Vec2f struct{ X, Y float64 }

func (v Vec2f) Sub(o Vec2f) Vec2f     { return Vec2f{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2f) Len() float64          { return math.Hypot(v.X, v.Y) }
func (v Vec2f) Scale(s float64) Vec2f { return Vec2f{X: v.X * s, Y: v.Y * s} }

func tileCenter(p nav.Vec2i) Vec2f {
	return Vec2f{X: float64(p.X) + 0.5, Y: float64(p.Y) + 0.5}
}

type Agent struct {
	ID   string
	Name string

	Pos   Vec2f
	Speed float64 // tiles per tick on plain ground

	Health    float64
	MaxHealth float64
	Rest      float64 // 0..1
	InCombat  bool
	Downed    bool
	Sleeping  bool

	Task *tasks.Task
	Path *nav.Path

	// Item currently carried (hauling), "" if none.
	Carrying string

	// Door protocol state.
	WaitingDoor string
	TransitDoor string

	// Per-agent work configuration.
	Priorities map[tasks.Category]int

	jitter     jitterState
	stuckTicks int

	// Budget-exhaustion retry guard: the target of the last unvalidated
	// fallback assignment, skipped once on the next evaluation.
	skipTargetID string

	lastFullPass uint64
}

func (a *Agent) Tile() nav.Vec2i {
	return nav.Vec2i{X: int(math.Floor(a.Pos.X)), Y: int(math.Floor(a.Pos.Y))}
}

func (a *Agent) initDefaults(defaults map[tasks.Category]int) {
	if a.Speed == 0 {
		a.Speed = 0.5
	}
	if a.MaxHealth == 0 {
		a.MaxHealth = 100
	}
	if a.Health == 0 {
		a.Health = a.MaxHealth
	}
	if a.Rest == 0 {
		a.Rest = 1
	}
	if a.Priorities == nil {
		a.Priorities = map[tasks.Category]int{}
	}
	for cat, p := range defaults {
		if _, ok := a.Priorities[cat]; !ok {
			a.Priorities[cat] = p
		}
	}
}

// PriorityFor returns the agent's priority for a category; categories never
// configured default to 3.
func (a *Agent) PriorityFor(cat tasks.Category) int {
	if p, ok := a.Priorities[cat]; ok {
		return p
	}
	return 3
}

func (a *Agent) CategoryEnabled(cat tasks.Category) bool {
	return a.PriorityFor(cat) != tasks.PriorityDisabled
}

func (a *Agent) healthFrac() float64 {
	if a.MaxHealth <= 0 {
		return 1
	}
	return a.Health / a.MaxHealth
}
