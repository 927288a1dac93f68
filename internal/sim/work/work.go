// Package work turns world state into ranked job offers. Givers are pure
// scanners: they read immutable view snapshots and return candidates, never
// touching shared state, so identical world state always yields identical
// results.
package work

import (
	"math"

	"colonysim.ai/internal/sim/tasks"
)

// Resource kinds recognized by the built-in givers.
const (
	ResourceTree    = "TREE"
	ResourceRock    = "ROCK"
	ResourceOre     = "ORE"
	ResourceBerries = "BERRIES"
	ResourceItem    = "ITEM"
)

// Building kinds recognized by the built-in givers.
const (
	BuildingBed       = "BED"
	BuildingBench     = "RESEARCH_BENCH"
	BuildingStockpile = "STOCKPILE"
)

type AgentView struct {
	ID       string
	Pos      tasks.Vec2i
	Health   float64 // 0..1 fraction
	Rest     float64 // 0..1, low = tired
	Downed   bool
	InCombat bool
	Sleeping bool
}

type SiteView struct {
	ID       string
	Pos      tasks.Vec2i
	CrewCap  int
	CrewSize int
	WorkLeft float64
}

type BuildingView struct {
	ID           string
	Kind         string
	Pos          tasks.Vec2i
	Capacity     int
	Occupants    int
	PendingSleep int
	Damaged      bool
}

type ResourceView struct {
	ID     string
	Kind   string
	Pos    tasks.Vec2i
	Amount int
	Marked bool   // designated for cutting/mining
	Holder string // point-claim holder, "" if unclaimed
	DestID string // haul destination for ITEM resources
}

// Env is the read-only world snapshot handed to givers. Slices are sorted by
// ID so scans are deterministic.
type Env interface {
	Sites() []SiteView
	Buildings() []BuildingView
	Resources() []ResourceView
	Agents() []AgentView
}

// Context carries everything one scan may consult.
type Context struct {
	Env      Env
	Agent    AgentView
	Priority func(tasks.Category) int
	Enabled  func(tasks.Category) bool
}

func (c *Context) distanceTo(p tasks.Vec2i) float64 {
	return math.Hypot(float64(p.X-c.Agent.Pos.X), float64(p.Y-c.Agent.Pos.Y))
}

// claimable reports whether the requesting agent may target this resource:
// unclaimed, or already claimed by itself.
func (c *Context) claimable(r ResourceView) bool {
	return r.Holder == "" || r.Holder == c.Agent.ID
}

// Candidate is an ephemeral job offer: created fresh every scan, never
// persisted.
type Candidate struct {
	Category tasks.Category
	Kind     tasks.Kind
	Target   tasks.TargetRef
	Distance float64
	Priority int
	Payload  tasks.Payload
}

// Giver scans one work category. Implementations must not mutate anything
// reachable from the context.
type Giver interface {
	Category() tasks.Category
	Scan(ctx *Context) []Candidate
}

type Manager struct {
	givers []Giver
}

func NewManager(givers ...Giver) *Manager {
	return &Manager{givers: givers}
}

func (m *Manager) Register(g Giver) {
	if g != nil {
		m.givers = append(m.givers, g)
	}
}

// ScanAll fans out to every registered giver for one agent and concatenates
// the results. Disabled categories are skipped wholesale.
func (m *Manager) ScanAll(ctx *Context) []Candidate {
	var out []Candidate
	for _, g := range m.givers {
		cat := g.Category()
		if ctx.Enabled != nil && !ctx.Enabled(cat) {
			continue
		}
		if ctx.Priority != nil && ctx.Priority(cat) == tasks.PriorityDisabled {
			continue
		}
		out = append(out, g.Scan(ctx)...)
	}
	return out
}

// DefaultGivers returns the full built-in giver set.
func DefaultGivers() []Giver {
	return []Giver{
		ConstructionGiver{},
		RepairGiver{},
		HarvestGiver{},
		PlantCutGiver{},
		HaulGiver{},
		MineGiver{},
		MedicalGiver{},
		ResearchGiver{},
		BedRestGiver{},
	}
}
