package tasks

// Category is a work category an agent can be assigned from. Per-agent
// priorities and enablement are keyed by category.
type Category string

const (
	CategoryConstruction Category = "CONSTRUCTION"
	CategoryRepair       Category = "REPAIR"
	CategoryHarvest      Category = "HARVEST"
	CategoryPlantCut     Category = "PLANT_CUT"
	CategoryHaul         Category = "HAUL"
	CategoryMine         Category = "MINE"
	CategoryMedical      Category = "MEDICAL"
	CategoryResearch     Category = "RESEARCH"
	CategoryRest         Category = "REST"
	CategoryIdle         Category = "IDLE"
)

// PriorityDisabled is the sentinel priority meaning "this category is off for
// this agent". Enabled priorities start at 1 (most urgent) and grow less
// urgent as they increase.
const PriorityDisabled = 0

type Kind string

const (
	KindBuild    Kind = "BUILD"
	KindRepair   Kind = "REPAIR"
	KindHarvest  Kind = "HARVEST"
	KindCutPlant Kind = "CUT_PLANT"
	KindHaul     Kind = "HAUL"
	KindMine     Kind = "MINE"
	KindTend     Kind = "TEND"
	KindResearch Kind = "RESEARCH"
	KindSleep    Kind = "SLEEP"
	KindWander   Kind = "WANDER"
)

type TargetKind string

const (
	TargetBuilding TargetKind = "BUILDING"
	TargetResource TargetKind = "RESOURCE"
	TargetAgent    TargetKind = "AGENT"
	TargetTile     TargetKind = "TILE"
)

// TargetRef identifies what a task acts on. ID is empty for TargetTile.
type TargetRef struct {
	Kind TargetKind
	ID   string
	Pos  Vec2i
}

type Task struct {
	TaskID   string
	Category Category
	Kind     Kind
	Target   TargetRef
	Payload  Payload

	StartedTick uint64

	// Validated is false when the task was assigned via the reachability
	// budget-exhaustion fallback and the target was never path-checked.
	Validated bool
}

// Payload carries per-kind extra data. Consuming state machines type-switch on
// the concrete type; kinds without extras carry a nil Payload.
type Payload interface {
	payloadKind() Kind
}

type BuildPayload struct {
	SiteID string
}

func (BuildPayload) payloadKind() Kind { return KindBuild }

type HaulPayload struct {
	ItemID string
	DestID string // stockpile building
}

func (HaulPayload) payloadKind() Kind { return KindHaul }

type SleepPayload struct {
	BedID string
}

func (SleepPayload) payloadKind() Kind { return KindSleep }

type TendPayload struct {
	PatientID string
}

func (TendPayload) payloadKind() Kind { return KindTend }

type ResearchPayload struct {
	BenchID string
}

func (ResearchPayload) payloadKind() Kind { return KindResearch }

// Vec2i is duplicated here to avoid import cycles (tasks is imported by every
// sim package).
type Vec2i struct{ X, Y int }
