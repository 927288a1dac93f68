package world

// Counters are cumulative since world creation. They surface degradation
// (budget exhaustion, fallback assignments, jitter snaps) that is deliberately
// not reported as errors.
type Counters struct {
	FullPasses  uint64 `json:"full_passes"`
	CheapPasses uint64 `json:"cheap_passes"`

	Repaths     uint64 `json:"repaths"`
	JitterSnaps uint64 `json:"jitter_snaps"`
	DoorSweeps  uint64 `json:"door_sweeps"`

	BudgetExhausted     uint64 `json:"budget_exhausted"`
	FallbackAssignments uint64 `json:"fallback_assignments"`

	TasksCompleted   uint64 `json:"tasks_completed"`
	ItemsHauled      uint64 `json:"items_hauled"`
	ResearchSessions uint64 `json:"research_sessions"`

	EditsApplied   uint64 `json:"edits_applied"`
	CellsRederived uint64 `json:"cells_rederived"`

	AgentDeaths uint64 `json:"agent_deaths"`
}

// Metrics returns a snapshot of the cumulative counters.
func (w *World) Metrics() Counters { return w.counters }
