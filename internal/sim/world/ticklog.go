package world

// AssignmentRecord is one task commitment made during a tick.
type AssignmentRecord struct {
	AgentID   string `json:"agent_id"`
	Category  string `json:"category"`
	Kind      string `json:"kind"`
	TargetID  string `json:"target_id,omitempty"`
	Validated bool   `json:"validated"`
}

// TickLogEntry is the per-tick record emitted by Step. One entry per tick,
// serialized as a JSON line by the persistence layer.
type TickLogEntry struct {
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
	Digest  string `json:"digest"`

	Agents    int `json:"agents"`
	Buildings int `json:"buildings"`
	Resources int `json:"resources"`

	Admitted    int                `json:"admitted"`
	Assignments []AssignmentRecord `json:"assignments,omitempty"`

	Counters Counters `json:"counters"`
}
