package observerproto

// Version is the observer protocol version.
const Version = "0.1"

// Client -> Server. First message on the observer WS connection, and can be
// re-sent to update settings.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// Optional: omit per-agent states from the tick stream and keep only the
	// digest and counters. Cheap mode for dashboards.
	DigestOnly bool `json:"digest_only,omitempty"`
}

// HTTP response for GET /admin/v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string      `json:"protocol_version"`
	WorldID         string      `json:"world_id"`
	Tick            uint64      `json:"tick"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	TickRateHz int   `json:"tick_rate_hz"`
	Width      int   `json:"width"`
	Height     int   `json:"height"`
	Seed       int64 `json:"seed"`
}

// Server -> Client. Sent every tick.
type TickMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	Digest          string `json:"digest"`

	Agents      []AgentState       `json:"agents,omitempty"`
	Assignments []AssignmentRecord `json:"assignments,omitempty"`

	Counters map[string]uint64 `json:"counters,omitempty"`
}

type AgentState struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Pos  [2]float64 `json:"pos"`

	HP       float64 `json:"hp"`
	Rest     float64 `json:"rest"`
	Downed   bool    `json:"downed,omitempty"`
	Sleeping bool    `json:"sleeping,omitempty"`

	Task *TaskState `json:"task,omitempty"`
}

type TaskState struct {
	Kind     string `json:"kind"`
	Category string `json:"category"`
	TargetID string `json:"target_id,omitempty"`
	Target   [2]int `json:"target"`
}

type AssignmentRecord struct {
	AgentID   string `json:"agent_id"`
	Category  string `json:"category"`
	Kind      string `json:"kind"`
	TargetID  string `json:"target_id,omitempty"`
	Validated bool   `json:"validated"`
}
