// Package worldtest drives a world through its exported API only, so tests
// here exercise what embedding callers actually get.
package worldtest

import (
	"testing"

	"colonysim.ai/internal/sim/nav"
	"colonysim.ai/internal/sim/world"
)

type Harness struct {
	T *testing.T
	W *world.World

	Entries []world.TickLogEntry
}

func NewHarness(t *testing.T, cfg world.WorldConfig) *Harness {
	t.Helper()
	return &Harness{T: t, W: world.New(cfg)}
}

// Step advances one tick and records the entry.
func (h *Harness) Step() world.TickLogEntry {
	e := h.W.Step()
	h.Entries = append(h.Entries, e)
	return e
}

func (h *Harness) StepFor(n int) {
	for i := 0; i < n; i++ {
		h.Step()
	}
}

// StepUntil steps until cond holds or maxTicks elapse, returning whether the
// condition was ever met.
func (h *Harness) StepUntil(cond func() bool, maxTicks int) bool {
	for i := 0; i < maxTicks; i++ {
		h.Step()
		if cond() {
			return true
		}
	}
	return false
}

// AssignmentsFor collects every recorded assignment for one agent across the
// run so far.
func (h *Harness) AssignmentsFor(agentID string) []world.AssignmentRecord {
	var out []world.AssignmentRecord
	for _, e := range h.Entries {
		for _, rec := range e.Assignments {
			if rec.AgentID == agentID {
				out = append(out, rec)
			}
		}
	}
	return out
}

// AssignedAgents returns the distinct agents that received at least one
// recorded assignment.
func (h *Harness) AssignedAgents() map[string]bool {
	out := map[string]bool{}
	for _, e := range h.Entries {
		for _, rec := range e.Assignments {
			out[rec.AgentID] = true
		}
	}
	return out
}

func (h *Harness) RequireAgent(id string) *world.Agent {
	h.T.Helper()
	a := h.W.Agent(id)
	if a == nil {
		h.T.Fatalf("agent %s not found", id)
	}
	return a
}

func vec(x, y int) nav.Vec2i { return nav.Vec2i{X: x, Y: y} }
