package worldtest

import (
	"fmt"
	"testing"

	"colonysim.ai/internal/sim/work"
	"colonysim.ai/internal/sim/world"
)

// With far more agents than the admission budget, everyone must still get a
// decision pass within a few ticks and pick up real work.
func TestLargePopulationUnderAdmissionBudget(t *testing.T) {
	h := NewHarness(t, world.WorldConfig{Width: 96, Height: 96, Seed: 5, AdmissionBudget: 50})

	ids := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		x := 2 + i%20
		y := 2 + i/20
		ids = append(ids, h.W.SpawnAgent(fmt.Sprintf("n%03d", i), vec(x, y)))
	}
	for i := 0; i < 250; i++ {
		x := 50 + i%25
		y := 2 + i/25
		h.W.SpawnResource(work.ResourceBerries, vec(x, y), 3)
	}

	h.StepFor(10)

	assigned := h.AssignedAgents()
	for _, id := range ids {
		if !assigned[id] {
			t.Fatalf("agent %s received no assignment within 10 ticks", id)
		}
	}

	// Everyone keeps moving even on ticks they are not admitted.
	before := map[string]world.Vec2f{}
	for _, id := range ids {
		before[id] = h.RequireAgent(id).Pos
	}
	h.StepFor(10)
	moved := 0
	for _, id := range ids {
		if a := h.W.Agent(id); a != nil && a.Pos != before[id] {
			moved++
		}
	}
	if moved < len(ids)*9/10 {
		t.Fatalf("only %d/%d agents moved while walking to work", moved, len(ids))
	}

	m := h.W.Metrics()
	if m.CheapPasses == 0 {
		t.Fatal("motion-only passes must occur with 200 agents and budget 50")
	}
}
