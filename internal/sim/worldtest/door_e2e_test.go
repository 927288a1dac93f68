package worldtest

import (
	"testing"

	"colonysim.ai/internal/sim/work"
	"colonysim.ai/internal/sim/world"
)

// wallOff splits the map into west and east halves with a rock wall at x,
// leaving a single gap at gapY.
func wallOff(h *Harness, x, gapY int) {
	for y := 0; y < h.W.Config().Height; y++ {
		if y == gapY {
			continue
		}
		h.W.SpawnResource(work.ResourceRock, vec(x, y), 1)
	}
}

func TestHeldDoorSplitsTheMap(t *testing.T) {
	h := NewHarness(t, world.WorldConfig{Width: 20, Height: 9, Seed: 3})
	wallOff(h, 10, 4)
	did := h.W.AddDoor(vec(10, 4))
	h.W.SetDoorHeld(did, true)
	aid := h.W.SpawnAgent("walker", vec(2, 4))
	rid := h.W.SpawnResource(work.ResourceBerries, vec(17, 4), 1)
	h.Step()

	// While the door is held, no path crosses and the berry survives.
	if p := h.W.Planner().FindPath(h.RequireAgent(aid).Tile(), vec(17, 4)); p != nil {
		t.Fatalf("held door must split the map, got path %v", p)
	}
	h.StepFor(40)
	if h.W.Resource(rid) == nil {
		t.Fatal("berry should be unreachable behind the held door")
	}

	h.W.SetDoorHeld(did, false)
	reached := h.StepUntil(func() bool { return h.W.Resource(rid) == nil }, 300)
	if !reached {
		t.Fatal("releasing the door must reopen the east half")
	}
}

func TestTwoAgentsQueueAtOneDoor(t *testing.T) {
	h := NewHarness(t, world.WorldConfig{Width: 20, Height: 9, Seed: 3})
	wallOff(h, 10, 4)
	did := h.W.AddDoor(vec(10, 4))
	a1 := h.W.SpawnAgent("first", vec(2, 4))
	a2 := h.W.SpawnAgent("second", vec(2, 5))
	r1 := h.W.SpawnResource(work.ResourceBerries, vec(17, 3), 1)
	r2 := h.W.SpawnResource(work.ResourceBerries, vec(17, 5), 1)
	h.Step()

	// At most one agent transits the door at any tick.
	for i := 0; i < 400; i++ {
		h.Step()
		inTransit := 0
		for _, id := range []string{a1, a2} {
			if a := h.W.Agent(id); a != nil && a.TransitDoor == did {
				inTransit++
			}
		}
		if inTransit > 1 {
			t.Fatalf("two agents in transit through %s at tick %d", did, h.W.CurrentTick())
		}
		if h.W.Resource(r1) == nil && h.W.Resource(r2) == nil {
			break
		}
	}
	if h.W.Resource(r1) != nil || h.W.Resource(r2) != nil {
		t.Fatal("both agents should make it through eventually")
	}
	if got := h.W.Doors().Get(did).QueueLen(); got != 0 {
		t.Fatalf("door queue should drain, got %d", got)
	}
}
