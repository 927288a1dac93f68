package world

import (
	"testing"

	"colonysim.ai/internal/sim/nav"
	"colonysim.ai/internal/sim/tasks"
	"colonysim.ai/internal/sim/work"
)

func testWorld(width, height int) *World {
	return New(WorldConfig{Width: width, Height: height, Seed: 7})
}

func TestSortCandidatesOrdering(t *testing.T) {
	cands := []work.Candidate{
		{Category: tasks.CategoryHaul, Priority: 3, Distance: 1, Target: tasks.TargetRef{ID: "R_0003"}},
		{Category: tasks.CategoryConstruction, Priority: 1, Distance: 9, Target: tasks.TargetRef{ID: "B_001"}},
		{Category: tasks.CategoryHarvest, Priority: 3, Distance: 5, Target: tasks.TargetRef{ID: "R_0001"}},
		{Category: tasks.CategoryHarvest, Priority: 3, Distance: 5, Target: tasks.TargetRef{ID: "R_0002"}},
	}
	sortCandidates(cands, nil)

	if cands[0].Target.ID != "B_001" {
		t.Fatalf("priority 1 should sort first, got %s", cands[0].Target.ID)
	}
	if cands[1].Target.ID != "R_0003" {
		t.Fatalf("nearer candidate should beat farther at equal priority, got %s", cands[1].Target.ID)
	}
	if cands[2].Target.ID != "R_0001" || cands[3].Target.ID != "R_0002" {
		t.Fatalf("equal candidates must order by target ID, got %s then %s",
			cands[2].Target.ID, cands[3].Target.ID)
	}
}

func TestSortCandidatesCategoryAffinity(t *testing.T) {
	cands := []work.Candidate{
		{Category: tasks.CategoryHaul, Priority: 3, Distance: 2, Target: tasks.TargetRef{ID: "R_0001"}},
		{Category: tasks.CategoryHarvest, Priority: 3, Distance: 2, Target: tasks.TargetRef{ID: "R_0002"}},
	}
	current := &tasks.Task{Category: tasks.CategoryHarvest}
	sortCandidates(cands, current)

	if cands[0].Category != tasks.CategoryHarvest {
		t.Fatalf("in-progress category should win ties, got %s", cands[0].Category)
	}
}

func TestAssignBuildReservesCrewSlot(t *testing.T) {
	w := testWorld(16, 16)
	aid := w.SpawnAgent("mason", nav.Vec2i{X: 1, Y: 1})
	sid := w.PlaceBuilding("HOUSE", nav.Vec2i{X: 8, Y: 8}, 1, 1, 1, false)
	w.Step()

	a := w.Agent(aid)
	if a.Task == nil || a.Task.Kind != tasks.KindBuild {
		t.Fatalf("expected build task, got %+v", a.Task)
	}
	if got := w.Ledger().CrewSize(sid); got != 1 {
		t.Fatalf("crew size = %d, want 1", got)
	}
	if site, ok := w.Ledger().CrewAssignment(aid); !ok || site != sid {
		t.Fatalf("crew assignment = %q, %t", site, ok)
	}
}

func TestExclusiveClaimSingleWinner(t *testing.T) {
	w := testWorld(16, 16)
	a1 := w.SpawnAgent("a", nav.Vec2i{X: 1, Y: 1})
	a2 := w.SpawnAgent("b", nav.Vec2i{X: 2, Y: 1})
	rid := w.SpawnResource(work.ResourceTree, nav.Vec2i{X: 8, Y: 8}, 3)
	w.MarkResource(rid)
	w.Step()

	holder, held := w.Ledger().PointHolder(rid)
	if !held {
		t.Fatal("marked tree should be claimed after the first tick")
	}
	winners := 0
	for _, id := range []string{a1, a2} {
		a := w.Agent(id)
		if a.Task != nil && a.Task.Kind == tasks.KindCutPlant {
			winners++
			if id != holder {
				t.Fatalf("task holder %s does not match point holder %s", id, holder)
			}
		}
	}
	if winners != 1 {
		t.Fatalf("exactly one agent may hold the cut task, got %d", winners)
	}
}

func TestBudgetExhaustionFallback(t *testing.T) {
	w := New(WorldConfig{Width: 16, Height: 16, Seed: 7, ReachabilityBudget: 1})
	aid := w.SpawnAgent("picker", nav.Vec2i{X: 1, Y: 1})
	rid := w.SpawnResource(work.ResourceBerries, nav.Vec2i{X: 8, Y: 8}, 2)
	for _, d := range []nav.Vec2i{{X: 9, Y: 8}, {X: 7, Y: 8}, {X: 8, Y: 9}, {X: 8, Y: 7}} {
		w.SpawnResource(work.ResourceRock, d, 1)
	}
	w.Step()

	a := w.Agent(aid)
	if a.Task == nil || a.Task.Target.ID != rid {
		t.Fatalf("expected fallback assignment to %s, got %+v", rid, a.Task)
	}
	if a.Task.Validated {
		t.Fatal("fallback assignment must be marked unvalidated")
	}
	m := w.Metrics()
	if m.BudgetExhausted == 0 || m.FallbackAssignments == 0 {
		t.Fatalf("counters should record the degradation: %+v", m)
	}
	if a.skipTargetID != rid {
		t.Fatalf("skip guard = %q, want %s", a.skipTargetID, rid)
	}
}

func TestCancelTaskReleasesEverything(t *testing.T) {
	w := testWorld(16, 16)
	aid := w.SpawnAgent("hauler", nav.Vec2i{X: 1, Y: 1})
	rid := w.SpawnResource(work.ResourceTree, nav.Vec2i{X: 8, Y: 8}, 3)
	w.MarkResource(rid)
	w.Step()

	if _, held := w.Ledger().PointHolder(rid); !held {
		t.Fatal("setup: claim expected")
	}
	w.CancelTask(aid)
	if _, held := w.Ledger().PointHolder(rid); held {
		t.Fatal("cancel must release the point claim synchronously")
	}
	a := w.Agent(aid)
	if a.Path != nil || a.WaitingDoor != "" || a.TransitDoor != "" {
		t.Fatal("cancel must clear path and door state")
	}

	// Cancelling again must be a harmless no-op.
	w.CancelTask(aid)
}

func TestIdleAgentWanders(t *testing.T) {
	w := testWorld(16, 16)
	aid := w.SpawnAgent("drifter", nav.Vec2i{X: 8, Y: 8})
	w.Step()

	a := w.Agent(aid)
	if a.Task == nil || a.Task.Kind != tasks.KindWander {
		t.Fatalf("agent with no work should wander, got %+v", a.Task)
	}
	if a.Task.Category != tasks.CategoryIdle {
		t.Fatalf("wander category = %s", a.Task.Category)
	}
}

func TestFailedCommitLeavesAgentUnassigned(t *testing.T) {
	w := testWorld(16, 16)
	aid := w.SpawnAgent("late", nav.Vec2i{X: 1, Y: 1})
	other := w.SpawnAgent("early", nav.Vec2i{X: 2, Y: 1})
	bed := w.PlaceBuilding(work.BuildingBed, nav.Vec2i{X: 4, Y: 1}, 1, 1, 1, true)
	w.Step()

	a := w.Agent(aid)
	w.startWander(a, w.CurrentTick())
	if a.Task == nil {
		t.Fatal("setup: wander task expected")
	}
	if !w.ledger.ReserveSleep(other, bed, 1) {
		t.Fatal("setup: bed should have a free slot")
	}

	c := work.Candidate{
		Category: tasks.CategoryRest,
		Kind:     tasks.KindSleep,
		Target:   tasks.TargetRef{Kind: tasks.TargetBuilding, ID: bed},
	}
	if w.commit(a, c, w.CurrentTick(), true) {
		t.Fatal("commit must fail against a fully reserved bed")
	}
	if a.Task != nil {
		t.Fatal("failed commit must leave no task; the old task's holds are already released")
	}
}
