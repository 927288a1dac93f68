package nav

import (
	"reflect"
	"testing"
)

func gridFromRows(rows []string) *Grid {
	h := len(rows)
	w := len(rows[0])
	return NewGrid(w, h, func(p Vec2i) Cell {
		switch rows[p.Y][p.X] {
		case '#':
			return Cell{Blocked: true, Cost: 1}
		case '~': // rough
			return Cell{Cost: 3}
		case '_': // fast floor
			return Cell{Cost: 0.5}
		default:
			return Cell{Cost: 1}
		}
	})
}

func TestAStar_StraightLine(t *testing.T) {
	g := gridFromRows([]string{
		".....",
		".....",
		".....",
	})
	p := NewPlanner(g)
	path := p.FindPath(Vec2i{X: 0, Y: 1}, Vec2i{X: 4, Y: 1})
	if len(path) != 4 {
		t.Fatalf("path len = %d, want 4: %v", len(path), path)
	}
	if path[len(path)-1] != (Vec2i{X: 4, Y: 1}) {
		t.Fatalf("path does not end at goal: %v", path)
	}
}

func TestAStar_WallForcesDetour(t *testing.T) {
	g := gridFromRows([]string{
		".....",
		".###.",
		".....",
	})
	p := NewPlanner(g)
	path := p.FindPath(Vec2i{X: 2, Y: 2}, Vec2i{X: 2, Y: 0})
	if len(path) == 0 {
		t.Fatalf("expected a detour path")
	}
	for _, wp := range path {
		if g.BlockedAt(wp) {
			t.Fatalf("path crosses blocked cell %v", wp)
		}
	}
}

func TestAStar_NoPathIsNilNotError(t *testing.T) {
	g := gridFromRows([]string{
		"..#..",
		"..#..",
		"..#..",
	})
	p := NewPlanner(g)
	if path := p.FindPath(Vec2i{X: 0, Y: 1}, Vec2i{X: 4, Y: 1}); path != nil {
		t.Fatalf("expected nil path through full wall, got %v", path)
	}
	if path := p.FindPath(Vec2i{X: 0, Y: 0}, Vec2i{X: 2, Y: 0}); path != nil {
		t.Fatalf("expected nil path to blocked goal, got %v", path)
	}
}

func TestAStar_Determinism(t *testing.T) {
	g := gridFromRows([]string{
		"..........",
		".###..##..",
		"....#.....",
		".##.#.###.",
		"....#.....",
		".#........",
	})
	p := NewPlanner(g)
	from, to := Vec2i{X: 0, Y: 0}, Vec2i{X: 9, Y: 5}
	first := p.FindPath(from, to)
	if len(first) == 0 {
		t.Fatalf("expected a path")
	}
	for i := 0; i < 20; i++ {
		again := p.FindPath(from, to)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%v\n%v", i, first, again)
		}
	}
}

func TestAStar_CostTerrainPreferred(t *testing.T) {
	// Middle row is rough; the fast floor row above should win even though
	// it is one step longer.
	g := gridFromRows([]string{
		"_____",
		"~~~~~",
	})
	p := NewPlanner(g)
	path := p.FindPath(Vec2i{X: 0, Y: 1}, Vec2i{X: 4, Y: 1})
	onFloor := 0
	for _, wp := range path {
		if wp.Y == 0 {
			onFloor++
		}
	}
	if onFloor == 0 {
		t.Fatalf("path ignored cheaper floor row: %v", path)
	}
}

func TestAStar_DangerAvoidance(t *testing.T) {
	g := gridFromRows([]string{
		".....",
		".....",
		".....",
	})
	p := NewPlanner(g)
	danger := map[Vec2i]float64{}
	for x := 0; x < 5; x++ {
		danger[Vec2i{X: x, Y: 1}] = 1.0
	}
	from, to := Vec2i{X: 0, Y: 1}, Vec2i{X: 4, Y: 1}

	plain := p.FindPath(from, to)
	aware := p.FindPathAvoid(from, to, danger)
	if len(aware) == 0 {
		t.Fatalf("danger must bias, not block")
	}

	countRow := func(path []Vec2i) int {
		n := 0
		for _, wp := range path {
			if wp.Y == 1 {
				n++
			}
		}
		return n
	}
	if countRow(aware) >= countRow(plain) {
		t.Fatalf("danger-aware path did not avoid hazard row: plain=%v aware=%v", plain, aware)
	}
}
