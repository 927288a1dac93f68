package nav

// Vec2i is a tile coordinate on the grid.
type Vec2i struct{ X, Y int }

func (v Vec2i) Add(o Vec2i) Vec2i { return Vec2i{X: v.X + o.X, Y: v.Y + o.Y} }

func Manhattan(a, b Vec2i) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Cell is one grid tile. Cost is a traversal-time multiplier: 1.0 for plain
// ground, below 1.0 for fast floors, above 1.0 for rough terrain. Blocked
// cells are never entered.
type Cell struct {
	Blocked bool
	Cost    float64
}

// DeriveFunc re-derives one cell from the owning world's building/terrain
// layers. The grid never inspects world state directly; rebuilds call this.
type DeriveFunc func(pos Vec2i) Cell

type rebuildWindow struct {
	Center Vec2i
	Radius int
}

// Grid is a tile-indexed walkability and cost map. Structural world edits do
// not touch cells directly: callers queue a full or partial rebuild and the
// simulation step applies everything queued once per tick via FlushRebuilds,
// so many edits in one tick cost one pass.
type Grid struct {
	w, h   int
	cells  []Cell
	derive DeriveFunc

	pendingFull    bool
	pendingWindows []rebuildWindow
}

func NewGrid(w, h int, derive DeriveFunc) *Grid {
	g := &Grid{
		w:      w,
		h:      h,
		cells:  make([]Cell, w*h),
		derive: derive,
	}
	g.rebuildAll()
	return g
}

func (g *Grid) Width() int  { return g.w }
func (g *Grid) Height() int { return g.h }

func (g *Grid) InBounds(p Vec2i) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.w && p.Y < g.h
}

func (g *Grid) idx(p Vec2i) int { return p.Y*g.w + p.X }

// CellAt returns the cell at p. Out-of-bounds positions read as blocked.
func (g *Grid) CellAt(p Vec2i) Cell {
	if !g.InBounds(p) {
		return Cell{Blocked: true, Cost: 1}
	}
	return g.cells[g.idx(p)]
}

func (g *Grid) BlockedAt(p Vec2i) bool { return g.CellAt(p).Blocked }

// CostAt returns the traversal-cost multiplier at p, defaulting to 1.
func (g *Grid) CostAt(p Vec2i) float64 {
	c := g.CellAt(p)
	if c.Cost <= 0 {
		return 1
	}
	return c.Cost
}

// RequestFullRebuild queues a whole-grid re-derivation for the next flush.
func (g *Grid) RequestFullRebuild() {
	g.pendingFull = true
}

// RequestPartialRebuild queues a bounded re-derivation around center.
func (g *Grid) RequestPartialRebuild(center Vec2i, radius int) {
	if radius < 0 {
		radius = 0
	}
	g.pendingWindows = append(g.pendingWindows, rebuildWindow{Center: center, Radius: radius})
}

// FlushRebuilds applies everything queued since the last flush. A pending full
// rebuild subsumes any pending windows. Returns the number of cells re-derived.
func (g *Grid) FlushRebuilds() int {
	defer func() {
		g.pendingFull = false
		g.pendingWindows = g.pendingWindows[:0]
	}()
	if g.pendingFull {
		return g.rebuildAll()
	}
	n := 0
	for _, win := range g.pendingWindows {
		n += g.rebuildWindow(win.Center, win.Radius)
	}
	return n
}

func (g *Grid) rebuildAll() int {
	if g.derive == nil {
		return 0
	}
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			p := Vec2i{X: x, Y: y}
			g.cells[g.idx(p)] = g.derive(p)
		}
	}
	return g.w * g.h
}

func (g *Grid) rebuildWindow(center Vec2i, radius int) int {
	if g.derive == nil {
		return 0
	}
	n := 0
	for y := center.Y - radius; y <= center.Y+radius; y++ {
		for x := center.X - radius; x <= center.X+radius; x++ {
			p := Vec2i{X: x, Y: y}
			if !g.InBounds(p) {
				continue
			}
			g.cells[g.idx(p)] = g.derive(p)
			n++
		}
	}
	return n
}
