package nav

import "container/heap"

// DangerWeight scales hazard penalties in danger-aware searches. A cell with
// danger 1.0 costs as much as walking DangerWeight extra plain tiles.
const DangerWeight = 8.0

// Planner runs A* over a Grid. "No path" is an expected outcome and is
// reported as a nil waypoint list, never as an error.
type Planner struct {
	g *Grid
}

func NewPlanner(g *Grid) *Planner {
	return &Planner{g: g}
}

// FindPath returns the waypoints from the tile after `from` up to and
// including `to`, or nil if unreachable. Results are deterministic for an
// unchanged grid: fixed neighbor order and stable tie-breaking.
func (p *Planner) FindPath(from, to Vec2i) []Vec2i {
	return p.search(from, to, nil)
}

// FindPathAvoid is FindPath with a per-tile hazard overlay. Danger biases the
// search away from hazardous cells but never makes them impassable.
func (p *Planner) FindPathAvoid(from, to Vec2i, danger map[Vec2i]float64) []Vec2i {
	return p.search(from, to, danger)
}

// Neighbor order is fixed for determinism.
var neighborSteps = [4]Vec2i{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

type searchNode struct {
	pos  Vec2i
	f, g float64
	seq  int // insertion order, final tie-break
	idx  int
}

func (p *Planner) search(from, to Vec2i, danger map[Vec2i]float64) []Vec2i {
	g := p.g
	if g == nil || !g.InBounds(from) || !g.InBounds(to) {
		return nil
	}
	if g.BlockedAt(to) {
		return nil
	}
	if from == to {
		return []Vec2i{to}
	}

	states := make(map[Vec2i]*cellState, 64)

	open := &nodeHeap{}
	heap.Init(open)
	seq := 0
	push := func(pos Vec2i, gCost float64, came Vec2i, hasCame bool) {
		st := states[pos]
		if st == nil {
			st = &cellState{}
			states[pos] = st
		} else if st.closed || (st.open && gCost >= st.g) {
			return
		}
		st.g = gCost
		st.open = true
		st.came = came
		st.hasCame = hasCame
		seq++
		heap.Push(open, &searchNode{
			pos: pos,
			g:   gCost,
			f:   gCost + float64(Manhattan(pos, to)),
			seq: seq,
		})
	}

	push(from, 0, Vec2i{}, false)
	for open.Len() > 0 {
		n := heap.Pop(open).(*searchNode)
		st := states[n.pos]
		if st == nil || st.closed || n.g > st.g {
			continue
		}
		st.closed = true
		if n.pos == to {
			return reconstruct(states, from, to)
		}
		for _, d := range neighborSteps {
			next := n.pos.Add(d)
			if !g.InBounds(next) || g.BlockedAt(next) {
				continue
			}
			step := g.CostAt(next)
			if danger != nil {
				step += danger[next] * DangerWeight
			}
			push(next, n.g+step, n.pos, true)
		}
	}
	return nil
}

type cellState struct {
	g       float64
	open    bool
	closed  bool
	came    Vec2i
	hasCame bool
}

func reconstruct(states map[Vec2i]*cellState, from, to Vec2i) []Vec2i {
	var rev []Vec2i
	cur := to
	for cur != from {
		rev = append(rev, cur)
		st := states[cur]
		if st == nil || !st.hasCame {
			return nil
		}
		cur = st.came
	}
	out := make([]Vec2i, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}
	return out
}

type nodeHeap []*searchNode

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if h[i].g != h[j].g {
		return h[i].g > h[j].g // prefer deeper progress on equal f
	}
	return h[i].seq < h[j].seq
}

func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].idx = i
	h[j].idx = j
}

func (h *nodeHeap) Push(x any) {
	n := x.(*searchNode)
	n.idx = len(*h)
	*h = append(*h, n)
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return n
}
