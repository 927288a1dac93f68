package nav

// Path is an agent's current route: ordered waypoints, a cursor, and the goal
// the route was computed for. Recomputation is goal-driven, never time-driven:
// it happens when the goal moved beyond tolerance or no path exists.
type Path struct {
	Waypoints []Vec2i
	Cursor    int
	Goal      Vec2i
}

func NewPath(waypoints []Vec2i, goal Vec2i) *Path {
	return &Path{Waypoints: waypoints, Goal: goal}
}

// Current returns the waypoint under the cursor, or false at end-of-path.
func (p *Path) Current() (Vec2i, bool) {
	if p == nil || p.Cursor >= len(p.Waypoints) {
		return Vec2i{}, false
	}
	return p.Waypoints[p.Cursor], true
}

func (p *Path) Advance() {
	if p != nil && p.Cursor < len(p.Waypoints) {
		p.Cursor++
	}
}

func (p *Path) Done() bool {
	return p == nil || p.Cursor >= len(p.Waypoints)
}

// GoalMoved reports whether goal has drifted beyond tol tiles (manhattan) from
// the goal this path was computed for.
func (p *Path) GoalMoved(goal Vec2i, tol int) bool {
	if p == nil {
		return true
	}
	return Manhattan(p.Goal, goal) > tol
}
