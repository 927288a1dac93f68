package world

import "colonysim.ai/internal/sim/nav"

// Building kinds with structural meaning to the nav layer. Other kinds (beds,
// benches, stockpiles) occupy tiles but stay walkable.
const (
	KindWall = "WALL"
)

type Building struct {
	ID   string
	Kind string
	Pos  nav.Vec2i // anchor, top-left of footprint
	W, H int       // footprint in tiles

	// Capacity is the maximum simultaneous occupants (plus pending sleep
	// reservations) the building admits.
	Capacity int

	// Complete is false while the building is a construction site.
	Complete bool
	WorkLeft float64

	HP    float64
	MaxHP float64
}

func (b *Building) initDefaults() {
	if b.W <= 0 {
		b.W = 1
	}
	if b.H <= 0 {
		b.H = 1
	}
	if b.Capacity <= 0 {
		b.Capacity = 1
	}
	if b.MaxHP <= 0 {
		b.MaxHP = 100
	}
	if b.Complete && b.HP == 0 {
		b.HP = b.MaxHP
	}
}

// CrewCap is the maximum build crew, derived from footprint area.
func (b *Building) CrewCap() int {
	n := (b.W*b.H + 3) / 4
	if n < 1 {
		n = 1
	}
	return n
}

func (b *Building) Damaged() bool {
	return b.Complete && b.HP < b.MaxHP
}

func (b *Building) Contains(p nav.Vec2i) bool {
	return p.X >= b.Pos.X && p.X < b.Pos.X+b.W && p.Y >= b.Pos.Y && p.Y < b.Pos.Y+b.H
}

func (b *Building) Tiles() []nav.Vec2i {
	out := make([]nav.Vec2i, 0, b.W*b.H)
	for y := b.Pos.Y; y < b.Pos.Y+b.H; y++ {
		for x := b.Pos.X; x < b.Pos.X+b.W; x++ {
			out = append(out, nav.Vec2i{X: x, Y: y})
		}
	}
	return out
}

// Center is the interaction anchor for the building.
func (b *Building) Center() nav.Vec2i {
	return nav.Vec2i{X: b.Pos.X + b.W/2, Y: b.Pos.Y + b.H/2}
}

// blocksTile reports whether this building makes its tiles impassable.
// Construction sites never block; agents build from adjacent tiles but the
// footprint stays crossable until walls exist.
func (b *Building) blocksTile() bool {
	return b.Complete && b.Kind == KindWall
}
