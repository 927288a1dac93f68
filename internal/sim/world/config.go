package world

import "colonysim.ai/internal/sim/tasks"

type WorldConfig struct {
	ID         string
	Width      int
	Height     int
	TickRateHz int
	Seed       int64

	// ReachabilityBudget caps path checks per assignment attempt. Exhausting
	// it degrades to an unvalidated assignment rather than unbounded search.
	ReachabilityBudget int

	// AdmissionBudget is how many agents receive a full decision pass per
	// tick. Everyone else gets the cheap motion-only pass.
	AdmissionBudget int

	// DoorClearance is how far past a door's center an agent must be before
	// its queue entry is released.
	DoorClearance float64

	// Jitter detection: this many distance-trend sign flips within
	// JitterWindowTicks snaps the agent past the contested waypoint.
	JitterWindowTicks int
	JitterThreshold   int

	ArriveRadius    float64
	RepathTolerance int // goal drift (tiles) that forces a repath
	WanderRadius    int

	// DefaultPriorities seed new agents; tasks.PriorityDisabled turns a
	// category off. Categories absent here default to 3.
	DefaultPriorities map[tasks.Category]int
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "colony"
	}
	if c.Width <= 0 {
		c.Width = 64
	}
	if c.Height <= 0 {
		c.Height = 64
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 10
	}
	if c.ReachabilityBudget <= 0 {
		c.ReachabilityBudget = 5
	}
	if c.AdmissionBudget <= 0 {
		c.AdmissionBudget = 32
	}
	if c.DoorClearance <= 0 {
		c.DoorClearance = 1.0
	}
	if c.JitterWindowTicks <= 0 {
		c.JitterWindowTicks = 6
	}
	if c.JitterThreshold <= 0 {
		c.JitterThreshold = 3
	}
	if c.ArriveRadius <= 0 {
		c.ArriveRadius = 0.4
	}
	if c.RepathTolerance <= 0 {
		c.RepathTolerance = 1
	}
	if c.WanderRadius <= 0 {
		c.WanderRadius = 6
	}
}
