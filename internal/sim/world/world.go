// Package world is the simulation core: it owns all shared mutable state
// (agents, buildings, resources, doors, the nav grid, the reservation ledger)
// and advances it one deterministic single-threaded tick at a time.
package world

import (
	"fmt"
	"math/rand"
	"sort"

	"colonysim.ai/internal/sim/nav"
	"colonysim.ai/internal/sim/reserve"
	"colonysim.ai/internal/sim/tasks"
	"colonysim.ai/internal/sim/work"
)

// Rect is the camera viewport in tile coordinates, used for importance
// scoring. X1/Y1 are exclusive.
type Rect struct {
	X0, Y0, X1, Y1 int
}

func (r Rect) Contains(p nav.Vec2i) bool {
	return p.X >= r.X0 && p.X < r.X1 && p.Y >= r.Y0 && p.Y < r.Y1
}

func (r Rect) empty() bool { return r.X1 <= r.X0 || r.Y1 <= r.Y0 }

type World struct {
	cfg  WorldConfig
	tick uint64

	agents    map[string]*Agent
	buildings map[string]*Building
	resources map[string]*Resource

	grid    *nav.Grid
	planner *nav.Planner
	doors   *nav.Arbiter
	ledger  *reserve.Ledger
	manager *work.Manager

	// Tile indexes so grid derivation is O(1) per cell.
	buildingAt map[nav.Vec2i]string
	resourceAt map[nav.Vec2i]string
	doorAtTile map[nav.Vec2i]string

	// Terrain cost overrides; absent tiles cost 1. Rough terrain above 1,
	// fast floors below.
	terrain map[nav.Vec2i]float64

	// Hazard overlay consumed by danger-aware path queries.
	danger map[nav.Vec2i]float64

	viewport Rect

	rng *rand.Rand

	counters Counters
	lastStep TickLogEntry

	// World-edit inbox: caller mutations queue here and apply once per tick at
	// the step boundary.
	pendingEdits []func()

	nextAgent    uint64
	nextBuilding uint64
	nextResource uint64
	nextDoor     uint64
	nextTask     uint64
}

func New(cfg WorldConfig) *World {
	cfg.applyDefaults()
	w := &World{
		cfg:        cfg,
		agents:     map[string]*Agent{},
		buildings:  map[string]*Building{},
		resources:  map[string]*Resource{},
		doors:      nav.NewArbiter(),
		ledger:     reserve.NewLedger(),
		manager:    work.NewManager(work.DefaultGivers()...),
		buildingAt: map[nav.Vec2i]string{},
		resourceAt: map[nav.Vec2i]string{},
		doorAtTile: map[nav.Vec2i]string{},
		terrain:    map[nav.Vec2i]float64{},
		danger:     map[nav.Vec2i]float64{},
		rng:        rand.New(rand.NewSource(cfg.Seed)),
	}
	w.grid = nav.NewGrid(cfg.Width, cfg.Height, w.deriveCell)
	w.planner = nav.NewPlanner(w.grid)
	w.viewport = Rect{X1: cfg.Width, Y1: cfg.Height}
	return w
}

func (w *World) Config() WorldConfig     { return w.cfg }
func (w *World) CurrentTick() uint64     { return w.tick }
func (w *World) Grid() *nav.Grid         { return w.grid }
func (w *World) Planner() *nav.Planner   { return w.planner }
func (w *World) Ledger() *reserve.Ledger { return w.ledger }
func (w *World) Doors() *nav.Arbiter     { return w.doors }

func (w *World) Agent(id string) *Agent       { return w.agents[id] }
func (w *World) Building(id string) *Building { return w.buildings[id] }
func (w *World) Resource(id string) *Resource { return w.resources[id] }

// SortedAgents returns agents in ID order: the fixed, deterministic per-tick
// processing order.
func (w *World) SortedAgents() []*Agent {
	ids := make([]string, 0, len(w.agents))
	for id := range w.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Agent, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.agents[id])
	}
	return out
}

// deriveCell re-derives one nav cell from the building/terrain/door layers.
func (w *World) deriveCell(p nav.Vec2i) nav.Cell {
	cost := 1.0
	if c, ok := w.terrain[p]; ok && c > 0 {
		cost = c
	}
	if id, ok := w.doorAtTile[p]; ok {
		d := w.doors.Get(id)
		if d != nil && d.HoldClosed {
			return nav.Cell{Blocked: true, Cost: cost}
		}
		// Passable doors still cost extra: the planner mildly prefers open
		// routes over waiting at a doorway.
		return nav.Cell{Cost: cost * 2}
	}
	if id, ok := w.buildingAt[p]; ok {
		if b := w.buildings[id]; b != nil && b.blocksTile() {
			return nav.Cell{Blocked: true, Cost: cost}
		}
	}
	if id, ok := w.resourceAt[p]; ok {
		if r := w.resources[id]; r != nil && r.blocksTile() {
			return nav.Cell{Blocked: true, Cost: cost}
		}
	}
	return nav.Cell{Cost: cost}
}

// World-edit API --------------------------------------------------------------
//
// Callers mutating the world never touch state directly: each call queues an
// edit plus the matching rebuild request, both applied at the next step
// boundary. IDs are still assigned synchronously so callers can reference the
// entity immediately.

func (w *World) SpawnAgent(name string, pos nav.Vec2i) string {
	w.nextAgent++
	id := fmt.Sprintf("A_%03d", w.nextAgent)
	w.pendingEdits = append(w.pendingEdits, func() {
		a := &Agent{ID: id, Name: name, Pos: tileCenter(pos)}
		a.initDefaults(w.cfg.DefaultPriorities)
		w.agents[id] = a
	})
	return id
}

// RemoveAgent despawns at the next boundary; all reservations and door-queue
// entries are released first.
func (w *World) RemoveAgent(id string) {
	w.pendingEdits = append(w.pendingEdits, func() {
		a := w.agents[id]
		if a == nil {
			return
		}
		w.releaseFor(a)
		delete(w.agents, id)
	})
}

// PlaceBuilding queues a construction site. Completed placement (complete =
// true) is for scenario setup of pre-existing buildings.
func (w *World) PlaceBuilding(kind string, pos nav.Vec2i, width, height, capacity int, complete bool) string {
	w.nextBuilding++
	id := fmt.Sprintf("B_%03d", w.nextBuilding)
	w.pendingEdits = append(w.pendingEdits, func() {
		b := &Building{ID: id, Kind: kind, Pos: pos, W: width, H: height, Capacity: capacity, Complete: complete}
		if !complete {
			b.WorkLeft = float64(width * height * 5)
		}
		b.initDefaults()
		w.buildings[id] = b
		for _, t := range b.Tiles() {
			w.buildingAt[t] = id
		}
		w.grid.RequestFullRebuild()
	})
	return id
}

func (w *World) RemoveBuilding(id string) {
	w.pendingEdits = append(w.pendingEdits, func() {
		b := w.buildings[id]
		if b == nil {
			return
		}
		w.ledger.DropTarget(id)
		for _, t := range b.Tiles() {
			if w.buildingAt[t] == id {
				delete(w.buildingAt, t)
			}
		}
		delete(w.buildings, id)
		w.grid.RequestFullRebuild()
	})
}

func (w *World) SpawnResource(kind string, pos nav.Vec2i, amount int) string {
	w.nextResource++
	id := fmt.Sprintf("R_%04d", w.nextResource)
	w.pendingEdits = append(w.pendingEdits, func() {
		r := &Resource{ID: id, Kind: kind, Pos: pos, Amount: amount}
		r.initDefaults()
		w.resources[id] = r
		w.resourceAt[pos] = id
		w.grid.RequestPartialRebuild(pos, 1)
	})
	return id
}

func (w *World) RemoveResource(id string) {
	w.pendingEdits = append(w.pendingEdits, func() {
		w.removeResourceNow(id)
	})
}

func (w *World) removeResourceNow(id string) {
	r := w.resources[id]
	if r == nil {
		return
	}
	w.ledger.DropTarget(id)
	if w.resourceAt[r.Pos] == id {
		delete(w.resourceAt, r.Pos)
	}
	delete(w.resources, id)
	w.grid.RequestPartialRebuild(r.Pos, 1)
}

// MarkResource designates a tree for cutting or rock/ore for mining.
func (w *World) MarkResource(id string) {
	w.pendingEdits = append(w.pendingEdits, func() {
		if r := w.resources[id]; r != nil {
			r.Marked = true
		}
	})
}

func (w *World) AddDoor(pos nav.Vec2i) string {
	w.nextDoor++
	id := fmt.Sprintf("D_%03d", w.nextDoor)
	w.pendingEdits = append(w.pendingEdits, func() {
		w.doors.Add(&nav.Door{ID: id, Pos: pos})
		w.doorAtTile[pos] = id
		w.grid.RequestPartialRebuild(pos, 1)
	})
	return id
}

func (w *World) RemoveDoor(id string) {
	w.pendingEdits = append(w.pendingEdits, func() {
		d := w.doors.Get(id)
		if d == nil {
			return
		}
		if w.doorAtTile[d.Pos] == id {
			delete(w.doorAtTile, d.Pos)
		}
		w.doors.Remove(id)
		w.grid.RequestPartialRebuild(d.Pos, 1)
	})
}

// SetDoorHeld locks or unlocks a door. Held-closed doors block the nav grid.
func (w *World) SetDoorHeld(id string, held bool) {
	w.pendingEdits = append(w.pendingEdits, func() {
		d := w.doors.Get(id)
		if d == nil {
			return
		}
		d.HoldClosed = held
		w.grid.RequestPartialRebuild(d.Pos, 1)
	})
}

func (w *World) SetTerrainCost(pos nav.Vec2i, cost float64) {
	w.pendingEdits = append(w.pendingEdits, func() {
		if cost == 1 || cost <= 0 {
			delete(w.terrain, pos)
		} else {
			w.terrain[pos] = cost
		}
		w.grid.RequestPartialRebuild(pos, 0)
	})
}

// SetDanger sets the hazard level at a tile (0 clears). Takes effect
// immediately; danger is an overlay, not grid state.
func (w *World) SetDanger(pos nav.Vec2i, level float64) {
	if level <= 0 {
		delete(w.danger, pos)
		return
	}
	w.danger[pos] = level
}

func (w *World) SetViewport(r Rect) { w.viewport = r }

// CancelTask is the external interrupt: command override, target gone, and so
// on. Reservations, queue entries, and the in-flight path are released
// synchronously before anything else happens.
func (w *World) CancelTask(agentID string) {
	if a := w.agents[agentID]; a != nil {
		w.setTask(a, nil)
	}
}

func (w *World) newTaskID() string {
	w.nextTask++
	return fmt.Sprintf("T%06d", w.nextTask)
}

func v2ToTask(v nav.Vec2i) tasks.Vec2i { return tasks.Vec2i{X: v.X, Y: v.Y} }

func v2FromTask(v tasks.Vec2i) nav.Vec2i { return nav.Vec2i{X: v.X, Y: v.Y} }
