package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"colonysim.ai/internal/sim/nav"
	"colonysim.ai/internal/sim/world"
)

// Scenario is the initial population of a fresh world, loaded from yaml. All
// spawns queue as world edits and land on the first tick.
type Scenario struct {
	Agents []struct {
		Name string `yaml:"name"`
		Pos  [2]int `yaml:"pos"`
	} `yaml:"agents"`
	Buildings []struct {
		Kind     string `yaml:"kind"`
		Pos      [2]int `yaml:"pos"`
		W        int    `yaml:"w"`
		H        int    `yaml:"h"`
		Capacity int    `yaml:"capacity"`
		Complete bool   `yaml:"complete"`
	} `yaml:"buildings"`
	Resources []struct {
		Kind   string `yaml:"kind"`
		Pos    [2]int `yaml:"pos"`
		Amount int    `yaml:"amount"`
		Marked bool   `yaml:"marked"`
	} `yaml:"resources"`
	Doors []struct {
		Pos  [2]int `yaml:"pos"`
		Held bool   `yaml:"held"`
	} `yaml:"doors"`
	Terrain []struct {
		Pos  [2]int  `yaml:"pos"`
		Cost float64 `yaml:"cost"`
	} `yaml:"terrain"`
}

func loadScenario(path string) (Scenario, error) {
	var s Scenario
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("scenario: %w", err)
	}
	return s, nil
}

func (s Scenario) apply(w *world.World) {
	for _, a := range s.Agents {
		w.SpawnAgent(a.Name, nav.Vec2i{X: a.Pos[0], Y: a.Pos[1]})
	}
	for _, b := range s.Buildings {
		w.PlaceBuilding(b.Kind, nav.Vec2i{X: b.Pos[0], Y: b.Pos[1]}, b.W, b.H, b.Capacity, b.Complete)
	}
	for _, r := range s.Resources {
		id := w.SpawnResource(r.Kind, nav.Vec2i{X: r.Pos[0], Y: r.Pos[1]}, r.Amount)
		if r.Marked {
			w.MarkResource(id)
		}
	}
	for _, d := range s.Doors {
		id := w.AddDoor(nav.Vec2i{X: d.Pos[0], Y: d.Pos[1]})
		if d.Held {
			w.SetDoorHeld(id, true)
		}
	}
	for _, t := range s.Terrain {
		w.SetTerrainCost(nav.Vec2i{X: t.Pos[0], Y: t.Pos[1]}, t.Cost)
	}
}
