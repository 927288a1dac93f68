// Package tuning loads simulation parameters from tuning.yaml and validates
// them against an embedded JSON schema before they reach the world.
package tuning

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"colonysim.ai/internal/sim/tasks"
	"colonysim.ai/internal/sim/world"
)

//go:embed tuning.schema.json
var schemaSrc string

type Tuning struct {
	WorldID    string `yaml:"world_id"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	TickRateHz int    `yaml:"tick_rate_hz"`
	Seed       int64  `yaml:"seed"`

	Budgets    Budgets        `yaml:"budgets"`
	Motion     Motion         `yaml:"motion"`
	Priorities map[string]int `yaml:"priorities"`
}

type Budgets struct {
	Reachability int `yaml:"reachability"`
	Admission    int `yaml:"admission"`
}

type Motion struct {
	ArriveRadius      float64 `yaml:"arrive_radius"`
	RepathTolerance   int     `yaml:"repath_tolerance"`
	JitterWindowTicks int     `yaml:"jitter_window_ticks"`
	JitterThreshold   int     `yaml:"jitter_threshold"`
	DoorClearance     float64 `yaml:"door_clearance"`
	WanderRadius      int     `yaml:"wander_radius"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}

	// Validate the document shape before decoding into the struct. The yaml
	// tree is round-tripped through encoding/json so the validator sees plain
	// JSON types.
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	jsonRaw, err := json.Marshal(doc)
	if err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := json.Unmarshal(jsonRaw, &doc); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	schema, err := jsonschema.CompileString("tuning.schema.json", schemaSrc)
	if err != nil {
		return t, fmt.Errorf("tuning schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}

	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// WorldConfig maps the loaded tuning onto a world configuration. Zero values
// fall through to the world's own defaults.
func (t Tuning) WorldConfig() world.WorldConfig {
	cfg := world.WorldConfig{
		ID:                 t.WorldID,
		Width:              t.Width,
		Height:             t.Height,
		TickRateHz:         t.TickRateHz,
		Seed:               t.Seed,
		ReachabilityBudget: t.Budgets.Reachability,
		AdmissionBudget:    t.Budgets.Admission,
		ArriveRadius:       t.Motion.ArriveRadius,
		RepathTolerance:    t.Motion.RepathTolerance,
		JitterWindowTicks:  t.Motion.JitterWindowTicks,
		JitterThreshold:    t.Motion.JitterThreshold,
		DoorClearance:      t.Motion.DoorClearance,
		WanderRadius:       t.Motion.WanderRadius,
	}
	if len(t.Priorities) > 0 {
		cfg.DefaultPriorities = make(map[tasks.Category]int, len(t.Priorities))
		for cat, p := range t.Priorities {
			cfg.DefaultPriorities[tasks.Category(cat)] = p
		}
	}
	return cfg
}
