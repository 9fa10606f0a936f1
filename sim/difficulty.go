// sim/difficulty.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	_ "embed"
	"fmt"
	"time"

	av "github.com/scopesim/scopesim/aviation"
	"github.com/scopesim/scopesim/math"
	"github.com/scopesim/scopesim/wx"
	"gopkg.in/yaml.v3"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

// Difficulties returns the difficulty levels in increasing order.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyBeginner, DifficultyIntermediate,
		DifficultyAdvanced, DifficultyExpert}
}

// DifficultyPreset collects the knobs that make one difficulty level what
// it is: how much traffic, how ugly the weather, how tight the margins,
// and what it takes to pass.
type DifficultyPreset struct {
	AircraftCount         int     `json:"aircraft_count" yaml:"aircraft_count"`
	TrafficDensity        float32 `json:"traffic_density" yaml:"traffic_density"`
	WeatherSeverity       float32 `json:"weather_severity" yaml:"weather_severity"`
	ProcedureComplexity   float32 `json:"procedure_complexity" yaml:"procedure_complexity"`
	WindChangeProbability float32 `json:"wind_change_probability" yaml:"wind_change_probability"`
	GoAroundProbability   float32 `json:"go_around_probability" yaml:"go_around_probability"`
	SeparationTolerance   float32 `json:"separation_tolerance" yaml:"separation_tolerance"`
	TimePressure          float32 `json:"time_pressure" yaml:"time_pressure"`
	DurationMinutes       int     `json:"duration_minutes" yaml:"duration_minutes"`
	MinScore              float32 `json:"min_score" yaml:"min_score"`
	MaxViolations         int     `json:"max_violations" yaml:"max_violations"`
	MinLandings           int     `json:"min_landings" yaml:"min_landings"`
}

//go:embed difficulties.yaml
var difficultiesYAML []byte

// DifficultyPresets returns the built-in preset catalog. The catalog is
// embedded in the binary, so a parse failure is a build defect and panics.
func DifficultyPresets() map[Difficulty]DifficultyPreset {
	var presets map[Difficulty]DifficultyPreset
	if err := yaml.Unmarshal(difficultiesYAML, &presets); err != nil {
		panic(fmt.Sprintf("embedded difficulties.yaml: %v", err))
	}
	return presets
}

// SelectWeather picks conditions from the given patterns, which are
// expected to be ordered from benign to nasty; severity in [0,1] indexes
// into them.
func SelectWeather(patterns []wx.Conditions, severity float32) wx.Conditions {
	if len(patterns) == 0 {
		return wx.Conditions{}
	}
	idx := math.Clamp(int(severity*float32(len(patterns))), 0, len(patterns)-1)
	return patterns[idx]
}

// BuildScenario constructs a fresh scenario for the given difficulty at the
// given airport, using the built-in preset catalog.
func BuildScenario(difficulty Difficulty, airport *av.Airport) (*Scenario, error) {
	preset, ok := DifficultyPresets()[difficulty]
	if !ok {
		return nil, fmt.Errorf("%s: %w", difficulty, ErrUnknownScenario)
	}
	return PresetScenario(difficulty, preset, airport), nil
}

// PresetScenario constructs a scenario from an explicit preset, for callers
// carrying their own catalog. Objectives derive from the preset's success
// criteria.
func PresetScenario(difficulty Difficulty, preset DifficultyPreset, airport *av.Airport) *Scenario {
	duration := time.Duration(preset.DurationMinutes) * time.Minute
	durationSec := float32(duration / time.Second)

	objectives := []*Objective{
		{
			Type:        ObjectiveLandAircraft,
			Description: fmt.Sprintf("Land %d aircraft safely", preset.MinLandings),
			Target:      float32(preset.MinLandings),
			Required:    true,
			Points:      50,
		},
		{
			Type:        ObjectiveMaintainSeparation,
			Description: "Maintain separation throughout",
			Target:      durationSec,
			// Only a difficulty that allows no violations at all makes a
			// clean run mandatory.
			Required: preset.MaxViolations == 0,
			Points:   50,
		},
		{
			Type:        ObjectiveScorePoints,
			Description: fmt.Sprintf("Score %.0f points", preset.MinScore),
			Target:      preset.MinScore,
			Points:      25,
		},
		{
			Type:        ObjectiveTimeLimit,
			Description: fmt.Sprintf("Time limit %d minutes", preset.DurationMinutes),
			Target:      durationSec,
		},
	}

	// Once the procedures get complex enough, departures transit adjacent
	// sectors and handing them off becomes part of the job.
	if preset.ProcedureComplexity >= 0.75 {
		objectives = append(objectives, &Objective{
			Type:        ObjectiveHandoffCount,
			Description: "Hand off departing traffic",
			Target:      2,
			Points:      25,
		})
	}

	return &Scenario{
		Name:       fmt.Sprintf("%s (%s)", airport.Name, difficulty),
		Airport:    airport.ID,
		Difficulty: difficulty,
		Duration:   duration,
		Objectives: objectives,
	}
}
