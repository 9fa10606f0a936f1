// sim/config.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/iancoleman/orderedmap"
	"github.com/xeipuuv/gojsonschema"

	av "github.com/scopesim/scopesim/aviation"
	"github.com/scopesim/scopesim/util"
	"github.com/scopesim/scopesim/wx"
)

// ScenarioFile is the on-disk scenario format: one airport with its runways,
// the fixes and procedures traffic flies, the sector map, and a table of
// weather patterns ordered from benign to nasty.
type ScenarioFile struct {
	Airport    av.Airport      `json:"airport"`
	Runways    []av.Runway     `json:"runways"`
	Fixes      []av.Fix        `json:"fixes,omitempty"`
	Procedures []av.Procedure  `json:"procedures,omitempty"`
	Sectors    []*av.Sector    `json:"sectors"`
	Weather    []wx.Conditions `json:"weather"`
}

//go:embed scenario.schema.json
var scenarioSchema []byte

// LoadScenarioFile parses and validates scenario JSON. Rejection happens in
// layers: duplicated keys first, since encoding/json silently keeps only the
// last of a repeated key; then the schema, which reports shape and type
// mistakes with a path to the offender; last the semantic checks that need
// decoded values, like cross-references between sectors.
func LoadScenarioFile(data []byte) (*ScenarioFile, error) {
	if dups := util.FindDuplicateJSONKeys(data); len(dups) > 0 {
		d := dups[0]
		where := d.Key
		if d.Path != "" {
			where = d.Path + "." + d.Key
		}
		return nil, fmt.Errorf("%s: duplicate key: %w", where, ErrInvalidScenarioFile)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(scenarioSchema),
		gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("scenario file: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("%s: %w", strings.Join(msgs, "; "), ErrInvalidScenarioFile)
	}

	var sf ScenarioFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, err
	}

	var e util.ErrorLogger
	sf.PostDeserialize(&e)
	if e.HaveErrors() {
		return nil, fmt.Errorf("%s: %w", e.String(), ErrInvalidScenarioFile)
	}
	return &sf, nil
}

// Database assembles the file's navigation data into the registry the
// simulation queries.
func (sf *ScenarioFile) Database() *av.Database {
	db := av.NewDatabase()
	db.AddAirport(sf.Airport)
	for _, r := range sf.Runways {
		db.AddRunway(r)
	}
	for _, f := range sf.Fixes {
		db.AddFix(f)
	}
	for _, p := range sf.Procedures {
		db.AddProcedure(p)
	}
	return db
}

func (sf *ScenarioFile) PostDeserialize(e *util.ErrorLogger) {
	sf.Database().PostDeserialize(e)

	ids := make(map[string]bool, len(sf.Sectors))
	for _, s := range sf.Sectors {
		if ids[s.ID] {
			e.ErrorString("sector %q defined twice", s.ID)
		}
		ids[s.ID] = true
	}
	for _, s := range sf.Sectors {
		s.PostDeserialize(e)
		e.Push("sector " + s.ID)
		for _, adj := range s.Adjacent {
			if !ids[adj] {
				e.ErrorString("adjacent sector %q not found", adj)
			}
		}
		e.Pop()
	}

	for i := range sf.Weather {
		e.Push(fmt.Sprintf("weather pattern %d", i))
		sf.Weather[i].PostDeserialize(e)
		e.Pop()
	}
}

// BuildConfig marries the scenario file to a difficulty preset: weather is
// selected by the preset's severity, and the scenario's objectives derive
// from its success criteria. The result is ready for NewSim.
func (sf *ScenarioFile) BuildConfig(difficulty Difficulty, preset DifficultyPreset,
	seed int64, start time.Time) Config {
	return Config{
		DB:                    sf.Database(),
		Sectors:               sf.Sectors,
		Runways:               sf.Runways,
		Weather:               SelectWeather(sf.Weather, preset.WeatherSeverity),
		Scenario:              PresetScenario(difficulty, preset, &sf.Airport),
		StartTime:             start,
		Seed:                  seed,
		SeparationTolerance:   preset.SeparationTolerance,
		WindChangeProbability: preset.WindChangeProbability,
	}
}

///////////////////////////////////////////////////////////////////////////
// Preset catalogs

// PresetCatalog is a difficulty ladder: presets by name, plus the order the
// author declared them in, gentlest first by convention.
type PresetCatalog struct {
	Order   []Difficulty
	Presets map[Difficulty]DifficultyPreset
}

// BuiltinCatalog wraps the embedded presets in catalog form.
func BuiltinCatalog() *PresetCatalog {
	return &PresetCatalog{Order: Difficulties(), Presets: DifficultyPresets()}
}

// Lookup returns the preset for the named difficulty.
func (c *PresetCatalog) Lookup(d Difficulty) (DifficultyPreset, error) {
	p, ok := c.Presets[d]
	if !ok {
		return DifficultyPreset{}, fmt.Errorf("%s: %w", d, ErrUnknownScenario)
	}
	return p, nil
}

// LoadPresetCatalog parses a JSON object mapping difficulty names to
// presets. Decoding into a Go map would shuffle the ladder, so the object
// goes through an ordered map and the author's declaration order is kept.
func LoadPresetCatalog(data []byte) (*PresetCatalog, error) {
	if dups := util.FindDuplicateJSONKeys(data); len(dups) > 0 {
		return nil, fmt.Errorf("%s: duplicate preset: %w", dups[0].Key, ErrInvalidScenarioFile)
	}

	om := orderedmap.New()
	if err := json.Unmarshal(data, om); err != nil {
		return nil, err
	}

	cat := &PresetCatalog{Presets: make(map[Difficulty]DifficultyPreset, len(om.Keys()))}
	for _, name := range om.Keys() {
		v, _ := om.Get(name)
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		var p DifficultyPreset
		if err := json.Unmarshal(b, &p); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		cat.Order = append(cat.Order, Difficulty(name))
		cat.Presets[Difficulty(name)] = p
	}
	if len(cat.Order) == 0 {
		return nil, fmt.Errorf("no presets defined: %w", ErrInvalidScenarioFile)
	}
	return cat, nil
}
