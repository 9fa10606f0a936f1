// sim/sample.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"time"

	"github.com/mmp/earcut-go"

	av "github.com/scopesim/scopesim/aviation"
	"github.com/scopesim/scopesim/math"
	"github.com/scopesim/scopesim/nav"
	"github.com/scopesim/scopesim/rand"
	"github.com/scopesim/scopesim/wx"
)

// This file holds the built-in sample scenario: a coastal TRACON in the
// manner of the San Francisco Bay area, with parallel runways, an RNAV
// approach, marine-layer weather, and enough traffic to be worth working.
// Everything is built by plain functions so callers can take the pieces
// they want; nothing here is a singleton.

// SampleAirportID is the airport all of the sample data revolves around.
const SampleAirportID = "KSFO"

func SampleAirport() av.Airport {
	return av.Airport{
		ID:        SampleAirportID,
		Name:      "San Francisco Intl",
		Position:  [2]float32{0, 0},
		Elevation: 13,
		RunwayIDs: []string{"28L", "28R", "01L", "01R"},
	}
}

// SampleRunways returns the two parallel pairs: the 28s take the usual
// westerly flow, the 01s handle southerly storm winds.
func SampleRunways() []av.Runway {
	return []av.Runway{
		{ID: "28L", AirportID: SampleAirportID, Heading: 280, Length: 11066, Width: 150,
			GlideslopeAngle: 3, FAFDistance: 6, ILSFreq: "109.55"},
		{ID: "28R", AirportID: SampleAirportID, Heading: 280, Length: 10604, Width: 150,
			GlideslopeAngle: 3, FAFDistance: 6, ILSFreq: "111.70"},
		{ID: "01L", AirportID: SampleAirportID, Heading: 10, Length: 10604, Width: 150,
			GlideslopeAngle: 3, FAFDistance: 6},
		{ID: "01R", AirportID: SampleAirportID, Heading: 10, Length: 11066, Width: 150,
			GlideslopeAngle: 3, FAFDistance: 6},
	}
}

func SampleFixes() []av.Fix {
	return []av.Fix{
		{ID: "MARBL", Type: av.FixWaypoint, Position: [2]float32{10, 5}},
		{ID: "TRONC", Type: av.FixWaypoint, Position: [2]float32{5, 3}},
		{ID: "MADBE", Type: av.FixWaypoint, Position: [2]float32{2, 1}},
	}
}

// SampleProcedures publishes the RNAV approaches to the parallel 28s. The
// base route starts at TRONC; arrivals from the east join via the MARBL
// transition.
func SampleProcedures() []av.Procedure {
	fixes := SampleFixes()
	marbl, tronc, madbe := fixes[0], fixes[1], fixes[2]

	procs := make([]av.Procedure, 0, 2)
	for _, rwy := range []string{"28L", "28R"} {
		procs = append(procs, av.Procedure{
			Name:   "RNAV" + rwy,
			Type:   av.ProcedureApproach,
			Runway: rwy,
			Fixes:  []av.Fix{tronc, madbe},
			Transitions: map[string][]av.Fix{
				"MARBL": {marbl, tronc},
			},
		})
	}
	return procs
}

// SampleApproachRoute returns the RNAV approach as a flyable route with its
// published altitude and speed restrictions.
func SampleApproachRoute() *av.Route {
	alts := []float32{6000, 3000, 1500}
	speeds := []float32{250, 200, 160}

	route := &av.Route{}
	for i, f := range SampleFixes() {
		route.AddFix(f, &alts[i], &speeds[i])
	}
	return route
}

// SampleScenarioFile assembles the sample scenario in the same form a
// scenario loaded from disk takes.
func SampleScenarioFile() *ScenarioFile {
	return &ScenarioFile{
		Airport:    SampleAirport(),
		Runways:    SampleRunways(),
		Fixes:      SampleFixes(),
		Procedures: SampleProcedures(),
		Sectors:    SampleSectors(),
		Weather:    SampleWeatherPatterns(),
	}
}

// SampleDatabase assembles the full navigation database for the sample
// scenario.
func SampleDatabase() *av.Database {
	return SampleScenarioFile().Database()
}

// SampleSectors carves the airspace into the approach sector ringing the
// field and a polygonal feeder sector covering the valley to the east.
func SampleSectors() []*av.Sector {
	appCeiling := 10000
	valleyCeiling := 18000
	return []*av.Sector{
		{
			ID:           "APP",
			Name:         "Bay Approach",
			Frequency:    av.NewFrequency(135.65),
			Shape:        av.SectorShapeCircle,
			CircleCenter: [2]float32{0, 0},
			Radius:       15,
			Ceiling:      &appCeiling,
			Adjacent:     []string{"VALLEY"},
		},
		{
			ID:        "VALLEY",
			Name:      "Valley Sector",
			Frequency: av.NewFrequency(120.35),
			Shape:     av.SectorShapePolygon,
			Vertices: [][2]float32{
				{12, -14}, {36, -10}, {38, 12}, {14, 14},
			},
			Ceiling:  &valleyCeiling,
			Adjacent: []string{"APP"},
		},
	}
}

// SampleWeatherPatterns returns the scenario's weather menu, ordered from
// benign to nasty so that SelectWeather can index into it by severity.
func SampleWeatherPatterns() []wx.Conditions {
	return []wx.Conditions{
		// Night calm: light westerly drainage wind under high clouds.
		{
			WindLayers: wx.WindField{
				{DirectionFrom: 270, Speed: 4, Base: 0, Top: 5000},
				{DirectionFrom: 285, Speed: 15, Base: 5000, Top: 18000},
			},
			CloudLayers: []wx.CloudLayer{{Coverage: wx.CoverageBroken, Base: 5000}},
			Visibility:  10,
			Altimeter:   30.02,
			Temperature: 13,
			Dewpoint:    8,
		},
		// Afternoon sea breeze: the usual summer westerly.
		{
			WindLayers: wx.WindField{
				{DirectionFrom: 290, Speed: 12, Gust: 18, Base: 0, Top: 6000},
				{DirectionFrom: 300, Speed: 25, Base: 6000, Top: 18000},
			},
			CloudLayers: []wx.CloudLayer{{Coverage: wx.CoverageBroken, Base: 3000}},
			Visibility:  8,
			Altimeter:   29.95,
			Temperature: 18,
			Dewpoint:    11,
		},
		// Morning marine layer: fog on the field, gentle wind, low ceiling.
		{
			WindLayers: wx.WindField{
				{DirectionFrom: 270, Speed: 8, Base: 0, Top: 4000},
				{DirectionFrom: 290, Speed: 20, Base: 4000, Top: 18000},
			},
			CloudLayers: []wx.CloudLayer{{Coverage: wx.CoverageOvercast, Base: 1200}},
			Visibility:  2,
			Altimeter:   29.88,
			Temperature: 12,
			Dewpoint:    11,
			Precip:      wx.PrecipMist,
		},
	}
}

// ArrivalTraffic generates n IFR arrivals inbound to the given airport,
// spawned on a ring 15-25 NM out at initial descent altitudes. Callsigns
// rotate through a weighted carrier mix; positions and altitudes come from
// the supplied generator, so a seeded generator gives the same traffic
// every time.
func ArrivalTraffic(r *rand.Rand, n int, ap av.Airport) []*Aircraft {
	airlines := []struct {
		code   string
		actype string
		weight int
	}{
		{"UAL", "B738", 3},
		{"AAL", "A320", 2},
		{"SWR", "B738", 2},
	}
	var rotation []int
	for i, a := range airlines {
		for range a.weight {
			rotation = append(rotation, i)
		}
	}

	aircraft := make([]*Aircraft, 0, n)
	for i := range n {
		a := airlines[rotation[i%len(rotation)]]

		bearing := r.Float32() * 360
		distance := 15 + r.Float32()*10
		pos := math.Add2f(ap.Position, math.Scale2f(math.Heading2V(bearing), distance))
		alt := 4000 + 100*float32(r.Intn(41))
		ias := 210 + 10*float32(r.Intn(5))

		aircraft = append(aircraft, &Aircraft{
			Callsign:    av.Callsign(fmt.Sprintf("%s%d", a.code, 1000+i)),
			Type:        a.actype,
			Rules:       av.FlightRulesIFR,
			Destination: ap.ID,
			Nav: nav.MakeNav(pos, math.VectorHeading(pos, ap.Position), alt, ias,
				nav.DefaultPerformance()),
		})
	}
	return aircraft
}

// SampleTraffic generates n IFR arrivals inbound to the sample airport.
func SampleTraffic(r *rand.Rand, n int) []*Aircraft {
	return ArrivalTraffic(r, n, SampleAirport())
}

// vfrRegistrationLetters omits I and O, as real N-numbers do.
const vfrRegistrationLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ"

func vfrCallsign(r *rand.Rand, taken map[av.Callsign]bool) av.Callsign {
	for {
		cs := av.Callsign(fmt.Sprintf("N%d%c%c", 100+r.Intn(900),
			vfrRegistrationLetters[r.Intn(len(vfrRegistrationLetters))],
			vfrRegistrationLetters[r.Intn(len(vfrRegistrationLetters))]))
		if !taken[cs] {
			taken[cs] = true
			return cs
		}
	}
}

func vfrPerformance(p av.VFRProfile) nav.Performance {
	perf := nav.DefaultPerformance()
	perf.MinSpeed = p.CruiseSpeed - 20
	perf.MaxSpeed = p.CruiseSpeed + 30
	perf.ApproachSpeed = p.CruiseSpeed
	perf.MaxVerticalSpeed = 1500
	perf.Ceiling = p.MaxAltitude
	return perf
}

// PatternTraffic generates n VFR aircraft converging on the given runway's
// traffic pattern at the given airport, cycling through the VFR fleet
// profiles and the three standard pattern entries.
func PatternTraffic(r *rand.Rand, n int, ap av.Airport, rwy av.Runway) []*Aircraft {
	types := []string{"C172", "BE36", "C56X", "C208"}
	profiles := av.VFRProfiles()

	taken := make(map[av.Callsign]bool)
	aircraft := make([]*Aircraft, 0, n)
	for i := range n {
		profile := profiles[i%len(profiles)]

		var pos [2]float32
		var hdg, patternAlt float32
		switch i % 3 {
		case 0:
			pos, hdg, patternAlt = av.DownwindEntry(ap.Position, rwy.Heading)
		case 1:
			pos, hdg, patternAlt = av.BaseEntry(ap.Position, rwy.Heading)
		default:
			pos, hdg, patternAlt = av.StraightInEntry(ap.Position, rwy.Heading)
		}

		aircraft = append(aircraft, &Aircraft{
			Callsign:    vfrCallsign(r, taken),
			Type:        types[i%len(types)],
			Rules:       av.FlightRulesVFR,
			Destination: ap.ID,
			Nav: nav.MakeNav(pos, hdg, patternAlt+ap.Elevation, profile.CruiseSpeed,
				vfrPerformance(profile)),
		})
	}
	return aircraft
}

// SampleVFRTraffic generates n VFR aircraft in the sample airport's pattern.
func SampleVFRTraffic(r *rand.Rand, n int, rwy av.Runway) []*Aircraft {
	return PatternTraffic(r, n, SampleAirport(), rwy)
}

// RandomPointInSector returns a uniformly distributed point inside the
// sector's lateral boundary. Polygons are triangulated and a triangle is
// chosen in proportion to its area, so skinny slivers don't get oversampled.
func RandomPointInSector(r *rand.Rand, sec *av.Sector) [2]float32 {
	switch sec.Shape {
	case av.SectorShapeCircle:
		// sqrt keeps the radial distribution area-uniform.
		d := sec.Radius * math.Sqrt(r.Float32())
		return math.Add2f(sec.CircleCenter, math.Scale2f(math.Heading2V(r.Float32()*360), d))

	case av.SectorShapePolygon:
		vertices := make([]earcut.Vertex, len(sec.Vertices))
		for i, v := range sec.Vertices {
			vertices[i].P = [2]float64{float64(v[0]), float64(v[1])}
		}

		var tris [][3][2]float32
		var areas []float32
		var total float32
		for _, tri := range earcut.Triangulate(earcut.Polygon{Rings: [][]earcut.Vertex{vertices}}) {
			var t [3][2]float32
			for i, v64 := range tri.Vertices {
				t[i] = [2]float32{float32(v64.P[0]), float32(v64.P[1])}
			}
			area := triangleArea(t)
			tris = append(tris, t)
			areas = append(areas, area)
			total += area
		}
		if len(tris) == 0 || total == 0 {
			return sec.Center()
		}

		u := r.Float32() * total
		idx := len(tris) - 1
		for i, area := range areas {
			if u < area {
				idx = i
				break
			}
			u -= area
		}
		return uniformTrianglePoint(r, tris[idx])

	default:
		return sec.Center()
	}
}

func triangleArea(t [3][2]float32) float32 {
	e1, e2 := math.Sub2f(t[1], t[0]), math.Sub2f(t[2], t[0])
	return math.Abs(e1[0]*e2[1]-e1[1]*e2[0]) / 2
}

func uniformTrianglePoint(r *rand.Rand, t [3][2]float32) [2]float32 {
	u, v := r.Float32(), r.Float32()
	if u+v > 1 {
		u, v = 1-u, 1-v
	}
	p := math.Add2f(t[0], math.Scale2f(math.Sub2f(t[1], t[0]), u))
	return math.Add2f(p, math.Scale2f(math.Sub2f(t[2], t[0]), v))
}

// SampleConfig assembles a ready-to-run Config for the sample scenario at
// the given difficulty, using the built-in preset catalog.
func SampleConfig(difficulty Difficulty, seed int64, start time.Time) (Config, error) {
	preset, ok := DifficultyPresets()[difficulty]
	if !ok {
		return Config{}, fmt.Errorf("%s: %w", difficulty, ErrUnknownScenario)
	}
	return SampleScenarioFile().BuildConfig(difficulty, preset, seed, start), nil
}
