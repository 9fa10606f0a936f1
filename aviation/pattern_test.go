// aviation/pattern_test.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"testing"

	"github.com/scopesim/scopesim/math"
)

func TestPatternEntries(t *testing.T) {
	airport := [2]float32{0, 0}

	// Runway 36: final approach course from the south, left pattern to
	// the west.
	p, hdg, alt := DownwindEntry(airport, 360)
	if math.Abs(p[0]+1.5) > 1e-5 || math.Abs(p[1]) > 1e-5 {
		t.Errorf("downwind position = %v, want (-1.5, 0)", p)
	}
	if math.HeadingDifference(hdg, 180) > 1e-3 {
		t.Errorf("downwind heading = %g, want 180", hdg)
	}
	if alt != DownwindAltitude {
		t.Errorf("downwind altitude = %g", alt)
	}

	p, hdg, alt = BaseEntry(airport, 360)
	if math.Abs(p[0]+1) > 1e-5 || math.Abs(p[1]+1) > 1e-5 {
		t.Errorf("base position = %v, want (-1, -1)", p)
	}
	if math.HeadingDifference(hdg, 90) > 1e-3 {
		t.Errorf("base heading = %g, want 90", hdg)
	}
	if alt != BaseAltitude {
		t.Errorf("base altitude = %g", alt)
	}

	p, hdg, alt = StraightInEntry(airport, 360)
	if math.Abs(p[0]) > 1e-5 || math.Abs(p[1]+2) > 1e-5 {
		t.Errorf("straight-in position = %v, want (0, -2)", p)
	}
	if math.HeadingDifference(hdg, 360) > 1e-3 {
		t.Errorf("straight-in heading = %g, want 360", hdg)
	}
	if alt != StraightInAltitude {
		t.Errorf("straight-in altitude = %g", alt)
	}

	// Entries rotate with the runway: runway 9's downwind sits north of
	// the field.
	p, hdg, _ = DownwindEntry(airport, 90)
	if math.Abs(p[0]) > 1e-5 || math.Abs(p[1]-1.5) > 1e-5 {
		t.Errorf("runway 9 downwind position = %v, want (0, 1.5)", p)
	}
	if math.HeadingDifference(hdg, 270) > 1e-3 {
		t.Errorf("runway 9 downwind heading = %g, want 270", hdg)
	}
}

func TestVFRProfiles(t *testing.T) {
	profiles := VFRProfiles()
	if len(profiles) != 4 {
		t.Fatalf("got %d profiles", len(profiles))
	}

	byType := make(map[VFRFlightType]VFRProfile)
	for _, p := range profiles {
		byType[p.Type] = p
	}
	if p := byType[VFRGeneralAviation]; p.CruiseSpeed != 100 || p.CruiseAltitude != 3000 {
		t.Errorf("GA profile = %+v", p)
	}
	if p := byType[VFRBusinessJet]; p.CruiseSpeed != 200 || p.MaxAltitude != 15000 {
		t.Errorf("business jet profile = %+v", p)
	}
	for _, p := range profiles {
		if p.CruiseAltitude > p.MaxAltitude {
			t.Errorf("%v cruises above its ceiling", p.Type)
		}
		if p.MinVisibility < 3 || p.MinCeiling < 1000 {
			t.Errorf("%v below VFR minimums: %+v", p.Type, p)
		}
	}
}
