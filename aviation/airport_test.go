// aviation/airport_test.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"testing"

	"github.com/scopesim/scopesim/math"
)

func TestLocalizerGeometry(t *testing.T) {
	// Runway 36: traffic lands northbound, approaches from the south.
	rwy := Runway{ID: "36", Heading: 360, GlideslopeAngle: 3, FAFDistance: 6}
	airport := [2]float32{0, 0}

	dir := rwy.LocalizerDirection()
	if math.Abs(dir[0]) > 1e-6 || math.Abs(dir[1]-1) > 1e-6 {
		t.Errorf("LocalizerDirection = %v, want (0,1)", dir)
	}
	out := rwy.OutboundDirection()
	if math.Abs(out[0]) > 1e-6 || math.Abs(out[1]+1) > 1e-6 {
		t.Errorf("OutboundDirection = %v, want (0,-1)", out)
	}

	// An aircraft 5 NM south is 5 NM out on the approach side.
	p := [2]float32{0, -5}
	if d := rwy.DistanceAlongLocalizer(p, airport); math.Abs(d-5) > 1e-5 {
		t.Errorf("DistanceAlongLocalizer = %g, want 5", d)
	}
	// North of the threshold is negative.
	if d := rwy.DistanceAlongLocalizer([2]float32{0, 2}, airport); d >= 0 {
		t.Errorf("DistanceAlongLocalizer beyond threshold = %g, want < 0", d)
	}

	// On the centerline, no deviation.
	if d := rwy.LocalizerDeviation(p, airport); math.Abs(d) > 1e-5 {
		t.Errorf("LocalizerDeviation on centerline = %g", d)
	}
	// For an aircraft inbound on final to runway 36, east of the
	// centerline is right of course, which reads positive.
	dEast := rwy.LocalizerDeviation([2]float32{1, -5}, airport)
	dWest := rwy.LocalizerDeviation([2]float32{-1, -5}, airport)
	if dEast <= 0 || dWest >= 0 {
		t.Errorf("deviations east %g west %g, want positive/negative", dEast, dWest)
	}
	if math.Abs(dEast-1) > 1e-5 || math.Abs(dWest+1) > 1e-5 {
		t.Errorf("deviation magnitudes east %g west %g, want 1, -1", dEast, dWest)
	}
}

func TestGlideslopeAltitude(t *testing.T) {
	rwy := Runway{ID: "28L", Heading: 284, GlideslopeAngle: 3}

	want := 6 * math.Tan(math.Radians(3)) * FeetPerNM
	got := rwy.GlideslopeAltitudeAt(6, 0)
	if math.Abs(got-want) > 0.01 {
		t.Errorf("GlideslopeAltitudeAt(6, 0) = %g, want %g", got, want)
	}
	if got < 1880 || got > 1940 {
		t.Errorf("GlideslopeAltitudeAt(6, 0) = %g, outside plausible band", got)
	}

	// Field elevation shifts the whole slope.
	if d := rwy.GlideslopeAltitudeAt(6, 13) - got; math.Abs(d-13) > 0.01 {
		t.Errorf("elevation offset = %g, want 13", d)
	}
	if got := rwy.GlideslopeAltitudeAt(0, 13); got != 13 {
		t.Errorf("GlideslopeAltitudeAt(0, 13) = %g, want 13", got)
	}
}

func TestWindComponents(t *testing.T) {
	rwy := Runway{ID: "36", Heading: 360}

	cases := []struct {
		windDir, windSpd     float32
		wantHead, wantCrossA float32 // crosswind compared by magnitude
	}{
		{360, 20, 20, 0},  // straight down the runway
		{180, 20, -20, 0}, // direct tailwind
		{90, 15, 0, 15},   // direct crosswind
		{270, 15, 0, 15},
		{45, 20, 20 * 0.70710678, 20 * 0.70710678},
	}
	for _, c := range cases {
		head := rwy.HeadwindComponent(c.windDir, c.windSpd)
		cross := math.Abs(rwy.CrosswindComponent(c.windDir, c.windSpd))
		if math.Abs(head-c.wantHead) > 1e-3 {
			t.Errorf("wind %g@%g: headwind %g, want %g", c.windDir, c.windSpd, head, c.wantHead)
		}
		if math.Abs(cross-c.wantCrossA) > 1e-3 {
			t.Errorf("wind %g@%g: crosswind %g, want %g", c.windDir, c.windSpd, cross, c.wantCrossA)
		}
	}
}
