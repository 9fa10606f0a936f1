// wx/wind_test.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"testing"

	"github.com/scopesim/scopesim/math"
	"github.com/scopesim/scopesim/util"
)

func TestWindLayerContainsAltitude(t *testing.T) {
	l := WindLayer{Base: 1000, Top: 5000}
	cases := []struct {
		alt  float32
		want bool
	}{
		{999, false},
		{1000, true}, // inclusive
		{3000, true},
		{5000, true}, // inclusive
		{5001, false},
	}
	for _, c := range cases {
		if got := l.ContainsAltitude(c.alt); got != c.want {
			t.Errorf("ContainsAltitude(%g) = %v, want %v", c.alt, got, c.want)
		}
	}
}

func TestWindVector(t *testing.T) {
	cases := []struct {
		dir, spd float32
		want     [2]float32
	}{
		{360, 30, [2]float32{0, -30}}, // northerly wind pushes south
		{0, 30, [2]float32{0, -30}},
		{270, 10, [2]float32{10, 0}}, // westerly pushes east
		{90, 10, [2]float32{-10, 0}},
		{180, 20, [2]float32{0, 20}},
	}
	for _, c := range cases {
		got := WindLayer{DirectionFrom: c.dir, Speed: c.spd}.Vector()
		if math.Abs(got[0]-c.want[0]) > 1e-3 || math.Abs(got[1]-c.want[1]) > 1e-3 {
			t.Errorf("wind %g@%g Vector() = %v, want %v", c.dir, c.spd, got, c.want)
		}
	}
}

func TestUVDirSpeedRoundTrip(t *testing.T) {
	for _, dir := range []float32{10, 90, 180, 270, 345} {
		for _, spd := range []float32{5, 25, 60} {
			u, v := DirSpeedToUV(dir, spd)
			gdir, gspd := UVToDirSpeed(u, v)
			if math.HeadingDifference(gdir, dir) > 1e-2 || math.Abs(gspd-spd) > 1e-2 {
				t.Errorf("round trip %g@%g gave %g@%g", dir, spd, gdir, gspd)
			}
		}
	}
}

func TestWindFieldVector(t *testing.T) {
	f := WindField{
		{DirectionFrom: 360, Speed: 30, Base: 0, Top: 5000},
		{DirectionFrom: 270, Speed: 50, Base: 5001, Top: 20000},
	}
	if got := f.WindVector(3000); math.Abs(got[1]+30) > 1e-3 {
		t.Errorf("WindVector(3000) = %v, want (0,-30)", got)
	}
	if got := f.WindVector(10000); math.Abs(got[0]-50) > 1e-3 {
		t.Errorf("WindVector(10000) = %v, want (50,0)", got)
	}
	// Outside every band there is no wind, unlike Conditions.WindAtAltitude.
	if got := f.WindVector(30000); got != ([2]float32{}) {
		t.Errorf("WindVector(30000) = %v, want zero", got)
	}
	if got := WindField(nil).WindVector(1000); got != ([2]float32{}) {
		t.Errorf("empty field WindVector = %v, want zero", got)
	}
}

func TestParseWindLayers(t *testing.T) {
	var e util.ErrorLogger
	layers := ParseWindLayers("0-3000/270/10g18, 3000-12000/290/25", &e)
	if e.HaveErrors() {
		t.Fatalf("unexpected errors: %s", e.String())
	}
	if len(layers) != 2 {
		t.Fatalf("got %d layers, want 2", len(layers))
	}
	if layers[0].DirectionFrom != 270 || layers[0].Speed != 10 || layers[0].Gust != 18 {
		t.Errorf("layer 0 = %+v", layers[0])
	}
	if layers[1].Base != 3000 || layers[1].Top != 12000 || layers[1].Gust != 0 {
		t.Errorf("layer 1 = %+v", layers[1])
	}

	for _, bad := range []string{
		"0-3000/270",         // missing speed
		"3000/270/10",        // no band
		"0-3000/380/10",      // direction out of range
		"0-3000/270/25g10",   // gust below sustained
		"5000-1000/270/10",   // base above top
		"0-3000/270/hello",   // junk speed
	} {
		var e util.ErrorLogger
		ParseWindLayers(bad, &e)
		if !e.HaveErrors() {
			t.Errorf("ParseWindLayers(%q) silently accepted", bad)
		}
	}
}
