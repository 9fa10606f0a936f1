// aviation/sector_test.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"encoding/json"
	"testing"

	"github.com/scopesim/scopesim/math"
	"github.com/scopesim/scopesim/util"
)

func squareSector() *Sector {
	return &Sector{
		ID:    "EAST",
		Shape: SectorShapePolygon,
		Vertices: [][2]float32{
			{0, 0}, {10, 0}, {10, 10}, {0, 10},
		},
	}
}

func circleSector() *Sector {
	return &Sector{
		ID:           "WEST",
		Shape:        SectorShapeCircle,
		CircleCenter: [2]float32{-10, 0},
		Radius:       8,
	}
}

func TestSectorContainsPosition(t *testing.T) {
	sq := squareSector()
	if !sq.ContainsPosition([2]float32{5, 5}) {
		t.Errorf("square does not contain (5,5)")
	}
	if sq.ContainsPosition([2]float32{15, 5}) {
		t.Errorf("square contains (15,5)")
	}

	c := circleSector()
	if !c.ContainsPosition([2]float32{-10, 7.9}) {
		t.Errorf("circle does not contain interior point")
	}
	if !c.ContainsPosition([2]float32{-2, 0}) {
		t.Errorf("circle boundary point not contained")
	}
	if c.ContainsPosition([2]float32{-1, 0}) {
		t.Errorf("circle contains exterior point")
	}
}

func TestSectorAltitudeBand(t *testing.T) {
	floor, ceiling := 5000, 12000
	s := squareSector()
	s.Floor, s.Ceiling = &floor, &ceiling

	p := [2]float32{5, 5}
	cases := []struct {
		alt  float32
		want bool
	}{
		{4999, false},
		{5000, true},
		{8000, true},
		{12000, true},
		{12001, false},
	}
	for _, c := range cases {
		if got := s.ContainsAircraft(p, c.alt); got != c.want {
			t.Errorf("ContainsAircraft(alt %g) = %v, want %v", c.alt, got, c.want)
		}
	}

	// Unconstrained sides.
	s.Floor = nil
	if !s.ContainsAircraft(p, 0) {
		t.Errorf("nil floor should not constrain")
	}
	s.Ceiling = nil
	if !s.ContainsAircraft(p, 60000) {
		t.Errorf("nil ceiling should not constrain")
	}
}

func TestSectorDistanceToBoundary(t *testing.T) {
	sq := squareSector()
	cases := []struct {
		p    [2]float32
		want float32
	}{
		{[2]float32{5, 5}, 5},  // center of the square
		{[2]float32{1, 5}, 1},  // near the west edge
		{[2]float32{12, 5}, 2}, // outside, east
	}
	for _, c := range cases {
		if got := sq.DistanceToBoundary(c.p); math.Abs(got-c.want) > 1e-5 {
			t.Errorf("DistanceToBoundary(%v) = %g, want %g", c.p, got, c.want)
		}
	}

	c := circleSector()
	if got := c.DistanceToBoundary([2]float32{-10, 0}); math.Abs(got-8) > 1e-5 {
		t.Errorf("circle center boundary distance = %g, want 8", got)
	}
	if got := c.DistanceToBoundary([2]float32{0, 0}); math.Abs(got-2) > 1e-5 {
		t.Errorf("circle outside boundary distance = %g, want 2", got)
	}
}

func TestSectorCenter(t *testing.T) {
	sq := squareSector()
	if ctr := sq.Center(); math.Abs(ctr[0]-5) > 1e-5 || math.Abs(ctr[1]-5) > 1e-5 {
		t.Errorf("square Center = %v, want (5,5)", ctr)
	}
	c := circleSector()
	if ctr := c.Center(); ctr != c.CircleCenter {
		t.Errorf("circle Center = %v", ctr)
	}
}

func TestSectorShapeJSON(t *testing.T) {
	var s Sector
	if err := json.Unmarshal([]byte(`{"id":"T","shape":"circle","center":[1,2],"radius":5}`), &s); err != nil {
		t.Fatal(err)
	}
	if s.Shape != SectorShapeCircle || s.Radius != 5 {
		t.Errorf("decoded sector = %+v", s)
	}

	b, err := json.Marshal(s.Shape)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"circle"` {
		t.Errorf("marshaled shape = %s", b)
	}

	if err := json.Unmarshal([]byte(`{"shape":"blob"}`), &s); err == nil {
		t.Errorf("bogus shape accepted")
	}
}

func TestSectorPostDeserialize(t *testing.T) {
	check := func(s *Sector, wantErr bool) {
		t.Helper()
		var e util.ErrorLogger
		s.PostDeserialize(&e)
		if e.HaveErrors() != wantErr {
			t.Errorf("sector %+v: errors %v, want %v (%s)", s, e.HaveErrors(), wantErr, e.String())
		}
	}

	check(squareSector(), false)
	check(circleSector(), false)

	check(&Sector{ID: "X", Shape: SectorShapeCircle}, true)                                    // no radius
	check(&Sector{ID: "X", Shape: SectorShapePolygon, Vertices: [][2]float32{{0, 0}}}, true)   // too few vertices
	check(&Sector{ID: "X"}, true)                                                              // no shape
	check(&Sector{Shape: SectorShapeCircle, Radius: 5}, true)                                  // no id
	both := circleSector()
	both.Vertices = [][2]float32{{0, 0}, {1, 0}, {1, 1}}
	check(both, true) // both boundary kinds

	inverted := squareSector()
	floor, ceiling := 10000, 2000
	inverted.Floor, inverted.Ceiling = &floor, &ceiling
	check(inverted, true)
}
