// aviation/sector.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"

	"github.com/scopesim/scopesim/math"
	"github.com/scopesim/scopesim/util"
)

type SectorShape int

const (
	SectorShapeUnknown SectorShape = iota
	SectorShapePolygon
	SectorShapeCircle
)

func (t SectorShape) MarshalJSON() ([]byte, error) {
	switch t {
	case SectorShapePolygon:
		return []byte(`"polygon"`), nil
	case SectorShapeCircle:
		return []byte(`"circle"`), nil
	default:
		return nil, fmt.Errorf("%d: unknown sector shape", int(t))
	}
}

func (t *SectorShape) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"polygon"`:
		*t = SectorShapePolygon
		return nil
	case `"circle"`:
		*t = SectorShapeCircle
		return nil
	default:
		return fmt.Errorf("%s: unknown sector shape", string(b))
	}
}

// Sector is one controller's volume of airspace: a lateral boundary that
// is exactly one of a circle or a polygon, plus an optional altitude band.
// A nil Floor or Ceiling leaves that side unconstrained.
type Sector struct {
	ID        string      `json:"id"`
	Name      string      `json:"name,omitempty"`
	Frequency Frequency   `json:"frequency,omitempty"`
	Shape     SectorShape `json:"shape"`
	Adjacent  []string    `json:"adjacent,omitempty"`
	Floor     *int        `json:"floor,omitempty"`
	Ceiling   *int        `json:"ceiling,omitempty"`
	// Polygon
	Vertices [][2]float32 `json:"vertices,omitempty"`
	// Circle
	CircleCenter [2]float32 `json:"center,omitempty"`
	Radius       float32    `json:"radius,omitempty"`
}

// ContainsPosition reports lateral containment only; the boundary itself
// counts as inside for circles.
func (s *Sector) ContainsPosition(p [2]float32) bool {
	switch s.Shape {
	case SectorShapeCircle:
		return math.Distance2f(p, s.CircleCenter) <= s.Radius
	case SectorShapePolygon:
		return math.PointInPolygon(p, s.Vertices)
	default:
		return false
	}
}

// ContainsAircraft adds the altitude band to lateral containment; both
// bounds are inclusive.
func (s *Sector) ContainsAircraft(p [2]float32, alt float32) bool {
	if s.Floor != nil && alt < float32(*s.Floor) {
		return false
	}
	if s.Ceiling != nil && alt > float32(*s.Ceiling) {
		return false
	}
	return s.ContainsPosition(p)
}

// DistanceToBoundary returns the lateral distance in NM from p to the
// sector's boundary, whether p is inside or out.
func (s *Sector) DistanceToBoundary(p [2]float32) float32 {
	switch s.Shape {
	case SectorShapeCircle:
		return math.PointCircleDistance(p, s.CircleCenter, s.Radius)
	case SectorShapePolygon:
		return math.PointPolygonDistance(p, s.Vertices)
	default:
		return 0
	}
}

// Center returns the circle center or the polygon's vertex average.
func (s *Sector) Center() [2]float32 {
	if s.Shape == SectorShapeCircle {
		return s.CircleCenter
	}
	var c [2]float32
	for _, v := range s.Vertices {
		c = math.Add2f(c, v)
	}
	if len(s.Vertices) > 0 {
		c = math.Scale2f(c, 1/float32(len(s.Vertices)))
	}
	return c
}

func (s *Sector) PostDeserialize(e *util.ErrorLogger) {
	if s.ID == "" {
		e.ErrorString(`must provide "id" with sector`)
	}
	e.Push("sector " + s.ID)
	defer e.Pop()

	switch s.Shape {
	case SectorShapeCircle:
		if s.Radius <= 0 {
			e.ErrorString("circle radius %v must be > 0", s.Radius)
		}
		if len(s.Vertices) > 0 {
			e.ErrorString("cannot give both circle and polygon boundaries")
		}
	case SectorShapePolygon:
		if len(s.Vertices) < 3 {
			e.ErrorString("polygon must have at least 3 vertices")
		}
		if s.Radius != 0 {
			e.ErrorString("cannot give both circle and polygon boundaries")
		}
	default:
		e.ErrorString(`must specify "shape" as "circle" or "polygon"`)
	}

	if s.Floor != nil && s.Ceiling != nil && *s.Floor > *s.Ceiling {
		e.ErrorString("floor %d is above ceiling %d", *s.Floor, *s.Ceiling)
	}
}
