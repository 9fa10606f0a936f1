// math/latlong.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import "fmt"

// The simulation proper works on a local nautical-mile plane; latitude and
// longitude only appear at the edges, when scenario authors give real-world
// coordinates. The conversion uses a flat-earth approximation around a
// reference point, which is plenty accurate at TRACON scale.

const NMPerLatitude = 60

// EarthRadiusMeters is the WGS84 equatorial radius.
const EarthRadiusMeters = 6378137

// Point2LL is a latitude-longitude coordinate, stored as [longitude,
// latitude] so that the x/y correspondence with plane coordinates holds.
type Point2LL [2]float32

func (p Point2LL) Longitude() float32 { return p[0] }
func (p Point2LL) Latitude() float32  { return p[1] }

func (p Point2LL) IsZero() bool {
	return p[0] == 0 && p[1] == 0
}

func (p Point2LL) String() string {
	return fmt.Sprintf("%.6f, %.6f", p[1], p[0])
}

// NMPerLongitude returns the east-west scale at the given reference point.
func NMPerLongitude(ref Point2LL) float32 {
	return NMPerLatitude * Cos(Radians(ref[1]))
}

// LL2NM converts a lat-long point into plane coordinates in nautical miles
// relative to the reference point.
func LL2NM(p Point2LL, ref Point2LL) [2]float32 {
	return [2]float32{(p[0] - ref[0]) * NMPerLongitude(ref), (p[1] - ref[1]) * NMPerLatitude}
}

// NM2LL converts plane coordinates in nautical miles relative to the
// reference point back into a lat-long point.
func NM2LL(p [2]float32, ref Point2LL) Point2LL {
	return Point2LL{ref[0] + p[0]/NMPerLongitude(ref), ref[1] + p[1]/NMPerLatitude}
}
