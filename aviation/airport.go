// aviation/airport.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"github.com/scopesim/scopesim/math"
)

// FeetPerNM converts between the vertical and lateral units used here.
const FeetPerNM = 6076.12

type Airport struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Position  [2]float32 `json:"position"`  // NM plane
	Elevation float32    `json:"elevation"` // feet MSL
	RunwayIDs []string   `json:"runways"`
}

// Runway describes one landing direction. It refers back to its airport by
// id; resolve through the navigation database rather than holding a
// pointer, so runways stay copyable values.
type Runway struct {
	ID              string  `json:"id"` // "28L"
	AirportID       string  `json:"airport"`
	Heading         float32 `json:"heading"`    // degrees, direction of landing traffic
	Length          float32 `json:"length"`     // feet
	Width           float32 `json:"width"`      // feet
	GlideslopeAngle float32 `json:"glideslope"` // degrees
	FAFDistance     float32 `json:"faf"`        // NM from the threshold
	ILSFreq         string  `json:"ils,omitempty"`
}

// LocalizerDirection returns the unit vector along the direction of
// landing traffic.
func (r Runway) LocalizerDirection() [2]float32 {
	return math.Heading2V(r.Heading)
}

// OutboundDirection points from the threshold back along the final
// approach course, toward arriving traffic.
func (r Runway) OutboundDirection() [2]float32 {
	return math.Scale2f(r.LocalizerDirection(), -1)
}

// GlideslopeAltitudeAt returns the on-glideslope altitude in feet MSL at
// the given distance (NM) from the threshold.
func (r Runway) GlideslopeAltitudeAt(d, airportElevation float32) float32 {
	return airportElevation + d*math.Tan(math.Radians(r.GlideslopeAngle))*FeetPerNM
}

// DistanceAlongLocalizer gives the distance of p out along the final
// approach course; positive values are on the approach side of the
// threshold.
func (r Runway) DistanceAlongLocalizer(p, airportPos [2]float32) float32 {
	return math.Dot(math.Sub2f(p, airportPos), r.OutboundDirection())
}

// LocalizerDeviation gives the lateral offset of p from the extended
// centerline in NM; positive is right of course for arriving traffic.
func (r Runway) LocalizerDeviation(p, airportPos [2]float32) float32 {
	return math.Dot(math.Sub2f(p, airportPos), math.PerpLeft2f(r.OutboundDirection()))
}

// CrosswindComponent resolves a wind (direction it blows from, speed) into
// the component across the runway; callers compare its magnitude against
// limits.
func (r Runway) CrosswindComponent(windDir, windSpeed float32) float32 {
	return windSpeed * math.Sin(math.Radians(r.Heading-windDir))
}

// HeadwindComponent resolves a wind into the along-runway component;
// positive is a headwind for landing traffic, negative a tailwind.
func (r Runway) HeadwindComponent(windDir, windSpeed float32) float32 {
	return windSpeed * math.Cos(math.Radians(r.Heading-windDir))
}
