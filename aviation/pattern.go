// aviation/pattern.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"github.com/scopesim/scopesim/math"
)

type VFRFlightType int

const (
	VFRGeneralAviation VFRFlightType = iota
	VFRCommuter
	VFRBusinessJet
	VFRCargo
)

func (t VFRFlightType) String() string {
	return [...]string{"general aviation", "commuter", "business jet", "cargo"}[t]
}

// VFRProfile gives the typical speeds and altitudes flown by one class of
// VFR traffic, plus the weather minimums it needs.
type VFRProfile struct {
	Type           VFRFlightType
	CruiseSpeed    float32 // knots
	CruiseAltitude float32 // feet
	MaxAltitude    float32 // VFR altitude ceiling
	MinCeiling     float32 // minimum cloud ceiling, feet
	MinVisibility  float32 // statute miles
}

func VFRProfiles() []VFRProfile {
	return []VFRProfile{
		{VFRGeneralAviation, 100, 3000, 8000, 1000, 3},
		{VFRCommuter, 120, 5000, 9000, 1000, 3},
		{VFRBusinessJet, 200, 8000, 15000, 1000, 3},
		{VFRCargo, 140, 4000, 9000, 1000, 3},
	}
}

// Standard left-hand pattern dimensions.
const (
	DownwindAbeamNM    = 1.5
	DownwindAltitude   = 1000 // feet AGL
	BaseLegNM          = 1.0
	BaseAltitude       = 800
	StraightInNM       = 2.0
	StraightInAltitude = 1500
)

// DownwindEntry places an aircraft abeam the field on the downwind leg of
// a left-hand pattern: offset to the pattern side, flying opposite the
// runway heading. Returns position, heading, and pattern altitude AGL.
func DownwindEntry(airportPos [2]float32, rwyHeading float32) ([2]float32, float32, float32) {
	abeam := math.Heading2V(math.NormalizeHeading(rwyHeading - 90))
	p := math.Add2f(airportPos, math.Scale2f(abeam, DownwindAbeamNM))
	return p, math.OppositeHeading(rwyHeading), DownwindAltitude
}

// BaseEntry places an aircraft on the base leg, a mile out and a mile to
// the pattern side, heading across the final approach course.
func BaseEntry(airportPos [2]float32, rwyHeading float32) ([2]float32, float32, float32) {
	out := math.Heading2V(math.OppositeHeading(rwyHeading))
	side := math.Heading2V(math.NormalizeHeading(rwyHeading - 90))
	p := math.Add2f(airportPos, math.Add2f(math.Scale2f(out, BaseLegNM), math.Scale2f(side, BaseLegNM)))
	return p, math.NormalizeHeading(rwyHeading + 90), BaseAltitude
}

// StraightInEntry places an aircraft on a two-mile final.
func StraightInEntry(airportPos [2]float32, rwyHeading float32) ([2]float32, float32, float32) {
	out := math.Heading2V(math.OppositeHeading(rwyHeading))
	p := math.Add2f(airportPos, math.Scale2f(out, StraightInNM))
	return p, rwyHeading, StraightInAltitude
}
