// nav/derived.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	av "github.com/scopesim/scopesim/aviation"
	"github.com/scopesim/scopesim/math"
)

// GroundVelocity returns the aircraft's velocity over the ground in knot
// components, composed the same way Step composes it.
func (nav *Nav) GroundVelocity(wind WindSampler) [2]float32 {
	fs := &nav.FlightState
	airVec := math.Scale2f(math.SinCos(math.Radians(fs.Heading)), fs.IAS)
	if wind == nil {
		return airVec
	}
	return math.Add2f(airVec, wind.WindVector(fs.Altitude))
}

// GroundTrack returns the heading the aircraft actually makes good over the
// ground; with no wind, or no motion at all, it is the aircraft's heading.
func (nav *Nav) GroundTrack(wind WindSampler) float32 {
	gv := nav.GroundVelocity(wind)
	if math.Length2f(gv) < 0.01 {
		return nav.FlightState.Heading
	}
	return math.V2Heading(gv)
}

// HeadingError returns the shortest signed turn from the aircraft's heading
// to target; positive is a right turn.
func (fs *FlightState) HeadingError(target float32) float32 {
	return math.HeadingSignedTurn(fs.Heading, target)
}

// GlideslopeDeviation returns feet above (positive) or below the runway's
// glideslope at the aircraft's present distance along the localizer.
func (nav *Nav) GlideslopeDeviation(rwy av.Runway, airport av.Airport) float32 {
	d := rwy.DistanceAlongLocalizer(nav.FlightState.Position, airport.Position)
	return nav.FlightState.Altitude - rwy.GlideslopeAltitudeAt(d, airport.Elevation)
}

// WindCorrectionAngle returns the crab angle in degrees needed to make good
// the given course through the present wind; positive crabs right. Zero if
// the aircraft has no groundspeed.
func (nav *Nav) WindCorrectionAngle(course float32, wind WindSampler) float32 {
	gs := math.Length2f(nav.GroundVelocity(wind))
	if gs == 0 {
		return 0
	}
	var windVec [2]float32
	if wind != nil {
		windVec = wind.WindVector(nav.FlightState.Altitude)
	}
	crosswind := math.Dot(windVec, math.PerpLeft2f(math.Heading2V(course)))
	return math.Degrees(math.SafeASin(crosswind / gs))
}
