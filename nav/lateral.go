// nav/lateral.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	av "github.com/scopesim/scopesim/aviation"
	"github.com/scopesim/scopesim/math"
)

const (
	// fixCaptureDistance is how close an aircraft must get to a direct-to
	// or hold fix before it counts as reached.
	fixCaptureDistance = 0.3 // NM

	// holdLeashDistance is how far wind may blow a holding orbit from its
	// fix before the aircraft flies back direct.
	holdLeashDistance = 3 // NM
)

// updateHeading integrates heading for one tick. Guidance precedence:
// holds, then an assigned heading, then a direct-to fix, then route
// following, then any commanded turn rate.
func (nav *Nav) updateHeading(dt float32) {
	fs := &nav.FlightState
	maxRate := nav.Perf.MaxTurnRate

	var rate float32
	switch {
	case nav.Hold != nil:
		rate = nav.holdTurnRate()

	case nav.Heading.Assigned != nil:
		rate = turnTowardRate(fs.Heading, *nav.Heading.Assigned, nav.Heading.Turn, maxRate, dt)

	case nav.Route.DirectFix != nil:
		if math.Distance2f(fs.Position, nav.Route.DirectFix.Position) < fixCaptureDistance {
			nav.Route.DirectFix = nil // reached; any route takes over next tick
		} else {
			tgt := math.VectorHeading(fs.Position, nav.Route.DirectFix.Position)
			rate = steerRate(fs.Heading, tgt, maxRate)
		}

	case nav.Route.Assigned != nil:
		if seg, ok := nav.Route.Assigned.NextFix(fs.Position); ok {
			tgt := math.VectorHeading(fs.Position, seg.Position)
			rate = steerRate(fs.Heading, tgt, maxRate)
		}
		// Past the last fix: hold heading.

	default:
		rate = math.Clamp(nav.Heading.Rate, -maxRate, maxRate)
	}

	fs.TurnRate = rate
	fs.Heading = math.NormalizeHeading(fs.Heading + rate*dt)
}

// updatePosition advances the aircraft over the ground: the airspeed vector
// along the heading plus the wind at the current altitude, both as
// per-second NM (1 kt = 1/3600 NM/s).
func (nav *Nav) updatePosition(dt float32, wind WindSampler) {
	fs := &nav.FlightState

	airVec := math.Scale2f(math.SinCos(math.Radians(fs.Heading)), fs.IAS/3600)
	var windVec [2]float32
	if wind != nil {
		windVec = math.Scale2f(wind.WindVector(fs.Altitude), 1./3600)
	}

	gv := math.Add2f(airVec, windVec)
	fs.Position = math.Add2f(fs.Position, math.Scale2f(gv, dt))
	fs.GS = math.Length2f(gv) * 3600
	fs.DistanceFlown += fs.GS / 3600 * dt
}

// steerRate is the proportional law used for fix and route guidance: turn
// at half the signed heading error per second, clamped to the envelope.
func steerRate(current, target, maxRate float32) float32 {
	return math.Clamp(0.5*math.HeadingSignedTurn(current, target), -maxRate, maxRate)
}

// turnTowardRate turns at the envelope's best rate toward an assigned
// heading, honoring a forced turn direction, without overshooting on the
// final tick.
func turnTowardRate(current, target float32, turn av.TurnDirection, maxRate, dt float32) float32 {
	var remaining float32
	switch turn {
	case av.TurnLeft:
		remaining = -math.NormalizeHeading(current - target)
	case av.TurnRight:
		remaining = math.NormalizeHeading(target - current)
	default:
		remaining = math.HeadingSignedTurn(current, target)
	}
	return math.Clamp(remaining/dt, -maxRate, maxRate)
}

// holdTurnRate gives the turn rate while holding: fly to the fix, then
// circle it at the envelope's best rate in the hold's direction. Leg timing
// is not modeled; the orbit keeps the aircraft within a couple of miles of
// the fix, which is what separation and scoring care about.
func (nav *Nav) holdTurnRate() float32 {
	fs := &nav.FlightState
	h := nav.Hold
	maxRate := nav.Perf.MaxTurnRate

	d := math.Distance2f(fs.Position, h.Fix.Position)
	if h.Orbiting && d > holdLeashDistance {
		h.Orbiting = false // blown off the fix; go back direct
	}
	if !h.Orbiting {
		if d >= fixCaptureDistance {
			return steerRate(fs.Heading, math.VectorHeading(fs.Position, h.Fix.Position), maxRate)
		}
		h.Orbiting = true
	}

	if h.Hold.TurnDirection == av.TurnLeft {
		return -maxRate
	}
	return maxRate
}
