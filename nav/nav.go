// nav/nav.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package nav implements aircraft kinematics and guidance: per-tick
// integration of speed, altitude, heading, and position through wind, plus
// the controller-assignable targets (headings, speeds, altitudes, direct-to
// fixes, routes, holds) that steer it. The sim package owns aircraft
// identity and everything above the flight deck.
package nav

import (
	"fmt"
	"log/slog"
	"strings"

	av "github.com/scopesim/scopesim/aviation"
	"github.com/scopesim/scopesim/math"

	"github.com/brunoga/deep"
)

// WindSampler yields the wind at an altitude in knot components; a zero
// vector is calm air. wx.WindField implements it for the integrator, which
// flies through no wind at all outside every layer's band.
type WindSampler interface {
	WindVector(altitude float32) [2]float32
}

// Performance is an aircraft's envelope. Clearances are clamped against it
// and integration never takes the flight state outside it.
type Performance struct {
	MinSpeed         float32 `json:"min_speed"`          // kt
	MaxSpeed         float32 `json:"max_speed"`          // kt
	ApproachSpeed    float32 `json:"approach_speed"`     // kt; also the landing speed gate
	MaxTurnRate      float32 `json:"max_turn_rate"`      // deg/s
	MaxAccel         float32 `json:"max_accel"`          // kt/s
	MaxVerticalSpeed float32 `json:"max_vertical_speed"` // fpm
	Ceiling          float32 `json:"ceiling"`            // ft
	Landing          LandingLimits
}

// LandingLimits gate CheckLanding: all of them must hold at the moment the
// aircraft is inside the capture radius.
type LandingLimits struct {
	Radius           float32 `json:"radius"`             // NM
	MaxAltitude      float32 `json:"max_altitude"`       // ft
	MaxVerticalSpeed float32 `json:"max_vertical_speed"` // fpm, magnitude
	MaxTurnRate      float32 `json:"max_turn_rate"`      // deg/s, magnitude
}

// DefaultPerformance is the envelope used when a scenario doesn't specify
// one: a generic terminal-area turboprop/light jet.
func DefaultPerformance() Performance {
	return Performance{
		MinSpeed:         120,
		MaxSpeed:         250,
		ApproachSpeed:    160,
		MaxTurnRate:      3,
		MaxAccel:         5,
		MaxVerticalSpeed: 2500,
		Ceiling:          18000,
		Landing: LandingLimits{
			Radius:           1,
			MaxAltitude:      2000,
			MaxVerticalSpeed: 1500,
			MaxTurnRate:      3,
		},
	}
}

// FlightState is the aircraft's physical state; Step integrates it.
type FlightState struct {
	Position      [2]float32 // NM east/north of the scenario origin
	Heading       float32    // degrees, [0,360)
	IAS           float32    // kt
	GS            float32    // kt, derived each Step
	Altitude      float32    // ft
	VerticalRate  float32    // fpm, signed
	TurnRate      float32    // deg/s, signed
	Acceleration  float32    // kt/s, signed
	DistanceFlown float32    // NM over the ground
	Landed        bool
}

func (fs *FlightState) Summary() string {
	return fmt.Sprintf("heading %03d altitude %.0f ias %.1f gs %.1f",
		int(fs.Heading), fs.Altitude, fs.IAS, fs.GS)
}

func (fs FlightState) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("position", fs.Position),
		slog.Float64("heading", float64(fs.Heading)),
		slog.Float64("altitude", float64(fs.Altitude)),
		slog.Float64("ias", float64(fs.IAS)),
		slog.Float64("gs", float64(fs.GS)),
		slog.Bool("landed", fs.Landed))
}

// State related to navigation. Pointers are used for optional values; nil
// -> unset/unspecified.
type Nav struct {
	FlightState FlightState
	Perf        Performance
	Altitude    NavAltitude
	Speed       NavSpeed
	Heading     NavHeading
	Route       NavRoute
	Hold        *NavHold
}

type NavAltitude struct {
	Assigned *float32 // ft, controller assigned
	Rate     float32  // fpm command flown when nothing is assigned
}

type NavSpeed struct {
	Assigned *float32 // kt, controller assigned
	Accel    float32  // kt/s command flown when nothing is assigned
}

type NavHeading struct {
	Assigned *float32         // degrees, controller assigned
	Turn     av.TurnDirection // how to get there; zero value turns the short way
	Rate     float32          // deg/s command flown when nothing else steers
}

// NavRoute carries lateral guidance toward fixes: a route to follow and/or
// a single direct-to target, which overrides the route until reached.
type NavRoute struct {
	Assigned  *av.Route
	DirectFix *av.Fix
}

// NavHold is an active holding pattern: the aircraft flies direct to the
// fix, then circles at its best turn rate in the hold's direction until
// released.
type NavHold struct {
	Hold     av.Hold
	Fix      av.Fix
	Entry    av.HoldEntry // classified when the hold was assigned
	Orbiting bool         // reached the fix and now circling it
}

// MakeNav returns a Nav flying straight and level at the given position,
// heading, altitude, and speed, with initial values pulled inside the
// envelope.
func MakeNav(pos [2]float32, hdg, alt, ias float32, perf Performance) *Nav {
	nav := &Nav{Perf: perf}
	nav.FlightState = FlightState{
		Position: pos,
		Heading:  math.NormalizeHeading(hdg),
		Altitude: math.Clamp(alt, 0, perf.Ceiling),
		IAS:      math.Clamp(ias, perf.MinSpeed, perf.MaxSpeed),
	}
	// Better than leaving GS 0 for the first tick, which leads to Inf and
	// NaN cases downstream.
	nav.FlightState.GS = nav.FlightState.IAS
	return nav
}

// ApplyClearance sets the three rate commands, each clamped to the
// envelope. It cancels target-seeking: the commanded rates are flown until
// new targets are assigned. Holds and routes are not disturbed; they still
// take precedence for lateral guidance.
func (nav *Nav) ApplyClearance(turnRate, accel, verticalSpeed float32) {
	p := &nav.Perf
	nav.Heading.Assigned = nil
	nav.Heading.Rate = math.Clamp(turnRate, -p.MaxTurnRate, p.MaxTurnRate)
	nav.Speed.Assigned = nil
	nav.Speed.Accel = math.Clamp(accel, -p.MaxAccel, p.MaxAccel)
	nav.Altitude.Assigned = nil
	nav.Altitude.Rate = math.Clamp(verticalSpeed, -p.MaxVerticalSpeed, p.MaxVerticalSpeed)
}

// AssignHeading sets a target heading; the aircraft turns toward it at its
// best rate in the given direction. Any hold is canceled.
func (nav *Nav) AssignHeading(hdg float32, turn av.TurnDirection) {
	hdg = math.NormalizeHeading(hdg)
	nav.Heading = NavHeading{Assigned: &hdg, Turn: turn}
	nav.Hold = nil
}

// AssignSpeed sets a target indicated airspeed, clamped into the envelope.
func (nav *Nav) AssignSpeed(kts float32) {
	kts = math.Clamp(kts, nav.Perf.MinSpeed, nav.Perf.MaxSpeed)
	nav.Speed = NavSpeed{Assigned: &kts}
}

// AssignAltitude sets a target altitude, clamped to what the aircraft can
// fly.
func (nav *Nav) AssignAltitude(ft float32) {
	ft = math.Clamp(ft, 0, nav.Perf.Ceiling)
	nav.Altitude = NavAltitude{Assigned: &ft}
}

// FlyDirect aims the aircraft at the given fix, overriding route guidance
// until the fix is reached. It clears any assigned heading or hold.
func (nav *Nav) FlyDirect(fix av.Fix) {
	nav.Heading.Assigned = nil
	nav.Hold = nil
	nav.Route.DirectFix = &fix
}

// FollowRoute assigns a route for the aircraft to fly, clearing any
// assigned heading, direct-to, or hold.
func (nav *Nav) FollowRoute(route *av.Route) {
	nav.Heading.Assigned = nil
	nav.Hold = nil
	nav.Route = NavRoute{Assigned: route}
}

// EnterHold starts a holding pattern at the given fix and returns the entry
// a pilot would read back for the aircraft's present heading. The aircraft
// slows to the hold's maximum speed on its own.
func (nav *Nav) EnterHold(hold av.Hold, fix av.Fix) av.HoldEntry {
	entry := hold.Entry(nav.FlightState.Heading)
	nav.Heading.Assigned = nil
	nav.Route.DirectFix = nil
	nav.Hold = &NavHold{Hold: hold, Fix: fix, Entry: entry}

	if spd := hold.Speed(nav.FlightState.Altitude); nav.Speed.Assigned == nil || *nav.Speed.Assigned > spd {
		s := math.Max(spd, nav.Perf.MinSpeed)
		nav.Speed.Assigned = &s
	}
	return entry
}

// ExitHold releases the aircraft from its hold; it keeps its current
// heading (or resumes its route) until given something else to do.
func (nav *Nav) ExitHold() {
	nav.Hold = nil
}

// ResumeOwnNavigation drops an assigned heading or turn-rate command so
// that route guidance, if any, takes over again.
func (nav *Nav) ResumeOwnNavigation() {
	nav.Heading = NavHeading{}
}

// Step advances the aircraft dt seconds through the given wind (which may
// be nil for calm air), integrating speed, then altitude, then heading,
// then position. Landed aircraft don't move.
func (nav *Nav) Step(dt float32, wind WindSampler) {
	if nav.FlightState.Landed || dt <= 0 {
		return
	}
	nav.updateSpeed(dt)
	nav.updateAltitude(dt)
	nav.updateHeading(dt)
	nav.updatePosition(dt, wind)
}

// CheckLanding reports whether the aircraft has just landed at the given
// airport position: inside the capture radius, low, slow, and stable. On
// success it latches the landed flag; an aircraft lands at most once. A
// radius <= 0 uses the envelope's default capture radius.
func (nav *Nav) CheckLanding(airport [2]float32, radius float32) bool {
	fs := &nav.FlightState
	lim := nav.Perf.Landing
	if radius <= 0 {
		radius = lim.Radius
	}
	if fs.Landed ||
		math.Distance2f(fs.Position, airport) > radius ||
		fs.Altitude > lim.MaxAltitude ||
		math.Abs(fs.VerticalRate) > lim.MaxVerticalSpeed ||
		math.Abs(fs.TurnRate) > lim.MaxTurnRate ||
		fs.IAS > nav.Perf.ApproachSpeed {
		return false
	}
	fs.Landed = true
	return true
}

// Snapshot captures all controller-modifiable state in Nav for rollback
// purposes. It does NOT include FlightState (the aircraft's physical
// position/heading/altitude) - only control assignments.
type Snapshot struct {
	Altitude NavAltitude
	Speed    NavSpeed
	Heading  NavHeading
	Route    NavRoute
	Hold     *NavHold
}

// TakeSnapshot captures the current control assignments for later rollback.
func (nav *Nav) TakeSnapshot() Snapshot {
	return deep.MustCopy(Snapshot{
		Altitude: nav.Altitude,
		Speed:    nav.Speed,
		Heading:  nav.Heading,
		Route:    nav.Route,
		Hold:     nav.Hold,
	})
}

// RestoreSnapshot restores control assignments from a previously captured
// snapshot. The aircraft's physical state is NOT restored.
func (nav *Nav) RestoreSnapshot(snap Snapshot) {
	nav.Altitude = snap.Altitude
	nav.Speed = snap.Speed
	nav.Heading = snap.Heading
	nav.Route = snap.Route
	nav.Hold = snap.Hold
}

// Summary gives a one-line account of the aircraft's state and targets for
// logs and the scope.
func (nav *Nav) Summary() string {
	var sb strings.Builder
	fs := &nav.FlightState
	fmt.Fprintf(&sb, "hdg %03d %.0fkt %.0fft", int(fs.Heading+0.5)%360, fs.IAS, fs.Altitude)
	if fs.Landed {
		sb.WriteString(" [landed]")
		return sb.String()
	}
	if a := nav.Heading.Assigned; a != nil {
		fmt.Fprintf(&sb, ", assigned heading %03d", int(*a+0.5)%360)
	}
	if a := nav.Speed.Assigned; a != nil {
		fmt.Fprintf(&sb, ", assigned speed %.0f", *a)
	}
	if a := nav.Altitude.Assigned; a != nil {
		fmt.Fprintf(&sb, ", assigned altitude %.0f", *a)
	}
	if nav.Hold != nil {
		fmt.Fprintf(&sb, ", holding at %s (%s entry)", nav.Hold.Fix.ID, nav.Hold.Entry)
	} else if d := nav.Route.DirectFix; d != nil {
		fmt.Fprintf(&sb, ", direct %s", d.ID)
	} else if r := nav.Route.Assigned; r != nil {
		fmt.Fprintf(&sb, ", on route %s", r.Summary())
	}
	return sb.String()
}
