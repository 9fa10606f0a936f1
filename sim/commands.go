// sim/commands.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"strings"

	av "github.com/scopesim/scopesim/aviation"
	"github.com/scopesim/scopesim/math"
)

// Command is one controller instruction for an aircraft. Readback is the
// pilot's acknowledgment; commands are issued through Sim.RunCommand, which
// owns validation, rate limiting, and bookkeeping.
type Command interface {
	Readback() string
	apply(s *Sim, ac *Aircraft) error
}

// RunCommand issues a clearance to an aircraft: it validates the target,
// enforces the per-aircraft clearance interval, applies the command, and
// charges it against the aircraft's command count.
func (s *Sim) RunCommand(cs av.Callsign, cmd Command) error {
	ac, ok := s.Aircraft[cs]
	if !ok {
		return fmt.Errorf("%v: %w", cs, ErrUnknownAircraft)
	}
	if ac.Landed() {
		return fmt.Errorf("%v: %w", cs, ErrAircraftLanded)
	}
	if s.ClearanceInterval > 0 {
		if last, ok := s.lastClearance[cs]; ok {
			if wait := s.ClearanceInterval - s.SimTime.Sub(last); wait > 0 {
				return fmt.Errorf("%v: %v to go: %w", cs, wait, ErrCommandTooSoon)
			}
		}
	}

	if err := cmd.apply(s, ac); err != nil {
		return err
	}

	s.lastClearance[cs] = s.SimTime
	_ = s.Scoring.RecordCommand(cs)
	s.eventStream.Post(Event{Type: ClearanceIssuedEvent, Callsign: cs,
		Message: cmd.Readback(), Time: s.SimTime})
	s.lg.Info("clearance", slog.String("callsign", string(cs)),
		slog.String("readback", cmd.Readback()))
	return nil
}

// HeadingCommand turns the aircraft to a heading, optionally forcing the
// turn direction.
type HeadingCommand struct {
	Degrees float32
	Turn    av.TurnDirection
}

func (c HeadingCommand) Readback() string {
	hdg := int(math.NormalizeHeading(c.Degrees)+0.5) % 360
	switch c.Turn {
	case av.TurnLeft:
		return fmt.Sprintf("Turn left heading %03d", hdg)
	case av.TurnRight:
		return fmt.Sprintf("Turn right heading %03d", hdg)
	default:
		return fmt.Sprintf("Fly heading %03d", hdg)
	}
}

func (c HeadingCommand) apply(s *Sim, ac *Aircraft) error {
	ac.Nav.AssignHeading(c.Degrees, c.Turn)
	return nil
}

// AltitudeCommand assigns a target altitude in feet.
type AltitudeCommand struct {
	Feet float32
}

func (c AltitudeCommand) Readback() string {
	return fmt.Sprintf("Maintain %.0f", c.Feet)
}

func (c AltitudeCommand) apply(s *Sim, ac *Aircraft) error {
	ac.Nav.AssignAltitude(c.Feet)
	return nil
}

// SpeedCommand assigns a target indicated airspeed in knots.
type SpeedCommand struct {
	Knots float32
}

func (c SpeedCommand) Readback() string {
	return fmt.Sprintf("Maintain %.0f knots", c.Knots)
}

func (c SpeedCommand) apply(s *Sim, ac *Aircraft) error {
	ac.Nav.AssignSpeed(c.Knots)
	return nil
}

// DirectCommand sends the aircraft direct to a fix, clearing any assigned
// heading or hold.
type DirectCommand struct {
	Fix string
}

func (c DirectCommand) Readback() string {
	return "Direct " + strings.ToUpper(c.Fix)
}

func (c DirectCommand) apply(s *Sim, ac *Aircraft) error {
	fix, err := s.DB.LookupFix(c.Fix)
	if err != nil {
		return err
	}
	ac.Nav.FlyDirect(fix)
	return nil
}

// ContactCommand hands the aircraft off to another sector; switching the
// frequency initiates and completes the transfer in one step.
type ContactCommand struct {
	Sector string
}

func (c ContactCommand) Readback() string {
	return "Contact " + c.Sector
}

func (c ContactCommand) apply(s *Sim, ac *Aircraft) error {
	if _, err := s.Sectors.InitiateHandoff(ac.Callsign, c.Sector, s.SimTime); err != nil {
		return err
	}
	if _, err := s.Sectors.AcceptHandoff(ac.Callsign, s.SimTime); err != nil {
		return err
	}
	s.Scoring.RecordHandoff(ac.Callsign, s.SimTime)
	return nil
}

// ApproachCommand clears the aircraft for the approach: route it over the
// final approach fix to the threshold, descend it to the glideslope
// intercept altitude, and slow it to approach speed. An empty Runway means
// the active runway.
type ApproachCommand struct {
	Runway string
}

func (c ApproachCommand) Readback() string {
	if c.Runway == "" {
		return "Cleared approach"
	}
	return fmt.Sprintf("Cleared runway %s approach", strings.ToUpper(c.Runway))
}

func (c ApproachCommand) apply(s *Sim, ac *Aircraft) error {
	id := c.Runway
	if id == "" {
		if id = s.Runways.ActiveRunway; id == "" {
			return ErrNoActiveRunway
		}
	}
	r, err := s.DB.LookupRunway(id)
	if err != nil {
		return err
	}
	ap, err := s.DB.LookupAirport(r.AirportID)
	if err != nil {
		return err
	}

	faf := math.Add2f(ap.Position, math.Scale2f(r.OutboundDirection(), r.FAFDistance))
	fafAlt := r.GlideslopeAltitudeAt(r.FAFDistance, ap.Elevation)

	route := &av.Route{}
	route.AddFix(av.Fix{ID: "FF" + r.ID, Type: av.FixWaypoint, Position: faf}, &fafAlt, nil)
	route.AddFix(av.Fix{ID: "RW" + r.ID, Type: av.FixWaypoint, Position: ap.Position}, nil, nil)

	ac.Nav.FollowRoute(route)
	ac.Nav.AssignAltitude(fafAlt)
	ac.Nav.AssignSpeed(ac.Nav.Perf.ApproachSpeed)
	return nil
}

// HoldCommand puts the aircraft in a holding pattern at a fix, inbound on
// its present bearing to the fix. The zero Turn holds standard right turns.
type HoldCommand struct {
	Fix  string
	Turn av.TurnDirection
}

func (c HoldCommand) Readback() string {
	if c.Turn == av.TurnLeft {
		return fmt.Sprintf("Hold at %s, left turns", strings.ToUpper(c.Fix))
	}
	return fmt.Sprintf("Hold at %s, right turns", strings.ToUpper(c.Fix))
}

func (c HoldCommand) apply(s *Sim, ac *Aircraft) error {
	fix, err := s.DB.LookupFix(c.Fix)
	if err != nil {
		return err
	}
	hold := av.Hold{
		Fix:           fix.ID,
		InboundCourse: math.VectorHeading(ac.Position(), fix.Position),
		TurnDirection: c.Turn,
	}
	entry := ac.Nav.EnterHold(hold, fix)
	s.lg.Debug("hold assigned", slog.String("callsign", string(ac.Callsign)),
		slog.String("fix", fix.ID), slog.String("entry", entry.String()))
	return nil
}

// ExitHoldCommand releases the aircraft from its hold; route guidance, if
// any, resumes, otherwise it keeps its current heading.
type ExitHoldCommand struct{}

func (c ExitHoldCommand) Readback() string {
	return "Exit hold, resume own navigation"
}

func (c ExitHoldCommand) apply(s *Sim, ac *Aircraft) error {
	if ac.Nav.Hold == nil {
		return fmt.Errorf("%v: %w", ac.Callsign, ErrNotHolding)
	}
	ac.Nav.ExitHold()
	return nil
}
