// sim/observe.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"strings"

	av "github.com/scopesim/scopesim/aviation"
	"github.com/scopesim/scopesim/math"
)

const (
	// MaxSimSeconds caps a policy episode at one hour of simulated time.
	MaxSimSeconds = 3600

	// AltitudeStep is how far one climb or descend action moves the target
	// altitude.
	AltitudeStep = 1000 // ft
)

// Observation is the flat per-aircraft feature view an external policy
// consumes. Distances are NM, angles degrees, speeds knots.
type Observation struct {
	Position            [2]float32
	Heading             float32
	IAS                 float32
	Altitude            float32
	VerticalRate        float32
	GroundVelocity      [2]float32
	DestinationDistance float32
	DestinationBearing  float32
	Landed              bool
}

// Vector flattens the observation into the feature order policies are
// trained against; Landed becomes 0/1.
func (o Observation) Vector() []float32 {
	landed := float32(0)
	if o.Landed {
		landed = 1
	}
	return []float32{
		o.Position[0], o.Position[1],
		o.Heading, o.IAS, o.Altitude, o.VerticalRate,
		o.GroundVelocity[0], o.GroundVelocity[1],
		o.DestinationDistance, o.DestinationBearing,
		landed,
	}
}

// Observe builds the policy observation for one aircraft.
func (s *Sim) Observe(cs av.Callsign) (Observation, error) {
	ac, err := s.GetAircraft(cs)
	if err != nil {
		return Observation{}, err
	}
	ap, err := s.DB.LookupAirport(ac.Destination)
	if err != nil {
		return Observation{}, err
	}

	fs := &ac.Nav.FlightState
	return Observation{
		Position:            fs.Position,
		Heading:             fs.Heading,
		IAS:                 fs.IAS,
		Altitude:            fs.Altitude,
		VerticalRate:        fs.VerticalRate,
		GroundVelocity:      ac.Nav.GroundVelocity(s.Weather.WindLayers),
		DestinationDistance: math.Distance2f(fs.Position, ap.Position),
		DestinationBearing:  math.VectorHeading(fs.Position, ap.Position),
		Landed:              fs.Landed,
	}, nil
}

// EpisodeOver reports whether the policy episode has used up its simulated
// time.
func (s *Sim) EpisodeOver() bool {
	return s.Steps >= MaxSimSeconds
}

// HeadingDelta is the lateral component of a policy action. The zero value
// maintains the present heading.
type HeadingDelta int

const (
	HeadingMaintain HeadingDelta = iota
	HeadingLeft                  // 10 degrees left
	HeadingHardLeft              // 20 degrees left
	HeadingRight                 // 10 degrees right
	HeadingHardRight             // 20 degrees right
)

func (d HeadingDelta) Degrees() float32 {
	return [...]float32{0, -10, -20, 10, 20}[d]
}

func (d HeadingDelta) String() string {
	return [...]string{"maintain heading", "left 10", "hard left 20",
		"right 10", "hard right 20"}[d]
}

// SpeedDelta is the speed component of a policy action.
type SpeedDelta int

const (
	SpeedMaintain SpeedDelta = iota
	SpeedSlow                // 10 knots slower
	SpeedFast                // 10 knots faster
)

func (d SpeedDelta) Knots() float32 {
	return [...]float32{0, -10, 10}[d]
}

func (d SpeedDelta) String() string {
	return [...]string{"maintain speed", "slow 10", "fast 10"}[d]
}

// VerticalDelta is the vertical component of a policy action; climbs and
// descents move the target altitude by one AltitudeStep.
type VerticalDelta int

const (
	VerticalMaintain VerticalDelta = iota
	VerticalDescend
	VerticalClimb
)

func (d VerticalDelta) Feet() float32 {
	return [...]float32{0, -AltitudeStep, AltitudeStep}[d]
}

func (d VerticalDelta) String() string {
	return [...]string{"maintain altitude", "descend", "climb"}[d]
}

// Action is one policy decision: independent heading, speed, and vertical
// deltas applied together. The zero value is a no-op.
type Action struct {
	Heading  HeadingDelta
	Speed    SpeedDelta
	Vertical VerticalDelta
}

func (a Action) String() string {
	return a.Heading.String() + ", " + a.Speed.String() + ", " + a.Vertical.String()
}

// compositeCommand bundles the clearances one action translates to so they
// charge the clearance interval once and read back as one transmission.
type compositeCommand struct {
	parts []Command
}

func (c compositeCommand) Readback() string {
	rb := make([]string, len(c.parts))
	for i, p := range c.parts {
		rb[i] = p.Readback()
	}
	return strings.Join(rb, "; ")
}

func (c compositeCommand) apply(s *Sim, ac *Aircraft) error {
	for _, p := range c.parts {
		if err := p.apply(s, ac); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAction translates a policy action into clearances relative to the
// aircraft's present state and issues them through RunCommand. A full
// no-op issues nothing and charges nothing.
func (s *Sim) ApplyAction(cs av.Callsign, action Action) error {
	ac, err := s.GetAircraft(cs)
	if err != nil {
		return err
	}

	var parts []Command
	if d := action.Heading.Degrees(); d != 0 {
		turn := av.TurnRight
		if d < 0 {
			turn = av.TurnLeft
		}
		parts = append(parts, HeadingCommand{
			Degrees: math.NormalizeHeading(ac.Heading() + d),
			Turn:    turn,
		})
	}
	if d := action.Speed.Knots(); d != 0 {
		parts = append(parts, SpeedCommand{Knots: ac.Nav.FlightState.IAS + d})
	}
	if d := action.Vertical.Feet(); d != 0 {
		parts = append(parts, AltitudeCommand{Feet: ac.Altitude() + d})
	}

	switch len(parts) {
	case 0:
		return nil
	case 1:
		return s.RunCommand(cs, parts[0])
	default:
		return s.RunCommand(cs, compositeCommand{parts: parts})
	}
}
