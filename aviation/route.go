// aviation/route.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"strings"

	"github.com/scopesim/scopesim/math"
)

type FixType int

const (
	FixVOR FixType = iota
	FixNDB
	FixWaypoint
	FixAirport
)

func (t FixType) String() string {
	return [...]string{"VOR", "NDB", "WAYPOINT", "AIRPORT"}[t]
}

func (t FixType) MarshalJSON() ([]byte, error) {
	if t < FixVOR || t > FixAirport {
		return nil, fmt.Errorf("%d: unknown fix type", int(t))
	}
	return []byte(`"` + t.String() + `"`), nil
}

func (t *FixType) UnmarshalJSON(b []byte) error {
	for ft := FixVOR; ft <= FixAirport; ft++ {
		if string(b) == `"`+ft.String()+`"` {
			*t = ft
			return nil
		}
	}
	return fmt.Errorf("%s: unknown fix type", string(b))
}

// Fix is a named point in the NM plane. Identifiers are stored uppercased;
// database lookups are case-insensitive.
type Fix struct {
	ID       string     `json:"id"`
	Type     FixType    `json:"type"`
	Position [2]float32 `json:"position"`
}

// RouteSegment is one leg of a route: the fix it leads to, plus the
// distance and course flown from the previous fix. Both are zero for the
// first segment. Restrictions are optional; nil means unconstrained.
type RouteSegment struct {
	Fix      string     `json:"fix"`
	Position [2]float32 `json:"position"`
	Distance float32    `json:"distance"` // NM from the previous fix
	Course   float32    `json:"course"`   // degrees from the previous fix
	Altitude *float32   `json:"altitude,omitempty"`
	Speed    *float32   `json:"speed,omitempty"`
}

type Route struct {
	Segments []RouteSegment `json:"segments"`
}

// AddFix appends a fix to the route, computing the leg distance and course
// from the previous fix.
func (r *Route) AddFix(f Fix, altitude, speed *float32) {
	seg := RouteSegment{Fix: f.ID, Position: f.Position, Altitude: altitude, Speed: speed}
	if n := len(r.Segments); n > 0 {
		prev := r.Segments[n-1]
		seg.Distance = math.Distance2f(prev.Position, f.Position)
		seg.Course = math.VectorHeading(prev.Position, f.Position)
	}
	r.Segments = append(r.Segments, seg)
}

// NextFix returns the segment to fly toward from the given position: the
// successor of whichever fix is currently nearest. Note that this is a
// nearest-fix search, not tracked progress, so an aircraft that drifts
// close to an earlier fix is sent back to that leg; downstream tuning
// depends on this behavior, so don't "fix" it.
func (r *Route) NextFix(p [2]float32) (RouteSegment, bool) {
	if len(r.Segments) == 0 {
		return RouteSegment{}, false
	}

	nearest, dist := 0, math.Distance2f(p, r.Segments[0].Position)
	for i, seg := range r.Segments[1:] {
		if d := math.Distance2f(p, seg.Position); d < dist {
			nearest, dist = i+1, d
		}
	}

	if nearest+1 < len(r.Segments) {
		return r.Segments[nearest+1], true
	}
	return RouteSegment{}, false
}

// TotalDistance returns the along-route distance in NM.
func (r *Route) TotalDistance() float32 {
	var d float32
	for _, seg := range r.Segments {
		d += seg.Distance
	}
	return d
}

func (r *Route) Summary() string {
	if len(r.Segments) == 0 {
		return "(empty route)"
	}
	fixes := make([]string, len(r.Segments))
	for i, seg := range r.Segments {
		fixes[i] = seg.Fix
	}
	return fmt.Sprintf("%s (%.1f nm)", strings.Join(fixes, " "), r.TotalDistance())
}

type ProcedureType int

const (
	ProcedureSID ProcedureType = iota
	ProcedureSTAR
	ProcedureApproach
)

func (t ProcedureType) String() string {
	return [...]string{"SID", "STAR", "APPROACH"}[t]
}

func (t ProcedureType) MarshalJSON() ([]byte, error) {
	if t < ProcedureSID || t > ProcedureApproach {
		return nil, fmt.Errorf("%d: unknown procedure type", int(t))
	}
	return []byte(`"` + t.String() + `"`), nil
}

func (t *ProcedureType) UnmarshalJSON(b []byte) error {
	for pt := ProcedureSID; pt <= ProcedureApproach; pt++ {
		if string(b) == `"`+pt.String()+`"` {
			*t = pt
			return nil
		}
	}
	return fmt.Errorf("%s: unknown procedure type", string(b))
}

// Procedure is a published route, optionally with named transitions that
// feed the base route from different entry fixes.
type Procedure struct {
	Name        string           `json:"name"`
	Type        ProcedureType    `json:"type"`
	Runway      string           `json:"runway,omitempty"`
	Fixes       []Fix            `json:"fixes"` // base route, in sequence
	Transitions map[string][]Fix `json:"transitions,omitempty"`
}

///////////////////////////////////////////////////////////////////////////
// Holds

// TurnDirection specifies the direction of a turn.
type TurnDirection int

const (
	TurnClosest TurnDirection = iota // default: turn the shortest direction
	TurnLeft
	TurnRight
)

func (t TurnDirection) String() string {
	return []string{"closest", "left", "right"}[int(t)]
}

// Hold is a racetrack holding pattern at a fix. Right turns are standard;
// TurnDirection's zero value is treated as right.
type Hold struct {
	Fix           string
	InboundCourse float32 // magnetic course inbound to the fix
	TurnDirection TurnDirection
	LegLengthNM   float32 // 0 for a standard one-minute leg
}

func (h Hold) DisplayName() string {
	n := fmt.Sprintf("%s (%s", h.Fix, h.TurnDirection)
	if h.LegLengthNM != 0 {
		n += fmt.Sprintf(", %.1f nm", h.LegLengthNM)
	}
	return n + ")"
}

// Speed returns the holding speed in knots for the given altitude,
// following the standard bands: 200 below 6000, 230 to 14000, 265 above.
func (h Hold) Speed(alt float32) float32 {
	if alt <= 6000 {
		return 200
	} else if alt <= 14000 {
		return 230
	}
	return 265
}

type HoldEntry int

const (
	HoldEntryDirect HoldEntry = iota
	HoldEntryParallel
	HoldEntryTeardrop
)

func (e HoldEntry) String() string {
	return []string{"Direct", "Parallel", "Teardrop"}[int(e)]
}

// Entry classifies how an aircraft on the given heading joins the hold.
// The angle between the heading and the inbound course splits the compass
// into the three standard sectors; the bands mirror for left turns.
func (h Hold) Entry(acHeading float32) HoldEntry {
	angle := math.NormalizeSignedHeading(acHeading - h.InboundCourse)

	if h.TurnDirection == TurnLeft {
		switch {
		case angle >= -110 && angle <= 70:
			return HoldEntryDirect
		case angle < -110:
			return HoldEntryParallel
		default:
			return HoldEntryTeardrop
		}
	}

	switch {
	case angle >= -70 && angle <= 110:
		return HoldEntryDirect
	case angle > 110:
		return HoldEntryParallel
	default:
		return HoldEntryTeardrop
	}
}
