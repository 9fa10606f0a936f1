// sim/score.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"time"

	av "github.com/scopesim/scopesim/aviation"
	"github.com/scopesim/scopesim/math"
)

// Severity grades a separation violation by how close the pair got.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMinor
	SeverityModerate
	SeverityMajor
	SeverityCritical
	NumSeverities
)

func (s Severity) String() string {
	return []string{"none", "minor", "moderate", "major", "critical"}[s]
}

// ViolationSeverity classifies a separation loss by the distance between
// the two aircraft.
func ViolationSeverity(d float32) Severity {
	switch {
	case d < 1:
		return SeverityCritical
	case d < 2:
		return SeverityMajor
	case d < 2.5:
		return SeverityModerate
	default:
		return SeverityMinor
	}
}

// Points returns the score delta a violation of this severity costs.
func (s Severity) Points() float32 {
	return [NumSeverities]float32{0, -25, -75, -150, -300}[s]
}

// violationHappinessLoss is taken from both aircraft of a violation
// regardless of its severity.
const violationHappinessLoss = 20

type ScoreEventType int

const (
	ScoreLanding ScoreEventType = iota
	ScoreSeparationViolation
	ScoreHandoff
	ScoreCrash
	ScoreObjective
)

func (t ScoreEventType) String() string {
	return []string{"landing", "separation violation", "handoff", "crash", "objective"}[t]
}

const (
	LandingPoints = 100
	HandoffPoints = 10
	CrashPoints   = -200
)

type ScoreEvent struct {
	Type     ScoreEventType `json:"type"`
	Callsign av.Callsign    `json:"callsign,omitempty"`
	Points   float32        `json:"points"`
	Severity Severity       `json:"severity,omitempty"`
	Time     time.Time      `json:"time"` // sim time, not wallclock
}

func (ev ScoreEvent) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", ev.Type.String()),
		slog.String("callsign", string(ev.Callsign)),
		slog.Float64("points", float64(ev.Points)),
		slog.String("severity", ev.Severity.String()))
}

type HappinessChange struct {
	Delta  float32   `json:"delta"`
	Reason string    `json:"reason"`
	Time   time.Time `json:"time"`
}

// AircraftHappiness tracks how well one aircraft has been handled; it
// starts at 100 and every rough moment chips away at it. The change log is
// append-only.
type AircraftHappiness struct {
	Happiness      float32           `json:"happiness"`
	SpawnTime      time.Time         `json:"spawn_time"`
	CommandCount   int               `json:"command_count"`
	DirectDistance float32           `json:"direct_distance"` // NM to destination at spawn
	HoldSeconds    float32           `json:"hold_seconds"`
	Landed         bool              `json:"landed"`
	Log            []HappinessChange `json:"log,omitempty"`
}

func NewAircraftHappiness(now time.Time, directDistance float32) *AircraftHappiness {
	return &AircraftHappiness{Happiness: 100, SpawnTime: now, DirectDistance: directDistance}
}

// ModifyHappiness applies a delta, clamped to [0,100], and records it.
func (h *AircraftHappiness) ModifyHappiness(delta float32, reason string, now time.Time) {
	h.Happiness = math.Clamp(h.Happiness+delta, 0, 100)
	h.Log = append(h.Log, HappinessChange{Delta: delta, Reason: reason, Time: now})
}

// RouteEfficiency compares the direct distance at spawn against the
// distance actually flown; 1 is a perfect routing. An aircraft that hasn't
// flown yet scores 1.
func (h *AircraftHappiness) RouteEfficiency(totalFlown float32) float32 {
	if totalFlown <= 0 {
		return 1
	}
	return math.Min(1, h.DirectDistance/totalFlown)
}

// FinalScore folds happiness, routing efficiency, command economy, hold
// time, and the landing bonus into one number, floored at 0.
func (h *AircraftHappiness) FinalScore(totalFlown float32) float32 {
	s := h.Happiness + math.Min(50, 50*h.RouteEfficiency(totalFlown))
	s -= math.Max(0, float32(h.CommandCount-5)) * 5
	s -= math.Floor(h.HoldSeconds/60) * 10
	if h.Landed {
		s += LandingPoints
	}
	return math.Max(0, s)
}

// SessionScore accumulates scoring over a whole session. Total is always
// recomputed from the running base so that multiplier changes never
// compound.
type SessionScore struct {
	Base       float32            `json:"base"`
	Total      float32            `json:"total"`
	Multiplier float32            `json:"multiplier"`
	Events     []ScoreEvent       `json:"events,omitempty"`
	Violations [NumSeverities]int `json:"violations"`
	Landings   int                `json:"landings"`
}

func NewSessionScore() *SessionScore {
	return &SessionScore{Multiplier: 1}
}

func (s *SessionScore) AddEvent(ev ScoreEvent) {
	s.Events = append(s.Events, ev)
	s.Base += ev.Points
	switch ev.Type {
	case ScoreSeparationViolation:
		s.Violations[ev.Severity]++
	case ScoreLanding:
		s.Landings++
	}
	s.Total = math.Round(s.Base * s.Multiplier)
}

func (s *SessionScore) SetMultiplier(m float32) {
	s.Multiplier = m
	s.Total = math.Round(s.Base * s.Multiplier)
}

// TotalViolations counts violations of any severity.
func (s *SessionScore) TotalViolations() int {
	var n int
	for _, c := range s.Violations {
		n += c
	}
	return n
}

// SafetyRating weighs the violation counts against the number of aircraft
// handled: 100 is a clean session.
func (s *SessionScore) SafetyRating(totalAircraft int) float32 {
	weighted := float32(s.Violations[SeverityMinor]) +
		5*float32(s.Violations[SeverityModerate]) +
		15*float32(s.Violations[SeverityMajor]) +
		30*float32(s.Violations[SeverityCritical])
	return math.Clamp(100-100*weighted/float32(max(1, totalAircraft)), 0, 100)
}

// ScoringEngine owns the per-aircraft happiness registry and the session
// score; everything else goes through its methods.
type ScoringEngine struct {
	Session   *SessionScore
	happiness map[av.Callsign]*AircraftHappiness
}

func NewScoringEngine() *ScoringEngine {
	return &ScoringEngine{
		Session:   NewSessionScore(),
		happiness: make(map[av.Callsign]*AircraftHappiness),
	}
}

// RegisterAircraft starts tracking a callsign from its spawn.
func (e *ScoringEngine) RegisterAircraft(cs av.Callsign, now time.Time, directDistance float32) error {
	if _, ok := e.happiness[cs]; ok {
		return fmt.Errorf("%v: %w", cs, ErrDuplicateCallsign)
	}
	e.happiness[cs] = NewAircraftHappiness(now, directDistance)
	return nil
}

// Happiness returns a copy of the aircraft's happiness record.
func (e *ScoringEngine) Happiness(cs av.Callsign) (AircraftHappiness, error) {
	h, ok := e.happiness[cs]
	if !ok {
		return AircraftHappiness{}, fmt.Errorf("%v: %w", cs, ErrUnknownAircraft)
	}
	return *h, nil
}

func (e *ScoringEngine) ModifyHappiness(cs av.Callsign, delta float32, reason string, now time.Time) error {
	h, ok := e.happiness[cs]
	if !ok {
		return fmt.Errorf("%v: %w", cs, ErrUnknownAircraft)
	}
	h.ModifyHappiness(delta, reason, now)
	return nil
}

// RecordCommand counts a clearance against the aircraft's command economy.
func (e *ScoringEngine) RecordCommand(cs av.Callsign) error {
	h, ok := e.happiness[cs]
	if !ok {
		return fmt.Errorf("%v: %w", cs, ErrUnknownAircraft)
	}
	h.CommandCount++
	return nil
}

// AddHoldTime accumulates time spent in holding patterns.
func (e *ScoringEngine) AddHoldTime(cs av.Callsign, seconds float32) error {
	h, ok := e.happiness[cs]
	if !ok {
		return fmt.Errorf("%v: %w", cs, ErrUnknownAircraft)
	}
	h.HoldSeconds += seconds
	return nil
}

// RecordLanding marks the aircraft landed and credits the session.
func (e *ScoringEngine) RecordLanding(cs av.Callsign, now time.Time) error {
	h, ok := e.happiness[cs]
	if !ok {
		return fmt.Errorf("%v: %w", cs, ErrUnknownAircraft)
	}
	h.Landed = true
	e.Session.AddEvent(ScoreEvent{Type: ScoreLanding, Callsign: cs, Points: LandingPoints, Time: now})
	return nil
}

// RecordViolation charges a separation loss between two aircraft: one
// session score event graded by distance, plus a happiness hit for both.
// It returns the severity so the caller can put it in the event.
func (e *ScoringEngine) RecordViolation(a, b av.Callsign, distance float32, now time.Time) Severity {
	sev := ViolationSeverity(distance)
	e.Session.AddEvent(ScoreEvent{
		Type:     ScoreSeparationViolation,
		Callsign: a,
		Points:   sev.Points(),
		Severity: sev,
		Time:     now,
	})
	for _, cs := range []av.Callsign{a, b} {
		if h, ok := e.happiness[cs]; ok {
			h.ModifyHappiness(-violationHappinessLoss, "separation violation", now)
		}
	}
	return sev
}

// RecordHandoff credits a completed handoff.
func (e *ScoringEngine) RecordHandoff(cs av.Callsign, now time.Time) {
	e.Session.AddEvent(ScoreEvent{Type: ScoreHandoff, Callsign: cs, Points: HandoffPoints, Time: now})
}

// RecordCrash charges an aircraft lost to a crash or mid-air.
func (e *ScoringEngine) RecordCrash(cs av.Callsign, now time.Time) {
	e.Session.AddEvent(ScoreEvent{Type: ScoreCrash, Callsign: cs, Points: CrashPoints, Time: now})
}

// FinalScore is the aircraft's final score given its total distance flown.
func (e *ScoringEngine) FinalScore(cs av.Callsign, totalFlown float32) (float32, error) {
	h, ok := e.happiness[cs]
	if !ok {
		return 0, fmt.Errorf("%v: %w", cs, ErrUnknownAircraft)
	}
	return h.FinalScore(totalFlown), nil
}

// AircraftTracked is how many aircraft the engine has ever registered.
func (e *ScoringEngine) AircraftTracked() int {
	return len(e.happiness)
}
