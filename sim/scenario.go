// sim/scenario.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"time"
)

type ScenarioState int

const (
	ScenarioNotStarted ScenarioState = iota
	ScenarioRunning
	ScenarioPaused
	ScenarioCompleted
	ScenarioFailed
)

func (s ScenarioState) String() string {
	return []string{"not started", "running", "paused", "completed", "failed"}[s]
}

func (s ScenarioState) Terminal() bool {
	return s == ScenarioCompleted || s == ScenarioFailed
}

type ObjectiveType int

const (
	ObjectiveLandAircraft ObjectiveType = iota
	ObjectiveMaintainSeparation
	ObjectiveHandoffCount
	ObjectiveScorePoints
	ObjectiveTimeLimit
)

func (t ObjectiveType) String() string {
	return []string{"land aircraft", "maintain separation", "handoff count",
		"score points", "time limit"}[t]
}

// Objective is one goal the controller is working toward in a scenario.
// LandAircraft counts landings, MaintainSeparation counts violation-free
// seconds, HandoffCount counts completed handoffs, ScorePoints tracks the
// session score, and TimeLimit tracks elapsed seconds (exceeding a
// TimeLimit while required objectives are open fails the scenario).
type Objective struct {
	Type        ObjectiveType `json:"type"`
	Description string        `json:"description"`
	Target      float32       `json:"target"`
	Current     float32       `json:"current"`
	Required    bool          `json:"required"`
	Completed   bool          `json:"completed"`
	Points      float32       `json:"points,omitempty"`
}

// UpdateProgress records the latest measured value; completion latches the
// first time current reaches the target. A later lower value still
// overwrites Current without clearing Completed, so a "land 3 aircraft"
// objective stays completed even if the count were ever to go backwards.
func (o *Objective) UpdateProgress(value float32) {
	o.Current = value
	if o.Current >= o.Target {
		o.Completed = true
	}
}

func (o *Objective) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", o.Type.String()),
		slog.Float64("current", float64(o.Current)),
		slog.Float64("target", float64(o.Target)),
		slog.Bool("completed", o.Completed))
}

// Result is the final report card for a scenario.
type Result struct {
	Stars   int      `json:"stars"` // 0 through 5
	Grade   string   `json:"grade"` // "A+" through "F"
	Score   float32  `json:"score"`
	Reasons []string `json:"reasons,omitempty"`
}

func (r Result) String() string {
	return fmt.Sprintf("%d stars, grade %s, %.0f points", r.Stars, r.Grade, r.Score)
}

// Scenario is the lifecycle state machine for one playable session: its
// objectives, its clock, and eventually its result. It consumes sim events
// through an event stream subscription to keep objective progress current.
type Scenario struct {
	Name       string         `json:"name"`
	Airport    string         `json:"airport"`
	Difficulty Difficulty     `json:"difficulty"`
	Duration   time.Duration  `json:"duration"`
	Objectives []*Objective   `json:"objectives"`
	State      ScenarioState  `json:"state"`
	StartedAt  time.Time      `json:"started_at,omitzero"`
	Elapsed    float32        `json:"elapsed"` // seconds in Running
	Result     *Result        `json:"result,omitempty"`

	violations int
	landings   int
	handoffs   int
	score      float32
	events     *EventsSubscription
}

// Attach subscribes the scenario to the simulation's event stream so that
// ProcessEvents can pick up landings, violations, and handoffs.
func (s *Scenario) Attach(es *EventStream) {
	s.events = es.Subscribe()
}

func (s *Scenario) Detach() {
	if s.events != nil {
		s.events.Unsubscribe()
		s.events = nil
	}
}

// Start moves the scenario from NotStarted to Running.
func (s *Scenario) Start(now time.Time) error {
	if s.State != ScenarioNotStarted {
		return fmt.Errorf("start from %v: %w", s.State, ErrInvalidScenarioState)
	}
	s.State = ScenarioRunning
	s.StartedAt = now
	return nil
}

func (s *Scenario) Pause() error {
	if s.State != ScenarioRunning {
		return fmt.Errorf("pause from %v: %w", s.State, ErrInvalidScenarioState)
	}
	s.State = ScenarioPaused
	return nil
}

func (s *Scenario) Resume() error {
	if s.State != ScenarioPaused {
		return fmt.Errorf("resume from %v: %w", s.State, ErrInvalidScenarioState)
	}
	s.State = ScenarioRunning
	return nil
}

// Update advances the scenario clock by dt seconds. Time-based objectives
// track the clock and, if a time limit runs out with required objectives
// still open, the scenario fails.
func (s *Scenario) Update(dt float32) {
	if s.State != ScenarioRunning {
		return
	}
	s.Elapsed += dt

	if s.violations == 0 {
		s.updateObjectives(ObjectiveMaintainSeparation, s.Elapsed)
	}

	var timeUp bool
	for _, o := range s.Objectives {
		if o.Type == ObjectiveTimeLimit {
			o.UpdateProgress(s.Elapsed)
			timeUp = timeUp || s.Elapsed > o.Target
		}
	}
	if timeUp && len(s.requiredIncomplete()) > 0 {
		_, _ = s.Fail("Time limit exceeded")
	}
}

// ProcessEvents drains the scenario's event subscription and folds each
// event into objective progress.
func (s *Scenario) ProcessEvents() {
	if s.events == nil {
		return
	}
	for _, ev := range s.events.Get() {
		s.HandleEvent(ev)
	}
}

// HandleEvent updates objective progress for a single sim event.
func (s *Scenario) HandleEvent(ev Event) {
	if s.State.Terminal() {
		return
	}
	switch ev.Type {
	case AircraftLandedEvent:
		s.landings++
		s.updateObjectives(ObjectiveLandAircraft, float32(s.landings))
	case SeparationViolationEvent:
		s.violations++
	case HandoffCompletedEvent:
		s.handoffs++
		s.updateObjectives(ObjectiveHandoffCount, float32(s.handoffs))
	}
}

// UpdateScore pushes the running session score into any ScorePoints
// objectives; the caller supplies the score since the scoring engine owns
// it.
func (s *Scenario) UpdateScore(total float32) {
	if s.State.Terminal() {
		return
	}
	s.score = total
	s.updateObjectives(ObjectiveScorePoints, total)
}

func (s *Scenario) updateObjectives(t ObjectiveType, value float32) {
	if s.State.Terminal() {
		return
	}
	for _, o := range s.Objectives {
		if o.Type == t {
			o.UpdateProgress(value)
		}
	}
}

func (s *Scenario) requiredIncomplete() []string {
	var missing []string
	for _, o := range s.Objectives {
		if o.Required && !o.Completed {
			missing = append(missing, o.Description)
		}
	}
	return missing
}

// Violations is how many separation violations the scenario has seen.
func (s *Scenario) Violations() int { return s.violations }

// Landings is how many aircraft have landed during the scenario.
func (s *Scenario) Landings() int { return s.landings }

// Complete ends the scenario and grades it from the final score and the
// violation count. Objectives stop updating once the scenario is over.
func (s *Scenario) Complete() (Result, error) {
	if s.State != ScenarioRunning && s.State != ScenarioPaused {
		return Result{}, fmt.Errorf("complete from %v: %w", s.State, ErrInvalidScenarioState)
	}

	stars, grade := gradeScenario(s.score, s.violations)

	var reasons []string
	if s.violations > 0 {
		reasons = append(reasons, fmt.Sprintf("%d separation violations", s.violations))
	}
	for _, desc := range s.requiredIncomplete() {
		reasons = append(reasons, "incomplete: "+desc)
	}

	s.State = ScenarioCompleted
	s.Result = &Result{Stars: stars, Grade: grade, Score: s.score, Reasons: reasons}
	return *s.Result, nil
}

// Fail ends the scenario with a zero-star result carrying the reason.
func (s *Scenario) Fail(reason string) (Result, error) {
	if s.State.Terminal() {
		return Result{}, fmt.Errorf("fail from %v: %w", s.State, ErrInvalidScenarioState)
	}
	s.State = ScenarioFailed
	s.Result = &Result{Stars: 0, Grade: "F", Score: s.score, Reasons: []string{reason}}
	return *s.Result, nil
}

// gradeScenario turns a final score and violation count into a star rating
// and letter grade: violations dominate, with the letter falling back to
// the score bands once there are few enough of them.
func gradeScenario(score float32, violations int) (int, string) {
	letter := func() string {
		switch {
		case score < 500:
			return "C"
		case score < 750:
			return "B"
		case score < 1000:
			return "A"
		default:
			return "A+"
		}
	}

	switch {
	case violations >= 5:
		return 1, "F"
	case violations >= 3:
		return 2, "D"
	case violations >= 1:
		return 3, letter()
	default:
		switch {
		case score < 500:
			return 3, "C"
		case score < 750:
			return 4, "B"
		case score < 1000:
			return 4, "A"
		default:
			return 5, "A+"
		}
	}
}
