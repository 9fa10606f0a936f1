// sim/scenario_test.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
	"testing"
	"time"

	av "github.com/scopesim/scopesim/aviation"
	"github.com/scopesim/scopesim/wx"
)

func TestObjectiveProgressLatches(t *testing.T) {
	o := &Objective{Type: ObjectiveLandAircraft, Target: 3}

	o.UpdateProgress(2)
	if o.Completed {
		t.Errorf("completed at 2 of 3")
	}
	o.UpdateProgress(3)
	if !o.Completed {
		t.Errorf("not completed at 3 of 3")
	}

	// A lower value afterwards still lands in Current but completion
	// stays latched.
	o.UpdateProgress(1)
	if o.Current != 1 {
		t.Errorf("current %.0f after regression, expected 1", o.Current)
	}
	if !o.Completed {
		t.Errorf("completion lost after regression")
	}
}

func TestScenarioTransitions(t *testing.T) {
	t0 := time.Date(2026, time.April, 2, 9, 0, 0, 0, time.UTC)
	s := &Scenario{Name: "test"}

	if err := s.Pause(); !errors.Is(err, ErrInvalidScenarioState) {
		t.Errorf("pause before start returned %v", err)
	}
	if err := s.Resume(); !errors.Is(err, ErrInvalidScenarioState) {
		t.Errorf("resume before start returned %v", err)
	}

	if err := s.Start(t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.State != ScenarioRunning || !s.StartedAt.Equal(t0) {
		t.Errorf("state %v started %v, expected running at t0", s.State, s.StartedAt)
	}
	if err := s.Start(t0); !errors.Is(err, ErrInvalidScenarioState) {
		t.Errorf("double start returned %v", err)
	}

	if err := s.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	s.Update(30)
	if s.Elapsed != 0 {
		t.Errorf("elapsed %.0f advanced while paused", s.Elapsed)
	}
	if err := s.Pause(); !errors.Is(err, ErrInvalidScenarioState) {
		t.Errorf("double pause returned %v", err)
	}
	if err := s.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}

	s.Update(30)
	if s.Elapsed != 30 {
		t.Errorf("elapsed %.0f, expected 30", s.Elapsed)
	}

	if _, err := s.Complete(); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if s.State != ScenarioCompleted || !s.State.Terminal() {
		t.Errorf("state %v after complete", s.State)
	}
	if _, err := s.Complete(); !errors.Is(err, ErrInvalidScenarioState) {
		t.Errorf("complete after terminal returned %v", err)
	}
	if _, err := s.Fail("nope"); !errors.Is(err, ErrInvalidScenarioState) {
		t.Errorf("fail after terminal returned %v", err)
	}
}

func TestScenarioTimeLimit(t *testing.T) {
	t0 := time.Date(2026, time.April, 2, 9, 0, 0, 0, time.UTC)
	mk := func() *Scenario {
		return &Scenario{
			Name: "timed",
			Objectives: []*Objective{
				{Type: ObjectiveLandAircraft, Description: "Land 1 aircraft", Target: 1, Required: true},
				{Type: ObjectiveTimeLimit, Description: "10 second limit", Target: 10},
			},
		}
	}

	// Running out the clock with the required landing open fails the
	// scenario.
	s := mk()
	if err := s.Start(t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Update(11)
	if s.State != ScenarioFailed {
		t.Fatalf("state %v after running out the clock, expected failed", s.State)
	}
	if s.Result == nil || len(s.Result.Reasons) != 1 || s.Result.Reasons[0] != "Time limit exceeded" {
		t.Errorf("result %+v, expected the time limit reason", s.Result)
	}
	if s.Result.Stars != 0 || s.Result.Grade != "F" {
		t.Errorf("result %+v, expected zero stars and F", s.Result)
	}

	// Landing first satisfies the required objective; the clock running
	// out is then no failure.
	s = mk()
	if err := s.Start(t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.HandleEvent(Event{Type: AircraftLandedEvent, Callsign: "UAL1"})
	s.Update(11)
	if s.State != ScenarioRunning {
		t.Errorf("state %v after completing required objective, expected running", s.State)
	}

	// Within the limit nothing happens either.
	s = mk()
	if err := s.Start(t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Update(9)
	if s.State != ScenarioRunning {
		t.Errorf("state %v at 9 of 10 seconds, expected running", s.State)
	}
}

func TestScenarioGrading(t *testing.T) {
	for _, c := range []struct {
		score      float32
		violations int
		stars      int
		grade      string
	}{
		{score: 600, violations: 5, stars: 1, grade: "F"},
		{score: 1200, violations: 6, stars: 1, grade: "F"},
		{score: 600, violations: 3, stars: 2, grade: "D"},
		{score: 600, violations: 4, stars: 2, grade: "D"},
		{score: 400, violations: 1, stars: 3, grade: "C"},
		{score: 800, violations: 2, stars: 3, grade: "A"},
		{score: 1100, violations: 1, stars: 3, grade: "A+"},
		{score: 400, violations: 0, stars: 3, grade: "C"},
		{score: 600, violations: 0, stars: 4, grade: "B"},
		{score: 900, violations: 0, stars: 4, grade: "A"},
		{score: 1200, violations: 0, stars: 5, grade: "A+"},
	} {
		stars, grade := gradeScenario(c.score, c.violations)
		if stars != c.stars || grade != c.grade {
			t.Errorf("score %.0f violations %d: got %d stars %q, expected %d stars %q",
				c.score, c.violations, stars, grade, c.stars, c.grade)
		}
	}
}

func TestScenarioEventObjectives(t *testing.T) {
	t0 := time.Date(2026, time.April, 2, 9, 0, 0, 0, time.UTC)
	es := NewEventStream(nil)
	defer es.Destroy()

	s := &Scenario{
		Name: "events",
		Objectives: []*Objective{
			{Type: ObjectiveLandAircraft, Description: "Land 2 aircraft", Target: 2, Required: true},
			{Type: ObjectiveHandoffCount, Description: "Hand off 1", Target: 1},
			{Type: ObjectiveScorePoints, Description: "Score 100", Target: 100},
		},
	}
	s.Attach(es)
	defer s.Detach()
	if err := s.Start(t0); err != nil {
		t.Fatalf("start: %v", err)
	}

	es.Post(Event{Type: AircraftLandedEvent, Callsign: "UAL1"})
	es.Post(Event{Type: HandoffCompletedEvent, Callsign: "DAL2", FromSector: "A", ToSector: "B"})
	es.Post(Event{Type: AircraftLandedEvent, Callsign: "DAL2"})
	s.ProcessEvents()
	s.UpdateScore(150)

	land, handoff, score := s.Objectives[0], s.Objectives[1], s.Objectives[2]
	if land.Current != 2 || !land.Completed {
		t.Errorf("landing objective %+v, expected 2/complete", land)
	}
	if handoff.Current != 1 || !handoff.Completed {
		t.Errorf("handoff objective %+v, expected 1/complete", handoff)
	}
	if score.Current != 150 || !score.Completed {
		t.Errorf("score objective %+v, expected 150/complete", score)
	}
	if s.Landings() != 2 {
		t.Errorf("landings %d, expected 2", s.Landings())
	}

	// Terminal scenarios no longer move.
	if _, err := s.Complete(); err != nil {
		t.Fatalf("complete: %v", err)
	}
	s.HandleEvent(Event{Type: AircraftLandedEvent, Callsign: "SWA3"})
	s.UpdateScore(500)
	if land.Current != 2 || score.Current != 150 {
		t.Errorf("objectives moved after completion: %+v %+v", land, score)
	}
}

func TestScenarioSeparationObjective(t *testing.T) {
	t0 := time.Date(2026, time.April, 2, 9, 0, 0, 0, time.UTC)
	s := &Scenario{
		Name: "clean",
		Objectives: []*Objective{
			{Type: ObjectiveMaintainSeparation, Description: "Stay clean", Target: 60},
		},
	}
	if err := s.Start(t0); err != nil {
		t.Fatalf("start: %v", err)
	}

	s.Update(30)
	if c := s.Objectives[0].Current; c != 30 {
		t.Errorf("violation-free time %.0f, expected 30", c)
	}

	// A violation stops the clean-time clock where it was.
	s.HandleEvent(Event{Type: SeparationViolationEvent, Callsign: "A", OtherCallsign: "B"})
	s.Update(30)
	if c := s.Objectives[0].Current; c != 30 {
		t.Errorf("violation-free time %.0f after violation, expected to stay 30", c)
	}
	if s.Violations() != 1 {
		t.Errorf("violations %d, expected 1", s.Violations())
	}
	if s.Objectives[0].Completed {
		t.Errorf("separation objective completed despite violation")
	}
}

func TestDifficultyPresets(t *testing.T) {
	presets := DifficultyPresets()
	if len(presets) != 4 {
		t.Fatalf("%d presets, expected 4", len(presets))
	}

	for i, d := range Difficulties() {
		p, ok := presets[d]
		if !ok {
			t.Fatalf("no preset for %s", d)
		}
		if i > 0 {
			prev := presets[Difficulties()[i-1]]
			if p.AircraftCount <= prev.AircraftCount {
				t.Errorf("%s aircraft count %d not above previous %d", d,
					p.AircraftCount, prev.AircraftCount)
			}
			if p.MaxViolations >= prev.MaxViolations {
				t.Errorf("%s max violations %d not below previous %d", d,
					p.MaxViolations, prev.MaxViolations)
			}
		}
	}

	b := presets[DifficultyBeginner]
	if b.AircraftCount != 1 || b.TrafficDensity != 0.3 || b.SeparationTolerance != 1.5 ||
		b.DurationMinutes != 10 || b.MinLandings != 1 {
		t.Errorf("unexpected beginner preset %+v", b)
	}
	e := presets[DifficultyExpert]
	if e.AircraftCount != 8 || e.MaxViolations != 0 || e.MinLandings != 8 ||
		e.WindChangeProbability != 0.6 {
		t.Errorf("unexpected expert preset %+v", e)
	}
}

func TestBuildScenario(t *testing.T) {
	ap := &av.Airport{ID: "KSEA", Name: "Seattle"}

	if _, err := BuildScenario(Difficulty("impossible"), ap); !errors.Is(err, ErrUnknownScenario) {
		t.Errorf("unknown difficulty returned %v, expected ErrUnknownScenario", err)
	}

	s, err := BuildScenario(DifficultyExpert, ap)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s.Airport != "KSEA" || s.Difficulty != DifficultyExpert {
		t.Errorf("scenario %q for %q/%v", s.Name, s.Airport, s.Difficulty)
	}
	if s.Duration != 45*time.Minute {
		t.Errorf("duration %v, expected 45m", s.Duration)
	}
	if s.State != ScenarioNotStarted {
		t.Errorf("initial state %v", s.State)
	}

	byType := make(map[ObjectiveType]*Objective)
	for _, o := range s.Objectives {
		byType[o.Type] = o
	}
	if land := byType[ObjectiveLandAircraft]; land == nil || land.Target != 8 || !land.Required {
		t.Errorf("landing objective %+v, expected required target 8", land)
	}
	if sep := byType[ObjectiveMaintainSeparation]; sep == nil || !sep.Required {
		t.Errorf("separation objective %+v, expected required for expert", sep)
	}
	if tl := byType[ObjectiveTimeLimit]; tl == nil || tl.Target != 45*60 {
		t.Errorf("time limit objective %+v, expected 2700 s", tl)
	}
	if ho := byType[ObjectiveHandoffCount]; ho == nil {
		t.Errorf("expert scenario missing handoff objective")
	}

	// Beginner tolerates violations, so a clean run is optional, and
	// there's no handoff objective.
	s, err = BuildScenario(DifficultyBeginner, ap)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, o := range s.Objectives {
		if o.Type == ObjectiveMaintainSeparation && o.Required {
			t.Errorf("beginner separation objective marked required")
		}
		if o.Type == ObjectiveHandoffCount {
			t.Errorf("beginner scenario has a handoff objective")
		}
	}
}

func TestSelectWeather(t *testing.T) {
	patterns := []wx.Conditions{
		{Visibility: 10},
		{Visibility: 5},
		{Visibility: 1},
	}
	for _, c := range []struct {
		severity float32
		vis      float32
	}{
		{severity: 0, vis: 10},
		{severity: 0.2, vis: 10},
		{severity: 0.5, vis: 5},
		{severity: 0.9, vis: 1},
		{severity: 1.0, vis: 1}, // index clamps to the last pattern
	} {
		if got := SelectWeather(patterns, c.severity); got.Visibility != c.vis {
			t.Errorf("severity %.1f: visibility %.0f, expected %.0f",
				c.severity, got.Visibility, c.vis)
		}
	}

	if got := SelectWeather(nil, 0.5); got.Visibility != 0 {
		t.Errorf("empty patterns returned %+v", got)
	}
}
