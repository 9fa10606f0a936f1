// sim/sim.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"time"

	av "github.com/scopesim/scopesim/aviation"
	"github.com/scopesim/scopesim/log"
	"github.com/scopesim/scopesim/math"
	"github.com/scopesim/scopesim/rand"
	"github.com/scopesim/scopesim/util"
	"github.com/scopesim/scopesim/wx"
)

const (
	// DefaultClearanceInterval is the minimum time between clearances
	// issued to one aircraft.
	DefaultClearanceInterval = 15 * time.Second

	// DefaultMaxAircraft bounds the registry so a runaway spawner can't
	// grind the tick loop down.
	DefaultMaxAircraft = 20

	// collisionDistance is the lateral distance below which two aircraft
	// are considered to have collided; it is well inside the tightest
	// separation violation band.
	collisionDistance = 0.25
)

// Config collects everything needed to stand up a simulation. The zero
// value of optional fields picks reasonable defaults.
type Config struct {
	DB       *av.Database
	Sectors  []*av.Sector
	Runways  []av.Runway
	Weather  wx.Conditions
	Scenario *Scenario

	StartTime time.Time
	Seed      int64

	MaxAircraft int
	// SeparationTolerance scales the required separation between aircraft;
	// values below 1 let skilled players run tighter spacing legally.
	SeparationTolerance float32
	// WindChangeProbability is the chance per simulated minute that the
	// winds shift.
	WindChangeProbability float32
}

type acPair [2]av.Callsign

func makePair(a, b av.Callsign) acPair {
	if b < a {
		a, b = b, a
	}
	return acPair{a, b}
}

// Sim runs the whole show: it owns the aircraft registry and the weather
// and advances them tick by tick, delegating to the sector manager, the
// scoring engine, and the scenario. It is single-threaded; the host calls
// Step (and everything else) from one goroutine.
type Sim struct {
	Aircraft map[av.Callsign]*Aircraft
	DB       *av.Database
	Weather  wx.Conditions
	Runways  *av.RunwayManager
	Sectors  *SectorManager
	Scoring  *ScoringEngine
	Scenario *Scenario

	SimTime time.Time
	Steps   int

	// ClearanceInterval is the minimum time between clearances to one
	// aircraft; zero disables the limit.
	ClearanceInterval   time.Duration
	MaxAircraft         int
	SeparationTolerance float32

	WindChangeProbability float32

	eventStream *EventStream
	rand        *rand.Rand
	lg          *log.Logger

	paused         bool
	updateTimeSlop time.Duration

	lastClearance   map[av.Callsign]time.Time
	inViolation     map[acPair]bool
	recommendations map[av.Callsign]HandoffRecommendation
}

func NewSim(config Config, lg *log.Logger) *Sim {
	db := config.DB
	if db == nil {
		db = av.NewDatabase()
	}

	rnd := rand.New()
	if config.Seed != 0 {
		rnd = rand.Make(config.Seed)
	}

	maxAircraft := config.MaxAircraft
	if maxAircraft == 0 {
		maxAircraft = DefaultMaxAircraft
	}
	tolerance := config.SeparationTolerance
	if tolerance == 0 {
		tolerance = 1
	}

	es := NewEventStream(lg)

	sectors := NewSectorManager(es)
	for _, sec := range config.Sectors {
		sectors.AddSector(sec)
	}

	runways := av.NewRunwayManager()
	for _, r := range config.Runways {
		runways.AddRunway(r)
	}
	runways.LastChange = config.StartTime

	s := &Sim{
		Aircraft: make(map[av.Callsign]*Aircraft),
		DB:       db,
		Weather:  config.Weather,
		Runways:  runways,
		Sectors:  sectors,
		Scoring:  NewScoringEngine(),
		Scenario: config.Scenario,

		SimTime: config.StartTime,

		ClearanceInterval:     DefaultClearanceInterval,
		MaxAircraft:           maxAircraft,
		SeparationTolerance:   tolerance,
		WindChangeProbability: config.WindChangeProbability,

		eventStream: es,
		rand:        rnd,
		lg:          lg,

		lastClearance:   make(map[av.Callsign]time.Time),
		inViolation:     make(map[acPair]bool),
		recommendations: make(map[av.Callsign]HandoffRecommendation),
	}
	s.Runways.UpdateWind(s.surfaceWind())

	if s.Scenario != nil {
		s.Scenario.Attach(es)
	}

	return s
}

// Events returns the stream that everything posts to; subscribe before
// Step to see what happens.
func (s *Sim) Events() *EventStream {
	return s.eventStream
}

// Destroy shuts the sim's event stream down.
func (s *Sim) Destroy() {
	if s.Scenario != nil {
		s.Scenario.Detach()
	}
	s.eventStream.Destroy()
}

func (s *Sim) surfaceWind() av.WindConditions {
	l := s.Weather.WindAtAltitude(0)
	return av.WindConditions{Direction: l.DirectionFrom, Speed: l.Speed, Gust: l.Gust}
}

// AddAircraft brings an externally-constructed aircraft into the
// simulation; the sim never creates aircraft itself. directDistance is the
// straight-line distance to its destination at spawn, used later for
// routing efficiency.
func (s *Sim) AddAircraft(ac *Aircraft, directDistance float32) error {
	if _, ok := s.Aircraft[ac.Callsign]; ok {
		return fmt.Errorf("%v: %w", ac.Callsign, ErrDuplicateCallsign)
	}
	if len(s.Aircraft) >= s.MaxAircraft {
		return fmt.Errorf("%d aircraft: %w", len(s.Aircraft), ErrTooManyAircraft)
	}
	if _, err := s.DB.LookupAirport(ac.Destination); err != nil {
		return err
	}

	ac.SpawnTime = s.SimTime
	s.Aircraft[ac.Callsign] = ac
	if err := s.Scoring.RegisterAircraft(ac.Callsign, s.SimTime, directDistance); err != nil {
		delete(s.Aircraft, ac.Callsign)
		return err
	}

	// Whoever's airspace the aircraft spawns in starts out working it.
	for _, id := range s.Sectors.SectorIDs() {
		if sec, _ := s.Sectors.Sector(id); sec.ContainsAircraft(ac.Position(), ac.Altitude()) {
			_ = s.Sectors.AssignAircraft(ac.Callsign, id)
			break
		}
	}

	s.eventStream.Post(Event{Type: AircraftSpawnedEvent, Callsign: ac.Callsign, Time: s.SimTime})
	s.lg.Info("aircraft spawned", slog.Any("aircraft", ac))
	return nil
}

// RemoveAircraft drops an aircraft from the registry and all the
// per-aircraft bookkeeping.
func (s *Sim) RemoveAircraft(cs av.Callsign) error {
	if _, ok := s.Aircraft[cs]; !ok {
		return fmt.Errorf("%v: %w", cs, ErrUnknownAircraft)
	}
	delete(s.Aircraft, cs)
	s.Sectors.RemoveAircraft(cs)
	delete(s.lastClearance, cs)
	delete(s.recommendations, cs)
	for pair := range s.inViolation {
		if pair[0] == cs || pair[1] == cs {
			delete(s.inViolation, pair)
		}
	}
	return nil
}

// GetAircraft looks up an aircraft by callsign.
func (s *Sim) GetAircraft(cs av.Callsign) (*Aircraft, error) {
	ac, ok := s.Aircraft[cs]
	if !ok {
		return nil, fmt.Errorf("%v: %w", cs, ErrUnknownAircraft)
	}
	return ac, nil
}

// Callsigns returns the registered callsigns, sorted.
func (s *Sim) Callsigns() []av.Callsign {
	return util.SortedMapKeys(s.Aircraft)
}

// RecommendedHandoffs returns the current handoff recommendations, keyed
// by callsign; the map is a copy the caller may keep.
func (s *Sim) RecommendedHandoffs() map[av.Callsign]HandoffRecommendation {
	recs := make(map[av.Callsign]HandoffRecommendation, len(s.recommendations))
	for cs, rec := range s.recommendations {
		recs[cs] = rec
	}
	return recs
}

func (s *Sim) TogglePause() {
	s.paused = !s.paused
}

func (s *Sim) Paused() bool {
	return s.paused
}

// Step advances the simulation by the given elapsed duration, one
// simulated second at a time; leftover fractions carry over to the next
// call. It reports whether any state changed.
func (s *Sim) Step(elapsed time.Duration) bool {
	if s.paused {
		return false
	}

	elapsed += s.updateTimeSlop

	ns := int(elapsed.Truncate(time.Second).Seconds())
	if ns > 10 {
		s.lg.Warn("unexpected hitch in update rate", slog.Duration("elapsed", elapsed),
			slog.Int("steps", ns), slog.Duration("slop", s.updateTimeSlop))
	}
	for range ns {
		s.SimTime = s.SimTime.Add(time.Second)
		s.updateState()
	}

	s.updateTimeSlop = elapsed - elapsed.Truncate(time.Second)

	return ns > 0
}

// updateState runs one one-second tick: fly the aircraft, then sweep for
// landings, conflicts, and handoffs, then let the weather and the scenario
// catch up.
func (s *Sim) updateState() {
	now := s.SimTime
	s.Steps++

	for _, cs := range util.SortedMapKeys(s.Aircraft) {
		ac := s.Aircraft[cs]
		if ac.Landed() {
			continue
		}
		ac.Nav.Step(1, s.Weather.WindLayers)
		if ac.Nav.Hold != nil {
			_ = s.Scoring.AddHoldTime(cs, 1)
		}
	}

	s.checkLandings(now)
	s.checkSeparation(now)
	s.updateHandoffRecommendations(now)
	s.updateWeather(now)

	if s.Scenario != nil {
		s.Scenario.ProcessEvents()
		s.Scenario.UpdateScore(s.Scoring.Session.Total)
		s.Scenario.Update(1)
	}
}

func (s *Sim) checkLandings(now time.Time) {
	for _, cs := range util.SortedMapKeys(s.Aircraft) {
		ac := s.Aircraft[cs]
		if ac.Landed() {
			continue
		}
		ap, err := s.DB.LookupAirport(ac.Destination)
		if err != nil {
			continue
		}
		if ac.Nav.CheckLanding(ap.Position, 0) {
			_ = s.Scoring.RecordLanding(cs, now)
			s.Sectors.RemoveAircraft(cs)
			delete(s.recommendations, cs)
			s.eventStream.Post(Event{Type: AircraftLandedEvent, Callsign: cs,
				Runway: s.Runways.ActiveRunway, Points: LandingPoints, Time: now})
			s.lg.Info("aircraft landed", slog.Any("aircraft", ac))
		}
	}
}

// checkSeparation sweeps all airborne pairs for separation losses.
// Violations fire once on entry and rearm when the pair opens back up;
// pairs that get close enough to count as a collision are destroyed.
func (s *Sim) checkSeparation(now time.Time) {
	callsigns := util.SortedMapKeys(s.Aircraft)

	crashed := make(map[av.Callsign]bool)
	for i, a := range callsigns {
		aca := s.Aircraft[a]
		if aca.Landed() {
			continue
		}
		for _, b := range callsigns[i+1:] {
			acb := s.Aircraft[b]
			if acb.Landed() {
				continue
			}

			d := math.Distance2f(aca.Position(), acb.Position())
			if d < collisionDistance {
				crashed[a], crashed[b] = true, true
				continue
			}

			pair := makePair(a, b)
			if required := RequiredSeparation(aca.Rules, acb.Rules) * s.SeparationTolerance; d < required {
				if !s.inViolation[pair] {
					s.inViolation[pair] = true
					sev := s.Scoring.RecordViolation(a, b, d, now)
					s.eventStream.Post(Event{Type: SeparationViolationEvent,
						Callsign: a, OtherCallsign: b, Points: sev.Points(),
						Severity: sev, Time: now})
					s.lg.Warn("separation violation",
						slog.String("callsign", string(a)), slog.String("other", string(b)),
						slog.Float64("distance", float64(d)), slog.String("severity", sev.String()))
				}
			} else {
				delete(s.inViolation, pair)
			}
		}
	}

	for _, cs := range util.SortedMapKeys(crashed) {
		s.Scoring.RecordCrash(cs, now)
		s.eventStream.Post(Event{Type: AircraftCrashedEvent, Callsign: cs,
			Points: CrashPoints, Time: now})
		s.lg.Warn("aircraft crashed", slog.String("callsign", string(cs)))
		_ = s.RemoveAircraft(cs)
	}
}

func (s *Sim) updateHandoffRecommendations(now time.Time) {
	recs := make(map[av.Callsign]HandoffRecommendation)
	for _, cs := range util.SortedMapKeys(s.Aircraft) {
		ac := s.Aircraft[cs]
		if ac.Landed() {
			continue
		}
		if _, ok := s.Sectors.PendingHandoff(cs); ok {
			continue
		}
		rec, ok := s.Sectors.RecommendHandoff(cs, ac.Position(), ac.Altitude(), ac.Heading())
		if !ok {
			continue
		}
		recs[cs] = rec

		// Announce a recommendation when it first appears or switches to a
		// different sector, not every tick it persists.
		if prev, ok := s.recommendations[cs]; !ok || prev.ToSector != rec.ToSector {
			s.eventStream.Post(Event{Type: StatusMessageEvent, Callsign: cs,
				ToSector: rec.ToSector,
				Message:  fmt.Sprintf("Handoff recommended: %v to %s (%v)", cs, rec.ToSector, rec.Urgency),
				Time:     now})
		}
	}
	s.recommendations = recs
}

func (s *Sim) updateWeather(now time.Time) {
	if s.WindChangeProbability > 0 && s.Steps%60 == 0 &&
		s.rand.Float32() < s.WindChangeProbability {
		shift := float32(10 + s.rand.Intn(21))
		if s.rand.Intn(2) == 0 {
			shift = -shift
		}
		for i := range s.Weather.WindLayers {
			l := &s.Weather.WindLayers[i]
			l.DirectionFrom = math.NormalizeHeading(l.DirectionFrom + shift)
		}
		s.Runways.UpdateWind(s.surfaceWind())
		s.eventStream.Post(Event{Type: WeatherUpdateEvent, Message: s.Weather.METAR(), Time: now})
		s.lg.Info("wind shift", slog.Float64("degrees", float64(shift)))
	}

	s.Runways.ReleaseClosures(now)
	if change, to, reason := s.Runways.EvaluateConfigurationChange(now); change {
		from := s.Runways.ActiveRunway
		if err := s.Runways.ChangeConfiguration(to, now); err == nil {
			s.eventStream.Post(Event{Type: RunwayChangeEvent, Runway: to, Message: reason, Time: now})
			s.lg.Info("runway change", slog.String("from", from), slog.String("to", to),
				slog.String("reason", reason))
		}
	}
}

// StartScenario starts the attached scenario and announces it.
func (s *Sim) StartScenario() error {
	if s.Scenario == nil {
		return ErrScenarioNotRunning
	}
	if err := s.Scenario.Start(s.SimTime); err != nil {
		return err
	}
	s.eventStream.Post(Event{Type: ScenarioStartedEvent, Message: s.Scenario.Name, Time: s.SimTime})
	return nil
}

// CompleteScenario ends the attached scenario and reports its result.
func (s *Sim) CompleteScenario() (Result, error) {
	if s.Scenario == nil {
		return Result{}, ErrScenarioNotRunning
	}
	s.Scenario.ProcessEvents()
	s.Scenario.UpdateScore(s.Scoring.Session.Total)
	result, err := s.Scenario.Complete()
	if err != nil {
		return Result{}, err
	}
	s.eventStream.Post(Event{Type: ScenarioEndedEvent, Message: result.String(), Time: s.SimTime})
	return result, nil
}
