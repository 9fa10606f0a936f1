// aviation/runwayconfig.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/scopesim/scopesim/math"
	"github.com/scopesim/scopesim/util"
)

var ErrRunwayNotOperational = errors.New("runway not operational")

// WindConditions is the surface wind the runway logic evaluates against.
type WindConditions struct {
	Speed     float32 // knots
	Direction float32 // degrees, direction the wind blows from
	Gust      float32 // knots
}

type RunwayStatus int

const (
	RunwayActive RunwayStatus = iota
	RunwayInactive
	RunwayClosed
	RunwayMaintenance
)

func (s RunwayStatus) String() string {
	return [...]string{"active", "inactive", "closed", "maintenance"}[s]
}

// Operational limits applied when no explicit ones are configured.
const (
	DefaultMaxHeadwind  = 45 // knots
	DefaultMaxCrosswind = 15
	DefaultMaxTailwind  = 10
)

// RunwayConfig pairs a runway with its operational wind limits and status.
type RunwayConfig struct {
	Runway       Runway
	MaxHeadwind  float32
	MaxCrosswind float32
	MaxTailwind  float32
	Status       RunwayStatus
	ClosedUntil  time.Time // zero for an indefinite closure
}

func NewRunwayConfig(r Runway) *RunwayConfig {
	return &RunwayConfig{
		Runway:       r,
		MaxHeadwind:  DefaultMaxHeadwind,
		MaxCrosswind: DefaultMaxCrosswind,
		MaxTailwind:  DefaultMaxTailwind,
		Status:       RunwayActive,
	}
}

func (rc *RunwayConfig) Operational() bool {
	return rc.Status == RunwayActive
}

// CanAcceptAircraft checks the wind against the runway's limits; when it
// cannot, the returned string says which limit was exceeded.
func (rc *RunwayConfig) CanAcceptAircraft(w WindConditions) (bool, string) {
	if !rc.Operational() {
		return false, fmt.Sprintf("%s is not operational", rc.Runway.ID)
	}

	crosswind := math.Abs(rc.Runway.CrosswindComponent(w.Direction, w.Speed))
	headwind := rc.Runway.HeadwindComponent(w.Direction, w.Speed)

	if crosswind > rc.MaxCrosswind {
		return false, fmt.Sprintf("crosswind %.1fkts exceeds limit %.1fkts", crosswind, rc.MaxCrosswind)
	}
	if headwind > rc.MaxHeadwind {
		return false, fmt.Sprintf("headwind %.1fkts exceeds limit %.1fkts", headwind, rc.MaxHeadwind)
	}
	if headwind < -rc.MaxTailwind {
		return false, fmt.Sprintf("tailwind %.1fkts exceeds limit %.1fkts", -headwind, rc.MaxTailwind)
	}
	return true, ""
}

// SuitabilityScore rates the runway for the wind: 100 in ideal conditions,
// less as crosswind and tailwind penalties accrue, with a small headwind
// bonus. Closed runways score -100 and operational-but-out-of-limits ones
// -50, so they sort below any acceptable runway.
func (rc *RunwayConfig) SuitabilityScore(w WindConditions) float32 {
	if !rc.Operational() {
		return -100
	}
	if ok, _ := rc.CanAcceptAircraft(w); !ok {
		return -50
	}

	crosswind := math.Abs(rc.Runway.CrosswindComponent(w.Direction, w.Speed))
	headwind := rc.Runway.HeadwindComponent(w.Direction, w.Speed)

	score := float32(100)
	score -= math.Min(crosswind/rc.MaxCrosswind*20, 20)
	if headwind < 0 {
		score -= math.Min(-headwind/rc.MaxTailwind*30, 30)
	} else {
		score += math.Min(headwind/10, 10)
	}

	return math.Max(score, 0)
}

// ConfigChange records one runway switch in the manager's history.
type ConfigChange struct {
	Time time.Time
	From string
	To   string
}

// MinTimeBetweenRunwayChanges throttles configuration churn as the wind
// wanders.
const MinTimeBetweenRunwayChanges = 5 * time.Minute

// RunwayManager owns the airport's runway configuration: which runway is
// active, the wind it is evaluated against, and the change history.
type RunwayManager struct {
	Configs      map[string]*RunwayConfig
	ActiveRunway string
	Wind         WindConditions
	History      []ConfigChange
	LastChange   time.Time
	MinInterval  time.Duration
}

func NewRunwayManager() *RunwayManager {
	return &RunwayManager{
		Configs:     make(map[string]*RunwayConfig),
		MinInterval: MinTimeBetweenRunwayChanges,
	}
}

// AddRunway registers a runway with default limits; the first one added
// starts active.
func (m *RunwayManager) AddRunway(r Runway) {
	m.Configs[r.ID] = NewRunwayConfig(r)
	if m.ActiveRunway == "" {
		m.ActiveRunway = r.ID
	}
}

func (m *RunwayManager) ActiveConfig() *RunwayConfig {
	if m.ActiveRunway == "" {
		return nil
	}
	return m.Configs[m.ActiveRunway]
}

func (m *RunwayManager) UpdateWind(w WindConditions) {
	m.Wind = w
}

// BestRunway returns the operational runway with the highest suitability
// score, or false if none is operational. Ties go to the lexically first
// runway so results don't depend on map order.
func (m *RunwayManager) BestRunway() (string, bool) {
	best, bestScore := "", float32(-100)
	for _, id := range util.SortedMapKeys(m.Configs) {
		cfg := m.Configs[id]
		if !cfg.Operational() {
			continue
		}
		if score := cfg.SuitabilityScore(m.Wind); score > bestScore {
			best, bestScore = id, score
		}
	}
	return best, best != ""
}

// EvaluateConfigurationChange decides whether to switch runways: not
// within MinInterval of the last change, and then only if the active
// runway is out of limits or another beats it by more than 15 points.
func (m *RunwayManager) EvaluateConfigurationChange(now time.Time) (bool, string, string) {
	if now.Sub(m.LastChange) < m.MinInterval {
		return false, "", "minimum time between changes not met"
	}

	cur := m.ActiveConfig()
	best, ok := m.BestRunway()
	if cur == nil || !ok {
		return false, "", "no suitable runways available"
	}
	if best == m.ActiveRunway {
		return false, "", "current runway is optimal"
	}

	if canAccept, reason := cur.CanAcceptAircraft(m.Wind); !canAccept {
		return true, best, "current runway unsuitable: " + reason
	}

	curScore := cur.SuitabilityScore(m.Wind)
	bestScore := m.Configs[best].SuitabilityScore(m.Wind)
	if bestScore > curScore+15 {
		return true, best, fmt.Sprintf("better runway available (score %.0f vs %.0f)", bestScore, curScore)
	}

	return false, "", "current runway acceptable"
}

func (m *RunwayManager) ChangeConfiguration(id string, now time.Time) error {
	cfg, ok := m.Configs[id]
	if !ok {
		return fmt.Errorf("%q: %w", id, ErrUnknownRunway)
	}
	if !cfg.Operational() {
		return fmt.Errorf("%q: %w", id, ErrRunwayNotOperational)
	}

	if old := m.ActiveRunway; old != "" {
		m.History = append(m.History, ConfigChange{Time: now, From: old, To: id})
	}
	m.ActiveRunway = id
	m.LastChange = now
	return nil
}

// CloseRunway takes a runway out of service, optionally until reopenAt
// (zero = indefinite). If it was active, the best remaining runway takes
// over immediately without starting the change-interval clock.
func (m *RunwayManager) CloseRunway(id string, reopenAt time.Time) {
	cfg, ok := m.Configs[id]
	if !ok {
		return
	}
	cfg.Status = RunwayClosed
	cfg.ClosedUntil = reopenAt

	if m.ActiveRunway == id {
		if best, ok := m.BestRunway(); ok {
			m.ActiveRunway = best
		}
	}
}

func (m *RunwayManager) ReopenRunway(id string) {
	if cfg, ok := m.Configs[id]; ok {
		cfg.Status = RunwayActive
		cfg.ClosedUntil = time.Time{}
	}
}

// ReleaseClosures reopens any runway whose timed closure has expired.
func (m *RunwayManager) ReleaseClosures(now time.Time) {
	for _, cfg := range m.Configs {
		if cfg.Status == RunwayClosed && !cfg.ClosedUntil.IsZero() && !now.Before(cfg.ClosedUntil) {
			cfg.Status = RunwayActive
			cfg.ClosedUntil = time.Time{}
		}
	}
}

// Summary renders the configuration for the scope's status pane.
func (m *RunwayManager) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Active runway: %s\n", m.ActiveRunway)
	fmt.Fprintf(&sb, "Wind: %03.0f@%.0f", m.Wind.Direction, m.Wind.Speed)
	if m.Wind.Gust > 0 {
		fmt.Fprintf(&sb, "G%.0f", m.Wind.Gust)
	}
	sb.WriteString("\n")

	for _, id := range util.SortedMapKeys(m.Configs) {
		cfg := m.Configs[id]
		fmt.Fprintf(&sb, "  %-4s %-11s score %.0f", id, cfg.Status, cfg.SuitabilityScore(m.Wind))
		if ok, reason := cfg.CanAcceptAircraft(m.Wind); !ok {
			sb.WriteString("  " + reason)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
