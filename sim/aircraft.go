// sim/aircraft.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/goforj/godump"
	av "github.com/scopesim/scopesim/aviation"
	"github.com/scopesim/scopesim/nav"
)

// Aircraft is one airplane in the simulation: its identity, where it's
// going, and its navigation state. Sector assignment and happiness are
// owned by the sector manager and the scoring engine respectively and are
// looked up by callsign, never held here.
type Aircraft struct {
	Callsign    av.Callsign    `json:"callsign"`
	Type        string         `json:"type,omitempty"` // e.g. "B738"
	Rules       av.FlightRules `json:"rules"`
	Destination string         `json:"destination"` // airport id
	SpawnTime   time.Time      `json:"spawn_time"`
	Nav         *nav.Nav       `json:"nav"`
}

func (ac *Aircraft) Position() [2]float32 { return ac.Nav.FlightState.Position }
func (ac *Aircraft) Altitude() float32    { return ac.Nav.FlightState.Altitude }
func (ac *Aircraft) Heading() float32     { return ac.Nav.FlightState.Heading }
func (ac *Aircraft) Landed() bool         { return ac.Nav.FlightState.Landed }

// Summary gives a one-line state description for the TUI flight list.
func (ac *Aircraft) Summary() string {
	return fmt.Sprintf("%s (%v) %s", ac.Callsign, ac.Rules, ac.Nav.Summary())
}

// DebugDump returns an exhaustive pretty-printed dump of the aircraft for
// the TUI detail pane and bug reports.
func (ac *Aircraft) DebugDump() string {
	return godump.DumpStr(ac)
}

func (ac *Aircraft) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("callsign", string(ac.Callsign)),
		slog.String("rules", ac.Rules.String()),
		slog.String("destination", ac.Destination),
		slog.Any("state", ac.Nav.FlightState))
}

// RequiredSeparation is the lateral separation in NM that must be kept
// between two aircraft, by their flight rules: two VFRs see and avoid each
// other, mixed pairs get more room, and IFR pairs the most.
func RequiredSeparation(a, b av.FlightRules) float32 {
	switch {
	case a == av.FlightRulesVFR && b == av.FlightRulesVFR:
		return 1
	case a == av.FlightRulesIFR && b == av.FlightRulesIFR:
		return 3
	default:
		return 2
	}
}
