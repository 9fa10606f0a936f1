// sim/aircraft_test.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"strings"
	"testing"

	av "github.com/scopesim/scopesim/aviation"
	"github.com/scopesim/scopesim/nav"
)

func TestRequiredSeparation(t *testing.T) {
	for _, c := range []struct {
		a, b av.FlightRules
		want float32
	}{
		{av.FlightRulesVFR, av.FlightRulesVFR, 1},
		{av.FlightRulesVFR, av.FlightRulesIFR, 2},
		{av.FlightRulesIFR, av.FlightRulesVFR, 2},
		{av.FlightRulesIFR, av.FlightRulesIFR, 3},
	} {
		if got := RequiredSeparation(c.a, c.b); got != c.want {
			t.Errorf("RequiredSeparation(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestAircraftSummary(t *testing.T) {
	ac := &Aircraft{
		Callsign:    "UAL1",
		Rules:       av.FlightRulesIFR,
		Destination: "KSMP",
		Nav:         nav.MakeNav([2]float32{0, 0}, 90, 5000, 250, nav.DefaultPerformance()),
	}
	s := ac.Summary()
	if !strings.Contains(s, "UAL1") || !strings.Contains(s, "IFR") {
		t.Errorf("summary %q missing callsign or rules", s)
	}
	if d := ac.DebugDump(); !strings.Contains(d, "UAL1") {
		t.Errorf("debug dump does not mention the callsign")
	}
}
