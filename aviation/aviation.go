// aviation/aviation.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package aviation holds the static aeronautical types the simulation is
// built from: airports and runways with their approach geometry, fixes,
// routes and procedures, holding patterns, airspace sectors, and the
// wind-driven runway configuration logic.
//
// Positions throughout are [2]float32 coordinates on a flat nautical-mile
// plane centered on the scenario; math.LL2NM bridges latitude-longitude
// scenario data onto it.
package aviation

import (
	"encoding/json"
	"fmt"
)

// Callsign identifies an aircraft ("UAL123"). It is the key used by every
// registry that tracks per-aircraft state.
type Callsign string

func (c Callsign) String() string { return string(c) }

// Frequencies are scaled by 1000 and then stored in integers.
type Frequency int

func NewFrequency(f float32) Frequency {
	// 0.5 is key for handling rounding!
	return Frequency(f*1000 + 0.5)
}

func (f Frequency) String() string {
	s := fmt.Sprintf("%03d.%03d", f/1000, f%1000)
	for len(s) < 7 {
		s += "0"
	}
	return s
}

// Frequencies appear in JSON as MHz ("frequency": 135.65), not as the
// scaled integer.
func (f Frequency) MarshalJSON() ([]byte, error) {
	return json.Marshal(float32(f) / 1000)
}

func (f *Frequency) UnmarshalJSON(b []byte) error {
	var mhz float32
	if err := json.Unmarshal(b, &mhz); err != nil {
		return err
	}
	*f = NewFrequency(mhz)
	return nil
}

type FlightRules int

const (
	FlightRulesIFR FlightRules = iota
	FlightRulesVFR
)

func (f FlightRules) String() string {
	return [...]string{"IFR", "VFR"}[f]
}
