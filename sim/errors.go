// sim/errors.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
)

var (
	ErrAircraftLanded         = errors.New("Aircraft has already landed")
	ErrCommandTooSoon         = errors.New("Too soon since the last clearance")
	ErrDuplicateCallsign      = errors.New("Duplicate callsign")
	ErrHandoffPending         = errors.New("Aircraft already has a handoff pending")
	ErrInvalidScenarioFile    = errors.New("Invalid scenario file")
	ErrInvalidScenarioState   = errors.New("Invalid scenario state transition")
	ErrNoActiveRunway         = errors.New("No active runway")
	ErrNoHandoffPending       = errors.New("No handoff pending for aircraft")
	ErrNotHolding             = errors.New("Aircraft is not holding")
	ErrScenarioNotRunning     = errors.New("Scenario is not running")
	ErrTooManyAircraft        = errors.New("Aircraft limit reached")
	ErrUnassignedAircraft     = errors.New("Aircraft is not assigned to a sector")
	ErrUnknownAircraft        = errors.New("Unknown aircraft")
	ErrUnknownScenario        = errors.New("Unknown scenario")
	ErrUnknownSector          = errors.New("Unknown sector")
)
