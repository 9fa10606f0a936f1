// nav/speed.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import "github.com/scopesim/scopesim/math"

// updateSpeed integrates indicated airspeed: seek an assigned target at the
// envelope's best acceleration, otherwise fly the commanded acceleration,
// and keep the result inside [min,max].
func (nav *Nav) updateSpeed(dt float32) {
	fs := &nav.FlightState
	p := &nav.Perf

	if tgt := nav.Speed.Assigned; tgt != nil {
		maxDelta := p.MaxAccel * dt
		delta := math.Clamp(*tgt-fs.IAS, -maxDelta, maxDelta)
		fs.Acceleration = delta / dt
		fs.IAS += delta
	} else {
		accel := math.Clamp(nav.Speed.Accel, -p.MaxAccel, p.MaxAccel)
		fs.Acceleration = accel
		fs.IAS += accel * dt
	}

	if clamped := math.Clamp(fs.IAS, p.MinSpeed, p.MaxSpeed); clamped != fs.IAS {
		fs.IAS = clamped
		fs.Acceleration = 0 // pinned at the edge of the envelope
	}
}
