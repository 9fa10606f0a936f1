// nav/alt.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import "github.com/scopesim/scopesim/math"

// updateAltitude integrates altitude: seek an assigned target at the
// envelope's best vertical speed, otherwise fly the commanded rate, and
// keep the result inside [0, ceiling].
func (nav *Nav) updateAltitude(dt float32) {
	fs := &nav.FlightState
	p := &nav.Perf

	if tgt := nav.Altitude.Assigned; tgt != nil {
		maxDelta := p.MaxVerticalSpeed / 60 * dt // fpm -> ft over dt seconds
		delta := math.Clamp(*tgt-fs.Altitude, -maxDelta, maxDelta)
		fs.VerticalRate = delta / dt * 60
		fs.Altitude += delta
	} else {
		rate := math.Clamp(nav.Altitude.Rate, -p.MaxVerticalSpeed, p.MaxVerticalSpeed)
		fs.VerticalRate = rate
		fs.Altitude += rate / 60 * dt
	}

	if clamped := math.Clamp(fs.Altitude, 0, p.Ceiling); clamped != fs.Altitude {
		fs.Altitude = clamped
		fs.VerticalRate = 0 // pinned at the ground or the ceiling
	}
}
