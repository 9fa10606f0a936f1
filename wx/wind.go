// wx/wind.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package wx models the weather the simulation flies through: altitude-banded
// wind layers, cloud cover, visibility, and the derived flight category and
// METAR-style text that the scope presents to the user.
package wx

import (
	"strconv"
	"strings"

	"github.com/scopesim/scopesim/math"
	"github.com/scopesim/scopesim/util"
)

// WindLayer gives the wind over an altitude band. Direction is the heading
// the wind blows from, per aviation convention; a 270 wind pushes aircraft
// toward the east.
type WindLayer struct {
	DirectionFrom float32 `json:"direction"`
	Speed         float32 `json:"speed"`
	Gust          float32 `json:"gust,omitempty"`
	Base          float32 `json:"base"`
	Top           float32 `json:"top"`
}

// ContainsAltitude reports whether alt falls within the layer's band; both
// bounds are inclusive.
func (w WindLayer) ContainsAltitude(alt float32) bool {
	return alt >= w.Base && alt <= w.Top
}

// Vector returns the wind's effect on an aircraft in knot components: a wind
// from 360 at 10kt yields (0,-10), pushing traffic southbound.
func (w WindLayer) Vector() [2]float32 {
	u, v := DirSpeedToUV(w.DirectionFrom, w.Speed)
	return [2]float32{u, v}
}

// DirSpeedToUV converts a direction the wind blows from and a speed into
// u (east) and v (north) components of the wind's motion.
func DirSpeedToUV(dir, spd float32) (u, v float32) {
	u = -spd * math.Sin(math.Radians(dir))
	v = -spd * math.Cos(math.Radians(dir))
	return
}

// UVToDirSpeed is the inverse of DirSpeedToUV.
func UVToDirSpeed(u, v float32) (dir, spd float32) {
	spd = math.Sqrt(u*u + v*v)
	dir = math.NormalizeHeading(270 - math.Degrees(math.Atan2(v, u)))
	return
}

// WindField is an ordered stack of wind layers; it is the form the
// kinematics integrator samples wind through. Unlike
// Conditions.WindAtAltitude, which falls back to the nearest layer,
// sampling a WindField outside every band yields calm air.
type WindField []WindLayer

// WindVector returns the knot components of the first layer containing alt,
// or a zero vector if no layer does.
func (f WindField) WindVector(alt float32) [2]float32 {
	for _, layer := range f {
		if layer.ContainsAltitude(alt) {
			return layer.Vector()
		}
	}
	return [2]float32{}
}

func (w *WindLayer) PostDeserialize(e *util.ErrorLogger) {
	if w.DirectionFrom < 0 || w.DirectionFrom > 360 {
		e.ErrorString("wind direction %v must be between 0-360", w.DirectionFrom)
	}
	if w.Speed < 0 {
		e.ErrorString("wind speed %v must be >= 0", w.Speed)
	}
	if w.Gust != 0 && w.Gust < w.Speed {
		e.ErrorString("gusts %v must be >= sustained speed %v", w.Gust, w.Speed)
	}
	if w.Base > w.Top {
		e.ErrorString("wind layer base %v is above its top %v", w.Base, w.Top)
	}
}

// ParseWindLayers parses a string of the form
// "base-top/dir/spd,base-top/dir/spd,..." (gusts as e.g. "15g25") and
// returns the corresponding WindLayer objects. Errors are logged to the
// provided ErrorLogger.
func ParseWindLayers(str string, e *util.ErrorLogger) []WindLayer {
	var layers []WindLayer
	for l := range strings.SplitSeq(str, ",") {
		f := strings.Split(l, "/")
		var layer WindLayer
		if len(f) != 3 {
			e.ErrorString("expected three fields separated by '/'s in wind layer %q entry", l)
			continue
		}
		for i := range f {
			f[i] = strings.TrimSpace(f[i])
		}

		base, top, ok := strings.Cut(f[0], "-")
		if !ok {
			e.ErrorString("expected altitude band \"base-top\" in wind layer %q", l)
			continue
		}
		if alt, err := strconv.Atoi(base); err != nil {
			e.ErrorString("invalid base altitude %q in wind layer %q", base, l)
			continue
		} else {
			layer.Base = float32(alt)
		}
		if alt, err := strconv.Atoi(top); err != nil {
			e.ErrorString("invalid top altitude %q in wind layer %q", top, l)
			continue
		} else {
			layer.Top = float32(alt)
		}

		if dir, err := strconv.Atoi(f[1]); err != nil {
			e.ErrorString("invalid direction %q in wind layer %q", f[1], l)
			continue
		} else if dir < 0 || dir > 360 {
			e.ErrorString("wind layer direction %d must be between 0-360", dir)
			continue
		} else {
			layer.DirectionFrom = float32(dir)
		}

		s, g, ok := strings.Cut(f[2], "g")
		if ok {
			if gst, err := strconv.Atoi(g); err != nil {
				e.ErrorString("invalid gust %q in wind layer %q", g, l)
				continue
			} else if gst < 0 {
				e.ErrorString("gusts %d must be >= 0 in wind layer %q", gst, l)
				continue
			} else {
				layer.Gust = float32(gst)
			}
		}
		if spd, err := strconv.Atoi(s); err != nil {
			e.ErrorString("invalid speed %q in wind layer %q", s, l)
			continue
		} else if spd < 0 {
			e.ErrorString("speed %d must be >= 0 in wind layer %q", spd, l)
			continue
		} else {
			layer.Speed = float32(spd)
		}

		if layer.Gust != 0 && layer.Gust < layer.Speed {
			e.ErrorString("gusts %v must be >= speed %v in wind layer %q", layer.Gust, layer.Speed, l)
			continue
		}
		if layer.Base > layer.Top {
			e.ErrorString("wind layer base %v is above its top %v in %q", layer.Base, layer.Top, l)
			continue
		}

		layers = append(layers, layer)
	}
	return layers
}
