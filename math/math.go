// math/math.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package math provides the 2D vector, heading, and geometry kernel used
// throughout the simulation. Positions are expressed in nautical miles on a
// local plane, velocities in knot-components, and headings in aviation
// degrees (0 = north, increasing clockwise).
package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

// Degrees converts an angle expressed in radians to degrees.
func Degrees(r float32) float32 {
	return r * 180 / gomath.Pi
}

// Radians converts an angle expressed in degrees to radians.
func Radians(d float32) float32 {
	return d / 180 * gomath.Pi
}

// Mostly we work with float32, so it's handy to have these wrappers rather
// than writing out the casts that the float64-only math package requires.

func Sin(a float32) float32 {
	return float32(gomath.Sin(float64(a)))
}

func Cos(a float32) float32 {
	return float32(gomath.Cos(float64(a)))
}

// SinCos returns sin(a) and cos(a) together; note that SinCos(Radians(hdg))
// is the unit direction vector for the aviation heading hdg, since the
// [sin, cos] component order performs the 90°-heading axis swap.
func SinCos(a float32) [2]float32 {
	s, c := gomath.Sincos(float64(a))
	return [2]float32{float32(s), float32(c)}
}

func Tan(a float32) float32 {
	return float32(gomath.Tan(float64(a)))
}

func Atan2(y, x float32) float32 {
	return float32(gomath.Atan2(float64(y), float64(x)))
}

// SafeASin clamps its argument to [-1,1] so that accumulated float error in
// a ratio can't take us outside asin's domain.
func SafeASin(a float32) float32 {
	return float32(gomath.Asin(float64(Clamp(a, -1, 1))))
}

func SafeACos(a float32) float32 {
	return float32(gomath.Acos(float64(Clamp(a, -1, 1))))
}

func Sqrt(a float32) float32 {
	return float32(gomath.Sqrt(float64(a)))
}

func Mod(a, b float32) float32 {
	return float32(gomath.Mod(float64(a), float64(b)))
}

func Floor(v float32) float32 {
	return float32(gomath.Floor(float64(v)))
}

func Ceil(v float32) float32 {
	return float32(gomath.Ceil(float64(v)))
}

func Round(v float32) float32 {
	return float32(gomath.Round(float64(v)))
}

func Sign(v float32) float32 {
	if v > 0 {
		return 1
	} else if v < 0 {
		return -1
	}
	return 0
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// Lerp interpolates x of the way between a and b.
func Lerp(x, a, b float32) float32 {
	return (1-x)*a + x*b
}
