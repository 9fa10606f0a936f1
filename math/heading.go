// math/heading.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// headings and directions

// Headings are always aviation-style: degrees, 0 is north, and they
// increase clockwise. The conversion to the trigonometric convention
// happens in one place, Heading2V.

// NormalizeHeading reduces a heading to [0,360).
func NormalizeHeading(h float32) float32 {
	if h < 0 {
		return 360 - NormalizeHeading(-h)
	}
	return Mod(h, 360)
}

// NormalizeSignedHeading reduces an angle between headings to (-180,180].
func NormalizeSignedHeading(h float32) float32 {
	h = NormalizeHeading(h)
	if h > 180 {
		h -= 360
	}
	return h
}

func OppositeHeading(h float32) float32 {
	return NormalizeHeading(h + 180)
}

// HeadingDifference returns the minimum difference between two
// headings. (i.e., the result is always in the range [0,180].)
func HeadingDifference(a float32, b float32) float32 {
	var d float32
	if a > b {
		d = a - b
	} else {
		d = b - a
	}
	if d > 180 {
		d = 360 - d
	}
	return d
}

// HeadingSignedTurn returns the signed turn from cur to target, negative
// for left turns. It works by rotating both headings so that the target is
// aligned with 180 degrees, which lets us not worry about the wrap around
// at 0/360.
func HeadingSignedTurn(cur, target float32) float32 {
	rot := NormalizeHeading(180 - target)
	return 180 - NormalizeHeading(cur+rot) // w.r.t. 180 target
}

// Heading2V returns the unit direction vector for an aviation heading;
// passing [sin, cos] rather than [cos, sin] is what maps heading 0 to +y
// (north) and heading 90 to +x (east).
func Heading2V(hdg float32) [2]float32 {
	return SinCos(Radians(hdg))
}

// V2Heading returns the aviation heading that the vector v points along.
func V2Heading(v [2]float32) float32 {
	return NormalizeHeading(Degrees(Atan2(v[0], v[1])))
}

// VectorHeading returns the heading from the point from to the point to.
func VectorHeading(from, to [2]float32) float32 {
	return V2Heading(Sub2f(to, from))
}

// ShortCompass converts a heading expressed in degrees into an abbreviated
// string corresponding to the closest compass direction.
func ShortCompass(heading float32) string {
	h := NormalizeHeading(heading + 22.5) // now [0,45] is north, etc...
	idx := int(h / 45)
	return [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}[idx]
}
