// math/geom.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// geometry

// PointInPolygon returns whether p is inside the polygon with the given
// ordered vertices, using the even-odd rule with a ray cast toward +x.
func PointInPolygon(p [2]float32, pts [][2]float32) bool {
	inside := false
	for i := 0; i < len(pts); i++ {
		p0, p1 := pts[i], pts[(i+1)%len(pts)]
		if (p0[1] <= p[1] && p[1] < p1[1]) || (p1[1] <= p[1] && p[1] < p0[1]) {
			x := p0[0] + (p[1]-p0[1])*(p1[0]-p0[0])/(p1[1]-p0[1])
			if x > p[0] {
				inside = !inside
			}
		}
	}
	return inside
}

// PointSegmentDistance returns the distance from p to the line segment
// from v to w.
func PointSegmentDistance(p, v, w [2]float32) float32 {
	l := Sub2f(v, w)
	l2 := Dot(l, l)
	if l2 == 0 {
		return Length2f(Sub2f(p, v))
	}
	t := Clamp(Dot(Sub2f(p, v), Sub2f(w, v))/l2, 0, 1)
	proj := Add2f(v, Scale2f(Sub2f(w, v), t))
	return Distance2f(p, proj)
}

// PointPolygonDistance returns the minimum distance from p to the boundary
// of the polygon with the given ordered vertices. Note that it is the
// distance to the boundary regardless of whether p is inside or outside.
func PointPolygonDistance(p [2]float32, pts [][2]float32) float32 {
	if len(pts) == 0 {
		return 0
	}
	d := Distance2f(p, pts[0])
	for i := 0; i < len(pts); i++ {
		v, w := pts[i], pts[(i+1)%len(pts)]
		d = Min(d, PointSegmentDistance(p, v, w))
	}
	return d
}

// PointCircleDistance returns the distance from p to the circle's boundary,
// regardless of whether p is inside or outside it.
func PointCircleDistance(p, center [2]float32, radius float32) float32 {
	return Abs(Distance2f(p, center) - radius)
}
