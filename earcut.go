package main

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

type vec2 struct{ x, y float64 }

func cross2(o, a, b vec2) float64 {
	return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
}

// triangulatePolygon triangulates the planar polygon with boundary
// outer and the given holes, which all lie in a plane with normal n.
// It returns the points of all rings, outer first, and triangles
// indexing them, wound counter-clockwise about n.
//
// The polygon is projected onto the coordinate plane most parallel to
// it, holes are joined to the outer boundary by bridge edges, and the
// result is ear clipped.
func triangulatePolygon(outer []r3.Vec, holes [][]r3.Vec, n r3.Vec) ([]r3.Vec, [][3]int, error) {
	project := projector(n)

	var nodes []r3.Vec
	var pts []vec2
	ring := func(r []r3.Vec) []int {
		idx := make([]int, len(r))
		for i, p := range r {
			idx[i] = len(nodes)
			nodes = append(nodes, p)
			pts = append(pts, project(p))
		}
		return idx
	}

	poly := ring(outer)
	if signedArea(pts, poly) < 0 {
		reverseInts(poly)
	}
	var holeRings [][]int
	for _, h := range holes {
		hr := ring(h)
		if signedArea(pts, hr) > 0 {
			reverseInts(hr)
		}
		holeRings = append(holeRings, hr)
	}

	// Bridge holes from the right-most inwards, so earlier bridges
	// can't cross later holes.
	sort.SliceStable(holeRings, func(i, j int) bool {
		return pts[rightmost(pts, holeRings[i])].x > pts[rightmost(pts, holeRings[j])].x
	})
	for _, h := range holeRings {
		var err error
		poly, err = bridgeHole(pts, poly, h)
		if err != nil {
			return nil, nil, err
		}
	}

	return nodes, earClip(pts, poly), nil
}

// projector returns a function mapping points to 2D so that a polygon
// counter-clockwise about n stays counter-clockwise.
func projector(n r3.Vec) func(r3.Vec) vec2 {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case az >= ax && az >= ay:
		s := math.Copysign(1, n.Z)
		return func(p r3.Vec) vec2 { return vec2{s * p.X, p.Y} }
	case ax >= ay:
		s := math.Copysign(1, n.X)
		return func(p r3.Vec) vec2 { return vec2{s * p.Y, p.Z} }
	default:
		s := math.Copysign(1, n.Y)
		return func(p r3.Vec) vec2 { return vec2{s * p.Z, p.X} }
	}
}

func signedArea(pts []vec2, ring []int) float64 {
	var a float64
	for i, idx := range ring {
		p, q := pts[idx], pts[ring[(i+1)%len(ring)]]
		a += p.x*q.y - q.x*p.y
	}
	return a / 2
}

func reverseInts(xs []int) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}

func rightmost(pts []vec2, ring []int) int {
	best := ring[0]
	for _, i := range ring[1:] {
		if pts[i].x > pts[best].x {
			best = i
		}
	}
	return best
}

// bridgeHole splices hole into poly through a pair of coincident
// bridge edges between the right-most hole vertex and a vertex of poly
// visible from it.
func bridgeHole(pts []vec2, poly, hole []int) ([]int, error) {
	m := rightmost(pts, hole)
	mp := pts[m]

	// Cast a ray from m towards +x and find the nearest edge it hits.
	hitX := math.Inf(1)
	cand := -1
	for i := range poly {
		a, b := pts[poly[i]], pts[poly[(i+1)%len(poly)]]
		if a.y == b.y || mp.y < math.Min(a.y, b.y) || mp.y > math.Max(a.y, b.y) {
			continue
		}
		x := a.x + (mp.y-a.y)*(b.x-a.x)/(b.y-a.y)
		if x < mp.x || x >= hitX {
			continue
		}
		hitX = x
		switch {
		case x == a.x && mp.y == a.y:
			cand = i
		case x == b.x && mp.y == b.y:
			cand = (i + 1) % len(poly)
		case a.x > b.x:
			cand = i
		default:
			cand = (i + 1) % len(poly)
		}
	}
	if cand < 0 {
		return nil, errors.New("hole is outside its face boundary")
	}

	// A vertex of poly inside the triangle (m, hit, cand) could block
	// the bridge. If there is one, the one closest in angle to the ray
	// is visible instead.
	hit := vec2{hitX, mp.y}
	cp := pts[poly[cand]]
	if hit != cp {
		bestTan := math.Inf(1)
		for i, idx := range poly {
			p := pts[idx]
			if i == cand || p == mp || p.x < mp.x || !inTriangle(mp, hit, cp, p) {
				continue
			}
			tan := math.Abs(p.y-mp.y) / (p.x - mp.x)
			if tan < bestTan || (tan == bestTan && p.x > pts[poly[cand]].x) {
				bestTan = tan
				cand = i
			}
		}
	}

	// Rotate the hole to start at m.
	start := 0
	for i, idx := range hole {
		if idx == m {
			start = i
		}
	}
	out := make([]int, 0, len(poly)+len(hole)+2)
	out = append(out, poly[:cand+1]...)
	for k := 0; k <= len(hole); k++ {
		out = append(out, hole[(start+k)%len(hole)])
	}
	out = append(out, poly[cand])
	out = append(out, poly[cand+1:]...)
	return out, nil
}

// inTriangle reports whether p is inside or on the boundary of the
// triangle abc, whichever way it is wound.
func inTriangle(a, b, c, p vec2) bool {
	d1, d2, d3 := cross2(a, b, p), cross2(b, c, p), cross2(c, a, p)
	neg := d1 < 0 || d2 < 0 || d3 < 0
	pos := d1 > 0 || d2 > 0 || d3 > 0
	return !(neg && pos)
}

// earClip triangulates the counter-clockwise simple polygon poly.
func earClip(pts []vec2, poly []int) [][3]int {
	var tris [][3]int
	ring := append([]int(nil), poly...)
	for len(ring) > 3 {
		found := false
		bestI, bestCross := -1, 0.0
		for i := range ring {
			a := pts[ring[(i+len(ring)-1)%len(ring)]]
			b := pts[ring[i]]
			c := pts[ring[(i+1)%len(ring)]]
			cr := cross2(a, b, c)
			if cr > bestCross {
				bestI, bestCross = i, cr
			}
			if cr <= 0 || !isEar(pts, ring, a, b, c) {
				continue
			}
			tris = append(tris, earAt(ring, i))
			ring = append(ring[:i], ring[i+1:]...)
			found = true
			break
		}
		if found {
			continue
		}
		if bestI < 0 {
			// Everything left is collinear.
			return tris
		}
		// No clean ear, which happens with touching or slightly
		// self-intersecting boundaries. Clip the most convex corner
		// anyway so the face isn't lost.
		tris = append(tris, earAt(ring, bestI))
		ring = append(ring[:bestI], ring[bestI+1:]...)
	}
	if len(ring) == 3 && cross2(pts[ring[0]], pts[ring[1]], pts[ring[2]]) > 0 {
		tris = append(tris, [3]int{ring[0], ring[1], ring[2]})
	}
	return tris
}

func earAt(ring []int, i int) [3]int {
	return [3]int{ring[(i+len(ring)-1)%len(ring)], ring[i], ring[(i+1)%len(ring)]}
}

func isEar(pts []vec2, ring []int, a, b, c vec2) bool {
	for _, idx := range ring {
		p := pts[idx]
		if p == a || p == b || p == c {
			continue
		}
		if inTriangle(a, b, c, p) {
			return false
		}
	}
	return true
}
