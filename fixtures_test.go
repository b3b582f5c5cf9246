package main

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// squareFace returns the unit square face of the unit cube lying in the
// plane where coordinate axis equals c. The face's surface normal is
// the +axis direction, and its triangulation and boundary wire are
// counter-clockwise about that normal. o says whether the cube's
// outward direction is the other way.
func squareFace(axis int, c float64, o Orientation) *Shape {
	// Corners in (u, v) of the plane, counter-clockwise about +axis.
	uv := [4][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	pt := func(u, v float64) r3.Vec {
		switch axis {
		case 0:
			return r3.Vec{X: c, Y: u, Z: v}
		case 1:
			return r3.Vec{X: v, Y: c, Z: u}
		}
		return r3.Vec{X: u, Y: v, Z: c}
	}
	var normal r3.Vec
	switch axis {
	case 0:
		normal.X = 1
	case 1:
		normal.Y = 1
	default:
		normal.Z = 1
	}

	tri := &Triangulation{Triangles: [][3]int{{0, 1, 2}, {0, 2, 3}}}
	wire := &Shape{Kind: KindWire}
	for i, p := range uv {
		q := uv[(i+1)%4]
		tri.Nodes = append(tri.Nodes, pt(p[0], p[1]))
		wire.Children = append(wire.Children, lineEdge(pt(p[0], p[1]), pt(q[0], q[1])))
	}
	return &Shape{
		Kind:          KindFace,
		Orientation:   o,
		Surface:       &Surface{Kind: SurfacePlane, Name: "plane", Origin: pt(0, 0), Normal: normal},
		Triangulation: tri,
		Children:      []*Shape{wire},
	}
}

func lineEdge(a, b r3.Vec) *Shape {
	return &Shape{
		Kind:  KindEdge,
		Curve: &Curve{Kind: CurveLine},
		Children: []*Shape{
			{Kind: KindVertex, Point: a},
			{Kind: KindVertex, Point: b},
		},
	}
}

// cubeShape returns the unit cube [0,1]³ as a solid with one shell and
// six triangulated faces. As in typical CAD kernels, the three faces
// through the origin use their planes reversed.
func cubeShape() *Shape {
	shell := &Shape{Kind: KindShell, Children: []*Shape{
		squareFace(2, 0, Reversed),
		squareFace(2, 1, Forward),
		squareFace(0, 0, Reversed),
		squareFace(0, 1, Forward),
		squareFace(1, 0, Reversed),
		squareFace(1, 1, Forward),
	}}
	return &Shape{Kind: KindSolid, Children: []*Shape{shell}}
}

// stripTriangulations removes every face triangulation from s.
func stripTriangulations(s *Shape) *Shape {
	Walk(s, func(v Visit) bool {
		v.Shape.Triangulation = nil
		return true
	})
	return s
}

var cubeCentroid = r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}

// assertOutward checks that every triangle of m faces away from center.
func assertOutward(t *testing.T, m *Model, center r3.Vec) {
	t.Helper()
	for _, f := range m.Faces {
		for i, tri := range f.Triangles {
			n := tri.Normal()
			if d := r3.Dot(n, r3.Sub(tri.Centroid(), center)); d <= 0 {
				t.Errorf("face %d triangle %d: normal %v points inward (dot %v)", f.ID, i, n, d)
			}
		}
	}
}

func assertNear(t *testing.T, msg string, got, want r3.Vec) {
	t.Helper()
	if r3.Norm(r3.Sub(got, want)) > 1e-9 {
		t.Errorf("got %s = %v, want %v", msg, got, want)
	}
}

// assertBetween checks that x is in [a, b].
func assertBetween(t *testing.T, msg string, x, a, b float64) {
	t.Helper()
	if a <= x && x <= b {
		return
	}
	t.Errorf("got %s = %v, want in range [%v, %v]", msg, x, a, b)
}

func triangleArea(tri Triangle) float64 {
	return r3.Norm(r3.Cross(r3.Sub(tri[1], tri[0]), r3.Sub(tri[2], tri[0]))) / 2
}

func modelArea(m *Model) float64 {
	var a float64
	for _, f := range m.Faces {
		for _, tri := range f.Triangles {
			a += triangleArea(tri)
		}
	}
	return a
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
