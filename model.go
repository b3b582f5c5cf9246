package main

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// A Model is the triangulated surface of a shape, grouped by the faces
// of the shape in the order the shape enumerates them.
//
// A Model is built once by CollectFaces and is read-only afterwards.
// Every writer consumes the same Model, so face order and triangle
// order are identical across output formats.
type Model struct {
	Name  string
	Faces []Face
}

// A Face is the triangulation of one BREP face in global coordinates.
type Face struct {
	// ID is the ordinal of this face in the shape's face enumeration.
	// Faces without triangles are not part of a Model, so IDs may skip.
	ID int

	Triangles []Triangle
}

// A Triangle is three points wound counter-clockwise when viewed from
// outside the solid.
type Triangle [3]r3.Vec

// Normal returns the unit normal of t by the right-hand rule. A
// degenerate triangle has a zero normal.
func (t Triangle) Normal() r3.Vec {
	n := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
	if r3.Norm(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// Centroid returns the average of t's vertices.
func (t Triangle) Centroid() r3.Vec {
	return r3.Scale(1.0/3, r3.Add(r3.Add(t[0], t[1]), t[2]))
}

// NumTriangles returns the total number of triangles in m.
func (m *Model) NumTriangles() int {
	n := 0
	for _, f := range m.Faces {
		n += len(f.Triangles)
	}
	return n
}

// Bounds returns the axis-aligned bounding box of m. ok is false if m
// has no triangles.
func (m *Model) Bounds() (min, max r3.Vec, ok bool) {
	for _, f := range m.Faces {
		for _, tri := range f.Triangles {
			for _, p := range tri {
				if !ok {
					min, max, ok = p, p, true
					continue
				}
				min = r3.Vec{X: minf(min.X, p.X), Y: minf(min.Y, p.Y), Z: minf(min.Z, p.Z)}
				max = r3.Vec{X: maxf(max.X, p.X), Y: maxf(max.Y, p.Y), Z: maxf(max.Z, p.Z)}
			}
		}
	}
	return
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// near reports whether a and b are within eps of each other on every
// axis.
func near(a, b r3.Vec, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}
