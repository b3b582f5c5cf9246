package main

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hschendel/stl"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReferenceErrorKind classifies why WriteReferenceSTL failed.
type ReferenceErrorKind int

const (
	RefNoShape ReferenceErrorKind = iota
	RefNoTriangulation
	RefWrite
)

func (k ReferenceErrorKind) String() string {
	switch k {
	case RefNoShape:
		return "no shape"
	case RefNoTriangulation:
		return "no triangulation"
	case RefWrite:
		return "write"
	}
	return fmt.Sprintf("ReferenceErrorKind(%d)", int(k))
}

// A ReferenceError is returned by WriteReferenceSTL.
type ReferenceError struct {
	Kind ReferenceErrorKind
	Msg  string
	Err  error // Underlying error, if any
}

func (e *ReferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reference STL: %s: %v", e.Msg, e.Err)
	}
	return "reference STL: " + e.Msg
}

func (e *ReferenceError) Unwrap() error { return e.Err }

// WriteReferenceSTL writes the triangulation of shape as ASCII STL
// using the github.com/hschendel/stl encoder. It walks the shape and
// composes placements on its own rather than going through Walk and
// CollectFaces, so it serves as a baseline to check them and
// WriteASCIISTL against.
func WriteReferenceSTL(w io.Writer, shape *Shape, name string) error {
	if shape == nil {
		return &ReferenceError{Kind: RefNoShape, Msg: "shape is empty"}
	}
	solid := &stl.Solid{Name: name, IsAscii: true}
	solid.Triangles = referenceTriangles(solid.Triangles, shape, mgl64.Ident4(), false)
	if len(solid.Triangles) == 0 {
		return &ReferenceError{Kind: RefNoTriangulation, Msg: "shape has no triangulated faces"}
	}
	if err := solid.WriteAll(w); err != nil {
		return &ReferenceError{Kind: RefWrite, Msg: "writing solid", Err: err}
	}
	return nil
}

// referenceTriangles appends the triangles of the faces under s to
// out. m places the parent of s in the global frame, and reversed says
// whether an odd number of its ancestors are reversed.
func referenceTriangles(out []stl.Triangle, s *Shape, m mgl64.Mat4, reversed bool) []stl.Triangle {
	if s.Location.set {
		m = m.Mul4(s.Location.m)
	}
	if s.Orientation == Reversed {
		reversed = !reversed
	}
	if s.Kind != KindFace {
		if s.Kind >= KindWire {
			return out
		}
		for _, c := range s.Children {
			if c != nil {
				out = referenceTriangles(out, c, m, reversed)
			}
		}
		return out
	}

	tri := s.Triangulation
	if tri == nil {
		return out
	}
	for _, idx := range tri.Triangles {
		var t stl.Triangle
		for i, n := range idx {
			p := tri.Nodes[n]
			t.Vertices[i] = stlVec(mgl64.TransformCoordinate(mgl64.Vec3{p.X, p.Y, p.Z}, m))
		}
		if reversed {
			t.Vertices[1], t.Vertices[2] = t.Vertices[2], t.Vertices[1]
		}
		t.Normal = stlNormal(t.Vertices)
		out = append(out, t)
	}
	return out
}

func stlVec(p mgl64.Vec3) stl.Vec3 {
	return stl.Vec3{float32(p[0]), float32(p[1]), float32(p[2])}
}

func stlNormal(v [3]stl.Vec3) stl.Vec3 {
	var t Triangle
	for i, p := range v {
		t[i] = r3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
	}
	n := t.Normal()
	return stl.Vec3{float32(n.X), float32(n.Y), float32(n.Z)}
}
