package main

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// ShapeKind is the topological type of a Shape. Kinds are ordered from
// the top of the hierarchy to the bottom, so a child always has a
// larger kind than its parent (except that compounds may nest).
type ShapeKind uint8

const (
	KindCompound ShapeKind = iota
	KindSolid
	KindShell
	KindFace
	KindWire
	KindEdge
	KindVertex
)

var kindNames = [...]string{
	KindCompound: "compound",
	KindSolid:    "solid",
	KindShell:    "shell",
	KindFace:     "face",
	KindWire:     "wire",
	KindEdge:     "edge",
	KindVertex:   "vertex",
}

func (k ShapeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ShapeKind(%d)", k)
}

func parseShapeKind(s string) (ShapeKind, error) {
	for k, name := range kindNames {
		if name == s {
			return ShapeKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown shape type %q", s)
}

// Orientation says whether a sub-shape is used in the same sense as
// its underlying geometry or in the opposite sense. For a face, it
// says whether the outward direction of the solid agrees with the
// natural normal of the face's surface.
type Orientation uint8

const (
	Forward Orientation = iota
	Reversed
)

func (o Orientation) String() string {
	switch o {
	case Forward:
		return "forward"
	case Reversed:
		return "reversed"
	}
	return fmt.Sprintf("Orientation(%d)", o)
}

// Compose returns the orientation of a child with orientation c when
// its parent is used with orientation o.
func (o Orientation) Compose(c Orientation) Orientation {
	if o == c {
		return Forward
	}
	return Reversed
}

func parseOrientation(s string) (Orientation, error) {
	switch s {
	case "", "forward":
		return Forward, nil
	case "reversed":
		return Reversed, nil
	}
	return 0, fmt.Errorf("unknown orientation %q", s)
}

// A Location places a shape relative to its parent. The zero Location
// is the identity.
type Location struct {
	m   mgl64.Mat4
	set bool
}

// NewLocation returns the location that rotates by angle degrees
// around axis and then translates by t.
func NewLocation(t r3.Vec, axis r3.Vec, angle float64) Location {
	m := mgl64.Translate3D(t.X, t.Y, t.Z)
	if angle != 0 && r3.Norm(axis) != 0 {
		a := mgl64.Vec3{axis.X, axis.Y, axis.Z}.Normalize()
		m = m.Mul4(mgl64.HomogRotate3D(mgl64.DegToRad(angle), a))
	}
	return Location{m, true}
}

// IsIdentity reports whether l leaves every point where it is.
func (l Location) IsIdentity() bool {
	return !l.set || l.m == mgl64.Ident4()
}

// Compose returns the location of a child placed at c inside a parent
// placed at l.
func (l Location) Compose(c Location) Location {
	switch {
	case !c.set:
		return l
	case !l.set:
		return c
	}
	return Location{l.m.Mul4(c.m), true}
}

// Apply maps p from the local frame into the frame l is relative to.
func (l Location) Apply(p r3.Vec) r3.Vec {
	if !l.set {
		return p
	}
	v := mgl64.TransformCoordinate(mgl64.Vec3{p.X, p.Y, p.Z}, l.m)
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// A Shape is a node in a boundary representation. Faces carry their
// surface and, once meshed, a triangulation in face-local coordinates.
// Edges carry a curve and vertices carry a point.
type Shape struct {
	Kind        ShapeKind
	Orientation Orientation
	Location    Location
	Children    []*Shape

	Surface       *Surface       // Faces only
	Triangulation *Triangulation // Faces only; nil until meshed
	Curve         *Curve         // Edges only
	Point         r3.Vec         // Vertices only
}

// Triangulation is a face mesh. Triangles index into Nodes and are
// wound counter-clockwise about the natural normal of the surface.
type Triangulation struct {
	Nodes     []r3.Vec
	Triangles [][3]int
}

type SurfaceKind uint8

const (
	SurfacePlane SurfaceKind = iota
	SurfaceOther
)

type Surface struct {
	Kind   SurfaceKind
	Name   string // Type name as given in the document
	Origin r3.Vec
	Normal r3.Vec // Plane only
}

type CurveKind uint8

const (
	CurveLine CurveKind = iota
	CurveCircle
)

type Curve struct {
	Kind   CurveKind
	Center r3.Vec
	Axis   r3.Vec
	Radius float64
}

func (c *Curve) String() string {
	if c == nil {
		return "none"
	}
	switch c.Kind {
	case CurveLine:
		return "line"
	case CurveCircle:
		return fmt.Sprintf("circle r=%v", c.Radius)
	}
	return "unknown"
}

// A Visit describes one sub-shape reached by Walk, with its location
// and orientation composed from all of its ancestors.
type Visit struct {
	Shape       *Shape
	Location    Location
	Orientation Orientation
	Depth       int
}

// Walk visits s and its sub-shapes in depth-first pre-order, which is
// the order in which a BREP enumerates its faces. fn returns whether
// to descend into the children of the visited shape.
//
// Walk uses an explicit stack so deeply nested assemblies cannot
// exhaust the goroutine stack.
func Walk(s *Shape, fn func(v Visit) bool) {
	if s == nil {
		return
	}
	stack := []Visit{{s, s.Location, s.Orientation, 0}}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(v) {
			continue
		}
		// Push in reverse so the first child is popped first.
		for i := len(v.Shape.Children) - 1; i >= 0; i-- {
			c := v.Shape.Children[i]
			if c == nil {
				continue
			}
			stack = append(stack, Visit{
				Shape:       c,
				Location:    v.Location.Compose(c.Location),
				Orientation: v.Orientation.Compose(c.Orientation),
				Depth:       v.Depth + 1,
			})
		}
	}
}
