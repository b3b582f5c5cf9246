package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// A Mesher computes face triangulations for shapes that don't already
// carry them. It handles planar faces bounded by lines and circular
// arcs. Faces on other surfaces must come with a triangulation.
type Mesher struct {
	// LinearTolerance bounds the distance between a circular edge and
	// the chords that replace it.
	LinearTolerance float64

	// Workers limits how many faces are meshed at once. Zero means no
	// limit.
	Workers int
}

// MeshStats counts what Perform did with each face.
type MeshStats struct {
	Faces       int // Faces in the shape
	Existing    int // Already triangulated
	Meshed      int
	Unsupported int // Non-planar, left without a triangulation
	Failed      int
}

var errUnsupportedSurface = errors.New("surface cannot be meshed")

// joinEps is how close the end of one edge must be to the start of the
// next for them to share a boundary point.
const joinEps = 1e-9

// maxArcSegments bounds the number of chords in a full circle. Below
// the tolerance this reaches, chords may deviate from the arc by more
// than the linear tolerance.
const maxArcSegments = 1024

// Perform triangulates every face of shape that has no triangulation.
// Faces that can't be meshed are reported and left as they are; only a
// cancelled context makes Perform fail.
func (m *Mesher) Perform(ctx context.Context, shape *Shape) (MeshStats, error) {
	var stats MeshStats
	var faces []*Shape
	Walk(shape, func(v Visit) bool {
		if v.Shape.Kind == KindFace {
			faces = append(faces, v.Shape)
			return false
		}
		return v.Shape.Kind < KindWire
	})
	stats.Faces = len(faces)

	type result struct {
		tri *Triangulation
		err error
	}
	results := make([]result, len(faces))
	g, ctx := errgroup.WithContext(ctx)
	if m.Workers > 0 {
		g.SetLimit(m.Workers)
	}
	for i, f := range faces {
		if f.Triangulation != nil {
			continue
		}
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tri, err := tessellateFace(f, m.LinearTolerance)
			results[i] = result{tri, err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	// Faces are only modified once every worker is done.
	for i, f := range faces {
		r := results[i]
		switch {
		case f.Triangulation != nil:
			stats.Existing++
		case errors.Is(r.err, errUnsupportedSurface):
			stats.Unsupported++
			log.Printf("face %d: %v; it will be skipped", i, r.err)
		case r.err != nil:
			stats.Failed++
			log.Printf("face %d: %v; it will be skipped", i, r.err)
		default:
			f.Triangulation = r.tri
			stats.Meshed++
		}
	}
	return stats, nil
}

// tessellateFace triangulates a planar face in its own frame.
func tessellateFace(face *Shape, tol float64) (*Triangulation, error) {
	if face.Surface != nil && face.Surface.Kind != SurfacePlane {
		return nil, fmt.Errorf("%w: %s", errUnsupportedSurface, face.Surface.Name)
	}
	var rings [][]r3.Vec
	for _, w := range face.Children {
		if w.Kind != KindWire {
			continue
		}
		ring, err := discretizeWire(w, w.Location, w.Orientation, tol)
		if err != nil {
			return nil, err
		}
		if len(ring) < 3 {
			return nil, fmt.Errorf("wire has %d distinct points", len(ring))
		}
		rings = append(rings, ring)
	}
	if len(rings) == 0 {
		return nil, errors.New("face has no boundary")
	}

	var normal r3.Vec
	if face.Surface != nil {
		normal = face.Surface.Normal
	} else {
		normal = newellNormal(rings[0])
		if r3.Norm(normal) == 0 {
			return nil, errors.New("boundary is degenerate")
		}
		normal = r3.Unit(normal)
	}

	nodes, tris, err := triangulatePolygon(rings[0], rings[1:], normal)
	if err != nil {
		return nil, err
	}
	for i, t := range tris {
		n := r3.Cross(r3.Sub(nodes[t[1]], nodes[t[0]]), r3.Sub(nodes[t[2]], nodes[t[0]]))
		if r3.Dot(n, normal) < 0 {
			tris[i][1], tris[i][2] = t[2], t[1]
		}
	}
	return &Triangulation{Nodes: nodes, Triangles: tris}, nil
}

// discretizeWire returns the closed polyline of wire w, without
// repeating the first point at the end. loc and o are the location and
// orientation of w relative to its face.
func discretizeWire(w *Shape, loc Location, o Orientation, tol float64) ([]r3.Vec, error) {
	edges := make([]*Shape, 0, len(w.Children))
	for _, e := range w.Children {
		if e.Kind == KindEdge {
			edges = append(edges, e)
		}
	}
	if o == Reversed {
		for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
			edges[i], edges[j] = edges[j], edges[i]
		}
	}

	var ring []r3.Vec
	for _, e := range edges {
		pts, err := discretizeEdge(e, loc.Compose(e.Location), o.Compose(e.Orientation), tol)
		if err != nil {
			return nil, err
		}
		for _, p := range pts {
			if len(ring) > 0 && near(ring[len(ring)-1], p, joinEps) {
				continue
			}
			ring = append(ring, p)
		}
	}
	for len(ring) > 1 && near(ring[0], ring[len(ring)-1], joinEps) {
		ring = ring[:len(ring)-1]
	}
	return ring, nil
}

// discretizeEdge returns points along e from its start to its end,
// taking o into account.
func discretizeEdge(e *Shape, loc Location, o Orientation, tol float64) ([]r3.Vec, error) {
	var verts []r3.Vec
	for _, v := range e.Children {
		if v.Kind == KindVertex {
			verts = append(verts, loc.Compose(v.Location).Apply(v.Point))
		}
	}
	if len(verts) == 0 {
		return nil, errors.New("edge has no vertices")
	}
	start, end := verts[0], verts[len(verts)-1]

	var pts []r3.Vec
	switch c := e.Curve; {
	case c == nil || c.Kind == CurveLine:
		pts = []r3.Vec{start, end}
	case c.Kind == CurveCircle:
		var err error
		pts, err = arcPoints(c, loc, start, end, tol)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown curve kind %d", c.Kind)
	}
	if o == Reversed {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	return pts, nil
}

// arcPoints discretizes the arc of c that runs counter-clockwise about
// its axis from start to end. If start and end coincide, the arc is the
// whole circle. The chords stay within tol of the arc, unless that
// would take more than maxArcSegments per full turn.
func arcPoints(c *Curve, loc Location, start, end r3.Vec, tol float64) ([]r3.Vec, error) {
	center := loc.Apply(c.Center)
	axis := r3.Unit(r3.Sub(loc.Apply(r3.Add(c.Center, c.Axis)), center))

	u := r3.Sub(start, center)
	u = r3.Sub(u, r3.Scale(r3.Dot(u, axis), axis))
	if r3.Norm(u) == 0 {
		return nil, errors.New("circle edge starts at its center")
	}
	u = r3.Unit(u)
	v := r3.Cross(axis, u)

	full := near(start, end, joinEps)
	sweep := 2 * math.Pi
	if !full {
		e := r3.Sub(end, center)
		sweep = math.Atan2(r3.Dot(e, v), r3.Dot(e, u))
		if sweep <= 0 {
			sweep += 2 * math.Pi
		}
	}

	// A chord spanning angle θ deviates from the arc by
	// r(1-cos(θ/2)) = 2r·sin²(θ/4).
	step := math.Pi
	if tol < c.Radius {
		step = 4 * math.Asin(math.Sqrt(tol/(2*c.Radius)))
	}
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("tolerance %v gives no usable arc step for radius %v", tol, c.Radius)
	}
	nf := math.Ceil(sweep / step)
	if limit := maxArcSegments * sweep / (2 * math.Pi); nf > limit {
		nf = math.Ceil(limit)
	}
	n := int(nf)
	if full && n < 3 {
		n = 3
	}
	if n < 1 {
		n = 1
	}

	pts := make([]r3.Vec, n+1)
	for k := range pts {
		th := sweep * float64(k) / float64(n)
		pts[k] = r3.Add(center, r3.Scale(c.Radius, r3.Add(r3.Scale(math.Cos(th), u), r3.Scale(math.Sin(th), v))))
	}
	pts[0], pts[n] = start, end
	return pts, nil
}

// newellNormal returns the (unnormalized) normal of the polygon ring,
// pointing the way a counter-clockwise traversal faces.
func newellNormal(ring []r3.Vec) r3.Vec {
	var n r3.Vec
	for i, a := range ring {
		b := ring[(i+1)%len(ring)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}
