package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// A Document is a named shape read from a shape document. Shape
// documents are JSON or YAML serializations of a BREP tree, optionally
// with per-face triangulations already computed by a CAD kernel.
type Document struct {
	Name  string
	Shape *Shape
}

type documentFile struct {
	Name  string    `json:"name" yaml:"name"`
	Shape *shapeDoc `json:"shape" yaml:"shape"`
}

type shapeDoc struct {
	Type          string            `json:"type" yaml:"type"`
	Orientation   string            `json:"orientation,omitempty" yaml:"orientation,omitempty"`
	Location      *locationDoc      `json:"location,omitempty" yaml:"location,omitempty"`
	Surface       *surfaceDoc       `json:"surface,omitempty" yaml:"surface,omitempty"`
	Triangulation *triangulationDoc `json:"triangulation,omitempty" yaml:"triangulation,omitempty"`
	Curve         *curveDoc         `json:"curve,omitempty" yaml:"curve,omitempty"`
	Point         []float64         `json:"point,omitempty" yaml:"point,omitempty"`
	Children      []*shapeDoc       `json:"children,omitempty" yaml:"children,omitempty"`
}

type locationDoc struct {
	Translate []float64 `json:"translate,omitempty" yaml:"translate,omitempty"`
	Axis      []float64 `json:"axis,omitempty" yaml:"axis,omitempty"`
	Angle     float64   `json:"angle,omitempty" yaml:"angle,omitempty"` // Degrees
}

type surfaceDoc struct {
	Type   string    `json:"type" yaml:"type"`
	Origin []float64 `json:"origin,omitempty" yaml:"origin,omitempty"`
	Normal []float64 `json:"normal,omitempty" yaml:"normal,omitempty"`
}

type triangulationDoc struct {
	Nodes     [][]float64 `json:"nodes" yaml:"nodes"`
	Triangles [][]int     `json:"triangles" yaml:"triangles"`
}

type curveDoc struct {
	Type   string    `json:"type" yaml:"type"`
	Center []float64 `json:"center,omitempty" yaml:"center,omitempty"`
	Axis   []float64 `json:"axis,omitempty" yaml:"axis,omitempty"`
	Radius float64   `json:"radius,omitempty" yaml:"radius,omitempty"`
}

// Format selects the shape document encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// formatForPath picks the document format from a file extension.
// Anything that isn't YAML is treated as JSON.
func formatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// ReadDocument reads a shape document from path, or JSON from stdin if
// path is "-".
func ReadDocument(path string) (*Document, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	doc, err := DecodeDocument(r, formatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Name == "" && path != "-" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

// DecodeDocument decodes a shape document and builds its shape tree.
func DecodeDocument(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var f documentFile
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&f); err == io.EOF {
			err = nil
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&f)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding shape document: %w", err)
	}
	doc := &Document{Name: f.Name}
	if f.Shape != nil {
		doc.Shape, err = buildShape(f.Shape)
		if err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// buildShape converts the document tree into Shapes. It works through
// an explicit queue so document nesting depth is unbounded.
func buildShape(root *shapeDoc) (*Shape, error) {
	type pending struct {
		doc    *shapeDoc
		parent *Shape
		path   string
	}
	var top *Shape
	queue := []pending{{root, nil, "shape"}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		s, err := convertShape(p.doc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.path, err)
		}
		if p.parent == nil {
			top = s
		} else {
			if s.Kind <= p.parent.Kind && !(s.Kind == KindCompound && p.parent.Kind == KindCompound) {
				return nil, fmt.Errorf("%s: a %s cannot contain a %s", p.path, p.parent.Kind, s.Kind)
			}
			p.parent.Children = append(p.parent.Children, s)
		}
		for i, c := range p.doc.Children {
			if c == nil {
				continue
			}
			queue = append(queue, pending{c, s, fmt.Sprintf("%s.children[%d]", p.path, i)})
		}
	}
	return top, nil
}

func convertShape(d *shapeDoc) (*Shape, error) {
	kind, err := parseShapeKind(d.Type)
	if err != nil {
		return nil, err
	}
	s := &Shape{Kind: kind}
	if s.Orientation, err = parseOrientation(d.Orientation); err != nil {
		return nil, err
	}
	if d.Location != nil {
		if s.Location, err = d.Location.location(); err != nil {
			return nil, err
		}
	}

	if kind != KindFace && (d.Surface != nil || d.Triangulation != nil) {
		return nil, fmt.Errorf("only faces may have a surface or triangulation")
	}
	if kind != KindEdge && d.Curve != nil {
		return nil, fmt.Errorf("only edges may have a curve")
	}
	if kind != KindVertex && d.Point != nil {
		return nil, fmt.Errorf("only vertices may have a point")
	}

	switch kind {
	case KindFace:
		if d.Surface != nil {
			if s.Surface, err = d.Surface.surface(); err != nil {
				return nil, err
			}
		}
		if d.Triangulation != nil {
			if s.Triangulation, err = d.Triangulation.triangulation(); err != nil {
				return nil, err
			}
		}
	case KindEdge:
		s.Curve = &Curve{Kind: CurveLine}
		if d.Curve != nil {
			if s.Curve, err = d.Curve.curve(); err != nil {
				return nil, err
			}
		}
	case KindVertex:
		if s.Point, err = vec(d.Point, "point"); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (d *locationDoc) location() (Location, error) {
	var t, axis r3.Vec
	var err error
	if d.Translate != nil {
		if t, err = vec(d.Translate, "translate"); err != nil {
			return Location{}, err
		}
	}
	if d.Axis != nil {
		if axis, err = vec(d.Axis, "axis"); err != nil {
			return Location{}, err
		}
	}
	if math.IsNaN(d.Angle) || math.IsInf(d.Angle, 0) {
		return Location{}, fmt.Errorf("location: angle %v is not finite", d.Angle)
	}
	if d.Angle != 0 && r3.Norm(axis) == 0 {
		return Location{}, errors.New("location: rotation needs a non-zero axis")
	}
	return NewLocation(t, axis, d.Angle), nil
}

func (d *surfaceDoc) surface() (*Surface, error) {
	s := &Surface{Kind: SurfaceOther, Name: d.Type}
	if d.Type != "plane" {
		return s, nil
	}
	s.Kind = SurfacePlane
	var err error
	if d.Origin != nil {
		if s.Origin, err = vec(d.Origin, "origin"); err != nil {
			return nil, err
		}
	}
	if s.Normal, err = vec(d.Normal, "normal"); err != nil {
		return nil, err
	}
	if r3.Norm(s.Normal) == 0 {
		return nil, errors.New("plane normal is zero")
	}
	s.Normal = r3.Unit(s.Normal)
	return s, nil
}

func (d *triangulationDoc) triangulation() (*Triangulation, error) {
	t := &Triangulation{
		Nodes:     make([]r3.Vec, len(d.Nodes)),
		Triangles: make([][3]int, len(d.Triangles)),
	}
	for i, n := range d.Nodes {
		p, err := vec(n, fmt.Sprintf("nodes[%d]", i))
		if err != nil {
			return nil, err
		}
		t.Nodes[i] = p
	}
	for i, tri := range d.Triangles {
		if len(tri) != 3 {
			return nil, fmt.Errorf("triangles[%d]: want 3 node indexes, got %d", i, len(tri))
		}
		for j, idx := range tri {
			if idx < 0 || idx >= len(t.Nodes) {
				return nil, fmt.Errorf("triangles[%d]: node index %d out of range [0, %d)", i, idx, len(t.Nodes))
			}
			t.Triangles[i][j] = idx
		}
	}
	return t, nil
}

func (d *curveDoc) curve() (*Curve, error) {
	switch d.Type {
	case "", "line":
		return &Curve{Kind: CurveLine}, nil
	case "circle":
	default:
		return nil, fmt.Errorf("unknown curve type %q", d.Type)
	}
	c := &Curve{Kind: CurveCircle, Radius: d.Radius}
	var err error
	if c.Center, err = vec(d.Center, "center"); err != nil {
		return nil, err
	}
	if c.Axis, err = vec(d.Axis, "axis"); err != nil {
		return nil, err
	}
	if r3.Norm(c.Axis) == 0 {
		return nil, errors.New("circle axis is zero")
	}
	c.Axis = r3.Unit(c.Axis)
	if !(c.Radius > 0) || math.IsInf(c.Radius, 0) {
		return nil, fmt.Errorf("circle radius %v is not positive", c.Radius)
	}
	return c, nil
}

func vec(xs []float64, what string) (r3.Vec, error) {
	if len(xs) != 3 {
		return r3.Vec{}, fmt.Errorf("%s: want 3 coordinates, got %d", what, len(xs))
	}
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return r3.Vec{}, fmt.Errorf("%s: coordinate %v is not finite", what, x)
		}
	}
	return r3.Vec{X: xs[0], Y: xs[1], Z: xs[2]}, nil
}
