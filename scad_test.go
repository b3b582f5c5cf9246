package main

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

var vectorRE = regexp.MustCompile(`\[([^\[\]]*)\]`)

// parsePolyhedron extracts the points and faces lists from the text of
// one OpenSCAD polyhedron() call.
func parsePolyhedron(t *testing.T, src string) (points []r3.Vec, faces [][3]int) {
	t.Helper()
	pi := strings.Index(src, "points=[")
	fi := strings.Index(src, "faces=[")
	if pi < 0 || fi < pi {
		t.Fatalf("malformed polyhedron:\n%s", src)
	}
	parse := func(s string) [3]float64 {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			t.Fatalf("bad vector %q", s)
		}
		var v [3]float64
		for i, p := range parts {
			x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				t.Fatalf("bad vector %q: %v", s, err)
			}
			v[i] = x
		}
		return v
	}
	for _, m := range vectorRE.FindAllStringSubmatch(src[pi+len("points=["):fi], -1) {
		v := parse(m[1])
		points = append(points, r3.Vec{X: v[0], Y: v[1], Z: v[2]})
	}
	for _, m := range vectorRE.FindAllStringSubmatch(src[fi+len("faces=["):], -1) {
		v := parse(m[1])
		faces = append(faces, [3]int{int(v[0]), int(v[1]), int(v[2])})
	}
	return
}

func TestWriteSCADCube(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSCAD(&buf, CollectFaces(cubeShape()), defaultMergeEpsilon); err != nil {
		t.Fatal(err)
	}
	points, faces := parsePolyhedron(t, buf.String())
	if len(points) != 8 {
		t.Errorf("got %d points, want 8", len(points))
	}
	if len(faces) != 12 {
		t.Errorf("got %d faces, want 12", len(faces))
	}
	for i, f := range faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(points) {
				t.Errorf("face %d: index %d out of range", i, idx)
			}
		}
	}
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			if near(points[i], points[j], defaultMergeEpsilon) {
				t.Errorf("points %d and %d are duplicates: %v", i, j, points[i])
			}
		}
	}

	// OpenSCAD faces are clockwise seen from outside, so the right-hand
	// normal of each listed face points into the cube.
	for i, f := range faces {
		tri := Triangle{points[f[0]], points[f[1]], points[f[2]]}
		if d := r3.Dot(tri.Normal(), r3.Sub(tri.Centroid(), cubeCentroid)); d >= 0 {
			t.Errorf("face %d %v is not clockwise from outside", i, f)
		}
	}
}

func TestWriteSCADMergesAcrossFaces(t *testing.T) {
	m := CollectFaces(cubeShape())
	// Nudge one vertex by less than epsilon; it must still merge.
	m.Faces[1].Triangles[0][0].X += defaultMergeEpsilon / 2
	var buf bytes.Buffer
	if err := WriteSCAD(&buf, m, defaultMergeEpsilon); err != nil {
		t.Fatal(err)
	}
	if points, _ := parsePolyhedron(t, buf.String()); len(points) != 8 {
		t.Errorf("got %d points, want 8", len(points))
	}
}

func TestWriteSCADRepeatable(t *testing.T) {
	m := CollectFaces(cubeShape())
	var a, b bytes.Buffer
	if err := WriteSCAD(&a, m, defaultMergeEpsilon); err != nil {
		t.Fatal(err)
	}
	if err := WriteSCAD(&b, m, defaultMergeEpsilon); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Errorf("outputs differ:\n%s\n---\n%s", a.String(), b.String())
	}
}

func TestWriteSCADEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSCAD(&buf, &Model{}, defaultMergeEpsilon); err != nil {
		t.Fatal(err)
	}
	want := "polyhedron(\n  points=[\n  ],\n  faces=[\n  ]\n);\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriteSCADFormat(t *testing.T) {
	m := &Model{Faces: []Face{{Triangles: []Triangle{{{}, {X: 1}, {Y: 0.5}}}}}}
	var buf bytes.Buffer
	if err := WriteSCAD(&buf, m, defaultMergeEpsilon); err != nil {
		t.Fatal(err)
	}
	want := `polyhedron(
  points=[
    [0, 0, 0],
    [1, 0, 0],
    [0, 0.5, 0]
  ],
  faces=[
    [0, 2, 1]
  ]
);
`
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

// splitFaceBlocks splits WriteSCADFaces output into its blocks.
func splitFaceBlocks(src string) []string {
	var blocks []string
	for _, b := range strings.Split(src, "// face ") {
		if b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func TestWriteSCADFacesCube(t *testing.T) {
	m := CollectFaces(cubeShape())
	var buf bytes.Buffer
	if err := WriteSCADFaces(&buf, m, defaultMergeEpsilon); err != nil {
		t.Fatal(err)
	}
	blocks := splitFaceBlocks(buf.String())
	if len(blocks) != 6 {
		t.Fatalf("got %d blocks, want 6:\n%s", len(blocks), buf.String())
	}
	for i, b := range blocks {
		if !strings.HasPrefix(b, fmt.Sprintf("%d\n", m.Faces[i].ID)) {
			t.Errorf("block %d: wrong face ID in %q", i, b[:10])
		}
		wantColor := fmt.Sprintf("color(%s) polyhedron(", scadColor(faceColor(i)))
		if !strings.Contains(b, wantColor) {
			t.Errorf("block %d: missing %q", i, wantColor)
		}
		points, faces := parsePolyhedron(t, b)
		if len(points) != 4 || len(faces) != 2 {
			t.Errorf("block %d: got %d points and %d faces, want 4 and 2", i, len(points), len(faces))
		}
	}
}

func TestWriteSCADFacesSkipsEmpty(t *testing.T) {
	m := CollectFaces(cubeShape())
	m.Faces[3].Triangles = nil
	var buf bytes.Buffer
	if err := WriteSCADFaces(&buf, m, defaultMergeEpsilon); err != nil {
		t.Fatal(err)
	}
	if n := len(splitFaceBlocks(buf.String())); n != 5 {
		t.Errorf("got %d blocks, want 5", n)
	}
}

func TestWriteSCADFacesEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSCADFaces(&buf, &Model{}, defaultMergeEpsilon); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("got %q, want no output", buf.String())
	}
}

func TestFaceColorsByPosition(t *testing.T) {
	m := CollectFaces(cubeShape())
	colors := func(m *Model) []string {
		var buf bytes.Buffer
		if err := WriteSCADFaces(&buf, m, defaultMergeEpsilon); err != nil {
			t.Fatal(err)
		}
		var cs []string
		for _, b := range splitFaceBlocks(buf.String()) {
			start := strings.Index(b, "color(")
			end := strings.Index(b, ") polyhedron(")
			cs = append(cs, b[start:end])
		}
		return cs
	}
	first, again := colors(m), colors(m)

	// Reverse the faces: colors must stay with the positions.
	rev := &Model{}
	for i := len(m.Faces) - 1; i >= 0; i-- {
		rev.Faces = append(rev.Faces, m.Faces[i])
	}
	reversed := colors(rev)

	for i := range first {
		if first[i] != again[i] {
			t.Errorf("face %d: color changed between runs: %s vs %s", i, first[i], again[i])
		}
		if first[i] != reversed[i] {
			t.Errorf("position %d: got %s for reversed model, want %s", i, reversed[i], first[i])
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i] == first[i-1] {
			t.Errorf("faces %d and %d have the same color %s", i-1, i, first[i])
		}
	}
}
