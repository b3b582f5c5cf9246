package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/hschendel/stl"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestWriteReferenceSTLCube(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReferenceSTL(&buf, cubeShape(), "cube"); err != nil {
		t.Fatal(err)
	}
	solid, err := stl.ReadAll(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if !solid.IsAscii {
		t.Errorf("reference STL is not ASCII")
	}
	if solid.Name != "cube" {
		t.Errorf("got solid name %q, want cube", solid.Name)
	}
	if len(solid.Triangles) != 12 {
		t.Fatalf("got %d triangles, want 12", len(solid.Triangles))
	}
	for i, st := range solid.Triangles {
		var tri Triangle
		for j, v := range st.Vertices {
			tri[j] = r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
		}
		n := r3.Vec{X: float64(st.Normal[0]), Y: float64(st.Normal[1]), Z: float64(st.Normal[2])}
		if r3.Dot(n, r3.Sub(tri.Centroid(), cubeCentroid)) <= 0 {
			t.Errorf("triangle %d: normal %v points inward", i, n)
		}
		if r3.Dot(tri.Normal(), n) < 0.999 {
			t.Errorf("triangle %d: normal %v disagrees with winding %v", i, n, tri.Normal())
		}
	}
}

type failWriter struct{}

var errDiskFull = errors.New("disk full")

func (failWriter) Write(p []byte) (int, error) { return 0, errDiskFull }

func TestWriteReferenceSTLErrors(t *testing.T) {
	for _, tc := range []struct {
		name  string
		shape *Shape
		kind  ReferenceErrorKind
	}{
		{"nil shape", nil, RefNoShape},
		{"untriangulated", stripTriangulations(cubeShape()), RefNoTriangulation},
		{"no faces", &Shape{Kind: KindCompound}, RefNoTriangulation},
	} {
		var buf bytes.Buffer
		err := WriteReferenceSTL(&buf, tc.shape, "x")
		var refErr *ReferenceError
		if !errors.As(err, &refErr) {
			t.Errorf("%s: got error %v, want a *ReferenceError", tc.name, err)
			continue
		}
		if refErr.Kind != tc.kind {
			t.Errorf("%s: got kind %s, want %s", tc.name, refErr.Kind, tc.kind)
		}
		if buf.Len() != 0 {
			t.Errorf("%s: wrote %d bytes before failing", tc.name, buf.Len())
		}
	}
}

func TestWriteReferenceSTLWriteError(t *testing.T) {
	err := WriteReferenceSTL(failWriter{}, cubeShape(), "cube")
	var refErr *ReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("got error %v, want a *ReferenceError", err)
	}
	if refErr.Kind != RefWrite {
		t.Errorf("got kind %s, want %s", refErr.Kind, RefWrite)
	}
	if refErr.Err == nil {
		t.Errorf("write error has no underlying error")
	}
}

func TestReferenceErrorMessage(t *testing.T) {
	err := &ReferenceError{Kind: RefWrite, Msg: "writing solid", Err: errDiskFull}
	if got, want := err.Error(), "reference STL: writing solid: disk full"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !errors.Is(err, errDiskFull) {
		t.Errorf("ReferenceError does not unwrap to its cause")
	}
}
