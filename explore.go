package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Explore writes an indented outline of every sub-shape of s, with
// orientations and locations composed from the root, followed by a
// count of each kind of sub-shape. It is a debugging aid.
func Explore(w io.Writer, s *Shape) error {
	var buf bytes.Buffer
	var counts [KindVertex + 1]int
	Walk(s, func(v Visit) bool {
		sh := v.Shape
		if int(sh.Kind) < len(counts) {
			counts[sh.Kind]++
		}
		fmt.Fprintf(&buf, "%s%s %s", strings.Repeat("  ", v.Depth), sh.Kind, v.Orientation)
		switch sh.Kind {
		case KindFace:
			surf := "none"
			if sh.Surface != nil {
				surf = sh.Surface.Name
			}
			ntri := 0
			if sh.Triangulation != nil {
				ntri = len(sh.Triangulation.Triangles)
			}
			fmt.Fprintf(&buf, " surface=%s triangles=%d", surf, ntri)
		case KindEdge:
			fmt.Fprintf(&buf, " curve=%s", sh.Curve)
		case KindVertex:
			p := v.Location.Apply(sh.Point)
			fmt.Fprintf(&buf, " (%v, %v, %v)", p.X, p.Y, p.Z)
		}
		if !sh.Location.IsIdentity() {
			fmt.Fprintf(&buf, " located")
		}
		buf.WriteByte('\n')
		return true
	})
	fmt.Fprintf(&buf, "--\n")
	for k, n := range counts {
		fmt.Fprintf(&buf, "%s: %d\n", ShapeKind(k), n)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
