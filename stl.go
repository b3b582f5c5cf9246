package main

import (
	"bytes"
	"fmt"
	"io"
)

// WriteASCIISTL writes m as an ASCII STL triangle soup. Each facet
// carries the unit normal of its winding. Vertices are written as they
// are, without merging vertices shared between triangles, so the
// output can be compared facet by facet with WriteReferenceSTL.
func WriteASCIISTL(w io.Writer, m *Model) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "solid %s\n", m.Name)
	for _, face := range m.Faces {
		for _, tri := range face.Triangles {
			n := tri.Normal()
			fmt.Fprintf(&buf, "  facet normal %v %v %v\n", n.X, n.Y, n.Z)
			fmt.Fprintf(&buf, "    outer loop\n")
			for _, p := range tri {
				fmt.Fprintf(&buf, "      vertex %v %v %v\n", p.X, p.Y, p.Z)
			}
			fmt.Fprintf(&buf, "    endloop\n")
			fmt.Fprintf(&buf, "  endfacet\n")
		}
	}
	fmt.Fprintf(&buf, "endsolid %s\n", m.Name)

	_, err := w.Write(buf.Bytes())
	return err
}
