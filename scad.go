package main

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"text/template"

	"gonum.org/v1/gonum/spatial/r3"
)

// A polyhedron is an indexed mesh ready to be written as an OpenSCAD
// polyhedron() call.
type polyhedron struct {
	ID     int
	Color  color.RGBA
	Points []r3.Vec
	Faces  [][3]int
}

// add appends the triangles of f to p, indexing their vertices in pt.
//
// OpenSCAD wants polyhedron faces listed clockwise when seen from
// outside, the opposite of STL, so the last two indexes are swapped.
func (p *polyhedron) add(pt *pointTable, f *Face) {
	for _, tri := range f.Triangles {
		idx := pt.addTriangle(tri)
		p.Faces = append(p.Faces, [3]int{idx[0], idx[2], idx[1]})
	}
	p.Points = pt.points
}

var scadFuncs = template.FuncMap{
	"vec": func(p r3.Vec) string {
		return fmt.Sprintf("[%v, %v, %v]", p.X, p.Y, p.Z)
	},
	"idx": func(f [3]int) string {
		return fmt.Sprintf("[%d, %d, %d]", f[0], f[1], f[2])
	},
	"rgb": scadColor,
}

// scadColor formats c as an OpenSCAD color vector.
func scadColor(c color.RGBA) string {
	return fmt.Sprintf("[%.3f, %.3f, %.3f]", float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
}

var scadTemplate = template.Must(template.New("").Funcs(scadFuncs).Parse(`
{{- define "polyhedron" -}}
polyhedron(
  points=[{{range $i, $p := .Points}}{{if $i}},{{end}}
    {{vec $p}}{{end}}
  ],
  faces=[{{range $i, $f := .Faces}}{{if $i}},{{end}}
    {{idx $f}}{{end}}
  ]
);
{{end -}}

{{- define "model" -}}
{{template "polyhedron" .}}
{{- end -}}

{{- define "faces" -}}
{{range .}}// face {{.ID}}
color({{rgb .Color}}) {{template "polyhedron" .}}
{{- end}}
{{- end -}}
`))

// WriteSCAD writes m as a single OpenSCAD polyhedron. Vertices within
// eps of each other anywhere in m share one point.
func WriteSCAD(w io.Writer, m *Model, eps float64) error {
	pt := newPointTable(eps)
	var p polyhedron
	for i := range m.Faces {
		p.add(pt, &m.Faces[i])
	}
	return executeSCAD(w, "model", &p)
}

// WriteSCADFaces writes each face of m as its own colored OpenSCAD
// polyhedron, so the faces of the input shape can be told apart in
// the OpenSCAD preview. Vertices are only merged within a face.
func WriteSCADFaces(w io.Writer, m *Model, eps float64) error {
	var ps []*polyhedron
	for i := range m.Faces {
		f := &m.Faces[i]
		if len(f.Triangles) == 0 {
			continue
		}
		p := &polyhedron{ID: f.ID, Color: faceColor(i)}
		p.add(newPointTable(eps), f)
		ps = append(ps, p)
	}
	return executeSCAD(w, "faces", ps)
}

func executeSCAD(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := scadTemplate.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
