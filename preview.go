package main

import (
	"errors"
	"image/color"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// viewDir points from the model towards the viewer of the preview.
var viewDir = r3.Unit(r3.Vec{X: 1, Y: -1, Z: 1})

// WritePreview renders an isometric view of m to path, in the format
// implied by path's extension. Each face is drawn in its
// WriteSCADFaces color, shaded by how directly it faces the viewer.
func WritePreview(path string, m *Model) error {
	min, max, ok := m.Bounds()
	if !ok {
		return errors.New("preview: model has no triangles")
	}

	right := r3.Unit(r3.Cross(r3.Vec{Z: 1}, viewDir))
	up := r3.Cross(viewDir, right)
	project := func(p r3.Vec) plotter.XY {
		return plotter.XY{X: r3.Dot(p, right), Y: r3.Dot(p, up)}
	}

	type drawTri struct {
		xys   plotter.XYs
		depth float64
		col   color.RGBA
	}
	var tris []drawTri
	for i, f := range m.Faces {
		base := faceColor(i)
		for _, tri := range f.Triangles {
			n := tri.Normal()
			facing := r3.Dot(n, viewDir)
			if facing <= 0 {
				// Back-facing or degenerate.
				continue
			}
			tris = append(tris, drawTri{
				xys:   plotter.XYs{project(tri[0]), project(tri[1]), project(tri[2])},
				depth: r3.Dot(tri.Centroid(), viewDir),
				col:   shade(base, 0.4+0.6*facing),
			})
		}
	}
	// Painter's algorithm: far triangles first.
	sort.SliceStable(tris, func(i, j int) bool { return tris[i].depth < tris[j].depth })

	plt := plot.New()
	plt.HideAxes()
	plt.BackgroundColor = color.Black
	for _, t := range tris {
		poly, err := plotter.NewPolygon(t.xys)
		if err != nil {
			return err
		}
		poly.Color = t.col
		poly.LineStyle.Width = 0
		plt.Add(poly)
	}

	// Keep the aspect ratio of the projected bounding box.
	var lo, hi plotter.XY
	for i, c := range boxCorners(min, max) {
		xy := project(c)
		if i == 0 {
			lo, hi = xy, xy
			continue
		}
		lo.X, lo.Y = minf(lo.X, xy.X), minf(lo.Y, xy.Y)
		hi.X, hi.Y = maxf(hi.X, xy.X), maxf(hi.Y, xy.Y)
	}
	plt.X.Min, plt.X.Max = lo.X, hi.X
	plt.Y.Min, plt.Y.Max = lo.Y, hi.Y
	width := 15 * vg.Centimeter
	height := width
	if dx := hi.X - lo.X; dx > 0 {
		height = vg.Length(float64(width) * (hi.Y - lo.Y) / dx)
	}
	if height < vg.Centimeter {
		height = vg.Centimeter
	}
	return plt.Save(width, height, path)
}

func shade(c color.RGBA, f float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}

func boxCorners(min, max r3.Vec) [8]r3.Vec {
	var cs [8]r3.Vec
	for i := range cs {
		c := min
		if i&1 != 0 {
			c.X = max.X
		}
		if i&2 != 0 {
			c.Y = max.Y
		}
		if i&4 != 0 {
			c.Z = max.Z
		}
		cs[i] = c
	}
	return cs
}
