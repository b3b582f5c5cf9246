package main

import (
	"image/color"

	"gonum.org/v1/plot/palette"
)

const faceColors = 16

// facePalette holds the per-face colors. Consecutive entries are spread
// around the heat palette so neighboring face numbers look different.
var facePalette = func() []color.RGBA {
	heat := palette.Heat(faceColors, 1).Colors()
	out := make([]color.RGBA, faceColors)
	for i := range out {
		// 7 is coprime to faceColors, so this visits every color once.
		r, g, b, a := heat[(i*7)%faceColors].RGBA()
		out[i] = color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
	}
	return out
}()

// faceColor returns the color of the face at position i of a Model.
// It depends only on i.
func faceColor(i int) color.RGBA {
	return facePalette[i%faceColors]
}
