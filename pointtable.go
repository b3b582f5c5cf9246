package main

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// A pointTable assigns indexes to points, merging points that are
// within eps of each other on every axis. The first point added in a
// cluster is the one kept, and indexes are assigned in insertion order,
// so the table depends only on the sequence of points added.
type pointTable struct {
	eps    float64
	points []r3.Vec

	// cells buckets point indexes by their position on a grid of eps
	// cubes, so a lookup only has to check the 27 surrounding cells.
	cells map[[3]int64][]int
}

func newPointTable(eps float64) *pointTable {
	return &pointTable{eps: eps, cells: make(map[[3]int64][]int)}
}

func (t *pointTable) cell(p r3.Vec) [3]int64 {
	return [3]int64{
		int64(math.Floor(p.X / t.eps)),
		int64(math.Floor(p.Y / t.eps)),
		int64(math.Floor(p.Z / t.eps)),
	}
}

// add returns the index of p in the table, adding it if no point is
// already within eps of it.
func (t *pointTable) add(p r3.Vec) int {
	c := t.cell(p)
	best := -1
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, i := range t.cells[[3]int64{c[0] + dx, c[1] + dy, c[2] + dz}] {
					if (best == -1 || i < best) && near(t.points[i], p, t.eps) {
						best = i
					}
				}
			}
		}
	}
	if best >= 0 {
		return best
	}
	idx := len(t.points)
	t.points = append(t.points, p)
	t.cells[c] = append(t.cells[c], idx)
	return idx
}

// addTriangle adds the vertices of tri and returns their indexes.
func (t *pointTable) addTriangle(tri Triangle) [3]int {
	return [3]int{t.add(tri[0]), t.add(tri[1]), t.add(tri[2])}
}
