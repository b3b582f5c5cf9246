package main

import "gonum.org/v1/gonum/spatial/r3"

// CollectFaces extracts the triangulation of every face of s into a
// Model. Faces appear in the order s enumerates them and points are
// in the global frame of s. Faces without a triangulation, or with an
// empty one, are left out of the Model; see Face.ID.
//
// A nil shape, or one without faces, produces an empty Model.
func CollectFaces(s *Shape) *Model {
	m := new(Model)
	ordinal := 0
	Walk(s, func(v Visit) bool {
		if v.Shape.Kind != KindFace {
			// Nothing below a wire can contain a face.
			return v.Shape.Kind < KindWire
		}
		id := ordinal
		ordinal++
		tri := v.Shape.Triangulation
		if tri == nil || len(tri.Triangles) == 0 {
			return false
		}
		face := Face{ID: id, Triangles: make([]Triangle, 0, len(tri.Triangles))}
		// Move the nodes into the global frame once rather than once per
		// triangle that uses them.
		nodes := tri.Nodes
		if !v.Location.IsIdentity() {
			nodes = make([]r3.Vec, len(tri.Nodes))
			for i, p := range tri.Nodes {
				nodes[i] = v.Location.Apply(p)
			}
		}
		for _, idx := range tri.Triangles {
			t := Triangle{nodes[idx[0]], nodes[idx[1]], nodes[idx[2]]}
			face.Triangles = append(face.Triangles, orientTriangle(t, v.Orientation))
		}
		m.Faces = append(m.Faces, face)
		return false
	})
	return m
}

// orientTriangle returns t wound for a face used with orientation o.
// Triangulations are wound about the natural normal of their surface,
// so a reversed face needs its triangles flipped to face outward.
func orientTriangle(t Triangle, o Orientation) Triangle {
	if o == Reversed {
		t[1], t[2] = t[2], t[1]
	}
	return t
}
