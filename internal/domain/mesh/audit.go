package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// weldEpsilon is the vertex-merge tolerance for the edge audit.  Vertices
// within one nanometre of each other are the same point; looser tolerances
// would fuse genuinely distinct dot geometry at small print scales.
const weldEpsilon = 1e-6

// vertexKey quantises a vertex for exact map lookups.
type vertexKey [3]int64

func keyOf(v r3.Vec) vertexKey {
	q := func(f float64) int64 {
		if f >= 0 {
			return int64(f/weldEpsilon + 0.5)
		}
		return int64(f/weldEpsilon - 0.5)
	}
	return vertexKey{q(v.X), q(v.Y), q(v.Z)}
}

type edgeKey struct{ a, b vertexKey }

// edgeTally counts directed edges after vertex welding.  Degenerate faces
// (two welded-identical corners) are skipped — they carry no surface.
func (m *Mesh) edgeTally() map[edgeKey]int {
	edges := make(map[edgeKey]int, 3*len(m.Triangles))
	for _, t := range m.Triangles {
		k := [3]vertexKey{keyOf(t[0]), keyOf(t[1]), keyOf(t[2])}
		if k[0] == k[1] || k[1] == k[2] || k[2] == k[0] {
			continue
		}
		for i := 0; i < 3; i++ {
			edges[edgeKey{k[i], k[(i+1)%3]}]++
		}
	}
	return edges
}

// IsWatertight reports whether every edge is shared by exactly two faces with
// opposite orientation — the manifold condition a slicer needs.
func (m *Mesh) IsWatertight() bool {
	if m.IsEmpty() {
		return false
	}
	edges := m.edgeTally()
	for e, n := range edges {
		if n != 1 {
			return false
		}
		if edges[edgeKey{e.b, e.a}] != 1 {
			return false
		}
	}
	return true
}

// BoundaryEdgeCount returns the number of directed edges without an opposing
// partner.  Zero for a watertight mesh; useful in logs to size a defect.
func (m *Mesh) BoundaryEdgeCount() int {
	edges := m.edgeTally()
	n := 0
	for e, c := range edges {
		n += c - min(c, edges[edgeKey{e.b, e.a}])
	}
	return n
}

// FillHoles attempts to close boundary loops by fan triangulation.  Holes are
// located by chaining boundary edges (directed edges lacking an opposing
// partner) into loops; each loop is capped with a fan anchored at its first
// vertex, wound to oppose the existing boundary.  Planar holes close exactly;
// non-planar ones close with a crude but watertight cap, which is the right
// trade for "printable beats pretty".
//
// It returns the number of loops filled.  Call IsWatertight afterwards to
// verify the repair took.
func (m *Mesh) FillHoles() int {
	edges := m.edgeTally()

	// Representative positions for welded vertices.
	pos := make(map[vertexKey]r3.Vec, len(edges))
	for _, t := range m.Triangles {
		for _, v := range t {
			k := keyOf(v)
			if _, ok := pos[k]; !ok {
				pos[k] = v
			}
		}
	}

	// Boundary edges, keyed by their start vertex for loop chaining.
	next := make(map[vertexKey]vertexKey)
	for e, c := range edges {
		if c > edges[edgeKey{e.b, e.a}] {
			next[e.a] = e.b
		}
	}

	filled := 0
	for start := range next {
		if _, ok := next[start]; !ok {
			continue // consumed by an earlier loop
		}
		loop := []vertexKey{start}
		closed := false
		for v, steps := next[start], 0; steps <= len(next); steps++ {
			if v == start {
				closed = true
				break
			}
			nv, ok := next[v]
			if !ok {
				break // broken chain, not a closed loop
			}
			loop = append(loop, v)
			v = nv
		}
		if !closed {
			continue
		}
		for _, v := range loop {
			delete(next, v)
		}
		if len(loop) < 3 {
			continue
		}
		// The fan's edges run opposite to the boundary direction, pairing
		// every open edge.
		anchor := pos[loop[0]]
		for i := 1; i < len(loop)-1; i++ {
			m.Add(anchor, pos[loop[i+1]], pos[loop[i]])
		}
		filled++
	}
	return filled
}

// Audit summarises the mesh health in one log-friendly line.
func (m *Mesh) Audit() string {
	return fmt.Sprintf("faces=%d watertight=%t boundary_edges=%d volume=%.3f",
		m.Len(), m.IsWatertight(), m.BoundaryEdgeCount(), m.SignedVolume())
}
