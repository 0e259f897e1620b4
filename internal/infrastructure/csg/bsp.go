// Package csg provides the boolean engines behind plate assembly.  Two back
// ends with very different failure modes are offered: an exact BSP-tree
// clipper for clean results on well-formed input, and a voxel parity sampler
// that trades surface fidelity for near-unconditional robustness.
package csg

import (
	"context"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/brailleforge/brailleforge/internal/domain/mesh"
	"github.com/brailleforge/brailleforge/pkg/errors"
)

// planeEpsilon separates coplanar from front/back during classification.
const planeEpsilon = 1e-5

// cancelCheckStride is how many polygons a clip pass processes between
// context checks.
const cancelCheckStride = 512

// BSP is the exact boolean engine: meshes are converted into BSP trees of
// their polygons and clipped against each other.  Stateless and safe for
// concurrent use.
type BSP struct{}

// NewBSP returns the BSP engine.
func NewBSP() BSP { return BSP{} }

// Name implements assembly.Engine.
func (BSP) Name() string { return "bsp" }

// Union implements assembly.Engine.
func (b BSP) Union(ctx context.Context, meshes []*mesh.Mesh) (*mesh.Mesh, error) {
	if len(meshes) == 0 {
		return nil, errors.New(errors.ErrCodeAssemblyEngineFailed, "union of zero meshes")
	}
	op := &bspOp{ctx: ctx}
	acc := meshPolygons(meshes[0])
	for _, m := range meshes[1:] {
		var err error
		acc, err = op.union(acc, meshPolygons(m))
		if err != nil {
			return nil, err
		}
	}
	return polygonsMesh(acc), nil
}

// Difference implements assembly.Engine.
func (b BSP) Difference(ctx context.Context, base, tool *mesh.Mesh) (*mesh.Mesh, error) {
	op := &bspOp{ctx: ctx}
	out, err := op.difference(meshPolygons(base), meshPolygons(tool))
	if err != nil {
		return nil, err
	}
	return polygonsMesh(out), nil
}

// bspOp carries per-operation state: the context and a polygon counter that
// rations how often it is polled.
type bspOp struct {
	ctx     context.Context
	counter int
}

func (op *bspOp) checkCancel() error {
	op.counter++
	if op.counter%cancelCheckStride != 0 {
		return nil
	}
	if err := op.ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeAssemblyTimeout, "bsp clip cancelled")
	}
	return nil
}

func (op *bspOp) union(a, b []bspPolygon) ([]bspPolygon, error) {
	na, nb := newBSPNode(), newBSPNode()
	if err := na.build(op, a); err != nil {
		return nil, err
	}
	if err := nb.build(op, b); err != nil {
		return nil, err
	}
	if err := na.clipTo(op, nb); err != nil {
		return nil, err
	}
	if err := nb.clipTo(op, na); err != nil {
		return nil, err
	}
	nb.invert()
	if err := nb.clipTo(op, na); err != nil {
		return nil, err
	}
	nb.invert()
	if err := na.build(op, nb.allPolygons()); err != nil {
		return nil, err
	}
	return na.allPolygons(), nil
}

func (op *bspOp) difference(a, b []bspPolygon) ([]bspPolygon, error) {
	na, nb := newBSPNode(), newBSPNode()
	if err := na.build(op, a); err != nil {
		return nil, err
	}
	if err := nb.build(op, b); err != nil {
		return nil, err
	}
	na.invert()
	if err := na.clipTo(op, nb); err != nil {
		return nil, err
	}
	if err := nb.clipTo(op, na); err != nil {
		return nil, err
	}
	nb.invert()
	if err := nb.clipTo(op, na); err != nil {
		return nil, err
	}
	nb.invert()
	if err := na.build(op, nb.allPolygons()); err != nil {
		return nil, err
	}
	na.invert()
	return na.allPolygons(), nil
}

// bspPlane is n·p = w.
type bspPlane struct {
	n r3.Vec
	w float64
}

func planeFromPoints(a, b, c r3.Vec) (bspPlane, bool) {
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	l := r3.Norm(n)
	if l < 1e-12 {
		return bspPlane{}, false
	}
	n = r3.Scale(1/l, n)
	return bspPlane{n: n, w: r3.Dot(n, a)}, true
}

func (p *bspPlane) flip() {
	p.n = r3.Scale(-1, p.n)
	p.w = -p.w
}

const (
	relCoplanar = 0
	relFront    = 1
	relBack     = 2
	relSpanning = 3
)

// splitPolygon routes poly into the four buckets relative to p, splitting
// spanning polygons along the plane.
func (p bspPlane) splitPolygon(poly bspPolygon, coplanarFront, coplanarBack, front, back *[]bspPolygon) {
	polyType := 0
	types := make([]int, len(poly.verts))
	for i, v := range poly.verts {
		t := r3.Dot(p.n, v) - p.w
		switch {
		case t < -planeEpsilon:
			types[i] = relBack
		case t > planeEpsilon:
			types[i] = relFront
		default:
			types[i] = relCoplanar
		}
		polyType |= types[i]
	}
	switch polyType {
	case relCoplanar:
		if r3.Dot(p.n, poly.plane.n) > 0 {
			*coplanarFront = append(*coplanarFront, poly)
		} else {
			*coplanarBack = append(*coplanarBack, poly)
		}
	case relFront:
		*front = append(*front, poly)
	case relBack:
		*back = append(*back, poly)
	case relSpanning:
		var f, b []r3.Vec
		n := len(poly.verts)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			ti, tj := types[i], types[j]
			vi, vj := poly.verts[i], poly.verts[j]
			if ti != relBack {
				f = append(f, vi)
			}
			if ti != relFront {
				b = append(b, vi)
			}
			if (ti | tj) == relSpanning {
				t := (p.w - r3.Dot(p.n, vi)) / r3.Dot(p.n, r3.Sub(vj, vi))
				v := r3.Add(vi, r3.Scale(t, r3.Sub(vj, vi)))
				f = append(f, v)
				b = append(b, v)
			}
		}
		if fp, ok := newBSPPolygon(f); ok {
			*front = append(*front, fp)
		}
		if bp, ok := newBSPPolygon(b); ok {
			*back = append(*back, bp)
		}
	}
}

// bspPolygon is a planar convex polygon with a cached plane.
type bspPolygon struct {
	verts []r3.Vec
	plane bspPlane
}

func newBSPPolygon(verts []r3.Vec) (bspPolygon, bool) {
	if len(verts) < 3 {
		return bspPolygon{}, false
	}
	pl, ok := planeFromPoints(verts[0], verts[1], verts[2])
	if !ok {
		return bspPolygon{}, false
	}
	return bspPolygon{verts: verts, plane: pl}, true
}

func (p *bspPolygon) flip() {
	for i, j := 0, len(p.verts)-1; i < j; i, j = i+1, j-1 {
		p.verts[i], p.verts[j] = p.verts[j], p.verts[i]
	}
	p.plane.flip()
}

// bspNode is one node of a solid's BSP tree.
type bspNode struct {
	plane    *bspPlane
	front    *bspNode
	back     *bspNode
	polygons []bspPolygon
}

func newBSPNode() *bspNode { return &bspNode{} }

func (n *bspNode) invert() {
	for i := range n.polygons {
		n.polygons[i].flip()
	}
	if n.plane != nil {
		n.plane.flip()
	}
	if n.front != nil {
		n.front.invert()
	}
	if n.back != nil {
		n.back.invert()
	}
	n.front, n.back = n.back, n.front
}

// clipPolygons removes the parts of polys inside n's solid.
func (n *bspNode) clipPolygons(op *bspOp, polys []bspPolygon) ([]bspPolygon, error) {
	if n.plane == nil {
		out := make([]bspPolygon, len(polys))
		copy(out, polys)
		return out, nil
	}
	var front, back []bspPolygon
	for _, p := range polys {
		if err := op.checkCancel(); err != nil {
			return nil, err
		}
		n.plane.splitPolygon(p, &front, &back, &front, &back)
	}
	var err error
	if n.front != nil {
		if front, err = n.front.clipPolygons(op, front); err != nil {
			return nil, err
		}
	}
	if n.back != nil {
		if back, err = n.back.clipPolygons(op, back); err != nil {
			return nil, err
		}
	} else {
		back = nil
	}
	return append(front, back...), nil
}

func (n *bspNode) clipTo(op *bspOp, other *bspNode) error {
	var err error
	if n.polygons, err = other.clipPolygons(op, n.polygons); err != nil {
		return err
	}
	if n.front != nil {
		if err = n.front.clipTo(op, other); err != nil {
			return err
		}
	}
	if n.back != nil {
		if err = n.back.clipTo(op, other); err != nil {
			return err
		}
	}
	return nil
}

func (n *bspNode) allPolygons() []bspPolygon {
	out := append([]bspPolygon(nil), n.polygons...)
	if n.front != nil {
		out = append(out, n.front.allPolygons()...)
	}
	if n.back != nil {
		out = append(out, n.back.allPolygons()...)
	}
	return out
}

func (n *bspNode) build(op *bspOp, polys []bspPolygon) error {
	if len(polys) == 0 {
		return nil
	}
	if n.plane == nil {
		pl := polys[0].plane
		n.plane = &pl
	}
	var front, back []bspPolygon
	for _, p := range polys {
		if err := op.checkCancel(); err != nil {
			return err
		}
		n.plane.splitPolygon(p, &n.polygons, &n.polygons, &front, &back)
	}
	if len(front) > 0 {
		if n.front == nil {
			n.front = newBSPNode()
		}
		if err := n.front.build(op, front); err != nil {
			return err
		}
	}
	if len(back) > 0 {
		if n.back == nil {
			n.back = newBSPNode()
		}
		if err := n.back.build(op, back); err != nil {
			return err
		}
	}
	return nil
}

func meshPolygons(m *mesh.Mesh) []bspPolygon {
	out := make([]bspPolygon, 0, m.Len())
	for _, t := range m.Triangles {
		if p, ok := newBSPPolygon([]r3.Vec{t[0], t[1], t[2]}); ok {
			out = append(out, p)
		}
	}
	return out
}

func polygonsMesh(polys []bspPolygon) *mesh.Mesh {
	m := mesh.New(len(polys))
	for _, p := range polys {
		for i := 2; i < len(p.verts); i++ {
			m.Add(p.verts[0], p.verts[i-1], p.verts[i])
		}
	}
	return m
}
