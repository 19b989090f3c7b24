// Package sdfx implements the kernel.Kernel interface in pure Go.
//
// Shapes are polyhedral boundary representations: planar faces bounded by
// straight-edged wires, sharing vertices and edges inside one owned tree.
// Blend surfaces for fillets are produced with the github.com/deadsy/sdfx
// SDF library and its marching cubes renderer, which also writes STL files.
//
// This backend needs no native libraries. It does not intersect faces, so
// boolean make-volume only succeeds when the argument faces already meet
// along shared boundaries.
package sdfx

import (
	"fmt"

	"github.com/chazu/cascade/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*SdfxKernel)(nil)
var _ kernel.Handle = (*node)(nil)

// SdfxKernel implements kernel.Kernel with polyhedral topology.
// It holds no mutable state, so one kernel may serve any number of shapes.
type SdfxKernel struct {
	cfg Config
}

// New returns a kernel using DefaultConfig.
func New() *SdfxKernel {
	return &SdfxKernel{cfg: DefaultConfig()}
}

// NewWithConfig returns a kernel using cfg.
func NewWithConfig(cfg Config) (*SdfxKernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SdfxKernel{cfg: cfg}, nil
}

// Config returns the kernel configuration.
func (k *SdfxKernel) Config() Config {
	return k.cfg
}

func (k *SdfxKernel) newNode(kind kernel.Kind) *node {
	return &node{id: uuid.New(), kind: kind, k: k}
}

// unwrap extracts the node behind a handle, rejecting foreign and released handles.
func (k *SdfxKernel) unwrap(h kernel.Handle) (*node, error) {
	n, ok := h.(*node)
	if !ok || n == nil || n.k != k {
		return nil, kernel.ErrForeignHandle
	}
	if n.released {
		return nil, kernel.ErrReleased
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// boxLoops lists the six faces of a box over corner indices
// x + 2y + 4z, each wound counter-clockwise seen from outside.
var boxLoops = [][]int{
	{0, 2, 3, 1}, // bottom
	{4, 5, 7, 6}, // top
	{0, 1, 5, 4}, // front
	{2, 6, 7, 3}, // back
	{0, 4, 6, 2}, // left
	{1, 3, 7, 5}, // right
}

// Box creates a solid box with its minimum corner at origin.
func (k *SdfxKernel) Box(origin v3.Vec, dx, dy, dz float64) (kernel.Handle, error) {
	if dx <= k.cfg.Tolerance || dy <= k.cfg.Tolerance || dz <= k.cfg.Tolerance {
		return nil, fmt.Errorf("sdfx: box: extents must be positive, got %g x %g x %g", dx, dy, dz)
	}
	corners := make([]v3.Vec, 8)
	for i := range corners {
		corners[i] = origin.Add(v3.Vec{
			X: float64(i&1) * dx,
			Y: float64(i>>1&1) * dy,
			Z: float64(i>>2&1) * dz,
		})
	}
	sh, err := newAssembler(k, corners).shell(boxLoops)
	if err != nil {
		return nil, fmt.Errorf("sdfx: box: %w", err)
	}
	return k.solidOf(sh), nil
}

// Vertex creates a vertex at p.
func (k *SdfxKernel) Vertex(p v3.Vec) kernel.Handle {
	v := k.newNode(kernel.KindVertex)
	v.point = p
	return v
}

// Edge creates a straight edge from a to b.
func (k *SdfxKernel) Edge(a, b v3.Vec) (kernel.Handle, error) {
	if a.Sub(b).Length() <= k.cfg.Tolerance {
		return nil, fmt.Errorf("sdfx: edge: end points coincide at %v", a)
	}
	return newAssembler(k, []v3.Vec{a, b}).wire([]int{0, 1}, false).edges[0], nil
}

// Wire chains edges into a wire. Each edge must share an end point with
// the next one; edges are flipped as needed. The wire is closed when the
// chain returns to its first point.
func (k *SdfxKernel) Wire(edges []kernel.Handle) (kernel.Handle, error) {
	if len(edges) == 0 {
		return nil, fmt.Errorf("sdfx: wire: no edges")
	}
	segs := make([][2]v3.Vec, len(edges))
	for i, h := range edges {
		e, err := k.unwrap(h)
		if err != nil {
			return nil, fmt.Errorf("sdfx: wire: edge %d: %w", i, err)
		}
		if e.kind != kernel.KindEdge {
			return nil, fmt.Errorf("sdfx: wire: argument %d is a %s, not an edge", i, e.kind)
		}
		segs[i] = [2]v3.Vec{e.ends[0].point, e.ends[1].point}
	}

	near := func(a, b v3.Vec) bool { return a.Sub(b).Length() <= k.cfg.Tolerance }

	chain := []v3.Vec{segs[0][0], segs[0][1]}
	if len(segs) > 1 {
		next := segs[1]
		if !near(chain[1], next[0]) && !near(chain[1], next[1]) {
			chain[0], chain[1] = chain[1], chain[0]
		}
	}
	for i, seg := range segs[1:] {
		last := chain[len(chain)-1]
		switch {
		case near(last, seg[0]):
			chain = append(chain, seg[1])
		case near(last, seg[1]):
			chain = append(chain, seg[0])
		default:
			return nil, fmt.Errorf("sdfx: wire: edge %d is not connected to edge %d", i+1, i)
		}
	}

	isClosed := len(segs) > 2 && near(chain[0], chain[len(chain)-1])
	if isClosed {
		chain = chain[:len(chain)-1]
	}
	idx := make([]int, len(chain))
	for i := range idx {
		idx[i] = i
	}
	return newAssembler(k, chain).wire(idx, isClosed), nil
}

// Face creates a planar face bounded by a closed wire.
func (k *SdfxKernel) Face(wire kernel.Handle) (kernel.Handle, error) {
	w, err := k.unwrap(wire)
	if err != nil {
		return nil, fmt.Errorf("sdfx: face: %w", err)
	}
	if w.kind != kernel.KindWire {
		return nil, fmt.Errorf("sdfx: face: argument is a %s, not a wire", w.kind)
	}
	if !closed(w) {
		return nil, fmt.Errorf("sdfx: face: wire is not closed")
	}
	pts := points(loop(w))
	n := newell(pts)
	if n.Length() <= k.cfg.Tolerance*k.cfg.Tolerance {
		return nil, fmt.Errorf("sdfx: face: %w", errDegenerateFace)
	}
	if !planar(pts, n.Normalize(), k.cfg.Tolerance) {
		return nil, fmt.Errorf("sdfx: face: wire is not planar")
	}
	idx := make([]int, len(pts))
	for i := range idx {
		idx[i] = i
	}
	f, err := newAssembler(k, pts).face(idx)
	if err != nil {
		return nil, fmt.Errorf("sdfx: face: %w", err)
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Topology
// ---------------------------------------------------------------------------

// Explore returns the distinct sub-entities of the requested kind in
// depth-first order: compound children, solid shells, shell faces, face
// wire, wire edges, edge vertices. The order follows construction order
// and carries no geometric meaning. Invalid handles yield nothing.
func (k *SdfxKernel) Explore(h kernel.Handle, kind kernel.Kind) []kernel.Handle {
	n, err := k.unwrap(h)
	if err != nil {
		return nil
	}
	found := collect(n, kind)
	out := make([]kernel.Handle, len(found))
	for i, f := range found {
		out[i] = f
	}
	return out
}

// Children returns the direct sub-entities of h: the members of a
// compound, the shells of a solid, the faces of a shell, the wire of a
// face, the edges of a wire and the end vertices of an edge.
func (k *SdfxKernel) Children(h kernel.Handle) []kernel.Handle {
	n, err := k.unwrap(h)
	if err != nil || n.kind == kernel.KindVertex {
		return nil
	}
	sub := n.sub()
	out := make([]kernel.Handle, len(sub))
	for i, c := range sub {
		out[i] = c
	}
	return out
}

// Copy returns a deep copy of h. Shared sub-entities stay shared in the copy.
func (k *SdfxKernel) Copy(h kernel.Handle) (kernel.Handle, error) {
	n, err := k.unwrap(h)
	if err != nil {
		return nil, fmt.Errorf("sdfx: copy: %w", err)
	}
	c := k.copyTree(n, func(p v3.Vec) v3.Vec { return p })
	kernel.Logger().Debug("sdfx: copy", "from", n.String(), "to", c.String())
	return c, nil
}

// copyTree duplicates n, mapping every vertex position through move.
func (k *SdfxKernel) copyTree(n *node, move func(v3.Vec) v3.Vec) *node {
	memo := make(map[*node]*node)
	var cp func(*node) *node
	cp = func(src *node) *node {
		if src == nil {
			return nil
		}
		if dst, ok := memo[src]; ok {
			return dst
		}
		dst := k.newNode(src.kind)
		memo[src] = dst
		dst.point = move(src.point)
		dst.normal = src.normal
		dst.ends = [2]*node{cp(src.ends[0]), cp(src.ends[1])}
		dst.wire = cp(src.wire)
		for _, e := range src.edges {
			dst.edges = append(dst.edges, cp(e))
		}
		dst.reversed = append([]bool(nil), src.reversed...)
		for _, c := range src.children {
			dst.children = append(dst.children, cp(c))
		}
		return dst
	}
	return cp(n)
}

// Release invalidates h and every entity below it. Releasing twice is a no-op.
func (k *SdfxKernel) Release(h kernel.Handle) {
	n, err := k.unwrap(h)
	if err != nil {
		return
	}
	seen := make(map[*node]bool)
	var walk func(*node)
	walk = func(c *node) {
		if c == nil || seen[c] {
			return
		}
		seen[c] = true
		c.released = true
		for _, s := range c.sub() {
			walk(s)
		}
	}
	walk(n)
	kernel.Logger().Debug("sdfx: release", "handle", n.String())
}

// VertexPoint returns the position of a vertex.
func (k *SdfxKernel) VertexPoint(h kernel.Handle) (v3.Vec, error) {
	n, err := k.unwrap(h)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("sdfx: vertex point: %w", err)
	}
	if n.kind != kernel.KindVertex {
		return v3.Vec{}, fmt.Errorf("sdfx: vertex point: handle is a %s", n.kind)
	}
	return n.point, nil
}

// Translate returns a copy of h moved by d.
func (k *SdfxKernel) Translate(h kernel.Handle, d v3.Vec) (kernel.Handle, error) {
	n, err := k.unwrap(h)
	if err != nil {
		return nil, fmt.Errorf("sdfx: translate: %w", err)
	}
	return k.copyTree(n, func(p v3.Vec) v3.Vec { return p.Add(d) }), nil
}
