package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/cascade/pkg/kernel"
	"github.com/dhconnelly/rtreego"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
)

// node is one topological entity. Sub-entities are shared inside a single
// owned tree (two faces of a box reference the same edge) but never across
// trees: every owned handle is the root of its own graph.
type node struct {
	id   uuid.UUID
	kind kernel.Kind
	k    *SdfxKernel

	point v3.Vec // vertex

	ends [2]*node // edge: start and end vertex

	edges    []*node // wire: edges in traversal order
	reversed []bool  // wire: edge i is traversed end -> start

	wire   *node  // face: outer boundary
	normal v3.Vec // face: unit normal, loop is counter-clockwise around it

	children []*node // shell: faces; solid: shells; compound: anything

	released bool
}

// Kind returns the topological tag of the handle.
func (n *node) Kind() kernel.Kind { return n.kind }

// BoundingBox returns the axis-aligned bounding box of all vertices.
func (n *node) BoundingBox() (min, max [3]float64) {
	verts := collect(n, kernel.KindVertex)
	if len(verts) == 0 {
		return min, max
	}
	lo, hi := verts[0].point, verts[0].point
	for _, v := range verts[1:] {
		lo = v3.Vec{X: math.Min(lo.X, v.point.X), Y: math.Min(lo.Y, v.point.Y), Z: math.Min(lo.Z, v.point.Z)}
		hi = v3.Vec{X: math.Max(hi.X, v.point.X), Y: math.Max(hi.Y, v.point.Y), Z: math.Max(hi.Z, v.point.Z)}
	}
	return [3]float64{lo.X, lo.Y, lo.Z}, [3]float64{hi.X, hi.Y, hi.Z}
}

func (n *node) String() string {
	return fmt.Sprintf("%s(%s)", n.kind, n.id.String()[:8])
}

// sub returns the direct sub-entities in traversal order.
func (n *node) sub() []*node {
	switch n.kind {
	case kernel.KindEdge:
		return n.ends[:]
	case kernel.KindWire:
		return n.edges
	case kernel.KindFace:
		return []*node{n.wire}
	default:
		return n.children
	}
}

// collect walks n depth-first and returns every distinct entity of kind, in
// first-visit order. n itself is included when it has the requested kind.
func collect(n *node, kind kernel.Kind) []*node {
	var out []*node
	seen := make(map[*node]bool)
	var walk func(*node)
	walk = func(c *node) {
		if c == nil || seen[c] {
			return
		}
		seen[c] = true
		if c.kind == kind {
			out = append(out, c)
			// Nothing of the same kind can be nested below, except compounds.
			if kind != kernel.KindCompound {
				return
			}
		}
		for _, s := range c.sub() {
			walk(s)
		}
	}
	walk(n)
	return out
}

// loop returns the vertices of a wire in traversal order. For a closed
// wire the first vertex is not repeated; for an open wire the last end is
// included.
func loop(w *node) []*node {
	out := make([]*node, 0, len(w.edges)+1)
	for i := range w.edges {
		out = append(out, start(w, i))
	}
	if len(w.edges) > 0 && !closed(w) {
		out = append(out, end(w, len(w.edges)-1))
	}
	return out
}

func start(w *node, i int) *node {
	if w.reversed[i] {
		return w.edges[i].ends[1]
	}
	return w.edges[i].ends[0]
}

func end(w *node, i int) *node {
	if w.reversed[i] {
		return w.edges[i].ends[0]
	}
	return w.edges[i].ends[1]
}

func closed(w *node) bool {
	if len(w.edges) < 2 {
		return false
	}
	return start(w, 0) == end(w, len(w.edges)-1)
}

func points(vs []*node) []v3.Vec {
	out := make([]v3.Vec, len(vs))
	for i, v := range vs {
		out[i] = v.point
	}
	return out
}

// facePoints returns the boundary loop of a face.
func facePoints(f *node) []v3.Vec {
	return points(loop(f.wire))
}

// ---------------------------------------------------------------------------
// Polygon geometry
// ---------------------------------------------------------------------------

// newell returns the area vector of a closed polygon: its direction is the
// normal for a counter-clockwise loop and its length is twice the area.
func newell(pts []v3.Vec) v3.Vec {
	var n v3.Vec
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return n
}

// polygonArea returns the area and centroid of a planar polygon.
func polygonArea(pts []v3.Vec, normal v3.Vec) (float64, v3.Vec) {
	var area float64
	var c v3.Vec
	for i := 1; i+1 < len(pts); i++ {
		a := pts[i].Sub(pts[0]).Cross(pts[i+1].Sub(pts[0])).Dot(normal) / 2
		centroid := pts[0].Add(pts[i]).Add(pts[i+1]).DivScalar(3)
		area += a
		c = c.Add(centroid.MulScalar(a))
	}
	if area == 0 {
		return 0, pts[0]
	}
	return math.Abs(area), c.DivScalar(area)
}

// signedVolume returns the volume enclosed by oriented polygon loops,
// positive when the loops face outwards.
func signedVolume(loops [][]v3.Vec) float64 {
	var vol float64
	for _, pts := range loops {
		for i := 1; i+1 < len(pts); i++ {
			vol += pts[0].Dot(pts[i].Cross(pts[i+1])) / 6
		}
	}
	return vol
}

// planar reports whether every point lies within tol of the plane through
// the polygon centroid with the given unit normal.
func planar(pts []v3.Vec, normal v3.Vec, tol float64) bool {
	var c v3.Vec
	for _, p := range pts {
		c = c.Add(p)
	}
	c = c.DivScalar(float64(len(pts)))
	for _, p := range pts {
		if math.Abs(p.Sub(c).Dot(normal)) > tol {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Vertex welding
// ---------------------------------------------------------------------------

type weldPoint struct {
	index  int
	bounds rtreego.Rect
}

func (w *weldPoint) Bounds() rtreego.Rect { return w.bounds }

// welder assigns the same index to points closer than tol.
type welder struct {
	tol    float64
	tree   *rtreego.Rtree
	points []v3.Vec
}

func newWelder(tol float64) *welder {
	return &welder{tol: tol, tree: rtreego.NewTree(3, 25, 50)}
}

func (w *welder) index(p v3.Vec) int {
	q := rtreego.Point{p.X, p.Y, p.Z}
	for _, s := range w.tree.SearchIntersect(q.ToRect(w.tol)) {
		wp := s.(*weldPoint)
		if w.points[wp.index].Sub(p).Length() <= w.tol {
			return wp.index
		}
	}
	i := len(w.points)
	w.points = append(w.points, p)
	w.tree.Insert(&weldPoint{index: i, bounds: q.ToRect(w.tol / 2)})
	return i
}

// loops welds polygon loops into index loops. Consecutive duplicates that
// collapse under welding are dropped; loops left with fewer than three
// vertices are discarded.
func (w *welder) loops(polys [][]v3.Vec) [][]int {
	out := make([][]int, 0, len(polys))
	for _, pts := range polys {
		l := make([]int, 0, len(pts))
		for _, p := range pts {
			i := w.index(p)
			if len(l) > 0 && l[len(l)-1] == i {
				continue
			}
			l = append(l, i)
		}
		if len(l) > 1 && l[0] == l[len(l)-1] {
			l = l[:len(l)-1]
		}
		if len(l) >= 3 {
			out = append(out, l)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Topology assembly
// ---------------------------------------------------------------------------

var errDegenerateFace = errors.New("degenerate face")

type edgeKey [2]int

func keyOf(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// assembler builds a fresh tree over an indexed point table, sharing
// vertices and edges between the faces it creates.
type assembler struct {
	k      *SdfxKernel
	pts    []v3.Vec
	verts  map[int]*node
	edgeAt map[edgeKey]*node
}

func newAssembler(k *SdfxKernel, pts []v3.Vec) *assembler {
	return &assembler{
		k:      k,
		pts:    pts,
		verts:  make(map[int]*node),
		edgeAt: make(map[edgeKey]*node),
	}
}

func (a *assembler) vertex(i int) *node {
	if v, ok := a.verts[i]; ok {
		return v
	}
	v := a.k.newNode(kernel.KindVertex)
	v.point = a.pts[i]
	a.verts[i] = v
	return v
}

func (a *assembler) edge(i, j int) (*node, bool) {
	key := keyOf(i, j)
	if e, ok := a.edgeAt[key]; ok {
		return e, e.ends[0] != a.vertex(i)
	}
	e := a.k.newNode(kernel.KindEdge)
	e.ends = [2]*node{a.vertex(i), a.vertex(j)}
	a.edgeAt[key] = e
	return e, false
}

// wire builds a wire through the indexed points, closing it when asked.
func (a *assembler) wire(idx []int, close bool) *node {
	w := a.k.newNode(kernel.KindWire)
	n := len(idx) - 1
	if close {
		n = len(idx)
	}
	for i := 0; i < n; i++ {
		e, rev := a.edge(idx[i], idx[(i+1)%len(idx)])
		w.edges = append(w.edges, e)
		w.reversed = append(w.reversed, rev)
	}
	return w
}

// face builds a planar face bounded by the closed index loop.
func (a *assembler) face(idx []int) (*node, error) {
	pts := make([]v3.Vec, len(idx))
	for i, j := range idx {
		pts[i] = a.pts[j]
	}
	n := newell(pts)
	if n.Length() <= a.k.cfg.Tolerance*a.k.cfg.Tolerance {
		return nil, errDegenerateFace
	}
	f := a.k.newNode(kernel.KindFace)
	f.wire = a.wire(idx, true)
	f.normal = n.Normalize()
	return f, nil
}

func (a *assembler) shell(loops [][]int) (*node, error) {
	sh := a.k.newNode(kernel.KindShell)
	for i, l := range loops {
		f, err := a.face(l)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		sh.children = append(sh.children, f)
	}
	return sh, nil
}

func (k *SdfxKernel) solidOf(shells ...*node) *node {
	s := k.newNode(kernel.KindSolid)
	s.children = shells
	return s
}

// ---------------------------------------------------------------------------
// Loop orientation
// ---------------------------------------------------------------------------

// edgeUses counts how many loops use each undirected edge.
func edgeUses(loops [][]int) map[edgeKey]int {
	uses := make(map[edgeKey]int)
	for _, l := range loops {
		for i := range l {
			uses[keyOf(l[i], l[(i+1)%len(l)])]++
		}
	}
	return uses
}

// isClosed reports whether every edge is shared by exactly two loops.
func isClosed(loops [][]int) bool {
	if len(loops) == 0 {
		return false
	}
	for _, c := range edgeUses(loops) {
		if c != 2 {
			return false
		}
	}
	return true
}

// orient flips loops in place so that neighbours traverse every shared
// edge in opposite directions. It returns the connected components as
// lists of loop indices, and false when no consistent orientation exists.
func orient(loops [][]int) ([][]int, bool) {
	byEdge := make(map[edgeKey][]int)
	for f, l := range loops {
		for i := range l {
			key := keyOf(l[i], l[(i+1)%len(l)])
			byEdge[key] = append(byEdge[key], f)
		}
	}

	// direction returns +1 when loop f walks key low->high, -1 otherwise.
	direction := func(f int, key edgeKey) int {
		l := loops[f]
		for i := range l {
			if l[i] == key[0] && l[(i+1)%len(l)] == key[1] {
				return 1
			}
		}
		return -1
	}

	visited := make([]bool, len(loops))
	ok := true
	var components [][]int
	for seed := range loops {
		if visited[seed] {
			continue
		}
		visited[seed] = true
		component := []int{seed}
		queue := []int{seed}
		for len(queue) > 0 {
			f := queue[0]
			queue = queue[1:]
			l := loops[f]
			for i := range l {
				key := keyOf(l[i], l[(i+1)%len(l)])
				for _, g := range byEdge[key] {
					if g == f {
						continue
					}
					if visited[g] {
						if direction(g, key) == direction(f, key) {
							ok = false
						}
						continue
					}
					if direction(g, key) == direction(f, key) {
						reverse(loops[g])
					}
					visited[g] = true
					component = append(component, g)
					queue = append(queue, g)
				}
			}
		}
		components = append(components, component)
	}
	return components, ok
}

func reverse(l []int) {
	for i, j := 0, len(l)-1; i < j; i, j = i+1, j-1 {
		l[i], l[j] = l[j], l[i]
	}
}

func loopPoints(pts []v3.Vec, loops [][]int) [][]v3.Vec {
	out := make([][]v3.Vec, len(loops))
	for i, l := range loops {
		out[i] = make([]v3.Vec, len(l))
		for j, idx := range l {
			out[i][j] = pts[idx]
		}
	}
	return out
}
