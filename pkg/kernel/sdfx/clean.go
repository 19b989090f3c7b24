package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/cascade/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Clean returns a copy of h with adjacent coplanar faces merged and
// vertices that only split a straight boundary removed. Faces, wires,
// edges and vertices are copied unchanged.
func (k *SdfxKernel) Clean(h kernel.Handle) (kernel.Handle, error) {
	n, err := k.unwrap(h)
	if err != nil {
		return nil, fmt.Errorf("sdfx: clean: %w", err)
	}
	out, err := k.clean(n)
	if err != nil {
		return nil, fmt.Errorf("sdfx: clean: %w", err)
	}
	kernel.Logger().Debug("sdfx: clean",
		"from", n.String(), "to", out.String(),
		"faces_before", len(collect(n, kernel.KindFace)),
		"faces_after", len(collect(out, kernel.KindFace)))
	return out, nil
}

func (k *SdfxKernel) clean(n *node) (*node, error) {
	switch n.kind {
	case kernel.KindCompound, kernel.KindCompSolid, kernel.KindSolid:
		out := k.newNode(n.kind)
		for _, c := range n.children {
			cc, err := k.clean(c)
			if err != nil {
				return nil, err
			}
			out.children = append(out.children, cc)
		}
		return out, nil
	case kernel.KindShell:
		return k.cleanShell(n)
	default:
		return k.copyTree(n, func(p v3.Vec) v3.Vec { return p }), nil
	}
}

func (k *SdfxKernel) cleanShell(sh *node) (*node, error) {
	polys := make([][]v3.Vec, 0, len(sh.children))
	for _, f := range sh.children {
		polys = append(polys, facePoints(f))
	}
	w := newWelder(k.cfg.Tolerance)
	loops := w.loops(polys)
	loops = mergeCoplanar(w.points, loops, k.cfg.Tolerance)
	loops = dropCollinear(w.points, loops, k.cfg.Tolerance)
	return newAssembler(k, w.points).shell(loops)
}

// mergeCoplanar unites faces that share an edge and lie in the same plane.
// A group is only merged when its outer boundary is a single loop.
func mergeCoplanar(pts []v3.Vec, loops [][]int, tol float64) [][]int {
	normals := make([]v3.Vec, len(loops))
	for i, l := range loops {
		normals[i] = newell(loopPoints(pts, [][]int{l})[0]).Normalize()
	}
	coplanar := func(f, g int) bool {
		if normals[f].Dot(normals[g]) < 1-1e-9 {
			return false
		}
		return math.Abs(normals[f].Dot(pts[loops[g][0]].Sub(pts[loops[f][0]]))) <= tol
	}

	parent := make([]int, len(loops))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	byEdge := make(map[edgeKey][]int)
	for f, l := range loops {
		for i := range l {
			key := keyOf(l[i], l[(i+1)%len(l)])
			byEdge[key] = append(byEdge[key], f)
		}
	}
	for _, fs := range byEdge {
		if len(fs) == 2 && coplanar(fs[0], fs[1]) {
			parent[find(fs[0])] = find(fs[1])
		}
	}

	groups := make(map[int][]int)
	var order []int
	for f := range loops {
		r := find(f)
		if _, ok := groups[r]; !ok {
			order = append(order, r)
		}
		groups[r] = append(groups[r], f)
	}

	out := make([][]int, 0, len(order))
	for _, r := range order {
		members := groups[r]
		if len(members) == 1 {
			out = append(out, loops[members[0]])
			continue
		}
		if merged, ok := boundary(loops, members); ok {
			out = append(out, merged)
			continue
		}
		for _, f := range members {
			out = append(out, loops[f])
		}
	}
	return out
}

// boundary returns the single outer loop of a group of consistently
// oriented loops, or false when the boundary is not one simple loop.
func boundary(loops [][]int, members []int) ([]int, bool) {
	type directed struct{ from, to int }
	present := make(map[directed]bool)
	for _, f := range members {
		l := loops[f]
		for i := range l {
			present[directed{l[i], l[(i+1)%len(l)]}] = true
		}
	}
	next := make(map[int]int)
	first := -1
	for _, f := range members {
		l := loops[f]
		for i := range l {
			e := directed{l[i], l[(i+1)%len(l)]}
			if present[directed{e.to, e.from}] {
				continue
			}
			if _, dup := next[e.from]; dup {
				return nil, false
			}
			next[e.from] = e.to
			if first < 0 {
				first = e.from
			}
		}
	}
	if first < 0 {
		return nil, false
	}
	out := []int{first}
	for v := next[first]; v != first; v = next[v] {
		if len(out) > len(next) {
			return nil, false
		}
		out = append(out, v)
	}
	if len(out) != len(next) {
		return nil, false
	}
	return out, true
}

// dropCollinear removes vertices lying on a straight run of every loop
// that uses them.
func dropCollinear(pts []v3.Vec, loops [][]int, tol float64) [][]int {
	removable := make(map[int]bool)
	for _, l := range loops {
		for i, v := range l {
			a := pts[l[(i+len(l)-1)%len(l)]]
			b := pts[l[(i+1)%len(l)]]
			straight := segmentDistance(pts[v], a, b) <= tol
			if ok, seen := removable[v]; seen {
				removable[v] = ok && straight
			} else {
				removable[v] = straight
			}
		}
	}
	out := make([][]int, 0, len(loops))
	for _, l := range loops {
		kept := make([]int, 0, len(l))
		for _, v := range l {
			if !removable[v] {
				kept = append(kept, v)
			}
		}
		if len(kept) < 3 {
			kept = l
		}
		out = append(out, kept)
	}
	return out
}
