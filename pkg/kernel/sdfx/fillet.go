package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/cascade/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

type filletBuilder struct {
	k     *SdfxKernel
	base  kernel.Handle
	edges []*node
	radii []float64
	err   error
	done  bool
}

// NewFillet returns a fillet builder for the solid behind h.
//
// This backend rounds convex solids only, and only when every edge is
// added with the same radius: the result is then the solid eroded by the
// radius and dilated by a ball of the same radius, which rounds edges
// with cylindrical blends and corners with spherical ones. The blended
// boundary is meshed into triangular faces.
func (k *SdfxKernel) NewFillet(h kernel.Handle) kernel.FilletBuilder {
	return &filletBuilder{k: k, base: h}
}

func (b *filletBuilder) AddEdge(radius float64, edge kernel.Handle) {
	if b.err != nil {
		return
	}
	e, err := b.k.unwrap(edge)
	if err != nil {
		b.err = fmt.Errorf("sdfx: fillet: edge %d: %w", len(b.edges), err)
		return
	}
	if e.kind != kernel.KindEdge {
		b.err = fmt.Errorf("sdfx: fillet: argument %d is a %s, not an edge", len(b.edges), e.kind)
		return
	}
	b.edges = append(b.edges, e)
	b.radii = append(b.radii, radius)
}

func (b *filletBuilder) Build() (kernel.Handle, error) {
	if b.done {
		return nil, kernel.ErrBuilderConsumed
	}
	b.done = true
	if b.err != nil {
		return nil, b.err
	}
	base, err := b.k.unwrap(b.base)
	if err != nil {
		return nil, fmt.Errorf("sdfx: fillet: %w", err)
	}
	solids := collect(base, kernel.KindSolid)
	if len(solids) != 1 {
		return nil, fmt.Errorf("sdfx: fillet: shape must hold exactly one solid, found %d", len(solids))
	}
	solid := solids[0]
	if len(b.edges) == 0 {
		return nil, fmt.Errorf("sdfx: fillet: no edges added")
	}

	radius := b.radii[0]
	if radius <= 0 {
		return nil, fmt.Errorf("sdfx: fillet: radius must be positive, got %g", radius)
	}
	if !lo.EveryBy(b.radii, func(r float64) bool { return r == radius }) {
		return nil, fmt.Errorf("sdfx: fillet: varying radii are not supported")
	}
	all := collect(solid, kernel.KindEdge)
	if !lo.Every(b.edges, all) || !lo.Every(all, b.edges) {
		return nil, fmt.Errorf("sdfx: fillet: only rounding every edge of the solid is supported (%d of %d added)",
			len(lo.Uniq(b.edges)), len(all))
	}

	lo3, hi3 := solid.BoundingBox()
	bb := sdf.Box3{
		Min: v3.Vec{X: lo3[0], Y: lo3[1], Z: lo3[2]},
		Max: v3.Vec{X: hi3[0], Y: hi3[1], Z: hi3[2]},
	}
	// A previously blended solid is only convex to within one marching
	// cubes cell, and its slivers carry no reliable plane.
	cell := bb.Max.Sub(bb.Min).MaxComponent() / float64(b.k.cfg.FilletCells)
	tol := math.Max(b.k.cfg.Tolerance, cell)
	faces := lo.Filter(collect(solid, kernel.KindFace), func(f *node, _ int) bool {
		return newell(facePoints(f)).Length() > 0.02*cell*cell
	})
	planes := lo.Map(faces, func(f *node, _ int) plane {
		return plane{n: f.normal, d: f.normal.Dot(facePoints(f)[0])}
	})
	for _, v := range collect(solid, kernel.KindVertex) {
		for _, pl := range planes {
			if pl.n.Dot(v.point)-pl.d > tol {
				return nil, fmt.Errorf("sdfx: fillet: solid is not convex")
			}
		}
	}
	inner, err := innerPolytope(planes, radius, bb.Max.Sub(bb.Min).Length(), b.k.cfg.Tolerance)
	if err != nil {
		return nil, fmt.Errorf("sdfx: fillet: radius %g: %w", radius, err)
	}

	rounded := &roundedSolid{planes: planes, faces: inner, radius: radius, bb: bb}
	triangles := render.ToTriangles(rounded, render.NewMarchingCubesUniform(b.k.cfg.FilletCells))
	polys := make([][]v3.Vec, 0, len(triangles))
	for _, tri := range triangles {
		polys = append(polys, []v3.Vec{tri[0], tri[1], tri[2]})
	}

	w := newWelder(b.k.cfg.Tolerance)
	tol2 := b.k.cfg.Tolerance * b.k.cfg.Tolerance
	loops := lo.Filter(w.loops(polys), func(l []int, _ int) bool {
		return newell(loopPoints(w.points, [][]int{l})[0]).Length() > tol2
	})
	if len(loops) == 0 {
		return nil, fmt.Errorf("sdfx: fillet: blend produced no surface")
	}
	sh, err := newAssembler(b.k, w.points).shell(loops)
	if err != nil {
		return nil, fmt.Errorf("sdfx: fillet: %w", err)
	}
	out := b.k.solidOf(sh)
	kernel.Logger().Debug("sdfx: fillet built", "handle", out.String(), "radius", radius, "faces", len(loops))
	return out, nil
}

// plane is the half-space n.p <= d with unit n.
type plane struct {
	n v3.Vec
	d float64
}

// polygon is a convex planar loop, counter-clockwise around n.
type polygon struct {
	pts []v3.Vec
	n   v3.Vec
}

var errRadiusTooLarge = errors.New("radius consumes the solid")

// innerPolytope offsets every plane inwards by r and returns the faces of
// the intersection of the offset half-spaces.
func innerPolytope(planes []plane, r, size, tol float64) ([]polygon, error) {
	var faces []polygon
	for i, pl := range planes {
		origin := pl.n.MulScalar(pl.d - r)
		u := perpendicular(pl.n).MulScalar(2*size + 1)
		v := pl.n.Cross(u)
		poly := []v3.Vec{
			origin.Sub(u).Sub(v),
			origin.Add(u).Sub(v),
			origin.Add(u).Add(v),
			origin.Sub(u).Add(v),
		}
		for j, q := range planes {
			if j == i || len(poly) < 3 {
				continue
			}
			poly = clip(poly, q.n, q.d-r)
		}
		if len(poly) >= 3 && newell(poly).Length() > tol*tol {
			faces = append(faces, polygon{pts: poly, n: pl.n})
		}
	}
	loops := lo.Map(faces, func(f polygon, _ int) []v3.Vec { return f.pts })
	if len(faces) < 4 || signedVolume(loops) <= tol {
		return nil, errRadiusTooLarge
	}
	return faces, nil
}

// perpendicular returns a unit vector orthogonal to n.
func perpendicular(n v3.Vec) v3.Vec {
	a := v3.Vec{X: 1}
	if math.Abs(n.X) > 0.6 {
		a = v3.Vec{Y: 1}
	}
	return n.Cross(a).Normalize()
}

// clip keeps the part of a convex polygon with n.p <= d.
func clip(poly []v3.Vec, n v3.Vec, d float64) []v3.Vec {
	out := make([]v3.Vec, 0, len(poly)+1)
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		dp, dq := n.Dot(p)-d, n.Dot(q)-d
		if dp <= 0 {
			out = append(out, p)
		}
		if (dp < 0 && dq > 0) || (dp > 0 && dq < 0) {
			t := dp / (dp - dq)
			out = append(out, p.Add(q.Sub(p).MulScalar(t)))
		}
	}
	return out
}

// distance returns the distance from p to the polygon.
func (f polygon) distance(p v3.Vec) float64 {
	h := p.Sub(f.pts[0]).Dot(f.n)
	proj := p.Sub(f.n.MulScalar(h))
	inside := true
	for i, a := range f.pts {
		b := f.pts[(i+1)%len(f.pts)]
		if b.Sub(a).Cross(proj.Sub(a)).Dot(f.n) < 0 {
			inside = false
			break
		}
	}
	if inside {
		return math.Abs(h)
	}
	best := math.Inf(1)
	for i, a := range f.pts {
		best = math.Min(best, segmentDistance(p, a, f.pts[(i+1)%len(f.pts)]))
	}
	return best
}

func segmentDistance(p, a, b v3.Vec) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Sub(a).Length()
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
	return p.Sub(a.Add(ab.MulScalar(t))).Length()
}

// roundedSolid is the exact signed distance field of a convex polytope
// grown by a ball of the given radius.
type roundedSolid struct {
	planes []plane   // original faces, offsets applied on evaluation
	faces  []polygon // faces of the inner (offset) polytope
	radius float64
	bb     sdf.Box3
}

// Evaluate returns the signed distance from p to the rounded surface.
func (s *roundedSolid) Evaluate(p v3.Vec) float64 {
	inside := math.Inf(-1)
	for _, pl := range s.planes {
		inside = math.Max(inside, pl.n.Dot(p)-(pl.d-s.radius))
	}
	if inside <= 0 {
		return inside - s.radius
	}
	dist := math.Inf(1)
	for _, f := range s.faces {
		dist = math.Min(dist, f.distance(p))
	}
	return dist - s.radius
}

// BoundingBox returns the bounding box of the unrounded solid, which
// contains the rounded one.
func (s *roundedSolid) BoundingBox() sdf.Box3 {
	return s.bb
}
