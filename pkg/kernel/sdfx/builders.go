package sdfx

import (
	"fmt"
	"math"
	"slices"

	"github.com/chazu/cascade/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// ---------------------------------------------------------------------------
// Compound
// ---------------------------------------------------------------------------

type compoundBuilder struct {
	k        *SdfxKernel
	children []*node
	err      error
	done     bool
}

// NewCompound returns a builder for an empty compound.
func (k *SdfxKernel) NewCompound() kernel.CompoundBuilder {
	return &compoundBuilder{k: k}
}

// Add copies child into the compound. Errors surface from Build.
func (b *compoundBuilder) Add(child kernel.Handle) {
	if b.err != nil {
		return
	}
	n, err := b.k.unwrap(child)
	if err != nil {
		b.err = fmt.Errorf("sdfx: compound: child %d: %w", len(b.children), err)
		return
	}
	b.children = append(b.children, b.k.copyTree(n, func(p v3.Vec) v3.Vec { return p }))
}

func (b *compoundBuilder) Build() (kernel.Handle, error) {
	if b.done {
		return nil, kernel.ErrBuilderConsumed
	}
	b.done = true
	if b.err != nil {
		return nil, b.err
	}
	c := b.k.newNode(kernel.KindCompound)
	c.children = b.children
	kernel.Logger().Debug("sdfx: compound built", "handle", c.String(), "children", len(c.children))
	return c, nil
}

// ---------------------------------------------------------------------------
// Through-sections loft
// ---------------------------------------------------------------------------

type loftBuilder struct {
	k     *SdfxKernel
	solid bool
	check bool
	wires []kernel.Handle
	done  bool
}

// NewLoft returns a through-sections builder. With solid set the first and
// last sections are capped and the result is a Solid, otherwise a Shell.
func (k *SdfxKernel) NewLoft(solid bool) kernel.LoftBuilder {
	return &loftBuilder{k: k, solid: solid}
}

func (b *loftBuilder) AddWire(wire kernel.Handle) {
	b.wires = append(b.wires, wire)
}

// CheckCompatibility enables re-aligning each section to the previous one
// (start vertex and direction) so the ruled bands do not twist.
func (b *loftBuilder) CheckCompatibility(check bool) {
	b.check = check
}

func (b *loftBuilder) Build() (kernel.Handle, error) {
	if b.done {
		return nil, kernel.ErrBuilderConsumed
	}
	b.done = true
	if len(b.wires) < 2 {
		return nil, fmt.Errorf("sdfx: loft: need at least two sections, got %d", len(b.wires))
	}

	sections := make([][]v3.Vec, len(b.wires))
	var isClosed bool
	for i, h := range b.wires {
		w, err := b.k.unwrap(h)
		if err != nil {
			return nil, fmt.Errorf("sdfx: loft: section %d: %w", i, err)
		}
		if w.kind != kernel.KindWire {
			return nil, fmt.Errorf("sdfx: loft: section %d is a %s, not a wire", i, w.kind)
		}
		sections[i] = points(loop(w))
		if i == 0 {
			isClosed = closed(w)
			continue
		}
		if closed(w) != isClosed {
			return nil, fmt.Errorf("sdfx: loft: section %d mixes open and closed wires", i)
		}
		if len(sections[i]) != len(sections[0]) {
			return nil, fmt.Errorf("sdfx: loft: incompatible sections: %d has %d vertices, 0 has %d",
				i, len(sections[i]), len(sections[0]))
		}
	}
	if b.solid && !isClosed {
		return nil, fmt.Errorf("sdfx: loft: a solid loft needs closed sections")
	}
	if b.check {
		for i := 1; i < len(sections); i++ {
			sections[i] = align(sections[i-1], sections[i], isClosed)
		}
	}

	n := len(sections[0])
	flat := lo.Flatten(sections)
	w := newWelder(b.k.cfg.Tolerance)
	idx := lo.Map(flat, func(p v3.Vec, _ int) int { return w.index(p) })
	at := func(s, j int) int { return idx[s*n+j%n] }

	segs := n - 1
	if isClosed {
		segs = n
	}
	var loops [][]int
	for s := 0; s+1 < len(sections); s++ {
		for j := 0; j < segs; j++ {
			quad := []int{at(s, j), at(s, j+1), at(s+1, j+1), at(s+1, j)}
			loops = append(loops, b.ruled(w.points, quad)...)
		}
	}
	if len(loops) == 0 {
		return nil, fmt.Errorf("sdfx: loft: sections produce no surface")
	}

	a := newAssembler(b.k, w.points)
	if !b.solid {
		sh, err := a.shell(loops)
		if err != nil {
			return nil, fmt.Errorf("sdfx: loft: %w", err)
		}
		kernel.Logger().Debug("sdfx: loft built", "handle", sh.String(), "faces", len(loops))
		return sh, nil
	}

	last := len(sections) - 1
	bottom := make([]int, n)
	top := make([]int, n)
	for j := 0; j < n; j++ {
		bottom[n-1-j] = at(0, j)
		top[j] = at(last, j)
	}
	for _, section := range [][]int{bottom, top} {
		pts := loopPoints(w.points, [][]int{section})[0]
		nrm := newell(pts)
		if nrm.Length() <= b.k.cfg.Tolerance || !planar(pts, nrm.Normalize(), b.k.cfg.Tolerance) {
			return nil, fmt.Errorf("sdfx: loft: end section is not a planar loop")
		}
	}
	loops = append(loops, bottom, top)
	if signedVolume(loopPoints(w.points, loops)) < 0 {
		for _, l := range loops {
			reverse(l)
		}
	}
	sh, err := a.shell(loops)
	if err != nil {
		return nil, fmt.Errorf("sdfx: loft: %w", err)
	}
	return b.k.solidOf(sh), nil
}

// ruled returns the faces spanning one quad of a ruled band: the quad
// itself when planar, two triangles otherwise. Corners collapsed by welding
// are dropped.
func (b *loftBuilder) ruled(pts []v3.Vec, quad []int) [][]int {
	l := make([]int, 0, 4)
	for i, q := range quad {
		if i > 0 && l[len(l)-1] == q {
			continue
		}
		l = append(l, q)
	}
	if len(l) > 1 && l[0] == l[len(l)-1] {
		l = l[:len(l)-1]
	}
	tol := b.k.cfg.Tolerance
	nonZero := func(loop []int) bool {
		return newell(loopPoints(pts, [][]int{loop})[0]).Length() > tol*tol
	}
	switch len(l) {
	case 3:
		if nonZero(l) {
			return [][]int{l}
		}
		return nil
	case 4:
		poly := loopPoints(pts, [][]int{l})[0]
		nrm := newell(poly)
		if nrm.Length() > tol*tol && planar(poly, nrm.Normalize(), tol) {
			return [][]int{l}
		}
		return lo.Filter([][]int{{l[0], l[1], l[2]}, {l[0], l[2], l[3]}}, func(t []int, _ int) bool {
			return nonZero(t)
		})
	default:
		return nil
	}
}

// align returns cur re-ordered to best match prev point for point. Closed
// sections may start at any vertex and run either way; open sections may
// only be reversed.
func align(prev, cur []v3.Vec, isClosed bool) []v3.Vec {
	n := len(cur)
	cost := func(at func(j int) v3.Vec) float64 {
		var c float64
		for j := 0; j < n; j++ {
			d := prev[j].Sub(at(j)).Length()
			c += d * d
		}
		return c
	}
	best := cur
	bestCost := math.Inf(1)
	try := func(at func(j int) v3.Vec) {
		if c := cost(at); c < bestCost-1e-12 {
			bestCost = c
			cand := make([]v3.Vec, n)
			for j := range cand {
				cand[j] = at(j)
			}
			best = cand
		}
	}
	if !isClosed {
		try(func(j int) v3.Vec { return cur[j] })
		try(func(j int) v3.Vec { return cur[n-1-j] })
		return best
	}
	for shift := 0; shift < n; shift++ {
		s := shift
		try(func(j int) v3.Vec { return cur[(s+j)%n] })
		try(func(j int) v3.Vec { return cur[((s-j)%n+n)%n] })
	}
	return best
}

// ---------------------------------------------------------------------------
// Boolean make-volume
// ---------------------------------------------------------------------------

type volumeBuilder struct {
	k    *SdfxKernel
	args []kernel.Handle
	done bool
}

// NewMakerVolume returns a make-volume builder.
func (k *SdfxKernel) NewMakerVolume() kernel.VolumeBuilder {
	return &volumeBuilder{k: k}
}

func (b *volumeBuilder) SetArguments(shapes []kernel.Handle) {
	b.args = append([]kernel.Handle(nil), shapes...)
}

// Build sews the faces of all arguments. Faces bounded by the same
// vertices count once, whichever way they are wound. A single closed,
// orientable region becomes a Solid, several become a Compound of solids.
// Anything else is returned as a Compound of the sewn faces.
func (b *volumeBuilder) Build() (kernel.Handle, error) {
	if b.done {
		return nil, kernel.ErrBuilderConsumed
	}
	b.done = true
	polys, err := gatherFaces(b.k, b.args)
	if err != nil {
		return nil, fmt.Errorf("sdfx: make volume: %w", err)
	}
	if len(polys) == 0 {
		return nil, fmt.Errorf("sdfx: make volume: arguments contain no faces")
	}

	w := newWelder(b.k.cfg.Tolerance)
	loops := lo.UniqBy(w.loops(polys), loopKey)
	components, consistent := orient(loops)
	a := newAssembler(b.k, w.points)

	var solids []*node
	if consistent {
		for _, comp := range components {
			cl := lo.Map(comp, func(f int, _ int) []int { return loops[f] })
			if !isClosed(cl) {
				solids = nil
				break
			}
			vol := signedVolume(loopPoints(w.points, cl))
			if math.Abs(vol) <= b.k.cfg.Tolerance {
				solids = nil
				break
			}
			if vol < 0 {
				for _, l := range cl {
					reverse(l)
				}
			}
			sh, err := a.shell(cl)
			if err != nil {
				return nil, fmt.Errorf("sdfx: make volume: %w", err)
			}
			solids = append(solids, b.k.solidOf(sh))
		}
	}

	switch {
	case len(solids) == 1:
		kernel.Logger().Debug("sdfx: make volume", "result", solids[0].String())
		return solids[0], nil
	case len(solids) > 1:
		c := b.k.newNode(kernel.KindCompound)
		c.children = solids
		kernel.Logger().Debug("sdfx: make volume", "result", c.String(), "solids", len(solids))
		return c, nil
	}

	// No enclosed region: hand back the sewn faces.
	c := b.k.newNode(kernel.KindCompound)
	for i, l := range loops {
		f, err := a.face(l)
		if err != nil {
			return nil, fmt.Errorf("sdfx: make volume: face %d: %w", i, err)
		}
		c.children = append(c.children, f)
	}
	kernel.Logger().Debug("sdfx: make volume found no closed region", "result", c.String(), "faces", len(loops))
	return c, nil
}

// loopKey identifies a loop by its vertex cycle, independent of the
// starting vertex and the winding.
func loopKey(l []int) string {
	start := 0
	for i, v := range l {
		if v < l[start] {
			start = i
		}
	}
	n := len(l)
	fwd := make([]int, n)
	rev := make([]int, n)
	for i := range l {
		fwd[i] = l[(start+i)%n]
		rev[i] = l[(start-i+n)%n]
	}
	if slices.Compare(rev, fwd) < 0 {
		fwd = rev
	}
	return fmt.Sprint(fwd)
}

// gatherFaces returns the boundary loops of every face below the handles.
func gatherFaces(k *SdfxKernel, hs []kernel.Handle) ([][]v3.Vec, error) {
	var polys [][]v3.Vec
	for i, h := range hs {
		n, err := k.unwrap(h)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		for _, f := range collect(n, kernel.KindFace) {
			polys = append(polys, facePoints(f))
		}
	}
	return polys, nil
}

// ---------------------------------------------------------------------------
// Sewing
// ---------------------------------------------------------------------------

type sewingBuilder struct {
	k     *SdfxKernel
	tol   float64
	faces []kernel.Handle
	done  bool
}

// NewSewing returns a builder joining faces whose boundaries coincide
// within tolerance. A non-positive tolerance uses the kernel default.
func (k *SdfxKernel) NewSewing(tolerance float64) kernel.SewingBuilder {
	if tolerance <= 0 {
		tolerance = k.cfg.Tolerance
	}
	return &sewingBuilder{k: k, tol: tolerance}
}

func (b *sewingBuilder) Add(face kernel.Handle) {
	b.faces = append(b.faces, face)
}

func (b *sewingBuilder) Build() (kernel.Handle, error) {
	if b.done {
		return nil, kernel.ErrBuilderConsumed
	}
	b.done = true
	polys, err := gatherFaces(b.k, b.faces)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sewing: %w", err)
	}
	w := newWelder(b.tol)
	loops := w.loops(polys)
	if len(loops) == 0 {
		return nil, fmt.Errorf("sdfx: sewing: no faces to sew")
	}
	// Inconsistent orientation (a Moebius band) still sews into a shell.
	orient(loops)
	sh, err := newAssembler(b.k, w.points).shell(loops)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sewing: %w", err)
	}
	return sh, nil
}
