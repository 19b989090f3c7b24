package shape

import (
	"runtime"

	"github.com/chazu/cascade/pkg/kernel"
)

// LinearDeflection is the chordal tolerance used when meshing for export.
const LinearDeflection = 0.001

// Shape owns a kernel handle of any kind.
type Shape struct {
	base
}

// MakeBox returns the unit box with its minimum corner at the origin.
func MakeBox(k kernel.Kernel) (*Shape, error) {
	return NewBox(k, Point3{}, Point3{X: 1, Y: 1, Z: 1})
}

// NewBox returns the axis-aligned box spanning min to max.
func NewBox(k kernel.Kernel, min, max Point3) (*Shape, error) {
	d := max.Sub(min)
	h, err := k.Box(min, d.X, d.Y, d.Z)
	if err != nil {
		return nil, kernelError("box", err)
	}
	return &Shape{base{own(k, h)}}, nil
}

// Clone returns an independent deep copy.
func (s *Shape) Clone() *Shape { return s.Shape() }

// Clean returns a simplified copy with same-domain faces and edges merged.
// The receiver is left untouched.
func (s *Shape) Clean() (*Shape, error) {
	h, err := s.o.k.Clean(s.o.handle())
	runtime.KeepAlive(s.o)
	if err != nil {
		return nil, kernelError("clean", err)
	}
	return &Shape{base{own(s.o.k, h)}}, nil
}

// Translated returns a copy moved by d.
func (s *Shape) Translated(d Point3) (*Shape, error) {
	h, err := s.o.k.Translate(s.o.handle(), d)
	runtime.KeepAlive(s.o)
	if err != nil {
		return nil, kernelError("translate", err)
	}
	return &Shape{base{own(s.o.k, h)}}, nil
}

// FilletEdges rounds every edge of the shape with the given radius and
// replaces the owned geometry with the result. Edges are handed to the
// kernel in its exploration order. A radius <= 0 is passed through and
// handled as the kernel sees fit. On error the shape is unchanged.
func (s *Shape) FilletEdges(radius float64) error {
	h := s.o.handle()
	b := s.o.k.NewFillet(h)
	edges := s.o.k.Explore(h, kernel.KindEdge)
	for _, e := range edges {
		b.AddEdge(radius, e)
	}
	out, err := b.Build()
	runtime.KeepAlive(s.o)
	if err != nil {
		return kernelError("fillet", err)
	}
	s.o.replace(out)
	kernel.Logger().Debug("shape: filleted", "edges", len(edges), "radius", radius, "kind", out.Kind())
	return nil
}

// Mesh triangulates the shape with LinearDeflection.
func (s *Shape) Mesh() (*kernel.Mesh, error) {
	m, err := s.o.k.Triangulate(s.o.handle(), LinearDeflection)
	runtime.KeepAlive(s.o)
	if err != nil {
		return nil, kernelError("triangulate", err)
	}
	return m, nil
}

// WriteSTL meshes the shape with LinearDeflection and writes it to path.
// Any failure is returned as an *ExportError.
func (s *Shape) WriteSTL(path string) error {
	m, err := s.o.k.Triangulate(s.o.handle(), LinearDeflection)
	if err == nil {
		err = s.o.k.WriteSTL(m, path)
	}
	runtime.KeepAlive(s.o)
	if err != nil {
		kernel.Logger().Info("shape: stl export failed", "path", path, "err", err)
		return &ExportError{Path: path, Err: err}
	}
	kernel.Logger().Info("shape: stl written", "path", path, "triangles", m.TriangleCount())
	return nil
}
