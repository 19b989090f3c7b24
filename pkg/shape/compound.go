package shape

import (
	"runtime"

	"github.com/chazu/cascade/pkg/kernel"
	"github.com/samber/lo"
)

// Compound groups shapes of any kind. Children keep their own kinds and
// the order they were added in.
type Compound struct {
	base
}

// NewCompound returns a compound holding copies of shapes, in order.
func NewCompound(k kernel.Kernel, shapes ...Shaper) (*Compound, error) {
	b := k.NewCompound()
	for _, h := range handles(shapes) {
		b.Add(h)
	}
	h, err := b.Build()
	keepAlive(shapes)
	if err != nil {
		return nil, kernelError("compound", err)
	}
	return &Compound{base{own(k, h)}}, nil
}

// Clone returns an independent deep copy, children and order included.
func (c *Compound) Clone() *Compound { return &Compound{base{c.o.copy()}} }

// Clean widens the compound and returns the cleaned generic shape.
func (c *Compound) Clean() (*Shape, error) {
	s := c.Shape()
	defer s.Release()
	return s.Clean()
}

// CenterOfMass returns the centroid of the surfaces of all children.
func (c *Compound) CenterOfMass() Point3 { return centerOfMass(c.o) }

// Children returns owned copies of the direct children, in order.
func (c *Compound) Children() []*Shape {
	return lo.Map(c.o.children(), func(o *owned, _ int) *Shape { return &Shape{base{o}} })
}

// Len returns the number of direct children.
func (c *Compound) Len() int {
	n := len(c.o.k.Children(c.o.handle()))
	runtime.KeepAlive(c.o)
	return n
}
