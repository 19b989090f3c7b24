package shape

import (
	"fmt"

	"github.com/chazu/cascade/pkg/kernel"
)

// Wire is a chain of connected edges, open or closed.
type Wire struct {
	base
}

// NewWire chains edges into a wire. Consecutive edges must share an end
// point; the wire is closed when the chain returns to its start.
func NewWire(k kernel.Kernel, edges ...*Edge) (*Wire, error) {
	h, err := k.Wire(handles(edges))
	keepAlive(edges)
	if err != nil {
		return nil, kernelError("wire", err)
	}
	return &Wire{base{own(k, h)}}, nil
}

// NewPolygon returns the closed wire through points, in order.
func NewPolygon(k kernel.Kernel, points ...Point3) (*Wire, error) {
	if len(points) < 3 {
		return nil, kernelError("polygon", fmt.Errorf("need at least 3 points, got %d", len(points)))
	}
	edges := make([]*Edge, 0, len(points))
	defer func() {
		for _, e := range edges {
			e.Release()
		}
	}()
	for i, p := range points {
		e, err := NewEdge(k, p, points[(i+1)%len(points)])
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return NewWire(k, edges...)
}

// Clone returns an independent deep copy.
func (w *Wire) Clone() *Wire { return &Wire{base{w.o.copy()}} }
