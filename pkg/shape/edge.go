package shape

import (
	"runtime"

	"github.com/chazu/cascade/pkg/kernel"
)

// Edge is a straight segment between two vertices.
type Edge struct {
	base
}

// NewEdge returns the edge from a to b.
func NewEdge(k kernel.Kernel, a, b Point3) (*Edge, error) {
	h, err := k.Edge(a, b)
	if err != nil {
		return nil, kernelError("edge", err)
	}
	return &Edge{base{own(k, h)}}, nil
}

// Clone returns an independent deep copy.
func (e *Edge) Clone() *Edge { return &Edge{base{e.o.copy()}} }

// Length returns the distance between the end vertices.
func (e *Edge) Length() float64 {
	vs := e.Vertices()
	defer func() {
		for _, v := range vs {
			v.Release()
		}
	}()
	if len(vs) < 2 {
		return 0
	}
	return vs[0].Dist(vs[1])
}

// handles returns the kernel handles of shapes. The caller must keep
// shapes alive until the handles are no longer used.
func handles[S Shaper](shapes []S) []kernel.Handle {
	out := make([]kernel.Handle, len(shapes))
	for i, s := range shapes {
		out[i] = s.owner().handle()
	}
	return out
}

// keepAlive keeps the owners of shapes reachable until this call.
func keepAlive[S Shaper](shapes []S) {
	for _, s := range shapes {
		runtime.KeepAlive(s.owner())
	}
}
