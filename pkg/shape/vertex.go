package shape

import (
	"fmt"
	"runtime"

	"github.com/chazu/cascade/pkg/kernel"
)

// Vertex is a point in space. Its position never changes.
type Vertex struct {
	base
}

// NewVertex returns a vertex at p.
func NewVertex(k kernel.Kernel, p Point3) *Vertex {
	return &Vertex{base{own(k, k.Vertex(p))}}
}

// Clone returns an independent deep copy.
func (v *Vertex) Clone() *Vertex { return &Vertex{base{v.o.copy()}} }

// Point returns the position read back from the kernel.
func (v *Vertex) Point() Point3 {
	p, err := v.o.k.VertexPoint(v.o.handle())
	runtime.KeepAlive(v.o)
	if err != nil {
		// The handle is a live vertex by construction.
		panic(fmt.Sprintf("shape: vertex point: %v", err))
	}
	return p
}

// X returns the x coordinate of Point.
func (v *Vertex) X() float64 { return v.Point().X }

// Y returns the y coordinate of Point.
func (v *Vertex) Y() float64 { return v.Point().Y }

// Z returns the z coordinate of Point.
func (v *Vertex) Z() float64 { return v.Point().Z }

// Dist returns the Euclidean distance to other.
func (v *Vertex) Dist(other *Vertex) float64 {
	return v.Point().Sub(other.Point()).Length()
}
