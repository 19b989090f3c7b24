package shape

import (
	"fmt"
	"runtime"

	"github.com/chazu/cascade/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Point3 is a point or vector in model space.
type Point3 = v3.Vec

// owned is the single owner of one kernel handle.
type owned struct {
	k kernel.Kernel
	h kernel.Handle
}

// own takes ownership of h. A finalizer releases the handle if the owner
// is collected without Release.
func own(k kernel.Kernel, h kernel.Handle) *owned {
	o := &owned{k: k, h: h}
	runtime.SetFinalizer(o, (*owned).release)
	return o
}

func (o *owned) handle() kernel.Handle {
	if o.h == nil {
		panic("shape: use of released shape")
	}
	return o.h
}

func (o *owned) release() {
	if o.h == nil {
		return
	}
	o.k.Release(o.h)
	o.h = nil
	runtime.SetFinalizer(o, nil)
}

// replace takes ownership of h and releases the previous handle.
func (o *owned) replace(h kernel.Handle) {
	old := o.handle()
	o.h = h
	o.k.Release(old)
}

// copy returns a new owner of a deep copy. Copying a live handle only
// fails when the kernel is broken, so that is treated as a panic.
func (o *owned) copy() *owned {
	h, err := o.k.Copy(o.handle())
	runtime.KeepAlive(o)
	if err != nil {
		panic(fmt.Sprintf("shape: copy of live %s failed: %v", o.h.Kind(), err))
	}
	return own(o.k, h)
}

// explore returns owned copies of the sub-entities of the given kind.
func (o *owned) explore(kind kernel.Kind) []*owned {
	out := o.adopt(o.k.Explore(o.handle(), kind))
	runtime.KeepAlive(o)
	return out
}

// children returns owned copies of the direct sub-entities.
func (o *owned) children() []*owned {
	out := o.adopt(o.k.Children(o.handle()))
	runtime.KeepAlive(o)
	return out
}

// adopt copies borrowed handles into new owners.
func (o *owned) adopt(hs []kernel.Handle) []*owned {
	return lo.Map(hs, func(h kernel.Handle, _ int) *owned {
		c, err := o.k.Copy(h)
		if err != nil {
			panic(fmt.Sprintf("shape: copy of %s failed: %v", h.Kind(), err))
		}
		return own(o.k, c)
	})
}

func (o *owned) count(kind kernel.Kind) int {
	n := len(o.k.Explore(o.handle(), kind))
	runtime.KeepAlive(o)
	return n
}

// base carries the behaviour shared by Shape and the typed wrappers.
type base struct {
	o *owned
}

func (b base) owner() *owned { return b.o }

// Kind returns the runtime kind tag of the owned handle.
func (b base) Kind() kernel.Kind { return b.o.handle().Kind() }

// Kernel returns the kernel that owns the geometry.
func (b base) Kernel() kernel.Kernel { return b.o.k }

// Shape returns an owned deep copy as a generic Shape. It never fails.
func (b base) Shape() *Shape { return &Shape{base{b.o.copy()}} }

// Release frees the kernel handle. Releasing twice is a no-op; any other
// use after Release panics.
func (b base) Release() { b.o.release() }

// BoundingBox returns the axis-aligned bounding box.
func (b base) BoundingBox() (min, max Point3) {
	lo3, hi3 := b.o.handle().BoundingBox()
	runtime.KeepAlive(b.o)
	return Point3{X: lo3[0], Y: lo3[1], Z: lo3[2]}, Point3{X: hi3[0], Y: hi3[1], Z: hi3[2]}
}

// Vertices returns owned copies of the distinct vertices, in kernel
// exploration order.
func (b base) Vertices() []*Vertex {
	return lo.Map(b.o.explore(kernel.KindVertex), func(o *owned, _ int) *Vertex { return &Vertex{base{o}} })
}

// Edges returns owned copies of the distinct edges, in kernel exploration
// order. The order carries no geometric meaning.
func (b base) Edges() []*Edge {
	return lo.Map(b.o.explore(kernel.KindEdge), func(o *owned, _ int) *Edge { return &Edge{base{o}} })
}

// Faces returns owned copies of the distinct faces, in kernel exploration order.
func (b base) Faces() []*Face {
	return lo.Map(b.o.explore(kernel.KindFace), func(o *owned, _ int) *Face { return &Face{base{o}} })
}

// VertexCount returns the number of distinct vertices.
func (b base) VertexCount() int { return b.o.count(kernel.KindVertex) }

// EdgeCount returns the number of distinct edges.
func (b base) EdgeCount() int { return b.o.count(kernel.KindEdge) }

// FaceCount returns the number of distinct faces.
func (b base) FaceCount() int { return b.o.count(kernel.KindFace) }
