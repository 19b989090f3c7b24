//go:build occt

// Package occt implements kernel.Kernel on the OpenCascade Technology
// (OCCT) modelling libraries through a small C shim. Shapes are exact
// B-rep geometry: lofts and fillets produce curved surfaces, and
// make-volume intersects its arguments.
//
// This package requires OCCT 7.6 or later to be installed.
// Build with: go build -tags=occt
package occt

/*
#cgo CXXFLAGS: -std=c++17 -I/usr/include/opencascade -I/usr/local/include/opencascade
#cgo LDFLAGS: -L/usr/local/lib -lTKernel -lTKMath -lTKG3d -lTKBRep -lTKGeomBase -lTKGeomAlgo -lTKTopAlgo -lTKPrim -lTKShHealing -lTKBO -lTKBool -lTKFillet -lTKOffset -lTKMesh

#include <stdlib.h>
#include "occt_shim.h"
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/chazu/cascade/pkg/kernel"
	"github.com/chazu/cascade/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*OcctKernel)(nil)
var _ kernel.Handle = (*shape)(nil)

// defaultSewingTolerance matches the BRepBuilderAPI_Sewing default.
const defaultSewingTolerance = 1e-6

// shape wraps a C occt_shape pointer and implements kernel.Handle.
type shape struct {
	ptr  *C.occt_shape
	kind kernel.Kind
	k    *OcctKernel
}

// newShape wraps ptr with a Go-side finalizer for automatic memory
// management. The kind is read once; OCCT shapes never change type.
func (k *OcctKernel) newShape(ptr *C.occt_shape) *shape {
	s := &shape{ptr: ptr, kind: kernel.Kind(C.occt_kind(ptr)), k: k}
	runtime.SetFinalizer(s, func(s *shape) {
		if s.ptr != nil {
			C.occt_free(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

func (s *shape) Kind() kernel.Kind { return s.kind }

// BoundingBox returns the axis-aligned bounding box, or zeros for a
// released or empty shape.
func (s *shape) BoundingBox() (min, max [3]float64) {
	if s.ptr == nil {
		return min, max
	}
	var out [6]C.double
	C.occt_bbox(s.ptr, &out[0])
	runtime.KeepAlive(s)
	for i := 0; i < 3; i++ {
		min[i] = float64(out[i])
		max[i] = float64(out[i+3])
	}
	return min, max
}

// OcctKernel implements kernel.Kernel using OCCT.
type OcctKernel struct{}

// New creates a new OcctKernel.
func New() (kernel.Kernel, error) {
	return &OcctKernel{}, nil
}

// unwrap extracts the shape behind a handle, rejecting foreign and released handles.
func (k *OcctKernel) unwrap(h kernel.Handle) (*shape, error) {
	s, ok := h.(*shape)
	if !ok || s == nil || s.k != k {
		return nil, kernel.ErrForeignHandle
	}
	if s.ptr == nil {
		return nil, kernel.ErrReleased
	}
	return s, nil
}

// unwrapKind is unwrap plus a kind check.
func (k *OcctKernel) unwrapKind(h kernel.Handle, want kernel.Kind) (*shape, error) {
	s, err := k.unwrap(h)
	if err != nil {
		return nil, err
	}
	if s.kind != want {
		return nil, fmt.Errorf("argument is a %s, not a %s", s.kind, want)
	}
	return s, nil
}

// pointers unwraps handles into a C array of shape pointers. The caller
// must keep the returned shapes alive until the C call returns.
func (k *OcctKernel) pointers(hs []kernel.Handle, want kernel.Kind) ([]*C.occt_shape, []*shape, error) {
	ptrs := make([]*C.occt_shape, len(hs))
	shapes := make([]*shape, len(hs))
	for i, h := range hs {
		var s *shape
		var err error
		if want == kernel.KindShape {
			s, err = k.unwrap(h)
		} else {
			s, err = k.unwrapKind(h, want)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("argument %d: %w", i, err)
		}
		ptrs[i] = s.ptr
		shapes[i] = s
	}
	return ptrs, shapes, nil
}

// first returns a pointer to the first element, or nil for an empty slice.
func first(ptrs []*C.occt_shape) **C.occt_shape {
	if len(ptrs) == 0 {
		return nil
	}
	return &ptrs[0]
}

// result turns a shim return value into a handle or an error carrying the
// shim's message.
func (k *OcctKernel) result(op string, ptr *C.occt_shape, msg *C.char) (kernel.Handle, error) {
	if ptr == nil {
		return nil, shimError(op, msg)
	}
	return k.newShape(ptr), nil
}

func shimError(op string, msg *C.char) error {
	if msg == nil {
		return fmt.Errorf("occt: %s: unknown failure", op)
	}
	defer C.free(unsafe.Pointer(msg))
	return fmt.Errorf("occt: %s: %s", op, C.GoString(msg))
}

// adopt wraps a malloc'd array of n shim pointers and frees the array.
func (k *OcctKernel) adopt(arr **C.occt_shape, n C.int) []kernel.Handle {
	if arr == nil || n == 0 {
		return nil
	}
	defer C.free(unsafe.Pointer(arr))
	out := make([]kernel.Handle, int(n))
	for i, p := range unsafe.Slice(arr, int(n)) {
		out[i] = k.newShape(p)
	}
	return out
}

// Box creates an axis-aligned box with its minimum corner at origin.
func (k *OcctKernel) Box(origin v3.Vec, dx, dy, dz float64) (kernel.Handle, error) {
	if dx <= 0 || dy <= 0 || dz <= 0 {
		return nil, fmt.Errorf("occt: box: extents must be positive, got %g x %g x %g", dx, dy, dz)
	}
	var msg *C.char
	ptr := C.occt_box(C.double(origin.X), C.double(origin.Y), C.double(origin.Z),
		C.double(dx), C.double(dy), C.double(dz), &msg)
	return k.result("box", ptr, msg)
}

// Vertex creates a vertex at p.
func (k *OcctKernel) Vertex(p v3.Vec) kernel.Handle {
	return k.newShape(C.occt_vertex(C.double(p.X), C.double(p.Y), C.double(p.Z)))
}

// Edge creates a straight edge from a to b.
func (k *OcctKernel) Edge(a, b v3.Vec) (kernel.Handle, error) {
	var msg *C.char
	ptr := C.occt_edge(C.double(a.X), C.double(a.Y), C.double(a.Z),
		C.double(b.X), C.double(b.Y), C.double(b.Z), &msg)
	return k.result("edge", ptr, msg)
}

// Wire chains connected edges into a wire.
func (k *OcctKernel) Wire(edges []kernel.Handle) (kernel.Handle, error) {
	if len(edges) == 0 {
		return nil, fmt.Errorf("occt: wire: no edges")
	}
	ptrs, shapes, err := k.pointers(edges, kernel.KindEdge)
	if err != nil {
		return nil, fmt.Errorf("occt: wire: %w", err)
	}
	var msg *C.char
	ptr := C.occt_wire(first(ptrs), C.int(len(ptrs)), &msg)
	runtime.KeepAlive(shapes)
	return k.result("wire", ptr, msg)
}

// Face creates a planar face bounded by a closed wire.
func (k *OcctKernel) Face(wire kernel.Handle) (kernel.Handle, error) {
	w, err := k.unwrapKind(wire, kernel.KindWire)
	if err != nil {
		return nil, fmt.Errorf("occt: face: %w", err)
	}
	var msg *C.char
	ptr := C.occt_face(w.ptr, &msg)
	runtime.KeepAlive(w)
	return k.result("face", ptr, msg)
}

// Explore returns the distinct sub-shapes of h with the given kind, in
// TopExp::MapShapes order.
func (k *OcctKernel) Explore(h kernel.Handle, kind kernel.Kind) []kernel.Handle {
	s, err := k.unwrap(h)
	if err != nil || kind < kernel.KindCompound || kind >= kernel.KindShape {
		return nil
	}
	var n C.int
	arr := C.occt_explore(s.ptr, C.int(kind), &n)
	runtime.KeepAlive(s)
	return k.adopt(arr, n)
}

// Children returns the direct sub-shapes of h.
func (k *OcctKernel) Children(h kernel.Handle) []kernel.Handle {
	s, err := k.unwrap(h)
	if err != nil {
		return nil
	}
	var n C.int
	arr := C.occt_children(s.ptr, &n)
	runtime.KeepAlive(s)
	return k.adopt(arr, n)
}

// Copy returns a deep copy of h with its own geometry.
func (k *OcctKernel) Copy(h kernel.Handle) (kernel.Handle, error) {
	s, err := k.unwrap(h)
	if err != nil {
		return nil, fmt.Errorf("occt: copy: %w", err)
	}
	var msg *C.char
	ptr := C.occt_copy(s.ptr, &msg)
	runtime.KeepAlive(s)
	return k.result("copy", ptr, msg)
}

// Release frees the shim wrapper behind h. Geometry shared with other
// live shapes stays alive.
func (k *OcctKernel) Release(h kernel.Handle) {
	s, err := k.unwrap(h)
	if err != nil {
		return
	}
	C.occt_free(s.ptr)
	s.ptr = nil
	runtime.SetFinalizer(s, nil)
	kernel.Logger().Debug("occt: release", "kind", s.kind.String())
}

// VertexPoint returns the position of a vertex.
func (k *OcctKernel) VertexPoint(h kernel.Handle) (v3.Vec, error) {
	s, err := k.unwrapKind(h, kernel.KindVertex)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("occt: vertex point: %w", err)
	}
	var out [3]C.double
	var msg *C.char
	ok := C.occt_vertex_point(s.ptr, &out[0], &msg)
	runtime.KeepAlive(s)
	if ok == 0 {
		return v3.Vec{}, shimError("vertex point", msg)
	}
	return v3.Vec{X: float64(out[0]), Y: float64(out[1]), Z: float64(out[2])}, nil
}

// Translate returns a copy of h moved by d.
func (k *OcctKernel) Translate(h kernel.Handle, d v3.Vec) (kernel.Handle, error) {
	s, err := k.unwrap(h)
	if err != nil {
		return nil, fmt.Errorf("occt: translate: %w", err)
	}
	var msg *C.char
	ptr := C.occt_translate(s.ptr, C.double(d.X), C.double(d.Y), C.double(d.Z), &msg)
	runtime.KeepAlive(s)
	return k.result("translate", ptr, msg)
}

// SurfaceProperties integrates over the faces of h. Invalid handles and
// shapes without area yield the zero value.
func (k *OcctKernel) SurfaceProperties(h kernel.Handle) kernel.MassProperties {
	s, err := k.unwrap(h)
	if err != nil {
		return kernel.MassProperties{}
	}
	var c [3]C.double
	mass := float64(C.occt_surface_properties(s.ptr, &c[0]))
	runtime.KeepAlive(s)
	return kernel.MassProperties{
		Mass:   mass,
		Center: v3.Vec{X: float64(c[0]), Y: float64(c[1]), Z: float64(c[2])},
	}
}

// Clean unifies faces and edges lying on the same surface or curve.
func (k *OcctKernel) Clean(h kernel.Handle) (kernel.Handle, error) {
	s, err := k.unwrap(h)
	if err != nil {
		return nil, fmt.Errorf("occt: clean: %w", err)
	}
	var msg *C.char
	ptr := C.occt_clean(s.ptr, &msg)
	runtime.KeepAlive(s)
	return k.result("clean", ptr, msg)
}

// Triangulate meshes every face of h with the given linear deflection.
func (k *OcctKernel) Triangulate(h kernel.Handle, deflection float64) (*kernel.Mesh, error) {
	if deflection <= 0 {
		return nil, fmt.Errorf("occt: triangulate: deflection must be positive, got %g", deflection)
	}
	s, err := k.unwrap(h)
	if err != nil {
		return nil, fmt.Errorf("occt: triangulate: %w", err)
	}
	var n C.int
	var msg *C.char
	data := C.occt_triangulate(s.ptr, C.double(deflection), &n, &msg)
	runtime.KeepAlive(s)
	if data == nil {
		return nil, shimError("triangulate", msg)
	}
	defer C.free(unsafe.Pointer(data))

	corners := unsafe.Slice((*float64)(unsafe.Pointer(data)), int(n)*9)
	tris := make([][3]v3.Vec, int(n))
	for i := range tris {
		for j := 0; j < 3; j++ {
			c := corners[i*9+j*3:]
			tris[i][j] = v3.Vec{X: c[0], Y: c[1], Z: c[2]}
		}
	}
	return tessellate.FromTriangles(tris, s.kind.String()), nil
}

// WriteSTL writes m as a binary STL file.
func (k *OcctKernel) WriteSTL(m *kernel.Mesh, path string) error {
	if err := tessellate.WriteSTL(m, path); err != nil {
		return fmt.Errorf("occt: %w", err)
	}
	return nil
}
