package shape

import (
	"fmt"
	"runtime"

	"github.com/chazu/cascade/pkg/kernel"
)

// Shell is a set of faces connected along their edges.
type Shell struct {
	base
}

// Loft builds a ruled surface through the wires in the given order. The
// order sets the sweep direction. Sections are checked for compatibility
// to avoid twisting. At least two wires are required.
func Loft(k kernel.Kernel, wires []*Wire) (*Shell, error) {
	if len(wires) < 2 {
		return nil, kernelError("loft", fmt.Errorf("%w, got %d", ErrTooFewSections, len(wires)))
	}
	b := k.NewLoft(false)
	for _, h := range handles(wires) {
		b.AddWire(h)
	}
	b.CheckCompatibility(true)
	h, err := b.Build()
	keepAlive(wires)
	if err != nil {
		return nil, kernelError("loft", err)
	}
	if kind := h.Kind(); kind != kernel.KindShell {
		k.Release(h)
		return nil, kernelError("loft", &KindMismatchError{Expected: kernel.KindShell, Actual: kind})
	}
	return &Shell{base{own(k, h)}}, nil
}

// Sew joins faces whose boundaries coincide within tolerance into a
// shell. A tolerance <= 0 uses the kernel default.
func Sew(k kernel.Kernel, tolerance float64, faces ...*Face) (*Shell, error) {
	b := k.NewSewing(tolerance)
	for _, h := range handles(faces) {
		b.Add(h)
	}
	h, err := b.Build()
	keepAlive(faces)
	if err != nil {
		return nil, kernelError("sew", err)
	}
	if kind := h.Kind(); kind != kernel.KindShell {
		k.Release(h)
		return nil, kernelError("sew", &KindMismatchError{Expected: kernel.KindShell, Actual: kind})
	}
	return &Shell{base{own(k, h)}}, nil
}

// Clone returns an independent deep copy.
func (s *Shell) Clone() *Shell { return &Shell{base{s.o.copy()}} }

// Volume closes the shell with face and returns the solid they bound.
// When the kernel result is not a solid, for example because the faces
// leave a gap, the error wraps a *KindMismatchError.
func (s *Shell) Volume(face *Face) (*Solid, error) {
	b := s.o.k.NewMakerVolume()
	b.SetArguments([]kernel.Handle{s.o.handle(), face.o.handle()})
	h, err := b.Build()
	runtime.KeepAlive(s.o)
	runtime.KeepAlive(face.o)
	if err != nil {
		return nil, kernelError("volume", err)
	}
	result := &Shape{base{own(s.o.k, h)}}
	defer result.Release()
	solid, err := SolidFromShape(result)
	if err != nil {
		return nil, fmt.Errorf("shape: volume: %w", err)
	}
	return solid, nil
}

// CenterOfMass returns the centroid of the shell surface. Degenerate
// shells give whatever the kernel reports.
func (s *Shell) CenterOfMass() Point3 { return centerOfMass(s.o) }
