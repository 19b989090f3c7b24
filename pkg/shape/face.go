package shape

import "runtime"

// Face is a bounded piece of surface.
type Face struct {
	base
}

// NewFace returns the planar face bounded by a closed wire.
func NewFace(w *Wire) (*Face, error) {
	h, err := w.o.k.Face(w.o.handle())
	runtime.KeepAlive(w.o)
	if err != nil {
		return nil, kernelError("face", err)
	}
	return &Face{base{own(w.o.k, h)}}, nil
}

// Clone returns an independent deep copy.
func (f *Face) Clone() *Face { return &Face{base{f.o.copy()}} }

// Area returns the surface area.
func (f *Face) Area() float64 {
	props := f.o.k.SurfaceProperties(f.o.handle())
	runtime.KeepAlive(f.o)
	return props.Mass
}
