package shape

import (
	"fmt"

	"github.com/chazu/cascade/pkg/kernel"
)

// Shaper is implemented by Shape and every typed wrapper. Shape widens
// the value to an owned generic copy.
type Shaper interface {
	Kind() kernel.Kind
	Shape() *Shape
	owner() *owned
}

// Typed is the closed set of typed wrappers: *Vertex, *Edge, *Wire,
// *Face, *Shell, *Solid and *Compound.
type Typed interface {
	Shaper
	typed()
}

func (*Vertex) typed()   {}
func (*Edge) typed()     {}
func (*Wire) typed()     {}
func (*Face) typed()     {}
func (*Shell) typed()    {}
func (*Solid) typed()    {}
func (*Compound) typed() {}

var (
	_ Shaper = (*Shape)(nil)
	_ Typed  = (*Vertex)(nil)
	_ Typed  = (*Edge)(nil)
	_ Typed  = (*Wire)(nil)
	_ Typed  = (*Face)(nil)
	_ Typed  = (*Shell)(nil)
	_ Typed  = (*Solid)(nil)
	_ Typed  = (*Compound)(nil)
)

// narrow checks the kind tag of s and returns an owner of a deep copy.
func narrow(s *Shape, want kernel.Kind) (*owned, error) {
	if got := s.Kind(); got != want {
		return nil, &KindMismatchError{Expected: want, Actual: got}
	}
	return s.o.copy(), nil
}

// VertexFromShape narrows s to a Vertex holding a copy of its geometry.
func VertexFromShape(s *Shape) (*Vertex, error) {
	o, err := narrow(s, kernel.KindVertex)
	if err != nil {
		return nil, err
	}
	return &Vertex{base{o}}, nil
}

// EdgeFromShape narrows s to an Edge holding a copy of its geometry.
func EdgeFromShape(s *Shape) (*Edge, error) {
	o, err := narrow(s, kernel.KindEdge)
	if err != nil {
		return nil, err
	}
	return &Edge{base{o}}, nil
}

// WireFromShape narrows s to a Wire holding a copy of its geometry.
func WireFromShape(s *Shape) (*Wire, error) {
	o, err := narrow(s, kernel.KindWire)
	if err != nil {
		return nil, err
	}
	return &Wire{base{o}}, nil
}

// FaceFromShape narrows s to a Face holding a copy of its geometry.
func FaceFromShape(s *Shape) (*Face, error) {
	o, err := narrow(s, kernel.KindFace)
	if err != nil {
		return nil, err
	}
	return &Face{base{o}}, nil
}

// ShellFromShape narrows s to a Shell holding a copy of its geometry.
func ShellFromShape(s *Shape) (*Shell, error) {
	o, err := narrow(s, kernel.KindShell)
	if err != nil {
		return nil, err
	}
	return &Shell{base{o}}, nil
}

// SolidFromShape narrows s to a Solid holding a copy of its geometry.
func SolidFromShape(s *Shape) (*Solid, error) {
	o, err := narrow(s, kernel.KindSolid)
	if err != nil {
		return nil, err
	}
	return &Solid{base{o}}, nil
}

// CompoundFromShape narrows s to a Compound holding a copy of its geometry.
func CompoundFromShape(s *Shape) (*Compound, error) {
	o, err := narrow(s, kernel.KindCompound)
	if err != nil {
		return nil, err
	}
	return &Compound{base{o}}, nil
}

// Narrow returns the typed wrapper matching the kind tag of s, holding a
// copy of its geometry. Kinds without a wrapper (compsolid, generic) are
// an error.
func Narrow(s *Shape) (Typed, error) {
	switch k := s.Kind(); k {
	case kernel.KindVertex:
		return typed[*Vertex](VertexFromShape(s))
	case kernel.KindEdge:
		return typed[*Edge](EdgeFromShape(s))
	case kernel.KindWire:
		return typed[*Wire](WireFromShape(s))
	case kernel.KindFace:
		return typed[*Face](FaceFromShape(s))
	case kernel.KindShell:
		return typed[*Shell](ShellFromShape(s))
	case kernel.KindSolid:
		return typed[*Solid](SolidFromShape(s))
	case kernel.KindCompound:
		return typed[*Compound](CompoundFromShape(s))
	default:
		return nil, fmt.Errorf("shape: narrow: no typed wrapper for %s", k)
	}
}

// typed converts a wrapper result to the Typed interface without turning
// a nil pointer into a non-nil interface.
func typed[T Typed](t T, err error) (Typed, error) {
	if err != nil {
		return nil, err
	}
	return t, nil
}
