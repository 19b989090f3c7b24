// Package kernel defines the abstract boundary-representation kernel contract.
// Implementations (sdfx, occt) own the geometry behind opaque handles and
// expose primitive constructors, topology exploration and the single-use
// builders the shape package composes into higher-level operations.
package kernel

import (
	"errors"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Kind is the runtime topological tag of a handle.
type Kind int

const (
	KindCompound Kind = iota
	KindCompSolid
	KindSolid
	KindShell
	KindFace
	KindWire
	KindEdge
	KindVertex
	KindShape // generic, no specific topology
)

func (k Kind) String() string {
	switch k {
	case KindCompound:
		return "compound"
	case KindCompSolid:
		return "compsolid"
	case KindSolid:
		return "solid"
	case KindShell:
		return "shell"
	case KindFace:
		return "face"
	case KindWire:
		return "wire"
	case KindEdge:
		return "edge"
	case KindVertex:
		return "vertex"
	case KindShape:
		return "shape"
	default:
		return "unknown"
	}
}

var (
	// ErrBuilderConsumed is returned when Build is called twice on a builder.
	ErrBuilderConsumed = errors.New("kernel: builder already committed")
	// ErrReleased is returned when a released handle is passed to the kernel.
	ErrReleased = errors.New("kernel: handle released")
	// ErrForeignHandle is returned when a handle from another kernel is passed in.
	ErrForeignHandle = errors.New("kernel: handle belongs to a different kernel")
)

// Handle is an opaque reference to a kernel shape. Its Kind never changes
// after creation; operations that transform a shape return a new Handle.
type Handle interface {
	Kind() Kind
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// MassProperties holds the result of a surface integration.
type MassProperties struct {
	Mass   float64 // total surface area
	Center v3.Vec  // centroid; the origin when Mass is zero
}

// FilletBuilder accumulates (edge, radius) pairs against one base shape.
type FilletBuilder interface {
	AddEdge(radius float64, edge Handle)
	Build() (Handle, error)
}

// LoftBuilder accumulates ordered section wires for a through-sections loft.
type LoftBuilder interface {
	AddWire(wire Handle)
	CheckCompatibility(check bool)
	Build() (Handle, error)
}

// VolumeBuilder partitions the space bounded by its arguments into solids.
// The result kind is not known in advance.
type VolumeBuilder interface {
	SetArguments(shapes []Handle)
	Build() (Handle, error)
}

// CompoundBuilder collects children into a compound, in insertion order.
type CompoundBuilder interface {
	Add(child Handle)
	Build() (Handle, error)
}

// SewingBuilder joins faces with coincident boundaries into a shell.
type SewingBuilder interface {
	Add(face Handle)
	Build() (Handle, error)
}

// Kernel is the geometry kernel service contract.
// Handles returned by Explore and Children are borrowed from their parent and remain
// valid only while the parent is alive; every other returned Handle is owned
// by the caller and must eventually be passed to Release.
type Kernel interface {
	// Primitives
	Box(origin v3.Vec, dx, dy, dz float64) (Handle, error)
	Vertex(p v3.Vec) Handle
	Edge(a, b v3.Vec) (Handle, error)
	Wire(edges []Handle) (Handle, error)
	Face(wire Handle) (Handle, error)

	// Topology
	Explore(h Handle, kind Kind) []Handle
	Children(h Handle) []Handle
	Copy(h Handle) (Handle, error)
	Release(h Handle)
	VertexPoint(h Handle) (v3.Vec, error)
	Translate(h Handle, d v3.Vec) (Handle, error)

	// Builders
	NewFillet(h Handle) FilletBuilder
	NewLoft(solid bool) LoftBuilder
	NewMakerVolume() VolumeBuilder
	NewCompound() CompoundBuilder
	NewSewing(tolerance float64) SewingBuilder

	// Analysis and output
	SurfaceProperties(h Handle) MassProperties
	Clean(h Handle) (Handle, error)
	Triangulate(h Handle, deflection float64) (*Mesh, error)
	WriteSTL(m *Mesh, path string) error
}
