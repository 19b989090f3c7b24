//go:build occt

package occt

/*
#include <stdlib.h>
#include "occt_shim.h"
*/
import "C"

import (
	"fmt"
	"runtime"

	"github.com/chazu/cascade/pkg/kernel"
)

// Builders collect their arguments in Go and hand them to the shim in a
// single call on Build, so each can be committed exactly once.

type filletBuilder struct {
	k     *OcctKernel
	base  kernel.Handle
	edges []kernel.Handle
	radii []C.double
	done  bool
}

// NewFillet returns a fillet builder for the shape behind h.
func (k *OcctKernel) NewFillet(h kernel.Handle) kernel.FilletBuilder {
	return &filletBuilder{k: k, base: h}
}

func (b *filletBuilder) AddEdge(radius float64, edge kernel.Handle) {
	b.edges = append(b.edges, edge)
	b.radii = append(b.radii, C.double(radius))
}

func (b *filletBuilder) Build() (kernel.Handle, error) {
	if b.done {
		return nil, kernel.ErrBuilderConsumed
	}
	b.done = true
	base, err := b.k.unwrap(b.base)
	if err != nil {
		return nil, fmt.Errorf("occt: fillet: %w", err)
	}
	if len(b.edges) == 0 {
		return nil, fmt.Errorf("occt: fillet: no edges added")
	}
	for _, r := range b.radii {
		if r <= 0 {
			return nil, fmt.Errorf("occt: fillet: radius must be positive, got %g", float64(r))
		}
	}
	ptrs, shapes, err := b.k.pointers(b.edges, kernel.KindEdge)
	if err != nil {
		return nil, fmt.Errorf("occt: fillet: %w", err)
	}
	var msg *C.char
	ptr := C.occt_fillet(base.ptr, first(ptrs), &b.radii[0], C.int(len(ptrs)), &msg)
	runtime.KeepAlive(base)
	runtime.KeepAlive(shapes)
	return b.k.result("fillet", ptr, msg)
}

type loftBuilder struct {
	k     *OcctKernel
	solid bool
	check bool
	wires []kernel.Handle
	done  bool
}

// NewLoft returns a through-sections builder. With solid set, closed
// end sections are capped with planar faces.
func (k *OcctKernel) NewLoft(solid bool) kernel.LoftBuilder {
	return &loftBuilder{k: k, solid: solid}
}

func (b *loftBuilder) AddWire(wire kernel.Handle) {
	b.wires = append(b.wires, wire)
}

func (b *loftBuilder) CheckCompatibility(check bool) {
	b.check = check
}

func (b *loftBuilder) Build() (kernel.Handle, error) {
	if b.done {
		return nil, kernel.ErrBuilderConsumed
	}
	b.done = true
	if len(b.wires) < 2 {
		return nil, fmt.Errorf("occt: loft: need at least two sections, got %d", len(b.wires))
	}
	ptrs, shapes, err := b.k.pointers(b.wires, kernel.KindWire)
	if err != nil {
		return nil, fmt.Errorf("occt: loft: %w", err)
	}
	var msg *C.char
	ptr := C.occt_loft(first(ptrs), C.int(len(ptrs)), cbool(b.solid), cbool(b.check), &msg)
	runtime.KeepAlive(shapes)
	return b.k.result("loft", ptr, msg)
}

type volumeBuilder struct {
	k    *OcctKernel
	args []kernel.Handle
	done bool
}

// NewMakerVolume returns a BOPAlgo_MakerVolume builder. The arguments
// are intersected and every closed region becomes a solid; the result is
// a single solid or a compound.
func (k *OcctKernel) NewMakerVolume() kernel.VolumeBuilder {
	return &volumeBuilder{k: k}
}

func (b *volumeBuilder) SetArguments(shapes []kernel.Handle) {
	b.args = append(b.args[:0], shapes...)
}

func (b *volumeBuilder) Build() (kernel.Handle, error) {
	if b.done {
		return nil, kernel.ErrBuilderConsumed
	}
	b.done = true
	if len(b.args) == 0 {
		return nil, fmt.Errorf("occt: make volume: no arguments")
	}
	ptrs, shapes, err := b.k.pointers(b.args, kernel.KindShape)
	if err != nil {
		return nil, fmt.Errorf("occt: make volume: %w", err)
	}
	var msg *C.char
	ptr := C.occt_make_volume(first(ptrs), C.int(len(ptrs)), &msg)
	runtime.KeepAlive(shapes)
	return b.k.result("make volume", ptr, msg)
}

type compoundBuilder struct {
	k        *OcctKernel
	children []kernel.Handle
	done     bool
}

// NewCompound returns a builder that copies its children into a compound.
func (k *OcctKernel) NewCompound() kernel.CompoundBuilder {
	return &compoundBuilder{k: k}
}

func (b *compoundBuilder) Add(child kernel.Handle) {
	b.children = append(b.children, child)
}

func (b *compoundBuilder) Build() (kernel.Handle, error) {
	if b.done {
		return nil, kernel.ErrBuilderConsumed
	}
	b.done = true
	ptrs, shapes, err := b.k.pointers(b.children, kernel.KindShape)
	if err != nil {
		return nil, fmt.Errorf("occt: compound: %w", err)
	}
	var msg *C.char
	ptr := C.occt_compound(first(ptrs), C.int(len(ptrs)), &msg)
	runtime.KeepAlive(shapes)
	return b.k.result("compound", ptr, msg)
}

type sewingBuilder struct {
	k     *OcctKernel
	tol   float64
	faces []kernel.Handle
	done  bool
}

// NewSewing returns a BRepBuilderAPI_Sewing builder. A non-positive
// tolerance uses the OCCT default.
func (k *OcctKernel) NewSewing(tolerance float64) kernel.SewingBuilder {
	if tolerance <= 0 {
		tolerance = defaultSewingTolerance
	}
	return &sewingBuilder{k: k, tol: tolerance}
}

func (b *sewingBuilder) Add(face kernel.Handle) {
	b.faces = append(b.faces, face)
}

func (b *sewingBuilder) Build() (kernel.Handle, error) {
	if b.done {
		return nil, kernel.ErrBuilderConsumed
	}
	b.done = true
	if len(b.faces) == 0 {
		return nil, fmt.Errorf("occt: sewing: no faces to sew")
	}
	ptrs, shapes, err := b.k.pointers(b.faces, kernel.KindFace)
	if err != nil {
		return nil, fmt.Errorf("occt: sewing: %w", err)
	}
	var msg *C.char
	ptr := C.occt_sew(first(ptrs), C.int(len(ptrs)), C.double(b.tol), &msg)
	runtime.KeepAlive(shapes)
	return b.k.result("sewing", ptr, msg)
}

func cbool(v bool) C.int {
	if v {
		return 1
	}
	return 0
}
