package instrument

import (
	"time"

	"github.com/chazu/cascade/pkg/kernel"
)

// build times one builder commit.
func (m *Metrics) build(op string, b func() (kernel.Handle, error)) (kernel.Handle, error) {
	start := time.Now()
	h, err := b()
	m.observe(op, start, err)
	return h, err
}

type filletBuilder struct {
	kernel.FilletBuilder
	m *Metrics
}

func (b filletBuilder) Build() (kernel.Handle, error) { return b.m.build("fillet", b.FilletBuilder.Build) }

type loftBuilder struct {
	kernel.LoftBuilder
	m *Metrics
}

func (b loftBuilder) Build() (kernel.Handle, error) { return b.m.build("loft", b.LoftBuilder.Build) }

type volumeBuilder struct {
	kernel.VolumeBuilder
	m *Metrics
}

func (b volumeBuilder) Build() (kernel.Handle, error) {
	return b.m.build("make_volume", b.VolumeBuilder.Build)
}

type compoundBuilder struct {
	kernel.CompoundBuilder
	m *Metrics
}

func (b compoundBuilder) Build() (kernel.Handle, error) {
	return b.m.build("compound", b.CompoundBuilder.Build)
}

type sewingBuilder struct {
	kernel.SewingBuilder
	m *Metrics
}

func (b sewingBuilder) Build() (kernel.Handle, error) { return b.m.build("sewing", b.SewingBuilder.Build) }

func (k *Kernel) NewFillet(h kernel.Handle) kernel.FilletBuilder {
	return filletBuilder{k.next.NewFillet(h), k.m}
}

func (k *Kernel) NewLoft(solid bool) kernel.LoftBuilder {
	return loftBuilder{k.next.NewLoft(solid), k.m}
}

func (k *Kernel) NewMakerVolume() kernel.VolumeBuilder {
	return volumeBuilder{k.next.NewMakerVolume(), k.m}
}

func (k *Kernel) NewCompound() kernel.CompoundBuilder {
	return compoundBuilder{k.next.NewCompound(), k.m}
}

func (k *Kernel) NewSewing(tolerance float64) kernel.SewingBuilder {
	return sewingBuilder{k.next.NewSewing(tolerance), k.m}
}
