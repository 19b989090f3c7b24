// Package instrument decorates a kernel.Kernel with prometheus metrics.
//
// Every kernel call is counted in cascade_kernel_operations_total, labelled
// by operation and result ("ok" or "error"), and timed in
// cascade_kernel_operation_duration_seconds. Builder operations are
// recorded when Build is called, under the builder's name.
package instrument

import (
	"fmt"
	"time"

	"github.com/chazu/cascade/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/prometheus/client_golang/prometheus"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// Metrics holds the collectors shared by instrumented kernels.
type Metrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cascade",
			Subsystem: "kernel",
			Name:      "operations_total",
			Help:      "Kernel operations by name and result.",
		}, []string{"op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cascade",
			Subsystem: "kernel",
			Name:      "operation_duration_seconds",
			Help:      "Wall time of kernel operations.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"op"}),
	}
	for _, c := range []prometheus.Collector{m.ops, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("instrument: register: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ops.WithLabelValues(op, result).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Kernel forwards every call to the wrapped kernel and records it.
type Kernel struct {
	next kernel.Kernel
	m    *Metrics
}

// Wrap registers fresh collectors with reg and returns an instrumented k.
func Wrap(k kernel.Kernel, reg prometheus.Registerer) (*Kernel, error) {
	m, err := NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	return WithMetrics(k, m), nil
}

// WithMetrics returns k instrumented with existing collectors, so several
// kernels can share one set of series.
func WithMetrics(k kernel.Kernel, m *Metrics) *Kernel {
	return &Kernel{next: k, m: m}
}

// Unwrap returns the wrapped kernel.
func (k *Kernel) Unwrap() kernel.Kernel { return k.next }

func (k *Kernel) Box(origin v3.Vec, dx, dy, dz float64) (kernel.Handle, error) {
	start := time.Now()
	h, err := k.next.Box(origin, dx, dy, dz)
	k.m.observe("box", start, err)
	return h, err
}

func (k *Kernel) Vertex(p v3.Vec) kernel.Handle {
	start := time.Now()
	h := k.next.Vertex(p)
	k.m.observe("vertex", start, nil)
	return h
}

func (k *Kernel) Edge(a, b v3.Vec) (kernel.Handle, error) {
	start := time.Now()
	h, err := k.next.Edge(a, b)
	k.m.observe("edge", start, err)
	return h, err
}

func (k *Kernel) Wire(edges []kernel.Handle) (kernel.Handle, error) {
	start := time.Now()
	h, err := k.next.Wire(edges)
	k.m.observe("wire", start, err)
	return h, err
}

func (k *Kernel) Face(wire kernel.Handle) (kernel.Handle, error) {
	start := time.Now()
	h, err := k.next.Face(wire)
	k.m.observe("face", start, err)
	return h, err
}

func (k *Kernel) Explore(h kernel.Handle, kind kernel.Kind) []kernel.Handle {
	start := time.Now()
	out := k.next.Explore(h, kind)
	k.m.observe("explore", start, nil)
	return out
}

func (k *Kernel) Children(h kernel.Handle) []kernel.Handle {
	start := time.Now()
	out := k.next.Children(h)
	k.m.observe("children", start, nil)
	return out
}

func (k *Kernel) Copy(h kernel.Handle) (kernel.Handle, error) {
	start := time.Now()
	c, err := k.next.Copy(h)
	k.m.observe("copy", start, err)
	return c, err
}

func (k *Kernel) Release(h kernel.Handle) {
	start := time.Now()
	k.next.Release(h)
	k.m.observe("release", start, nil)
}

func (k *Kernel) VertexPoint(h kernel.Handle) (v3.Vec, error) {
	start := time.Now()
	p, err := k.next.VertexPoint(h)
	k.m.observe("vertex_point", start, err)
	return p, err
}

func (k *Kernel) Translate(h kernel.Handle, d v3.Vec) (kernel.Handle, error) {
	start := time.Now()
	out, err := k.next.Translate(h, d)
	k.m.observe("translate", start, err)
	return out, err
}

func (k *Kernel) SurfaceProperties(h kernel.Handle) kernel.MassProperties {
	start := time.Now()
	props := k.next.SurfaceProperties(h)
	k.m.observe("surface_properties", start, nil)
	return props
}

func (k *Kernel) Clean(h kernel.Handle) (kernel.Handle, error) {
	start := time.Now()
	out, err := k.next.Clean(h)
	k.m.observe("clean", start, err)
	return out, err
}

func (k *Kernel) Triangulate(h kernel.Handle, deflection float64) (*kernel.Mesh, error) {
	start := time.Now()
	m, err := k.next.Triangulate(h, deflection)
	k.m.observe("triangulate", start, err)
	return m, err
}

func (k *Kernel) WriteSTL(m *kernel.Mesh, path string) error {
	start := time.Now()
	err := k.next.WriteSTL(m, path)
	k.m.observe("write_stl", start, err)
	return err
}
