//go:build occt

package occt

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/chazu/cascade/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func mustNew(t *testing.T) kernel.Kernel {
	t.Helper()
	k, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return k
}

func p(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }

func unitBox(t *testing.T, k kernel.Kernel) kernel.Handle {
	t.Helper()
	h, err := k.Box(v3.Vec{}, 1, 1, 1)
	if err != nil {
		t.Fatalf("Box() error = %v", err)
	}
	return h
}

func square(t *testing.T, k kernel.Kernel, z float64) kernel.Handle {
	t.Helper()
	pts := []v3.Vec{p(0, 0, z), p(1, 0, z), p(1, 1, z), p(0, 1, z)}
	edges := make([]kernel.Handle, len(pts))
	for i := range pts {
		e, err := k.Edge(pts[i], pts[(i+1)%len(pts)])
		if err != nil {
			t.Fatalf("Edge() error = %v", err)
		}
		edges[i] = e
	}
	w, err := k.Wire(edges)
	if err != nil {
		t.Fatalf("Wire() error = %v", err)
	}
	return w
}

func TestBox(t *testing.T) {
	k := mustNew(t)
	h := unitBox(t, k)
	if h.Kind() != kernel.KindSolid {
		t.Fatalf("Box() kind = %s, want solid", h.Kind())
	}
	min, max := h.BoundingBox()
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]) > 1e-6 || math.Abs(max[i]-1) > 1e-6 {
			t.Errorf("Box bounds[%d] = [%f, %f], want [0, 1]", i, min[i], max[i])
		}
	}
	tests := []struct {
		kind kernel.Kind
		want int
	}{
		{kernel.KindFace, 6},
		{kernel.KindEdge, 12},
		{kernel.KindVertex, 8},
	}
	for _, tt := range tests {
		if got := len(k.Explore(h, tt.kind)); got != tt.want {
			t.Errorf("Explore(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
	if got := k.SurfaceProperties(h); math.Abs(got.Mass-6) > 1e-6 {
		t.Errorf("area = %f, want 6", got.Mass)
	}
}

func TestReleaseAndCopy(t *testing.T) {
	k := mustNew(t)
	h := unitBox(t, k)
	c, err := k.Copy(h)
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	k.Release(h)
	k.Release(h)
	if _, err := k.Copy(h); !errors.Is(err, kernel.ErrReleased) {
		t.Errorf("Copy(released) error = %v, want ErrReleased", err)
	}
	if got := len(k.Explore(c, kernel.KindFace)); got != 6 {
		t.Errorf("copy faces after release = %d, want 6", got)
	}
}

func TestLoftAndVolume(t *testing.T) {
	k := mustNew(t)
	b := k.NewLoft(false)
	b.AddWire(square(t, k, 0))
	b.AddWire(square(t, k, 1))
	b.CheckCompatibility(true)
	shell, err := b.Build()
	if err != nil {
		t.Fatalf("loft Build() error = %v", err)
	}
	if shell.Kind() != kernel.KindShell {
		t.Fatalf("loft kind = %s, want shell", shell.Kind())
	}
	if _, err := b.Build(); !errors.Is(err, kernel.ErrBuilderConsumed) {
		t.Errorf("second Build() error = %v, want ErrBuilderConsumed", err)
	}

	bottom, err := k.Face(square(t, k, 0))
	if err != nil {
		t.Fatalf("Face() error = %v", err)
	}
	top, err := k.Face(square(t, k, 1))
	if err != nil {
		t.Fatalf("Face() error = %v", err)
	}
	mv := k.NewMakerVolume()
	mv.SetArguments([]kernel.Handle{shell, bottom, top})
	vol, err := mv.Build()
	if err != nil {
		t.Fatalf("make volume Build() error = %v", err)
	}
	if got := len(k.Explore(vol, kernel.KindSolid)); got != 1 {
		t.Errorf("solids = %d, want 1", got)
	}
}

func TestFillet(t *testing.T) {
	k := mustNew(t)
	h := unitBox(t, k)
	b := k.NewFillet(h)
	for _, e := range k.Explore(h, kernel.KindEdge) {
		b.AddEdge(0.1, e)
	}
	out, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := len(k.Explore(out, kernel.KindFace)); got <= 6 {
		t.Errorf("faces = %d, want more than 6", got)
	}
}

func TestCompoundChildren(t *testing.T) {
	k := mustNew(t)
	b := k.NewCompound()
	b.Add(unitBox(t, k))
	b.Add(k.Vertex(p(3, 3, 3)))
	c, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	got := k.Children(c)
	if len(got) != 2 || got[0].Kind() != kernel.KindSolid || got[1].Kind() != kernel.KindVertex {
		t.Fatalf("Children() = %v, want [solid vertex]", got)
	}
	pt, err := k.VertexPoint(got[1])
	if err != nil || pt != p(3, 3, 3) {
		t.Errorf("VertexPoint() = %v, %v, want (3, 3, 3)", pt, err)
	}
}

func TestTriangulateAndWriteSTL(t *testing.T) {
	k := mustNew(t)
	h := unitBox(t, k)
	m, err := k.Triangulate(h, 0.01)
	if err != nil {
		t.Fatalf("Triangulate() error = %v", err)
	}
	if m.TriangleCount() != 12 {
		t.Errorf("triangles = %d, want 12", m.TriangleCount())
	}
	if err := k.WriteSTL(m, filepath.Join(t.TempDir(), "box.stl")); err != nil {
		t.Errorf("WriteSTL() error = %v", err)
	}
}
