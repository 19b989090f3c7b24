package shape

import (
	"testing"

	"github.com/chazu/cascade/pkg/kernel"
)

func TestNewEdge(t *testing.T) {
	k := newKernel(t)
	e, err := NewEdge(k, pt(0, 0, 0), pt(0, 3, 4))
	if err != nil {
		t.Fatalf("NewEdge() error = %v", err)
	}
	if e.Kind() != kernel.KindEdge || e.VertexCount() != 2 {
		t.Errorf("edge: %s with %d vertices", e.Kind(), e.VertexCount())
	}
	if got := e.Length(); !approx(got, 5) {
		t.Errorf("Length() = %g, want 5", got)
	}
	if got := e.Clone().Length(); !approx(got, 5) {
		t.Errorf("clone Length() = %g, want 5", got)
	}

	_, err = NewEdge(k, pt(1, 1, 1), pt(1, 1, 1))
	wantKernelError(t, err, "edge")
}

func TestNewWire(t *testing.T) {
	k := newKernel(t)
	var edges []*Edge
	pts := []Point3{pt(0, 0, 0), pt(1, 0, 0), pt(1, 1, 0)}
	for i := 0; i+1 < len(pts); i++ {
		e, err := NewEdge(k, pts[i], pts[i+1])
		if err != nil {
			t.Fatal(err)
		}
		edges = append(edges, e)
	}
	w, err := NewWire(k, edges...)
	if err != nil {
		t.Fatalf("NewWire() error = %v", err)
	}
	if w.EdgeCount() != 2 || w.VertexCount() != 3 {
		t.Errorf("wire: %d edges, %d vertices, want 2 and 3", w.EdgeCount(), w.VertexCount())
	}
	// An open wire bounds no face.
	_, err = NewFace(w)
	wantKernelError(t, err, "face")

	far, err := NewEdge(k, pt(9, 9, 9), pt(10, 9, 9))
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewWire(k, edges[0], far)
	wantKernelError(t, err, "wire")
}

func TestNewPolygon(t *testing.T) {
	k := newKernel(t)
	w := polygon(t, k, square(0)...)
	if w.EdgeCount() != 4 || w.VertexCount() != 4 {
		t.Errorf("polygon: %d edges, %d vertices, want 4 and 4", w.EdgeCount(), w.VertexCount())
	}
	_, err := NewPolygon(k, pt(0, 0, 0), pt(1, 0, 0))
	wantKernelError(t, err, "polygon")
}

func TestNewFace(t *testing.T) {
	k := newKernel(t)
	w := polygon(t, k, pt(0, 0, 0), pt(2, 0, 0), pt(2, 3, 0), pt(0, 3, 0))
	f, err := NewFace(w)
	if err != nil {
		t.Fatalf("NewFace() error = %v", err)
	}
	if got := f.Area(); !approx(got, 6) {
		t.Errorf("Area() = %g, want 6", got)
	}
	w.Release()
	if got := f.Clone().Area(); !approx(got, 6) {
		t.Errorf("clone Area() = %g after releasing the wire, want 6", got)
	}
}

func TestSolidCenterOfMass(t *testing.T) {
	k := newKernel(t)
	box, err := NewBox(k, pt(-1, -1, -1), pt(3, 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	s, err := SolidFromShape(box)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.CenterOfMass(); !closeTo(got, pt(1, 0, 0)) {
		t.Errorf("CenterOfMass() = %v, want (1, 0, 0)", got)
	}
	c := s.Clone()
	s.Release()
	if got := c.CenterOfMass(); !closeTo(got, pt(1, 0, 0)) {
		t.Errorf("clone CenterOfMass() = %v after releasing original", got)
	}
}
