package shape

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/cascade/pkg/kernel"
	"github.com/chazu/cascade/pkg/kernel/sdfx"
)

const eps = 1e-9

func newKernel(t *testing.T) kernel.Kernel {
	t.Helper()
	cfg := sdfx.DefaultConfig()
	cfg.FilletCells = 24
	k, err := sdfx.NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("sdfx.NewWithConfig() error = %v", err)
	}
	return k
}

func pt(x, y, z float64) Point3 { return Point3{X: x, Y: y, Z: z} }

func square(z float64) []Point3 {
	return []Point3{pt(0, 0, z), pt(1, 0, z), pt(1, 1, z), pt(0, 1, z)}
}

func polygon(t *testing.T, k kernel.Kernel, pts ...Point3) *Wire {
	t.Helper()
	w, err := NewPolygon(k, pts...)
	if err != nil {
		t.Fatalf("NewPolygon() error = %v", err)
	}
	return w
}

func unitBox(t *testing.T, k kernel.Kernel) *Shape {
	t.Helper()
	s, err := MakeBox(k)
	if err != nil {
		t.Fatalf("MakeBox() error = %v", err)
	}
	return s
}

func closeTo(a, b Point3) bool {
	return a.Sub(b).Length() <= eps
}

func approx(a, b float64) bool {
	return math.Abs(a-b) <= eps
}

func wantKernelError(t *testing.T, err error, op string) {
	t.Helper()
	var ke *KernelError
	if !errors.As(err, &ke) {
		t.Fatalf("error = %v, want *KernelError", err)
	}
	if ke.Op != op {
		t.Errorf("KernelError.Op = %q, want %q", ke.Op, op)
	}
}

func mustPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s did not panic", name)
		}
	}()
	f()
}
