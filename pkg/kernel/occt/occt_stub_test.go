//go:build !occt

package occt

import (
	"errors"
	"testing"
)

func TestNewReturnsError(t *testing.T) {
	k, err := New()
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("New() error = %v, want ErrUnavailable when occt tag is not set", err)
	}
	if k != nil {
		t.Fatal("New() returned non-nil kernel, want nil when occt tag is not set")
	}

	want := "occt kernel not available: build with -tags=occt"
	if err.Error() != want {
		t.Errorf("New() error = %q, want %q", err.Error(), want)
	}
}
