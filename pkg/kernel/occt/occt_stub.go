//go:build !occt

// Package occt provides a CGo-based geometry kernel binding to the
// OpenCascade Technology libraries. When the "occt" build tag is not set,
// this stub package is compiled instead, returning an error from New().
//
// Build with: go build -tags=occt
package occt

import (
	"errors"

	"github.com/chazu/cascade/pkg/kernel"
)

// ErrUnavailable is returned by New when the package is built without OCCT.
var ErrUnavailable = errors.New("occt kernel not available: build with -tags=occt")

// New returns ErrUnavailable. Build with -tags=occt to enable.
func New() (kernel.Kernel, error) {
	return nil, ErrUnavailable
}
