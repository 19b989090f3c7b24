package shape

import (
	"errors"
	"fmt"

	"github.com/chazu/cascade/pkg/kernel"
)

// ErrTooFewSections is returned by Loft when given fewer than two wires.
var ErrTooFewSections = errors.New("loft needs at least two sections")

// KindMismatchError reports a narrowing whose runtime kind tag did not
// match the requested kind.
type KindMismatchError struct {
	Expected kernel.Kind
	Actual   kernel.Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("shape: kind mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// KernelError reports a kernel operation that could not produce a result.
type KernelError struct {
	Op  string // "box", "loft", "fillet", ...
	Err error
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("shape: %s: %v", e.Op, e.Err)
}

func (e *KernelError) Unwrap() error { return e.Err }

// ExportError reports a mesh export that did not complete.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("shape: export %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// kernelError wraps err as a *KernelError and logs it.
func kernelError(op string, err error) error {
	kernel.Logger().Warn("shape: kernel operation failed", "op", op, "err", err)
	return &KernelError{Op: op, Err: err}
}
