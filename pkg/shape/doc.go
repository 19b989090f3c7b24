// Package shape is a typed ownership layer over a kernel.Kernel.
//
// Every value in this package exclusively owns one live kernel handle.
// The generic Shape holds a handle of any kind; the typed wrappers
// (Vertex, Edge, Wire, Face, Shell, Solid, Compound) hold a handle whose
// kind tag is known to match. Widening a typed wrapper with Shape always
// succeeds; narrowing a Shape with the XFromShape functions or Narrow
// checks the runtime kind tag and fails with a *KindMismatchError.
//
// Copies are always deep: Clone, Shape and the FromShape functions ask
// the kernel for an independent copy, so releasing or modifying one value
// never affects another. Call Release when a value is no longer needed; a
// finalizer releases forgotten handles, but only when the garbage
// collector gets to them. Using a value after Release panics.
//
// Values are not safe for concurrent use.
package shape
