package sdfx

import (
	"fmt"

	"github.com/chazu/cascade/pkg/kernel"
	"github.com/chazu/cascade/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// SurfaceProperties integrates over the faces of h. Mass is the total
// area and Center the area-weighted centroid. Shapes without faces, and
// invalid handles, yield the zero value.
func (k *SdfxKernel) SurfaceProperties(h kernel.Handle) kernel.MassProperties {
	n, err := k.unwrap(h)
	if err != nil {
		return kernel.MassProperties{}
	}
	var total float64
	var moment v3.Vec
	for _, f := range collect(n, kernel.KindFace) {
		area, c := polygonArea(facePoints(f), f.normal)
		total += area
		moment = moment.Add(c.MulScalar(area))
	}
	if total == 0 {
		return kernel.MassProperties{}
	}
	return kernel.MassProperties{Mass: total, Center: moment.DivScalar(total)}
}

// Triangulate meshes every face of h. Faces are planar, so the result is
// exact and deflection only has to be positive.
func (k *SdfxKernel) Triangulate(h kernel.Handle, deflection float64) (*kernel.Mesh, error) {
	if deflection <= 0 {
		return nil, fmt.Errorf("sdfx: triangulate: deflection must be positive, got %g", deflection)
	}
	n, err := k.unwrap(h)
	if err != nil {
		return nil, fmt.Errorf("sdfx: triangulate: %w", err)
	}
	faces := collect(n, kernel.KindFace)
	if len(faces) == 0 {
		return nil, fmt.Errorf("sdfx: triangulate: %s has no faces", n.kind)
	}
	polys := make([]tessellate.Polygon, len(faces))
	for i, f := range faces {
		polys[i] = tessellate.Polygon{Points: facePoints(f), Normal: f.normal}
	}
	m, err := tessellate.Tessellate(polys, n.kind.String())
	if err != nil {
		return nil, fmt.Errorf("sdfx: triangulate: %w", err)
	}
	return m, nil
}

// WriteSTL writes m as a binary STL file.
func (k *SdfxKernel) WriteSTL(m *kernel.Mesh, path string) error {
	if err := tessellate.WriteSTL(m, path); err != nil {
		return fmt.Errorf("sdfx: %w", err)
	}
	return nil
}
