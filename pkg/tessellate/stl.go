package tessellate

import (
	"fmt"

	"github.com/chazu/cascade/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// FromTriangles builds a mesh with one vertex per triangle corner and flat
// normals following the corner winding.
func FromTriangles(tris [][3]v3.Vec, name string) *kernel.Mesh {
	mesh := &kernel.Mesh{Name: name}
	for _, tri := range tris {
		n := tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0]))
		if l := n.Length(); l > 0 {
			n = n.DivScalar(l)
		}
		for _, v := range tri {
			mesh.Indices = append(mesh.Indices, uint32(mesh.VertexCount()))
			mesh.Vertices = append(mesh.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			mesh.Normals = append(mesh.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
	}
	return mesh
}

// WriteSTL writes m to path as a binary STL file.
func WriteSTL(m *kernel.Mesh, path string) error {
	if m == nil || m.TriangleCount() == 0 {
		return fmt.Errorf("tessellate: write stl: mesh is empty")
	}
	triangles := make([]*sdf.Triangle3, m.TriangleCount())
	for i := range triangles {
		var tri sdf.Triangle3
		for j, p := range m.Triangle(i) {
			tri[j] = v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
		}
		triangles[i] = &tri
	}
	if err := render.SaveSTL(path, triangles); err != nil {
		return fmt.Errorf("tessellate: write stl: %w", err)
	}
	return nil
}
