package tessellate_test

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/cascade/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// triangleArea returns the signed area of triangle abc measured along n.
func triangleArea(a, b, c, n v3.Vec) float64 {
	return b.Sub(a).Cross(c.Sub(a)).Dot(n.Normalize()) / 2
}

func square(z float64, n v3.Vec) tessellate.Polygon {
	return tessellate.Polygon{
		Points: []v3.Vec{
			{X: 0, Y: 0, Z: z},
			{X: 1, Y: 0, Z: z},
			{X: 1, Y: 1, Z: z},
			{X: 0, Y: 1, Z: z},
		},
		Normal: n,
	}
}

func TestTriangulate(t *testing.T) {
	lShape := tessellate.Polygon{
		Points: []v3.Vec{
			{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1},
			{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2},
		},
		Normal: v3.Vec{Z: 1},
	}
	collinear := tessellate.Polygon{
		Points: []v3.Vec{
			{X: 0, Y: 0}, {X: 0.5, Y: 0}, {X: 1, Y: 0},
			{X: 1, Y: 1}, {X: 0, Y: 1},
		},
		Normal: v3.Vec{Z: 1},
	}
	wall := tessellate.Polygon{
		Points: []v3.Vec{
			{X: 0, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0},
			{X: 0, Y: 1, Z: 1}, {X: 0, Y: 0, Z: 1},
		},
		Normal: v3.Vec{X: -1},
	}

	tests := []struct {
		name     string
		poly     tessellate.Polygon
		wantTris int
		wantArea float64
	}{
		{"square up", square(0, v3.Vec{Z: 1}), 2, 1},
		{"square down", square(0, v3.Vec{Z: -1}), 2, 1},
		{"concave L", lShape, 4, 3},
		{"collinear point", collinear, 3, 1},
		{"vertical wall", wall, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tris, err := tessellate.Triangulate(tt.poly)
			if err != nil {
				t.Fatalf("Triangulate() error = %v", err)
			}
			if len(tris) != tt.wantTris {
				t.Errorf("triangle count = %d, want %d", len(tris), tt.wantTris)
			}
			used := make(map[int]bool)
			var area float64
			for _, tri := range tris {
				used[tri[0]], used[tri[1]], used[tri[2]] = true, true, true
				a := triangleArea(tt.poly.Points[tri[0]], tt.poly.Points[tri[1]], tt.poly.Points[tri[2]], tt.poly.Normal)
				if a <= 0 {
					t.Errorf("triangle %v wound against the normal (area %g)", tri, a)
				}
				area += a
			}
			if math.Abs(area-tt.wantArea) > 1e-9 {
				t.Errorf("total area = %g, want %g", area, tt.wantArea)
			}
			for i := range tt.poly.Points {
				if !used[i] {
					t.Errorf("point %d (%v) is not used by any triangle", i, tt.poly.Points[i])
				}
			}
		})
	}
}

func TestTriangulateDegenerate(t *testing.T) {
	tests := []struct {
		name string
		poly tessellate.Polygon
	}{
		{"two points", tessellate.Polygon{Points: []v3.Vec{{}, {X: 1}}, Normal: v3.Vec{Z: 1}}},
		{"line", tessellate.Polygon{Points: []v3.Vec{{}, {X: 1}, {X: 2}}, Normal: v3.Vec{Z: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tessellate.Triangulate(tt.poly)
			if !errors.Is(err, tessellate.ErrDegenerate) {
				t.Errorf("Triangulate() error = %v, want ErrDegenerate", err)
			}
		})
	}
}

func TestTessellate(t *testing.T) {
	polys := []tessellate.Polygon{
		square(0, v3.Vec{Z: -1}),
		square(1, v3.Vec{Z: 1}),
	}
	mesh, err := tessellate.Tessellate(polys, "pair")
	if err != nil {
		t.Fatalf("Tessellate() error = %v", err)
	}
	if mesh.TriangleCount() != 4 {
		t.Errorf("TriangleCount() = %d, want 4", mesh.TriangleCount())
	}
	if mesh.VertexCount() != 12 {
		t.Errorf("VertexCount() = %d, want 12", mesh.VertexCount())
	}
	if len(mesh.Normals) != len(mesh.Vertices) {
		t.Fatalf("normals length %d != vertices length %d", len(mesh.Normals), len(mesh.Vertices))
	}
	if mesh.Name != "pair" {
		t.Errorf("Name = %q, want %q", mesh.Name, "pair")
	}
	// First triangle belongs to the downward square.
	if mesh.Normals[2] != -1 {
		t.Errorf("first normal z = %v, want -1", mesh.Normals[2])
	}
}

func TestTessellateReportsPolygonIndex(t *testing.T) {
	polys := []tessellate.Polygon{
		square(0, v3.Vec{Z: 1}),
		{Points: []v3.Vec{{}, {X: 1}}, Normal: v3.Vec{Z: 1}},
	}
	_, err := tessellate.Tessellate(polys, "")
	if !errors.Is(err, tessellate.ErrDegenerate) {
		t.Fatalf("Tessellate() error = %v, want ErrDegenerate", err)
	}
	want := "tessellate: polygon 1: tessellate: degenerate polygon: 2 points"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}
