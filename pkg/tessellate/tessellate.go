// Package tessellate triangulates planar polygons into triangle meshes.
// Kernel backends that store faces as planar loops use it to implement
// triangulation and mesh export.
package tessellate

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/cascade/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	libtess2 "github.com/hajimehoshi/go-libtess2"
)

// ErrDegenerate is returned for polygons that enclose no area.
var ErrDegenerate = errors.New("tessellate: degenerate polygon")

// Polygon is a simple planar loop. Points are in boundary order, without
// repeating the first point. Normal gives the side the loop faces; the
// winding of Points does not need to agree with it.
type Polygon struct {
	Points []v3.Vec
	Normal v3.Vec
}

// projection maps 3D points onto the coordinate plane most nearly parallel
// to the polygon. The two remaining axes are taken in cyclic order so that
// a positive 2D area means counter-clockwise around +axis.
type projection struct {
	axis int
	flip bool // the normal points along -axis
}

func newProjection(n v3.Vec) projection {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case az >= ax && az >= ay:
		return projection{axis: 2, flip: n.Z < 0}
	case ax >= ay:
		return projection{axis: 0, flip: n.X < 0}
	default:
		return projection{axis: 1, flip: n.Y < 0}
	}
}

func (pr projection) apply(p v3.Vec) (float64, float64) {
	switch pr.axis {
	case 0:
		return p.Y, p.Z
	case 1:
		return p.Z, p.X
	default:
		return p.X, p.Y
	}
}

type xy struct{ x, y float64 }

func cross2(a, b, c xy) float64 {
	return (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
}

// Triangulate splits p into triangles with libtess2. The returned index
// triples refer to p.Points and are wound counter-clockwise around
// p.Normal. Every boundary point is kept, including points lying on a
// straight run, so faces sharing such a point still meet edge to edge.
func Triangulate(p Polygon) ([][3]int, error) {
	n := len(p.Points)
	if n < 3 {
		return nil, fmt.Errorf("%w: %d points", ErrDegenerate, n)
	}

	pr := newProjection(p.Normal)
	pts := make([]xy, n)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, q := range p.Points {
		x, y := pr.apply(q)
		pts[i] = xy{x, y}
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	diag2 := (maxX-minX)*(maxX-minX) + (maxY-minY)*(maxY-minY)
	eps := 1e-12 * diag2

	var area float64
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		area += a.x*b.y - b.x*a.y
	}
	if math.Abs(area) <= eps {
		return nil, ErrDegenerate
	}

	// Coordinates are taken relative to the bounding box corner so the
	// float32 contour keeps as much precision as possible. Output vertices
	// are mapped back to input points by their exact contour coordinates.
	contour := make(libtess2.Contour, n)
	index := make(map[libtess2.Vertex]int, n)
	for i, q := range pts {
		v := libtess2.Vertex{X: float32(q.x - minX), Y: float32(q.y - minY)}
		contour[i] = v
		if _, dup := index[v]; !dup {
			index[v] = i
		}
	}
	elems, verts, err := libtess2.Tesselate([]libtess2.Contour{contour}, libtess2.WindingRuleOdd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	tris := make([][3]int, 0, len(elems)/3)
	for i := 0; i+2 < len(elems); i += 3 {
		var tri [3]int
		for j := range tri {
			e := elems[i+j]
			if e < 0 || e >= len(verts) {
				return nil, fmt.Errorf("%w: invalid element %d", ErrDegenerate, e)
			}
			k, ok := index[verts[e]]
			if !ok {
				return nil, fmt.Errorf("%w: boundary intersects itself", ErrDegenerate)
			}
			tri[j] = k
		}
		c := cross2(pts[tri[0]], pts[tri[1]], pts[tri[2]])
		if math.Abs(c) <= eps {
			continue
		}
		if c < 0 {
			tri[1], tri[2] = tri[2], tri[1]
		}
		tris = append(tris, tri)
	}
	if len(tris) == 0 {
		return nil, ErrDegenerate
	}

	if pr.flip {
		for i := range tris {
			tris[i][1], tris[i][2] = tris[i][2], tris[i][1]
		}
	}
	return tris, nil
}

// Tessellate triangulates every polygon and collects the triangles into a
// single mesh with flat per-face normals. Each triangle gets its own three
// vertices so normals stay sharp at polygon boundaries.
func Tessellate(polys []Polygon, name string) (*kernel.Mesh, error) {
	mesh := &kernel.Mesh{Name: name}
	for i, poly := range polys {
		tris, err := Triangulate(poly)
		if err != nil {
			return nil, fmt.Errorf("tessellate: polygon %d: %w", i, err)
		}
		n := poly.Normal.Normalize()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for _, tri := range tris {
			for _, k := range tri {
				v := poly.Points[k]
				mesh.Indices = append(mesh.Indices, uint32(mesh.VertexCount()))
				mesh.Vertices = append(mesh.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
				mesh.Normals = append(mesh.Normals, nx, ny, nz)
			}
		}
	}
	return mesh, nil
}
