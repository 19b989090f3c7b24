package shape

// Solid is a region of space bounded by closed shells.
type Solid struct {
	base
}

// Clone returns an independent deep copy.
func (s *Solid) Clone() *Solid { return &Solid{base{s.o.copy()}} }

// CenterOfMass returns the centroid of the bounding surfaces.
func (s *Solid) CenterOfMass() Point3 { return centerOfMass(s.o) }
