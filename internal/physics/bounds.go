package physics

// aabb is a world-space axis-aligned bounding box used to skip pairs that cannot touch.
type aabb struct {
	Min, Max  Vector3
	unbounded bool
}

// bounds returns the box enclosing c. Planes are unbounded.
func bounds(c Collider) aabb {
	switch s := c.(type) {
	case *Sphere:
		centre := s.Axis(3)
		r := Vector3{X: s.Radius, Y: s.Radius, Z: s.Radius}
		return aabb{Min: centre.Sub(r), Max: centre.Add(r)}
	case *Box:
		centre := s.Axis(3)
		half := Vector3{
			X: transformToAxis(s, Vector3{X: 1}),
			Y: transformToAxis(s, Vector3{Y: 1}),
			Z: transformToAxis(s, Vector3{Z: 1}),
		}
		return aabb{Min: centre.Sub(half), Max: centre.Add(half)}
	}
	return aabb{unbounded: true}
}

// overlaps reports whether the boxes intersect, touching included.
func (a aabb) overlaps(b aabb) bool {
	if a.unbounded || b.unbounded {
		return true
	}
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}
