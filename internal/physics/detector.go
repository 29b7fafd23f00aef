package physics

import "crystal-engine/internal/vecmath"

// Collide runs the narrow-phase test for the pair and writes any contacts into data. It returns the
// number of contacts written. Plane-plane pairs never collide; unknown shapes produce no contacts.
func Collide(a, b Collider, data *CollisionData) int {
	if data.ContactsLeft() <= 0 {
		return 0
	}
	switch one := a.(type) {
	case *Sphere:
		switch two := b.(type) {
		case *Sphere:
			return sphereAndSphere(one, two, data)
		case *Plane:
			return sphereAndHalfSpace(one, two, data)
		case *Box:
			return boxAndSphere(two, one, data)
		}
	case *Box:
		switch two := b.(type) {
		case *Sphere:
			return boxAndSphere(one, two, data)
		case *Plane:
			return boxAndHalfSpace(one, two, data)
		case *Box:
			return boxAndBox(one, two, data)
		}
	case *Plane:
		switch two := b.(type) {
		case *Sphere:
			return sphereAndHalfSpace(two, one, data)
		case *Box:
			return boxAndHalfSpace(two, one, data)
		}
	}
	return 0
}

func sphereAndSphere(one, two *Sphere, data *CollisionData) int {
	positionOne := one.Axis(3)
	positionTwo := two.Axis(3)

	midline := positionOne.Sub(positionTwo)
	size := midline.Magnitude()
	if size <= 0 || size >= one.Radius+two.Radius {
		return 0
	}

	c := data.addContact(one.body, two.body)
	if c == nil {
		return 0
	}
	c.Normal = midline.Scale(1 / size)
	c.Point = positionTwo.AddScaled(c.Normal, two.Radius)
	c.Penetration = one.Radius + two.Radius - size
	return 1
}

func sphereAndHalfSpace(sphere *Sphere, plane *Plane, data *CollisionData) int {
	position := sphere.Axis(3)
	distance := plane.Normal.Dot(position) - sphere.Radius - plane.Offset
	if distance >= 0 {
		return 0
	}

	c := data.addContact(sphere.body, plane.body)
	if c == nil {
		return 0
	}
	c.Normal = plane.Normal
	c.Penetration = -distance
	c.Point = position.Sub(plane.Normal.Scale(distance + sphere.Radius))
	return 1
}

func boxAndHalfSpace(box *Box, plane *Plane, data *CollisionData) int {
	// Cheap rejection: the box's projection onto the normal must reach the plane.
	if plane.Normal.Dot(box.Axis(3))-transformToAxis(box, plane.Normal) > plane.Offset {
		return 0
	}

	used := 0
	for i := 0; i < 8; i++ {
		vertex := box.vertex(i)
		vertexDistance := vertex.Dot(plane.Normal)
		if vertexDistance > plane.Offset {
			continue
		}
		c := data.addContact(box.body, plane.body)
		if c == nil {
			break
		}
		c.Normal = plane.Normal
		c.Point = vertex.AddScaled(plane.Normal, plane.Offset-vertexDistance)
		c.Penetration = plane.Offset - vertexDistance
		used++
	}
	return used
}

func boxAndSphere(box *Box, sphere *Sphere, data *CollisionData) int {
	centre := sphere.Axis(3)
	rel := box.transform.TransformInverse(centre)
	h := box.HalfSize

	if vecmath.Abs(rel.X)-sphere.Radius > h.X ||
		vecmath.Abs(rel.Y)-sphere.Radius > h.Y ||
		vecmath.Abs(rel.Z)-sphere.Radius > h.Z {
		return 0
	}

	closest := Vector3{
		X: min(max(rel.X, -h.X), h.X),
		Y: min(max(rel.Y, -h.Y), h.Y),
		Z: min(max(rel.Z, -h.Z), h.Z),
	}
	dist := closest.Sub(rel).SquareMagnitude()
	if dist > sphere.Radius*sphere.Radius {
		return 0
	}

	var normal, point Vector3
	var penetration Real
	if dist > 0 {
		point = box.transform.Transform(closest)
		normal = point.Sub(centre).Normalized()
		penetration = sphere.Radius - vecmath.Sqrt(dist)
	} else {
		// Centre inside the box: push out through the nearest face.
		axis, depth := 0, h.X-vecmath.Abs(rel.X)
		for i := 1; i < 3; i++ {
			if d := h.Component(i) - vecmath.Abs(rel.Component(i)); d < depth {
				axis, depth = i, d
			}
		}
		faceNormal := box.Axis(axis)
		if rel.Component(axis) < 0 {
			faceNormal = faceNormal.Invert()
		}
		normal = faceNormal.Invert()
		point = centre
		penetration = sphere.Radius + depth
	}

	c := data.addContact(box.body, sphere.body)
	if c == nil {
		return 0
	}
	c.Normal = normal
	c.Point = point
	c.Penetration = penetration
	return 1
}

// penetrationOnAxis returns how far the boxes overlap along axis (negative when separated).
func penetrationOnAxis(one, two *Box, axis, toCentre Vector3) Real {
	oneProject := transformToAxis(one, axis)
	twoProject := transformToAxis(two, axis)
	distance := vecmath.Abs(toCentre.Dot(axis))
	return oneProject + twoProject - distance
}

// tryAxis records axis as the best so far if it overlaps less. It returns false for a separating axis.
// Near-zero axes (parallel edge pairs) are ignored.
func tryAxis(one, two *Box, axis, toCentre Vector3, index int, smallest *Real, smallestCase *int) bool {
	if axis.SquareMagnitude() < 0.0001 {
		return true
	}
	axis = axis.Normalized()

	penetration := penetrationOnAxis(one, two, axis, toCentre)
	if penetration < 0 {
		return false
	}
	if penetration < *smallest {
		*smallest = penetration
		*smallestCase = index
	}
	return true
}

// fillPointFaceBoxBox writes a vertex of two against face best of one.
func fillPointFaceBoxBox(one, two *Box, toCentre Vector3, data *CollisionData, best int, pen Real) int {
	normal := one.Axis(best)
	if normal.Dot(toCentre) > 0 {
		normal = normal.Invert()
	}

	vertex := two.HalfSize
	if two.Axis(0).Dot(normal) < 0 {
		vertex.X = -vertex.X
	}
	if two.Axis(1).Dot(normal) < 0 {
		vertex.Y = -vertex.Y
	}
	if two.Axis(2).Dot(normal) < 0 {
		vertex.Z = -vertex.Z
	}

	c := data.addContact(one.body, two.body)
	if c == nil {
		return 0
	}
	c.Normal = normal
	c.Penetration = pen
	c.Point = two.transform.Transform(vertex)
	return 1
}

// edgeContactPoint returns the midpoint of the closest points between two edges, or the fallback
// edge point when the edges are parallel or the closest points fall outside them.
func edgeContactPoint(pOne, dOne Vector3, oneSize Real, pTwo, dTwo Vector3, twoSize Real, useOne bool) Vector3 {
	smOne := dOne.SquareMagnitude()
	smTwo := dTwo.SquareMagnitude()
	dpOneTwo := dTwo.Dot(dOne)

	toSt := pOne.Sub(pTwo)
	dpStaOne := dOne.Dot(toSt)
	dpStaTwo := dTwo.Dot(toSt)

	fallback := pTwo
	if useOne {
		fallback = pOne
	}

	denom := smOne*smTwo - dpOneTwo*dpOneTwo
	if vecmath.Abs(denom) < 0.0001 {
		return fallback
	}

	mua := (dpOneTwo*dpStaTwo - smTwo*dpStaOne) / denom
	mub := (smOne*dpStaTwo - dpOneTwo*dpStaOne) / denom
	if mua > oneSize || mua < -oneSize || mub > twoSize || mub < -twoSize {
		return fallback
	}

	cOne := pOne.AddScaled(dOne, mua)
	cTwo := pTwo.AddScaled(dTwo, mub)
	return cOne.Scale(0.5).AddScaled(cTwo, 0.5)
}

// boxAndBox runs a separating axis test over the 15 candidate axes and writes a single contact for
// the axis of least penetration.
func boxAndBox(one, two *Box, data *CollisionData) int {
	toCentre := two.Axis(3).Sub(one.Axis(3))

	pen := vecmath.MaxReal
	best := -1

	for i := 0; i < 3; i++ {
		if !tryAxis(one, two, one.Axis(i), toCentre, i, &pen, &best) {
			return 0
		}
	}
	for i := 0; i < 3; i++ {
		if !tryAxis(one, two, two.Axis(i), toCentre, i+3, &pen, &best) {
			return 0
		}
	}
	bestSingleAxis := best

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !tryAxis(one, two, one.Axis(i).Cross(two.Axis(j)), toCentre, 6+i*3+j, &pen, &best) {
				return 0
			}
		}
	}
	if best < 0 {
		return 0
	}

	switch {
	case best < 3:
		return fillPointFaceBoxBox(one, two, toCentre, data, best, pen)
	case best < 6:
		return fillPointFaceBoxBox(two, one, toCentre.Invert(), data, best-3, pen)
	}

	best -= 6
	oneAxisIndex := best / 3
	twoAxisIndex := best % 3
	oneAxis := one.Axis(oneAxisIndex)
	twoAxis := two.Axis(twoAxisIndex)
	axis := oneAxis.Cross(twoAxis).Normalized()
	if axis.Dot(toCentre) > 0 {
		axis = axis.Invert()
	}

	// Find the edges involved: the point in the middle of each edge, in box space.
	ptOnOneEdge := one.HalfSize
	ptOnTwoEdge := two.HalfSize
	oneEdge := [3]*Real{&ptOnOneEdge.X, &ptOnOneEdge.Y, &ptOnOneEdge.Z}
	twoEdge := [3]*Real{&ptOnTwoEdge.X, &ptOnTwoEdge.Y, &ptOnTwoEdge.Z}
	for i := 0; i < 3; i++ {
		if i == oneAxisIndex {
			*oneEdge[i] = 0
		} else if one.Axis(i).Dot(axis) > 0 {
			*oneEdge[i] = -*oneEdge[i]
		}
		if i == twoAxisIndex {
			*twoEdge[i] = 0
		} else if two.Axis(i).Dot(axis) < 0 {
			*twoEdge[i] = -*twoEdge[i]
		}
	}
	ptOnOneEdge = one.transform.Transform(ptOnOneEdge)
	ptOnTwoEdge = two.transform.Transform(ptOnTwoEdge)

	vertex := edgeContactPoint(
		ptOnOneEdge, oneAxis, one.HalfSize.Component(oneAxisIndex),
		ptOnTwoEdge, twoAxis, two.HalfSize.Component(twoAxisIndex),
		bestSingleAxis > 2,
	)

	c := data.addContact(one.body, two.body)
	if c == nil {
		return 0
	}
	c.Normal = axis
	c.Penetration = pen
	c.Point = vertex
	return 1
}
