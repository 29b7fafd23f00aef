package physics

import "crystal-engine/internal/vecmath"

const (
	// contactVelocityLimit is the closing speed below which restitution is ignored, so resting
	// contacts do not jitter.
	contactVelocityLimit Real = 0.25
	// angularLimit bounds the rotation used to resolve penetration, as a fraction of the lever arm.
	angularLimit Real = 0.2
)

// Contact is two bodies touching at Point. Normal points from Bodies[1] towards Bodies[0].
// Bodies[1] may be nil for contacts with the immovable world.
type Contact struct {
	Bodies      [2]*RigidBody
	Friction    Real
	Restitution Real
	Point       Vector3
	Normal      Vector3
	Penetration Real

	contactToWorld          Matrix3
	contactVelocity         Vector3
	desiredDeltaVelocity    Real
	relativeContactPosition [2]Vector3
}

// DesiredDeltaVelocity is the closing-speed change the resolver will aim for. It is valid after
// the contact has been prepared.
func (c *Contact) DesiredDeltaVelocity() Real {
	return c.desiredDeltaVelocity
}

// ContactVelocity is the closing velocity in contact coordinates (x along the normal).
func (c *Contact) ContactVelocity() Vector3 {
	return c.contactVelocity
}

// movable reports whether impulses can change body i.
func (c *Contact) movable(i int) bool {
	return c.Bodies[i] != nil && c.Bodies[i].inverseMass > 0
}

func (c *Contact) inverseMass(i int) Real {
	if !c.movable(i) {
		return 0
	}
	return c.Bodies[i].inverseMass
}

func (c *Contact) inverseInertiaTensor(i int) Matrix3 {
	if !c.movable(i) {
		return Matrix3{}
	}
	return c.Bodies[i].inverseInertiaTensorWorld
}

func (c *Contact) swapBodies() {
	c.Normal = c.Normal.Invert()
	c.Bodies[0], c.Bodies[1] = c.Bodies[1], c.Bodies[0]
}

// matchAwakeState wakes a sleeping body touched by an awake one.
func (c *Contact) matchAwakeState() {
	if !c.movable(0) || !c.movable(1) {
		return
	}
	a0, a1 := c.Bodies[0].awake, c.Bodies[1].awake
	if a0 == a1 {
		return
	}
	if a0 {
		c.Bodies[1].SetAwake(true)
	} else {
		c.Bodies[0].SetAwake(true)
	}
}

// calculateContactBasis builds an orthonormal basis with the contact normal as the x axis.
func (c *Contact) calculateContactBasis() {
	n := c.Normal
	var t0, t1 Vector3
	if vecmath.Abs(n.X) > vecmath.Abs(n.Y) {
		s := 1 / vecmath.Sqrt(n.Z*n.Z+n.X*n.X)
		t0 = Vector3{X: n.Z * s, Y: 0, Z: -n.X * s}
		t1 = Vector3{
			X: n.Y * t0.X,
			Y: n.Z*t0.X - n.X*t0.Z,
			Z: -n.Y * t0.X,
		}
	} else {
		s := 1 / vecmath.Sqrt(n.Z*n.Z+n.Y*n.Y)
		t0 = Vector3{X: 0, Y: -n.Z * s, Z: n.Y * s}
		t1 = Vector3{
			X: n.Y*t0.Z - n.Z*t0.Y,
			Y: -n.X * t0.Z,
			Z: n.X * t0.Y,
		}
	}
	c.contactToWorld = vecmath.Components3(n, t0, t1)
}

// localVelocity is the velocity of the contact point on body i in contact coordinates, plus the
// planar velocity its last-frame acceleration would add.
func (c *Contact) localVelocity(i int, duration Real) Vector3 {
	b := c.Bodies[i]
	velocity := b.rotation.Cross(c.relativeContactPosition[i]).Add(b.velocity)
	contactVelocity := c.contactToWorld.TransformTranspose(velocity)

	accVelocity := c.contactToWorld.TransformTranspose(b.lastFrameAcceleration.Scale(duration))
	accVelocity.X = 0
	return contactVelocity.Add(accVelocity)
}

// calculateDesiredDeltaVelocity sets the target closing-speed change. Velocity gained from the
// last frame's acceleration is not bounced back, so resting contacts stay at rest.
func (c *Contact) calculateDesiredDeltaVelocity(duration Real) {
	var velocityFromAcc Real
	if b := c.Bodies[0]; b != nil && b.awake {
		velocityFromAcc += b.lastFrameAcceleration.Scale(duration).Dot(c.Normal)
	}
	if b := c.Bodies[1]; b != nil && b.awake {
		velocityFromAcc -= b.lastFrameAcceleration.Scale(duration).Dot(c.Normal)
	}

	restitution := c.Restitution
	if vecmath.Abs(c.contactVelocity.X) < contactVelocityLimit {
		restitution = 0
	}
	c.desiredDeltaVelocity = -c.contactVelocity.X - restitution*(c.contactVelocity.X-velocityFromAcc)
}

// calculateInternals prepares the contact for resolution.
func (c *Contact) calculateInternals(duration Real) {
	if c.Bodies[0] == nil {
		c.swapBodies()
	}
	c.calculateContactBasis()

	c.relativeContactPosition[0] = c.Point.Sub(c.Bodies[0].position)
	c.contactVelocity = c.localVelocity(0, duration)
	if c.Bodies[1] != nil {
		c.relativeContactPosition[1] = c.Point.Sub(c.Bodies[1].position)
		c.contactVelocity = c.contactVelocity.Sub(c.localVelocity(1, duration))
	}
	c.calculateDesiredDeltaVelocity(duration)
}

func (c *Contact) frictionlessImpulse(iit [2]Matrix3) Vector3 {
	deltaVelWorld := c.relativeContactPosition[0].Cross(c.Normal)
	deltaVelWorld = iit[0].Transform(deltaVelWorld)
	deltaVelWorld = deltaVelWorld.Cross(c.relativeContactPosition[0])
	deltaVelocity := deltaVelWorld.Dot(c.Normal) + c.inverseMass(0)

	if c.Bodies[1] != nil {
		deltaVelWorld = c.relativeContactPosition[1].Cross(c.Normal)
		deltaVelWorld = iit[1].Transform(deltaVelWorld)
		deltaVelWorld = deltaVelWorld.Cross(c.relativeContactPosition[1])
		deltaVelocity += deltaVelWorld.Dot(c.Normal) + c.inverseMass(1)
	}
	if deltaVelocity <= 0 {
		return Vector3{}
	}
	return Vector3{X: c.desiredDeltaVelocity / deltaVelocity}
}

func (c *Contact) frictionImpulse(iit [2]Matrix3) Vector3 {
	inverseMass := c.inverseMass(0)

	impulseToTorque := vecmath.SkewSymmetric3(c.relativeContactPosition[0])
	deltaVelWorld := impulseToTorque.Mul(iit[0]).Mul(impulseToTorque).Scale(-1)

	if c.Bodies[1] != nil {
		impulseToTorque = vecmath.SkewSymmetric3(c.relativeContactPosition[1])
		deltaVelWorld2 := impulseToTorque.Mul(iit[1]).Mul(impulseToTorque).Scale(-1)
		deltaVelWorld = deltaVelWorld.Add(deltaVelWorld2)
		inverseMass += c.inverseMass(1)
	}

	deltaVelocity := c.contactToWorld.Transpose().Mul(deltaVelWorld).Mul(c.contactToWorld)
	deltaVelocity.Data[0] += inverseMass
	deltaVelocity.Data[4] += inverseMass
	deltaVelocity.Data[8] += inverseMass

	impulseMatrix, ok := deltaVelocity.Inverse()
	if !ok {
		return c.frictionlessImpulse(iit)
	}

	velKill := Vector3{X: c.desiredDeltaVelocity, Y: -c.contactVelocity.Y, Z: -c.contactVelocity.Z}
	impulse := impulseMatrix.Transform(velKill)

	planarImpulse := vecmath.Sqrt(impulse.Y*impulse.Y + impulse.Z*impulse.Z)
	if planarImpulse > impulse.X*c.Friction {
		// Dynamic friction: clamp to the friction cone.
		impulse.Y /= planarImpulse
		impulse.Z /= planarImpulse
		impulse.X = deltaVelocity.Data[0] +
			deltaVelocity.Data[1]*c.Friction*impulse.Y +
			deltaVelocity.Data[2]*c.Friction*impulse.Z
		impulse.X = c.desiredDeltaVelocity / impulse.X
		impulse.Y *= c.Friction * impulse.X
		impulse.Z *= c.Friction * impulse.X
	}
	return impulse
}

// applyVelocityChange applies the impulse for this contact and returns the velocity and rotation
// change of each body.
func (c *Contact) applyVelocityChange() (velocityChange, rotationChange [2]Vector3) {
	iit := [2]Matrix3{c.inverseInertiaTensor(0), c.inverseInertiaTensor(1)}

	var impulseContact Vector3
	if c.Friction == 0 {
		impulseContact = c.frictionlessImpulse(iit)
	} else {
		impulseContact = c.frictionImpulse(iit)
	}
	impulse := c.contactToWorld.Transform(impulseContact)

	if c.movable(0) {
		rotationChange[0] = iit[0].Transform(c.relativeContactPosition[0].Cross(impulse))
		velocityChange[0] = impulse.Scale(c.inverseMass(0))
		c.Bodies[0].AddVelocity(velocityChange[0])
		c.Bodies[0].AddRotation(rotationChange[0])
	}
	if c.movable(1) {
		rotationChange[1] = iit[1].Transform(impulse.Cross(c.relativeContactPosition[1]))
		velocityChange[1] = impulse.Scale(-c.inverseMass(1))
		c.Bodies[1].AddVelocity(velocityChange[1])
		c.Bodies[1].AddRotation(rotationChange[1])
	}
	return velocityChange, rotationChange
}

// applyPositionChange moves the bodies apart by penetration, sharing the movement between linear
// and angular motion in proportion to inertia.
func (c *Contact) applyPositionChange(penetration Real) (linearChange, angularChange [2]Vector3) {
	var angularInertia, linearInertia [2]Real
	var totalInertia Real
	iit := [2]Matrix3{c.inverseInertiaTensor(0), c.inverseInertiaTensor(1)}

	for i := 0; i < 2; i++ {
		if !c.movable(i) {
			continue
		}
		angularInertiaWorld := c.relativeContactPosition[i].Cross(c.Normal)
		angularInertiaWorld = iit[i].Transform(angularInertiaWorld)
		angularInertiaWorld = angularInertiaWorld.Cross(c.relativeContactPosition[i])
		angularInertia[i] = angularInertiaWorld.Dot(c.Normal)
		linearInertia[i] = c.inverseMass(i)
		totalInertia += linearInertia[i] + angularInertia[i]
	}
	if totalInertia <= 0 {
		return linearChange, angularChange
	}

	for i := 0; i < 2; i++ {
		if !c.movable(i) {
			continue
		}
		sign := Real(1)
		if i == 1 {
			sign = -1
		}
		angularMove := sign * penetration * (angularInertia[i] / totalInertia)
		linearMove := sign * penetration * (linearInertia[i] / totalInertia)

		projection := c.relativeContactPosition[i].AddScaled(c.Normal, -c.relativeContactPosition[i].Dot(c.Normal))
		maxMagnitude := angularLimit * projection.Magnitude()
		if angularMove < -maxMagnitude {
			totalMove := angularMove + linearMove
			angularMove = -maxMagnitude
			linearMove = totalMove - angularMove
		} else if angularMove > maxMagnitude {
			totalMove := angularMove + linearMove
			angularMove = maxMagnitude
			linearMove = totalMove - angularMove
		}

		if angularMove != 0 && angularInertia[i] != 0 {
			targetAngularDirection := c.relativeContactPosition[i].Cross(c.Normal)
			angularChange[i] = iit[i].Transform(targetAngularDirection).Scale(angularMove / angularInertia[i])
		}
		linearChange[i] = c.Normal.Scale(linearMove)

		b := c.Bodies[i]
		b.position = b.position.AddScaled(c.Normal, linearMove)
		b.orientation = b.orientation.AddScaledVector(angularChange[i], 1)
		if !b.awake {
			b.CalculateDerivedData()
		}
	}
	return linearChange, angularChange
}

// ContactResolver resolves a batch of contacts: penetration first, then velocity, each pass fixing
// the worst contact and propagating the change to contacts that share a body.
type ContactResolver struct {
	VelocityIterations int
	PositionIterations int
	VelocityEpsilon    Real
	PositionEpsilon    Real

	VelocityIterationsUsed int
	PositionIterationsUsed int
}

// NewContactResolver uses iterations for both passes and 0.01 for both epsilons.
func NewContactResolver(iterations int) *ContactResolver {
	return &ContactResolver{
		VelocityIterations: iterations,
		PositionIterations: iterations,
		VelocityEpsilon:    0.01,
		PositionEpsilon:    0.01,
	}
}

// SetIterations sets both iteration caps.
func (r *ContactResolver) SetIterations(velocity, position int) {
	r.VelocityIterations = velocity
	r.PositionIterations = position
}

// SetEpsilon sets the velocity and penetration below which contacts are left alone.
func (r *ContactResolver) SetEpsilon(velocity, position Real) {
	r.VelocityEpsilon = velocity
	r.PositionEpsilon = position
}

// IsValid reports whether the resolver has iterations to spend and non-negative epsilons.
func (r *ContactResolver) IsValid() bool {
	return r.VelocityIterations > 0 && r.PositionIterations > 0 &&
		r.VelocityEpsilon >= 0 && r.PositionEpsilon >= 0
}

// ResolveContacts resolves contacts in place for a step of duration seconds. An empty batch or a
// resolver with no iterations is a no-op.
func (r *ContactResolver) ResolveContacts(contacts []Contact, duration Real) {
	r.VelocityIterationsUsed = 0
	r.PositionIterationsUsed = 0
	if len(contacts) == 0 || !r.IsValid() {
		return
	}
	for i := range contacts {
		contacts[i].calculateInternals(duration)
	}
	r.adjustPositions(contacts)
	r.adjustVelocities(contacts, duration)
}

func (r *ContactResolver) adjustPositions(contacts []Contact) {
	for r.PositionIterationsUsed < r.PositionIterations {
		worst := r.PositionEpsilon
		index := -1
		for i := range contacts {
			if contacts[i].Penetration > worst {
				worst = contacts[i].Penetration
				index = i
			}
		}
		if index < 0 {
			break
		}

		resolved := &contacts[index]
		resolved.matchAwakeState()
		linearChange, angularChange := resolved.applyPositionChange(worst)

		for i := range contacts {
			c := &contacts[i]
			for b := 0; b < 2; b++ {
				if c.Bodies[b] == nil {
					continue
				}
				for d := 0; d < 2; d++ {
					if c.Bodies[b] != resolved.Bodies[d] {
						continue
					}
					delta := linearChange[d].Add(angularChange[d].Cross(c.relativeContactPosition[b]))
					if b == 1 {
						c.Penetration += delta.Dot(c.Normal)
					} else {
						c.Penetration -= delta.Dot(c.Normal)
					}
				}
			}
		}
		r.PositionIterationsUsed++
	}
}

func (r *ContactResolver) adjustVelocities(contacts []Contact, duration Real) {
	for r.VelocityIterationsUsed < r.VelocityIterations {
		worst := r.VelocityEpsilon
		index := -1
		for i := range contacts {
			if contacts[i].desiredDeltaVelocity > worst {
				worst = contacts[i].desiredDeltaVelocity
				index = i
			}
		}
		if index < 0 {
			break
		}

		resolved := &contacts[index]
		resolved.matchAwakeState()
		velocityChange, rotationChange := resolved.applyVelocityChange()

		for i := range contacts {
			c := &contacts[i]
			for b := 0; b < 2; b++ {
				if c.Bodies[b] == nil {
					continue
				}
				for d := 0; d < 2; d++ {
					if c.Bodies[b] != resolved.Bodies[d] {
						continue
					}
					delta := velocityChange[d].Add(rotationChange[d].Cross(c.relativeContactPosition[b]))
					change := c.contactToWorld.TransformTranspose(delta)
					if b == 1 {
						c.contactVelocity = c.contactVelocity.Sub(change)
					} else {
						c.contactVelocity = c.contactVelocity.Add(change)
					}
					c.calculateDesiredDeltaVelocity(duration)
				}
			}
		}
		r.VelocityIterationsUsed++
	}
}
