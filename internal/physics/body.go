package physics

import (
	"sync/atomic"

	"crystal-engine/internal/vecmath"

	"github.com/pkg/errors"
)

type (
	Real       = vecmath.Real
	Vector3    = vecmath.Vector3
	Matrix3    = vecmath.Matrix3
	Matrix4    = vecmath.Matrix4
	Quaternion = vecmath.Quaternion
)

// ErrInvalidArgument is returned (wrapped) for construction parameters the engine cannot simulate,
// such as a zero mass or a singular inertia tensor.
var ErrInvalidArgument = errors.New("invalid argument")

// DefaultSleepEpsilon is the motion level below which a sleep-enabled body is put to sleep.
const DefaultSleepEpsilon Real = 0.3

// BodyID identifies a rigid body. IDs increase monotonically and are never reused.
type BodyID uint64

var lastBodyID atomic.Uint64

// RigidBody is a simulated body with linear and angular state. A body is owned by at most one World;
// game code keeps the pointer (or the ID) only as a non-owning reference.
type RigidBody struct {
	id BodyID

	inverseMass    Real
	linearDamping  Real
	angularDamping Real

	position     Vector3
	velocity     Vector3
	acceleration Vector3
	forceAccum   Vector3

	orientation Quaternion
	rotation    Vector3
	torqueAccum Vector3

	inverseInertiaTensor      Matrix3
	inverseInertiaTensorWorld Matrix3

	transform             Matrix4
	lastFrameAcceleration Vector3

	awake        bool
	canSleep     bool
	motion       Real
	sleepEpsilon Real

	active bool

	// Tag is a free-form label for game logic (e.g. "Bullet").
	Tag string
	// LinearFactor scales the linear acceleration applied during integration.
	LinearFactor Real
	// AngularFactor scales the angular acceleration applied during integration.
	AngularFactor Real
}

// NewRigidBody returns an awake, active body of unit mass and unit inertia at the origin, with no damping.
func NewRigidBody() *RigidBody {
	b := &RigidBody{
		id:                   BodyID(lastBodyID.Add(1)),
		inverseMass:          1,
		linearDamping:        1,
		angularDamping:       1,
		orientation:          vecmath.IdentityQuaternion(),
		inverseInertiaTensor: vecmath.Identity3(),
		sleepEpsilon:         DefaultSleepEpsilon,
		active:               true,
		LinearFactor:         1,
		AngularFactor:        1,
	}
	b.SetAwake(true)
	b.CalculateDerivedData()
	return b
}

// NewStaticBody returns a body with infinite mass and infinite rotational inertia.
// Forces and impulses never move it.
func NewStaticBody(position Vector3) *RigidBody {
	b := NewRigidBody()
	b.inverseMass = 0
	b.inverseInertiaTensor = Matrix3{}
	b.position = position
	b.CalculateDerivedData()
	return b
}

// ID returns the body's identity.
func (b *RigidBody) ID() BodyID {
	return b.id
}

// Active reports whether the body takes part in the simulation. Deleted bodies stay resident but inactive
// until the owning world compacts its lists.
func (b *RigidBody) Active() bool {
	return b.active
}

// CalculateDerivedData renormalises the orientation and rebuilds the transform matrix and the
// world-space inverse inertia tensor.
func (b *RigidBody) CalculateDerivedData() {
	b.orientation = b.orientation.Normalized()
	b.transform = vecmath.Transform4(b.orientation, b.position)
	b.inverseInertiaTensorWorld = transformInertiaTensor(b.inverseInertiaTensor, b.transform)
}

// transformInertiaTensor returns R * iitBody * Rᵀ for the rotation part of m.
func transformInertiaTensor(iitBody Matrix3, m Matrix4) Matrix3 {
	r := m.Rotation()
	return r.Mul(iitBody).Mul(r.Transpose())
}

// Integrate advances the body by duration seconds with semi-implicit Euler, refreshes the derived
// data and clears the accumulators. Sleeping bodies only have their accumulators cleared.
func (b *RigidBody) Integrate(duration Real) {
	if !b.awake {
		b.ClearAccumulators()
		return
	}

	b.lastFrameAcceleration = b.acceleration.AddScaled(b.forceAccum, b.inverseMass)

	b.velocity = b.velocity.AddScaled(b.lastFrameAcceleration.Scale(b.LinearFactor), duration)
	b.velocity = b.velocity.Scale(vecmath.Pow(b.linearDamping, duration))
	b.position = b.position.AddScaled(b.velocity, duration)

	angularAcceleration := b.inverseInertiaTensorWorld.Transform(b.torqueAccum)
	b.rotation = b.rotation.AddScaled(angularAcceleration.Scale(b.AngularFactor), duration)
	b.rotation = b.rotation.Scale(vecmath.Pow(b.angularDamping, duration))
	b.orientation = b.orientation.AddScaledVector(b.rotation, duration)

	b.CalculateDerivedData()
	b.ClearAccumulators()

	if b.canSleep {
		current := b.velocity.Dot(b.velocity) + b.rotation.Dot(b.rotation)
		bias := vecmath.Pow(0.5, duration)
		b.motion = bias*b.motion + (1-bias)*current

		if b.motion < b.sleepEpsilon {
			b.SetAwake(false)
		} else if b.motion > 10*b.sleepEpsilon {
			b.motion = 10 * b.sleepEpsilon
		}
	}
}

// ClearAccumulators zeroes the force and torque accumulators.
func (b *RigidBody) ClearAccumulators() {
	b.forceAccum = Vector3{}
	b.torqueAccum = Vector3{}
}

// AddForce adds a force through the centre of mass. The body wakes up.
func (b *RigidBody) AddForce(force Vector3) {
	b.forceAccum = b.forceAccum.Add(force)
	b.wake()
}

// AddTorque adds a torque in world space. The body wakes up.
func (b *RigidBody) AddTorque(torque Vector3) {
	b.torqueAccum = b.torqueAccum.Add(torque)
	b.wake()
}

// AddForceAtPoint adds a force applied at a world-space point, splitting it into a force through the
// centre of mass and the torque (point - position) × force.
func (b *RigidBody) AddForceAtPoint(force, point Vector3) {
	b.forceAccum = b.forceAccum.Add(force)
	b.torqueAccum = b.torqueAccum.Add(point.Sub(b.position).Cross(force))
	b.wake()
}

// wake puts a sleeping body back in motion with a fresh motion estimate, so it is not sent straight
// back to sleep by the next Integrate.
func (b *RigidBody) wake() {
	if !b.awake {
		b.SetAwake(true)
	}
}

// AddForceAtBodyPoint is AddForceAtPoint with the point given in body space.
func (b *RigidBody) AddForceAtBodyPoint(force, point Vector3) {
	b.AddForceAtPoint(force, b.PointInWorldSpace(point))
}

func (b *RigidBody) PointInLocalSpace(point Vector3) Vector3 {
	return b.transform.TransformInverse(point)
}

func (b *RigidBody) PointInWorldSpace(point Vector3) Vector3 {
	return b.transform.Transform(point)
}

func (b *RigidBody) DirectionInLocalSpace(direction Vector3) Vector3 {
	return b.transform.TransformInverseDirection(direction)
}

func (b *RigidBody) DirectionInWorldSpace(direction Vector3) Vector3 {
	return b.transform.TransformDirection(direction)
}

// SetMass sets the mass. A zero mass cannot be represented; use SetInverseMass(0) for an immovable body.
func (b *RigidBody) SetMass(mass Real) error {
	if mass == 0 {
		return errors.Wrap(ErrInvalidArgument, "rigid body mass must be non-zero")
	}
	b.inverseMass = 1 / mass
	return nil
}

// Mass returns the mass, or MaxReal for an infinite-mass body.
func (b *RigidBody) Mass() Real {
	if b.inverseMass == 0 {
		return vecmath.MaxReal
	}
	return 1 / b.inverseMass
}

func (b *RigidBody) SetInverseMass(inverseMass Real) {
	b.inverseMass = inverseMass
}

func (b *RigidBody) InverseMass() Real {
	return b.inverseMass
}

// HasFiniteMass reports whether forces and impulses can move the body.
func (b *RigidBody) HasFiniteMass() bool {
	return b.inverseMass > 0
}

// SetInertiaTensor sets the body-space inertia tensor. The tensor must be invertible.
func (b *RigidBody) SetInertiaTensor(inertiaTensor Matrix3) error {
	inv, ok := inertiaTensor.Inverse()
	if !ok {
		return errors.Wrap(ErrInvalidArgument, "inertia tensor is singular")
	}
	b.inverseInertiaTensor = inv
	b.inverseInertiaTensorWorld = transformInertiaTensor(inv, b.transform)
	return nil
}

// InertiaTensor returns the body-space inertia tensor. A body with zero inverse inertia returns
// the zero matrix.
func (b *RigidBody) InertiaTensor() Matrix3 {
	it, ok := b.inverseInertiaTensor.Inverse()
	if !ok {
		return Matrix3{}
	}
	return it
}

// InertiaTensorWorld returns the world-space inertia tensor.
func (b *RigidBody) InertiaTensorWorld() Matrix3 {
	it, ok := b.inverseInertiaTensorWorld.Inverse()
	if !ok {
		return Matrix3{}
	}
	return it
}

// SetInverseInertiaTensor sets the body-space inverse inertia tensor directly. A zero matrix locks rotation.
func (b *RigidBody) SetInverseInertiaTensor(inverseInertiaTensor Matrix3) {
	b.inverseInertiaTensor = inverseInertiaTensor
	b.inverseInertiaTensorWorld = transformInertiaTensor(inverseInertiaTensor, b.transform)
}

func (b *RigidBody) InverseInertiaTensor() Matrix3 {
	return b.inverseInertiaTensor
}

func (b *RigidBody) InverseInertiaTensorWorld() Matrix3 {
	return b.inverseInertiaTensorWorld
}

// SetDamping sets both damping factors. 1 means no damping; values must be in (0, 1].
func (b *RigidBody) SetDamping(linear, angular Real) {
	b.linearDamping = linear
	b.angularDamping = angular
}

func (b *RigidBody) SetLinearDamping(d Real)  { b.linearDamping = d }
func (b *RigidBody) LinearDamping() Real      { return b.linearDamping }
func (b *RigidBody) SetAngularDamping(d Real) { b.angularDamping = d }
func (b *RigidBody) AngularDamping() Real     { return b.angularDamping }

func (b *RigidBody) SetPosition(p Vector3) {
	b.position = p
}

func (b *RigidBody) Position() Vector3 {
	return b.position
}

// SetOrientation sets the orientation; it is normalised (a zero quaternion becomes the identity).
func (b *RigidBody) SetOrientation(q Quaternion) {
	b.orientation = q.Normalized()
}

func (b *RigidBody) Orientation() Quaternion {
	return b.orientation
}

// Transform returns the body-to-world transform computed by the last CalculateDerivedData.
func (b *RigidBody) Transform() Matrix4 {
	return b.transform
}

func (b *RigidBody) SetVelocity(v Vector3) {
	b.velocity = v
}

func (b *RigidBody) Velocity() Vector3 {
	return b.velocity
}

func (b *RigidBody) AddVelocity(delta Vector3) {
	b.velocity = b.velocity.Add(delta)
}

// SetRotation sets the angular velocity (world space, radians per second).
func (b *RigidBody) SetRotation(r Vector3) {
	b.rotation = r
}

func (b *RigidBody) Rotation() Vector3 {
	return b.rotation
}

func (b *RigidBody) AddRotation(delta Vector3) {
	b.rotation = b.rotation.Add(delta)
}

// SetAcceleration sets a constant acceleration (e.g. gravity) applied every step regardless of mass.
func (b *RigidBody) SetAcceleration(a Vector3) {
	b.acceleration = a
}

func (b *RigidBody) Acceleration() Vector3 {
	return b.acceleration
}

// LastFrameAcceleration is the linear acceleration used by the most recent integration step.
func (b *RigidBody) LastFrameAcceleration() Vector3 {
	return b.lastFrameAcceleration
}

// ForceAccum returns the force accumulated since the last clear.
func (b *RigidBody) ForceAccum() Vector3 {
	return b.forceAccum
}

// TorqueAccum returns the torque accumulated since the last clear.
func (b *RigidBody) TorqueAccum() Vector3 {
	return b.torqueAccum
}

func (b *RigidBody) Awake() bool {
	return b.awake
}

// SetAwake wakes the body (seeding its motion above the sleep threshold) or puts it to sleep,
// which zeroes its linear and angular velocity.
func (b *RigidBody) SetAwake(awake bool) {
	if awake {
		b.awake = true
		b.motion = b.sleepEpsilon * 2
		return
	}
	b.awake = false
	b.velocity = Vector3{}
	b.rotation = Vector3{}
}

func (b *RigidBody) CanSleep() bool {
	return b.canSleep
}

// SetCanSleep enables or disables sleeping. Disabling it wakes a sleeping body.
func (b *RigidBody) SetCanSleep(canSleep bool) {
	b.canSleep = canSleep
	if !canSleep && !b.awake {
		b.SetAwake(true)
	}
}

// SetSleepEpsilon sets the motion threshold used by this body's sleep check.
func (b *RigidBody) SetSleepEpsilon(eps Real) {
	b.sleepEpsilon = eps
}

// Motion returns the recency-weighted kinetic measure used by the sleep check.
func (b *RigidBody) Motion() Real {
	return b.motion
}
