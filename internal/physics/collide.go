package physics

import (
	"sync/atomic"

	"crystal-engine/internal/vecmath"
)

// ColliderID identifies a collider. IDs increase monotonically and are never reused.
type ColliderID uint64

var lastColliderID atomic.Uint64

// Collider is a collision shape attached to a rigid body: *Sphere, *Box or *Plane.
type Collider interface {
	ID() ColliderID
	Active() bool
	Body() *RigidBody
	// Transform is the collider-to-world transform computed by the last CalculateInternals.
	Transform() Matrix4
	CalculateInternals()
	Axis(i int) Vector3
	primitive() *Primitive
}

// Primitive holds what all collider shapes share.
type Primitive struct {
	id        ColliderID
	active    bool
	body      *RigidBody
	transform Matrix4

	// Relative is the collider's offset from its body.
	Relative Matrix4
}

func newPrimitive(body *RigidBody) Primitive {
	return Primitive{
		id:        ColliderID(lastColliderID.Add(1)),
		active:    true,
		body:      body,
		transform: vecmath.Identity4(),
		Relative:  vecmath.Identity4(),
	}
}

func (p *Primitive) ID() ColliderID        { return p.id }
func (p *Primitive) Active() bool          { return p.active }
func (p *Primitive) Body() *RigidBody      { return p.body }
func (p *Primitive) Transform() Matrix4    { return p.transform }
func (p *Primitive) primitive() *Primitive { return p }

// Axis returns column i of the transform: the local axes for 0-2, the world position for 3.
func (p *Primitive) Axis(i int) Vector3 {
	return p.transform.AxisVector(i)
}

// CalculateInternals refreshes the world transform from the body.
func (p *Primitive) CalculateInternals() {
	if p.body == nil {
		p.transform = p.Relative
		return
	}
	p.transform = p.body.Transform().Mul(p.Relative)
}

// Sphere is a ball of Radius centred on the collider transform.
type Sphere struct {
	Primitive
	Radius Real
}

func NewSphere(body *RigidBody, radius Real) *Sphere {
	s := &Sphere{Primitive: newPrimitive(body), Radius: radius}
	s.CalculateInternals()
	return s
}

// Box is an oriented box with HalfSize extents along its local axes.
type Box struct {
	Primitive
	HalfSize Vector3
}

func NewBox(body *RigidBody, halfSize Vector3) *Box {
	b := &Box{Primitive: newPrimitive(body), HalfSize: halfSize}
	b.CalculateInternals()
	return b
}

// vertex returns corner i (0-7) of the box in world space.
func (b *Box) vertex(i int) Vector3 {
	v := b.HalfSize
	if i&1 != 0 {
		v.X = -v.X
	}
	if i&2 != 0 {
		v.Y = -v.Y
	}
	if i&4 != 0 {
		v.Z = -v.Z
	}
	return b.transform.Transform(v)
}

// Plane is the world-space half-space {p : Normal·p <= Offset}. Its body, if any, only serves as the
// immovable partner in contacts; the plane itself never moves.
type Plane struct {
	Primitive
	Normal Vector3
	Offset Real
}

func NewPlane(body *RigidBody, normal Vector3, offset Real) *Plane {
	p := &Plane{Primitive: newPrimitive(body), Normal: normal.Normalized(), Offset: offset}
	p.CalculateInternals()
	return p
}

// CollisionData is the per-frame contact buffer filled by the narrow phase, plus the friction and
// restitution copied into every new contact.
type CollisionData struct {
	contacts []Contact
	used     int

	Friction    Real
	Restitution Real
	// Tolerance is carried with the frame settings but not read by the narrow phase: only touching or
	// penetrating features produce contacts.
	Tolerance Real
}

// NewCollisionData returns a buffer with room for max contacts.
func NewCollisionData(max int) *CollisionData {
	return &CollisionData{contacts: make([]Contact, max)}
}

// Reset empties the buffer, growing it to max contacts if needed.
func (d *CollisionData) Reset(max int) {
	if max > len(d.contacts) {
		d.contacts = make([]Contact, max)
	}
	d.contacts = d.contacts[:max]
	d.used = 0
}

// ContactsLeft is the remaining capacity.
func (d *CollisionData) ContactsLeft() int {
	return len(d.contacts) - d.used
}

// Contacts returns the contacts written since the last Reset.
func (d *CollisionData) Contacts() []Contact {
	return d.contacts[:d.used]
}

func (d *CollisionData) Len() int {
	return d.used
}

// addContact claims the next free slot. It returns nil when the buffer is full.
func (d *CollisionData) addContact(one, two *RigidBody) *Contact {
	if d.used >= len(d.contacts) {
		return nil
	}
	c := &d.contacts[d.used]
	d.used++
	*c = Contact{
		Bodies:      [2]*RigidBody{one, two},
		Friction:    d.Friction,
		Restitution: d.Restitution,
	}
	return c
}

// transformToAxis projects the box half-extents onto axis.
func transformToAxis(box *Box, axis Vector3) Real {
	return box.HalfSize.X*vecmath.Abs(axis.Dot(box.Axis(0))) +
		box.HalfSize.Y*vecmath.Abs(axis.Dot(box.Axis(1))) +
		box.HalfSize.Z*vecmath.Abs(axis.Dot(box.Axis(2)))
}
