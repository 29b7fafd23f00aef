package particles

// Link joins two particles and generates a contact when the constraint between them is violated.
type Link struct {
	Particles [2]*Particle
}

func (l *Link) currentLength() Real {
	return l.Particles[0].Position().Sub(l.Particles[1].Position()).Magnitude()
}

// Cable stops two particles from moving further apart than MaxLength, bouncing with Restitution.
type Cable struct {
	Link
	MaxLength   Real
	Restitution Real
}

func NewCable(a, b *Particle, maxLength, restitution Real) *Cable {
	return &Cable{Link: Link{[2]*Particle{a, b}}, MaxLength: maxLength, Restitution: restitution}
}

func (c *Cable) AddContact(contacts []Contact) int {
	if len(contacts) == 0 {
		return 0
	}
	length := c.currentLength()
	if length < c.MaxLength {
		return 0
	}
	contacts[0] = Contact{
		Particles:   c.Particles,
		Normal:      c.Particles[1].Position().Sub(c.Particles[0].Position()).Normalized(),
		Penetration: length - c.MaxLength,
		Restitution: c.Restitution,
	}
	return 1
}

// Rod keeps two particles exactly Length apart.
type Rod struct {
	Link
	Length Real
}

func NewRod(a, b *Particle, length Real) *Rod {
	return &Rod{Link: Link{[2]*Particle{a, b}}, Length: length}
}

func (r *Rod) AddContact(contacts []Contact) int {
	if len(contacts) == 0 {
		return 0
	}
	current := r.currentLength()
	if current == r.Length {
		return 0
	}

	normal := r.Particles[1].Position().Sub(r.Particles[0].Position()).Normalized()
	penetration := current - r.Length
	if current < r.Length {
		normal = normal.Invert()
		penetration = r.Length - current
	}
	contacts[0] = Contact{
		Particles:   r.Particles,
		Normal:      normal,
		Penetration: penetration,
	}
	return 1
}
