package particles

import "crystal-engine/internal/vecmath"

// Contact is two particles touching, or one particle against immovable scenery (Particles[1] nil).
// Normal points from Particles[1] towards Particles[0].
type Contact struct {
	Particles   [2]*Particle
	Restitution Real
	Normal      Vector3
	Penetration Real

	movement [2]Vector3
}

// ContactGenerator writes contacts into the given slice, never more than its length, and returns
// how many it wrote.
type ContactGenerator interface {
	AddContact(contacts []Contact) int
}

// SeparatingVelocity is the relative velocity along the normal. Negative means closing.
func (c *Contact) SeparatingVelocity() Real {
	rel := c.Particles[0].Velocity()
	if c.Particles[1] != nil {
		rel = rel.Sub(c.Particles[1].Velocity())
	}
	return rel.Dot(c.Normal)
}

func (c *Contact) totalInverseMass() Real {
	total := c.Particles[0].InverseMass()
	if c.Particles[1] != nil {
		total += c.Particles[1].InverseMass()
	}
	return total
}

func (c *Contact) resolve(duration Real) {
	c.resolveVelocity(duration)
	c.resolveInterpenetration()
}

// resolveVelocity applies the restitution impulse. Closing velocity built up by acceleration
// alone during the last step is not bounced back, so resting particles stay at rest.
func (c *Contact) resolveVelocity(duration Real) {
	separating := c.SeparatingVelocity()
	if separating > 0 {
		return
	}

	newSeparating := -c.Restitution * separating

	accCaused := c.Particles[0].Acceleration()
	if c.Particles[1] != nil {
		accCaused = accCaused.Sub(c.Particles[1].Acceleration())
	}
	accCausedSeparating := accCaused.Dot(c.Normal) * duration
	if accCausedSeparating < 0 {
		newSeparating += c.Restitution * accCausedSeparating
		newSeparating = max(newSeparating, 0)
	}

	totalInverseMass := c.totalInverseMass()
	if totalInverseMass <= 0 {
		return
	}
	impulse := c.Normal.Scale((newSeparating - separating) / totalInverseMass)

	p0 := c.Particles[0]
	p0.SetVelocity(p0.Velocity().AddScaled(impulse, p0.InverseMass()))
	if p1 := c.Particles[1]; p1 != nil {
		p1.SetVelocity(p1.Velocity().AddScaled(impulse, -p1.InverseMass()))
	}
}

func (c *Contact) resolveInterpenetration() {
	c.movement = [2]Vector3{}
	if c.Penetration <= 0 {
		return
	}
	totalInverseMass := c.totalInverseMass()
	if totalInverseMass <= 0 {
		return
	}
	movePerIMass := c.Normal.Scale(c.Penetration / totalInverseMass)

	p0 := c.Particles[0]
	c.movement[0] = movePerIMass.Scale(p0.InverseMass())
	p0.SetPosition(p0.Position().Add(c.movement[0]))
	if p1 := c.Particles[1]; p1 != nil {
		c.movement[1] = movePerIMass.Scale(-p1.InverseMass())
		p1.SetPosition(p1.Position().Add(c.movement[1]))
	}
}

// ContactResolver resolves particle contacts worst-first.
type ContactResolver struct {
	Iterations     int
	iterationsUsed int
}

func NewContactResolver(iterations int) *ContactResolver {
	return &ContactResolver{Iterations: iterations}
}

func (r *ContactResolver) SetIterations(iterations int) {
	r.Iterations = iterations
}

// IterationsUsed reports how many contacts the last ResolveContacts resolved.
func (r *ContactResolver) IterationsUsed() int {
	return r.iterationsUsed
}

// ResolveContacts repeatedly picks the contact with the most negative separating velocity among
// those closing or interpenetrating, resolves it and updates the penetration of contacts sharing its
// particles. It stops when none is eligible or after Iterations rounds.
func (r *ContactResolver) ResolveContacts(contacts []Contact, duration Real) {
	r.iterationsUsed = 0
	for r.iterationsUsed < r.Iterations {
		worst := vecmath.MaxReal
		index := -1
		for i := range contacts {
			sep := contacts[i].SeparatingVelocity()
			if sep < worst && (sep < 0 || contacts[i].Penetration > 0) {
				worst = sep
				index = i
			}
		}
		if index < 0 {
			break
		}

		resolved := &contacts[index]
		resolved.resolve(duration)
		move := resolved.movement

		for i := range contacts {
			c := &contacts[i]
			switch c.Particles[0] {
			case resolved.Particles[0]:
				c.Penetration -= move[0].Dot(c.Normal)
			case resolved.Particles[1]:
				c.Penetration -= move[1].Dot(c.Normal)
			}
			if c.Particles[1] == nil {
				continue
			}
			switch c.Particles[1] {
			case resolved.Particles[0]:
				c.Penetration += move[0].Dot(c.Normal)
			case resolved.Particles[1]:
				c.Penetration += move[1].Dot(c.Normal)
			}
		}
		r.iterationsUsed++
	}
}
