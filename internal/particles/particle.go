package particles

import (
	"crystal-engine/internal/vecmath"

	"github.com/pkg/errors"
)

type (
	Real    = vecmath.Real
	Vector3 = vecmath.Vector3
)

// ErrInvalidArgument is returned (wrapped) for parameters a particle cannot simulate.
var ErrInvalidArgument = errors.New("invalid argument")

// Particle is a point mass with no orientation.
type Particle struct {
	position     Vector3
	velocity     Vector3
	acceleration Vector3
	forceAccum   Vector3
	inverseMass  Real
	damping      Real
}

// NewParticle returns a unit-mass particle at the origin with no damping.
func NewParticle() *Particle {
	return &Particle{inverseMass: 1, damping: 1}
}

// Integrate moves the particle by its current velocity, then updates the velocity from the constant
// acceleration plus the accumulated force, applies damping and clears the accumulator.
func (p *Particle) Integrate(duration Real) {
	p.position = p.position.AddScaled(p.velocity, duration)

	acc := p.acceleration.AddScaled(p.forceAccum, p.inverseMass)
	p.velocity = p.velocity.AddScaled(acc, duration)
	p.velocity = p.velocity.Scale(vecmath.Pow(p.damping, duration))

	p.ClearAccumulator()
}

func (p *Particle) ClearAccumulator() {
	p.forceAccum = Vector3{}
}

func (p *Particle) AddForce(f Vector3) {
	p.forceAccum = p.forceAccum.Add(f)
}

func (p *Particle) ForceAccum() Vector3 {
	return p.forceAccum
}

// SetMass sets the mass. Use SetInverseMass(0) for an immovable particle.
func (p *Particle) SetMass(mass Real) error {
	if mass == 0 {
		return errors.Wrap(ErrInvalidArgument, "particle mass must be non-zero")
	}
	p.inverseMass = 1 / mass
	return nil
}

// Mass returns the mass, or MaxReal for an infinite-mass particle.
func (p *Particle) Mass() Real {
	if p.inverseMass == 0 {
		return vecmath.MaxReal
	}
	return 1 / p.inverseMass
}

func (p *Particle) SetInverseMass(im Real) { p.inverseMass = im }
func (p *Particle) InverseMass() Real      { return p.inverseMass }
func (p *Particle) HasFiniteMass() bool    { return p.inverseMass > 0 }

func (p *Particle) SetDamping(d Real) { p.damping = d }
func (p *Particle) Damping() Real     { return p.damping }

func (p *Particle) SetPosition(v Vector3) { p.position = v }
func (p *Particle) Position() Vector3     { return p.position }

func (p *Particle) SetVelocity(v Vector3) { p.velocity = v }
func (p *Particle) Velocity() Vector3     { return p.velocity }

func (p *Particle) SetAcceleration(a Vector3) { p.acceleration = a }
func (p *Particle) Acceleration() Vector3     { return p.acceleration }
