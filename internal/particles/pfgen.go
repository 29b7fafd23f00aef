package particles

import (
	"crystal-engine/internal/vecmath"

	"github.com/chewxy/math32"
)

// ForceGenerator adds forces to a particle once per step. Implementations must be comparable.
type ForceGenerator interface {
	UpdateForce(p *Particle, duration Real)
}

type registration struct {
	particle *Particle
	gen      ForceGenerator
}

// ForceRegistry holds (particle, generator) pairs without owning either.
type ForceRegistry struct {
	registrations []registration
}

func (r *ForceRegistry) Add(p *Particle, gen ForceGenerator) {
	r.registrations = append(r.registrations, registration{p, gen})
}

// Remove drops the first registration matching both p and gen.
func (r *ForceRegistry) Remove(p *Particle, gen ForceGenerator) bool {
	for i, reg := range r.registrations {
		if reg.particle == p && reg.gen == gen {
			r.registrations = append(r.registrations[:i], r.registrations[i+1:]...)
			return true
		}
	}
	return false
}

func (r *ForceRegistry) Clear() {
	r.registrations = nil
}

func (r *ForceRegistry) Len() int {
	return len(r.registrations)
}

// UpdateForces calls every generator in registration order.
func (r *ForceRegistry) UpdateForces(duration Real) {
	for _, reg := range r.registrations {
		reg.gen.UpdateForce(reg.particle, duration)
	}
}

// Gravity applies mass-scaled gravity to finite-mass particles.
type Gravity struct {
	Gravity Vector3
}

func (g *Gravity) UpdateForce(p *Particle, _ Real) {
	if !p.HasFiniteMass() {
		return
	}
	p.AddForce(g.Gravity.Scale(p.Mass()))
}

// Drag opposes velocity with k1·|v| + k2·|v|².
type Drag struct {
	K1, K2 Real
}

func (d *Drag) UpdateForce(p *Particle, _ Real) {
	v := p.Velocity()
	speed := v.Magnitude()
	if speed == 0 {
		return
	}
	coeff := d.K1*speed + d.K2*speed*speed
	p.AddForce(v.Scale(-coeff / speed))
}

// spring adds -k(|d| - rest)·d̂ with d = position - other. pullOnly skips compressed springs.
func spring(p *Particle, other Vector3, k, rest Real, pullOnly bool) {
	d := p.Position().Sub(other)
	length := d.Magnitude()
	if length == 0 {
		return
	}
	extension := length - rest
	if pullOnly && extension <= 0 {
		return
	}
	p.AddForce(d.Scale(-k * extension / length))
}

// Spring connects the particle to Other.
type Spring struct {
	Other          *Particle
	SpringConstant Real
	RestLength     Real
}

func (s *Spring) UpdateForce(p *Particle, _ Real) {
	spring(p, s.Other.Position(), s.SpringConstant, s.RestLength, false)
}

// AnchoredSpring connects the particle to a fixed point. Anchor may be moved between steps.
type AnchoredSpring struct {
	Anchor         Vector3
	SpringConstant Real
	RestLength     Real
}

func (s *AnchoredSpring) UpdateForce(p *Particle, _ Real) {
	spring(p, s.Anchor, s.SpringConstant, s.RestLength, false)
}

// Bungee is a spring to Other that only pulls.
type Bungee struct {
	Other          *Particle
	SpringConstant Real
	RestLength     Real
}

func (s *Bungee) UpdateForce(p *Particle, _ Real) {
	spring(p, s.Other.Position(), s.SpringConstant, s.RestLength, true)
}

// AnchoredBungee is a bungee to a fixed point.
type AnchoredBungee struct {
	Anchor         Vector3
	SpringConstant Real
	RestLength     Real
}

func (s *AnchoredBungee) UpdateForce(p *Particle, _ Real) {
	spring(p, s.Anchor, s.SpringConstant, s.RestLength, true)
}

// Buoyancy pushes the particle up in proportion to how far below WaterHeight it is, up to MaxDepth.
type Buoyancy struct {
	MaxDepth      Real
	Volume        Real
	WaterHeight   Real
	LiquidDensity Real
}

func (b *Buoyancy) UpdateForce(p *Particle, _ Real) {
	depth := p.Position().Y
	if depth >= b.WaterHeight+b.MaxDepth {
		return
	}
	var force Vector3
	if depth <= b.WaterHeight-b.MaxDepth {
		force.Y = b.LiquidDensity * b.Volume
	} else {
		force.Y = b.LiquidDensity * b.Volume * (b.WaterHeight + b.MaxDepth - depth) / (2 * b.MaxDepth)
	}
	p.AddForce(force)
}

// FakeSpring moves the particle as a damped harmonic oscillator around Anchor, predicting the
// position at the end of the step. It stays stable for stiff springs where Hooke's law would not.
type FakeSpring struct {
	Anchor         Vector3
	SpringConstant Real
	Damping        Real
}

func (s *FakeSpring) UpdateForce(p *Particle, duration Real) {
	if !p.HasFiniteMass() || duration <= 0 {
		return
	}
	position := p.Position().Sub(s.Anchor)

	disc := 4*s.SpringConstant - s.Damping*s.Damping
	if disc <= 0 {
		return
	}
	gamma := 0.5 * vecmath.Sqrt(disc)

	c := position.Scale(s.Damping / (2 * gamma)).AddScaled(p.Velocity(), 1/gamma)
	target := position.Scale(math32.Cos(gamma * duration)).AddScaled(c, math32.Sin(gamma*duration))
	target = target.Scale(math32.Exp(-0.5 * duration * s.Damping))

	accel := target.Sub(position).Scale(1 / (duration * duration)).Sub(p.Velocity().Scale(1 / duration))
	p.AddForce(accel.Scale(p.Mass()))
}
