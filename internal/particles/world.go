package particles

import (
	"slices"

	"crystal-engine/internal/logger"
	"crystal-engine/internal/vecmath"
)

// DefaultCollectGap is how many finished effects may accumulate before they are dropped.
const DefaultCollectGap = 10

// World simulates free particles and the particles owned by effects.
type World struct {
	particles  []*Particle
	effects    []Effect
	generators []ContactGenerator

	forces   ForceRegistry
	resolver *ContactResolver
	contacts []Contact

	calculateIterations bool
	collectGap          int
	log                 *logger.Logger
}

// Option configures a World.
type Option func(*World)

// WithCollectGap sets how many destroyable effects are kept before a collection pass.
func WithCollectGap(n int) Option {
	return func(w *World) { w.collectGap = n }
}

// WithLogger makes the world log effect collection.
func WithLogger(l *logger.Logger) Option {
	return func(w *World) { w.log = l }
}

// NewWorld returns a world with room for maxContacts contacts per frame. iterations 0 means two
// resolver iterations per contact, recomputed every frame.
func NewWorld(maxContacts, iterations int, opts ...Option) *World {
	w := &World{
		resolver:            NewContactResolver(iterations),
		contacts:            make([]Contact, max(maxContacts, 1)),
		calculateIterations: iterations <= 0,
		collectGap:          DefaultCollectGap,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// AddParticle adds a free particle.
func (w *World) AddParticle(p *Particle) {
	w.particles = append(w.particles, p)
}

// Particles returns the free particles.
func (w *World) Particles() []*Particle {
	return w.particles
}

func (w *World) ForceRegistry() *ForceRegistry {
	return &w.forces
}

func (w *World) AddContactGenerator(g ContactGenerator) {
	w.generators = append(w.generators, g)
}

// AddEffect registers e. Adding an effect that is already registered does nothing.
func (w *World) AddEffect(e Effect) {
	if slices.Contains(w.effects, e) {
		return
	}
	w.effects = append(w.effects, e)
}

// Effects returns the registered effects, finished ones included until they are collected.
func (w *World) Effects() []Effect {
	return w.effects
}

// liveParticles returns the free particles followed by those of effects that are not destroyable.
func (w *World) liveParticles() []*Particle {
	out := slices.Clone(w.particles)
	for _, e := range w.effects {
		if !e.Destroyable() {
			out = append(out, e.Particles()...)
		}
	}
	return out
}

// StartFrame clears force accumulators and drops finished effects once more than the collect gap
// of them have piled up.
func (w *World) StartFrame() {
	for _, p := range w.particles {
		p.ClearAccumulator()
	}

	destroyable := 0
	for _, e := range w.effects {
		if e.Destroyable() {
			destroyable++
			continue
		}
		for _, p := range e.Particles() {
			p.ClearAccumulator()
		}
	}

	if destroyable > w.collectGap {
		w.effects = slices.DeleteFunc(w.effects, func(e Effect) bool { return e.Destroyable() })
		if w.log != nil {
			w.log.Logf("particles: collected %d finished effects", destroyable)
		}
	}
}

// Integrate advances every live particle.
func (w *World) Integrate(duration Real) {
	for _, p := range w.liveParticles() {
		p.Integrate(duration)
	}
}

// GenerateContacts asks each generator in turn for contacts until the buffer is full.
func (w *World) GenerateContacts() int {
	used := 0
	for _, g := range w.generators {
		used += g.AddContact(w.contacts[used:])
		if used >= len(w.contacts) {
			break
		}
	}
	return used
}

// RunPhysics applies forces, integrates, then generates and resolves contacts.
func (w *World) RunPhysics(duration Real) {
	w.forces.UpdateForces(duration)
	w.Integrate(duration)

	used := w.GenerateContacts()
	if used == 0 {
		return
	}
	if w.calculateIterations {
		w.resolver.SetIterations(used * 2)
	}
	w.resolver.ResolveContacts(w.contacts[:used], duration)
}

// Resolver exposes the contact resolver.
func (w *World) Resolver() *ContactResolver {
	return w.resolver
}

// GroundContacts keeps every live particle of World above the plane y = 0.
type GroundContacts struct {
	World       *World
	Restitution Real
}

// NewGroundContacts returns a ground generator with restitution 0.2.
func NewGroundContacts(w *World) *GroundContacts {
	return &GroundContacts{World: w, Restitution: 0.2}
}

func (g *GroundContacts) AddContact(contacts []Contact) int {
	count := 0
	for _, p := range g.World.liveParticles() {
		if count >= len(contacts) {
			break
		}
		y := p.Position().Y
		if y >= 0 {
			continue
		}
		contacts[count] = Contact{
			Particles:   [2]*Particle{p, nil},
			Normal:      vecmath.Up,
			Penetration: -y,
			Restitution: g.Restitution,
		}
		count++
	}
	return count
}
