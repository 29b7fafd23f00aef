package particles

import "crystal-engine/internal/vecmath"

// Effect is a group of particles with its own lifecycle. Init prepares the particles at a position,
// Play starts the clock and Update advances it; a finished effect becomes Destroyable and is collected
// by its World.
type Effect interface {
	Init(position Vector3)
	Play()
	Update(dt Real)
	Stop()
	Playing() bool
	Destroyable() bool
	Particles() []*Particle
}

// ExplosionConfig describes an explosion burst.
type ExplosionConfig struct {
	Count    int
	Duration Real
	MinSpeed Real
	MaxSpeed Real
	// Gravity is the vertical acceleration of the fragments.
	Gravity Real
}

// DefaultExplosion is a short burst of twenty slow fragments.
var DefaultExplosion = ExplosionConfig{
	Count:    20,
	Duration: 2,
	MinSpeed: 1,
	MaxSpeed: 2,
	Gravity:  -1,
}

// Explosion throws Count particles in random directions from a point and finishes after Duration.
type Explosion struct {
	cfg   ExplosionConfig
	world *World
	rng   *vecmath.Random

	position    Vector3
	particles   []*Particle
	playing     bool
	destroyable bool
	runTime     Real
}

func NewExplosion(w *World, rng *vecmath.Random, cfg ExplosionConfig) *Explosion {
	return &Explosion{cfg: cfg, world: w, rng: rng}
}

// Init creates the fragments at position and registers the explosion with its world.
// It does nothing while the explosion is playing.
func (e *Explosion) Init(position Vector3) {
	if e.playing {
		return
	}
	e.position = position
	e.destroyable = false
	e.particles = make([]*Particle, 0, e.cfg.Count)
	for i := 0; i < e.cfg.Count; i++ {
		p := NewParticle()
		p.SetAcceleration(Vector3{Y: e.cfg.Gravity})
		p.SetVelocity(e.rng.UnitVector().Scale(e.rng.Real(e.cfg.MinSpeed, e.cfg.MaxSpeed)))
		p.SetPosition(position)
		e.particles = append(e.particles, p)
	}
	e.world.AddEffect(e)
}

func (e *Explosion) Play() {
	e.playing = true
	e.runTime = 0
}

// Update advances the run time. Once it passes the duration the explosion stops and becomes destroyable.
func (e *Explosion) Update(dt Real) {
	if !e.playing {
		return
	}
	e.runTime += dt
	if e.runTime > e.cfg.Duration {
		e.playing = false
		e.destroyable = true
	}
}

// Stop halts the explosion without finishing it.
func (e *Explosion) Stop() {
	e.playing = false
}

func (e *Explosion) Playing() bool          { return e.playing }
func (e *Explosion) Destroyable() bool      { return e.destroyable }
func (e *Explosion) Particles() []*Particle { return e.particles }
func (e *Explosion) Position() Vector3      { return e.position }
func (e *Explosion) RunTime() Real          { return e.runTime }
