// Package game is the block shooter: a ground plane, falling boxes, bullets fired from the camera and
// particle explosions where bullets hit boxes. It owns both simulation worlds and steps them together.
package game

import (
	"crystal-engine/internal/commands"
	"crystal-engine/internal/engineconfig"
	"crystal-engine/internal/logger"
	"crystal-engine/internal/particles"
	"crystal-engine/internal/physics"
	"crystal-engine/internal/vecmath"
)

type (
	Real    = vecmath.Real
	Vector3 = vecmath.Vector3
)

// Stats summarises both worlds for overlays and the console.
type Stats struct {
	physics.Stats
	Effects   int
	Particles int
	Frames    int
	Paused    bool
}

// Game holds the simulation state. It is driven from one goroutine (the frame loop or a test).
type Game struct {
	cfg engineconfig.EnginePrefs
	log *logger.Logger
	rng *vecmath.Random
	reg *commands.Registry

	World     *physics.World
	Particles *particles.World

	boxDefaults BoxSpec
	explosion   particles.ExplosionConfig
	// weightless boxes ignore SetGravity.
	weightless map[physics.BodyID]struct{}

	aimOrigin Vector3
	aimDir    Vector3

	paused      bool
	accumulator Real
	frames      int
}

// New builds empty worlds from cfg and registers the console commands. seed drives the explosions.
func New(cfg engineconfig.EnginePrefs, log *logger.Logger, seed uint64) *Game {
	if log == nil {
		log = logger.Discard()
	}
	ph := cfg.Physics
	g := &Game{
		cfg: cfg,
		log: log,
		rng: vecmath.NewRandom(seed),
		reg: commands.NewRegistry(),
		World: physics.NewWorld(
			physics.WithMaxContacts(ph.MaxContacts),
			physics.WithIterations(ph.Iterations),
			physics.WithCollectGap(ph.CollectGap),
			physics.WithContactDefaults(ph.Friction, ph.Restitution, ph.Tolerance),
			physics.WithSleepEpsilon(ph.SleepEpsilon),
			physics.WithLogger(log),
		),
		Particles: particles.NewWorld(ph.ParticleMaxContacts, ph.ParticleIterations,
			particles.WithCollectGap(ph.ParticleCollectGap),
			particles.WithLogger(log),
		),
		boxDefaults: DefaultBox(ph.Gravity),
		explosion:   particles.DefaultExplosion,
		weightless:  make(map[physics.BodyID]struct{}),
		aimOrigin:   vecmath.V3(0, 2, 10),
		aimDir:      vecmath.V3(0, 0, -1),
	}
	g.Particles.AddContactGenerator(particles.NewGroundContacts(g.Particles))
	g.registerCommands()
	return g
}

// Commands returns the console command registry.
func (g *Game) Commands() *commands.Registry {
	return g.reg
}

// Logger returns the log shared by the worlds and the console.
func (g *Game) Logger() *logger.Logger {
	return g.log
}

// Setup builds the starting scene: the ground and two boxes, the second one already moving.
func (g *Game) Setup() error {
	if _, err := g.SpawnGround(); err != nil {
		return err
	}
	if _, err := g.SpawnBox(vecmath.V3(0, 5, 0), BoxSpec{}); err != nil {
		return err
	}
	_, err := g.SpawnBox(vecmath.V3(4, 6, 0), BoxSpec{Velocity: vecmath.V3(2, 0, -1)})
	return err
}

// SetAim records where bullets come from and where they go when no explicit aim is given.
func (g *Game) SetAim(origin, direction Vector3) {
	g.aimOrigin = origin
	if !direction.IsZero() {
		g.aimDir = direction.Normalized()
	}
}

// Aim returns the current bullet origin and direction.
func (g *Game) Aim() (origin, direction Vector3) {
	return g.aimOrigin, g.aimDir
}

func (g *Game) Pause()       { g.paused = true }
func (g *Game) Resume()      { g.paused = false }
func (g *Game) Paused() bool { return g.paused }
func (g *Game) TogglePause() { g.paused = !g.paused }

// Step advances the game by a frame of frameTime seconds and returns how many simulation ticks ran.
// Frames longer than MaxFrameDuration are clamped. With a FixedStep the frame time is accumulated
// and spent in whole steps; otherwise one tick of the clamped frame time runs.
func (g *Game) Step(frameTime Real) int {
	if g.paused || frameTime <= 0 {
		return 0
	}
	frameTime = min(frameTime, g.cfg.MaxFrameDuration)
	g.frames++

	h := g.cfg.FixedStep
	if h <= 0 {
		g.tick(frameTime)
		return 1
	}
	g.accumulator += frameTime
	ticks := 0
	for g.accumulator >= h {
		g.tick(h)
		g.accumulator -= h
		ticks++
	}
	return ticks
}

// tick runs one step of both worlds and advances the effects.
func (g *Game) tick(duration Real) {
	g.World.StartFrame()
	g.World.RunPhysics(duration)

	g.Particles.StartFrame()
	g.Particles.RunPhysics(duration)
	for _, e := range g.Particles.Effects() {
		e.Update(duration)
	}
}

// Stats reports the current world sizes.
func (g *Game) Stats() Stats {
	s := Stats{
		Stats:  g.World.Stats(),
		Frames: g.frames,
		Paused: g.paused,
	}
	s.Particles = len(g.Particles.Particles())
	for _, e := range g.Particles.Effects() {
		if e.Destroyable() {
			continue
		}
		s.Effects++
		s.Particles += len(e.Particles())
	}
	return s
}
