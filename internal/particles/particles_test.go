package particles

import (
	"testing"

	"crystal-engine/internal/logger"
	"crystal-engine/internal/vecmath"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-4

func particleAt(p Vector3) *Particle {
	pt := NewParticle()
	pt.SetPosition(p)
	return pt
}

func TestIntegrateMovesBeforeAccelerating(t *testing.T) {
	p := NewParticle()
	p.SetVelocity(vecmath.V3(1, 0, 0))
	p.SetAcceleration(vecmath.V3(0, -10, 0))

	p.Integrate(0.5)

	assert.Equal(t, vecmath.V3(0.5, 0, 0), p.Position())
	assert.Equal(t, vecmath.V3(1, -5, 0), p.Velocity())
}

func TestIntegrateZeroDurationAndDamping(t *testing.T) {
	p := NewParticle()
	p.SetVelocity(vecmath.V3(2, 0, 0))
	p.SetDamping(0.5)
	p.AddForce(vecmath.V3(1, 1, 1))

	p.Integrate(0)
	assert.Equal(t, Vector3{}, p.Position())
	assert.Equal(t, vecmath.V3(2, 0, 0), p.Velocity())
	assert.True(t, p.ForceAccum().IsZero())

	p.Integrate(1)
	assert.InDelta(t, 1, p.Velocity().X, tol)
}

func TestParticleMass(t *testing.T) {
	p := NewParticle()
	err := p.SetMass(0)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	require.NoError(t, p.SetMass(4))
	assert.Equal(t, Real(0.25), p.InverseMass())

	p.SetInverseMass(0)
	assert.Equal(t, vecmath.MaxReal, p.Mass())
	p.AddForce(vecmath.V3(100, 0, 0))
	p.Integrate(1)
	assert.True(t, p.Velocity().IsZero())
}

func TestRegistryRemovesOneRegistration(t *testing.T) {
	var r ForceRegistry
	p := NewParticle()
	g := &Gravity{Gravity: vecmath.Gravity}
	r.Add(p, g)
	r.Add(p, g)

	assert.True(t, r.Remove(p, g))
	r.UpdateForces(0.1)
	assert.InDelta(t, -9.81, p.ForceAccum().Y, tol)

	assert.True(t, r.Remove(p, g))
	assert.False(t, r.Remove(p, g))
}

func TestSpringGenerators(t *testing.T) {
	p := particleAt(vecmath.V3(3, 0, 0))
	(&AnchoredSpring{SpringConstant: 2, RestLength: 1}).UpdateForce(p, 0.1)
	assert.InDelta(t, -4, p.ForceAccum().X, tol)

	p.ClearAccumulator()
	(&AnchoredBungee{SpringConstant: 2, RestLength: 5}).UpdateForce(p, 0.1)
	assert.True(t, p.ForceAccum().IsZero())

	other := particleAt(vecmath.V3(0, 0, 0))
	(&Bungee{Other: other, SpringConstant: 1, RestLength: 1}).UpdateForce(p, 0.1)
	assert.InDelta(t, -2, p.ForceAccum().X, tol)

	p.ClearAccumulator()
	(&Spring{Other: other, SpringConstant: 1, RestLength: 4}).UpdateForce(p, 0.1)
	assert.InDelta(t, 1, p.ForceAccum().X, tol)
}

func TestDragAndBuoyancy(t *testing.T) {
	p := NewParticle()
	p.SetVelocity(vecmath.V3(0, -3, 0))
	(&Drag{K1: 1, K2: 0}).UpdateForce(p, 0.1)
	assertVec(t, vecmath.V3(0, 3, 0), p.ForceAccum())

	p.ClearAccumulator()
	p.SetPosition(vecmath.V3(0, -5, 0))
	(&Buoyancy{MaxDepth: 1, Volume: 0.1, WaterHeight: 0, LiquidDensity: 1000}).UpdateForce(p, 0.1)
	assert.InDelta(t, 100, p.ForceAccum().Y, tol)
}

func TestFakeSpringPullsTowardAnchor(t *testing.T) {
	p := particleAt(vecmath.V3(1, 0, 0))
	(&FakeSpring{SpringConstant: 10, Damping: 0.5}).UpdateForce(p, 0.01)
	assert.Less(t, p.ForceAccum().X, Real(0))

	still := particleAt(vecmath.V3(1, 0, 0))
	(&FakeSpring{SpringConstant: 1, Damping: 4}).UpdateForce(still, 0.01)
	assert.True(t, still.ForceAccum().IsZero(), "overdamped springs are not simulated")
}

func assertVec(t *testing.T, want, got Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, "X")
	assert.InDelta(t, want.Y, got.Y, tol, "Y")
	assert.InDelta(t, want.Z, got.Z, tol, "Z")
}

func TestRestingContactDoesNotBounce(t *testing.T) {
	// A particle that only picked up closing speed from gravity during the last step stays put.
	p := particleAt(vecmath.V3(0, -0.001, 0))
	p.SetAcceleration(vecmath.V3(0, -10, 0))
	p.SetVelocity(vecmath.V3(0, -0.1, 0))

	contacts := []Contact{{Particles: [2]*Particle{p, nil}, Normal: vecmath.Up, Penetration: 0.001, Restitution: 0.5}}
	r := NewContactResolver(4)
	r.ResolveContacts(contacts, 0.01)

	assert.InDelta(t, 0, p.Velocity().Y, tol)
	assert.InDelta(t, 0, p.Position().Y, tol)
	assert.Equal(t, 1, r.IterationsUsed())
}

func TestBounceUsesRestitution(t *testing.T) {
	p := NewParticle()
	p.SetVelocity(vecmath.V3(0, -4, 0))
	contacts := []Contact{{Particles: [2]*Particle{p, nil}, Normal: vecmath.Up, Restitution: 0.5}}

	NewContactResolver(4).ResolveContacts(contacts, 0.01)
	assert.InDelta(t, 2, p.Velocity().Y, tol)
}

func TestEqualMassElasticSwap(t *testing.T) {
	a := NewParticle()
	b := particleAt(vecmath.V3(1, 0, 0))
	a.SetVelocity(vecmath.V3(1, 0, 0))
	b.SetVelocity(vecmath.V3(-1, 0, 0))
	contacts := []Contact{{Particles: [2]*Particle{a, b}, Normal: vecmath.V3(-1, 0, 0), Restitution: 1}}

	NewContactResolver(2).ResolveContacts(contacts, 0.01)
	assertVec(t, vecmath.V3(-1, 0, 0), a.Velocity())
	assertVec(t, vecmath.V3(1, 0, 0), b.Velocity())
}

func TestPenetrationSharedBetweenMasses(t *testing.T) {
	a := NewParticle()
	b := particleAt(vecmath.V3(0.5, 0, 0))
	require.NoError(t, b.SetMass(3))
	contacts := []Contact{{Particles: [2]*Particle{a, b}, Normal: vecmath.V3(-1, 0, 0), Penetration: 0.4}}

	NewContactResolver(2).ResolveContacts(contacts, 0.01)
	// Inverse masses 1 and 1/3: the lighter particle takes three quarters of the move.
	assertVec(t, vecmath.V3(-0.3, 0, 0), a.Position())
	assertVec(t, vecmath.V3(0.6, 0, 0), b.Position())
	assert.InDelta(t, 0, contacts[0].Penetration, tol)
}

func TestResolverStopsAtIterationCap(t *testing.T) {
	p := NewParticle()
	p.SetInverseMass(0)
	contacts := []Contact{{Particles: [2]*Particle{p, nil}, Normal: vecmath.Up, Penetration: 1}}
	r := NewContactResolver(5)
	r.ResolveContacts(contacts, 0.01)
	assert.Equal(t, 5, r.IterationsUsed())
}

func TestCableAndRod(t *testing.T) {
	a := NewParticle()
	b := particleAt(vecmath.V3(3, 0, 0))
	buf := make([]Contact, 1)

	cable := NewCable(a, b, 2, 0.3)
	require.Equal(t, 1, cable.AddContact(buf))
	assert.InDelta(t, 1, buf[0].Penetration, tol)
	assertVec(t, vecmath.V3(1, 0, 0), buf[0].Normal)
	assert.Equal(t, 0, NewCable(a, b, 5, 0.3).AddContact(buf))
	assert.Equal(t, 0, cable.AddContact(nil))

	rod := NewRod(a, b, 4)
	require.Equal(t, 1, rod.AddContact(buf))
	assert.InDelta(t, 1, buf[0].Penetration, tol)
	assertVec(t, vecmath.V3(-1, 0, 0), buf[0].Normal)

	// Resolving the rod contact pushes the particles apart to the rod length.
	NewContactResolver(1).ResolveContacts(buf, 0.01)
	assert.InDelta(t, 4, b.Position().Sub(a.Position()).Magnitude(), tol)
}

func TestGroundContactsWorld(t *testing.T) {
	w := NewWorld(3, 0)
	w.AddContactGenerator(NewGroundContacts(w))
	for i := 0; i < 5; i++ {
		p := particleAt(vecmath.V3(Real(i), -0.5, 0))
		p.SetAcceleration(vecmath.V3(0, -10, 0))
		w.AddParticle(p)
	}
	above := particleAt(vecmath.V3(0, 5, 0))
	w.AddParticle(above)

	assert.Equal(t, 3, w.GenerateContacts(), "capacity limits contacts")

	w.StartFrame()
	w.RunPhysics(0.01)
	assert.Equal(t, 6, w.Resolver().Iterations)
	for _, p := range w.Particles()[:3] {
		assert.GreaterOrEqual(t, p.Position().Y, Real(-tol))
	}
}

func TestExplosionLifecycle(t *testing.T) {
	w := NewWorld(20, 0)
	e := NewExplosion(w, vecmath.NewRandom(1), DefaultExplosion)

	e.Init(vecmath.V3(1, 2, 3))
	require.Len(t, e.Particles(), 20)
	require.Len(t, w.Effects(), 1)
	for _, p := range e.Particles() {
		assert.Equal(t, vecmath.V3(1, 2, 3), p.Position())
		speed := p.Velocity().Magnitude()
		assert.GreaterOrEqual(t, speed, Real(1-tol))
		assert.LessOrEqual(t, speed, Real(2+tol))
		assert.Equal(t, vecmath.V3(0, -1, 0), p.Acceleration())
	}

	e.Update(5)
	assert.False(t, e.Destroyable(), "not playing yet")

	e.Play()
	first := e.Particles()[0]
	e.Init(Vector3{})
	assert.Same(t, first, e.Particles()[0], "Init is ignored while playing")
	assert.Len(t, w.Effects(), 1)

	e.Update(1)
	assert.True(t, e.Playing())
	e.Update(1.5)
	assert.False(t, e.Playing())
	assert.True(t, e.Destroyable())
}

func TestFinishedEffectsCollectedPastGap(t *testing.T) {
	log := logger.Discard()
	w := NewWorld(20, 0, WithCollectGap(2), WithLogger(log))
	rng := vecmath.NewRandom(3)

	finish := func() *Explosion {
		e := NewExplosion(w, rng, ExplosionConfig{Count: 2, Duration: 1, MinSpeed: 1, MaxSpeed: 1})
		e.Init(Vector3{})
		e.Play()
		e.Update(2)
		return e
	}
	finish()
	finish()
	live := NewExplosion(w, rng, DefaultExplosion)
	live.Init(Vector3{})
	live.Play()

	w.StartFrame()
	assert.Len(t, w.Effects(), 3, "two finished effects do not exceed the gap")

	finished := finish()
	frozen := finished.Particles()[0].Position()
	w.RunPhysics(0.1)
	assert.Equal(t, frozen, finished.Particles()[0].Position(), "finished effects are not integrated")

	w.StartFrame()
	require.Len(t, w.Effects(), 1)
	assert.Same(t, live, w.Effects()[0])
	assert.Len(t, log.Lines(), 1)
}
