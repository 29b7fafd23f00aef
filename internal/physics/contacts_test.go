package physics

import (
	"testing"

	"crystal-engine/internal/vecmath"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualMassElasticCollisionSwapsVelocities(t *testing.T) {
	a := bodyAt(Vector3{})
	b := bodyAt(vecmath.V3(1.5, 0, 0))
	a.SetVelocity(vecmath.V3(1, 0, 0))
	b.SetVelocity(vecmath.V3(-1, 0, 0))

	data := NewCollisionData(4)
	data.Restitution = 1
	require.Equal(t, 1, Collide(NewSphere(a, 1), NewSphere(b, 1), data))

	r := NewContactResolver(10)
	r.ResolveContacts(data.Contacts(), 0.01)

	assertVec(t, vecmath.V3(-1, 0, 0), a.Velocity(), tol)
	assertVec(t, vecmath.V3(1, 0, 0), b.Velocity(), tol)
	assert.Greater(t, r.VelocityIterationsUsed, 0)
}

func TestInfiniteMassPartnerNeverMoves(t *testing.T) {
	wall := NewStaticBody(vecmath.V3(1.5, 0, 0))
	ball := bodyAt(Vector3{})
	ball.SetVelocity(vecmath.V3(3, 0, 0))

	data := NewCollisionData(4)
	data.Restitution = 0.5
	require.Equal(t, 1, Collide(NewSphere(ball, 1), NewSphere(wall, 1), data))

	NewContactResolver(10).ResolveContacts(data.Contacts(), 0.01)

	assert.Equal(t, vecmath.V3(1.5, 0, 0), wall.Position())
	assert.True(t, wall.Velocity().IsZero())
	assert.True(t, wall.Rotation().IsZero())
	assert.InDelta(t, -1.5, ball.Velocity().X, tol)
}

func TestPenetrationResolvedAlongNormal(t *testing.T) {
	ball := bodyAt(vecmath.V3(0, 0.5, 0))
	data := NewCollisionData(4)
	require.Equal(t, 1, Collide(NewSphere(ball, 1), ground(), data))

	NewContactResolver(4).ResolveContacts(data.Contacts(), 0.01)

	assert.InDelta(t, 1, ball.Position().Y, tol)
	assert.InDelta(t, 0, data.Contacts()[0].Penetration, tol)
}

func TestSlowContactDoesNotBounce(t *testing.T) {
	ball := bodyAt(vecmath.V3(0, 0.999, 0))
	ball.SetVelocity(vecmath.V3(0, -0.2, 0))

	data := NewCollisionData(4)
	data.Restitution = 1
	require.Equal(t, 1, Collide(NewSphere(ball, 1), ground(), data))

	NewContactResolver(4).ResolveContacts(data.Contacts(), 0.01)

	assert.InDelta(t, 0, ball.Velocity().Y, tol)
}

func TestFrictionStopsSliding(t *testing.T) {
	box := bodyAt(vecmath.V3(0, 0.49, 0))
	box.SetInverseInertiaTensor(Matrix3{})
	box.SetVelocity(vecmath.V3(0.1, -1, 0))

	data := NewCollisionData(8)
	data.Friction = 0.9
	require.Equal(t, 4, Collide(NewBox(box, vecmath.V3(0.5, 0.5, 0.5)), ground(), data))

	NewContactResolver(16).ResolveContacts(data.Contacts(), 0.01)

	assert.InDelta(t, 0, box.Velocity().X, tol)
	assert.InDelta(t, 0, box.Velocity().Y, tol)
}

func TestResolverWithoutIterationsIsNoop(t *testing.T) {
	ball := bodyAt(vecmath.V3(0, 0.5, 0))
	ball.SetVelocity(vecmath.V3(0, -1, 0))
	data := NewCollisionData(4)
	Collide(NewSphere(ball, 1), ground(), data)

	NewContactResolver(0).ResolveContacts(data.Contacts(), 0.01)

	assert.Equal(t, vecmath.V3(0, 0.5, 0), ball.Position())
	assert.Equal(t, vecmath.V3(0, -1, 0), ball.Velocity())
}

func TestContactWakesSleepingPartner(t *testing.T) {
	a := bodyAt(Vector3{})
	b := bodyAt(vecmath.V3(1.5, 0, 0))
	a.SetVelocity(vecmath.V3(2, 0, 0))
	b.SetCanSleep(true)
	b.SetAwake(false)

	data := NewCollisionData(4)
	require.Equal(t, 1, Collide(NewSphere(a, 1), NewSphere(b, 1), data))
	NewContactResolver(10).ResolveContacts(data.Contacts(), 0.01)

	assert.True(t, b.Awake())
	assert.Greater(t, b.Velocity().X, Real(0))
}

func TestContactBasisIsOrthonormal(t *testing.T) {
	for _, n := range []Vector3{vecmath.Up, vecmath.X, vecmath.V3(1, 2, 3).Normalized(), vecmath.V3(-3, 1, 0.5).Normalized()} {
		c := Contact{Normal: n}
		c.calculateContactBasis()
		m := c.contactToWorld
		assertVec(t, n, m.Column(0), tol)
		for i := 0; i < 3; i++ {
			assert.InDelta(t, 1, m.Column(i).Magnitude(), tol)
			for j := i + 1; j < 3; j++ {
				assert.InDelta(t, 0, m.Column(i).Dot(m.Column(j)), tol)
			}
		}
	}
}

func TestResolverValidity(t *testing.T) {
	r := NewContactResolver(3)
	assert.True(t, r.IsValid())
	r.SetEpsilon(-1, 0.01)
	assert.False(t, r.IsValid())
	r.SetEpsilon(0.01, 0.01)
	r.SetIterations(0, 3)
	assert.False(t, r.IsValid())
}
