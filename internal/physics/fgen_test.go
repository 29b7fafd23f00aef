package physics

import (
	"testing"

	"crystal-engine/internal/vecmath"

	"github.com/stretchr/testify/assert"
)

func TestRegistryDuplicatesRemovedOneAtATime(t *testing.T) {
	var r ForceRegistry
	b := NewRigidBody()
	push := NewConstantForce(vecmath.V3(1, 0, 0))

	r.Add(b, push)
	r.Add(b, push)
	r.UpdateForces(0.1)
	assert.Equal(t, vecmath.V3(2, 0, 0), b.ForceAccum())

	assert.True(t, r.Remove(b, push))
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.Remove(b, push))
	assert.False(t, r.Remove(b, push))
	assert.Equal(t, 0, r.Len())
}

func TestRegistryRoundTripHasNoEffect(t *testing.T) {
	var r ForceRegistry
	b := NewRigidBody()
	other := NewRigidBody()
	g := NewGravity(vecmath.Gravity)

	r.Add(other, g)
	r.Add(b, g)
	r.Remove(b, g)
	r.UpdateForces(0.1)

	assert.True(t, b.ForceAccum().IsZero())
	assert.False(t, other.ForceAccum().IsZero())
}

func TestRegistrySkipsInactiveAndRemovesBody(t *testing.T) {
	var r ForceRegistry
	b := NewRigidBody()
	r.Add(b, NewConstantForce(vecmath.V3(1, 0, 0)))
	r.Add(b, NewGravity(vecmath.Gravity))

	b.active = false
	r.UpdateForces(0.1)
	assert.True(t, b.ForceAccum().IsZero())

	assert.Equal(t, 2, r.RemoveBody(b))
	assert.Equal(t, 0, r.Len())
}

func TestGravityScalesWithMass(t *testing.T) {
	b := NewRigidBody()
	_ = b.SetMass(2)
	NewGravity(vecmath.Gravity).UpdateForce(b, 0.1)
	assertVec(t, vecmath.V3(0, -19.62, 0), b.ForceAccum(), tol)

	static := NewStaticBody(Vector3{})
	NewGravity(vecmath.Gravity).UpdateForce(static, 0.1)
	assert.True(t, static.ForceAccum().IsZero())

	resting := NewRigidBody()
	resting.SetCanSleep(true)
	resting.SetAwake(false)
	NewGravity(vecmath.Gravity).UpdateForce(resting, 0.1)
	assert.False(t, resting.Awake(), "gravity does not wake a sleeping body")
	assert.True(t, resting.ForceAccum().IsZero())
}

func TestAnchoredSpringPullsAndPushes(t *testing.T) {
	b := NewRigidBody()
	b.SetPosition(vecmath.V3(2, 0, 0))
	b.CalculateDerivedData()
	s := &AnchoredSpring{SpringConstant: 10, RestLength: 1}

	s.UpdateForce(b, 0.1)
	assertVec(t, vecmath.V3(-10, 0, 0), b.ForceAccum(), tol)

	b.ClearAccumulators()
	b.SetPosition(vecmath.V3(0.5, 0, 0))
	b.CalculateDerivedData()
	s.UpdateForce(b, 0.1)
	assertVec(t, vecmath.V3(5, 0, 0), b.ForceAccum(), tol)
}

func TestBungeeOnlyPulls(t *testing.T) {
	a := NewRigidBody()
	other := NewRigidBody()
	other.SetPosition(vecmath.V3(0, 3, 0))
	other.CalculateDerivedData()
	bungee := &Bungee{Other: other, SpringConstant: 2, RestLength: 5}

	bungee.UpdateForce(a, 0.1)
	assert.True(t, a.ForceAccum().IsZero())

	bungee.RestLength = 1
	bungee.UpdateForce(a, 0.1)
	assertVec(t, vecmath.V3(0, 4, 0), a.ForceAccum(), tol)
}

func TestSpringOffCentreAddsTorque(t *testing.T) {
	a := NewRigidBody()
	other := NewRigidBody()
	other.SetPosition(vecmath.V3(0, 3, 0))
	other.CalculateDerivedData()
	s := &Spring{ConnectionPoint: vecmath.V3(1, 0, 0), Other: other, SpringConstant: 1}

	s.UpdateForce(a, 0.1)
	assert.False(t, a.TorqueAccum().IsZero())
}

func TestDragOpposesVelocity(t *testing.T) {
	b := NewRigidBody()
	b.SetVelocity(vecmath.V3(2, 0, 0))
	NewDrag(1, 1).UpdateForce(b, 0.1)
	assertVec(t, vecmath.V3(-6, 0, 0), b.ForceAccum(), tol)
}

func TestBuoyancyDepths(t *testing.T) {
	gen := NewBuoyancy(Vector3{}, 0.5, 2, 0, 1000)
	b := NewRigidBody()

	b.SetPosition(vecmath.V3(0, 1, 0))
	b.CalculateDerivedData()
	gen.UpdateForce(b, 0.1)
	assert.True(t, b.ForceAccum().IsZero(), "out of the water")

	b.SetPosition(vecmath.V3(0, -1, 0))
	b.CalculateDerivedData()
	gen.UpdateForce(b, 0.1)
	assertVec(t, vecmath.V3(0, 2000, 0), b.ForceAccum(), tol)

	b.ClearAccumulators()
	b.SetPosition(Vector3{})
	b.CalculateDerivedData()
	gen.UpdateForce(b, 0.1)
	assertVec(t, vecmath.V3(0, 1000, 0), b.ForceAccum(), tol)
}

func TestAeroControlTensor(t *testing.T) {
	base := vecmath.Diagonal3(1, 1, 1)
	lo := vecmath.Diagonal3(0, 0, 0)
	hi := vecmath.Diagonal3(2, 2, 2)
	a := NewAeroControl(base, lo, hi, Vector3{}, nil)

	a.SetControl(5)
	assert.Equal(t, Real(1), a.Control())
	assert.Equal(t, hi, a.CurrentTensor())

	a.SetControl(-0.5)
	assert.InDelta(t, 0.5, a.CurrentTensor().Data[0], tol)

	a.SetControl(0)
	assert.Equal(t, base, a.CurrentTensor())

	wind := vecmath.V3(0, 0, 3)
	b := NewRigidBody()
	a.Windspeed = &wind
	a.UpdateForce(b, 0.1)
	assertVec(t, vecmath.V3(0, 0, 3), b.ForceAccum(), tol)
}
