package vecmath

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-5

func assertVec(t *testing.T, want, got Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, "X")
	assert.InDelta(t, want.Y, got.Y, tol, "Y")
	assert.InDelta(t, want.Z, got.Z, tol, "Z")
}

func TestVectorBasics(t *testing.T) {
	a := V3(1, 2, 3)
	b := V3(4, -5, 6)

	assert.Equal(t, V3(5, -3, 9), a.Add(b))
	assert.Equal(t, V3(-3, 7, -3), a.Sub(b))
	assert.Equal(t, V3(2, 4, 6), a.Scale(2))
	assert.Equal(t, Real(1*4-2*5+3*6), a.Dot(b))
	assert.Equal(t, V3(3, 6, 9), a.AddScaled(V3(1, 2, 3), 2))
	assert.Equal(t, V3(4, -10, 18), a.ComponentProduct(b))

	// x × y = z
	assert.Equal(t, Z, X.Cross(Y))
	assert.Equal(t, Real(0), a.Cross(b).Dot(a))

	assert.InDelta(t, 1, a.Normalized().Magnitude(), tol)
	assert.True(t, Vector3{}.Normalized().IsZero())
	assert.InDelta(t, 2, V3(10, 0, 0).Trim(2).Magnitude(), tol)
}

func TestMatrix3Inverse(t *testing.T) {
	m := Matrix3{Data: [9]Real{2, 0, 1, 1, 3, 0, 0, 1, 4}}
	inv, ok := m.Inverse()
	require.True(t, ok)
	id := m.Mul(inv)
	for i, v := range Identity3().Data {
		assert.InDelta(t, v, id.Data[i], tol, "element %d", i)
	}

	singular := Matrix3{Data: [9]Real{1, 2, 3, 2, 4, 6, 0, 0, 1}}
	same, ok := singular.Inverse()
	assert.False(t, ok)
	assert.Equal(t, singular, same)
}

func TestMatrix3TransformTranspose(t *testing.T) {
	m := Orientation3(FromAxisAngle(90, Y))
	v := V3(1, 2, 3)
	assertVec(t, m.Transpose().Transform(v), m.TransformTranspose(v))
	assertVec(t, v, m.TransformTranspose(m.Transform(v)))
}

func TestBlockInertiaTensor(t *testing.T) {
	it := BlockInertiaTensor3(V3(1, 1, 1), 6)
	assert.InDelta(t, 0.3*6*2, it.Data[0], tol)
	assert.InDelta(t, 0.3*6*2, it.Data[4], tol)
	assert.InDelta(t, 0.3*6*2, it.Data[8], tol)
	assert.Equal(t, Real(0), it.Data[1])
}

func TestLinearInterpolate(t *testing.T) {
	a := Diagonal3(1, 1, 1)
	b := Diagonal3(3, 3, 3)
	assert.Equal(t, a, LinearInterpolate(a, b, 0))
	assert.Equal(t, b, LinearInterpolate(a, b, 1))
	assert.InDelta(t, 2, LinearInterpolate(a, b, 0.5).Data[4], tol)
}

func TestQuaternionNormalize(t *testing.T) {
	assert.Equal(t, IdentityQuaternion(), Quaternion{}.Normalized())
	q := Quaternion{2, 0, 0, 0}.Normalized()
	assert.InDelta(t, 1, q.R, tol)
	assert.InDelta(t, 1, FromAxisAngle(33, V3(1, 2, 3)).Magnitude(), tol)
}

func TestQuaternionAddScaledVector(t *testing.T) {
	// Integrating a constant spin for a small step should be close to the exact rotation.
	spin := V3(0, 1, 0)
	q := IdentityQuaternion()
	for i := 0; i < 1000; i++ {
		q = q.AddScaledVector(spin, 0.001).Normalized()
	}
	exact := FromAxisAngle(180/3.14159265, Y)
	assert.InDelta(t, exact.R, q.R, 1e-3)
	assert.InDelta(t, exact.J, q.J, 1e-3)
}

func TestTransformRoundTrip(t *testing.T) {
	m := Transform4(FromAxisAngle(45, V3(1, 1, 0)), V3(3, -2, 5))
	p := V3(0.5, 1.5, -2)
	assertVec(t, p, m.TransformInverse(m.Transform(p)))
	assertVec(t, p, m.TransformInverseDirection(m.TransformDirection(p)))

	inv, ok := m.Inverse()
	require.True(t, ok)
	assertVec(t, m.TransformInverse(p), inv.Transform(p))
	assertVec(t, V3(3, -2, 5), m.AxisVector(3))

	composed := m.Mul(inv)
	assertVec(t, p, composed.Transform(p))
}

func TestGLArrayMatchesMathGL(t *testing.T) {
	q := FromAxisAngle(60, V3(0, 0, 1))
	pos := V3(1, 2, 3)
	got := Transform4(q, pos).GLArray()

	want := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Quat{W: q.R, V: mgl32.Vec3{q.I, q.J, q.K}}.Mat4())
	for i := range want {
		assert.InDelta(t, want[i], got[i], tol, "element %d", i)
	}
}

func TestRandomDeterministic(t *testing.T) {
	a := NewRandom(7)
	b := NewRandom(7)
	for i := 0; i < 10; i++ {
		x := a.Real(1, 2)
		assert.Equal(t, x, b.Real(1, 2))
		assert.GreaterOrEqual(t, x, Real(1))
		assert.Less(t, x, Real(2))
	}
	assert.InDelta(t, 1, a.UnitVector().Magnitude(), tol)
}
