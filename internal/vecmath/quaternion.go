package vecmath

import "github.com/chewxy/math32"

// Quaternion holds a rotation as r + i·i + j·j + k·k. Orientation quaternions are kept unit length.
type Quaternion struct {
	R, I, J, K Real
}

// IdentityQuaternion is the quaternion representing no rotation.
func IdentityQuaternion() Quaternion {
	return Quaternion{R: 1}
}

// FromAxisAngle returns the rotation of degrees around axis. The axis does not have to be unit length.
func FromAxisAngle(degrees Real, axis Vector3) Quaternion {
	half := degrees * math32.Pi / 360
	s := math32.Sin(half)
	a := axis.Normalized()
	return Quaternion{
		R: math32.Cos(half),
		I: a.X * s,
		J: a.Y * s,
		K: a.Z * s,
	}
}

// Normalized returns q scaled to unit length. A zero-length quaternion maps to the identity.
func (q Quaternion) Normalized() Quaternion {
	d := q.R*q.R + q.I*q.I + q.J*q.J + q.K*q.K
	if d < epsilon {
		return IdentityQuaternion()
	}
	d = 1 / math32.Sqrt(d)
	return Quaternion{q.R * d, q.I * d, q.J * d, q.K * d}
}

// Mul returns the Hamilton product q * o.
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		R: q.R*o.R - q.I*o.I - q.J*o.J - q.K*o.K,
		I: q.R*o.I + q.I*o.R + q.J*o.K - q.K*o.J,
		J: q.R*o.J + q.J*o.R + q.K*o.I - q.I*o.K,
		K: q.R*o.K + q.K*o.R + q.I*o.J - q.J*o.I,
	}
}

// RotateByVector rotates q by the pure quaternion (0, v).
func (q Quaternion) RotateByVector(v Vector3) Quaternion {
	return q.Mul(Quaternion{0, v.X, v.Y, v.Z})
}

// AddScaledVector integrates an angular velocity v over scale seconds. The result is not normalised.
func (q Quaternion) AddScaledVector(v Vector3, scale Real) Quaternion {
	d := Quaternion{0, v.X * scale, v.Y * scale, v.Z * scale}.Mul(q)
	return Quaternion{
		R: q.R + d.R*0.5,
		I: q.I + d.I*0.5,
		J: q.J + d.J*0.5,
		K: q.K + d.K*0.5,
	}
}

// Magnitude of the quaternion as a 4-vector.
func (q Quaternion) Magnitude() Real {
	return math32.Sqrt(q.R*q.R + q.I*q.I + q.J*q.J + q.K*q.K)
}

// epsilon below which a squared quaternion length is considered zero.
const epsilon Real = 1e-12
