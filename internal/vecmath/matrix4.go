package vecmath

import "github.com/go-gl/mathgl/mgl32"

// Matrix4 is a 3x4 row-major affine transform (rotation plus translation; the fourth row is
// implicitly 0 0 0 1). Inverse operations assume there is no scale or shear.
type Matrix4 struct {
	Data [12]Real
}

// Identity4 returns the identity transform.
func Identity4() Matrix4 {
	return Matrix4{Data: [12]Real{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0}}
}

// Transform4 builds the transform for the given orientation and position.
func Transform4(q Quaternion, pos Vector3) Matrix4 {
	r := Orientation3(q)
	return Matrix4{Data: [12]Real{
		r.Data[0], r.Data[1], r.Data[2], pos.X,
		r.Data[3], r.Data[4], r.Data[5], pos.Y,
		r.Data[6], r.Data[7], r.Data[8], pos.Z,
	}}
}

// Transform applies the full transform to a point.
func (m Matrix4) Transform(v Vector3) Vector3 {
	return Vector3{
		v.X*m.Data[0] + v.Y*m.Data[1] + v.Z*m.Data[2] + m.Data[3],
		v.X*m.Data[4] + v.Y*m.Data[5] + v.Z*m.Data[6] + m.Data[7],
		v.X*m.Data[8] + v.Y*m.Data[9] + v.Z*m.Data[10] + m.Data[11],
	}
}

// TransformInverse applies the inverse transform to a point. Only valid for rigid transforms.
func (m Matrix4) TransformInverse(v Vector3) Vector3 {
	t := Vector3{v.X - m.Data[3], v.Y - m.Data[7], v.Z - m.Data[11]}
	return Vector3{
		t.X*m.Data[0] + t.Y*m.Data[4] + t.Z*m.Data[8],
		t.X*m.Data[1] + t.Y*m.Data[5] + t.Z*m.Data[9],
		t.X*m.Data[2] + t.Y*m.Data[6] + t.Z*m.Data[10],
	}
}

// TransformDirection applies only the rotational part.
func (m Matrix4) TransformDirection(v Vector3) Vector3 {
	return Vector3{
		v.X*m.Data[0] + v.Y*m.Data[1] + v.Z*m.Data[2],
		v.X*m.Data[4] + v.Y*m.Data[5] + v.Z*m.Data[6],
		v.X*m.Data[8] + v.Y*m.Data[9] + v.Z*m.Data[10],
	}
}

// TransformInverseDirection applies the inverse of the rotational part.
func (m Matrix4) TransformInverseDirection(v Vector3) Vector3 {
	return Vector3{
		v.X*m.Data[0] + v.Y*m.Data[4] + v.Z*m.Data[8],
		v.X*m.Data[1] + v.Y*m.Data[5] + v.Z*m.Data[9],
		v.X*m.Data[2] + v.Y*m.Data[6] + v.Z*m.Data[10],
	}
}

// AxisVector returns column i: the body axes for 0..2 and the position for 3.
func (m Matrix4) AxisVector(i int) Vector3 {
	return Vector3{m.Data[i], m.Data[i+4], m.Data[i+8]}
}

// Rotation returns the 3x3 rotational part.
func (m Matrix4) Rotation() Matrix3 {
	d := m.Data
	return Matrix3{Data: [9]Real{d[0], d[1], d[2], d[4], d[5], d[6], d[8], d[9], d[10]}}
}

// Mul composes two transforms: (m * o) applied to a point equals m applied to o applied to it.
func (m Matrix4) Mul(o Matrix4) Matrix4 {
	a, b := m.Data, o.Data
	return Matrix4{Data: [12]Real{
		b[0]*a[0] + b[4]*a[1] + b[8]*a[2],
		b[1]*a[0] + b[5]*a[1] + b[9]*a[2],
		b[2]*a[0] + b[6]*a[1] + b[10]*a[2],
		b[3]*a[0] + b[7]*a[1] + b[11]*a[2] + a[3],

		b[0]*a[4] + b[4]*a[5] + b[8]*a[6],
		b[1]*a[4] + b[5]*a[5] + b[9]*a[6],
		b[2]*a[4] + b[6]*a[5] + b[10]*a[6],
		b[3]*a[4] + b[7]*a[5] + b[11]*a[6] + a[7],

		b[0]*a[8] + b[4]*a[9] + b[8]*a[10],
		b[1]*a[8] + b[5]*a[9] + b[9]*a[10],
		b[2]*a[8] + b[6]*a[9] + b[10]*a[10],
		b[3]*a[8] + b[7]*a[9] + b[11]*a[10] + a[11],
	}}
}

// Determinant of the 3x3 rotational part.
func (m Matrix4) Determinant() Real {
	return m.Rotation().Determinant()
}

// Inverse returns the general affine inverse. ok is false for a singular matrix.
func (m Matrix4) Inverse() (Matrix4, bool) {
	det := m.Determinant()
	if det == 0 {
		return m, false
	}
	det = 1 / det
	d := m.Data
	var r Matrix4
	r.Data[0] = (-d[9]*d[6] + d[5]*d[10]) * det
	r.Data[4] = (d[8]*d[6] - d[4]*d[10]) * det
	r.Data[8] = (-d[8]*d[5] + d[4]*d[9]) * det

	r.Data[1] = (d[9]*d[2] - d[1]*d[10]) * det
	r.Data[5] = (-d[8]*d[2] + d[0]*d[10]) * det
	r.Data[9] = (d[8]*d[1] - d[0]*d[9]) * det

	r.Data[2] = (-d[5]*d[2] + d[1]*d[6]) * det
	r.Data[6] = (d[4]*d[2] - d[0]*d[6]) * det
	r.Data[10] = (-d[4]*d[1] + d[0]*d[5]) * det

	r.Data[3] = (d[9]*d[6]*d[3] - d[5]*d[10]*d[3] - d[9]*d[2]*d[7] +
		d[1]*d[10]*d[7] + d[5]*d[2]*d[11] - d[1]*d[6]*d[11]) * det
	r.Data[7] = (-d[8]*d[6]*d[3] + d[4]*d[10]*d[3] + d[8]*d[2]*d[7] -
		d[0]*d[10]*d[7] - d[4]*d[2]*d[11] + d[0]*d[6]*d[11]) * det
	r.Data[11] = (d[8]*d[5]*d[3] - d[4]*d[9]*d[3] - d[8]*d[1]*d[7] +
		d[0]*d[9]*d[7] + d[4]*d[1]*d[11] - d[0]*d[5]*d[11]) * det
	return r, true
}

// GLArray returns the transform as a column-major 4x4 matrix for the renderer.
func (m Matrix4) GLArray() mgl32.Mat4 {
	d := m.Data
	return mgl32.Mat4{
		d[0], d[4], d[8], 0,
		d[1], d[5], d[9], 0,
		d[2], d[6], d[10], 0,
		d[3], d[7], d[11], 1,
	}
}
