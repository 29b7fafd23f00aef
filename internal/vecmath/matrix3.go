package vecmath

// Matrix3 is a row-major 3x3 matrix, used for inertia tensors and contact bases.
type Matrix3 struct {
	Data [9]Real
}

// Identity3 returns the 3x3 identity matrix.
func Identity3() Matrix3 {
	return Matrix3{Data: [9]Real{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

// Diagonal3 returns a matrix with a, b, c on the diagonal.
func Diagonal3(a, b, c Real) Matrix3 {
	return Matrix3{Data: [9]Real{a, 0, 0, 0, b, 0, 0, 0, c}}
}

// Components3 builds a matrix whose columns are the three vectors.
func Components3(one, two, three Vector3) Matrix3 {
	return Matrix3{Data: [9]Real{
		one.X, two.X, three.X,
		one.Y, two.Y, three.Y,
		one.Z, two.Z, three.Z,
	}}
}

// SkewSymmetric3 returns the matrix equivalent of a cross product with v: M*x == v × x.
func SkewSymmetric3(v Vector3) Matrix3 {
	return Matrix3{Data: [9]Real{
		0, -v.Z, v.Y,
		v.Z, 0, -v.X,
		-v.Y, v.X, 0,
	}}
}

// InertiaTensorCoeffs3 builds an inertia tensor from principal moments and products of inertia.
func InertiaTensorCoeffs3(ix, iy, iz, ixy, ixz, iyz Real) Matrix3 {
	return Matrix3{Data: [9]Real{
		ix, -ixy, -ixz,
		-ixy, iy, -iyz,
		-ixz, -iyz, iz,
	}}
}

// BlockInertiaTensor3 returns the inertia tensor of a solid box with the given half sizes and mass.
func BlockInertiaTensor3(halfSizes Vector3, mass Real) Matrix3 {
	sq := halfSizes.ComponentProduct(halfSizes)
	return InertiaTensorCoeffs3(
		0.3*mass*(sq.Y+sq.Z),
		0.3*mass*(sq.X+sq.Z),
		0.3*mass*(sq.X+sq.Y),
		0, 0, 0,
	)
}

// SphereInertiaTensor3 returns the inertia tensor of a solid sphere.
func SphereInertiaTensor3(radius, mass Real) Matrix3 {
	c := 0.4 * mass * radius * radius
	return Diagonal3(c, c, c)
}

// Transform multiplies the matrix by v.
func (m Matrix3) Transform(v Vector3) Vector3 {
	return Vector3{
		v.X*m.Data[0] + v.Y*m.Data[1] + v.Z*m.Data[2],
		v.X*m.Data[3] + v.Y*m.Data[4] + v.Z*m.Data[5],
		v.X*m.Data[6] + v.Y*m.Data[7] + v.Z*m.Data[8],
	}
}

// TransformTranspose multiplies the transpose of the matrix by v.
func (m Matrix3) TransformTranspose(v Vector3) Vector3 {
	return Vector3{
		v.X*m.Data[0] + v.Y*m.Data[3] + v.Z*m.Data[6],
		v.X*m.Data[1] + v.Y*m.Data[4] + v.Z*m.Data[7],
		v.X*m.Data[2] + v.Y*m.Data[5] + v.Z*m.Data[8],
	}
}

// Row returns row i as a vector.
func (m Matrix3) Row(i int) Vector3 {
	return Vector3{m.Data[i*3], m.Data[i*3+1], m.Data[i*3+2]}
}

// Column returns column i as a vector.
func (m Matrix3) Column(i int) Vector3 {
	return Vector3{m.Data[i], m.Data[i+3], m.Data[i+6]}
}

// Mul returns m * o.
func (m Matrix3) Mul(o Matrix3) Matrix3 {
	var r Matrix3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			r.Data[row*3+col] = m.Data[row*3]*o.Data[col] +
				m.Data[row*3+1]*o.Data[3+col] +
				m.Data[row*3+2]*o.Data[6+col]
		}
	}
	return r
}

func (m Matrix3) Add(o Matrix3) Matrix3 {
	for i := range m.Data {
		m.Data[i] += o.Data[i]
	}
	return m
}

func (m Matrix3) Scale(s Real) Matrix3 {
	for i := range m.Data {
		m.Data[i] *= s
	}
	return m
}

// Determinant of the matrix.
func (m Matrix3) Determinant() Real {
	d := m.Data
	return d[0]*(d[4]*d[8]-d[5]*d[7]) -
		d[1]*(d[3]*d[8]-d[5]*d[6]) +
		d[2]*(d[3]*d[7]-d[4]*d[6])
}

// Inverse returns the inverse of m. ok is false, and m is returned unchanged, when m is singular.
func (m Matrix3) Inverse() (Matrix3, bool) {
	d := m.Data
	t4 := d[0] * d[4]
	t6 := d[0] * d[5]
	t8 := d[1] * d[3]
	t10 := d[2] * d[3]
	t12 := d[1] * d[6]
	t14 := d[2] * d[6]

	det := t4*d[8] - t6*d[7] - t8*d[8] + t10*d[7] + t12*d[5] - t14*d[4]
	if det == 0 {
		return m, false
	}
	t17 := 1 / det

	var r Matrix3
	r.Data[0] = (d[4]*d[8] - d[5]*d[7]) * t17
	r.Data[1] = -(d[1]*d[8] - d[2]*d[7]) * t17
	r.Data[2] = (d[1]*d[5] - d[2]*d[4]) * t17
	r.Data[3] = -(d[3]*d[8] - d[5]*d[6]) * t17
	r.Data[4] = (d[0]*d[8] - t14) * t17
	r.Data[5] = -(t6 - t10) * t17
	r.Data[6] = (d[3]*d[7] - d[4]*d[6]) * t17
	r.Data[7] = -(d[0]*d[7] - t12) * t17
	r.Data[8] = (t4 - t8) * t17
	return r, true
}

func (m Matrix3) Transpose() Matrix3 {
	d := m.Data
	return Matrix3{Data: [9]Real{
		d[0], d[3], d[6],
		d[1], d[4], d[7],
		d[2], d[5], d[8],
	}}
}

// Orientation3 returns the rotation matrix for the (unit) quaternion q.
func Orientation3(q Quaternion) Matrix3 {
	return Matrix3{Data: [9]Real{
		1 - (2*q.J*q.J + 2*q.K*q.K),
		2*q.I*q.J - 2*q.K*q.R,
		2*q.I*q.K + 2*q.J*q.R,
		2*q.I*q.J + 2*q.K*q.R,
		1 - (2*q.I*q.I + 2*q.K*q.K),
		2*q.J*q.K - 2*q.I*q.R,
		2*q.I*q.K - 2*q.J*q.R,
		2*q.J*q.K + 2*q.I*q.R,
		1 - (2*q.I*q.I + 2*q.J*q.J),
	}}
}

// LinearInterpolate blends a towards b by prop (0 gives a, 1 gives b).
func LinearInterpolate(a, b Matrix3, prop Real) Matrix3 {
	var r Matrix3
	omp := 1 - prop
	for i := range r.Data {
		r.Data[i] = a.Data[i]*omp + b.Data[i]*prop
	}
	return r
}
