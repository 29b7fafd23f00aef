package vecmath

import "github.com/chewxy/math32"

// Real is the floating point type used by the whole physics core.
type Real = float32

// MaxReal is the largest representable Real (used for infinite mass and "no contact yet" scans).
const MaxReal Real = math32.MaxFloat32

// Sqrt, Pow and Abs are thin aliases so physics code reads like the formulas it implements.
func Sqrt(x Real) Real { return math32.Sqrt(x) }
func Pow(x, y Real) Real { return math32.Pow(x, y) }
func Abs(x Real) Real { return math32.Abs(x) }

// Vector3 is a 3D vector (or point) in world or body space.
type Vector3 struct {
	X, Y, Z Real
}

var (
	// Gravity is standard earth gravity along -Y.
	Gravity     = Vector3{0, -9.81, 0}
	HighGravity = Vector3{0, -19.62, 0}
	Up          = Vector3{0, 1, 0}
	Right       = Vector3{1, 0, 0}
	OutOfScreen = Vector3{0, 0, 1}
	X           = Vector3{1, 0, 0}
	Y           = Vector3{0, 1, 0}
	Z           = Vector3{0, 0, 1}
)

// V3 returns the vector (x, y, z).
func V3(x, y, z Real) Vector3 {
	return Vector3{x, y, z}
}

// Component returns X, Y or Z for i = 0, 1, 2.
func (v Vector3) Component(i int) Real {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector3) Scale(s Real) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

// AddScaled returns v + o*s.
func (v Vector3) AddScaled(o Vector3, s Real) Vector3 {
	return Vector3{v.X + o.X*s, v.Y + o.Y*s, v.Z + o.Z*s}
}

// Invert returns -v.
func (v Vector3) Invert() Vector3 {
	return Vector3{-v.X, -v.Y, -v.Z}
}

// Dot is the scalar product.
func (v Vector3) Dot(o Vector3) Real {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross is the vector product v × o.
func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// ComponentProduct multiplies component by component.
func (v Vector3) ComponentProduct(o Vector3) Vector3 {
	return Vector3{v.X * o.X, v.Y * o.Y, v.Z * o.Z}
}

func (v Vector3) Magnitude() Real {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vector3) SquareMagnitude() Real {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Normalized returns the unit vector in the direction of v. The zero vector stays zero.
func (v Vector3) Normalized() Vector3 {
	l := v.Magnitude()
	if l <= 0 {
		return v
	}
	return v.Scale(1 / l)
}

// IsZero reports whether all components are exactly zero.
func (v Vector3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Trim limits the magnitude of v to size.
func (v Vector3) Trim(size Real) Vector3 {
	if v.SquareMagnitude() > size*size {
		return v.Normalized().Scale(size)
	}
	return v
}
