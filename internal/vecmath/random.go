package vecmath

import "math/rand/v2"

// Random is a seeded source of Real values and vectors. It is not safe for concurrent use.
type Random struct {
	r *rand.Rand
}

// NewRandom returns a generator seeded with seed. Equal seeds give equal sequences.
func NewRandom(seed uint64) *Random {
	return &Random{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Real returns a value in [min, max).
func (g *Random) Real(min, max Real) Real {
	return min + Real(g.r.Float32())*(max-min)
}

// Vector returns a vector whose components are each in [min, max).
func (g *Random) Vector(min, max Real) Vector3 {
	return Vector3{g.Real(min, max), g.Real(min, max), g.Real(min, max)}
}

// UnitVector returns a direction uniformly distributed over the unit sphere.
func (g *Random) UnitVector() Vector3 {
	for {
		v := g.Vector(-1, 1)
		sq := v.SquareMagnitude()
		if sq > 1e-6 && sq <= 1 {
			return v.Scale(1 / Sqrt(sq))
		}
	}
}
