package mapgen

import (
	"crystal-engine/internal/vecmath"

	"github.com/chewxy/math32"
)

// minHeight keeps every tile a solid block even where the noise is zero.
const minHeight = 0.15

// HeightMapOptions controls procedural height map generation.
// Width/Depth are in tiles; TileSize is the world size of one tile on X/Z.
// HeightScale is the maximum height of the terrain in world units.
// Seed selects the noise; equal seeds give equal maps.
// Octaves, Frequency, Lacunarity, and Gain control the fractal noise shape.
type HeightMapOptions struct {
	Width       int
	Depth       int
	TileSize    float32
	HeightScale float32

	Seed       int64
	Octaves    int
	Frequency  float32
	Lacunarity float32
	Gain       float32
}

// DefaultHeightMapOptions returns a small hilly patch.
func DefaultHeightMapOptions() HeightMapOptions {
	return HeightMapOptions{
		Width:       8,
		Depth:       8,
		TileSize:    1.0,
		HeightScale: 1.5,
		Seed:        1,
		Octaves:     4,
		Frequency:   0.08,
		Lacunarity:  2.0,
		Gain:        0.5,
	}
}

// Tile is one column of terrain: a box with its bottom on Y=0.
type Tile struct {
	Centre   vecmath.Vector3
	HalfSize vecmath.Vector3
}

// withDefaults replaces non-positive shape settings with the defaults.
func (o HeightMapOptions) withDefaults() HeightMapOptions {
	def := DefaultHeightMapOptions()
	if o.TileSize <= 0 {
		o.TileSize = def.TileSize
	}
	if o.HeightScale <= minHeight {
		o.HeightScale = def.HeightScale
	}
	if o.Octaves <= 0 {
		o.Octaves = def.Octaves
	}
	if o.Frequency <= 0 {
		o.Frequency = def.Frequency
	}
	if o.Lacunarity <= 0 {
		o.Lacunarity = def.Lacunarity
	}
	if o.Gain <= 0 {
		o.Gain = def.Gain
	}
	return o
}

// GenerateHeightMapTiles builds a height map as a grid of box tiles sitting on Y=0, centred on
// the origin in XZ. Each tile's height is derived from fractal noise and lies in
// [minHeight, HeightScale]. Tiles are ordered row by row along X.
func GenerateHeightMapTiles(opts HeightMapOptions) []Tile {
	if opts.Width <= 0 || opts.Depth <= 0 {
		return nil
	}
	opts = opts.withDefaults()

	halfTile := opts.TileSize * 0.5
	startX := -float32(opts.Width)*halfTile + halfTile
	startZ := -float32(opts.Depth)*halfTile + halfTile

	tiles := make([]Tile, 0, opts.Width*opts.Depth)
	for z := 0; z < opts.Depth; z++ {
		for x := 0; x < opts.Width; x++ {
			h := fractalValueNoise2D(float32(x)*opts.Frequency, float32(z)*opts.Frequency,
				opts.Seed, opts.Octaves, opts.Lacunarity, opts.Gain)
			height := minHeight + h*(opts.HeightScale-minHeight)
			if !isFinite(height) || height <= 0 {
				height = minHeight
			}
			tiles = append(tiles, Tile{
				Centre:   vecmath.V3(startX+float32(x)*opts.TileSize, height*0.5, startZ+float32(z)*opts.TileSize),
				HalfSize: vecmath.V3(halfTile, height*0.5, halfTile),
			})
		}
	}
	return tiles
}

// fractalValueNoise2D is simple fractal value noise: layered smooth value noise with
// configurable octaves, lacunarity, and gain. Output is in [0,1].
func fractalValueNoise2D(x, y float32, seed int64, octaves int, lacunarity, gain float32) float32 {
	var sum, maxAmp float32
	amplitude := float32(1)
	freq := float32(1)

	for i := 0; i < octaves; i++ {
		sum += valueNoise2D(x*freq, y*freq, int32(seed)+int32(i)) * amplitude
		maxAmp += amplitude
		amplitude *= gain
		freq *= lacunarity
	}
	if maxAmp == 0 {
		return 0
	}
	return sum / maxAmp
}

// valueNoise2D is smooth value noise in [0,1] using a hash-based lattice and cubic easing.
func valueNoise2D(x, y float32, seed int32) float32 {
	x0 := int32(math32.Floor(x))
	y0 := int32(math32.Floor(y))
	sx := smoothStep(x - float32(x0))
	sy := smoothStep(y - float32(y0))

	ix0 := lerp(hash2D(x0, y0, seed), hash2D(x0+1, y0, seed), sx)
	ix1 := lerp(hash2D(x0, y0+1, seed), hash2D(x0+1, y0+1, seed), sx)
	return lerp(ix0, ix1, sy)
}

// hash2D maps integer lattice coordinates to a deterministic pseudo-random float in [0,1].
func hash2D(x, y, seed int32) float32 {
	n := x*374761393 + y*668265263 + seed*362437
	n = (n ^ (n >> 13)) * 1274126177
	n = n ^ (n >> 16)
	const invMaxInt = 1.0 / 2147483647.0
	return float32(n&0x7fffffff) * float32(invMaxInt)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// smoothStep is Perlin-style cubic easing: 3t^2 - 2t^3.
func smoothStep(t float32) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

func isFinite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
