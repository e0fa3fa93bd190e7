package sim

import (
	"math/rand"

	"github.com/aquilax/go-perlin"
)

// Visual particle size in pixels. The diameter doubles as the minimum repel
// distance so particles never fully overlap, and the reflecting boundary
// keeps one radius of clearance from the viewport edge.
const (
	Radius   float32 = 5.0
	Diameter float32 = Radius * 2
)

// Vec2 is a 2D float32 vector.
type Vec2 struct {
	X, Y float32
}

// Particle is one element of the simulation state. Pos is in clip space,
// Vel in pixel space. The layout mirrors the std430 struct in the compute
// shader (24 bytes, vec2-aligned); both buffers are uploaded verbatim.
type Particle struct {
	Pos  Vec2
	Vel  Vec2
	Kind uint32
	_    uint32 // std430 padding
}

// Layout selects how initial particle positions are drawn.
type Layout int

const (
	// LayoutUniform scatters particles uniformly over the central half of
	// the domain.
	LayoutUniform Layout = iota
	// LayoutClustered biases positions toward the ridges of a Perlin noise
	// field, seeding the run with ready-made density clumps.
	LayoutClustered
)

// generate fills ps with randomized particles: kind uniform over kinds,
// position per layout, velocity drawn from a normal with sigma 0.2 pixels.
func generate(ps []Particle, kinds int, layout Layout, rng *rand.Rand) {
	var noise *perlin.Perlin
	if layout == LayoutClustered {
		noise = perlin.NewPerlin(2, 2, 3, rng.Int63())
	}

	for i := range ps {
		var x, y float32
		switch layout {
		case LayoutClustered:
			x, y = clusteredPos(noise, rng)
		default:
			x = rng.Float32() - 0.5
			y = rng.Float32() - 0.5
		}

		ps[i] = Particle{
			Pos:  Vec2{x, y},
			Vel:  Vec2{0.2 * float32(rng.NormFloat64()), 0.2 * float32(rng.NormFloat64())},
			Kind: uint32(rng.Intn(kinds)),
		}
	}
}

// clusteredPos rejection-samples a position, accepting proportionally to
// the local noise density. Bounded tries so a flat noise field cannot spin.
func clusteredPos(noise *perlin.Perlin, rng *rand.Rand) (float32, float32) {
	const noiseScale = 2.5

	var x, y float32
	for try := 0; try < 16; try++ {
		x = rng.Float32() - 0.5
		y = rng.Float32() - 0.5

		// Noise2D is roughly in [-1,1]; squash to [0,1] and sharpen.
		n := (noise.Noise2D(float64(x)*noiseScale, float64(y)*noiseScale) + 1) * 0.5
		if rng.Float64() < n*n {
			break
		}
	}
	return x, y
}
