package sim

import "math"

// rSmooth offsets the repulsion curve's denominators so the force stays
// bounded as the pair distance approaches zero. The value is part of the
// tuned behavior; changing it changes every preset's dynamics.
const rSmooth float32 = 2.0

// minDist2 is the squared distance below which a pair is skipped entirely,
// so the direction normalization never divides by (near) zero.
const minDist2 float32 = 0.01

// ForceMag returns the scalar force magnitude for a pair at the given
// distance, positive toward the other particle. Distances are in pixel
// units. The caller is responsible for the cutoff tests (dist^2 within
// [minDist2, influence^2]); this function only evaluates the in-range
// profile:
//
//   - dist <= repel: a smooth bounded repulsion, strongest near contact and
//     zero at the repel distance, independent of the attraction value.
//   - otherwise: the attraction scaled by a triangular profile over the
//     band (zero at both edges, full strength at the midpoint), or taken
//     flat across the whole band when flatForce is set.
func ForceMag(dist float32, props SymmetricProps, attraction float32, flatForce bool) float32 {
	repel := props.RepelDistance
	if dist <= repel {
		return rSmooth * repel * (1/(repel+rSmooth) - 1/(dist+rSmooth))
	}
	if flatForce {
		return attraction
	}
	peak := 0.5 * (repel + props.InfluenceRadius)
	base := 0.5 * (props.InfluenceRadius - repel)
	return attraction * (1 - abs32(dist-peak)/base)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
