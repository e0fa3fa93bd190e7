package sim

import (
	"math"
	"testing"
)

func TestForceMagRepulsion(t *testing.T) {
	props := SymmetricProps{RepelDistance: 10, InfluenceRadius: 30}

	// Repulsion is independent of the attraction sign and always pushes
	// apart (negative magnitude along the toward-neighbor direction).
	for _, attraction := range []float32{-0.5, 0, 0.5} {
		prev := float32(math.Inf(-1))
		for dist := float32(0.2); dist < props.RepelDistance; dist += 0.2 {
			mag := ForceMag(dist, props, attraction, false)
			if mag >= 0 {
				t.Fatalf("ForceMag(%v) = %v, want repulsive (< 0)", dist, mag)
			}
			// Strictly weakening toward the repel distance.
			if mag <= prev {
				t.Fatalf("ForceMag(%v) = %v, not strictly increasing from %v", dist, mag, prev)
			}
			prev = mag
		}
	}

	// Exactly at the repel distance the repulsive curve reaches zero.
	if mag := ForceMag(props.RepelDistance, props, 0.5, false); mag != 0 {
		t.Errorf("ForceMag at repel distance = %v, want 0", mag)
	}
}

func TestForceMagTriangularBand(t *testing.T) {
	props := SymmetricProps{RepelDistance: 10, InfluenceRadius: 30}
	const attraction = 0.25

	peak := 0.5 * (props.RepelDistance + props.InfluenceRadius)

	tests := []struct {
		name string
		dist float32
		want float32
	}{
		{"band midpoint", peak, attraction},
		{"outer edge", props.InfluenceRadius, 0},
		{"quarter band", 15, attraction * 0.5},
		{"three quarter band", 25, attraction * 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForceMag(tt.dist, props, attraction, false)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("ForceMag(%v) = %v, want %v", tt.dist, got, tt.want)
			}
		})
	}
}

func TestForceMagFlatBand(t *testing.T) {
	props := SymmetricProps{RepelDistance: 10, InfluenceRadius: 30}
	const attraction = -0.1

	// Flat force holds the raw attraction across the whole band.
	for dist := float32(10.5); dist < props.InfluenceRadius; dist += 1.5 {
		if got := ForceMag(dist, props, attraction, true); got != attraction {
			t.Errorf("ForceMag(%v, flat) = %v, want %v", dist, got, attraction)
		}
	}

	// Repulsion zone ignores the flat flag.
	inside := ForceMag(5, props, attraction, true)
	if inside != ForceMag(5, props, attraction, false) {
		t.Errorf("flat flag changed repulsion: %v", inside)
	}
}
