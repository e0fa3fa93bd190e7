package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/plife/sim"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestCollect(t *testing.T) {
	ps := []sim.Particle{
		{Vel: sim.Vec2{X: 3, Y: 4}},  // speed 5
		{Vel: sim.Vec2{X: -3, Y: 4}}, // speed 5
		{Vel: sim.Vec2{X: 0, Y: 0}},  // speed 0
	}

	ws := Collect(ps, 6, 100, 200, 1.5)

	if ws.WindowStartTick != 100 || ws.WindowEndTick != 200 {
		t.Errorf("window = [%d,%d], want [100,200]", ws.WindowStartTick, ws.WindowEndTick)
	}
	if ws.Particles != 3 || ws.Kinds != 6 {
		t.Errorf("counts = %d particles %d kinds, want 3/6", ws.Particles, ws.Kinds)
	}

	wantMean := 10.0 / 3.0
	if math.Abs(ws.SpeedMean-wantMean) > 1e-9 {
		t.Errorf("speed mean = %v, want %v", ws.SpeedMean, wantMean)
	}
	if math.Abs(ws.SpeedP50-5) > 1e-9 {
		t.Errorf("speed p50 = %v, want 5", ws.SpeedP50)
	}

	// Kinetic energy: 0.5*25 + 0.5*25 + 0 = 25.
	if math.Abs(ws.KineticEnergy-25) > 1e-9 {
		t.Errorf("kinetic energy = %v, want 25", ws.KineticEnergy)
	}
	// X momenta cancel, Y momenta add.
	if math.Abs(ws.MomentumX) > 1e-9 || math.Abs(ws.MomentumY-8) > 1e-9 {
		t.Errorf("momentum = (%v,%v), want (0,8)", ws.MomentumX, ws.MomentumY)
	}
	if ws.NonFinite != 0 {
		t.Errorf("non-finite = %d, want 0", ws.NonFinite)
	}
}

func TestCollectFlagsNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	ps := []sim.Particle{
		{Vel: sim.Vec2{X: 1, Y: 0}},
		{Vel: sim.Vec2{X: nan, Y: 0}},
		{Pos: sim.Vec2{X: float32(math.Inf(1))}},
	}

	ws := Collect(ps, 2, 0, 10, 0.1)

	if ws.NonFinite != 2 {
		t.Errorf("non-finite = %d, want 2", ws.NonFinite)
	}
	// Broken particles are excluded from the distributions.
	if ws.SpeedMean != 1 {
		t.Errorf("speed mean = %v, want 1", ws.SpeedMean)
	}
	if ws.KineticEnergy != 0.5 {
		t.Errorf("kinetic energy = %v, want 0.5", ws.KineticEnergy)
	}
}

func TestCollectEmpty(t *testing.T) {
	ws := Collect(nil, 0, 0, 0, 0)
	if ws.Particles != 0 || ws.SpeedMean != 0 || ws.KineticEnergy != 0 {
		t.Errorf("empty collect should return zeros, got %+v", ws)
	}
}
