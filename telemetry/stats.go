package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/plife/sim"
)

// WindowStats holds aggregated particle statistics for a tick window.
// Velocities are pixel-space, so speeds and energies are comparable across
// viewport sizes.
type WindowStats struct {
	WindowStartTick uint64  `csv:"-"`
	WindowEndTick   uint64  `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	Particles int `csv:"particles"`
	Kinds     int `csv:"kinds"`

	// Speed distribution at window end
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Bulk motion
	KineticEnergy float64 `csv:"kinetic_energy"`
	MomentumX     float64 `csv:"momentum_x"`
	MomentumY     float64 `csv:"momentum_y"`

	// NonFinite counts particles with NaN or Inf state; anything above zero
	// means the integration blew up.
	NonFinite int `csv:"non_finite"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Collect computes window statistics from the particle state after tick
// endTick.
func Collect(ps []sim.Particle, kinds int, startTick, endTick uint64, simTime float64) WindowStats {
	ws := WindowStats{
		WindowStartTick: startTick,
		WindowEndTick:   endTick,
		SimTimeSec:      simTime,
		Particles:       len(ps),
		Kinds:           kinds,
	}
	if len(ps) == 0 {
		return ws
	}

	speeds := make([]float64, 0, len(ps))
	for _, p := range ps {
		vx := float64(p.Vel.X)
		vy := float64(p.Vel.Y)
		px := float64(p.Pos.X)
		py := float64(p.Pos.Y)
		if bad(vx) || bad(vy) || bad(px) || bad(py) {
			ws.NonFinite++
			continue
		}

		sp := math.Hypot(vx, vy)
		speeds = append(speeds, sp)
		ws.KineticEnergy += 0.5 * sp * sp
		ws.MomentumX += vx
		ws.MomentumY += vy
	}
	if len(speeds) == 0 {
		return ws
	}

	ws.SpeedMean, ws.SpeedStd = stat.MeanStdDev(speeds, nil)
	if len(speeds) == 1 {
		ws.SpeedStd = 0
	}

	sort.Float64s(speeds)
	ws.SpeedP10 = Percentile(speeds, 0.10)
	ws.SpeedP50 = Percentile(speeds, 0.50)
	ws.SpeedP90 = Percentile(speeds, 0.90)

	return ws
}

func bad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartTick),
		slog.Uint64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("kinds", s.Kinds),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("momentum_x", s.MomentumX),
		slog.Float64("momentum_y", s.MomentumY),
		slog.Int("non_finite", s.NonFinite),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"particles", s.Particles,
		"kinds", s.Kinds,
		"speed_mean", s.SpeedMean,
		"speed_std", s.SpeedStd,
		"speed_p50", s.SpeedP50,
		"kinetic_energy", s.KineticEnergy,
		"momentum_x", s.MomentumX,
		"momentum_y", s.MomentumY,
		"non_finite", s.NonFinite,
	)
}
