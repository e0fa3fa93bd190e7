package game

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/plife/sim"
	"github.com/pthm-cable/plife/telemetry"
)

// Update processes input and advances the simulation by however many ticks
// the wall clock owes, capped so a stalled frame never triggers a runaway
// catch-up burst. Call once per frame, followed by Draw.
func (g *Game) Update() {
	g.handleInput()

	now := time.Now()
	elapsed := now.Sub(g.lastTime).Seconds()
	g.lastTime = now

	rate := g.cfg.Sim.StepsPerSecond
	if g.slowed {
		rate = g.cfg.Sim.SlowStepsPerSecond
	}
	g.stepAccum += elapsed * float64(rate)

	steps := int(g.stepAccum)
	if steps > g.cfg.Sim.MaxStepsPerFrame {
		steps = g.cfg.Sim.MaxStepsPerFrame
		g.stepAccum = 0
	} else {
		g.stepAccum -= float64(steps)
	}

	// One perf sample spans the whole frame; Draw closes it.
	g.perf.StartTick()
	g.perf.StartPhase(telemetry.PhaseStep)
	for i := 0; i < steps; i++ {
		if err := g.engine.Step(); err != nil {
			slog.Error("step failed", "error", err)
			break
		}
	}

	g.perf.StartPhase(telemetry.PhaseTrails)
	if steps > 0 && g.showTrails {
		g.recordTrail()
	}

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
}

// UpdateHeadless advances exactly one tick with no pacing, input, or
// rendering. The headless driver calls this in a tight loop.
func (g *Game) UpdateHeadless() error {
	g.perf.StartTick()
	g.perf.StartPhase(telemetry.PhaseStep)
	if err := g.engine.Step(); err != nil {
		return err
	}
	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	g.perf.EndTick()
	return nil
}

// recordTrail snapshots the current particle positions into the trail ring.
func (g *Game) recordTrail() {
	snap := append([]sim.Particle(nil), g.engine.Particles()...)
	g.trails = append(g.trails, snap)
	if len(g.trails) > g.cfg.Render.TrailLength {
		g.trails = g.trails[1:]
	}
}

// flushTelemetry emits a stats window when the current one has filled.
func (g *Game) flushTelemetry() {
	tick := g.engine.Tick()
	if g.windowTicks == 0 || tick < g.windowStart+g.windowTicks {
		return
	}

	simTime := float64(tick) / float64(g.cfg.Sim.StepsPerSecond)
	stats := telemetry.Collect(g.engine.Particles(), g.engine.Kinds(), g.windowStart, tick, simTime)
	perfStats := g.perf.Stats()
	g.windowStart = tick

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.output != nil {
		if err := g.output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
