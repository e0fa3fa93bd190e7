package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/plife/telemetry"
	"github.com/pthm-cable/plife/ui"
)

const controlsLegend = "B/C/D/F/G/H/L/M/Q/S preset | W wrap | T trails | Enter reseed | Space slow | Tab panel | Click track | Arrows pan | Wheel zoom | Home reset"

// Draw renders one frame. Must follow an Update call in the same frame so
// the perf sample opened there gets closed.
func (g *Game) Draw() {
	g.perf.StartPhase(telemetry.PhaseDraw)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	if g.showTrails {
		g.particles.DrawTrails(g.trails, g.engine.Kinds(), g.cam)
	}
	g.particles.Draw(g.engine.Particles(), g.engine.Kinds(), g.cam, g.tracked)

	rate := g.cfg.Sim.StepsPerSecond
	if g.slowed {
		rate = g.cfg.Sim.SlowStepsPerSecond
	}
	screenH := int32(rl.GetScreenHeight())

	g.hud.Draw(ui.HUDData{
		Title:       "plife",
		Preset:      g.preset,
		Backend:     g.engine.Backend(),
		Particles:   len(g.engine.Particles()),
		Kinds:       g.engine.Kinds(),
		Tick:        g.engine.Tick(),
		StepsPerSec: rate,
		FPS:         rl.GetFPS(),
		Slowed:      g.slowed,
		Tracking:    g.tracked >= 0,
	})
	g.drawControls()
	g.hud.DrawControls(screenH, controlsLegend)

	rl.EndDrawing()

	g.perf.EndTick()
	g.perf.RecordFrame()
}

// drawControls renders the settings panel and stages any edits it reports.
func (g *Game) drawControls() {
	table := g.engine.Table()
	result := g.controls.Draw(ui.ControlsState{
		Preset:    g.preset,
		Friction:  table.Friction,
		Wrap:      table.Wrap,
		FlatForce: table.FlatForce,
		Backend:   g.engine.Backend(),
	})

	if result.FrictionChanged {
		if err := g.engine.SetFriction(result.Friction); err != nil {
			slog.Warn("friction edit rejected", "error", err)
		}
	}
	if result.WrapChanged {
		g.setWrap(result.Wrap)
	}
	if result.FlatForceChanged {
		if err := g.engine.SetFlatForce(result.FlatForce); err != nil {
			slog.Warn("flat force edit rejected", "error", err)
		}
	}
	if result.NextPreset {
		if err := g.applyPreset(g.nextPreset()); err != nil {
			slog.Warn("preset switch failed", "error", err)
		}
	}
}

// nextPreset returns the preset after the current one in the sorted catalog.
func (g *Game) nextPreset() string {
	names := g.cfg.Derived.PresetNames
	for i, name := range names {
		if name == g.preset {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}
