package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/plife/renderer"
)

// presetKeys maps hotkeys to preset names.
var presetKeys = map[int32]string{
	rl.KeyB: "balanced",
	rl.KeyC: "chaos",
	rl.KeyD: "diversity",
	rl.KeyF: "frictionless",
	rl.KeyG: "gliders",
	rl.KeyH: "homogeneity",
	rl.KeyL: "large_clusters",
	rl.KeyM: "medium_clusters",
	rl.KeyQ: "quiescence",
	rl.KeyS: "small_clusters",
}

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	for key, name := range presetKeys {
		if rl.IsKeyPressed(key) {
			if err := g.applyPreset(name); err != nil {
				slog.Warn("preset switch failed", "preset", name, "error", err)
			}
		}
	}

	if rl.IsKeyPressed(rl.KeyW) {
		g.setWrap(!g.wrap)
	}
	if rl.IsKeyPressed(rl.KeyEnter) {
		g.engine.RandomizeParticles()
		g.trails = g.trails[:0]
		g.windowStart = 0
		g.tracked = -1
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.slowed = !g.slowed
	}
	if rl.IsKeyPressed(rl.KeyT) {
		g.showTrails = !g.showTrails
		if !g.showTrails {
			g.trails = g.trails[:0]
		}
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.controls.Toggle()
	}

	g.handleCameraInput()
	g.handleSelection()
}

// handleResize propagates window size changes. The world is always the full
// window, so viewport and world resize together.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	g.engine.Resize(w, h)
	g.cam.Resize(w, h, w, h)
	slog.Info("window resized", "width", w, "height", h)
}

// handleCameraInput processes zoom, pan, and tracking follow.
func (g *Game) handleCameraInput() {
	wheelMove := rl.GetMouseWheelMove()
	if wheelMove != 0 {
		g.cam.ZoomBy(1.0 + wheelMove*0.1)
	}

	panSpeed := 10.0 / g.cam.Zoom
	if rl.IsKeyDown(rl.KeyRight) {
		g.cam.Pan(panSpeed, 0)
		g.tracked = -1
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.cam.Pan(-panSpeed, 0)
		g.tracked = -1
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.cam.Pan(0, panSpeed)
		g.tracked = -1
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.cam.Pan(0, -panSpeed)
		g.tracked = -1
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.cam.Reset()
		g.tracked = -1
	}

	if g.tracked >= 0 {
		ps := g.engine.Particles()
		if g.tracked >= len(ps) {
			g.tracked = -1
			return
		}
		wx, wy := renderer.ClipToWorld(ps[g.tracked].Pos, g.cam.WorldW, g.cam.WorldH)
		g.cam.Approach(wx, wy, 0.1)
	}
}

// handleSelection picks the particle nearest a left click for the camera to
// follow. Clicks on the controls panel are not picks, and clicking empty
// space clears tracking.
func (g *Game) handleSelection() {
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}
	mouse := rl.GetMousePosition()
	if g.controls.Contains(mouse.X, mouse.Y) {
		return
	}

	wx, wy := g.cam.ScreenToWorld(mouse.X, mouse.Y)
	pickRadius := 10.0 / g.cam.Zoom

	best := -1
	bestD2 := pickRadius * pickRadius
	for i, p := range g.engine.Particles() {
		px, py := renderer.ClipToWorld(p.Pos, g.cam.WorldW, g.cam.WorldH)
		dx := px - wx
		dy := py - wy
		if d2 := dx*dx + dy*dy; d2 < bestD2 {
			best, bestD2 = i, d2
		}
	}
	g.tracked = best
}
