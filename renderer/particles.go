// Package renderer draws the particle state. Simulation positions are clip
// space; everything here converts through world pixels and the camera before
// touching the screen.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/plife/camera"
	"github.com/pthm-cable/plife/sim"
)

// trailAlpha is the opacity of the newest trail snapshot; older snapshots
// fade down linearly from it.
const trailAlpha = 110

// KindColor returns the display color for a kind: hues spaced evenly around
// the wheel, with brightness alternating between kinds so neighbors on the
// wheel stay distinguishable.
func KindColor(kind uint32, kinds int) rl.Color {
	angle := 360.0 / float32(kinds)
	value := float32(0.5)
	if kind%2 == 1 {
		value = 1.0
	}
	return rl.ColorFromHSV(angle*float32(kind), 1.0, value)
}

// ClipToWorld converts a clip-space position to world pixels.
func ClipToWorld(p sim.Vec2, worldW, worldH float32) (float32, float32) {
	return (p.X + 1) * 0.5 * worldW, (p.Y + 1) * 0.5 * worldH
}

// ParticleRenderer renders the particle population and its trails.
type ParticleRenderer struct{}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{}
}

// Draw renders all particles. tracked is the index of the followed particle
// (-1 for none); it gets a highlight ring.
func (r *ParticleRenderer) Draw(ps []sim.Particle, kinds int, cam *camera.Camera, tracked int) {
	radius := sim.Radius * cam.Zoom

	for i := range ps {
		p := &ps[i]
		wx, wy := ClipToWorld(p.Pos, cam.WorldW, cam.WorldH)
		color := KindColor(p.Kind, kinds)

		if cam.IsVisible(wx, wy, sim.Radius) {
			sx, sy := cam.WorldToScreen(wx, wy)
			rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius, color)

			if i == tracked {
				rl.DrawCircleLines(int32(sx), int32(sy), radius+4, rl.White)
			}
		}

		// Particles straddling a wrap seam show on both sides.
		for _, g := range cam.GhostPositions(wx, wy, sim.Radius) {
			rl.DrawCircleV(rl.Vector2{X: g.X, Y: g.Y}, radius, color)
		}
	}
}

// DrawTrails renders the motion history, oldest snapshot first so recent
// positions draw on top with higher opacity.
func (r *ParticleRenderer) DrawTrails(history [][]sim.Particle, kinds int, cam *camera.Camera) {
	if len(history) == 0 {
		return
	}

	radius := 2 * cam.Zoom

	for gen, snapshot := range history {
		alpha := uint8(trailAlpha * (gen + 1) / len(history))
		for i := range snapshot {
			p := &snapshot[i]
			wx, wy := ClipToWorld(p.Pos, cam.WorldW, cam.WorldH)
			if !cam.IsVisible(wx, wy, sim.Radius) {
				continue
			}
			color := KindColor(p.Kind, kinds)
			color.A = alpha
			sx, sy := cam.WorldToScreen(wx, wy)
			rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius, color)
		}
	}
}
