package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title       string
	Preset      string
	Backend     string
	Particles   int
	Kinds       int
	Tick        uint64
	StepsPerSec int
	FPS         int32
	Slowed      bool
	Tracking    bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	// Title
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Preset: %s | Particles: %d | Kinds: %d | Backend: %s",
			data.Preset, data.Particles, data.Kinds, data.Backend),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | Steps/s: %d | FPS: %d", data.Tick, data.StepsPerSec, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	if data.Slowed {
		rl.DrawText("SLOW", 10, 75, 16, rl.Yellow)
	}
	if data.Tracking {
		rl.DrawText("TRACKING", 70, 75, 16, rl.SkyBlue)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}
