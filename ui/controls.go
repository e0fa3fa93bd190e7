package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsState is the current rule settings shown by the panel.
type ControlsState struct {
	Preset    string
	Friction  float32
	Wrap      bool
	FlatForce bool
	Backend   string
}

// ControlsResult reports which settings the user changed this frame.
// Unchanged values carry the input state back untouched.
type ControlsResult struct {
	Friction        float32
	FrictionChanged bool

	Wrap        bool
	WrapChanged bool

	FlatForce        bool
	FlatForceChanged bool

	// NextPreset requests a switch to the next preset in the catalog.
	NextPreset bool
}

// ControlsPanel renders the interactive settings panel.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  false,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point lies inside the visible panel, so
// clicks on the panel are not also treated as particle picks.
func (c *ControlsPanel) Contains(x, y float32) bool {
	if !c.visible {
		return false
	}
	return x >= float32(c.x) && x <= float32(c.x+c.width) &&
		y >= float32(c.y) && y <= float32(c.y+c.panelHeight())
}

func (c *ControlsPanel) panelHeight() int32 {
	r := c.renderer
	return r.Theme.Padding*2 + r.Theme.LineHeight*10 + 20
}

// Draw renders the panel and returns any settings the user changed.
func (c *ControlsPanel) Draw(state ControlsState) ControlsResult {
	result := ControlsResult{
		Friction:  state.Friction,
		Wrap:      state.Wrap,
		FlatForce: state.FlatForce,
	}
	if !c.visible {
		return result
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	r.DrawPanel(c.x, c.y, c.width, c.panelHeight())

	x := c.x + padding
	y := c.y + padding
	innerWidth := c.width - padding*2

	rl.DrawText("Rules", x, y, 16, rl.White)
	y += lineHeight + 4

	rl.DrawText("Preset:", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(state.Preset, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	if gui.Button(rl.Rectangle{X: float32(x + innerWidth - 50), Y: float32(y - 2), Width: 50, Height: 16}, "next") {
		result.NextPreset = true
	}
	y += lineHeight
	y = r.DrawLabelValue(x, y, "Backend", state.Backend)
	y += 4

	// Friction slider, capped just under 1 so damping never reaches a
	// full stop of the whole system in one tick.
	rl.DrawText("Friction", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += lineHeight
	newFriction := gui.SliderBar(
		rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(innerWidth - 50), Height: 16},
		"0", "0.99",
		state.Friction, 0, 0.99,
	)
	rl.DrawText(fmt.Sprintf("%.2f", newFriction), x+innerWidth-40, y+2, r.Theme.FontSize, r.Theme.ValueColor)
	if newFriction != state.Friction {
		result.Friction = newFriction
		result.FrictionChanged = true
	}
	y += lineHeight + 8

	newWrap := gui.CheckBox(
		rl.Rectangle{X: float32(x), Y: float32(y), Width: 14, Height: 14},
		"Wrap edges",
		state.Wrap,
	)
	if newWrap != state.Wrap {
		result.Wrap = newWrap
		result.WrapChanged = true
	}
	y += lineHeight + 4

	newFlat := gui.CheckBox(
		rl.Rectangle{X: float32(x), Y: float32(y), Width: 14, Height: 14},
		"Flat force",
		state.FlatForce,
	)
	if newFlat != state.FlatForce {
		result.FlatForce = newFlat
		result.FlatForceChanged = true
	}

	return result
}
