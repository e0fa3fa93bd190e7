// Package camera provides a 2D camera system for viewport control.
package camera

import "math"

// Camera controls the viewport into the simulation world. World units are
// screen pixels at zoom 1. When Wrap is set the world is toroidal: deltas
// take the short way around and panning wraps; otherwise the camera clamps
// at the world edges.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// World dimensions
	WorldW, WorldH float32

	// Wrap selects toroidal coordinate handling.
	Wrap bool

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the world with 1:1 zoom.
func New(viewportW, viewportH, worldW, worldH float32) *Camera {
	// At zoom Z the visible world area is (viewportW/Z, viewportH/Z); the
	// minimum zoom keeps that area within the world on both axes.
	minZoomX := viewportW / worldW
	minZoomY := viewportH / worldH
	minZoom := minZoomX
	if minZoomY > minZoom {
		minZoom = minZoomY
	}

	return &Camera{
		X:         worldW / 2,
		Y:         worldH / 2,
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
		MinZoom:   minZoom,
		MaxZoom:   4.0,
	}
}

// delta returns the signed distance from the camera center to a world point,
// taking the short way around when the world wraps.
func (c *Camera) delta(wx, wy float32) (dx, dy float32) {
	dx = wx - c.X
	dy = wy - c.Y
	if c.Wrap {
		dx = toroidalDelta(wx, c.X, c.WorldW)
		dy = toroidalDelta(wy, c.Y, c.WorldH)
	}
	return dx, dy
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	dx, dy := c.delta(wx, wy)
	sx = c.ViewportW/2 + dx*c.Zoom
	sy = c.ViewportH/2 + dy*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	dx := (sx - c.ViewportW/2) / c.Zoom
	dy := (sy - c.ViewportH/2) / c.Zoom

	wx = c.X + dx
	wy = c.Y + dy
	if c.Wrap {
		wx = mod(wx, c.WorldW)
		wy = mod(wy, c.WorldH)
	}
	return wx, wy
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	dx, dy := c.delta(wx, wy)

	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius

	return absf(dx) <= halfW && absf(dy) <= halfH
}

// GhostPositions returns additional screen positions for particles near the
// world edges of a wrapping world, so they show on both sides while crossing.
// Returns up to 3 extra positions (edge ghosts plus the corner ghost).
func (c *Camera) GhostPositions(wx, wy, radius float32) []struct{ X, Y float32 } {
	if !c.Wrap {
		return nil
	}

	var ghosts []struct{ X, Y float32 }

	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	dx, dy := c.delta(wx, wy)

	needsHorizontalGhost := false
	var hGhostX float32
	if dx > halfW-radius && dx < halfW+radius {
		// Near right edge of view - ghost on left
		needsHorizontalGhost = true
		hGhostX = c.ViewportW/2 + (dx-c.WorldW)*c.Zoom
	} else if dx < -halfW+radius && dx > -halfW-radius {
		// Near left edge of view - ghost on right
		needsHorizontalGhost = true
		hGhostX = c.ViewportW/2 + (dx+c.WorldW)*c.Zoom
	}

	needsVerticalGhost := false
	var vGhostY float32
	if dy > halfH-radius && dy < halfH+radius {
		// Near bottom edge of view - ghost on top
		needsVerticalGhost = true
		vGhostY = c.ViewportH/2 + (dy-c.WorldH)*c.Zoom
	} else if dy < -halfH+radius && dy > -halfH-radius {
		// Near top edge of view - ghost on bottom
		needsVerticalGhost = true
		vGhostY = c.ViewportH/2 + (dy+c.WorldH)*c.Zoom
	}

	sx := c.ViewportW/2 + dx*c.Zoom
	sy := c.ViewportH/2 + dy*c.Zoom

	if needsHorizontalGhost {
		ghosts = append(ghosts, struct{ X, Y float32 }{hGhostX, sy})
	}
	if needsVerticalGhost {
		ghosts = append(ghosts, struct{ X, Y float32 }{sx, vGhostY})
	}
	if needsHorizontalGhost && needsVerticalGhost {
		ghosts = append(ghosts, struct{ X, Y float32 }{hGhostX, vGhostY})
	}

	return ghosts
}

// Resize updates world and viewport dimensions and recalculates zoom
// constraints.
func (c *Camera) Resize(viewportW, viewportH, worldW, worldH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.WorldW = worldW
	c.WorldH = worldH
	minZoomX := viewportW / worldW
	minZoomY := viewportH / worldH
	c.MinZoom = minZoomX
	if minZoomY > c.MinZoom {
		c.MinZoom = minZoomY
	}
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
	c.clampToWorld()
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	if c.Wrap {
		c.X = mod(c.X, c.WorldW)
		c.Y = mod(c.Y, c.WorldH)
	} else {
		c.clampToWorld()
	}
}

// Approach moves the camera a fraction of the way toward a world target,
// giving tracked particles a soft follow instead of a hard lock. rate is the
// fraction covered per call; 0.1 at 60 calls per second settles in well
// under a second.
func (c *Camera) Approach(tx, ty, rate float32) {
	dx, dy := c.delta(tx, ty)
	c.X += dx * rate
	c.Y += dy * rate
	if c.Wrap {
		c.X = mod(c.X, c.WorldW)
		c.Y = mod(c.Y, c.WorldH)
	} else {
		c.clampToWorld()
	}
}

// clampToWorld keeps the visible area inside a non-wrapping world.
func (c *Camera) clampToWorld() {
	if c.Wrap {
		return
	}
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	c.X = clamp(c.X, halfW, c.WorldW-halfW)
	c.Y = clamp(c.Y, halfH, c.WorldH-halfH)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampToWorld()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = 1.0
}

// toroidalDelta computes the shortest signed distance from 'from' to 'to'
// in a toroidal space of the given size.
func toroidalDelta(to, from, size float32) float32 {
	d := to - from
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}

// mod computes the positive modulo (Go's % can return negative).
func mod(x, m float32) float32 {
	r := float32(math.Mod(float64(x), float64(m)))
	if r < 0 {
		r += m
	}
	return r
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
