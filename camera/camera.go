// Package camera maps the y-up simulation domain onto the y-down screen.
package camera

// Camera controls the viewport into the simulation domain.
// At zoom 1 the whole domain fits the viewport, letterboxed on one axis.
type Camera struct {
	// Position is the view center in world coordinates
	X, Y float32

	// Zoom level on top of the fit scale (1.0 = whole domain visible)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Domain dimensions
	WorldW, WorldH float32

	// Zoom constraints
	MinZoom, MaxZoom float32

	// Screen pixels per world unit at zoom 1
	fit float32
}

// New creates a camera centered on the domain with the whole domain in view.
func New(viewportW, viewportH, worldW, worldH float32) *Camera {
	c := &Camera{
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		MinZoom:   1.0,
		MaxZoom:   8.0,
	}
	c.SetWorld(worldW, worldH)
	return c
}

// SetWorld updates the domain size, recomputes the fit and resets the view.
func (c *Camera) SetWorld(worldW, worldH float32) {
	c.WorldW = worldW
	c.WorldH = worldH
	c.refit()
	c.Reset()
}

func (c *Camera) refit() {
	c.fit = 1
	if c.WorldW > 0 && c.WorldH > 0 {
		c.fit = min(c.ViewportW/c.WorldW, c.ViewportH/c.WorldH)
	}
}

// Scale returns screen pixels per world unit at the current zoom.
func (c *Camera) Scale() float32 {
	return c.fit * c.Zoom
}

// WorldToScreen converts world coordinates (y up) to screen coordinates (y down).
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	s := c.Scale()
	sx = c.ViewportW/2 + (wx-c.X)*s
	sy = c.ViewportH/2 - (wy-c.Y)*s
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	s := c.Scale()
	wx = c.X + (sx-c.ViewportW/2)/s
	wy = c.Y - (sy-c.ViewportH/2)/s
	return wx, wy
}

// IsVisible returns true if a circle at (wx, wy) with the given world radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	s := c.Scale()
	halfW := c.ViewportW/(2*s) + radius
	halfH := c.ViewportH/(2*s) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Resize updates viewport dimensions and keeps the view inside the domain.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.refit()
	c.clampCenter()
}

// Pan moves the view by the given delta in screen pixels. Dragging down
// moves the view toward larger y.
func (c *Camera) Pan(dx, dy float32) {
	s := c.Scale()
	c.X += dx / s
	c.Y -= dy / s
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the domain center at zoom 1.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = 1.0
}

// DomainRect returns the screen rectangle covered by the domain.
func (c *Camera) DomainRect() (x, y, w, h float32) {
	left, top := c.WorldToScreen(0, c.WorldH)
	s := c.Scale()
	return left, top, c.WorldW * s, c.WorldH * s
}

// clampCenter keeps the visible area inside the domain on each axis where
// the domain is larger than the view, and centers it otherwise.
func (c *Camera) clampCenter() {
	s := c.Scale()
	c.X = clampAxis(c.X, c.ViewportW/(2*s), c.WorldW)
	c.Y = clampAxis(c.Y, c.ViewportH/(2*s), c.WorldH)
}

func clampAxis(center, half, size float32) float32 {
	if 2*half >= size {
		return size / 2
	}
	return clamp(center, half, size-half)
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
