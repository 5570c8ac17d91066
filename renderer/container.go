package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph/camera"
)

// Colors for the window and the domain.
var (
	BackgroundColor = rl.Color{R: 26, G: 26, B: 26, A: 255}
	domainFill      = rl.Color{R: 18, G: 22, B: 30, A: 255}
	domainEdge      = rl.Color{R: 90, G: 100, B: 120, A: 255}
)

// ContainerRenderer draws the simulation domain as a filled, outlined box.
type ContainerRenderer struct {
	cam *camera.Camera
}

// NewContainerRenderer creates a new container renderer.
func NewContainerRenderer(cam *camera.Camera) *ContainerRenderer {
	return &ContainerRenderer{cam: cam}
}

// Draw renders the domain rectangle.
func (r *ContainerRenderer) Draw() {
	x, y, w, h := r.cam.DomainRect()
	rect := rl.Rectangle{X: x, Y: y, Width: w, Height: h}
	rl.DrawRectangleRec(rect, domainFill)
	rl.DrawRectangleLinesEx(rect, 1, domainEdge)
}
