package fluid

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const kernelPi = float32(math.Pi)

// gradientEpsilon is the distance below which gradients are undefined
// (coincident particles) and return the zero vector.
const gradientEpsilon = 0.0001

// Smoothing kernels for 2D SPH. Every kernel takes r = pos_i - pos_j and the
// smoothing radius h, and is exactly zero once |r| >= h.

// Poly6W is the Poly6 weight, used for density estimation.
func Poly6W(r mgl32.Vec2, h float32) float32 {
	rLen := r.Len()
	if rLen >= h {
		return 0
	}

	h2 := h * h
	h4 := h2 * h2
	h9 := h4 * h4 * h
	coeff := 4 / (kernelPi * h9)

	q := h2 - rLen*rLen
	return coeff * q * q * q
}

// Poly6Gradient is the gradient of the Poly6 kernel.
func Poly6Gradient(r mgl32.Vec2, h float32) mgl32.Vec2 {
	rLen := r.Len()
	if rLen >= h || rLen < gradientEpsilon {
		return mgl32.Vec2{}
	}

	h2 := h * h
	h4 := h2 * h2
	h9 := h4 * h4 * h
	coeff := -24 / (kernelPi * h9)

	q := h2 - rLen*rLen
	return r.Mul(coeff * q * q)
}

// SpikyW is the Spiky weight. Its gradient drives pressure forces.
func SpikyW(r mgl32.Vec2, h float32) float32 {
	rLen := r.Len()
	if rLen >= h {
		return 0
	}

	h5 := h * h * h * h * h
	coeff := 10 / (kernelPi * h5)

	q := h - rLen
	return coeff * q * q * q
}

// SpikyGradient is the gradient of the Spiky kernel, pointing along r.
func SpikyGradient(r mgl32.Vec2, h float32) mgl32.Vec2 {
	rLen := r.Len()
	if rLen >= h || rLen < gradientEpsilon {
		return mgl32.Vec2{}
	}

	h5 := h * h * h * h * h
	coeff := -30 / (kernelPi * h5)

	q := h - rLen
	dir := mgl32.Vec2{r[0] / rLen, r[1] / rLen}
	return dir.Mul(coeff * q * q)
}

// ViscosityW is the viscosity kernel weight.
func ViscosityW(r mgl32.Vec2, h float32) float32 {
	rLen := r.Len()
	if rLen >= h {
		return 0
	}

	h2 := h * h
	h3 := h2 * h
	coeff := 40 / (kernelPi * h2 * h3)

	q := 1 - rLen/h
	return coeff * q * q * q
}

// ViscosityLaplacian is the Laplacian of the viscosity kernel. No distance
// guard is needed since nothing divides by |r|.
func ViscosityLaplacian(r mgl32.Vec2, h float32) float32 {
	rLen := r.Len()
	if rLen >= h {
		return 0
	}

	h2 := h * h
	h5 := h2 * h2 * h
	coeff := 40 / (kernelPi * h5)

	return coeff * (1 - rLen/h)
}
