package cubesphere

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// CSqr is the square of the parameter c of the algebraic sigmoid function
// used to convert between uv and st coordinates.
const CSqr = 0.87 * 0.87

// CubeToSphere converts uv coordinates in range [-1,1] to st coordinates in range [0,1].
// The uv coordinates are spaced equally on the surface of the cube and
// the st coordinates are spaced equally on the surface of the sphere.
func CubeToSphere(uv mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{
		0.5*warp(uv.X()) + 0.5,
		0.5*warp(uv.Y()) + 0.5,
	}
}

// SphereToCube converts st coordinates in range [0,1] to uv coordinates in range [-1,1].
// Exact inverse of CubeToSphere up to floating point rounding.
func SphereToCube(st mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{
		unwarp(st.X()),
		unwarp(st.Y()),
	}
}

func warp(u float64) float64 {
	return u * math.Sqrt((1+CSqr)/(1+CSqr*u*u))
}

func unwarp(s float64) float64 {
	w := (s - 0.5) / 0.5
	return w / math.Sqrt(1+CSqr-CSqr*w*w)
}
