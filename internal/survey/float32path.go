package survey

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/planetviz/globe_precision/pkg/cubesphere"
	"github.com/planetviz/globe_precision/pkg/ellipsoid"
)

// float32WorldPosition recomputes the world position of a tile vertex
// entirely in float32 arithmetic. This is the naive path the approximation
// replaces; surveying it quantifies what the Taylor series buys.
func float32WorldPosition(tile cubesphere.TileCoordinate, vertexOffset mgl32.Vec2, model *ellipsoid.Model) mgl64.Vec3 {
	const k = float32(cubesphere.CSqr)

	count := float32(cubesphere.TileCount(tile.LOD))
	st := mgl32.Vec2{
		(float32(tile.X) + vertexOffset.X()) / count,
		(float32(tile.Y) + vertexOffset.Y()) / count,
	}

	wx := (st.X() - 0.5) / 0.5
	wy := (st.Y() - 0.5) / 0.5
	uv := mgl32.Vec2{
		wx / math32.Sqrt(1+k-k*wx*wx),
		wy / math32.Sqrt(1+k-k*wy*wy),
	}

	var localPosition mgl32.Vec3
	switch tile.Face {
	case 0:
		localPosition = mgl32.Vec3{-1, -uv.Y(), uv.X()}
	case 1:
		localPosition = mgl32.Vec3{uv.X(), -uv.Y(), 1}
	case 2:
		localPosition = mgl32.Vec3{uv.X(), 1, uv.Y()}
	case 3:
		localPosition = mgl32.Vec3{1, -uv.X(), uv.Y()}
	case 4:
		localPosition = mgl32.Vec3{uv.Y(), -uv.X(), -1}
	case 5:
		localPosition = mgl32.Vec3{uv.Y(), -1, uv.X()}
	}
	localPosition = localPosition.Normalize()

	worldFromLocal := mat4To32(model.WorldFromLocal())
	world := mgl32.TransformCoordinate(localPosition, worldFromLocal)

	return vec3To64(world)
}

func mat4To32(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := 0; i < 16; i++ {
		out[i] = float32(m[i])
	}
	return out
}
