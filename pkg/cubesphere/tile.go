package cubesphere

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/planetviz/globe_precision/pkg/ellipsoid"
)

// TileCoordinate describes a quadtree tile of the cube sphere.
type TileCoordinate struct {
	// Face of the cube sphere the tile lies within.
	Face int
	// LOD is the quadtree subdivision depth of the tile.
	LOD int32
	// X and Y index the tile from the top-left corner of the face.
	X int32
	Y int32
}

func NewTile(face int, lod, x, y int32) TileCoordinate {
	return TileCoordinate{Face: face, LOD: lod, X: x, Y: y}
}

// TileCount returns the number of tiles per face edge for a certain lod.
func TileCount(lod int32) int32 {
	return 1 << lod
}

// TileFromWorldPosition returns the tile at the given lod containing the
// world position, together with the fractional vertex offset within the tile.
func TileFromWorldPosition(worldPosition mgl64.Vec3, lod int32, model *ellipsoid.Model) (TileCoordinate, mgl32.Vec2) {
	coordinate := CoordinateFromWorldPosition(worldPosition, model)

	st := coordinate.ST.Mul(float64(TileCount(lod)))
	x := math.Floor(st.X())
	y := math.Floor(st.Y())
	offset := mgl32.Vec2{float32(st.X() - x), float32(st.Y() - y)}

	return NewTile(coordinate.Face, lod, int32(x), int32(y)), offset
}
