package cubesphere

import "github.com/go-gl/mathgl/mgl64"

// FaceCount is the number of cube faces of the cube sphere.
const FaceCount = 6

// sideMatrices holds one matrix per face, which shuffles the a, b and c
// direction components to their corresponding local axes. Column-major,
// mirroring the per-face direction formulas in faceLocalDirection.
var sideMatrices = [FaceCount]mgl64.Mat3{
	{-1, 0, 0, 0, 0, 1, 0, -1, 0},
	{0, 0, 1, 1, 0, 0, 0, -1, 0},
	{0, 1, 0, 1, 0, 0, 0, 0, 1},
	{1, 0, 0, 0, -1, 0, 0, 0, 1},
	{0, 0, -1, 0, -1, 0, 1, 0, 0},
	{0, -1, 0, 0, 0, 1, 1, 0, 0},
}

// SideMatrix returns the axis shuffle matrix of the given face. It maps the
// (a, b, c) direction components to the face's local xyz axes.
func SideMatrix(face int) mgl64.Mat3 {
	return sideMatrices[face]
}

// axisRole describes how one axis of a target face is derived when a
// coordinate is projected onto that face: pinned to an edge, or copied
// from the source s or t component.
type axisRole uint8

const (
	fixed0 axisRole = iota
	fixed1
	sourceS
	sourceT
)

// The face adjacency tables, indexed by (6 + target - source) % 6.
// Faces with even and odd indices have mirrored edge orientations, so each
// parity carries its own table. Entry [0] is the identity (target == source).
var evenRoles = [FaceCount][2]axisRole{
	{sourceS, sourceT},
	{fixed0, sourceT},
	{fixed0, sourceS},
	{sourceT, sourceS},
	{sourceT, fixed0},
	{sourceS, fixed0},
}

var oddRoles = [FaceCount][2]axisRole{
	{sourceS, sourceT},
	{sourceS, fixed1},
	{sourceT, fixed1},
	{sourceT, sourceS},
	{fixed1, sourceS},
	{fixed1, sourceT},
}

// projectionRoles returns the axis roles used to express a coordinate of the
// source face on the target face.
func projectionRoles(source, target int) [2]axisRole {
	index := (FaceCount + target - source) % FaceCount

	if source%2 == 0 {
		return evenRoles[index]
	}
	return oddRoles[index]
}

// faceLocalDirection reconstructs the unnormalized local direction for uv
// coordinates on the given face. The fixed axis assignments are the inverse
// of the selection in CoordinateFromWorldPosition and must stay in sync
// with sideMatrices.
func faceLocalDirection(face int, uv mgl64.Vec2) mgl64.Vec3 {
	switch face {
	case 0:
		return mgl64.Vec3{-1, -uv.Y(), uv.X()}
	case 1:
		return mgl64.Vec3{uv.X(), -uv.Y(), 1}
	case 2:
		return mgl64.Vec3{uv.X(), 1, uv.Y()}
	case 3:
		return mgl64.Vec3{1, -uv.X(), uv.Y()}
	case 4:
		return mgl64.Vec3{uv.Y(), -uv.X(), -1}
	case 5:
		return mgl64.Vec3{uv.Y(), -1, uv.X()}
	default:
		panic("cubesphere: invalid face index")
	}
}
