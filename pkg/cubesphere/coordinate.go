package cubesphere

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/planetviz/globe_precision/pkg/ellipsoid"
)

// Coordinate describes a location on the unit cube sphere.
// The face index refers to one of the six cube faces and the st coordinate
// describes the location within this face.
type Coordinate struct {
	Face int
	ST   mgl64.Vec2
}

func NewCoordinate(face int, st mgl64.Vec2) Coordinate {
	return Coordinate{Face: face, ST: st}
}

// CoordinateFromWorldPosition calculates the coordinate of the given world
// position projected onto the cube sphere of the model.
//
// The face is selected by the dominant axis of the local direction, with a
// fixed x before z before y precedence on exact ties. The precedence is a
// policy choice that must match the per-face formulas below and in
// faceLocalDirection, so that encode and decode stay consistent.
func CoordinateFromWorldPosition(worldPosition mgl64.Vec3, model *ellipsoid.Model) Coordinate {
	normal := model.PositionWorldToLocal(worldPosition)

	absX := math.Abs(normal.X())
	absY := math.Abs(normal.Y())
	absZ := math.Abs(normal.Z())

	var face int
	var uv mgl64.Vec2

	if absX > absY && absX > absZ {
		if normal.X() < 0 {
			face, uv = 0, mgl64.Vec2{-normal.Z() / normal.X(), normal.Y() / normal.X()}
		} else {
			face, uv = 3, mgl64.Vec2{-normal.Y() / normal.X(), normal.Z() / normal.X()}
		}
	} else if absZ > absY {
		if normal.Z() > 0 {
			face, uv = 1, mgl64.Vec2{normal.X() / normal.Z(), -normal.Y() / normal.Z()}
		} else {
			face, uv = 4, mgl64.Vec2{normal.Y() / normal.Z(), -normal.X() / normal.Z()}
		}
	} else {
		if normal.Y() > 0 {
			face, uv = 2, mgl64.Vec2{normal.X() / normal.Y(), normal.Z() / normal.Y()}
		} else {
			face, uv = 5, mgl64.Vec2{-normal.Z() / normal.Y(), -normal.X() / normal.Y()}
		}
	}

	return Coordinate{Face: face, ST: CubeToSphere(uv)}
}

// WorldPosition converts the coordinate back to a world position, optionally
// offset along the surface normal by height meters.
func (c Coordinate) WorldPosition(model *ellipsoid.Model, height float64) mgl64.Vec3 {
	uv := SphereToCube(c.ST)

	localPosition := faceLocalDirection(c.Face, uv).Normalize()

	worldPosition := model.PositionLocalToWorld(localPosition)
	worldNormal := model.NormalLocalToWorld(localPosition)

	return worldPosition.Add(worldNormal.Mul(height))
}

// ProjectToFace projects the coordinate onto one of the six cube faces.
// Thereby it chooses the closest location on this face to the original
// coordinate. Projecting onto the own face is the identity.
func (c Coordinate) ProjectToFace(face int) Coordinate {
	roles := projectionRoles(c.Face, face)

	var st mgl64.Vec2
	for i, role := range roles {
		switch role {
		case fixed0:
			st[i] = 0
		case fixed1:
			st[i] = 1
		case sourceS:
			st[i] = c.ST.X()
		case sourceT:
			st[i] = c.ST.Y()
		}
	}

	return Coordinate{Face: face, ST: st}
}
