package ellipsoid

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Model describes the placement and shape of an ellipsoidal body in world
// space. The forward and inverse transforms are derived once at construction
// and the model is immutable afterwards.
type Model struct {
	position mgl64.Vec3
	scale    mgl64.Vec3
	rotation mgl64.Quat

	worldFromLocal mgl64.Mat4
	localFromWorld mgl64.Mat4
}

// NewModel builds an ellipsoid of revolution around the local y axis, with
// the given equatorial and polar radii in meters.
func NewModel(position mgl64.Vec3, equatorialRadius, polarRadius float64) (*Model, error) {
	scale := mgl64.Vec3{equatorialRadius, polarRadius, equatorialRadius}

	return NewModelWithAxes(position, scale, mgl64.QuatIdent())
}

// NewSphere builds a spherical model with a single radius.
func NewSphere(position mgl64.Vec3, radius float64) (*Model, error) {
	return NewModel(position, radius, radius)
}

// NewModelWithAxes builds a fully general model from three axis lengths and
// an orientation. Degenerate axes are rejected, not clamped.
func NewModelWithAxes(position, scale mgl64.Vec3, rotation mgl64.Quat) (*Model, error) {
	for i := 0; i < 3; i++ {
		if scale[i] <= 0 {
			return nil, errors.Errorf("ellipsoid: degenerate axis length %g at index %d", scale[i], i)
		}
	}

	worldFromLocal := mgl64.Translate3D(position.X(), position.Y(), position.Z()).
		Mul4(rotation.Mat4()).
		Mul4(mgl64.Scale3D(scale.X(), scale.Y(), scale.Z()))
	localFromWorld := worldFromLocal.Inv()

	return &Model{
		position:       position,
		scale:          scale,
		rotation:       rotation,
		worldFromLocal: worldFromLocal,
		localFromWorld: localFromWorld,
	}, nil
}

func (m *Model) Position() mgl64.Vec3 {
	return m.position
}

// Scale returns the mean of the equatorial and polar radii. Used only as an
// error and visualization tolerance, never inside the coordinate math.
func (m *Model) Scale() float64 {
	return (m.scale.X() + m.scale.Y()) / 2
}

// WorldFromLocal returns the forward transform of the model.
func (m *Model) WorldFromLocal() mgl64.Mat4 {
	return m.worldFromLocal
}

// PositionLocalToWorld transforms a local position to world space.
func (m *Model) PositionLocalToWorld(localPosition mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(localPosition, m.worldFromLocal)
}

// PositionWorldToLocal transforms a world position into the model's local
// space and normalizes it onto the unit sphere. It is used to recover
// directions, so the distance from the surface is intentionally dropped.
func (m *Model) PositionWorldToLocal(worldPosition mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(worldPosition, m.localFromWorld).Normalize()
}

// NormalLocalToWorld transforms a local direction to the corresponding
// world space surface normal. Translation is ignored.
func (m *Model) NormalLocalToWorld(localDirection mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformNormal(localDirection, m.worldFromLocal).Normalize()
}

// VectorLocalToWorld transforms a local direction to world space without
// normalizing. Used for derivative terms, where the magnitude matters and
// translation must not appear.
func (m *Model) VectorLocalToWorld(localDirection mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformNormal(localDirection, m.worldFromLocal)
}
