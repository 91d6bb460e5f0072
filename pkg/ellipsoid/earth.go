package ellipsoid

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/s1"
)

// Helper constants and functions for Earth-sized models.

// WGS84 reference ellipsoid radii in meters.
const (
	EquatorialRadiusMeters = 6378137.0
	PolarRadiusMeters      = 6356752.314245
)

// MeanRadiusMeters is the mean of the WGS84 equatorial and polar radii.
const MeanRadiusMeters = (EquatorialRadiusMeters + PolarRadiusMeters) / 2

// NewWGS84 builds an Earth model with WGS84 radii at the given position.
func NewWGS84(position mgl64.Vec3) *Model {
	model, err := NewModel(position, EquatorialRadiusMeters, PolarRadiusMeters)
	if err != nil {
		// The WGS84 radii are valid by definition.
		panic(err)
	}
	return model
}

// Length denotes a length on Earth
type Length float64

// EarthDistance converts an angle to distance on earth in meters.
func EarthDistance(angle s1.Angle) Length {
	return Length(angle.Radians() * MeanRadiusMeters)
}

// EarthAngle converts a distance on earth in meters to an angle.
func EarthAngle(dist float64) s1.Angle {
	return s1.Angle(dist / MeanRadiusMeters)
}

// String converts the length to human readable units
func (l Length) String() string {
	if l > 1000 {
		return fmt.Sprintf("%.3f km", l/1000)
	} else if l < 1 {
		return fmt.Sprintf("%.3f cm", l*100)
	} else {
		return fmt.Sprintf("%.3f m", l)
	}
}

// GeodeticPosition places a point at the given geocentric latitude and
// longitude, offset along the surface normal by height meters. The polar
// axis of the model is the local y axis.
func (m *Model) GeodeticPosition(lat, lng s1.Angle, height float64) mgl64.Vec3 {
	direction := mgl64.Vec3{
		math.Cos(lat.Radians()) * math.Cos(lng.Radians()),
		math.Sin(lat.Radians()),
		math.Cos(lat.Radians()) * math.Sin(lng.Radians()),
	}

	surface := m.PositionLocalToWorld(direction)
	normal := m.NormalLocalToWorld(direction)

	return surface.Add(normal.Mul(height))
}

// LatLngDegrees recovers the geocentric latitude and longitude, in degrees,
// of the world position projected onto the model surface.
func (m *Model) LatLngDegrees(worldPosition mgl64.Vec3) (float64, float64) {
	direction := m.PositionWorldToLocal(worldPosition)

	lat := math.Asin(mgl64.Clamp(direction.Y(), -1, 1))
	lng := math.Atan2(direction.Z(), direction.X())

	return mgl64.RadToDeg(lat), mgl64.RadToDeg(lng)
}
