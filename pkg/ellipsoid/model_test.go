package ellipsoid

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/s1"
	"github.com/stretchr/testify/require"
)

func TestNewModelRejectsDegenerateAxes(t *testing.T) {
	cases := []struct {
		name             string
		equatorial, polar float64
	}{
		{"zero equatorial", 0, 6356752.314245},
		{"zero polar", 6378137.0, 0},
		{"negative equatorial", -1, 6356752.314245},
		{"negative polar", 6378137.0, -100},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			model, err := NewModel(mgl64.Vec3{}, c.equatorial, c.polar)
			require.Error(t, err)
			require.Nil(t, model)
		})
	}
}

func TestModelTransformRoundTrip(t *testing.T) {
	model, err := NewModel(mgl64.Vec3{1000, -500, 25}, 6378137.0, 6356752.314245)
	require.NoError(t, err)

	directions := []mgl64.Vec3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, -1},
		mgl64.Vec3{1, 2, -3}.Normalize(),
	}

	for _, direction := range directions {
		world := model.PositionLocalToWorld(direction)
		back := model.PositionWorldToLocal(world)

		require.InDelta(t, direction.X(), back.X(), 1e-12)
		require.InDelta(t, direction.Y(), back.Y(), 1e-12)
		require.InDelta(t, direction.Z(), back.Z(), 1e-12)
	}
}

func TestModelAxes(t *testing.T) {
	position := mgl64.Vec3{10, 20, 30}
	model, err := NewModel(position, 2000, 1000)
	require.NoError(t, err)

	equator := model.PositionLocalToWorld(mgl64.Vec3{1, 0, 0})
	require.InDelta(t, 0, equator.Sub(position.Add(mgl64.Vec3{2000, 0, 0})).Len(), 1e-9)

	pole := model.PositionLocalToWorld(mgl64.Vec3{0, 1, 0})
	require.InDelta(t, 0, pole.Sub(position.Add(mgl64.Vec3{0, 1000, 0})).Len(), 1e-9)

	require.Equal(t, 1500.0, model.Scale())
}

func TestNormalTransformIgnoresTranslation(t *testing.T) {
	model, err := NewModel(mgl64.Vec3{123456, -654321, 42}, 1000, 1000)
	require.NoError(t, err)

	normal := model.NormalLocalToWorld(mgl64.Vec3{0, 0, 1})

	require.InDelta(t, 0, normal.X(), 1e-12)
	require.InDelta(t, 0, normal.Y(), 1e-12)
	require.InDelta(t, 1, normal.Z(), 1e-12)
	require.InDelta(t, 1, normal.Len(), 1e-12)
}

func TestVectorTransformKeepsMagnitude(t *testing.T) {
	model, err := NewSphere(mgl64.Vec3{5, 5, 5}, 250)
	require.NoError(t, err)

	vector := model.VectorLocalToWorld(mgl64.Vec3{1, 0, 0})
	require.InDelta(t, 250, vector.Len(), 1e-9)
}

func TestNewWGS84(t *testing.T) {
	model := NewWGS84(mgl64.Vec3{})

	require.InDelta(t, MeanRadiusMeters, model.Scale(), 1e-6)

	equator := model.PositionLocalToWorld(mgl64.Vec3{1, 0, 0})
	require.InDelta(t, EquatorialRadiusMeters, equator.Len(), 1e-6)

	pole := model.PositionLocalToWorld(mgl64.Vec3{0, -1, 0})
	require.InDelta(t, PolarRadiusMeters, pole.Len(), 1e-6)
}

func TestGeodeticPosition(t *testing.T) {
	model := NewWGS84(mgl64.Vec3{})

	northPole := model.GeodeticPosition(90*s1.Degree, 0, 100)
	require.InDelta(t, 0, northPole.Sub(mgl64.Vec3{0, PolarRadiusMeters + 100, 0}).Len(), 1e-5)

	greenwich := model.GeodeticPosition(0, 0, 0)
	require.InDelta(t, 0, greenwich.Sub(mgl64.Vec3{EquatorialRadiusMeters, 0, 0}).Len(), 1e-5)

	lat, lng := model.LatLngDegrees(model.GeodeticPosition(45*s1.Degree, 120*s1.Degree, 0))
	require.InDelta(t, 45, lat, 1e-9)
	require.InDelta(t, 120, lng, 1e-9)
}

func TestEarthDistance(t *testing.T) {
	distance := EarthDistance(EarthAngle(1500))
	require.InDelta(t, 1500, float64(distance), 1e-9)
}

func TestLengthString(t *testing.T) {
	require.Equal(t, "2.500 km", Length(2500).String())
	require.Equal(t, "5.000 m", Length(5).String())
	require.Equal(t, "50.000 cm", Length(0.5).String())
}
