package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	geojson "github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/require"

	"github.com/planetviz/globe_precision/internal/survey"
	"github.com/planetviz/globe_precision/pkg/approximation"
	"github.com/planetviz/globe_precision/pkg/cubesphere"
	"github.com/planetviz/globe_precision/pkg/ellipsoid"
)

func readCollection(t *testing.T, path string) *geojson.FeatureCollection {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	collection, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)

	return collection
}

func testApproximation(t *testing.T, model *ellipsoid.Model) *approximation.ViewApproximation {
	t.Helper()

	view := cubesphere.NewCoordinate(2, mgl64.Vec2{0.4, 0.6}).WorldPosition(model, 1000)
	approx, err := approximation.Compute(model, view, 10)
	require.NoError(t, err)

	return approx
}

func TestWriteTileGrid(t *testing.T) {
	model := ellipsoid.NewWGS84(mgl64.Vec3{})
	path := filepath.Join(t.TempDir(), "grid", "tile_grid.geojson")

	require.NoError(t, WriteTileGrid(path, model, 1))

	collection := readCollection(t, path)
	// 6 faces x 2^1 x 2^1 tiles
	require.Len(t, collection.Features, 24)

	for _, feature := range collection.Features {
		require.Equal(t, geojson.GeometryLineString, feature.Geometry.Type)
		require.NotNil(t, feature.Properties["face"])

		for _, position := range feature.Geometry.LineString {
			require.Len(t, position, 2)
			require.GreaterOrEqual(t, position[0], -180.0)
			require.LessOrEqual(t, position[0], 180.0)
			require.GreaterOrEqual(t, position[1], -90.0)
			require.LessOrEqual(t, position[1], 90.0)
		}
	}
}

func TestWriteTileGridRejectsNilModel(t *testing.T) {
	require.Error(t, WriteTileGrid(filepath.Join(t.TempDir(), "x.geojson"), nil, 1))
}

func TestWriteOrigins(t *testing.T) {
	model := ellipsoid.NewWGS84(mgl64.Vec3{})
	approx := testApproximation(t, model)

	path := filepath.Join(t.TempDir(), "origins.geojson")
	require.NoError(t, WriteOrigins(path, approx))

	collection := readCollection(t, path)
	require.Len(t, collection.Features, cubesphere.FaceCount)

	for _, feature := range collection.Features {
		require.Equal(t, geojson.GeometryPoint, feature.Geometry.Type)
		for _, key := range []string{"c", "c_du", "c_dv", "c_duu", "c_duv", "c_dvv"} {
			require.NotNil(t, feature.Properties[key], key)
		}
	}
}

func TestWriteErrorField(t *testing.T) {
	model := ellipsoid.NewWGS84(mgl64.Vec3{})
	approx := testApproximation(t, model)

	path := filepath.Join(t.TempDir(), "error_field.geojson")
	require.NoError(t, WriteErrorField(path, approx, 4, 0.001))

	collection := readCollection(t, path)
	// (2*4+1)^2 samples
	require.Len(t, collection.Features, 81)

	for _, feature := range collection.Features {
		require.NotNil(t, feature.Properties["error_m"])
	}
}

func TestWriteErrorFieldRejectsInvalidExtent(t *testing.T) {
	model := ellipsoid.NewWGS84(mgl64.Vec3{})
	approx := testApproximation(t, model)

	path := filepath.Join(t.TempDir(), "error_field.geojson")
	require.Error(t, WriteErrorField(path, approx, 0, 0.001))
	require.Error(t, WriteErrorField(path, approx, 4, -1))
}

func TestWriteViewErrors(t *testing.T) {
	model := ellipsoid.NewWGS84(mgl64.Vec3{})

	views := []survey.ViewError{
		{Position: cubesphere.NewCoordinate(0, mgl64.Vec2{0.5, 0.5}).WorldPosition(model, 0), MaxError: 0.01},
		{Position: cubesphere.NewCoordinate(3, mgl64.Vec2{0.2, 0.9}).WorldPosition(model, 100), MaxError: 0.02},
	}

	path := filepath.Join(t.TempDir(), "view_errors.geojson")
	require.NoError(t, WriteViewErrors(path, model, views))

	collection := readCollection(t, path)
	require.Len(t, collection.Features, 2)
	require.InDelta(t, 0.01, collection.Features[0].Properties["max_error_m"], 1e-9)
}