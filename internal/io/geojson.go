// Package io writes GeoJSON debug exports of the cube sphere tiling and the
// view approximation, for inspection in any GeoJSON-capable viewer.
package io

import (
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/golang/glog"
	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"

	"github.com/planetviz/globe_precision/internal/survey"
	"github.com/planetviz/globe_precision/pkg/approximation"
	"github.com/planetviz/globe_precision/pkg/cubesphere"
	"github.com/planetviz/globe_precision/pkg/ellipsoid"
	"github.com/planetviz/globe_precision/tools"
)

// edgeSamples is the number of segments used to trace one tile edge.
const edgeSamples = 8

// lonLat converts a world position to a lon/lat pair on the model.
// The model's polar axis is local y, while s2 expects z up.
func lonLat(worldPosition mgl64.Vec3, model *ellipsoid.Model) []float64 {
	local := model.PositionWorldToLocal(worldPosition)

	ll := s2.LatLngFromPoint(s2.Point{Vector: r3.Vector{
		X: local.X(),
		Y: local.Z(),
		Z: local.Y(),
	}})

	return []float64{ll.Lng.Degrees(), ll.Lat.Degrees()}
}

// tileOutline traces the four edges of a tile along the surface.
func tileOutline(tile cubesphere.TileCoordinate, model *ellipsoid.Model) [][]float64 {
	size := 1 / float64(cubesphere.TileCount(tile.LOD))
	corners := [5][2]int32{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}

	var outline [][]float64
	for i := 0; i < len(corners)-1; i++ {
		start := corners[i]
		end := corners[i+1]

		for j := 0; j < edgeSamples; j++ {
			f := float64(j) / edgeSamples
			st := mgl64.Vec2{
				(float64(tile.X) + float64(start[0]) + f*float64(end[0]-start[0])) * size,
				(float64(tile.Y) + float64(start[1]) + f*float64(end[1]-start[1])) * size,
			}
			world := cubesphere.NewCoordinate(tile.Face, st).WorldPosition(model, 0)
			outline = append(outline, lonLat(world, model))
		}
	}

	// close the ring
	outline = append(outline, outline[0])

	return outline
}

func writeCollection(path string, collection *geojson.FeatureCollection) error {
	if err := tools.CreateDirectoryIfDoesNotExist(filepath.Dir(path)); err != nil {
		return errors.Wrapf(err, "creating output directory for %s", path)
	}

	data, err := collection.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "marshaling feature collection")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}

	glog.Infof("wrote %d features to %s", len(collection.Features), path)
	return nil
}

// WriteTileGrid writes the outlines of all tiles of all six faces at the
// given lod.
func WriteTileGrid(path string, model *ellipsoid.Model, lod int32) error {
	if model == nil {
		return errors.New("io: nil model")
	}

	collection := geojson.NewFeatureCollection()

	count := cubesphere.TileCount(lod)
	for face := 0; face < cubesphere.FaceCount; face++ {
		for x := int32(0); x < count; x++ {
			for y := int32(0); y < count; y++ {
				tile := cubesphere.NewTile(face, lod, x, y)

				feature := geojson.NewLineStringFeature(tileOutline(tile, model))
				feature.SetProperty("face", face)
				feature.SetProperty("x", x)
				feature.SetProperty("y", y)
				feature.SetProperty("lod", lod)
				collection.AddFeature(feature)
			}
		}
	}

	return writeCollection(path, collection)
}

// WriteOrigins writes one point per face at the projected origin coordinate,
// annotated with the magnitudes of the Taylor coefficients.
func WriteOrigins(path string, approx *approximation.ViewApproximation) error {
	if approx == nil {
		return errors.New("io: nil approximation")
	}

	model := approx.Model()
	collection := geojson.NewFeatureCollection()

	for face := 0; face < cubesphere.FaceCount; face++ {
		surface := approx.Surface(face)

		origin := cubesphere.NewCoordinate(face, surface.OriginST).WorldPosition(model, 0)

		feature := geojson.NewPointFeature(lonLat(origin, model))
		feature.SetProperty("face", face)
		feature.SetProperty("origin_x", surface.OriginXY[0])
		feature.SetProperty("origin_y", surface.OriginXY[1])
		feature.SetProperty("c", surface.C.Len())
		feature.SetProperty("c_du", surface.CDu.Len())
		feature.SetProperty("c_dv", surface.CDv.Len())
		feature.SetProperty("c_duu", surface.CDuu.Len())
		feature.SetProperty("c_duv", surface.CDuv.Len())
		feature.SetProperty("c_dvv", surface.CDvv.Len())
		collection.AddFeature(feature)
	}

	return writeCollection(path, collection)
}

// WriteErrorField samples a (2*count+1)^2 grid of relative st coordinates
// around the view on its own face and writes one point per sample, annotated
// with the distance between the exact and the approximate reconstruction.
func WriteErrorField(path string, approx *approximation.ViewApproximation, count int, scale float32) error {
	if approx == nil {
		return errors.New("io: nil approximation")
	}
	if count <= 0 || scale <= 0 {
		return errors.Errorf("io: invalid error field extent count=%d scale=%g", count, scale)
	}

	model := approx.Model()
	face := approx.ViewCoordinate().Face
	collection := geojson.NewFeatureCollection()

	for x := -count; x <= count; x++ {
		for y := -count; y <= count; y++ {
			relativeST := mgl32.Vec2{
				float32(x) / float32(count) * scale,
				float32(y) / float32(count) * scale,
			}

			exact := approx.ViewPosition().Add(approx.RelativePosition(relativeST, face))
			taylor := approx.ApproximateRelativePosition(relativeST, face)
			approximate := approx.ViewPosition().Add(mgl64.Vec3{
				float64(taylor.X()), float64(taylor.Y()), float64(taylor.Z()),
			})

			feature := geojson.NewPointFeature(lonLat(exact, model))
			feature.SetProperty("error_m", exact.Sub(approximate).Len())
			collection.AddFeature(feature)
		}
	}

	return writeCollection(path, collection)
}

// WriteViewErrors exports the per-view maxima collected by a survey run.
func WriteViewErrors(path string, model *ellipsoid.Model, views []survey.ViewError) error {
	if model == nil {
		return errors.New("io: nil model")
	}

	collection := geojson.NewFeatureCollection()
	for _, view := range views {
		feature := geojson.NewPointFeature(lonLat(view.Position, model))
		feature.SetProperty("max_error_m", view.MaxError)
		collection.AddFeature(feature)
	}

	return writeCollection(path, collection)
}
