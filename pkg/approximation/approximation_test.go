package approximation

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/planetviz/globe_precision/pkg/cubesphere"
	"github.com/planetviz/globe_precision/pkg/ellipsoid"
)

func wgs84(t *testing.T) *ellipsoid.Model {
	t.Helper()

	model, err := ellipsoid.NewModel(mgl64.Vec3{}, 6378137.0, 6356752.314245)
	require.NoError(t, err)

	return model
}

func viewAbove(model *ellipsoid.Model, face int, st mgl64.Vec2, height float64) mgl64.Vec3 {
	return cubesphere.NewCoordinate(face, st).WorldPosition(model, height)
}

func vec3To64(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v.X()), float64(v.Y()), float64(v.Z())}
}

func TestComputeRejectsInvalidInput(t *testing.T) {
	model := wgs84(t)

	_, err := Compute(nil, mgl64.Vec3{}, 10)
	require.Error(t, err)

	_, err = Compute(model, viewAbove(model, 0, mgl64.Vec2{0.5, 0.5}, 0), -1)
	require.Error(t, err)
}

func TestComputeSnapshotIsReproducible(t *testing.T) {
	model := wgs84(t)
	view := viewAbove(model, 1, mgl64.Vec2{0.42, 0.58}, 500)

	first, err := Compute(model, view, 10)
	require.NoError(t, err)
	second, err := Compute(model, view, 10)
	require.NoError(t, err)

	require.Equal(t, first.OriginLOD(), second.OriginLOD())
	for face := 0; face < cubesphere.FaceCount; face++ {
		require.Equal(t, first.Surface(face), second.Surface(face))
	}
}

func TestConstantCoefficientMatchesViewHeight(t *testing.T) {
	model := wgs84(t)

	const height = 1000.0
	view := viewAbove(model, 2, mgl64.Vec2{0.3, 0.6}, height)

	approx, err := Compute(model, view, 10)
	require.NoError(t, err)

	// On the view's own face the constant term is the displacement from the
	// view straight down to the surface.
	c := approx.Surface(2).C
	require.InDelta(t, height, float64(c.Len()), 1)
}

func TestTaylorExactAtViewCoordinate(t *testing.T) {
	model := wgs84(t)
	view := viewAbove(model, 2, mgl64.Vec2{0.3, 0.6}, 1000)

	approx, err := Compute(model, view, 10)
	require.NoError(t, err)

	face := approx.ViewCoordinate().Face
	delta := approx.Surface(face).DeltaRelativeST

	// Evaluating at the view's own projected point cancels every derivative
	// term, leaving the constant coefficient, which is exact by definition.
	relativeST := mgl32.Vec2{-delta.X(), -delta.Y()}

	exact := approx.RelativePosition(relativeST, face)
	approximate := approx.ApproximateRelativePosition(relativeST, face)

	require.InDelta(t, 0, exact.Sub(vec3To64(approximate)).Len(), 0.01)
}

func TestErrorBoundNearSurface(t *testing.T) {
	model := wgs84(t)
	rng := rand.New(rand.NewSource(7))

	// View 1000 m above the surface, samples within 0.001 of the mean
	// radius, origin lod 10: the approximation must stay below 2 cm.
	threshold := 0.001 * model.Scale()

	views := []struct {
		face int
		st   mgl64.Vec2
	}{
		{0, mgl64.Vec2{0.37, 0.58}},
		{2, mgl64.Vec2{0.81, 0.19}},
		{5, mgl64.Vec2{0.5, 0.5}},
	}

	for _, v := range views {
		view := viewAbove(model, v.face, v.st, 1000)

		approx, err := Compute(model, view, 10)
		require.NoError(t, err)

		for sample := 0; sample < 500; sample++ {
			direction := mgl64.Vec3{
				rng.Float64()*2 - 1,
				rng.Float64()*2 - 1,
				rng.Float64()*2 - 1,
			}.Normalize()
			perturbed := view.Add(direction.Mul(rng.Float64() * threshold))
			surfacePosition := model.PositionLocalToWorld(model.PositionWorldToLocal(perturbed))

			tile, vertexOffset := cubesphere.TileFromWorldPosition(surfacePosition, 10, model)

			relativeST, err := approx.ApproximateRelativeST(tile, vertexOffset)
			require.NoError(t, err)

			approximate := view.Add(vec3To64(approx.ApproximateRelativePosition(relativeST, tile.Face)))

			require.InDelta(t, 0, surfacePosition.Sub(approximate).Len(), 0.02,
				"face %d sample %d", v.face, sample)
		}
	}
}

func TestFastPathMatchesExactPath(t *testing.T) {
	model := wgs84(t)
	rng := rand.New(rand.NewSource(11))

	view := viewAbove(model, 3, mgl64.Vec2{0.44, 0.61}, 800)

	const originLOD = 10
	approx, err := Compute(model, view, originLOD)
	require.NoError(t, err)

	threshold := 0.0005 * model.Scale()

	// Includes lods strictly above the origin lod, where the integer shift
	// alignment matters.
	for _, lod := range []int32{10, 11, 12, 14} {
		for sample := 0; sample < 200; sample++ {
			direction := mgl64.Vec3{
				rng.Float64()*2 - 1,
				rng.Float64()*2 - 1,
				rng.Float64()*2 - 1,
			}.Normalize()
			perturbed := view.Add(direction.Mul(rng.Float64() * threshold))
			surfacePosition := model.PositionLocalToWorld(model.PositionWorldToLocal(perturbed))

			tile, vertexOffset := cubesphere.TileFromWorldPosition(surfacePosition, lod, model)

			exact := approx.RelativeST(tile, vertexOffset)
			fast, err := approx.ApproximateRelativeST(tile, vertexOffset)
			require.NoError(t, err)

			require.InDelta(t, float64(exact.X()), float64(fast.X()), 1e-6, "lod %d", lod)
			require.InDelta(t, float64(exact.Y()), float64(fast.Y()), 1e-6, "lod %d", lod)
		}
	}
}

func TestFastPathRejectsCoarserLOD(t *testing.T) {
	model := wgs84(t)
	view := viewAbove(model, 0, mgl64.Vec2{0.5, 0.5}, 1000)

	approx, err := Compute(model, view, 10)
	require.NoError(t, err)

	tile, vertexOffset := cubesphere.TileFromWorldPosition(view, 5, model)

	_, err = approx.ApproximateRelativeST(tile, vertexOffset)
	require.Error(t, err)
}

func TestRelativePositionRecoversSurfacePoint(t *testing.T) {
	model := wgs84(t)
	view := viewAbove(model, 1, mgl64.Vec2{0.25, 0.7}, 1200)

	approx, err := Compute(model, view, 10)
	require.NoError(t, err)

	surfacePosition := viewAbove(model, 1, mgl64.Vec2{0.2502, 0.7003}, 0)
	tile, vertexOffset := cubesphere.TileFromWorldPosition(surfacePosition, 12, model)

	relativeST, err := approx.ApproximateRelativeST(tile, vertexOffset)
	require.NoError(t, err)

	reconstructed := view.Add(approx.RelativePosition(relativeST, tile.Face))
	require.InDelta(t, 0, surfacePosition.Sub(reconstructed).Len(), 0.01)
}

func BenchmarkCompute(b *testing.B) {
	model, err := ellipsoid.NewModel(mgl64.Vec3{}, 6378137.0, 6356752.314245)
	if err != nil {
		b.Fatal(err)
	}
	view := viewAbove(model, 2, mgl64.Vec2{0.3, 0.6}, 1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Compute(model, view, 10); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkApproximateRelativePosition(b *testing.B) {
	model, err := ellipsoid.NewModel(mgl64.Vec3{}, 6378137.0, 6356752.314245)
	if err != nil {
		b.Fatal(err)
	}
	view := viewAbove(model, 2, mgl64.Vec2{0.3, 0.6}, 1000)

	approx, err := Compute(model, view, 10)
	if err != nil {
		b.Fatal(err)
	}

	var sink mgl32.Vec3
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sink = approx.ApproximateRelativePosition(mgl32.Vec2{1e-4, -2e-4}, 2)
	}
	_ = sink
}
