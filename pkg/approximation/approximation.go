// Package approximation bridges the precision gap between the double
// precision world space of a planet-sized body and the single precision
// arithmetic available to per-vertex work.
//
// The idea is to map from st coordinates relative to the view to world
// positions relative to the view. The mapping is smooth and slowly varying
// near the view, so a per-face second order Taylor expansion around the
// view's projected coordinate reproduces it to sub-centimeter accuracy,
// while costing only a few float32 multiply-adds per vertex. An origin tile
// with a sufficiently high lod serves as a reference, to which relative st
// coordinates are computed using partly integer math, avoiding the
// catastrophic cancellation of differencing two large tile coordinates.
package approximation

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/planetviz/globe_precision/pkg/cubesphere"
	"github.com/planetviz/globe_precision/pkg/ellipsoid"
)

// SurfaceApproximation holds the Taylor expansion of "world position relative
// to the view" for one cube face, as a polynomial in a local st perturbation.
type SurfaceApproximation struct {
	// ViewST is the view coordinate projected onto this face.
	ViewST mgl32.Vec2
	// OriginXY is the index of the origin tile projected onto this face.
	OriginXY [2]int32
	// OriginST is the st coordinate of the origin tile projected onto this face.
	OriginST mgl64.Vec2
	// DeltaRelativeST is the offset between the origin and the view st
	// coordinate. Added to a coordinate relative to the origin tile it
	// yields the coordinate relative to the view, which is the input
	// variable of the Taylor series.
	DeltaRelativeST mgl32.Vec2

	// C is the constant coefficient of the series. It describes the offset
	// between the location vertically under the view and the view position.
	C mgl32.Vec3
	// CDu and CDv are the linear coefficients with respect to s and t.
	CDu mgl32.Vec3
	CDv mgl32.Vec3
	// CDuu, CDuv and CDvv are the quadratic coefficients. The duu and dvv
	// terms are pre-multiplied with 0.5, so evaluation is a plain polynomial.
	CDuu mgl32.Vec3
	CDuv mgl32.Vec3
	CDvv mgl32.Vec3
}

// ViewApproximation is the per-view snapshot of the six face expansions.
// It is produced whole by Compute once per view update and is read-only
// afterwards; concurrent queries against the same snapshot are safe.
// When the view moves, the snapshot is replaced, never mutated.
type ViewApproximation struct {
	viewPosition   mgl64.Vec3
	viewCoordinate cubesphere.Coordinate
	model          *ellipsoid.Model
	originLOD      int32
	sides          [cubesphere.FaceCount]SurfaceApproximation
}

// Compute builds the view approximation for the given view world position.
//
// The approximation is valid in a neighborhood of the view whose extent is
// comparable to the origin tile footprint at originLOD. For an Earth-sized
// body, a view near the surface, samples within 0.001 of the radius and an
// origin lod of 10, the maximum error is around one centimeter; it grows
// with the square of the distance from the view.
func Compute(model *ellipsoid.Model, viewPosition mgl64.Vec3, originLOD int32) (*ViewApproximation, error) {
	if model == nil {
		return nil, errors.New("approximation: nil model")
	}
	if originLOD < 0 {
		return nil, errors.Errorf("approximation: negative origin lod %d", originLOD)
	}

	// Coordinate of the location vertically below the view, and the
	// coordinate of the closest tile corner grid point at the origin lod.
	viewCoordinate := cubesphere.CoordinateFromWorldPosition(viewPosition, model)
	originCoordinate := originCoordinate(viewCoordinate, originLOD)

	approximation := &ViewApproximation{
		viewPosition:   viewPosition,
		viewCoordinate: viewCoordinate,
		model:          model,
		originLOD:      originLOD,
	}

	for face := 0; face < cubesphere.FaceCount; face++ {
		approximation.sides[face] = computeSurface(model, viewPosition, viewCoordinate, originCoordinate, originLOD, face)
	}

	return approximation, nil
}

// originCoordinate returns the corner of the origin tile grid closest to the
// given coordinate.
func originCoordinate(coordinate cubesphere.Coordinate, originLOD int32) cubesphere.Coordinate {
	count := float64(cubesphere.TileCount(originLOD))
	st := mgl64.Vec2{
		math.Round(coordinate.ST.X()*count) / count,
		math.Round(coordinate.ST.Y()*count) / count,
	}

	return cubesphere.NewCoordinate(coordinate.Face, st)
}

// computeSurface evaluates the Taylor coefficients of one face. It is a pure
// function of its inputs, so the six faces could be evaluated in parallel.
//
// The relative position is the direction function of the face, scaled by the
// model transform, minus the view position:
//
//	u(s) = (2s-1)/sqrt(1-4k*s*(s-1))    v(t) analogous
//	l(s,t) = sqrt(1+u^2+v^2)
//	d(s,t) = (1, u, v) / l              shuffled into local xyz per face
//
// All partials up to second order are derived by chain rule in double
// precision, transformed to world space, and only then cast to float32.
func computeSurface(
	model *ellipsoid.Model,
	viewPosition mgl64.Vec3,
	viewCoordinate, origin cubesphere.Coordinate,
	originLOD int32,
	face int,
) SurfaceApproximation {
	const k = cubesphere.CSqr

	originProjected := origin.ProjectToFace(face)
	viewProjected := viewCoordinate.ProjectToFace(face)

	originST := originProjected.ST
	originScaled := originST.Mul(float64(cubesphere.TileCount(originLOD)))
	originXY := [2]int32{int32(math.Floor(originScaled.X())), int32(math.Floor(originScaled.Y()))}
	deltaRelativeST := originST.Sub(viewProjected.ST)

	s := viewProjected.ST.X()
	t := viewProjected.ST.Y()

	uDenom := math.Sqrt(1 - 4*k*s*(s-1))
	u := (2*s - 1) / uDenom
	uDs := 2 * (k + 1) / pow3(uDenom)
	uDss := 12 * k * (k + 1) * (2*s - 1) / pow5(uDenom)

	vDenom := math.Sqrt(1 - 4*k*t*(t-1))
	v := (2*t - 1) / vDenom
	vDt := 2 * (k + 1) / pow3(vDenom)
	vDtt := 12 * k * (k + 1) * (2*t - 1) / pow5(vDenom)

	l := math.Sqrt(1 + u*u + v*v)
	lDs := u * uDs / l
	lDt := v * vDt / l
	lDss := (u*uDss*l*l + (v*v+1)*uDs*uDs) / pow3(l)
	lDst := -(u * v * uDs * vDt) / pow3(l)
	lDtt := (v*vDtt*l*l + (u*u+1)*vDt*vDt) / pow3(l)

	// The three direction components a=1/l, b=u/l, c=v/l are expanded with
	// the common 1/l, 1/l^2, 1/l^3 factors pulled out of each order, so they
	// can be applied once per derivative vector below.
	a := 1.0
	aDs := -lDs
	aDt := -lDt
	aDss := 2*lDs*lDs - l*lDss
	aDst := 2*lDs*lDt - l*lDst
	aDtt := 2*lDt*lDt - l*lDtt

	b := u
	bDs := -u*lDs + l*uDs
	bDt := -u * lDt
	bDss := 2*u*lDs*lDs - l*(2*uDs*lDs+u*lDss) + uDss*l*l
	bDst := 2*u*lDs*lDt - l*(uDs*lDt+u*lDst)
	bDtt := 2*u*lDt*lDt - l*u*lDtt

	c := v
	cDs := -v * lDs
	cDt := -v*lDt + l*vDt
	cDss := 2*v*lDs*lDs - l*v*lDss
	cDst := 2*v*lDs*lDt - l*(vDt*lDs+v*lDst)
	cDtt := 2*v*lDt*lDt - l*(2*vDt*lDt+v*lDtt) + vDtt*l*l

	shuffle := cubesphere.SideMatrix(face)

	// The constant term is transformed as a point, so it takes the model
	// position into account. The derivatives are transformed as vectors,
	// which discards the translation.
	p := model.PositionLocalToWorld(shuffle.Mul3x1(mgl64.Vec3{a, b, c}).Mul(1 / l))
	pDs := model.VectorLocalToWorld(shuffle.Mul3x1(mgl64.Vec3{aDs, bDs, cDs}).Mul(1 / (l * l)))
	pDt := model.VectorLocalToWorld(shuffle.Mul3x1(mgl64.Vec3{aDt, bDt, cDt}).Mul(1 / (l * l)))
	pDss := model.VectorLocalToWorld(shuffle.Mul3x1(mgl64.Vec3{aDss, bDss, cDss}).Mul(1 / pow3(l)))
	pDst := model.VectorLocalToWorld(shuffle.Mul3x1(mgl64.Vec3{aDst, bDst, cDst}).Mul(1 / pow3(l)))
	pDtt := model.VectorLocalToWorld(shuffle.Mul3x1(mgl64.Vec3{aDtt, bDtt, cDtt}).Mul(1 / pow3(l)))

	return SurfaceApproximation{
		ViewST:          vec2To32(viewProjected.ST),
		OriginXY:        originXY,
		OriginST:        originST,
		DeltaRelativeST: vec2To32(deltaRelativeST),
		C:               vec3To32(p.Sub(viewPosition)),
		CDu:             vec3To32(pDs),
		CDv:             vec3To32(pDt),
		CDuu:            vec3To32(pDss.Mul(0.5)),
		CDuv:            vec3To32(pDst),
		CDvv:            vec3To32(pDtt.Mul(0.5)),
	}
}

func (a *ViewApproximation) ViewPosition() mgl64.Vec3 {
	return a.viewPosition
}

func (a *ViewApproximation) ViewCoordinate() cubesphere.Coordinate {
	return a.viewCoordinate
}

func (a *ViewApproximation) Model() *ellipsoid.Model {
	return a.model
}

func (a *ViewApproximation) OriginLOD() int32 {
	return a.originLOD
}

// Surface returns the approximation of one face.
func (a *ViewApproximation) Surface(face int) SurfaceApproximation {
	return a.sides[face]
}

// RelativeST computes the st coordinate of a vertex inside the tile relative
// to the origin tile, in double precision. This is the reference path; the
// fast path is ApproximateRelativeST.
func (a *ViewApproximation) RelativeST(tile cubesphere.TileCoordinate, vertexOffset mgl32.Vec2) mgl32.Vec2 {
	count := float64(cubesphere.TileCount(tile.LOD))
	originST := a.sides[tile.Face].OriginST

	return mgl32.Vec2{
		float32((float64(tile.X) + float64(vertexOffset.X()) - originST.X()*count) / count),
		float32((float64(tile.Y) + float64(vertexOffset.Y()) - originST.Y()*count) / count),
	}
}

// ApproximateRelativeST approximates the relative st coordinate of a vertex
// inside the tile. By computing the tile offset between this tile and the
// origin tile with integer math, high precision can be guaranteed even for
// high lods. The tile lod must not be below the origin lod, since the origin
// tile index cannot be aligned to a coarser grid without losing the offset.
func (a *ViewApproximation) ApproximateRelativeST(tile cubesphere.TileCoordinate, vertexOffset mgl32.Vec2) (mgl32.Vec2, error) {
	lodDifference := tile.LOD - a.originLOD
	if lodDifference < 0 {
		return mgl32.Vec2{}, errors.Errorf("approximation: tile lod %d below origin lod %d", tile.LOD, a.originLOD)
	}

	originXY := a.sides[tile.Face].OriginXY
	offsetX := tile.X - (originXY[0] << lodDifference)
	offsetY := tile.Y - (originXY[1] << lodDifference)

	count := float32(cubesphere.TileCount(tile.LOD))

	return mgl32.Vec2{
		(float32(offsetX) + vertexOffset.X()) / count,
		(float32(offsetY) + vertexOffset.Y()) / count,
	}, nil
}

// RelativePosition calculates the position of the location relative to the
// view, exactly, in double precision.
func (a *ViewApproximation) RelativePosition(relativeST mgl32.Vec2, face int) mgl64.Vec3 {
	st := a.sides[face].OriginST.Add(mgl64.Vec2{float64(relativeST.X()), float64(relativeST.Y())})

	return cubesphere.NewCoordinate(face, st).WorldPosition(a.model, 0).Sub(a.viewPosition)
}

// ApproximateRelativePosition evaluates the precomputed Taylor polynomial in
// pure float32 arithmetic. In close proximity to the view it matches
// RelativePosition to sub-centimeter accuracy.
func (a *ViewApproximation) ApproximateRelativePosition(relativeST mgl32.Vec2, face int) mgl32.Vec3 {
	surface := &a.sides[face]

	s := relativeST.X() + surface.DeltaRelativeST.X()
	t := relativeST.Y() + surface.DeltaRelativeST.Y()

	return surface.C.
		Add(surface.CDu.Mul(s)).
		Add(surface.CDv.Mul(t)).
		Add(surface.CDuu.Mul(s * s)).
		Add(surface.CDuv.Mul(s * t)).
		Add(surface.CDvv.Mul(t * t))
}

func pow3(x float64) float64 { return x * x * x }

func pow5(x float64) float64 { return x * x * x * x * x }

func vec2To32(v mgl64.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{float32(v.X()), float32(v.Y())}
}

func vec3To32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X()), float32(v.Y()), float32(v.Z())}
}
