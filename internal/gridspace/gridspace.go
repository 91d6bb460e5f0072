// Package gridspace supplies the floating origin bookkeeping the engine
// collaborates with. Large world positions are split into an integer grid
// cell plus a small single precision offset; the approximation engine only
// ever sees the recombined double precision position.
package gridspace

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DefaultCellEdge keeps the in-cell offset small enough that float32 retains
// sub-millimeter resolution within a cell.
const DefaultCellEdge = 2000.0

// GridCell addresses one cell of the reference frame grid.
type GridCell struct {
	X int64
	Y int64
	Z int64
}

// ReferenceFrame is a uniform grid over world space with a fixed cell edge
// length in meters.
type ReferenceFrame struct {
	cellEdge float64
}

func NewReferenceFrame(cellEdge float64) (*ReferenceFrame, error) {
	if cellEdge <= 0 {
		return nil, errors.Errorf("gridspace: degenerate cell edge %g", cellEdge)
	}

	return &ReferenceFrame{cellEdge: cellEdge}, nil
}

func DefaultReferenceFrame() *ReferenceFrame {
	return &ReferenceFrame{cellEdge: DefaultCellEdge}
}

func (f *ReferenceFrame) CellEdge() float64 {
	return f.cellEdge
}

// TranslationToGrid splits a world translation into the nearest grid cell and
// the remaining in-cell offset. The offset components are bounded by half the
// cell edge.
func (f *ReferenceFrame) TranslationToGrid(translation mgl64.Vec3) (GridCell, mgl32.Vec3) {
	cell := GridCell{
		X: int64(math.Round(translation.X() / f.cellEdge)),
		Y: int64(math.Round(translation.Y() / f.cellEdge)),
		Z: int64(math.Round(translation.Z() / f.cellEdge)),
	}

	offset := mgl32.Vec3{
		float32(translation.X() - float64(cell.X)*f.cellEdge),
		float32(translation.Y() - float64(cell.Y)*f.cellEdge),
		float32(translation.Z() - float64(cell.Z)*f.cellEdge),
	}

	return cell, offset
}

// GridPosition recombines a cell and an offset into a double precision world
// position.
func (f *ReferenceFrame) GridPosition(cell GridCell, offset mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		float64(cell.X)*f.cellEdge + float64(offset.X()),
		float64(cell.Y)*f.cellEdge + float64(offset.Y()),
		float64(cell.Z)*f.cellEdge + float64(offset.Z()),
	}
}

// PrecisePosition recombines a cell and an offset exactly, one decimal per
// axis. Used when differencing two far-apart entities, where recombining in
// float64 first would round twice.
func (f *ReferenceFrame) PrecisePosition(cell GridCell, offset mgl32.Vec3) [3]decimal.Decimal {
	edge := decimal.NewFromFloat(f.cellEdge)

	return [3]decimal.Decimal{
		decimal.NewFromInt(cell.X).Mul(edge).Add(decimal.NewFromFloat32(offset.X())),
		decimal.NewFromInt(cell.Y).Mul(edge).Add(decimal.NewFromFloat32(offset.Y())),
		decimal.NewFromInt(cell.Z).Mul(edge).Add(decimal.NewFromFloat32(offset.Z())),
	}
}

// PreciseOffset returns the displacement from entity a to entity b, computed
// exactly and rounded once at the end.
func (f *ReferenceFrame) PreciseOffset(cellA GridCell, offsetA mgl32.Vec3, cellB GridCell, offsetB mgl32.Vec3) mgl64.Vec3 {
	a := f.PrecisePosition(cellA, offsetA)
	b := f.PrecisePosition(cellB, offsetB)

	var result mgl64.Vec3
	for i := 0; i < 3; i++ {
		result[i] = b[i].Sub(a[i]).InexactFloat64()
	}

	return result
}
