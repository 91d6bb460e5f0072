package gridspace

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

func TestNewReferenceFrameRejectsDegenerateEdge(t *testing.T) {
	_, err := NewReferenceFrame(0)
	require.Error(t, err)

	_, err = NewReferenceFrame(-10)
	require.Error(t, err)
}

func TestTranslationToGrid(t *testing.T) {
	frame := DefaultReferenceFrame()

	cell, offset := frame.TranslationToGrid(mgl64.Vec3{2500, -999, 0})

	require.Equal(t, GridCell{X: 1, Y: 0, Z: 0}, cell)
	require.InDelta(t, 500, float64(offset.X()), 1e-6)
	require.InDelta(t, -999, float64(offset.Y()), 1e-6)
	require.InDelta(t, 0, float64(offset.Z()), 1e-6)
}

func TestGridRoundTrip(t *testing.T) {
	frame := DefaultReferenceFrame()

	positions := []mgl64.Vec3{
		{0, 0, 0},
		{123456.789, -987654.321, 6378137.0},
		{-1e9, 1e9, 42.42},
	}

	for _, position := range positions {
		cell, offset := frame.TranslationToGrid(position)
		back := frame.GridPosition(cell, offset)

		// the in-cell offset is float32, bounded by half the cell edge
		require.LessOrEqual(t, float64(offset.X()), DefaultCellEdge/2+1)
		require.InDelta(t, 0, position.Sub(back).Len(), 1e-3)
	}
}

func TestPreciseOffsetSurvivesHugeCells(t *testing.T) {
	frame := DefaultReferenceFrame()

	// Both entities sit in the same cell, about 9e18 m from the origin,
	// where float64 resolution has degraded to about 2000 m.
	cell := GridCell{X: 1 << 52, Y: 0, Z: 0}
	offsetA := mgl32.Vec3{100, 0, 0}
	offsetB := mgl32.Vec3{101.5, 0, 0}

	// Recombining in float64 first loses the in-cell displacement entirely.
	naive := frame.GridPosition(cell, offsetB).Sub(frame.GridPosition(cell, offsetA))
	require.InDelta(t, 0, naive.Len(), 1e-9)

	precise := frame.PreciseOffset(cell, offsetA, cell, offsetB)
	require.Equal(t, mgl64.Vec3{1.5, 0, 0}, precise)
}

func TestPreciseOffsetAcrossCells(t *testing.T) {
	frame := DefaultReferenceFrame()

	cellA := GridCell{X: 5, Y: -3, Z: 0}
	cellB := GridCell{X: 6, Y: -3, Z: 0}

	offset := frame.PreciseOffset(cellA, mgl32.Vec3{250, 0, 0}, cellB, mgl32.Vec3{-250, 0, 0})

	require.Equal(t, mgl64.Vec3{1500, 0, 0}, offset)
}
