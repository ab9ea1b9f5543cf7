package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPercent(t *testing.T) {
	b := Bounds{Left: 100, Top: 50, Width: 800, Height: 600}

	xPct, yPct, err := ToPercent(500, 350, b)
	require.NoError(t, err)
	assert.InDelta(t, 50, xPct, 1e-9)
	assert.InDelta(t, 50, yPct, 1e-9)

	xPct, yPct, err = ToPercent(100, 50, b)
	require.NoError(t, err)
	assert.InDelta(t, 0, xPct, 1e-9)
	assert.InDelta(t, 0, yPct, 1e-9)

	xPct, yPct, err = ToPercent(900, 650, b)
	require.NoError(t, err)
	assert.InDelta(t, 100, xPct, 1e-9)
	assert.InDelta(t, 100, yPct, 1e-9)
}

func TestToPercentEmptyBounds(t *testing.T) {
	_, _, err := ToPercent(10, 10, Bounds{})
	assert.ErrorIs(t, err, ErrEmptyBounds)

	_, _, err = ToPixels(50, 50, Bounds{Width: 800})
	assert.ErrorIs(t, err, ErrEmptyBounds)
}

func TestRoundTrip(t *testing.T) {
	b := Bounds{Left: 33, Top: 17, Width: 1024, Height: 768}

	points := [][2]float64{
		{33, 17},
		{1057, 785},
		{512.5, 400.25},
		{40, 700},
	}
	for _, p := range points {
		xPct, yPct, err := ToPercent(p[0], p[1], b)
		require.NoError(t, err)

		x, y, err := ToPixels(xPct, yPct, b)
		require.NoError(t, err)
		assert.InDelta(t, p[0], x, 1e-6)
		assert.InDelta(t, p[1], y, 1e-6)
	}
}

func TestRoundTripAcrossResize(t *testing.T) {
	// A marker stored as percentages must land at the proportional spot
	// when the image is rendered at a different size.
	small := Bounds{Width: 400, Height: 300}
	large := Bounds{Left: 20, Top: 10, Width: 1600, Height: 1200}

	xPct, yPct, err := ToPercent(100, 150, small)
	require.NoError(t, err)

	x, y, err := ToPixels(xPct, yPct, large)
	require.NoError(t, err)
	assert.InDelta(t, 20+0.25*1600, x, 1e-6)
	assert.InDelta(t, 10+0.5*1200, y, 1e-6)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.3))
	assert.Equal(t, 100.0, Clamp(100.0001))
	assert.Equal(t, 42.5, Clamp(42.5))
}
