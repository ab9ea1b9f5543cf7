// Package geometry maps between screen-space pixel coordinates and the
// percentage-of-image coordinates stored on task markers. Percentages are
// resolution independent, which is what keeps markers anchored correctly
// when the plan image is rendered at a different size.
package geometry

import "errors"

// ErrEmptyBounds is returned when the container has no usable area.
var ErrEmptyBounds = errors.New("geometry: bounds have zero width or height")

// Bounds is the rendered plan image rectangle in screen pixels.
type Bounds struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether the bounds cannot host a marker.
func (b Bounds) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// ToPercent translates a pointer position into percentage coordinates
// relative to the bounds. Used both for placing a new marker and for the
// release point of a drag.
func ToPercent(x, y float64, b Bounds) (xPct, yPct float64, err error) {
	if b.Empty() {
		return 0, 0, ErrEmptyBounds
	}
	xPct = (x - b.Left) / b.Width * 100
	yPct = (y - b.Top) / b.Height * 100
	return xPct, yPct, nil
}

// ToPixels is the inverse of ToPercent: it resolves a stored marker position
// back to screen pixels for the current bounds.
func ToPixels(xPct, yPct float64, b Bounds) (x, y float64, err error) {
	if b.Empty() {
		return 0, 0, ErrEmptyBounds
	}
	x = b.Left + xPct/100*b.Width
	y = b.Top + yPct/100*b.Height
	return x, y, nil
}

// Clamp forces a percentage into [0,100]. Drags released at the exact edge
// of the image can land a fraction outside the range.
func Clamp(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
