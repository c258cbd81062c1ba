// Package coord maps window-space pointer positions to normalized
// device-style coordinates.
package coord

// Normalize maps a pointer position in physical pixels to the range [-1, 1]
// on both axes, where (0, 0) maps to (-1, -1) and (width, height) maps to
// (1, 1). Positions outside the viewport extrapolate linearly; nothing is
// clamped.
//
// width and height must be non-zero. The result for a zero dimension is
// ±Inf or NaN.
func Normalize(posX, posY float64, width, height uint32) (nx, ny float64) {
	nx = 2*posX/float64(width) - 1
	ny = 2*posY/float64(height) - 1
	return nx, ny
}
