// Package common - shared detection geometry used across the pipeline.
package common

import (
	"fmt"
	"image"
)

// Region represents an axis-aligned detection window accepted by the
// classifier, with the signed distance from the separating hyperplane
// attached as its confidence score.
type Region struct {
	// X is the left edge of the region in image coordinates.
	X int
	// Y is the top edge of the region in image coordinates.
	Y int
	// Width of the region in pixels.
	Width int
	// Height of the region in pixels.
	Height int
	// Score is the classifier score for this window. Higher is more
	// face-like; only windows above the detector threshold become regions.
	Score float64
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Area returns the region area in pixels.
func (r Region) Area() int {
	return r.Width * r.Height
}

func (r Region) String() string {
	return fmt.Sprintf("Region (score %f): (%d, %d) %dx%d", r.Score, r.X, r.Y, r.Width, r.Height)
}

// IoU calculates the Intersection over Union between two regions.
//
// Arguments:
//   - a: The first region.
//   - b: The second region.
//
// Returns:
//   - The IoU value between 0 and 1. Disjoint regions and pairs with a
//     non-positive union area yield 0.
func IoU(a, b Region) float64 {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)

	if x2 <= x1 || y2 <= y1 {
		return 0.0
	}

	intersection := (x2 - x1) * (y2 - y1)
	union := a.Area() + b.Area() - intersection
	if union <= 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}
