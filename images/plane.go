// Package images - luminance rasters and pixel statistics for the
// detection pipeline.
package images

import (
	"image"
)

// Plane holds a single-channel float32 luminance raster with a zero-based
// coordinate system, regardless of the source image bounds.
type Plane struct {
	// Width of the raster in pixels.
	Width int
	// Height of the raster in pixels.
	Height int
	// Pix holds the luminance values in row-major order.
	Pix []float32
}

// Luminance converts an image to a BT.601-weighted luminance plane
// (0.299 R + 0.587 G + 0.114 B), the intensity definition shared by the
// feature extractor and the detector pre-filters.
func Luminance(img image.Image) *Plane {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	p := &Plane{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height),
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// RGBA returns 16-bit channels; shift down to 8-bit.
			p.Pix[i] = 0.299*float32(r>>8) + 0.587*float32(g>>8) + 0.114*float32(b>>8)
			i++
		}
	}
	return p
}

// At returns the luminance at (x, y). The caller is responsible for
// staying inside the raster.
func (p *Plane) At(x, y int) float32 {
	return p.Pix[y*p.Width+x]
}

// Bounds returns the zero-based rectangle covering the whole raster.
func (p *Plane) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.Width, p.Height)
}

// MeanVariance computes the mean and population variance of the luminance
// inside rect.
//
// Arguments:
//   - rect: The sub-window to measure, in plane coordinates.
//
// Returns:
//   - The mean intensity.
//   - The population variance. Both are 0 for an empty window.
func (p *Plane) MeanVariance(rect image.Rectangle) (float64, float64) {
	rect = rect.Intersect(p.Bounds())
	count := rect.Dx() * rect.Dy()
	if count == 0 {
		return 0, 0
	}

	var mean float64
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		row := p.Pix[y*p.Width+rect.Min.X : y*p.Width+rect.Max.X]
		for _, v := range row {
			mean += float64(v)
		}
	}
	mean /= float64(count)

	var variance float64
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		row := p.Pix[y*p.Width+rect.Min.X : y*p.Width+rect.Max.X]
		for _, v := range row {
			d := float64(v) - mean
			variance += d * d
		}
	}
	variance /= float64(count)

	return mean, variance
}
