package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLuminanceWeights(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want float32
	}{
		{name: "black", c: color.RGBA{A: 255}, want: 0},
		{name: "white", c: color.RGBA{R: 255, G: 255, B: 255, A: 255}, want: 255},
		{name: "pure red", c: color.RGBA{R: 255, A: 255}, want: 0.299 * 255},
		{name: "pure green", c: color.RGBA{G: 255, A: 255}, want: 0.587 * 255},
		{name: "pure blue", c: color.RGBA{B: 255, A: 255}, want: 0.114 * 255},
		{name: "mid gray", c: color.Gray{Y: 128}, want: 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, 1, 1))
			img.Set(0, 0, tt.c)
			p := Luminance(img)
			assert.InDelta(t, tt.want, p.At(0, 0), 0.5)
		})
	}
}

// TestLuminanceTranslatesBounds: planes are zero-based even when the
// source image is a sub-image with shifted bounds.
func TestLuminanceTranslatesBounds(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 10, 10))
	src.SetGray(5, 5, color.Gray{Y: 200})
	sub := src.SubImage(image.Rect(4, 4, 8, 8))

	p := Luminance(sub)
	assert.Equal(t, 4, p.Width)
	assert.Equal(t, 4, p.Height)
	assert.InDelta(t, 200, p.At(1, 1), 0.5)
	assert.Zero(t, p.At(0, 0))
}

func TestMeanVariance(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	// Left half 0, right half 100: mean 50, variance 2500.
	for y := 0; y < 4; y++ {
		for x := 2; x < 4; x++ {
			img.SetGray(x, y, color.Gray{Y: 100})
		}
	}
	p := Luminance(img)

	mean, variance := p.MeanVariance(p.Bounds())
	assert.InDelta(t, 50, mean, 1e-3)
	assert.InDelta(t, 2500, variance, 1e-1)

	// A flat sub-window has zero variance.
	mean, variance = p.MeanVariance(image.Rect(2, 0, 4, 4))
	assert.InDelta(t, 100, mean, 1e-3)
	assert.InDelta(t, 0, variance, 1e-6)

	// Out-of-bounds parts of the window are clipped, not read.
	mean, variance = p.MeanVariance(image.Rect(2, 2, 100, 100))
	assert.InDelta(t, 100, mean, 1e-3)
	assert.InDelta(t, 0, variance, 1e-6)

	mean, variance = p.MeanVariance(image.Rect(10, 10, 20, 20))
	assert.Zero(t, mean)
	assert.Zero(t, variance)
}

func TestScale(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 32))
	scaled := Scale(img, 128)
	assert.Equal(t, image.Rect(0, 0, 128, 128), scaled.Bounds())

	// Already at target size: returned as-is.
	square := image.NewGray(image.Rect(0, 0, 128, 128))
	assert.Equal(t, image.Image(square), Scale(square, 128))
}

func TestCropTranslatesToZeroBase(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 20, 20))
	src.SetGray(12, 12, color.Gray{Y: 255})

	cropped := Crop(src, image.Rect(10, 10, 16, 16))
	require.Equal(t, 6, cropped.Bounds().Dx())
	require.Equal(t, 6, cropped.Bounds().Dy())

	p := Luminance(cropped)
	assert.InDelta(t, 255, p.At(2, 2), 0.5)
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		maxW, maxH int
		wantW      int
		wantH      int
	}{
		{name: "already fits", w: 320, h: 200, maxW: 640, maxH: 360, wantW: 320, wantH: 200},
		{name: "wide image capped by width", w: 1280, h: 360, maxW: 640, maxH: 360, wantW: 640, wantH: 180},
		{name: "tall image capped by height", w: 640, h: 720, maxW: 640, maxH: 360, wantW: 320, wantH: 360},
		{name: "both over", w: 1920, h: 1080, maxW: 640, maxH: 360, wantW: 640, wantH: 360},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewGray(image.Rect(0, 0, tt.w, tt.h))
			out := FitWithin(img, tt.maxW, tt.maxH)
			assert.Equal(t, tt.wantW, out.Bounds().Dx())
			assert.Equal(t, tt.wantH, out.Bounds().Dy())
		})
	}
}

func TestCropScale(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 200, 200))
	out := CropScale(img, image.Rect(10, 10, 122, 122), 128)
	assert.Equal(t, image.Rect(0, 0, 128, 128), out.Bounds())
}
