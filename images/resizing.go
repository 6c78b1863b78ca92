package images

import (
	"image"
	"image/draw"

	"github.com/nfnt/resize"
)

// subImager is implemented by the standard image types that support
// zero-copy cropping.
type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Scale resizes an image to a square of the given edge length, the
// canonical extractor input.
//
// Arguments:
//   - img: The image to resize.
//   - size: The target edge length in pixels.
//
// Returns:
//   - The resized image.
func Scale(img image.Image, size int) image.Image {
	b := img.Bounds()
	if b.Dx() == size && b.Dy() == size {
		return img
	}
	return resize.Resize(uint(size), uint(size), img, resize.Lanczos3)
}

// CropScale crops rect out of img and resizes the patch to a square of
// the given edge length. rect is zero-based; non-zero source bounds are
// translated internally.
func CropScale(img image.Image, rect image.Rectangle, size int) image.Image {
	return Scale(Crop(img, rect), size)
}

// Crop extracts a zero-based sub-window from an image, copying only when
// the source type does not support sub-imaging.
func Crop(img image.Image, rect image.Rectangle) image.Image {
	src := rect.Add(img.Bounds().Min)
	if s, ok := img.(subImager); ok {
		return s.SubImage(src)
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Src)
	return dst
}

// FitWithin downscales an image to fit inside maxWidth x maxHeight while
// preserving aspect ratio. Images already inside the box are returned
// unchanged; this keeps detection over large test images tractable.
func FitWithin(img image.Image, maxWidth, maxHeight int) image.Image {
	b := img.Bounds()
	width := b.Dx()
	height := b.Dy()
	if width <= maxWidth && height <= maxHeight {
		return img
	}

	scale := min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))
	return resize.Resize(uint(float64(width)*scale), uint(float64(height)*scale), img, resize.Lanczos3)
}
