// Package detector - multi-scale sliding-window face scanner with
// Non-Maximum Suppression.
package detector

import (
	"image"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-face/common"
	"github.com/nvr-ai/go-face/hog"
	"github.com/nvr-ai/go-face/images"
	"github.com/nvr-ai/go-face/svm"
)

// Config defines the scan geometry and the rejection thresholds.
type Config struct {
	// WindowSizes are the square window edges to scan, in pixels.
	WindowSizes []int
	// Steps are the scan strides, one per window size.
	Steps []int
	// ScoreThreshold is the minimum classifier score for a window to
	// become a detection.
	ScoreThreshold float64
	// StdDevThreshold rejects near-uniform images and windows before any
	// feature work; intensity standard deviation below it means there is
	// no face-like texture to find.
	StdDevThreshold float64
	// GradientThreshold rejects windows whose mean gradient magnitude is
	// too low to contain edges.
	GradientThreshold float64
	// IoUThreshold is the overlap above which NMS suppresses the
	// lower-scored of two detections.
	IoUThreshold float64
}

// DefaultConfig returns the reference scan parameters.
func DefaultConfig() Config {
	return Config{
		WindowSizes:       []int{112, 128},
		Steps:             []int{40, 48},
		ScoreThreshold:    0.035,
		StdDevThreshold:   20.0,
		GradientThreshold: 10.0,
		IoUThreshold:      0.4,
	}
}

// Detector scans an image at multiple window sizes and scores each
// candidate window with an SVM classifier. It holds no mutable state and
// may be invoked concurrently against the same trained model.
type Detector struct {
	config    Config
	extractor *hog.Extractor
}

// New creates a detector.
//
// Arguments:
//   - config: The scan parameters.
//   - extractor: The feature extractor; its canonical size is the resize
//     target for every accepted window.
//
// Returns:
//   - The detector.
//   - An error when the window/step lists are empty or differ in length.
func New(config Config, extractor *hog.Extractor) (*Detector, error) {
	if len(config.WindowSizes) == 0 {
		return nil, errors.New("no window sizes configured")
	}
	if len(config.WindowSizes) != len(config.Steps) {
		return nil, errors.Errorf(
			"got %d window sizes but %d steps", len(config.WindowSizes), len(config.Steps))
	}
	if extractor == nil {
		return nil, errors.New("nil extractor")
	}
	return &Detector{config: config, extractor: extractor}, nil
}

// Detect returns the deduplicated face regions of an image.
//
// The scan is row-major per window size. Windows are dropped early when
// their intensity standard deviation or mean gradient magnitude is below
// the configured thresholds; surviving windows are resized to the
// canonical extractor input, described and scored. Overlapping detections
// are reduced with greedy NMS.
func (d *Detector) Detect(img image.Image, clf *svm.Classifier) []common.Region {
	start := time.Now()
	plane := images.Luminance(img)
	width := plane.Width
	height := plane.Height

	_, variance := plane.MeanVariance(plane.Bounds())
	if stddev := math.Sqrt(variance); stddev < d.config.StdDevThreshold {
		logrus.WithField("stddev", stddev).Debug("low-variance image, skipping detection")
		return nil
	}

	canonical := d.extractor.Config().ImageSize
	var candidates []common.Region
	for i, windowSize := range d.config.WindowSizes {
		step := d.config.Steps[i]
		scanned := 0
		skipped := 0
		for y := 0; y+windowSize <= height; y += step {
			for x := 0; x+windowSize <= width; x += step {
				rect := image.Rect(x, y, x+windowSize, y+windowSize)

				_, v := plane.MeanVariance(rect)
				if math.Sqrt(v) < d.config.StdDevThreshold {
					skipped++
					continue
				}
				if d.extractor.MeanGradientMagnitude(plane, rect) < d.config.GradientThreshold {
					skipped++
					continue
				}

				patch := images.CropScale(img, rect, canonical)
				score := clf.Score(d.extractor.Extract(patch))
				if score > d.config.ScoreThreshold {
					candidates = append(candidates, common.Region{
						X:     x,
						Y:     y,
						Width: windowSize, Height: windowSize,
						Score: score,
					})
				}
				scanned++
			}
		}
		logrus.WithFields(logrus.Fields{
			"window":  windowSize,
			"step":    step,
			"scanned": scanned,
			"skipped": skipped,
		}).Debug("window pass done")
	}

	regions := NMS(candidates, d.config.IoUThreshold)
	logrus.WithFields(logrus.Fields{
		"size":       image.Pt(width, height),
		"candidates": len(candidates),
		"regions":    len(regions),
		"elapsed":    time.Since(start).Round(time.Millisecond),
	}).Debug("detection finished")
	return regions
}
