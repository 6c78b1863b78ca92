// Package evaluation - detector accuracy measurement over labeled test
// sets.
package evaluation

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-face/detector"
	"github.com/nvr-ai/go-face/images"
	"github.com/nvr-ai/go-face/svm"
	"github.com/nvr-ai/go-face/util"
)

// metricEpsilon guards the ratio denominators so an empty class yields 0
// instead of NaN.
const metricEpsilon = 1e-6

// Metrics is the confusion matrix of a detection run over labeled
// positive and negative test sets. An image counts as positive when the
// detector returns at least one region for it.
type Metrics struct {
	// TruePositives is the number of face images with detections.
	TruePositives int
	// FalsePositives is the number of non-face images with detections.
	FalsePositives int
	// TrueNegatives is the number of non-face images without detections.
	TrueNegatives int
	// FalseNegatives is the number of face images without detections.
	FalseNegatives int
	// Total is the number of images evaluated.
	Total int
}

// Accuracy returns the fraction of correctly classified images.
func (m Metrics) Accuracy() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.TruePositives+m.TrueNegatives) / float64(m.Total)
}

// Precision returns TP / (TP + FP).
func (m Metrics) Precision() float64 {
	return float64(m.TruePositives) / (float64(m.TruePositives+m.FalsePositives) + metricEpsilon)
}

// Recall returns TP / (TP + FN).
func (m Metrics) Recall() float64 {
	return float64(m.TruePositives) / (float64(m.TruePositives+m.FalseNegatives) + metricEpsilon)
}

// F1 returns the harmonic mean of precision and recall.
func (m Metrics) F1() float64 {
	p := m.Precision()
	r := m.Recall()
	return 2 * p * r / (p + r + metricEpsilon)
}

// Config configures an accuracy run.
type Config struct {
	// PositiveDir holds test images that contain a face.
	PositiveDir string
	// NegativeDir holds test images without faces.
	NegativeDir string
	// MaxWidth and MaxHeight bound the scanned image size; larger test
	// images are downscaled to fit before detection. Zero falls back to
	// the reference 640x360 cap.
	MaxWidth  int
	MaxHeight int
}

// Evaluator runs a trained detector against labeled test sets and
// aggregates confusion-matrix metrics.
type Evaluator struct {
	config     Config
	detector   *detector.Detector
	classifier *svm.Classifier
}

// New creates an evaluator for one detector/model pair.
func New(config Config, det *detector.Detector, clf *svm.Classifier) (*Evaluator, error) {
	if det == nil || clf == nil {
		return nil, errors.New("evaluator needs a detector and a trained classifier")
	}
	if config.MaxWidth <= 0 {
		config.MaxWidth = 640
	}
	if config.MaxHeight <= 0 {
		config.MaxHeight = 360
	}
	return &Evaluator{config: config, detector: det, classifier: clf}, nil
}

// Run evaluates both test sets.
//
// Returns:
//   - The aggregated confusion matrix.
//   - An error when either test directory cannot be read. Individual
//     unreadable images are logged and skipped without counting.
func (e *Evaluator) Run() (Metrics, error) {
	var m Metrics

	posPaths, err := util.ListImageFiles(e.config.PositiveDir)
	if err != nil {
		return m, errors.Wrap(err, "loading positive test set")
	}
	negPaths, err := util.ListImageFiles(e.config.NegativeDir)
	if err != nil {
		return m, errors.Wrap(err, "loading negative test set")
	}

	for _, path := range posPaths {
		detected, ok := e.detectIn(path)
		if !ok {
			continue
		}
		if detected {
			m.TruePositives++
		} else {
			m.FalseNegatives++
		}
		m.Total++
	}

	for _, path := range negPaths {
		detected, ok := e.detectIn(path)
		if !ok {
			continue
		}
		if detected {
			m.FalsePositives++
		} else {
			m.TrueNegatives++
		}
		m.Total++
	}

	logrus.WithFields(logrus.Fields{
		"tp":        m.TruePositives,
		"fp":        m.FalsePositives,
		"tn":        m.TrueNegatives,
		"fn":        m.FalseNegatives,
		"accuracy":  m.Accuracy(),
		"precision": m.Precision(),
		"recall":    m.Recall(),
		"f1":        m.F1(),
	}).Info("accuracy evaluation finished")

	return m, nil
}

// detectIn reports whether the detector finds at least one region in the
// image at path. The second return value is false when the image could
// not be loaded.
func (e *Evaluator) detectIn(path string) (bool, bool) {
	img, err := util.LoadImage(path)
	if err != nil {
		logrus.WithError(err).Warnf("skipping unreadable test image %s", path)
		return false, false
	}
	img = images.FitWithin(img, e.config.MaxWidth, e.config.MaxHeight)
	regions := e.detector.Detect(img, e.classifier)
	return len(regions) > 0, true
}
