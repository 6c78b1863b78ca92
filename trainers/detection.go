// Package trainers - dataset orchestration for the face-detection model
// and the per-identity recognition models.
package trainers

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-face/hog"
	"github.com/nvr-ai/go-face/images"
	"github.com/nvr-ai/go-face/kernels"
	"github.com/nvr-ai/go-face/svm"
	"github.com/nvr-ai/go-face/util"
)

// minRecommendedExamples is the corpus size below which the detection
// trainer warns about degraded model quality.
const minRecommendedExamples = 600

// DetectionConfig configures the face/non-face trainer.
type DetectionConfig struct {
	// PositiveDir holds the face images.
	PositiveDir string
	// NegativeDir holds the non-face images.
	NegativeDir string
	// C is the regularization constant. Zero falls back to the reference
	// value 0.1.
	C float64
	// HOG is the extractor geometry shared by training and detection.
	HOG hog.Config
	// SVM configures the SMO solver.
	SVM svm.TrainConfig
}

// DetectionTrainer builds one binary is-this-a-face classifier with the
// linear kernel from flat positive and negative image directories.
type DetectionTrainer struct {
	config    DetectionConfig
	extractor *hog.Extractor
}

// NewDetectionTrainer creates a detection trainer.
func NewDetectionTrainer(config DetectionConfig) *DetectionTrainer {
	if config.C <= 0 {
		config.C = 0.1
	}
	return &DetectionTrainer{
		config:    config,
		extractor: hog.NewExtractor(config.HOG),
	}
}

// Train loads both datasets, extracts HOG features and trains the
// linear-kernel SVM.
//
// Returns:
//   - The trained classifier.
//   - The solver report (including the stopping condition).
//   - An error when either dataset is missing or empty; no partial model
//     is produced in that case.
func (t *DetectionTrainer) Train() (*svm.Classifier, svm.Report, error) {
	positives, err := t.loadFeatures(t.config.PositiveDir)
	if err != nil {
		return nil, svm.Report{}, errors.Wrap(err, "loading positive training set")
	}
	if len(positives) == 0 {
		return nil, svm.Report{}, errors.Errorf("no positive images in %s", t.config.PositiveDir)
	}

	negatives, err := t.loadFeatures(t.config.NegativeDir)
	if err != nil {
		return nil, svm.Report{}, errors.Wrap(err, "loading negative training set")
	}
	if len(negatives) == 0 {
		return nil, svm.Report{}, errors.Errorf("no negative images in %s", t.config.NegativeDir)
	}

	total := len(positives) + len(negatives)
	logrus.WithFields(logrus.Fields{
		"positives": len(positives),
		"negatives": len(negatives),
	}).Info("detection training set loaded")
	if total < minRecommendedExamples {
		logrus.Warnf("training set is small (%d images), recommend at least %d", total, minRecommendedExamples)
	}

	vectors := make([][]float64, 0, total)
	labels := make([]int, 0, total)
	for _, f := range positives {
		vectors = append(vectors, f)
		labels = append(labels, 1)
	}
	for _, f := range negatives {
		vectors = append(vectors, f)
		labels = append(labels, -1)
	}

	clf, err := svm.NewClassifier(vectors, labels, t.config.C, kernels.NewLinear())
	if err != nil {
		return nil, svm.Report{}, err
	}
	report := clf.Train(t.config.SVM)

	return clf, report, nil
}

// loadFeatures extracts the HOG descriptor of every readable image in
// dir, scaled to the canonical extractor input first. Unreadable images
// are logged and skipped rather than aborting the run.
func (t *DetectionTrainer) loadFeatures(dir string) ([][]float64, error) {
	return loadDirFeatures(dir, t.extractor)
}

func loadDirFeatures(dir string, extractor *hog.Extractor) ([][]float64, error) {
	paths, err := util.ListImageFiles(dir)
	if err != nil {
		return nil, err
	}

	size := extractor.Config().ImageSize
	features := make([][]float64, 0, len(paths))
	for _, path := range paths {
		img, err := util.LoadImage(path)
		if err != nil {
			logrus.WithError(err).Warnf("skipping unreadable image %s", path)
			continue
		}
		features = append(features, extractor.Extract(images.Scale(img, size)))
	}
	return features, nil
}
