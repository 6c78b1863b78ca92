package trainers

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-face/hog"
	"github.com/nvr-ai/go-face/kernels"
	"github.com/nvr-ai/go-face/svm"
	"github.com/nvr-ai/go-face/util"
)

// ProgressFunc reports per-identity training status to an external
// observer. It is fire-and-forget, invoked from the training goroutine at
// least at the start and completion of each identity, and must not affect
// the numeric outcome.
type ProgressFunc func(identityID, status string)

// Progress status strings passed to ProgressFunc.
const (
	StatusTraining  = "Training in progress..."
	StatusCompleted = "Completed"
	StatusSkipped   = "Skipped: no valid images"
)

// IdentityConfig configures the one-vs-rest identity trainer.
type IdentityConfig struct {
	// TrainDir holds one subdirectory per enrolled identity.
	TrainDir string
	// C is the regularization constant. Zero falls back to the reference
	// value 1.0.
	C float64
	// HOG is the extractor geometry shared with detection.
	HOG hog.Config
	// SVM configures the SMO solver.
	SVM svm.TrainConfig
	// Progress receives per-identity status updates. May be nil.
	Progress ProgressFunc
}

// IdentityTrainer builds one sigmoid-kernel classifier per enrolled
// identity: the identity's own images are the positives and the union of
// every other identity's images the negatives. The scheme is one-vs-rest,
// so the whole model set is rebuilt whenever the identity set changes —
// an inherent cost of the design, not something to patch incrementally.
type IdentityTrainer struct {
	config    IdentityConfig
	extractor *hog.Extractor
}

// NewIdentityTrainer creates an identity trainer.
func NewIdentityTrainer(config IdentityConfig) *IdentityTrainer {
	if config.C <= 0 {
		config.C = 1.0
	}
	return &IdentityTrainer{
		config:    config,
		extractor: hog.NewExtractor(config.HOG),
	}
}

// Train builds the full identity model set.
//
// Identities are processed sequentially in directory order so that
// progress callbacks stay attributable. Identities without valid images
// are skipped with a callback; an empty or missing training directory is
// an error.
//
// Returns:
//   - One trained classifier per identity that had usable images.
//   - An error when the dataset root is unusable.
func (t *IdentityTrainer) Train() (map[string]*svm.Classifier, error) {
	ids, err := util.ListSubdirectories(t.config.TrainDir)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, errors.Errorf("no identity directories in %s", t.config.TrainDir)
	}

	// Each identity's images appear in every other identity's negative
	// set, so extract every feature once up front.
	featuresByID := make(map[string][][]float64, len(ids))
	for _, id := range ids {
		features, err := loadDirFeatures(filepath.Join(t.config.TrainDir, id), t.extractor)
		if err != nil {
			return nil, errors.Wrapf(err, "loading images for identity %s", id)
		}
		featuresByID[id] = features
	}

	models := make(map[string]*svm.Classifier, len(ids))
	for _, id := range ids {
		t.report(id, StatusTraining)

		positives := featuresByID[id]
		if len(positives) == 0 {
			logrus.Warnf("no valid images for identity %s, skipping", id)
			t.report(id, StatusSkipped)
			continue
		}

		vectors := make([][]float64, 0, len(positives))
		labels := make([]int, 0, len(positives))
		for _, f := range positives {
			vectors = append(vectors, f)
			labels = append(labels, 1)
		}
		for _, other := range ids {
			if other == id {
				continue
			}
			for _, f := range featuresByID[other] {
				vectors = append(vectors, f)
				labels = append(labels, -1)
			}
		}

		logrus.WithFields(logrus.Fields{
			"identity":  id,
			"positives": len(positives),
			"negatives": len(vectors) - len(positives),
		}).Info("training identity classifier")

		clf, err := svm.NewClassifier(vectors, labels, t.config.C, kernels.NewSigmoid())
		if err != nil {
			return nil, errors.Wrapf(err, "building classifier for identity %s", id)
		}
		clf.Train(t.config.SVM)

		models[id] = clf
		t.report(id, StatusCompleted)
	}

	return models, nil
}

func (t *IdentityTrainer) report(id, status string) {
	if t.config.Progress != nil {
		t.config.Progress(id, status)
	}
}
