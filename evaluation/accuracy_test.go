package evaluation

import (
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-face/detector"
	"github.com/nvr-ai/go-face/hog"
	"github.com/nvr-ai/go-face/kernels"
	"github.com/nvr-ai/go-face/svm"
)

func checkerboard(size, square int, dark, light uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/square+y/square)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: light})
			} else {
				img.SetGray(x, y, color.Gray{Y: dark})
			}
		}
	}
	return img
}

func uniform(size int, level uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// trainTextureModel builds a small classifier that separates checkerboard
// texture from flat patches.
func trainTextureModel(t *testing.T, extractor *hog.Extractor) *svm.Classifier {
	t.Helper()
	vectors := [][]float64{
		extractor.Extract(checkerboard(128, 8, 0, 255)),
		extractor.Extract(checkerboard(128, 8, 20, 235)),
		extractor.Extract(uniform(128, 100)),
		extractor.Extract(uniform(128, 180)),
	}
	labels := []int{1, 1, -1, -1}
	clf, err := svm.NewClassifier(vectors, labels, 0.1, kernels.NewLinear())
	require.NoError(t, err)
	config := svm.DefaultTrainConfig()
	config.Rand = rand.New(rand.NewSource(17))
	clf.Train(config)
	return clf
}

func TestMetricsFormulas(t *testing.T) {
	m := Metrics{
		TruePositives:  8,
		FalsePositives: 2,
		TrueNegatives:  6,
		FalseNegatives: 4,
		Total:          20,
	}
	assert.InDelta(t, 0.7, m.Accuracy(), 1e-9)
	assert.InDelta(t, 0.8, m.Precision(), 1e-5)
	assert.InDelta(t, 8.0/12.0, m.Recall(), 1e-5)
	assert.InDelta(t, 2*0.8*(8.0/12.0)/(0.8+8.0/12.0), m.F1(), 1e-4)
}

func TestMetricsEmptyClassesDoNotDivideByZero(t *testing.T) {
	var m Metrics
	assert.Zero(t, m.Accuracy())
	assert.Zero(t, m.Precision())
	assert.Zero(t, m.Recall())
	assert.Zero(t, m.F1())
}

func TestNewValidation(t *testing.T) {
	ev, err := New(Config{}, nil, nil)
	require.Error(t, err)
	assert.Nil(t, ev)
}

// TestRunOnSyntheticSets evaluates a texture model over disjoint classes
// and expects a clean confusion matrix.
func TestRunOnSyntheticSets(t *testing.T) {
	root := t.TempDir()
	posDir := filepath.Join(root, "pos")
	negDir := filepath.Join(root, "neg")
	writePNG(t, posDir, "a.png", checkerboard(128, 8, 0, 255))
	writePNG(t, posDir, "b.png", checkerboard(128, 8, 30, 225))
	writePNG(t, negDir, "a.png", uniform(300, 90))
	writePNG(t, negDir, "b.png", uniform(300, 170))

	extractor := hog.NewExtractor(hog.DefaultConfig())
	clf := trainTextureModel(t, extractor)
	det, err := detector.New(detector.DefaultConfig(), extractor)
	require.NoError(t, err)

	ev, err := New(Config{PositiveDir: posDir, NegativeDir: negDir}, det, clf)
	require.NoError(t, err)

	m, err := ev.Run()
	require.NoError(t, err)
	assert.Equal(t, 4, m.Total)
	assert.Equal(t, 2, m.TruePositives)
	assert.Equal(t, 2, m.TrueNegatives)
	assert.Zero(t, m.FalsePositives)
	assert.Zero(t, m.FalseNegatives)
	assert.InDelta(t, 1.0, m.Accuracy(), 1e-9)
}

func TestRunMissingDirectory(t *testing.T) {
	extractor := hog.NewExtractor(hog.DefaultConfig())
	clf := trainTextureModel(t, extractor)
	det, err := detector.New(detector.DefaultConfig(), extractor)
	require.NoError(t, err)

	ev, err := New(Config{
		PositiveDir: filepath.Join(t.TempDir(), "does-not-exist"),
		NegativeDir: t.TempDir(),
	}, det, clf)
	require.NoError(t, err)

	_, err = ev.Run()
	require.Error(t, err)
}
