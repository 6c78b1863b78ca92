package svm

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-face/kernels"
)

// snapshot is the gob wire form of a trained classifier. gob round-trips
// float64 values bit-for-bit, so a reloaded model scores identically.
type snapshot struct {
	Vectors [][]float64
	Labels  []int
	Alphas  []float64
	Bias    float64
	C       float64
	Kernel  kernels.Kernel
}

// Save serializes the classifier as an opaque blob: support vectors,
// labels, multipliers, bias, C and the kernel identity.
func (c *Classifier) Save(w io.Writer) error {
	s := snapshot{
		Vectors: c.vectors,
		Labels:  c.labels,
		Alphas:  c.alphas,
		Bias:    c.bias,
		C:       c.c,
		Kernel:  c.kernel,
	}
	if err := gob.NewEncoder(w).Encode(s); err != nil {
		return errors.Wrap(err, "encoding SVM model")
	}
	return nil
}

// Load reconstructs a classifier from a blob written by Save.
//
// Returns:
//   - The classifier, read-only and ready for scoring.
//   - An error when the blob cannot be decoded or is internally
//     inconsistent.
func Load(r io.Reader) (*Classifier, error) {
	var s snapshot
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decoding SVM model")
	}
	if len(s.Vectors) != len(s.Labels) || len(s.Vectors) != len(s.Alphas) {
		return nil, errors.Errorf(
			"corrupt SVM model: %d vectors, %d labels, %d alphas",
			len(s.Vectors), len(s.Labels), len(s.Alphas))
	}

	return &Classifier{
		vectors: s.Vectors,
		labels:  s.Labels,
		alphas:  s.Alphas,
		bias:    s.Bias,
		c:       s.C,
		kernel:  s.Kernel,
	}, nil
}

// SaveFile writes the model blob to path, creating or truncating it.
func (c *Classifier) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating model file %s", path)
	}
	defer f.Close()

	if err := c.Save(f); err != nil {
		return err
	}
	return errors.Wrapf(f.Sync(), "flushing model file %s", path)
}

// LoadFile reads a model blob from path. A missing file is surfaced as an
// explicit error; the caller must never fall back to a default model.
func LoadFile(path string) (*Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening model file %s", path)
	}
	defer f.Close()

	return Load(f)
}
