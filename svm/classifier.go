// Package svm - kernel Support Vector Machine trained with Sequential
// Minimal Optimization.
//
// A Classifier is built from the full labeled training set, trained once,
// and read-only afterwards; a trained instance may be shared across
// concurrent detector invocations.
package svm

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-face/kernels"
)

// Classifier holds the training vectors retained as potential support
// vectors, their labels, the Lagrange multipliers, the bias and the
// kernel. Examples with a positive multiplier define the decision
// function.
type Classifier struct {
	vectors [][]float64
	labels  []int
	alphas  []float64
	bias    float64
	c       float64
	kernel  kernels.Kernel
}

// NewClassifier validates the training set and builds an untrained
// classifier.
//
// Arguments:
//   - vectors: The feature vectors, all of identical non-zero length.
//   - labels: One label per vector, +1 or -1.
//   - c: The regularization constant, > 0.
//   - kernel: The similarity function.
//
// Returns:
//   - The classifier ready for Train.
//   - An error describing the first contract violation; no classifier is
//     produced in that case.
func NewClassifier(vectors [][]float64, labels []int, c float64, kernel kernels.Kernel) (*Classifier, error) {
	if len(vectors) < 2 {
		return nil, errors.Errorf("training set needs at least 2 examples, got %d", len(vectors))
	}
	if len(vectors) != len(labels) {
		return nil, errors.Errorf("got %d vectors but %d labels", len(vectors), len(labels))
	}
	if c <= 0 {
		return nil, errors.Errorf("regularization constant must be > 0, got %g", c)
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, errors.New("zero-length feature vectors")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, errors.Errorf("vector dims: found %d and %d", dim, len(v))
		}
		if labels[i] != 1 && labels[i] != -1 {
			return nil, errors.Errorf("label at index %d must be +1 or -1, got %d", i, labels[i])
		}
	}

	return &Classifier{
		vectors: vectors,
		labels:  labels,
		alphas:  make([]float64, len(vectors)),
		c:       c,
		kernel:  kernel,
	}, nil
}

// Score computes the signed distance of x from the separating hyperplane:
// bias plus the kernel expansion over all support vectors. It is pure and
// safe to call concurrently on a trained classifier.
func (c *Classifier) Score(x []float64) float64 {
	sum := c.bias
	for i, alpha := range c.alphas {
		if alpha > 0 {
			sum += alpha * float64(c.labels[i]) * c.kernel.Compute(x, c.vectors[i])
		}
	}
	return sum
}

// Predict classifies x as +1 (positive class) or -1 (negative class).
func (c *Classifier) Predict(x []float64) int {
	if c.Score(x) > 0 {
		return 1
	}
	return -1
}

// SupportVectorCount returns the number of examples with alpha > 0.
func (c *Classifier) SupportVectorCount() int {
	count := 0
	for _, alpha := range c.alphas {
		if alpha > 0 {
			count++
		}
	}
	return count
}

// Bias returns the trained bias term.
func (c *Classifier) Bias() float64 {
	return c.bias
}

// Kernel returns the kernel this classifier was built with.
func (c *Classifier) Kernel() kernels.Kernel {
	return c.kernel
}

// Len returns the number of retained training examples.
func (c *Classifier) Len() int {
	return len(c.vectors)
}
