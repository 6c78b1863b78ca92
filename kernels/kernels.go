// Package kernels - similarity functions for the SVM core.
//
// Exactly two kernels are in scope, so the kernel is a small closed tagged
// variant (kind plus fixed hyperparameters) rather than an open plugin
// interface.
package kernels

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Kind identifies a kernel function.
type Kind int

const (
	// Linear is the plain dot-product kernel, used by the face detector.
	Linear Kind = iota
	// Sigmoid is the tanh kernel over L2-normalized inputs, used by the
	// per-identity classifiers.
	Sigmoid
)

func (k Kind) String() string {
	switch k {
	case Sigmoid:
		return "sigmoid"
	default:
		return "linear"
	}
}

const (
	// defaultSigmoidSlope scales the dot product inside the tanh.
	defaultSigmoidSlope = 0.001
	// normEpsilon is the floor below which a vector norm is treated as
	// zero and normalization is skipped.
	normEpsilon = 1e-12
)

// Kernel is a pure similarity function of two equal-length feature
// vectors, stateless apart from its fixed hyperparameters. The exported
// fields let a trained model serialize its kernel identity.
type Kernel struct {
	// Kind selects the kernel function.
	Kind Kind
	// Slope scales the dot product inside the sigmoid tanh.
	Slope float64
	// Shift offsets the dot product inside the sigmoid tanh.
	Shift float64
}

// NewLinear returns the dot-product kernel.
func NewLinear() Kernel {
	return Kernel{Kind: Linear}
}

// NewSigmoid returns the reference sigmoid kernel (slope 0.001, shift 0).
func NewSigmoid() Kernel {
	return Kernel{Kind: Sigmoid, Slope: defaultSigmoidSlope}
}

// Compute returns the similarity of two equal-length vectors. It is
// symmetric in its arguments for both kernel kinds.
func (k Kernel) Compute(x, y []float64) float64 {
	switch k.Kind {
	case Sigmoid:
		return math.Tanh(k.Slope*normalizedDot(x, y) + k.Shift)
	default:
		return floats.Dot(x, y)
	}
}

// normalizedDot computes the dot product of the L2-normalized inputs.
// A vector with a near-zero norm is used as-is to avoid dividing by zero.
func normalizedDot(x, y []float64) float64 {
	nx := floats.Norm(x, 2)
	if nx < normEpsilon {
		nx = 1
	}
	ny := floats.Norm(y, 2)
	if ny < normEpsilon {
		ny = 1
	}
	return floats.Dot(x, y) / (nx * ny)
}
