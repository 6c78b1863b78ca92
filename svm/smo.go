package svm

import (
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// TrainConfig controls the SMO solver. Zero-valued fields fall back to the
// reference constants from DefaultTrainConfig.
type TrainConfig struct {
	// Epsilon is the minimum multiplier change counted as progress.
	Epsilon float64
	// MaxIterations caps the number of optimization rounds.
	MaxIterations int
	// MinIterations is the floor before any early-stop condition applies.
	MinIterations int
	// MaxNoChangeIterations stops training after this many consecutive
	// rounds without a multiplier update, once past MinIterations.
	MaxNoChangeIterations int
	// Timeout bounds the wall-clock training time. Training that hits the
	// timeout returns the model optimized so far.
	Timeout time.Duration
	// Rand supplies the second-choice fallback index when the error-based
	// heuristic finds no candidate. Seed it for reproducible runs; nil
	// uses an ambient time-seeded source.
	Rand *rand.Rand
}

// DefaultTrainConfig returns the reference solver constants.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Epsilon:               1e-12,
		MaxIterations:         10000,
		MinIterations:         5,
		MaxNoChangeIterations: 3,
		Timeout:               15 * time.Minute,
	}
}

// StopReason records which stopping condition ended a training run.
type StopReason int

const (
	// StopMaxIterations means the iteration cap was reached.
	StopMaxIterations StopReason = iota
	// StopTimeout means the wall-clock budget elapsed.
	StopTimeout
	// StopNoChange means the consecutive no-progress rounds hit the cap.
	StopNoChange
	// StopStableSupportVectors means the support-vector count held steady
	// across rounds with no multiplier updates.
	StopStableSupportVectors
)

func (s StopReason) String() string {
	switch s {
	case StopTimeout:
		return "timeout"
	case StopNoChange:
		return "no-change"
	case StopStableSupportVectors:
		return "support-vectors-stable"
	default:
		return "max-iterations"
	}
}

// Report summarizes a training run. Non-convergence is not an error: a
// run stopped by the iteration cap or the timeout still yields a usable
// model, and the Stop field tells the two apart.
type Report struct {
	// Iterations is the number of optimization rounds performed.
	Iterations int
	// SupportVectors is the number of examples with alpha > 0.
	SupportVectors int
	// Stop is the condition that ended training.
	Stop StopReason
	// Elapsed is the wall-clock training time.
	Elapsed time.Duration
}

// Converged reports whether training stopped by stabilizing rather than
// by hitting an iteration or time limit.
func (r Report) Converged() bool {
	return r.Stop == StopNoChange || r.Stop == StopStableSupportVectors
}

// Train optimizes the Lagrange multipliers with Platt-style simplified
// SMO and recomputes the bias from the free support vectors.
//
// Rounds alternate between examining every example and only the
// bound-free ones (0 < alpha < C). The stopping conditions are evaluated
// in a fixed order each round — timeout, no-change counter,
// support-vector-count stabilization, sweep-mode toggle — because their
// interplay decides which examples end up as support vectors.
//
// Progress is logged but never feeds back into the numeric outcome.
func (c *Classifier) Train(config TrainConfig) Report {
	config = config.withDefaults()
	rng := config.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	n := len(c.vectors)
	start := time.Now()
	gram := c.computeGramMatrix()

	logrus.WithFields(logrus.Fields{
		"examples": n,
		"kernel":   c.kernel.Kind.String(),
		"c":        c.c,
	}).Info("starting SVM training")

	reason := StopMaxIterations
	numChanged := 0
	examineAll := true
	iteration := 0
	noChangeCount := 0
	prevSVCount := 0

	for iteration < config.MaxIterations && (numChanged > 0 || examineAll || iteration < config.MinIterations) {
		if time.Since(start) > config.Timeout {
			reason = StopTimeout
			break
		}

		numChanged = 0
		if examineAll {
			for i := 0; i < n; i++ {
				numChanged += c.examineExample(i, gram, config.Epsilon, rng)
			}
		} else {
			for i := 0; i < n; i++ {
				if c.alphas[i] > 0 && c.alphas[i] < c.c {
					numChanged += c.examineExample(i, gram, config.Epsilon, rng)
				}
			}
		}
		iteration++

		svCount := c.SupportVectorCount()
		logrus.WithFields(logrus.Fields{
			"iteration":       iteration,
			"changed":         numChanged,
			"support_vectors": svCount,
			"elapsed":         time.Since(start).Round(time.Millisecond),
		}).Debug("SMO round")

		if numChanged == 0 {
			noChangeCount++
			if noChangeCount >= config.MaxNoChangeIterations && iteration >= config.MinIterations {
				reason = StopNoChange
				break
			}
		} else {
			noChangeCount = 0
		}

		if iteration >= config.MinIterations && svCount == prevSVCount && numChanged == 0 {
			reason = StopStableSupportVectors
			break
		}
		prevSVCount = svCount

		if examineAll && iteration >= config.MinIterations {
			examineAll = false
		} else if numChanged == 0 && iteration >= config.MinIterations {
			examineAll = true
		}
	}

	c.recomputeBias(gram)

	report := Report{
		Iterations:     iteration,
		SupportVectors: c.SupportVectorCount(),
		Stop:           reason,
		Elapsed:        time.Since(start),
	}
	logrus.WithFields(logrus.Fields{
		"iterations":      report.Iterations,
		"support_vectors": report.SupportVectors,
		"stop":            report.Stop.String(),
		"bias":            c.bias,
		"elapsed":         report.Elapsed.Round(time.Millisecond),
	}).Info("SVM training finished")

	return report
}

func (t TrainConfig) withDefaults() TrainConfig {
	def := DefaultTrainConfig()
	if t.Epsilon <= 0 {
		t.Epsilon = def.Epsilon
	}
	if t.MaxIterations <= 0 {
		t.MaxIterations = def.MaxIterations
	}
	if t.MinIterations <= 0 {
		t.MinIterations = def.MinIterations
	}
	if t.MaxNoChangeIterations <= 0 {
		t.MaxNoChangeIterations = def.MaxNoChangeIterations
	}
	if t.Timeout <= 0 {
		t.Timeout = def.Timeout
	}
	return t
}

// examineExample optimizes the multiplier pair anchored at i1. The second
// index is chosen to maximize |E1 - E2|; when every candidate ties, a
// pseudo-random partner keeps the solver moving.
//
// Returns 1 when the pair was updated, 0 when it was skipped.
func (c *Classifier) examineExample(i1 int, gram *mat.SymDense, epsilon float64, rng *rand.Rand) int {
	n := len(c.vectors)
	y1 := float64(c.labels[i1])
	e1 := c.errorFor(i1, gram) - y1

	i2 := -1
	maxE := 0.0
	for j := 0; j < n; j++ {
		if j == i1 {
			continue
		}
		e := c.errorFor(j, gram) - float64(c.labels[j])
		if absE := math.Abs(e1 - e); absE > maxE {
			maxE = absE
			i2 = j
		}
	}
	if i2 == -1 {
		i2 = i1
		for i2 == i1 {
			i2 = rng.Intn(n)
		}
	}

	y2 := float64(c.labels[i2])
	alpha1 := c.alphas[i1]
	alpha2 := c.alphas[i2]
	e2 := c.errorFor(i2, gram) - y2

	// Box constraints on the second multiplier.
	var low, high float64
	if c.labels[i1] != c.labels[i2] {
		low = math.Max(0, alpha2-alpha1)
		high = math.Min(c.c, c.c+alpha2-alpha1)
	} else {
		low = math.Max(0, alpha1+alpha2-c.c)
		high = math.Min(c.c, alpha1+alpha2)
	}
	if low >= high {
		return 0
	}

	k11 := gram.At(i1, i1)
	k22 := gram.At(i2, i2)
	k12 := gram.At(i1, i2)
	// Non-negative curvature is not a descent direction for this
	// simplified solver.
	eta := 2*k12 - k11 - k22
	if eta >= 0 {
		return 0
	}

	a2 := alpha2 - y2*(e1-e2)/eta
	a2 = math.Max(low, math.Min(high, a2))
	if math.Abs(a2-alpha2) < epsilon {
		return 0
	}

	// Update the first multiplier to preserve the equality constraint and
	// average the two candidate bias terms.
	a1 := alpha1 + y1*y2*(alpha2-a2)
	b1 := c.bias - e1 - y1*(a1-alpha1)*k11 - y2*(a2-alpha2)*k12
	b2 := c.bias - e2 - y1*(a1-alpha1)*k12 - y2*(a2-alpha2)*k22
	c.bias = (b1 + b2) / 2

	c.alphas[i1] = a1
	c.alphas[i2] = a2

	return 1
}

// errorFor computes the current prediction for training example i against
// the precomputed Gram matrix.
func (c *Classifier) errorFor(i int, gram *mat.SymDense) float64 {
	sum := c.bias
	for j, alpha := range c.alphas {
		if alpha > 0 {
			sum += alpha * float64(c.labels[j]) * gram.At(i, j)
		}
	}
	return sum
}

// computeGramMatrix fills the full N x N kernel matrix once up front.
// Entries are independent, so rows are fanned out over a bounded worker
// pool; the result is identical to the sequential fill.
func (c *Classifier) computeGramMatrix() *mat.SymDense {
	n := len(c.vectors)
	gram := mat.NewSymDense(n, nil)

	rows := make(chan int, n)
	for i := 0; i < n; i++ {
		rows <- i
	}
	close(rows)

	var wg sync.WaitGroup
	for w := 0; w < min(runtime.NumCPU(), n); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rows {
				for j := i; j < n; j++ {
					gram.SetSym(i, j, c.kernel.Compute(c.vectors[i], c.vectors[j]))
				}
			}
		}()
	}
	wg.Wait()

	return gram
}

// recomputeBias averages label(i) minus the kernel expansion over the
// free support vectors (0 < alpha < C). With no free support vectors the
// bias defaults to 0.
func (c *Classifier) recomputeBias(gram *mat.SymDense) {
	n := len(c.vectors)
	var sum float64
	count := 0
	for i := 0; i < n; i++ {
		if c.alphas[i] > 0 && c.alphas[i] < c.c {
			var expansion float64
			for j := 0; j < n; j++ {
				expansion += c.alphas[j] * float64(c.labels[j]) * gram.At(i, j)
			}
			sum += float64(c.labels[i]) - expansion
			count++
		}
	}
	if count > 0 {
		c.bias = sum / float64(count)
	} else {
		c.bias = 0
	}
}
