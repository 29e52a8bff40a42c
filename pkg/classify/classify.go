// Package classify maps transaction amounts to size buckets.
//
// A [Thresholds] table splits the amount axis into len(t)+1 buckets. An
// amount lands in bucket 1 + i for the first threshold t[i] that is greater
// than or equal to it, and in the top bucket when it exceeds every threshold.
// With [DefaultThresholds] the buckets run from 1 to 10:
//
//	classify.DefaultThresholds.Bucket(0.005) // 1
//	classify.DefaultThresholds.Bucket(0.011) // 2
//	classify.DefaultThresholds.Bucket(5e6)   // 10
//
// NaN compares false against every threshold and therefore falls into the
// top bucket. Callers that need to reject malformed amounts must do so
// before classifying.
package classify

import (
	"math"

	"github.com/matzehuels/blockmondrian/pkg/errors"
)

// Thresholds is an ascending table of bucket upper bounds.
type Thresholds []float64

// DefaultThresholds are the BTC amount bounds used by the mosaic: one bucket
// per power of ten from 0.01 to 1,000,000.
var DefaultThresholds = Thresholds{0.01, 0.1, 1, 10, 100, 1000, 10000, 100000, 1000000}

// Buckets returns the number of buckets the table produces.
func (t Thresholds) Buckets() int {
	return len(t) + 1
}

// Bucket returns the 1-based bucket for amount.
func (t Thresholds) Bucket(amount float64) int {
	for i, th := range t {
		if amount <= th {
			return i + 1
		}
	}
	return len(t) + 1
}

// BucketAll classifies every value in order.
func (t Thresholds) BucketAll(values []float64) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = t.Bucket(v)
	}
	return out
}

// Validate checks that the table is non-empty, finite and strictly ascending.
func (t Thresholds) Validate() error {
	if len(t) == 0 {
		return errors.New(errors.ErrCodeInvalidThresholds, "thresholds cannot be empty")
	}
	for i, th := range t {
		if math.IsNaN(th) || math.IsInf(th, 0) {
			return errors.New(errors.ErrCodeInvalidThresholds, "threshold %d is not finite", i)
		}
		if i > 0 && th <= t[i-1] {
			return errors.New(errors.ErrCodeInvalidThresholds, "thresholds must be strictly ascending at index %d", i)
		}
	}
	return nil
}

// Sizes converts buckets to square sides for packing.
func Sizes(buckets []int) []float64 {
	out := make([]float64, len(buckets))
	for i, b := range buckets {
		out[i] = float64(b)
	}
	return out
}

// Histogram counts buckets 1..n. Index 0 of the result holds bucket 1.
// Buckets outside 1..n are ignored.
func Histogram(buckets []int, n int) []int {
	out := make([]int, n)
	for _, b := range buckets {
		if b >= 1 && b <= n {
			out[b-1]++
		}
	}
	return out
}
