package errors

import (
	"math"
	"strconv"
	"strings"
)

// maxBlockHeight bounds accepted heights well above the current chain tip
// while rejecting values that are obviously not block heights.
const maxBlockHeight = 100_000_000

// ValidateHeight parses and validates a block height given as text.
//
// The height must be a base-10 non-negative integer. Leading and trailing
// whitespace is ignored; signs, decimals and exponents are rejected.
func ValidateHeight(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, New(ErrCodeInvalidHeight, "block height cannot be empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, New(ErrCodeInvalidHeight, "invalid block height: %q", s)
		}
	}
	h, err := strconv.ParseInt(s, 10, 64)
	if err != nil || h > maxBlockHeight {
		return 0, New(ErrCodeInvalidHeight, "block height out of range: %q", s)
	}
	return h, nil
}

// ValidateDimensions checks that a drawable area is positive and finite.
func ValidateDimensions(width, height float64) error {
	if !positiveFinite(width) || !positiveFinite(height) {
		return New(ErrCodeInvalidDimensions, "dimensions must be positive, got %gx%g", width, height)
	}
	return nil
}

// ValidateDimensionLimit checks that neither side exceeds limit. A limit of
// zero or less disables the check.
func ValidateDimensionLimit(width, height, limit float64) error {
	if limit <= 0 {
		return nil
	}
	if width > limit || height > limit {
		return New(ErrCodeInvalidDimensions, "dimensions %gx%g exceed the limit of %g", width, height, limit)
	}
	return nil
}

// ValidatePadding checks that a padding is a finite value in [0, 1).
func ValidatePadding(padding float64) error {
	if math.IsNaN(padding) || padding < 0 || padding >= 1 {
		return New(ErrCodeInvalidDimensions, "padding must be in [0, 1), got %g", padding)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
