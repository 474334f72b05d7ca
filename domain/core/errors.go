package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors abort an evaluation before any trait runs.
	ErrInvalidThreshold = errors.New("threshold must be a positive integer")

	// Input errors
	ErrNoCommonSamples = errors.New("no sample IDs shared between phenotype table and cluster assignment")
	ErrEmptyPhenotypes = errors.New("phenotype table has no trait columns")

	// Not found errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)
)

// NewThresholdError reports the rejected threshold value.
func NewThresholdError(threshold int) error {
	return fmt.Errorf("%w: got %d", ErrInvalidThreshold, threshold)
}

// IsConfigurationError reports whether err should abort the whole evaluation
// rather than degrade a single trait.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidThreshold)
}

// IsNotFoundError checks if an error is a not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
