package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Retrieval errors
	ErrDiscovery    = errors.New("subject discovery failed")
	ErrSubjectFetch = errors.New("subject fetch failed")

	// Artifact errors
	ErrLockedArtifact = errors.New("artifact is locked by another process")
	ErrBuild          = errors.New("report build failed")

	// Data errors
	ErrMissingRoster = errors.New("grade has no subjects to take a roster from")
	ErrInvalidInput  = errors.New("invalid input")
)

// Error constructors with context
func NewDiscoveryError(classLabel string, quarter int, err error) error {
	return fmt.Errorf("%w for class %s quarter %d: %w", ErrDiscovery, classLabel, quarter, err)
}

func NewSubjectFetchError(subject string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSubjectFetch, subject, err)
}

func NewLockedArtifactError(path string) error {
	return fmt.Errorf("%w: %s", ErrLockedArtifact, path)
}

func NewBuildError(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrBuild, step, err)
}

func NewInvalidInputError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, reason)
}

// Error checking helpers
func IsDiscoveryError(err error) bool {
	return errors.Is(err, ErrDiscovery)
}

func IsSubjectFetchError(err error) bool {
	return errors.Is(err, ErrSubjectFetch)
}

func IsLockedArtifactError(err error) bool {
	return errors.Is(err, ErrLockedArtifact)
}

func IsBuildError(err error) bool {
	return errors.Is(err, ErrBuild)
}

func IsInvalidInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
