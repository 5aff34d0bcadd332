package gradle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/snapsam/gradle/module"
)

// Sentinel errors for common resolution failures. Typed errors below wrap
// these, so callers can match with errors.Is without losing detail.
var (
	// ErrMetadataNotFound indicates no metadata exists at the expected
	// locations and no artifact-only fallback applied.
	ErrMetadataNotFound = errors.New("metadata not found")

	// ErrStrictVersionConflict indicates two strict constraints disagree.
	ErrStrictVersionConflict = errors.New("strict version conflict")

	// ErrResolutionFailed indicates no version satisfies the accumulated
	// constraints for a module.
	ErrResolutionFailed = errors.New("resolution failed")

	// ErrNoMatchingVariant indicates a module declares variants but none
	// matches the requested usage.
	ErrNoMatchingVariant = errors.New("no matching variant")
)

// MetadataNotFoundError reports a module whose metadata could not be
// located in any configured repository.
type MetadataNotFoundError struct {
	// Coordinate is the module version that was looked up.
	Coordinate module.Coordinate

	// Repositories lists the repositories that were consulted.
	Repositories []string
}

func (e *MetadataNotFoundError) Error() string {
	if len(e.Repositories) == 0 {
		return fmt.Sprintf("no metadata found for %s", e.Coordinate)
	}
	return fmt.Sprintf("no metadata found for %s in repositories [%s]",
		e.Coordinate, strings.Join(e.Repositories, ", "))
}

func (e *MetadataNotFoundError) Unwrap() error { return ErrMetadataNotFound }

// StrictVersionConflictError reports two or more strict constraints that
// disagree about a module's version.
type StrictVersionConflictError struct {
	// ID is the module the constraints disagree about.
	ID module.ID

	// Constraints are the disagreeing strict constraints, in discovery order.
	Constraints []module.Constraint
}

func (e *StrictVersionConflictError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "conflicting strict versions for %s:", e.ID)
	for _, c := range e.Constraints {
		sb.WriteString("\n  - ")
		sb.WriteString(c.String())
	}
	return sb.String()
}

func (e *StrictVersionConflictError) Unwrap() error { return ErrStrictVersionConflict }

// ResolutionFailedError reports a module for which no version satisfies all
// accumulated requirements.
type ResolutionFailedError struct {
	// ID is the module that could not be resolved.
	ID module.ID

	// Requirements describe the competing requirements, in discovery
	// order, as "version (from source)" strings.
	Requirements []string
}

func (e *ResolutionFailedError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "no version of %s satisfies all requirements:", e.ID)
	for _, r := range e.Requirements {
		sb.WriteString("\n  - ")
		sb.WriteString(r)
	}
	return sb.String()
}

func (e *ResolutionFailedError) Unwrap() error { return ErrResolutionFailed }

// NoMatchingVariantError reports a requested usage no declared variant
// can satisfy.
type NoMatchingVariantError struct {
	// Coordinate is the module whose variants were inspected.
	Coordinate module.Coordinate

	// Usage is the requested usage.
	Usage string

	// Declared lists the module's declared variant usages.
	Declared []string
}

func (e *NoMatchingVariantError) Error() string {
	return fmt.Sprintf("module %s declares no variant matching usage %q (declared: %s)",
		e.Coordinate, e.Usage, strings.Join(e.Declared, ", "))
}

func (e *NoMatchingVariantError) Unwrap() error { return ErrNoMatchingVariant }
