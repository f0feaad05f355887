package core

import (
	"errors"
	"fmt"
)

// ValidationError represents an error found while validating configuration or input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// MissingArtifactError reports an upstream file (index, split table) that is
// absent when a stage starts.
type MissingArtifactError struct {
	Artifact string
	Path     string
	Hint     string
}

func (e *MissingArtifactError) Error() string {
	msg := fmt.Sprintf("missing %s at %s", e.Artifact, e.Path)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// MalformedRowError reports a field that cannot be parsed into its expected shape.
type MalformedRowError struct {
	Field  string
	Value  string
	Reason string
	Line   int // 0 when unknown
}

func (e *MalformedRowError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: malformed %s %q: %s", e.Line, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("malformed %s %q: %s", e.Field, e.Value, e.Reason)
}

// ErrEmptyInput is matched by every EmptyInputError.
var ErrEmptyInput = errors.New("empty input")

// EmptyInputError reports a stage input with nothing to process. Callers treat
// it as a warning unless they need a non-empty denominator.
type EmptyInputError struct {
	What string
	Path string
}

func (e *EmptyInputError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("no %s found in %s", e.What, e.Path)
	}
	return fmt.Sprintf("no %s found", e.What)
}

func (e *EmptyInputError) Is(target error) bool { return target == ErrEmptyInput }

// DivisionUndefinedError reports a statistic whose denominator is zero.
type DivisionUndefinedError struct {
	Statistic string
}

func (e *DivisionUndefinedError) Error() string {
	return fmt.Sprintf("%s is undefined: zero denominator", e.Statistic)
}

// WorkerFailure wraps the error of one sample's QC job.
type WorkerFailure struct {
	Sample string
	Path   string
	Err    error
}

func (e *WorkerFailure) Error() string {
	return fmt.Sprintf("sample %s (%s): %v", e.Sample, e.Path, e.Err)
}

func (e *WorkerFailure) Unwrap() error { return e.Err }
