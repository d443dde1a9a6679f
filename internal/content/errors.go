package content

import (
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrMissingArtifact is returned when a serialized collection has not been built yet.
var ErrMissingArtifact = errors.New("content: collection artifact not found")

// Issue is a single failed field check.
type Issue struct {
	Field  string
	Reason string
}

// ValidationError reports a source file that failed its collection schema.
// Field and Reason describe the first issue in field order.
type ValidationError struct {
	File   string
	Field  string
	Reason string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) > 1 {
		return fmt.Sprintf("content: %s: %s: %s (and %d more)", e.File, e.Field, e.Reason, len(e.Issues)-1)
	}
	return fmt.Sprintf("content: %s: %s: %s", e.File, e.Field, e.Reason)
}

func newValidationError(file, field, reason string) *ValidationError {
	return &ValidationError{
		File:   file,
		Field:  field,
		Reason: reason,
		Issues: []Issue{{Field: field, Reason: reason}},
	}
}

// fromOzzo converts ozzo-validation field errors into a ValidationError.
func fromOzzo(file string, err error) error {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return newValidationError(file, "", err.Error())
	}

	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	ve := &ValidationError{File: file}
	for _, field := range fields {
		ve.Issues = append(ve.Issues, Issue{Field: field, Reason: errs[field].Error()})
	}
	ve.Field = ve.Issues[0].Field
	ve.Reason = ve.Issues[0].Reason
	return ve
}
