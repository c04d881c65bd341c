package tumbler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorClass represents the classification of a generation error.
// All classes are fatal: generation is a one-shot step and any failure
// indicates a fixable configuration problem rather than a transient
// condition, so nothing is retried.
type ErrorClass string

const (
	// ErrorClassConfiguration indicates a missing or invalid configuration
	// value, detected before any generation work begins.
	ErrorClassConfiguration ErrorClass = "configuration"

	// ErrorClassOutputConflict indicates that a target directory or file
	// already exists and overwriting was not permitted.
	ErrorClassOutputConflict ErrorClass = "output_conflict"

	// ErrorClassProvider indicates that a variant provider failed while
	// producing variants for a dimension.
	ErrorClassProvider ErrorClass = "provider"

	// ErrorClassDuplicateTest indicates that two test entries were
	// registered under the same name.
	ErrorClassDuplicateTest ErrorClass = "duplicate_test"
)

// GenError represents a classified generation error with context.
type GenError struct {
	// Class is the error classification.
	Class ErrorClass `json:"class"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Path is the variant path at which the error occurred, if applicable.
	Path []string `json:"path,omitempty"`

	// Name is the offending test entry, provider, or file name, if applicable.
	Name string `json:"name,omitempty"`

	// Err is the underlying error that caused this error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *GenError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Class, e.Message)
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, " (path=%s)", strings.Join(e.Path, "/"))
	}
	if e.Name != "" {
		fmt.Fprintf(&b, " (name=%s)", e.Name)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %s", e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain inspection.
func (e *GenError) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *GenError) Is(target error) bool {
	t, ok := target.(*GenError)
	if !ok {
		return false
	}
	return e.Class == t.Class
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(message string, err error) *GenError {
	return &GenError{
		Class:   ErrorClassConfiguration,
		Message: message,
		Err:     err,
	}
}

// NewOutputConflictError creates a new output conflict error for the given
// filesystem path.
func NewOutputConflictError(message, conflictPath string) *GenError {
	return &GenError{
		Class:   ErrorClassOutputConflict,
		Message: message,
		Name:    conflictPath,
	}
}

// NewProviderError creates a new provider error.
func NewProviderError(message string, err error) *GenError {
	return &GenError{
		Class:   ErrorClassProvider,
		Message: message,
		Err:     err,
	}
}

// NewDuplicateTestError creates a new duplicate test-name error.
func NewDuplicateTestError(name string) *GenError {
	return &GenError{
		Class:   ErrorClassDuplicateTest,
		Message: "test entry already registered",
		Name:    name,
	}
}

// WithPath adds the variant path at which the error occurred.
func (e *GenError) WithPath(path []string) *GenError {
	e.Path = append([]string(nil), path...)
	return e
}

// WithName adds the offending name to the error context.
func (e *GenError) WithName(name string) *GenError {
	e.Name = name
	return e
}

// IsConfiguration returns true if the error is a configuration error.
func IsConfiguration(err error) bool {
	return hasClass(err, ErrorClassConfiguration)
}

// IsOutputConflict returns true if the error is an output conflict.
func IsOutputConflict(err error) bool {
	return hasClass(err, ErrorClassOutputConflict)
}

// IsProvider returns true if the error is a provider failure.
func IsProvider(err error) bool {
	return hasClass(err, ErrorClassProvider)
}

// IsDuplicateTest returns true if the error is a duplicate test name.
func IsDuplicateTest(err error) bool {
	return hasClass(err, ErrorClassDuplicateTest)
}

func hasClass(err error, class ErrorClass) bool {
	var e *GenError
	if errors.As(err, &e) {
		return e.Class == class
	}
	return false
}
