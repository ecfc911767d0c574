package errorwrapper

import (
	"errors"
	"fmt"
	"time"
)

// Pipeline error taxonomy
var (
	// ErrInput indicates the target descriptor could not be read
	ErrInput = errors.New("input error")
	// ErrProbeNotFound indicates the external probe binary is missing
	ErrProbeNotFound = errors.New("probe not found")
	// ErrProbeTimeout indicates the probe was killed after its deadline
	ErrProbeTimeout = errors.New("probe timed out")
	// ErrProbeNonZeroExit indicates the probe exited with a failure status
	ErrProbeNonZeroExit = errors.New("probe exited with non-zero status")
	// ErrParse indicates a single output record could not be decoded
	ErrParse = errors.New("parse error")
	// ErrFetch indicates a target's content could not be retrieved
	ErrFetch = errors.New("fetch error")
	// ErrInvalidConfiguration indicates configuration issues
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return fmt.Errorf("%s: <nil>", message)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// InputError is returned by the target loader when a descriptor names a file
// that cannot be opened or read.
type InputError struct {
	Path    string
	Wrapped error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("cannot read input '%s': %v", e.Path, e.Wrapped)
}

func (e *InputError) Unwrap() []error {
	return []error{ErrInput, e.Wrapped}
}

// NewInputError creates a new input error
func NewInputError(path string, wrapped error) *InputError {
	return &InputError{Path: path, Wrapped: wrapped}
}

// ProbeError describes a failed probe invocation. Kind is one of
// ErrProbeNotFound, ErrProbeTimeout or ErrProbeNonZeroExit.
type ProbeError struct {
	Tool     string
	Kind     error
	ExitCode int
	Timeout  time.Duration
	Wrapped  error
}

func (e *ProbeError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrProbeNotFound):
		return fmt.Sprintf("probe '%s' not found in PATH", e.Tool)
	case errors.Is(e.Kind, ErrProbeTimeout):
		return fmt.Sprintf("probe '%s' killed after %s", e.Tool, e.Timeout)
	case errors.Is(e.Kind, ErrProbeNonZeroExit):
		return fmt.Sprintf("probe '%s' exited with status %d", e.Tool, e.ExitCode)
	}
	return fmt.Sprintf("probe '%s' failed: %v", e.Tool, e.Wrapped)
}

func (e *ProbeError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Wrapped != nil {
		errs = append(errs, e.Wrapped)
	}
	return errs
}

// ParseError records a single raw line that no decoder in the chain accepted.
type ParseError struct {
	Line   int
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NetworkError represents network-related errors
type NetworkError struct {
	URL     string
	Reason  string
	Wrapped error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error for URL '%s': %s", e.URL, e.Reason)
}

func (e *NetworkError) Unwrap() []error {
	if e.Wrapped == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Wrapped}
}

// NewNetworkError creates a new network error
func NewNetworkError(url, reason string, wrapped error) *NetworkError {
	return &NetworkError{
		URL:     url,
		Reason:  reason,
		Wrapped: wrapped,
	}
}

// HTTPError represents HTTP-related errors
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *HTTPError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("HTTP %d error for URL '%s': %s", e.StatusCode, e.URL, e.Message)
	}
	return fmt.Sprintf("HTTP %d error: %s", e.StatusCode, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return ErrFetch
}

// NewHTTPErrorWithURL creates a new HTTP error with URL context
func NewHTTPErrorWithURL(statusCode int, message, url string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		URL:        url,
	}
}
