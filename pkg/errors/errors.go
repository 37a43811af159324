package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType classifies a failure so handlers can decide whether a hook fails
type ErrorType string

const (
	// Relation data and option problems
	ErrorTypeValidation       ErrorType = "validation"
	ErrorTypeMissingField     ErrorType = "missing_field"
	ErrorTypeMalformedPayload ErrorType = "malformed_payload"

	// Workload problems
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeSupervision ErrorType = "supervision"

	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypePermission ErrorType = "permission"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeCancelled  ErrorType = "cancelled"
)

// DomainError carries a type, a message and key/value context. Context is
// rendered sorted by key so hook failures read the same on every run.
type DomainError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Type))
	b.WriteString(": ")
	b.WriteString(e.Message)

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches another DomainError of the same type, so errors.Is finds a
// type anywhere in a chain.
func (e *DomainError) Is(target error) bool {
	other, ok := target.(*DomainError)
	return ok && e.Type == other.Type
}

// WithContext adds context information to the error
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func NewDomainError(errorType ErrorType, message string, cause error) *DomainError {
	return &DomainError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

func NewValidationError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeValidation, message, cause)
}

// NewMissingFieldError reports relation data that is not fully populated yet
func NewMissingFieldError(field string) *DomainError {
	return NewDomainError(ErrorTypeMissingField, "required field is not set", nil).WithContext("field", field)
}

func NewMalformedPayloadError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeMalformedPayload, message, cause)
}

func NewNotFoundError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeNotFound, message, cause)
}

func NewSupervisionError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeSupervision, message, cause)
}

func NewTimeoutError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeTimeout, message, cause)
}

func NewPermissionError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypePermission, message, cause)
}

func NewIOError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeIO, message, cause)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeInternal, message, cause)
}

func NewCancelledError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeCancelled, message, cause)
}

// HasType reports whether a DomainError of errorType is anywhere in err's chain
func HasType(err error, errorType ErrorType) bool {
	return errors.Is(err, &DomainError{Type: errorType})
}

func IsValidationError(err error) bool       { return HasType(err, ErrorTypeValidation) }
func IsMissingFieldError(err error) bool     { return HasType(err, ErrorTypeMissingField) }
func IsMalformedPayloadError(err error) bool { return HasType(err, ErrorTypeMalformedPayload) }
func IsNotFoundError(err error) bool         { return HasType(err, ErrorTypeNotFound) }
func IsSupervisionError(err error) bool      { return HasType(err, ErrorTypeSupervision) }
func IsTimeoutError(err error) bool          { return HasType(err, ErrorTypeTimeout) }
func IsPermissionError(err error) bool       { return HasType(err, ErrorTypePermission) }
func IsIOError(err error) bool               { return HasType(err, ErrorTypeIO) }
func IsInternalError(err error) bool         { return HasType(err, ErrorTypeInternal) }
func IsCancelledError(err error) bool        { return HasType(err, ErrorTypeCancelled) }

// IsInputError reports whether err was caused by relation data that can be
// skipped without failing the hook.
func IsInputError(err error) bool {
	return IsMalformedPayloadError(err) || IsValidationError(err)
}

// ErrorCollection gathers independent failures, e.g. one per settings section
type ErrorCollection struct {
	Errors []error
}

func NewErrorCollection() *ErrorCollection {
	return &ErrorCollection{Errors: make([]error, 0)}
}

func (e *ErrorCollection) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	messages := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		messages[i] = err.Error()
	}
	return strings.Join(messages, "; ")
}

// Unwrap exposes every collected error to errors.Is and errors.As
func (e *ErrorCollection) Unwrap() []error {
	return e.Errors
}

func (e *ErrorCollection) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

func (e *ErrorCollection) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil for an empty collection
func (e *ErrorCollection) ToError() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}
