package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies a failure. The response formatter maps each kind to an HTTP status.
type ErrorKind string

// Error kinds understood by the response formatter.
const (
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindValidation   ErrorKind = "VALIDATION"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindRateLimited  ErrorKind = "RATE_LIMITED"
	KindInternal     ErrorKind = "INTERNAL"
)

// DomainError is a classified failure raised by the gates and the product operations.
type DomainError struct {
	Kind    ErrorKind
	Message string
	// Errors lists individual field problems for validation failures.
	Errors []string

	// origin records the call stack at construction time.
	origin error
}

func (e *DomainError) Error() string {
	return e.Message
}

// Stack returns the message followed by the stack captured when the error was created.
func (e *DomainError) Stack() string {
	if e.origin == nil {
		return e.Message
	}
	return fmt.Sprintf("%+v", e.origin)
}

// NewDomainError creates a new domain error of the given kind.
func NewDomainError(kind ErrorKind, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Message: message,
		origin:  errors.New(message),
	}
}

// NewNotFoundError reports a product id that does not exist.
func NewNotFoundError(id string) *DomainError {
	return NewDomainError(KindNotFound, fmt.Sprintf("Product with ID %s not found", id))
}

// NewValidationError reports one or more invalid inputs.
func NewValidationError(message string, problems ...string) *DomainError {
	e := NewDomainError(KindValidation, message)
	if len(problems) > 0 {
		e.Errors = problems
	}
	return e
}

// NewUnauthorizedError reports a request rejected by the authentication gate.
func NewUnauthorizedError(message string) *DomainError {
	return NewDomainError(KindUnauthorized, message)
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Standard error messages
const (
	MsgSearchQueryRequired = `Search query parameter "q" is required`
	MsgInvalidRequestBody  = "Invalid request body"
	MsgTooManyRequests     = "Too many requests"
	MsgInternalError       = "Internal Server Error"
)
