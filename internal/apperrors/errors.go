// Package apperrors defines the typed errors surfaced by the embedding
// pipeline and the recommendation query.
package apperrors

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeInvalidRequest    ErrorType = "INVALID_REQUEST"
	ErrTypeNotFound          ErrorType = "NOT_FOUND"
	ErrTypeProvider          ErrorType = "PROVIDER"
	ErrTypeInvalidEmbedding  ErrorType = "INVALID_EMBEDDING"
	ErrTypeSourceNotEmbedded ErrorType = "SOURCE_NOT_EMBEDDED"
	ErrTypeEmptyInput        ErrorType = "EMPTY_INPUT"
	ErrTypeConflict          ErrorType = "CONFLICT"
	ErrTypeInternal          ErrorType = "INTERNAL"
)

type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte

	// Retryable is only meaningful for provider errors: rate limits, server
	// errors and transport failures are worth another attempt.
	Retryable bool
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func InvalidRequest(message string, err error) *DomainError {
	return New(ErrTypeInvalidRequest, message, err)
}

func NotFound(message string, err error) *DomainError {
	return New(ErrTypeNotFound, message, err)
}

func Provider(message string, err error, retryable bool) *DomainError {
	e := New(ErrTypeProvider, message, err)
	e.Retryable = retryable
	return e
}

func InvalidEmbedding(message string, err error) *DomainError {
	return New(ErrTypeInvalidEmbedding, message, err)
}

func SourceNotEmbedded(message string, err error) *DomainError {
	return New(ErrTypeSourceNotEmbedded, message, err)
}

func EmptyInput(message string, err error) *DomainError {
	return New(ErrTypeEmptyInput, message, err)
}

func Conflict(message string, err error) *DomainError {
	return New(ErrTypeConflict, message, err)
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}

// TypeOf returns the type of the outermost DomainError in err's chain, or
// ErrTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ErrTypeInternal
}

func IsType(err error, errType ErrorType) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Type == errType
}

func IsRetryable(err error) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Type == ErrTypeProvider && de.Retryable
}

// MessageOf returns the client-facing message of the outermost DomainError,
// falling back to err.Error().
func MessageOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
