package geocoding

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a resolver failure.
type Kind int

const (
	// KindValidation marks a request that must not be sent (blank address).
	KindValidation Kind = iota + 1
	// KindService marks a transport, status or payload failure of the backend.
	KindService
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindService:
		return "service"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is classification of *Error values.
var (
	ErrValidation = errors.New("validation error")
	ErrService    = errors.New("service error")
)

// Configuration errors raised while building a dispatcher.
var (
	ErrUnknownProvider   = errors.New("unknown geocoding provider")
	ErrMissingCredential = errors.New("missing provider credential")
	ErrNoResolvers       = errors.New("no geocoding resolvers configured")
)

// Error is a classified resolver failure. Status is the HTTP status a caller should answer with.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

// NewValidationError returns a validation failure answered with 400 Bad Request.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: message}
}

// NewServiceError returns an upstream failure answered with 502 Bad Gateway.
func NewServiceError(message string, err error) *Error {
	return &Error{Kind: KindService, Status: http.StatusBadGateway, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}

	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel matching the error kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrService:
		return e.Kind == KindService
	default:
		return false
	}
}
