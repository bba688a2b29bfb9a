package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure the way the UI needs to react to it.
type Kind int

const (
	// Transient is the default: connectivity or server failure with no
	// specific status. Surfaced with a retry affordance.
	Transient Kind = iota
	// Authentication: no valid credential present. "Please log in", no retry.
	Authentication
	// Authorization: authenticated but not permitted. Surfaced verbatim.
	Authorization
	// Validation: client-detectable bad input, caught before the network
	// call wherever feasible.
	Validation
	// NotFound: entity absent server-side or in a stale local cache.
	NotFound
	// Conflict: the operation is suppressed because an earlier one on the
	// same entity is still in flight.
	Conflict
)

// Error carries the failure kind and, for errors derived from an API
// response, the HTTP status that produced it.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// FromStatus maps a non-2xx API status onto the taxonomy.
func FromStatus(status int, message string) *Error {
	kind := Transient
	switch status {
	case http.StatusUnauthorized:
		kind = Authentication
	case http.StatusForbidden:
		kind = Authorization
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = Validation
	case http.StatusNotFound:
		kind = NotFound
	case http.StatusConflict:
		kind = Conflict
	}
	return &Error{Kind: kind, Message: message, StatusCode: status}
}

// KindOf unwraps err looking for an *Error; plain errors are Transient.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Transient
}

func IsAuthentication(err error) bool { return err != nil && KindOf(err) == Authentication }
func IsAuthorization(err error) bool  { return err != nil && KindOf(err) == Authorization }
func IsValidation(err error) bool     { return err != nil && KindOf(err) == Validation }
func IsNotFound(err error) bool       { return err != nil && KindOf(err) == NotFound }
func IsConflict(err error) bool       { return err != nil && KindOf(err) == Conflict }

// ErrSuperseded marks a list response that arrived after a newer request
// was issued for the same collection. Callers drop it silently.
var ErrSuperseded = errors.New("response superseded by a newer request")
