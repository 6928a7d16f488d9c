// Package apperr defines the error taxonomy every handler speaks: a small
// set of HTTP-mapped kinds plus optional per-field detail maps for
// validation failures. Anything that is not an *apperr.Error surfaces as a
// generic 500 at the boundary.
package apperr

import "net/http"

type Error struct {
	Status  int                 `json:"-"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// WithDetails attaches a per-field detail map, typically built from
// validator errors.
func (e *Error) WithDetails(details map[string][]string) *Error {
	e.Details = details
	return e
}
