// Package apperror holds the error taxonomy shared by the validator, the
// auth gate and the handlers.  Every client-visible failure is an *Error and
// is rendered as its JSON form by the HTTP error handler.
package apperror

import "net/http"

// Reasons.
const (
	ReasonInvalidID    = "InvalidId"
	ReasonValidation   = "ValidationError"
	ReasonConflict     = "Conflict"
	ReasonUnauthorized = "Unauthorized"
	ReasonBadRequest   = "BadRequest"
	ReasonNotFound     = "NotFound"
	ReasonInternal     = "InternalError"
)

// Error is a structured rejection.  Location names the offending request
// field when there is one.
type Error struct {
	Code     int    `json:"code"`
	Reason   string `json:"reason"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// InvalidID rejects a path id that is not a well-formed identifier.
func InvalidID() *Error {
	return &Error{Code: http.StatusBadRequest, Reason: ReasonInvalidID, Message: "The `id` is not valid", Location: "id"}
}

// Validation rejects a body field.  code is 400 for resource bodies and 422
// for user registration and profile updates.
func Validation(code int, message, location string) *Error {
	return &Error{Code: code, Reason: ReasonValidation, Message: message, Location: location}
}

// Conflict reports a uniqueness violation, e.g. "The folder name already exists".
func Conflict(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Reason: ReasonConflict, Message: message, Location: "name"}
}

func Unauthorized() *Error {
	return &Error{Code: http.StatusUnauthorized, Reason: ReasonUnauthorized, Message: "Unauthorized"}
}

func BadRequest() *Error {
	return &Error{Code: http.StatusBadRequest, Reason: ReasonBadRequest, Message: "Bad Request"}
}

func NotFound() *Error {
	return &Error{Code: http.StatusNotFound, Reason: ReasonNotFound, Message: "Not Found"}
}

// Internal hides the cause; callers log it before returning this.
func Internal() *Error {
	return &Error{Code: http.StatusInternalServerError, Reason: ReasonInternal, Message: "Internal Server Error"}
}
