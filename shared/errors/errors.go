package errors

import (
	"errors"
	"net/http"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
	Err        error // optional parent kind, e.g. ErrMissingField
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func (e *ErrorWithStatusCode) Unwrap() error {
	return e.Err
}

func New(message string, statusCode int) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: statusCode}
}

func missing(field string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: "Missing " + field, StatusCode: http.StatusBadRequest, Err: ErrMissingField}
}

var (
	ErrUnauthorized        = New("Unauthorized", http.StatusUnauthorized)
	ErrMalformedCredential = New("Malformed Authorization header", http.StatusBadRequest)
	ErrNotFound            = New("Not found", http.StatusNotFound)
	ErrAlreadyExist        = New("Already exist", http.StatusBadRequest)

	ErrMissingField    = New("Missing field", http.StatusBadRequest)
	ErrMissingName     = missing("name")
	ErrMissingType     = missing("type")
	ErrMissingData     = missing("data")
	ErrMissingEmail    = missing("email")
	ErrMissingPassword = missing("password")
	ErrInvalidType     = New("Invalid type", http.StatusBadRequest)
	ErrInvalidData     = New("Invalid data", http.StatusBadRequest)

	ErrParentNotFound     = New("Parent not found", http.StatusBadRequest)
	ErrParentNotAFolder   = New("Parent is not a folder", http.StatusBadRequest)
	ErrFolderHasNoContent = New("A folder doesn't have content", http.StatusBadRequest)

	ErrStorageWrite = New("Cannot write file", http.StatusInternalServerError)

	// never leaves the service layer, file service turns it into ErrNotFound
	ErrAccessDenied = errors.New("access denied")
	// worker only: the job can never succeed and must not be retried
	ErrJobRejected = errors.New("thumbnail job rejected")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StatusCode returns http status attached to err, 500 if there is none
func StatusCode(err error) int {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// Message returns the client facing message of err.
// Errors without status code are internal and their text is hidden.
func Message(err error) string {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error"
}
