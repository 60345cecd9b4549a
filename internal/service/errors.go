package service

import (
	"errors"
	"net/http"
)

// Messages returned to callers. Causes of failures stay in the server log.
const (
	MsgMissingFields = "Missing fields"
	MsgDatabase      = "Database error"
	MsgDatabaseFetch = "Database fetch error"
	MsgUpload        = "Image upload failed"
)

// ErrNotFound is returned when a referenced item does not exist.
var ErrNotFound = errors.New("item not found")

// ValidationError reports incomplete or invalid client data.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// PersistenceError reports a failed store read or write. Message is safe to
// show to callers; Err is not.
type PersistenceError struct {
	Message string
	Err     error
}

func (e *PersistenceError) Error() string { return e.Message + ": " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }

// UploadError reports that the media host did not store a photo.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return "uploading image: " + e.Err.Error() }

func (e *UploadError) Unwrap() error { return e.Err }

// StatusCode maps an error from this package to an HTTP status.
func StatusCode(err error) int {
	var verr *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that may be shown to the caller.
func PublicMessage(err error) string {
	var (
		verr *ValidationError
		perr *PersistenceError
		uerr *UploadError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, ErrNotFound):
		return "Item not found"
	case errors.As(err, &perr):
		return perr.Message
	case errors.As(err, &uerr):
		return MsgUpload
	default:
		return "Internal server error"
	}
}
