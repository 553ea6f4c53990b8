package recordsets

import (
	"errors"
	"net/http"

	"github.com/crobbins327/histocartography/internal/explanations"
)

// Domain errors for record set operations.
var (
	ErrNotFound     = errors.New("record set not found")
	ErrDuplicate    = errors.New("record set already exists")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrInvalidFile  = errors.New("invalid file")
	ErrEmpty        = errors.New("record set contains no records")
)

// MapHTTPStatus maps record set domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile),
		errors.Is(err, ErrEmpty),
		errors.Is(err, explanations.ErrInvalidRecord),
		errors.Is(err, explanations.ErrUnknownVariant):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
