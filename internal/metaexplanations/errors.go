package metaexplanations

import (
	"errors"
	"net/http"

	"github.com/crobbins327/histocartography/internal/classes"
	"github.com/crobbins327/histocartography/internal/evaluation"
	"github.com/crobbins327/histocartography/internal/explanations"
	"github.com/crobbins327/histocartography/internal/metaexplain"
	"github.com/crobbins327/histocartography/internal/projection"
	"github.com/crobbins327/histocartography/internal/recordsets"
)

// Domain errors for meta-explanation operations.
var (
	ErrNotFound       = errors.New("meta-explanation not found")
	ErrDuplicate      = errors.New("meta-explanation already exists")
	ErrInvalidRequest = errors.New("invalid meta-explanation request")
	ErrRunInProgress  = errors.New("a run is already in progress for this record set")
)

// MapHTTPStatus maps meta-explanation domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, recordsets.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, metaexplain.ErrMissingKey),
		errors.Is(err, metaexplain.ErrNoExplanations),
		errors.Is(err, metaexplain.ErrShapeMismatch),
		errors.Is(err, explanations.ErrInvalidRecord),
		errors.Is(err, explanations.ErrUnknownVariant),
		errors.Is(err, classes.ErrEmptySplit),
		errors.Is(err, classes.ErrUnknownTumorType),
		errors.Is(err, classes.ErrDuplicateTumorType):
		return http.StatusBadRequest
	case errors.Is(err, metaexplain.ErrUnserializable),
		errors.Is(err, evaluation.ErrEmptyInput),
		errors.Is(err, evaluation.ErrLengthMismatch),
		errors.Is(err, evaluation.ErrLabelOutOfRange),
		errors.Is(err, projection.ErrProjection):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
