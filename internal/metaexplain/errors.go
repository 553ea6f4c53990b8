package metaexplain

import (
	"errors"

	"github.com/crobbins327/histocartography/internal/explanations"
)

var (
	ErrNotImplemented = errors.New("not implemented by the base meta-explanation")
	ErrNoExplanations = errors.New("no explanation records")
	ErrMissingKey     = errors.New("missing key")
	ErrShapeMismatch  = errors.New("tensor shape mismatch")
	ErrUnserializable = errors.New("metric result is not serializable")
	ErrUnknownVariant = explanations.ErrUnknownVariant
)
