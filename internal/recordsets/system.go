package recordsets

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/crobbins327/histocartography/pkg/pagination"
)

// System defines the public contract for record set domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[RecordSet], error)

	Find(ctx context.Context, id uuid.UUID) (*RecordSet, error)
	Create(ctx context.Context, cmd CreateCommand) (*RecordSet, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Open returns the record set and a stream of its stored JSON records.
	// The caller must close the stream.
	Open(ctx context.Context, id uuid.UUID) (*RecordSet, io.ReadCloser, error)
}
