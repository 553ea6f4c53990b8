package metaexplanations

import (
	"context"

	"github.com/google/uuid"

	"github.com/crobbins327/histocartography/pkg/pagination"
)

// System defines the public contract for meta-explanation domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[MetaExplanation], error)

	Find(ctx context.Context, id uuid.UUID) (*MetaExplanation, error)
	Create(ctx context.Context, cmd CreateCommand) (*MetaExplanation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
