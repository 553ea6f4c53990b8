package recordsets

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/crobbins327/histocartography/internal/explanations"
	"github.com/crobbins327/histocartography/pkg/pagination"
	"github.com/crobbins327/histocartography/pkg/query"
	"github.com/crobbins327/histocartography/pkg/repository"
	"github.com/crobbins327/histocartography/pkg/storage"
)

const contentType = "application/json"

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a record set repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "recordsets"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[RecordSet], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Filename")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	result, err := repository.Page(ctx, r.db, qb, page, scanRecordSet)
	if err != nil {
		return nil, fmt.Errorf("list record sets: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*RecordSet, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rs, err := repository.QueryOne(ctx, r.db, q, args, scanRecordSet)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rs, nil
}

func (r *repo) Open(ctx context.Context, id uuid.UUID) (*RecordSet, io.ReadCloser, error) {
	rs, err := r.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	blob, err := r.storage.Download(ctx, rs.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("download record set %s: %w", id, err)
	}
	return rs, blob.Body, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*RecordSet, error) {
	count, err := validate(cmd)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	filename := sanitizeFilename(cmd.Filename)
	key := buildStorageKey(id, filename)

	name := cmd.Name
	if name == "" {
		name = cmd.Filename
	}

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), contentType); err != nil {
		return nil, fmt.Errorf("upload record set blob: %w", err)
	}

	q := `
		INSERT INTO record_sets(id, name, variant, filename, record_count, size_bytes, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, name, variant, filename, record_count, size_bytes, storage_key, created_at, updated_at`

	insertArgs := []any{
		id,
		name,
		string(cmd.Variant),
		cmd.Filename,
		count,
		int64(len(cmd.Data)),
		key,
	}

	rs, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (RecordSet, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanRecordSet)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("record set created", "id", rs.ID, "variant", rs.Variant, "records", rs.RecordCount)
	return &rs, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	rs, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	err = repository.ExecExpectOne(ctx, r.db, "DELETE FROM record_sets WHERE id = $1", id)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, rs.StorageKey); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", rs.StorageKey,
			"error", delErr,
		)
	}

	r.logger.Info("record set deleted", "id", id)
	return nil
}

// validate decodes the payload as the command's variant and returns the record count.
func validate(cmd CreateCommand) (int, error) {
	if _, err := explanations.ParseVariant(string(cmd.Variant)); err != nil {
		return 0, err
	}
	if len(cmd.Data) == 0 {
		return 0, fmt.Errorf("%w: empty payload", ErrInvalidFile)
	}

	count, err := explanations.CountRecords(cmd.Variant, bytes.NewReader(cmd.Data))
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ErrEmpty
	}
	return count, nil
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("record-sets/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" || name == "/" {
		name = "records.json"
	}
	return url.PathEscape(name)
}
