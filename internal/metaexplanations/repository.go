package metaexplanations

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/crobbins327/histocartography/internal/recordsets"
	"github.com/crobbins327/histocartography/pkg/pagination"
	"github.com/crobbins327/histocartography/pkg/query"
	"github.com/crobbins327/histocartography/pkg/repository"
)

type repo struct {
	db         *sql.DB
	runner     *Runner
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a meta-explanation repository implementing the System interface.
func New(
	db *sql.DB,
	runner *Runner,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		runner:     runner,
		logger:     logger.With("system", "metaexplanations"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[MetaExplanation], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projectionMap, defaultSort).
		WhereSearch(page.Search, "ExplanationType", "ClassSplit", "RecordSetName")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	result, err := repository.Page(ctx, r.db, qb, page, scanMetaExplanation)
	if err != nil {
		return nil, fmt.Errorf("list meta-explanations: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*MetaExplanation, error) {
	return r.find(ctx, r.db, id)
}

func (r *repo) find(ctx context.Context, q repository.Querier, id uuid.UUID) (*MetaExplanation, error) {
	stmt, args := query.NewBuilder(projectionMap).BuildSingle("ID", id)

	m, err := repository.QueryOne(ctx, q, stmt, args, scanMetaExplanation)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &m, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*MetaExplanation, error) {
	id := uuid.New()

	res, err := r.runner.Run(ctx, id, cmd)
	if err != nil {
		r.runner.Discard(ctx, id, nil)
		return nil, err
	}

	configJSON, err := json.Marshal(res.Report.Config)
	if err != nil {
		r.runner.Discard(ctx, id, res.Keys)
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	outputJSON, err := json.Marshal(res.Report.Output)
	if err != nil {
		r.runner.Discard(ctx, id, res.Keys)
		return nil, fmt.Errorf("marshal output: %w", err)
	}
	keysJSON, err := json.Marshal(res.Keys)
	if err != nil {
		r.runner.Discard(ctx, id, res.Keys)
		return nil, fmt.Errorf("marshal artifacts: %w", err)
	}

	insertQ := `
		INSERT INTO meta_explanations(
			id, record_set_id, variant, explanation_type, class_split,
			num_classes, config, output, artifacts
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	m, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*MetaExplanation, error) {
		if _, err := tx.ExecContext(ctx, insertQ,
			id,
			res.RecordSet.ID,
			string(res.RecordSet.Variant),
			res.Report.Config.ExplanationType,
			res.Report.Config.ModelParams.ClassSplit,
			res.NumClasses,
			configJSON,
			outputJSON,
			keysJSON,
		); err != nil {
			return nil, fmt.Errorf("insert meta-explanation: %w", err)
		}
		return r.find(ctx, tx, id)
	})

	if err != nil {
		r.runner.Discard(ctx, id, res.Keys)
		// the record set may be deleted while its run executes
		return nil, repository.MapError(err, recordsets.ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("meta-explanation created",
		"id", m.ID,
		"record_set_id", m.RecordSetID,
		"variant", m.Variant,
		"explanation_type", m.ExplanationType,
	)
	return m, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	m, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	err = repository.ExecExpectOne(ctx, r.db, "DELETE FROM meta_explanations WHERE id = $1", id)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.runner.Discard(ctx, id, m.Artifacts)

	r.logger.Info("meta-explanation deleted", "id", id)
	return nil
}
