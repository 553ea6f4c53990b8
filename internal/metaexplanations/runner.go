package metaexplanations

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/crobbins327/histocartography/internal/classes"
	"github.com/crobbins327/histocartography/internal/config"
	"github.com/crobbins327/histocartography/internal/metaexplain"
	"github.com/crobbins327/histocartography/internal/projection"
	"github.com/crobbins327/histocartography/internal/recordsets"
	"github.com/crobbins327/histocartography/pkg/lifecycle"
	"github.com/crobbins327/histocartography/pkg/storage"
)

const (
	keyPrefix     = "meta-explanations"
	drainInterval = 100 * time.Millisecond
)

// Result is the outcome of a run before it is indexed.
type Result struct {
	ID         uuid.UUID
	RecordSet  *recordsets.RecordSet
	NumClasses int
	Report     *metaexplain.Report
	Keys       []string
}

// Runner executes meta-explanation runs: it loads a record set, writes the
// report and plots under a run-scoped output root and uploads them to storage.
type Runner struct {
	recordSets recordsets.System
	storage    storage.System
	explain    config.ExplainConfig
	metrics    *Metrics
	logger     *slog.Logger

	mu     sync.Mutex
	active map[uuid.UUID]struct{}
}

// NewRunner creates a Runner. metrics may be nil.
func NewRunner(
	recordSets recordsets.System,
	store storage.System,
	explain config.ExplainConfig,
	metrics *Metrics,
	logger *slog.Logger,
) *Runner {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Runner{
		recordSets: recordSets,
		storage:    store,
		explain:    explain,
		metrics:    metrics,
		logger:     logger.With("runner", "metaexplanations"),
		active:     make(map[uuid.UUID]struct{}),
	}
}

// InFlight returns the number of record sets with a run in progress.
func (r *Runner) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

func (r *Runner) acquire(recordSetID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.active[recordSetID]; busy {
		return false
	}
	r.active[recordSetID] = struct{}{}
	r.metrics.inFlight.Inc()
	return true
}

func (r *Runner) release(recordSetID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, recordSetID)
	r.metrics.inFlight.Dec()
}

// Start creates the output root on startup and makes shutdown wait for
// in-flight runs.
func (r *Runner) Start(lc *lifecycle.Coordinator) {
	lc.OnStartup("meta-explanation output", func(context.Context) error {
		if err := os.MkdirAll(r.explain.OutputRoot, 0o755); err != nil {
			return fmt.Errorf("create output root: %w", err)
		}
		r.logger.Info("output root ready", "dir", r.explain.OutputRoot)
		return nil
	})
	lc.OnShutdown("meta-explanation runs", r.drain)
}

func (r *Runner) drain(ctx context.Context) error {
	ticker := time.NewTicker(drainInterval)
	defer ticker.Stop()

	for n := r.InFlight(); n > 0; n = r.InFlight() {
		r.logger.Info("waiting for runs", "in_flight", n)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%d runs still in flight: %w", n, ctx.Err())
		case <-ticker.C:
		}
	}
	return nil
}

// OutputRoot returns the local directory a run writes into.
func (r *Runner) OutputRoot(id uuid.UUID) string {
	return filepath.Join(r.explain.OutputRoot, id.String())
}

// Run evaluates the record set named by cmd. Only one run per record set
// executes at a time; a concurrent request fails with ErrRunInProgress.
func (r *Runner) Run(ctx context.Context, id uuid.UUID, cmd CreateCommand) (*Result, error) {
	if cmd.RecordSetID == uuid.Nil {
		return nil, fmt.Errorf("%w: record_set_id required", ErrInvalidRequest)
	}

	if !r.acquire(cmd.RecordSetID) {
		return nil, ErrRunInProgress
	}
	defer r.release(cmd.RecordSetID)

	start := time.Now()
	var variant string
	res, err := r.run(ctx, id, cmd, &variant)
	r.metrics.observe(variant, err, time.Since(start))

	return res, err
}

func (r *Runner) run(ctx context.Context, id uuid.UUID, cmd CreateCommand, variant *string) (*Result, error) {
	rs, body, err := r.recordSets.Open(ctx, cmd.RecordSetID)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	*variant = string(rs.Variant)

	n, err := classes.BRACS{}.NumberOfClasses(cmd.Config.ModelParams.ClassSplit)
	if err != nil {
		return nil, err
	}

	root := r.OutputRoot(id)
	opts := metaexplain.Options{
		OutputRoot:      root,
		Plotter:         projection.NewScatterPlotter(rs.Name, r.explain.PlotSize),
		Logger:          r.logger.With("run", id),
		ExtractPerLevel: r.explain.ExtractPerLevel,
	}

	explainer, err := metaexplain.New(rs.Variant, cmd.Config, body, opts)
	if err != nil {
		return nil, err
	}
	if err := explainer.Write(); err != nil {
		return nil, err
	}

	report, err := explainer.Read()
	if err != nil {
		return nil, err
	}

	keys, err := r.upload(ctx, id, root, explainer.Artifacts())
	if err != nil {
		return nil, err
	}

	r.logger.Info("meta-explanation run complete",
		"id", id,
		"record_set_id", rs.ID,
		"variant", rs.Variant,
		"artifacts", len(keys),
	)

	return &Result{
		ID:         id,
		RecordSet:  rs,
		NumClasses: n,
		Report:     report,
		Keys:       keys,
	}, nil
}

// upload stores every artifact under meta-explanations/<id>/ keyed by its
// path relative to root. On failure the uploaded blobs are removed.
func (r *Runner) upload(ctx context.Context, id uuid.UUID, root string, files []string) ([]string, error) {
	keys := make([]string, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			return nil, fmt.Errorf("artifact path %s: %w", f, err)
		}
		keys[i] = path.Join(keyPrefix, id.String(), filepath.ToSlash(rel))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.explain.UploadConcurrency, 1))

	for i, f := range files {
		g.Go(func() error {
			file, err := os.Open(f)
			if err != nil {
				return fmt.Errorf("open artifact: %w", err)
			}
			defer file.Close()

			if err := r.storage.Upload(gctx, keys[i], file, contentTypeFor(f)); err != nil {
				return fmt.Errorf("upload %s: %w", keys[i], err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.removeBlobs(context.WithoutCancel(ctx), keys)
		return nil, err
	}
	return keys, nil
}

// Discard removes a run's uploaded blobs and its local output root.
func (r *Runner) Discard(ctx context.Context, id uuid.UUID, keys []string) {
	r.removeBlobs(ctx, keys)
	if err := os.RemoveAll(r.OutputRoot(id)); err != nil {
		r.logger.Warn("output root removal failed", "id", id, "error", err)
	}
}

func (r *Runner) removeBlobs(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := r.storage.Delete(ctx, key); err != nil {
			r.logger.Warn("blob delete failed", "key", key, "error", err)
		}
	}
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
