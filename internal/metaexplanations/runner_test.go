package metaexplanations_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/crobbins327/histocartography/internal/config"
	"github.com/crobbins327/histocartography/internal/explanations"
	"github.com/crobbins327/histocartography/internal/metaexplain"
	"github.com/crobbins327/histocartography/internal/metaexplanations"
	"github.com/crobbins327/histocartography/internal/recordsets"
	"github.com/crobbins327/histocartography/pkg/lifecycle"
	"github.com/crobbins327/histocartography/pkg/storage"
)

const graphRecords = `[
  {"label": 0, "explanation_graphs": {"1.0": {"logits": [3, 1, 0], "latent": [0, 0], "nuclei_label": [1]}}},
  {"label": 0, "explanation_graphs": {"1.0": {"logits": [2, 1, 0], "latent": [0, 1], "nuclei_label": [1]}}},
  {"label": 1, "explanation_graphs": {"1.0": {"logits": [0, 3, 1], "latent": [10, 10], "nuclei_label": [2]}}},
  {"label": 1, "explanation_graphs": {"1.0": {"logits": [1, 2, 0], "latent": [10, 11], "nuclei_label": [2]}}}
]`

const threeClassSplit = "benign+pathologicalbenign+udhVSadh+feaVSdcis+malignant"

func graphConfig() metaexplain.RunConfig {
	return metaexplain.RunConfig{
		ModelParams: metaexplain.ModelParams{
			ClassSplit: threeClassSplit,
			ModelType:  "cell_graph_model",
		},
		ExplanationType: "graphgradcam",
	}
}

// fakeRecordSets serves a single in-memory record set through Open.
type fakeRecordSets struct {
	recordsets.System

	rs     recordsets.RecordSet
	data   string
	openFn func()
}

func (f *fakeRecordSets) Open(_ context.Context, id uuid.UUID) (*recordsets.RecordSet, io.ReadCloser, error) {
	if id != f.rs.ID {
		return nil, nil, recordsets.ErrNotFound
	}
	if f.openFn != nil {
		f.openFn()
	}
	rs := f.rs
	return &rs, io.NopCloser(bytes.NewBufferString(f.data)), nil
}

func newGraphRecordSets() *fakeRecordSets {
	return &fakeRecordSets{
		rs: recordsets.RecordSet{
			ID:      uuid.New(),
			Name:    "bracs-cell-graphs",
			Variant: explanations.VariantGraph,
		},
		data: graphRecords,
	}
}

func newStorage(t *testing.T) storage.System {
	t.Helper()

	sys, err := storage.New(&storage.Config{
		Provider:      storage.ProviderFilesystem,
		ContainerName: "histocartography",
		Root:          t.TempDir(),
	}, slog.Default())
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup() error = %v", err)
	}
	return sys
}

func explainConfig(t *testing.T) config.ExplainConfig {
	return config.ExplainConfig{
		OutputRoot:        t.TempDir(),
		PlotSize:          4,
		UploadConcurrency: 2,
	}
}

func newRunner(t *testing.T, rs recordsets.System, store storage.System, reg prometheus.Registerer) *metaexplanations.Runner {
	t.Helper()
	return metaexplanations.NewRunner(
		rs,
		store,
		explainConfig(t),
		metaexplanations.NewMetrics(reg),
		slog.New(slog.DiscardHandler),
	)
}

func counterValue(t *testing.T, reg *prometheus.Registry, variant, result string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "histocartography_meta_explanation_runs_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["variant"] == variant && labels["result"] == result {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestRunnerGraph(t *testing.T) {
	ctx := context.Background()
	store := newStorage(t)
	rs := newGraphRecordSets()
	reg := prometheus.NewRegistry()
	runner := newRunner(t, rs, store, reg)

	id := uuid.New()
	res, err := runner.Run(ctx, id, metaexplanations.CreateCommand{
		RecordSetID: rs.rs.ID,
		Config:      graphConfig(),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.NumClasses != 3 {
		t.Errorf("NumClasses = %d, want 3", res.NumClasses)
	}

	dir := path.Join("meta-explanations", id.String(), "gnn", "3_class_scenario", "cell_graph", "graph_gradcam")
	wantKeys := []string{
		path.Join(dir, metaexplain.ReportFile),
		path.Join(dir, "keep_100_tsne.png"),
	}
	if diff := cmp.Diff(wantKeys, res.Keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	for _, key := range res.Keys {
		ok, err := store.Exists(ctx, key)
		if err != nil || !ok {
			t.Errorf("Exists(%s) = %v, %v; want true", key, ok, err)
		}
	}

	level, ok := res.Report.Output["keep_100"].(map[string]any)
	if !ok {
		t.Fatalf("output[keep_100] = %T, want map", res.Report.Output["keep_100"])
	}
	for _, name := range []string{"_f1_score", "_ce_loss", "_classification_report", "_clustering_quality"} {
		if _, ok := level[name]; !ok {
			t.Errorf("keep_100 missing %s", name)
		}
	}

	if diff := cmp.Diff(graphConfig(), res.Report.Config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	if got := counterValue(t, reg, "graph", "success"); got != 1 {
		t.Errorf("success counter = %v, want 1", got)
	}
}

func TestRunnerRecordSetNotFound(t *testing.T) {
	reg := prometheus.NewRegistry()
	runner := newRunner(t, newGraphRecordSets(), newStorage(t), reg)

	_, err := runner.Run(context.Background(), uuid.New(), metaexplanations.CreateCommand{
		RecordSetID: uuid.New(),
		Config:      graphConfig(),
	})
	if !errors.Is(err, recordsets.ErrNotFound) {
		t.Fatalf("Run() error = %v, want recordsets.ErrNotFound", err)
	}

	if got := counterValue(t, reg, "unknown", "error"); got != 1 {
		t.Errorf("error counter = %v, want 1", got)
	}
}

func TestRunnerRequiresRecordSet(t *testing.T) {
	runner := newRunner(t, newGraphRecordSets(), newStorage(t), nil)

	_, err := runner.Run(context.Background(), uuid.New(), metaexplanations.CreateCommand{Config: graphConfig()})
	if !errors.Is(err, metaexplanations.ErrInvalidRequest) {
		t.Errorf("Run() error = %v, want ErrInvalidRequest", err)
	}
}

func TestRunnerInvalidConfig(t *testing.T) {
	rs := newGraphRecordSets()
	runner := newRunner(t, rs, newStorage(t), nil)

	cfg := graphConfig()
	cfg.ModelParams.ModelType = ""

	_, err := runner.Run(context.Background(), uuid.New(), metaexplanations.CreateCommand{
		RecordSetID: rs.rs.ID,
		Config:      cfg,
	})
	if !errors.Is(err, metaexplain.ErrMissingKey) {
		t.Errorf("Run() error = %v, want ErrMissingKey", err)
	}
}

func TestRunnerSingleRunPerRecordSet(t *testing.T) {
	rs := newGraphRecordSets()
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	rs.openFn = func() {
		once.Do(func() { close(entered) })
		<-release
	}

	runner := newRunner(t, rs, newStorage(t), nil)
	cmd := metaexplanations.CreateCommand{RecordSetID: rs.rs.ID, Config: graphConfig()}

	done := make(chan error, 1)
	go func() {
		_, err := runner.Run(context.Background(), uuid.New(), cmd)
		done <- err
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first run did not start")
	}

	if n := runner.InFlight(); n != 1 {
		t.Errorf("InFlight() = %d during run, want 1", n)
	}

	_, err := runner.Run(context.Background(), uuid.New(), cmd)
	if !errors.Is(err, metaexplanations.ErrRunInProgress) {
		t.Errorf("concurrent Run() error = %v, want ErrRunInProgress", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("first Run() error = %v", err)
	}
	if n := runner.InFlight(); n != 0 {
		t.Errorf("InFlight() = %d after run, want 0", n)
	}
}

func TestRunnerReleasesRecordSets(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := newStorage(t)
	rs := newGraphRecordSets()
	runner := newRunner(t, rs, store, reg)

	for range 3 {
		rs.rs.ID = uuid.New()
		cmd := metaexplanations.CreateCommand{RecordSetID: rs.rs.ID, Config: graphConfig()}
		if _, err := runner.Run(context.Background(), uuid.New(), cmd); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	}
	if _, err := runner.Run(context.Background(), uuid.New(), metaexplanations.CreateCommand{
		RecordSetID: uuid.New(),
		Config:      graphConfig(),
	}); !errors.Is(err, recordsets.ErrNotFound) {
		t.Fatalf("Run() error = %v, want ErrNotFound", err)
	}

	if n := runner.InFlight(); n != 0 {
		t.Errorf("InFlight() = %d, want 0", n)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "histocartography_meta_explanation_runs_in_flight" {
			if v := mf.GetMetric()[0].GetGauge().GetValue(); v != 0 {
				t.Errorf("runs_in_flight = %v, want 0", v)
			}
			return
		}
	}
	t.Error("runs_in_flight gauge not registered")
}

func TestRunnerDiscard(t *testing.T) {
	ctx := context.Background()
	store := newStorage(t)
	rs := newGraphRecordSets()
	runner := newRunner(t, rs, store, nil)

	id := uuid.New()
	res, err := runner.Run(ctx, id, metaexplanations.CreateCommand{RecordSetID: rs.rs.ID, Config: graphConfig()})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	runner.Discard(ctx, id, res.Keys)

	for _, key := range res.Keys {
		if ok, _ := store.Exists(ctx, key); ok {
			t.Errorf("blob %s still exists after Discard", key)
		}
	}
	if _, err := os.Stat(runner.OutputRoot(id)); !os.IsNotExist(err) {
		t.Errorf("output root still exists: %v", err)
	}
}

func TestRunnerLifecycle(t *testing.T) {
	rs := newGraphRecordSets()
	entered := make(chan struct{})
	release := make(chan struct{})
	rs.openFn = func() {
		close(entered)
		<-release
	}

	explain := explainConfig(t)
	explain.OutputRoot = filepath.Join(explain.OutputRoot, "runs", "nested")
	runner := metaexplanations.NewRunner(rs, newStorage(t), explain, nil, slog.Default())

	lc := lifecycle.New()
	runner.Start(lc)
	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup() error = %v", err)
	}
	if info, err := os.Stat(explain.OutputRoot); err != nil || !info.IsDir() {
		t.Fatalf("output root not created: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := runner.Run(context.Background(), uuid.New(),
			metaexplanations.CreateCommand{RecordSetID: rs.rs.ID, Config: graphConfig()})
		done <- err
	}()
	<-entered

	err := lc.Shutdown(50 * time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "1 runs still in flight") {
		t.Errorf("Shutdown() error = %v, want in-flight run", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestRunnerShutdownWithoutRuns(t *testing.T) {
	runner := newRunner(t, newGraphRecordSets(), newStorage(t), nil)

	lc := lifecycle.New()
	runner.Start(lc)
	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup() error = %v", err)
	}
	if err := lc.Shutdown(time.Second); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
