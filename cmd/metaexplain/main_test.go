package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const runYAML = `model_params:
  class_split: benign+pathologicalbenign+udhVSadh+feaVSdcis+malignant
  model_type: cell_graph_model
explanation_type: graphgradcam
`

const graphRecords = `[
  {"label": 0, "explanation_graphs": {"1.0": {"logits": [3, 1, 0], "latent": [0, 0], "nuclei_label": [1]}}},
  {"label": 1, "explanation_graphs": {"1.0": {"logits": [0, 3, 1], "latent": [10, 10], "nuclei_label": [2]}}},
  {"label": 1, "explanation_graphs": {"1.0": {"logits": [1, 2, 0], "latent": [10, 11], "nuclei_label": [2]}}}
]`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestRunAndShow(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfgPath := writeFile(t, dir, "run.yaml", runYAML)
	recPath := writeFile(t, dir, "records.json", graphRecords)
	root := filepath.Join(dir, "out")

	out, err := execute(t, "run",
		"--variant", "graph",
		"--config", cfgPath,
		"--records", recPath,
		"--output-root", root,
	)
	if err != nil {
		t.Fatalf("run error = %v", err)
	}

	saveDir := filepath.Join(root, "gnn", "3_class_scenario", "cell_graph", "graph_gradcam")
	want := []string{
		filepath.Join(saveDir, "meta_explanation.json"),
		filepath.Join(saveDir, "keep_100_tsne.png"),
	}
	if diff := cmp.Diff(want, strings.Fields(out)); diff != "" {
		t.Errorf("run output mismatch (-want +got):\n%s", diff)
	}

	out, err = execute(t, "show",
		"--variant", "graph",
		"--config", cfgPath,
		"--output-root", root,
	)
	if err != nil {
		t.Fatalf("show error = %v", err)
	}

	var report struct {
		Config map[string]any `json:"config"`
		Output map[string]any `json:"output"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode show output: %v", err)
	}
	if report.Config["explanation_type"] != "graphgradcam" {
		t.Errorf("config.explanation_type = %v", report.Config["explanation_type"])
	}
	if _, ok := report.Output["keep_100"]; !ok {
		t.Errorf("output keys = %v, want keep_100", report.Output)
	}
}

func TestRunRequiresFlags(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := execute(t, "run", "--variant", "graph"); err == nil {
		t.Error("expected error for missing --config and --records")
	}
}

func TestRunUnknownVariant(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := execute(t, "run",
		"--variant", "tabular",
		"--config", writeFile(t, dir, "run.yaml", runYAML),
		"--records", writeFile(t, dir, "records.json", graphRecords),
	)
	if err == nil || !strings.Contains(err.Error(), "unknown explanation variant") {
		t.Errorf("error = %v, want unknown explanation variant", err)
	}
}

func TestShowMissingReport(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := execute(t, "show",
		"--variant", "graph",
		"--config", writeFile(t, dir, "run.yaml", runYAML),
		"--output-root", filepath.Join(dir, "empty"),
	)
	if err == nil {
		t.Error("expected error when no report exists")
	}
}
