package metaexplain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crobbins327/histocartography/internal/explanations"
)

const graphModelSuffix = "_model"

var graphFields = []string{"logits", "latent", "nuclei_label"}

// Graph is the meta-explanation of a graph classification model.
type Graph struct {
	*Base[explanations.GraphRecord]

	GraphType string
	SavePath  string

	levels    []explanations.KeepLevel
	tensors   map[explanations.KeepLevel]*LevelTensors
	artifacts []string
}

// NewGraph creates the save directory and stacks every record's outputs
// per pruning level of the first record.
func NewGraph(cfg RunConfig, records []explanations.GraphRecord, opts Options) (*Graph, error) {
	base, err := NewBase(cfg, records, opts)
	if err != nil {
		return nil, err
	}
	if cfg.ModelParams.ModelType == "" {
		return nil, fmt.Errorf("%w: model_params.model_type", ErrMissingKey)
	}

	g := &Graph{
		Base:      base,
		GraphType: graphType(cfg.ModelParams.ModelType),
		levels:    records[0].Levels(),
		tensors:   make(map[explanations.KeepLevel]*LevelTensors),
	}

	g.SavePath, err = base.saveDir("gnn", g.GraphType)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(g.SavePath, 0o755); err != nil {
		return nil, fmt.Errorf("create save path: %w", err)
	}

	if !base.opts.ExtractPerLevel && len(g.levels) > 1 {
		g.logger.Warn("populating every pruning level from full-graph data",
			"levels", len(g.levels))
	}

	for _, field := range graphFields {
		if err := g.extract(field); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Levels returns the pruning levels in report order.
func (g *Graph) Levels() []explanations.KeepLevel {
	return g.levels
}

// Tensors returns the stacked outputs of a pruning level.
func (g *Graph) Tensors(level explanations.KeepLevel) (*LevelTensors, bool) {
	t, ok := g.tensors[level]
	return t, ok
}

func (g *Graph) extract(field string) error {
	for _, level := range g.levels {
		source := explanations.FullGraph
		if g.opts.ExtractPerLevel {
			source = level
		}

		rows := make([][]float64, len(g.Records))
		for i, rec := range g.Records {
			data, ok := rec.ExplanationGraphs[source]
			if !ok {
				return fmt.Errorf("%w: record %d has no level %s", ErrMissingKey, i, source)
			}
			v, ok := data.Field(field)
			if !ok {
				return fmt.Errorf("%w: record %d level %s has no %s", ErrMissingKey, i, source, field)
			}
			rows[i] = v
		}

		m, err := stack(rows)
		if err != nil {
			return fmt.Errorf("stack %s for %s: %w", field, level.Key(), err)
		}

		t, ok := g.tensors[level]
		if !ok {
			t = &LevelTensors{}
			g.tensors[level] = t
		}
		t.set(field, m)

		r, c := m.Dims()
		g.logger.Debug("level tensor set", "level", level.Key(), "field", field, "rows", r, "cols", c)
	}
	return nil
}

// Evaluate runs every registry entry on every pruning level.
func (g *Graph) Evaluate() (Output, error) {
	out := make(Output, len(g.levels))
	for _, level := range g.levels {
		t := g.tensors[level]
		res := make(map[string]any, len(g.opts.Registry))
		for _, e := range g.opts.Registry {
			x, err := t.Select(e.Source)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", level.Key(), err)
			}
			v, err := runMetric(e, x, g.Labels)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", level.Key(), err)
			}
			res[e.Name] = v
		}
		out[level.Key()] = res
	}
	return out, nil
}

// Write evaluates, persists the JSON report and writes one latent-space
// projection plot per pruning level.
func (g *Graph) Write() error {
	g.artifacts = nil

	out, err := g.Evaluate()
	if err != nil {
		return err
	}

	path, err := writeReport(g.SavePath, encapsulate(g.Config, out))
	if err != nil {
		return err
	}
	g.artifacts = append(g.artifacts, path)
	g.logger.Info("report written", "path", path, "levels", len(g.levels))

	names, err := g.opts.Classes.LabelToTumorType(g.Config.ModelParams.ClassSplit)
	if err != nil {
		return fmt.Errorf("resolve class names: %w", err)
	}

	for _, level := range g.levels {
		points, err := g.opts.Projector.Project(g.tensors[level].Latent)
		if err != nil {
			return fmt.Errorf("project %s: %w", level.Key(), err)
		}

		plot := filepath.Join(g.SavePath, level.Key()+"_tsne.png")
		if err := g.opts.Plotter.Plot(points, g.Labels, names, plot); err != nil {
			return fmt.Errorf("plot %s: %w", level.Key(), err)
		}
		g.artifacts = append(g.artifacts, plot)
	}

	return nil
}

// Read loads the report persisted by Write.
func (g *Graph) Read() (*Report, error) {
	return readReport(g.SavePath)
}

// Artifacts lists the files written by the last Write.
func (g *Graph) Artifacts() []string {
	return g.artifacts
}

func graphType(modelType string) string {
	return strings.ReplaceAll(modelType, graphModelSuffix, "")
}
