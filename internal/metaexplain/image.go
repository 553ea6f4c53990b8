package metaexplain

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/crobbins327/histocartography/internal/explanations"
)

// imageOutputPrefix is prepended to metric names in image reports.
const imageOutputPrefix = "all"

// Image is the meta-explanation of an image classification model.
type Image struct {
	*Base[explanations.ImageRecord]

	SavePath string

	logits    *mat.Dense
	artifacts []string
}

// NewImage creates the save directory and stacks every record's logits.
func NewImage(cfg RunConfig, records []explanations.ImageRecord, opts Options) (*Image, error) {
	base, err := NewBase(cfg, records, opts)
	if err != nil {
		return nil, err
	}

	img := &Image{Base: base}

	img.SavePath, err = base.saveDir("cnn")
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(img.SavePath, 0o755); err != nil {
		return nil, fmt.Errorf("create save path: %w", err)
	}

	rows := make([][]float64, len(records))
	for i, r := range records {
		rows[i] = r.Logits
	}
	if img.logits, err = stack(rows); err != nil {
		return nil, fmt.Errorf("stack logits: %w", err)
	}

	return img, nil
}

// Logits returns the stacked N×C logits.
func (img *Image) Logits() *mat.Dense {
	return img.logits
}

// Evaluate runs every registry entry on the logits.
func (img *Image) Evaluate() (Output, error) {
	out := make(Output, len(img.opts.Registry))
	for _, e := range img.opts.Registry {
		v, err := runMetric(e, img.logits, img.Labels)
		if err != nil {
			return nil, err
		}
		out[imageOutputPrefix+e.Name] = v
	}
	return out, nil
}

// Write evaluates and persists the JSON report.
func (img *Image) Write() error {
	img.artifacts = nil

	out, err := img.Evaluate()
	if err != nil {
		return err
	}

	path, err := writeReport(img.SavePath, encapsulate(img.Config, out))
	if err != nil {
		return err
	}
	img.artifacts = append(img.artifacts, path)
	img.logger.Info("report written", "path", path)
	return nil
}

// Read loads the report persisted by Write.
func (img *Image) Read() (*Report, error) {
	return readReport(img.SavePath)
}

// Artifacts lists the files written by the last Write.
func (img *Image) Artifacts() []string {
	return img.artifacts
}
