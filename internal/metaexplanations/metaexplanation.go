// Package metaexplanations implements the meta-explanation run domain. A run
// evaluates a stored record set, persists the report and its artifacts to
// blob storage, and indexes the result in the database.
package metaexplanations

import (
	"time"

	"github.com/google/uuid"

	"github.com/crobbins327/histocartography/internal/explanations"
	"github.com/crobbins327/histocartography/internal/metaexplain"
)

// MetaExplanation is a stored meta-explanation run.
type MetaExplanation struct {
	ID              uuid.UUID             `json:"id"`
	RecordSetID     uuid.UUID             `json:"record_set_id"`
	RecordSetName   string                `json:"record_set_name"`
	Variant         explanations.Variant  `json:"variant"`
	ExplanationType string                `json:"explanation_type"`
	ClassSplit      string                `json:"class_split"`
	NumClasses      int                   `json:"num_classes"`
	Config          metaexplain.RunConfig `json:"config"`
	Output          metaexplain.Output    `json:"output"`
	Artifacts       []string              `json:"artifacts"`
	CreatedAt       time.Time             `json:"created_at"`
}

// Report returns the run's report in the meta_explanation.json layout.
func (m *MetaExplanation) Report() metaexplain.Report {
	return metaexplain.Report{Config: m.Config, Output: m.Output}
}

// CreateCommand requests a meta-explanation run over a record set.
type CreateCommand struct {
	RecordSetID uuid.UUID             `json:"record_set_id"`
	Config      metaexplain.RunConfig `json:"config"`
}
