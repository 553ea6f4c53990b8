package metaexplanations

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/crobbins327/histocartography/pkg/query"
	"github.com/crobbins327/histocartography/pkg/repository"
)

var projectionMap = query.
	NewProjectionMap("public", "meta_explanations", "m").
	Project("id", "ID").
	Project("record_set_id", "RecordSetID").
	Project("variant", "Variant").
	Project("explanation_type", "ExplanationType").
	Project("class_split", "ClassSplit").
	Project("num_classes", "NumClasses").
	Project("config", "Config").
	Project("output", "Output").
	Project("artifacts", "Artifacts").
	Project("created_at", "CreatedAt").
	Join("public", "record_sets", "r", "JOIN", "m.record_set_id = r.id").
	Project("name", "RecordSetName")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for meta-explanation queries.
// Nil fields are ignored. All fields use exact matching.
type Filters struct {
	RecordSetID     *uuid.UUID `json:"record_set_id,omitempty"`
	Variant         *string    `json:"variant,omitempty"`
	ExplanationType *string    `json:"explanation_type,omitempty"`
	ClassSplit      *string    `json:"class_split,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("RecordSetID", f.RecordSetID).
		WhereEquals("Variant", f.Variant).
		WhereEquals("ExplanationType", f.ExplanationType).
		WhereEquals("ClassSplit", f.ClassSplit)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if d := values.Get("record_set_id"); d != "" {
		if id, err := uuid.Parse(d); err == nil {
			f.RecordSetID = &id
		}
	}
	if v := values.Get("variant"); v != "" {
		f.Variant = &v
	}
	if e := values.Get("explanation_type"); e != "" {
		f.ExplanationType = &e
	}
	if c := values.Get("class_split"); c != "" {
		f.ClassSplit = &c
	}

	return f
}

func scanMetaExplanation(s repository.Scanner) (MetaExplanation, error) {
	var (
		m                               MetaExplanation
		configRaw, outputRaw, artifacts []byte
	)

	err := s.Scan(
		&m.ID,
		&m.RecordSetID,
		&m.Variant,
		&m.ExplanationType,
		&m.ClassSplit,
		&m.NumClasses,
		&configRaw,
		&outputRaw,
		&artifacts,
		&m.CreatedAt,
		&m.RecordSetName,
	)
	if err != nil {
		return m, err
	}

	if err := json.Unmarshal(configRaw, &m.Config); err != nil {
		return m, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := json.Unmarshal(outputRaw, &m.Output); err != nil {
		return m, fmt.Errorf("unmarshal output: %w", err)
	}
	if len(artifacts) > 0 {
		if err := json.Unmarshal(artifacts, &m.Artifacts); err != nil {
			return m, fmt.Errorf("unmarshal artifacts: %w", err)
		}
	}
	if m.Artifacts == nil {
		m.Artifacts = []string{}
	}

	return m, nil
}
