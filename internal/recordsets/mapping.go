package recordsets

import (
	"net/url"

	"github.com/crobbins327/histocartography/pkg/query"
	"github.com/crobbins327/histocartography/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "record_sets", "rs").
	Project("id", "ID").
	Project("name", "Name").
	Project("variant", "Variant").
	Project("filename", "Filename").
	Project("record_count", "RecordCount").
	Project("size_bytes", "SizeBytes").
	Project("storage_key", "StorageKey").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for record set queries.
// Nil fields are ignored. Variant uses exact matching; Name and Filename
// use case-insensitive contains matching.
type Filters struct {
	Name     *string `json:"name,omitempty"`
	Variant  *string `json:"variant,omitempty"`
	Filename *string `json:"filename,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Name", f.Name).
		WhereEquals("Variant", f.Variant).
		WhereContains("Filename", f.Filename)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}
	if v := values.Get("variant"); v != "" {
		f.Variant = &v
	}
	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	return f
}

func scanRecordSet(s repository.Scanner) (RecordSet, error) {
	var rs RecordSet
	err := s.Scan(
		&rs.ID,
		&rs.Name,
		&rs.Variant,
		&rs.Filename,
		&rs.RecordCount,
		&rs.SizeBytes,
		&rs.StorageKey,
		&rs.CreatedAt,
		&rs.UpdatedAt,
	)
	return rs, err
}
