// Package recordsets implements the record set domain: uploaded JSON arrays
// of explanation records, stored as blobs and registered in the database.
package recordsets

import (
	"time"

	"github.com/google/uuid"

	"github.com/crobbins327/histocartography/internal/explanations"
)

// RecordSet is a registered upload of explanation records.
type RecordSet struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Variant     explanations.Variant `json:"variant"`
	Filename    string               `json:"filename"`
	RecordCount int                  `json:"record_count"`
	SizeBytes   int64                `json:"size_bytes"`
	StorageKey  string               `json:"storage_key"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// CreateCommand carries the data needed to store and register a record set.
// Data holds the raw JSON array.
type CreateCommand struct {
	Data     []byte
	Name     string
	Filename string
	Variant  explanations.Variant
}
