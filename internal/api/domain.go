package api

import (
	"github.com/crobbins327/histocartography/internal/metaexplanations"
	"github.com/crobbins327/histocartography/internal/recordsets"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	RecordSets       recordsets.System
	MetaExplanations metaexplanations.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	recordSetsSystem := recordsets.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	runner := metaexplanations.NewRunner(
		recordSetsSystem,
		runtime.Storage,
		runtime.Explain,
		metaexplanations.NewMetrics(runtime.Metrics),
		runtime.Logger,
	)
	runner.Start(runtime.Lifecycle)

	metaSystem := metaexplanations.New(
		runtime.Database.Connection(),
		runner,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		RecordSets:       recordSetsSystem,
		MetaExplanations: metaSystem,
	}
}
