package api

import (
	"github.com/crobbins327/histocartography/internal/config"
	"github.com/crobbins327/histocartography/pkg/openapi"
	"github.com/crobbins327/histocartography/pkg/routes"
)

func buildSpec(cfg *config.Config, groups []routes.Group) *openapi.Spec {
	spec := openapi.NewSpec(&cfg.API.OpenAPI, cfg.Version, cfg.API.BasePath)
	spec.Components.AddSchemas(schemas())

	routes.Document(spec, "", groups...)
	return spec
}

func page(item string) *openapi.Schema {
	return &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"data":        {Type: "array", Items: openapi.SchemaRef(item)},
			"total":       {Type: "integer"},
			"page":        {Type: "integer"},
			"page_size":   {Type: "integer"},
			"total_pages": {Type: "integer"},
		},
	}
}

func schemas() map[string]*openapi.Schema {
	uuid := &openapi.Schema{Type: "string", Format: "uuid"}
	timestamp := &openapi.Schema{Type: "string", Format: "date-time"}
	variant := &openapi.Schema{Type: "string", Enum: []any{"graph", "image"}}

	runConfig := &openapi.Schema{
		Type:     "object",
		Required: []string{"model_params", "explanation_type"},
		Properties: map[string]*openapi.Schema{
			"model_params": {
				Type:     "object",
				Required: []string{"class_split"},
				Properties: map[string]*openapi.Schema{
					"class_split": {Type: "string", Example: "benign+pathologicalbenign+udhVSadh+feaVSdcis+malignant"},
					"model_type":  {Type: "string", Description: "Graph model type, e.g. cell_graph_model. Required for the graph variant."},
					"num_layers":  {Type: "integer"},
				},
			},
			"explanation_type": {Type: "string", Example: "graphgradcam"},
			"dataset":          {Type: "string"},
			"model_path":       {Type: "string"},
		},
	}

	return map[string]*openapi.Schema{
		"RecordSet": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           uuid,
				"name":         {Type: "string"},
				"variant":      variant,
				"filename":     {Type: "string"},
				"record_count": {Type: "integer"},
				"size_bytes":   {Type: "integer"},
				"storage_key":  {Type: "string"},
				"created_at":   timestamp,
				"updated_at":   timestamp,
			},
		},
		"RecordSetPage": page("RecordSet"),
		"RunConfig":     runConfig,
		"Report": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"config": openapi.SchemaRef("RunConfig"),
				"output": {
					Type:                 "object",
					Description:          "Metric results keyed by pruning level (graph) or by metric name (image)",
					AdditionalProperties: &openapi.Schema{},
				},
			},
		},
		"CreateMetaExplanation": {
			Type:     "object",
			Required: []string{"record_set_id", "config"},
			Properties: map[string]*openapi.Schema{
				"record_set_id": uuid,
				"config":        openapi.SchemaRef("RunConfig"),
			},
		},
		"MetaExplanation": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":               uuid,
				"record_set_id":    uuid,
				"record_set_name":  {Type: "string"},
				"variant":          variant,
				"explanation_type": {Type: "string"},
				"class_split":      {Type: "string"},
				"num_classes":      {Type: "integer"},
				"config":           openapi.SchemaRef("RunConfig"),
				"output":           {Type: "object"},
				"artifacts":        {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"created_at":       timestamp,
			},
		},
		"MetaExplanationPage": page("MetaExplanation"),
		"BlobMeta": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"name":           {Type: "string"},
				"content_type":   {Type: "string"},
				"content_length": {Type: "integer"},
				"last_modified":  timestamp,
			},
		},
		"BlobList": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"blobs":       {Type: "array", Items: openapi.SchemaRef("BlobMeta")},
				"next_marker": {Type: "string"},
			},
		},
	}
}
