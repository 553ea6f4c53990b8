package metaexplanations

import (
	"log/slog"
	"net/http"

	"github.com/crobbins327/histocartography/pkg/handlers"
	"github.com/crobbins327/histocartography/pkg/openapi"
	"github.com/crobbins327/histocartography/pkg/pagination"
	"github.com/crobbins327/histocartography/pkg/routes"
)

// Handler serves /meta-explanations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest is the body of POST /meta-explanations/search.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "metaexplanations"),
		pagination: pagination,
	}
}

func (h *Handler) Routes() routes.Group {
	tags := []string{"Meta-Explanations"}
	id := openapi.PathParam("id", "Meta-explanation ID")

	return routes.Group{
		Prefix: "/meta-explanations",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: &openapi.Operation{
				Summary:   "List meta-explanations",
				Tags:      tags,
				Responses: map[int]*openapi.Response{200: openapi.ResponseJSON("Meta-explanation page", "MetaExplanationPage")},
			}},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: &openapi.Operation{
				Summary:    "Find a meta-explanation",
				Tags:       tags,
				Parameters: []*openapi.Parameter{id},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Meta-explanation", "MetaExplanation"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "GET", Pattern: "/{id}/report", Handler: h.Report, OpenAPI: &openapi.Operation{
				Summary:    "Get a meta-explanation report",
				Tags:       tags,
				Parameters: []*openapi.Parameter{id},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Report", "Report"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: &openapi.Operation{
				Summary:     "Run a meta-explanation",
				Description: "Evaluates a record set with the given run configuration and stores the report and artifacts.",
				Tags:        tags,
				RequestBody: openapi.RequestBodyJSON("CreateMetaExplanation", true),
				Responses: map[int]*openapi.Response{
					201: openapi.ResponseJSON("Meta-explanation created", "MetaExplanation"),
					400: openapi.ResponseRef("BadRequest"),
					404: openapi.ResponseRef("NotFound"),
					409: openapi.ResponseRef("Conflict"),
					422: openapi.ResponseRef("UnprocessableEntity"),
				},
			}},
			{Method: "POST", Pattern: "/search", Handler: h.Search, OpenAPI: &openapi.Operation{
				Summary:     "Search meta-explanations",
				Tags:        tags,
				RequestBody: openapi.RequestBodyJSON("PageRequest", true),
				Responses:   map[int]*openapi.Response{200: openapi.ResponseJSON("Meta-explanation page", "MetaExplanationPage")},
			}},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: &openapi.Operation{
				Summary:    "Delete a meta-explanation",
				Tags:       tags,
				Parameters: []*openapi.Parameter{id},
				Responses: map[int]*openapi.Response{
					204: {Description: "Deleted"},
					404: openapi.ResponseRef("NotFound"),
				},
			}},
		},
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	handlers.Fail(w, h.logger, err, MapHTTPStatus)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, page pagination.PageRequest, filters Filters) {
	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// List pages runs filtered by query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.list(w, r, pagination.PageRequestFromQuery(q, h.pagination), FiltersFromQuery(q))
}

// Search pages runs matching a JSON SearchRequest.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	req.PageRequest.Normalize(h.pagination)
	h.list(w, r, req.PageRequest, req.Filters)
}

// find loads the run named by the id path value.
func (h *Handler) find(w http.ResponseWriter, r *http.Request) (*MetaExplanation, bool) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return nil, false
	}
	m, err := h.sys.Find(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return nil, false
	}
	return m, true
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	if m, ok := h.find(w, r); ok {
		handlers.RespondJSON(w, http.StatusOK, m)
	}
}

// Report serves the metric report of a finished run.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	if m, ok := h.find(w, r); ok {
		handlers.RespondJSON(w, http.StatusOK, m.Report())
	}
}

// Create runs a meta-explanation over a stored record set and answers with
// the stored run.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		h.fail(w, err)
		return
	}
	m, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, m)
}

// Delete removes a run together with its artifacts.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.sys.Delete(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
