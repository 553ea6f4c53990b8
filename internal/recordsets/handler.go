package recordsets

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/crobbins327/histocartography/internal/explanations"
	"github.com/crobbins327/histocartography/pkg/handlers"
	"github.com/crobbins327/histocartography/pkg/openapi"
	"github.com/crobbins327/histocartography/pkg/pagination"
	"github.com/crobbins327/histocartography/pkg/routes"
)

// Handler serves /record-sets.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest is the body of POST /record-sets/search.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler builds a Handler. maxUploadSize caps the multipart form held
// in memory.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "recordsets"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

func (h *Handler) Routes() routes.Group {
	tags := []string{"Record Sets"}
	id := openapi.PathParam("id", "Record set ID")

	return routes.Group{
		Prefix: "/record-sets",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: &openapi.Operation{
				Summary:   "List record sets",
				Tags:      tags,
				Responses: map[int]*openapi.Response{200: openapi.ResponseJSON("Record set page", "RecordSetPage")},
			}},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: &openapi.Operation{
				Summary:    "Find a record set",
				Tags:       tags,
				Parameters: []*openapi.Parameter{id},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Record set", "RecordSet"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "POST", Pattern: "", Handler: h.Upload, OpenAPI: &openapi.Operation{
				Summary:     "Upload a record set",
				Description: "Multipart form with fields file (JSON array of explanation records), variant (graph or image) and optional name.",
				Tags:        tags,
				Responses: map[int]*openapi.Response{
					201: openapi.ResponseJSON("Record set created", "RecordSet"),
					400: openapi.ResponseRef("BadRequest"),
					409: openapi.ResponseRef("Conflict"),
					413: openapi.ResponseRef("PayloadTooLarge"),
				},
			}},
			{Method: "POST", Pattern: "/search", Handler: h.Search, OpenAPI: &openapi.Operation{
				Summary:     "Search record sets",
				Tags:        tags,
				RequestBody: openapi.RequestBodyJSON("PageRequest", true),
				Responses:   map[int]*openapi.Response{200: openapi.ResponseJSON("Record set page", "RecordSetPage")},
			}},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: &openapi.Operation{
				Summary:    "Delete a record set",
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

// List pages record sets filtered by query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.list(w, r, pagination.PageRequestFromQuery(q, h.pagination), FiltersFromQuery(q))
}

// Search pages record sets matching a JSON SearchRequest.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	req.PageRequest.Normalize(h.pagination)
	h.list(w, r, req.PageRequest, req.Filters)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	rs, err := h.sys.Find(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, rs)
}

// Upload stores the "file" part of a multipart form as a record set of
// the "variant" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	cmd, err := h.readUpload(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	rs, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, rs)
}

func (h *Handler) readUpload(r *http.Request) (CreateCommand, error) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return CreateCommand{}, ErrFileTooLarge
		}
		return CreateCommand{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	variant, err := explanations.ParseVariant(r.FormValue("variant"))
	if err != nil {
		return CreateCommand{}, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return CreateCommand{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return CreateCommand{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	return CreateCommand{
		Data:     data,
		Name:     r.FormValue("name"),
		Filename: header.Filename,
		Variant:  variant,
	}, nil
}

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
