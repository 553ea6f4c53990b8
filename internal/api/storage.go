package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/crobbins327/histocartography/pkg/handlers"
	"github.com/crobbins327/histocartography/pkg/openapi"
	"github.com/crobbins327/histocartography/pkg/routes"
	"github.com/crobbins327/histocartography/pkg/storage"
)

// storageHandler exposes the blob store read-only, so uploaded record sets
// and run artifacts can be browsed and fetched.
type storageHandler struct {
	store       storage.System
	logger      *slog.Logger
	maxListSize int32
}

func newStorageHandler(store storage.System, logger *slog.Logger, maxListSize int32) *storageHandler {
	return &storageHandler{store: store, logger: logger.With("handler", "storage"), maxListSize: maxListSize}
}

func (h *storageHandler) routes() routes.Group {
	tags := []string{"Storage"}
	key := &openapi.Parameter{Name: "key", In: "path", Required: true, Schema: &openapi.Schema{Type: "string"}}

	return routes.Group{
		Prefix: "/storage",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.list, OpenAPI: &openapi.Operation{
				Summary: "List blobs",
				Tags:    tags,
				Parameters: []*openapi.Parameter{
					openapi.QueryParam("prefix", "string", "Key prefix", false),
					openapi.QueryParam("marker", "string", "Continuation marker from a previous page", false),
					openapi.QueryParam("max_results", "integer", "Page size", false),
				},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Blob page", "BlobList"),
					400: openapi.ResponseRef("BadRequest"),
				},
			}},
			{Method: "GET", Pattern: "/download/{key...}", Handler: h.download, OpenAPI: &openapi.Operation{
				Summary:    "Download a blob",
				Tags:       tags,
				Parameters: []*openapi.Parameter{key},
				Responses: map[int]*openapi.Response{
					200: {Description: "Blob content"},
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "GET", Pattern: "/{key...}", Handler: h.find, OpenAPI: &openapi.Operation{
				Summary:    "Find blob metadata",
				Tags:       tags,
				Parameters: []*openapi.Parameter{key},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Blob metadata", "BlobMeta"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
		},
	}
}

func (h *storageHandler) fail(w http.ResponseWriter, err error) {
	handlers.Fail(w, h.logger, err, storage.MapHTTPStatus)
}

func (h *storageHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	maxResults, err := storage.ParseMaxResults(q.Get("max_results"), h.maxListSize)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	page, err := h.store.List(r.Context(), q.Get("prefix"), q.Get("marker"), maxResults)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, page)
}

func (h *storageHandler) find(w http.ResponseWriter, r *http.Request) {
	meta, err := h.store.Find(r.Context(), r.PathValue("key"))
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, meta)
}

// download streams a blob as an attachment named after its last key
// segment.
func (h *storageHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	blob, err := h.store.Download(r.Context(), key)
	if err != nil {
		h.fail(w, err)
		return
	}
	defer blob.Body.Close()

	header := w.Header()
	header.Set("Content-Type", blob.ContentType)
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	if blob.ContentLength > 0 {
		header.Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, blob.Body); err != nil {
		h.logger.Warn("download interrupted", "key", key, "error", err)
	}
}
