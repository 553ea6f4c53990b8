// Package handlers writes JSON responses for the API modules.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// ErrorBody is the payload of every failed request.
type ErrorBody struct {
	Error string `json:"error"`
}

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes err as an ErrorBody. Client errors are logged at
// warn, everything else at error.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	level := slog.LevelError
	if status >= 400 && status < 500 {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "request failed", "status", status, "error", err)
	RespondJSON(w, status, ErrorBody{Error: err.Error()})
}

// ErrBadRequest marks a request that could not be read at all. Fail
// answers it with 400 before consulting the domain status map.
var ErrBadRequest = errors.New("bad request")

// Fail responds with the status status(err) picks for err.
func Fail(w http.ResponseWriter, logger *slog.Logger, err error, status func(error) int) {
	code := http.StatusBadRequest
	if !errors.Is(err, ErrBadRequest) {
		code = status(err)
	}
	RespondError(w, logger, code, err)
}

// PathUUID parses the named path value as a UUID.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	v := r.PathValue(name)
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q is not a UUID", ErrBadRequest, name, v)
	}
	return id, nil
}

// DecodeJSON reads the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode body: %v", ErrBadRequest, err)
	}
	return nil
}
