package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crobbins327/histocartography/pkg/envconf"
	"github.com/crobbins327/histocartography/pkg/middleware"
	"github.com/crobbins327/histocartography/pkg/openapi"
	"github.com/crobbins327/histocartography/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "HISTO_CORS_ENABLED",
	Origins:          "HISTO_CORS_ORIGINS",
	AllowedMethods:   "HISTO_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "HISTO_CORS_ALLOWED_HEADERS",
	AllowCredentials: "HISTO_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "HISTO_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "HISTO_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "HISTO_PAGINATION_MAX_PAGE_SIZE",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "HISTO_OPENAPI_TITLE",
	Description: "HISTO_OPENAPI_DESCRIPTION",
}

// APIConfig is the /api module: its mount path, upload cap and the
// middleware, pagination and document settings it carries.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
	OpenAPI       openapi.Config        `toml:"openapi"`
}

const defaultMaxUploadSize = 50 << 20

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
}

// MaxUploadSizeBytes returns the record-set upload limit, 50MB when unset.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := parseSize(c.MaxUploadSize)
	if err != nil || size <= 0 {
		return defaultMaxUploadSize
	}
	return size
}

// parseSize reads base-1024 sizes such as "50MB", "512 kb" or "1024".
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	split := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if split == -1 {
		split = len(s)
	}

	value, err := strconv.ParseFloat(s[:split], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	unit, ok := sizeUnits[strings.TrimSpace(s[split:])]
	if !ok {
		return 0, fmt.Errorf("unknown size unit in %q", s)
	}
	return int64(value * float64(unit)), nil
}

// Finalize finalizes the API section and its nested configs.
func (c *APIConfig) Finalize() error {
	envconf.Default(&c.BasePath, "/api")
	envconf.Default(&c.MaxUploadSize, "50MB")

	var o envconf.Overrides
	o.String("HISTO_API_BASE_PATH", &c.BasePath)
	o.String("HISTO_API_MAX_UPLOAD_SIZE", &c.MaxUploadSize)
	if err := o.Err(); err != nil {
		return err
	}

	if size, err := parseSize(c.MaxUploadSize); err != nil || size <= 0 {
		return fmt.Errorf("invalid max_upload_size %q", c.MaxUploadSize)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

func (c *APIConfig) Merge(overlay *APIConfig) {
	envconf.Overlay(&c.BasePath, overlay.BasePath)
	envconf.Overlay(&c.MaxUploadSize, overlay.MaxUploadSize)
	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}
