// Package envconf applies defaults, TOML overlays and environment overrides
// to config fields. An empty variable name or an unset variable leaves the
// field untouched.
package envconf

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default sets *dst to v when *dst is the zero value.
func Default[T comparable](dst *T, v T) {
	var zero T
	if *dst == zero {
		*dst = v
	}
}

// Overlay sets *dst to v when v is not the zero value.
func Overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// Duration reports an error naming field when value is not a Go duration.
func Duration(field, value string) error {
	if _, err := time.ParseDuration(value); err != nil {
		return fmt.Errorf("invalid %s: %w", field, err)
	}
	return nil
}

// Overrides applies environment variables and remembers every value that
// failed to parse.
type Overrides struct {
	errs []error
}

func (o *Overrides) lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	v := os.Getenv(name)
	return v, v != ""
}

func (o *Overrides) fail(name, value string, err error) {
	o.errs = append(o.errs, fmt.Errorf("%s=%q: %w", name, value, err))
}

// String overrides a string field.
func (o *Overrides) String(name string, dst *string) {
	if v, ok := o.lookup(name); ok {
		*dst = v
	}
}

// Int overrides an int field.
func (o *Overrides) Int(name string, dst *int) {
	if v, ok := o.lookup(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			o.fail(name, v, err)
			return
		}
		*dst = n
	}
}

// Int32 overrides an int32 field.
func (o *Overrides) Int32(name string, dst *int32) {
	if v, ok := o.lookup(name); ok {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			o.fail(name, v, err)
			return
		}
		*dst = int32(n)
	}
}

// Float overrides a float64 field.
func (o *Overrides) Float(name string, dst *float64) {
	if v, ok := o.lookup(name); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			o.fail(name, v, err)
			return
		}
		*dst = f
	}
}

// Bool overrides a bool field with any strconv.ParseBool spelling.
func (o *Overrides) Bool(name string, dst *bool) {
	if v, ok := o.lookup(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			o.fail(name, v, err)
			return
		}
		*dst = b
	}
}

// List overrides a slice field from a comma separated value, dropping
// blank items.
func (o *Overrides) List(name string, dst *[]string) {
	v, ok := o.lookup(name)
	if !ok {
		return
	}
	var items []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*dst = items
}

// Err joins every parse failure, or returns nil.
func (o *Overrides) Err() error {
	return errors.Join(o.errs...)
}
