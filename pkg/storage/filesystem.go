package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/crobbins327/histocartography/pkg/lifecycle"
)

// filesystem stores blobs as files under <root>/<container>. Keys are
// slash-separated paths relative to the container directory.
type filesystem struct {
	dir    string
	logger *slog.Logger
}

func newFilesystem(cfg *Config, logger *slog.Logger) *filesystem {
	return &filesystem{
		dir:    filepath.Join(cfg.Root, cfg.ContainerName),
		logger: logger,
	}
}

func (f *filesystem) Start(lc *lifecycle.Coordinator) error {
	f.logger.Info("starting storage system")

	lc.OnStartup("storage", func(context.Context) error {
		if err := os.MkdirAll(f.dir, 0o755); err != nil {
			return fmt.Errorf("create storage directory: %w", err)
		}
		f.logger.Info("storage directory ready", "dir", f.dir)
		return nil
	})

	return nil
}

func (f *filesystem) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	target := f.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, contextReader{ctx: ctx, r: reader}); err != nil {
		tmp.Close()
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	return nil
}

func (f *filesystem) Download(_ context.Context, key string) (*BlobResult, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	file, err := os.Open(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}

	return &BlobResult{
		Body:          file,
		ContentType:   contentType(key),
		ContentLength: info.Size(),
	}, nil
}

func (f *filesystem) List(ctx context.Context, prefix, marker string, maxResults int32) (*BlobList, error) {
	var all []BlobMeta

	err := filepath.WalkDir(f.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}

		rel, err := filepath.Rel(f.dir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) || (marker != "" && key <= marker) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		all = append(all, meta(key, info))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list blobs %s: %w", prefix, err)
	}

	slices.SortFunc(all, func(a, b BlobMeta) int {
		return strings.Compare(a.Name, b.Name)
	})

	result := &BlobList{Blobs: []BlobMeta{}}
	if n := int(maxResults); n > 0 && len(all) > n {
		all = all[:n]
		result.NextMarker = all[n-1].Name
	}
	result.Blobs = append(result.Blobs, all...)
	return result, nil
}

func (f *filesystem) Find(_ context.Context, key string) (*BlobMeta, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	info, err := os.Stat(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find blob %s: %w", key, err)
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}

	m := meta(key, info)
	return &m, nil
}

func (f *filesystem) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if err := os.Remove(f.path(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

func (f *filesystem) Exists(_ context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	info, err := os.Stat(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("check blob existence %s: %w", key, err)
	}
	return !info.IsDir(), nil
}

func (f *filesystem) path(key string) string {
	return filepath.Join(f.dir, filepath.FromSlash(key))
}

func meta(key string, info fs.FileInfo) BlobMeta {
	return BlobMeta{
		Name:          key,
		ContentType:   contentType(key),
		ContentLength: info.Size(),
		LastModified:  info.ModTime().UTC(),
	}
}

func contentType(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
