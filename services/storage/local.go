package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/tracing"
)

// LocalStorageService keeps objects as files in one directory.
type LocalStorageService struct {
	dir string
}

func NewLocalStorageService(dir string) (*LocalStorageService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create storage directory %s", dir)
	}
	return &LocalStorageService{dir: dir}, nil
}

func (s *LocalStorageService) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", errors.Wrapf(mailerrors.ErrInvalidRequest, "invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}

func (s *LocalStorageService) Upload(ctx context.Context, key string, data []byte, _ string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "LocalStorageService.Upload")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("key", key)

	path, err := s.path(key)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+".*")
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "failed to write %s", key)
	}
	if err = tmp.Close(); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "failed to write %s", key)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "failed to store %s", key)
	}
	return nil
}

func (s *LocalStorageService) Download(ctx context.Context, key string) ([]byte, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "LocalStorageService.Download")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("key", key)

	path, err := s.path(key)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(mailerrors.ErrNotFound, key)
		}
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "failed to read %s", key)
	}
	return data, nil
}

// Delete removes the object. Deleting a missing key is not an error.
func (s *LocalStorageService) Delete(ctx context.Context, key string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "LocalStorageService.Delete")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("key", key)

	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err = os.Remove(path); err != nil && !os.IsNotExist(err) {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "failed to delete %s", key)
	}
	return nil
}
