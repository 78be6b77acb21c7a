package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrNotFound is returned when a requested file or object does not exist
var ErrNotFound = errors.New("file not found")

// Store reads input tables and writes rendered outputs
type Store interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Put(ctx context.Context, path string, data []byte, contentType string) error
	List(ctx context.Context, dir string) ([]string, error)
}

const s3Scheme = "s3://"

// IsS3 reports whether path addresses an object in a bucket
func IsS3(path string) bool {
	return strings.HasPrefix(path, s3Scheme)
}

// Router dispatches s3:// paths to an S3 store and everything else to the
// local filesystem. A nil S3 store rejects bucket paths.
type Router struct {
	local Store
	s3    Store
}

// NewRouter creates a store that routes by path scheme
func NewRouter(local, s3 Store) *Router {
	return &Router{local: local, s3: s3}
}

func (r *Router) pick(path string) (Store, error) {
	if !IsS3(path) {
		return r.local, nil
	}
	if r.s3 == nil {
		return nil, errors.New("s3 path given but no S3 store is configured")
	}
	return r.s3, nil
}

// Open opens path on the matching backend
func (r *Router) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	s, err := r.pick(path)
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, path)
}

// Put writes data on the matching backend
func (r *Router) Put(ctx context.Context, path string, data []byte, contentType string) error {
	s, err := r.pick(path)
	if err != nil {
		return err
	}
	return s.Put(ctx, path, data, contentType)
}

// List lists dir on the matching backend
func (r *Router) List(ctx context.Context, dir string) ([]string, error) {
	s, err := r.pick(dir)
	if err != nil {
		return nil, err
	}
	return s.List(ctx, dir)
}
