package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("stored object not found")

// Object is what a FileStore reports back after a successful Put.
type Object struct {
	Key  string
	URL  string
	Size int64
}

type FileStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (Object, error)
	Delete(ctx context.Context, key string) error
}

// Upload is a file received from a client, opened lazily by the consumer.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}
