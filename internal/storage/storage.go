// Package storage holds the object storage drivers for uploaded resume files.
package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

var ErrNotInitialized = errors.New("storage client not initialized")

// ObjectStore is durable blob storage addressed by key.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
	// URL returns the retrieval URL for key. It does not check existence.
	URL(key string) string
}

func joinURL(base string, elem ...string) string {
	var parts []string
	for _, e := range elem {
		parts = append(parts, strings.Split(e, "/")...)
	}
	u, err := url.JoinPath(strings.TrimRight(base, "/"), parts...)
	if err != nil {
		return strings.TrimRight(base, "/") + "/" + strings.Join(elem, "/")
	}
	return u
}
