package storage

import (
	"context"
	"errors"
)

var ErrForeignURL = errors.New("storage: url does not belong to this store")

// Storage keeps uploaded objects and hands back their public URL.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)

	// Delete removes the object behind a URL previously returned by Put.
	Delete(ctx context.Context, url string) error
}
