package product

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chasmapasal/chasmapasal-api/internal/imaging"
	"github.com/chasmapasal/chasmapasal-api/internal/infra/storage"
)

// Uploader normalizes pictures and puts them in object storage under a
// random key.
type Uploader struct {
	store storage.Storage
	log   *logrus.Logger
}

func NewUploader(store storage.Storage, log *logrus.Logger) *Uploader {
	return &Uploader{store: store, log: log}
}

func (u *Uploader) Store(ctx context.Context, folder string, data []byte) (string, error) {
	img, err := imaging.Normalize(data)
	if err != nil {
		return "", err
	}

	key := folder + "/" + uuid.NewString() + imaging.Extension
	url, err := u.store.Put(ctx, key, imaging.ContentType, img)
	if err != nil {
		return "", err
	}

	u.log.WithFields(logrus.Fields{
		"key":   key,
		"bytes": len(img),
	}).Info("image stored")

	return url, nil
}

// Discard deletes an object best-effort. URLs that were not issued by the
// store, like seeded external links, are left alone.
func (u *Uploader) Discard(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := u.store.Delete(ctx, url); err != nil {
		if errors.Is(err, storage.ErrForeignURL) {
			return
		}
		u.log.WithError(err).WithField("url", url).Warn("failed to delete image")
	}
}
