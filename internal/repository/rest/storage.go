package rest

import (
	"context"
	"io"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/session"
	"github.com/dom/game-review-catalog/internal/supabase"
)

// uploadCacheControl is the max-age, in seconds, stored with uploaded objects.
const uploadCacheControl = "3600"

type objectStorage struct {
	storage *supabase.StorageClient
}

func NewObjectStorage(client *supabase.Client) *objectStorage {
	return &objectStorage{storage: client.Storage()}
}

func (s *objectStorage) Upload(ctx context.Context, bucket, path string, data io.Reader, contentType string) error {
	return s.storage.Upload(ctx, bucket, path, data, supabase.UploadOptions{
		ContentType:  contentType,
		CacheControl: uploadCacheControl,
	}, session.AccessToken(ctx))
}

func (s *objectStorage) PublicURL(bucket, path string) string {
	return s.storage.PublicURL(bucket, path)
}

func (s *objectStorage) ObjectPath(bucket, publicURL string) (string, bool) {
	return s.storage.ObjectPath(bucket, publicURL)
}

func (s *objectStorage) Remove(ctx context.Context, bucket, path string) error {
	removed, err := s.storage.Remove(ctx, bucket, []string{path}, session.AccessToken(ctx))
	if err != nil {
		if supabase.IsNotFound(err) {
			return domain.ErrNotFound
		}
		return err
	}
	if len(removed) == 0 {
		return domain.ErrNotFound
	}
	return nil
}
