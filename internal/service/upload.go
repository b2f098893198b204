package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Upload is a file attached to a create form.
type Upload struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

// objectPath namespaces uploads by owner and makes every name unique:
// <userID>/<uuid>-<filename>.
func objectPath(userID uuid.UUID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		name = "file"
	}
	return fmt.Sprintf("%s/%s-%s", userID, uuid.New(), name)
}

// attachment uploads files to one bucket and removes them again.
type attachment struct {
	storage repository.ObjectStorage
	bucket  string
	log     logrus.FieldLogger
}

// store uploads f and returns its object path and public URL.
func (a attachment) store(ctx context.Context, userID uuid.UUID, f *Upload) (string, string, error) {
	objPath := objectPath(userID, f.Filename)
	if err := a.storage.Upload(ctx, a.bucket, objPath, f.Data, f.ContentType); err != nil {
		return "", "", &domain.UploadError{Bucket: a.bucket, Path: objPath, Err: err}
	}

	url := a.storage.PublicURL(a.bucket, objPath)
	if url == "" {
		return "", "", &domain.UploadError{Bucket: a.bucket, Path: objPath, Err: errors.New("no public URL for uploaded file")}
	}
	return objPath, url, nil
}

// remove deletes the object behind publicURL. A missing object, or a URL
// that does not point into the bucket, is not an error.
func (a attachment) remove(ctx context.Context, publicURL *string) error {
	if publicURL == nil || *publicURL == "" {
		return nil
	}
	objPath, ok := a.storage.ObjectPath(a.bucket, *publicURL)
	if !ok {
		a.log.WithField("url", *publicURL).Warn("attachment URL is outside the bucket, skipping storage cleanup")
		return nil
	}

	err := a.storage.Remove(ctx, a.bucket, objPath)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("remove %s/%s: %w", a.bucket, objPath, err)
	}
	return nil
}

// orphaned records an uploaded object whose row insert failed. There is no
// compensating delete; the object is left for manual cleanup.
func (a attachment) orphaned(objPath string, cause error) {
	a.log.WithFields(logrus.Fields{
		"bucket": a.bucket,
		"path":   objPath,
	}).WithError(cause).Warn("row insert failed after upload, object orphaned")
}
