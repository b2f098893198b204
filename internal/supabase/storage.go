package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const serviceStorage = "storage"

// StorageClient handles Storage bucket operations.
type StorageClient struct {
	client *Client
}

// UploadOptions tunes an upload.
type UploadOptions struct {
	ContentType  string
	CacheControl string
	Upsert       bool
}

// FileObject is a stored object as reported by Storage.
type FileObject struct {
	Name     string `json:"name"`
	BucketID string `json:"bucket_id"`
}

// escapePath escapes each segment of an object path, keeping the separators.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// Upload stores data at bucket/filePath as the owner of accessToken.
func (s *StorageClient) Upload(ctx context.Context, bucket, filePath string, data io.Reader, opts UploadOptions, accessToken string) error {
	urlStr := fmt.Sprintf("%s/object/%s/%s", s.client.storageURL, bucket, escapePath(filePath))

	headers := map[string]string{
		"Content-Type": opts.ContentType,
		"x-upsert":     "false",
	}
	if headers["Content-Type"] == "" {
		headers["Content-Type"] = "application/octet-stream"
	}
	if opts.CacheControl != "" {
		headers["Cache-Control"] = opts.CacheControl
	}
	if opts.Upsert {
		headers["x-upsert"] = "true"
	}

	respBody, statusCode, err := s.client.requestStream(ctx, serviceStorage, http.MethodPost, urlStr, data, headers, accessToken)
	if err != nil {
		return err
	}
	if statusCode >= 400 {
		return parseError(respBody, statusCode)
	}
	return nil
}

// PublicURL returns the public URL of an object in a public bucket. No request
// is made; an empty result means the path could not be addressed.
func (s *StorageClient) PublicURL(bucket, filePath string) string {
	if bucket == "" || filePath == "" {
		return ""
	}
	return fmt.Sprintf("%s/object/public/%s/%s", s.client.storageURL, bucket, escapePath(filePath))
}

// ObjectPath recovers the object path from a public URL of bucket.
func (s *StorageClient) ObjectPath(bucket, publicURL string) (string, bool) {
	return ObjectPathFromURL(bucket, publicURL)
}

// ObjectPathFromURL returns what follows "<bucket>/" in a public object URL.
func ObjectPathFromURL(bucket, publicURL string) (string, bool) {
	marker := "/" + bucket + "/"
	idx := strings.Index(publicURL, marker)
	if idx < 0 {
		return "", false
	}
	escaped := publicURL[idx+len(marker):]
	if escaped == "" {
		return "", false
	}
	p, err := url.PathUnescape(escaped)
	if err != nil {
		return "", false
	}
	return p, true
}

// Remove deletes objects from a bucket and returns the objects actually
// removed. Paths that do not exist are silently skipped by Storage.
func (s *StorageClient) Remove(ctx context.Context, bucket string, paths []string, accessToken string) ([]FileObject, error) {
	body, err := json.Marshal(map[string][]string{"prefixes": paths})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	respBody, statusCode, err := s.client.request(ctx, serviceStorage, http.MethodDelete, s.client.storageURL+"/object/"+bucket, body, nil, accessToken)
	if err != nil {
		return nil, err
	}
	if statusCode >= 400 {
		return nil, parseError(respBody, statusCode)
	}

	var removed []FileObject
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &removed); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return removed, nil
}
