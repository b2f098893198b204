// Package supabase is a small REST client for the hosted backend: GoTrue
// auth, PostgREST tables and Storage buckets. Requests made on behalf of a
// signed-in user carry that user's access token so the backend's row-level
// policies apply; anonymous requests carry the anon key.
package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ObserveFunc is called once per completed backend request.
type ObserveFunc func(service, method string, statusCode int, elapsed time.Duration)

// Config holds client configuration.
type Config struct {
	URL        string
	AnonKey    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Observe    ObserveFunc
}

// Client is the backend client.
type Client struct {
	baseURL    string
	anonKey    string
	restURL    string
	authURL    string
	storageURL string
	httpClient *http.Client
	observe    ObserveFunc

	auth    *AuthClient
	storage *StorageClient
}

// New creates a new backend client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("URL is required")
	}
	if cfg.AnonKey == "" {
		return nil, fmt.Errorf("anon key is required")
	}

	baseURL := strings.TrimRight(cfg.URL, "/")
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		baseURL:    baseURL,
		anonKey:    cfg.AnonKey,
		restURL:    baseURL + "/rest/v1",
		authURL:    baseURL + "/auth/v1",
		storageURL: baseURL + "/storage/v1",
		httpClient: httpClient,
		observe:    cfg.Observe,
	}
	c.auth = &AuthClient{client: c}
	c.storage = &StorageClient{client: c}

	return c, nil
}

// Auth returns the auth client.
func (c *Client) Auth() *AuthClient {
	return c.auth
}

// Storage returns the storage client.
func (c *Client) Storage() *StorageClient {
	return c.storage
}

// From starts a query against a table.
func (c *Client) From(table string) *QueryBuilder {
	return &QueryBuilder{
		client:  c,
		table:   table,
		method:  http.MethodGet,
		columns: "*",
		headers: make(map[string]string),
	}
}

// request performs an HTTP request. An empty accessToken falls back to the
// anon key for the Authorization header.
func (c *Client) request(ctx context.Context, service, method, rawURL string, body []byte, headers map[string]string, accessToken string) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	return c.requestStream(ctx, service, method, rawURL, reader, headers, accessToken)
}

func (c *Client) requestStream(ctx context.Context, service, method, rawURL string, body io.Reader, headers map[string]string, accessToken string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	token := accessToken
	if token == "" {
		token = c.anonKey
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(service, method, 0, start)
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	c.record(service, method, resp.StatusCode, start)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	return respBody, resp.StatusCode, nil
}

func (c *Client) record(service, method string, status int, start time.Time) {
	if c.observe != nil {
		c.observe(service, method, status, time.Since(start))
	}
}
