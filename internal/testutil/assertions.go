package testutil

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertRedirect verifies a 303 to the expected path
func AssertRedirect(t *testing.T, resp *http.Response, expectedPath string) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode, "expected a redirect")
	assert.Equal(t, expectedPath, Location(resp), "unexpected redirect target")
}

// AssertPageContains verifies the rendered page has every fragment
func AssertPageContains(t *testing.T, resp *http.Response, fragments ...string) {
	t.Helper()

	body := Body(t, resp)
	for _, f := range fragments {
		assert.Contains(t, body, f, "page is missing %q", f)
	}
}

// AssertFlash verifies the pending one-shot notice stored in the browser
func AssertFlash(t *testing.T, b *Browser, kind, message string) {
	t.Helper()

	raw := b.Cookie("flash")
	require.NotEmpty(t, raw, "no flash pending")
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	require.NoError(t, err, "flash is not base64")

	gotKind, gotMessage, _ := strings.Cut(string(decoded), "\x00")
	assert.Equal(t, kind, gotKind, "unexpected flash kind")
	assert.Contains(t, gotMessage, message, "unexpected flash message")
}

// FormFile is a file part of a multipart form.
type FormFile struct {
	Field    string
	Filename string
	Data     []byte
}

// Multipart encodes fields and files the way a browser submits a form with
// enctype="multipart/form-data".
func Multipart(t *testing.T, fields map[string]string, files ...FormFile) (string, *bytes.Buffer) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		require.NoError(t, err)
		_, err = part.Write(f.Data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return w.FormDataContentType(), body
}
