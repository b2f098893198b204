package form

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dom/game-review-catalog/internal/service"
	"github.com/gabriel-vasile/mimetype"
)

// MaxUploadSize bounds a single attached image.
const MaxUploadSize = 10 << 20

// maxMemory is what ParseMultipartForm keeps in memory before spilling
// file parts to disk.
const maxMemory = 32 << 20

// File is an attachment read from a multipart form. ContentType is sniffed
// from the bytes, not taken from the browser.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
	oversize    bool
}

// IsImage reports whether the content looks like an image.
func (f *File) IsImage() bool {
	return f != nil && strings.HasPrefix(f.ContentType, "image/")
}

func (f *File) Upload() *service.Upload {
	if f == nil {
		return nil
	}
	return &service.Upload{
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Data:        bytes.NewReader(f.Data),
	}
}

// parse reads an urlencoded or multipart body into r.Form.
func parse(r *http.Request) error {
	err := r.ParseMultipartForm(maxMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// readFile returns the file posted as field, or nil when none was chosen.
func readFile(r *http.Request, field string) (*File, error) {
	src, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	f := &File{
		Filename:    hdr.Filename,
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}
	if len(data) > MaxUploadSize {
		f.oversize = true
		f.Data = nil
	}
	return f, nil
}

// checkImage validates an optional image attachment.
func checkImage(f *File, field string, fields map[string]string) {
	if f == nil {
		return
	}
	switch {
	case f.oversize:
		fields[field] = fmt.Sprintf("image must be at most %d MB", MaxUploadSize>>20)
	case !f.IsImage():
		fields[field] = "the selected file is not an image"
	}
}
