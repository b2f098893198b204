// Package web holds the HTML templates and renders pages and fragments.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	layoutFile   = "templates/layout.html"
	fragmentName = "detail-body"
)

// Flash is a one-shot notice shown at the top of the next page.
type Flash struct {
	Kind    string // "success" or "error"
	Message string
}

// Page is the data every page template receives.
type Page struct {
	Title   string
	Session *domain.Session
	Flash   *Flash
	Data    any
}

func (p Page) SignedIn() bool {
	return p.Session != nil
}

// Renderer executes the embedded templates.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Local().Format("02/01/2006 15:04")
	},
	"average": func(avg *float64) string {
		if avg == nil {
			return "-"
		}
		return fmt.Sprintf("%.1f", *avg)
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"field": func(errs map[string]string, name string) string {
		return errs[name]
	},
	"seq": func(from, to int) []int {
		out := make([]int, 0, to-from+1)
		for i := from; i <= to; i++ {
			out = append(out, i)
		}
		return out
	},
}

// New parses every page template together with the layout.
func New() (*Renderer, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		t, err := template.New(path.Base(layoutFile)).Funcs(funcs).ParseFS(templateFS, layoutFile, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[strings.TrimSuffix(path.Base(name), ".html")] = t
	}
	return r, nil
}

// Render writes the named page.
func (r *Renderer) Render(w io.Writer, name string, page Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, path.Base(layoutFile), page); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// DetailFragment renders the body of the game page, as pushed over the
// live channel.
func (r *Renderer) DetailFragment(d *view.Detail) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.pages["detail"].ExecuteTemplate(&buf, fragmentName, d); err != nil {
		return nil, fmt.Errorf("render %s: %w", fragmentName, err)
	}
	return buf.Bytes(), nil
}
