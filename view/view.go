// Package view maps URL paths to the pages of the NeuroLearn web shell.
package view

import (
	"bytes"
	"context"
	"io"

	"github.com/neurolearn/shell"
	"github.com/valyala/fasthttp"
)

// View renders a page.
type View interface {
	Render(ctx context.Context, w io.Writer) error
}

// Entry maps a path to a named view.
type Entry struct {
	Path string
	Name string
	View View
}

// Table is an ordered list of entries, first matching path wins.
type Table []Entry

// Resolve finds the first entry with exactly the given path.
func (t Table) Resolve(path string) (Entry, bool) {
	for _, e := range t {
		if e.Path == path {
			return e, true
		}
	}

	return Entry{}, false
}

// Mount registers a GET route for every entry of the table.
//
// Paths that are not in the table are left to the router not found handler.
func Mount(r shell.Router, t Table) {
	seen := make(map[string]bool, len(t))

	for _, e := range t {
		if seen[e.Path] {
			continue
		}

		seen[e.Path] = true

		r.Get(e.Path, renderer(e))
	}
}

func renderer(e Entry) shell.Handler {
	return shell.HandlerFunc(func(ctx context.Context, rc *fasthttp.RequestCtx) {
		var buf bytes.Buffer

		if err := e.View.Render(ctx, &buf); err != nil {
			rc.Error("failed to render "+e.Name, fasthttp.StatusInternalServerError)

			return
		}

		rc.SetContentType("text/html; charset=utf-8")
		rc.SetBody(buf.Bytes())
	})
}
