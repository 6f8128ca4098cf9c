package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"slices"
	"strings"

	"github.com/wozniakbe/viewswitch"
)

// DefaultLayout is the layout view wrapped around every page.
const DefaultLayout = "Shared/_Layout"

// Engine renders views found by an ordered resolver chain. Resolvers are
// consulted in the order given; put the mobile-aware selector first.
type Engine struct {
	fsys      fs.FS
	resolvers viewswitch.Chain
	layout    string
	funcs     template.FuncMap
	vary      []string
}

// New creates an Engine reading templates from fsys.
func New(fsys fs.FS, resolvers ...viewswitch.Resolver) *Engine {
	return &Engine{
		fsys:      fsys,
		resolvers: viewswitch.Chain(resolvers),
		layout:    DefaultLayout,
		funcs:     template.FuncMap{},
		vary:      []string{"Cookie"},
	}
}

// WithLayout overrides the layout view name. An empty name disables layouts.
func (e *Engine) WithLayout(name string) *Engine {
	e.layout = name
	return e
}

// Funcs adds template functions available to every view.
func (e *Engine) Funcs(funcs template.FuncMap) *Engine {
	for k, v := range funcs {
		e.funcs[k] = v
	}
	return e
}

// VaryOn adds request headers, besides Cookie, that select the variant.
func (e *Engine) VaryOn(headers ...string) *Engine {
	for _, h := range headers {
		h = http.CanonicalHeaderKey(h)
		if !slices.Contains(e.vary, h) && h != "" {
			e.vary = append(e.vary, h)
		}
	}
	return e
}

// Lookup resolves a view name for a preference.
func (e *Engine) Lookup(name string, pref viewswitch.Preference) (viewswitch.View, error) {
	return e.resolvers.Resolve(name, pref)
}

// Render resolves name (and the layout) for pref and writes the result.
// The page is buffered so that a template error can still become a 500.
func (e *Engine) Render(w http.ResponseWriter, name string, pref viewswitch.Preference, data any) error {
	view, err := e.Lookup(name, pref)
	if err != nil {
		return err
	}

	files := []string{view.Path}
	entry := "content"
	if e.layout != "" {
		layout, err := e.Lookup(e.layout, pref)
		if err != nil {
			return fmt.Errorf("layout for %q: %w", name, err)
		}
		files = append([]string{layout.Path}, files...)
		entry = "layout"
	}

	tmpl, err := template.New(name).Funcs(e.funcs).ParseFS(e.fsys, files...)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", view.Path, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, entry, data); err != nil {
		return fmt.Errorf("executing %s: %w", view.Path, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Vary", strings.Join(e.vary, ", "))
	w.WriteHeader(http.StatusOK)
	_, err = buf.WriteTo(w)
	return err
}
