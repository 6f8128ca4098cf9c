package viewswitch

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"
)

// Variant is one physical rendering of a logical view.
type Variant int

const (
	VariantDefault Variant = iota
	VariantMobile
)

// String returns "mobile" or "default".
func (v Variant) String() string {
	if v == VariantMobile {
		return "mobile"
	}
	return "default"
}

// Variants is the set of variants that exist for a view name.
type Variants uint8

const (
	HasDefault Variants = 1 << iota
	HasMobile
)

// Has reports whether v is present in the set.
func (s Variants) Has(v Variant) bool {
	switch v {
	case VariantMobile:
		return s&HasMobile != 0
	default:
		return s&HasDefault != 0
	}
}

// Resolve picks the variant to render for a preference. It returns false
// when neither variant exists so that the caller can try the next resolver.
func Resolve(pref Preference, available Variants) (Variant, bool) {
	if pref == PreferenceMobile && available.Has(VariantMobile) {
		return VariantMobile, true
	}
	if available.Has(VariantDefault) {
		return VariantDefault, true
	}
	return VariantDefault, false
}

// View is a resolved reference to a renderable file.
type View struct {
	Name    string
	Variant Variant
	Path    string
}

// Resolver maps a logical view name to a concrete view. A false result
// means the resolver defers to the next one in the chain.
type Resolver interface {
	ResolveView(name string, pref Preference) (View, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(name string, pref Preference) (View, bool)

// ResolveView calls f(name, pref).
func (f ResolverFunc) ResolveView(name string, pref Preference) (View, bool) {
	return f(name, pref)
}

// Selector resolves views stored in an fs.FS using the mobile naming
// convention: "Home/Index.html" has the mobile variant "Home/Index.Mobile.html".
type Selector struct {
	fsys         fs.FS
	ext          string
	mobileSuffix string
	logger       *slog.Logger
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithExtension sets the view file extension, including the dot.
func WithExtension(ext string) SelectorOption {
	return func(s *Selector) { s.ext = ext }
}

// WithMobileSuffix sets the infix inserted before the extension for mobile views.
func WithMobileSuffix(suffix string) SelectorOption {
	return func(s *Selector) { s.mobileSuffix = suffix }
}

// WithLogger sets the logger used for resolution traces. A nil logger
// keeps the discarding default.
func WithLogger(logger *slog.Logger) SelectorOption {
	return func(s *Selector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSelector creates a Selector over fsys.
func NewSelector(fsys fs.FS, opts ...SelectorOption) *Selector {
	s := &Selector{
		fsys:         fsys,
		ext:          ".html",
		mobileSuffix: ".Mobile",
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Paths returns the default and mobile file paths for a view name.
func (s *Selector) Paths(name string) (def, mobile string) {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	return name + s.ext, name + s.mobileSuffix + s.ext
}

// Available stats both candidate files and reports which exist.
func (s *Selector) Available(name string) Variants {
	def, mobile := s.Paths(name)
	var set Variants
	if s.exists(def) {
		set |= HasDefault
	}
	if s.exists(mobile) {
		set |= HasMobile
	}
	return set
}

func (s *Selector) exists(name string) bool {
	info, err := fs.Stat(s.fsys, name)
	return err == nil && !info.IsDir()
}

// ResolveView implements Resolver.
func (s *Selector) ResolveView(name string, pref Preference) (View, bool) {
	variant, ok := Resolve(pref, s.Available(name))
	if !ok {
		s.logger.Debug("view deferred", "view", name, "preference", pref.String())
		return View{}, false
	}

	def, mobile := s.Paths(name)
	p := def
	if variant == VariantMobile {
		p = mobile
	}
	s.logger.Debug("view resolved", "view", name, "preference", pref.String(), "variant", variant.String(), "path", p)
	return View{Name: name, Variant: variant, Path: p}, true
}

// NotFoundError is returned by Chain when no resolver found a view.
type NotFoundError struct {
	Name  string
	Tried int
}

// Error names the view and how many resolvers were asked.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("view %q not found by %d resolver(s)", e.Name, e.Tried)
}

// IsNotFound reports whether err is a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Chain is an ordered list of resolvers. The first resolver to answer wins.
type Chain []Resolver

// Resolve walks the chain in order.
func (c Chain) Resolve(name string, pref Preference) (View, error) {
	for _, r := range c {
		if v, ok := r.ResolveView(name, pref); ok {
			return v, nil
		}
	}
	return View{}, &NotFoundError{Name: name, Tried: len(c)}
}
