package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/wozniakbe/viewswitch"
	"github.com/wozniakbe/viewswitch/internal/render"
)

// App holds the collaborators shared by the page and switch handlers.
type App struct {
	engine   *render.Engine
	prefs    *viewswitch.CookieStore
	switcher *viewswitch.SwitchHandler
	detect   bool
	logger   *slog.Logger
}

// NewApp wires the cookie store, switch endpoint and render pipeline.
// The mobile-aware selector is the first and only resolver over views.
func NewApp(cfg Config, views fs.FS, logger *slog.Logger) (*App, error) {
	if _, err := fs.Stat(views, render.DefaultLayout+".html"); err != nil {
		return nil, fmt.Errorf("view tree has no layout: %w", err)
	}

	store := viewswitch.NewCookieStore()
	store.Name = cfg.CookieName
	store.MaxAge = cfg.CookieMaxAge
	store.Secure = cfg.CookieSecure
	if cfg.CookieSecret != "" {
		store.Codec = viewswitch.SignedCodec{Secret: []byte(cfg.CookieSecret), Issuer: cfg.CookieIssuer}
	}

	sw := viewswitch.NewSwitchHandler(store, logger)
	sw.AllowExternalRedirects = cfg.AllowExternalRedirects
	sw.OnError = switchError

	selector := viewswitch.NewSelector(views, viewswitch.WithLogger(logger))
	engine := render.New(views, selector)
	if cfg.DetectUserAgent {
		engine.VaryOn("User-Agent")
	}

	return &App{
		engine:   engine,
		prefs:    store,
		switcher: sw,
		detect:   cfg.DetectUserAgent,
		logger:   logger,
	}, nil
}

// preference returns the stored preference, falling back to User-Agent
// detection when enabled.
func (a *App) preference(r *http.Request) viewswitch.Preference {
	return viewswitch.Effective(a.prefs.Read(r), r.UserAgent(), a.detect)
}

func (a *App) page(view, title, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pref := a.preference(r)
		data := PageData{
			Title:    title,
			Message:  message,
			Switcher: viewswitch.NewSwitcherLink(pref, r.URL.RequestURI(), viewswitch.DefaultSwitchPath),
		}

		if err := a.engine.Render(w, view, pref, data); err != nil {
			writeRenderError(w, a.logger, view, err)
		}
	}
}

// Index handles GET / and GET /Home/Index.
func (a *App) Index() http.HandlerFunc {
	return a.page("Home/Index", "Home Page", "Because the Web is in Motion.")
}

// About handles GET /Home/About.
func (a *App) About() http.HandlerFunc {
	return a.page("Home/About", "About", "")
}

// Contact handles GET /Home/Contact.
func (a *App) Contact() http.HandlerFunc {
	return a.page("Home/Contact", "Contact", "")
}

// SwitchView handles GET and POST /ViewSwitcher/SwitchView.
func (a *App) SwitchView() http.Handler {
	return a.switcher
}
