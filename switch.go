package viewswitch

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

var (
	// ErrInvalidMobile is returned when the mobile parameter is missing or not a boolean.
	ErrInvalidMobile = errors.New("mobile must be a boolean")
	// ErrUnsafeReturnURL is returned when returnUrl is not a local path.
	ErrUnsafeReturnURL = errors.New("returnUrl must be a local path")
)

// ErrorFunc writes an error response for a failed switch request.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, status int, err error)

func defaultError(w http.ResponseWriter, _ *http.Request, status int, err error) {
	http.Error(w, err.Error(), status)
}

// SwitchHandler stores the requested preference and redirects back.
// It accepts GET and POST with the parameters "mobile" and "returnUrl".
type SwitchHandler struct {
	Store *CookieStore
	// AllowExternalRedirects permits absolute returnUrl values.
	AllowExternalRedirects bool
	OnError                ErrorFunc
	Logger                 *slog.Logger
}

// NewSwitchHandler creates a handler writing to store.
func NewSwitchHandler(store *CookieStore, logger *slog.Logger) *SwitchHandler {
	return &SwitchHandler{Store: store, Logger: logger}
}

func (h *SwitchHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return h.Logger
}

func (h *SwitchHandler) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if h.OnError != nil {
		h.OnError(w, r, status, err)
		return
	}
	defaultError(w, r, status, err)
}

// ServeHTTP validates mobile and returnUrl, writes the cookie and redirects
// with 302 Found.
func (h *SwitchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, http.StatusBadRequest, fmt.Errorf("parsing form: %w", err))
		return
	}

	mobile, err := parseMobile(r.Form.Get("mobile"))
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}

	target, err := h.returnURL(r.Form.Get("returnUrl"))
	if err != nil {
		h.logger().Warn("rejected switch redirect", "returnUrl", r.Form.Get("returnUrl"))
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}

	pref := PreferenceFromBool(mobile)
	if err := h.Switch(w, pref); err != nil {
		h.logger().Error("writing preference cookie failed", "error", err)
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	h.logger().Debug("view preference switched", "preference", pref.String(), "returnUrl", target)
	http.Redirect(w, r, target, http.StatusFound)
}

// Switch writes pref to the response without redirecting.
func (h *SwitchHandler) Switch(w http.ResponseWriter, pref Preference) error {
	store := h.Store
	if store == nil {
		store = NewCookieStore()
	}
	return store.Write(w, pref)
}

// parseMobile accepts only "true" or "false" in any case.
func parseMobile(s string) (bool, error) {
	switch {
	case strings.EqualFold(s, "true"):
		return true, nil
	case strings.EqualFold(s, "false"):
		return false, nil
	default:
		return false, ErrInvalidMobile
	}
}

func (h *SwitchHandler) returnURL(raw string) (string, error) {
	if raw == "" {
		return "/", nil
	}
	if h.AllowExternalRedirects {
		return raw, nil
	}
	if !IsLocalURL(raw) {
		return "", ErrUnsafeReturnURL
	}
	return raw, nil
}

// IsLocalURL reports whether raw is a same-origin absolute path such as
// "/Home/Index?x=1". Scheme-relative ("//host") and backslash forms that
// browsers treat as "//" are rejected.
func IsLocalURL(raw string) bool {
	if !strings.HasPrefix(raw, "/") {
		return false
	}
	if len(raw) > 1 && (raw[1] == '/' || raw[1] == '\\') {
		return false
	}
	if strings.ContainsAny(raw, "\r\n\t") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == "" && u.User == nil
}
