package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newTestRouter(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	app, err := NewApp(cfg, viewFiles(), testLogger())
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return NewRouter(app, testLogger())
}

// withPreference returns a request carrying a plain preference cookie.
func withPreference(r *http.Request, mobile string) *http.Request {
	r.Header.Set("Cookie", "ViewSwitcher=Mobile="+mobile)
	return r
}

func TestIndex_DefaultView(t *testing.T) {
	router := newTestRouter(t, defaultConfig())

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "desktop rendering of Home/Index") {
		t.Fatalf("expected desktop index, got: %s", body)
	}
	if !strings.Contains(body, "Because the Web is in Motion.") {
		t.Fatalf("expected index message, got: %s", body)
	}
	if !strings.Contains(body, "Displaying desktop view") {
		t.Fatalf("expected switcher link, got: %s", body)
	}
}

func TestIndex_MobilePreference(t *testing.T) {
	router := newTestRouter(t, defaultConfig())

	req := withPreference(httptest.NewRequest("GET", "/Home/Index", nil), "true")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "mobile rendering of Home/Index") {
		t.Fatalf("expected mobile index, got: %s", body)
	}
	if !strings.Contains(body, `class="mobile"`) {
		t.Fatalf("expected mobile layout, got: %s", body)
	}
	if !strings.Contains(body, "mobile=false") {
		t.Fatalf("expected link back to desktop, got: %s", body)
	}
}

func TestAbout_MobilePreferenceFallsBackToDefault(t *testing.T) {
	router := newTestRouter(t, defaultConfig())

	req := withPreference(httptest.NewRequest("GET", "/Home/About", nil), "true")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "additional information") {
		t.Fatalf("expected default about view, got: %s", body)
	}
	if !strings.Contains(body, `class="mobile"`) {
		t.Fatalf("expected mobile layout around default view, got: %s", body)
	}
}

func TestMalformedCookie_TreatedAsUnset(t *testing.T) {
	router := newTestRouter(t, defaultConfig())

	req := withPreference(httptest.NewRequest("GET", "/", nil), "sometimes")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "desktop rendering") {
		t.Fatalf("expected desktop index for malformed cookie")
	}
}

func TestSwitchView_RedirectAndCookie(t *testing.T) {
	router := newTestRouter(t, defaultConfig())

	req := httptest.NewRequest("GET", "/ViewSwitcher/SwitchView?mobile=true&returnUrl=/Home/Index", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/Home/Index" {
		t.Fatalf("expected redirect to /Home/Index, got %s", loc)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "ViewSwitcher" || cookies[0].Value != "Mobile=true" {
		t.Fatalf("expected ViewSwitcher=Mobile=true cookie, got %v", cookies)
	}
}

func TestSwitchView_RoundTrip(t *testing.T) {
	router := newTestRouter(t, defaultConfig())

	for _, tc := range []struct {
		mobile string
		want   string
	}{
		{"true", "mobile rendering"},
		{"false", "desktop rendering"},
	} {
		req := httptest.NewRequest("POST", "/ViewSwitcher/SwitchView",
			strings.NewReader("mobile="+tc.mobile+"&returnUrl=%2FHome%2FIndex"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusFound {
			t.Fatalf("switch: expected 302, got %d", w.Code)
		}

		next := httptest.NewRequest("GET", w.Header().Get("Location"), nil)
		for _, c := range w.Result().Cookies() {
			next.AddCookie(c)
		}
		w = httptest.NewRecorder()
		router.ServeHTTP(w, next)

		if !strings.Contains(w.Body.String(), tc.want) {
			t.Fatalf("mobile=%s: expected %q in body", tc.mobile, tc.want)
		}
	}
}

func TestSwitchView_RejectsExternalURL(t *testing.T) {
	router := newTestRouter(t, defaultConfig())

	req := httptest.NewRequest("GET", "/ViewSwitcher/SwitchView?mobile=true&returnUrl=//evil.example", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var resp APIError
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Code != http.StatusBadRequest || resp.Error == "" {
		t.Fatalf("expected JSON error body, got %+v", resp)
	}
	if resp.RequestID == "" {
		t.Fatal("expected request id in error body")
	}
}

func TestSwitchView_InvalidMobile(t *testing.T) {
	router := newTestRouter(t, defaultConfig())

	req := httptest.NewRequest("GET", "/ViewSwitcher/SwitchView?mobile=perhaps&returnUrl=/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSignedCookie(t *testing.T) {
	cfg := defaultConfig()
	cfg.CookieSecret = "test-secret-key"
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest("GET", "/ViewSwitcher/SwitchView?mobile=true&returnUrl=/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value == "Mobile=true" {
		t.Fatalf("expected signed cookie value, got %v", cookies)
	}

	// A hand-written plain cookie is ignored once signing is on.
	req = withPreference(httptest.NewRequest("GET", "/", nil), "true")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), "desktop rendering") {
		t.Fatal("expected forged plain cookie to be ignored")
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), "mobile rendering") {
		t.Fatal("expected signed cookie to select mobile view")
	}
}

func TestDetectUserAgent(t *testing.T) {
	const iphone = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148"

	cfg := defaultConfig()
	router := newTestRouter(t, cfg)
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("User-Agent", iphone)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), "desktop rendering") {
		t.Fatal("expected detection to be off by default")
	}
	if got := w.Header().Get("Vary"); got != "Cookie" {
		t.Fatalf("expected Vary: Cookie without detection, got %q", got)
	}

	cfg.DetectUserAgent = true
	router = newTestRouter(t, cfg)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), "mobile rendering") {
		t.Fatal("expected iPhone to get mobile view with detection on")
	}
	if got := w.Header().Get("Vary"); got != "Cookie, User-Agent" {
		t.Fatalf("expected Vary to include User-Agent with detection on, got %q", got)
	}

	req = withPreference(httptest.NewRequest("GET", "/", nil), "false")
	req.Header.Set("User-Agent", iphone)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), "desktop rendering") {
		t.Fatal("expected stored desktop preference to beat detection")
	}
}

func TestMissingView_NotFound(t *testing.T) {
	views := fstest.MapFS{
		"Shared/_Layout.html": {Data: []byte(`{{define "layout"}}{{template "content" .}}{{end}}`)},
		"Home/Index.html":     {Data: []byte(`{{define "content"}}index{{end}}`)},
	}
	app, err := NewApp(defaultConfig(), views, testLogger())
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	router := NewRouter(app, testLogger())

	req := httptest.NewRequest("GET", "/Home/Contact", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestNewApp_RequiresLayout(t *testing.T) {
	if _, err := NewApp(defaultConfig(), fstest.MapFS{}, testLogger()); err == nil {
		t.Fatal("expected error for view tree without a layout")
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, defaultConfig())

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]string
	json.NewDecoder(w.Body).Decode(&resp)
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", resp)
	}
}
