package viewswitch

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName is the conventional name of the preference cookie.
	CookieName = "ViewSwitcher"
	// MobileKey is the sub-key holding the string-encoded boolean.
	MobileKey = "Mobile"
)

// Codec converts a Preference to and from a cookie value. Decode never
// fails: anything it cannot understand is PreferenceUnset.
type Codec interface {
	Encode(p Preference) (string, error)
	Decode(value string) Preference
}

func encodeFlag(p Preference) (string, error) {
	switch p {
	case PreferenceMobile:
		return "true", nil
	case PreferenceDesktop:
		return "false", nil
	default:
		return "", fmt.Errorf("encode preference %s: %w", p, ErrUnsetPreference)
	}
}

func decodeFlag(s string) Preference {
	switch {
	case strings.EqualFold(s, "true"):
		return PreferenceMobile
	case strings.EqualFold(s, "false"):
		return PreferenceDesktop
	default:
		return PreferenceUnset
	}
}

// ErrUnsetPreference is returned when asked to persist PreferenceUnset.
var ErrUnsetPreference = errors.New("preference is unset")

// PlainCodec stores the flag as a sub-keyed value, "Mobile=true".
// Other sub-keys in the value are ignored on decode.
type PlainCodec struct{}

// Encode returns "Mobile=true" or "Mobile=false".
func (PlainCodec) Encode(p Preference) (string, error) {
	flag, err := encodeFlag(p)
	if err != nil {
		return "", err
	}
	return MobileKey + "=" + flag, nil
}

// Decode reads the Mobile sub-key. The exact key wins; otherwise keys that
// differ only in case must all agree, or the value is unset.
func (PlainCodec) Decode(value string) Preference {
	values, err := url.ParseQuery(value)
	if err != nil {
		return PreferenceUnset
	}
	if v, ok := values[MobileKey]; ok {
		if len(v) == 0 {
			return PreferenceUnset
		}
		return decodeFlag(v[0])
	}

	found := PreferenceUnset
	for k, v := range values {
		if !strings.EqualFold(k, MobileKey) || len(v) == 0 {
			continue
		}
		p := decodeFlag(v[0])
		if p == PreferenceUnset || (found != PreferenceUnset && p != found) {
			return PreferenceUnset
		}
		found = p
	}
	return found
}

// SignedCodec stores the flag as an HS256 token so that a client cannot
// hand-edit the cookie without the server noticing. A token that fails
// verification decodes to PreferenceUnset.
type SignedCodec struct {
	Secret []byte
	Issuer string
}

// Encode signs the flag as an HS256 token carrying a Mobile claim.
func (c SignedCodec) Encode(p Preference) (string, error) {
	flag, err := encodeFlag(p)
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{MobileKey: flag}
	if c.Issuer != "" {
		claims["iss"] = c.Issuer
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.Secret)
	if err != nil {
		return "", fmt.Errorf("signing preference: %w", err)
	}
	return s, nil
}

// Decode verifies the token and reads its Mobile claim.
func (c SignedCodec) Decode(value string) Preference {
	if value == "" {
		return PreferenceUnset
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if c.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.Issuer))
	}

	token, err := jwt.Parse(value, func(t *jwt.Token) (any, error) {
		return c.Secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return PreferenceUnset
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return PreferenceUnset
	}
	flag, _ := claims[MobileKey].(string)
	return decodeFlag(flag)
}

// CookieStore reads and writes the preference cookie.
type CookieStore struct {
	Name     string
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
	Codec    Codec
}

// NewCookieStore returns a store using the conventional cookie name, path "/",
// a session lifetime and the plain codec.
func NewCookieStore() *CookieStore {
	return &CookieStore{
		Name:     CookieName,
		Path:     "/",
		HTTPOnly: true,
		SameSite: http.SameSiteLaxMode,
		Codec:    PlainCodec{},
	}
}

func (s *CookieStore) name() string {
	if s.Name == "" {
		return CookieName
	}
	return s.Name
}

func (s *CookieStore) codec() Codec {
	if s.Codec == nil {
		return PlainCodec{}
	}
	return s.Codec
}

// Read returns the stored preference. A missing or malformed cookie is unset.
func (s *CookieStore) Read(r *http.Request) Preference {
	c, err := r.Cookie(s.name())
	if err != nil {
		return PreferenceUnset
	}
	return s.codec().Decode(c.Value)
}

// Write sets the preference cookie on the response.
func (s *CookieStore) Write(w http.ResponseWriter, p Preference) error {
	value, err := s.codec().Encode(p)
	if err != nil {
		return err
	}
	http.SetCookie(w, s.cookie(value, s.MaxAge))
	return nil
}

// Clear expires the preference cookie.
func (s *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie("", -1))
}

func (s *CookieStore) cookie(value string, maxAge int) *http.Cookie {
	p := s.Path
	if p == "" {
		p = "/"
	}
	return &http.Cookie{
		Name:     s.name(),
		Value:    value,
		Path:     p,
		Domain:   s.Domain,
		MaxAge:   maxAge,
		Secure:   s.Secure,
		HttpOnly: s.HTTPOnly,
		SameSite: s.SameSite,
	}
}
