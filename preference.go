// Package viewswitch selects between mobile and desktop renderings of a view
// based on a preference the client keeps in a cookie.
package viewswitch

// Preference is the client's requested rendering.
type Preference int

// Preferences. The zero value is PreferenceUnset.
const (
	PreferenceUnset Preference = iota
	PreferenceMobile
	PreferenceDesktop
)

// PreferenceFromBool maps the switch endpoint's mobile flag to a Preference.
func PreferenceFromBool(mobile bool) Preference {
	if mobile {
		return PreferenceMobile
	}
	return PreferenceDesktop
}

// String returns "mobile", "desktop" or "unset".
func (p Preference) String() string {
	switch p {
	case PreferenceMobile:
		return "mobile"
	case PreferenceDesktop:
		return "desktop"
	default:
		return "unset"
	}
}

// IsSet reports whether the client has expressed a preference.
func (p Preference) IsSet() bool {
	return p == PreferenceMobile || p == PreferenceDesktop
}
