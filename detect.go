package viewswitch

import "strings"

var mobileMarkers = []string{
	"Mobi",
	"Android",
	"iPhone",
	"iPad",
	"iPod",
	"Windows Phone",
	"BlackBerry",
	"Opera Mini",
	"IEMobile",
	"Kindle",
	"Silk/",
}

// DetectUserAgent guesses a preference from a User-Agent header.
// It never returns PreferenceDesktop; an unknown agent is unset.
func DetectUserAgent(userAgent string) Preference {
	for _, m := range mobileMarkers {
		if strings.Contains(userAgent, m) {
			return PreferenceMobile
		}
	}
	return PreferenceUnset
}

// Effective combines a stored preference with device detection. The stored
// value always wins over detection.
func Effective(stored Preference, userAgent string, detect bool) Preference {
	if stored.IsSet() || !detect {
		return stored
	}
	return DetectUserAgent(userAgent)
}
