package viewswitch

import "net/url"

// DefaultSwitchPath is where hosts conventionally mount the SwitchHandler.
const DefaultSwitchPath = "/ViewSwitcher/SwitchView"

// SwitcherLink describes the toggle a page shows to change rendering.
type SwitcherLink struct {
	Mobile  bool
	Current string
	Label   string
	Href    string
}

// NewSwitcherLink builds the link that flips pref and returns to currentURL.
func NewSwitcherLink(pref Preference, currentURL, switchPath string) SwitcherLink {
	if switchPath == "" {
		switchPath = DefaultSwitchPath
	}

	mobile := pref == PreferenceMobile
	link := SwitcherLink{Mobile: mobile, Current: "desktop", Label: "Mobile view"}
	if mobile {
		link.Current = "mobile"
		link.Label = "Desktop view"
	}

	q := url.Values{}
	q.Set("mobile", boolString(!mobile))
	q.Set("returnUrl", currentURL)
	link.Href = switchPath + "?" + q.Encode()
	return link
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
