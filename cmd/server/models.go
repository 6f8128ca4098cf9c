package main

import "github.com/wozniakbe/viewswitch"

// PageData is passed to every page template.
type PageData struct {
	Title    string
	Message  string
	Switcher viewswitch.SwitcherLink
}
