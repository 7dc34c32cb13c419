package tui

import "fmt"

// Canonical short status messages used across the app.
const (
	MsgLoggingIn    = "Logging in…"
	MsgSigningUp    = "Creating account…"
	MsgLoadingList  = "Loading stories…"
	MsgSubmitting   = "Submitting…"
	MsgDeleting     = "Deleting…"
	MsgToggling     = "Updating favorite…"
	MsgToggleBusy   = "Still waiting on the last favorite toggle"
	MsgLoggedOut    = "Logged out"
	MsgStoryDeleted = "Story deleted"
)

func MsgWelcome(name string) string {
	return fmt.Sprintf("Welcome, %s", name)
}

func MsgSubmitted(title string) string {
	return fmt.Sprintf("Submitted '%s'", title)
}

func MsgStoryCount(n int) string {
	if n == 1 {
		return "1 story"
	}
	return fmt.Sprintf("%d stories", n)
}
