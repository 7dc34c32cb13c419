package tui

type View int

const (
	ViewLogin View = iota
	ViewSignup
	ViewStories
	ViewFavorites
	ViewSubmit
	ViewReader
	ViewDeleteConfirm
	ViewSearch
)

// authenticated reports whether the view sits past the auth forms.
// The forms render errors inline; every other view uses the status bar.
func (v View) authenticated() bool {
	return v != ViewLogin && v != ViewSignup
}
