package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/snoozedev/snooze/internal/config"
	"github.com/snoozedev/snooze/internal/story"
)

type KeyHandler struct {
	app  *App
	keys config.KeyBindings
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	return &KeyHandler{app: app, keys: cfg.Keys.Bindings}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewLogin, ViewSignup, ViewSubmit:
		return true
	case ViewSearch:
		return kh.app.searchInput.Focused()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "esc":
		return kh.navigateBack()
	case "ctrl+c":
		return kh.app, tea.Quit
	case "enter":
		return kh.handleTextInputEnter()
	case kh.keys.SignupToggle:
		// The default binding is "tab", which doubles as the move-to-
		// results key in search; that meaning wins there.
		if kh.app.view == ViewSearch {
			return kh.focusSearchResults()
		}
		switch kh.app.view {
		case ViewLogin:
			kh.app.view = ViewSignup
			kh.app.err = nil
			kh.app.focusIndex = 0
			resetInputs(kh.app.signupInputs)
			kh.app.signupInputs[0].Focus()
			return kh.app, nil
		case ViewSignup:
			kh.app.enterLogin()
			kh.app.err = nil
			return kh.app, nil
		}
		return kh.moveFocus(1)
	case "tab", "down":
		if kh.app.view == ViewSearch {
			return kh.focusSearchResults()
		}
		return kh.moveFocus(1)
	case "up", "shift+tab":
		if kh.app.view == ViewSearch {
			return kh.delegateToTextInput(msg)
		}
		return kh.moveFocus(-1)
	default:
		return kh.delegateToTextInput(msg)
	}
}

// focusSearchResults hands keyboard focus from the search input to the
// result list, if there is anything to select.
func (kh *KeyHandler) focusSearchResults() (tea.Model, tea.Cmd) {
	if len(kh.app.searchList.Items()) > 0 {
		kh.app.searchInput.Blur()
		kh.app.searchList.Select(0)
	}
	return kh.app, nil
}

// moveFocus cycles focus through the active form's inputs.
func (kh *KeyHandler) moveFocus(delta int) (tea.Model, tea.Cmd) {
	inputs := kh.activeInputs()
	if inputs == nil {
		return kh.app, nil
	}

	kh.app.focusIndex = (kh.app.focusIndex + delta + len(inputs)) % len(inputs)
	for i := range inputs {
		if i == kh.app.focusIndex {
			inputs[i].Focus()
		} else {
			inputs[i].Blur()
		}
	}
	return kh.app, nil
}

func (kh *KeyHandler) activeInputs() []textinput.Model {
	switch kh.app.view {
	case ViewLogin:
		return kh.app.loginInputs
	case ViewSignup:
		return kh.app.signupInputs
	case ViewSubmit:
		return kh.app.submitInputs
	default:
		return nil
	}
}

func (kh *KeyHandler) handleTextInputEnter() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewLogin:
		if kh.app.focusIndex < len(kh.app.loginInputs)-1 {
			return kh.moveFocus(1)
		}
		username := strings.TrimSpace(kh.app.loginInputs[0].Value())
		password := kh.app.loginInputs[1].Value()
		if username == "" || password == "" {
			return kh.app, nil
		}
		kh.app.status = MsgLoggingIn
		return kh.app, kh.app.login(username, password)

	case ViewSignup:
		if kh.app.focusIndex < len(kh.app.signupInputs)-1 {
			return kh.moveFocus(1)
		}
		name := strings.TrimSpace(kh.app.signupInputs[0].Value())
		username := strings.TrimSpace(kh.app.signupInputs[1].Value())
		password := kh.app.signupInputs[2].Value()
		if username == "" || password == "" {
			return kh.app, nil
		}
		kh.app.status = MsgSigningUp
		return kh.app, kh.app.signup(username, password, name)

	case ViewSubmit:
		if kh.app.focusIndex < len(kh.app.submitInputs)-1 {
			return kh.moveFocus(1)
		}
		title := strings.TrimSpace(kh.app.submitInputs[0].Value())
		author := strings.TrimSpace(kh.app.submitInputs[1].Value())
		rawURL := strings.TrimSpace(kh.app.submitInputs[2].Value())
		if title == "" || rawURL == "" {
			return kh.app, nil
		}
		kh.app.status = MsgSubmitting
		return kh.app, kh.app.submitStory(title, author, rawURL)

	case ViewSearch:
		if items := kh.app.searchList.Items(); len(items) > 0 {
			if i, ok := items[0].(storyItem); ok {
				return kh.openReader(i.st, true)
			}
		}
		return kh.app, nil

	default:
		return kh.app, nil
	}
}

func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if inputs := kh.activeInputs(); inputs != nil {
		idx := kh.app.focusIndex
		if idx >= 0 && idx < len(inputs) {
			newInput, cmd := inputs[idx].Update(msg)
			inputs[idx] = newInput
			return kh.app, cmd
		}
		return kh.app, nil
	}

	if kh.app.view == ViewSearch {
		prev := kh.app.searchInput.Value()
		newSearchInput, cmd := kh.app.searchInput.Update(msg)
		kh.app.searchInput = newSearchInput

		newVal := sanitizeSearchInput(kh.app.searchInput.Value())
		if newVal != prev {
			return kh.app, tea.Batch(cmd, kh.app.performSearch(newVal))
		}
		return kh.app, cmd
	}

	return kh.app, nil
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "ctrl+c", kh.keys.Quit:
		// Let the list's filter input swallow plain characters.
		if kh.listFiltering() && key != "ctrl+c" {
			break
		}
		return kh.app, tea.Quit, true
	case "esc":
		if kh.listFiltering() {
			break
		}
		model, cmd := kh.navigateBack()
		return model, cmd, true
	}

	switch kh.app.view {
	case ViewStories, ViewFavorites:
		return kh.handleStoriesCustomKeys(key)
	case ViewReader:
		return kh.handleReaderCustomKeys(key)
	case ViewDeleteConfirm:
		return kh.handleDeleteConfirmKeys(key)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) listFiltering() bool {
	switch kh.app.view {
	case ViewStories, ViewFavorites:
		return kh.app.storyList.FilterState() == list.Filtering
	default:
		return false
	}
}

func (kh *KeyHandler) handleStoriesCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	if kh.listFiltering() {
		return kh.app, nil, false
	}

	switch key {
	case kh.keys.Refresh:
		kh.app.status = MsgLoadingList
		return kh.app, kh.app.loadStories(), true

	case kh.keys.Search:
		model, cmd := kh.enterSearchMode()
		return model, cmd, true

	case kh.keys.Favorites:
		if kh.app.session != nil && kh.app.view != ViewFavorites {
			kh.app.enterFavorites()
		}
		return kh.app, nil, true

	case kh.keys.AllStories:
		if kh.app.view != ViewStories {
			kh.app.enterStories()
		}
		return kh.app, nil, true

	case kh.keys.Submit:
		if kh.app.session != nil {
			kh.app.view = ViewSubmit
			kh.app.err = nil
			kh.app.focusIndex = 0
			resetInputs(kh.app.submitInputs)
			kh.app.submitInputs[0].Focus()
		}
		return kh.app, nil, true

	case kh.keys.Favorite:
		if kh.app.session == nil {
			return kh.app, nil, true
		}
		if i, ok := kh.app.storyList.SelectedItem().(storyItem); ok {
			kh.app.status = MsgToggling
			return kh.app, kh.app.toggleFavorite(i.st), true
		}
		return kh.app, nil, true

	case kh.keys.Delete:
		if kh.app.session == nil {
			return kh.app, nil, true
		}
		if i, ok := kh.app.storyList.SelectedItem().(storyItem); ok && i.own {
			st := i.st
			kh.app.storyToDelete = &st
			kh.app.view = ViewDeleteConfirm
		}
		return kh.app, nil, true

	case kh.keys.Logout:
		if kh.app.session != nil {
			return kh.app, kh.app.logout(), true
		}
		return kh.app, nil, true
	}

	return kh.app, nil, false
}

func (kh *KeyHandler) handleReaderCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	if key == kh.keys.Favorite {
		if kh.app.session != nil && kh.app.currentStory != nil {
			kh.app.status = MsgToggling
			return kh.app, kh.app.toggleFavorite(*kh.app.currentStory), true
		}
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleDeleteConfirmKeys(key string) (tea.Model, tea.Cmd, bool) {
	if key == "enter" {
		if kh.app.storyToDelete != nil {
			kh.app.status = MsgDeleting
			return kh.app, kh.app.deleteStory(*kh.app.storyToDelete), true
		}
	}
	return kh.app, nil, false
}

// delegateToCharm lets Charm handle all keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewStories, ViewFavorites:
		kh.app.storyList, cmd = kh.app.storyList.Update(msg)
		if msg.String() == "enter" && kh.app.storyList.FilterState() != list.Filtering {
			if i, ok := kh.app.storyList.SelectedItem().(storyItem); ok {
				return kh.openReader(i.st, false)
			}
		}
		return kh.app, cmd

	case ViewSearch:
		if !kh.app.searchInput.Focused() {
			switch msg.String() {
			case "tab", "shift+tab":
				kh.app.searchInput.Focus()
				return kh.app, nil
			case "up":
				if len(kh.app.searchList.Items()) > 0 && kh.app.searchList.Index() == 0 {
					kh.app.searchInput.Focus()
					return kh.app, nil
				}
			case "/", "i":
				kh.app.searchInput.Focus()
				return kh.app, nil
			}
		}

		kh.app.searchList, cmd = kh.app.searchList.Update(msg)
		if msg.String() == "enter" && !kh.app.searchInput.Focused() {
			if i, ok := kh.app.searchList.SelectedItem().(storyItem); ok {
				return kh.openReader(i.st, true)
			}
		}
		return kh.app, cmd

	case ViewReader:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

func (kh *KeyHandler) openReader(st story.Story, fromSearch bool) (tea.Model, tea.Cmd) {
	stCopy := st
	kh.app.currentStory = &stCopy
	kh.app.cameFromSearch = fromSearch
	kh.app.view = ViewReader
	kh.app.viewport.SetContent("")
	return kh.app, kh.app.renderStory(st)
}

// navigateBack implements smart back navigation
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewSignup:
		kh.app.enterLogin()
		kh.app.err = nil
		return kh.app, nil

	case ViewSubmit, ViewDeleteConfirm:
		kh.app.storyToDelete = nil
		kh.app.err = nil
		kh.app.view = kh.app.activeCollectionView()
		return kh.app, nil

	case ViewSearch:
		kh.app.searchInput.Reset()
		kh.app.searchList.SetItems([]list.Item{})
		kh.app.view = kh.app.activeCollectionView()
		return kh.app, nil

	case ViewReader:
		kh.app.currentStory = nil
		if kh.app.cameFromSearch {
			kh.app.cameFromSearch = false
			kh.app.view = ViewSearch
			kh.app.searchInput.Blur()
			return kh.app, nil
		}
		kh.app.view = kh.app.activeCollectionView()
		return kh.app, nil

	case ViewFavorites:
		kh.app.enterStories()
		return kh.app, nil

	default:
		return kh.app, tea.Quit
	}
}

// enterSearchMode transitions to search view
func (kh *KeyHandler) enterSearchMode() (tea.Model, tea.Cmd) {
	kh.app.view = ViewSearch
	kh.app.searchInput.Reset()
	kh.app.searchInput.Focus()
	kh.app.searchList.SetItems([]list.Item{})
	return kh.app, nil
}

// sanitizeSearchInput sanitizes and limits search input length
func sanitizeSearchInput(input string) string {
	input = strings.TrimSpace(input)

	if len(input) > 256 {
		input = input[:256]
	}

	input = strings.ReplaceAll(input, "\n", " ")
	input = strings.ReplaceAll(input, "\r", " ")
	input = strings.ReplaceAll(input, "\t", " ")

	for strings.Contains(input, "  ") {
		input = strings.ReplaceAll(input, "  ", " ")
	}

	return strings.TrimSpace(input)
}

// GetHelpForCurrentView returns only our custom help text (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	k := kh.keys

	switch kh.app.view {
	case ViewStories:
		help := []string{k.Refresh + ": refresh", k.Search + ": search"}
		if kh.app.session != nil {
			help = append(help,
				k.Submit+": submit",
				k.Favorite+": favorite",
				k.Favorites+": favorites",
				k.Logout+": logout",
			)
		}
		return help

	case ViewFavorites:
		return []string{
			k.Favorite + ": unfavorite",
			k.AllStories + ": all stories",
			"esc: back",
		}

	case ViewReader:
		if kh.app.session != nil {
			return []string{k.Favorite + ": favorite", "esc: back"}
		}
		return []string{"esc: back"}

	case ViewSearch:
		return []string{"esc: back"}

	case ViewDeleteConfirm:
		return []string{"enter: confirm", "esc: cancel"}

	default:
		return []string{}
	}
}
