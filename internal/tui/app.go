package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/snoozedev/snooze/internal/api"
	"github.com/snoozedev/snooze/internal/config"
	"github.com/snoozedev/snooze/internal/credentials"
	"github.com/snoozedev/snooze/internal/debuglog"
	"github.com/snoozedev/snooze/internal/search"
	"github.com/snoozedev/snooze/internal/session"
	"github.com/snoozedev/snooze/internal/story"
	"github.com/snoozedev/snooze/internal/validation"
)

// Gateway is everything the app needs from the remote service. It is
// satisfied by *api.Client and by fakes in tests.
type Gateway interface {
	Login(ctx context.Context, username, password string) (*api.User, string, error)
	Signup(ctx context.Context, username, password, name string) (*api.User, string, error)
	LoginViaToken(ctx context.Context, token, username string) (*api.User, bool, error)
	Stories(ctx context.Context) ([]story.Story, error)
	CreateStory(ctx context.Context, token string, draft story.Draft) (story.Story, error)
	DeleteStory(ctx context.Context, token, id string) (story.Story, error)
	AddFavorite(ctx context.Context, token, username, id string) error
	RemoveFavorite(ctx context.Context, token, username, id string) error
}

// App owns all client state: the session, the two story collections and
// the active view. There are no package-level globals; tests construct
// as many isolated Apps as they need.
type App struct {
	config       *config.Config
	gateway      Gateway
	creds        *credentials.Store
	searchEngine *search.Engine
	urlValidator *validation.StoryURLValidator
	keyHandler   *KeyHandler

	storyList   list.Model
	searchList  list.Model
	searchInput textinput.Model
	viewport    viewport.Model

	loginInputs  []textinput.Model
	signupInputs []textinput.Model
	submitInputs []textinput.Model
	focusIndex   int

	view           View
	session        *session.Session
	allStories     *story.Collection
	favoritesView  *story.Collection
	currentStory   *story.Story
	storyToDelete  *story.Story
	cameFromSearch bool

	width  int
	height int

	err    error
	status string

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

func NewApp(gateway Gateway, creds *credentials.Store, cfg *config.Config) *App {
	storyList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	storyList.Title = "› stories"
	storyList.SetShowStatusBar(false)
	storyList.SetFilteringEnabled(true)

	searchList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	searchList.Title = "› search results"
	searchList.SetShowStatusBar(false)
	searchList.SetFilteringEnabled(false)
	searchList.SetShowHelp(false)

	si := textinput.New()
	si.Placeholder = "Search stories…"

	engine, err := search.NewEngine()
	if err != nil {
		debuglog.Errorf("search engine unavailable: %v", err)
		engine = nil
	}

	app := &App{
		config:        cfg,
		gateway:       gateway,
		creds:         creds,
		searchEngine:  engine,
		urlValidator:  validation.NewStoryURLValidator(),
		storyList:     storyList,
		searchList:    searchList,
		searchInput:   si,
		viewport:      viewport.New(0, 0),
		loginInputs:   newLoginInputs(),
		signupInputs:  newSignupInputs(),
		submitInputs:  newSubmitInputs(),
		view:          ViewLogin,
		allStories:    story.NewCollection(nil),
		favoritesView: story.NewCollection(nil),
	}

	app.keyHandler = NewKeyHandler(app, cfg)
	app.loginInputs[0].Focus()

	return app
}

func newLoginInputs() []textinput.Model {
	username := textinput.New()
	username.Placeholder = "username"

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return []textinput.Model{username, password}
}

func newSignupInputs() []textinput.Model {
	name := textinput.New()
	name.Placeholder = "name"

	username := textinput.New()
	username.Placeholder = "username"

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return []textinput.Model{name, username, password}
}

func newSubmitInputs() []textinput.Model {
	title := textinput.New()
	title.Placeholder = "title"

	author := textinput.New()
	author.Placeholder = "author"

	url := textinput.New()
	url.Placeholder = "url"

	return []textinput.Model{title, author, url}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.restoreSession(),
		tea.EnterAltScreen,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.storyList.SetSize(msg.Width, msg.Height-3)
		searchListHeight := msg.Height - 10
		if searchListHeight < 5 {
			searchListHeight = 5
		}
		a.searchList.SetSize(msg.Width, searchListHeight)
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - 3

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case sessionRestoredMsg:
		if msg.session != nil {
			a.session = msg.session
			a.enterStories()
			a.status = MsgWelcome(a.session.Username)
			return a, a.loadStories()
		}
		a.enterLogin()

	case loggedInMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.session = msg.session
		a.status = MsgWelcome(a.session.Username)
		a.enterStories()
		return a, a.loadStories()

	case loggedOutMsg:
		if msg.err != nil {
			debuglog.Warnf("clearing credentials: %v", msg.err)
		}
		a.session = nil
		a.allStories = story.NewCollection(nil)
		a.favoritesView = story.NewCollection(nil)
		a.storyList.SetItems([]list.Item{})
		a.status = MsgLoggedOut
		a.enterLogin()

	case storiesLoadedMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.allStories = story.NewCollection(msg.stories)
		if a.view == ViewStories {
			a.refreshStoryItems()
		}
		a.status = MsgStoryCount(a.allStories.Len())
		a.reindexSearch()

	case storySubmittedMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.allStories.Prepend(msg.st)
		if a.session != nil {
			a.session.RecordSubmitted(msg.st)
		}
		a.view = ViewStories
		a.refreshStoryItems()
		a.status = MsgSubmitted(msg.st.Title)
		a.reindexSearch()

	case storyDeletedMsg:
		if msg.err != nil {
			a.err = msg.err
			a.storyToDelete = nil
			a.view = a.activeCollectionView()
			return a, nil
		}
		a.err = nil
		if a.activeCollectionView() == ViewFavorites {
			a.favoritesView.Remove(msg.st.ID)
		} else {
			a.allStories.Remove(msg.st.ID)
		}
		if a.session != nil {
			a.session.RecordDeleted(msg.st.ID)
		}
		a.storyToDelete = nil
		a.view = a.activeCollectionView()
		a.refreshStoryItems()
		a.status = MsgStoryDeleted
		a.reindexSearch()

	case favoriteToggledMsg:
		if msg.err != nil {
			if msg.err == session.ErrToggleInFlight {
				a.status = MsgToggleBusy
			} else {
				a.err = msg.err
			}
			return a, nil
		}
		a.err = nil
		// The favorites view stays a snapshot; only markers refresh.
		a.refreshStoryItems()

	case storyRenderedMsg:
		if a.view == ViewReader {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
		}

	case searchResultsMsg:
		if a.view == ViewSearch {
			items := make([]list.Item, 0, len(msg.ids))
			for _, id := range msg.ids {
				for _, st := range a.allStories.Stories() {
					if st.ID == id {
						items = append(items, a.newStoryItem(st))
						break
					}
				}
			}
			a.searchList.SetItems(items)
		}

	case errorMsg:
		a.err = msg.err
	}

	switch a.view {
	case ViewStories, ViewFavorites:
		newListModel, cmd := a.storyList.Update(msg)
		a.storyList = newListModel
		cmds = append(cmds, cmd)
	case ViewReader:
		switch msg.(type) {
		case tea.KeyMsg, tea.WindowSizeMsg, tea.MouseMsg:
			newViewport, cmd := a.viewport.Update(msg)
			a.viewport = newViewport
			cmds = append(cmds, cmd)
		}
	case ViewSearch:
		newSearchInput, cmd := a.searchInput.Update(msg)
		a.searchInput = newSearchInput
		cmds = append(cmds, cmd)

		newSearchList, listCmd := a.searchList.Update(msg)
		a.searchList = newSearchList
		cmds = append(cmds, listCmd)
	}

	return a, tea.Batch(cmds...)
}

// enterLogin moves to the anonymous state and resets both auth forms.
func (a *App) enterLogin() {
	a.view = ViewLogin
	a.focusIndex = 0
	resetInputs(a.loginInputs)
	resetInputs(a.signupInputs)
	a.loginInputs[0].Focus()
}

// enterStories moves to the all-stories view.
func (a *App) enterStories() {
	a.view = ViewStories
	a.storyList.Title = "› stories"
	a.refreshStoryItems()
}

// enterFavorites rebuilds the favorites snapshot from the session and
// shows it. The snapshot does not track later toggles; switching back
// and forth refreshes it.
func (a *App) enterFavorites() {
	if a.session == nil {
		return
	}
	a.favoritesView = story.NewCollection(a.session.Favorites())
	a.view = ViewFavorites
	a.storyList.Title = "› favorites"
	a.refreshStoryItems()
}

func resetInputs(inputs []textinput.Model) {
	for i := range inputs {
		inputs[i].Reset()
		inputs[i].Blur()
	}
}

// activeCollectionView maps sub-views (reader, modal, search) back to
// the collection view beneath them.
func (a *App) activeCollectionView() View {
	if a.storyList.Title == "› favorites" {
		return ViewFavorites
	}
	return ViewStories
}

func (a *App) refreshStoryItems() {
	collection := a.allStories
	if a.view == ViewFavorites {
		collection = a.favoritesView
	}
	stories := collection.Stories()
	items := make([]list.Item, len(stories))
	for i, st := range stories {
		items[i] = a.newStoryItem(st)
	}
	a.storyList.SetItems(items)
}

func (a *App) newStoryItem(st story.Story) storyItem {
	item := storyItem{st: st, maxTitle: a.config.UI.MaxTitle}
	if a.session != nil {
		item.fav = a.session.IsFavorite(st.ID)
		item.own = st.Username == a.session.Username
	}
	return item
}

func (a *App) reindexSearch() {
	if a.searchEngine == nil {
		return
	}
	if err := a.searchEngine.Reindex(a.allStories.Stories()); err != nil {
		debuglog.Warnf("reindexing stories: %v", err)
	}
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > 100 {
		wordWrapWidth = 100
	}
	if wordWrapWidth < 40 {
		wordWrapWidth = 40
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) View() string {
	var content string

	switch a.view {
	case ViewLogin:
		content = a.renderAuthForm("› log in", a.loginInputs,
			"Enter: next/submit • Tab: sign up instead • Ctrl+C: quit")
	case ViewSignup:
		content = a.renderAuthForm("› sign up", a.signupInputs,
			"Enter: next/submit • Tab: log in instead • Ctrl+C: quit")
	case ViewStories, ViewFavorites:
		if len(a.storyList.Items()) == 0 {
			content = lipgloss.NewStyle().
				Width(a.width).
				Height(a.height-3).
				Align(lipgloss.Center, lipgloss.Center).
				Render(a.emptyMessage())
		} else {
			content = a.storyList.View()
		}
	case ViewSubmit:
		content = a.renderAuthForm("› submit story", a.submitInputs,
			"Enter: next/submit • Esc: cancel")
	case ViewReader:
		content = a.viewport.View()
	case ViewDeleteConfirm:
		content = a.renderDeleteConfirm()
	case ViewSearch:
		content = a.renderSearch()
	}

	statusBar := a.renderStatusBar()
	if statusBar != "" {
		separatorWidth := a.width - 2
		if separatorWidth < 0 {
			separatorWidth = 0
		}
		separator := lipgloss.NewStyle().
			Foreground(MutedColor).
			Render("─" + strings.Repeat("─", separatorWidth))

		return lipgloss.JoinVertical(lipgloss.Top, content, separator, statusBar)
	}

	return content
}

func (a *App) emptyMessage() string {
	if a.view == ViewFavorites {
		return HelpStyle.Render("No favorites yet — press '" +
			a.config.Keys.Bindings.Favorite + "' on a story to mark it")
	}
	return HelpStyle.Render("No stories loaded — press '" +
		a.config.Keys.Bindings.Refresh + "' to refresh")
}

func (a *App) renderAuthForm(header string, inputs []textinput.Model, help string) string {
	rows := []string{TitleStyle.Render(header), ""}
	for i := range inputs {
		rows = append(rows, inputs[i].View())
	}
	rows = append(rows, "")
	if a.err != nil {
		rows = append(rows, lipgloss.NewStyle().Foreground(ErrorColor).Render(
			truncateEnd(a.err.Error(), a.width-4)))
		rows = append(rows, "")
	}
	rows = append(rows, HelpStyle.Render(help))

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height-3).
		Align(lipgloss.Center, lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, rows...))
}

func (a *App) renderDeleteConfirm() string {
	title := "Unknown story"
	if a.storyToDelete != nil {
		title = a.storyToDelete.Title
	}

	modalWidth := (a.width * 4) / 5
	if modalWidth < 20 {
		modalWidth = a.width
	}
	title = truncateEnd(title, modalWidth-4)

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height-3).
		Align(lipgloss.Center, lipgloss.Center).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Center,
				lipgloss.NewStyle().
					Foreground(ErrorColor).
					Bold(true).
					Render("⚠ Delete Story"),
				"",
				lipgloss.NewStyle().
					Foreground(TextColor).
					Width(modalWidth).
					Align(lipgloss.Center).
					Render("Delete this story?"),
				"",
				lipgloss.NewStyle().
					Foreground(AccentColor).
					Bold(true).
					Width(modalWidth).
					Align(lipgloss.Center).
					Render(title),
				"",
				"",
				HelpStyle.Render("Enter: confirm • Esc: cancel"),
			),
		)
}

func (a *App) renderSearch() string {
	searchInputWidth := a.width - 8
	if searchInputWidth < 10 {
		searchInputWidth = a.width - 4
	}
	a.searchInput.Width = searchInputWidth

	inputBorderColor := MutedColor
	if a.searchInput.Focused() {
		inputBorderColor = AccentColor
	}

	searchInput := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(inputBorderColor).
		Padding(0, 1).
		Width(searchInputWidth + 4).
		Render(a.searchInput.View())

	helpText := ""
	if a.searchInput.Focused() {
		helpText = "Type to search • Tab/↓: results • Esc: back"
	} else if len(a.searchList.Items()) > 0 {
		helpText = "↑↓: navigate • Enter: open • Tab/↑: search box • Esc: back"
	} else {
		helpText = "No results found • Tab/↑: search box • Esc: back"
	}

	searchContent := lipgloss.JoinVertical(
		lipgloss.Top,
		HeaderStyle.Render("› search"),
		"",
		searchInput,
		HelpStyle.Render(helpText),
		"",
		a.searchList.View(),
	)

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height - 3).
		MaxHeight(a.height - 3).
		Render(searchContent)
}

func (a *App) renderStatusBar() string {
	if a.err != nil && a.view.authenticated() {
		errorMsg := lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true).
			Render(fmt.Sprintf("✗ %v", a.err))

		return lipgloss.NewStyle().
			Width(a.width).
			Padding(0, 1).
			Render(errorMsg)
	}

	parts := a.keyHandler.GetHelpForCurrentView()
	text := strings.Join(parts, " • ")
	if a.status != "" {
		text = a.status + "  " + HelpStyle.Render(text)
	} else {
		text = HelpStyle.Render(text)
	}

	if text == "" {
		return ""
	}
	return lipgloss.NewStyle().
		Width(a.width).
		Padding(0, 1).
		Render(text)
}

type storyItem struct {
	st       story.Story
	fav      bool
	own      bool
	maxTitle int
}

func (i storyItem) Title() string {
	title := truncateEnd(i.st.Title, i.maxTitle)
	if i.fav {
		return FavoriteStyle.Render("★ ") + title
	}
	return title
}

func (i storyItem) Description() string {
	parts := []string{"(" + i.st.Hostname() + ")"}
	if i.st.Author != "" {
		parts = append(parts, "by "+i.st.Author)
	}
	who := "posted by " + i.st.Username
	if i.own {
		who = "posted by you"
	}
	parts = append(parts, who)

	desc := strings.Join(parts, " • ")
	timeStr := ""
	if !i.st.CreatedAt.IsZero() {
		timeStr = TimeStyle.Render(" • " + i.st.CreatedAt.Format("Jan 2, 15:04"))
	}

	return lipgloss.NewStyle().
		Foreground(MutedColor).
		Render(desc) + timeStr
}

func (i storyItem) FilterValue() string { return i.st.Title }

type sessionRestoredMsg struct {
	session *session.Session
}

type loggedInMsg struct {
	session *session.Session
	err     error
}

type loggedOutMsg struct {
	err error
}

type storiesLoadedMsg struct {
	stories []story.Story
	err     error
}

type storySubmittedMsg struct {
	st  story.Story
	err error
}

type storyDeletedMsg struct {
	st  story.Story
	err error
}

type favoriteToggledMsg struct {
	id  string
	err error
}

type storyRenderedMsg struct {
	content string
}

type searchResultsMsg struct {
	ids []string
}

type errorMsg struct {
	err error
}
