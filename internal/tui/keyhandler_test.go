package tui

import (
	"testing"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snoozedev/snooze/internal/story"
)

func TestKeyHandler_QuitKey(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(gw)
	app.view = ViewStories

	_, cmd := app.Update(runeKey('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestKeyHandler_LoginFormFocusCycling(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(gw)
	app.view = ViewLogin

	assert.True(t, app.loginInputs[0].Focused())

	// Enter on the username field advances to the password field.
	updatedModel, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updatedApp := updatedModel.(*App)

	assert.Equal(t, 1, updatedApp.focusIndex)
	assert.False(t, updatedApp.loginInputs[0].Focused())
	assert.True(t, updatedApp.loginInputs[1].Focused())
}

func TestKeyHandler_LoginSubmitRequiresBothFields(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(gw)
	app.view = ViewLogin
	app.focusIndex = 1

	// Empty password: enter on the last field does nothing.
	_, cmd := app.keyHandler.handleTextInputEnter()
	assert.Nil(t, cmd)

	app.loginInputs[0].SetValue("nadia")
	app.loginInputs[1].SetValue("hunter2")

	_, cmd = app.keyHandler.handleTextInputEnter()
	require.NotNil(t, cmd)

	msg := cmd()
	logged, ok := msg.(loggedInMsg)
	require.True(t, ok)
	require.NoError(t, logged.err)
	assert.Equal(t, "nadia", logged.session.Username)
}

func TestKeyHandler_SubmitFormEnterChain(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(gw)
	app.session = newTestSession(gw)
	app.view = ViewSubmit
	app.focusIndex = 0
	app.submitInputs[0].Focus()

	app.submitInputs[0].SetValue("A Story")
	app.submitInputs[1].SetValue("Nadia")
	app.submitInputs[2].SetValue("example.com/post")

	// Two enters walk the remaining fields, the third submits.
	updatedModel, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updatedApp := updatedModel.(*App)
	assert.Equal(t, 1, updatedApp.focusIndex)

	updatedModel, _ = updatedApp.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updatedApp = updatedModel.(*App)
	assert.Equal(t, 2, updatedApp.focusIndex)

	_, cmd := updatedApp.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg := cmd()
	submitted, ok := msg.(storySubmittedMsg)
	require.True(t, ok)
	require.NoError(t, submitted.err)
	assert.Equal(t, "A Story", submitted.st.Title)
	assert.Equal(t, "https://example.com/post", submitted.st.URL,
		"scheme should be added during validation")
}

func TestKeyHandler_SubmitRejectsBadURL(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(gw)
	app.session = newTestSession(gw)
	app.view = ViewSubmit
	app.focusIndex = 2

	app.submitInputs[0].SetValue("A Story")
	app.submitInputs[2].SetValue("not a url <script>")

	_, cmd := app.keyHandler.handleTextInputEnter()
	require.NotNil(t, cmd)

	msg := cmd()
	submitted, ok := msg.(storySubmittedMsg)
	require.True(t, ok)
	assert.Error(t, submitted.err)
}

func TestKeyHandler_FavoriteTogglesSelection(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(gw)
	app.session = newTestSession(gw)
	app.view = ViewStories
	app.allStories = story.NewCollection([]story.Story{testStory("s1", "A", "x")})
	app.refreshStoryItems()

	_, cmd := app.Update(runeKey('f'))
	require.NotNil(t, cmd)

	msg := cmd()
	toggled, ok := msg.(favoriteToggledMsg)
	require.True(t, ok)
	require.NoError(t, toggled.err)
	assert.Equal(t, "s1", toggled.id)
	assert.Equal(t, []string{"s1"}, gw.favAdds)
	assert.True(t, app.session.IsFavorite("s1"))
}

func TestKeyHandler_RefreshRequestsStories(t *testing.T) {
	gw := &fakeGateway{stories: []story.Story{testStory("s1", "A", "x")}}
	app := newTestApp(gw)
	app.view = ViewStories

	_, cmd := app.Update(runeKey('r'))
	require.NotNil(t, cmd)
	assert.Equal(t, MsgLoadingList, app.status)

	msg := cmd()
	loaded, ok := msg.(storiesLoadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.err)
	assert.Len(t, loaded.stories, 1)
}

func TestKeyHandler_LogoutKey(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(gw)
	app.session = newTestSession(gw)
	app.view = ViewStories

	_, cmd := app.Update(runeKey('Q'))
	require.NotNil(t, cmd)

	msg := cmd()
	_, ok := msg.(loggedOutMsg)
	assert.True(t, ok)
}

func TestKeyHandler_SearchTabMovesToResults(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(gw)
	app.view = ViewSearch
	app.searchInput.Focus()
	app.searchList.SetItems([]list.Item{app.newStoryItem(testStory("s1", "A", "x"))})

	updatedModel, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
	updatedApp := updatedModel.(*App)

	assert.False(t, updatedApp.searchInput.Focused(),
		"tab should hand focus to the result list")
	assert.Equal(t, 0, updatedApp.searchList.Index())
}

func TestKeyHandler_SearchTabWithoutResultsKeepsInput(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(gw)
	app.view = ViewSearch
	app.searchInput.Focus()

	updatedModel, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
	updatedApp := updatedModel.(*App)

	assert.True(t, updatedApp.searchInput.Focused(),
		"with no results there is nothing to move to")
}

func TestSanitizeSearchInput(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  hello  ", "hello"},
		{"hello\tworld", "hello world"},
		{"line1\nline2", "line1 line2"},
		{"a    lot   of   space", "a lot of space"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, sanitizeSearchInput(tt.input))
	}
}

func TestKeyHandler_HelpChangesWithSession(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(gw)
	app.view = ViewStories

	help := app.keyHandler.GetHelpForCurrentView()
	assert.Contains(t, help, "r: refresh")
	assert.NotContains(t, help, "n: submit")

	app.session = newTestSession(gw)
	help = app.keyHandler.GetHelpForCurrentView()
	assert.Contains(t, help, "n: submit")
	assert.Contains(t, help, "Q: logout")
}
