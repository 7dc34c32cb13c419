package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snoozedev/snooze/internal/api"
	"github.com/snoozedev/snooze/internal/config"
	"github.com/snoozedev/snooze/internal/session"
	"github.com/snoozedev/snooze/internal/story"
)

// fakeGateway satisfies Gateway without touching the network.
type fakeGateway struct {
	stories    []story.Story
	loginErr   error
	tokenValid bool

	favAdds    []string
	favRemoves []string
}

func (f *fakeGateway) Login(_ context.Context, username, _ string) (*api.User, string, error) {
	if f.loginErr != nil {
		return nil, "", f.loginErr
	}
	return &api.User{Username: username, Name: "Test User"}, "tok-1", nil
}

func (f *fakeGateway) Signup(_ context.Context, username, _, name string) (*api.User, string, error) {
	return &api.User{Username: username, Name: name}, "tok-1", nil
}

func (f *fakeGateway) LoginViaToken(_ context.Context, _, username string) (*api.User, bool, error) {
	if !f.tokenValid {
		return nil, false, nil
	}
	return &api.User{Username: username, Name: "Test User"}, true, nil
}

func (f *fakeGateway) Stories(_ context.Context) ([]story.Story, error) {
	return f.stories, nil
}

func (f *fakeGateway) CreateStory(_ context.Context, _ string, draft story.Draft) (story.Story, error) {
	return story.Story{
		ID:        "s-new",
		Title:     draft.Title,
		Author:    draft.Author,
		URL:       draft.URL,
		Username:  "tester",
		CreatedAt: time.Now(),
	}, nil
}

func (f *fakeGateway) DeleteStory(_ context.Context, _, id string) (story.Story, error) {
	return story.Story{ID: id}, nil
}

func (f *fakeGateway) AddFavorite(_ context.Context, _, _, id string) error {
	f.favAdds = append(f.favAdds, id)
	return nil
}

func (f *fakeGateway) RemoveFavorite(_ context.Context, _, _, id string) error {
	f.favRemoves = append(f.favRemoves, id)
	return nil
}

func newTestApp(gw *fakeGateway) *App {
	return NewApp(gw, nil, config.TestConfig())
}

func newTestSession(gw *fakeGateway) *session.Session {
	user := &api.User{Username: "tester", Name: "Test User"}
	return session.New(user, "tok-1", gw)
}

func testStory(id, title, username string) story.Story {
	return story.Story{
		ID:       id,
		Title:    title,
		URL:      "https://example.com/" + id,
		Username: username,
	}
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestViewStateTransitions(t *testing.T) {
	tests := []struct {
		name         string
		initialView  View
		msg          tea.Msg
		expectedView View
		setupFunc    func(*App, *fakeGateway)
	}{
		{
			name:         "ViewLogin to ViewSignup on Tab",
			initialView:  ViewLogin,
			msg:          tea.KeyMsg{Type: tea.KeyTab},
			expectedView: ViewSignup,
		},
		{
			name:         "ViewSignup to ViewLogin on Escape",
			initialView:  ViewSignup,
			msg:          tea.KeyMsg{Type: tea.KeyEsc},
			expectedView: ViewLogin,
		},
		{
			name:         "ViewStories to ViewSubmit on 'n' when logged in",
			initialView:  ViewStories,
			msg:          runeKey('n'),
			expectedView: ViewSubmit,
			setupFunc: func(a *App, gw *fakeGateway) {
				a.session = newTestSession(gw)
			},
		},
		{
			name:         "ViewStories stays put on 'n' when anonymous",
			initialView:  ViewStories,
			msg:          runeKey('n'),
			expectedView: ViewStories,
		},
		{
			name:         "ViewSubmit to ViewStories on Escape",
			initialView:  ViewSubmit,
			msg:          tea.KeyMsg{Type: tea.KeyEsc},
			expectedView: ViewStories,
		},
		{
			name:         "ViewStories to ViewDeleteConfirm on 'x' for own story",
			initialView:  ViewStories,
			msg:          runeKey('x'),
			expectedView: ViewDeleteConfirm,
			setupFunc: func(a *App, gw *fakeGateway) {
				a.session = newTestSession(gw)
				a.allStories = story.NewCollection([]story.Story{
					testStory("s1", "Mine", "tester"),
				})
				a.refreshStoryItems()
			},
		},
		{
			name:         "ViewStories stays put on 'x' for someone else's story",
			initialView:  ViewStories,
			msg:          runeKey('x'),
			expectedView: ViewStories,
			setupFunc: func(a *App, gw *fakeGateway) {
				a.session = newTestSession(gw)
				a.allStories = story.NewCollection([]story.Story{
					testStory("s1", "Not mine", "somebody"),
				})
				a.refreshStoryItems()
			},
		},
		{
			name:         "ViewDeleteConfirm to ViewStories on Escape",
			initialView:  ViewDeleteConfirm,
			msg:          tea.KeyMsg{Type: tea.KeyEsc},
			expectedView: ViewStories,
		},
		{
			name:         "ViewStories to ViewSearch on 's'",
			initialView:  ViewStories,
			msg:          runeKey('s'),
			expectedView: ViewSearch,
		},
		{
			name:         "ViewSearch to ViewStories on Escape",
			initialView:  ViewSearch,
			msg:          tea.KeyMsg{Type: tea.KeyEsc},
			expectedView: ViewStories,
		},
		{
			name:         "ViewStories to ViewFavorites on 'v' when logged in",
			initialView:  ViewStories,
			msg:          runeKey('v'),
			expectedView: ViewFavorites,
			setupFunc: func(a *App, gw *fakeGateway) {
				a.session = newTestSession(gw)
			},
		},
		{
			name:         "ViewStories stays put on 'v' when anonymous",
			initialView:  ViewStories,
			msg:          runeKey('v'),
			expectedView: ViewStories,
		},
		{
			name:         "ViewFavorites to ViewStories on 'a'",
			initialView:  ViewFavorites,
			msg:          runeKey('a'),
			expectedView: ViewStories,
			setupFunc: func(a *App, gw *fakeGateway) {
				a.session = newTestSession(gw)
			},
		},
		{
			name:         "ViewFavorites to ViewStories on Escape",
			initialView:  ViewFavorites,
			msg:          tea.KeyMsg{Type: tea.KeyEsc},
			expectedView: ViewStories,
			setupFunc: func(a *App, gw *fakeGateway) {
				a.session = newTestSession(gw)
			},
		},
		{
			name:         "ViewStories to ViewReader on Enter",
			initialView:  ViewStories,
			msg:          tea.KeyMsg{Type: tea.KeyEnter},
			expectedView: ViewReader,
			setupFunc: func(a *App, gw *fakeGateway) {
				a.allStories = story.NewCollection([]story.Story{
					testStory("s1", "A Story", "somebody"),
				})
				a.refreshStoryItems()
			},
		},
		{
			name:         "ViewReader to ViewStories on Escape",
			initialView:  ViewReader,
			msg:          tea.KeyMsg{Type: tea.KeyEsc},
			expectedView: ViewStories,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{}
			app := newTestApp(gw)
			app.view = tt.initialView

			if tt.setupFunc != nil {
				tt.setupFunc(app, gw)
			}

			updatedModel, _ := app.Update(tt.msg)
			updatedApp, ok := updatedModel.(*App)
			require.True(t, ok, "model should be *App")

			assert.Equal(t, tt.expectedView, updatedApp.view,
				"expected view to be %v but got %v", tt.expectedView, updatedApp.view)
		})
	}
}

func TestSessionRestoration(t *testing.T) {
	t.Run("restored session lands in stories view", func(t *testing.T) {
		gw := &fakeGateway{}
		app := newTestApp(gw)
		sess := newTestSession(gw)

		updatedModel, cmd := app.Update(sessionRestoredMsg{session: sess})
		updatedApp := updatedModel.(*App)

		assert.Equal(t, ViewStories, updatedApp.view)
		assert.Same(t, sess, updatedApp.session)
		assert.NotNil(t, cmd, "restoring should kick off a story load")
	})

	t.Run("failed restore lands in login view", func(t *testing.T) {
		gw := &fakeGateway{}
		app := newTestApp(gw)

		updatedModel, _ := app.Update(sessionRestoredMsg{})
		updatedApp := updatedModel.(*App)

		assert.Equal(t, ViewLogin, updatedApp.view)
		assert.Nil(t, updatedApp.session)
	})

	t.Run("restore command falls back to anonymous on stale token", func(t *testing.T) {
		gw := &fakeGateway{tokenValid: false}
		app := newTestApp(gw)

		msg := app.restoreSession()()
		restored, ok := msg.(sessionRestoredMsg)
		require.True(t, ok)
		assert.Nil(t, restored.session)
	})
}

func TestLoginFlow(t *testing.T) {
	t.Run("successful login switches to stories", func(t *testing.T) {
		gw := &fakeGateway{}
		app := newTestApp(gw)
		sess := newTestSession(gw)

		updatedModel, cmd := app.Update(loggedInMsg{session: sess})
		updatedApp := updatedModel.(*App)

		assert.Equal(t, ViewStories, updatedApp.view)
		assert.Same(t, sess, updatedApp.session)
		assert.NotNil(t, cmd)
	})

	t.Run("failed login stays on login with error", func(t *testing.T) {
		gw := &fakeGateway{}
		app := newTestApp(gw)
		authErr := &api.AuthError{Op: "login", Message: "bad credentials"}

		updatedModel, _ := app.Update(loggedInMsg{err: authErr})
		updatedApp := updatedModel.(*App)

		assert.Equal(t, ViewLogin, updatedApp.view)
		assert.Equal(t, authErr, updatedApp.err)
		assert.Nil(t, updatedApp.session)
	})
}

func TestLogoutClearsState(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(gw)
	app.session = newTestSession(gw)
	app.view = ViewStories
	app.allStories = story.NewCollection([]story.Story{testStory("s1", "A", "b")})
	app.refreshStoryItems()

	updatedModel, _ := app.Update(loggedOutMsg{})
	updatedApp := updatedModel.(*App)

	assert.Equal(t, ViewLogin, updatedApp.view)
	assert.Nil(t, updatedApp.session)
	assert.Zero(t, updatedApp.allStories.Len())
	assert.Empty(t, updatedApp.storyList.Items())
	assert.Equal(t, MsgLoggedOut, updatedApp.status)
}

func TestStoriesLoaded(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(gw)
	app.view = ViewStories

	stories := []story.Story{
		testStory("s1", "First", "a"),
		testStory("s2", "Second", "b"),
	}

	updatedModel, _ := app.Update(storiesLoadedMsg{stories: stories})
	updatedApp := updatedModel.(*App)

	assert.Equal(t, 2, updatedApp.allStories.Len())
	assert.Len(t, updatedApp.storyList.Items(), 2)
	assert.Equal(t, "2 stories", updatedApp.status)
}

func TestStorySubmitted(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(gw)
	app.session = newTestSession(gw)
	app.view = ViewSubmit
	app.allStories = story.NewCollection([]story.Story{testStory("s1", "Old", "x")})

	newStory := testStory("s2", "Fresh", "tester")
	updatedModel, _ := app.Update(storySubmittedMsg{st: newStory})
	updatedApp := updatedModel.(*App)

	assert.Equal(t, ViewStories, updatedApp.view)
	got := updatedApp.allStories.Stories()
	require.Len(t, got, 2)
	assert.Equal(t, "s2", got[0].ID, "new story should be at the front")
	assert.Equal(t, []story.Story{newStory}, updatedApp.session.OwnStories())
}

func TestStoryDeleted(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(gw)
	app.session = newTestSession(gw)
	app.session.RecordSubmitted(testStory("s1", "Mine", "tester"))
	app.view = ViewDeleteConfirm
	app.allStories = story.NewCollection([]story.Story{
		testStory("s1", "Mine", "tester"),
		testStory("s2", "Other", "x"),
	})
	st := testStory("s1", "Mine", "tester")
	app.storyToDelete = &st

	updatedModel, _ := app.Update(storyDeletedMsg{st: st})
	updatedApp := updatedModel.(*App)

	assert.Equal(t, ViewStories, updatedApp.view)
	assert.Nil(t, updatedApp.storyToDelete)
	assert.False(t, updatedApp.allStories.Contains("s1"))
	assert.True(t, updatedApp.allStories.Contains("s2"))
	assert.Empty(t, updatedApp.session.OwnStories())
}

func TestFavoriteToggleBusy(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(gw)
	app.session = newTestSession(gw)
	app.view = ViewStories

	updatedModel, _ := app.Update(favoriteToggledMsg{id: "s1", err: session.ErrToggleInFlight})
	updatedApp := updatedModel.(*App)

	assert.Equal(t, MsgToggleBusy, updatedApp.status)
	assert.Nil(t, updatedApp.err, "in-flight rejection is not an error")
}

func TestFavoritesSnapshot(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(gw)
	app.session = newTestSession(gw)
	fav := testStory("s1", "Kept", "x")
	require.NoError(t, app.session.ToggleFavorite(context.Background(), fav))
	app.view = ViewStories

	app.enterFavorites()
	require.Equal(t, 1, app.favoritesView.Len())

	// Unfavoriting after the snapshot is taken does not shrink it.
	require.NoError(t, app.session.ToggleFavorite(context.Background(), fav))
	assert.Equal(t, 1, app.favoritesView.Len())

	// Switching away and back rebuilds from the session.
	app.enterStories()
	app.enterFavorites()
	assert.Zero(t, app.favoritesView.Len())
}

func TestStoryItemRendering(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(gw)
	app.session = newTestSession(gw)
	st := testStory("s1", "A Story", "tester")
	require.NoError(t, app.session.ToggleFavorite(context.Background(), st))

	item := app.newStoryItem(st)
	assert.True(t, item.fav)
	assert.True(t, item.own)
	assert.Contains(t, item.Title(), "A Story")
	assert.Contains(t, item.Description(), "example.com")
	assert.Contains(t, item.Description(), "posted by you")
	assert.Equal(t, "A Story", item.FilterValue())
}

func TestSearchResultsPopulateList(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(gw)
	app.view = ViewSearch
	app.allStories = story.NewCollection([]story.Story{
		testStory("s1", "Alpha", "a"),
		testStory("s2", "Beta", "b"),
	})

	updatedModel, _ := app.Update(searchResultsMsg{ids: []string{"s2"}})
	updatedApp := updatedModel.(*App)

	require.Len(t, updatedApp.searchList.Items(), 1)
	item := updatedApp.searchList.Items()[0].(storyItem)
	assert.Equal(t, "s2", item.st.ID)
}
