package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/snoozedev/snooze/internal/debuglog"
	"github.com/snoozedev/snooze/internal/session"
	"github.com/snoozedev/snooze/internal/story"
)

const requestTimeout = 30 * time.Second

// wrapErr prefixes a gateway failure with the user action that
// triggered it; the typed failure stays reachable through errors.As.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// restoreSession tries to resume the previous login from the
// credentials store. Every failure path lands in the anonymous state;
// a broken store or a stale token is never fatal.
func (a *App) restoreSession() tea.Cmd {
	return func() tea.Msg {
		if a.creds == nil {
			return sessionRestoredMsg{}
		}

		saved, ok, err := a.creds.TryRestore()
		if err != nil {
			debuglog.Warnf("reading saved credentials: %v", err)
			return sessionRestoredMsg{}
		}
		if !ok {
			return sessionRestoredMsg{}
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		user, valid, err := a.gateway.LoginViaToken(ctx, saved.Token, saved.Username)
		if err != nil {
			debuglog.Warnf("restoring session for %q: %v", saved.Username, err)
			return sessionRestoredMsg{}
		}
		if !valid {
			debuglog.Infof("saved token for %q no longer valid", saved.Username)
			if err := a.creds.Clear(); err != nil {
				debuglog.Warnf("clearing stale credentials: %v", err)
			}
			return sessionRestoredMsg{}
		}

		return sessionRestoredMsg{session: session.New(user, saved.Token, a.gateway)}
	}
}

func (a *App) login(username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		user, token, err := a.gateway.Login(ctx, username, password)
		if err != nil {
			return loggedInMsg{err: err}
		}

		a.saveCredentials(token, user.Username)
		return loggedInMsg{session: session.New(user, token, a.gateway)}
	}
}

func (a *App) signup(username, password, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		user, token, err := a.gateway.Signup(ctx, username, password, name)
		if err != nil {
			return loggedInMsg{err: err}
		}

		a.saveCredentials(token, user.Username)
		return loggedInMsg{session: session.New(user, token, a.gateway)}
	}
}

func (a *App) saveCredentials(token, username string) {
	if a.creds == nil {
		return
	}
	if err := a.creds.Save(token, username); err != nil {
		debuglog.Warnf("saving credentials for %q: %v", username, err)
	}
}

func (a *App) logout() tea.Cmd {
	return func() tea.Msg {
		if a.creds == nil {
			return loggedOutMsg{}
		}
		return loggedOutMsg{err: a.creds.Clear()}
	}
}

func (a *App) loadStories() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		stories, err := a.gateway.Stories(ctx)
		if err != nil {
			return storiesLoadedMsg{err: wrapErr("loading stories", err)}
		}
		return storiesLoadedMsg{stories: stories}
	}
}

func (a *App) submitStory(title, author, rawURL string) tea.Cmd {
	token := ""
	if a.session != nil {
		token = a.session.Token
	}
	validator := a.urlValidator

	return func() tea.Msg {
		normalized, err := validator.ValidateAndNormalize(rawURL)
		if err != nil {
			return storySubmittedMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		st, err := a.gateway.CreateStory(ctx, token, story.Draft{
			Title:  strings.TrimSpace(title),
			Author: strings.TrimSpace(author),
			URL:    normalized,
		})
		if err != nil {
			return storySubmittedMsg{err: wrapErr("submitting story", err)}
		}
		return storySubmittedMsg{st: st}
	}
}

func (a *App) deleteStory(st story.Story) tea.Cmd {
	token := ""
	if a.session != nil {
		token = a.session.Token
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		removed, err := a.gateway.DeleteStory(ctx, token, st.ID)
		if err != nil {
			return storyDeletedMsg{st: st, err: wrapErr("deleting story", err)}
		}
		return storyDeletedMsg{st: removed}
	}
}

func (a *App) toggleFavorite(st story.Story) tea.Cmd {
	sess := a.session

	return func() tea.Msg {
		if sess == nil {
			return favoriteToggledMsg{id: st.ID}
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := sess.ToggleFavorite(ctx, st); err != nil {
			if err == session.ErrToggleInFlight {
				return favoriteToggledMsg{id: st.ID, err: err}
			}
			return favoriteToggledMsg{id: st.ID, err: wrapErr("updating favorite", err)}
		}
		return favoriteToggledMsg{id: st.ID}
	}
}

func (a *App) performSearch(query string) tea.Cmd {
	engine := a.searchEngine

	return func() tea.Msg {
		if engine == nil {
			return searchResultsMsg{}
		}
		ids, err := engine.Search(query, 50)
		if err != nil {
			debuglog.Warnf("searching for %q: %v", query, err)
			return searchResultsMsg{}
		}
		return searchResultsMsg{ids: ids}
	}
}

// renderStory builds the reader-view markdown for a story and renders
// it through glamour on the caller's goroutine (the renderer is not
// safe for concurrent use, so this runs synchronously before returning
// the Cmd's message).
func (a *App) renderStory(st story.Story) tea.Cmd {
	md := storyMarkdown(st)

	renderer, err := a.getRenderer()
	if err != nil {
		debuglog.Warnf("creating renderer: %v", err)
		return func() tea.Msg {
			return storyRenderedMsg{content: md}
		}
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		debuglog.Warnf("rendering story %q: %v", st.ID, err)
		rendered = md
	}

	return func() tea.Msg {
		return storyRenderedMsg{content: rendered}
	}
}

func storyMarkdown(st story.Story) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", st.Title)
	if st.Author != "" {
		fmt.Fprintf(&b, "*by %s*\n\n", st.Author)
	}
	fmt.Fprintf(&b, "**Link:** <%s>\n\n", st.URL)
	fmt.Fprintf(&b, "**Host:** %s\n\n", st.Hostname())
	fmt.Fprintf(&b, "Posted by `%s`", st.Username)
	if !st.CreatedAt.IsZero() {
		fmt.Fprintf(&b, " on %s", st.CreatedAt.Format("January 2, 2006 at 15:04"))
	}
	b.WriteString("\n")

	return b.String()
}
