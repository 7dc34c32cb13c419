package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/snoozedev/snooze/internal/api"
	"github.com/snoozedev/snooze/internal/debuglog"
	"github.com/snoozedev/snooze/internal/story"
)

// ErrToggleInFlight is returned when a toggle for the same story is
// still waiting on the server. The caller issued no network call and
// local state is unchanged.
var ErrToggleInFlight = errors.New("favorite toggle already in flight")

// Gateway is the slice of the remote client the session needs.
type Gateway interface {
	AddFavorite(ctx context.Context, token, username, id string) error
	RemoveFavorite(ctx context.Context, token, username, id string) error
}

// Session is the authenticated principal. It owns the authoritative
// favorites set; a favorite is added or removed locally only after the
// corresponding server call succeeded, so the set always reflects the
// last acknowledgment.
type Session struct {
	Username  string
	Name      string
	CreatedAt time.Time
	Token     string

	gateway Gateway

	mu        sync.Mutex
	favorites []story.Story
	own       []story.Story
	inFlight  map[string]struct{}
}

// New builds a session from a login, signup or token re-login payload.
func New(user *api.User, token string, gateway Gateway) *Session {
	s := &Session{
		Username:  user.Username,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		Token:     token,
		gateway:   gateway,
		inFlight:  make(map[string]struct{}),
	}
	s.favorites = append(s.favorites, user.Favorites...)
	s.own = append(s.own, user.OwnStories...)
	return s
}

// IsFavorite reports whether the story is in the acknowledged
// favorites set. This is the single source of truth for whether the
// next toggle issues an add or a remove.
func (s *Session) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

// ToggleFavorite flips the favorite state of one story. The local set
// is consulted to pick the direction, the server call is made, and the
// set is mutated only on success. A second toggle for the same story
// while the first is unresolved returns ErrToggleInFlight.
func (s *Session) ToggleFavorite(ctx context.Context, st story.Story) error {
	s.mu.Lock()
	if _, busy := s.inFlight[st.ID]; busy {
		s.mu.Unlock()
		return ErrToggleInFlight
	}
	s.inFlight[st.ID] = struct{}{}
	wasFavorite := s.indexOf(st.ID) >= 0
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inFlight, st.ID)
		s.mu.Unlock()
	}()

	if wasFavorite {
		if err := s.gateway.RemoveFavorite(ctx, s.Token, s.Username, st.ID); err != nil {
			return err
		}
		s.mu.Lock()
		if i := s.indexOf(st.ID); i >= 0 {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
		}
		s.mu.Unlock()
		debuglog.Debugf("unfavorited %s", st.ID)
		return nil
	}

	if err := s.gateway.AddFavorite(ctx, s.Token, s.Username, st.ID); err != nil {
		return err
	}
	s.mu.Lock()
	if s.indexOf(st.ID) < 0 {
		s.favorites = append(s.favorites, st)
	}
	s.mu.Unlock()
	debuglog.Debugf("favorited %s", st.ID)
	return nil
}

// Favorites returns a point-in-time copy for building a favorites
// view. Later toggles do not alter an already-built view.
func (s *Session) Favorites() []story.Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]story.Story, len(s.favorites))
	copy(out, s.favorites)
	return out
}

// OwnStories returns a copy of the stories this user submitted.
func (s *Session) OwnStories() []story.Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]story.Story, len(s.own))
	copy(out, s.own)
	return out
}

// RecordSubmitted tracks a story the user just created.
func (s *Session) RecordSubmitted(st story.Story) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.own = append([]story.Story{st}, s.own...)
}

// RecordDeleted drops a story from the user's own list. The favorites
// set is deliberately left alone; views are rebuilt from server truth
// on the next switch.
func (s *Session) RecordDeleted(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.own[:0]
	for _, st := range s.own {
		if st.ID != id {
			kept = append(kept, st)
		}
	}
	s.own = kept
}

// indexOf must be called with mu held.
func (s *Session) indexOf(id string) int {
	for i, st := range s.favorites {
		if st.ID == id {
			return i
		}
	}
	return -1
}
