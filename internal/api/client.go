package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/snoozedev/snooze/internal/config"
	"github.com/snoozedev/snooze/internal/debuglog"
	"github.com/snoozedev/snooze/internal/story"
)

// Client is the sole path to the remote story service. Every call is a
// single request/response round trip; callers mutate local state only
// after a call returns without error.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:   cfg.Server.BaseURL,
		userAgent: cfg.Server.UserAgent,
		client: &http.Client{
			Timeout: cfg.Server.HTTPTimeout,
		},
	}
}

// User is the account payload the service returns on login, signup and
// token re-login. Favorites and own stories arrive fully populated.
type User struct {
	Username   string        `json:"username"`
	Name       string        `json:"name"`
	CreatedAt  time.Time     `json:"createdAt"`
	Favorites  []story.Story `json:"favorites"`
	OwnStories []story.Story `json:"stories"`
}

type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type authRequest struct {
	User credentialsBody `json:"user"`
}

type authResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type userResponse struct {
	User User `json:"user"`
}

type storiesResponse struct {
	Stories []story.Story `json:"stories"`
}

type storyEnvelope struct {
	Token string      `json:"token,omitempty"`
	Story story.Story `json:"story"`
}

type createStoryRequest struct {
	Token string      `json:"token"`
	Story story.Draft `json:"story"`
}

type tokenBody struct {
	Token string `json:"token"`
}

// Login exchanges a username/password pair for the account and its
// token. Bad credentials surface as an AuthError.
func (c *Client) Login(ctx context.Context, username, password string) (*User, string, error) {
	var resp authResponse
	req := authRequest{User: credentialsBody{Username: username, Password: password}}
	if err := c.do(ctx, http.MethodPost, "/login", username, req, &resp); err != nil {
		return nil, "", err
	}
	return &resp.User, resp.Token, nil
}

// Signup registers a new account. A taken username or invalid fields
// surface as a ValidationError.
func (c *Client) Signup(ctx context.Context, username, password, name string) (*User, string, error) {
	var resp authResponse
	req := authRequest{User: credentialsBody{Username: username, Password: password, Name: name}}
	if err := c.do(ctx, http.MethodPost, "/signup", username, req, &resp); err != nil {
		return nil, "", err
	}
	return &resp.User, resp.Token, nil
}

// LoginViaToken re-authenticates a persisted credential pair. A stale
// or revoked token is a normal outcome, reported as ok=false rather
// than an error, so startup can fall back to the login form.
func (c *Client) LoginViaToken(ctx context.Context, token, username string) (*User, bool, error) {
	path := fmt.Sprintf("/users/%s?token=%s", url.PathEscape(username), url.QueryEscape(token))

	var resp userResponse
	err := c.do(ctx, http.MethodGet, path, username, nil, &resp)
	if err != nil {
		var authErr *AuthError
		var notFound *NotFoundError
		if errors.As(err, &authErr) || errors.As(err, &notFound) {
			debuglog.Infof("stored token rejected for %s", username)
			return nil, false, nil
		}
		return nil, false, err
	}
	return &resp.User, true, nil
}

// Stories fetches the full shared story list in server order. Callable
// without authentication.
func (c *Client) Stories(ctx context.Context) ([]story.Story, error) {
	var resp storiesResponse
	if err := c.do(ctx, http.MethodGet, "/stories", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stories, nil
}

// CreateStory submits a draft; the returned story carries the
// server-assigned ID.
func (c *Client) CreateStory(ctx context.Context, token string, draft story.Draft) (story.Story, error) {
	var resp storyEnvelope
	req := createStoryRequest{Token: token, Story: draft}
	if err := c.do(ctx, http.MethodPost, "/stories", "", req, &resp); err != nil {
		return story.Story{}, err
	}
	return resp.Story, nil
}

// DeleteStory removes a story and returns the deleted story for
// confirmation. Unknown IDs surface as a NotFoundError, deleting
// someone else's story as an AuthError.
func (c *Client) DeleteStory(ctx context.Context, token, id string) (story.Story, error) {
	path := "/stories/" + url.PathEscape(id)

	var resp storyEnvelope
	if err := c.do(ctx, http.MethodDelete, path, id, tokenBody{Token: token}, &resp); err != nil {
		return story.Story{}, err
	}
	return resp.Story, nil
}

// AddFavorite marks a story as a favorite of the given user. The
// server may reject a redundant add, so callers check local state
// before calling.
func (c *Client) AddFavorite(ctx context.Context, token, username, id string) error {
	path := favoritePath(username, id)
	return c.do(ctx, http.MethodPost, path, id, tokenBody{Token: token}, nil)
}

// RemoveFavorite clears a favorite mark. Same caveat as AddFavorite.
func (c *Client) RemoveFavorite(ctx context.Context, token, username, id string) error {
	path := favoritePath(username, id)
	return c.do(ctx, http.MethodDelete, path, id, tokenBody{Token: token}, nil)
}

func favoritePath(username, id string) string {
	return fmt.Sprintf("/users/%s/favorites/%s", url.PathEscape(username), url.PathEscape(id))
}

// do performs one round trip. The id parameter only feeds NotFoundError
// messages; it may be empty.
func (c *Client) do(ctx context.Context, method, path, id string, body, out any) error {
	op := method + " " + path

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		debuglog.Warnf("%s -> %d", op, resp.StatusCode)
		return statusError(op, id, resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
