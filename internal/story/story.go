package story

import (
	"net/url"
	"strings"
	"time"
)

// Story is one submitted link. The server assigns the ID on creation;
// stories are never edited in place.
type Story struct {
	ID        string    `json:"storyId"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	URL       string    `json:"url"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Draft holds the user-provided fields of a story before the server
// has assigned an ID.
type Draft struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}

// Hostname extracts the host of the story URL for display, without a
// leading "www.". Returns the raw URL if it does not parse.
func (s Story) Hostname() string {
	u, err := url.Parse(s.URL)
	if err != nil || u.Host == "" {
		return s.URL
	}
	return strings.TrimPrefix(u.Host, "www.")
}
