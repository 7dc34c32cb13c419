package story

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStory_Hostname(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "plain host", url: "http://example.com/post/1", want: "example.com"},
		{name: "www stripped", url: "https://www.example.com", want: "example.com"},
		{name: "subdomain kept", url: "https://blog.example.com/x", want: "blog.example.com"},
		{name: "unparseable falls back to raw", url: "://nope", want: "://nope"},
		{name: "no host falls back to raw", url: "not-a-url", want: "not-a-url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Story{URL: tt.url}
			assert.Equal(t, tt.want, st.Hostname())
		})
	}
}

func TestCollection_PrependAndOrder(t *testing.T) {
	c := NewCollection([]Story{
		{ID: "s2", Title: "second"},
		{ID: "s1", Title: "first"},
	})

	c.Prepend(Story{ID: "s99", Title: "newest"})

	stories := c.Stories()
	require.Len(t, stories, 3)
	assert.Equal(t, "s99", stories[0].ID)
	assert.Equal(t, "s2", stories[1].ID)
}

func TestCollection_PrependNoDuplicates(t *testing.T) {
	c := NewCollection([]Story{{ID: "s1"}, {ID: "s2"}})

	// The server snapshot may already include a just-created story.
	c.Prepend(Story{ID: "s1", Title: "refreshed"})

	require.Equal(t, 2, c.Len())
	assert.Equal(t, "s1", c.Stories()[0].ID)
	assert.Equal(t, "refreshed", c.Stories()[0].Title)
}

func TestCollection_Remove(t *testing.T) {
	c := NewCollection([]Story{{ID: "s1"}, {ID: "s2"}, {ID: "s3"}})

	c.Remove("s2")

	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Contains("s2"))

	// Removing an absent ID is a no-op.
	c.Remove("s2")
	assert.Equal(t, 2, c.Len())
}

func TestNewCollection_DropsDuplicateIDs(t *testing.T) {
	c := NewCollection([]Story{{ID: "s1", Title: "a"}, {ID: "s1", Title: "b"}})

	require.Equal(t, 1, c.Len())
	assert.Equal(t, "a", c.Stories()[0].Title)
}

func TestCollection_StoriesReturnsCopy(t *testing.T) {
	c := NewCollection([]Story{{ID: "s1", CreatedAt: time.Now()}})

	got := c.Stories()
	got[0].ID = "mutated"

	assert.Equal(t, "s1", c.Stories()[0].ID)
}
