package story

// Collection is an ordered set of stories, newest first, with no
// duplicate IDs. It is the single source of truth the display layer
// reads from; mutation happens only after the corresponding server
// call succeeded.
type Collection struct {
	stories []Story
}

func NewCollection(stories []Story) *Collection {
	c := &Collection{}
	for _, st := range stories {
		if c.Contains(st.ID) {
			continue
		}
		c.stories = append(c.stories, st)
	}
	return c
}

// Prepend inserts a freshly created story at the front. If a story with
// the same ID is already present it is removed first, so a re-fetch
// followed by a submit cannot produce duplicates.
func (c *Collection) Prepend(st Story) {
	c.Remove(st.ID)
	c.stories = append([]Story{st}, c.stories...)
}

// Remove filters out every story with the given ID.
func (c *Collection) Remove(id string) {
	kept := c.stories[:0]
	for _, st := range c.stories {
		if st.ID != id {
			kept = append(kept, st)
		}
	}
	c.stories = kept
}

func (c *Collection) Contains(id string) bool {
	for _, st := range c.stories {
		if st.ID == id {
			return true
		}
	}
	return false
}

// Stories returns a copy of the ordered sequence.
func (c *Collection) Stories() []Story {
	out := make([]Story, len(c.stories))
	copy(out, c.stories)
	return out
}

func (c *Collection) Len() int { return len(c.stories) }
