package search

import (
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/snoozedev/snooze/internal/story"
)

// Engine indexes the currently fetched story list in memory and
// answers relevance-ranked queries over it. The index is rebuilt from
// scratch on every refresh; story lists are small.
type Engine struct {
	mu  sync.RWMutex
	idx bleve.Index
}

func NewEngine() (*Engine, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	return &Engine{idx: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	text := func() *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		fm.Store = false
		return fm
	}

	dm.AddFieldMappingsAt("title", text())
	dm.AddFieldMappingsAt("author", text())
	dm.AddFieldMappingsAt("username", text())
	dm.AddFieldMappingsAt("url", text())

	im.DefaultMapping = dm
	return im
}

// Reindex replaces the index contents with the given stories.
func (e *Engine) Reindex(stories []story.Story) error {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return err
	}

	batch := idx.NewBatch()
	for _, st := range stories {
		_ = batch.Index(st.ID, map[string]any{
			"title":    st.Title,
			"author":   st.Author,
			"username": st.Username,
			"url":      st.URL,
		})
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return err
	}

	e.mu.Lock()
	old := e.idx
	e.idx = idx
	e.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// Search returns matching story IDs, most relevant first.
func (e *Engine) Search(query string, limit int) ([]string, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []string{}, nil
	}

	tokens := tokenize(query)
	var qs []bleveQuery.Query
	for _, tok := range tokens {
		qt := bleve.NewMatchQuery(tok)
		qt.SetField("title")
		qt.SetBoost(4.0)
		qs = append(qs, qt)
		qtp := bleve.NewPrefixQuery(strings.ToLower(tok))
		qtp.SetField("title")
		qtp.SetBoost(3.5)
		qs = append(qs, qtp)

		qa := bleve.NewMatchQuery(tok)
		qa.SetField("author")
		qa.SetBoost(2.0)
		qs = append(qs, qa)

		qn := bleve.NewMatchQuery(tok)
		qn.SetField("username")
		qn.SetBoost(1.5)
		qs = append(qs, qn)

		qu := bleve.NewPrefixQuery(strings.ToLower(tok))
		qu.SetField("url")
		qu.SetBoost(0.5)
		qs = append(qs, qu)
	}
	if len(qs) == 0 {
		return []string{}, nil
	}

	q := bleve.NewDisjunctionQuery(qs...)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)

	e.mu.RLock()
	idx := e.idx
	e.mu.RUnlock()

	res, err := idx.Search(req)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.idx == nil {
		return nil
	}
	err := e.idx.Close()
	e.idx = nil
	return err
}

func tokenize(query string) []string {
	return strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
