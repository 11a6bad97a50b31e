package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/sahilm/fuzzy"
)

// Result is one ranked game from a semantic search.
type Result struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	InStock   int64   `json:"in_stock"`
	Relevance float64 `json:"relevance"`
}

// GameSource provides the rows the index is built from.
type GameSource interface {
	Query(ctx context.Context, sqlText string) ([]map[string]any, error)
}

type document struct {
	game   Result
	text   string
	vector []float64
}

// Index ranks board games against free-text queries. With an Embedder it
// scores by cosine similarity over embedded descriptions; without one it
// falls back to fuzzy name matching. The index is built lazily on first
// search and reused afterwards.
type Index struct {
	source   GameSource
	embedder Embedder

	mu   sync.Mutex
	docs []document
}

func NewIndex(source GameSource, embedder Embedder) *Index {
	return &Index{source: source, embedder: embedder}
}

const gameQuery = `SELECT name, category, price, in_stock FROM board_games ORDER BY id`

func (ix *Index) build(ctx context.Context) error {
	rows, err := ix.source.Query(ctx, gameQuery)
	if err != nil {
		return fmt.Errorf("load games: %w", err)
	}
	docs := make([]document, 0, len(rows))
	for _, row := range rows {
		d := document{game: rowToResult(row)}
		d.text = fmt.Sprintf("%s - %s game", d.game.Name, d.game.Category)
		if ix.embedder != nil {
			vec, err := ix.embedder.Embed(ctx, d.text)
			if err != nil {
				return fmt.Errorf("embed %q: %w", d.game.Name, err)
			}
			d.vector = vec
		}
		docs = append(docs, d)
	}
	ix.docs = docs
	return nil
}

func rowToResult(row map[string]any) Result {
	r := Result{}
	if v, ok := row["name"].(string); ok {
		r.Name = v
	}
	if v, ok := row["category"].(string); ok {
		r.Category = v
	}
	switch v := row["price"].(type) {
	case float64:
		r.Price = v
	case int64:
		r.Price = float64(v)
	}
	if v, ok := row["in_stock"].(int64); ok {
		r.InStock = v
	}
	return r
}

// Search returns the top n games for query, most relevant first.
func (ix *Index) Search(ctx context.Context, query string, n int) ([]Result, error) {
	if n <= 0 {
		n = 5
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.docs == nil {
		if err := ix.build(ctx); err != nil {
			return nil, err
		}
	}

	if ix.embedder == nil {
		return ix.fuzzySearch(query, n), nil
	}

	qvec, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results := make([]Result, 0, len(ix.docs))
	for _, d := range ix.docs {
		r := d.game
		r.Relevance = round3(cosineSimilarity(qvec, d.vector))
		results = append(results, r)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	if len(results) > n {
		results = results[:n]
	}
	return results, nil
}

func (ix *Index) fuzzySearch(query string, n int) []Result {
	texts := make([]string, len(ix.docs))
	for i, d := range ix.docs {
		texts[i] = d.text
	}
	matches := fuzzy.Find(query, texts)
	if len(matches) > n {
		matches = matches[:n]
	}
	results := make([]Result, 0, len(matches))
	top := 0
	if len(matches) > 0 {
		top = matches[0].Score
	}
	for _, m := range matches {
		r := ix.docs[m.Index].game
		if top > 0 {
			r.Relevance = round3(float64(m.Score) / float64(top))
		} else {
			r.Relevance = 1
		}
		results = append(results, r)
	}
	return results
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
