package search

import (
	"context"
	"strings"
	"testing"
)

type stubSource struct {
	rows  []map[string]any
	calls int
}

func (s *stubSource) Query(ctx context.Context, sqlText string) ([]map[string]any, error) {
	s.calls++
	return s.rows, nil
}

// stubEmbedder maps known substrings to fixed unit vectors so similarity
// ordering is deterministic.
type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "party"):
		return []float64{1, 0, 0}, nil
	case strings.Contains(lower, "strategy"):
		return []float64{0, 1, 0}, nil
	default:
		return []float64{0, 0, 1}, nil
	}
}

func testRows() []map[string]any {
	return []map[string]any{
		{"name": "Catan", "category": "Strategy", "price": 49.99, "in_stock": int64(8)},
		{"name": "Codenames", "category": "Party", "price": 19.99, "in_stock": int64(15)},
		{"name": "Azul", "category": "Abstract", "price": 34.99, "in_stock": int64(10)},
	}
}

func TestSearchRanksBySimilarity(t *testing.T) {
	ix := NewIndex(&stubSource{rows: testRows()}, stubEmbedder{})
	results, err := ix.Search(context.Background(), "fun party games", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Name != "Codenames" {
		t.Errorf("top result: got %s, want Codenames", results[0].Name)
	}
	if results[0].Relevance != 1 {
		t.Errorf("top relevance: got %v, want 1", results[0].Relevance)
	}
	if results[1].Relevance > results[0].Relevance {
		t.Error("results not sorted by relevance")
	}
}

func TestSearchBuildsIndexOnce(t *testing.T) {
	src := &stubSource{rows: testRows()}
	ix := NewIndex(src, stubEmbedder{})
	for i := 0; i < 3; i++ {
		if _, err := ix.Search(context.Background(), "strategy", 5); err != nil {
			t.Fatalf("Search %d: %v", i, err)
		}
	}
	if src.calls != 1 {
		t.Errorf("index built %d times, want 1", src.calls)
	}
}

func TestSearchCarriesGameFields(t *testing.T) {
	ix := NewIndex(&stubSource{rows: testRows()}, stubEmbedder{})
	results, err := ix.Search(context.Background(), "strategy", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	r := results[0]
	if r.Name != "Catan" || r.Category != "Strategy" || r.Price != 49.99 || r.InStock != 8 {
		t.Errorf("unexpected result: %+v", r)
	}
}

func TestSearchDefaultLimit(t *testing.T) {
	rows := testRows()
	for _, name := range []string{"Root", "Scythe", "Wingspan", "Dominion"} {
		rows = append(rows, map[string]any{
			"name": name, "category": "Strategy", "price": 59.99, "in_stock": int64(3),
		})
	}
	ix := NewIndex(&stubSource{rows: rows}, stubEmbedder{})
	results, err := ix.Search(context.Background(), "strategy", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("got %d results, want default of 5", len(results))
	}
}

func TestFuzzyFallbackWithoutEmbedder(t *testing.T) {
	ix := NewIndex(&stubSource{rows: testRows()}, nil)
	results, err := ix.Search(context.Background(), "catan", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("fuzzy fallback returned nothing")
	}
	if results[0].Name != "Catan" {
		t.Errorf("top fuzzy result: got %s, want Catan", results[0].Name)
	}
	if results[0].Relevance <= 0 || results[0].Relevance > 1 {
		t.Errorf("fuzzy relevance out of range: %v", results[0].Relevance)
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		a, b []float64
		want float64
	}{
		{[]float64{1, 0}, []float64{1, 0}, 1},
		{[]float64{1, 0}, []float64{0, 1}, 0},
		{[]float64{1, 0}, []float64{}, 0},
		{[]float64{0, 0}, []float64{1, 1}, 0},
	}
	for _, c := range cases {
		if got := cosineSimilarity(c.a, c.b); got != c.want {
			t.Errorf("cosineSimilarity(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
