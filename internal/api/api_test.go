package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"meeple-cli/internal/agent"
	"meeple-cli/internal/engine"
	"meeple-cli/internal/search"
	"meeple-cli/internal/tools"
)

type cannedClient struct {
	response string
	prompts  []agent.Prompt
}

func (c *cannedClient) Complete(ctx context.Context, p agent.Prompt) (string, error) {
	c.prompts = append(c.prompts, p)
	return c.response, nil
}

type emptyDB struct{}

func (emptyDB) Query(ctx context.Context, sqlText string) ([]map[string]any, error) {
	return nil, nil
}

type emptySearch struct{}

func (emptySearch) Search(ctx context.Context, query string, n int) ([]search.Result, error) {
	return nil, nil
}

type emptyScenario struct{}

func (emptyScenario) Run(ctx context.Context, scenarioType string, params map[string]any) (map[string]any, error) {
	return map[string]any{}, nil
}

func testHandler(client agent.ModelClient) *Handler {
	return NewHandler(func() *engine.Runner {
		return &engine.Runner{
			Client:     client,
			Dispatcher: &tools.Dispatcher{DB: emptyDB{}, Search: emptySearch{}, Scenario: emptyScenario{}},
			System:     "system",
			Model:      "test-model",
		}
	})
}

func TestHealth(t *testing.T) {
	h := testHandler(&cannedClient{})
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body: %v", body)
	}
}

func TestAsk(t *testing.T) {
	client := &cannedClient{response: `{"action": "answer", "text": "We stock 15 games."}`}
	h := testHandler(client)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/ask", "application/json",
		strings.NewReader(`{"question": "how many games do we have?"}`))
	if err != nil {
		t.Fatalf("POST /ask: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	var body askResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Answer != "We stock 15 games." {
		t.Errorf("answer: %q", body.Answer)
	}
}

func TestAskWithHistory(t *testing.T) {
	client := &cannedClient{response: `{"action": "answer", "text": "ok"}`}
	h := testHandler(client)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	payload := `{
		"question": "and the cheapest?",
		"conversation_history": [
			{"role": "user", "content": "most expensive game?"},
			{"role": "assistant", "content": "Gloomhaven at $139.99."}
		]
	}`
	resp, err := http.Post(srv.URL+"/ask", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST /ask: %v", err)
	}
	resp.Body.Close()

	msgs := client.prompts[0].Messages
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[0].Content != "most expensive game?" || msgs[2].Content != "and the cheapest?" {
		t.Errorf("history not replayed in order: %v", msgs)
	}
}

func TestAskRejectsBadRequests(t *testing.T) {
	h := testHandler(&cannedClient{})
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"question": `},
		{"missing question", `{}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/ask", "application/json", strings.NewReader(c.body))
			if err != nil {
				t.Fatalf("POST /ask: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status: %d, want 400", resp.StatusCode)
			}
			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] == "" {
				t.Error("missing error message")
			}
		})
	}
}

func TestJSONHelper(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusTeapot, map[string]string{"foo": "bar"})

	resp := w.Result()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("status: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: %q", ct)
	}
	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["foo"] != "bar" {
		t.Errorf("body: %v", got)
	}
}
