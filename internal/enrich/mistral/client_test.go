package mistral

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func completionResponse(content string) []byte {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return b
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		APIKey:         "test-key",
		BaseURL:        srv.URL,
		CleanerAgentID: "ag:test:cleaner",
	}, nil)
}

func TestCleanStripsCodeFences(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/agents/completions" {
			t.Errorf("path = %s, want /agents/completions", r.URL.Path)
		}
		_, _ = w.Write(completionResponse("```\ncleaned note\n```"))
	})

	got, err := c.Clean(context.Background(), "raw note")
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if got != "\ncleaned note\n" {
		t.Fatalf("Clean = %q, want fences stripped", got)
	}
}

func TestCleanWithoutAgentID(t *testing.T) {
	c := NewClient(Config{APIKey: "k", BaseURL: "http://unused"}, nil)
	if _, err := c.Clean(context.Background(), "x"); err == nil {
		t.Fatal("want error when cleaner agent id is not configured")
	}
}

func TestExtractManufacturersJoinsWithHyphen(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		_, _ = w.Write(completionResponse(`{"manufacturers": ["Acme", "Globex"]}`))
	})

	got, err := c.ExtractManufacturers(context.Background(), "note mentioning makers")
	if err != nil {
		t.Fatalf("ExtractManufacturers: %v", err)
	}
	if got != "Acme - Globex" {
		t.Fatalf("ExtractManufacturers = %q, want %q", got, "Acme - Globex")
	}
}

func TestExtractManufacturersRejectsMalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(completionResponse("Acme - Globex"))
	})
	if _, err := c.ExtractManufacturers(context.Background(), "note"); err == nil {
		t.Fatal("want error for non-JSON model output")
	}
}

func TestPostSurfacesHTTPStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})
	if _, err := c.ExtractManufacturers(context.Background(), "note"); err == nil {
		t.Fatal("want error on non-2xx status")
	}
}
