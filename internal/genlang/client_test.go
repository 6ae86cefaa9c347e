package genlang

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", 0.7)
}

func TestGenerate(t *testing.T) {
	var gotPath string
	var gotBody generateRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]string{{"text": "hold your positions"}}}},
			},
		})
	})

	text, err := client.Generate(context.Background(), "gemini-1.5-flash", []Content{
		{Role: "user", Parts: []Part{{Text: "should I sell?"}}},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if text != "hold your positions" {
		t.Errorf("text = %q", text)
	}
	if gotPath != "/models/gemini-1.5-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody.GenerationConfig.Temperature != 0.7 {
		t.Errorf("temperature = %v", gotBody.GenerationConfig.Temperature)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "should I sell?" {
		t.Errorf("contents = %+v", gotBody.Contents)
	}
}

func TestGenerate_RateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.Generate(context.Background(), "m", nil)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestGenerate_HardFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model is deprecated", http.StatusNotFound)
	})

	_, err := client.Generate(context.Background(), "gemini-old", nil)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusNotFound {
		t.Errorf("code = %d", statusErr.Code)
	}
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := client.Generate(context.Background(), "m", nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError for empty candidates, got %v", err)
	}
}

func TestListModels(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"models":[
			{"name":"models/gemini-1.5-flash","supportedGenerationMethods":["generateContent","countTokens"]},
			{"name":"models/embedding-001","supportedGenerationMethods":["embedContent"]}
		]}`))
	})

	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("got %d models", len(models))
	}
	if models[0].ID() != "gemini-1.5-flash" {
		t.Errorf("ID() = %q", models[0].ID())
	}
	if !models[0].SupportsGeneration() {
		t.Error("flash should support generation")
	}
	if models[1].SupportsGeneration() {
		t.Error("embedding model should not support generation")
	}
}

func TestCleanFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"```\nfenced\n```", "fenced"},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"  spaced  ", "spaced"},
	}

	for _, tt := range tests {
		if got := cleanFences(tt.in); got != tt.want {
			t.Errorf("cleanFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
