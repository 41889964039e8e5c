package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestGroqClient(url string) *groqClient {
	c := NewGroqClient("test-key", ModelExtractor, 0.1).(*groqClient)
	c.endpoint = url
	return c
}

func TestGroqClient_GenerateContent(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var gotReq groqRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer test-key" {
				t.Errorf("unexpected Authorization header %q", r.Header.Get("Authorization"))
			}
			if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
				t.Fatalf("failed to decode request: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"model": "llama-3.1-8b-instant",
				"choices": [{"message": {"role": "assistant", "content": "{\"ingredients\": []}"}}],
				"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
			}`))
		}))
		defer srv.Close()

		resp, err := newTestGroqClient(srv.URL).GenerateContent(context.Background(), "hello")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Content != `{"ingredients": []}` {
			t.Errorf("unexpected content %q", resp.Content)
		}
		if resp.Usage.TotalTokens != 17 || resp.Usage.PromptTokens != 12 || resp.Usage.CompletionTokens != 5 {
			t.Errorf("unexpected usage %+v", resp.Usage)
		}
		if gotReq.Model != ModelExtractor || len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "hello" {
			t.Errorf("unexpected request %+v", gotReq)
		}
		if gotReq.ResponseFormat["type"] != "json_object" {
			t.Errorf("expected json_object response format, got %v", gotReq.ResponseFormat)
		}
	})

	t.Run("APIError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := newTestGroqClient(srv.URL).GenerateContent(context.Background(), "hello")
		if err == nil {
			t.Fatal("expected an error, got nil")
		}
		if !strings.Contains(err.Error(), "status=429") {
			t.Errorf("expected status in error, got %v", err)
		}
	})

	t.Run("NoChoices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices": []}`))
		}))
		defer srv.Close()

		if _, err := newTestGroqClient(srv.URL).GenerateContent(context.Background(), "hello"); err == nil {
			t.Fatal("expected an error for empty choices, got nil")
		}
	})
}
