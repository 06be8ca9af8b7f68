package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newGenerateServer(t *testing.T, text string, capture *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("X-Goog-Api-Key") == "" {
			t.Error("missing api key header")
		}
		if capture != nil {
			_ = json.NewDecoder(r.Body).Decode(capture)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
			},
		})
	}))
}

func TestChatReplyBuildsPersonaPrompt(t *testing.T) {
	var captured map[string]any
	server := newGenerateServer(t, "Podemos fechar por esse valor.", &captured)
	defer server.Close()

	client, err := NewClient("key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	reply, err := client.ChatReply(context.Background(), ChatReplyRequest{
		Persona:    "producer",
		LotSummary: "Arábica, 200 sacas, Cerrado Mineiro",
		History: []HistoryEntry{
			{SenderName: "comprador", Text: "Qual o melhor preço?"},
		},
	})
	if err != nil {
		t.Fatalf("chat reply: %v", err)
	}
	if reply != "Podemos fechar por esse valor." {
		t.Fatalf("unexpected reply %q", reply)
	}

	raw, _ := json.Marshal(captured)
	if !strings.Contains(string(raw), "produtor de café experiente") {
		t.Fatalf("producer persona missing from prompt: %s", raw)
	}
	if !strings.Contains(string(raw), "Cerrado Mineiro") {
		t.Fatal("lot summary missing from prompt")
	}
}

func TestMarketSuggestionIncludesQuotes(t *testing.T) {
	var captured map[string]any
	server := newGenerateServer(t, "Segure a produção.", &captured)
	defer server.Close()

	client, err := NewClient("key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	suggestion, err := client.MarketSuggestion(context.Background(), []QuoteSnapshot{
		{Type: "Arábica", CurrentPrice: "1250.50", PreviousPrice: "1240.00"},
	})
	if err != nil {
		t.Fatalf("market suggestion: %v", err)
	}
	if suggestion != "Segure a produção." {
		t.Fatalf("unexpected suggestion %q", suggestion)
	}

	raw, _ := json.Marshal(captured)
	if !strings.Contains(string(raw), "1250.50") {
		t.Fatal("quote data missing from prompt")
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient("key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.ChatReply(context.Background(), ChatReplyRequest{Persona: "buyer"}); err == nil {
		t.Fatal("expected error from 429 response")
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient("   "); err == nil {
		t.Fatal("expected error for blank api key")
	}
}
