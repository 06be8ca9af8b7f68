package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/cafeconecta/cafeconecta-backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel               = "gemini-3-flash-preview"
	responseBodyReadLimit int64 = 1024
)

var errAPIKeyRequired = errors.New("gemini api key is required")

// Client wraps the Gemini generateContent API used for negotiation replies
// and market suggestions.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Gemini base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithModel overrides the default model identifier.
func WithModel(model string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(model)
		if trimmed != "" {
			c.model = trimmed
		}
	}
}

// NewClient builds the Gemini client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// HistoryEntry is one prior chat message handed to the model as context.
type HistoryEntry struct {
	SenderName string
	Text       string
}

// ChatReplyRequest carries the inputs for a simulated counterparty reply.
type ChatReplyRequest struct {
	// Persona is "buyer" or "producer", the side the model speaks for.
	Persona    string
	LotSummary string
	History    []HistoryEntry
}

// QuoteSnapshot is a market board row handed to the suggestion prompt.
type QuoteSnapshot struct {
	Type          string
	CurrentPrice  string
	PreviousPrice string
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	TopK            int     `json:"topK,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// ChatReply asks the model to answer the last message in a negotiation thread.
func (c *Client) ChatReply(ctx context.Context, req ChatReplyRequest) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "gemini client not configured")
	}

	persona := "Você é um comprador de café de uma grande exportadora. Você é profissional, direto e busca qualidade."
	if req.Persona == "producer" {
		persona = "Você é um produtor de café experiente. Você valoriza seu grão e busca um preço justo."
	}

	lines := make([]string, 0, len(req.History))
	for _, entry := range req.History {
		lines = append(lines, fmt.Sprintf("%s: %s", entry.SenderName, entry.Text))
	}

	prompt := fmt.Sprintf(`%s
Lote em negociação: %s

Histórico recente da conversa:
%s

Responda à última mensagem de forma natural, curta (máximo 2 frases) e profissional.`,
		persona, req.LotSummary, strings.Join(lines, "\n"))

	text, err := c.generate(ctx, prompt, generationConfig{
		Temperature:     0.8,
		MaxOutputTokens: 100,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// MarketSuggestion asks the model for a short sell-or-hold recommendation.
func (c *Client) MarketSuggestion(ctx context.Context, quotes []QuoteSnapshot) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "gemini client not configured")
	}

	lines := make([]string, 0, len(quotes))
	for _, q := range quotes {
		lines = append(lines, fmt.Sprintf("%s: Preço atual R$ %s, Preço anterior R$ %s", q.Type, q.CurrentPrice, q.PreviousPrice))
	}

	prompt := fmt.Sprintf(`Como um consultor especialista no mercado de café brasileiro, analise os seguintes dados:
%s

Forneça uma sugestão estratégica curta (máximo 3 frases) para um produtor sobre vender ou segurar sua produção hoje.`,
		strings.Join(lines, "\n"))

	text, err := c.generate(ctx, prompt, generationConfig{
		Temperature: 0.7,
		TopK:        40,
		TopP:        0.95,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) generate(ctx context.Context, prompt string, genCfg generationConfig) (string, error) {
	body := struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
		GenerationConfig generationConfig `json:"generationConfig"`
	}{
		Contents: []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		}{
			{Parts: []struct {
				Text string `json:"text"`
			}{{Text: prompt}}},
		},
		GenerationConfig: genCfg,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal gemini request")
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimRight(c.baseURL, "/"), url.PathEscape(c.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build gemini request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute gemini request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"gemini request failed")
	}

	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode gemini response")
	}

	var sb strings.Builder
	for _, candidate := range apiResp.Candidates {
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
		break
	}
	if sb.Len() == 0 {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "gemini returned no candidates")
	}
	return sb.String(), nil
}
