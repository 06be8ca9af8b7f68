package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/cafeconecta/cafeconecta-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://api.twelvedata.com"
	responseBodyReadLimit int64 = 1024
)

var errAPIKeyRequired = errors.New("twelve data api key is required")

// Client wraps the Twelve Data endpoints used for the global market indicator.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
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

// WithBaseURL overrides the configured Twelve Data base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Twelve Data client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// GlobalIndicator is a reference equity quote converted into BRL.
type GlobalIndicator struct {
	Symbol        string
	PriceUSD      float64
	PriceBRL      float64
	ChangePercent string
	ExchangeRate  float64
}

// DailyClose holds the two most recent daily closes for a symbol.
type DailyClose struct {
	Latest   float64
	Previous float64
}

// FetchGlobalIndicator retrieves the configured equity quote plus the USD/BRL
// rate and combines them into one board entry.
func (c *Client) FetchGlobalIndicator(ctx context.Context, symbol, exchangePair string) (*GlobalIndicator, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "market data client not configured")
	}
	if strings.TrimSpace(symbol) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "indicator symbol is required")
	}
	if strings.TrimSpace(exchangePair) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exchange pair is required")
	}

	closes, err := c.fetchDailyCloses(ctx, symbol)
	if err != nil {
		return nil, err
	}
	rate, err := c.fetchPrice(ctx, exchangePair)
	if err != nil {
		return nil, err
	}
	if closes.Previous == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "previous close is zero")
	}

	change := ((closes.Latest - closes.Previous) / closes.Previous) * 100
	return &GlobalIndicator{
		Symbol:        symbol,
		PriceUSD:      closes.Latest,
		PriceBRL:      closes.Latest * rate,
		ChangePercent: strconv.FormatFloat(change, 'f', 2, 64),
		ExchangeRate:  rate,
	}, nil
}

func (c *Client) fetchDailyCloses(ctx context.Context, symbol string) (*DailyClose, error) {
	query := url.Values{}
	query.Set("apikey", c.apiKey)
	query.Set("symbol", symbol)
	query.Set("interval", "1day")
	query.Set("outputsize", "2")

	var apiResp struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Values  []struct {
			Close string `json:"close"`
		} `json:"values"`
	}
	if err := c.getJSON(ctx, "time_series", query, &apiResp); err != nil {
		return nil, err
	}
	if apiResp.Status == "error" || len(apiResp.Values) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("time series unavailable for %s: %s", symbol, apiResp.Message))
	}

	latest, err := strconv.ParseFloat(apiResp.Values[0].Close, 64)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse latest close")
	}
	previous, err := strconv.ParseFloat(apiResp.Values[1].Close, 64)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse previous close")
	}
	return &DailyClose{Latest: latest, Previous: previous}, nil
}

func (c *Client) fetchPrice(ctx context.Context, symbol string) (float64, error) {
	query := url.Values{}
	query.Set("apikey", c.apiKey)
	query.Set("symbol", symbol)

	var apiResp struct {
		Price   string `json:"price"`
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := c.getJSON(ctx, "price", query, &apiResp); err != nil {
		return 0, err
	}
	if apiResp.Status == "error" || apiResp.Price == "" {
		return 0, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("price unavailable for %s: %s", symbol, apiResp.Message))
	}

	price, err := strconv.ParseFloat(apiResp.Price, 64)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse price")
	}
	return price, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/%s?%s", strings.TrimRight(c.baseURL, "/"), path, query.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build market data request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute market data request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"market data request failed")
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode market data response")
	}
	return nil
}
