package core

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// MarketClient calls the crypto listings API. The provider authenticates
// requests with an API key header rather than a bearer token.
type MarketClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

const marketAPIKeyHeader = "X-CMC_PRO_API_KEY"

func NewMarketClient(baseURL, apiKey string) *MarketClient {
	return &MarketClient{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Listings fetches the latest listings with the given query parameters
// (e.g., start, limit, convert) and returns the provider's JSON body
// verbatim.
func (m *MarketClient) Listings(ctx context.Context, params map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, buildURL(m.baseURL, params), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(marketAPIKeyHeader, m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read market response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market api returned status %d", resp.StatusCode)
	}
	return body, nil
}

func buildURL(base string, params map[string]string) string {
	if len(params) == 0 {
		return base
	}
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return base + "?" + q.Encode()
}
