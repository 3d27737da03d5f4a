package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/alanyoungcy/arbscout/internal/domain"
)

// GammaClient is the REST client for the Polymarket Gamma API, which
// provides market discovery, metadata, and full-text search.
type GammaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGammaClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func NewGammaClient(baseURL string) *GammaClient {
	return &GammaClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetMarketBySlug returns a single market looked up by its URL slug. A slug
// with no market returns domain.ErrNotFound.
func (g *GammaClient) GetMarketBySlug(ctx context.Context, slug string) (domain.MarketRecord, error) {
	params := url.Values{}
	params.Set("slug", slug)

	path := "/markets?" + params.Encode()

	body, err := g.doGet(ctx, path)
	if err != nil {
		return domain.MarketRecord{}, fmt.Errorf("polymarket/gamma: get market by slug %s: %w", slug, err)
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return domain.MarketRecord{}, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
	}

	if len(apiMarkets) == 0 {
		return domain.MarketRecord{}, fmt.Errorf("polymarket/gamma: %w: slug=%s", domain.ErrNotFound, slug)
	}

	rec, err := apiMarkets[0].Record()
	if err != nil {
		return domain.MarketRecord{}, err
	}
	return rec, nil
}

// SearchMarkets runs a public full-text search and flattens the returned
// events into market records, best-ranked event first. Markets that are not
// binary two-outcome markets are skipped.
func (g *GammaClient) SearchMarkets(ctx context.Context, query string) ([]domain.MarketRecord, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit_per_type", "10")
	params.Set("events_status", "active")

	path := "/public-search?" + params.Encode()

	body, err := g.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: search markets: %w", err)
	}

	var result struct {
		Events []APIEvent `json:"events"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode search results: %w", err)
	}

	var records []domain.MarketRecord
	for _, ev := range result.Events {
		for i := range ev.Markets {
			if ev.Markets[i].Closed || !bool(ev.Markets[i].Active) {
				continue
			}
			rec, err := ev.Markets[i].Record()
			if err != nil {
				continue
			}
			if rec.Title == "" {
				rec.Title = ev.Title
			}
			records = append(records, rec)
		}
	}

	return records, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doGet sends an unauthenticated GET request to the Gamma API.
func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, string(body))
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
