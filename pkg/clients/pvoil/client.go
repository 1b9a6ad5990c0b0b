package pvoil

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/pvoil/internal/config"
)

// Client exposes the two PVOIL pages the synchronizer reads.
type Client interface {
	// ListingPage returns the raw HTML of the price news listing.
	ListingPage(ctx context.Context) ([]byte, error)
	// PriceTable returns the raw HTML fragment holding the price table for
	// the given "DD/MM/YYYY HH:MM:SS" query value.
	PriceTable(ctx context.Context, date string) ([]byte, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient  *resty.Client
	listingURL  string
	priceAPIURL string
}

// NewClient builds a PVOIL client using the provided configuration values.
func NewClient(cfg config.SourceConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		SetTimeout(cfg.Timeout)

	return &APIClient{
		httpClient:  restyClient,
		listingURL:  cfg.ListingURL,
		priceAPIURL: cfg.PriceAPIURL,
	}
}

func (c *APIClient) ListingPage(ctx context.Context) ([]byte, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(c.listingURL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing page: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch listing page: unexpected status %d", resp.StatusCode())
	}

	return resp.Body(), nil
}

func (c *APIClient) PriceTable(ctx context.Context, date string) ([]byte, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("date", date).
		Get(c.priceAPIURL)
	if err != nil {
		return nil, fmt.Errorf("fetch prices for %s: %w", date, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch prices for %s: unexpected status %d", date, resp.StatusCode())
	}

	return resp.Body(), nil
}
