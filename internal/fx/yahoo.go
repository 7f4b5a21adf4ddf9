package fx

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// YahooSource quotes currency pairs from the Yahoo Finance chart endpoint
// ("EURUSD=X" style symbols). The URL template receives the from and to
// currency codes in that order.
type YahooSource struct {
	client      *resty.Client
	urlTemplate string
}

// NewYahooSource creates a quote source with the given endpoint template
// and per-request timeout.
func NewYahooSource(urlTemplate string, timeout time.Duration) *YahooSource {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; fundline/1.0)")
	return &YahooSource{client: client, urlTemplate: urlTemplate}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Quote implements QuoteSource. Timeouts and transport failures surface as
// errors and are treated upstream as "rate unavailable".
func (s *YahooSource) Quote(ctx context.Context, from, to string) (float64, error) {
	url := fmt.Sprintf(s.urlTemplate, from, to)

	var body chartResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(url)
	if err != nil {
		return 0, fmt.Errorf("fx quote %s/%s: %w", from, to, err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("fx quote %s/%s: status %s", from, to, resp.Status())
	}
	if body.Chart.Error != nil {
		return 0, fmt.Errorf("fx quote %s/%s: %s", from, to, body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 {
		return 0, fmt.Errorf("fx quote %s/%s: empty result", from, to)
	}

	price := body.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, fmt.Errorf("fx quote %s/%s: non-positive rate %f", from, to, price)
	}
	return price, nil
}
