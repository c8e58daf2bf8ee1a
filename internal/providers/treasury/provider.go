// Package treasury implements a provider that reads the daily par yield curve
// rates published by the U.S. Department of the Treasury. No API key is
// required; the data comes from the TextView HTML table, one page per
// calendar year.
package treasury

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/treasurycurve/internal/infra"
	"github.com/seenimoa/treasurycurve/internal/provider"
)

const providerName = "treasury"

// baseURL is a variable so tests can point it at an httptest server.
var baseURL = "https://home.treasury.gov/resource-center/data-chart-center/interest-rates/TextView"

// Provider implements provider.Provider for Treasury.gov.
type Provider struct {
	provider.BaseProvider
}

// New creates a new Treasury.gov provider and registers its fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"U.S. Treasury daily par yield curve rates",
			"https://home.treasury.gov",
			nil,
		),
	}
	p.RegisterFetcher(newYieldPanelFetcher())
	return p
}

// Ping fetches the current year's page.
func (p *Provider) Ping(ctx context.Context) error {
	doc, err := fetchYear(ctx, time.Now().UTC().Year())
	if err != nil {
		return fmt.Errorf("treasury ping: %w", err)
	}
	if findTable(doc) == nil {
		return fmt.Errorf("treasury ping: no yield table on page")
	}
	return nil
}

func yearURL(year int) string {
	return fmt.Sprintf("%s?type=daily_treasury_yield_curve&field_tdr_date_value=%d", baseURL, year)
}

// fetchYear downloads and parses the yield curve page for one year.
func fetchYear(ctx context.Context, year int) (*goquery.Document, error) {
	body, _, err := infra.DoGet(ctx, yearURL(year), map[string]string{
		"Accept": "text/html",
	})
	if err != nil {
		return nil, fmt.Errorf("treasury.gov %d: %w", year, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse treasury.gov HTML: %w", err)
	}
	return doc, nil
}
