// Package fred implements the FRED (Federal Reserve Economic Data) provider.
// It serves the Treasury constant maturity yield panel built from the daily
// DGS* series, one series per maturity.
//
// With an API key (https://fred.stlouisfed.org/docs/api/api_key.html) the
// JSON observations API is used; rate limit 120 requests/minute. Without
// one each series is read from the public fredgraph CSV download.
// Docs: https://fred.stlouisfed.org/docs/api/fred/
package fred

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/treasurycurve/internal/infra"
	"github.com/seenimoa/treasurycurve/internal/provider"
)

const (
	providerName = "fred"
	credAPIKey   = "api_key"
	paramAPIKey  = "_fred_api_key"
)

// baseURL and graphURL are variables so tests can point them at an
// httptest server.
var (
	baseURL  = "https://api.stlouisfed.org/fred"
	graphURL = "https://fred.stlouisfed.org/graph/fredgraph.csv"
)

// Provider implements provider.Provider for FRED.
type Provider struct {
	provider.BaseProvider
	apiKey string
}

// New creates a new FRED provider and registers its fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Federal Reserve Economic Data - daily Treasury constant maturity yields",
			"https://fred.stlouisfed.org",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "FRED API key from fred.stlouisfed.org; without it the public CSV download is used",
					Required:    false,
					EnvVar:      "FRED_API_KEY",
				},
			},
		),
	}

	p.RegisterFetcher(newYieldPanelFetcher())
	return p
}

// Init stores the API key. An empty key selects the keyless CSV download.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.apiKey = credentials[credAPIKey]
	return nil
}

// Ping checks connectivity with a one-observation request, or the last two
// weeks of DGS10 from the CSV download when no key is set.
func (p *Provider) Ping(ctx context.Context) error {
	if p.apiKey == "" {
		start := time.Now().UTC().AddDate(0, 0, -14).Format(provider.DateLayout)
		if _, err := fetchGraphSeries(ctx, "DGS10", start, ""); err != nil {
			return fmt.Errorf("fred ping: %w", err)
		}
		return nil
	}
	var resp fredObservationsResponse
	if err := fetchFredJSON(ctx, "series/observations?series_id=DGS10&limit=1&sort_order=desc", p.apiKey, &resp); err != nil {
		return fmt.Errorf("fred ping: %w", err)
	}
	return nil
}

// APIKey returns the stored API key.
func (p *Provider) APIKey() string {
	return p.apiKey
}

// Fetcher overrides BaseProvider.Fetcher to return a wrapper that
// injects the FRED API key into query params before delegating.
func (p *Provider) Fetcher(model provider.ModelType) provider.Fetcher {
	inner := p.BaseProvider.Fetcher(model)
	if inner == nil {
		return nil
	}
	return &apiKeyInjector{inner: inner, apiKey: &p.apiKey}
}

// apiKeyInjector wraps a Fetcher and injects the FRED API key.
type apiKeyInjector struct {
	inner  provider.Fetcher
	apiKey *string
}

func (w *apiKeyInjector) ModelType() provider.ModelType { return w.inner.ModelType() }
func (w *apiKeyInjector) Description() string           { return w.inner.Description() }
func (w *apiKeyInjector) RequiredParams() []string      { return w.inner.RequiredParams() }
func (w *apiKeyInjector) OptionalParams() []string      { return w.inner.OptionalParams() }

func (w *apiKeyInjector) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	enriched := make(provider.QueryParams, len(params)+1)
	for k, v := range params {
		enriched[k] = v
	}
	enriched[paramAPIKey] = *w.apiKey
	return w.inner.Fetch(ctx, enriched)
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// fredURL builds a full FRED API URL with api_key and file_type=json appended.
func fredURL(endpoint, apiKey string) string {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return baseURL + "/" + endpoint + sep + "api_key=" + apiKey + "&file_type=json"
}

// fetchFredJSON performs a GET request to the FRED API and decodes JSON.
func fetchFredJSON(ctx context.Context, endpoint, apiKey string, dest any) error {
	body, _, err := infra.DoGet(ctx, fredURL(endpoint, apiKey), jsonHeaders())
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read FRED response: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse FRED JSON: %w", err)
	}
	return nil
}

// fetchFredSeries fetches the observations of one series over [start, end].
func fetchFredSeries(ctx context.Context, seriesID, apiKey, start, end string) ([]fredObservation, error) {
	endpoint := "series/observations?series_id=" + seriesID
	if start != "" {
		endpoint += "&observation_start=" + start
	}
	if end != "" {
		endpoint += "&observation_end=" + end
	}

	var resp fredObservationsResponse
	if err := fetchFredJSON(ctx, endpoint, apiKey, &resp); err != nil {
		return nil, fmt.Errorf("series %s: %w", seriesID, err)
	}
	return resp.Observations, nil
}

// fetchSeries reads one series through the JSON API, or through the
// keyless CSV download when apiKey is empty.
func fetchSeries(ctx context.Context, seriesID, apiKey, start, end string) ([]fredObservation, error) {
	if apiKey != "" {
		return fetchFredSeries(ctx, seriesID, apiKey, start, end)
	}
	obs, err := fetchGraphSeries(ctx, seriesID, start, end)
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", seriesID, err)
	}
	return obs, nil
}

// fetchGraphSeries downloads one series from fredgraph.csv. The first
// column is the observation date; the series column is found by its
// header. Missing values are "." or blank.
func fetchGraphSeries(ctx context.Context, seriesID, start, end string) ([]fredObservation, error) {
	v := url.Values{}
	v.Set("id", seriesID)
	if start != "" {
		v.Set("cosd", start)
	}
	if end != "" {
		v.Set("coed", end)
	}
	body, _, err := infra.DoGet(ctx, graphURL+"?"+v.Encode(), map[string]string{"Accept": "text/csv"})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse fredgraph CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("fredgraph CSV: empty response")
	}

	col := -1
	for i, h := range records[0] {
		if i > 0 && strings.EqualFold(strings.TrimSpace(h), seriesID) {
			col = i
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("fredgraph CSV: no %s column", seriesID)
	}

	obs := make([]fredObservation, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) <= col {
			continue
		}
		obs = append(obs, fredObservation{
			Date:  strings.TrimSpace(rec[0]),
			Value: strings.TrimSpace(rec[col]),
		})
	}
	return obs, nil
}

func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}

// parseValue parses an observation value. FRED reports a missing
// observation as ".".
func parseValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFredDate(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02",
		"2006-01-02T15:04:05",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
