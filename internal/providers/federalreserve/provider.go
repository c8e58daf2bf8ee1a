// Package federalreserve implements a Federal Reserve data provider serving
// the H.15 Selected Interest Rates release: daily nominal constant-maturity
// Treasury yields from the Fed Board Data Download Program (CSV). No API key
// required.
package federalreserve

import (
	"context"
	"encoding/csv"
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
	providerName = "federal_reserve"

	// h15Package is the DDP package holding the eleven nominal
	// constant-maturity series.
	h15Package = "bf17364827e38702b42a58cf8eaa3f78"

	// ddpDateLayout is the from/to parameter format of the download program.
	ddpDateLayout = "01/02/2006"
)

// baseFedBoard is a variable so tests can point it at an httptest server.
var baseFedBoard = "https://www.federalreserve.gov"

// Provider is the Federal Reserve data provider.
type Provider struct {
	provider.BaseProvider
}

// New creates a new Federal Reserve provider and registers its fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Federal Reserve H.15 constant-maturity Treasury yields (free, no API key)",
			"https://www.federalreserve.gov/releases/h15/",
			nil, // no credentials required
		),
	}

	// Fed Board CSV-based.
	p.RegisterFetcher(newYieldPanelFetcher())
	return p
}

// Ping downloads the last H.15 observation.
func (p *Provider) Ping(ctx context.Context) error {
	u := buildH15URL(time.Time{}, time.Time{}) + "&lastobs=1"
	if _, err := fetchFedCSV(ctx, u); err != nil {
		return fmt.Errorf("federal_reserve ping: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// HTTP helpers.
// ---------------------------------------------------------------------------

var csvHeaders = map[string]string{
	"Accept":          "text/csv, */*",
	"Accept-Language": "en-US,en;q=0.9",
}

// fetchFedCSV fetches a Fed Board CSV endpoint and returns every record,
// header block included.
func fetchFedCSV(ctx context.Context, u string) ([][]string, error) {
	body, _, err := infra.DoGet(ctx, u, csvHeaders)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	reader := csv.NewReader(body)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // header rows are ragged

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fed csv: %w", err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("fed csv: empty response")
	}
	return records, nil
}

// buildH15URL builds a Fed Board H.15 CSV download URL. Zero dates leave
// the range open.
func buildH15URL(from, to time.Time) string {
	v := url.Values{}
	v.Set("rel", "H15")
	v.Set("series", h15Package)
	v.Set("from", ddpDate(from))
	v.Set("to", ddpDate(to))
	v.Set("filetype", "csv")
	v.Set("label", "include")
	v.Set("layout", "seriescolumn")
	v.Set("type", "package")
	return baseFedBoard + "/datadownload/Output.aspx?" + v.Encode()
}

func ddpDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(ddpDateLayout)
}

// ---------------------------------------------------------------------------
// Utility functions.
// ---------------------------------------------------------------------------

// newResult creates a FetchResult with the current timestamp.
func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}

// parseRate parses an H.15 cell. "ND" (no data) and blanks are missing.
func parseRate(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "ND" || s == "NA" || s == "NC" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// isDateLike checks if a string looks like a date (starts with 4 digits).
func isDateLike(s string) bool {
	if len(s) < 4 {
		return false
	}
	for _, c := range s[:4] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
