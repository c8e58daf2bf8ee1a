package federalreserve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/treasurycurve/internal/infra"
	"github.com/seenimoa/treasurycurve/internal/provider"
	"github.com/seenimoa/treasurycurve/internal/yieldcurve"
	"github.com/seenimoa/treasurycurve/pkg/models"
)

// ---------------------------------------------------------------------------
// TreasuryYieldPanel: H.15 daily constant-maturity yields.
// One CSV holds every maturity; columns are matched by series identifier.
// ---------------------------------------------------------------------------

type yieldPanelFetcher struct {
	provider.BaseFetcher
}

func newYieldPanelFetcher() *yieldPanelFetcher {
	return &yieldPanelFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelTreasuryYieldPanel,
			"Federal Reserve H.15 Treasury constant maturities",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamEndDate},
		),
	}
}

func (f *yieldPanelFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	mats, err := yieldcurve.Resolve(provider.SymbolList(params))
	if err != nil {
		return nil, err
	}
	start, end, err := provider.DateRange(params)
	if err != nil {
		return nil, err
	}
	start, end = yieldcurve.NormalizeDate(start), yieldcurve.NormalizeDate(end)

	records, err := f.download(ctx, start, end)
	if err != nil {
		return nil, err
	}

	cols, err := seriesColumns(records, mats)
	if err != nil {
		return nil, err
	}

	codes := make([]string, len(mats))
	for i, m := range mats {
		codes[i] = m.Code
	}
	panel := &models.YieldPanel{
		Codes:     codes,
		Source:    providerName,
		FetchedAt: time.Now(),
	}
	for _, row := range records {
		if len(row) == 0 || !isDateLike(row[0]) {
			continue
		}
		d, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
		if err != nil || d.Before(start) || d.After(end) {
			continue
		}
		ys := make(map[string]float64, len(mats))
		for code, col := range cols {
			if col >= len(row) {
				continue
			}
			if v, ok := parseRate(row[col]); ok {
				ys[code] = v
			}
		}
		panel.Rows = append(panel.Rows, models.PanelRow{Date: d, Yields: ys})
	}

	infra.Debugf("federal_reserve: %d rows %s..%s", len(panel.Rows),
		start.Format(provider.DateLayout), end.Format(provider.DateLayout))
	return newResult(panel), nil
}

// download returns the CSV records for [start, end]. One download carries
// every maturity, so it is cached by window alone.
func (f *yieldPanelFetcher) download(ctx context.Context, start, end time.Time) ([][]string, error) {
	key := provider.CacheKey(provider.ModelTreasuryYieldPanel, provider.QueryParams{
		provider.ParamStartDate: start.Format(provider.DateLayout),
		provider.ParamEndDate:   end.Format(provider.DateLayout),
	})
	if cached, ok := f.CacheGet(key); ok {
		return cached.([][]string), nil
	}

	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}
	records, err := fetchFedCSV(ctx, buildH15URL(start, end))
	if err != nil {
		return nil, fmt.Errorf("h15: %w", err)
	}
	f.CacheSet(key, records)
	return records, nil
}

// seriesColumns maps each requested maturity code to its CSV column. The
// header block carries the series identifiers on the "Time Period" row,
// and on the "Unique Identifier:" row prefixed with "H15/H15/".
func seriesColumns(records [][]string, mats []yieldcurve.Maturity) (map[string]int, error) {
	if len(mats) == 0 {
		return nil, fmt.Errorf("h15: no maturities requested")
	}
	var best map[string]int
	for _, row := range records {
		if len(row) == 0 {
			continue
		}
		head := strings.TrimSpace(row[0])
		if head != "Time Period" && head != "Unique Identifier:" {
			continue
		}
		cols := make(map[string]int, len(mats))
		for i, cell := range row[1:] {
			id := strings.TrimPrefix(strings.TrimSpace(cell), "H15/H15/")
			for _, m := range mats {
				if id == m.H15Series {
					cols[m.Code] = i + 1
				}
			}
		}
		if len(cols) == len(mats) {
			return cols, nil
		}
		if len(cols) > len(best) {
			best = cols
		}
	}
	for _, m := range mats {
		if _, ok := best[m.Code]; !ok {
			return nil, fmt.Errorf("h15: no column for series %s (%s)", m.H15Series, m.Code)
		}
	}
	return best, nil
}
