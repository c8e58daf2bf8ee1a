package fred

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/treasurycurve/internal/infra"
	"github.com/seenimoa/treasurycurve/internal/provider"
	"github.com/seenimoa/treasurycurve/internal/yieldcurve"
	"github.com/seenimoa/treasurycurve/pkg/models"
)

// seriesCacheTTL bounds how long one downloaded series is reused. It is
// short of the panel cache so a refresh after a partial failure only
// downloads the series that failed.
const seriesCacheTTL = 2 * time.Minute

// ---- TreasuryYieldPanel fetcher ----
// Returns a date-indexed panel of constant maturity yields, one DGS* series
// per requested maturity. Rows are aligned by observation date; a "."
// observation leaves that maturity absent from the row.

type yieldPanelFetcher struct {
	provider.BaseFetcher
}

func newYieldPanelFetcher() *yieldPanelFetcher {
	return &yieldPanelFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelTreasuryYieldPanel,
			"Daily Treasury constant maturity yields from FRED",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamEndDate},
			seriesCacheTTL, 20, time.Second,
		),
	}
}

func (f *yieldPanelFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	apiKey := params[paramAPIKey]

	mats, err := yieldcurve.Resolve(provider.SymbolList(params))
	if err != nil {
		return nil, err
	}
	start, end, err := provider.DateRange(params)
	if err != nil {
		return nil, err
	}
	startStr, endStr := start.Format(provider.DateLayout), end.Format(provider.DateLayout)

	var (
		mu   sync.Mutex
		rows = make(map[time.Time]map[string]float64)
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, m := range mats {
		g.Go(func() error {
			obs, err := f.series(gctx, m.FREDSeries, apiKey, startStr, endStr)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			for _, o := range obs {
				v, ok := parseValue(o.Value)
				if !ok {
					continue
				}
				d := parseFredDate(o.Date)
				if d.IsZero() {
					continue
				}
				d = yieldcurve.NormalizeDate(d)
				row, ok := rows[d]
				if !ok {
					row = make(map[string]float64, len(mats))
					rows[d] = row
				}
				row[m.Code] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	codes := make([]string, len(mats))
	for i, m := range mats {
		codes[i] = m.Code
	}
	panel := &models.YieldPanel{
		Codes:     codes,
		Rows:      make([]models.PanelRow, 0, len(rows)),
		Source:    providerName,
		FetchedAt: time.Now(),
	}
	for d, ys := range rows {
		panel.Rows = append(panel.Rows, models.PanelRow{Date: d, Yields: ys})
	}
	infra.Debugf("fred: %d series, %d dates %s..%s", len(mats), len(rows), startStr, endStr)
	return newResult(panel), nil
}

// series returns the observations of one series over [start, end], from
// the fetcher cache when the same window was downloaded recently.
func (f *yieldPanelFetcher) series(ctx context.Context, id, apiKey, start, end string) ([]fredObservation, error) {
	key := provider.CacheKey(provider.ModelTreasuryYieldPanel, provider.QueryParams{
		provider.ParamSymbol:    id,
		provider.ParamStartDate: start,
		provider.ParamEndDate:   end,
	})
	if cached, ok := f.CacheGet(key); ok {
		return cached.([]fredObservation), nil
	}

	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}
	obs, err := fetchSeries(ctx, id, apiKey, start, end)
	if err != nil {
		return nil, err
	}
	f.CacheSet(key, obs)
	return obs, nil
}
