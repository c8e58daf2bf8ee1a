package treasury

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/treasurycurve/internal/infra"
	"github.com/seenimoa/treasurycurve/internal/provider"
	"github.com/seenimoa/treasurycurve/internal/yieldcurve"
	"github.com/seenimoa/treasurycurve/pkg/models"
)

const (
	// maxYearPages bounds concurrent page downloads.
	maxYearPages = 3

	// pageCacheTTL bounds reuse of the current year's page, which gains a
	// row every business day. Pages of finished years no longer change and
	// are kept for closedYearTTL.
	pageCacheTTL  = 2 * time.Minute
	closedYearTTL = 24 * time.Hour

	paramYear = "year"
)

// currentYear is a variable so tests can fix the calendar.
var currentYear = func() int { return time.Now().UTC().Year() }

// ---- TreasuryYieldPanel fetcher ----

type yieldPanelFetcher struct {
	provider.BaseFetcher
}

func newYieldPanelFetcher() *yieldPanelFetcher {
	return &yieldPanelFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelTreasuryYieldPanel,
			"Daily par yield curve rates from Treasury.gov",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamEndDate},
			pageCacheTTL, 2, time.Second,
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

	codes := make([]string, len(mats))
	for i, m := range mats {
		codes[i] = m.Code
	}
	symbols := strings.Join(codes, ",")

	var (
		mu   sync.Mutex
		rows []models.PanelRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxYearPages)
	for year := start.Year(); year <= end.Year(); year++ {
		g.Go(func() error {
			parsed, err := f.yearRows(gctx, year, mats, symbols)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			for _, r := range parsed {
				if r.date.Before(start) || r.date.After(end) {
					continue
				}
				rows = append(rows, models.PanelRow{Date: r.date, Yields: maps.Clone(r.yields)})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	infra.Debugf("treasury: %d years, %d rows", end.Year()-start.Year()+1, len(rows))
	return &provider.FetchResult{
		Data: &models.YieldPanel{
			Codes:     codes,
			Rows:      rows,
			Source:    providerName,
			FetchedAt: time.Now(),
		},
		FetchedAt: time.Now(),
	}, nil
}

// yearRows returns the parsed table of one calendar year, from the fetcher
// cache when the page was read recently.
func (f *yieldPanelFetcher) yearRows(ctx context.Context, year int, mats []yieldcurve.Maturity, symbols string) ([]tableRow, error) {
	key := provider.CacheKey(provider.ModelTreasuryYieldPanel, provider.QueryParams{
		provider.ParamSymbol: symbols,
		paramYear:            strconv.Itoa(year),
	})
	if cached, ok := f.CacheGet(key); ok {
		return cached.([]tableRow), nil
	}

	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}
	doc, err := fetchYear(ctx, year)
	if err != nil {
		return nil, err
	}
	tbl := findTable(doc)
	if tbl == nil {
		return nil, fmt.Errorf("treasury.gov %d: no yield table on page", year)
	}

	parsed := parseTable(tbl, mats)
	if year < currentYear() {
		f.CacheSetTTL(key, parsed, closedYearTTL)
	} else {
		f.CacheSet(key, parsed)
	}
	return parsed, nil
}
