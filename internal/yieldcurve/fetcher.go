package yieldcurve

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/seenimoa/treasurycurve/internal/infra"
	"github.com/seenimoa/treasurycurve/pkg/models"
)

// DefaultCacheTTL is how long a fetched panel is served from cache.
const DefaultCacheTTL = 12 * time.Minute

// LoadTimeout bounds a shared source load once it is detached from the
// caller that started it.
const LoadTimeout = 2 * time.Minute

// DefaultWindowYears is the trailing history requested by FetchTrailing.
const DefaultWindowYears = 5

// ErrEmptyPanel is wrapped in ErrDataSource when no complete row survives.
var ErrEmptyPanel = errors.New("no complete rows in requested window")

// Source retrieves raw yield rows for a set of maturity codes. Rows may
// be incomplete; the Fetcher drops them.
type Source interface {
	Name() string
	FetchPanel(ctx context.Context, codes []string, start, end time.Time) (*models.YieldPanel, error)
}

// Cache is the key/value store the Fetcher keeps panels in. Expiry is the
// cache's concern; *infra.Cache satisfies it.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// Fetcher is the yield series fetcher. It validates the requested codes,
// serves panels from the injected cache, and otherwise calls the source
// once per key, dropping rows with missing values.
type Fetcher struct {
	source Source
	cache  Cache
	group  singleflight.Group
	now    func() time.Time
}

// NewFetcher creates a fetcher over src. A nil cache gets a private
// infra.Cache with DefaultCacheTTL.
func NewFetcher(src Source, cache Cache) *Fetcher {
	if cache == nil {
		cache = infra.NewCache(DefaultCacheTTL)
	}
	return &Fetcher{source: src, cache: cache, now: time.Now}
}

// SetClock overrides the clock used to derive trailing windows.
func (f *Fetcher) SetClock(now func() time.Time) { f.now = now }

// SourceName returns the name of the underlying source.
func (f *Fetcher) SourceName() string { return f.source.Name() }

// PanelKey builds the cache key for a fetch request.
func PanelKey(codes []string, start, end time.Time) string {
	return "panel:" + strings.Join(codes, ",") + ":" +
		NormalizeDate(start).Format("2006-01-02") + ":" +
		NormalizeDate(end).Format("2006-01-02")
}

// Fetch returns the cleaned panel for codes over [start, end].
func (f *Fetcher) Fetch(ctx context.Context, codes []string, start, end time.Time) (*models.YieldPanel, error) {
	return f.fetch(ctx, codes, start, end, false)
}

// Refresh fetches like Fetch but ignores any cached panel, replacing it.
func (f *Fetcher) Refresh(ctx context.Context, codes []string, start, end time.Time) (*models.YieldPanel, error) {
	return f.fetch(ctx, codes, start, end, true)
}

// TrailingWindow returns the [start, end] dates covering the last years
// ending today.
func (f *Fetcher) TrailingWindow(years int) (time.Time, time.Time) {
	if years <= 0 {
		years = DefaultWindowYears
	}
	end := NormalizeDate(f.now().UTC())
	return end.AddDate(0, 0, -365*years), end
}

// FetchTrailing fetches the full ladder over the trailing window.
func (f *Fetcher) FetchTrailing(ctx context.Context, years int) (*models.YieldPanel, error) {
	start, end := f.TrailingWindow(years)
	return f.Fetch(ctx, Codes(), start, end)
}

// RefreshTrailing is FetchTrailing without the cache read.
func (f *Fetcher) RefreshTrailing(ctx context.Context, years int) (*models.YieldPanel, error) {
	start, end := f.TrailingWindow(years)
	return f.Refresh(ctx, Codes(), start, end)
}

func (f *Fetcher) fetch(ctx context.Context, codes []string, start, end time.Time, force bool) (*models.YieldPanel, error) {
	mats, err := Resolve(codes)
	if err != nil {
		return nil, err
	}
	ordered := make([]string, len(mats))
	for i, m := range mats {
		ordered[i] = m.Code
	}
	start, end = NormalizeDate(start), NormalizeDate(end)
	key := PanelKey(ordered, start, end)

	if !force {
		if p, ok := f.cached(key); ok {
			infra.Debugf("panel cache hit %s", key)
			return p, nil
		}
	}

	// The load is shared by every caller of key, so it must not die with
	// whichever request happened to start it. Each caller still stops
	// waiting when its own context ends.
	ch := f.group.DoChan(key, func() (any, error) {
		if !force {
			if p, ok := f.cached(key); ok {
				return p, nil
			}
		}
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()
		return f.load(lctx, ordered, start, end, key)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.YieldPanel), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *Fetcher) cached(key string) (*models.YieldPanel, bool) {
	v, ok := f.cache.Get(key)
	if !ok {
		return nil, false
	}
	p, ok := v.(*models.YieldPanel)
	return p, ok
}

func (f *Fetcher) load(ctx context.Context, codes []string, start, end time.Time, key string) (*models.YieldPanel, error) {
	name := f.source.Name()
	raw, err := f.source.FetchPanel(ctx, codes, start, end)
	if err != nil {
		var dse *ErrDataSource
		if errors.As(err, &dse) {
			return nil, err
		}
		return nil, &ErrDataSource{Source: name, Err: err}
	}

	panel := DropIncomplete(raw, codes)
	if panel.Source == "" {
		panel.Source = name
	}
	if panel.FetchedAt.IsZero() {
		panel.FetchedAt = f.now()
	}
	if panel.Len() == 0 {
		return nil, &ErrDataSource{Source: name, Err: ErrEmptyPanel}
	}
	if panel.Dropped > 0 {
		infra.Infof("%s: dropped %d incomplete rows, kept %d", name, panel.Dropped, panel.Len())
	}

	f.cache.Set(key, panel)
	return panel, nil
}
