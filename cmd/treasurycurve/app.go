package main

import (
	"context"
	"fmt"

	"github.com/seenimoa/treasurycurve/internal/config"
	"github.com/seenimoa/treasurycurve/internal/dashboard"
	"github.com/seenimoa/treasurycurve/internal/infra"
	"github.com/seenimoa/treasurycurve/internal/news"
	"github.com/seenimoa/treasurycurve/internal/provider"
	"github.com/seenimoa/treasurycurve/internal/providers"
	"github.com/seenimoa/treasurycurve/internal/yieldcurve"
)

// app holds the wired provider registry and one dashboard per provider.
type app struct {
	cfg      *config.Config
	registry *provider.Registry
	boards   map[string]*dashboard.Service
}

// newApp registers the providers and builds a dashboard service for each
// one that can serve yield panels. Each service has its own panel cache.
func newApp(cfg *config.Config) (*app, error) {
	reg := provider.NewRegistry()
	if err := providers.RegisterAllTo(reg, cfg.Data.FREDAPIKey); err != nil {
		return nil, fmt.Errorf("registering providers: %w", err)
	}
	if _, err := reg.Get(cfg.Data.Provider); err != nil {
		return nil, err
	}

	var headlines dashboard.HeadlineSource
	if cfg.News.Enabled {
		feeds := make([]news.Feed, 0, len(cfg.News.Feeds))
		for _, f := range cfg.News.Feeds {
			feeds = append(feeds, news.Feed{Name: f.Name, URL: f.URL})
		}
		headlines = news.New(feeds)
	}

	opts := dashboard.Options{
		WindowYears:   cfg.Data.WindowYears,
		HeadlineLimit: cfg.News.Limit,
	}
	boards := make(map[string]*dashboard.Service)
	for _, name := range reg.ProvidersFor(provider.ModelTreasuryYieldPanel) {
		src := provider.NewPanelSource(reg, name)
		fetcher := yieldcurve.NewFetcher(src, infra.NewCache(cfg.CacheTTL()))
		boards[name] = dashboard.New(fetcher, headlines, opts)
	}
	infra.Debugf("dashboards: %d providers, primary %s", len(boards), cfg.Data.Provider)

	return &app{cfg: cfg, registry: reg, boards: boards}, nil
}

// primary returns the dashboard for the configured provider.
func (a *app) primary() *dashboard.Service {
	return a.boards[a.cfg.Data.Provider]
}

// resolveIndex picks the as-of index from --index or --date.
func resolveIndex(ctx context.Context, board *dashboard.Service, index int, date string) (int, error) {
	if date == "" {
		return index, nil
	}
	d, err := parseDateFlag(date)
	if err != nil {
		return 0, err
	}
	return board.IndexForDate(ctx, d)
}
