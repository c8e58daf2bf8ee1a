// Package dashboard assembles one render of the yield dashboard: the panel,
// the curve for the selected date, its inversion matrix and summary, and
// optional headlines.
package dashboard

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/treasurycurve/internal/infra"
	"github.com/seenimoa/treasurycurve/internal/yieldcurve"
	"github.com/seenimoa/treasurycurve/pkg/models"
)

// PanelFetcher supplies the cleaned trailing panel. *yieldcurve.Fetcher
// satisfies it.
type PanelFetcher interface {
	FetchTrailing(ctx context.Context, years int) (*models.YieldPanel, error)
	RefreshTrailing(ctx context.Context, years int) (*models.YieldPanel, error)
	SourceName() string
}

// HeadlineSource supplies headlines. *news.News satisfies it.
type HeadlineSource interface {
	Headlines(ctx context.Context, limit int) ([]models.Headline, error)
}

// Options configure a Service.
type Options struct {
	WindowYears   int
	HeadlineLimit int
}

// View is everything the page shows for one selected date.
type View struct {
	Date      time.Time               `json:"date"`
	Index     int                     `json:"index"` // as-of index, 0 = most recent
	Slider    int                     `json:"slider"`
	Rows      int                     `json:"rows"`
	Oldest    time.Time               `json:"oldest"`
	Latest    time.Time               `json:"latest"`
	Source    string                  `json:"source"`
	FetchedAt time.Time               `json:"fetched_at"`
	Dropped   int                     `json:"dropped"`
	Curve     *models.YieldCurve      `json:"curve"`
	Matrix    *models.InversionMatrix `json:"matrix"`
	Summary   models.InversionSummary `json:"summary"`
	Headlines []models.Headline       `json:"headlines,omitempty"`
}

// Service runs render passes against a panel fetcher.
type Service struct {
	fetcher   PanelFetcher
	headlines HeadlineSource
	opts      Options
}

// New creates a dashboard service. headlines may be nil.
func New(fetcher PanelFetcher, headlines HeadlineSource, opts Options) *Service {
	if opts.WindowYears <= 0 {
		opts.WindowYears = yieldcurve.DefaultWindowYears
	}
	return &Service{fetcher: fetcher, headlines: headlines, opts: opts}
}

// WindowYears returns the trailing window the service requests.
func (s *Service) WindowYears() int { return s.opts.WindowYears }

// SourceName names the panel source.
func (s *Service) SourceName() string { return s.fetcher.SourceName() }

// Panel returns the cleaned trailing panel.
func (s *Service) Panel(ctx context.Context) (*models.YieldPanel, error) {
	return s.fetcher.FetchTrailing(ctx, s.opts.WindowYears)
}

// Refresh refetches the trailing panel, replacing the cached copy.
func (s *Service) Refresh(ctx context.Context) (*models.YieldPanel, error) {
	return s.fetcher.RefreshTrailing(ctx, s.opts.WindowYears)
}

// Dates returns the panel dates, most recent first; Dates[asOf] is the
// date a view for asOf shows.
func (s *Service) Dates(ctx context.Context) ([]time.Time, error) {
	panel, err := s.Panel(ctx)
	if err != nil {
		return nil, err
	}
	return yieldcurve.Dates(panel), nil
}

// IndexForDate returns the as-of index of the most recent row on or before
// date. A date older than the whole panel is out of range.
func (s *Service) IndexForDate(ctx context.Context, date time.Time) (int, error) {
	panel, err := s.Panel(ctx)
	if err != nil {
		return 0, err
	}
	asOf := yieldcurve.IndexOf(panel, date)
	if asOf < 0 {
		return 0, &yieldcurve.ErrIndexOutOfRange{Index: asOf, Rows: panel.Len()}
	}
	return asOf, nil
}

// Curve returns the curve asOf rows back from the most recent date.
func (s *Service) Curve(ctx context.Context, asOf int) (*models.YieldCurve, error) {
	panel, err := s.Panel(ctx)
	if err != nil {
		return nil, err
	}
	return yieldcurve.Extract(panel, asOf)
}

// Matrix returns the inversion matrix for the curve at asOf.
func (s *Service) Matrix(ctx context.Context, asOf int) (*models.InversionMatrix, error) {
	curve, err := s.Curve(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return yieldcurve.BuildInversionMatrix(curve), nil
}

// Headlines returns the configured headlines, or nil when the service has
// no headline source.
func (s *Service) Headlines(ctx context.Context) ([]models.Headline, error) {
	if s.headlines == nil {
		return nil, nil
	}
	return s.headlines.Headlines(ctx, s.opts.HeadlineLimit)
}

// View runs a full render pass for asOf. The panel and headlines are
// fetched concurrently; a panel failure fails the view, a headline failure
// only leaves the headlines empty.
func (s *Service) View(ctx context.Context, asOf int) (*View, error) {
	var (
		panel     *models.YieldPanel
		headlines []models.Headline
		mu        sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.Panel(gctx)
		if err != nil {
			return err
		}
		mu.Lock()
		panel = p
		mu.Unlock()
		return nil
	})
	if s.headlines != nil {
		g.Go(func() error {
			hs, err := s.headlines.Headlines(gctx, s.opts.HeadlineLimit)
			if err != nil {
				infra.Warnf("dashboard: headlines unavailable: %v", err)
				return nil
			}
			mu.Lock()
			headlines = hs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	v, err := Render(panel, asOf)
	if err != nil {
		return nil, err
	}
	v.Headlines = headlines
	return v, nil
}

// Render builds the view for asOf from an already fetched panel.
func Render(panel *models.YieldPanel, asOf int) (*View, error) {
	curve, err := yieldcurve.Extract(panel, asOf)
	if err != nil {
		return nil, err
	}
	m := yieldcurve.BuildInversionMatrix(curve)

	return &View{
		Date:      curve.Date,
		Index:     asOf,
		Slider:    SliderValue(asOf, panel.Len()),
		Rows:      panel.Len(),
		Oldest:    panel.Oldest(),
		Latest:    panel.Latest(),
		Source:    panel.Source,
		FetchedAt: panel.FetchedAt,
		Dropped:   panel.Dropped,
		Curve:     curve,
		Matrix:    m,
		Summary:   yieldcurve.Summarize(curve, m),
	}, nil
}

// SliderValue maps an as-of index to the slider position. The slider runs
// oldest (0) to most recent (rows-1).
func SliderValue(asOf, rows int) int {
	return rows - 1 - asOf
}

// IndexFromSlider maps a slider position back to an as-of index.
func IndexFromSlider(v, rows int) int {
	return rows - 1 - v
}
