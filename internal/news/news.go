// Package news fetches monetary-policy headlines shown beside the yield
// curve. Feeds are RSS or Atom; failed feeds are skipped.
package news

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/treasurycurve/internal/infra"
	"github.com/seenimoa/treasurycurve/pkg/models"
)

// DefaultCacheTTL is how long a merged headline list is reused.
const DefaultCacheTTL = 10 * time.Minute

// Feed is one configured headline source.
type Feed struct {
	Name string `mapstructure:"name" json:"name"`
	URL  string `mapstructure:"url" json:"url"`
}

// DefaultFeeds lists the Federal Reserve press release feeds.
var DefaultFeeds = []Feed{
	{
		Name: "Federal Reserve",
		URL:  "https://www.federalreserve.gov/feeds/press_monetary.xml",
	},
}

// ErrAllFeedsFailed is returned when no configured feed could be read.
var ErrAllFeedsFailed = errors.New("all headline feeds failed")

// News merges headlines from a set of feeds.
type News struct {
	feeds   []Feed
	cache   *infra.Cache
	limiter *infra.RateLimiter
	parser  *gofeed.Parser
}

// New creates a headline source over feeds. An empty list uses DefaultFeeds.
func New(feeds []Feed) *News {
	if len(feeds) == 0 {
		feeds = DefaultFeeds
	}
	return &News{
		feeds:   feeds,
		cache:   infra.NewCache(DefaultCacheTTL),
		limiter: infra.NewRateLimiter(2, time.Second),
		parser:  gofeed.NewParser(),
	}
}

// Feeds returns the configured feeds.
func (n *News) Feeds() []Feed { return n.feeds }

// Headlines returns up to limit headlines from all feeds, newest first.
// A limit of zero or less returns everything.
func (n *News) Headlines(ctx context.Context, limit int) ([]models.Headline, error) {
	cacheKey := fmt.Sprintf("headlines:%d", limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.Headline), nil
	}

	var (
		all    []models.Headline
		failed int
		errs   []error
	)
	for _, f := range n.feeds {
		items, err := n.fetchFeed(ctx, f)
		if err != nil {
			infra.Warnf("headlines: %v", err)
			failed++
			errs = append(errs, err)
			continue
		}
		all = append(all, items...)
	}
	if len(n.feeds) > 0 && failed == len(n.feeds) {
		return nil, fmt.Errorf("%w: %w", ErrAllFeedsFailed, errors.Join(errs...))
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	n.cache.Set(cacheKey, all)
	return all, nil
}

// fetchFeed downloads and parses one feed.
func (n *News) fetchFeed(ctx context.Context, f Feed) ([]models.Headline, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, _, err := infra.DoGet(ctx, f.URL, map[string]string{
		"Accept": "application/rss+xml, application/atom+xml, application/xml",
	})
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", f.Name, err)
	}
	defer body.Close()

	feed, err := n.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", f.Name, err)
	}

	out := make([]models.Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		h := models.Headline{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Source:  f.Name,
			Summary: cleanHTML(item.Description),
		}
		switch {
		case item.PublishedParsed != nil:
			h.PublishedAt = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			h.PublishedAt = *item.UpdatedParsed
		}
		out = append(out, h)
	}
	return out, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
