package yieldcurve

import (
	"math"
	"sort"
	"time"

	"github.com/seenimoa/treasurycurve/pkg/models"
)

// NormalizeDate strips the clock and zone from t, keeping the calendar date.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DropIncomplete returns a copy of panel holding only rows that carry a
// finite value for every code, sorted by date. Rows sharing a date are
// merged, later values winning. The input is left untouched.
func DropIncomplete(panel *models.YieldPanel, codes []string) *models.YieldPanel {
	out := &models.YieldPanel{
		Codes: append([]string(nil), codes...),
	}
	if panel == nil {
		return out
	}
	out.Source = panel.Source
	out.FetchedAt = panel.FetchedAt

	merged := make(map[time.Time]map[string]float64, len(panel.Rows))
	for _, r := range panel.Rows {
		d := NormalizeDate(r.Date)
		row, ok := merged[d]
		if !ok {
			row = make(map[string]float64, len(codes))
			merged[d] = row
		}
		for k, v := range r.Yields {
			row[k] = v
		}
	}

	dropped := 0
	for d, ys := range merged {
		complete := make(map[string]float64, len(codes))
		ok := true
		for _, c := range codes {
			v, present := ys[c]
			if !present || math.IsNaN(v) || math.IsInf(v, 0) {
				ok = false
				break
			}
			complete[c] = v
		}
		if !ok {
			dropped++
			continue
		}
		out.Rows = append(out.Rows, models.PanelRow{Date: d, Yields: complete})
	}
	sort.Slice(out.Rows, func(i, j int) bool {
		return out.Rows[i].Date.Before(out.Rows[j].Date)
	})
	out.Dropped = panel.Dropped + dropped
	return out
}

// Dates returns the panel dates, most recent first, so that Dates()[i] is
// the date Extract(panel, i) reports.
func Dates(panel *models.YieldPanel) []time.Time {
	n := panel.Len()
	dates := make([]time.Time, n)
	for i := 0; i < n; i++ {
		dates[i] = panel.Rows[n-1-i].Date
	}
	return dates
}

// IndexOf returns the as-of index of the most recent row on or before date,
// or -1 when date precedes the whole panel.
func IndexOf(panel *models.YieldPanel, date time.Time) int {
	d := NormalizeDate(date)
	n := panel.Len()
	// First row strictly after d.
	k := sort.Search(n, func(i int) bool { return panel.Rows[i].Date.After(d) })
	if k == 0 {
		return -1
	}
	return n - k
}
