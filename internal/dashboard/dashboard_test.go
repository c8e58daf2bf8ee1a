package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/treasurycurve/internal/yieldcurve"
	"github.com/seenimoa/treasurycurve/pkg/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// testPanel builds a cleaned panel with rows on consecutive days starting
// 2024-01-01. Row k has yields 5.0+k/100 falling by 0.1 per ladder rung.
func testPanel(rows int) *models.YieldPanel {
	p := &models.YieldPanel{Codes: yieldcurve.Codes(), Source: "stub", Dropped: 2}
	for k := 0; k < rows; k++ {
		r := models.PanelRow{Date: day(2024, 1, 1).AddDate(0, 0, k), Yields: map[string]float64{}}
		for i, code := range yieldcurve.Codes() {
			r.Yields[code] = 5.0 + float64(k)/100 - 0.1*float64(i)
		}
		p.Rows = append(p.Rows, r)
	}
	return p
}

type stubFetcher struct {
	panel     *models.YieldPanel
	err       error
	fetches   atomic.Int32
	refreshes atomic.Int32
	years     atomic.Int32
}

func (s *stubFetcher) FetchTrailing(_ context.Context, years int) (*models.YieldPanel, error) {
	s.fetches.Add(1)
	s.years.Store(int32(years))
	return s.panel, s.err
}

func (s *stubFetcher) RefreshTrailing(_ context.Context, years int) (*models.YieldPanel, error) {
	s.refreshes.Add(1)
	return s.panel, s.err
}

func (s *stubFetcher) SourceName() string { return "stub" }

type stubHeadlines struct {
	items []models.Headline
	err   error
	limit atomic.Int32
}

func (s *stubHeadlines) Headlines(_ context.Context, limit int) ([]models.Headline, error) {
	s.limit.Store(int32(limit))
	return s.items, s.err
}

func TestViewLatestByDefault(t *testing.T) {
	f := &stubFetcher{panel: testPanel(10)}
	h := &stubHeadlines{items: []models.Headline{{Title: "FOMC statement"}}}
	svc := New(f, h, Options{WindowYears: 5, HeadlineLimit: 4})

	v, err := svc.View(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, day(2024, 1, 10), v.Date)
	assert.Equal(t, 0, v.Index)
	assert.Equal(t, 9, v.Slider)
	assert.Equal(t, 10, v.Rows)
	assert.Equal(t, day(2024, 1, 1), v.Oldest)
	assert.Equal(t, day(2024, 1, 10), v.Latest)
	assert.Equal(t, "stub", v.Source)
	assert.Equal(t, 2, v.Dropped)
	require.Len(t, v.Curve.Points, 11)
	assert.InDelta(t, 5.09, v.Curve.Points[0].YieldPercent, 1e-9)
	assert.Equal(t, 11, v.Matrix.Size())
	assert.Equal(t, 55, v.Summary.Pairs)
	assert.Equal(t, 55, v.Summary.Inverted)
	require.Len(t, v.Headlines, 1)

	assert.EqualValues(t, 5, f.years.Load())
	assert.EqualValues(t, 4, h.limit.Load())
}

func TestViewSelectsOlderRow(t *testing.T) {
	svc := New(&stubFetcher{panel: testPanel(10)}, nil, Options{})

	v, err := svc.View(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 1, 1), v.Date)
	assert.Equal(t, 0, v.Slider)
	assert.InDelta(t, 5.0, v.Curve.Points[0].YieldPercent, 1e-9)
	assert.Nil(t, v.Headlines)
}

func TestViewIndexOutOfRange(t *testing.T) {
	svc := New(&stubFetcher{panel: testPanel(3)}, nil, Options{})

	for _, idx := range []int{-1, 3, 100} {
		_, err := svc.View(context.Background(), idx)
		var oor *yieldcurve.ErrIndexOutOfRange
		require.ErrorAs(t, err, &oor, "index %d", idx)
		assert.Equal(t, 3, oor.Rows)
	}
}

func TestViewPanelFailureFailsRender(t *testing.T) {
	fail := &yieldcurve.ErrDataSource{Source: "stub", Err: errors.New("connection refused")}
	h := &stubHeadlines{items: []models.Headline{{Title: "x"}}}
	svc := New(&stubFetcher{err: fail}, h, Options{})

	v, err := svc.View(context.Background(), 0)
	assert.Nil(t, v)
	var dse *yieldcurve.ErrDataSource
	require.ErrorAs(t, err, &dse)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestViewHeadlineFailureIsNotFatal(t *testing.T) {
	h := &stubHeadlines{err: errors.New("feed down")}
	svc := New(&stubFetcher{panel: testPanel(2)}, h, Options{})

	v, err := svc.View(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, v.Headlines)
	assert.Equal(t, day(2024, 1, 1), v.Date)
}

func TestCurveAndMatrix(t *testing.T) {
	svc := New(&stubFetcher{panel: testPanel(4)}, nil, Options{})

	c, err := svc.Curve(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 1, 2), c.Date)

	m, err := svc.Matrix(context.Background(), 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, m.At(0, 1), 1e-9)
	assert.Zero(t, m.At(1, 0))
}

func TestRefreshUsesRefreshPath(t *testing.T) {
	f := &stubFetcher{panel: testPanel(2)}
	svc := New(f, nil, Options{WindowYears: 3})

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.refreshes.Load())
	assert.EqualValues(t, 0, f.fetches.Load())
	assert.Equal(t, 3, svc.WindowYears())
	assert.Equal(t, "stub", svc.SourceName())
}

func TestNewDefaultsWindow(t *testing.T) {
	svc := New(&stubFetcher{}, nil, Options{})
	assert.Equal(t, yieldcurve.DefaultWindowYears, svc.WindowYears())
}

func TestDatesAndIndexForDate(t *testing.T) {
	svc := New(&stubFetcher{panel: testPanel(5)}, nil, Options{})

	dates, err := svc.Dates(context.Background())
	require.NoError(t, err)
	require.Len(t, dates, 5)
	assert.Equal(t, day(2024, 1, 5), dates[0])

	idx, err := svc.IndexForDate(context.Background(), day(2024, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	// Dates after the panel map to the latest row.
	idx, err = svc.IndexForDate(context.Background(), day(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = svc.IndexForDate(context.Background(), day(2023, 12, 1))
	var oor *yieldcurve.ErrIndexOutOfRange
	assert.ErrorAs(t, err, &oor)
}

func TestSliderMapping(t *testing.T) {
	for rows := 1; rows < 6; rows++ {
		for asOf := 0; asOf < rows; asOf++ {
			v := SliderValue(asOf, rows)
			assert.GreaterOrEqual(t, v, 0)
			assert.Less(t, v, rows)
			assert.Equal(t, asOf, IndexFromSlider(v, rows))
		}
	}
	assert.Equal(t, 1260, SliderValue(0, 1261), "most recent sits at the right end")
}

func TestHeadlines(t *testing.T) {
	h := &stubHeadlines{items: []models.Headline{{Title: "a"}, {Title: "b"}}}
	svc := New(&stubFetcher{panel: testPanel(3)}, h, Options{HeadlineLimit: 6})

	hs, err := svc.Headlines(context.Background())
	require.NoError(t, err)
	assert.Len(t, hs, 2)
	assert.EqualValues(t, 6, h.limit.Load())

	none := New(&stubFetcher{panel: testPanel(3)}, nil, Options{})
	hs, err = none.Headlines(context.Background())
	require.NoError(t, err)
	assert.Nil(t, hs)
}
