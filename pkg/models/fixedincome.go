package models

import "time"

// --- Treasury yield panel ---

// PanelRow holds the yields observed on a single calendar date, keyed by
// maturity code ("1mo", "10y", ...). Values are in percent.
type PanelRow struct {
	Date   time.Time          `json:"date"`
	Yields map[string]float64 `json:"yields"`
}

// Yield returns the yield for a maturity code and whether it is present.
func (r PanelRow) Yield(code string) (float64, bool) {
	v, ok := r.Yields[code]
	return v, ok
}

// YieldPanel is a date-indexed table of treasury yields, one column per
// maturity code. Panels straight from a provider may be unordered and
// incomplete; cleaned panels are sorted by date ascending and are never
// mutated after they leave the fetcher.
type YieldPanel struct {
	Codes     []string   `json:"codes"`  // requested maturity codes, ladder order
	Rows      []PanelRow `json:"rows"`
	Source    string     `json:"source"` // provider name, e.g. "fred"
	FetchedAt time.Time  `json:"fetched_at"`
	Dropped   int        `json:"dropped"` // rows excluded for missing values
}

// Len returns the number of rows in the panel.
func (p *YieldPanel) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Rows)
}

// Latest returns the most recent date in the panel.
func (p *YieldPanel) Latest() time.Time {
	if p.Len() == 0 {
		return time.Time{}
	}
	return p.Rows[len(p.Rows)-1].Date
}

// Oldest returns the earliest date in the panel.
func (p *YieldPanel) Oldest() time.Time {
	if p.Len() == 0 {
		return time.Time{}
	}
	return p.Rows[0].Date
}

// --- Yield curve ---

// YieldCurvePoint represents a single point on a yield curve.
type YieldCurvePoint struct {
	Code           string  `json:"code"`            // "1mo", "3mo", ... "30y"
	MaturityLabel  string  `json:"maturity_label"`  // "1-month", ... "30-year"
	DurationMonths int     `json:"duration_months"` // 1, 3, 6, 12, ... 360
	YieldPercent   float64 `json:"yield_percent"`
}

// YieldCurve is the ordered set of yields on one date, shortest maturity first.
type YieldCurve struct {
	Date   time.Time         `json:"date"`
	AsOf   int               `json:"as_of"` // rows back from the most recent date
	Points []YieldCurvePoint `json:"points"`
}

// Labels returns the maturity labels in curve order.
func (c *YieldCurve) Labels() []string {
	labels := make([]string, len(c.Points))
	for i, p := range c.Points {
		labels[i] = p.MaturityLabel
	}
	return labels
}

// Yields returns the yields in curve order.
func (c *YieldCurve) Yields() []float64 {
	ys := make([]float64, len(c.Points))
	for i, p := range c.Points {
		ys[i] = p.YieldPercent
	}
	return ys
}

// --- Inversion matrix ---

// InversionMatrix holds pairwise yield differences between maturities.
// Cells[i][j] is yield[i] - yield[j] for j >= i and 0 for j < i, so a
// positive cell marks an inversion of maturity i against the longer
// maturity j.
type InversionMatrix struct {
	Date   time.Time   `json:"date"`
	Labels []string    `json:"labels"` // same order on both axes
	Cells  [][]float64 `json:"cells"`
}

// Size returns the matrix dimension.
func (m *InversionMatrix) Size() int { return len(m.Labels) }

// At returns the cell at row i, column j.
func (m *InversionMatrix) At(i, j int) float64 { return m.Cells[i][j] }

// MinMax returns the smallest and largest cell values.
func (m *InversionMatrix) MinMax() (float64, float64) {
	var lo, hi float64
	for _, row := range m.Cells {
		for _, v := range row {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}

// Spread names one populated cell of an inversion matrix.
type Spread struct {
	Short  string  `json:"short"` // row maturity label
	Long   string  `json:"long"`  // column maturity label
	Spread float64 `json:"spread"`
}

// InversionSummary condenses an inversion matrix into headline numbers.
type InversionSummary struct {
	Date          time.Time `json:"date"`
	Pairs         int       `json:"pairs"`    // populated off-diagonal cells
	Inverted      int       `json:"inverted"` // cells with a positive spread
	Deepest       *Spread   `json:"deepest,omitempty"`
	Spread10Y2Y   float64   `json:"spread_10y_2y"`  // 10y minus 2y, percentage points
	Spread10Y3M   float64   `json:"spread_10y_3mo"` // 10y minus 3mo, percentage points
	InvertedCurve bool      `json:"inverted_curve"` // 10y yields less than 3mo
}
