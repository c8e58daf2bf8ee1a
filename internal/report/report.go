package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/seenimoa/treasurycurve/internal/dashboard"
	"github.com/seenimoa/treasurycurve/pkg/models"
	"github.com/seenimoa/treasurycurve/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Page Generator: orchestrates chart + template rendering
// ════════════════════════════════════════════════════════════════════

// PageTitle is the dashboard heading.
const PageTitle = "US Treasury Yield Curve"

// PageConfig controls page rendering.
type PageConfig struct {
	Title       string      // page title (default: PageTitle)
	WindowYears int         // history length shown in the slider label
	Live        bool        // include the slider and the static assets
	ChartCfg    ChartConfig // yield curve chart
	HeatmapCfg  ChartConfig // inversion heatmap
	Now         func() time.Time
}

// DefaultPageConfig returns the configuration for the live page.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Title:       PageTitle,
		WindowYears: 5,
		Live:        true,
		ChartCfg:    DefaultChartConfig(),
		HeatmapCfg:  DefaultHeatmapConfig(),
		Now:         time.Now,
	}
}

// ════════════════════════════════════════════════════════════════════
// Page Data: flattened for template rendering
// ════════════════════════════════════════════════════════════════════

// PageData is the template model passed to PageTemplate.
type PageData struct {
	Title       string
	DateLabel   string // YYYY-MM-DD of the selected row
	Index       int
	Slider      int
	SliderMax   int
	Rows        int
	WindowYears int
	Oldest      string
	Latest      string
	Source      string
	FetchedAt   string
	Dropped     int
	Live        bool
	GeneratedAt string

	Table      CurveTable
	CurveChart template.HTML
	Heatmap    template.HTML
	Summary    SummaryData
	Headlines  []HeadlineRow
}

// CurveTable is the curve as one row of yields under maturity headers.
type CurveTable struct {
	Headers []string
	Yields  []string
}

// SummaryData is the display form of an InversionSummary.
type SummaryData struct {
	Pairs         int
	Inverted      int
	Deepest       string
	Spread10Y2Y   string
	Spread10Y3M   string
	Class10Y2Y    string
	Class10Y3M    string
	InvertedCurve bool
}

// HeadlineRow is one headline in the page list.
type HeadlineRow struct {
	Title     string
	URL       string
	Source    string
	Published string
}

var pageTmpl = template.Must(template.New("page").Parse(PageTemplate))

// ════════════════════════════════════════════════════════════════════
// Generate Page
// ════════════════════════════════════════════════════════════════════

// RenderPage writes the dashboard page for v.
func RenderPage(w io.Writer, v *dashboard.View, cfg PageConfig) error {
	if v == nil {
		return fmt.Errorf("view is nil")
	}
	if err := pageTmpl.Execute(w, BuildPageData(v, cfg)); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	return nil
}

// GenerateHTML renders the dashboard page to a string.
func GenerateHTML(v *dashboard.View, cfg PageConfig) (string, error) {
	var buf bytes.Buffer
	if err := RenderPage(&buf, v, cfg); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildPageData flattens a view into template data.
func BuildPageData(v *dashboard.View, cfg PageConfig) PageData {
	if cfg.Title == "" {
		cfg.Title = PageTitle
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	data := PageData{
		Title:       cfg.Title,
		DateLabel:   utils.FormatDate(v.Date),
		Index:       v.Index,
		Slider:      v.Slider,
		SliderMax:   v.Rows - 1,
		Rows:        v.Rows,
		WindowYears: cfg.WindowYears,
		Oldest:      utils.FormatDate(v.Oldest),
		Latest:      utils.FormatDate(v.Latest),
		Source:      v.Source,
		FetchedAt:   utils.FormatDateTimeET(v.FetchedAt),
		Dropped:     v.Dropped,
		Live:        cfg.Live,
		GeneratedAt: utils.FormatDateTimeET(cfg.Now()),
		Table:       BuildCurveTable(v.Curve),
		Summary:     BuildSummary(v.Summary),
	}

	// SVG output is built from escaped strings only.
	data.CurveChart = template.HTML(YieldCurveChart(v.Curve, cfg.ChartCfg))
	data.Heatmap = template.HTML(InversionHeatmap(v.Matrix, cfg.HeatmapCfg))

	for _, h := range v.Headlines {
		row := HeadlineRow{Title: h.Title, URL: h.URL, Source: h.Source}
		if !h.PublishedAt.IsZero() {
			row.Published = h.PublishedAt.UTC().Format("Jan 2, 2006")
		}
		data.Headlines = append(data.Headlines, row)
	}
	return data
}

// BuildCurveTable lays out a curve for the table renderer.
func BuildCurveTable(c *models.YieldCurve) CurveTable {
	var t CurveTable
	if c == nil {
		return t
	}
	for _, p := range c.Points {
		t.Headers = append(t.Headers, p.MaturityLabel)
		t.Yields = append(t.Yields, fmt.Sprintf("%.2f", p.YieldPercent))
	}
	return t
}

// BuildSummary formats an inversion summary for display.
func BuildSummary(s models.InversionSummary) SummaryData {
	d := SummaryData{
		Pairs:         s.Pairs,
		Inverted:      s.Inverted,
		Spread10Y2Y:   utils.FormatSpread(s.Spread10Y2Y),
		Spread10Y3M:   utils.FormatSpread(s.Spread10Y3M),
		Class10Y2Y:    spreadClass(s.Spread10Y2Y),
		Class10Y3M:    spreadClass(s.Spread10Y3M),
		InvertedCurve: s.InvertedCurve,
	}
	if s.Deepest != nil {
		d.Deepest = fmt.Sprintf("%s over %s by %s", s.Deepest.Short, s.Deepest.Long, utils.FormatSpread(s.Deepest.Spread))
	}
	return d
}

func spreadClass(v float64) string {
	if v < 0 {
		return "negative"
	}
	return "positive"
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

// CurveText renders the curve as a two-column terminal table.
func CurveText(c *models.YieldCurve) string {
	if c == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Showing data for %s\n", utils.FormatDate(c.Date)))
	sb.WriteString(strings.Repeat("─", 24) + "\n")
	for _, p := range c.Points {
		sb.WriteString(utils.PadRight(p.MaturityLabel, 10))
		sb.WriteString(utils.PadLeft(fmt.Sprintf("%.2f", p.YieldPercent), 8))
		sb.WriteString("\n")
	}
	return sb.String()
}

// MatrixText renders the inversion matrix as a terminal grid with the
// maturity labels on both axes.
func MatrixText(m *models.InversionMatrix) string {
	if m == nil {
		return ""
	}
	const w = 9
	var sb strings.Builder
	sb.WriteString(utils.PadRight("", w))
	for _, l := range m.Labels {
		sb.WriteString(utils.PadLeft(l, w))
	}
	sb.WriteString("\n")
	for i, l := range m.Labels {
		sb.WriteString(utils.PadRight(l, w))
		for j := range m.Labels {
			sb.WriteString(utils.PadLeft(utils.FormatCell(m.At(i, j)), w))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// SummaryText renders the inversion summary as a few terminal lines.
func SummaryText(s models.InversionSummary) string {
	d := BuildSummary(s)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Inverted pairs: %d of %d\n", d.Inverted, d.Pairs))
	sb.WriteString(fmt.Sprintf("10y - 2y:       %s\n", d.Spread10Y2Y))
	sb.WriteString(fmt.Sprintf("10y - 3mo:      %s\n", d.Spread10Y3M))
	if d.Deepest != "" {
		sb.WriteString(fmt.Sprintf("Deepest:        %s\n", d.Deepest))
	}
	return sb.String()
}

// GenerateText renders a full terminal report for v.
func GenerateText(v *dashboard.View) string {
	if v == nil {
		return ""
	}
	line := strings.Repeat("═", 60)
	var sb strings.Builder
	sb.WriteString(line + "\n")
	sb.WriteString("  " + PageTitle + "\n")
	sb.WriteString(fmt.Sprintf("  Source: %s | %d days, %s to %s\n",
		v.Source, v.Rows, utils.FormatDate(v.Oldest), utils.FormatDate(v.Latest)))
	sb.WriteString(line + "\n\n")
	sb.WriteString(CurveText(v.Curve))
	sb.WriteString("\n")
	sb.WriteString(MatrixText(v.Matrix))
	sb.WriteString("\n")
	sb.WriteString(SummaryText(v.Summary))
	if len(v.Headlines) > 0 {
		sb.WriteString("\nHeadlines\n")
		for _, h := range v.Headlines {
			sb.WriteString(fmt.Sprintf("  • %s (%s)\n", h.Title, h.Source))
		}
	}
	return sb.String()
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
