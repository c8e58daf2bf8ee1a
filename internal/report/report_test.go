package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/treasurycurve/internal/dashboard"
	"github.com/seenimoa/treasurycurve/internal/yieldcurve"
	"github.com/seenimoa/treasurycurve/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// samplePanel has three complete rows starting 2024-01-01; the curve
// rises 0.1 per rung from 4.0 plus k/100 on row k.
func samplePanel() *models.YieldPanel {
	p := &models.YieldPanel{Codes: yieldcurve.Codes(), Source: "fred"}
	for k := 0; k < 3; k++ {
		r := models.PanelRow{Date: day(2024, 1, 1+k), Yields: map[string]float64{}}
		for i, code := range yieldcurve.Codes() {
			r.Yields[code] = 4.0 + float64(k)/100 + 0.1*float64(i)
		}
		p.Rows = append(p.Rows, r)
	}
	return p
}

func sampleView(t *testing.T, asOf int) *dashboard.View {
	t.Helper()
	v, err := dashboard.Render(samplePanel(), asOf)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	v.Headlines = []models.Headline{
		{Title: "Federal Reserve issues FOMC statement", URL: "https://example.com/a", Source: "Federal Reserve", PublishedAt: day(2024, 1, 31)},
		{Title: "<script>alert(1)</script>", URL: "https://example.com/b", Source: "Federal Reserve"},
	}
	return v
}

func fixedNow() time.Time { return time.Date(2024, 1, 3, 17, 0, 0, 0, time.UTC) }

// ════════════════════════════════════════════════════════════════════
// Chart Tests
// ════════════════════════════════════════════════════════════════════

func TestYieldCurveChart_Basic(t *testing.T) {
	v := sampleView(t, 0)
	svg := YieldCurveChart(v.Curve, DefaultChartConfig())

	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("expected a complete SVG document")
	}
	if !strings.Contains(svg, "Yield Curve 2024-01-03") {
		t.Error("expected default title with the curve date")
	}
	for _, label := range []string{"1-month", "2-year", "30-year"} {
		if !strings.Contains(svg, ">"+label+"</text>") {
			t.Errorf("expected tick label %s", label)
		}
	}
	// 11 rotated tick labels plus the rotated y-axis title
	if got := strings.Count(svg, "rotate(-90,"); got != 12 {
		t.Errorf("rotated labels: got %d, want 12", got)
	}
	if got := strings.Count(svg, "<circle"); got != 11 {
		t.Errorf("points: got %d, want 11", got)
	}
	if !strings.Contains(svg, "Treasury Duration") {
		t.Error("expected x-axis title")
	}
}

func TestYieldCurveChart_ProportionalAxis(t *testing.T) {
	v := sampleView(t, 0)
	svg := YieldCurveChart(v.Curve, DefaultChartConfig())

	// Plot area spans x 60..610 and months 1..360, baseline at y=340.
	for _, tick := range []string{
		`x1="60.0" y1="340"`,  // 1-month
		`x1="242.3" y1="340"`, // 10-year
		`x1="610.0" y1="340"`, // 30-year
	} {
		if !strings.Contains(svg, tick) {
			t.Errorf("expected tick at %s", tick)
		}
	}
}

func TestYieldCurveChart_Empty(t *testing.T) {
	svg := YieldCurveChart(nil, ChartConfig{})
	if !strings.Contains(svg, "No data") {
		t.Error("expected empty-state message")
	}
	svg = YieldCurveChart(&models.YieldCurve{}, ChartConfig{})
	if !strings.Contains(svg, "No data") {
		t.Error("expected empty-state message for a curve without points")
	}
}

func TestInversionHeatmap_CellsAndColors(t *testing.T) {
	m := &models.InversionMatrix{
		Date:   day(2024, 1, 3),
		Labels: []string{"a", "b", "c"},
		Cells: [][]float64{
			{0, -0.5, 1.0},
			{0, 0, 0.25},
			{0, 0, 0},
		},
	}
	svg := InversionHeatmap(m, DefaultHeatmapConfig())

	if got := strings.Count(svg, "<title>"); got != 9 {
		t.Errorf("cells: got %d, want 9", got)
	}
	for _, want := range []string{">1.00<", ">-0.50<", ">0.25<", ">0.00<"} {
		if !strings.Contains(svg, want) {
			t.Errorf("expected annotation %s", want)
		}
	}
	if !strings.Contains(svg, `fill="#ff0000"`) {
		t.Error("largest positive (inverted) cell should be pure red")
	}
	if !strings.Contains(svg, `fill="#80c080"`) {
		t.Error("-0.5 on a scale of 1 should be half green")
	}
	if strings.Contains(svg, "legend") || strings.Contains(svg, "colorbar") {
		t.Error("heatmap should carry no legend")
	}
}

func TestInversionHeatmap_InvertedCellIsRed(t *testing.T) {
	curve := &models.YieldCurve{
		Date: day(2023, 7, 3),
		Points: []models.YieldCurvePoint{
			{Code: "3mo", MaturityLabel: "3-month", DurationMonths: 3, YieldPercent: 5.40},
			{Code: "10y", MaturityLabel: "10-year", DurationMonths: 120, YieldPercent: 4.30},
		},
	}
	m := yieldcurve.BuildInversionMatrix(curve)
	svg := InversionHeatmap(m, DefaultHeatmapConfig())

	cell := `fill="#ff0000"><title>3-month vs 10-year: 1.10</title>`
	if !strings.Contains(svg, cell) {
		t.Errorf("3-month over 10-year should be filled pure red; svg:\n%s", svg)
	}
	if strings.Contains(svg, `fill="#008000"`) {
		t.Error("no cell of an inverted two-point curve should be green")
	}

	fill, _ := heatColor(-1, 1)
	if fill != "#008000" {
		t.Errorf("normal spread fill: got %s, want #008000", fill)
	}
}

func TestInversionHeatmap_FullLadder(t *testing.T) {
	v := sampleView(t, 0)
	svg := InversionHeatmap(v.Matrix, DefaultHeatmapConfig())
	if got := strings.Count(svg, "<title>"); got != 121 {
		t.Errorf("cells: got %d, want 121", got)
	}
	if !strings.Contains(svg, "Inversion Matrix 2024-01-03") {
		t.Error("expected default title with the matrix date")
	}
	if got := strings.Count(svg, "rotate(-45,"); got != 11 {
		t.Errorf("column labels: got %d, want 11", got)
	}
}

func TestInversionHeatmap_Empty(t *testing.T) {
	if svg := InversionHeatmap(nil, ChartConfig{}); !strings.Contains(svg, "No data") {
		t.Error("expected empty-state message")
	}
}

func TestHeatColor(t *testing.T) {
	tests := []struct {
		v, scale float64
		fill     string
		ink      string
	}{
		{0, 1, "#ffffff", "#333333"},
		{0.3, 0, "#ffffff", "#333333"},
		{-1, 1, "#ff0000", "#ffffff"},
		{1, 1, "#008000", "#ffffff"},
		{-0.5, 1, "#ff8080", "#333333"},
		{2, 1, "#008000", "#ffffff"},
	}
	for _, tc := range tests {
		fill, ink := heatColor(tc.v, tc.scale)
		if fill != tc.fill || ink != tc.ink {
			t.Errorf("heatColor(%v, %v) = %s, %s; want %s, %s", tc.v, tc.scale, fill, ink, tc.fill, tc.ink)
		}
	}
}

func TestEscapeXML(t *testing.T) {
	if got := escapeXML(`<a & "b">`); got != "&lt;a &amp; &quot;b&quot;&gt;" {
		t.Errorf("escapeXML = %s", got)
	}
}

// ════════════════════════════════════════════════════════════════════
// Page Tests
// ════════════════════════════════════════════════════════════════════

func TestGenerateHTML_Live(t *testing.T) {
	cfg := DefaultPageConfig()
	cfg.Now = fixedNow
	html, err := GenerateHTML(sampleView(t, 0), cfg)
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}

	for _, want := range []string{
		"<title>US Treasury Yield Curve</title>",
		"Showing data for <strong>2024-01-03</strong>",
		`id="date-slider" name="slider" min="0" max="2" value="2"`,
		"5 year history",
		"<th>30-year</th>",
		"<td>4.02</td>",
		"/static/app.js",
		"/static/style.css",
		"Federal Reserve issues FOMC statement",
		"Jan 31, 2024",
		"0 of 55",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("headline titles must be escaped")
	}
	if got := strings.Count(html, "<svg"); got != 2 {
		t.Errorf("svg count: got %d, want 2", got)
	}
}

func TestGenerateHTML_Export(t *testing.T) {
	cfg := DefaultPageConfig()
	cfg.Live = false
	html, err := GenerateHTML(sampleView(t, 2), cfg)
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}
	if strings.Contains(html, "/static/app.js") || strings.Contains(html, "date-slider") {
		t.Error("exported page should not reference live assets")
	}
	if !strings.Contains(html, "Showing data for <strong>2024-01-01</strong>") {
		t.Error("expected the oldest date for as-of 2")
	}
}

func TestRenderPage_NilView(t *testing.T) {
	if err := RenderPage(&strings.Builder{}, nil, DefaultPageConfig()); err == nil {
		t.Error("expected error for nil view")
	}
}

func TestBuildSummary(t *testing.T) {
	s := BuildSummary(models.InversionSummary{
		Pairs:         6,
		Inverted:      5,
		Deepest:       &models.Spread{Short: "3-month", Long: "10-year", Spread: 1.1},
		Spread10Y2Y:   -0.6,
		Spread10Y3M:   -1.1,
		InvertedCurve: true,
	})
	if s.Deepest != "3-month over 10-year by +1.10 pp" {
		t.Errorf("Deepest = %q", s.Deepest)
	}
	if s.Spread10Y2Y != "-0.60 pp" || s.Class10Y2Y != "negative" {
		t.Errorf("10y2y = %q (%s)", s.Spread10Y2Y, s.Class10Y2Y)
	}
	if !s.InvertedCurve {
		t.Error("expected inverted curve flag")
	}
}

func TestBuildCurveTable(t *testing.T) {
	tbl := BuildCurveTable(sampleView(t, 0).Curve)
	if len(tbl.Headers) != 11 || len(tbl.Yields) != 11 {
		t.Fatalf("table size: %d headers, %d yields", len(tbl.Headers), len(tbl.Yields))
	}
	if tbl.Headers[0] != "1-month" || tbl.Yields[0] != "4.02" {
		t.Errorf("first column: %s %s", tbl.Headers[0], tbl.Yields[0])
	}
	if got := BuildCurveTable(nil); len(got.Headers) != 0 {
		t.Error("nil curve should give an empty table")
	}
}

// ════════════════════════════════════════════════════════════════════
// Text Tests
// ════════════════════════════════════════════════════════════════════

func TestCurveText(t *testing.T) {
	out := CurveText(sampleView(t, 0).Curve)
	if !strings.HasPrefix(out, "Showing data for 2024-01-03\n") {
		t.Errorf("unexpected header: %q", strings.SplitN(out, "\n", 2)[0])
	}
	if !strings.Contains(out, "10-year       4.82") {
		t.Errorf("expected aligned 10-year row in:\n%s", out)
	}
}

func TestMatrixText(t *testing.T) {
	out := MatrixText(sampleView(t, 0).Matrix)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 12 {
		t.Fatalf("lines: got %d, want 12", len(lines))
	}
	if !strings.HasPrefix(lines[1], "1-month       0.00    -0.10") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestGenerateText(t *testing.T) {
	out := GenerateText(sampleView(t, 0))
	for _, want := range []string{PageTitle, "Source: fred | 3 days, 2024-01-01 to 2024-01-03", "Inverted pairs: 0 of 55", "Headlines"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in text report", want)
		}
	}
	if GenerateText(nil) != "" {
		t.Error("nil view should render nothing")
	}
}

// ════════════════════════════════════════════════════════════════════
// Export Tests
// ════════════════════════════════════════════════════════════════════

func TestDetectPDFEngine(t *testing.T) {
	switch engine := DetectPDFEngine(); engine {
	case EngineWKHTML, EngineChromium, EngineNone:
	default:
		t.Errorf("unexpected engine: %s", engine)
	}
}

func TestExport_NoOutputPath(t *testing.T) {
	if _, err := Export(context.Background(), "<html></html>", ExportConfig{}); err == nil {
		t.Error("expected error for empty output path")
	}
}

func TestExport_HTML(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "curve.html")
	html := "<html><body>snapshot</body></html>"

	written, err := Export(context.Background(), html, ExportConfig{OutputPath: out})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if written != out {
		t.Errorf("written = %s, want %s", written, out)
	}
	data, err := os.ReadFile(out)
	if err != nil || string(data) != html {
		t.Errorf("read back %q, %v", data, err)
	}
}

func TestExport_PDFFallback(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := DefaultExportConfig()
	cfg.Engine = EngineNone
	cfg.OutputPath = filepath.Join(tmpDir, "curve.pdf")

	html := "<html><body>snapshot</body></html>"
	written, err := Export(context.Background(), html, cfg)
	if err != nil {
		t.Fatalf("Export fallback failed: %v", err)
	}
	if written != filepath.Join(tmpDir, "curve.html") {
		t.Errorf("written = %s", written)
	}
	data, err := os.ReadFile(written)
	if err != nil {
		t.Fatalf("reading fallback file: %v", err)
	}
	if string(data) != html {
		t.Error("fallback HTML content mismatch")
	}
}

func TestDefaultExportConfig(t *testing.T) {
	cfg := DefaultExportConfig()
	if cfg.PageSize != "A4" {
		t.Errorf("expected A4, got %s", cfg.PageSize)
	}
	if cfg.Orientation != "landscape" {
		t.Errorf("expected landscape, got %s", cfg.Orientation)
	}
}

// ════════════════════════════════════════════════════════════════════
// Utility Tests
// ════════════════════════════════════════════════════════════════════

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30.0s"},
		{12 * time.Minute, "12.0m"},
		{90 * time.Minute, "1.5h"},
	}
	for _, tc := range tests {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Errorf("FormatDuration(%v) = %s, want %s", tc.d, got, tc.want)
		}
	}
}
