// Package report renders the yield dashboard: SVG charts for the curve and
// the inversion matrix, a plain-text table for the terminal, and the HTML
// page served at the site root.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/treasurycurve/pkg/models"
	"github.com/seenimoa/treasurycurve/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// SVG Chart Generator
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels
	Height       int    // SVG height in pixels
	MarginTop    int    // top margin
	MarginRight  int    // right margin
	MarginBottom int    // bottom margin, room for rotated tick labels
	MarginLeft   int    // left margin
	BgColor      string // background color
	GridColor    string // grid line color
	TextColor    string // axis label color
	LineColor    string // curve stroke color
	FontSize     int    // axis label font size
	Title        string // chart title
}

// DefaultChartConfig returns defaults for the yield curve line chart.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        640,
		Height:       440,
		MarginTop:    40,
		MarginRight:  30,
		MarginBottom: 100,
		MarginLeft:   60,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		LineColor:    "#636efa",
		FontSize:     11,
	}
}

// DefaultHeatmapConfig returns defaults for the inversion heatmap.
func DefaultHeatmapConfig() ChartConfig {
	return ChartConfig{
		Width:        640,
		Height:       640,
		MarginTop:    40,
		MarginRight:  20,
		MarginBottom: 80,
		MarginLeft:   80,
		BgColor:      "#ffffff",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// ════════════════════════════════════════════════════════════════════
// Yield Curve
// ════════════════════════════════════════════════════════════════════

// YieldCurveChart draws the curve as a line over a proportional duration
// axis: x is duration in months, y is yield in percent. Each point's
// maturity label is a tick on the x axis, rotated 90°.
func YieldCurveChart(curve *models.YieldCurve, cfg ChartConfig) string {
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if curve == nil || len(curve.Points) == 0 {
		return emptySVG(cfg, "No data")
	}
	if cfg.Title == "" {
		cfg.Title = "Yield Curve " + utils.FormatDate(curve.Date)
	}

	px, py, pw, ph := cfg.plotArea()
	pts := curve.Points

	minM, maxM := float64(pts[0].DurationMonths), float64(pts[len(pts)-1].DurationMonths)
	mRange := maxM - minM
	if mRange <= 0 {
		mRange = 1
	}

	minY, maxY := pts[0].YieldPercent, pts[0].YieldPercent
	for _, p := range pts {
		minY = math.Min(minY, p.YieldPercent)
		maxY = math.Max(maxY, p.YieldPercent)
	}
	yRange := maxY - minY
	if yRange < 0.001 {
		yRange = 1
	}
	minY -= yRange * 0.1
	maxY += yRange * 0.1
	yRange = maxY - minY

	xOf := func(months int) float64 {
		return float64(px) + (float64(months)-minM)/mRange*float64(pw)
	}
	yOf := func(v float64) float64 {
		return float64(py+ph) - (v-minY)/yRange*float64(ph)
	}

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))

	// Y-axis grid
	gridLines := 5
	for i := 0; i <= gridLines; i++ {
		val := minY + yRange*float64(i)/float64(gridLines)
		y := yOf(val)
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%.2f</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, val))
	}

	// X-axis ticks, one per maturity
	baseY := py + ph
	for _, p := range pts {
		x := xOf(p.DurationMonths)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="%s"/>`,
			x, baseY, x, baseY+4, cfg.TextColor))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="end" transform="rotate(-90,%.1f,%d)">%s</text>`,
			x+4, baseY+8, cfg.FontSize-1, cfg.TextColor, x+4, baseY+8, escapeXML(p.MaturityLabel)))
	}

	// Axis titles
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="middle">Treasury Duration</text>`,
		px+pw/2, cfg.Height-8, cfg.FontSize, cfg.TextColor))
	sb.WriteString(fmt.Sprintf(`<text x="14" y="%d" font-size="%d" fill="%s" text-anchor="middle" transform="rotate(-90,14,%d)">Yield</text>`,
		py+ph/2, cfg.FontSize, cfg.TextColor, py+ph/2))

	// Curve
	pathParts := make([]string, 0, len(pts))
	for i, p := range pts {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		pathParts = append(pathParts, fmt.Sprintf("%s%.1f,%.1f", cmd, xOf(p.DurationMonths), yOf(p.YieldPercent)))
	}
	sb.WriteString(fmt.Sprintf(`<path class="curve" d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
		strings.Join(pathParts, " "), cfg.LineColor))
	for _, p := range pts {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"><title>%s: %s</title></circle>`,
			xOf(p.DurationMonths), yOf(p.YieldPercent), cfg.LineColor,
			escapeXML(p.MaturityLabel), utils.FormatYield(p.YieldPercent)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Inversion Heatmap
// ════════════════════════════════════════════════════════════════════

// InversionHeatmap draws the matrix as an annotated grid. Inverted cells
// (positive, the shorter maturity yields more) are red, normal spreads
// green, zero white; the scale is symmetric around zero. No color legend
// is drawn.
func InversionHeatmap(m *models.InversionMatrix, cfg ChartConfig) string {
	if cfg.Width == 0 {
		cfg = DefaultHeatmapConfig()
	}
	if m == nil || m.Size() == 0 {
		return emptySVG(cfg, "No data")
	}
	if cfg.Title == "" {
		cfg.Title = "Inversion Matrix " + utils.FormatDate(m.Date)
	}

	px, py, pw, ph := cfg.plotArea()
	n := m.Size()
	cell := math.Min(float64(pw), float64(ph)) / float64(n)

	lo, hi := m.MinMax()
	scale := math.Max(math.Abs(lo), math.Abs(hi))

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))

	fontSize := cfg.FontSize
	if maxFont := int(cell / 3.2); fontSize > maxFont {
		fontSize = maxFont
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := m.At(i, j)
			x := float64(px) + float64(j)*cell
			y := float64(py) + float64(i)*cell
			fill, ink := heatColor(v, scale)
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s vs %s: %s</title></rect>`,
				x, y, cell, cell, fill, escapeXML(m.Labels[i]), escapeXML(m.Labels[j]), utils.FormatCell(v)))
			sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
				x+cell/2, y+cell/2+float64(fontSize)/3, fontSize, ink, utils.FormatCell(v)))
		}
	}

	// Row labels on the left, column labels below, rotated
	for i, label := range m.Labels {
		y := float64(py) + float64(i)*cell + cell/2
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, escapeXML(label)))
	}
	baseY := float64(py) + float64(n)*cell
	for j, label := range m.Labels {
		x := float64(px) + float64(j)*cell + cell/2
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="%d" fill="%s" text-anchor="end" transform="rotate(-45,%.1f,%.1f)">%s</text>`,
			x, baseY+12, cfg.FontSize, cfg.TextColor, x, baseY+12, escapeXML(label)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// heatColor maps v onto the diverging scale. scale is the largest absolute
// cell value; v = +scale (deepest inversion) is pure red, 0 white, -scale
// green. It returns the fill and a text color that stays readable on it.
func heatColor(v, scale float64) (fill, ink string) {
	if scale <= 0 || v == 0 {
		return "#ffffff", "#333333"
	}
	t := math.Max(-1, math.Min(1, v/scale))

	// red = (255,0,0), green = (0,128,0)
	var r, g, b float64
	if t > 0 {
		a := t
		r, g, b = 255, 255*(1-a), 255*(1-a)
	} else {
		a := -t
		r, g, b = 255*(1-a), 255-127*a, 255*(1-a)
	}
	fill = fmt.Sprintf("#%02x%02x%02x", int(math.Round(r)), int(math.Round(g)), int(math.Round(b)))
	ink = "#333333"
	if math.Abs(t) > 0.6 {
		ink = "#ffffff"
	}
	return fill, ink
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
