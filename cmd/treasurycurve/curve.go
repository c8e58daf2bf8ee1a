package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/treasurycurve/internal/dashboard"
	"github.com/seenimoa/treasurycurve/internal/report"
	"github.com/seenimoa/treasurycurve/pkg/models"
	"github.com/seenimoa/treasurycurve/pkg/utils"
)

// --- Curve Command ---

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Print the yield curve for a date",
	Long: `Print the yield curve for one date of the trailing window.

Examples:
  treasurycurve curve                    # most recent date
  treasurycurve curve --index 5          # five trading days back
  treasurycurve curve --date 2023-10-19 --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := selectedView(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return writeOutput(os.Stdout, format, newCurveOutput(v.Curve), report.CurveText(v.Curve))
	},
}

// --- Matrix Command ---

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Print the inversion matrix for a date",
	Long: `Print the pairwise yield differences for one date. Cell (row, column)
is the row yield minus the column yield for columns at or right of the
diagonal; a positive cell is an inversion.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := selectedView(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		text := report.CurveText(v.Curve) + "\n" + report.MatrixText(v.Matrix) + "\n" + report.SummaryText(v.Summary)
		return writeOutput(os.Stdout, format, newMatrixOutput(v), text)
	},
}

// --- Dates Command ---

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List the dates available for selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		dates, err := a.primary().Dates(cmd.Context())
		if err != nil {
			return err
		}
		// Slider positions count from the oldest row of the full panel.
		total := len(dates)
		if limit > 0 && limit < len(dates) {
			dates = dates[:limit]
		}
		fmt.Printf("%-7s %-7s %s\n", "INDEX", "SLIDER", "DATE")
		for i, d := range dates {
			fmt.Printf("%-7d %-7d %s\n", i, dashboard.SliderValue(i, total), utils.FormatDate(d))
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{curveCmd, matrixCmd} {
		c.Flags().Int("index", 0, "as-of index, 0 = most recent date")
		c.Flags().String("date", "", "date (YYYY-MM-DD); the most recent row on or before it is used")
		c.Flags().String("format", "table", "output format: table, json, yaml")
	}
	datesCmd.Flags().Int("limit", 20, "number of dates to list, 0 = all")
}

// selectedView builds the view for the --index/--date flags without
// fetching headlines.
func selectedView(cmd *cobra.Command) (*dashboard.View, error) {
	index, _ := cmd.Flags().GetInt("index")
	d, _ := cmd.Flags().GetString("date")

	a, err := newApp(cfg)
	if err != nil {
		return nil, err
	}
	board := a.primary()
	asOf, err := resolveIndex(cmd.Context(), board, index, d)
	if err != nil {
		return nil, err
	}
	panel, err := board.Panel(cmd.Context())
	if err != nil {
		return nil, err
	}
	return dashboard.Render(panel, asOf)
}

func parseDateFlag(s string) (time.Time, error) {
	d, err := utils.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}

// ════════════════════════════════════════════════════════════════════
// Output shapes for json / yaml
// ════════════════════════════════════════════════════════════════════

type pointOutput struct {
	Code   string  `json:"code" yaml:"code"`
	Label  string  `json:"label" yaml:"label"`
	Months int     `json:"months" yaml:"months"`
	Yield  float64 `json:"yield" yaml:"yield"`
}

type curveOutput struct {
	Date   string        `json:"date" yaml:"date"`
	Index  int           `json:"index" yaml:"index"`
	Points []pointOutput `json:"points" yaml:"points"`
}

type summaryOutput struct {
	Pairs       int     `json:"pairs" yaml:"pairs"`
	Inverted    int     `json:"inverted" yaml:"inverted"`
	Spread10Y2Y float64 `json:"spread_10y_2y" yaml:"spread_10y_2y"`
	Spread10Y3M float64 `json:"spread_10y_3mo" yaml:"spread_10y_3mo"`
	Deepest     string  `json:"deepest,omitempty" yaml:"deepest,omitempty"`
}

type matrixOutput struct {
	Date    string        `json:"date" yaml:"date"`
	Index   int           `json:"index" yaml:"index"`
	Labels  []string      `json:"labels" yaml:"labels"`
	Cells   [][]float64   `json:"cells" yaml:"cells,flow"`
	Summary summaryOutput `json:"summary" yaml:"summary"`
}

func newCurveOutput(c *models.YieldCurve) curveOutput {
	out := curveOutput{Date: utils.FormatDate(c.Date), Index: c.AsOf}
	for _, p := range c.Points {
		out.Points = append(out.Points, pointOutput{
			Code:   p.Code,
			Label:  p.MaturityLabel,
			Months: p.DurationMonths,
			Yield:  p.YieldPercent,
		})
	}
	return out
}

func newMatrixOutput(v *dashboard.View) matrixOutput {
	s := report.BuildSummary(v.Summary)
	return matrixOutput{
		Date:   utils.FormatDate(v.Date),
		Index:  v.Index,
		Labels: v.Matrix.Labels,
		Cells:  v.Matrix.Cells,
		Summary: summaryOutput{
			Pairs:       v.Summary.Pairs,
			Inverted:    v.Summary.Inverted,
			Spread10Y2Y: v.Summary.Spread10Y2Y,
			Spread10Y3M: v.Summary.Spread10Y3M,
			Deepest:     s.Deepest,
		},
	}
}

// writeOutput writes v as json or yaml, or text for the table format.
func writeOutput(w io.Writer, format string, v any, text string) error {
	switch strings.ToLower(format) {
	case "", "table":
		_, err := io.WriteString(w, text)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown format %q: want table, json or yaml", format)
	}
}
