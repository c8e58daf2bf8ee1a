package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seenimoa/treasurycurve/internal/report"
	"github.com/seenimoa/treasurycurve/pkg/utils"
)

// --- Export Command ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a dashboard snapshot to HTML, PDF or text",
	Long: `Render the dashboard for one date to a standalone file. A .html path
is written as is; any other path is converted to PDF with wkhtmltopdf or
headless Chromium when one is installed, and falls back to HTML otherwise.
Use --out - to print a text report to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		index, _ := cmd.Flags().GetInt("index")
		d, _ := cmd.Flags().GetString("date")
		out, _ := cmd.Flags().GetString("out")
		engine, _ := cmd.Flags().GetString("engine")
		orientation, _ := cmd.Flags().GetString("orientation")

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		board := a.primary()
		ctx := cmd.Context()

		asOf, err := resolveIndex(ctx, board, index, d)
		if err != nil {
			return err
		}
		v, err := board.View(ctx, asOf)
		if err != nil {
			return err
		}

		if out == "-" {
			fmt.Print(report.GenerateText(v))
			return nil
		}
		if out == "" {
			out = fmt.Sprintf("treasurycurve-%s.html", utils.FormatDate(v.Date))
		}

		pageCfg := report.DefaultPageConfig()
		pageCfg.Live = false
		pageCfg.WindowYears = board.WindowYears()
		html, err := report.GenerateHTML(v, pageCfg)
		if err != nil {
			return err
		}

		expCfg := report.DefaultExportConfig()
		expCfg.OutputPath = out
		expCfg.Engine = report.PDFEngine(engine)
		if orientation != "" {
			expCfg.Orientation = orientation
		}
		written, err := report.Export(ctx, html, expCfg)
		if err != nil {
			return err
		}
		if written != out {
			fmt.Fprintf(os.Stderr, "no PDF engine found, wrote HTML instead\n")
		}
		fmt.Printf("Exported %s (%s)\n", written, utils.FormatDate(v.Date))
		return nil
	},
}

func init() {
	exportCmd.Flags().Int("index", 0, "as-of index, 0 = most recent date")
	exportCmd.Flags().String("date", "", "date (YYYY-MM-DD); the most recent row on or before it is used")
	exportCmd.Flags().StringP("out", "o", "", "output path (.html, .pdf, or - for text on stdout)")
	exportCmd.Flags().String("engine", "", "PDF engine: wkhtmltopdf, chromium, none (default: auto-detect)")
	exportCmd.Flags().String("orientation", "", "PDF orientation: landscape or portrait")
}
