// Package utils holds small formatting and calendar helpers shared by the
// CLI, the report renderer and the API.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatYield formats a yield in percent with two decimals.
// e.g., 4.3 → "4.30%"
func FormatYield(y float64) string {
	return fmt.Sprintf("%.2f%%", y)
}

// FormatPct formats a percentage value with sign and suffix.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatSpread formats a spread in percentage points with sign.
// e.g., -0.6 → "-0.60 pp"
func FormatSpread(pp float64) string {
	if pp >= 0 {
		return fmt.Sprintf("+%.2f pp", pp)
	}
	return fmt.Sprintf("%.2f pp", pp)
}

// FormatBps formats a spread given in percentage points as whole basis
// points. e.g., -0.6 → "-60 bps"
func FormatBps(pp float64) string {
	bps := math.Round(pp * 100)
	if bps == 0 {
		return "0 bps"
	}
	return fmt.Sprintf("%+.0f bps", bps)
}

// FormatCell formats a matrix cell for annotation: two decimals, no sign
// on zero. e.g., 0.5 → "0.50", -0.1 → "-0.10", -0.0 → "0.00"
func FormatCell(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}

// PadRight pads s with spaces to width runes.
func PadRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// PadLeft pads s with leading spaces to width runes.
func PadLeft(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

func fmtInt(n int) string { return fmt.Sprintf("%d", n) }
