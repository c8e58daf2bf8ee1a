// Package yieldcurve turns a panel of treasury yields into a yield curve for
// one date and into the pairwise inversion matrix of that curve.
//
// The flow is linear: Fetcher builds a cleaned YieldPanel, Extract picks one
// row as a YieldCurve, and BuildInversionMatrix derives the masked matrix.
package yieldcurve

import "strings"

// Maturity describes one rung of the fixed treasury maturity ladder.
type Maturity struct {
	Code           string // panel column key
	Label          string // display label
	Months         int    // duration in months
	FREDSeries     string // FRED constant-maturity series ID
	TreasuryColumn string // header text in the Treasury.gov daily table
	H15Series      string // Federal Reserve H.15 series identifier
}

// Ladder is the canonical maturity order, shortest first. A maturity's
// index in Ladder is its ladder position.
var Ladder = []Maturity{
	{Code: "1mo", Label: "1-month", Months: 1, FREDSeries: "DGS1MO", TreasuryColumn: "1 Mo", H15Series: "RIFLGFCM01_N.B"},
	{Code: "3mo", Label: "3-month", Months: 3, FREDSeries: "DGS3MO", TreasuryColumn: "3 Mo", H15Series: "RIFLGFCM03_N.B"},
	{Code: "6mo", Label: "6-month", Months: 6, FREDSeries: "DGS6MO", TreasuryColumn: "6 Mo", H15Series: "RIFLGFCM06_N.B"},
	{Code: "1y", Label: "1-year", Months: 12, FREDSeries: "DGS1", TreasuryColumn: "1 Yr", H15Series: "RIFLGFCY01_N.B"},
	{Code: "2y", Label: "2-year", Months: 24, FREDSeries: "DGS2", TreasuryColumn: "2 Yr", H15Series: "RIFLGFCY02_N.B"},
	{Code: "3y", Label: "3-year", Months: 36, FREDSeries: "DGS3", TreasuryColumn: "3 Yr", H15Series: "RIFLGFCY03_N.B"},
	{Code: "5y", Label: "5-year", Months: 60, FREDSeries: "DGS5", TreasuryColumn: "5 Yr", H15Series: "RIFLGFCY05_N.B"},
	{Code: "7y", Label: "7-year", Months: 84, FREDSeries: "DGS7", TreasuryColumn: "7 Yr", H15Series: "RIFLGFCY07_N.B"},
	{Code: "10y", Label: "10-year", Months: 120, FREDSeries: "DGS10", TreasuryColumn: "10 Yr", H15Series: "RIFLGFCY10_N.B"},
	{Code: "20y", Label: "20-year", Months: 240, FREDSeries: "DGS20", TreasuryColumn: "20 Yr", H15Series: "RIFLGFCY20_N.B"},
	{Code: "30y", Label: "30-year", Months: 360, FREDSeries: "DGS30", TreasuryColumn: "30 Yr", H15Series: "RIFLGFCY30_N.B"},
}

var ladderIndex = func() map[string]int {
	idx := make(map[string]int, len(Ladder))
	for i, m := range Ladder {
		idx[m.Code] = i
	}
	return idx
}()

// Codes returns the ladder's maturity codes in order.
func Codes() []string {
	codes := make([]string, len(Ladder))
	for i, m := range Ladder {
		codes[i] = m.Code
	}
	return codes
}

// Lookup returns the ladder entry for a maturity code.
func Lookup(code string) (Maturity, bool) {
	i, ok := ladderIndex[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return Maturity{}, false
	}
	return Ladder[i], true
}

// Position returns the ladder position of a code, or -1.
func Position(code string) int {
	i, ok := ladderIndex[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return -1
	}
	return i
}

// Resolve validates codes against the ladder and returns the matching
// entries in ladder order, with duplicates removed.
func Resolve(codes []string) ([]Maturity, error) {
	seen := make(map[int]bool, len(codes))
	for _, c := range codes {
		i := Position(c)
		if i < 0 {
			return nil, &ErrUnknownMaturity{Code: c}
		}
		seen[i] = true
	}
	out := make([]Maturity, 0, len(seen))
	for i, m := range Ladder {
		if seen[i] {
			out = append(out, m)
		}
	}
	return out, nil
}

// ParseCodes splits a comma separated list of maturity codes.
func ParseCodes(s string) []string {
	var codes []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			codes = append(codes, p)
		}
	}
	return codes
}
