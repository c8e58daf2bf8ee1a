package treasury

import (
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/treasurycurve/internal/yieldcurve"
)

const dateLayout = "01/02/2006"

// findTable returns the first table whose header carries a Date column.
func findTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		if _, ok := columnIndex(tbl)["Date"]; ok {
			found = tbl
			return false
		}
		return true
	})
	return found
}

// columnIndex maps normalized header text to column position.
func columnIndex(tbl *goquery.Selection) map[string]int {
	idx := make(map[string]int)
	tbl.Find("thead th").Each(func(i int, th *goquery.Selection) {
		idx[normalizeHeader(th.Text())] = i
	})
	return idx
}

// normalizeHeader collapses whitespace so "1\n Mo" and "1 Mo" match.
func normalizeHeader(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// tableRow is one parsed line of the yield table.
type tableRow struct {
	date   time.Time
	yields map[string]float64
}

// parseTable reads the rows of tbl for the given maturities. Columns are
// located by header text, so the page's column order and any extra columns
// (2 Mo, 4 Mo) do not matter. Missing columns and blank or N/A cells leave
// the maturity out of the row.
func parseTable(tbl *goquery.Selection, mats []yieldcurve.Maturity) []tableRow {
	idx := columnIndex(tbl)
	dateCol, ok := idx["Date"]
	if !ok {
		return nil
	}

	var rows []tableRow
	tbl.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td").Map(func(_ int, td *goquery.Selection) string {
			return strings.TrimSpace(td.Text())
		})
		if dateCol >= len(cells) {
			return
		}
		d, err := time.Parse(dateLayout, cells[dateCol])
		if err != nil {
			return
		}

		row := tableRow{date: d, yields: make(map[string]float64, len(mats))}
		for _, m := range mats {
			col, ok := idx[m.TreasuryColumn]
			if !ok || col >= len(cells) {
				continue
			}
			if v, ok := parseRate(cells[col]); ok {
				row.yields[m.Code] = v
			}
		}
		rows = append(rows, row)
	})
	return rows
}

func parseRate(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "N/A") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
