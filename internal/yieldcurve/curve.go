package yieldcurve

import (
	"github.com/seenimoa/treasurycurve/pkg/models"
)

// Extract returns the yield curve for the row asOf steps back from the most
// recent date (0 = most recent). Yields are looked up by maturity code and
// emitted in ladder order with the fixed label and months metadata, so the
// panel's column order never matters.
func Extract(panel *models.YieldPanel, asOf int) (*models.YieldCurve, error) {
	n := panel.Len()
	if asOf < 0 || asOf >= n {
		return nil, &ErrIndexOutOfRange{Index: asOf, Rows: n}
	}

	codes := panel.Codes
	if len(codes) == 0 {
		codes = Codes()
	}
	mats, err := Resolve(codes)
	if err != nil {
		return nil, err
	}

	row := panel.Rows[n-1-asOf]
	curve := &models.YieldCurve{
		Date:   row.Date,
		AsOf:   asOf,
		Points: make([]models.YieldCurvePoint, 0, len(mats)),
	}
	for _, m := range mats {
		y, ok := row.Yield(m.Code)
		if !ok {
			return nil, &ErrIncompleteRow{Date: row.Date, Code: m.Code}
		}
		curve.Points = append(curve.Points, models.YieldCurvePoint{
			Code:           m.Code,
			MaturityLabel:  m.Label,
			DurationMonths: m.Months,
			YieldPercent:   y,
		})
	}
	return curve, nil
}

// ExtractLatest returns the curve for the most recent row.
func ExtractLatest(panel *models.YieldPanel) (*models.YieldCurve, error) {
	return Extract(panel, 0)
}
