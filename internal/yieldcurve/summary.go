package yieldcurve

import (
	"github.com/seenimoa/treasurycurve/pkg/models"
)

// Summarize condenses an inversion matrix built from curve. The 10y-2y and
// 10y-3mo spreads are zero when the curve lacks one of those maturities.
func Summarize(curve *models.YieldCurve, m *models.InversionMatrix) models.InversionSummary {
	s := models.InversionSummary{Date: curve.Date}

	for i := 0; i < m.Size(); i++ {
		for j := i + 1; j < m.Size(); j++ {
			s.Pairs++
			v := m.At(i, j)
			if v <= 0 {
				continue
			}
			s.Inverted++
			if s.Deepest == nil || v > s.Deepest.Spread {
				s.Deepest = &models.Spread{Short: m.Labels[i], Long: m.Labels[j], Spread: v}
			}
		}
	}

	y := make(map[string]float64, len(curve.Points))
	for _, p := range curve.Points {
		y[p.Code] = p.YieldPercent
	}
	ten, okTen := y["10y"]
	if two, ok := y["2y"]; ok && okTen {
		s.Spread10Y2Y = ten - two
	}
	if threeM, ok := y["3mo"]; ok && okTen {
		s.Spread10Y3M = ten - threeM
		s.InvertedCurve = s.Spread10Y3M < 0
	}
	return s
}
