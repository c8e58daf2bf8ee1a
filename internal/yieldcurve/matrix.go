package yieldcurve

import (
	"github.com/seenimoa/treasurycurve/pkg/models"
)

// Differences returns the unmasked pairwise matrix d[i][j] = yield[i] - yield[j].
// It is antisymmetric with a zero diagonal.
func Differences(curve *models.YieldCurve) [][]float64 {
	ys := curve.Yields()
	d := make([][]float64, len(ys))
	for i := range ys {
		d[i] = make([]float64, len(ys))
		for j := range ys {
			d[i][j] = ys[i] - ys[j]
		}
	}
	return d
}

// Masked reports whether cell (i, j) is hidden in the inversion matrix.
// Only the diagonal and the cells to its right are shown; the left half
// repeats them with the sign flipped.
func Masked(i, j int) bool { return j < i }

// BuildInversionMatrix returns the inversion matrix of curve: the full
// difference matrix with every cell left of the diagonal set to zero.
// A positive cell (i, j) means maturity i yields more than the longer
// maturity j.
func BuildInversionMatrix(curve *models.YieldCurve) *models.InversionMatrix {
	full := Differences(curve)
	cells := make([][]float64, len(full))
	for i, row := range full {
		cells[i] = make([]float64, len(row))
		for j, v := range row {
			if !Masked(i, j) {
				cells[i][j] = v
			}
		}
	}
	return &models.InversionMatrix{
		Date:   curve.Date,
		Labels: curve.Labels(),
		Cells:  cells,
	}
}
