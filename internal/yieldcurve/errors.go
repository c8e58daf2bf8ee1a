package yieldcurve

import (
	"fmt"
	"time"
)

// ErrDataSource is returned when the yield provider is unreachable or
// returns malformed or empty data. The whole render fails with it.
type ErrDataSource struct {
	Source string
	Err    error
}

func (e *ErrDataSource) Error() string {
	return fmt.Sprintf("data source %q: %v", e.Source, e.Err)
}

func (e *ErrDataSource) Unwrap() error { return e.Err }

// ErrIndexOutOfRange is returned when a selected date index falls outside
// the panel rows.
type ErrIndexOutOfRange struct {
	Index int
	Rows  int
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("date index %d out of range [0, %d)", e.Index, e.Rows)
}

// ErrIncompleteRow is returned when a curve is requested from a row that
// lacks a maturity. Fetched panels never contain such rows.
type ErrIncompleteRow struct {
	Date time.Time
	Code string
}

func (e *ErrIncompleteRow) Error() string {
	return fmt.Sprintf("row %s has no %s yield", e.Date.Format("2006-01-02"), e.Code)
}

// ErrUnknownMaturity is returned for a maturity code outside the ladder.
type ErrUnknownMaturity struct {
	Code string
}

func (e *ErrUnknownMaturity) Error() string {
	return fmt.Sprintf("unknown maturity code %q", e.Code)
}
