package utils

import (
	"testing"
)

func TestFormatYield(t *testing.T) {
	if got := FormatYield(4.3); got != "4.30%" {
		t.Errorf("FormatYield(4.3) = %s, want 4.30%%", got)
	}
}

func TestFormatPct(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{2.45, "+2.45%"},
		{-1.23, "-1.23%"},
		{0.0, "+0.00%"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := FormatPct(tt.input)
			if result != tt.expected {
				t.Errorf("FormatPct(%f) = %s, want %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFormatSpread(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{-0.6, "-0.60 pp"},
		{1.1, "+1.10 pp"},
		{0, "+0.00 pp"},
	}
	for _, tt := range tests {
		if got := FormatSpread(tt.input); got != tt.expected {
			t.Errorf("FormatSpread(%f) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestFormatBps(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{-0.6, "-60 bps"},
		{1.1, "+110 bps"},
		{0.001, "0 bps"},
	}
	for _, tt := range tests {
		if got := FormatBps(tt.input); got != tt.expected {
			t.Errorf("FormatBps(%f) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0.5, "0.50"},
		{-0.1, "-0.10"},
		{-0.001, "0.00"},
		{0, "0.00"},
	}
	for _, tt := range tests {
		if got := FormatCell(tt.input); got != tt.expected {
			t.Errorf("FormatCell(%f) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestPad(t *testing.T) {
	if got := PadRight("10-year", 9); got != "10-year  " {
		t.Errorf("PadRight = %q", got)
	}
	if got := PadLeft("4.30", 6); got != "  4.30" {
		t.Errorf("PadLeft = %q", got)
	}
	if got := PadLeft("toolong", 3); got != "toolong" {
		t.Errorf("PadLeft should not truncate, got %q", got)
	}
}
