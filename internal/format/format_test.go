package format

import (
	"testing"
	"time"
)

func TestCurrency(t *testing.T) {
	cases := []struct {
		minor    int64
		currency string
		want     string
	}{
		{4500, "TRY", "₺45.00"},
		{4550, "try", "₺45.50"},
		{99, "", "₺0.99"},
		{125000, "TRY", "₺1,250.00"},
		{123456789, "TRY", "₺1,234,567.89"},
		{-4500, "TRY", "-₺45.00"},
		{4500, "USD", "$45.00"},
		{4500, "EUR", "EUR 45.00"},
	}
	for _, tc := range cases {
		if got := Currency(tc.minor, tc.currency); got != tc.want {
			t.Fatalf("Currency(%d, %q) = %q, want %q", tc.minor, tc.currency, got, tc.want)
		}
	}
}

func TestDate(t *testing.T) {
	if got := Date(time.Time{}); got != "" {
		t.Fatalf("zero time must format empty, got %q", got)
	}
	ts := time.Date(2026, time.February, 3, 10, 15, 30, 0, time.UTC)
	if got := Date(ts); got != "Feb 3, 2026" {
		t.Fatalf("unexpected date %q", got)
	}
}
