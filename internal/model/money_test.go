package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestDeriveAmounts(t *testing.T) {
	cases := []struct {
		name         string
		subtotal     string
		discountRate string
		taxRate      string
		shipping     string
		discount     string
		tax          string
		total        string
	}{
		{"no rates", "100.00", "0", "0", "0", "0.00", "0.00", "100.00"},
		{"discount and tax", "250.00", "10", "5", "0", "25.00", "11.25", "236.25"},
		{"shipping added after tax", "200.00", "0", "10", "15.00", "0.00", "20.00", "235.00"},
		{"full discount", "80.00", "100", "13", "0", "80.00", "0.00", "0.00"},
		{"rounding at the end", "33.33", "33.33", "7.77", "0", "11.11", "1.73", "23.95"},
		{"zero subtotal", "0", "10", "5", "0", "0.00", "0.00", "0.00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveAmounts(dec(t, tc.subtotal), dec(t, tc.discountRate), dec(t, tc.taxRate), dec(t, tc.shipping))
			if !got.DiscountAmount.Equal(dec(t, tc.discount)) {
				t.Errorf("discount = %s, want %s", got.DiscountAmount, tc.discount)
			}
			if !got.TaxAmount.Equal(dec(t, tc.tax)) {
				t.Errorf("tax = %s, want %s", got.TaxAmount, tc.tax)
			}
			if !got.TotalAmount.Equal(dec(t, tc.total)) {
				t.Errorf("total = %s, want %s", got.TotalAmount, tc.total)
			}
		})
	}
}

func TestDeriveAmountsIdentity(t *testing.T) {
	rates := []string{"0", "5", "10", "33.33", "50", "100"}
	subtotal := dec(t, "1234.56")
	shipping := dec(t, "20.00")

	for _, dr := range rates {
		for _, tr := range rates {
			got := DeriveAmounts(subtotal, dec(t, dr), dec(t, tr), shipping)
			lhs := got.TotalAmount
			rhs := got.Subtotal.Sub(got.DiscountAmount).Add(got.TaxAmount).Add(shipping)
			if lhs.Sub(rhs).Abs().GreaterThan(dec(t, "0.02")) {
				t.Errorf("discount=%s tax=%s: total %s differs from derivation %s", dr, tr, lhs, rhs)
			}
		}
	}
}
