package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestQuoteCalculateTotals(t *testing.T) {
	quote := Quote{
		DiscountRate: dec(t, "10"),
		TaxRate:      dec(t, "5"),
		Items: []QuoteItem{
			{Quantity: dec(t, "2"), UnitPrice: dec(t, "100.00")},
			{Quantity: dec(t, "1"), UnitPrice: dec(t, "50.00")},
		},
	}
	quote.CalculateTotals()

	if !quote.Subtotal.Equal(dec(t, "250.00")) {
		t.Errorf("subtotal = %s, want 250.00", quote.Subtotal)
	}
	if !quote.DiscountAmount.Equal(dec(t, "25.00")) {
		t.Errorf("discount = %s, want 25.00", quote.DiscountAmount)
	}
	if !quote.TaxAmount.Equal(dec(t, "11.25")) {
		t.Errorf("tax = %s, want 11.25", quote.TaxAmount)
	}
	if !quote.TotalAmount.Equal(dec(t, "236.25")) {
		t.Errorf("total = %s, want 236.25", quote.TotalAmount)
	}
	for i, item := range quote.Items {
		want := item.Quantity.Mul(item.UnitPrice)
		if !item.TotalPrice.Equal(want) {
			t.Errorf("item %d total = %s, want %s", i, item.TotalPrice, want)
		}
	}
}

func TestQuoteCalculateTotalsSkipsDeletedItems(t *testing.T) {
	quote := Quote{
		Items: []QuoteItem{
			{Quantity: dec(t, "1"), UnitPrice: dec(t, "100.00")},
			{Quantity: dec(t, "1"), UnitPrice: dec(t, "40.00"), Base: Base{IsDeleted: true}},
		},
	}
	quote.CalculateTotals()

	if !quote.Subtotal.Equal(dec(t, "100.00")) {
		t.Errorf("subtotal = %s, want 100.00", quote.Subtotal)
	}
}

func TestQuoteTransitions(t *testing.T) {
	now := time.Now().UTC()

	quote := Quote{Status: QuoteStatusDraft}
	if err := quote.Send(now); err != nil {
		t.Fatalf("send: %v", err)
	}
	if quote.Status != QuoteStatusSent || quote.SentDate == nil {
		t.Fatalf("after send: status=%s sentDate=%v", quote.Status, quote.SentDate)
	}
	if err := quote.Accept(now); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if quote.Status != QuoteStatusAccepted || quote.ResponseDate == nil {
		t.Fatalf("after accept: status=%s responseDate=%v", quote.Status, quote.ResponseDate)
	}

	rejected := Quote{Status: QuoteStatusSent}
	if err := rejected.Reject(now); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != QuoteStatusRejected {
		t.Fatalf("after reject: status=%s", rejected.Status)
	}
}

func TestQuoteInvalidTransitionLeavesStateUntouched(t *testing.T) {
	now := time.Now().UTC()
	cases := []struct {
		name string
		from QuoteStatus
		call func(*Quote) error
	}{
		{"send from sent", QuoteStatusSent, func(q *Quote) error { return q.Send(now) }},
		{"send from accepted", QuoteStatusAccepted, func(q *Quote) error { return q.Send(now) }},
		{"accept from draft", QuoteStatusDraft, func(q *Quote) error { return q.Accept(now) }},
		{"reject from expired", QuoteStatusExpired, func(q *Quote) error { return q.Reject(now) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quote := Quote{Status: tc.from}
			err := tc.call(&quote)

			var transitionErr *TransitionError
			if !errors.As(err, &transitionErr) {
				t.Fatalf("expected TransitionError, got %v", err)
			}
			if transitionErr.From != string(tc.from) {
				t.Errorf("From = %s, want %s", transitionErr.From, tc.from)
			}
			if quote.Status != tc.from {
				t.Errorf("status changed to %s", quote.Status)
			}
			if quote.SentDate != nil || quote.ResponseDate != nil {
				t.Error("failed transition stamped a date")
			}
		})
	}
}

func TestQuoteExpiry(t *testing.T) {
	validUntil := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	after := validUntil.Add(48 * time.Hour)
	before := validUntil.Add(-48 * time.Hour)

	quote := Quote{Status: QuoteStatusSent, ValidUntil: validUntil}
	if quote.IsExpired(before) {
		t.Error("expired before valid_until")
	}
	if !quote.IsExpired(after) {
		t.Error("not expired after valid_until")
	}
	if got := quote.EffectiveStatus(after); got != QuoteStatusExpired {
		t.Errorf("effective status = %s, want expired", got)
	}
	if got := quote.EffectiveStatus(before); got != QuoteStatusSent {
		t.Errorf("effective status = %s, want sent", got)
	}

	// Same day is still valid.
	if quote.IsExpired(validUntil.Add(6 * time.Hour)) {
		t.Error("expired on the valid_until day itself")
	}

	accepted := Quote{Status: QuoteStatusAccepted, ValidUntil: validUntil}
	if accepted.IsExpired(after) {
		t.Error("accepted quote reported expired")
	}
	rejected := Quote{Status: QuoteStatusRejected, ValidUntil: validUntil}
	if rejected.IsExpired(after) {
		t.Error("rejected quote reported expired")
	}
}

func TestQuoteItemRecalcTotal(t *testing.T) {
	item := QuoteItem{Quantity: dec(t, "3"), UnitPrice: dec(t, "19.99")}
	item.RecalcTotal()
	if !item.TotalPrice.Equal(dec(t, "59.97")) {
		t.Errorf("total = %s, want 59.97", item.TotalPrice)
	}

	item.UnitPrice = decimal.NewFromInt(20)
	item.RecalcTotal()
	if !item.TotalPrice.Equal(dec(t, "60.00")) {
		t.Errorf("total after recompute = %s, want 60.00", item.TotalPrice)
	}
}
