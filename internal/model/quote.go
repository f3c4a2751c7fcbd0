package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// DefaultQuoteValidity is the validity window applied when no explicit
// valid_until date is given at creation.
const DefaultQuoteValidity = 30 * 24 * time.Hour

// Quote is a priced offer to a customer. The number is assigned once at
// creation and never changes; status only moves through Send/Accept/Reject
// and the lazy expiry check.
type Quote struct {
	Base
	QuoteNumber string      `gorm:"size:50;not null;uniqueIndex:uq_quotes_number" json:"quote_number"`
	Title       string      `gorm:"size:200;not null" json:"title"`
	CustomerID  uint        `gorm:"not null;index" json:"customer_id"`
	Customer    *Customer   `gorm:"foreignKey:CustomerID" json:"-"`
	SalesUserID uint        `gorm:"not null;index" json:"sales_user_id"`
	SalesUser   *User       `gorm:"foreignKey:SalesUserID" json:"-"`
	QuoteDate   time.Time   `gorm:"type:date;not null" json:"quote_date"`
	ValidUntil  time.Time   `gorm:"type:date;not null" json:"valid_until"`
	Currency    string      `gorm:"size:10;not null;default:CNY" json:"currency"`

	Subtotal       decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0" json:"subtotal"`
	DiscountRate   decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"discount_rate"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0" json:"discount_amount"`
	TaxRate        decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"tax_rate"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0" json:"tax_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0" json:"total_amount"`

	Status QuoteStatus `gorm:"size:20;not null;default:draft" json:"status"`

	Description     string `gorm:"type:text" json:"description"`
	TermsConditions string `gorm:"type:text" json:"terms_conditions"`
	Notes           string `gorm:"type:text" json:"notes"`

	SentDate     *time.Time `json:"sent_date,omitempty"`
	ResponseDate *time.Time `json:"response_date,omitempty"`

	Items []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Quote) TableName() string {
	return "quotes"
}

// QuoteItem is one quantity × unit-price line on a quote. TotalPrice is
// always derived from the two factors, never written independently.
type QuoteItem struct {
	Base
	QuoteID       uint            `gorm:"not null;index" json:"quote_id"`
	ProductName   string          `gorm:"size:200;not null" json:"product_name"`
	ProductCode   string          `gorm:"size:50" json:"product_code"`
	Description   string          `gorm:"type:text" json:"description"`
	Specification string          `gorm:"size:500" json:"specification"`
	Unit          string          `gorm:"size:20" json:"unit"`
	Quantity      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"unit_price"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"total_price"`
	SortOrder     int             `gorm:"not null;default:0" json:"sort_order"`
	Notes         string          `gorm:"type:text" json:"notes"`
}

func (QuoteItem) TableName() string {
	return "quote_items"
}

// RecalcTotal re-derives the line total after either factor changed.
func (i *QuoteItem) RecalcTotal() {
	i.TotalPrice = i.Quantity.Mul(i.UnitPrice).Round(2)
}

// CalculateTotals recomputes every line total, the subtotal over non-deleted
// lines and the discount/tax/total derivation. Called explicitly after item
// mutations, inside the same transaction that persists them.
func (q *Quote) CalculateTotals() {
	subtotal := decimal.Zero
	for idx := range q.Items {
		if q.Items[idx].IsDeleted {
			continue
		}
		q.Items[idx].RecalcTotal()
		subtotal = subtotal.Add(q.Items[idx].TotalPrice)
	}

	amounts := DeriveAmounts(subtotal, q.DiscountRate, q.TaxRate, decimal.Zero)
	q.Subtotal = amounts.Subtotal
	q.DiscountAmount = amounts.DiscountAmount
	q.TaxAmount = amounts.TaxAmount
	q.TotalAmount = amounts.TotalAmount
}

// Send moves draft → sent and stamps the sent date.
func (q *Quote) Send(now time.Time) error {
	if q.Status != QuoteStatusDraft {
		return newTransitionError("quote", string(q.Status), string(QuoteStatusSent))
	}
	q.Status = QuoteStatusSent
	q.SentDate = &now
	return nil
}

// Accept moves sent → accepted and stamps the response date.
func (q *Quote) Accept(now time.Time) error {
	if q.Status != QuoteStatusSent {
		return newTransitionError("quote", string(q.Status), string(QuoteStatusAccepted))
	}
	q.Status = QuoteStatusAccepted
	q.ResponseDate = &now
	return nil
}

// Reject moves sent → rejected and stamps the response date.
func (q *Quote) Reject(now time.Time) error {
	if q.Status != QuoteStatusSent {
		return newTransitionError("quote", string(q.Status), string(QuoteStatusRejected))
	}
	q.Status = QuoteStatusRejected
	q.ResponseDate = &now
	return nil
}

// IsExpired reports whether the validity window has passed. Expiry is
// observed lazily at read time; accepted and rejected quotes never expire.
func (q *Quote) IsExpired(now time.Time) bool {
	if q.Status == QuoteStatusAccepted || q.Status == QuoteStatusRejected {
		return false
	}
	return dateOnly(now).After(dateOnly(q.ValidUntil))
}

// EffectiveStatus folds lazy expiry into the stored status.
func (q *Quote) EffectiveStatus(now time.Time) QuoteStatus {
	if q.Status == QuoteStatusExpired || q.IsExpired(now) {
		return QuoteStatusExpired
	}
	return q.Status
}
