package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusCount is one slice of a per-status breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// DocumentTotals aggregates one document type for the dashboard.
type DocumentTotals struct {
	Total       int64           `json:"total"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ByStatus    []StatusCount   `json:"by_status" gorm:"-"`
}

// CustomerTotals aggregates the customer book for the dashboard.
type CustomerTotals struct {
	Total    int64         `json:"total"`
	ByStatus []StatusCount `json:"by_status"`
	ByLevel  []StatusCount `json:"by_level"`
}

// Dashboard is the headline view returned by the stats endpoint.
type Dashboard struct {
	Customers CustomerTotals `json:"customers"`
	Quotes    DocumentTotals `json:"quotes"`
	Contracts DocumentTotals `json:"contracts"`
	Orders    DocumentTotals `json:"orders"`

	ContractPaidAmount      decimal.Decimal `json:"contract_paid_amount"`
	ContractRemainingAmount decimal.Decimal `json:"contract_remaining_amount"`
}

// Activity is one row of the recent-activities feed, a document of any
// type ordered by creation time.
type Activity struct {
	EntityType   string          `json:"entity_type"`
	EntityID     uint            `json:"entity_id"`
	Number       string          `json:"number"`
	CustomerName string          `json:"customer_name"`
	Status       string          `json:"status"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CreatedAt    time.Time       `json:"created_at"`
}
