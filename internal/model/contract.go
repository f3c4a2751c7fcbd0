package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type ContractStatus string

const (
	ContractStatusDraft      ContractStatus = "draft"
	ContractStatusPending    ContractStatus = "pending"
	ContractStatusSigned     ContractStatus = "signed"
	ContractStatusExecuting  ContractStatus = "executing"
	ContractStatusCompleted  ContractStatus = "completed"
	ContractStatusTerminated ContractStatus = "terminated"
)

// ErrInvalidPayment rejects zero or negative payment amounts.
var ErrInvalidPayment = errors.New("payment amount must be positive")

// ErrSignersRequired rejects signing without both signer names captured.
var ErrSignersRequired = errors.New("both signer names are required to sign")

// Contract tracks an agreed amount and the payments received against it.
// RemainingAmount is always contract_amount − paid_amount; overpayment is
// absorbed by capping paid at the contract amount rather than rejected.
type Contract struct {
	Base
	ContractNumber string     `gorm:"size:50;not null;uniqueIndex:uq_contracts_number" json:"contract_number"`
	Title          string     `gorm:"size:200;not null" json:"title"`
	CustomerID     uint       `gorm:"not null;index" json:"customer_id"`
	Customer       *Customer  `gorm:"foreignKey:CustomerID" json:"-"`
	SalesUserID    uint       `gorm:"not null;index" json:"sales_user_id"`
	SalesUser      *User      `gorm:"foreignKey:SalesUserID" json:"-"`
	QuoteID        *uint      `gorm:"index" json:"quote_id,omitempty"`
	Quote          *Quote     `gorm:"foreignKey:QuoteID" json:"-"`
	ContractDate   time.Time  `gorm:"type:date;not null" json:"contract_date"`
	StartDate      *time.Time `gorm:"type:date" json:"start_date,omitempty"`
	EndDate        *time.Time `gorm:"type:date" json:"end_date,omitempty"`
	Currency       string     `gorm:"size:10;not null;default:CNY" json:"currency"`

	ContractAmount  decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"contract_amount"`
	PaidAmount      decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0" json:"paid_amount"`
	RemainingAmount decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"remaining_amount"`

	Status ContractStatus `gorm:"size:20;not null;default:draft" json:"status"`

	Content         string `gorm:"type:text" json:"content"`
	TermsConditions string `gorm:"type:text" json:"terms_conditions"`
	PaymentTerms    string `gorm:"type:text" json:"payment_terms"`
	DeliveryTerms   string `gorm:"type:text" json:"delivery_terms"`
	Notes           string `gorm:"type:text" json:"notes"`

	SignedDate     *time.Time `json:"signed_date,omitempty"`
	CustomerSigner string     `gorm:"size:100" json:"customer_signer"`
	CompanySigner  string     `gorm:"size:100" json:"company_signer"`

	Orders []Order `gorm:"foreignKey:ContractID" json:"-"`
}

func (Contract) TableName() string {
	return "contracts"
}

// Submit moves draft → pending.
func (c *Contract) Submit() error {
	if c.Status != ContractStatusDraft {
		return newTransitionError("contract", string(c.Status), string(ContractStatusPending))
	}
	c.Status = ContractStatusPending
	return nil
}

// Sign moves pending → signed. Both signer names must be captured.
func (c *Contract) Sign(customerSigner, companySigner string, now time.Time) error {
	if c.Status != ContractStatusPending {
		return newTransitionError("contract", string(c.Status), string(ContractStatusSigned))
	}
	if customerSigner == "" || companySigner == "" {
		return ErrSignersRequired
	}
	c.Status = ContractStatusSigned
	c.SignedDate = &now
	c.CustomerSigner = customerSigner
	c.CompanySigner = companySigner
	return nil
}

// StartExecution moves signed → executing, defaulting the start date to
// today when none was agreed.
func (c *Contract) StartExecution(now time.Time) error {
	if c.Status != ContractStatusSigned {
		return newTransitionError("contract", string(c.Status), string(ContractStatusExecuting))
	}
	c.Status = ContractStatusExecuting
	if c.StartDate == nil {
		day := dateOnly(now)
		c.StartDate = &day
	}
	return nil
}

// Complete moves executing → completed, defaulting the end date.
func (c *Contract) Complete(now time.Time) error {
	if c.Status != ContractStatusExecuting {
		return newTransitionError("contract", string(c.Status), string(ContractStatusCompleted))
	}
	c.Status = ContractStatusCompleted
	if c.EndDate == nil {
		day := dateOnly(now)
		c.EndDate = &day
	}
	return nil
}

// Terminate aborts a signed or executing contract, defaulting the end date.
func (c *Contract) Terminate(now time.Time) error {
	if c.Status != ContractStatusSigned && c.Status != ContractStatusExecuting {
		return newTransitionError("contract", string(c.Status), string(ContractStatusTerminated))
	}
	c.Status = ContractStatusTerminated
	if c.EndDate == nil {
		day := dateOnly(now)
		c.EndDate = &day
	}
	return nil
}

// AddPayment accumulates a received payment and re-derives the remaining
// amount. Paid never exceeds the contract amount; the excess of an
// overpayment is absorbed.
func (c *Contract) AddPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidPayment
	}
	c.PaidAmount = c.PaidAmount.Add(amount).Round(2)
	if c.PaidAmount.GreaterThan(c.ContractAmount) {
		c.PaidAmount = c.ContractAmount
	}
	c.RemainingAmount = c.ContractAmount.Sub(c.PaidAmount)
	return nil
}

// PaymentProgress is paid/contract × 100, capped at 100. Zero-amount
// contracts report zero progress.
func (c *Contract) PaymentProgress() decimal.Decimal {
	if !c.ContractAmount.IsPositive() {
		return decimal.Zero
	}
	progress := c.PaidAmount.Mul(oneHundred).Div(c.ContractAmount).Round(2)
	if progress.GreaterThan(oneHundred) {
		return oneHundred
	}
	return progress
}

// IsOverdue reports whether the end date passed while the contract is still
// signed or executing.
func (c *Contract) IsOverdue(now time.Time) bool {
	if c.EndDate == nil {
		return false
	}
	if c.Status != ContractStatusSigned && c.Status != ContractStatusExecuting {
		return false
	}
	return dateOnly(now).After(dateOnly(*c.EndDate))
}
