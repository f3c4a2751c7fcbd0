package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/sales-crm/internal/model"
	"github.com/nurpe/sales-crm/internal/repository"
)

type ContractService struct {
	db *gorm.DB
}

func NewContractService(db *gorm.DB) *ContractService {
	return &ContractService{db: db}
}

type ContractInput struct {
	Title           string
	CustomerID      uint
	QuoteID         *uint
	ContractAmount  string
	Currency        string
	StartDate       *time.Time
	EndDate         *time.Time
	Content         string
	TermsConditions string
	PaymentTerms    string
	DeliveryTerms   string
	Notes           string
}

type ListContractsInput struct {
	Filter repository.ContractFilter
	Page   repository.Page
}

func (s *ContractService) List(ctx context.Context, input ListContractsInput) ([]model.Contract, int64, error) {
	return repository.NewContractRepository(s.db).List(ctx, input.Filter, input.Page)
}

func (s *ContractService) Get(ctx context.Context, id uint) (*model.Contract, error) {
	contract, err := repository.NewContractRepository(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return contract, nil
}

// Create generates the contract number and opens the payment ledger with
// remaining = contract amount.
func (s *ContractService) Create(ctx context.Context, principal model.Principal, input ContractInput) (*model.Contract, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}

	input.Title = strings.TrimSpace(input.Title)
	v := &validator{}
	if input.Title == "" {
		v.addError("title", "title is required")
	}
	if input.CustomerID == 0 {
		v.addError("customer_id", "customer_id is required")
	}
	amount, err := parseAmount(input.ContractAmount)
	if err != nil || !amount.IsPositive() {
		v.addError("contract_amount", "must be a positive decimal")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	currency := input.Currency
	if currency == "" {
		currency = "CNY"
	}

	var contract *model.Contract
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCustomer(ctx, tx, input.CustomerID); err != nil {
			return err
		}
		if input.QuoteID != nil {
			if err := ensureQuote(ctx, tx, *input.QuoteID); err != nil {
				return err
			}
		}

		number, err := repository.NewSequenceRepository(tx).NextNumber(ctx, model.PrefixContract, now)
		if err != nil {
			return err
		}

		contract = &model.Contract{
			ContractNumber:  number,
			Title:           input.Title,
			CustomerID:      input.CustomerID,
			SalesUserID:     principal.UserID,
			QuoteID:         input.QuoteID,
			ContractDate:    dateOnly(now),
			StartDate:       datePtr(input.StartDate),
			EndDate:         datePtr(input.EndDate),
			Currency:        currency,
			ContractAmount:  amount.Round(2),
			PaidAmount:      decimal.Zero,
			RemainingAmount: amount.Round(2),
			Status:          model.ContractStatusDraft,
			Content:         input.Content,
			TermsConditions: input.TermsConditions,
			PaymentTerms:    input.PaymentTerms,
			DeliveryTerms:   input.DeliveryTerms,
			Notes:           input.Notes,
		}
		return repository.NewContractRepository(tx).Create(ctx, contract)
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

// Update edits a draft contract's header fields.
func (s *ContractService) Update(ctx context.Context, principal model.Principal, id uint, input ContractInput) (*model.Contract, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}

	input.Title = strings.TrimSpace(input.Title)
	v := &validator{}
	if input.Title == "" {
		v.addError("title", "title is required")
	}
	amount, err := parseAmount(input.ContractAmount)
	if err != nil || !amount.IsPositive() {
		v.addError("contract_amount", "must be a positive decimal")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	var contract *model.Contract
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contracts := repository.NewContractRepository(tx)
		contract, err = contracts.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if contract.Status != model.ContractStatusDraft {
			return fmt.Errorf("%w: only draft contracts can be edited", ErrConflict)
		}

		contract.Title = input.Title
		contract.ContractAmount = amount.Round(2)
		contract.RemainingAmount = contract.ContractAmount.Sub(contract.PaidAmount)
		contract.StartDate = datePtr(input.StartDate)
		contract.EndDate = datePtr(input.EndDate)
		contract.Content = input.Content
		contract.TermsConditions = input.TermsConditions
		contract.PaymentTerms = input.PaymentTerms
		contract.DeliveryTerms = input.DeliveryTerms
		contract.Notes = input.Notes
		if input.Currency != "" {
			contract.Currency = input.Currency
		}
		return contracts.Save(ctx, contract)
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

// Submit transitions draft → pending.
func (s *ContractService) Submit(ctx context.Context, principal model.Principal, id uint) (*model.Contract, error) {
	return s.transition(ctx, principal, id, func(c *model.Contract, _ time.Time) error {
		return c.Submit()
	})
}

// Sign transitions pending → signed, capturing both signer names.
func (s *ContractService) Sign(ctx context.Context, principal model.Principal, id uint, customerSigner, companySigner string) (*model.Contract, error) {
	customerSigner = strings.TrimSpace(customerSigner)
	companySigner = strings.TrimSpace(companySigner)
	return s.transition(ctx, principal, id, func(c *model.Contract, now time.Time) error {
		err := c.Sign(customerSigner, companySigner, now)
		if errors.Is(err, model.ErrSignersRequired) {
			return &ValidationError{Fields: []FieldError{
				{Field: "customer_signer", Message: err.Error()},
			}}
		}
		return err
	})
}

// StartExecution transitions signed → executing.
func (s *ContractService) StartExecution(ctx context.Context, principal model.Principal, id uint) (*model.Contract, error) {
	return s.transition(ctx, principal, id, func(c *model.Contract, now time.Time) error {
		return c.StartExecution(now)
	})
}

// Complete transitions executing → completed.
func (s *ContractService) Complete(ctx context.Context, principal model.Principal, id uint) (*model.Contract, error) {
	return s.transition(ctx, principal, id, func(c *model.Contract, now time.Time) error {
		return c.Complete(now)
	})
}

// Terminate aborts a signed or executing contract.
func (s *ContractService) Terminate(ctx context.Context, principal model.Principal, id uint) (*model.Contract, error) {
	return s.transition(ctx, principal, id, func(c *model.Contract, now time.Time) error {
		return c.Terminate(now)
	})
}

// AddPayment records a received payment inside a transaction with the row
// locked, preventing lost updates between concurrent payments.
func (s *ContractService) AddPayment(ctx context.Context, principal model.Principal, id uint, amount string) (*model.Contract, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}

	parsed, err := parseAmount(amount)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{
			{Field: "amount", Message: "must be a positive decimal"},
		}}
	}

	var contract *model.Contract
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contracts := repository.NewContractRepository(tx)
		contract, err = contracts.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := contract.AddPayment(parsed); err != nil {
			return &ValidationError{Fields: []FieldError{
				{Field: "amount", Message: err.Error()},
			}}
		}
		return contracts.Save(ctx, contract)
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

// Delete soft-deletes a contract with no live orders under it.
func (s *ContractService) Delete(ctx context.Context, principal model.Principal, id uint) error {
	if !principal.CanManage() {
		return ErrPermissionDenied
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contracts := repository.NewContractRepository(tx)
		contract, err := contracts.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		count, err := contracts.CountOrders(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: contract has %d orders", ErrConflict, count)
		}
		return contracts.SoftDelete(ctx, contract)
	})
}

func (s *ContractService) transition(ctx context.Context, principal model.Principal, id uint, apply func(*model.Contract, time.Time) error) (*model.Contract, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}

	var contract *model.Contract
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contracts := repository.NewContractRepository(tx)
		var err error
		contract, err = contracts.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := apply(contract, time.Now().UTC()); err != nil {
			return err
		}
		return contracts.Save(ctx, contract)
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

func ensureQuote(ctx context.Context, tx *gorm.DB, quoteID uint) error {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Quote{}).
		Where("id = ? AND is_deleted = ?", quoteID, false).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: quote %d", ErrNotFound, quoteID)
	}
	return nil
}

func datePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	day := dateOnly(*t)
	return &day
}
