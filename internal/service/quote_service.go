package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/sales-crm/internal/model"
	"github.com/nurpe/sales-crm/internal/repository"
)

type QuoteService struct {
	db *gorm.DB
}

func NewQuoteService(db *gorm.DB) *QuoteService {
	return &QuoteService{db: db}
}

type QuoteItemInput struct {
	ProductName   string
	ProductCode   string
	Description   string
	Specification string
	Unit          string
	Quantity      string
	UnitPrice     string
	SortOrder     int
	Notes         string
}

type QuoteInput struct {
	Title           string
	CustomerID      uint
	ValidUntil      *time.Time
	Currency        string
	DiscountRate    string
	TaxRate         string
	Description     string
	TermsConditions string
	Notes           string
	Items           []QuoteItemInput
}

type ListQuotesInput struct {
	Filter repository.QuoteFilter
	Page   repository.Page
}

// List sweeps lapsed quotes into the expired status, then returns the page.
func (s *QuoteService) List(ctx context.Context, input ListQuotesInput) ([]model.Quote, int64, error) {
	quotes := repository.NewQuoteRepository(s.db)
	if _, err := quotes.MarkExpired(ctx, time.Now().UTC()); err != nil {
		return nil, 0, err
	}
	return quotes.List(ctx, input.Filter, input.Page)
}

func (s *QuoteService) Get(ctx context.Context, id uint) (*model.Quote, error) {
	quote, err := repository.NewQuoteRepository(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return quote, nil
}

// Create generates the quote number, builds the lines and derives the
// monetary fields in one transaction.
func (s *QuoteService) Create(ctx context.Context, principal model.Principal, input QuoteInput) (*model.Quote, error) {
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
	discountRate, err := parseRate(input.DiscountRate)
	if err != nil {
		v.addError("discount_rate", err.Error())
	}
	taxRate, err := parseRate(input.TaxRate)
	if err != nil {
		v.addError("tax_rate", err.Error())
	}
	items, itemErrs := buildQuoteItems(input.Items)
	v.fields = append(v.fields, itemErrs...)
	if err := v.err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	quoteDate := dateOnly(now)
	validUntil := quoteDate.Add(model.DefaultQuoteValidity)
	if input.ValidUntil != nil {
		validUntil = dateOnly(*input.ValidUntil)
	}
	currency := input.Currency
	if currency == "" {
		currency = "CNY"
	}

	var quote *model.Quote
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCustomer(ctx, tx, input.CustomerID); err != nil {
			return err
		}

		number, err := repository.NewSequenceRepository(tx).NextNumber(ctx, model.PrefixQuote, now)
		if err != nil {
			return err
		}

		quote = &model.Quote{
			QuoteNumber:     number,
			Title:           input.Title,
			CustomerID:      input.CustomerID,
			SalesUserID:     principal.UserID,
			QuoteDate:       quoteDate,
			ValidUntil:      validUntil,
			Currency:        currency,
			DiscountRate:    discountRate,
			TaxRate:         taxRate,
			Status:          model.QuoteStatusDraft,
			Description:     input.Description,
			TermsConditions: input.TermsConditions,
			Notes:           input.Notes,
			Items:           items,
		}
		quote.CalculateTotals()
		return repository.NewQuoteRepository(tx).Create(ctx, quote)
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// Update edits a draft quote's header fields and re-derives the totals.
func (s *QuoteService) Update(ctx context.Context, principal model.Principal, id uint, input QuoteInput) (*model.Quote, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}

	input.Title = strings.TrimSpace(input.Title)
	v := &validator{}
	if input.Title == "" {
		v.addError("title", "title is required")
	}
	discountRate, err := parseRate(input.DiscountRate)
	if err != nil {
		v.addError("discount_rate", err.Error())
	}
	taxRate, err := parseRate(input.TaxRate)
	if err != nil {
		v.addError("tax_rate", err.Error())
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	var quote *model.Quote
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotes := repository.NewQuoteRepository(tx)
		quote, err = quotes.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if quote.Status != model.QuoteStatusDraft {
			return fmt.Errorf("%w: only draft quotes can be edited", ErrConflict)
		}

		quote.Title = input.Title
		quote.DiscountRate = discountRate
		quote.TaxRate = taxRate
		quote.Description = input.Description
		quote.TermsConditions = input.TermsConditions
		quote.Notes = input.Notes
		if input.ValidUntil != nil {
			quote.ValidUntil = dateOnly(*input.ValidUntil)
		}
		if input.Currency != "" {
			quote.Currency = input.Currency
		}

		if err := quotes.LoadItems(ctx, quote); err != nil {
			return err
		}
		quote.CalculateTotals()
		return quotes.Save(ctx, quote)
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// ReplaceItems swaps a draft quote's lines and recomputes totals, all in
// one transaction so a failed edit never leaves half-updated amounts.
func (s *QuoteService) ReplaceItems(ctx context.Context, principal model.Principal, id uint, inputs []QuoteItemInput) (*model.Quote, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}

	items, itemErrs := buildQuoteItems(inputs)
	if len(itemErrs) > 0 {
		return nil, &ValidationError{Fields: itemErrs}
	}

	var quote *model.Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotes := repository.NewQuoteRepository(tx)
		var err error
		quote, err = quotes.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if quote.Status != model.QuoteStatusDraft {
			return fmt.Errorf("%w: only draft quotes can be edited", ErrConflict)
		}

		if err := quotes.ReplaceItems(ctx, quote, items); err != nil {
			return err
		}
		quote.CalculateTotals()
		return quotes.Save(ctx, quote)
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// Send transitions draft → sent.
func (s *QuoteService) Send(ctx context.Context, principal model.Principal, id uint) (*model.Quote, error) {
	return s.transition(ctx, principal, id, func(q *model.Quote, now time.Time) error {
		return q.Send(now)
	})
}

// Accept transitions sent → accepted.
func (s *QuoteService) Accept(ctx context.Context, principal model.Principal, id uint) (*model.Quote, error) {
	return s.transition(ctx, principal, id, func(q *model.Quote, now time.Time) error {
		return q.Accept(now)
	})
}

// Reject transitions sent → rejected.
func (s *QuoteService) Reject(ctx context.Context, principal model.Principal, id uint) (*model.Quote, error) {
	return s.transition(ctx, principal, id, func(q *model.Quote, now time.Time) error {
		return q.Reject(now)
	})
}

func (s *QuoteService) transition(ctx context.Context, principal model.Principal, id uint, apply func(*model.Quote, time.Time) error) (*model.Quote, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}

	var quote *model.Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotes := repository.NewQuoteRepository(tx)
		var err error
		quote, err = quotes.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := apply(quote, time.Now().UTC()); err != nil {
			return err
		}
		return quotes.Save(ctx, quote)
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// Delete soft-deletes a quote. Accepted quotes are kept for the record.
func (s *QuoteService) Delete(ctx context.Context, principal model.Principal, id uint) error {
	if !principal.CanManage() {
		return ErrPermissionDenied
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotes := repository.NewQuoteRepository(tx)
		quote, err := quotes.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if quote.Status == model.QuoteStatusAccepted {
			return fmt.Errorf("%w: accepted quotes cannot be deleted", ErrConflict)
		}
		return quotes.SoftDelete(ctx, quote)
	})
}

func buildQuoteItems(inputs []QuoteItemInput) ([]model.QuoteItem, []FieldError) {
	var fieldErrs []FieldError
	items := make([]model.QuoteItem, 0, len(inputs))
	for i, in := range inputs {
		name := strings.TrimSpace(in.ProductName)
		if name == "" {
			fieldErrs = append(fieldErrs, FieldError{
				Field:   fmt.Sprintf("items[%d].product_name", i),
				Message: "product_name is required",
			})
		}
		qty, err := parseAmount(in.Quantity)
		if err != nil || qty.IsZero() {
			fieldErrs = append(fieldErrs, FieldError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "must be a positive decimal",
			})
		}
		price, err := parseAmount(in.UnitPrice)
		if err != nil {
			fieldErrs = append(fieldErrs, FieldError{
				Field:   fmt.Sprintf("items[%d].unit_price", i),
				Message: "must be a non-negative decimal",
			})
		}

		item := model.QuoteItem{
			ProductName:   name,
			ProductCode:   in.ProductCode,
			Description:   in.Description,
			Specification: in.Specification,
			Unit:          in.Unit,
			Quantity:      qty,
			UnitPrice:     price,
			SortOrder:     in.SortOrder,
			Notes:         in.Notes,
		}
		item.RecalcTotal()
		items = append(items, item)
	}
	return items, fieldErrs
}

// ensureCustomer verifies the referenced customer exists and is not
// soft-deleted.
func ensureCustomer(ctx context.Context, tx *gorm.DB, customerID uint) error {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Customer{}).
		Where("id = ? AND is_deleted = ?", customerID, false).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: customer %d", ErrNotFound, customerID)
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
