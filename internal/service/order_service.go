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

type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

type OrderItemInput struct {
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

type OrderInput struct {
	CustomerID      uint
	ContractID      *uint
	RequiredDate    *time.Time
	Currency        string
	DiscountRate    string
	TaxRate         string
	ShippingCost    string
	ShippingMethod  string
	ShippingAddress string
	ShippingContact string
	ShippingPhone   string
	Description     string
	Notes           string
	InternalNotes   string
	Items           []OrderItemInput
}

type ListOrdersInput struct {
	Filter repository.OrderFilter
	Page   repository.Page
}

func (s *OrderService) List(ctx context.Context, input ListOrdersInput) ([]model.Order, int64, error) {
	return repository.NewOrderRepository(s.db).List(ctx, input.Filter, input.Page)
}

func (s *OrderService) Get(ctx context.Context, id uint) (*model.Order, error) {
	order, err := repository.NewOrderRepository(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

// Create generates the order number, builds the lines and derives the
// monetary fields including shipping, all in one transaction.
func (s *OrderService) Create(ctx context.Context, principal model.Principal, input OrderInput) (*model.Order, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}

	v := &validator{}
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
	shippingCost, err := parseAmount(input.ShippingCost)
	if err != nil {
		v.addError("shipping_cost", "must be a non-negative decimal")
	}
	items, itemErrs := buildOrderItems(input.Items)
	v.fields = append(v.fields, itemErrs...)
	if err := v.err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	currency := input.Currency
	if currency == "" {
		currency = "CNY"
	}

	var order *model.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCustomer(ctx, tx, input.CustomerID); err != nil {
			return err
		}
		if input.ContractID != nil {
			if err := ensureContract(ctx, tx, *input.ContractID); err != nil {
				return err
			}
		}

		number, err := repository.NewSequenceRepository(tx).NextNumber(ctx, model.PrefixOrder, now)
		if err != nil {
			return err
		}

		order = &model.Order{
			OrderNumber:     number,
			CustomerID:      input.CustomerID,
			SalesUserID:     principal.UserID,
			ContractID:      input.ContractID,
			OrderDate:       dateOnly(now),
			RequiredDate:    datePtr(input.RequiredDate),
			Currency:        currency,
			DiscountRate:    discountRate,
			TaxRate:         taxRate,
			ShippingCost:    shippingCost.Round(2),
			Status:          model.OrderStatusPending,
			ShippingMethod:  input.ShippingMethod,
			ShippingAddress: input.ShippingAddress,
			ShippingContact: input.ShippingContact,
			ShippingPhone:   input.ShippingPhone,
			Description:     input.Description,
			Notes:           input.Notes,
			InternalNotes:   input.InternalNotes,
			Items:           items,
		}
		order.CalculateTotals()
		return repository.NewOrderRepository(tx).Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Update edits a pending order's header fields and re-derives the totals.
func (s *OrderService) Update(ctx context.Context, principal model.Principal, id uint, input OrderInput) (*model.Order, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}

	v := &validator{}
	discountRate, err := parseRate(input.DiscountRate)
	if err != nil {
		v.addError("discount_rate", err.Error())
	}
	taxRate, err := parseRate(input.TaxRate)
	if err != nil {
		v.addError("tax_rate", err.Error())
	}
	shippingCost, err := parseAmount(input.ShippingCost)
	if err != nil {
		v.addError("shipping_cost", "must be a non-negative decimal")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	var order *model.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := repository.NewOrderRepository(tx)
		order, err = orders.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if order.Status != model.OrderStatusPending {
			return fmt.Errorf("%w: only pending orders can be edited", ErrConflict)
		}

		order.RequiredDate = datePtr(input.RequiredDate)
		order.DiscountRate = discountRate
		order.TaxRate = taxRate
		order.ShippingCost = shippingCost.Round(2)
		order.ShippingMethod = input.ShippingMethod
		order.ShippingAddress = input.ShippingAddress
		order.ShippingContact = input.ShippingContact
		order.ShippingPhone = input.ShippingPhone
		order.Description = input.Description
		order.Notes = input.Notes
		order.InternalNotes = input.InternalNotes
		if input.Currency != "" {
			order.Currency = input.Currency
		}

		if err := orders.LoadItems(ctx, order); err != nil {
			return err
		}
		order.CalculateTotals()
		return orders.Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ReplaceItems swaps a pending order's lines and recomputes totals
// atomically.
func (s *OrderService) ReplaceItems(ctx context.Context, principal model.Principal, id uint, inputs []OrderItemInput) (*model.Order, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}

	items, itemErrs := buildOrderItems(inputs)
	if len(itemErrs) > 0 {
		return nil, &ValidationError{Fields: itemErrs}
	}

	var order *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := repository.NewOrderRepository(tx)
		var err error
		order, err = orders.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if order.Status != model.OrderStatusPending {
			return fmt.Errorf("%w: only pending orders can be edited", ErrConflict)
		}

		if err := orders.ReplaceItems(ctx, order, items); err != nil {
			return err
		}
		order.CalculateTotals()
		return orders.Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Confirm transitions pending → confirmed.
func (s *OrderService) Confirm(ctx context.Context, principal model.Principal, id uint) (*model.Order, error) {
	return s.transition(ctx, principal, id, func(o *model.Order, _ time.Time) error {
		return o.Confirm()
	})
}

// StartProcessing transitions confirmed → processing.
func (s *OrderService) StartProcessing(ctx context.Context, principal model.Principal, id uint) (*model.Order, error) {
	return s.transition(ctx, principal, id, func(o *model.Order, _ time.Time) error {
		return o.StartProcessing()
	})
}

// Ship transitions processing → shipped with optional tracking details.
func (s *OrderService) Ship(ctx context.Context, principal model.Principal, id uint, trackingNumber, shippingMethod string) (*model.Order, error) {
	return s.transition(ctx, principal, id, func(o *model.Order, now time.Time) error {
		return o.Ship(strings.TrimSpace(trackingNumber), strings.TrimSpace(shippingMethod), now)
	})
}

// Deliver transitions shipped → delivered.
func (s *OrderService) Deliver(ctx context.Context, principal model.Principal, id uint) (*model.Order, error) {
	return s.transition(ctx, principal, id, func(o *model.Order, now time.Time) error {
		return o.Deliver(now)
	})
}

// Complete transitions delivered → completed.
func (s *OrderService) Complete(ctx context.Context, principal model.Principal, id uint) (*model.Order, error) {
	return s.transition(ctx, principal, id, func(o *model.Order, _ time.Time) error {
		return o.Complete()
	})
}

// Cancel aborts an order that has not shipped.
func (s *OrderService) Cancel(ctx context.Context, principal model.Principal, id uint) (*model.Order, error) {
	return s.transition(ctx, principal, id, func(o *model.Order, _ time.Time) error {
		return o.Cancel()
	})
}

// DeliverItemQuantity records a partial delivery against one line. The line
// is locked for the read-modify-write so concurrent deliveries cannot
// overshoot the ordered quantity.
func (s *OrderService) DeliverItemQuantity(ctx context.Context, principal model.Principal, orderID, itemID uint, quantity string) (*model.OrderItem, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}

	qty, err := parseAmount(quantity)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{
			{Field: "quantity", Message: "must be a positive decimal"},
		}}
	}

	var item *model.OrderItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := repository.NewOrderRepository(tx)

		order, err := orders.GetForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		switch order.Status {
		case model.OrderStatusShipped, model.OrderStatusDelivered:
		default:
			return fmt.Errorf("%w: order is not in a deliverable status", ErrConflict)
		}

		item, err = orders.GetItemForUpdate(ctx, orderID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := item.Deliver(qty); err != nil {
			return err
		}
		return orders.SaveItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete soft-deletes an order that has not shipped.
func (s *OrderService) Delete(ctx context.Context, principal model.Principal, id uint) error {
	if !principal.CanManage() {
		return ErrPermissionDenied
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := repository.NewOrderRepository(tx)
		order, err := orders.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		switch order.Status {
		case model.OrderStatusShipped, model.OrderStatusDelivered, model.OrderStatusCompleted:
			return fmt.Errorf("%w: shipped orders cannot be deleted", ErrConflict)
		}
		return orders.SoftDelete(ctx, order)
	})
}

func (s *OrderService) transition(ctx context.Context, principal model.Principal, id uint, apply func(*model.Order, time.Time) error) (*model.Order, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}

	var order *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := repository.NewOrderRepository(tx)
		var err error
		order, err = orders.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := apply(order, time.Now().UTC()); err != nil {
			return err
		}
		return orders.Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func buildOrderItems(inputs []OrderItemInput) ([]model.OrderItem, []FieldError) {
	var fieldErrs []FieldError
	items := make([]model.OrderItem, 0, len(inputs))
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

		item := model.OrderItem{
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

func ensureContract(ctx context.Context, tx *gorm.DB, contractID uint) error {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Contract{}).
		Where("id = ? AND is_deleted = ?", contractID, false).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: contract %d", ErrNotFound, contractID)
	}
	return nil
}
