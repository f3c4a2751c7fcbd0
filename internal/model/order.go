package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// DeliveryError reports a delivery request exceeding the undelivered
// remainder of a line, or a non-positive quantity.
type DeliveryError struct {
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("cannot deliver %s: %s remaining", e.Requested, e.Remaining)
}

// deliveryProgress maps each order status to the fixed progress percentage
// reported to clients.
var deliveryProgress = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusConfirmed:  20,
	OrderStatusProcessing: 40,
	OrderStatusShipped:    70,
	OrderStatusDelivered:  90,
	OrderStatusCompleted:  100,
	OrderStatusCancelled:  0,
}

type Order struct {
	Base
	OrderNumber string    `gorm:"size:50;not null;uniqueIndex:uq_orders_number" json:"order_number"`
	CustomerID  uint      `gorm:"not null;index" json:"customer_id"`
	Customer    *Customer `gorm:"foreignKey:CustomerID" json:"-"`
	SalesUserID uint      `gorm:"not null;index" json:"sales_user_id"`
	SalesUser   *User     `gorm:"foreignKey:SalesUserID" json:"-"`
	ContractID  *uint     `gorm:"index" json:"contract_id,omitempty"`
	Contract    *Contract `gorm:"foreignKey:ContractID" json:"-"`

	OrderDate    time.Time  `gorm:"type:date;not null" json:"order_date"`
	RequiredDate *time.Time `gorm:"type:date" json:"required_date,omitempty"`
	ShippedDate  *time.Time `gorm:"type:date" json:"shipped_date,omitempty"`
	DeliveryDate *time.Time `gorm:"type:date" json:"delivery_date,omitempty"`
	Currency     string     `gorm:"size:10;not null;default:CNY" json:"currency"`

	Subtotal       decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0" json:"subtotal"`
	DiscountRate   decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"discount_rate"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0" json:"discount_amount"`
	TaxRate        decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"tax_rate"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0" json:"tax_amount"`
	ShippingCost   decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0" json:"shipping_cost"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0" json:"total_amount"`

	Status OrderStatus `gorm:"size:20;not null;default:pending" json:"status"`

	ShippingMethod  string `gorm:"size:50" json:"shipping_method"`
	TrackingNumber  string `gorm:"size:100" json:"tracking_number"`
	ShippingAddress string `gorm:"type:text" json:"shipping_address"`
	ShippingContact string `gorm:"size:100" json:"shipping_contact"`
	ShippingPhone   string `gorm:"size:20" json:"shipping_phone"`

	Description   string `gorm:"type:text" json:"description"`
	Notes         string `gorm:"type:text" json:"notes"`
	InternalNotes string `gorm:"type:text" json:"internal_notes"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	Base
	OrderID           uint            `gorm:"not null;index" json:"order_id"`
	ProductName       string          `gorm:"size:200;not null" json:"product_name"`
	ProductCode       string          `gorm:"size:50" json:"product_code"`
	Description       string          `gorm:"type:text" json:"description"`
	Specification     string          `gorm:"size:500" json:"specification"`
	Unit              string          `gorm:"size:20" json:"unit"`
	Quantity          decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"quantity"`
	UnitPrice         decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"unit_price"`
	TotalPrice        decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"total_price"`
	DeliveredQuantity decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"delivered_quantity"`
	SortOrder         int             `gorm:"not null;default:0" json:"sort_order"`
	Notes             string          `gorm:"type:text" json:"notes"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// RecalcTotal re-derives the line total after either factor changed.
func (i *OrderItem) RecalcTotal() {
	i.TotalPrice = i.Quantity.Mul(i.UnitPrice).Round(2)
}

// RemainingQuantity is the undelivered remainder of the line.
func (i *OrderItem) RemainingQuantity() decimal.Decimal {
	return i.Quantity.Sub(i.DeliveredQuantity)
}

func (i *OrderItem) IsFullyDelivered() bool {
	return i.DeliveredQuantity.GreaterThanOrEqual(i.Quantity)
}

// Deliver records a partial delivery. It fails without mutating the line
// when qty is not positive or exceeds the undelivered remainder.
func (i *OrderItem) Deliver(qty decimal.Decimal) error {
	remaining := i.RemainingQuantity()
	if !qty.IsPositive() || qty.GreaterThan(remaining) {
		return &DeliveryError{Requested: qty, Remaining: remaining}
	}
	i.DeliveredQuantity = i.DeliveredQuantity.Add(qty)
	return nil
}

// CalculateTotals recomputes line totals, the subtotal over non-deleted
// lines and the full monetary derivation including shipping.
func (o *Order) CalculateTotals() {
	subtotal := decimal.Zero
	for idx := range o.Items {
		if o.Items[idx].IsDeleted {
			continue
		}
		o.Items[idx].RecalcTotal()
		subtotal = subtotal.Add(o.Items[idx].TotalPrice)
	}

	amounts := DeriveAmounts(subtotal, o.DiscountRate, o.TaxRate, o.ShippingCost)
	o.Subtotal = amounts.Subtotal
	o.DiscountAmount = amounts.DiscountAmount
	o.TaxAmount = amounts.TaxAmount
	o.TotalAmount = amounts.TotalAmount
}

// Confirm moves pending → confirmed.
func (o *Order) Confirm() error {
	if o.Status != OrderStatusPending {
		return newTransitionError("order", string(o.Status), string(OrderStatusConfirmed))
	}
	o.Status = OrderStatusConfirmed
	return nil
}

// StartProcessing moves confirmed → processing.
func (o *Order) StartProcessing() error {
	if o.Status != OrderStatusConfirmed {
		return newTransitionError("order", string(o.Status), string(OrderStatusProcessing))
	}
	o.Status = OrderStatusProcessing
	return nil
}

// Ship moves processing → shipped, stamps the shipped date and records the
// tracking number and shipping method when given.
func (o *Order) Ship(trackingNumber, shippingMethod string, now time.Time) error {
	if o.Status != OrderStatusProcessing {
		return newTransitionError("order", string(o.Status), string(OrderStatusShipped))
	}
	o.Status = OrderStatusShipped
	day := dateOnly(now)
	o.ShippedDate = &day
	if trackingNumber != "" {
		o.TrackingNumber = trackingNumber
	}
	if shippingMethod != "" {
		o.ShippingMethod = shippingMethod
	}
	return nil
}

// Deliver moves shipped → delivered and stamps the delivery date.
func (o *Order) Deliver(now time.Time) error {
	if o.Status != OrderStatusShipped {
		return newTransitionError("order", string(o.Status), string(OrderStatusDelivered))
	}
	o.Status = OrderStatusDelivered
	day := dateOnly(now)
	o.DeliveryDate = &day
	return nil
}

// Complete moves delivered → completed.
func (o *Order) Complete() error {
	if o.Status != OrderStatusDelivered {
		return newTransitionError("order", string(o.Status), string(OrderStatusCompleted))
	}
	o.Status = OrderStatusCompleted
	return nil
}

// Cancel aborts an order that has not shipped yet.
func (o *Order) Cancel() error {
	switch o.Status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing:
		o.Status = OrderStatusCancelled
		return nil
	}
	return newTransitionError("order", string(o.Status), string(OrderStatusCancelled))
}

// IsOverdue reports whether the required date passed before the order was
// delivered, completed or cancelled.
func (o *Order) IsOverdue(now time.Time) bool {
	if o.RequiredDate == nil {
		return false
	}
	switch o.Status {
	case OrderStatusDelivered, OrderStatusCompleted, OrderStatusCancelled:
		return false
	}
	return dateOnly(now).After(dateOnly(*o.RequiredDate))
}

// DeliveryProgress returns the fixed status → percentage mapping.
func (o *Order) DeliveryProgress() int {
	return deliveryProgress[o.Status]
}
