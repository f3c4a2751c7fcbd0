package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurpe/sales-crm/internal/model"
)

// View wrappers embed the model and add the derived fields clients render:
// related entity names, progress percentages and overdue flags. Derivation
// happens here, never in storage.

type customerView struct {
	*model.Customer
	SalesUserName string   `json:"sales_user_name"`
	Tags          []string `json:"tags"`
}

func newCustomerView(c *model.Customer) customerView {
	view := customerView{Customer: c, Tags: c.TagList()}
	if c.SalesUser != nil {
		view.SalesUserName = c.SalesUser.DisplayName()
	}
	return view
}

func customerViews(customers []model.Customer) []customerView {
	views := make([]customerView, len(customers))
	for i := range customers {
		views[i] = newCustomerView(&customers[i])
	}
	return views
}

type quoteView struct {
	*model.Quote
	Status        model.QuoteStatus `json:"status"`
	IsExpired     bool              `json:"is_expired"`
	CustomerName  string            `json:"customer_name"`
	SalesUserName string            `json:"sales_user_name"`
}

func newQuoteView(q *model.Quote, now time.Time) quoteView {
	view := quoteView{
		Quote:     q,
		Status:    q.EffectiveStatus(now),
		IsExpired: q.IsExpired(now),
	}
	if q.Customer != nil {
		view.CustomerName = q.Customer.Name
	}
	if q.SalesUser != nil {
		view.SalesUserName = q.SalesUser.DisplayName()
	}
	return view
}

func quoteViews(quotes []model.Quote, now time.Time) []quoteView {
	views := make([]quoteView, len(quotes))
	for i := range quotes {
		views[i] = newQuoteView(&quotes[i], now)
	}
	return views
}

type contractView struct {
	*model.Contract
	PaymentProgress decimal.Decimal `json:"payment_progress"`
	IsOverdue       bool            `json:"is_overdue"`
	CustomerName    string          `json:"customer_name"`
	SalesUserName   string          `json:"sales_user_name"`
	QuoteNumber     string          `json:"quote_number,omitempty"`
}

func newContractView(ct *model.Contract, now time.Time) contractView {
	view := contractView{
		Contract:        ct,
		PaymentProgress: ct.PaymentProgress(),
		IsOverdue:       ct.IsOverdue(now),
	}
	if ct.Customer != nil {
		view.CustomerName = ct.Customer.Name
	}
	if ct.SalesUser != nil {
		view.SalesUserName = ct.SalesUser.DisplayName()
	}
	if ct.Quote != nil {
		view.QuoteNumber = ct.Quote.QuoteNumber
	}
	return view
}

func contractViews(contracts []model.Contract, now time.Time) []contractView {
	views := make([]contractView, len(contracts))
	for i := range contracts {
		views[i] = newContractView(&contracts[i], now)
	}
	return views
}

type orderView struct {
	*model.Order
	DeliveryProgress int             `json:"delivery_progress"`
	IsOverdue        bool            `json:"is_overdue"`
	CustomerName     string          `json:"customer_name"`
	SalesUserName    string          `json:"sales_user_name"`
	ContractNumber   string          `json:"contract_number,omitempty"`
	Items            []orderItemView `json:"items"`
}

type orderItemView struct {
	*model.OrderItem
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	IsFullyDelivered  bool            `json:"is_fully_delivered"`
}

func newOrderItemView(item *model.OrderItem) orderItemView {
	return orderItemView{
		OrderItem:         item,
		RemainingQuantity: item.RemainingQuantity(),
		IsFullyDelivered:  item.IsFullyDelivered(),
	}
}

func newOrderView(o *model.Order, now time.Time) orderView {
	view := orderView{
		Order:            o,
		DeliveryProgress: o.DeliveryProgress(),
		IsOverdue:        o.IsOverdue(now),
		Items:            make([]orderItemView, len(o.Items)),
	}
	for i := range o.Items {
		view.Items[i] = newOrderItemView(&o.Items[i])
	}
	if o.Customer != nil {
		view.CustomerName = o.Customer.Name
	}
	if o.SalesUser != nil {
		view.SalesUserName = o.SalesUser.DisplayName()
	}
	if o.Contract != nil {
		view.ContractNumber = o.Contract.ContractNumber
	}
	return view
}

func orderViews(orders []model.Order, now time.Time) []orderView {
	views := make([]orderView, len(orders))
	for i := range orders {
		views[i] = newOrderView(&orders[i], now)
	}
	return views
}

type userView struct {
	*model.User
	DisplayName string `json:"display_name"`
}

func newUserView(u *model.User) userView {
	return userView{User: u, DisplayName: u.DisplayName()}
}
