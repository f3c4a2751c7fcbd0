package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nurpe/sales-crm/internal/model"
)

func orderInputFixture(customerID uint) OrderInput {
	return OrderInput{
		CustomerID:   customerID,
		DiscountRate: "10",
		TaxRate:      "5",
		ShippingCost: "20.00",
		Items: []OrderItemInput{
			{ProductName: "Desk", Quantity: "2", UnitPrice: "100.00"},
			{ProductName: "Chair", Quantity: "1", UnitPrice: "50.00"},
		},
	}
}

func seedOrder(t *testing.T, svc *OrderService, principal model.Principal, customerID uint) *model.Order {
	t.Helper()
	order, err := svc.Create(context.Background(), principal, orderInputFixture(customerID))
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func shipOrder(t *testing.T, svc *OrderService, principal model.Principal, id uint) *model.Order {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.Confirm(ctx, principal, id); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.StartProcessing(ctx, principal, id); err != nil {
		t.Fatalf("start processing: %v", err)
	}
	order, err := svc.Ship(ctx, principal, id, "SF123456", "express")
	if err != nil {
		t.Fatalf("ship: %v", err)
	}
	return order
}

func TestOrderServiceCreate(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	customer := seedCustomer(t, dbi, sales, "Acme Ltd")
	svc := NewOrderService(dbi)

	order := seedOrder(t, svc, sales, customer.ID)
	if !strings.HasPrefix(order.OrderNumber, "OD") {
		t.Errorf("number = %q, want OD prefix", order.OrderNumber)
	}
	if order.Status != model.OrderStatusPending {
		t.Errorf("status = %q, want pending", order.Status)
	}
	if got := order.Subtotal.StringFixed(2); got != "250.00" {
		t.Errorf("subtotal = %s, want 250.00", got)
	}
	// 250 - 25 discount + 11.25 tax + 20 shipping.
	if got := order.TotalAmount.StringFixed(2); got != "256.25" {
		t.Errorf("total = %s, want 256.25", got)
	}
	if order.DeliveryProgress() != 0 {
		t.Errorf("progress = %d, want 0", order.DeliveryProgress())
	}
}

func TestOrderServiceCreateRequiresLiveContract(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	customer := seedCustomer(t, dbi, sales, "Acme Ltd")
	svc := NewOrderService(dbi)

	missing := uint(9999)
	input := orderInputFixture(customer.ID)
	input.ContractID = &missing
	if _, err := svc.Create(context.Background(), sales, input); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestOrderServiceLifecycle(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	customer := seedCustomer(t, dbi, sales, "Acme Ltd")
	svc := NewOrderService(dbi)
	ctx := context.Background()

	order := seedOrder(t, svc, sales, customer.ID)
	shipped := shipOrder(t, svc, sales, order.ID)
	if shipped.Status != model.OrderStatusShipped || shipped.ShippedDate == nil {
		t.Fatalf("after ship: status=%q shippedDate=%v", shipped.Status, shipped.ShippedDate)
	}
	if shipped.TrackingNumber != "SF123456" {
		t.Errorf("tracking = %q, want SF123456", shipped.TrackingNumber)
	}
	if shipped.DeliveryProgress() != 70 {
		t.Errorf("progress = %d, want 70", shipped.DeliveryProgress())
	}

	delivered, err := svc.Deliver(ctx, sales, order.ID)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if delivered.Status != model.OrderStatusDelivered || delivered.DeliveryDate == nil {
		t.Fatalf("after deliver: status=%q deliveryDate=%v", delivered.Status, delivered.DeliveryDate)
	}

	completed, err := svc.Complete(ctx, sales, order.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.DeliveryProgress() != 100 {
		t.Errorf("progress = %d, want 100", completed.DeliveryProgress())
	}

	_, err = svc.Cancel(ctx, sales, order.ID)
	var terr *model.TransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("cancel completed err = %v, want TransitionError", err)
	}
}

func TestOrderServiceCancelBeforeShipment(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	customer := seedCustomer(t, dbi, sales, "Acme Ltd")
	svc := NewOrderService(dbi)

	order := seedOrder(t, svc, sales, customer.ID)
	cancelled, err := svc.Cancel(context.Background(), sales, order.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != model.OrderStatusCancelled {
		t.Errorf("status = %q, want cancelled", cancelled.Status)
	}
}

func TestOrderServiceEditOnlyPending(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	customer := seedCustomer(t, dbi, sales, "Acme Ltd")
	svc := NewOrderService(dbi)

	order := seedOrder(t, svc, sales, customer.ID)
	if _, err := svc.Confirm(context.Background(), sales, order.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if _, err := svc.Update(context.Background(), sales, order.ID, orderInputFixture(customer.ID)); !errors.Is(err, ErrConflict) {
		t.Errorf("update err = %v, want ErrConflict", err)
	}
	items := []OrderItemInput{{ProductName: "Lamp", Quantity: "1", UnitPrice: "20"}}
	if _, err := svc.ReplaceItems(context.Background(), sales, order.ID, items); !errors.Is(err, ErrConflict) {
		t.Errorf("replace items err = %v, want ErrConflict", err)
	}
}

func TestOrderServiceDeliverItemQuantity(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	customer := seedCustomer(t, dbi, sales, "Acme Ltd")
	svc := NewOrderService(dbi)
	ctx := context.Background()

	order := seedOrder(t, svc, sales, customer.ID)
	itemID := order.Items[0].ID

	// Pending orders accept no deliveries.
	if _, err := svc.DeliverItemQuantity(ctx, sales, order.ID, itemID, "1"); !errors.Is(err, ErrConflict) {
		t.Fatalf("deliver on pending err = %v, want ErrConflict", err)
	}

	shipOrder(t, svc, sales, order.ID)

	item, err := svc.DeliverItemQuantity(ctx, sales, order.ID, itemID, "1")
	if err != nil {
		t.Fatalf("deliver item: %v", err)
	}
	if got := item.DeliveredQuantity.StringFixed(2); got != "1.00" {
		t.Errorf("delivered = %s, want 1.00", got)
	}
	if got := item.RemainingQuantity().StringFixed(2); got != "1.00" {
		t.Errorf("remaining = %s, want 1.00", got)
	}

	_, err = svc.DeliverItemQuantity(ctx, sales, order.ID, itemID, "5")
	var derr *model.DeliveryError
	if !errors.As(err, &derr) {
		t.Fatalf("over-delivery err = %v, want DeliveryError", err)
	}
	if got := derr.Remaining.StringFixed(2); got != "1.00" {
		t.Errorf("remaining in error = %s, want 1.00", got)
	}

	item, err = svc.DeliverItemQuantity(ctx, sales, order.ID, itemID, "1")
	if err != nil {
		t.Fatalf("deliver item: %v", err)
	}
	if !item.IsFullyDelivered() {
		t.Errorf("item should be fully delivered")
	}

	if _, err := svc.DeliverItemQuantity(ctx, sales, order.ID, 9999, "1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown item err = %v, want ErrNotFound", err)
	}
}

func TestOrderServiceDeleteRules(t *testing.T) {
	dbi := setupDB(t)
	manager := principalFor(seedUser(t, dbi, model.RoleManager))
	customer := seedCustomer(t, dbi, manager, "Acme Ltd")
	svc := NewOrderService(dbi)

	order := seedOrder(t, svc, manager, customer.ID)
	shipOrder(t, svc, manager, order.ID)
	if err := svc.Delete(context.Background(), manager, order.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("delete shipped err = %v, want ErrConflict", err)
	}

	other := seedOrder(t, svc, manager, customer.ID)
	if err := svc.Delete(context.Background(), manager, other.ID); err != nil {
		t.Fatalf("delete pending: %v", err)
	}
	if _, err := svc.Get(context.Background(), other.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get deleted err = %v, want ErrNotFound", err)
	}
}
