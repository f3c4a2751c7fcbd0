package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nurpe/sales-crm/internal/model"
)

func quoteInputFixture(customerID uint) QuoteInput {
	return QuoteInput{
		Title:        "Office equipment",
		CustomerID:   customerID,
		DiscountRate: "10",
		TaxRate:      "5",
		Items: []QuoteItemInput{
			{ProductName: "Desk", Quantity: "2", UnitPrice: "100.00"},
			{ProductName: "Chair", Quantity: "1", UnitPrice: "50.00"},
		},
	}
}

func TestQuoteServiceCreate(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	customer := seedCustomer(t, dbi, sales, "Acme Ltd")
	svc := NewQuoteService(dbi)

	quote, err := svc.Create(context.Background(), sales, quoteInputFixture(customer.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(quote.QuoteNumber, "QT") {
		t.Errorf("number = %q, want QT prefix", quote.QuoteNumber)
	}
	if quote.Status != model.QuoteStatusDraft {
		t.Errorf("status = %q, want draft", quote.Status)
	}
	if got := quote.Subtotal.StringFixed(2); got != "250.00" {
		t.Errorf("subtotal = %s, want 250.00", got)
	}
	if got := quote.DiscountAmount.StringFixed(2); got != "25.00" {
		t.Errorf("discount = %s, want 25.00", got)
	}
	if got := quote.TaxAmount.StringFixed(2); got != "11.25" {
		t.Errorf("tax = %s, want 11.25", got)
	}
	if got := quote.TotalAmount.StringFixed(2); got != "236.25" {
		t.Errorf("total = %s, want 236.25", got)
	}
	if quote.SalesUserID != sales.UserID {
		t.Errorf("sales user = %d, want %d", quote.SalesUserID, sales.UserID)
	}
	if len(quote.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(quote.Items))
	}
}

func TestQuoteServiceCreateValidation(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	svc := NewQuoteService(dbi)

	_, err := svc.Create(context.Background(), sales, QuoteInput{
		Items: []QuoteItemInput{{ProductName: "", Quantity: "0", UnitPrice: "-1"}},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("validation error should wrap ErrInvalidInput")
	}
	fields := make(map[string]bool, len(verr.Fields))
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{"title", "customer_id", "items[0].product_name", "items[0].quantity"} {
		if !fields[want] {
			t.Errorf("missing field error %q in %v", want, verr.Fields)
		}
	}
}

func TestQuoteServiceCreateUnknownCustomer(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	svc := NewQuoteService(dbi)

	_, err := svc.Create(context.Background(), sales, quoteInputFixture(9999))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestQuoteServicePermissions(t *testing.T) {
	dbi := setupDB(t)
	viewer := principalFor(seedUser(t, dbi, model.RoleUser))
	svc := NewQuoteService(dbi)

	if _, err := svc.Create(context.Background(), viewer, quoteInputFixture(1)); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("create err = %v, want ErrPermissionDenied", err)
	}
	if _, err := svc.Send(context.Background(), viewer, 1); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("send err = %v, want ErrPermissionDenied", err)
	}
	if err := svc.Delete(context.Background(), viewer, 1); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("delete err = %v, want ErrPermissionDenied", err)
	}
}

func TestQuoteServiceEditOnlyDraft(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	customer := seedCustomer(t, dbi, sales, "Acme Ltd")
	svc := NewQuoteService(dbi)

	quote, err := svc.Create(context.Background(), sales, quoteInputFixture(customer.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Send(context.Background(), sales, quote.ID); err != nil {
		t.Fatalf("send: %v", err)
	}

	input := quoteInputFixture(customer.ID)
	input.Title = "Renamed"
	if _, err := svc.Update(context.Background(), sales, quote.ID, input); !errors.Is(err, ErrConflict) {
		t.Errorf("update err = %v, want ErrConflict", err)
	}
	items := []QuoteItemInput{{ProductName: "Lamp", Quantity: "1", UnitPrice: "20"}}
	if _, err := svc.ReplaceItems(context.Background(), sales, quote.ID, items); !errors.Is(err, ErrConflict) {
		t.Errorf("replace items err = %v, want ErrConflict", err)
	}
}

func TestQuoteServiceReplaceItemsRecalculates(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	customer := seedCustomer(t, dbi, sales, "Acme Ltd")
	svc := NewQuoteService(dbi)

	quote, err := svc.Create(context.Background(), sales, quoteInputFixture(customer.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	items := []QuoteItemInput{{ProductName: "Lamp", Quantity: "4", UnitPrice: "25.00"}}
	updated, err := svc.ReplaceItems(context.Background(), sales, quote.ID, items)
	if err != nil {
		t.Fatalf("replace items: %v", err)
	}
	if got := updated.Subtotal.StringFixed(2); got != "100.00" {
		t.Errorf("subtotal = %s, want 100.00", got)
	}
	if got := updated.TotalAmount.StringFixed(2); got != "94.50" {
		t.Errorf("total = %s, want 94.50", got)
	}
}

func TestQuoteServiceLifecycle(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	customer := seedCustomer(t, dbi, sales, "Acme Ltd")
	svc := NewQuoteService(dbi)

	quote, err := svc.Create(context.Background(), sales, quoteInputFixture(customer.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	sent, err := svc.Send(context.Background(), sales, quote.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.Status != model.QuoteStatusSent || sent.SentDate == nil {
		t.Fatalf("after send: status=%q sentDate=%v", sent.Status, sent.SentDate)
	}

	accepted, err := svc.Accept(context.Background(), sales, quote.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != model.QuoteStatusAccepted || accepted.ResponseDate == nil {
		t.Fatalf("after accept: status=%q responseDate=%v", accepted.Status, accepted.ResponseDate)
	}

	// Accepting twice is a state conflict, not a silent no-op.
	_, err = svc.Accept(context.Background(), sales, quote.ID)
	var terr *model.TransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("second accept err = %v, want TransitionError", err)
	}
}

func TestQuoteServiceDeleteRules(t *testing.T) {
	dbi := setupDB(t)
	manager := principalFor(seedUser(t, dbi, model.RoleManager))
	customer := seedCustomer(t, dbi, manager, "Acme Ltd")
	svc := NewQuoteService(dbi)

	quote, err := svc.Create(context.Background(), manager, quoteInputFixture(customer.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Send(context.Background(), manager, quote.ID); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Accept(context.Background(), manager, quote.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if err := svc.Delete(context.Background(), manager, quote.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("delete accepted err = %v, want ErrConflict", err)
	}

	other, err := svc.Create(context.Background(), manager, quoteInputFixture(customer.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(context.Background(), manager, other.ID); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	if _, err := svc.Get(context.Background(), other.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get deleted err = %v, want ErrNotFound", err)
	}
}
