package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nurpe/sales-crm/internal/model"
)

func seedContract(t *testing.T, svc *ContractService, principal model.Principal, customerID uint) *model.Contract {
	t.Helper()
	contract, err := svc.Create(context.Background(), principal, ContractInput{
		Title:          "Supply agreement",
		CustomerID:     customerID,
		ContractAmount: "1000.00",
	})
	if err != nil {
		t.Fatalf("seed contract: %v", err)
	}
	return contract
}

func signedContract(t *testing.T, svc *ContractService, principal model.Principal, customerID uint) *model.Contract {
	t.Helper()
	contract := seedContract(t, svc, principal, customerID)
	if _, err := svc.Submit(context.Background(), principal, contract.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	signed, err := svc.Sign(context.Background(), principal, contract.ID, "Wang Wei", "Li Na")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestContractServiceCreate(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	customer := seedCustomer(t, dbi, sales, "Acme Ltd")
	svc := NewContractService(dbi)

	contract := seedContract(t, svc, sales, customer.ID)
	if !strings.HasPrefix(contract.ContractNumber, "CT") {
		t.Errorf("number = %q, want CT prefix", contract.ContractNumber)
	}
	if contract.Status != model.ContractStatusDraft {
		t.Errorf("status = %q, want draft", contract.Status)
	}
	if got := contract.RemainingAmount.StringFixed(2); got != "1000.00" {
		t.Errorf("remaining = %s, want 1000.00", got)
	}
	if !contract.PaidAmount.IsZero() {
		t.Errorf("paid = %s, want 0", contract.PaidAmount)
	}
}

func TestContractServiceCreateValidation(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	svc := NewContractService(dbi)

	_, err := svc.Create(context.Background(), sales, ContractInput{ContractAmount: "-5"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	fields := make(map[string]bool, len(verr.Fields))
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{"title", "customer_id", "contract_amount"} {
		if !fields[want] {
			t.Errorf("missing field error %q in %v", want, verr.Fields)
		}
	}
}

func TestContractServiceCreateWithQuote(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	customer := seedCustomer(t, dbi, sales, "Acme Ltd")
	svc := NewContractService(dbi)

	quote, err := NewQuoteService(dbi).Create(context.Background(), sales, quoteInputFixture(customer.ID))
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}

	contract, err := svc.Create(context.Background(), sales, ContractInput{
		Title:          "From quote",
		CustomerID:     customer.ID,
		QuoteID:        &quote.ID,
		ContractAmount: "236.25",
	})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}
	if contract.QuoteID == nil || *contract.QuoteID != quote.ID {
		t.Errorf("quote id = %v, want %d", contract.QuoteID, quote.ID)
	}

	missing := uint(9999)
	_, err = svc.Create(context.Background(), sales, ContractInput{
		Title:          "Broken link",
		CustomerID:     customer.ID,
		QuoteID:        &missing,
		ContractAmount: "10",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestContractServiceLifecycle(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	customer := seedCustomer(t, dbi, sales, "Acme Ltd")
	svc := NewContractService(dbi)

	contract := signedContract(t, svc, sales, customer.ID)
	if contract.Status != model.ContractStatusSigned || contract.SignedDate == nil {
		t.Fatalf("after sign: status=%q signedDate=%v", contract.Status, contract.SignedDate)
	}
	if contract.CustomerSigner != "Wang Wei" || contract.CompanySigner != "Li Na" {
		t.Errorf("signers = %q/%q", contract.CustomerSigner, contract.CompanySigner)
	}

	executing, err := svc.StartExecution(context.Background(), sales, contract.ID)
	if err != nil {
		t.Fatalf("start execution: %v", err)
	}
	if executing.Status != model.ContractStatusExecuting {
		t.Fatalf("status = %q, want executing", executing.Status)
	}

	completed, err := svc.Complete(context.Background(), sales, contract.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != model.ContractStatusCompleted || completed.EndDate == nil {
		t.Fatalf("after complete: status=%q endDate=%v", completed.Status, completed.EndDate)
	}

	_, err = svc.Terminate(context.Background(), sales, contract.ID)
	var terr *model.TransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("terminate completed err = %v, want TransitionError", err)
	}
}

func TestContractServiceSignRequiresSigners(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	customer := seedCustomer(t, dbi, sales, "Acme Ltd")
	svc := NewContractService(dbi)

	contract := seedContract(t, svc, sales, customer.ID)
	if _, err := svc.Submit(context.Background(), sales, contract.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Sign(context.Background(), sales, contract.ID, "", "Li Na"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("sign err = %v, want ErrInvalidInput", err)
	}
}

func TestContractServiceAddPayment(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	customer := seedCustomer(t, dbi, sales, "Acme Ltd")
	svc := NewContractService(dbi)

	contract := signedContract(t, svc, sales, customer.ID)

	paid, err := svc.AddPayment(context.Background(), sales, contract.ID, "300")
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}
	if got := paid.PaidAmount.StringFixed(2); got != "300.00" {
		t.Errorf("paid = %s, want 300.00", got)
	}
	if got := paid.RemainingAmount.StringFixed(2); got != "700.00" {
		t.Errorf("remaining = %s, want 700.00", got)
	}
	if got := paid.PaymentProgress().StringFixed(2); got != "30.00" {
		t.Errorf("progress = %s, want 30.00", got)
	}

	// Overpayment is absorbed, never rejected.
	paid, err = svc.AddPayment(context.Background(), sales, contract.ID, "800")
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}
	if got := paid.PaidAmount.StringFixed(2); got != "1000.00" {
		t.Errorf("paid = %s, want 1000.00", got)
	}
	if got := paid.RemainingAmount.StringFixed(2); got != "0.00" {
		t.Errorf("remaining = %s, want 0.00", got)
	}

	if _, err := svc.AddPayment(context.Background(), sales, contract.ID, "0"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero payment err = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.AddPayment(context.Background(), sales, contract.ID, "abc"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad decimal err = %v, want ErrInvalidInput", err)
	}
}

func TestContractServiceEditOnlyDraft(t *testing.T) {
	dbi := setupDB(t)
	sales := principalFor(seedUser(t, dbi, model.RoleSales))
	customer := seedCustomer(t, dbi, sales, "Acme Ltd")
	svc := NewContractService(dbi)

	contract := seedContract(t, svc, sales, customer.ID)
	if _, err := svc.Submit(context.Background(), sales, contract.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	_, err := svc.Update(context.Background(), sales, contract.ID, ContractInput{
		Title:          "Renamed",
		ContractAmount: "500",
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("update err = %v, want ErrConflict", err)
	}
}

func TestContractServiceDeleteBlockedByOrders(t *testing.T) {
	dbi := setupDB(t)
	manager := principalFor(seedUser(t, dbi, model.RoleManager))
	customer := seedCustomer(t, dbi, manager, "Acme Ltd")
	svc := NewContractService(dbi)

	contract := signedContract(t, svc, manager, customer.ID)
	_, err := NewOrderService(dbi).Create(context.Background(), manager, OrderInput{
		CustomerID: customer.ID,
		ContractID: &contract.ID,
		Items:      []OrderItemInput{{ProductName: "Desk", Quantity: "1", UnitPrice: "100"}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if err := svc.Delete(context.Background(), manager, contract.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("delete err = %v, want ErrConflict", err)
	}

	plain := seedContract(t, svc, manager, customer.ID)
	if err := svc.Delete(context.Background(), manager, plain.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), plain.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get deleted err = %v, want ErrNotFound", err)
	}
}
