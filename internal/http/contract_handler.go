package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/sales-crm/internal/model"
	"github.com/nurpe/sales-crm/internal/repository"
	"github.com/nurpe/sales-crm/internal/service"
)

func (h *Handler) listContracts(c *gin.Context) {
	page := pageFromQuery(c)
	contracts, total, err := h.contracts.List(c.Request.Context(), service.ListContractsInput{
		Filter: repository.ContractFilter{
			Search:      c.Query("search"),
			Status:      c.Query("status"),
			CustomerID:  uintQuery(c, "customer_id"),
			SalesUserID: uintQuery(c, "sales_user_id"),
		},
		Page: page,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	listResponse(c, contractViews(contracts, time.Now().UTC()), total, page)
}

func (h *Handler) getContract(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	contract, err := h.contracts.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newContractView(contract, time.Now().UTC()))
}

type contractRequest struct {
	Title           string `json:"title" binding:"required"`
	CustomerID      uint   `json:"customer_id" binding:"required"`
	QuoteID         *uint  `json:"quote_id"`
	ContractAmount  string `json:"contract_amount" binding:"required"`
	Currency        string `json:"currency"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Content         string `json:"content"`
	TermsConditions string `json:"terms_conditions"`
	PaymentTerms    string `json:"payment_terms"`
	DeliveryTerms   string `json:"delivery_terms"`
	Notes           string `json:"notes"`
}

func (r contractRequest) toInput() (service.ContractInput, error) {
	startDate, err := parseDate(r.StartDate)
	if err != nil {
		return service.ContractInput{}, err
	}
	endDate, err := parseDate(r.EndDate)
	if err != nil {
		return service.ContractInput{}, err
	}
	return service.ContractInput{
		Title:           r.Title,
		CustomerID:      r.CustomerID,
		QuoteID:         r.QuoteID,
		ContractAmount:  r.ContractAmount,
		Currency:        r.Currency,
		StartDate:       startDate,
		EndDate:         endDate,
		Content:         r.Content,
		TermsConditions: r.TermsConditions,
		PaymentTerms:    r.PaymentTerms,
		DeliveryTerms:   r.DeliveryTerms,
		Notes:           r.Notes,
	}, nil
}

func (h *Handler) createContract(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req contractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	contract, err := h.contracts.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newContractView(contract, time.Now().UTC()))
}

func (h *Handler) updateContract(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req contractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	contract, err := h.contracts.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newContractView(contract, time.Now().UTC()))
}

func (h *Handler) submitContract(c *gin.Context) {
	h.contractTransition(c, h.contracts.Submit)
}

type signContractRequest struct {
	CustomerSigner string `json:"customer_signer" binding:"required"`
	CompanySigner  string `json:"company_signer" binding:"required"`
}

func (h *Handler) signContract(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req signContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.contracts.Sign(c.Request.Context(), principal, id, req.CustomerSigner, req.CompanySigner)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newContractView(contract, time.Now().UTC()))
}

func (h *Handler) executeContract(c *gin.Context) {
	h.contractTransition(c, h.contracts.StartExecution)
}

func (h *Handler) completeContract(c *gin.Context) {
	h.contractTransition(c, h.contracts.Complete)
}

func (h *Handler) terminateContract(c *gin.Context) {
	h.contractTransition(c, h.contracts.Terminate)
}

func (h *Handler) contractTransition(c *gin.Context, apply func(context.Context, model.Principal, uint) (*model.Contract, error)) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	contract, err := apply(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newContractView(contract, time.Now().UTC()))
}

type addPaymentRequest struct {
	Amount string `json:"amount" binding:"required"`
}

func (h *Handler) addContractPayment(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req addPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.contracts.AddPayment(c.Request.Context(), principal, id, req.Amount)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newContractView(contract, time.Now().UTC()))
}

func (h *Handler) deleteContract(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.contracts.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "contract deleted"})
}
