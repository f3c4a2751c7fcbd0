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

func (h *Handler) listQuotes(c *gin.Context) {
	page := pageFromQuery(c)
	quotes, total, err := h.quotes.List(c.Request.Context(), service.ListQuotesInput{
		Filter: repository.QuoteFilter{
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
	listResponse(c, quoteViews(quotes, time.Now().UTC()), total, page)
}

func (h *Handler) getQuote(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	quote, err := h.quotes.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newQuoteView(quote, time.Now().UTC()))
}

type quoteItemRequest struct {
	ProductName   string `json:"product_name" binding:"required"`
	ProductCode   string `json:"product_code"`
	Description   string `json:"description"`
	Specification string `json:"specification"`
	Unit          string `json:"unit"`
	Quantity      string `json:"quantity" binding:"required"`
	UnitPrice     string `json:"unit_price" binding:"required"`
	SortOrder     int    `json:"sort_order"`
	Notes         string `json:"notes"`
}

func (r quoteItemRequest) toInput() service.QuoteItemInput {
	return service.QuoteItemInput{
		ProductName:   r.ProductName,
		ProductCode:   r.ProductCode,
		Description:   r.Description,
		Specification: r.Specification,
		Unit:          r.Unit,
		Quantity:      r.Quantity,
		UnitPrice:     r.UnitPrice,
		SortOrder:     r.SortOrder,
		Notes:         r.Notes,
	}
}

type quoteRequest struct {
	Title           string             `json:"title" binding:"required"`
	CustomerID      uint               `json:"customer_id" binding:"required"`
	ValidUntil      string             `json:"valid_until"`
	Currency        string             `json:"currency"`
	DiscountRate    string             `json:"discount_rate"`
	TaxRate         string             `json:"tax_rate"`
	Description     string             `json:"description"`
	TermsConditions string             `json:"terms_conditions"`
	Notes           string             `json:"notes"`
	Items           []quoteItemRequest `json:"items"`
}

func (r quoteRequest) toInput() (service.QuoteInput, error) {
	validUntil, err := parseDate(r.ValidUntil)
	if err != nil {
		return service.QuoteInput{}, err
	}

	items := make([]service.QuoteItemInput, len(r.Items))
	for i, item := range r.Items {
		items[i] = item.toInput()
	}
	return service.QuoteInput{
		Title:           r.Title,
		CustomerID:      r.CustomerID,
		ValidUntil:      validUntil,
		Currency:        r.Currency,
		DiscountRate:    r.DiscountRate,
		TaxRate:         r.TaxRate,
		Description:     r.Description,
		TermsConditions: r.TermsConditions,
		Notes:           r.Notes,
		Items:           items,
	}, nil
}

func (h *Handler) createQuote(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid valid_until"})
		return
	}

	quote, err := h.quotes.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newQuoteView(quote, time.Now().UTC()))
}

func (h *Handler) updateQuote(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid valid_until"})
		return
	}

	quote, err := h.quotes.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newQuoteView(quote, time.Now().UTC()))
}

type replaceQuoteItemsRequest struct {
	Items []quoteItemRequest `json:"items" binding:"required"`
}

func (h *Handler) replaceQuoteItems(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req replaceQuoteItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]service.QuoteItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = item.toInput()
	}

	quote, err := h.quotes.ReplaceItems(c.Request.Context(), principal, id, items)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newQuoteView(quote, time.Now().UTC()))
}

func (h *Handler) sendQuote(c *gin.Context) {
	h.quoteTransition(c, h.quotes.Send)
}

func (h *Handler) acceptQuote(c *gin.Context) {
	h.quoteTransition(c, h.quotes.Accept)
}

func (h *Handler) rejectQuote(c *gin.Context) {
	h.quoteTransition(c, h.quotes.Reject)
}

func (h *Handler) quoteTransition(c *gin.Context, apply func(context.Context, model.Principal, uint) (*model.Quote, error)) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	quote, err := apply(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newQuoteView(quote, time.Now().UTC()))
}

func (h *Handler) deleteQuote(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.quotes.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "quote deleted"})
}
