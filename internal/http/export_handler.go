package http

import (
	"github.com/gin-gonic/gin"

	"github.com/nurpe/sales-crm/internal/repository"
)

func (h *Handler) exportQuotes(c *gin.Context) {
	result, err := h.exports.QuotesExcel(c.Request.Context(), repository.QuoteFilter{
		Status:      c.Query("status"),
		CustomerID:  uintQuery(c, "customer_id"),
		SalesUserID: uintQuery(c, "sales_user_id"),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	attachment(c, contentTypeXLSX, result)
}

func (h *Handler) exportOrders(c *gin.Context) {
	result, err := h.exports.OrdersExcel(c.Request.Context(), orderFilterFromQuery(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	attachment(c, contentTypeXLSX, result)
}

func (h *Handler) quotePDF(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	result, err := h.exports.QuotePDF(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	attachment(c, contentTypePDF, result)
}

func (h *Handler) contractPDF(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	result, err := h.exports.ContractPDF(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	attachment(c, contentTypePDF, result)
}
