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

func (h *Handler) listOrders(c *gin.Context) {
	page := pageFromQuery(c)
	orders, total, err := h.orders.List(c.Request.Context(), service.ListOrdersInput{
		Filter: orderFilterFromQuery(c),
		Page:   page,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	listResponse(c, orderViews(orders, time.Now().UTC()), total, page)
}

func orderFilterFromQuery(c *gin.Context) repository.OrderFilter {
	return repository.OrderFilter{
		Search:      c.Query("search"),
		Status:      c.Query("status"),
		CustomerID:  uintQuery(c, "customer_id"),
		ContractID:  uintQuery(c, "contract_id"),
		SalesUserID: uintQuery(c, "sales_user_id"),
	}
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderView(order, time.Now().UTC()))
}

type orderItemRequest struct {
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

func (r orderItemRequest) toInput() service.OrderItemInput {
	return service.OrderItemInput{
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

type orderRequest struct {
	CustomerID      uint               `json:"customer_id" binding:"required"`
	ContractID      *uint              `json:"contract_id"`
	RequiredDate    string             `json:"required_date"`
	Currency        string             `json:"currency"`
	DiscountRate    string             `json:"discount_rate"`
	TaxRate         string             `json:"tax_rate"`
	ShippingCost    string             `json:"shipping_cost"`
	ShippingMethod  string             `json:"shipping_method"`
	ShippingAddress string             `json:"shipping_address"`
	ShippingContact string             `json:"shipping_contact"`
	ShippingPhone   string             `json:"shipping_phone"`
	Description     string             `json:"description"`
	Notes           string             `json:"notes"`
	InternalNotes   string             `json:"internal_notes"`
	Items           []orderItemRequest `json:"items"`
}

func (r orderRequest) toInput() (service.OrderInput, error) {
	requiredDate, err := parseDate(r.RequiredDate)
	if err != nil {
		return service.OrderInput{}, err
	}

	items := make([]service.OrderItemInput, len(r.Items))
	for i, item := range r.Items {
		items[i] = item.toInput()
	}
	return service.OrderInput{
		CustomerID:      r.CustomerID,
		ContractID:      r.ContractID,
		RequiredDate:    requiredDate,
		Currency:        r.Currency,
		DiscountRate:    r.DiscountRate,
		TaxRate:         r.TaxRate,
		ShippingCost:    r.ShippingCost,
		ShippingMethod:  r.ShippingMethod,
		ShippingAddress: r.ShippingAddress,
		ShippingContact: r.ShippingContact,
		ShippingPhone:   r.ShippingPhone,
		Description:     r.Description,
		Notes:           r.Notes,
		InternalNotes:   r.InternalNotes,
		Items:           items,
	}, nil
}

func (h *Handler) createOrder(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid required_date"})
		return
	}

	order, err := h.orders.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newOrderView(order, time.Now().UTC()))
}

func (h *Handler) updateOrder(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid required_date"})
		return
	}

	order, err := h.orders.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderView(order, time.Now().UTC()))
}

type replaceOrderItemsRequest struct {
	Items []orderItemRequest `json:"items" binding:"required"`
}

func (h *Handler) replaceOrderItems(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req replaceOrderItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]service.OrderItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = item.toInput()
	}

	order, err := h.orders.ReplaceItems(c.Request.Context(), principal, id, items)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderView(order, time.Now().UTC()))
}

func (h *Handler) confirmOrder(c *gin.Context) {
	h.orderTransition(c, h.orders.Confirm)
}

func (h *Handler) processOrder(c *gin.Context) {
	h.orderTransition(c, h.orders.StartProcessing)
}

type shipOrderRequest struct {
	TrackingNumber string `json:"tracking_number"`
	ShippingMethod string `json:"shipping_method"`
}

func (h *Handler) shipOrder(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req shipOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.Ship(c.Request.Context(), principal, id, req.TrackingNumber, req.ShippingMethod)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderView(order, time.Now().UTC()))
}

func (h *Handler) deliverOrder(c *gin.Context) {
	h.orderTransition(c, h.orders.Deliver)
}

func (h *Handler) completeOrder(c *gin.Context) {
	h.orderTransition(c, h.orders.Complete)
}

func (h *Handler) cancelOrder(c *gin.Context) {
	h.orderTransition(c, h.orders.Cancel)
}

func (h *Handler) orderTransition(c *gin.Context, apply func(context.Context, model.Principal, uint) (*model.Order, error)) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := apply(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderView(order, time.Now().UTC()))
}

type deliverItemRequest struct {
	Quantity string `json:"quantity" binding:"required"`
}

func (h *Handler) deliverOrderItem(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := idParam(c, "itemID")
	if !ok {
		return
	}

	var req deliverItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.orders.DeliverItemQuantity(c.Request.Context(), principal, orderID, itemID, req.Quantity)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderItemView(item))
}

func (h *Handler) deleteOrder(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.orders.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
}
