package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/sales-crm/internal/model"
	"github.com/nurpe/sales-crm/internal/repository"
	"github.com/nurpe/sales-crm/internal/service"
)

func (h *Handler) listCustomers(c *gin.Context) {
	page := pageFromQuery(c)
	customers, total, err := h.customers.List(c.Request.Context(), service.ListCustomersInput{
		Filter: repository.CustomerFilter{
			Search:      c.Query("search"),
			Status:      c.Query("status"),
			Level:       c.Query("level"),
			SalesUserID: uintQuery(c, "sales_user_id"),
		},
		Page: page,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	listResponse(c, customerViews(customers), total, page)
}

func (h *Handler) getCustomer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	customer, err := h.customers.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCustomerView(customer))
}

type customerRequest struct {
	Name          string   `json:"name" binding:"required"`
	Company       string   `json:"company"`
	Industry      string   `json:"industry"`
	CustomerType  string   `json:"customer_type"`
	ContactPerson string   `json:"contact_person"`
	Phone         string   `json:"phone"`
	Mobile        string   `json:"mobile"`
	Email         string   `json:"email"`
	Website       string   `json:"website"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	Province      string   `json:"province"`
	Country       string   `json:"country"`
	PostalCode    string   `json:"postal_code"`
	Source        string   `json:"source"`
	Level         string   `json:"level"`
	Status        string   `json:"status"`
	CreditLimit   string   `json:"credit_limit"`
	Description   string   `json:"description"`
	Notes         string   `json:"notes"`
	Tags          []string `json:"tags"`
}

func (r customerRequest) toInput() service.CustomerInput {
	return service.CustomerInput{
		Name:          r.Name,
		Company:       r.Company,
		Industry:      r.Industry,
		CustomerType:  model.CustomerType(r.CustomerType),
		ContactPerson: r.ContactPerson,
		Phone:         r.Phone,
		Mobile:        r.Mobile,
		Email:         r.Email,
		Website:       r.Website,
		Address:       r.Address,
		City:          r.City,
		Province:      r.Province,
		Country:       r.Country,
		PostalCode:    r.PostalCode,
		Source:        r.Source,
		Level:         model.CustomerLevel(r.Level),
		Status:        model.CustomerStatus(r.Status),
		CreditLimit:   r.CreditLimit,
		Description:   r.Description,
		Notes:         r.Notes,
		Tags:          r.Tags,
	}
}

func (h *Handler) createCustomer(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.customers.Create(c.Request.Context(), principal, req.toInput())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCustomerView(customer))
}

func (h *Handler) updateCustomer(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.customers.Update(c.Request.Context(), principal, id, req.toInput())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCustomerView(customer))
}

func (h *Handler) deleteCustomer(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.customers.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "customer deleted"})
}
