package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/sales-crm/internal/http/middleware"
	"github.com/nurpe/sales-crm/internal/model"
	"github.com/nurpe/sales-crm/internal/repository"
	"github.com/nurpe/sales-crm/internal/service"
)

type Handler struct {
	auth      *service.AuthService
	customers *service.CustomerService
	quotes    *service.QuoteService
	contracts *service.ContractService
	orders    *service.OrderService
	stats     *service.StatsService
	exports   *service.ExportService
	log       zerolog.Logger
}

func NewHandler(
	auth *service.AuthService,
	customers *service.CustomerService,
	quotes *service.QuoteService,
	contracts *service.ContractService,
	orders *service.OrderService,
	stats *service.StatsService,
	exports *service.ExportService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		auth:      auth,
		customers: customers,
		quotes:    quotes,
		contracts: contracts,
		orders:    orders,
		stats:     stats,
		exports:   exports,
		log:       log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := router.Group("/api/v1")

	api.POST("/auth/register", h.register)
	api.POST("/auth/login", h.login)
	api.POST("/auth/refresh", h.refresh)

	protected := api.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/auth/profile", h.getProfile)
	protected.PUT("/auth/profile", h.updateProfile)
	protected.POST("/auth/change-password", h.changePassword)

	protected.GET("/customers", h.listCustomers)
	protected.POST("/customers", h.createCustomer)
	protected.GET("/customers/:id", h.getCustomer)
	protected.PUT("/customers/:id", h.updateCustomer)
	protected.DELETE("/customers/:id", h.deleteCustomer)

	protected.GET("/quotes", h.listQuotes)
	protected.POST("/quotes", h.createQuote)
	protected.GET("/quotes/export", h.exportQuotes)
	protected.GET("/quotes/:id", h.getQuote)
	protected.PUT("/quotes/:id", h.updateQuote)
	protected.DELETE("/quotes/:id", h.deleteQuote)
	protected.PUT("/quotes/:id/items", h.replaceQuoteItems)
	protected.POST("/quotes/:id/send", h.sendQuote)
	protected.POST("/quotes/:id/accept", h.acceptQuote)
	protected.POST("/quotes/:id/reject", h.rejectQuote)
	protected.GET("/quotes/:id/pdf", h.quotePDF)

	protected.GET("/contracts", h.listContracts)
	protected.POST("/contracts", h.createContract)
	protected.GET("/contracts/:id", h.getContract)
	protected.PUT("/contracts/:id", h.updateContract)
	protected.DELETE("/contracts/:id", h.deleteContract)
	protected.POST("/contracts/:id/submit", h.submitContract)
	protected.POST("/contracts/:id/sign", h.signContract)
	protected.POST("/contracts/:id/execute", h.executeContract)
	protected.POST("/contracts/:id/complete", h.completeContract)
	protected.POST("/contracts/:id/terminate", h.terminateContract)
	protected.POST("/contracts/:id/payments", h.addContractPayment)
	protected.GET("/contracts/:id/pdf", h.contractPDF)

	protected.GET("/orders", h.listOrders)
	protected.POST("/orders", h.createOrder)
	protected.GET("/orders/export", h.exportOrders)
	protected.GET("/orders/:id", h.getOrder)
	protected.PUT("/orders/:id", h.updateOrder)
	protected.DELETE("/orders/:id", h.deleteOrder)
	protected.PUT("/orders/:id/items", h.replaceOrderItems)
	protected.POST("/orders/:id/confirm", h.confirmOrder)
	protected.POST("/orders/:id/process", h.processOrder)
	protected.POST("/orders/:id/ship", h.shipOrder)
	protected.POST("/orders/:id/deliver", h.deliverOrder)
	protected.POST("/orders/:id/complete", h.completeOrder)
	protected.POST("/orders/:id/cancel", h.cancelOrder)
	protected.POST("/orders/:id/items/:itemID/deliver", h.deliverOrderItem)

	protected.GET("/stats/dashboard", h.dashboard)
	protected.GET("/stats/recent-activities", h.recentActivities)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var transitionErr *model.TransitionError
	var deliveryErr *model.DeliveryError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
			"from":  transitionErr.From,
			"to":    transitionErr.To,
		})
	case errors.As(err, &deliveryErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     err.Error(),
			"requested": deliveryErr.Requested,
			"remaining": deliveryErr.Remaining,
		})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handler) principal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
	}
	return principal, ok
}

func idParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func pageFromQuery(c *gin.Context) repository.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	perPage, _ := strconv.Atoi(c.Query("per_page"))
	return repository.Page{Number: page, PerPage: perPage}
}

func uintQuery(c *gin.Context, name string) uint {
	value, _ := strconv.ParseUint(c.Query(name), 10, 32)
	return uint(value)
}

func listResponse(c *gin.Context, items interface{}, total int64, page repository.Page) {
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
		"page":  page.Number,
	})
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, nil
		}
	}
	return nil, service.ErrInvalidInput
}

func attachment(c *gin.Context, contentType string, result *service.ExportResult) {
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)
