package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *Handler) dashboard(c *gin.Context) {
	dashboard, err := h.stats.Dashboard(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *Handler) recentActivities(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	activities, err := h.stats.RecentActivities(c.Request.Context(), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": activities})
}
