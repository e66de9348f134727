package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/optica-api/internal/application/service"
	"github.com/sangkips/optica-api/internal/domain/revenue"
	"github.com/sangkips/optica-api/internal/presentation/http/dto/response"
	"github.com/sangkips/optica-api/pkg/apperror"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func timeRange(c *gin.Context) (revenue.TimeRange, bool) {
	r, err := revenue.ParseTimeRange(c.Query("range"))
	if err != nil {
		response.ValidationError(c, []apperror.FieldError{{Field: "range", Message: err.Error()}})
		return "", false
	}
	return r, true
}

// GetStats handles getting dashboard statistics
func (h *DashboardHandler) GetStats(c *gin.Context) {
	r, ok := timeRange(c)
	if !ok {
		return
	}

	stats, err := h.dashboardService.GetStats(c.Request.Context(), r)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Dashboard stats retrieved successfully", stats)
}

// GetRevenue returns the revenue chart buckets for the range
func (h *DashboardHandler) GetRevenue(c *gin.Context) {
	r, ok := timeRange(c)
	if !ok {
		return
	}

	buckets, err := h.dashboardService.GetRevenueChart(c.Request.Context(), r)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Revenue chart retrieved successfully", buckets)
}
