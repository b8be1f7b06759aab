package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/animestore-backend/internal/app/service"
)

type DashboardController struct {
	dashboardService service.DashboardService
}

func NewDashboardController(dashboardService service.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// GetStats GET /api/admin/dashboard
func (ctrl *DashboardController) GetStats(c *gin.Context) {
	stats, err := ctrl.dashboardService.GetStats()
	if err != nil {
		respondError(c, err, "dashboard")
		return
	}
	c.JSON(http.StatusOK, stats)
}
