package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	stats := router.Group("/api/statistics")
	{
		stats.GET("/expiration", middleware.RequireFeature("dashboard.expiration"), h.GetExpirationSummary)
		stats.GET("/certificates", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleAnalyst), h.GetStatusSummary)
	}
}

// GetExpirationSummary classifies every active lot by expiration risk
// @Summary      Get expiration summary
// @Description  Classifies every lot by expiration risk and lists the at-risk ones
// @Tags         statistics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.ExpirationSummaryResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/statistics/expiration [get]
func (h *StatisticsHandler) GetExpirationSummary(c *gin.Context) {
	summary, err := h.statisticsService.ExpirationSummary(c.Request.Context(), companyID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// GetStatusSummary counts entry certificates per status
// @Summary      Get certificate status summary
// @Description  Returns entry certificate counts grouped by stored status
// @Tags         statistics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.CertificateStatusSummary}
// @Failure      500  {object}  response.Response
// @Router       /api/statistics/certificates [get]
func (h *StatisticsHandler) GetStatusSummary(c *gin.Context) {
	summary, err := h.statisticsService.StatusSummary(c.Request.Context(), companyID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
