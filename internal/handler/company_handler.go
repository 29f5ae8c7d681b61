package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	companyService service.CompanyService
	planService    service.PlanService
}

func NewCompanyHandler(companyService service.CompanyService, planService service.PlanService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService, planService: planService}
}

func (h *CompanyHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public tenant onboarding
	router.POST("/register", h.RegisterCompany)

	company := router.Group("/api/company")
	{
		company.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleAnalyst), h.GetMyCompany)
		company.PUT("/plan", middleware.RequireRole(model.RoleAdmin), h.ChangePlan)
	}

	plans := router.Group("/api/plans")
	{
		plans.GET("", middleware.RequireRole(model.RoleAdmin), h.ListPlans)
		plans.GET("/features", middleware.RequireRole(model.RoleAdmin), h.ListFeatures)
	}
}

// RegisterCompany onboards a new company with its first admin user
// @Summary      Register company
// @Description  Creates a company on a subscription plan together with its first admin user
// @Tags         company
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterCompanyRequest  true  "Register Company Payload"
// @Success      201      {object}  response.Response{data=service.CompanyResponse}
// @Failure      400      {object}  response.Response
// @Router       /register [post]
func (h *CompanyHandler) RegisterCompany(c *gin.Context) {
	var req service.RegisterCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.RegisterCompany(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, company))
}

// GetMyCompany returns the caller's company with its plan
// @Summary      Get my company
// @Description  Retrieves the authenticated user's company
// @Tags         company
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.CompanyResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/company [get]
func (h *CompanyHandler) GetMyCompany(c *gin.Context) {
	company, err := h.companyService.GetCompany(c.Request.Context(), companyID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// ChangePlanRequest selects the target subscription plan by name
type ChangePlanRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// ChangePlan moves the caller's company to another subscription plan
// @Summary      Change plan
// @Description  Moves the company to another plan; feature changes apply at next login
// @Tags         company
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      ChangePlanRequest  true  "Change Plan Payload"
// @Success      200      {object}  response.Response{data=service.CompanyResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/company/plan [put]
func (h *CompanyHandler) ChangePlan(c *gin.Context) {
	var req ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.ChangePlan(c.Request.Context(), companyID(c), req.Plan)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	// Cached feature lookups may be stale for up to the cache TTL
	middleware.ClearFeatureCache("")

	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// ListPlans returns all subscription plans with their features
// @Summary      List plans
// @Description  Retrieves every subscription plan and its feature codes
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.PlanResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/plans [get]
func (h *CompanyHandler) ListPlans(c *gin.Context) {
	plans, err := h.planService.ListPlans(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, plans))
}

// ListFeatures returns the catalog of gateable features
// @Summary      List features
// @Description  Retrieves every feature that can be assigned to a plan
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.FeatureResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/plans/features [get]
func (h *CompanyHandler) ListFeatures(c *gin.Context) {
	features, err := h.planService.ListFeatures(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, features))
}
