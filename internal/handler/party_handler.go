package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PartyHandler struct {
	partyService service.PartyService
}

func NewPartyHandler(partyService service.PartyService) *PartyHandler {
	return &PartyHandler{partyService: partyService}
}

func (h *PartyHandler) RegisterRoutes(router *gin.RouterGroup) {
	parties := router.Group("/api/parties")
	{
		parties.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.CreateParty)
		parties.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleAnalyst), h.ListParties)
		parties.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleAnalyst), h.GetParty)
		parties.PUT("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.UpdateParty)
		parties.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteParty)
	}
}

// CreateParty registers a supplier or client
// @Summary      Create party
// @Description  Registers a supplier, client, or both
// @Tags         parties
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePartyRequest  true  "Create Party Payload"
// @Success      201      {object}  response.Response{data=model.Party}
// @Failure      400      {object}  response.Response
// @Router       /api/parties [post]
func (h *PartyHandler) CreateParty(c *gin.Context) {
	var req service.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	party, err := h.partyService.CreateParty(c.Request.Context(), companyID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, party))
}

// ListParties returns a paginated list of parties
// @Summary      List parties
// @Description  Retrieves a paginated list of parties, optionally filtered by type or name
// @Tags         parties
// @Security     BearerAuth
// @Produce      json
// @Param        type    query     string  false  "Filter by type (SUPPLIER, CLIENT, BOTH)"
// @Param        search  query     string  false  "Filter by legal or trade name"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=[]model.Party}
// @Failure      500     {object}  response.Response
// @Router       /api/parties [get]
func (h *PartyHandler) ListParties(c *gin.Context) {
	params := pagination.Parse(c)

	parties, total, err := h.partyService.ListParties(c.Request.Context(), companyID(c), c.Query("type"), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, parties, params.Page, params.Limit, total))
}

// GetParty returns one party
// @Summary      Get party
// @Description  Retrieves a party by ID
// @Tags         parties
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Party ID"
// @Success      200  {object}  response.Response{data=model.Party}
// @Failure      404  {object}  response.Response
// @Router       /api/parties/{id} [get]
func (h *PartyHandler) GetParty(c *gin.Context) {
	party, err := h.partyService.GetParty(c.Request.Context(), companyID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, party))
}

// UpdateParty updates party fields
// @Summary      Update party
// @Description  Updates a party's registration data
// @Tags         parties
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Party ID"
// @Param        payload  body      service.UpdatePartyRequest  true  "Update Party Payload"
// @Success      200      {object}  response.Response{data=model.Party}
// @Failure      400      {object}  response.Response
// @Router       /api/parties/{id} [put]
func (h *PartyHandler) UpdateParty(c *gin.Context) {
	var req service.UpdatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	party, err := h.partyService.UpdateParty(c.Request.Context(), companyID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, party))
}

// DeleteParty removes a party
// @Summary      Delete party
// @Description  Soft-deletes a party by ID
// @Tags         parties
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Party ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/parties/{id} [delete]
func (h *PartyHandler) DeleteParty(c *gin.Context) {
	if err := h.partyService.DeleteParty(c.Request.Context(), companyID(c), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Party deleted"}))
}
