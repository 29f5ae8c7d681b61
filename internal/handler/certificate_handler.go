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

type CertificateHandler struct {
	certificateService service.CertificateService
}

func NewCertificateHandler(certificateService service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificateService: certificateService}
}

func (h *CertificateHandler) RegisterRoutes(router *gin.RouterGroup) {
	entry := router.Group("/api/certificates/entry")
	{
		entry.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleAnalyst), h.CreateEntryCertificate)
		entry.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleAnalyst), h.ListEntryCertificates)
		entry.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleAnalyst), h.GetEntryCertificate)
		entry.PUT("/:id/results", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleAnalyst), h.UpdateResults)
	}

	issued := router.Group("/api/certificates/issued")
	{
		issued.POST("", middleware.RequireFeature("certificates.issue"), h.IssueCertificate)
		issued.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleAnalyst), h.ListIssuedCertificates)
		issued.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleAnalyst), h.GetIssuedCertificate)
	}
}

// CreateEntryCertificate registers a lot's lab results and validates them
// @Summary      Create entry certificate
// @Description  Registers a received lot's analysis results; status is computed against the product specification
// @Tags         certificates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateEntryCertificateRequest  true  "Create Entry Certificate Payload"
// @Success      201      {object}  response.Response{data=model.EntryCertificate}
// @Failure      400      {object}  response.Response
// @Router       /api/certificates/entry [post]
func (h *CertificateHandler) CreateEntryCertificate(c *gin.Context) {
	var req service.CreateEntryCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cert, err := h.certificateService.CreateEntryCertificate(c.Request.Context(), companyID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, cert))
}

// ListEntryCertificates returns a paginated list of entry certificates
// @Summary      List entry certificates
// @Description  Retrieves entry certificates, optionally filtered by status, product or lot
// @Tags         certificates
// @Security     BearerAuth
// @Produce      json
// @Param        status      query     string  false  "Filter by status (PENDING, APPROVED, REJECTED)"
// @Param        product_id  query     string  false  "Filter by product ID"
// @Param        lot         query     string  false  "Filter by lot number (partial match)"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Success      200         {object}  response.Response{data=[]model.EntryCertificate}
// @Failure      500         {object}  response.Response
// @Router       /api/certificates/entry [get]
func (h *CertificateHandler) ListEntryCertificates(c *gin.Context) {
	params := pagination.Parse(c)

	certs, total, err := h.certificateService.ListEntryCertificates(c.Request.Context(), companyID(c), service.ListCertificatesQuery{
		Status:    c.Query("status"),
		ProductID: c.Query("product_id"),
		LotNumber: c.Query("lot"),
		Page:      params.Page,
		Limit:     params.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, certs, params.Page, params.Limit, total))
}

// GetEntryCertificate returns one entry certificate with results and product
// @Summary      Get entry certificate
// @Description  Retrieves an entry certificate with its results, product and supplier
// @Tags         certificates
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Certificate ID"
// @Success      200  {object}  response.Response{data=model.EntryCertificate}
// @Failure      404  {object}  response.Response
// @Router       /api/certificates/entry/{id} [get]
func (h *CertificateHandler) GetEntryCertificate(c *gin.Context) {
	cert, err := h.certificateService.GetEntryCertificate(c.Request.Context(), companyID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cert))
}

// UpdateResults replaces reported results and revalidates the certificate
// @Summary      Update certificate results
// @Description  Replaces the reported results and recomputes the certificate status
// @Tags         certificates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Certificate ID"
// @Param        payload  body      service.UpdateResultsRequest  true  "Update Results Payload"
// @Success      200      {object}  response.Response{data=model.EntryCertificate}
// @Failure      400      {object}  response.Response
// @Router       /api/certificates/entry/{id}/results [put]
func (h *CertificateHandler) UpdateResults(c *gin.Context) {
	var req service.UpdateResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cert, err := h.certificateService.UpdateResults(c.Request.Context(), companyID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cert))
}

// IssueCertificate issues an outbound certificate against an approved lot
// @Summary      Issue certificate
// @Description  Issues a quality certificate to a client for a sold quantity of an approved lot
// @Tags         certificates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.IssueCertificateRequest  true  "Issue Certificate Payload"
// @Success      201      {object}  response.Response{data=model.IssuedCertificate}
// @Failure      400      {object}  response.Response
// @Router       /api/certificates/issued [post]
func (h *CertificateHandler) IssueCertificate(c *gin.Context) {
	var req service.IssueCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	issued, err := h.certificateService.IssueCertificate(c.Request.Context(), companyID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, issued))
}

// ListIssuedCertificates returns a paginated list of issued certificates
// @Summary      List issued certificates
// @Description  Retrieves the company's issued certificates, newest first
// @Tags         certificates
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=[]model.IssuedCertificate}
// @Failure      500    {object}  response.Response
// @Router       /api/certificates/issued [get]
func (h *CertificateHandler) ListIssuedCertificates(c *gin.Context) {
	params := pagination.Parse(c)

	issued, total, err := h.certificateService.ListIssuedCertificates(c.Request.Context(), companyID(c), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, issued, params.Page, params.Limit, total))
}

// GetIssuedCertificate returns one issued certificate
// @Summary      Get issued certificate
// @Description  Retrieves an issued certificate with its entry certificate and client
// @Tags         certificates
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Issued Certificate ID"
// @Success      200  {object}  response.Response{data=model.IssuedCertificate}
// @Failure      404  {object}  response.Response
// @Router       /api/certificates/issued/{id} [get]
func (h *CertificateHandler) GetIssuedCertificate(c *gin.Context) {
	issued, err := h.certificateService.GetIssuedCertificate(c.Request.Context(), companyID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, issued))
}
