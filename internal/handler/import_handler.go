package handler

import (
	"errors"
	"io"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/nfe"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ImportHandler struct {
	importService service.ImportService
}

func NewImportHandler(importService service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

func (h *ImportHandler) RegisterRoutes(router *gin.RouterGroup) {
	nfeGroup := router.Group("/api/nfe")
	{
		nfeGroup.POST("/parse", middleware.RequireFeature("nfe.import"), h.ParseInvoice)
		nfeGroup.POST("/validate", middleware.RequireFeature("nfe.import"), h.PrecheckInvoice)
		nfeGroup.POST("/summary", middleware.RequireFeature("nfe.import"), h.SummarizeInvoice)
		nfeGroup.POST("/imports", middleware.RequireFeature("nfe.import"), h.ImportInvoice)
		nfeGroup.GET("/imports", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleAnalyst), h.ListImports)
		nfeGroup.GET("/imports/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleAnalyst), h.GetImport)
	}
}

// InvoiceXMLRequest wraps the raw XML text of an uploaded invoice
type InvoiceXMLRequest struct {
	XML string `json:"xml" binding:"required"`
}

// invoiceXML extracts the invoice XML from the request, accepting a multipart
// file upload ("file" field), a raw XML body, or the JSON wrapper. Writes the
// error response itself when extraction fails.
func invoiceXML(c *gin.Context) (string, bool) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to open uploaded file: "+err.Error()))
			return "", false
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to read uploaded file: "+err.Error()))
			return "", false
		}
		return string(data), true
	}

	contentType := c.ContentType()
	if contentType == "application/xml" || contentType == "text/xml" {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to read request body: "+err.Error()))
			return "", false
		}
		return string(data), true
	}

	var req InvoiceXMLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return "", false
	}
	return req.XML, true
}

// parseStatus maps the normalizer's error taxonomy onto HTTP codes: syntax
// errors are a plain bad request, recognized-but-incomplete documents are
// unprocessable.
func parseStatus(err error) int {
	var parseErr *nfe.ParseError
	if errors.As(err, &parseErr) {
		return http.StatusBadRequest
	}
	var malformed *nfe.MalformedDocumentError
	var missing *nfe.MissingFieldError
	if errors.As(err, &malformed) || errors.As(err, &missing) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

// ParseInvoice normalizes an invoice XML without persisting it
// @Summary      Parse invoice
// @Description  Normalizes an uploaded invoice XML into the canonical document shape, for preview
// @Tags         nfe
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      InvoiceXMLRequest  true  "Invoice XML Payload"
// @Success      200      {object}  response.Response{data=nfe.Document}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/nfe/parse [post]
func (h *ImportHandler) ParseInvoice(c *gin.Context) {
	xml, ok := invoiceXML(c)
	if !ok {
		return
	}

	doc, err := h.importService.ParseInvoice(xml)
	if err != nil {
		status := parseStatus(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// PrecheckInvoice runs the cheap structural heuristic on an invoice XML
// @Summary      Precheck invoice
// @Description  Checks for the structural markers of an invoice without fully parsing it
// @Tags         nfe
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      InvoiceXMLRequest  true  "Invoice XML Payload"
// @Success      200      {object}  response.Response{data=nfe.ValidationReport}
// @Failure      400      {object}  response.Response
// @Router       /api/nfe/validate [post]
func (h *ImportHandler) PrecheckInvoice(c *gin.Context) {
	xml, ok := invoiceXML(c)
	if !ok {
		return
	}

	report := h.importService.PrecheckInvoice(xml)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// SummarizeInvoice produces a preview-card projection of an invoice XML
// @Summary      Summarize invoice
// @Description  Normalizes an invoice XML and reduces it to a display summary
// @Tags         nfe
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      InvoiceXMLRequest  true  "Invoice XML Payload"
// @Success      200      {object}  response.Response{data=nfe.Summary}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/nfe/summary [post]
func (h *ImportHandler) SummarizeInvoice(c *gin.Context) {
	xml, ok := invoiceXML(c)
	if !ok {
		return
	}

	summary, err := h.importService.SummarizeInvoice(xml)
	if err != nil {
		status := parseStatus(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// ImportInvoice normalizes and persists an invoice XML
// @Summary      Import invoice
// @Description  Normalizes an invoice XML, deduplicates by access key and persists it with its items
// @Tags         nfe
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      InvoiceXMLRequest  true  "Invoice XML Payload"
// @Success      201      {object}  response.Response{data=model.NfeImport}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/nfe/imports [post]
func (h *ImportHandler) ImportInvoice(c *gin.Context) {
	xml, ok := invoiceXML(c)
	if !ok {
		return
	}

	imp, err := h.importService.ImportInvoice(c.Request.Context(), companyID(c), xml)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateImport) {
			// Carry the prior import so clients can link to it.
			resp := response.Error(http.StatusConflict, err.Error())
			resp.Data = imp
			c.JSON(http.StatusConflict, resp)
			return
		}
		status := parseStatus(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, imp))
}

// ListImports returns a paginated list of imported invoices
// @Summary      List imports
// @Description  Retrieves the company's imported invoices, newest first
// @Tags         nfe
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=[]model.NfeImport}
// @Failure      500    {object}  response.Response
// @Router       /api/nfe/imports [get]
func (h *ImportHandler) ListImports(c *gin.Context) {
	params := pagination.Parse(c)

	imports, total, err := h.importService.ListImports(c.Request.Context(), companyID(c), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, imports, params.Page, params.Limit, total))
}

// GetImport returns one imported invoice with its items
// @Summary      Get import
// @Description  Retrieves an imported invoice and its line items by ID
// @Tags         nfe
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Import ID"
// @Success      200  {object}  response.Response{data=model.NfeImport}
// @Failure      404  {object}  response.Response
// @Router       /api/nfe/imports/{id} [get]
func (h *ImportHandler) GetImport(c *gin.Context) {
	imp, err := h.importService.GetImport(c.Request.Context(), companyID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, imp))
}
