package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	documentdomain "github.com/fiskora/fiskora/internal/document/domain"
	"github.com/fiskora/fiskora/pkg/db/pagination"
)

type documentLineRequest struct {
	Description string `json:"description" binding:"required"`
	Quantity    string `json:"quantity" binding:"required"`
	UnitPrice   string `json:"unit_price" binding:"required"`
	DiscountPct string `json:"discount_pct"`
	TaxRate     string `json:"tax_rate"`
}

type createDocumentRequest struct {
	CustomerID string                `json:"customer_id" binding:"required"`
	Type       string                `json:"type" binding:"required"`
	IssueDate  string                `json:"issue_date" binding:"required"`
	DueDate    string                `json:"due_date"`
	Lines      []documentLineRequest `json:"lines" binding:"required"`
}

func (s *Server) CreateDocument(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customerID, err := parseSnowflakeParam(req.CustomerID)
	if err != nil {
		AbortWithError(c, newValidationError("customer_id", "invalid_customer_id", "invalid customer id"))
		return
	}

	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		AbortWithError(c, newValidationError("issue_date", "invalid_issue_date", "invalid issue_date"))
		return
	}

	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
		return
	}

	lines, err := buildDocumentLines(req.Lines)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.documentSvc.Create(c.Request.Context(), documentdomain.CreateRequest{
		CompanyID:  companyID,
		CustomerID: customerID,
		Type:       documentdomain.Type(strings.TrimSpace(req.Type)),
		IssueDate:  issueDate,
		DueDate:    dueDate,
		Lines:      lines,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func buildDocumentLines(reqs []documentLineRequest) ([]documentdomain.LineInput, error) {
	lines := make([]documentdomain.LineInput, 0, len(reqs))
	for _, line := range reqs {
		quantity, err := parseDecimalParam(line.Quantity)
		if err != nil {
			return nil, newValidationError("lines.quantity", "invalid_quantity", "invalid quantity")
		}
		unitPrice, err := parseDecimalParam(line.UnitPrice)
		if err != nil {
			return nil, newValidationError("lines.unit_price", "invalid_unit_price", "invalid unit price")
		}
		discountPct, err := parseDecimalParam(line.DiscountPct)
		if err != nil {
			return nil, newValidationError("lines.discount_pct", "invalid_discount_percent", "invalid discount percent")
		}
		taxRate, err := parseDecimalParam(line.TaxRate)
		if err != nil {
			return nil, newValidationError("lines.tax_rate", "invalid_tax_rate", "invalid tax rate")
		}
		lines = append(lines, documentdomain.LineInput{
			Description: strings.TrimSpace(line.Description),
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			DiscountPct: discountPct,
			TaxRate:     taxRate,
		})
	}
	return lines, nil
}

func (s *Server) ListDocuments(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var query struct {
		pagination.Pagination
		CustomerID string `form:"customer_id"`
		Type       string `form:"type"`
		Status     string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := documentdomain.ListRequest{
		CompanyID:  companyID,
		Pagination: query.Pagination,
	}
	if req.CustomerID, err = parseOptionalSnowflakeID(query.CustomerID); err != nil {
		AbortWithError(c, newValidationError("customer_id", "invalid_customer_id", "invalid customer id"))
		return
	}
	if trimmed := strings.TrimSpace(query.Type); trimmed != "" {
		docType := documentdomain.Type(trimmed)
		req.Type = &docType
	}
	if trimmed := strings.TrimSpace(query.Status); trimmed != "" {
		status := documentdomain.Status(trimmed)
		req.Status = &status
	}

	resp, err := s.documentSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDocument(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid document id"))
		return
	}

	resp, err := s.documentSvc.Get(c.Request.Context(), companyID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateDocumentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) UpdateDocumentStatus(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid document id"))
		return
	}

	var req updateDocumentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.documentSvc.UpdateStatus(c.Request.Context(), documentdomain.UpdateStatusRequest{
		CompanyID:  companyID,
		DocumentID: id,
		Status:     documentdomain.Status(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ConvertDocument(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid document id"))
		return
	}

	resp, err := s.documentSvc.Convert(c.Request.Context(), companyID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) PostDocument(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid document id"))
		return
	}

	resp, err := s.documentSvc.PostInvoice(c.Request.Context(), companyID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) PayDocument(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid document id"))
		return
	}

	resp, err := s.documentSvc.MarkPaid(c.Request.Context(), companyID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DocumentPDF(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid document id"))
		return
	}

	data, err := s.documentSvc.RenderPDF(c.Request.Context(), companyID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/pdf", data)
}

type emailDocumentRequest struct {
	Recipient string `json:"recipient"`
}

func (s *Server) EmailDocument(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid document id"))
		return
	}

	// Body is optional; an empty one falls back to the customer's email.
	var req emailDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.documentSvc.EmailDocument(c.Request.Context(), companyID, id, strings.TrimSpace(req.Recipient)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"sent": true}})
}
