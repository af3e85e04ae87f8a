package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	customerdomain "github.com/fiskora/fiskora/internal/customer/domain"
)

type createCustomerRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email"`
	CreditLimit string `json:"credit_limit"`
}

func (s *Server) CreateCustomer(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	creditLimit, err := parseDecimalParam(req.CreditLimit)
	if err != nil {
		AbortWithError(c, newValidationError("credit_limit", "invalid_credit_limit", "invalid credit_limit"))
		return
	}

	resp, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateRequest{
		CompanyID:   companyID,
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		CreditLimit: creditLimit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCustomers(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), companyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCustomer(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid customer id"))
		return
	}

	resp, err := s.customerSvc.Get(c.Request.Context(), companyID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateCustomerRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	CreditLimit *string `json:"credit_limit"`
	IsActive    *bool   `json:"is_active"`
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid customer id"))
		return
	}

	var req updateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := customerdomain.UpdateRequest{
		CompanyID:  companyID,
		CustomerID: id,
		Name:       req.Name,
		Email:      req.Email,
		IsActive:   req.IsActive,
	}
	if req.CreditLimit != nil {
		limit, err := decimal.NewFromString(strings.TrimSpace(*req.CreditLimit))
		if err != nil {
			AbortWithError(c, newValidationError("credit_limit", "invalid_credit_limit", "invalid credit_limit"))
			return
		}
		update.CreditLimit = &limit
	}

	resp, err := s.customerSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreditCheck(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid customer id"))
		return
	}

	proposed, err := parseDecimalParam(c.Query("amount"))
	if err != nil {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "invalid amount"))
		return
	}

	resp, err := s.customerSvc.CreditCheck(c.Request.Context(), companyID, id, proposed)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
