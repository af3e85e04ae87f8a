package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	accountdomain "github.com/fiskora/fiskora/internal/account/domain"
)

type createAccountRequest struct {
	Code string `json:"code" binding:"required,account_code"`
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"`
}

func (s *Server) CreateAccount(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.accountSvc.Create(c.Request.Context(), accountdomain.CreateRequest{
		CompanyID: companyID,
		Code:      strings.TrimSpace(req.Code),
		Name:      strings.TrimSpace(req.Name),
		Type:      accountdomain.AccountType(strings.TrimSpace(req.Type)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListAccounts(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var query struct {
		Type       string `form:"type"`
		OnlyActive bool   `form:"only_active"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := accountdomain.ListRequest{
		CompanyID:  companyID,
		OnlyActive: query.OnlyActive,
	}
	if trimmed := strings.TrimSpace(query.Type); trimmed != "" {
		accountType := accountdomain.AccountType(trimmed)
		req.Type = &accountType
	}

	resp, err := s.accountSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAccount(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid account id"))
		return
	}

	resp, err := s.accountSvc.Get(c.Request.Context(), companyID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAccountTree(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	depth := 2
	if raw := strings.TrimSpace(c.Query("depth")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > accountdomain.MaxTreeDepth {
			AbortWithError(c, newValidationError("depth", "invalid_depth", "depth must be between 1 and 3"))
			return
		}
		depth = parsed
	}

	resp, err := s.accountSvc.Tree(c.Request.Context(), companyID, depth)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivateAccount(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid account id"))
		return
	}

	resp, err := s.accountSvc.Deactivate(c.Request.Context(), companyID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
