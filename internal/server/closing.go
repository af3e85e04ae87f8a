package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type startClosingRunRequest struct {
	FiscalYearID string `json:"fiscal_year_id" binding:"required"`
}

func (s *Server) StartClosingRun(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req startClosingRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	fiscalYearID, err := parseSnowflakeParam(req.FiscalYearID)
	if err != nil {
		AbortWithError(c, newValidationError("fiscal_year_id", "invalid_fiscal_year_id", "invalid fiscal year id"))
		return
	}

	resp, err := s.closingSvc.StartRun(c.Request.Context(), companyID, fiscalYearID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListClosingRuns(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.closingSvc.ListRuns(c.Request.Context(), companyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetClosingRun(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid closing run id"))
		return
	}

	resp, err := s.closingSvc.GetRun(c.Request.Context(), companyID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ExecuteClosingStep(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid closing run id"))
		return
	}

	resp, err := s.closingSvc.ExecuteStep(c.Request.Context(), companyID, id, strings.TrimSpace(c.Param("code")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SkipClosingStep(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid closing run id"))
		return
	}

	resp, err := s.closingSvc.SkipStep(c.Request.Context(), companyID, id, strings.TrimSpace(c.Param("code")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
