package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	seriesdomain "github.com/fiskora/fiskora/internal/series/domain"
)

type createSeriesRequest struct {
	DocType string `json:"doc_type" binding:"required"`
	Prefix  string `json:"prefix" binding:"required"`
	Padding int    `json:"padding"`
}

func (s *Server) CreateSeries(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.seriesSvc.Create(c.Request.Context(), seriesdomain.CreateRequest{
		CompanyID: companyID,
		DocType:   strings.TrimSpace(req.DocType),
		Prefix:    strings.TrimSpace(req.Prefix),
		Padding:   req.Padding,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSeries(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.seriesSvc.List(c.Request.Context(), companyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
