package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	journaldomain "github.com/fiskora/fiskora/internal/journal/domain"
	"github.com/fiskora/fiskora/pkg/db/pagination"
)

type journalLineRequest struct {
	AccountID   string `json:"account_id" binding:"required"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
	Description string `json:"description"`
}

type createJournalEntryRequest struct {
	EntryDate string               `json:"entry_date" binding:"required"`
	Memo      string               `json:"memo"`
	Lines     []journalLineRequest `json:"lines" binding:"required"`
}

func (s *Server) CreateJournalEntry(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	entryDate, err := parseDate(req.EntryDate)
	if err != nil {
		AbortWithError(c, newValidationError("entry_date", "invalid_entry_date", "invalid entry_date"))
		return
	}

	lines, err := buildJournalLines(req.Lines)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.journalSvc.Create(c.Request.Context(), journaldomain.CreateRequest{
		CompanyID: companyID,
		EntryDate: entryDate,
		Memo:      strings.TrimSpace(req.Memo),
		Lines:     lines,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func buildJournalLines(reqs []journalLineRequest) ([]journaldomain.LineInput, error) {
	lines := make([]journaldomain.LineInput, 0, len(reqs))
	for _, line := range reqs {
		accountID, err := parseSnowflakeParam(line.AccountID)
		if err != nil {
			return nil, newValidationError("lines.account_id", "invalid_account_id", "invalid account id")
		}
		debit, err := parseDecimalParam(line.Debit)
		if err != nil {
			return nil, newValidationError("lines.debit", "invalid_debit", "invalid debit amount")
		}
		credit, err := parseDecimalParam(line.Credit)
		if err != nil {
			return nil, newValidationError("lines.credit", "invalid_credit", "invalid credit amount")
		}
		lines = append(lines, journaldomain.LineInput{
			AccountID:   accountID,
			Debit:       debit,
			Credit:      credit,
			Description: strings.TrimSpace(line.Description),
		})
	}
	return lines, nil
}

func (s *Server) ListJournalEntries(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var query struct {
		pagination.Pagination
		Status string `form:"status"`
		From   string `form:"from"`
		To     string `form:"to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := journaldomain.ListRequest{
		CompanyID:  companyID,
		Pagination: query.Pagination,
	}
	if trimmed := strings.TrimSpace(query.Status); trimmed != "" {
		status := journaldomain.Status(trimmed)
		req.Status = &status
	}
	if req.From, err = parseOptionalTime(query.From, false); err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}
	if req.To, err = parseOptionalTime(query.To, true); err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	resp, err := s.journalSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetJournalEntry(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid journal entry id"))
		return
	}

	resp, err := s.journalSvc.Get(c.Request.Context(), companyID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateJournalEntryRequest struct {
	EntryDate *string              `json:"entry_date"`
	Memo      *string              `json:"memo"`
	Lines     []journalLineRequest `json:"lines"`
}

func (s *Server) UpdateJournalEntry(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid journal entry id"))
		return
	}

	var req updateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := journaldomain.UpdateRequest{
		CompanyID: companyID,
		EntryID:   id,
		Memo:      req.Memo,
	}
	if req.EntryDate != nil {
		entryDate, err := parseDate(*req.EntryDate)
		if err != nil {
			AbortWithError(c, newValidationError("entry_date", "invalid_entry_date", "invalid entry_date"))
			return
		}
		update.EntryDate = &entryDate
	}
	if req.Lines != nil {
		lines, err := buildJournalLines(req.Lines)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		update.Lines = lines
	}

	resp, err := s.journalSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) PostJournalEntry(c *gin.Context) {
	companyID, err := s.companyID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid journal entry id"))
		return
	}

	resp, err := s.journalSvc.Post(c.Request.Context(), companyID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
