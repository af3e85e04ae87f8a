package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateYearRequest struct {
	CompanyID snowflake.ID
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

type YearResponse struct {
	FiscalYear
	Periods []Period `json:"periods"`
}

type Service interface {
	CreateYear(ctx context.Context, req CreateYearRequest) (*YearResponse, error)
	GetYear(ctx context.Context, companyID, id snowflake.ID) (*YearResponse, error)
	ListYears(ctx context.Context, companyID snowflake.ID) ([]FiscalYear, error)

	ClosePeriod(ctx context.Context, companyID, periodID snowflake.ID) (*Period, error)
	ReopenPeriod(ctx context.Context, companyID, periodID snowflake.ID) (*Period, error)

	// IsPostingAllowed reports whether a journal entry dated at the given
	// date may be posted: the covering period and its year must be open.
	IsPostingAllowed(ctx context.Context, companyID snowflake.ID, date time.Time) error

	// ClosePeriodsTx closes every remaining open period of the year inside
	// the caller's transaction. Used by the fiscal-closing checklist.
	ClosePeriodsTx(ctx context.Context, tx *gorm.DB, companyID, fiscalYearID snowflake.ID) (int, error)

	// CloseYearTx marks the year closed. All periods must already be closed.
	CloseYearTx(ctx context.Context, tx *gorm.DB, companyID, fiscalYearID snowflake.ID) error

	// MarkYearClosing flags the year while a closing run is active.
	MarkYearClosing(ctx context.Context, companyID, fiscalYearID snowflake.ID) error
}
