package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	CreateYear(ctx context.Context, tx *gorm.DB, year *FiscalYear, periods []Period) error
	FindYearByID(ctx context.Context, companyID, id snowflake.ID) (*FiscalYear, error)
	ListYears(ctx context.Context, companyID snowflake.ID) ([]FiscalYear, error)
	FindOverlappingYear(ctx context.Context, companyID snowflake.ID, start, end time.Time) (*FiscalYear, error)
	UpdateYear(ctx context.Context, tx *gorm.DB, year *FiscalYear) error

	FindPeriodByID(ctx context.Context, id snowflake.ID) (*Period, error)
	FindPeriodForDate(ctx context.Context, companyID snowflake.ID, date time.Time) (*Period, *FiscalYear, error)
	ListPeriods(ctx context.Context, fiscalYearID snowflake.ID) ([]Period, error)
	UpdatePeriod(ctx context.Context, tx *gorm.DB, period *Period) error
}
