package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	CreateRun(ctx context.Context, run *ClosingRun) error
	FindRunByID(ctx context.Context, tx *gorm.DB, companyID, id snowflake.ID) (*ClosingRun, error)
	FindActiveRunByYear(ctx context.Context, companyID, fiscalYearID snowflake.ID) (*ClosingRun, error)
	ListRuns(ctx context.Context, companyID snowflake.ID) ([]ClosingRun, error)
	UpdateRun(ctx context.Context, tx *gorm.DB, run *ClosingRun) error
	UpdateStep(ctx context.Context, tx *gorm.DB, step *ClosingStep) error
}

type Service interface {
	// StartRun opens a closing run for the year and flags the year as
	// closing. One active run per fiscal year.
	StartRun(ctx context.Context, companyID, fiscalYearID snowflake.ID) (*ClosingRun, error)
	GetRun(ctx context.Context, companyID, runID snowflake.ID) (*ClosingRun, error)
	ListRuns(ctx context.Context, companyID snowflake.ID) ([]ClosingRun, error)

	// ExecuteStep runs the step the cursor points at. Any other step
	// returns ErrStepOutOfOrder. A failed step may be retried in place.
	ExecuteStep(ctx context.Context, companyID, runID snowflake.ID, stepCode string) (*ClosingRun, error)

	// SkipStep skips a non-required step at the cursor. Required steps
	// return ErrStepRequired and stay pending.
	SkipStep(ctx context.Context, companyID, runID snowflake.ID, stepCode string) (*ClosingRun, error)
}
