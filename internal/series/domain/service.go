package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateRequest struct {
	CompanyID snowflake.ID
	DocType   string
	Prefix    string
	Padding   int
}

type Repository interface {
	Create(ctx context.Context, series *Series) error
	List(ctx context.Context, companyID snowflake.ID) ([]Series, error)
	// LockForUpdate loads the series row under FOR UPDATE inside tx.
	LockForUpdate(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, docType string) (*Series, error)
	Update(ctx context.Context, tx *gorm.DB, series *Series) error
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Series, error)
	List(ctx context.Context, companyID snowflake.ID) ([]Series, error)

	// NextNumberTx allocates the next number inside the caller's
	// transaction. The allocation is rolled back with the caller.
	NextNumberTx(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, docType string) (string, error)

	// RolloverTx resets every counter of the company back to 1 inside tx.
	// Used by the fiscal-closing checklist.
	RolloverTx(ctx context.Context, tx *gorm.DB, companyID snowflake.ID) (int, error)
}
