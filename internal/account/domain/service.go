package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateRequest struct {
	CompanyID snowflake.ID
	Code      string
	Name      string
	Type      AccountType
}

type ListRequest struct {
	CompanyID  snowflake.ID
	Type       *AccountType
	OnlyActive bool
}

// AccountBalance is the net posted amount (debits minus credits) of an
// account over a date range.
type AccountBalance struct {
	AccountID snowflake.ID
	Code      string
	Type      AccountType
	Net       decimal.Decimal
}

type Repository interface {
	Create(ctx context.Context, account *Account) error
	// FindByID reads through tx when given one so posting validation
	// sees rows touched earlier in the same transaction.
	FindByID(ctx context.Context, tx *gorm.DB, companyID, id snowflake.ID) (*Account, error)
	FindByCode(ctx context.Context, companyID snowflake.ID, code string) (*Account, error)
	List(ctx context.Context, req ListRequest) ([]Account, error)
	Update(ctx context.Context, account *Account) error

	// Balances sums posted journal lines per account (debit - credit).
	Balances(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, from, to time.Time) ([]AccountBalance, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Account, error)
	Get(ctx context.Context, companyID, id snowflake.ID) (*Account, error)
	GetByCode(ctx context.Context, companyID snowflake.ID, code string) (*Account, error)
	List(ctx context.Context, req ListRequest) ([]Account, error)
	Deactivate(ctx context.Context, companyID, id snowflake.ID) (*Account, error)

	// Tree returns the chart of accounts grouped by code prefix with
	// balances over the full posting history. depth selects how many
	// prefix levels to build (clamped to 1..MaxTreeDepth).
	Tree(ctx context.Context, companyID snowflake.ID, depth int) ([]Group, error)

	// BalancesTx exposes per-account nets for a date range inside the
	// caller's transaction. Used by the fiscal-closing result entry.
	BalancesTx(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, from, to time.Time) ([]AccountBalance, error)
}
