package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreateRequest struct {
	CompanyID   snowflake.ID
	Name        string
	Email       string
	CreditLimit decimal.Decimal
}

type UpdateRequest struct {
	CompanyID   snowflake.ID
	CustomerID  snowflake.ID
	Name        *string
	Email       *string
	CreditLimit *decimal.Decimal
	IsActive    *bool
}

// Receivables is the open invoice exposure of one customer.
type Receivables struct {
	Outstanding decimal.Decimal `json:"outstanding"`
	Overdue     decimal.Decimal `json:"overdue"`
}

// CreditStanding is the result of a credit check against a proposed
// additional amount.
type CreditStanding struct {
	Outstanding decimal.Decimal `json:"outstanding"`
	Overdue     decimal.Decimal `json:"overdue"`
	Limit       decimal.Decimal `json:"limit"`
	Allowed     bool            `json:"allowed"`
}

type Repository interface {
	Create(ctx context.Context, customer *Customer) error
	FindByID(ctx context.Context, companyID, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, companyID snowflake.ID) ([]Customer, error)
	Update(ctx context.Context, customer *Customer) error

	// Receivables sums posted, unpaid invoices for the customer. Overdue
	// is the subset whose due date lies before asOf.
	Receivables(ctx context.Context, companyID, customerID snowflake.ID, asOf time.Time) (Receivables, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Customer, error)
	Get(ctx context.Context, companyID, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, companyID snowflake.ID) ([]Customer, error)
	Update(ctx context.Context, req UpdateRequest) (*Customer, error)

	// CreditCheck evaluates whether the customer may take on the proposed
	// additional amount. A zero credit limit means unlimited.
	CreditCheck(ctx context.Context, companyID, customerID snowflake.ID, proposed decimal.Decimal) (CreditStanding, error)

	// AssertCredit is CreditCheck collapsed to an error. Document creation
	// and conversion call it before committing.
	AssertCredit(ctx context.Context, companyID, customerID snowflake.ID, proposed decimal.Decimal) error

	// InvalidateCredit drops the cached receivables after an invoice
	// posts or settles.
	InvalidateCredit(companyID, customerID snowflake.ID)
}
