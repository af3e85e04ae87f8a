package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fiskora/fiskora/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LineInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

type CreateRequest struct {
	CompanyID  snowflake.ID
	CustomerID snowflake.ID
	Type       Type
	IssueDate  time.Time
	DueDate    *time.Time
	Lines      []LineInput
}

type UpdateStatusRequest struct {
	CompanyID  snowflake.ID
	DocumentID snowflake.ID
	Status     Status
}

type ListRequest struct {
	CompanyID  snowflake.ID
	CustomerID *snowflake.ID
	Type       *Type
	Status     *Status
	Pagination pagination.Pagination
}

type ListResponse struct {
	Documents []SalesDocument     `json:"documents"`
	PageInfo  pagination.PageInfo `json:"page_info"`
}

type Repository interface {
	Create(ctx context.Context, tx *gorm.DB, doc *SalesDocument) error
	FindByID(ctx context.Context, tx *gorm.DB, companyID, id snowflake.ID) (*SalesDocument, error)
	List(ctx context.Context, req ListRequest) ([]SalesDocument, error)
	Update(ctx context.Context, tx *gorm.DB, doc *SalesDocument) error
	// ExpireQuotes flips sent quotes whose validity lapsed before now.
	// Returns the expired quotes so callers can audit them.
	ExpireQuotes(ctx context.Context, now time.Time) ([]SalesDocument, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*SalesDocument, error)
	Get(ctx context.Context, companyID, id snowflake.ID) (*SalesDocument, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)

	// UpdateStatus performs a within-type move: send, accept, reject or
	// expire a quote, confirm or cancel an order, ship, deliver, cancel.
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*SalesDocument, error)

	// Convert creates the next document in the chain from the source,
	// copying lines and allocating a fresh number. Irreversible.
	Convert(ctx context.Context, companyID, id snowflake.ID) (*SalesDocument, error)

	// PostInvoice books a draft invoice or credit note to the ledger and
	// freezes it. The journal entry and the status change share one tx.
	PostInvoice(ctx context.Context, companyID, id snowflake.ID) (*SalesDocument, error)

	// MarkPaid settles a posted invoice.
	MarkPaid(ctx context.Context, companyID, id snowflake.ID) (*SalesDocument, error)

	// ExpireQuotes sweeps sent quotes past their validity. Returns the
	// number expired. Invoked by the scheduler.
	ExpireQuotes(ctx context.Context, now time.Time) (int, error)

	// RenderPDF produces a printable rendition of the document.
	RenderPDF(ctx context.Context, companyID, id snowflake.ID) ([]byte, error)

	// EmailDocument sends the rendition to the recipient, defaulting to
	// the customer's address.
	EmailDocument(ctx context.Context, companyID, id snowflake.ID, recipient string) error
}
