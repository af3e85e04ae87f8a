package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Type orders the sales chain. Each type converts only into the next one.
type Type string

const (
	TypeQuote      Type = "quote"
	TypeOrder      Type = "order"
	TypeDelivery   Type = "delivery"
	TypeInvoice    Type = "invoice"
	TypeCreditNote Type = "credit_note"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusExpired   Status = "expired"
	StatusConverted Status = "converted"
	StatusConfirmed Status = "confirmed"
	StatusPartial   Status = "partial"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusReady     Status = "ready"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusPosted    Status = "posted"
)

// SalesDocument is one document in the quote to credit-note chain.
// Amount columns are denormalized from the lines at write time.
type SalesDocument struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID       snowflake.ID    `gorm:"not null;index" json:"company_id"`
	CustomerID      snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	Type            Type            `gorm:"type:text;not null;index" json:"type"`
	Number          string          `gorm:"type:text;not null" json:"number"`
	Status          Status          `gorm:"type:text;not null" json:"status"`
	IssueDate       time.Time       `gorm:"not null" json:"issue_date"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	ValidUntil      *time.Time      `json:"valid_until,omitempty"`
	SourceID        *snowflake.ID   `gorm:"index" json:"source_id,omitempty"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"subtotal"`
	TaxTotal        decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"tax_total"`
	Total           decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"total"`
	PostedJournalID *snowflake.ID   `json:"posted_journal_id,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	Lines           []DocumentLine  `gorm:"foreignKey:DocumentID" json:"lines"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (SalesDocument) TableName() string { return "sales_documents" }

type DocumentLine struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	DocumentID     snowflake.ID    `gorm:"not null;index" json:"document_id"`
	Description    string          `gorm:"type:text" json:"description"`
	Quantity       decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"unit_price"`
	DiscountPct    decimal.Decimal `gorm:"type:numeric(8,4);not null;default:0" json:"discount_pct"`
	TaxRate        decimal.Decimal `gorm:"type:numeric(8,4);not null;default:0" json:"tax_rate"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"discount_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"tax_amount"`
	LineTotal      decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"line_total"`
}

func (DocumentLine) TableName() string { return "sales_document_lines" }

var (
	ErrNotFound            = errors.New("document_not_found")
	ErrInvalidCompany      = errors.New("invalid_company")
	ErrInvalidType         = errors.New("invalid_document_type")
	ErrInvalidStatus       = errors.New("invalid_document_status")
	ErrInvalidTransition   = errors.New("invalid_status_transition")
	ErrNoLines             = errors.New("document_has_no_lines")
	ErrNotConvertible      = errors.New("document_status_not_convertible")
	ErrEndOfChain          = errors.New("document_chain_exhausted")
	ErrNotDraft            = errors.New("document_not_draft")
	ErrAlreadyPosted       = errors.New("document_already_posted")
	ErrNotPosted           = errors.New("document_not_posted")
	ErrAlreadyPaid         = errors.New("document_already_paid")
	ErrInvalidPageToken    = errors.New("invalid_page_token")
	ErrDeliveryUnavailable = errors.New("document_delivery_unavailable")
)
