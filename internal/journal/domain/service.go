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
	AccountID   snowflake.ID    `json:"account_id"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

type CreateRequest struct {
	CompanyID snowflake.ID
	EntryDate time.Time
	Memo      string
	Lines     []LineInput

	// AllowClosedPeriod lets the fiscal-closing result entry book into a
	// period that the checklist already closed.
	AllowClosedPeriod bool
}

type UpdateRequest struct {
	CompanyID snowflake.ID
	EntryID   snowflake.ID
	EntryDate *time.Time
	Memo      *string
	// Lines replaces the full line set when non-nil.
	Lines []LineInput
}

type ListRequest struct {
	CompanyID  snowflake.ID
	Status     *Status
	From       *time.Time
	To         *time.Time
	Pagination pagination.Pagination
}

type ListResponse struct {
	Entries  []JournalEntry      `json:"entries"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type Repository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *JournalEntry) error
	FindByID(ctx context.Context, tx *gorm.DB, companyID, id snowflake.ID) (*JournalEntry, error)
	List(ctx context.Context, req ListRequest) ([]JournalEntry, error)
	Update(ctx context.Context, tx *gorm.DB, entry *JournalEntry) error
	// ReplaceLines swaps the entry's full line set.
	ReplaceLines(ctx context.Context, tx *gorm.DB, entryID snowflake.ID, lines []JournalLine) error
	// CountByStatusInRange counts the company's entries with the given
	// status dated inside [from, to].
	CountByStatusInRange(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, status Status, from, to time.Time) (int64, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*JournalEntry, error)
	Get(ctx context.Context, companyID, id snowflake.ID) (*JournalEntry, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)

	// Update edits a draft. Posted entries are immutable.
	Update(ctx context.Context, req UpdateRequest) (*JournalEntry, error)

	// Post validates balance, line structure, account state and period
	// state, then assigns a sequential number and freezes the entry.
	Post(ctx context.Context, companyID, id snowflake.ID) (*JournalEntry, error)

	// CreateAndPostTx books and posts an entry inside the caller's
	// transaction. Used by invoice posting and the closing result entry.
	CreateAndPostTx(ctx context.Context, tx *gorm.DB, req CreateRequest) (*JournalEntry, error)

	// VerifyRangeTx fails with ErrUnpostedInRange when draft entries
	// remain inside [from, to]. Used by the fiscal-closing checklist.
	VerifyRangeTx(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, from, to time.Time) error
}
