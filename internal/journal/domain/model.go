package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft  Status = "draft"
	StatusPosted Status = "posted"
)

// JournalEntry is a double-entry booking. Drafts are mutable and carry
// no number; posting assigns a sequential number and freezes the entry.
type JournalEntry struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	CompanyID snowflake.ID  `gorm:"not null;index" json:"company_id"`
	Number    *string       `gorm:"type:text;uniqueIndex:ux_journal_entries_number,where:number IS NOT NULL" json:"number,omitempty"`
	EntryDate time.Time     `gorm:"not null;index" json:"entry_date"`
	Memo      string        `gorm:"type:text" json:"memo"`
	Status    Status        `gorm:"type:text;not null;default:draft" json:"status"`
	Lines     []JournalLine `gorm:"foreignKey:EntryID" json:"lines"`
	PostedAt  *time.Time    `json:"posted_at,omitempty"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (JournalEntry) TableName() string { return "journal_entries" }

// JournalLine books an amount on exactly one side of one account.
type JournalLine struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	EntryID     snowflake.ID    `gorm:"not null;index" json:"entry_id"`
	AccountID   snowflake.ID    `gorm:"not null;index" json:"account_id"`
	Debit       decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"debit"`
	Credit      decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"credit"`
	Description string          `gorm:"type:text" json:"description"`
}

func (JournalLine) TableName() string { return "journal_lines" }

// balanceTolerance absorbs rounding drift between per-line amounts.
var balanceTolerance = decimal.New(1, -2) // 0.01

// Totals returns the debit and credit sums of the entry's lines.
func (e *JournalEntry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, line := range e.Lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return debit, credit
}

// IsBalanced reports whether debits and credits agree within tolerance.
func (e *JournalEntry) IsBalanced() bool {
	debit, credit := e.Totals()
	return debit.Sub(credit).Abs().LessThan(balanceTolerance)
}

// ValidateLines checks the structural rules every line must satisfy:
// amounts are non-negative and exactly one side of each line is set.
func ValidateLines(lines []JournalLine) error {
	if len(lines) < 2 {
		return ErrTooFewLines
	}
	for _, line := range lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return ErrNegativeAmount
		}
		if line.Debit.IsPositive() && line.Credit.IsPositive() {
			return ErrBothSidesSet
		}
		if line.Debit.IsZero() && line.Credit.IsZero() {
			return ErrEmptyLine
		}
	}
	return nil
}

var (
	ErrNotFound         = errors.New("journal_entry_not_found")
	ErrTooFewLines      = errors.New("journal_entry_too_few_lines")
	ErrNegativeAmount   = errors.New("journal_line_negative_amount")
	ErrBothSidesSet     = errors.New("journal_line_both_sides_set")
	ErrEmptyLine        = errors.New("journal_line_empty")
	ErrUnbalanced       = errors.New("journal_entry_unbalanced")
	ErrEntryPosted      = errors.New("journal_entry_already_posted")
	ErrUnpostedInRange  = errors.New("journal_entries_unposted_in_range")
	ErrUnknownAccount   = errors.New("journal_line_unknown_account")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
