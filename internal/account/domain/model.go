package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// AccountType classifies a chart-of-accounts entry.
type AccountType string

const (
	TypeAsset     AccountType = "asset"
	TypeLiability AccountType = "liability"
	TypeEquity    AccountType = "equity"
	TypeIncome    AccountType = "income"
	TypeExpense   AccountType = "expense"
)

func (t AccountType) Valid() bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeIncome, TypeExpense:
		return true
	default:
		return false
	}
}

// Account is one chart-of-accounts entry. Codes are digit strings and
// unique per company; the UI groups them by code prefix.
type Account struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_accounts_company_code,priority:1" json:"company_id"`
	Code      string       `gorm:"type:text;not null;uniqueIndex:ux_accounts_company_code,priority:2" json:"code"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Type      AccountType  `gorm:"type:text;not null" json:"type"`
	IsActive  bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidCode    = errors.New("invalid_account_code")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidType    = errors.New("invalid_account_type")
	ErrNotFound       = errors.New("account_not_found")
	ErrCodeExists     = errors.New("account_code_exists")
	ErrInactive       = errors.New("account_inactive")
)
