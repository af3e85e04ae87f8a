package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Customer is a billable party. CreditLimit zero means unlimited.
type Customer struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID   snowflake.ID    `gorm:"not null;index" json:"company_id"`
	Name        string          `gorm:"type:text;not null" json:"name"`
	Email       string          `gorm:"type:text" json:"email"`
	CreditLimit decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"credit_limit"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

var (
	ErrInvalidCompany      = errors.New("invalid_company")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrNegativeCreditLimit = errors.New("negative_credit_limit")
	ErrNotFound            = errors.New("customer_not_found")
	ErrInactive            = errors.New("customer_inactive")
	ErrCreditLimitExceeded = errors.New("credit_limit_exceeded")
)
