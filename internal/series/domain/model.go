package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Series is a named numbering sequence (prefix + counter) assigned to a
// document type. Numbers are allocated under a row lock so no two
// documents of the same company and type share one.
type Series struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyID  snowflake.ID `gorm:"not null;index;uniqueIndex:ux_series_company_doctype,priority:1" json:"company_id"`
	DocType    string       `gorm:"type:text;not null;uniqueIndex:ux_series_company_doctype,priority:2" json:"doc_type"`
	Prefix     string       `gorm:"type:text;not null" json:"prefix"`
	NextNumber int64        `gorm:"not null;default:1" json:"next_number"`
	Padding    int          `gorm:"not null;default:6" json:"padding"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Series) TableName() string { return "series" }

// Format renders a counter value using the series prefix and padding.
func (s Series) Format(n int64) string {
	return fmt.Sprintf("%s-%0*d", s.Prefix, s.Padding, n)
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidDocType = errors.New("invalid_doc_type")
	ErrInvalidPrefix  = errors.New("invalid_prefix")
	ErrNotFound       = errors.New("series_not_found")
	ErrExists         = errors.New("series_exists")
)
