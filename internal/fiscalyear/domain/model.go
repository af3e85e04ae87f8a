package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// YearStatus tracks the lifecycle of a fiscal year.
type YearStatus string

const (
	YearStatusOpen    YearStatus = "open"
	YearStatusClosing YearStatus = "closing"
	YearStatusClosed  YearStatus = "closed"
)

// PeriodStatus tracks whether a period accepts postings.
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "open"
	PeriodStatusClosed PeriodStatus = "closed"
)

// FiscalYear is a bounded date range that can be independently closed
// to new postings.
type FiscalYear struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyID snowflake.ID `gorm:"not null;index" json:"company_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	StartDate time.Time    `gorm:"not null" json:"start_date"`
	EndDate   time.Time    `gorm:"not null" json:"end_date"`
	Status    YearStatus   `gorm:"type:text;not null;default:'open'" json:"status"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (FiscalYear) TableName() string { return "fiscal_years" }

// Period is one slice of a fiscal year. Periods partition the year;
// a closed period rejects journal postings dated inside it.
type Period struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	FiscalYearID snowflake.ID `gorm:"not null;index" json:"fiscal_year_id"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	StartDate    time.Time    `gorm:"not null" json:"start_date"`
	EndDate      time.Time    `gorm:"not null" json:"end_date"`
	Status       PeriodStatus `gorm:"type:text;not null;default:'open'" json:"status"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Period) TableName() string { return "periods" }

// Covers reports whether the given date falls inside the period.
func (p Period) Covers(date time.Time) bool {
	d := date.UTC()
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}
