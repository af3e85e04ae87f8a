package domain

import "errors"

var (
	ErrInvalidCompany   = errors.New("invalid_company")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidDateRange = errors.New("invalid_date_range")
	ErrNotFound         = errors.New("not_found")
	ErrPeriodNotFound   = errors.New("period_not_found")
	ErrPeriodClosed     = errors.New("period_closed")
	ErrYearClosed       = errors.New("fiscal_year_closed")
	ErrYearOverlap      = errors.New("fiscal_year_overlap")
	ErrNoPeriodForDate  = errors.New("no_period_for_date")
)
