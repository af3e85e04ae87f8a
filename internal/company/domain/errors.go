package domain

import "errors"

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrNotFound        = errors.New("not_found")
	ErrCodeExists      = errors.New("company_code_exists")
)
