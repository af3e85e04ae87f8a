package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	accountdomain "github.com/fiskora/fiskora/internal/account/domain"
	auditdomain "github.com/fiskora/fiskora/internal/audit/domain"
	"github.com/fiskora/fiskora/internal/authorization"
	closingdomain "github.com/fiskora/fiskora/internal/closing/domain"
	companydomain "github.com/fiskora/fiskora/internal/company/domain"
	customerdomain "github.com/fiskora/fiskora/internal/customer/domain"
	documentdomain "github.com/fiskora/fiskora/internal/document/domain"
	fiscalyeardomain "github.com/fiskora/fiskora/internal/fiscalyear/domain"
	journaldomain "github.com/fiskora/fiskora/internal/journal/domain"
	"github.com/fiskora/fiskora/internal/money"
	seriesdomain "github.com/fiskora/fiskora/internal/series/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authorization.ErrInvalidActor):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, documentdomain.ErrDeliveryUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isCompanyValidationError(err),
		isFiscalYearValidationError(err),
		isSeriesValidationError(err),
		isAccountValidationError(err),
		isCustomerValidationError(err),
		isMoneyValidationError(err),
		isJournalValidationError(err),
		isDocumentValidationError(err),
		isAuditValidationError(err):
		return true
	default:
		return false
	}
}

func isCompanyValidationError(err error) bool {
	switch {
	case errors.Is(err, companydomain.ErrInvalidName),
		errors.Is(err, companydomain.ErrInvalidCurrency):
		return true
	default:
		return false
	}
}

func isFiscalYearValidationError(err error) bool {
	switch {
	case errors.Is(err, fiscalyeardomain.ErrInvalidCompany),
		errors.Is(err, fiscalyeardomain.ErrInvalidName),
		errors.Is(err, fiscalyeardomain.ErrInvalidDateRange):
		return true
	default:
		return false
	}
}

func isSeriesValidationError(err error) bool {
	switch {
	case errors.Is(err, seriesdomain.ErrInvalidCompany),
		errors.Is(err, seriesdomain.ErrInvalidDocType),
		errors.Is(err, seriesdomain.ErrInvalidPrefix):
		return true
	default:
		return false
	}
}

func isAccountValidationError(err error) bool {
	switch {
	case errors.Is(err, accountdomain.ErrInvalidCompany),
		errors.Is(err, accountdomain.ErrInvalidCode),
		errors.Is(err, accountdomain.ErrInvalidName),
		errors.Is(err, accountdomain.ErrInvalidType):
		return true
	default:
		return false
	}
}

func isCustomerValidationError(err error) bool {
	switch {
	case errors.Is(err, customerdomain.ErrInvalidCompany),
		errors.Is(err, customerdomain.ErrInvalidName),
		errors.Is(err, customerdomain.ErrInvalidEmail),
		errors.Is(err, customerdomain.ErrNegativeCreditLimit):
		return true
	default:
		return false
	}
}

func isMoneyValidationError(err error) bool {
	switch {
	case errors.Is(err, money.ErrNegativeQuantity),
		errors.Is(err, money.ErrNegativeUnitPrice),
		errors.Is(err, money.ErrInvalidDiscount),
		errors.Is(err, money.ErrInvalidTaxRate):
		return true
	default:
		return false
	}
}

func isJournalValidationError(err error) bool {
	switch {
	case errors.Is(err, journaldomain.ErrTooFewLines),
		errors.Is(err, journaldomain.ErrNegativeAmount),
		errors.Is(err, journaldomain.ErrBothSidesSet),
		errors.Is(err, journaldomain.ErrEmptyLine),
		errors.Is(err, journaldomain.ErrUnbalanced),
		errors.Is(err, journaldomain.ErrUnknownAccount),
		errors.Is(err, journaldomain.ErrInvalidPageToken):
		return true
	default:
		return false
	}
}

func isDocumentValidationError(err error) bool {
	switch {
	case errors.Is(err, documentdomain.ErrInvalidCompany),
		errors.Is(err, documentdomain.ErrInvalidType),
		errors.Is(err, documentdomain.ErrInvalidStatus),
		errors.Is(err, documentdomain.ErrNoLines),
		errors.Is(err, documentdomain.ErrInvalidPageToken):
		return true
	default:
		return false
	}
}

func isAuditValidationError(err error) bool {
	switch {
	case errors.Is(err, auditdomain.ErrInvalidCompany),
		errors.Is(err, auditdomain.ErrInvalidAction),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange):
		return true
	default:
		return false
	}
}

// isConflictError covers state machine violations: the request was well
// formed but the aggregate is not in a state that admits it.
func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, companydomain.ErrCodeExists),
		errors.Is(err, fiscalyeardomain.ErrPeriodClosed),
		errors.Is(err, fiscalyeardomain.ErrYearClosed),
		errors.Is(err, fiscalyeardomain.ErrYearOverlap),
		errors.Is(err, fiscalyeardomain.ErrNoPeriodForDate),
		errors.Is(err, seriesdomain.ErrExists),
		errors.Is(err, accountdomain.ErrCodeExists),
		errors.Is(err, accountdomain.ErrInactive),
		errors.Is(err, customerdomain.ErrInactive),
		errors.Is(err, customerdomain.ErrCreditLimitExceeded),
		errors.Is(err, journaldomain.ErrEntryPosted),
		errors.Is(err, journaldomain.ErrUnpostedInRange),
		errors.Is(err, documentdomain.ErrInvalidTransition),
		errors.Is(err, documentdomain.ErrNotConvertible),
		errors.Is(err, documentdomain.ErrEndOfChain),
		errors.Is(err, documentdomain.ErrNotDraft),
		errors.Is(err, documentdomain.ErrAlreadyPosted),
		errors.Is(err, documentdomain.ErrNotPosted),
		errors.Is(err, documentdomain.ErrAlreadyPaid),
		errors.Is(err, closingdomain.ErrRunActive),
		errors.Is(err, closingdomain.ErrRunLocked),
		errors.Is(err, closingdomain.ErrRunNotRunning),
		errors.Is(err, closingdomain.ErrStepOutOfOrder),
		errors.Is(err, closingdomain.ErrStepInProgress),
		errors.Is(err, closingdomain.ErrStepRequired),
		errors.Is(err, closingdomain.ErrStepDone):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, companydomain.ErrNotFound),
		errors.Is(err, fiscalyeardomain.ErrNotFound),
		errors.Is(err, fiscalyeardomain.ErrPeriodNotFound),
		errors.Is(err, seriesdomain.ErrNotFound),
		errors.Is(err, accountdomain.ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, journaldomain.ErrNotFound),
		errors.Is(err, documentdomain.ErrNotFound),
		errors.Is(err, closingdomain.ErrRunNotFound),
		errors.Is(err, closingdomain.ErrStepNotFound),
		errors.Is(err, closingdomain.ErrUnknownStepCode),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
