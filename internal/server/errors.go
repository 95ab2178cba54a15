package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/invopad/invopad/internal/catalog/domain"
	clientdomain "github.com/invopad/invopad/internal/client/domain"
	dashboarddomain "github.com/invopad/invopad/internal/dashboard/domain"
	invoicedomain "github.com/invopad/invopad/internal/invoice/domain"
	plandomain "github.com/invopad/invopad/internal/plan/domain"
	subscriptiondomain "github.com/invopad/invopad/internal/subscription/domain"
	"github.com/invopad/invopad/pkg/db"
	"gorm.io/gorm"
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
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
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
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isPlanLimitError(err):
		return http.StatusForbidden, errorPayload{
			Type:    "plan_limit_reached",
			Message: "plan limit reached",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictErrorMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
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
	case isClientValidationError(err),
		isCatalogValidationError(err),
		isInvoiceValidationError(err),
		isSubscriptionValidationError(err):
		return true
	default:
		return false
	}
}

func isClientValidationError(err error) bool {
	switch err {
	case clientdomain.ErrInvalidAccount,
		clientdomain.ErrInvalidName,
		clientdomain.ErrInvalidEmail,
		clientdomain.ErrInvalidID,
		clientdomain.ErrInvalidPageToken:
		return true
	default:
		return false
	}
}

func isCatalogValidationError(err error) bool {
	switch err {
	case catalogdomain.ErrInvalidAccount,
		catalogdomain.ErrInvalidName,
		catalogdomain.ErrInvalidPrice,
		catalogdomain.ErrInvalidID,
		catalogdomain.ErrInvalidPageToken:
		return true
	default:
		return false
	}
}

func isInvoiceValidationError(err error) bool {
	switch err {
	case invoicedomain.ErrInvalidAccount,
		invoicedomain.ErrInvalidID,
		invoicedomain.ErrInvalidQuantity,
		invoicedomain.ErrInvalidPrice,
		invoicedomain.ErrInvalidTaxRate,
		invoicedomain.ErrInvalidDueDate,
		invoicedomain.ErrInvalidStatusFilter,
		invoicedomain.ErrInvalidPageToken,
		invoicedomain.ErrEmptyInvoice,
		invoicedomain.ErrUnknownClientReference,
		invoicedomain.ErrUnknownService,
		invoicedomain.ErrInactiveService:
		return true
	default:
		return false
	}
}

func isSubscriptionValidationError(err error) bool {
	switch err {
	case subscriptiondomain.ErrInvalidAccount,
		dashboarddomain.ErrInvalidAccount,
		plandomain.ErrUnknownPlan:
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, invoicedomain.ErrInvalidTransition),
		errors.Is(err, invoicedomain.ErrNotDraft),
		errors.Is(err, clientdomain.ErrClientReferenced),
		errors.Is(err, subscriptiondomain.ErrNotSubscribed):
		return true
	case db.IsDuplicateKeyErr(err):
		return true
	default:
		return false
	}
}

func conflictErrorMessage(err error) string {
	switch {
	case errors.Is(err, invoicedomain.ErrInvalidTransition):
		return "invalid status transition"
	case errors.Is(err, invoicedomain.ErrNotDraft):
		return "invoice is not a draft"
	case errors.Is(err, clientdomain.ErrClientReferenced):
		return "client has invoices"
	case errors.Is(err, subscriptiondomain.ErrNotSubscribed):
		return "no active subscription"
	case db.IsDuplicateKeyErr(err):
		return "duplicate resource"
	default:
		return "conflict"
	}
}

func isPlanLimitError(err error) bool {
	return errors.Is(err, clientdomain.ErrPlanLimitReached) ||
		errors.Is(err, invoicedomain.ErrPlanLimitReached)
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, clientdomain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
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
	case "empty_invoice":
		return "invoice requires at least one line item"
	case "unknown_client_reference":
		return "client does not exist"
	case "unknown_service_reference":
		return "service does not exist"
	case "inactive_service":
		return "service is inactive"
	case "invalid_page_token":
		return "malformed page token"
	default:
		return "invalid value"
	}
}
