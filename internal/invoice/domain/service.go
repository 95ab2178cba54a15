package domain

import (
	"context"
	"errors"
	"time"

	"github.com/invopad/invopad/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type LineItemInput struct {
	ServiceID   string `json:"service_id"`
	Description string `json:"description,omitempty"`
	Quantity    int64  `json:"quantity"`
}

type CreateInvoiceRequest struct {
	ClientID string          `json:"client_id"`
	TaxRate  decimal.Decimal `json:"tax_rate"`
	DueDate  time.Time       `json:"due_date"`
	Items    []LineItemInput `json:"items"`
}

type UpdateDraftRequest struct {
	InvoiceID string
	ClientID  string          `json:"client_id,omitempty"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	DueDate   time.Time       `json:"due_date"`
	Items     []LineItemInput `json:"items"`
}

type ListInvoiceRequest struct {
	PageToken   string
	PageSize    int
	Status      string
	ClientID    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// InvoiceView is an invoice with its time-derived effective status.
type InvoiceView struct {
	Invoice
	EffectiveStatus InvoiceStatus `json:"effective_status"`
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []InvoiceView `json:"invoices"`
}

//go:generate mockgen -source=service.go -destination=./mocks/mock_service.go -package=mocks
type Service interface {
	Create(context.Context, CreateInvoiceRequest) (Invoice, error)
	UpdateDraft(context.Context, UpdateDraftRequest) (Invoice, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(ctx context.Context, id string) (InvoiceView, error)
	Send(ctx context.Context, id string) (Invoice, error)
	MarkPaid(ctx context.Context, id string) (Invoice, error)
	Cancel(ctx context.Context, id string) (Invoice, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidAccount         = errors.New("invalid_account")
	ErrInvalidID              = errors.New("invalid_id")
	ErrInvalidQuantity        = errors.New("invalid_quantity")
	ErrInvalidPrice           = errors.New("invalid_price")
	ErrInvalidTaxRate         = errors.New("invalid_tax_rate")
	ErrInvalidDueDate         = errors.New("invalid_due_date")
	ErrInvalidStatusFilter    = errors.New("invalid_status_filter")
	ErrInvalidPageToken       = errors.New("invalid_page_token")
	ErrEmptyInvoice           = errors.New("empty_invoice")
	ErrInvalidTransition      = errors.New("invalid_transition")
	ErrUnknownClientReference = errors.New("unknown_client_reference")
	ErrUnknownService         = errors.New("unknown_service_reference")
	ErrInactiveService        = errors.New("inactive_service")
	ErrNotDraft               = errors.New("invoice_not_draft")
	ErrPlanLimitReached       = errors.New("plan_limit_reached")
	ErrNotFound               = errors.New("not_found")
)
