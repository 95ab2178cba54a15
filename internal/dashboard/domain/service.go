// Package domain defines the account dashboard summary.
package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Summary is the headline metrics block for the account dashboard.
// Overdue is derived at read time from sent invoices past their due date.
type Summary struct {
	ClientCount   int64 `json:"client_count"`
	InvoiceCount  int64 `json:"invoice_count"`
	DraftCount    int64 `json:"draft_count"`
	SentCount     int64 `json:"sent_count"`
	PaidCount     int64 `json:"paid_count"`
	OverdueCount  int64 `json:"overdue_count"`
	CanceledCount int64 `json:"canceled_count"`

	PaidTotal        decimal.Decimal `json:"paid_total"`
	OutstandingTotal decimal.Decimal `json:"outstanding_total"`
	OverdueTotal     decimal.Decimal `json:"overdue_total"`
}

type Service interface {
	Summary(ctx context.Context) (Summary, error)
}

var ErrInvalidAccount = errors.New("invalid_account")
