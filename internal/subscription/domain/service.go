package domain

import (
	"context"
	"errors"

	plandomain "github.com/invopad/invopad/internal/plan/domain"
)

// Entitlements is the advisory creation-gating snapshot the UI consults
// before dispatching a create request. The remote store still enforces
// limits on write; this is the client-side check.
type Entitlements struct {
	PlanID                plandomain.ID      `json:"plan_id"`
	Status                SubscriptionStatus `json:"status"`
	Limits                plandomain.Limits  `json:"limits"`
	ClientCount           int64              `json:"client_count"`
	InvoiceCountThisMonth int64              `json:"invoice_count_this_month"`
	CanCreateClient       bool               `json:"can_create_client"`
	CanCreateInvoice      bool               `json:"can_create_invoice"`
}

type ChangePlanRequest struct {
	PlanID string `json:"plan_id"`
}

type Service interface {
	Get(ctx context.Context) (Subscription, error)
	Entitlements(ctx context.Context) (Entitlements, error)
	ChangePlan(ctx context.Context, req ChangePlanRequest) (Subscription, error)
	Cancel(ctx context.Context) (Subscription, error)
}

var (
	ErrInvalidAccount = errors.New("invalid_account")
	ErrNotSubscribed  = errors.New("not_subscribed")
)
