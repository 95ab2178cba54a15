package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/invopad/invopad/internal/accountctx"
	"github.com/invopad/invopad/internal/clock"
	plandomain "github.com/invopad/invopad/internal/plan/domain"
	"github.com/invopad/invopad/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("subscription.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Get returns the account's subscription. Accounts that never subscribed
// read as an implicit active free enrolment.
func (s *Service) Get(ctx context.Context) (domain.Subscription, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.Subscription{}, domain.ErrInvalidAccount
	}

	sub, err := s.repo.FindByAccountID(ctx, s.db, accountID)
	if err != nil {
		return domain.Subscription{}, err
	}
	if sub == nil {
		return domain.DefaultSubscription(accountID, s.clock.Now()), nil
	}
	return *sub, nil
}

func (s *Service) Entitlements(ctx context.Context) (domain.Entitlements, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.Entitlements{}, domain.ErrInvalidAccount
	}

	sub, err := s.Get(ctx)
	if err != nil {
		return domain.Entitlements{}, err
	}

	clientCount, err := s.repo.CountClients(ctx, s.db, accountID)
	if err != nil {
		return domain.Entitlements{}, err
	}

	from, to := monthWindow(s.clock.Now())
	invoiceCount, err := s.repo.CountInvoicesCreatedBetween(ctx, s.db, accountID, from, to)
	if err != nil {
		return domain.Entitlements{}, err
	}

	return domain.Entitlements{
		PlanID:                sub.PlanID,
		Status:                sub.Status,
		Limits:                domain.EffectiveLimits(sub),
		ClientCount:           clientCount,
		InvoiceCountThisMonth: invoiceCount,
		CanCreateClient:       domain.CanCreateClient(sub, clientCount),
		CanCreateInvoice:      domain.CanCreateInvoice(sub, invoiceCount),
	}, nil
}

func (s *Service) ChangePlan(ctx context.Context, req domain.ChangePlanRequest) (domain.Subscription, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.Subscription{}, domain.ErrInvalidAccount
	}

	planID := plandomain.ID(strings.ToLower(strings.TrimSpace(req.PlanID)))
	plan, err := plandomain.Describe(planID)
	if err != nil {
		return domain.Subscription{}, err
	}

	now := s.clock.Now()
	existing, err := s.repo.FindByAccountID(ctx, s.db, accountID)
	if err != nil {
		return domain.Subscription{}, err
	}

	sub := domain.Subscription{
		ID:        s.genID.Generate(),
		AccountID: accountID,
		CreatedAt: now,
		StartDate: now,
	}
	if existing != nil {
		sub = *existing
	}

	sub.PlanID = planID
	sub.Status = domain.SubscriptionStatusActive
	sub.UpdatedAt = now
	if plan.PriceCents > 0 {
		next := now.AddDate(0, 1, 0)
		sub.NextBillingDate = &next
	} else {
		sub.NextBillingDate = nil
	}

	if err := s.repo.Upsert(ctx, s.db, &sub); err != nil {
		return domain.Subscription{}, err
	}

	s.log.Info("plan changed",
		zap.String("account_id", accountID.String()),
		zap.String("plan_id", string(planID)),
	)
	return sub, nil
}

// Cancel marks the subscription canceled. Entitlement degrades to free
// limits on the next check; nothing existing is deleted.
func (s *Service) Cancel(ctx context.Context) (domain.Subscription, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.Subscription{}, domain.ErrInvalidAccount
	}

	existing, err := s.repo.FindByAccountID(ctx, s.db, accountID)
	if err != nil {
		return domain.Subscription{}, err
	}
	if existing == nil {
		return domain.Subscription{}, domain.ErrNotSubscribed
	}

	existing.Status = domain.SubscriptionStatusCanceled
	existing.NextBillingDate = nil
	existing.UpdatedAt = s.clock.Now()

	if err := s.repo.Upsert(ctx, s.db, existing); err != nil {
		return domain.Subscription{}, err
	}
	return *existing, nil
}

// monthWindow returns the calendar month containing now, in UTC.
func monthWindow(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
