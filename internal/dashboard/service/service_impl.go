package service

import (
	"context"

	"github.com/invopad/invopad/internal/accountctx"
	"github.com/invopad/invopad/internal/clock"
	"github.com/invopad/invopad/internal/dashboard/domain"
	invoicedomain "github.com/invopad/invopad/internal/invoice/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("dashboard.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.Summary{}, domain.ErrInvalidAccount
	}

	clientCount, err := s.repo.CountClients(ctx, s.db, accountID)
	if err != nil {
		return domain.Summary{}, err
	}

	rollups, err := s.repo.RollupInvoicesByStatus(ctx, s.db, accountID)
	if err != nil {
		return domain.Summary{}, err
	}

	overdue, err := s.repo.RollupOverdue(ctx, s.db, accountID, s.clock.Now())
	if err != nil {
		return domain.Summary{}, err
	}

	summary := domain.Summary{
		ClientCount:      clientCount,
		OverdueCount:     overdue.Count,
		OverdueTotal:     overdue.Total,
		PaidTotal:        decimal.Zero,
		OutstandingTotal: decimal.Zero,
	}

	for _, rollup := range rollups {
		summary.InvoiceCount += rollup.Count
		switch invoicedomain.InvoiceStatus(rollup.Status) {
		case invoicedomain.InvoiceStatusDraft:
			summary.DraftCount = rollup.Count
		case invoicedomain.InvoiceStatusSent:
			// Stored SENT includes effectively overdue rows; split them out.
			summary.SentCount = rollup.Count - overdue.Count
			summary.OutstandingTotal = summary.OutstandingTotal.Add(rollup.Total)
		case invoicedomain.InvoiceStatusPaid:
			summary.PaidCount = rollup.Count
			summary.PaidTotal = summary.PaidTotal.Add(rollup.Total)
		case invoicedomain.InvoiceStatusCanceled:
			summary.CanceledCount = rollup.Count
		}
	}

	return summary, nil
}
