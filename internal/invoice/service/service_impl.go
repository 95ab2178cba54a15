package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/invopad/invopad/internal/accountctx"
	catalogdomain "github.com/invopad/invopad/internal/catalog/domain"
	clientdomain "github.com/invopad/invopad/internal/client/domain"
	"github.com/invopad/invopad/internal/clock"
	"github.com/invopad/invopad/internal/invoice/domain"
	subscriptiondomain "github.com/invopad/invopad/internal/subscription/domain"
	"github.com/invopad/invopad/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository

	ClientRepo      clientdomain.Repository
	CatalogRepo     catalogdomain.Repository
	SubscriptionSvc subscriptiondomain.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository

	clientRepo      clientdomain.Repository
	catalogRepo     catalogdomain.Repository
	subscriptionSvc subscriptiondomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,

		clientRepo:      p.ClientRepo,
		catalogRepo:     p.CatalogRepo,
		subscriptionSvc: p.SubscriptionSvc,
	}
}

// Create opens a draft invoice. Line items snapshot the catalog unit price
// at this moment; the plan's invoices-per-month quota gates creation.
func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.Invoice{}, domain.ErrInvalidAccount
	}

	clientID, err := s.parseID(req.ClientID)
	if err != nil {
		return domain.Invoice{}, err
	}

	client, err := s.clientRepo.FindByID(ctx, s.db, accountID, clientID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if client == nil {
		return domain.Invoice{}, domain.ErrUnknownClientReference
	}

	ent, err := s.subscriptionSvc.Entitlements(ctx)
	if err != nil {
		return domain.Invoice{}, err
	}
	if !ent.CanCreateInvoice {
		return domain.Invoice{}, domain.ErrPlanLimitReached
	}

	now := s.clock.Now()
	if req.DueDate.Before(now) {
		return domain.Invoice{}, domain.ErrInvalidDueDate
	}

	invoiceID := s.genID.Generate()
	items, err := s.resolveItems(ctx, accountID, invoiceID, req.Items, now)
	if err != nil {
		return domain.Invoice{}, err
	}

	// Drafts may be empty; strict emptiness is enforced on send.
	totals, err := domain.ComputeInvoiceTotals(items, req.TaxRate, false)
	if err != nil {
		return domain.Invoice{}, err
	}

	invoice := domain.Invoice{
		ID:        invoiceID,
		AccountID: accountID,
		ClientID:  clientID,
		Status:    domain.InvoiceStatusDraft,
		Subtotal:  totals.Subtotal,
		TaxRate:   req.TaxRate,
		Tax:       totals.Tax,
		Total:     totals.Total,
		DueDate:   req.DueDate.UTC(),
		Items:     items,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.repo.NextInvoiceNumber(ctx, tx, accountID)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = fmt.Sprintf("INV-%05d", number)
		return s.repo.Insert(ctx, tx, &invoice)
	}); err != nil {
		return domain.Invoice{}, err
	}

	return invoice, nil
}

func (s *Service) UpdateDraft(ctx context.Context, req domain.UpdateDraftRequest) (domain.Invoice, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.Invoice{}, domain.ErrInvalidAccount
	}

	invoiceID, err := s.parseID(req.InvoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}

	var updated domain.Invoice
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.FindByIDForUpdate(ctx, tx, accountID, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return domain.ErrNotFound
		}
		if invoice.Status != domain.InvoiceStatusDraft {
			return domain.ErrNotDraft
		}

		now := s.clock.Now()
		if req.ClientID != "" {
			clientID, err := s.parseID(req.ClientID)
			if err != nil {
				return err
			}
			client, err := s.clientRepo.FindByID(ctx, tx, accountID, clientID)
			if err != nil {
				return err
			}
			if client == nil {
				return domain.ErrUnknownClientReference
			}
			invoice.ClientID = clientID
		}

		if req.DueDate.Before(invoice.CreatedAt) {
			return domain.ErrInvalidDueDate
		}

		items, err := s.resolveItems(ctx, accountID, invoice.ID, req.Items, now)
		if err != nil {
			return err
		}

		totals, err := domain.ComputeInvoiceTotals(items, req.TaxRate, false)
		if err != nil {
			return err
		}

		invoice.TaxRate = req.TaxRate
		invoice.Subtotal = totals.Subtotal
		invoice.Tax = totals.Tax
		invoice.Total = totals.Total
		invoice.DueDate = req.DueDate.UTC()
		invoice.UpdatedAt = now

		if err := s.repo.ReplaceItems(ctx, tx, accountID, invoice.ID, items); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, invoice); err != nil {
			return err
		}

		invoice.Items = items
		updated = *invoice
		return nil
	}); err != nil {
		return domain.Invoice{}, err
	}

	return updated, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.ListInvoiceResponse{}, domain.ErrInvalidAccount
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}

	statusFilter, err := parseStatusFilter(req.Status)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	cursor, err := decodeListCursor(req.PageToken)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	filter := domain.ListInvoiceFilter{
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
		Cursor:      cursor,
	}
	if req.ClientID != "" {
		clientID, err := s.parseID(req.ClientID)
		if err != nil {
			return domain.ListInvoiceResponse{}, err
		}
		filter.ClientID = clientID
	}

	// Overdue is derived, not stored: both SENT and OVERDUE filters query
	// stored SENT rows and the effective status decides afterwards.
	effectiveOnly := false
	if statusFilter != nil {
		filter.Status = *statusFilter
		if *statusFilter == domain.InvoiceStatusOverdue || *statusFilter == domain.InvoiceStatusSent {
			filter.Status = domain.InvoiceStatusSent
			effectiveOnly = true
		}
	}

	// Deriving can drop rows from a stored-SENT batch, so keep scanning
	// forward until a full page of matches (plus one to peek) is collected
	// or the stored rows run out. Without a derived filter the loop is a
	// single query.
	now := s.clock.Now()
	matched := make([]*domain.Invoice, 0, pageSize+1)
	for {
		filter.Cursor = cursor
		batch, err := s.repo.List(ctx, s.db, accountID, filter, pagination.Pagination{
			PageSize: pageSize,
		})
		if err != nil {
			return domain.ListInvoiceResponse{}, err
		}

		for _, inv := range batch {
			if effectiveOnly && domain.DeriveEffectiveStatus(*inv, now) != *statusFilter {
				continue
			}
			matched = append(matched, inv)
		}

		if len(batch) <= pageSize || len(matched) > pageSize {
			break
		}
		last := batch[len(batch)-1]
		cursor = &domain.ListCursor{ID: last.ID, CreatedAt: last.CreatedAt}
	}

	pageInfo := pagination.BuildCursorPageInfo(matched, pageSize, func(inv *domain.Invoice) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        inv.ID.String(),
			CreatedAt: inv.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})

	if len(matched) > pageSize {
		matched = matched[:pageSize]
	}

	views := make([]domain.InvoiceView, 0, len(matched))
	for _, inv := range matched {
		views = append(views, domain.InvoiceView{
			Invoice:         *inv,
			EffectiveStatus: domain.DeriveEffectiveStatus(*inv, now),
		})
	}

	return domain.ListInvoiceResponse{
		PageInfo: *pageInfo,
		Invoices: views,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.InvoiceView, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.InvoiceView{}, domain.ErrInvalidAccount
	}

	invoiceID, err := s.parseID(id)
	if err != nil {
		return domain.InvoiceView{}, err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, accountID, invoiceID)
	if err != nil {
		return domain.InvoiceView{}, err
	}
	if invoice == nil {
		return domain.InvoiceView{}, domain.ErrNotFound
	}

	return domain.InvoiceView{
		Invoice:         *invoice,
		EffectiveStatus: domain.DeriveEffectiveStatus(*invoice, s.clock.Now()),
	}, nil
}

func (s *Service) Send(ctx context.Context, id string) (domain.Invoice, error) {
	return s.transition(ctx, id, domain.EventSend)
}

func (s *Service) MarkPaid(ctx context.Context, id string) (domain.Invoice, error) {
	return s.transition(ctx, id, domain.EventMarkPaid)
}

func (s *Service) Cancel(ctx context.Context, id string) (domain.Invoice, error) {
	return s.transition(ctx, id, domain.EventCancel)
}

// Delete removes a draft. Posted invoices are never deleted and their
// numbers are never reallocated.
func (s *Service) Delete(ctx context.Context, id string) error {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.ErrInvalidAccount
	}

	invoiceID, err := s.parseID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.FindByIDForUpdate(ctx, tx, accountID, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return domain.ErrNotFound
		}
		if invoice.Status != domain.InvoiceStatusDraft {
			return domain.ErrNotDraft
		}
		return s.repo.Delete(ctx, tx, accountID, invoiceID)
	})
}

func (s *Service) transition(ctx context.Context, id string, event domain.Event) (domain.Invoice, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.Invoice{}, domain.ErrInvalidAccount
	}

	invoiceID, err := s.parseID(id)
	if err != nil {
		return domain.Invoice{}, err
	}

	var result domain.Invoice
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.FindByIDForUpdate(ctx, tx, accountID, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return domain.ErrNotFound
		}

		now := s.clock.Now()
		if event == domain.EventSend {
			client, err := s.clientRepo.FindByID(ctx, tx, accountID, invoice.ClientID)
			if err != nil {
				return err
			}
			if client == nil {
				return domain.ErrUnknownClientReference
			}
		}

		next, err := domain.Transition(*invoice, event, now)
		if err != nil {
			return err
		}

		invoice.Status = next
		invoice.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, invoice); err != nil {
			return err
		}

		s.log.Info("invoice transition",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("event", string(event)),
			zap.String("status", string(next)),
		)
		result = *invoice
		return nil
	}); err != nil {
		return domain.Invoice{}, err
	}

	return result, nil
}

// resolveItems materializes line inputs against the catalog, snapshotting
// the current unit price onto each item.
func (s *Service) resolveItems(ctx context.Context, accountID, invoiceID snowflake.ID, inputs []domain.LineItemInput, now time.Time) ([]domain.InvoiceItem, error) {
	items := make([]domain.InvoiceItem, 0, len(inputs))
	for _, input := range inputs {
		serviceID, err := snowflake.ParseString(strings.TrimSpace(input.ServiceID))
		if err != nil || serviceID == 0 {
			return nil, domain.ErrUnknownService
		}

		svc, err := s.catalogRepo.FindByID(ctx, s.db, accountID, serviceID)
		if err != nil {
			return nil, err
		}
		if svc == nil {
			return nil, domain.ErrUnknownService
		}
		if !svc.IsActive {
			return nil, domain.ErrInactiveService
		}

		total, err := domain.ComputeItemTotal(input.Quantity, svc.UnitPrice)
		if err != nil {
			return nil, err
		}

		description := strings.TrimSpace(input.Description)
		if description == "" {
			description = svc.Name
		}

		items = append(items, domain.InvoiceItem{
			ID:          s.genID.Generate(),
			AccountID:   accountID,
			InvoiceID:   invoiceID,
			ServiceID:   serviceID,
			Description: description,
			Quantity:    input.Quantity,
			UnitPrice:   svc.UnitPrice,
			Total:       total,
			CreatedAt:   now,
		})
	}
	return items, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func decodeListCursor(token string) (*domain.ListCursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	decoded, err := pagination.DecodeCursor(token)
	if err != nil {
		return nil, domain.ErrInvalidPageToken
	}
	createdAt, err := time.Parse(time.RFC3339Nano, decoded.CreatedAt)
	if err != nil {
		return nil, domain.ErrInvalidPageToken
	}
	id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidPageToken
	}

	return &domain.ListCursor{ID: id, CreatedAt: createdAt}, nil
}

func parseStatusFilter(value string) (*domain.InvoiceStatus, error) {
	status := strings.TrimSpace(value)
	if status == "" {
		return nil, nil
	}

	status = strings.ToUpper(status)
	switch domain.InvoiceStatus(status) {
	case domain.InvoiceStatusDraft,
		domain.InvoiceStatusSent,
		domain.InvoiceStatusPaid,
		domain.InvoiceStatusOverdue,
		domain.InvoiceStatusCanceled:
		parsed := domain.InvoiceStatus(status)
		return &parsed, nil
	default:
		return nil, domain.ErrInvalidStatusFilter
	}
}
