package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/invopad/invopad/internal/accountctx"
	"github.com/invopad/invopad/internal/client/domain"
	"github.com/invopad/invopad/internal/clock"
	invoicedomain "github.com/invopad/invopad/internal/invoice/domain"
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

	InvoiceRepo     invoicedomain.Repository
	SubscriptionSvc subscriptiondomain.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository

	invoiceRepo     invoicedomain.Repository
	subscriptionSvc subscriptiondomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,

		invoiceRepo:     p.InvoiceRepo,
		subscriptionSvc: p.SubscriptionSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (domain.Client, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.Client{}, domain.ErrInvalidAccount
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Client{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Client{}, domain.ErrInvalidEmail
	}

	// Advisory plan gate; the unique/limit enforcement of record stays
	// with the store.
	ent, err := s.subscriptionSvc.Entitlements(ctx)
	if err != nil {
		return domain.Client{}, err
	}
	if !ent.CanCreateClient {
		return domain.Client{}, domain.ErrPlanLimitReached
	}

	now := s.clock.Now()
	client := domain.Client{
		ID:        s.genID.Generate(),
		AccountID: accountID,
		Name:      name,
		Email:     email,
		Phone:     optional(req.Phone),
		Address:   optional(req.Address),
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		return domain.Client{}, err
	}

	return client, nil
}

func (s *Service) List(ctx context.Context, req domain.ListClientRequest) (domain.ListClientResponse, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.ListClientResponse{}, domain.ErrInvalidAccount
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}

	cursor, err := decodeListCursor(req.PageToken)
	if err != nil {
		return domain.ListClientResponse{}, err
	}

	filter := domain.ListClientFilter{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
		Cursor:      cursor,
	}

	clients, err := s.repo.List(ctx, s.db, accountID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListClientResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(clients, pageSize, func(c *domain.Client) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        c.ID.String(),
			CreatedAt: c.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})

	if len(clients) > pageSize {
		clients = clients[:pageSize]
	}

	out := make([]domain.Client, 0, len(clients))
	for _, c := range clients {
		out = append(out, *c)
	}

	return domain.ListClientResponse{
		PageInfo: *pageInfo,
		Clients:  out,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Client, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.Client{}, domain.ErrInvalidAccount
	}

	clientID, err := s.parseID(id)
	if err != nil {
		return domain.Client{}, err
	}

	client, err := s.repo.FindByID(ctx, s.db, accountID, clientID)
	if err != nil {
		return domain.Client{}, err
	}
	if client == nil {
		return domain.Client{}, domain.ErrNotFound
	}
	return *client, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateClientRequest) (domain.Client, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.Client{}, domain.ErrInvalidAccount
	}

	clientID, err := s.parseID(req.ID)
	if err != nil {
		return domain.Client{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Client{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Client{}, domain.ErrInvalidEmail
	}

	client, err := s.repo.FindByID(ctx, s.db, accountID, clientID)
	if err != nil {
		return domain.Client{}, err
	}
	if client == nil {
		return domain.Client{}, domain.ErrNotFound
	}

	client.Name = name
	client.Email = email
	client.Phone = optional(req.Phone)
	client.Address = optional(req.Address)
	client.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, client); err != nil {
		return domain.Client{}, err
	}
	return *client, nil
}

// Delete removes a client unless any invoice still references it.
func (s *Service) Delete(ctx context.Context, id string) error {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.ErrInvalidAccount
	}

	clientID, err := s.parseID(id)
	if err != nil {
		return err
	}

	client, err := s.repo.FindByID(ctx, s.db, accountID, clientID)
	if err != nil {
		return err
	}
	if client == nil {
		return domain.ErrNotFound
	}

	referenced, err := s.invoiceRepo.CountByClientID(ctx, s.db, accountID, clientID)
	if err != nil {
		return err
	}
	if referenced > 0 {
		return domain.ErrClientReferenced
	}

	return s.repo.Delete(ctx, s.db, accountID, clientID)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
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
