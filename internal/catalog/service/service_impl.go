package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/invopad/invopad/internal/accountctx"
	"github.com/invopad/invopad/internal/catalog/domain"
	"github.com/invopad/invopad/internal/clock"
	"github.com/invopad/invopad/pkg/db/pagination"
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
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateServiceRequest) (domain.BillableService, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.BillableService{}, domain.ErrInvalidAccount
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.BillableService{}, domain.ErrInvalidName
	}
	if req.UnitPrice.IsNegative() {
		return domain.BillableService{}, domain.ErrInvalidPrice
	}

	now := s.clock.Now()
	svc := domain.BillableService{
		ID:          s.genID.Generate(),
		AccountID:   accountID,
		Name:        name,
		Description: optional(req.Description),
		UnitPrice:   req.UnitPrice.Round(2),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &svc); err != nil {
		return domain.BillableService{}, err
	}
	return svc, nil
}

func (s *Service) List(ctx context.Context, req domain.ListServiceRequest) (domain.ListServiceResponse, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.ListServiceResponse{}, domain.ErrInvalidAccount
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}

	cursor, err := decodeListCursor(req.PageToken)
	if err != nil {
		return domain.ListServiceResponse{}, err
	}

	services, err := s.repo.List(ctx, s.db, accountID, domain.ListServiceFilter{
		Name:       strings.TrimSpace(req.Name),
		ActiveOnly: req.ActiveOnly,
		Cursor:     cursor,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListServiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(services, pageSize, func(svc *domain.BillableService) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        svc.ID.String(),
			CreatedAt: svc.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})

	if len(services) > pageSize {
		services = services[:pageSize]
	}

	out := make([]domain.BillableService, 0, len(services))
	for _, svc := range services {
		out = append(out, *svc)
	}

	return domain.ListServiceResponse{
		PageInfo: *pageInfo,
		Services: out,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.BillableService, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.BillableService{}, domain.ErrInvalidAccount
	}

	serviceID, err := s.parseID(id)
	if err != nil {
		return domain.BillableService{}, err
	}

	svc, err := s.repo.FindByID(ctx, s.db, accountID, serviceID)
	if err != nil {
		return domain.BillableService{}, err
	}
	if svc == nil {
		return domain.BillableService{}, domain.ErrNotFound
	}
	return *svc, nil
}

// Update edits the catalog entry. Posted invoice items keep the unit price
// they were created with; only future invoices see the new price.
func (s *Service) Update(ctx context.Context, req domain.UpdateServiceRequest) (domain.BillableService, error) {
	accountID, ok := accountctx.AccountIDFromContext(ctx)
	if !ok || accountID == 0 {
		return domain.BillableService{}, domain.ErrInvalidAccount
	}

	serviceID, err := s.parseID(req.ID)
	if err != nil {
		return domain.BillableService{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.BillableService{}, domain.ErrInvalidName
	}
	if req.UnitPrice.IsNegative() {
		return domain.BillableService{}, domain.ErrInvalidPrice
	}

	svc, err := s.repo.FindByID(ctx, s.db, accountID, serviceID)
	if err != nil {
		return domain.BillableService{}, err
	}
	if svc == nil {
		return domain.BillableService{}, domain.ErrNotFound
	}

	svc.Name = name
	svc.Description = optional(req.Description)
	svc.UnitPrice = req.UnitPrice.Round(2)
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
	svc.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, svc); err != nil {
		return domain.BillableService{}, err
	}
	return *svc, nil
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
