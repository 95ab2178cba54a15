package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/invopad/invopad/internal/catalog/domain"
	"github.com/invopad/invopad/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, svc *domain.BillableService) error {
	return db.WithContext(ctx).Create(svc).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, svc *domain.BillableService) error {
	return db.WithContext(ctx).
		Model(&domain.BillableService{}).
		Where("account_id = ? AND id = ?", svc.AccountID, svc.ID).
		Updates(map[string]any{
			"name":        svc.Name,
			"description": svc.Description,
			"unit_price":  svc.UnitPrice,
			"is_active":   svc.IsActive,
			"updated_at":  svc.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*domain.BillableService, error) {
	var svc domain.BillableService
	err := db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, id).
		First(&svc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &svc, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, accountID snowflake.ID, filter domain.ListServiceFilter, page pagination.Pagination) ([]*domain.BillableService, error) {
	var services []*domain.BillableService
	stmt := db.WithContext(ctx).
		Model(&domain.BillableService{}).
		Where("account_id = ?", accountID)
	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.ActiveOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	if filter.Cursor != nil {
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID)
	}
	if page.PageSize > 0 {
		stmt = stmt.Limit(page.PageSize + 1)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}
