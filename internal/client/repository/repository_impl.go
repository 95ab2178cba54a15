package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/invopad/invopad/internal/client/domain"
	"github.com/invopad/invopad/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Create(client).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).
		Model(&domain.Client{}).
		Where("account_id = ? AND id = ?", client.AccountID, client.ID).
		Updates(map[string]any{
			"name":       client.Name,
			"email":      client.Email,
			"phone":      client.Phone,
			"address":    client.Address,
			"updated_at": client.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, id).
		Delete(&domain.Client{}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, id).
		First(&client).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, accountID snowflake.ID, filter domain.ListClientFilter, page pagination.Pagination) ([]*domain.Client, error) {
	var clients []*domain.Client
	stmt := db.WithContext(ctx).
		Model(&domain.Client{}).
		Where("account_id = ?", accountID)
	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.Email != "" {
		stmt = stmt.Where("email = ?", filter.Email)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.CreatedTo)
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
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Client{}).
		Where("account_id = ?", accountID).
		Count(&count).Error
	return count, err
}
