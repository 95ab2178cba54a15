package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/invopad/invopad/internal/invoice/domain"
	"github.com/invopad/invopad/internal/subscription/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByAccountID(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&sub).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"plan_id", "status", "start_date", "next_billing_date", "updated_at",
			}),
		}).
		Create(sub).Error
}

func (r *repo) CountClients(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("clients").
		Where("account_id = ?", accountID).
		Count(&count).Error
	return count, err
}

func (r *repo) CountInvoicesCreatedBetween(ctx context.Context, db *gorm.DB, accountID snowflake.ID, from, to time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("account_id = ? AND created_at >= ? AND created_at < ?", accountID, from, to).
		Count(&count).Error
	return count, err
}
