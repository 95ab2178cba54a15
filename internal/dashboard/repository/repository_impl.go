package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/invopad/invopad/internal/dashboard/domain"
	invoicedomain "github.com/invopad/invopad/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CountClients(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("clients").
		Where("account_id = ?", accountID).
		Count(&count).Error
	return count, err
}

func (r *repo) RollupInvoicesByStatus(ctx context.Context, db *gorm.DB, accountID snowflake.ID) ([]domain.StatusRollup, error) {
	var rollups []domain.StatusRollup
	err := db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("account_id = ?", accountID).
		Group("status").
		Scan(&rollups).Error
	if err != nil {
		return nil, err
	}
	return rollups, nil
}

// RollupOverdue aggregates sent invoices already past their due date.
// Overdue is never stored, so the rollup derives it the same way reads do.
func (r *repo) RollupOverdue(ctx context.Context, db *gorm.DB, accountID snowflake.ID, now time.Time) (domain.StatusRollup, error) {
	var rollup domain.StatusRollup
	err := db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("account_id = ? AND status = ? AND due_date < ?", accountID, invoicedomain.InvoiceStatusSent, now).
		Scan(&rollup).Error
	if err != nil {
		return domain.StatusRollup{}, err
	}
	rollup.Status = string(invoicedomain.InvoiceStatusOverdue)
	return rollup, nil
}
