package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatusRollup is one row of the grouped invoice aggregate.
type StatusRollup struct {
	Status string
	Count  int64
	Total  decimal.Decimal
}

type Repository interface {
	CountClients(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (int64, error)
	RollupInvoicesByStatus(ctx context.Context, db *gorm.DB, accountID snowflake.ID) ([]StatusRollup, error)
	RollupOverdue(ctx context.Context, db *gorm.DB, accountID snowflake.ID, now time.Time) (StatusRollup, error)
}
