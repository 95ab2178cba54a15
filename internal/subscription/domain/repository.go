package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByAccountID(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (*Subscription, error)
	Upsert(ctx context.Context, db *gorm.DB, sub *Subscription) error
	CountClients(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (int64, error)
	CountInvoicesCreatedBetween(ctx context.Context, db *gorm.DB, accountID snowflake.ID, from, to time.Time) (int64, error)
}
