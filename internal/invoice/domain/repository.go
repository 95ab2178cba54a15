package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/invopad/invopad/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListInvoiceFilter struct {
	Status      InvoiceStatus
	ClientID    snowflake.ID
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Cursor      *ListCursor
}

// ListCursor is the decoded keyset position for cursor pagination.
type ListCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	ReplaceItems(ctx context.Context, db *gorm.DB, accountID, invoiceID snowflake.ID, items []InvoiceItem) error
	Delete(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*Invoice, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, accountID snowflake.ID, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, error)
	CountByClientID(ctx context.Context, db *gorm.DB, accountID, clientID snowflake.ID) (int64, error)
	NextInvoiceNumber(ctx context.Context, tx *gorm.DB, accountID snowflake.ID) (int64, error)
}
