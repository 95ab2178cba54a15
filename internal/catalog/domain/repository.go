package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/invopad/invopad/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, svc *BillableService) error
	Update(ctx context.Context, db *gorm.DB, svc *BillableService) error
	FindByID(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*BillableService, error)
	List(ctx context.Context, db *gorm.DB, accountID snowflake.ID, filter ListServiceFilter, page pagination.Pagination) ([]*BillableService, error)
}
