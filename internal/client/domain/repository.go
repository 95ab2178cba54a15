package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/invopad/invopad/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, client *Client) error
	Update(ctx context.Context, db *gorm.DB, client *Client) error
	Delete(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*Client, error)
	List(ctx context.Context, db *gorm.DB, accountID snowflake.ID, filter ListClientFilter, page pagination.Pagination) ([]*Client, error)
	Count(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (int64, error)
}
