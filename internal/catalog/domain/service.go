package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/invopad/invopad/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type CreateServiceRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type UpdateServiceRequest struct {
	ID          string
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IsActive    *bool           `json:"is_active,omitempty"`
}

type ListServiceRequest struct {
	PageToken  string
	PageSize   int
	Name       string
	ActiveOnly bool
}

type ListServiceFilter struct {
	Name       string
	ActiveOnly bool
	Cursor     *ListCursor
}

// ListCursor is the decoded keyset position for cursor pagination.
type ListCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListServiceResponse struct {
	pagination.PageInfo
	Services []BillableService `json:"services"`
}

type Service interface {
	Create(context.Context, CreateServiceRequest) (BillableService, error)
	List(context.Context, ListServiceRequest) (ListServiceResponse, error)
	GetByID(ctx context.Context, id string) (BillableService, error)
	Update(context.Context, UpdateServiceRequest) (BillableService, error)
}

var (
	ErrInvalidAccount   = errors.New("invalid_account")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidPrice     = errors.New("invalid_price")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrNotFound         = errors.New("not_found")
)
