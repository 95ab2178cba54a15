package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/invopad/invopad/pkg/db/pagination"
)

type CreateClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type UpdateClientRequest struct {
	ID      string
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type ListClientRequest struct {
	PageToken   string
	PageSize    int
	Name        string
	Email       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListClientFilter struct {
	Name        string
	Email       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Cursor      *ListCursor
}

// ListCursor is the decoded keyset position for cursor pagination.
type ListCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListClientResponse struct {
	pagination.PageInfo
	Clients []Client `json:"clients"`
}

type Service interface {
	Create(context.Context, CreateClientRequest) (Client, error)
	List(context.Context, ListClientRequest) (ListClientResponse, error)
	GetByID(ctx context.Context, id string) (Client, error)
	Update(context.Context, UpdateClientRequest) (Client, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidAccount   = errors.New("invalid_account")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidEmail     = errors.New("invalid_email")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrNotFound         = errors.New("not_found")
	ErrClientReferenced = errors.New("client_referenced")
	ErrPlanLimitReached = errors.New("plan_limit_reached")
)
