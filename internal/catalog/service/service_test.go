package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/invopad/invopad/internal/accountctx"
	"github.com/invopad/invopad/internal/catalog/domain"
	"github.com/invopad/invopad/internal/catalog/repository"
	"github.com/invopad/invopad/internal/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (domain.Service, *clock.FakeClock, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.BillableService{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
	})
	return svc, fake, node
}

func TestCreateServiceValidation(t *testing.T) {
	svc, _, node := setupService(t)
	ctx := accountctx.WithAccountID(context.Background(), int64(node.Generate()))

	_, err := svc.Create(ctx, domain.CreateServiceRequest{Name: "  ", UnitPrice: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateServiceRequest{Name: "Consulting", UnitPrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Create(context.Background(), domain.CreateServiceRequest{Name: "Consulting", UnitPrice: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, domain.ErrInvalidAccount)
}

func TestCreateServiceRoundsPrice(t *testing.T) {
	svc, _, node := setupService(t)
	ctx := accountctx.WithAccountID(context.Background(), int64(node.Generate()))

	created, err := svc.Create(ctx, domain.CreateServiceRequest{
		Name:      "Consulting",
		UnitPrice: decimal.RequireFromString("79.999"),
	})
	require.NoError(t, err)
	assert.True(t, created.UnitPrice.Equal(decimal.RequireFromString("80.00")), "price %s", created.UnitPrice)
	assert.True(t, created.IsActive)
}

func TestUpdateService(t *testing.T) {
	svc, _, node := setupService(t)
	ctx := accountctx.WithAccountID(context.Background(), int64(node.Generate()))

	created, err := svc.Create(ctx, domain.CreateServiceRequest{Name: "Design", UnitPrice: decimal.NewFromInt(50)})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(ctx, domain.UpdateServiceRequest{
		ID:        created.ID.String(),
		Name:      "Design Sprint",
		UnitPrice: decimal.NewFromInt(75),
		IsActive:  &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Design Sprint", updated.Name)
	assert.True(t, updated.UnitPrice.Equal(decimal.NewFromInt(75)))
	assert.False(t, updated.IsActive)

	fetched, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.False(t, fetched.IsActive)

	_, err = svc.Update(ctx, domain.UpdateServiceRequest{
		ID:        node.Generate().String(),
		Name:      "Ghost",
		UnitPrice: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListServicesActiveOnly(t *testing.T) {
	svc, _, node := setupService(t)
	ctx := accountctx.WithAccountID(context.Background(), int64(node.Generate()))

	created, err := svc.Create(ctx, domain.CreateServiceRequest{Name: "Retired", UnitPrice: decimal.NewFromInt(10)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateServiceRequest{Name: "Active", UnitPrice: decimal.NewFromInt(20)})
	require.NoError(t, err)

	inactive := false
	_, err = svc.Update(ctx, domain.UpdateServiceRequest{
		ID:        created.ID.String(),
		Name:      "Retired",
		UnitPrice: decimal.NewFromInt(10),
		IsActive:  &inactive,
	})
	require.NoError(t, err)

	resp, err := svc.List(ctx, domain.ListServiceRequest{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, resp.Services, 1)
	assert.Equal(t, "Active", resp.Services[0].Name)

	resp, err = svc.List(ctx, domain.ListServiceRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Services, 2)
}

func TestListServicesCursorPagination(t *testing.T) {
	svc, fake, node := setupService(t)
	ctx := accountctx.WithAccountID(context.Background(), int64(node.Generate()))

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, domain.CreateServiceRequest{
			Name:      fmt.Sprintf("Service %d", i+1),
			UnitPrice: decimal.NewFromInt(int64(10 * (i + 1))),
		})
		require.NoError(t, err)
		fake.Advance(time.Second)
	}

	first, err := svc.List(ctx, domain.ListServiceRequest{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first.Services, 2)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)
	// Newest first.
	assert.Equal(t, "Service 3", first.Services[0].Name)
	assert.Equal(t, "Service 2", first.Services[1].Name)

	second, err := svc.List(ctx, domain.ListServiceRequest{PageSize: 2, PageToken: first.NextPageToken})
	require.NoError(t, err)
	require.Len(t, second.Services, 1)
	assert.False(t, second.HasMore)
	assert.Equal(t, "Service 1", second.Services[0].Name)
}

func TestListServicesRejectsMalformedPageToken(t *testing.T) {
	svc, _, node := setupService(t)
	ctx := accountctx.WithAccountID(context.Background(), int64(node.Generate()))

	_, err := svc.List(ctx, domain.ListServiceRequest{PageToken: "not-base64!"})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}
