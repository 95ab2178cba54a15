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
	catalogdomain "github.com/invopad/invopad/internal/catalog/domain"
	"github.com/invopad/invopad/internal/client/domain"
	"github.com/invopad/invopad/internal/client/repository"
	"github.com/invopad/invopad/internal/clock"
	invoicedomain "github.com/invopad/invopad/internal/invoice/domain"
	invoicerepository "github.com/invopad/invopad/internal/invoice/repository"
	subscriptiondomain "github.com/invopad/invopad/internal/subscription/domain"
	subscriptionrepository "github.com/invopad/invopad/internal/subscription/repository"
	subscriptionservice "github.com/invopad/invopad/internal/subscription/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type env struct {
	svc             domain.Service
	subscriptionSvc subscriptiondomain.Service
	db              *gorm.DB
	node            *snowflake.Node
	accountID       snowflake.ID
	ctx             context.Context
}

func setupEnv(t *testing.T) *env {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Client{},
		&catalogdomain.BillableService{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&invoicedomain.InvoiceSequence{},
		&subscriptiondomain.Subscription{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))

	subscriptionSvc := subscriptionservice.New(subscriptionservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  subscriptionrepository.Provide(),
	})

	svc := New(Params{
		DB:              db,
		Log:             zap.NewNop(),
		GenID:           node,
		Clock:           fake,
		Repo:            repository.Provide(),
		InvoiceRepo:     invoicerepository.Provide(),
		SubscriptionSvc: subscriptionSvc,
	})

	accountID := node.Generate()
	return &env{
		svc:             svc,
		subscriptionSvc: subscriptionSvc,
		db:              db,
		node:            node,
		accountID:       accountID,
		ctx:             accountctx.WithAccountID(context.Background(), int64(accountID)),
	}
}

func TestCreateClientValidation(t *testing.T) {
	e := setupEnv(t)

	_, err := e.svc.Create(e.ctx, domain.CreateClientRequest{Name: "", Email: "a@b.test"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = e.svc.Create(e.ctx, domain.CreateClientRequest{Name: "Acme", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = e.svc.Create(context.Background(), domain.CreateClientRequest{Name: "Acme", Email: "a@b.test"})
	assert.ErrorIs(t, err, domain.ErrInvalidAccount)
}

func TestCreateClientFreePlanQuota(t *testing.T) {
	e := setupEnv(t)

	for i := 0; i < 3; i++ {
		_, err := e.svc.Create(e.ctx, domain.CreateClientRequest{
			Name:  fmt.Sprintf("Client %d", i+1),
			Email: fmt.Sprintf("client%d@example.com", i+1),
		})
		require.NoError(t, err, "client %d", i+1)
	}

	_, err := e.svc.Create(e.ctx, domain.CreateClientRequest{Name: "One Too Many", Email: "extra@example.com"})
	assert.ErrorIs(t, err, domain.ErrPlanLimitReached)

	// Upgrading lifts the cap.
	_, err = e.subscriptionSvc.ChangePlan(e.ctx, subscriptiondomain.ChangePlanRequest{PlanID: "pro"})
	require.NoError(t, err)

	_, err = e.svc.Create(e.ctx, domain.CreateClientRequest{Name: "One Too Many", Email: "extra@example.com"})
	assert.NoError(t, err)
}

func TestUpdateClient(t *testing.T) {
	e := setupEnv(t)

	created, err := e.svc.Create(e.ctx, domain.CreateClientRequest{Name: "Acme", Email: "a@b.test"})
	require.NoError(t, err)

	updated, err := e.svc.Update(e.ctx, domain.UpdateClientRequest{
		ID:    created.ID.String(),
		Name:  "Acme Corp",
		Email: "billing@acme.test",
		Phone: "+1 555 0100",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, "+1 555 0100", *updated.Phone)

	_, err = e.svc.Update(e.ctx, domain.UpdateClientRequest{
		ID:    e.node.Generate().String(),
		Name:  "Ghost",
		Email: "ghost@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteClientReferencedByInvoice(t *testing.T) {
	e := setupEnv(t)

	created, err := e.svc.Create(e.ctx, domain.CreateClientRequest{Name: "Acme", Email: "a@b.test"})
	require.NoError(t, err)

	invoiceID := e.node.Generate()
	require.NoError(t, e.db.Create(&invoicedomain.Invoice{
		ID:            invoiceID,
		AccountID:     e.accountID,
		InvoiceNumber: "INV-00001",
		ClientID:      created.ID,
		Status:        invoicedomain.InvoiceStatusDraft,
		DueDate:       time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}).Error)

	assert.ErrorIs(t, e.svc.Delete(e.ctx, created.ID.String()), domain.ErrClientReferenced)

	require.NoError(t, e.db.Delete(&invoicedomain.Invoice{}, "id = ?", invoiceID).Error)
	assert.NoError(t, e.svc.Delete(e.ctx, created.ID.String()))

	_, err = e.svc.GetByID(e.ctx, created.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
