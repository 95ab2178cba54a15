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
	catalogrepository "github.com/invopad/invopad/internal/catalog/repository"
	clientdomain "github.com/invopad/invopad/internal/client/domain"
	clientrepository "github.com/invopad/invopad/internal/client/repository"
	"github.com/invopad/invopad/internal/clock"
	"github.com/invopad/invopad/internal/invoice/domain"
	"github.com/invopad/invopad/internal/invoice/repository"
	subscriptiondomain "github.com/invopad/invopad/internal/subscription/domain"
	subscriptionrepository "github.com/invopad/invopad/internal/subscription/repository"
	subscriptionservice "github.com/invopad/invopad/internal/subscription/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type env struct {
	svc             domain.Service
	subscriptionSvc subscriptiondomain.Service
	db              *gorm.DB
	clock           *clock.FakeClock
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
		&clientdomain.Client{},
		&catalogdomain.BillableService{},
		&domain.Invoice{},
		&domain.InvoiceItem{},
		&domain.InvoiceSequence{},
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
		ClientRepo:      clientrepository.Provide(),
		CatalogRepo:     catalogrepository.Provide(),
		SubscriptionSvc: subscriptionSvc,
	})

	accountID := node.Generate()
	return &env{
		svc:             svc,
		subscriptionSvc: subscriptionSvc,
		db:              db,
		clock:           fake,
		node:            node,
		accountID:       accountID,
		ctx:             accountctx.WithAccountID(context.Background(), int64(accountID)),
	}
}

func (e *env) seedClient(t *testing.T) snowflake.ID {
	t.Helper()
	id := e.node.Generate()
	require.NoError(t, e.db.Create(&clientdomain.Client{
		ID:        id,
		AccountID: e.accountID,
		Name:      "Acme Corp",
		Email:     "billing@acme.test",
	}).Error)
	return id
}

func (e *env) seedService(t *testing.T, price string, active bool) snowflake.ID {
	t.Helper()
	id := e.node.Generate()
	require.NoError(t, e.db.Create(&catalogdomain.BillableService{
		ID:        id,
		AccountID: e.accountID,
		Name:      "Consulting",
		UnitPrice: decimal.RequireFromString(price),
		IsActive:  active,
	}).Error)
	return id
}

func TestCreateInvoiceComputesTotalsAndNumber(t *testing.T) {
	e := setupEnv(t)
	clientID := e.seedClient(t)
	svcA := e.seedService(t, "75.00", true)
	svcB := e.seedService(t, "120.00", true)

	inv, err := e.svc.Create(e.ctx, domain.CreateInvoiceRequest{
		ClientID: clientID.String(),
		TaxRate:  decimal.RequireFromString("20"),
		DueDate:  e.clock.Now().AddDate(0, 0, 14),
		Items: []domain.LineItemInput{
			{ServiceID: svcA.String(), Quantity: 2},
			{ServiceID: svcB.String(), Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-00001", inv.InvoiceNumber)
	assert.Equal(t, domain.InvoiceStatusDraft, inv.Status)
	assert.True(t, inv.Subtotal.Equal(decimal.RequireFromString("270.00")), "subtotal %s", inv.Subtotal)
	assert.True(t, inv.Tax.Equal(decimal.RequireFromString("54.00")), "tax %s", inv.Tax)
	assert.True(t, inv.Total.Equal(decimal.RequireFromString("324.00")), "total %s", inv.Total)
	require.Len(t, inv.Items, 2)
	assert.Equal(t, "Consulting", inv.Items[0].Description)

	second, err := e.svc.Create(e.ctx, domain.CreateInvoiceRequest{
		ClientID: clientID.String(),
		TaxRate:  decimal.Zero,
		DueDate:  e.clock.Now().AddDate(0, 0, 14),
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-00002", second.InvoiceNumber)
}

func TestCreateInvoiceSnapshotsUnitPrice(t *testing.T) {
	e := setupEnv(t)
	clientID := e.seedClient(t)
	svcID := e.seedService(t, "50.00", true)

	inv, err := e.svc.Create(e.ctx, domain.CreateInvoiceRequest{
		ClientID: clientID.String(),
		TaxRate:  decimal.Zero,
		DueDate:  e.clock.Now().AddDate(0, 0, 7),
		Items:    []domain.LineItemInput{{ServiceID: svcID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	// Raising the catalog price must not rewrite the created invoice.
	require.NoError(t, e.db.Model(&catalogdomain.BillableService{}).
		Where("id = ?", svcID).
		Update("unit_price", decimal.RequireFromString("80.00")).Error)

	view, err := e.svc.GetByID(e.ctx, inv.ID.String())
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.True(t, view.Items[0].UnitPrice.Equal(decimal.RequireFromString("50.00")),
		"unit price %s", view.Items[0].UnitPrice)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("50.00")))
}

func TestCreateInvoiceValidation(t *testing.T) {
	e := setupEnv(t)
	clientID := e.seedClient(t)
	activeSvc := e.seedService(t, "10.00", true)
	inactiveSvc := e.seedService(t, "10.00", false)
	due := e.clock.Now().AddDate(0, 0, 7)

	_, err := e.svc.Create(e.ctx, domain.CreateInvoiceRequest{
		ClientID: e.node.Generate().String(),
		DueDate:  due,
	})
	assert.ErrorIs(t, err, domain.ErrUnknownClientReference)

	_, err = e.svc.Create(e.ctx, domain.CreateInvoiceRequest{
		ClientID: clientID.String(),
		DueDate:  due,
		Items:    []domain.LineItemInput{{ServiceID: inactiveSvc.String(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInactiveService)

	_, err = e.svc.Create(e.ctx, domain.CreateInvoiceRequest{
		ClientID: clientID.String(),
		DueDate:  due,
		Items:    []domain.LineItemInput{{ServiceID: e.node.Generate().String(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownService)

	_, err = e.svc.Create(e.ctx, domain.CreateInvoiceRequest{
		ClientID: clientID.String(),
		DueDate:  e.clock.Now().Add(-time.Hour),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDueDate)

	_, err = e.svc.Create(e.ctx, domain.CreateInvoiceRequest{
		ClientID: clientID.String(),
		DueDate:  due,
		TaxRate:  decimal.RequireFromString("101"),
		Items:    []domain.LineItemInput{{ServiceID: activeSvc.String(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTaxRate)
}

func TestInvoiceLifecycle(t *testing.T) {
	e := setupEnv(t)
	clientID := e.seedClient(t)
	svcID := e.seedService(t, "100.00", true)

	inv, err := e.svc.Create(e.ctx, domain.CreateInvoiceRequest{
		ClientID: clientID.String(),
		TaxRate:  decimal.Zero,
		DueDate:  e.clock.Now().AddDate(0, 0, 7),
		Items:    []domain.LineItemInput{{ServiceID: svcID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	sent, err := e.svc.Send(e.ctx, inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, sent.Status)

	// Sent invoices are no longer editable or deletable.
	_, err = e.svc.UpdateDraft(e.ctx, domain.UpdateDraftRequest{
		InvoiceID: inv.ID.String(),
		TaxRate:   decimal.Zero,
		DueDate:   e.clock.Now().AddDate(0, 0, 7),
	})
	assert.ErrorIs(t, err, domain.ErrNotDraft)
	assert.ErrorIs(t, e.svc.Delete(e.ctx, inv.ID.String()), domain.ErrNotDraft)

	paid, err := e.svc.MarkPaid(e.ctx, inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)

	_, err = e.svc.Cancel(e.ctx, inv.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSendEmptyDraftRejected(t *testing.T) {
	e := setupEnv(t)
	clientID := e.seedClient(t)

	inv, err := e.svc.Create(e.ctx, domain.CreateInvoiceRequest{
		ClientID: clientID.String(),
		TaxRate:  decimal.Zero,
		DueDate:  e.clock.Now().AddDate(0, 0, 7),
	})
	require.NoError(t, err)

	_, err = e.svc.Send(e.ctx, inv.ID.String())
	assert.ErrorIs(t, err, domain.ErrEmptyInvoice)
}

func TestDeletedDraftNumberNotReused(t *testing.T) {
	e := setupEnv(t)
	clientID := e.seedClient(t)

	first, err := e.svc.Create(e.ctx, domain.CreateInvoiceRequest{
		ClientID: clientID.String(),
		TaxRate:  decimal.Zero,
		DueDate:  e.clock.Now().AddDate(0, 0, 7),
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-00001", first.InvoiceNumber)

	require.NoError(t, e.svc.Delete(e.ctx, first.ID.String()))

	second, err := e.svc.Create(e.ctx, domain.CreateInvoiceRequest{
		ClientID: clientID.String(),
		TaxRate:  decimal.Zero,
		DueDate:  e.clock.Now().AddDate(0, 0, 7),
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-00002", second.InvoiceNumber)
}

func TestFreePlanInvoiceQuota(t *testing.T) {
	e := setupEnv(t)
	clientID := e.seedClient(t)

	for i := 0; i < 5; i++ {
		_, err := e.svc.Create(e.ctx, domain.CreateInvoiceRequest{
			ClientID: clientID.String(),
			TaxRate:  decimal.Zero,
			DueDate:  e.clock.Now().AddDate(0, 0, 7),
		})
		require.NoError(t, err, "invoice %d", i+1)
	}

	_, err := e.svc.Create(e.ctx, domain.CreateInvoiceRequest{
		ClientID: clientID.String(),
		TaxRate:  decimal.Zero,
		DueDate:  e.clock.Now().AddDate(0, 0, 7),
	})
	assert.ErrorIs(t, err, domain.ErrPlanLimitReached)

	// Quota resets at the calendar month boundary.
	e.clock.Advance(25 * 24 * time.Hour)
	_, err = e.svc.Create(e.ctx, domain.CreateInvoiceRequest{
		ClientID: clientID.String(),
		TaxRate:  decimal.Zero,
		DueDate:  e.clock.Now().AddDate(0, 0, 7),
	})
	assert.NoError(t, err)
}

func TestListDerivesOverdue(t *testing.T) {
	e := setupEnv(t)
	clientID := e.seedClient(t)
	svcID := e.seedService(t, "10.00", true)

	inv, err := e.svc.Create(e.ctx, domain.CreateInvoiceRequest{
		ClientID: clientID.String(),
		TaxRate:  decimal.Zero,
		DueDate:  e.clock.Now().AddDate(0, 0, 1),
		Items:    []domain.LineItemInput{{ServiceID: svcID.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = e.svc.Send(e.ctx, inv.ID.String())
	require.NoError(t, err)

	resp, err := e.svc.List(e.ctx, domain.ListInvoiceRequest{Status: "SENT"})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 1)
	assert.Equal(t, domain.InvoiceStatusSent, resp.Invoices[0].EffectiveStatus)

	e.clock.Advance(48 * time.Hour)

	// Stored status is untouched; only the effective view flips.
	resp, err = e.svc.List(e.ctx, domain.ListInvoiceRequest{Status: "OVERDUE"})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 1)
	assert.Equal(t, domain.InvoiceStatusSent, resp.Invoices[0].Status)
	assert.Equal(t, domain.InvoiceStatusOverdue, resp.Invoices[0].EffectiveStatus)

	resp, err = e.svc.List(e.ctx, domain.ListInvoiceRequest{Status: "SENT"})
	require.NoError(t, err)
	assert.Empty(t, resp.Invoices)

	view, err := e.svc.GetByID(e.ctx, inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusOverdue, view.EffectiveStatus)

	// Paying an overdue invoice is still legal.
	paid, err := e.svc.MarkPaid(e.ctx, inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
}

func TestListEffectiveStatusPagination(t *testing.T) {
	e := setupEnv(t)
	clientID := e.seedClient(t)
	svcID := e.seedService(t, "10.00", true)

	// Three sent invoices, listed newest first: INV-00003, INV-00002,
	// INV-00001. After ten days the first and third are past due while the
	// second is not, so derived filters must skip over the middle row
	// without shrinking the page.
	dueOffsets := []int{2, 30, 3}
	for _, days := range dueOffsets {
		inv, err := e.svc.Create(e.ctx, domain.CreateInvoiceRequest{
			ClientID: clientID.String(),
			TaxRate:  decimal.Zero,
			DueDate:  e.clock.Now().AddDate(0, 0, days),
			Items:    []domain.LineItemInput{{ServiceID: svcID.String(), Quantity: 1}},
		})
		require.NoError(t, err)
		_, err = e.svc.Send(e.ctx, inv.ID.String())
		require.NoError(t, err)
	}

	e.clock.Advance(10 * 24 * time.Hour)

	page1, err := e.svc.List(e.ctx, domain.ListInvoiceRequest{Status: "OVERDUE", PageSize: 1})
	require.NoError(t, err)
	require.Len(t, page1.Invoices, 1)
	assert.Equal(t, "INV-00003", page1.Invoices[0].InvoiceNumber)
	assert.True(t, page1.PageInfo.HasMore)
	require.NotEmpty(t, page1.PageInfo.NextPageToken)

	page2, err := e.svc.List(e.ctx, domain.ListInvoiceRequest{
		Status:    "OVERDUE",
		PageSize:  1,
		PageToken: page1.PageInfo.NextPageToken,
	})
	require.NoError(t, err)
	require.Len(t, page2.Invoices, 1)
	assert.Equal(t, "INV-00001", page2.Invoices[0].InvoiceNumber)
	assert.False(t, page2.PageInfo.HasMore)

	sent, err := e.svc.List(e.ctx, domain.ListInvoiceRequest{Status: "SENT", PageSize: 2})
	require.NoError(t, err)
	require.Len(t, sent.Invoices, 1)
	assert.Equal(t, "INV-00002", sent.Invoices[0].InvoiceNumber)
	assert.False(t, sent.PageInfo.HasMore)
}

func TestListRejectsMalformedPageToken(t *testing.T) {
	e := setupEnv(t)

	_, err := e.svc.List(e.ctx, domain.ListInvoiceRequest{PageToken: "not-base64!"})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	e := setupEnv(t)

	_, err := e.svc.List(e.ctx, domain.ListInvoiceRequest{Status: "SHIPPED"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusFilter)
}

func TestUpdateDraftRecomputesTotals(t *testing.T) {
	e := setupEnv(t)
	clientID := e.seedClient(t)
	svcID := e.seedService(t, "40.00", true)

	inv, err := e.svc.Create(e.ctx, domain.CreateInvoiceRequest{
		ClientID: clientID.String(),
		TaxRate:  decimal.Zero,
		DueDate:  e.clock.Now().AddDate(0, 0, 7),
		Items:    []domain.LineItemInput{{ServiceID: svcID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := e.svc.UpdateDraft(e.ctx, domain.UpdateDraftRequest{
		InvoiceID: inv.ID.String(),
		TaxRate:   decimal.RequireFromString("10"),
		DueDate:   e.clock.Now().AddDate(0, 0, 14),
		Items:     []domain.LineItemInput{{ServiceID: svcID.String(), Quantity: 3}},
	})
	require.NoError(t, err)

	assert.True(t, updated.Subtotal.Equal(decimal.RequireFromString("120.00")), "subtotal %s", updated.Subtotal)
	assert.True(t, updated.Tax.Equal(decimal.RequireFromString("12.00")), "tax %s", updated.Tax)
	assert.True(t, updated.Total.Equal(decimal.RequireFromString("132.00")), "total %s", updated.Total)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, int64(3), updated.Items[0].Quantity)
}
