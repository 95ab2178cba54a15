package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/invopad/invopad/internal/invoice/domain"
	"github.com/invopad/invopad/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// withRowLock applies SELECT ... FOR UPDATE where the dialect supports it.
// SQLite serializes writers anyway and rejects the clause.
func withRowLock(db *gorm.DB) *gorm.DB {
	if strings.EqualFold(db.Dialector.Name(), "sqlite") {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("account_id = ? AND id = ?", invoice.AccountID, invoice.ID).
		Updates(map[string]any{
			"client_id":  invoice.ClientID,
			"status":     invoice.Status,
			"subtotal":   invoice.Subtotal,
			"tax_rate":   invoice.TaxRate,
			"tax":        invoice.Tax,
			"total":      invoice.Total,
			"due_date":   invoice.DueDate,
			"updated_at": invoice.UpdatedAt,
		}).Error
}

func (r *repo) ReplaceItems(ctx context.Context, db *gorm.DB, accountID, invoiceID snowflake.ID, items []domain.InvoiceItem) error {
	if err := db.WithContext(ctx).
		Where("account_id = ? AND invoice_id = ?", accountID, invoiceID).
		Delete(&domain.InvoiceItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) error {
	if err := db.WithContext(ctx).
		Where("account_id = ? AND invoice_id = ?", accountID, id).
		Delete(&domain.InvoiceItem{}).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, id).
		Delete(&domain.Invoice{}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).
		Preload("Items").
		Where("account_id = ? AND id = ?", accountID, id).
		First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := withRowLock(db.WithContext(ctx)).
		Where("account_id = ? AND id = ?", accountID, id).
		First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	var items []domain.InvoiceItem
	if err := db.WithContext(ctx).
		Where("account_id = ? AND invoice_id = ?", accountID, id).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	invoice.Items = items
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, accountID snowflake.ID, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).
		Preload("Items").
		Model(&domain.Invoice{}).
		Where("account_id = ?", accountID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.ClientID != 0 {
		stmt = stmt.Where("client_id = ?", filter.ClientID)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.CreatedTo)
	}
	if filter.Cursor != nil {
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID)
	}
	if page.PageSize > 0 {
		stmt = stmt.Limit(page.PageSize + 1)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) CountByClientID(ctx context.Context, db *gorm.DB, accountID, clientID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("account_id = ? AND client_id = ?", accountID, clientID).
		Count(&count).Error
	return count, err
}

// NextInvoiceNumber advances the per-account sequence inside the caller's
// transaction. The row is locked so concurrent allocations serialize.
func (r *repo) NextInvoiceNumber(ctx context.Context, tx *gorm.DB, accountID snowflake.ID) (int64, error) {
	var seq domain.InvoiceSequence
	err := withRowLock(tx.WithContext(ctx)).
		Where("account_id = ?", accountID).
		First(&seq).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return 0, err
		}
		seq = domain.InvoiceSequence{AccountID: accountID, NextNumber: 1}
		if err := tx.WithContext(ctx).Create(&seq).Error; err != nil {
			return 0, err
		}
	}

	number := seq.NextNumber
	if err := tx.WithContext(ctx).
		Model(&domain.InvoiceSequence{}).
		Where("account_id = ?", accountID).
		Update("next_number", number+1).Error; err != nil {
		return 0, err
	}
	return number, nil
}
