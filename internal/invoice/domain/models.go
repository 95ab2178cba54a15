// Package domain contains the invoice model, totals math and status lifecycle.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft    InvoiceStatus = "DRAFT"
	InvoiceStatusSent     InvoiceStatus = "SENT"
	InvoiceStatusPaid     InvoiceStatus = "PAID"
	InvoiceStatusOverdue  InvoiceStatus = "OVERDUE"
	InvoiceStatusCanceled InvoiceStatus = "CANCELED"
)

// Invoice represents a customer invoice with derived totals.
type Invoice struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	AccountID     snowflake.ID      `gorm:"not null;index;uniqueIndex:ux_invoices_account_number,priority:1" json:"account_id"`
	InvoiceNumber string            `gorm:"type:text;not null;uniqueIndex:ux_invoices_account_number,priority:2" json:"invoice_number"`
	ClientID      snowflake.ID      `gorm:"not null;index" json:"client_id"`
	Status        InvoiceStatus     `gorm:"type:text;not null;default:'DRAFT'" json:"status"`
	Subtotal      decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	TaxRate       decimal.Decimal   `gorm:"type:numeric(5,2);not null" json:"tax_rate"`
	Tax           decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"tax"`
	Total         decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"total"`
	DueDate       time.Time         `gorm:"not null" json:"due_date"`
	Items         []InvoiceItem     `gorm:"foreignKey:InvoiceID" json:"items"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem represents a line on an invoice. UnitPrice is snapshotted
// from the billable service at creation time so later price edits never
// rewrite posted invoices.
type InvoiceItem struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	AccountID   snowflake.ID    `gorm:"not null;index" json:"account_id"`
	InvoiceID   snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	ServiceID   snowflake.ID    `gorm:"not null;index" json:"service_id"`
	Description string          `gorm:"type:text" json:"description"`
	Quantity    int64           `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// InvoiceSequence allocates per-account invoice numbers. The counter only
// moves forward, so numbers are never reused even after deletion.
type InvoiceSequence struct {
	AccountID  snowflake.ID `gorm:"primaryKey"`
	NextNumber int64        `gorm:"not null;default:1"`
}

// TableName sets the database table name.
func (InvoiceSequence) TableName() string { return "invoice_sequences" }
