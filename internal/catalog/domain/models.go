// Package domain contains persistence models for the billable service catalog.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// BillableService is an offering that can appear as an invoice line item.
// Its unit price is copied onto invoice items at creation time, so editing
// it here never alters historical invoices.
type BillableService struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	AccountID   snowflake.ID    `gorm:"not null;index" json:"account_id"`
	Name        string          `gorm:"not null" json:"name"`
	Description *string         `gorm:"type:text" json:"description,omitempty"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (BillableService) TableName() string { return "billable_services" }
