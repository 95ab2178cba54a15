// Package domain contains persistence models for clients.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Client is a billable customer of the account.
type Client struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	AccountID snowflake.ID      `gorm:"not null;index" json:"account_id"`
	Name      string            `gorm:"not null" json:"name"`
	Email     string            `gorm:"not null" json:"email"`
	Phone     *string           `gorm:"type:text" json:"phone,omitempty"`
	Address   *string           `gorm:"type:text" json:"address,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Client) TableName() string { return "clients" }
