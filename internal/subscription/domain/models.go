// Package domain contains the account subscription model and entitlement rules.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/invopad/invopad/internal/plan/domain"
	"gorm.io/datatypes"
)

// SubscriptionStatus represents lifecycle states for a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "ACTIVE"
	SubscriptionStatusTrialing SubscriptionStatus = "TRIALING"
	SubscriptionStatusCanceled SubscriptionStatus = "CANCELED"
	SubscriptionStatusExpired  SubscriptionStatus = "EXPIRED"
)

// Subscription captures an account's plan enrolment. At most one row per
// account; an account without a row is on the free plan.
type Subscription struct {
	ID              snowflake.ID       `gorm:"primaryKey" json:"id"`
	AccountID       snowflake.ID       `gorm:"not null;uniqueIndex" json:"account_id"`
	PlanID          plandomain.ID      `gorm:"type:text;not null" json:"plan_id"`
	Status          SubscriptionStatus `gorm:"type:text;not null" json:"status"`
	StartDate       time.Time          `gorm:"not null" json:"start_date"`
	NextBillingDate *time.Time         `gorm:"" json:"next_billing_date,omitempty"`
	Metadata        datatypes.JSONMap  `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt       time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// DefaultSubscription is the implicit free enrolment for accounts that
// never subscribed.
func DefaultSubscription(accountID snowflake.ID, now time.Time) Subscription {
	return Subscription{
		AccountID: accountID,
		PlanID:    plandomain.PlanFree,
		Status:    SubscriptionStatusActive,
		StartDate: now,
	}
}
