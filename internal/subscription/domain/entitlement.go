package domain

import (
	plandomain "github.com/invopad/invopad/internal/plan/domain"
)

// EffectiveLimits returns the plan's quotas when the subscription is active.
// Any other status, or an unknown plan, degrades to the free plan's quotas.
// A downgrade never invalidates existing records, it only gates new creation.
func EffectiveLimits(sub Subscription) plandomain.Limits {
	if sub.Status != SubscriptionStatusActive {
		return plandomain.FreeLimits()
	}
	plan, err := plandomain.Describe(sub.PlanID)
	if err != nil {
		return plandomain.FreeLimits()
	}
	return plan.Limits
}

// CanCreateClient reports whether one more client may be created.
func CanCreateClient(sub Subscription, currentClientCount int64) bool {
	return EffectiveLimits(sub).Clients.Allows(currentClientCount)
}

// CanCreateInvoice reports whether one more invoice may be created this
// calendar month. The count window resets at the month boundary, not on a
// rolling 30 days.
func CanCreateInvoice(sub Subscription, currentMonthInvoiceCount int64) bool {
	return EffectiveLimits(sub).InvoicesPerMonth.Allows(currentMonthInvoiceCount)
}
