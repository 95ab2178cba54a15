// Package domain defines the subscription plan catalog and its quota types.
package domain

import "errors"

type ID string

const (
	PlanFree ID = "free"
	PlanPro  ID = "pro"
)

type Limits struct {
	InvoicesPerMonth Limit `json:"invoices_per_month"`
	Clients          Limit `json:"clients"`
}

type Plan struct {
	ID         ID       `json:"id"`
	Name       string   `json:"name"`
	PriceCents int64    `json:"price_cents"`
	Features   []string `json:"features"`
	Limits     Limits   `json:"limits"`
}

var ErrUnknownPlan = errors.New("unknown_plan")

var catalog = []Plan{
	{
		ID:         PlanFree,
		Name:       "Free",
		PriceCents: 0,
		Features: []string{
			"Up to 3 clients",
			"Up to 5 invoices per month",
			"Invoice status tracking",
		},
		Limits: Limits{
			InvoicesPerMonth: LimitOf(5),
			Clients:          LimitOf(3),
		},
	},
	{
		ID:         PlanPro,
		Name:       "Pro",
		PriceCents: 1900,
		Features: []string{
			"Unlimited clients",
			"Unlimited invoices",
			"Invoice status tracking",
			"Dashboard metrics",
			"Priority support",
		},
		Limits: Limits{
			InvoicesPerMonth: Unlimited(),
			Clients:          Unlimited(),
		},
	},
}

// Describe returns the plan for the given id.
func Describe(id ID) (Plan, error) {
	for _, p := range catalog {
		if p.ID == id {
			return p, nil
		}
	}
	return Plan{}, ErrUnknownPlan
}

// All returns the plan catalog in display order.
func All() []Plan {
	out := make([]Plan, len(catalog))
	copy(out, catalog)
	return out
}

// FreeLimits returns the quotas every account falls back to.
func FreeLimits() Limits {
	free, _ := Describe(PlanFree)
	return free.Limits
}
