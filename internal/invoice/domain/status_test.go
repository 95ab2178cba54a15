package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	due := now.Add(72 * time.Hour)
	pastDue := now.Add(-72 * time.Hour)
	oneItem := []InvoiceItem{{Quantity: 1}}

	cases := []struct {
		name    string
		status  InvoiceStatus
		items   []InvoiceItem
		dueDate time.Time
		event   Event
		want    InvoiceStatus
		wantErr error
	}{
		{name: "draft send", status: InvoiceStatusDraft, items: oneItem, dueDate: due, event: EventSend, want: InvoiceStatusSent},
		{name: "draft send empty", status: InvoiceStatusDraft, dueDate: due, event: EventSend, wantErr: ErrEmptyInvoice},
		{name: "draft cancel", status: InvoiceStatusDraft, dueDate: due, event: EventCancel, want: InvoiceStatusCanceled},
		{name: "draft pay", status: InvoiceStatusDraft, items: oneItem, dueDate: due, event: EventMarkPaid, wantErr: ErrInvalidTransition},
		{name: "sent pay", status: InvoiceStatusSent, items: oneItem, dueDate: due, event: EventMarkPaid, want: InvoiceStatusPaid},
		{name: "sent cancel", status: InvoiceStatusSent, items: oneItem, dueDate: due, event: EventCancel, want: InvoiceStatusCanceled},
		{name: "sent overdue past due", status: InvoiceStatusSent, items: oneItem, dueDate: pastDue, event: EventBecomeOverdue, want: InvoiceStatusOverdue},
		{name: "sent overdue before due", status: InvoiceStatusSent, items: oneItem, dueDate: due, event: EventBecomeOverdue, wantErr: ErrInvalidTransition},
		{name: "sent resend", status: InvoiceStatusSent, items: oneItem, dueDate: due, event: EventSend, wantErr: ErrInvalidTransition},
		{name: "overdue pay", status: InvoiceStatusOverdue, items: oneItem, dueDate: pastDue, event: EventMarkPaid, want: InvoiceStatusPaid},
		{name: "overdue cancel", status: InvoiceStatusOverdue, items: oneItem, dueDate: pastDue, event: EventCancel, wantErr: ErrInvalidTransition},
		{name: "paid is terminal", status: InvoiceStatusPaid, items: oneItem, dueDate: due, event: EventCancel, wantErr: ErrInvalidTransition},
		{name: "canceled is terminal", status: InvoiceStatusCanceled, items: oneItem, dueDate: due, event: EventSend, wantErr: ErrInvalidTransition},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := Invoice{Status: tc.status, Items: tc.items, DueDate: tc.dueDate}
			got, err := Transition(inv, tc.event, now)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(InvoiceStatusPaid))
	assert.True(t, IsTerminal(InvoiceStatusCanceled))
	assert.False(t, IsTerminal(InvoiceStatusDraft))
	assert.False(t, IsTerminal(InvoiceStatusSent))
	assert.False(t, IsTerminal(InvoiceStatusOverdue))
}

func TestDeriveEffectiveStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	sent := Invoice{Status: InvoiceStatusSent, DueDate: now.Add(time.Hour)}
	assert.Equal(t, InvoiceStatusSent, DeriveEffectiveStatus(sent, now))

	// Exactly at the due date is not yet overdue.
	atDue := Invoice{Status: InvoiceStatusSent, DueDate: now}
	assert.Equal(t, InvoiceStatusSent, DeriveEffectiveStatus(atDue, now))

	pastDue := Invoice{Status: InvoiceStatusSent, DueDate: now.Add(-time.Minute)}
	assert.Equal(t, InvoiceStatusOverdue, DeriveEffectiveStatus(pastDue, now))

	// Paid and canceled never read as overdue.
	paid := Invoice{Status: InvoiceStatusPaid, DueDate: now.Add(-time.Hour)}
	assert.Equal(t, InvoiceStatusPaid, DeriveEffectiveStatus(paid, now))

	canceled := Invoice{Status: InvoiceStatusCanceled, DueDate: now.Add(-time.Hour)}
	assert.Equal(t, InvoiceStatusCanceled, DeriveEffectiveStatus(canceled, now))

	draft := Invoice{Status: InvoiceStatusDraft, DueDate: now.Add(-time.Hour)}
	assert.Equal(t, InvoiceStatusDraft, DeriveEffectiveStatus(draft, now))
}
