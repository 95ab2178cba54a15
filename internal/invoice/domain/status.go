package domain

import "time"

// Event is a requested invoice lifecycle change.
type Event string

const (
	EventSend          Event = "send"
	EventMarkPaid      Event = "mark_paid"
	EventBecomeOverdue Event = "become_overdue"
	EventCancel        Event = "cancel"
)

// IsTerminal reports whether no further transition is legal from the status.
func IsTerminal(status InvoiceStatus) bool {
	return status == InvoiceStatusPaid || status == InvoiceStatusCanceled
}

// Transition validates the event against the invoice's current status and
// returns the resulting status. It never clamps: an illegal event fails
// with ErrInvalidTransition. Sending an empty invoice fails with
// ErrEmptyInvoice.
func Transition(inv Invoice, event Event, now time.Time) (InvoiceStatus, error) {
	if IsTerminal(inv.Status) {
		return "", ErrInvalidTransition
	}

	switch inv.Status {
	case InvoiceStatusDraft:
		switch event {
		case EventSend:
			if len(inv.Items) == 0 {
				return "", ErrEmptyInvoice
			}
			return InvoiceStatusSent, nil
		case EventCancel:
			return InvoiceStatusCanceled, nil
		}
	case InvoiceStatusSent:
		switch event {
		case EventMarkPaid:
			return InvoiceStatusPaid, nil
		case EventBecomeOverdue:
			if now.After(inv.DueDate) {
				return InvoiceStatusOverdue, nil
			}
			return "", ErrInvalidTransition
		case EventCancel:
			return InvoiceStatusCanceled, nil
		}
	case InvoiceStatusOverdue:
		if event == EventMarkPaid {
			return InvoiceStatusPaid, nil
		}
	}
	return "", ErrInvalidTransition
}

// DeriveEffectiveStatus computes the status as observed at read time.
// A sent invoice past its due date reads as overdue without mutating the
// stored state; paid and canceled always win.
func DeriveEffectiveStatus(inv Invoice, now time.Time) InvoiceStatus {
	if inv.Status == InvoiceStatusSent && now.After(inv.DueDate) {
		return InvoiceStatusOverdue
	}
	return inv.Status
}
