package domain

import "github.com/shopspring/decimal"

// Totals holds the derived monetary fields of an invoice.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

var (
	maxTaxRate = decimal.NewFromInt(100)
	hundred    = decimal.NewFromInt(100)
)

// round2 rounds half-up to two decimal places. All invoice amounts are
// non-negative, so decimal.Round (half away from zero) is half-up here.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputeItemTotal returns quantity * unitPrice rounded to two decimals.
func ComputeItemTotal(quantity int64, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Decimal{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return decimal.Decimal{}, ErrInvalidPrice
	}
	return round2(unitPrice.Mul(decimal.NewFromInt(quantity))), nil
}

// ComputeInvoiceTotals derives subtotal, tax and total from the line items.
// Intermediate sums are rounded after each step so subtotal + tax == total
// holds exactly. A draft may legally be empty; callers pass postable=true
// when the invoice is about to be sent.
func ComputeInvoiceTotals(items []InvoiceItem, taxRate decimal.Decimal, postable bool) (Totals, error) {
	if taxRate.IsNegative() || taxRate.GreaterThan(maxTaxRate) {
		return Totals{}, ErrInvalidTaxRate
	}
	if postable && len(items) == 0 {
		return Totals{}, ErrEmptyInvoice
	}

	subtotal := decimal.Zero
	for _, item := range items {
		lineTotal, err := ComputeItemTotal(item.Quantity, item.UnitPrice)
		if err != nil {
			return Totals{}, err
		}
		subtotal = round2(subtotal.Add(lineTotal))
	}

	tax := round2(subtotal.Mul(taxRate).Div(hundred))
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}, nil
}
