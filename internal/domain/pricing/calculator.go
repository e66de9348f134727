// Package pricing derives the financial snapshot of a receipt from its line
// items, the insurer-recognized amount, a discount and the advance payment.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/sangkips/optica-api/internal/domain/enum"
)

// AssuranceRate is applied to the part of the insurer amount above the subtotal.
var AssuranceRate = decimal.RequireFromString("0.33")

// Scale is the number of decimal places every stored money column keeps.
const Scale = 4

// FitsScale reports whether d needs no more than Scale decimal places
func FitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(Scale))
}

// DiscountType selects how a discount value is interpreted
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// IsValid reports whether t is a known discount type
func (t DiscountType) IsValid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// Item is one priced line
type Item struct {
	Price    decimal.Decimal
	Quantity int
}

// Discount is an optional percentage or fixed-amount reduction
type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}

// Input groups everything a receipt total depends on
type Input struct {
	Items          []Item
	Discount       *Discount
	TaxInput       decimal.Decimal
	AdvancePayment decimal.Decimal
}

// Financials is the computed snapshot stored on a receipt
type Financials struct {
	Subtotal           decimal.Decimal
	Tax                decimal.Decimal
	Discount           decimal.Decimal
	DiscountPercentage decimal.Decimal
	Total              decimal.Decimal
	AdvancePayment     decimal.Decimal
	Balance            decimal.Decimal
	PaymentStatus      enum.PaymentStatus
}

// Compute never fails: absent values count as zero. Tax and discount are
// rounded to Scale before total and balance are derived, so inputs within
// Scale give a snapshot that stores without further rounding.
func Compute(in Input) Financials {
	subtotal := Subtotal(in.Items)
	tax := AssuranceTax(in.TaxInput, subtotal).Round(Scale)
	discount, percentage := resolveDiscount(in.Discount, subtotal)
	discount = discount.Round(Scale)

	total := subtotal.Add(tax).Sub(discount)
	balance := Balance(total, in.AdvancePayment)

	return Financials{
		Subtotal:           subtotal,
		Tax:                tax,
		Discount:           discount,
		DiscountPercentage: percentage,
		Total:              total,
		AdvancePayment:     in.AdvancePayment,
		Balance:            balance,
		PaymentStatus:      DerivePaymentStatus(balance, in.AdvancePayment),
	}
}

// Subtotal sums price × quantity over items
func Subtotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// AssuranceTax is zero unless taxInput strictly exceeds subtotal.
func AssuranceTax(taxInput, subtotal decimal.Decimal) decimal.Decimal {
	if !taxInput.GreaterThan(subtotal) {
		return decimal.Zero
	}
	return taxInput.Sub(subtotal).Mul(AssuranceRate)
}

// resolveDiscount returns the discount amount and the percentage to store.
// A fixed discount stores a zero percentage.
func resolveDiscount(d *Discount, subtotal decimal.Decimal) (amount, percentage decimal.Decimal) {
	if d == nil {
		return decimal.Zero, decimal.Zero
	}
	switch d.Type {
	case DiscountPercentage:
		return subtotal.Mul(d.Value).Shift(-2), d.Value
	case DiscountFixed:
		return d.Value, decimal.Zero
	default:
		return decimal.Zero, decimal.Zero
	}
}

// Balance is total minus advance, unclamped
func Balance(total, advance decimal.Decimal) decimal.Decimal {
	return total.Sub(advance)
}

// DerivePaymentStatus computes the payment status from a balance and advance
func DerivePaymentStatus(balance, advance decimal.Decimal) enum.PaymentStatus {
	switch {
	case balance.IsZero():
		return enum.PaymentStatusPaid
	case balance.IsPositive() && advance.IsPositive():
		return enum.PaymentStatusPartiallyPaid
	default:
		return enum.PaymentStatusUnpaid
	}
}
