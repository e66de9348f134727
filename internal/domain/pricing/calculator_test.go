package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/optica-api/internal/domain/enum"
	"github.com/sangkips/optica-api/internal/domain/pricing"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		in         pricing.Input
		subtotal   string
		tax        string
		discount   string
		percentage string
		total      string
		balance    string
		status     enum.PaymentStatus
	}{
		{
			name:     "fully paid",
			in:       pricing.Input{Items: []pricing.Item{{Price: d("100"), Quantity: 1}}, AdvancePayment: d("100")},
			subtotal: "100", tax: "0", discount: "0", percentage: "0", total: "100", balance: "0",
			status: enum.PaymentStatusPaid,
		},
		{
			name:     "partially paid",
			in:       pricing.Input{Items: []pricing.Item{{Price: d("100"), Quantity: 1}}, AdvancePayment: d("50")},
			subtotal: "100", tax: "0", discount: "0", percentage: "0", total: "100", balance: "50",
			status: enum.PaymentStatusPartiallyPaid,
		},
		{
			name:     "unpaid",
			in:       pricing.Input{Items: []pricing.Item{{Price: d("100"), Quantity: 1}}},
			subtotal: "100", tax: "0", discount: "0", percentage: "0", total: "100", balance: "100",
			status: enum.PaymentStatusUnpaid,
		},
		{
			name: "assurance tax above subtotal",
			in: pricing.Input{
				Items:    []pricing.Item{{Price: d("40"), Quantity: 2}, {Price: d("20"), Quantity: 1}},
				TaxInput: d("250"),
			},
			subtotal: "100", tax: "49.5", discount: "0", percentage: "0", total: "149.5", balance: "149.5",
			status: enum.PaymentStatusUnpaid,
		},
		{
			name:     "tax input equal to subtotal",
			in:       pricing.Input{Items: []pricing.Item{{Price: d("100"), Quantity: 1}}, TaxInput: d("100")},
			subtotal: "100", tax: "0", discount: "0", percentage: "0", total: "100", balance: "100",
			status: enum.PaymentStatusUnpaid,
		},
		{
			name: "percentage discount",
			in: pricing.Input{
				Items:    []pricing.Item{{Price: d("50"), Quantity: 4}},
				Discount: &pricing.Discount{Type: pricing.DiscountPercentage, Value: d("10")},
			},
			subtotal: "200", tax: "0", discount: "20", percentage: "10", total: "180", balance: "180",
			status: enum.PaymentStatusUnpaid,
		},
		{
			name: "fixed discount above subtotal goes negative",
			in: pricing.Input{
				Items:    []pricing.Item{{Price: d("100"), Quantity: 1}},
				Discount: &pricing.Discount{Type: pricing.DiscountFixed, Value: d("300")},
			},
			subtotal: "100", tax: "0", discount: "300", percentage: "0", total: "-200", balance: "-200",
			status: enum.PaymentStatusUnpaid,
		},
		{
			name:     "overpayment",
			in:       pricing.Input{Items: []pricing.Item{{Price: d("100"), Quantity: 1}}, AdvancePayment: d("150")},
			subtotal: "100", tax: "0", discount: "0", percentage: "0", total: "100", balance: "-50",
			status: enum.PaymentStatusUnpaid,
		},
		{
			name:     "no binary float residue",
			in:       pricing.Input{Items: []pricing.Item{{Price: d("0.1"), Quantity: 3}}, AdvancePayment: d("0.3")},
			subtotal: "0.3", tax: "0", discount: "0", percentage: "0", total: "0.3", balance: "0",
			status: enum.PaymentStatusPaid,
		},
		{
			name: "tax and discount combined",
			in: pricing.Input{
				Items:          []pricing.Item{{Price: d("150"), Quantity: 2}},
				TaxInput:       d("400"),
				Discount:       &pricing.Discount{Type: pricing.DiscountPercentage, Value: d("5")},
				AdvancePayment: d("100"),
			},
			subtotal: "300", tax: "33", discount: "15", percentage: "5", total: "318", balance: "218",
			status: enum.PaymentStatusPartiallyPaid,
		},
		{
			name: "fractional percentage rounds the discount before the total",
			in: pricing.Input{
				Items:          []pricing.Item{{Price: d("99.99"), Quantity: 1}},
				Discount:       &pricing.Discount{Type: pricing.DiscountPercentage, Value: d("12.5")},
				AdvancePayment: d("87.4913"),
			},
			subtotal: "99.99", tax: "0", discount: "12.4988", percentage: "12.5", total: "87.4912", balance: "-0.0001",
			status: enum.PaymentStatusUnpaid,
		},
		{
			name: "sub-scale tax rounds away",
			in: pricing.Input{
				Items:    []pricing.Item{{Price: d("100"), Quantity: 1}},
				TaxInput: d("100.0001"),
			},
			subtotal: "100", tax: "0", discount: "0", percentage: "0", total: "100", balance: "100",
			status: enum.PaymentStatusUnpaid,
		},
		{
			name: "tax keeps four places",
			in: pricing.Input{
				Items:          []pricing.Item{{Price: d("10"), Quantity: 1}},
				TaxInput:       d("10.55"),
				AdvancePayment: d("10.1815"),
			},
			subtotal: "10", tax: "0.1815", discount: "0", percentage: "0", total: "10.1815", balance: "0",
			status: enum.PaymentStatusPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pricing.Compute(tt.in)

			requireDecimal(t, tt.subtotal, got.Subtotal)
			requireDecimal(t, tt.tax, got.Tax)
			requireDecimal(t, tt.discount, got.Discount)
			requireDecimal(t, tt.percentage, got.DiscountPercentage)
			requireDecimal(t, tt.total, got.Total)
			requireDecimal(t, tt.balance, got.Balance)
			assert.Equal(t, tt.status, got.PaymentStatus)

			assert.True(t, got.Total.Equal(got.Subtotal.Add(got.Tax).Sub(got.Discount)))
			assert.True(t, got.Balance.Equal(got.Total.Sub(tt.in.AdvancePayment)))

			// numeric(14,4) columns must store the snapshot unchanged
			stored := func(v decimal.Decimal) decimal.Decimal { return v.Round(pricing.Scale) }
			subtotal, tax, discount := stored(got.Subtotal), stored(got.Tax), stored(got.Discount)
			total, advance, balance := stored(got.Total), stored(got.AdvancePayment), stored(got.Balance)
			assert.True(t, total.Equal(subtotal.Add(tax).Sub(discount)), "stored total drifted")
			assert.True(t, balance.Equal(total.Sub(advance)), "stored balance drifted")
			assert.Equal(t, got.PaymentStatus, pricing.DerivePaymentStatus(balance, advance))
		})
	}
}

func TestFitsScale(t *testing.T) {
	assert.True(t, pricing.FitsScale(d("12.3456")))
	assert.True(t, pricing.FitsScale(d("12.34560")))
	assert.True(t, pricing.FitsScale(d("100")))
	assert.False(t, pricing.FitsScale(d("12.34567")))
	assert.False(t, pricing.FitsScale(d("-0.00001")))
}

func TestSubtotal_OrderIndependent(t *testing.T) {
	items := []pricing.Item{
		{Price: d("12.35"), Quantity: 3},
		{Price: d("0.07"), Quantity: 11},
		{Price: d("980"), Quantity: 1},
	}
	reversed := []pricing.Item{items[2], items[1], items[0]}

	requireDecimal(t, "1017.82", pricing.Subtotal(items))
	assert.True(t, pricing.Subtotal(items).Equal(pricing.Subtotal(reversed)))
}

func TestAssuranceTax_Threshold(t *testing.T) {
	requireDecimal(t, "0", pricing.AssuranceTax(d("99.99"), d("100")))
	requireDecimal(t, "0", pricing.AssuranceTax(d("100"), d("100")))
	requireDecimal(t, "0.0033", pricing.AssuranceTax(d("100.01"), d("100")))
}

func TestDerivePaymentStatus(t *testing.T) {
	assert.Equal(t, enum.PaymentStatusPaid, pricing.DerivePaymentStatus(d("0"), d("0")))
	assert.Equal(t, enum.PaymentStatusPartiallyPaid, pricing.DerivePaymentStatus(d("0.01"), d("1")))
	assert.Equal(t, enum.PaymentStatusUnpaid, pricing.DerivePaymentStatus(d("10"), d("0")))
	assert.Equal(t, "Partially Paid", enum.PaymentStatusPartiallyPaid.String())
}
