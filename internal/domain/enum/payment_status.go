package enum

import "encoding/json"

// PaymentStatus is derived from a receipt's balance and never stored
type PaymentStatus int

const (
	PaymentStatusUnpaid PaymentStatus = iota
	PaymentStatusPartiallyPaid
	PaymentStatusPaid
)

func (p PaymentStatus) String() string {
	switch p {
	case PaymentStatusPartiallyPaid:
		return "Partially Paid"
	case PaymentStatusPaid:
		return "Paid"
	default:
		return "Unpaid"
	}
}

func (p PaymentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}
