package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DeliveryStatus tracks whether the glasses were handed over
type DeliveryStatus int

const (
	DeliveryStatusUndelivered DeliveryStatus = iota
	DeliveryStatusDelivered
)

var deliveryStatusNames = []string{"Undelivered", "Delivered"}

func (d DeliveryStatus) String() string {
	if int(d) < 0 || int(d) >= len(deliveryStatusNames) {
		return deliveryStatusNames[0]
	}
	return deliveryStatusNames[d]
}

// IsValid reports whether d is a defined value
func (d DeliveryStatus) IsValid() bool {
	return int(d) >= 0 && int(d) < len(deliveryStatusNames)
}

// ParseDeliveryStatus converts a display name into a DeliveryStatus
func ParseDeliveryStatus(name string) (DeliveryStatus, error) {
	i, ok := lookup(deliveryStatusNames, name)
	if !ok {
		return 0, fmt.Errorf("invalid delivery status: %q", name)
	}
	return DeliveryStatus(i), nil
}

func (d DeliveryStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DeliveryStatus) UnmarshalJSON(data []byte) error {
	i, err := decodeJSON("delivery status", deliveryStatusNames, data)
	if err != nil {
		return err
	}
	*d = DeliveryStatus(i)
	return nil
}

func (d DeliveryStatus) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *DeliveryStatus) Scan(value interface{}) error {
	i, err := scanName("delivery status", deliveryStatusNames, value)
	if err != nil {
		return err
	}
	*d = DeliveryStatus(i)
	return nil
}

// Toggle flips between Undelivered and Delivered
func (d DeliveryStatus) Toggle() DeliveryStatus {
	if d == DeliveryStatusDelivered {
		return DeliveryStatusUndelivered
	}
	return DeliveryStatusDelivered
}
