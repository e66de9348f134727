package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SubscriptionStatus represents the state of a shop subscription
type SubscriptionStatus int

const (
	SubscriptionStatusActive SubscriptionStatus = iota
	SubscriptionStatusSuspended
	SubscriptionStatusCancelled
)

var subscriptionStatusNames = []string{"Active", "Suspended", "Cancelled"}

func (s SubscriptionStatus) String() string {
	if int(s) < 0 || int(s) >= len(subscriptionStatusNames) {
		return subscriptionStatusNames[0]
	}
	return subscriptionStatusNames[s]
}

// IsValid reports whether s is a defined value
func (s SubscriptionStatus) IsValid() bool {
	return int(s) >= 0 && int(s) < len(subscriptionStatusNames)
}

// ParseSubscriptionStatus converts a display name into a SubscriptionStatus
func ParseSubscriptionStatus(name string) (SubscriptionStatus, error) {
	i, ok := lookup(subscriptionStatusNames, name)
	if !ok {
		return 0, fmt.Errorf("invalid subscription status: %q", name)
	}
	return SubscriptionStatus(i), nil
}

func (s SubscriptionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SubscriptionStatus) UnmarshalJSON(data []byte) error {
	i, err := decodeJSON("subscription status", subscriptionStatusNames, data)
	if err != nil {
		return err
	}
	*s = SubscriptionStatus(i)
	return nil
}

func (s SubscriptionStatus) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *SubscriptionStatus) Scan(value interface{}) error {
	i, err := scanName("subscription status", subscriptionStatusNames, value)
	if err != nil {
		return err
	}
	*s = SubscriptionStatus(i)
	return nil
}
