package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SubscriptionType is the billing plan of a subscription
type SubscriptionType int

const (
	SubscriptionTypeTrial SubscriptionType = iota
	SubscriptionTypeMonthly
	SubscriptionTypeQuarterly
	SubscriptionTypeLifetime
)

var subscriptionTypeNames = []string{"Trial", "Monthly", "Quarterly", "Lifetime"}

func (s SubscriptionType) String() string {
	if int(s) < 0 || int(s) >= len(subscriptionTypeNames) {
		return subscriptionTypeNames[0]
	}
	return subscriptionTypeNames[s]
}

// IsValid reports whether s is a defined value
func (s SubscriptionType) IsValid() bool {
	return int(s) >= 0 && int(s) < len(subscriptionTypeNames)
}

// ParseSubscriptionType converts a display name into a SubscriptionType
func ParseSubscriptionType(name string) (SubscriptionType, error) {
	i, ok := lookup(subscriptionTypeNames, name)
	if !ok {
		return 0, fmt.Errorf("invalid subscription type: %q", name)
	}
	return SubscriptionType(i), nil
}

func (s SubscriptionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SubscriptionType) UnmarshalJSON(data []byte) error {
	i, err := decodeJSON("subscription type", subscriptionTypeNames, data)
	if err != nil {
		return err
	}
	*s = SubscriptionType(i)
	return nil
}

func (s SubscriptionType) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *SubscriptionType) Scan(value interface{}) error {
	i, err := scanName("subscription type", subscriptionTypeNames, value)
	if err != nil {
		return err
	}
	*s = SubscriptionType(i)
	return nil
}
