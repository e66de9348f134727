package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// MontageStatus is the lens-fitting stage of a receipt's order
type MontageStatus int

const (
	MontageStatusUnOrdered MontageStatus = iota
	MontageStatusOrdered
	MontageStatusInStore
	MontageStatusInCutting
	MontageStatusReady
)

var montageStatusNames = []string{"UnOrdered", "Ordered", "InStore", "InCutting", "Ready"}

func (m MontageStatus) String() string {
	if int(m) < 0 || int(m) >= len(montageStatusNames) {
		return montageStatusNames[0]
	}
	return montageStatusNames[m]
}

// IsValid reports whether m is a defined value
func (m MontageStatus) IsValid() bool {
	return int(m) >= 0 && int(m) < len(montageStatusNames)
}

// ParseMontageStatus converts a display name into a MontageStatus
func ParseMontageStatus(name string) (MontageStatus, error) {
	i, ok := lookup(montageStatusNames, name)
	if !ok {
		return 0, fmt.Errorf("invalid montage status: %q", name)
	}
	return MontageStatus(i), nil
}

func (m MontageStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *MontageStatus) UnmarshalJSON(data []byte) error {
	i, err := decodeJSON("montage status", montageStatusNames, data)
	if err != nil {
		return err
	}
	*m = MontageStatus(i)
	return nil
}

func (m MontageStatus) Value() (driver.Value, error) {
	return m.String(), nil
}

func (m *MontageStatus) Scan(value interface{}) error {
	i, err := scanName("montage status", montageStatusNames, value)
	if err != nil {
		return err
	}
	*m = MontageStatus(i)
	return nil
}
