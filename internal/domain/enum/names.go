package enum

import (
	"encoding/json"
	"fmt"
)

// lookup returns the index of name in names
func lookup(names []string, name string) (int, bool) {
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// decodeJSON accepts either the display name or the numeric index
func decodeJSON(kind string, names []string, data []byte) (int, error) {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return 0, err
		}
		if i < 0 || i >= len(names) {
			return 0, fmt.Errorf("invalid %s: %d", kind, i)
		}
		return i, nil
	}
	i, ok := lookup(names, str)
	if !ok {
		return 0, fmt.Errorf("invalid %s: %q", kind, str)
	}
	return i, nil
}

// scanName reads a stored name (or legacy integer) back into an index
func scanName(kind string, names []string, value interface{}) (int, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case string:
		if i, ok := lookup(names, v); ok {
			return i, nil
		}
		return 0, fmt.Errorf("invalid %s: %q", kind, v)
	case []byte:
		return scanName(kind, names, string(v))
	case int64:
		if v < 0 || int(v) >= len(names) {
			return 0, fmt.Errorf("invalid %s: %d", kind, v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("cannot scan %T into %s", value, kind)
	}
}
