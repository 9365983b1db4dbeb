package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ParamMap is an opaque key/value mapping persisted as JSONB. It carries a
// trigger's activation parameters and an action's static configuration.
type ParamMap map[string]string

// Value implements driver.Valuer so ParamMap can be written to a JSONB column
func (p ParamMap) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal param map: %w", err)
	}
	return data, nil
}

// Scan implements sql.Scanner so ParamMap can be read from a JSONB column
func (p *ParamMap) Scan(src any) error {
	if src == nil {
		*p = ParamMap{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ParamMap", src)
	}

	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("failed to unmarshal param map: %w", err)
	}
	return nil
}

// Keys returns the key set of the map in unspecified order
func (p ParamMap) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	return keys
}
