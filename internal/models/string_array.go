package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringArray stores string lists as JSON, while tolerating legacy plain-string data.
type StringArray []string

// StringArrayFrom coerces a loosely typed JSON value into a list.
// Model output sometimes returns a single string where a list is expected.
func StringArrayFrom(v any) StringArray {
	switch t := v.(type) {
	case nil:
		return StringArray{}
	case string:
		if strings.TrimSpace(t) == "" {
			return StringArray{}
		}
		return StringArray{t}
	case []string:
		return StringArray(t)
	case []any:
		out := make(StringArray, 0, len(t))
		for _, item := range t {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case nil:
			default:
				b, err := json.Marshal(s)
				if err == nil {
					out = append(out, string(b))
				}
			}
		}
		return out
	default:
		return StringArray{fmt.Sprint(t)}
	}
}

func (a StringArray) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *StringArray) Scan(value interface{}) error {
	if a == nil {
		return fmt.Errorf("models.StringArray: Scan on nil pointer")
	}
	if value == nil {
		*a = []string{}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("models.StringArray: unsupported Scan type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*a = []string{}
		return nil
	}

	var arr []string
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		*a = arr
		return nil
	}

	// legacy rows stored a bare string
	*a = []string{raw}
	return nil
}
