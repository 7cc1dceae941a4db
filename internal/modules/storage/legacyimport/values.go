package legacyimport

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// plain converts driver types into JSON-friendly Go values.
func plain(value interface{}) interface{} {
	switch v := value.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return nil
	case primitive.ObjectID:
		return v.Hex()
	case primitive.DateTime:
		return v.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(v.T), 0).UTC()
	case primitive.Decimal128:
		return v.String()
	case primitive.Regex:
		return v.Pattern
	case primitive.Binary:
		return string(v.Data)
	case primitive.M:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[key] = plain(item)
		}
		return out
	case primitive.D:
		out := make(map[string]interface{}, len(v))
		for _, item := range v {
			out[item.Key] = plain(item.Value)
		}
		return out
	case primitive.A:
		out := make([]interface{}, 0, len(v))
		for _, item := range v {
			out = append(out, plain(item))
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(v))
		for _, item := range v {
			out = append(out, plain(item))
		}
		return out
	default:
		return value
	}
}

func str(doc map[string]interface{}, key string) string {
	switch v := plain(doc[key]).(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return fmt.Sprint(v)
	}
}

func boolean(doc map[string]interface{}, key string) bool {
	switch v := doc[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		return false
	}
}

func number(doc map[string]interface{}, key string) float64 {
	switch v := doc[key].(type) {
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case float64:
		return v
	case primitive.Decimal128:
		f, _ := strconv.ParseFloat(v.String(), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	default:
		return 0
	}
}

// jsonValue encodes a nested value for a JSON column; nil stays nil.
func jsonValue(doc map[string]interface{}, key string) ([]byte, error) {
	v := plain(doc[key])
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func timestamp(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case primitive.DateTime:
		return v.Time().UTC(), true
	case int64:
		return unixNumberToTime(float64(v))
	case int32:
		return unixNumberToTime(float64(v))
	case float64:
		return unixNumberToTime(v)
	case string:
		if ts, ok := parseTimeString(v); ok {
			return ts, true
		}
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return unixNumberToTime(n)
		}
	}
	return time.Time{}, false
}

func unixNumberToTime(value float64) (time.Time, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return time.Time{}, false
	}
	abs := math.Abs(value)
	switch {
	case abs >= 1e11:
		return time.UnixMilli(int64(value)).UTC(), true
	case abs >= 1e8:
		return time.Unix(int64(value), 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

func parseTimeString(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	layouts := [...]string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
