package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/spf13/cast"
)

var errMissingInstant = errors.New("timestamp is missing")

// NormalizeInstant converts a check-in timestamp into a time.Time.
// Store-native values (types.DateTime), time.Time, date strings and unix
// milliseconds all map onto the same instant semantics.
func NormalizeInstant(v any) (time.Time, error) {
	var t time.Time
	switch val := v.(type) {
	case nil:
		return time.Time{}, errMissingInstant
	case types.DateTime:
		t = val.Time()
	case *types.DateTime:
		if val == nil {
			return time.Time{}, errMissingInstant
		}
		t = val.Time()
	case time.Time:
		t = val
	case *time.Time:
		if val == nil {
			return time.Time{}, errMissingInstant
		}
		t = *val
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, errMissingInstant
		}
		if dt, err := types.ParseDateTime(s); err == nil && !dt.IsZero() {
			t = dt.Time()
			break
		}
		parsed, err := cast.ToTimeE(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("unrecognized timestamp %q: %w", s, err)
		}
		t = parsed
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		// epoch milliseconds, as produced by JSON clients
		ms, err := cast.ToInt64E(val)
		if err != nil {
			return time.Time{}, fmt.Errorf("unrecognized timestamp %v: %w", val, err)
		}
		t = time.UnixMilli(ms)
	default:
		parsed, err := cast.ToTimeE(val)
		if err != nil {
			return time.Time{}, fmt.Errorf("unrecognized timestamp %v: %w", val, err)
		}
		t = parsed
	}

	if t.IsZero() {
		return time.Time{}, errMissingInstant
	}
	return t.UTC(), nil
}
