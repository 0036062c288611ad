package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// secondsThreshold separates epoch-second values from epoch-millisecond
// values. Anything below it is treated as seconds. The upstream venue mixes
// both units across endpoints, so every timestamp is normalised once at the
// JSON boundary and calculation code only ever sees milliseconds.
const secondsThreshold = 10_000_000_000

// EpochMillis is a venue timestamp normalised to epoch milliseconds.
type EpochMillis int64

// NormalizeEpoch converts a raw venue timestamp to epoch milliseconds,
// multiplying by 1000 when the value looks like epoch seconds.
func NormalizeEpoch(raw int64) EpochMillis {
	if raw > 0 && raw < secondsThreshold {
		return EpochMillis(raw * 1000)
	}
	return EpochMillis(raw)
}

// Time converts the timestamp to a time.Time in UTC.
func (m EpochMillis) Time() time.Time {
	return time.UnixMilli(int64(m)).UTC()
}

// Date returns the UTC calendar date in YYYY-MM-DD form, used for
// active-day and daily-PnL bucketing.
func (m EpochMillis) Date() string {
	return m.Time().Format("2006-01-02")
}

// IsZero reports whether the timestamp is unset.
func (m EpochMillis) IsZero() bool { return m == 0 }

// UnmarshalJSON accepts integer, float and string encodings of a venue
// timestamp and normalises the unit. Unparseable values decode to zero
// rather than failing the surrounding record.
func (m *EpochMillis) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*m = NormalizeEpoch(v)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*m = NormalizeEpoch(int64(f))
		return nil
	}
	*m = 0
	return nil
}

// MarshalJSON emits the timestamp as a plain millisecond integer.
func (m EpochMillis) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(m), 10)), nil
}

// Float is a lenient numeric field. The venue encodes monetary values as
// strings ("123.45") but occasionally as bare numbers; malformed values decode
// to zero so a single bad record never aborts an aggregation.
type Float float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = Float(v)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(f))
}

// String implements fmt.Stringer.
func (f Float) String() string {
	return fmt.Sprintf("%g", float64(f))
}
