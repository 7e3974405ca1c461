package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// zoneless layouts are interpreted in the caller's location.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

const dateOnlyLayout = "2006-01-02"

// Timestamp is a lenient date field. Decoding never fails: strings, epoch
// milliseconds, null and garbage are all accepted, and validity is decided
// when the value is read with Time.
type Timestamp struct {
	raw    string
	millis float64
	isNum  bool
}

// At builds a Timestamp from a time value.
func At(t time.Time) Timestamp {
	return Timestamp{raw: t.Format(time.RFC3339Nano)}
}

// RawTimestamp builds a Timestamp from an unparsed string.
func RawTimestamp(s string) Timestamp {
	return Timestamp{raw: s}
}

// Present reports whether the field carried a non-empty value.
func (t Timestamp) Present() bool {
	return t.isNum || strings.TrimSpace(t.raw) != ""
}

// String returns the raw value.
func (t Timestamp) String() string {
	if t.isNum {
		return strconv.FormatFloat(t.millis, 'f', -1, 64)
	}
	return t.raw
}

// Time parses the value. RFC 3339 strings carry their own offset, zoneless
// date-times are read in loc, date-only strings are UTC midnight, and
// numbers are epoch milliseconds. ok is false for absent or unparseable values.
func (t Timestamp) Time(loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	if t.isNum {
		if math.IsNaN(t.millis) || math.IsInf(t.millis, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(t.millis)).In(loc), true
	}
	s := strings.TrimSpace(t.raw)
	if s == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.In(loc), true
	}
	for _, layout := range zonelessLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, true
		}
	}
	if ts, err := time.ParseInLocation(dateOnlyLayout, s, time.UTC); err == nil {
		return ts.In(loc), true
	}
	return time.Time{}, false
}

// UnmarshalJSON implements json.Unmarshaler without ever returning an error.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	*t = Timestamp{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			t.raw = s
		}
	case 'n', 't', 'f', '{', '[':
		// null, booleans and containers are not dates
	default:
		if f, err := strconv.ParseFloat(string(b), 64); err == nil {
			t.millis = f
			t.isNum = true
		}
	}
	return nil
}

// MarshalJSON writes the raw value back.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.isNum {
		return []byte(strconv.FormatFloat(t.millis, 'f', -1, 64)), nil
	}
	if t.raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(t.raw)
}
