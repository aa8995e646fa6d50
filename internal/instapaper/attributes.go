package instapaper

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"instapaperkobo/internal/logger"
)

// Timestamp is an epoch-seconds attribute converted to a time.Time. When the
// server value cannot be read as a number, Time is zero and Raw keeps it.
type Timestamp struct {
	time.Time
	Raw any
}

// Valid reports whether the value was converted.
func (t Timestamp) Valid() bool {
	return !t.Time.IsZero()
}

func (t Timestamp) param() string {
	switch {
	case t.Valid():
		return strconv.FormatInt(t.Unix(), 10)
	case t.Raw != nil:
		return fmt.Sprint(t.Raw)
	}
	return ""
}

func timestampAttr(data map[string]any, key string, log *logger.Logger) Timestamp {
	v, ok := data[key]
	if !ok || v == nil {
		return Timestamp{}
	}
	secs, ok := toFloat(v)
	if !ok || math.IsNaN(secs) || math.IsInf(secs, 0) {
		log.Warnf("Could not convert %s value %v to a timestamp, keeping raw value", key, v)
		return Timestamp{Raw: v}
	}
	whole, frac := math.Modf(secs)
	return Timestamp{Time: time.Unix(int64(whole), int64(frac*1e9))}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func stringAttr(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func int64Attr(data map[string]any, key string) int64 {
	switch v := data[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	f, ok := toFloat(data[key])
	if !ok {
		return 0
	}
	return int64(f)
}

func floatAttr(data map[string]any, key string) float64 {
	f, _ := toFloat(data[key])
	return f
}

// boolAttr reads the "0"/"1" strings and numbers the API uses for flags.
func boolAttr(data map[string]any, key string) bool {
	switch v := data[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	}
	f, ok := toFloat(data[key])
	return ok && f != 0
}

// params collects non-empty attribute values for submission.
type params url.Values

func (p params) setString(key, v string) {
	if v != "" {
		url.Values(p).Set(key, v)
	}
}

func (p params) setInt(key string, v int64) {
	if v != 0 {
		url.Values(p).Set(key, strconv.FormatInt(v, 10))
	}
}

func (p params) setFloat(key string, v float64) {
	if v != 0 {
		url.Values(p).Set(key, strconv.FormatFloat(v, 'f', -1, 64))
	}
}

func (p params) setBool(key string, v bool) {
	if v {
		url.Values(p).Set(key, "1")
	}
}

func (p params) setTime(key string, v Timestamp) {
	p.setString(key, v.param())
}
