// Package sample implements DataSample (C1): the immutable, timestamped,
// type-tagged value that flows through the resource tree.
package sample

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/threatflux/datahub/internal/datahub/dherrors"
)

// Type identifies the runtime data type carried by a Sample.
type Type int

const (
	Trigger Type = iota
	Boolean
	Numeric
	String
	JSON
)

// String renders the type the way it appears in config files and logs.
func (t Type) String() string {
	switch t {
	case Trigger:
		return "trigger"
	case Boolean:
		return "bool"
	case Numeric:
		return "numeric"
	case String:
		return "string"
	case JSON:
		return "json"
	default:
		return "unknown"
	}
}

// Sample is an immutable (timestamp, typed value) record. Zero value is a
// Trigger sample with timestamp 0.
type Sample struct {
	dataType Type
	ts       float64
	boolVal  bool
	numVal   float64
	strVal   string // also holds the raw JSON text for Type == JSON
}

// clockNow is overridable in tests so ts=0 assignment is deterministic.
var clockNow = func() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// New creates a Sample of the given type. A timestamp of 0 means "generate
// now": it is replaced with the current wall-clock time expressed as
// seconds since the epoch.
func New(t Type, ts float64, value interface{}) Sample {
	if ts == 0 {
		ts = clockNow()
	}
	s := Sample{dataType: t, ts: ts}
	switch t {
	case Boolean:
		if v, ok := value.(bool); ok {
			s.boolVal = v
		}
	case Numeric:
		if v, ok := toFloat(value); ok {
			s.numVal = v
		}
	case String:
		if v, ok := value.(string); ok {
			s.strVal = v
		}
	case JSON:
		if v, ok := value.(string); ok {
			s.strVal = v
		}
	case Trigger:
		// no payload
	}
	return s
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Type returns the sample's runtime type.
func (s Sample) Type() Type { return s.dataType }

// Timestamp returns the sample's timestamp, seconds since the epoch.
func (s Sample) Timestamp() float64 { return s.ts }

// WithTimestamp returns a copy of s with a different timestamp, keeping the
// value — used when an override replaces the value but keeps the original
// timestamp (spec.md §4.2 step 1).
func (s Sample) WithTimestamp(ts float64) Sample {
	s.ts = ts
	return s
}

// AsBoolean returns the sample's value coerced to bool. Returns the
// default-for-type (false) when the variant does not match.
func (s Sample) AsBoolean() bool {
	switch s.dataType {
	case Boolean:
		return s.boolVal
	case Numeric:
		return s.numVal != 0
	default:
		return false
	}
}

// AsNumeric returns the sample's value coerced to float64. Returns 0 when
// the variant does not match.
func (s Sample) AsNumeric() float64 {
	switch s.dataType {
	case Numeric:
		return s.numVal
	case Boolean:
		if s.boolVal {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// AsString returns the sample's value coerced to string. Returns "" when
// the variant does not match and has no sensible string form.
func (s Sample) AsString() string {
	switch s.dataType {
	case String, JSON:
		return s.strVal
	case Boolean:
		if s.boolVal {
			return "true"
		}
		return "false"
	case Numeric:
		return strconv.FormatFloat(s.numVal, 'g', -1, 64)
	default:
		return ""
	}
}

// AsJSON returns the sample's raw JSON text. Returns "" when the variant is
// not JSON.
func (s Sample) AsJSON() string {
	if s.dataType != JSON {
		return ""
	}
	return s.strVal
}

// ConvertToString renders s as a string sample, respecting a destination
// byte-capacity limit. Returns dherrors.ErrOverflow if cap is insufficient.
//
// Conversion rules: Trigger -> ""; Boolean -> "true"/"false"; Numeric ->
// shortest round-tripping decimal; String -> itself; JSON -> passed through
// as-is.
func ConvertToString(s Sample, capBytes int) (string, error) {
	var out string
	switch s.dataType {
	case Trigger:
		out = ""
	case Boolean:
		out = s.AsBoolean2Str()
	case Numeric:
		out = strconv.FormatFloat(s.numVal, 'g', -1, 64)
	case String, JSON:
		out = s.strVal
	}
	if capBytes > 0 && len(out) > capBytes {
		return "", dherrors.ErrOverflow
	}
	return out, nil
}

// AsBoolean2Str renders a boolean sample's literal text form.
func (s Sample) AsBoolean2Str() string {
	if s.boolVal {
		return "true"
	}
	return "false"
}

// ConvertToJSON renders s as a JSON-encoded value, respecting a destination
// byte-capacity limit. Returns dherrors.ErrOverflow if cap is insufficient.
//
// Conversion rules: Trigger -> null; Boolean -> true/false; Numeric ->
// shortest round-tripping decimal; String -> quoted JSON string; JSON ->
// passed through as-is (already valid JSON text).
func ConvertToJSON(s Sample, capBytes int) (string, error) {
	var out string
	switch s.dataType {
	case Trigger:
		out = "null"
	case Boolean:
		out = s.AsBoolean2Str()
	case Numeric:
		out = strconv.FormatFloat(s.numVal, 'g', -1, 64)
	case String:
		encoded, err := json.Marshal(s.strVal)
		if err != nil {
			return "", dherrors.Wrap(err, "encoding string sample as json")
		}
		out = string(encoded)
	case JSON:
		out = s.strVal
	}
	if capBytes > 0 && len(out) > capBytes {
		return "", dherrors.ErrOverflow
	}
	return out, nil
}

// Equal reports whether two samples carry the same type and value,
// ignoring timestamp — used by change-by and round-trip property checks.
func Equal(a, b Sample) bool {
	if a.dataType != b.dataType {
		return false
	}
	switch a.dataType {
	case Boolean:
		return a.boolVal == b.boolVal
	case Numeric:
		return a.numVal == b.numVal
	case String, JSON:
		return a.strVal == b.strVal
	default:
		return true
	}
}
