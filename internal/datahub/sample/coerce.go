package sample

import "strconv"

// Coerce attempts to convert s into a sample of type target, used by
// Input/Output resources when a pushed sample's type does not match the
// resource's fixed type (spec.md §4.2 step 2). It reports false when no
// lossless-enough conversion exists, which the caller turns into
// dherrors.ErrTypeMismatch.
func Coerce(target Type, s Sample) (Sample, bool) {
	if s.dataType == target {
		return s, true
	}
	switch target {
	case Boolean:
		switch s.dataType {
		case Numeric:
			return New(Boolean, s.ts, s.numVal != 0), true
		case String:
			b, err := strconv.ParseBool(s.strVal)
			if err != nil {
				return Sample{}, false
			}
			return New(Boolean, s.ts, b), true
		}
	case Numeric:
		switch s.dataType {
		case Boolean:
			v := 0.0
			if s.boolVal {
				v = 1.0
			}
			return New(Numeric, s.ts, v), true
		case String:
			f, err := strconv.ParseFloat(s.strVal, 64)
			if err != nil {
				return Sample{}, false
			}
			return New(Numeric, s.ts, f), true
		}
	case String:
		switch s.dataType {
		case Boolean, Numeric:
			return New(String, s.ts, s.AsString()), true
		}
	}
	// Trigger and JSON participate in no implicit coercions: a Trigger
	// carries no payload to coerce from/to, and JSON requires an explicit
	// json_extraction (Observation-level) rather than blind coercion.
	return Sample{}, false
}
