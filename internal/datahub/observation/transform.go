package observation

import (
	"math"

	"github.com/threatflux/datahub/internal/datahub/sample"
)

// Transform identifies the aggregation Observation applies over its buffer
// once a sample is accepted (spec.md §3).
type Transform int

const (
	TransformNone Transform = iota
	TransformMean
	TransformStdDev
	TransformMin
	TransformMax
)

// ParseTransform maps the config-file tokens ("mean"|"stddev"|"min"|"max")
// to a Transform.
func ParseTransform(s string) (Transform, bool) {
	switch s {
	case "":
		return TransformNone, true
	case "mean":
		return TransformMean, true
	case "stddev":
		return TransformStdDev, true
	case "min":
		return TransformMin, true
	case "max":
		return TransformMax, true
	default:
		return TransformNone, false
	}
}

func (t Transform) String() string {
	switch t {
	case TransformMean:
		return "mean"
	case TransformStdDev:
		return "stddev"
	case TransformMin:
		return "min"
	case TransformMax:
		return "max"
	default:
		return ""
	}
}

// apply runs t over buf, producing a replacement value for the just-accepted
// sample (spec.md §4.3 step 6). Mean/StdDev require a numeric buffer; Min/Max
// work on any ordered type (numeric, or lexicographic string comparison).
// ts is the accepted sample's timestamp, carried through unchanged.
func apply(t Transform, buf []sample.Sample, ts float64) sample.Sample {
	switch t {
	case TransformMean:
		return sample.New(sample.Numeric, ts, mean(buf))
	case TransformStdDev:
		return sample.New(sample.Numeric, ts, stddev(buf))
	case TransformMin:
		return minOf(buf, ts)
	case TransformMax:
		return maxOf(buf, ts)
	default:
		return buf[len(buf)-1].WithTimestamp(ts)
	}
}

func mean(buf []sample.Sample) float64 {
	if len(buf) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range buf {
		sum += s.AsNumeric()
	}
	return sum / float64(len(buf))
}

func stddev(buf []sample.Sample) float64 {
	if len(buf) == 0 {
		return 0
	}
	m := mean(buf)
	var sq float64
	for _, s := range buf {
		d := s.AsNumeric() - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(buf)))
}

func minOf(buf []sample.Sample, ts float64) sample.Sample {
	best := buf[0]
	for _, s := range buf[1:] {
		if less(s, best) {
			best = s
		}
	}
	return best.WithTimestamp(ts)
}

func maxOf(buf []sample.Sample, ts float64) sample.Sample {
	best := buf[0]
	for _, s := range buf[1:] {
		if less(best, s) {
			best = s
		}
	}
	return best.WithTimestamp(ts)
}

func less(a, b sample.Sample) bool {
	switch a.Type() {
	case sample.String, sample.JSON:
		return a.AsString() < b.AsString()
	default:
		return a.AsNumeric() < b.AsNumeric()
	}
}
