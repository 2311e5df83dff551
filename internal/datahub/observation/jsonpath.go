package observation

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/threatflux/datahub/internal/datahub/sample"
)

// extractJSON evaluates a dot-separated/[idx]-indexed path expression
// against raw JSON text (spec.md §4.3 step 1). It reports ok=false when the
// path misses. A scalar result is converted to the narrowest typed sample;
// an object/array result is kept as JSON.
func extractJSON(path string, raw string, ts float64) (sample.Sample, bool) {
	var doc interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return sample.Sample{}, false
	}

	cur := doc
	for _, seg := range splitPath(path) {
		if seg.isIndex {
			arr, ok := cur.([]interface{})
			if !ok || seg.index < 0 || seg.index >= len(arr) {
				return sample.Sample{}, false
			}
			cur = arr[seg.index]
		} else {
			obj, ok := cur.(map[string]interface{})
			if !ok {
				return sample.Sample{}, false
			}
			v, present := obj[seg.name]
			if !present {
				return sample.Sample{}, false
			}
			cur = v
		}
	}

	return scalarOrJSON(cur, ts)
}

type pathSegment struct {
	name    string
	index   int
	isIndex bool
}

// splitPath tokenizes "devs[0].dev" into [{name:"devs"} {index:0,isIndex}
// {name:"dev"}].
func splitPath(path string) []pathSegment {
	var segs []pathSegment
	for _, part := range strings.Split(path, ".") {
		name := part
		for {
			open := strings.IndexByte(name, '[')
			if open < 0 {
				break
			}
			close := strings.IndexByte(name[open:], ']')
			if close < 0 {
				break
			}
			close += open
			head := name[:open]
			if head != "" {
				segs = append(segs, pathSegment{name: head})
			}
			idx, err := strconv.Atoi(name[open+1 : close])
			if err == nil {
				segs = append(segs, pathSegment{index: idx, isIndex: true})
			}
			name = name[close+1:]
		}
		if name != "" {
			segs = append(segs, pathSegment{name: name})
		}
	}
	return segs
}

func scalarOrJSON(v interface{}, ts float64) (sample.Sample, bool) {
	switch val := v.(type) {
	case bool:
		return sample.New(sample.Boolean, ts, val), true
	case float64:
		return sample.New(sample.Numeric, ts, val), true
	case string:
		return sample.New(sample.String, ts, val), true
	case nil:
		return sample.New(sample.Trigger, ts, nil), true
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return sample.Sample{}, false
		}
		return sample.New(sample.JSON, ts, string(encoded)), true
	}
}
