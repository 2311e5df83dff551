package configsvc

// Document is the wire schema of spec.md §4.6: a format/version header
// plus an "o" map of observation configs and an "s" map of state seeds.
// Optional observation fields are pointers so the loader can tell
// "absent" (nil) from "explicitly zero".
type Document struct {
	Format    int                  `json:"t"`
	Version   string               `json:"v"`
	Timestamp float64              `json:"ts"`
	Obs       map[string]ObsConfig `json:"o"`
	State     map[string]StateSeed `json:"s"`
}

// ObsConfig is one entry of the "o" map. Field names follow the wire
// schema's short keys, in the order the fields appear in the original
// admin setter sequence (min_period, change_by, high_limit, low_limit).
type ObsConfig struct {
	Source         *string  `json:"r"`
	Destination    *string  `json:"d"`
	MinPeriod      *float64 `json:"p"`
	ChangeBy       *float64 `json:"st"`
	HighLimit      *float64 `json:"lt"`
	LowLimit       *float64 `json:"gt"`
	BufferMaxCount *int     `json:"b"`
	Transform      *string  `json:"f"`
	JSONExtraction *string  `json:"s"`
}

// StateSeed is one entry of the top-level "s" map: a best-effort
// initial value pushed (and set as default) on a resource at load time.
type StateSeed struct {
	Value    interface{} `json:"v"`
	DataType *string     `json:"dt"`
}
