package configsvc

import "fmt"

// LoadResult summarizes a completed load (SPEC_FULL.md §5.4, supplementing
// spec.md §4.6 which leaves the result callback's payload unspecified).
type LoadResult struct {
	Created int
	Updated int
	Deleted int
}

// LoadError is returned by the validate phase on a syntax or semantic
// problem in the config document, carrying enough detail (spec.md §4.6)
// for the caller to report a useful diagnostic.
type LoadError struct {
	Kind       string // "FormatError", "BadParameter", "IoError"
	ByteOffset int64
	Message    string
}

func (e *LoadError) Error() string {
	if e.ByteOffset > 0 {
		return fmt.Sprintf("%s at byte %d: %s", e.Kind, e.ByteOffset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
