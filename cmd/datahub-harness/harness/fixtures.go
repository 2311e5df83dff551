package harness

import (
	"fmt"
	"io"
	"strings"
)

// configFixtures are the config-load test matrix's documents, selected by
// the parser subcommand's --config flag (spec.md §6). Each targets a
// distinct branch of configsvc.Loader: fixture 0 wires a source edge with
// filter settings and seeds initial state, fixture 1 wires a source edge
// and a symbolic destination, fixture 2 is intentionally malformed to
// exercise the FormatError abort path. Every observation entry must carry
// both "r" and "d" (spec.md §8 scenario 4); an entry missing either aborts
// the whole load with FormatError.
var configFixtures = []string{
	`{
		"t": 1, "v": "1.0", "ts": 0,
		"o": {
			"temp": {"r": "/app/sensor/raw", "d": "mqtt-out", "p": 1.0, "lt": -10.0, "gt": 80.0}
		},
		"s": {
			"/obs/temp": {"v": 21.5}
		}
	}`,
	`{
		"t": 1, "v": "1.0", "ts": 0,
		"o": {
			"temp": {"r": "/app/sensor/raw", "d": "mqtt-out", "b": 32}
		},
		"s": {}
	}`,
	`{"t": 1, "v": "1.0", "o": { "temp": { "p": }`,
}

// fixtureSource returns a configsvc.Source re-readable any number of times
// for the selected fixture index, failing if the index is out of range.
func fixtureSource(n int) (func() (io.ReadCloser, error), error) {
	if n < 0 || n >= len(configFixtures) {
		return nil, fmt.Errorf("no such fixture: %d (have 0-%d)", n, len(configFixtures)-1)
	}
	doc := configFixtures[n]
	return func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(doc)), nil
	}, nil
}
