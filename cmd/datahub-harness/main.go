// Command datahub-harness is the test-harness CLI of spec.md §6: it drives
// the config-load matrix and the destination-handler path against an
// in-process Hub, the way a native test binary would against the original
// library, and reports results with a process exit code.
package main

import (
	"fmt"
	"os"

	"github.com/threatflux/datahub/cmd/datahub-harness/harness"
)

func main() {
	if err := harness.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
