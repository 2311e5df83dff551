package harness

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/threatflux/datahub/internal/datahub/admin"
	"github.com/threatflux/datahub/internal/datahub/dherrors"
	"github.com/threatflux/datahub/internal/datahub/sample"
)

// newDestinationCmd builds the "destination" subcommand: it registers a
// named destination, routes an Observation's push through it via
// Observation.DestinationName, and reports whether delivery reached the
// callback (spec.md §4.7, §6).
func newDestinationCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "destination",
		Short: "Exercise the destination-handler delivery path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDestination(cmd, name)
		},
	}
	cmd.Flags().StringVar(&name, "name", "mqtt-out", "destination name to register and trigger")
	return cmd
}

func runDestination(cmd *cobra.Command, name string) error {
	hub := admin.New(nil)
	out := cmd.OutOrStdout()

	delivered := make(chan struct{}, 1)
	if _, err := hub.AddDestination(name, func(dest, obsPath string, s sample.Sample) {
		fmt.Fprintf(out, "delivered: destination=%s observation=%s value=%s\n", dest, obsPath, s.AsString())
		delivered <- struct{}{}
	}); err != nil {
		return fmt.Errorf("registering destination: %s", dherrors.CodeString(err))
	}

	obs, err := hub.GetObservation("relay")
	if err != nil {
		return fmt.Errorf("creating observation: %s", dherrors.CodeString(err))
	}
	obs.DestinationName = name

	if err := hub.PushAdmin("/obs/relay", sample.String, sample.New(sample.String, 0, "hello")); err != nil {
		return fmt.Errorf("pushing sample: %s", dherrors.CodeString(err))
	}

	select {
	case <-delivered:
		return nil
	default:
		return fmt.Errorf("destination %q never received a delivery", name)
	}
}
