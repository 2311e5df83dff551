package harness

import (
	"github.com/aquasecurity/table"
	"github.com/spf13/cobra"
	"github.com/threatflux/datahub/internal/datahub/admin"
	"github.com/threatflux/datahub/internal/datahub/sample"
	"github.com/threatflux/datahub/internal/datahub/tree"
)

// newTreeCmd builds the "tree" subcommand: it registers a small sample
// resource tree and renders it, giving a human a quick way to eyeball
// path/kind/type output without attaching a debugger (not part of
// spec.md §6's informative CLI surface, but exercises the same Hub
// construction path the test-harness subcommands use).
func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Render a sample resource tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			hub := admin.New(nil)
			seedHub(hub)
			_, _ = hub.RegisterOutput("sensor", "/app/sensor/alarm", sample.Boolean, "")

			t := table.New(cmd.OutOrStdout())
			t.SetHeaders("Path", "Kind", "Data Type")
			tree.PostOrder(hub.Tree().Root(), func(e *tree.Entry) {
				if e.Path() == "" {
					return
				}
				dataType := ""
				if e.Resource() != nil {
					dataType = e.Resource().DataType().String()
				}
				t.AddRow(e.Path(), e.Kind().String(), dataType)
			})
			t.Render()
			return nil
		},
	}
}
