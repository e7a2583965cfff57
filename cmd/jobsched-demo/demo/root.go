package demo

import (
	"github.com/spf13/cobra"
)

// NewRootCmd returns the jobsched-demo command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jobsched-demo",
		Short: "Exercise a job scheduler actor against a synthetic cluster",
	}
	root.AddCommand(newRunCmd())
	return root
}
