package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <target>",
		Short: "Build a target and run its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Test(cmd.Context(), args[0], c.opts)
		},
	}
}
