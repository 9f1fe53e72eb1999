// Package commands implements the CLI commands for the fab build tool.
package commands

import (
	"context"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.trai.ch/fab/internal/app"
)

// CLI represents the command line interface for fab.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
	opts    app.RunOptions
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "fab",
		Short:         "A configuration-aware build action planner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&c.opts.ConfigPath, "config", "c", "fab.yaml", "Path to the action declaration file")
	pf.StringVar(&c.opts.CacheDir, "cache-dir", filepath.Join(".fab", "cache"), "Content-addressed cache directory")
	pf.StringVar(&c.opts.OutDir, "out-dir", filepath.Join(".fab", "out"), "Output root directory")
	pf.IntVarP(&c.opts.Jobs, "jobs", "j", 0, "Maximum parallel tool invocations (0 = CPU count)")
	pf.StringVar(&c.opts.Configuration, "configuration", "target", "Requested configuration tag (host|target)")
	pf.BoolVar(&c.opts.FailFast, "fail-fast", false, "Stop the whole build on the first failure")
	pf.IntVar(&c.opts.Retries, "retries", 0, "Retries for tool execution failures")

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newTestCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(stdout, stderr io.Writer) {
	c.rootCmd.SetOut(stdout)
	c.rootCmd.SetErr(stderr)
}
