// Package main is the entry point for the fab CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/fab/cmd/fab/commands"
	"go.trai.ch/fab/internal/app"
	"go.trai.ch/fab/internal/core/domain"
	_ "go.trai.ch/fab/internal/wiring"
)

// Exit codes: structural failures (cycles, dangling inputs, unknown targets)
// are distinguishable from execution failures.
const (
	exitOK         = 0
	exitExecution  = 1
	exitStructural = 2
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, err
	}))
}

func run(ctx context.Context, args []string, stderr io.Writer, provider ComponentProvider) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed.
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return exitExecution
	}
	defer components.App.Close() //nolint:errcheck // Best effort flush

	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode classifies an error as structural (bad graph) or executional.
func exitCode(err error) int {
	structural := []error{
		domain.ErrActionExists,
		domain.ErrActionNotFound,
		domain.ErrCycleDetected,
		domain.ErrDanglingInput,
		domain.ErrLocationUnknown,
		domain.ErrLocationAmbiguous,
		domain.ErrUnknownConfiguration,
		domain.ErrNoTargets,
	}
	for _, sentinel := range structural {
		if errors.Is(err, sentinel) {
			return exitStructural
		}
	}
	return exitExecution
}
