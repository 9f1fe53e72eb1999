package domain

import "go.trai.ch/zerr"

// Structural errors abort planning before any record executes.
var (
	// ErrActionExists is returned when registering an action whose name is taken.
	ErrActionExists = zerr.New("action already exists")

	// ErrActionNotFound is returned when a requested action is not registered.
	ErrActionNotFound = zerr.New("action not found")

	// ErrCycleDetected is returned when the dependency edges form a cycle.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrDanglingInput is returned when an input is neither produced by a
	// registered action nor present as a source file.
	ErrDanglingInput = zerr.New("dangling input")

	// ErrLocationUnknown is returned when an argv placeholder names an
	// unregistered action.
	ErrLocationUnknown = zerr.New("unknown location reference")

	// ErrLocationAmbiguous is returned when an argv placeholder names an
	// action that does not declare exactly one required output.
	ErrLocationAmbiguous = zerr.New("ambiguous location reference")

	// ErrUnknownConfiguration is returned for a configuration value outside
	// host, target, inherit.
	ErrUnknownConfiguration = zerr.New("unknown configuration")

	// ErrNoTargets is returned when a build is requested without targets.
	ErrNoTargets = zerr.New("no targets specified")
)

// Execution errors surface while records run.
var (
	// ErrToolExecution is returned when a tool process exits non-zero or
	// cannot be started. Eligible for retry.
	ErrToolExecution = zerr.New("tool execution failed")

	// ErrMissingOutput is returned when a required declared output does not
	// exist after the tool succeeded.
	ErrMissingOutput = zerr.New("missing output")

	// ErrEmptyOutput is returned when a required declared output exists but
	// is zero bytes.
	ErrEmptyOutput = zerr.New("empty output")

	// ErrBlocked marks records that were never run because a dependency failed.
	ErrBlocked = zerr.New("blocked by failed dependency")

	// ErrExecutionFailed wraps any scheduler run that ended with failures.
	ErrExecutionFailed = zerr.New("build execution failed")
)
