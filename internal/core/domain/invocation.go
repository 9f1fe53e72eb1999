package domain

import "io"

// Invocation is the opaque process boundary of a tool: argv plus working
// directory in, files at declared paths plus an exit code out.
type Invocation struct {
	Tool string
	Args []string
	Dir  string

	// Stdout and Stderr receive the process streams when set; the executor
	// falls back to its logger otherwise.
	Stdout io.Writer
	Stderr io.Writer
}

// Argv returns the full command line including the tool.
func (inv *Invocation) Argv() []string {
	argv := make([]string, 0, len(inv.Args)+1)
	argv = append(argv, inv.Tool)
	argv = append(argv, inv.Args...)
	return argv
}
