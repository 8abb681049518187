package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if a.cfg == nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		} else {
			a.logger.Error().Err(err).Msg("command failed")
		}
		return 1
	}
	return 0
}
