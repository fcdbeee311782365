// Command wqrun runs read-only queries against the water-quality database,
// exports and snapshots the results, and plots per-station time series.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"

	"github.com/isws/wqrun/internal/app"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code. Soft failures,
// such as a rejected query or a missing plot column, are reported as
// warnings and exit 0.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pterm.SetDefaultOutput(stdout)

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)

	return exitCode(err, stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}

	if app.IsSoft(err) {
		fmt.Fprint(stderr, pterm.Warning.Sprintln(err.Error()))
		return 0
	}

	if errors.Is(err, context.Canceled) {
		fmt.Fprint(stderr, pterm.Warning.Sprintln("interrupted"))
		return 130
	}

	msg := err.Error()
	var cfgErr *app.ErrConfig
	if errors.As(err, &cfgErr) {
		msg += " (check --config and WQRUN_* variables)"
	}
	fmt.Fprint(stderr, pterm.Error.Sprintln(msg))
	return 1
}
