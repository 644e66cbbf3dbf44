// Command kvq queries a SQLite-backed key-value object store.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/kvquery/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return cli.ExitSuccess
	}

	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		// Already rendered by the command's formatter.
		return exitErr.Code
	}

	// Flag and argument errors from cobra itself
	fmt.Fprintln(os.Stderr, "Error:", err)
	return cli.ExitCommandError
}
