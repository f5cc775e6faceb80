// Command perfroute routes perfboard layouts. See 'perfroute --help'.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/perfroute/internal/cli"
	"github.com/matzehuels/perfroute/pkg/errors"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.New(os.Stderr, cli.LogInfo).RootCommand().ExecuteContext(ctx)
	code := errors.ExitCode(err)
	if code != errors.ExitOK && code != errors.ExitInterrupted {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return code
}
