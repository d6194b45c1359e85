package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/mapdraw/internal/cli"
	"github.com/matzehuels/mapdraw/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := run(ctx)
	cancel()
	os.Exit(status)
}

func run(ctx context.Context) int {
	err := cli.New(os.Stderr, cli.LogInfo).RootCommand().ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case ctx.Err() != nil:
		fmt.Fprintln(os.Stderr, "mapdraw: interrupted")
		return 130
	}
	if code := errors.GetCode(err); code != "" {
		fmt.Fprintf(os.Stderr, "mapdraw: %s (%s)\n", errors.UserMessage(err), code)
	} else {
		fmt.Fprintf(os.Stderr, "mapdraw: %v\n", err)
	}
	return 1
}
