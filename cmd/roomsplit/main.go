package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mmynk/roomsplit/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return
	}
	if !cli.Reported(err) {
		fmt.Fprintf(os.Stderr, "roomsplit: %v\n", err)
	}
	stop()
	os.Exit(cli.GetExitCode(err))
}
