// Package main is the entry point for the sniffer command.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"firestige.xyz/sniffer/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cmd.ExitCode(err))
}
