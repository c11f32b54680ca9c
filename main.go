// main is the entry point for the gitsize CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/gitsize/cmd"
	"github.com/huangsam/gitsize/internal/contract"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()
	if shutdownErr := cmd.Shutdown(); shutdownErr != nil {
		contract.LogWarn("Shutdown failed", shutdownErr)
	}
	if err != nil {
		contract.LogFatal("Error starting CLI", err)
	}
}
