// Command ytairdrop projects a points-program airdrop allocation and sweeps
// entry days for the best ROI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
