// Command ballot runs partition consensus over a run file and prints the
// per-node winners and the overall candidate ranking.
//
// Usage:
//
//	ballot run --input run.yaml [--config engine.yaml] [--format table|json]
//	           [--candidate NAME] [--scores] [--trace none|stdout]
//	           [--metrics-file metrics.prom]
//	ballot generate [--nodes 59] [--edges 100] [--candidates 2] [--seed N]
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		// Cobra has already printed the error.
		stop()
		os.Exit(1)
	}
}
