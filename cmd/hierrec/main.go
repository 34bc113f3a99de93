// Command hierrec reconciles hierarchical forecasts stored as long-format
// CSV tables.
//
//	hierrec reconcile --forecasts yhat.csv --history y.csv --summing S.csv \
//		--method bottom_up --method min_trace:method=mint_shrink --out out.csv
//	hierrec evaluate --forecasts out.csv --actual y --by-node
//	hierrec methods
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newApp().execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
