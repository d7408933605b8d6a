// Command routeoptctl is a thin terminal driver over the routeopt library:
// it builds or loads a graph, then runs a single algorithm or the full
// Comparison Harness against it and prints the result as CSV.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "routeoptctl",
		Short: "Drive the routeopt QoS routing core from a terminal",
	}
	root.PersistentFlags().String("graph", "", "path to a CSV edge list (node,node,link_delay_ms,capacity_mbps,link_reliability); built-in demo topology used when empty")
	root.PersistentFlags().Bool("verbose", false, "emit structured logs to stderr")
	root.AddCommand(newRunCmd(), newCompareCmd())
	return root
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
