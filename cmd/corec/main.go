// Command corec is the CLI entry point for the corec compiler core:
// diagnose and build drive internal/driver over named in-repo fixtures
// (there is no lexer/parser in this tree — see internal/ast's doc
// comment — so a real source file cannot be read from disk yet).
//
// Grounded on surge/cmd/surge/main.go's cobra root command shape
// (persistent flags, PersistentPreRunE timeout/tracing setup,
// PersistentPostRun cleanup), trimmed to the sub-commands SPEC_FULL.md §6.1
// keeps: diagnose, build, version. The teacher's --color flag and its
// lsp/fmt/fix/init/clean/philosophy sub-commands are dropped outright
// (terminal colour and interactive tooling are explicitly out of scope).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"corec/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "corec",
	Short: "corec compiler core — diagnostics and codegen pipeline",
	Long:  `corec drives TIR inference, CFG lowering, layout/ABI computation and backend emission over a pre-built AST.`,
}

var (
	timeoutCancel context.CancelFunc
	traceCleanup  func()
	profileStop   func()
)

func main() {
	rootCmd.Version = version.Version
	rootCmd.PersistentPreRunE = applyPersistentSetup
	rootCmd.PersistentPostRun = cleanupPersistentSetup

	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show per-stage timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 256, "maximum number of diagnostics to collect")
	rootCmd.PersistentFlags().StringArrayP("set", "C", nil, "set a backend config option (-C key=value, repeatable)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write heap profile to file")
	rootCmd.PersistentFlags().Int("timeout", 30, "command timeout in seconds")

	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr, empty to disable)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "ring", "storage mode (stream|ring|both)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "output format (auto|text|ndjson|chrome) - auto detects from file extension")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer capacity for trace events")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "heartbeat interval (0 to disable, e.g. 1s)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func applyPersistentSetup(cmd *cobra.Command, _ []string) error {
	secs, err := cmd.Root().PersistentFlags().GetInt("timeout")
	if err != nil {
		return fmt.Errorf("failed to read timeout flag: %w", err)
	}
	if secs <= 0 {
		return fmt.Errorf("timeout must be greater than zero")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(secs)*time.Second)
	timeoutCancel = cancel
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	go func() {
		<-ctx.Done()
		if ctx.Err() == context.DeadlineExceeded {
			fmt.Fprintf(os.Stderr, "corec: command timed out after %s\n", time.Duration(secs)*time.Second)
			os.Exit(1)
		}
	}()

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return fmt.Errorf("failed to setup tracing: %w", err)
	}
	traceCleanup = cleanup

	stop, err := setupProfiling(cmd)
	if err != nil {
		return fmt.Errorf("failed to setup profiling: %w", err)
	}
	profileStop = stop

	return nil
}

func cleanupPersistentSetup(*cobra.Command, []string) {
	if timeoutCancel != nil {
		timeoutCancel()
		timeoutCancel = nil
	}
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}
	if profileStop != nil {
		profileStop()
		profileStop = nil
	}
}
