package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"corec/internal/trace"
)

// setupTracing inspects trace-related flags and initializes the tracer,
// grounded on surge/cmd/surge/trace_setup.go's flag-to-trace.Config
// mapping and signal/panic dump handling.
func setupTracing(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	heartbeatInterval, err := root.PersistentFlags().GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}
	formatStr, err := root.PersistentFlags().GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}

	if level == trace.LevelOff && traceOutput == "" {
		ctx := trace.WithTracer(cmd.Context(), trace.Nop)
		cmd.SetContext(ctx)
		return func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}
	if traceOutput != "" && traceOutput != "-" && mode == trace.ModeRing {
		mode = trace.ModeStream
	}

	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace format: %w", err)
	}

	cfg := trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   ringSize,
		Heartbeat:  heartbeatInterval,
	}

	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	var heartbeat *trace.Heartbeat
	if heartbeatInterval > 0 {
		heartbeat = trace.StartHeartbeat(tracer, heartbeatInterval)
	}

	setupSignalHandler(tracer, traceOutput, heartbeat)

	cleanup := func() {
		if heartbeat != nil {
			heartbeat.Stop()
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}

	return cleanup, nil
}

// setupSignalHandler dumps the ring buffer (if any) on SIGINT/SIGTERM
// before exiting, the same best-effort save surge/cmd/surge/trace_setup.go
// performs.
func setupSignalHandler(tracer trace.Tracer, outputPath string, heartbeat *trace.Heartbeat) {
	if tracer == nil {
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "\ntrace: received %v, saving trace data...\n", sig)

		if heartbeat != nil {
			heartbeat.Stop()
		}
		if rt := findRingTracer(tracer); rt != nil && outputPath != "" {
			dumpPath := generateDumpPath(outputPath, "interrupt")
			if f, err := os.Create(dumpPath); err == nil {
				if dumpErr := rt.Dump(f, trace.FormatText); dumpErr != nil {
					fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", dumpErr)
				} else {
					fmt.Fprintf(os.Stderr, "trace: ring buffer saved to %s\n", dumpPath)
				}
				f.Close()
			} else {
				fmt.Fprintf(os.Stderr, "trace: failed to create dump file: %v\n", err)
			}
		}

		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: close error: %v\n", err)
		}

		if sig == syscall.SIGINT {
			os.Exit(130)
		} else {
			os.Exit(143)
		}
	}()
}

func findRingTracer(tracer trace.Tracer) *trace.RingTracer {
	if tracer == nil {
		return nil
	}
	if rt, ok := tracer.(*trace.RingTracer); ok {
		return rt
	}
	if mt, ok := tracer.(*trace.MultiTracer); ok {
		for _, t := range mt.Tracers() {
			if rt, ok := t.(*trace.RingTracer); ok {
				return rt
			}
		}
	}
	return nil
}

// generateDumpPath creates a dump file path based on the original output
// path and reason, e.g. trace.log -> trace.interrupt.log.
func generateDumpPath(outputPath, reason string) string {
	if outputPath == "" || outputPath == "-" {
		return fmt.Sprintf("corec.%s.trace", reason)
	}
	ext := filepath.Ext(outputPath)
	base := outputPath[:len(outputPath)-len(ext)]
	if ext == "" {
		return fmt.Sprintf("%s.%s.trace", outputPath, reason)
	}
	return fmt.Sprintf("%s.%s%s", base, reason, ext)
}
