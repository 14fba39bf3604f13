package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"
)

// setupProfiling wires --cpu-profile/--mem-profile the conventional
// runtime/pprof way (os.Create, pprof.StartCPUProfile, pprof.WriteHeapProfile
// on cleanup), the same flags surge/cmd/surge/main.go declared.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	cpuPath, err := cmd.Root().PersistentFlags().GetString("cpu-profile")
	if err != nil {
		return nil, err
	}
	memPath, err := cmd.Root().PersistentFlags().GetString("mem-profile")
	if err != nil {
		return nil, err
	}

	var cpuFile *os.File
	if cpuPath != "" {
		f, err := os.Create(cpuPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cpu profile %q: %w", cpuPath, err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to start cpu profile: %w", err)
		}
		cpuFile = f
	}

	return func() {
		if cpuFile != nil {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}
		if memPath != "" {
			f, err := os.Create(memPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "corec: failed to create mem profile %q: %v\n", memPath, err)
				return
			}
			defer f.Close()
			if err := pprof.WriteHeapProfile(f); err != nil {
				fmt.Fprintf(os.Stderr, "corec: failed to write mem profile: %v\n", err)
			}
		}
	}, nil
}
