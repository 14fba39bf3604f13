package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"corec/internal/observ"
)

// printTimingReport prints one observ.Report the way
// surge/cmd/surge/timing_output.go printed buildpipeline.Timings, adapted
// from that package's fixed Parse/Diagnose/Build/Link/Run stage set to
// observ.Report's free-form per-phase breakdown (internal/driver names its
// own phases, see stage.go's doc comment).
func printTimingReport(cmd *cobra.Command, report observ.Report) {
	out := cmd.OutOrStdout()
	for _, phase := range report.Phases {
		if phase.Note != "" {
			fmt.Fprintf(out, "%-15s %8.2f ms  (%s)\n", phase.Name, phase.DurationMS, phase.Note)
			continue
		}
		fmt.Fprintf(out, "%-15s %8.2f ms\n", phase.Name, phase.DurationMS)
	}
	fmt.Fprintf(out, "%-15s %8.2f ms\n", "total", report.TotalMS)
}
