package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"corec/internal/abi"
)

// parseConfigSet turns the repeatable `--set key=value` flag into a map,
// the same shape LLVM/rustc-style `-C` flags are conventionally handled
// in, per SPEC_FULL.md §6.1.
func parseConfigSet(cmd *cobra.Command) (map[string]string, error) {
	raw, err := cmd.PersistentFlags().GetStringArray("set")
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for _, entry := range raw {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", entry)
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out, nil
}

// callingConventionFromSettings reads "calling-convention" out of a
// --set map, defaulting to abi.ConventionC the same way a backend would
// default an unset `-C` flag.
func callingConventionFromSettings(settings map[string]string) abi.CallingConvention {
	switch settings["calling-convention"] {
	case "cold":
		return abi.ConventionCold
	default:
		return abi.ConventionC
	}
}
