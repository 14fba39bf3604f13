package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"corec/internal/ast"
	"corec/internal/backend/interp"
	"corec/internal/cfg"
	"corec/internal/driver"
	"corec/internal/layout"
	"corec/internal/source"
	"corec/internal/tir"
)

var buildCmd = &cobra.Command{
	Use:   "build <fixture>",
	Short: "drive a fixture through codegen and interpret the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	fx, err := lookupFixture(args[0])
	if err != nil {
		return err
	}

	maxDiag, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	settings, err := parseConfigSet(cmd.Root())
	if err != nil {
		return err
	}

	b := ast.NewBuilder(ast.Hints{}, source.NewInterner())
	file := fx.build(b)
	env := tir.NewEnv()

	store := cfg.NewIrTyStore()
	target := layout.X86_64LinuxGNU()
	eng := layout.New(target, store, env, nil)
	bk := interp.New(env, eng)

	opts := driver.DiagnoseOptions{
		Stage:             driver.StageCodegen,
		MaxDiagnostics:    maxDiag,
		EnableTimings:     showTimings,
		CallingConvention: callingConventionFromSettings(settings),
		Backend:           bk,
		Target:            target,
	}

	result := driver.Diagnose(env, b, file, opts)
	printDiagnostics(cmd, result.Bag, quiet)
	if showTimings && result.Timing != nil {
		printTimingReport(cmd, *result.Timing)
	}
	if result.Bag.HasErrors() {
		return fmt.Errorf("build: %q reported errors", fx.name)
	}

	out := cmd.OutOrStdout()
	for _, fn := range result.Fns {
		handle := bk.FuncIdOf(fn.Fn)
		value, callErr := bk.Call(handle, nil)
		if callErr != nil {
			return fmt.Errorf("build: %q: %w", fx.name, callErr)
		}
		fmt.Fprintf(out, "%s => %s\n", fx.name, formatConst(value))
	}
	return nil
}

func formatConst(c cfg.Const) string {
	switch c.Kind {
	case cfg.ConstInt:
		return fmt.Sprintf("%d", c.Int)
	case cfg.ConstBool:
		return fmt.Sprintf("%t", c.Bool)
	case cfg.ConstFloat:
		return fmt.Sprintf("%g", c.Float)
	case cfg.ConstChar:
		return fmt.Sprintf("%q", c.Char)
	default:
		return fmt.Sprintf("%+v", c)
	}
}
