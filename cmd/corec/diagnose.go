package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"corec/internal/ast"
	"corec/internal/diag"
	"corec/internal/driver"
	"corec/internal/source"
	"corec/internal/tir"
)

var diagnoseStage string

func init() {
	diagnoseCmd.Flags().StringVar(&diagnoseStage, "stage", string(driver.StageCodegen),
		"stop after this stage (expand|semantic_check|lower|typecheck|optimise|codegen)")
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <fixture>",
	Short: "run the diagnostics pipeline over a named fixture",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiagnose,
}

func runDiagnose(cmd *cobra.Command, args []string) error {
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

	opts := driver.DiagnoseOptions{
		Stage:             driver.Stage(diagnoseStage),
		MaxDiagnostics:    maxDiag,
		EnableTimings:     showTimings,
		CallingConvention: callingConventionFromSettings(settings),
	}

	result := driver.Diagnose(env, b, file, opts)
	printDiagnostics(cmd, result.Bag, quiet)
	if showTimings && result.Timing != nil {
		printTimingReport(cmd, *result.Timing)
	}

	if result.Bag.HasErrors() {
		return fmt.Errorf("diagnose: %q reported errors", fx.name)
	}
	return nil
}

func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, quiet bool) {
	if bag == nil {
		return
	}
	out := cmd.OutOrStdout()
	for _, d := range bag.Items() {
		if quiet && d.Severity == diag.SevInfo {
			continue
		}
		fmt.Fprintf(out, "%s[%s]: %s\n", d.Severity, d.Code, d.Message)
	}
}
