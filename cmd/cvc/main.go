// Command cvc is the thin driver for the Circuit Validation Check
// engine: it loads a .cvcrc-style config, resolves a netlist.Circuit
// to verify, and drives one end-to-end run through cvc.Database,
// printing a summary. The CDL netlist parser, the interactive REPL,
// and readline history are external collaborators; this command only
// ever hands an already-flattened Circuit to the engine.
package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/katalvlaran/cvc/config"
	"github.com/spf13/cobra"
)

var (
	rcPath     string
	reportPath string
	demo       bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cvc",
		Short: "Circuit Validation Check: static electrical-rule verifier for transistor-level netlists",
		RunE:  runRoot,
	}
	cmd.Flags().StringVar(&rcPath, "rc", "", "path to a .cvcrc configuration file")
	cmd.Flags().StringVar(&reportPath, "report", "", "override CVC_REPORT_FILE from --rc")
	cmd.Flags().BoolVar(&demo, "demo", false,
		"verify the built-in two-inverter demo circuit instead of CVC_NETLIST")

	return cmd
}

func runRoot(cmd *cobra.Command, _ []string) error {
	// Cooperative interrupt flag, realized as a Context cancelled on
	// the first Ctrl-C; propagation loops check it at safe points.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if reportPath != "" {
		cfg.ReportFile = reportPath
	}

	circuit, err := buildCircuit(cfg)
	if err != nil {
		return err
	}

	return execute(ctx, cfg, circuit, os.Stdout, os.Stderr)
}

// loadConfig reads --rc through config.Load when given, or falls back
// to config.Default() — there is no required configuration file for
// the --demo path.
func loadConfig() (config.Config, error) {
	if rcPath == "" {
		return config.Default(), nil
	}

	f, err := os.Open(rcPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("cvc: open %s: %w", rcPath, err)
	}
	defer f.Close()

	cfg, lineErrs, err := config.Load(f)
	if err != nil {
		return config.Config{}, err
	}
	// User-data errors are reported, not fatal; the rest of the file
	// still applied.
	for _, le := range lineErrs {
		fmt.Fprintln(os.Stderr, le.Error())
	}

	return cfg, nil
}
