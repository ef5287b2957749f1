package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/katalvlaran/cvc/config"
	"github.com/katalvlaran/cvc/cvc"
	"github.com/katalvlaran/cvc/netlist"
	"github.com/katalvlaran/cvc/report"
)

// execute drives one verification run end to end through
// cvc.Database.Run and prints the tally summary. A nonzero error
// return becomes a nonzero exit code: either an internal cvcerr
// failure propagating out of Run, or (the common case) one or more
// electrical-rule violations found.
func execute(ctx context.Context, cfg config.Config, circuit *netlist.Circuit, stdout, stderr io.Writer) error {
	log := report.NewLogger(stderr, cfg.Mode)

	db := cvc.New(circuit, cfg, log)
	if err := db.Run(ctx); err != nil {
		return fmt.Errorf("cvc: run: %w", err)
	}

	sink, closeSink, err := errorSink(cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	stream := report.NewErrorStream(sink, cfg.CircuitErrorLimit)
	for _, f := range db.Findings {
		if err := stream.Write(f); err != nil {
			return fmt.Errorf("cvc: write error stream: %w", err)
		}
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("cvc: close error stream: %w", err)
	}

	fmt.Fprintf(stdout, "cvc: %d finding(s)\n", len(db.Findings))
	if err := stream.Tally().WriteSummary(stdout); err != nil {
		return fmt.Errorf("cvc: write summary: %w", err)
	}
	if len(db.Findings) > 0 {
		return fmt.Errorf("cvc: %d electrical-rule violation(s) found", len(db.Findings))
	}

	return nil
}

// errorSink resolves the `.err.gz` destination named by
// CVC_REPORT_FILE, or io.Discard
// when no report file is configured. The Tally still accumulates every
// finding either way, since it records independently of what actually
// gets written to the sink.
func errorSink(cfg config.Config) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return io.Discard, func() error { return nil }, nil
	}
	f, err := os.Create(cfg.ReportFile + ".err.gz")
	if err != nil {
		return nil, nil, fmt.Errorf("cvc: create %s.err.gz: %w", cfg.ReportFile, err)
	}

	return f, f.Close, nil
}
