package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/katalvlaran/cvc/netlist"
)

// LineError records a single malformed or unrecognized line. The
// offending line is skipped and recorded while the rest of the file
// continues to load; an unknown key is forward-compatible behavior,
// not fatal.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("config: line %d: %v (%q)", e.Line, e.Err, e.Text)
}

// Load parses the "KEY = 'value'" dialect from r, applying
// os.Expand for $VAR/${VAR} shell-style substitution from the process
// environment before interpreting each value. Comments ('#'-prefixed)
// and blank lines are ignored. Malformed lines are collected as
// LineErrors rather than aborting the parse; an unrecognized key is a
// LineError too but does not stop the remaining keys from applying.
func Load(r io.Reader) (Config, []LineError, error) {
	cfg := Default()
	var errs []LineError

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := splitKeyValue(line)
		if !ok {
			errs = append(errs, LineError{Line: lineNo, Text: line, Err: fmt.Errorf("malformed KEY = 'value' line")})
			continue
		}
		value = os.Expand(value, os.Getenv)

		if err := apply(&cfg, key, value); err != nil {
			errs = append(errs, LineError{Line: lineNo, Text: line, Err: err})
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, errs, fmt.Errorf("config: read: %w", err)
	}

	return cfg, errs, nil
}

// splitKeyValue splits a "KEY = 'value'" line, stripping a single
// layer of surrounding quotes from the value if present.
func splitKeyValue(line string) (key, value string, ok bool) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	if key == "" {
		return "", "", false
	}
	if len(value) >= 2 {
		if (value[0] == '\'' && value[len(value)-1] == '\'') || (value[0] == '"' && value[len(value)-1] == '"') {
			value = value[1 : len(value)-1]
		}
	}

	return key, value, true
}

// apply assigns a single recognized key to cfg. Unknown keys report a
// (non-fatal) LineError via the returned error: warn, don't abort.
func apply(cfg *Config, key, value string) error {
	switch key {
	case "CVC_TOP":
		cfg.Top = value
	case "CVC_NETLIST":
		cfg.NetlistPath = value
	case "CVC_MODE":
		cfg.Mode = value
	case "CVC_MODEL_FILE":
		cfg.ModelFile = value
	case "CVC_POWER_FILE":
		cfg.PowerFile = value
	case "CVC_FUSE_FILE":
		cfg.FuseFile = value
	case "CVC_REPORT_FILE":
		cfg.ReportFile = value
	case "CVC_CIRCUIT_ERROR_LIMIT":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("CVC_CIRCUIT_ERROR_LIMIT: %w", err)
		}
		cfg.CircuitErrorLimit = n
	case "CVC_LEAK_LIMIT":
		// Amperes with an SI suffix: a fractional quantity, so the
		// float form, not the fixed-point one (200u must stay 2e-4,
		// not round to zero).
		n, err := netlist.ParseSIFloat(value)
		if err != nil {
			return fmt.Errorf("CVC_LEAK_LIMIT: %w", err)
		}
		cfg.LeakLimit = n
	case "CVC_SOI":
		cfg.SOI = parseBool(value)
	case "CVC_SCRC":
		cfg.SCRC = parseBool(value)
	case "CVC_FORWARD_DIODE_ERROR_THRESHOLD":
		v, err := netlist.ParseVoltage(value)
		if err != nil {
			return err
		}
		cfg.ForwardDiodeErrorThreshold = v
	case "CVC_VBG_ERROR_THRESHOLD":
		v, err := netlist.ParseVoltage(value)
		if err != nil {
			return err
		}
		cfg.VbgErrorThreshold = v
	case "CVC_VBS_ERROR_THRESHOLD":
		v, err := netlist.ParseVoltage(value)
		if err != nil {
			return err
		}
		cfg.VbsErrorThreshold = v
	case "CVC_VDS_ERROR_THRESHOLD":
		v, err := netlist.ParseVoltage(value)
		if err != nil {
			return err
		}
		cfg.VdsErrorThreshold = v
	case "CVC_VGS_ERROR_THRESHOLD":
		v, err := netlist.ParseVoltage(value)
		if err != nil {
			return err
		}
		cfg.VgsErrorThreshold = v
	default:
		return fmt.Errorf("unrecognized key %q", key)
	}

	return nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
