package config

import "github.com/katalvlaran/cvc/netlist"

// Config carries the knobs the propagation engine and error detectors
// read at runtime. Fields without an explicit default below take their
// Go zero value (0 / false / "").
type Config struct {
	Top         string // CVC_TOP
	NetlistPath string // CVC_NETLIST
	Mode        string // CVC_MODE, free-form tag mixed into report names
	ModelFile   string // CVC_MODEL_FILE
	PowerFile   string // CVC_POWER_FILE
	FuseFile    string // CVC_FUSE_FILE
	ReportFile  string // CVC_REPORT_FILE

	// CircuitErrorLimit caps per-(circuit,kind) detail printing;
	// totals keep counting past it.
	CircuitErrorLimit int64 // CVC_CIRCUIT_ERROR_LIMIT

	// LeakLimit is the leak-current threshold in amperes, default
	// 200 microamps.
	LeakLimit float64 // CVC_LEAK_LIMIT

	// SOI, if true, ignores the bulk terminal and bulk errors entirely.
	SOI bool // CVC_SOI

	// SCRC, if true, enables subthreshold-current-reduction power
	// propagation during the sim pass's second sub-phase.
	SCRC bool // CVC_SCRC

	// Per-kind minimum voltage deltas for reporting, CVC_*_ERROR_THRESHOLD.
	ForwardDiodeErrorThreshold netlist.Voltage
	VbgErrorThreshold          netlist.Voltage
	VbsErrorThreshold          netlist.Voltage
	VdsErrorThreshold          netlist.Voltage
	VgsErrorThreshold          netlist.Voltage

	// MinVthGates settles the Vgs-exactly-at-Vth boundary: when true,
	// exactly-at-threshold gates are treated as conducting rather than
	// cut off.
	MinVthGates bool

	// IgnoreNoLeakFloating suppresses the floating-input predicate for
	// floating gates that carry no real leak path.
	IgnoreNoLeakFloating bool
}

// Default returns a Config with the standard defaults and every
// threshold at zero, i.e. report on any nonzero deviation.
func Default() Config {
	return Config{
		CircuitErrorLimit: 50,
		LeakLimit:         200e-6,
	}
}
