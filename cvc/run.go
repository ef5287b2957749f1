package cvc

import (
	"context"

	"github.com/katalvlaran/cvc/netlist"
)

// Run drives one full verification pass over db.Circuit end to end:
// equivalence resolution, the min and max envelope passes, the leak
// snapshots, the two-sub-phase sim pass with latch/SCRC resolution, a
// second min/max sweep, and finally the error detectors. Parsing is
// the caller's responsibility; db.Circuit must already be fully
// flattened (every AddNet/AddDevice/AddModel/AddPower call made)
// before Run is called.
func (db *Database) Run(ctx context.Context) error {
	// Each Run is a complete verification pass: findings and conflicts
	// from a previous pass (e.g. before a fuse override) do not carry
	// over, so reruns on identical inputs report identically.
	db.Findings = nil
	db.Conflicts = nil

	db.warnBipolar()
	if err := db.resolveEquivalence(); err != nil {
		return err
	}
	if err := db.propagateVoltages(ctx); err != nil {
		return err
	}
	db.runDetectors()

	return nil
}

// warnBipolar flags the coverage gap around parasitic bipolar devices
// once per run: they are recognized but never propagated, which a
// user reading only the error report would otherwise mistake for a
// clean result on those devices.
func (db *Database) warnBipolar() {
	for d := range db.Circuit.Devices {
		m := db.Circuit.ModelOf(netlist.DeviceID(d))
		if m != nil && m.Tag == netlist.TagBipolar {
			db.Log.WithField("device", d).Warn("parasitic bipolar devices are recognized but never propagated")

			return
		}
	}
}
