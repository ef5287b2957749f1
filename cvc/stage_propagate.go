package cvc

import (
	"context"

	"github.com/katalvlaran/cvc/netlist"
	"github.com/katalvlaran/cvc/propagate"
)

// propagateVoltages runs the voltage-propagation stage: min and max
// envelope passes, leak snapshots, the two-sub-phase sim pass, then a
// second min/max sweep. The engine's vectors persist across the two
// min/max passes; devices a first pass already committed to Inactive
// simply stay settled for the second, so the second pass's practical
// effect is picking up any net the sim pass's latch/SCRC resolution
// newly made resolvable.
func (db *Database) propagateVoltages(ctx context.Context) error {
	db.Counts = netlist.ComputeConnectionCounts(db.Circuit)
	db.Engine = propagate.NewEngine(db.Circuit, db.Config, db.Log)
	e := db.Engine
	e.Inverters = propagate.BuildInverterMap(db.Circuit, db.Counts)

	if err := e.PropagateMinMax(ctx, netlist.DirMin); err != nil {
		return err
	}
	if err := e.PropagateMinMax(ctx, netlist.DirMax); err != nil {
		return err
	}
	e.SaveLeakSnapshots()

	if err := e.PropagateSimPhase1(ctx); err != nil {
		return err
	}
	e.SaveInitialSim()

	if err := e.PropagateSimPhase2(ctx); err != nil {
		return err
	}

	if err := e.PropagateMinMax(ctx, netlist.DirMin); err != nil {
		return err
	}

	return e.PropagateMinMax(ctx, netlist.DirMax)
}
