package propagate

import (
	"context"

	"github.com/katalvlaran/cvc/equeue"
	"github.com/katalvlaran/cvc/netlist"
	"github.com/sirupsen/logrus"
)

// PropagateSim runs the full sim pass in one call, the convenience
// form used by tests and by any caller that does not need to inspect
// the initial-sim snapshot between sub-phases; see
// PropagateSimPhase1/SaveInitialSim/PropagateSimPhase2 for the staged
// form the full verification sequence calls for.
func (e *Engine) PropagateSim(ctx context.Context) error {
	if err := e.PropagateSimPhase1(ctx); err != nil {
		return err
	}
	e.SaveInitialSim()

	return e.PropagateSimPhase2(ctx)
}

// PropagateSimPhase1 runs the first sim sub-phase (power nets only)
// and resolves any cross-coupled-inverter latches left undriven by it.
func (e *Engine) PropagateSimPhase1(ctx context.Context) error {
	e.Log.WithFields(logrus.Fields{"stage": "propagate", "direction": "sim", "phase": 1}).Info("starting pass")
	if err := e.simSubphase(ctx, false); err != nil {
		return err
	}
	e.resolveLatches()

	return nil
}

// SaveInitialSim captures InitialSim from the current Sim vector,
// between the first and second sim sub-phases.
func (e *Engine) SaveInitialSim() {
	e.InitialSim = e.Sim.Snapshot()
}

// PropagateSimPhase2 runs the second sim sub-phase (all nets,
// including fuses) and, if enabled, SCRC subthreshold power
// propagation.
func (e *Engine) PropagateSimPhase2(ctx context.Context) error {
	e.Log.WithFields(logrus.Fields{"stage": "propagate", "direction": "sim", "phase": 2}).Info("starting pass")
	if err := e.simSubphase(ctx, true); err != nil {
		return err
	}
	if e.Config.SCRC {
		e.propagateSCRC()
	}

	return nil
}

// simSubphase seeds and drains the sim queue for one sub-phase.
// includeFuses=false restricts seeding to declared sim-power nets and
// defers any fuse device dequeued during that phase to the delay
// queue.
func (e *Engine) simSubphase(ctx context.Context, includeFuses bool) error {
	q := e.qSim

	for i := range e.Circuit.Nets {
		net := netlist.NetID(i)
		pw := e.Circuit.Nets[net].PowerRef
		var v netlist.Voltage
		var seeded bool
		switch {
		case pw != netlist.InvalidPower && e.Circuit.Powers[pw].HasKind(netlist.PowerSim):
			v, seeded = e.Circuit.Powers[pw].Sim, true
		case includeFuses:
			if mv, ok := e.minEqualsMax(net); ok {
				v, seeded = mv, true
			}
		}
		if !seeded {
			continue
		}
		e.enqueueNeighbors(netlist.DirSim, q, net, netlist.InvalidDevice, v, 0)
	}

	type parkedEvent struct {
		d   netlist.DeviceID
		key equeue.EventKey
	}
	var parked []parkedEvent

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		d, key, ok, err := q.Dequeue()
		if err != nil {
			return err
		}
		if !ok {
			// Only now that this phase has drained do held fuse events
			// go onto the delay queue, which the next sub-phase drains.
			for _, p := range parked {
				q.Defer(p.d, p.key)
			}

			return nil
		}
		dev := &e.Circuit.Devices[d]
		if dev.Inactive(netlist.DirSim) {
			continue
		}
		if !includeFuses {
			if m := e.Circuit.ModelOf(d); m != nil && (m.Tag == netlist.TagFuseOn || m.Tag == netlist.TagFuseOff) {
				// Fuses belong to the second sub-phase; keep this
				// event for then.
				parked = append(parked, parkedEvent{d, key})
				continue
			}
		}
		if err := e.propagateDevice(netlist.DirSim, d); err != nil {
			if isFatal(err) {
				return err
			}
			e.Log.WithFields(logrus.Fields{"stage": "propagate", "direction": "sim", "device": d, "error": err}).Warn("device recovered: marked inactive")
			dev.SetInactive(netlist.DirSim, true)
		}
	}
}

// minEqualsMax reports whether net's min and max envelope bounds
// (from the already-completed min/max passes) have converged to the
// same value, the second sim seeding condition.
func (e *Engine) minEqualsMax(net netlist.NetID) (netlist.Voltage, bool) {
	minConn := e.resolveTerminal(netlist.DirMin, net)
	maxConn := e.resolveTerminal(netlist.DirMax, net)
	if minConn.Voltage == netlist.UnknownVoltage || maxConn.Voltage == netlist.UnknownVoltage {
		return 0, false
	}
	if minConn.Voltage != maxConn.Voltage {
		return 0, false
	}

	return minConn.Voltage, true
}

// resolveLatches settles latched cross-coupled inverters: for every
// mutual pair recorded in Inverters whose nets are still
// undriven after the first sim sub-phase, pick the LatchGuess-chosen
// stable assignment and anchor both nets to it at the rail voltages
// found by railVoltage, so the second sub-phase seeds from them instead of leaving
// both nets perpetually UnknownVoltage because each is waiting on the
// other. Nets are visited in ascending ID order so reruns produce
// identical results.
func (e *Engine) resolveLatches() {
	for i := range e.Circuit.Nets {
		a := netlist.NetID(i)
		b, ok := e.Inverters[a]
		if !ok || a >= b || e.Inverters[b] != a {
			continue // each true mutual pair visited once, from its lower net
		}
		aConn := e.resolveTerminal(netlist.DirSim, a)
		bConn := e.resolveTerminal(netlist.DirSim, b)
		if aConn.Voltage != netlist.UnknownVoltage || bConn.Voltage != netlist.UnknownVoltage {
			continue // already driven externally
		}
		aHigh, ok := e.Latches[a]
		if !ok {
			aHigh = true // default stable assignment absent a recorded guess
		}
		hi, lo := a, b
		if !aHigh {
			hi, lo = b, a
		}
		// A settled latch sits at full rails: the high side at its
		// pull-up's supply, the low side at its pull-down's ground.
		hiV := e.railVoltage(hi, true, netlist.DirMax)
		loV := e.railVoltage(lo, false, netlist.DirMin)
		if hiV == netlist.UnknownVoltage || loV == netlist.UnknownVoltage {
			continue // rails not resolved, nothing to settle into yet
		}
		e.anchorSim(hi, hiV)
		e.anchorSim(lo, loV)
		e.LatchResolved = append(e.LatchResolved, LatchResult{NetA: a, NetB: b, AHigh: aHigh})
		e.Log.WithFields(logrus.Fields{"net_a": a, "net_b": b, "a_high": aHigh}).Debug("resolved latched cross-coupled inverter pair")
	}
}

// railVoltage finds the supply rail behind out's pull-up (wantP) or
// pull-down (!wantP) device and resolves its voltage in dir, for
// resolveLatches to settle a latch net against.
func (e *Engine) railVoltage(out netlist.NetID, wantP bool, dir netlist.Direction) netlist.Voltage {
	it := e.Circuit.DevicesAt(out, netlist.RoleDrain, nil)
	for {
		d, ok := it.Next()
		if !ok {
			return netlist.UnknownVoltage
		}
		m := e.Circuit.ModelOf(d)
		if m == nil {
			continue
		}
		if wantP && !m.Tag.IsPType() || !wantP && !m.Tag.IsNType() {
			continue
		}
		src := e.Circuit.Canonical(e.Circuit.Devices[d].Terminals[netlist.RoleSource])
		if src == netlist.InvalidNet {
			continue
		}

		return e.resolveTerminal(dir, src).Voltage
	}
}

// anchorSim pins net to voltage v for the sim direction by installing a
// synthetic sim-only power declaration and making the net its own
// virtual-net terminal. Only nets with no power declaration of their
// own are anchored; the second sim sub-phase's seeding then picks them
// up like any other declared sim net.
func (e *Engine) anchorSim(net netlist.NetID, v netlist.Voltage) {
	if e.Circuit.Nets[net].PowerRef != netlist.InvalidPower {
		return
	}
	pw := e.Circuit.AddPower(netlist.Power{
		Signal: e.Circuit.Nets[net].Name,
		Kinds:  netlist.PowerSim,
		Sim:    v,
	})
	e.Circuit.Nets[net].PowerRef = pw
	e.Sim.Set(net, net, 0)
}

// propagateSCRC runs the dedicated subthreshold-current-reduction
// power propagation enabled by CVC_SCRC: any
// net carrying a Hi-Z power declaration that the ordinary sim pass
// left UnknownVoltage is anchored as its own terminal, so a header/
// footer-isolated block reads as "known, unconstrained" rather than
// floating.
func (e *Engine) propagateSCRC() {
	for i := range e.Circuit.Nets {
		net := netlist.NetID(i)
		pw := e.Circuit.Nets[net].PowerRef
		if pw == netlist.InvalidPower || !e.Circuit.Powers[pw].HasKind(netlist.PowerHiZ) {
			continue
		}
		if e.resolveTerminal(netlist.DirSim, net).Voltage != netlist.UnknownVoltage {
			continue
		}
		e.Sim.Set(net, net, 0)
	}
}
