package detect

import (
	"fmt"

	"github.com/katalvlaran/cvc/config"
	"github.com/katalvlaran/cvc/netlist"
	"github.com/katalvlaran/cvc/propagate"
)

// Detector is the shape every predicate in this file satisfies:
// evaluate device d and report a Finding if its rule fires. Each is a
// free function gated by a model-tag filter, not a method on a device
// hierarchy.
type Detector func(c *netlist.Circuit, e *propagate.Engine, cfg config.Config, d netlist.DeviceID) (*Finding, bool)

// Detectors lists every registered device-scoped predicate, for
// callers that want to run the full battery over a device without
// naming each function.
var Detectors = []Detector{
	ForwardDiode,
	Overvoltage,
	SourceBulk,
	GateSource,
	PossibleLeak,
	FloatingInput,
	LDDSource,
}

func cellOf(c *netlist.Circuit, d netlist.DeviceID) (string, netlist.InstanceID) {
	dev := &c.Devices[d]

	return dev.CellName, dev.ParentInstance
}

// ForwardDiode fires when a junction's resolved anode-max exceeds its
// resolved cathode-min by more than the configured threshold,
// and the two terminals have not already resolved to the same final
// net (a shared power path that would reroute the current instead of
// forward-biasing the junction).
func ForwardDiode(c *netlist.Circuit, e *propagate.Engine, cfg config.Config, d netlist.DeviceID) (*Finding, bool) {
	m := c.ModelOf(d)
	if m == nil {
		return nil, false
	}
	diodes := m.Diodes
	if len(diodes) == 0 {
		if m.Tag != netlist.TagDiode {
			return nil, false
		}
		// A bare D device without an explicit junction list is its own
		// anode-to-cathode pair, mirroring the propagation rule.
		diodes = []netlist.DiodePair{{Anode: netlist.RoleSource, Cathode: netlist.RoleDrain}}
	}
	cell, inst := cellOf(c, d)
	dev := &c.Devices[d]
	for _, dp := range diodes {
		anode := c.Canonical(dev.Terminals[dp.Anode])
		cathode := c.Canonical(dev.Terminals[dp.Cathode])
		if anode == netlist.InvalidNet || cathode == netlist.InvalidNet {
			continue
		}
		aConn := e.ResolveTerminal(netlist.DirMax, anode)
		cConn := e.ResolveTerminal(netlist.DirMin, cathode)
		if aConn.Voltage == netlist.UnknownVoltage || cConn.Voltage == netlist.UnknownVoltage {
			continue
		}
		if aConn.FinalNet == cConn.FinalNet {
			continue // shared power path reroutes current instead of forward-biasing
		}
		spread := aConn.Voltage - cConn.Voltage
		if spread > cfg.ForwardDiodeErrorThreshold {
			detail := fmt.Sprintf("anode-max %dmV > cathode-min %dmV (threshold %dmV)", aConn.Voltage, cConn.Voltage, cfg.ForwardDiodeErrorThreshold)

			return newFinding(KindForwardDiode, d, inst, cell, detail), true
		}
	}

	return nil, false
}

// overvoltagePair names the two terminal roles and the model/config
// tolerance one of the four Vbg/Vbs/Vds/Vgs checks compares.
type overvoltagePair struct {
	kind      Kind
	a, b      netlist.Role
	tol       func(*netlist.Model) netlist.Voltage
	threshold func(config.Config) netlist.Voltage
}

var overvoltagePairs = []overvoltagePair{
	{KindVgs, netlist.RoleGate, netlist.RoleSource, func(m *netlist.Model) netlist.Voltage { return m.VgsTol }, func(c config.Config) netlist.Voltage { return c.VgsErrorThreshold }},
	{KindVds, netlist.RoleDrain, netlist.RoleSource, func(m *netlist.Model) netlist.Voltage { return m.VdsTol }, func(c config.Config) netlist.Voltage { return c.VdsErrorThreshold }},
	{KindVbs, netlist.RoleBulk, netlist.RoleSource, func(m *netlist.Model) netlist.Voltage { return m.VbsTol }, func(c config.Config) netlist.Voltage { return c.VbsErrorThreshold }},
	{KindVbg, netlist.RoleBulk, netlist.RoleGate, func(m *netlist.Model) netlist.Voltage { return m.VbgTol }, func(c config.Config) netlist.Voltage { return c.VbgErrorThreshold }},
}

// Overvoltage runs the four Vgs/Vds/Vbs/Vbg terminal-pair spread
// checks against the model's tolerance, with the logic-ok variant
// (LogicOK field) firing when only the saved leak envelope breaches
// the tolerance while the simulated values do not.
func Overvoltage(c *netlist.Circuit, e *propagate.Engine, cfg config.Config, d netlist.DeviceID) (*Finding, bool) {
	m := c.ModelOf(d)
	if m == nil || !m.Tag.IsMos() {
		return nil, false
	}
	cell, inst := cellOf(c, d)
	dev := &c.Devices[d]

	for _, pair := range overvoltagePairs {
		aNet := c.Canonical(dev.Terminals[pair.a])
		bNet := c.Canonical(dev.Terminals[pair.b])
		if aNet == netlist.InvalidNet || bNet == netlist.InvalidNet {
			continue
		}
		// A model-specific tolerance overrides the configured default;
		// absent one, fall back to the CVC_*_ERROR_THRESHOLD default.
		// A spread exactly at tolerance is reported only when the
		// effective threshold is zero.
		tol := pair.tol(m)
		if tol == 0 {
			tol = pair.threshold(cfg)
		}

		if f, ok := checkSpread(e, netlist.DirSim, aNet, bNet, tol, pair.kind, d, inst, cell, false); ok {
			return f, true
		}
		// Logic-ok variant: sim values agree (or are unknown) but the
		// saved leak envelope still breaches tolerance.
		if f, ok := checkSpread(e, netlist.DirMax, aNet, bNet, tol, pair.kind, d, inst, cell, true); ok {
			return f, true
		}
	}

	return nil, false
}

func checkSpread(e *propagate.Engine, dir netlist.Direction, aNet, bNet netlist.NetID, tol netlist.Voltage, kind Kind, d netlist.DeviceID, inst netlist.InstanceID, cell string, logicOK bool) (*Finding, bool) {
	var aV, bV netlist.Voltage
	if logicOK {
		aV, bV = e.ResolveLeak(netlist.DirMax, aNet).Voltage, e.ResolveLeak(netlist.DirMin, bNet).Voltage
	} else {
		aV, bV = e.ResolveTerminal(dir, aNet).Voltage, e.ResolveTerminal(dir, bNet).Voltage
	}
	if aV == netlist.UnknownVoltage || bV == netlist.UnknownVoltage {
		return nil, false
	}
	spread := aV - bV
	if spread < 0 {
		spread = -spread
	}
	if spread <= tol {
		return nil, false
	}
	detail := fmt.Sprintf("spread %dmV exceeds tolerance %dmV", spread, tol)
	f := newFinding(kind, d, inst, cell, detail)
	f.LogicOK = logicOK

	return f, true
}

// SourceBulk fires when a mos bulk is biased wrong: the bulk
// voltage must be dominated by the min (nmos) or max (pmos) of the
// attached source/drain, or be an unrelated Hi-Z power family.
func SourceBulk(c *netlist.Circuit, e *propagate.Engine, cfg config.Config, d netlist.DeviceID) (*Finding, bool) {
	m := c.ModelOf(d)
	if m == nil || !m.Tag.IsMos() || cfg.SOI {
		return nil, false
	}
	cell, inst := cellOf(c, d)
	dev := &c.Devices[d]
	bulk := c.Canonical(dev.Terminals[netlist.RoleBulk])
	src := c.Canonical(dev.Terminals[netlist.RoleSource])
	drn := c.Canonical(dev.Terminals[netlist.RoleDrain])
	if bulk == netlist.InvalidNet {
		return nil, false
	}

	bulkPw := c.Nets[e.ResolveTerminal(netlist.DirSim, bulk).FinalNet].PowerRef
	if bulkPw != netlist.InvalidPower && c.Powers[bulkPw].HasKind(netlist.PowerHiZ) {
		return nil, false // unrelated Hi-Z power family is exempt
	}

	dir := netlist.DirMax
	if m.Tag.IsNType() {
		dir = netlist.DirMin
	}
	bulkV := e.ResolveTerminal(dir, bulk).Voltage
	srcV := e.ResolveTerminal(dir, src).Voltage
	drnV := e.ResolveTerminal(dir, drn).Voltage
	if bulkV == netlist.UnknownVoltage {
		return nil, false
	}

	dominant := srcV
	if drnV != netlist.UnknownVoltage {
		if m.Tag.IsNType() && drnV < dominant || !m.Tag.IsNType() && (dominant == netlist.UnknownVoltage || drnV > dominant) {
			dominant = drnV
		}
	}
	if dominant == netlist.UnknownVoltage {
		return nil, false
	}
	if bulkV == dominant {
		return nil, false
	}
	detail := fmt.Sprintf("bulk %dmV not dominated by source/drain %dmV (%s)", bulkV, dominant, dir)

	return newFinding(KindSourceBulk, d, inst, cell, detail), true
}

// GateSource fires on the pass-gate threshold-loss signature: a transistor
// whose gate clears the conduction threshold against one diffusion
// terminal while the opposite diffusion terminal's envelope still
// reaches past the gate voltage on the other pass, the signature of a
// pass-gate that loses a threshold drop instead of fully conducting.
// Evaluated symmetrically with source and drain swapped, excluding a
// capacitor-like short between them unless both plates are power nets,
// and excluding a terminal pair that is itself the gate net.
func GateSource(c *netlist.Circuit, e *propagate.Engine, cfg config.Config, d netlist.DeviceID) (*Finding, bool) {
	m := c.ModelOf(d)
	if m == nil || !m.Tag.IsMos() {
		return nil, false
	}
	cell, inst := cellOf(c, d)
	dev := &c.Devices[d]
	gate := c.Canonical(dev.Terminals[netlist.RoleGate])
	src := c.Canonical(dev.Terminals[netlist.RoleSource])
	drn := c.Canonical(dev.Terminals[netlist.RoleDrain])
	if gate == netlist.InvalidNet || src == netlist.InvalidNet || drn == netlist.InvalidNet {
		return nil, false
	}
	if src == drn && !(isPowerNet(c, src) && isPowerNet(c, gate)) {
		return nil, false // capacitor-like short to a non-power plate, exempt
	}

	dir, oppDir := netlist.DirMin, netlist.DirMax
	if !m.Tag.IsNType() {
		dir, oppDir = netlist.DirMax, netlist.DirMin
	}

	if f, ok := gateVsOther(e, dir, oppDir, m.Tag.IsNType(), m.Vth, gate, src, drn, d, inst, cell); ok {
		return f, true
	}
	if drn != src {
		if f, ok := gateVsOther(e, dir, oppDir, m.Tag.IsNType(), m.Vth, gate, drn, src, d, inst, cell); ok {
			return f, true
		}
	}

	return nil, false
}

func isPowerNet(c *netlist.Circuit, n netlist.NetID) bool {
	return n != netlist.InvalidNet && c.Nets[n].PowerRef != netlist.InvalidPower
}

// gateVsOther checks one of the two symmetric branches of GateSource:
// ref is the terminal the gate is measured against (source or drain),
// other is the remaining one. Fires when the gate clears ref's
// threshold bound but stays short of other's opposing-pass envelope,
// i.e. other still reaches past where the gate sits.
func gateVsOther(e *propagate.Engine, dir, oppDir netlist.Direction, isN bool, vth netlist.Voltage, gate, ref, other netlist.NetID, d netlist.DeviceID, inst netlist.InstanceID, cell string) (*Finding, bool) {
	if gate == other {
		return nil, false
	}
	gateV := e.ResolveTerminal(dir, gate).Voltage
	refV := e.ResolveTerminal(dir, ref).Voltage
	otherV := e.ResolveTerminal(oppDir, other).Voltage
	if gateV == netlist.UnknownVoltage || refV == netlist.UnknownVoltage || otherV == netlist.UnknownVoltage {
		return nil, false
	}

	bound := refV
	if isN {
		if refV+vth > bound {
			bound = refV + vth
		}
		if !(gateV > bound && gateV < otherV) {
			return nil, false
		}
	} else {
		if refV+vth < bound {
			bound = refV + vth
		}
		if !(gateV < bound && gateV > otherV) {
			return nil, false
		}
	}
	detail := fmt.Sprintf("gate %dmV clears %dmV but opposing envelope reaches %dmV past it", gateV, bound, otherV)

	return newFinding(KindGateSource, d, inst, cell, detail), true
}

// PossibleLeak fires on a plausible channel leak: known
// sim voltages on both source and drain that differ, with an
// estimated leak current over the channel resistance exceeding
// leak_limit; or either terminal only envelope-known with the
// envelope-implied current exceeding leak_limit.
func PossibleLeak(c *netlist.Circuit, e *propagate.Engine, cfg config.Config, d netlist.DeviceID) (*Finding, bool) {
	m := c.ModelOf(d)
	if m == nil || !m.Tag.IsMos() {
		return nil, false
	}
	cell, inst := cellOf(c, d)
	dev := &c.Devices[d]
	src := c.Canonical(dev.Terminals[netlist.RoleSource])
	drn := c.Canonical(dev.Terminals[netlist.RoleDrain])
	if src == netlist.InvalidNet || drn == netlist.InvalidNet {
		return nil, false
	}

	res, err := m.Resistance(dev.Params)
	if err != nil || res == 0 {
		return nil, false
	}

	simS := e.ResolveTerminal(netlist.DirSim, src).Voltage
	simD := e.ResolveTerminal(netlist.DirSim, drn).Voltage
	if simS != netlist.UnknownVoltage && simD != netlist.UnknownVoltage && simS != simD {
		if leaks(simS, simD, res, cfg.LeakLimit) {
			detail := fmt.Sprintf("sim leak: %dmV/%dmV across %dohm exceeds %gA", simS, simD, res, cfg.LeakLimit)

			return newFinding(KindPossibleLeak, d, inst, cell, detail), true
		}

		return nil, false
	}

	minS, maxS := e.ResolveTerminal(netlist.DirMin, src).Voltage, e.ResolveTerminal(netlist.DirMax, src).Voltage
	minD, maxD := e.ResolveTerminal(netlist.DirMin, drn).Voltage, e.ResolveTerminal(netlist.DirMax, drn).Voltage
	if minS == netlist.UnknownVoltage || maxS == netlist.UnknownVoltage || minD == netlist.UnknownVoltage || maxD == netlist.UnknownVoltage {
		return nil, false
	}
	if leaks(minS, maxD, res, cfg.LeakLimit) || leaks(minD, maxS, res, cfg.LeakLimit) {
		detail := fmt.Sprintf("envelope leak across %dohm exceeds %gA", res, cfg.LeakLimit)

		return newFinding(KindPossibleLeak, d, inst, cell, detail), true
	}

	return nil, false
}

// leaks estimates I = V/R (millivolt and raw-ohm units) and compares
// against limit amperes.
func leaks(a, b netlist.Voltage, res netlist.Resistance, limit float64) bool {
	delta := float64(a - b)
	if delta < 0 {
		delta = -delta
	}
	volts := delta / netlist.VoltageScale
	amps := volts / float64(res)

	return amps > limit
}

// FloatingInput fires on an undriven gate: a gate net whose
// sim voltage is unknown and its min/max envelope is fully open. When
// the caller has set ignore_no_leak_floating, it additionally requires
// at least one attached device to carry a real leak path.
func FloatingInput(c *netlist.Circuit, e *propagate.Engine, cfg config.Config, d netlist.DeviceID) (*Finding, bool) {
	m := c.ModelOf(d)
	if m == nil || !m.Tag.IsMos() {
		return nil, false
	}
	cell, inst := cellOf(c, d)
	dev := &c.Devices[d]
	gate := c.Canonical(dev.Terminals[netlist.RoleGate])
	if gate == netlist.InvalidNet {
		return nil, false
	}

	sim := e.ResolveTerminal(netlist.DirSim, gate)
	if sim.Voltage != netlist.UnknownVoltage {
		return nil, false
	}
	minV := e.ResolveTerminal(netlist.DirMin, gate).Voltage
	maxV := e.ResolveTerminal(netlist.DirMax, gate).Voltage
	if minV != netlist.UnknownVoltage || maxV != netlist.UnknownVoltage {
		return nil, false
	}

	if cfg.IgnoreNoLeakFloating && !gateHasLeakPath(c, gate) {
		return nil, false
	}

	detail := fmt.Sprintf("gate net %d has no known sim or envelope voltage", gate)

	return newFinding(KindFloatingInput, d, inst, cell, detail), true
}

// gateHasLeakPath reports whether any device attached to gate (on any
// terminal role) has a model other than a capacitor, i.e. a
// conduction path rather than a pure capacitive coupling.
func gateHasLeakPath(c *netlist.Circuit, gate netlist.NetID) bool {
	for role := netlist.Role(0); role < netlist.Role(netlist.RoleCount); role++ {
		it := c.DevicesAt(gate, role, nil)
		for {
			dd, ok := it.Next()
			if !ok {
				break
			}
			m := c.ModelOf(dd)
			if m == nil || m.Tag == netlist.TagCapacitor {
				continue
			}

			return true
		}
	}

	return false
}

// LDDSource fires on an LDD-flavored mos
// conducting in the wrong topological direction, source higher-min
// than drain while the gate is off.
func LDDSource(c *netlist.Circuit, e *propagate.Engine, cfg config.Config, d netlist.DeviceID) (*Finding, bool) {
	m := c.ModelOf(d)
	if m == nil || !m.Tag.IsLDD() {
		return nil, false
	}
	cell, inst := cellOf(c, d)
	dev := &c.Devices[d]
	src := c.Canonical(dev.Terminals[netlist.RoleSource])
	drn := c.Canonical(dev.Terminals[netlist.RoleDrain])
	gate := c.Canonical(dev.Terminals[netlist.RoleGate])
	if src == netlist.InvalidNet || drn == netlist.InvalidNet || gate == netlist.InvalidNet {
		return nil, false
	}

	gateV := e.ResolveTerminal(netlist.DirSim, gate).Voltage
	srcV := e.ResolveTerminal(netlist.DirMin, src).Voltage
	drnV := e.ResolveTerminal(netlist.DirMin, drn).Voltage
	if gateV == netlist.UnknownVoltage || srcV == netlist.UnknownVoltage || drnV == netlist.UnknownVoltage {
		return nil, false
	}

	off := gateV <= srcV+m.Vth
	if m.Tag == netlist.TagLDDP {
		off = gateV >= srcV+m.Vth
	}
	if !off {
		return nil, false
	}
	if srcV <= drnV {
		return nil, false
	}
	detail := fmt.Sprintf("source min %dmV > drain min %dmV with gate off", srcV, drnV)

	return newFinding(KindLDDSource, d, inst, cell, detail), true
}
