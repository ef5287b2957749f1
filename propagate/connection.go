package propagate

import (
	"github.com/katalvlaran/cvc/netlist"
	"github.com/katalvlaran/cvc/vnet"
)

// Connection is a fully-resolved view of one device terminal in one
// direction: the raw net, its equivalence-and-vnet-resolved final net
// and accumulated resistance, the voltage that final net carries (if
// any), and the power declaration backing it.
type Connection struct {
	Net             netlist.NetID
	FinalNet        netlist.NetID
	FinalResistance netlist.Resistance
	Voltage         netlist.Voltage
	PowerPtr        netlist.PowerID
}

// Connection4 bundles the four terminal Connections of a device,
// indexed by netlist.Role.
type Connection4 struct {
	Source, Gate, Drain, Bulk Connection
}

// ByRole returns the Connection for the given terminal role.
func (c4 Connection4) ByRole(r netlist.Role) Connection {
	switch r {
	case netlist.RoleSource:
		return c4.Source
	case netlist.RoleGate:
		return c4.Gate
	case netlist.RoleDrain:
		return c4.Drain
	default:
		return c4.Bulk
	}
}

// resolveTerminal resolves a single net through the given direction's
// virtual-net vector and reads the voltage its final net's Power
// declaration carries for that direction.
func (e *Engine) resolveTerminal(dir netlist.Direction, net netlist.NetID) Connection {
	return e.resolveIn(e.vectors(dir), dir, net)
}

// ResolveTerminal is the exported form of resolveTerminal, for the
// detect package and other callers outside propagate.
func (e *Engine) ResolveTerminal(dir netlist.Direction, net netlist.NetID) Connection {
	return e.resolveTerminal(dir, net)
}

// ResolveLeak resolves net through the saved leak-envelope snapshot
// for dir (Min or Max only), for predicates that need the widest
// envelope seen before the sim pass narrowed it.
func (e *Engine) ResolveLeak(dir netlist.Direction, net netlist.NetID) Connection {
	var vv *vnet.Vectors
	switch dir {
	case netlist.DirMin:
		vv = e.MinLeak
	case netlist.DirMax:
		vv = e.MaxLeak
	default:
		return Connection{Net: net, FinalNet: net, PowerPtr: netlist.InvalidPower, Voltage: netlist.UnknownVoltage}
	}
	if vv == nil {
		return Connection{Net: net, FinalNet: net, PowerPtr: netlist.InvalidPower, Voltage: netlist.UnknownVoltage}
	}

	return e.resolveIn(vv, dir, net)
}

// resolveIn is the shared implementation behind resolveTerminal and
// ResolveLeak: resolve net through vv, then read the voltage its final
// net's Power declaration carries for direction dir.
func (e *Engine) resolveIn(vv *vnet.Vectors, dir netlist.Direction, net netlist.NetID) Connection {
	final, res := vv.Resolve(net)
	conn := Connection{Net: net, FinalNet: final, FinalResistance: res, PowerPtr: netlist.InvalidPower, Voltage: netlist.UnknownVoltage}

	pw := e.Circuit.Nets[final].PowerRef
	if pw == netlist.InvalidPower {
		return conn
	}
	conn.PowerPtr = pw
	p := &e.Circuit.Powers[pw]
	switch dir {
	case netlist.DirMin:
		if p.HasKind(netlist.PowerMin) {
			conn.Voltage = p.Min
		}
	case netlist.DirMax:
		if p.HasKind(netlist.PowerMax) {
			conn.Voltage = p.Max
		}
	case netlist.DirSim:
		if p.HasKind(netlist.PowerSim) {
			conn.Voltage = p.Sim
		}
	}

	return conn
}

// Materialize builds the full four-terminal Connection view for a
// device in one direction.
func (e *Engine) Materialize(dir netlist.Direction, d netlist.DeviceID) Connection4 {
	s, g, dr, b := e.Circuit.TerminalNets(d)

	return Connection4{
		Source: e.resolveTerminal(dir, s),
		Gate:   e.resolveTerminal(dir, g),
		Drain:  e.resolveTerminal(dir, dr),
		Bulk:   e.resolveTerminal(dir, b),
	}
}

// isKnown reports whether net has a resolvable path to power in vv:
// either it is itself a power anchor, or it is not self-terminal (it
// has a next pointer somewhere).
func isKnown(c *netlist.Circuit, vv *vnet.Vectors, net netlist.NetID) bool {
	final, _ := vv.Resolve(net)
	if pw := c.Nets[final].PowerRef; pw != netlist.InvalidPower {
		// A declaration carrying only expected values pins no voltage,
		// so it does not make the net an anchor.
		expectOnly := netlist.PowerExpectedMin | netlist.PowerExpectedSim | netlist.PowerExpectedMax
		if c.Powers[pw].Kinds&^expectOnly != 0 {
			return true
		}
	}

	return !vv.IsTerminal(net)
}
