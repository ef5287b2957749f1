package propagate

import "github.com/katalvlaran/cvc/netlist"

// InverterMap records, per net, whose inverted output it is: built by
// recognizing a net driven by exactly one PMOS/NMOS pull-up/pull-down
// pair whose gates are tied to one other net. A mutual pair
// (Inverters[a]==b && Inverters[b]==a) is a cross-coupled latch.
type InverterMap map[netlist.NetID]netlist.NetID

// LatchGuess is a per-net high/low guess register consulted when
// resolveLatches must pick a stable assignment for an undriven
// cross-coupled inverter pair. true means "assume this net settles
// high".
type LatchGuess map[netlist.NetID]bool

// LatchResult records one cross-coupled inverter pair the sim pass
// resolved between its two sub-phases.
type LatchResult struct {
	NetA, NetB netlist.NetID
	AHigh      bool
}

// BuildInverterMap scans the flattened circuit for nets driven by
// exactly one pull-up/pull-down pair sharing a gate net and records
// output -> input for each. counts must come from
// netlist.ComputeConnectionCounts over the same circuit; nets with a
// drain count other than two are skipped without walking their
// adjacency lists.
func BuildInverterMap(c *netlist.Circuit, counts []netlist.ConnectionCount) InverterMap {
	m := make(InverterMap)
	for n := range c.Nets {
		out := netlist.NetID(n)
		if counts[out].Drain != 2 {
			continue
		}
		drains := c.DevicesAt(out, netlist.RoleDrain, nil).All()
		if len(drains) != 2 {
			continue
		}
		m0, m1 := c.ModelOf(drains[0]), c.ModelOf(drains[1])
		if m0 == nil || m1 == nil {
			continue
		}
		if !(m0.Tag.IsNType() && m1.Tag.IsPType() || m0.Tag.IsPType() && m1.Tag.IsNType()) {
			continue
		}
		g0 := c.Canonical(c.Devices[drains[0]].Terminals[netlist.RoleGate])
		g1 := c.Canonical(c.Devices[drains[1]].Terminals[netlist.RoleGate])
		if g0 == netlist.InvalidNet || g0 != g1 || g0 == out {
			continue
		}
		m[out] = g0
	}

	return m
}
