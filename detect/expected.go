package detect

import (
	"fmt"

	"github.com/katalvlaran/cvc/netlist"
	"github.com/katalvlaran/cvc/propagate"
)

// ExpectedValue fires when a (net, expected min/sim/max) declaration's
// actual resolved value mismatches the expectation. Unlike the device
// predicates this
// one is net-scoped rather than device-scoped (a Power declaration, not
// a device, carries the expectation), so it is called separately over
// Circuit.Nets rather than through the Detectors slice.
func ExpectedValue(c *netlist.Circuit, e *propagate.Engine, net netlist.NetID) []*Finding {
	pw := c.Nets[net].PowerRef
	if pw == netlist.InvalidPower {
		return nil
	}
	p := &c.Powers[pw]
	var findings []*Finding

	check := func(kind netlist.PowerKind, dir netlist.Direction, expected netlist.Voltage) {
		if !p.HasKind(kind) {
			return
		}
		actual := e.ResolveTerminal(dir, net).Voltage
		if actual == expected {
			return
		}
		detail := fmt.Sprintf("net %d (%s): expected %dmV, resolved %v", net, dir, expected, actual)
		f := newFinding(KindExpectedValue, netlist.InvalidDevice, c.Nets[net].ParentInstance, "", detail)
		findings = append(findings, f)
	}

	check(netlist.PowerExpectedMin, netlist.DirMin, p.Expected.Min)
	check(netlist.PowerExpectedSim, netlist.DirSim, p.Expected.Sim)
	check(netlist.PowerExpectedMax, netlist.DirMax, p.Expected.Max)

	return findings
}
