package main

import (
	"fmt"

	"github.com/katalvlaran/cvc/config"
	"github.com/katalvlaran/cvc/netlist"
)

// CircuitBuilder constructs an already-flattened Circuit for one run.
// The CDL netlist parser that would normally produce one is an
// external collaborator; cmd/cvc only ever drives whatever Circuit a
// builder returns.
type CircuitBuilder func(cfg config.Config) (*netlist.Circuit, error)

// buildCircuit resolves the circuit this run verifies. Without a real
// CDL parser wired in, --demo is the only path that produces one;
// CVC_NETLIST is accepted and threaded through cfg so a future parser
// integration has somewhere to read it from, but this command does not
// itself parse CDL text.
func buildCircuit(cfg config.Config) (*netlist.Circuit, error) {
	if demo {
		return demoTwoInverterChain(), nil
	}
	if cfg.NetlistPath == "" {
		return nil, fmt.Errorf("cvc: nothing to verify: pass --demo, or set CVC_NETLIST in --rc and wire a netlist.Circuit builder for it")
	}

	return nil, fmt.Errorf("cvc: CVC_NETLIST=%q: no CDL parser is wired into this command; it only drives an already-flattened netlist.Circuit", cfg.NetlistPath)
}

// demoTwoInverterChain builds VDD=1.2V, GND=0V, two cascaded CMOS
// inverters with input A driven high.
// Expected result: no errors, sim[A]=1200, sim[M]=0, sim[Y]=1200 (two
// inversions restore the input polarity). Exercises the façade end to
// end without depending on the out-of-scope CDL parser.
func demoTwoInverterChain() *netlist.Circuit {
	const vdd netlist.Voltage = 1200
	const vth netlist.Voltage = 300

	c := netlist.NewCircuit("demo_two_inverter_chain")
	top := c.AddInstance("top", "INV2", netlist.InvalidInstance)

	nVDD := c.AddNet("VDD", top)
	nGND := c.AddNet("GND", top)
	nA := c.AddNet("A", top)
	nM := c.AddNet("M", top)
	nY := c.AddNet("Y", top)

	pVDD := c.AddPower(netlist.Power{
		Signal: "VDD",
		Kinds:  netlist.PowerMin | netlist.PowerSim | netlist.PowerMax,
		Min:    vdd, Sim: vdd, Max: vdd,
	})
	pGND := c.AddPower(netlist.Power{
		Signal: "GND",
		Kinds:  netlist.PowerMin | netlist.PowerSim | netlist.PowerMax,
	})
	pA := c.AddPower(netlist.Power{
		Signal: "A",
		Kinds:  netlist.PowerMin | netlist.PowerSim | netlist.PowerMax,
		Min:    vdd, Sim: vdd, Max: vdd,
	})
	// Two cascaded inverters restore the input polarity: A high drives
	// M low, M low drives Y high, so the expected value at Y is VDD.
	pY := c.AddPower(netlist.Power{
		Signal:   "Y",
		Kinds:    netlist.PowerExpectedSim,
		Expected: struct{ Min, Sim, Max netlist.Voltage }{Sim: vdd},
	})
	c.Nets[nVDD].PowerRef = pVDD
	c.Nets[nGND].PowerRef = pGND
	c.Nets[nA].PowerRef = pA
	c.Nets[nY].PowerRef = pY

	// Tolerances span the full VDD rail: a standard digital swing
	// between the two supplies is not itself an overvoltage condition.
	nmos := c.AddModel(netlist.Model{
		Name: "nmos", Tag: netlist.TagNMOS, Vth: vth,
		VgsTol: vdd, VdsTol: vdd, VbsTol: vdd, VbgTol: vdd,
	})
	pmos := c.AddModel(netlist.Model{
		Name: "pmos", Tag: netlist.TagPMOS, Vth: -vth,
		VgsTol: vdd, VdsTol: vdd, VbsTol: vdd, VbgTol: vdd,
	})

	addInverter := func(in, out netlist.NetID, cell string) {
		c.AddDevice(top, pmos, [4]netlist.NetID{nVDD, in, out, nVDD}, netlist.Params{}, cell)
		c.AddDevice(top, nmos, [4]netlist.NetID{nGND, in, out, nGND}, netlist.Params{}, cell)
	}
	addInverter(nA, nM, "INV1")
	addInverter(nM, nY, "INV2")

	return c
}
