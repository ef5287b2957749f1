package cvc

import (
	"context"
	"testing"

	"github.com/katalvlaran/cvc/config"
	"github.com/katalvlaran/cvc/netlist"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)

	return l
}

// buildFusedNet wires VDD --FUSE_ON-- X: the fuse is the only path
// giving X a known voltage.
func buildFusedNet(t *testing.T) (*netlist.Circuit, netlist.DeviceID, netlist.NetID) {
	t.Helper()
	c := netlist.NewCircuit("fused")
	vdd := c.AddNet("VDD", netlist.InvalidInstance)
	x := c.AddNet("X", netlist.InvalidInstance)
	pVDD := c.AddPower(netlist.Power{
		Kinds: netlist.PowerMin | netlist.PowerMax | netlist.PowerSim,
		Min:   1200, Max: 1200, Sim: 1200,
	})
	c.Nets[vdd].PowerRef = pVDD

	fuse := c.AddModel(netlist.Model{Name: "fuse", Tag: netlist.TagFuseOn})
	d := c.AddDevice(netlist.InvalidInstance, fuse, [4]netlist.NetID{vdd, netlist.InvalidNet, x, netlist.InvalidNet}, netlist.Params{}, "FUSE")

	return c, d, x
}

func TestFuseToggleRoundTripRestoresFinalNets(t *testing.T) {
	c, d, x := buildFusedNet(t)
	db := New(c, config.Default(), quietLogger())
	ctx := context.Background()

	require.NoError(t, db.Run(ctx))
	before := db.Engine.ResolveTerminal(netlist.DirMin, x)
	require.Equal(t, netlist.Voltage(1200), before.Voltage)

	blown := false
	db.OverrideFuse(d, &blown)
	require.NoError(t, db.Run(ctx))
	assert.Equal(t, netlist.UnknownVoltage, db.Engine.ResolveTerminal(netlist.DirMin, x).Voltage,
		"a blown fuse cuts X off from power")

	db.OverrideFuse(d, nil)
	require.NoError(t, db.Run(ctx))
	after := db.Engine.ResolveTerminal(netlist.DirMin, x)
	assert.Equal(t, before.FinalNet, after.FinalNet)
	assert.Equal(t, before.FinalResistance, after.FinalResistance)
	assert.Equal(t, before.Voltage, after.Voltage)
}

func TestRunTwiceProducesIdenticalFindings(t *testing.T) {
	build := func() *Database {
		c := netlist.NewCircuit("diode")
		hi := c.AddNet("HI", netlist.InvalidInstance)
		lo := c.AddNet("LO", netlist.InvalidInstance)
		pHi := c.AddPower(netlist.Power{Kinds: netlist.PowerMin | netlist.PowerMax, Min: 1200, Max: 1200})
		pLo := c.AddPower(netlist.Power{Kinds: netlist.PowerMin | netlist.PowerMax})
		c.Nets[hi].PowerRef = pHi
		c.Nets[lo].PowerRef = pLo
		diode := c.AddModel(netlist.Model{
			Name: "d", Tag: netlist.TagDiode,
			Diodes: []netlist.DiodePair{{Anode: netlist.RoleSource, Cathode: netlist.RoleDrain}},
		})
		c.AddDevice(netlist.InvalidInstance, diode, [4]netlist.NetID{hi, netlist.InvalidNet, lo, netlist.InvalidNet}, netlist.Params{}, "D1")

		return New(c, config.Default(), quietLogger())
	}

	ctx := context.Background()
	first := build()
	require.NoError(t, first.Run(ctx))
	second := build()
	require.NoError(t, second.Run(ctx))

	require.Equal(t, len(first.Findings), len(second.Findings))
	for i := range first.Findings {
		assert.Equal(t, first.Findings[i].Signature, second.Findings[i].Signature)
	}
	assert.NotEmpty(t, first.Findings, "forward-biased diode from rail to rail must be reported")
}

func TestRunResolvesEquivalenceBeforePropagation(t *testing.T) {
	c := netlist.NewCircuit("eq")
	vdd := c.AddNet("VDD", netlist.InvalidInstance)
	a := c.AddNet("A", netlist.InvalidInstance)
	b := c.AddNet("B", netlist.InvalidInstance)
	pVDD := c.AddPower(netlist.Power{Kinds: netlist.PowerMin | netlist.PowerMax | netlist.PowerSim, Min: 1200, Max: 1200, Sim: 1200})
	c.Nets[vdd].PowerRef = pVDD

	sw := c.AddModel(netlist.Model{Name: "sw", Tag: netlist.TagSwitchOn})
	c.AddDevice(netlist.InvalidInstance, sw, [4]netlist.NetID{vdd, netlist.InvalidNet, a, netlist.InvalidNet}, netlist.Params{}, "")
	c.AddDevice(netlist.InvalidInstance, sw, [4]netlist.NetID{a, netlist.InvalidNet, b, netlist.InvalidNet}, netlist.Params{}, "")

	db := New(c, config.Default(), quietLogger())
	require.NoError(t, db.Run(context.Background()))

	// All three nets collapse to one equivalence class anchored at VDD.
	assert.Equal(t, c.Canonical(vdd), c.Canonical(b))
	assert.Equal(t, netlist.Voltage(1200), db.Engine.ResolveTerminal(netlist.DirSim, c.Canonical(b)).Voltage)
	assert.Empty(t, db.Findings)
}
