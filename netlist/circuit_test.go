package netlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSimpleInverter(t *testing.T) *Circuit {
	t.Helper()
	c := NewCircuit("inv")
	vdd := c.AddNet("VDD", InvalidInstance)
	gnd := c.AddNet("GND", InvalidInstance)
	a := c.AddNet("A", InvalidInstance)
	y := c.AddNet("Y", InvalidInstance)

	nmos := c.AddModel(Model{Name: "nmos", Tag: TagNMOS, Vth: 300})
	pmos := c.AddModel(Model{Name: "pmos", Tag: TagPMOS, Vth: -300})

	// PMOS: source=VDD, gate=A, drain=Y, bulk=VDD
	c.AddDevice(InvalidInstance, pmos, [4]NetID{vdd, a, y, vdd}, Params{L: 0.18, W: 1}, "inv")
	// NMOS: source=GND, gate=A, drain=Y, bulk=GND
	c.AddDevice(InvalidInstance, nmos, [4]NetID{gnd, a, y, gnd}, Params{L: 0.18, W: 1}, "inv")

	c.BuildAdjacency()

	return c
}

func TestDevicesAtWalksAdjacencyInOrder(t *testing.T) {
	c := buildSimpleInverter(t)
	y := NetID(3)
	drains := c.DevicesAt(y, RoleDrain, nil).All()
	require.Len(t, drains, 2)
	assert.Equal(t, DeviceID(0), drains[0])
	assert.Equal(t, DeviceID(1), drains[1])
}

func TestDevicesAtExcludePredicate(t *testing.T) {
	c := buildSimpleInverter(t)
	y := NetID(3)
	drains := c.DevicesAt(y, RoleDrain, func(d DeviceID) bool { return d == 0 }).All()
	require.Len(t, drains, 1)
	assert.Equal(t, DeviceID(1), drains[0])
}

func TestCanonicalIsIdentityBeforeEquivResolution(t *testing.T) {
	c := buildSimpleInverter(t)
	assert.Equal(t, NetID(2), c.Canonical(NetID(2)))
}

func TestDeviceStatusBitsIndependentPerQueue(t *testing.T) {
	var d Device
	d.SetPending(DirMin, true)
	assert.True(t, d.Pending(DirMin))
	assert.False(t, d.Pending(DirMax))
	assert.False(t, d.Pending(DirSim))

	d.SetInactive(DirMax, true)
	assert.True(t, d.Inactive(DirMax))
	assert.False(t, d.Inactive(DirMin))

	d.SetPending(DirMin, false)
	assert.False(t, d.Pending(DirMin))
	assert.True(t, d.Inactive(DirMax)) // unrelated bit unaffected
}

func TestConnectionCounts(t *testing.T) {
	c := buildSimpleInverter(t)
	counts := ComputeConnectionCounts(c)
	// Y (net 3) has two drains attached.
	assert.EqualValues(t, 2, counts[3].Drain)
	// A (net 2) has two gates attached.
	assert.EqualValues(t, 2, counts[2].Gate)
}
