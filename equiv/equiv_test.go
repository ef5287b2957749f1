package equiv

import (
	"testing"

	"github.com/katalvlaran/cvc/netlist"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel) // quiet in tests

	return l
}

func TestResolveUnionsSwitchTerminals(t *testing.T) {
	c := netlist.NewCircuit("t")
	a := c.AddNet("A", netlist.InvalidInstance)
	b := c.AddNet("B", netlist.InvalidInstance)
	sw := c.AddModel(netlist.Model{Name: "sw", Tag: netlist.TagSwitchOn})
	c.AddDevice(netlist.InvalidInstance, sw, [4]netlist.NetID{a, netlist.InvalidNet, b, netlist.InvalidNet}, netlist.Params{}, "")

	conflicts, err := Resolve(c, newTestLogger())
	require.NoError(t, err)
	assert.Empty(t, conflicts)
	assert.Equal(t, c.Equiv[a], c.Equiv[b])
	assert.Equal(t, c.Equiv[a], c.Canonical(a))
}

func TestResolveCanonicalIsMinimum(t *testing.T) {
	c := netlist.NewCircuit("t")
	a := c.AddNet("A", netlist.InvalidInstance) // 0
	b := c.AddNet("B", netlist.InvalidInstance) // 1
	cc := c.AddNet("C", netlist.InvalidInstance) // 2
	sw := c.AddModel(netlist.Model{Name: "sw", Tag: netlist.TagSwitchOn})
	c.AddDevice(netlist.InvalidInstance, sw, [4]netlist.NetID{b, netlist.InvalidNet, cc, netlist.InvalidNet}, netlist.Params{}, "")
	c.AddDevice(netlist.InvalidInstance, sw, [4]netlist.NetID{a, netlist.InvalidNet, b, netlist.InvalidNet}, netlist.Params{}, "")

	_, err := Resolve(c, newTestLogger())
	require.NoError(t, err)
	assert.Equal(t, netlist.NetID(0), c.Canonical(a))
	assert.Equal(t, netlist.NetID(0), c.Canonical(b))
	assert.Equal(t, netlist.NetID(0), c.Canonical(cc))
}

func TestResolvePowerConflictRecordsLeakButStillMerges(t *testing.T) {
	c := netlist.NewCircuit("t")
	a := c.AddNet("VDD", netlist.InvalidInstance)
	b := c.AddNet("GND", netlist.InvalidInstance)
	pVDD := c.AddPower(netlist.Power{Signal: "VDD", Kinds: netlist.PowerMin | netlist.PowerMax, Min: 1200, Max: 1200})
	pGND := c.AddPower(netlist.Power{Signal: "GND", Kinds: netlist.PowerMin | netlist.PowerMax, Min: 0, Max: 0})
	c.Nets[a].PowerRef = pVDD
	c.Nets[b].PowerRef = pGND
	sw := c.AddModel(netlist.Model{Name: "sw", Tag: netlist.TagSwitchOn})
	dev := c.AddDevice(netlist.InvalidInstance, sw, [4]netlist.NetID{a, netlist.InvalidNet, b, netlist.InvalidNet}, netlist.Params{}, "")

	conflicts, err := Resolve(c, newTestLogger())
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, dev, conflicts[0].Device)
	// Merge still happened.
	assert.Equal(t, c.Canonical(a), c.Canonical(b))
}

func TestResolveSamePowerIsSilentlySkipped(t *testing.T) {
	c := netlist.NewCircuit("t")
	a := c.AddNet("VDD1", netlist.InvalidInstance)
	b := c.AddNet("VDD2", netlist.InvalidInstance)
	p := netlist.Power{Kinds: netlist.PowerMin | netlist.PowerMax, Min: 1200, Max: 1200}
	pa := c.AddPower(p)
	pb := c.AddPower(p)
	c.Nets[a].PowerRef = pa
	c.Nets[b].PowerRef = pb
	sw := c.AddModel(netlist.Model{Name: "sw", Tag: netlist.TagSwitchOn})
	c.AddDevice(netlist.InvalidInstance, sw, [4]netlist.NetID{a, netlist.InvalidNet, b, netlist.InvalidNet}, netlist.Params{}, "")

	conflicts, err := Resolve(c, newTestLogger())
	require.NoError(t, err)
	assert.Empty(t, conflicts)
	assert.Equal(t, c.Canonical(a), c.Canonical(b))
}
