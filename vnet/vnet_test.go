package vnet

import (
	"testing"

	"github.com/katalvlaran/cvc/netlist"
	"github.com/stretchr/testify/assert"
)

func TestFreshVectorsAreSelfTerminal(t *testing.T) {
	v := New(4)
	for i := 0; i < 4; i++ {
		assert.True(t, v.IsTerminal(netlist.NetID(i)))
		final, res := v.Resolve(netlist.NetID(i))
		assert.Equal(t, netlist.NetID(i), final)
		assert.EqualValues(t, 0, res)
	}
}

func TestResolveChain(t *testing.T) {
	// 0 -> 1 -> 2 (power), resistances 5 and 7.
	v := New(3)
	v.Set(1, 2, 7)
	v.Set(0, 1, 5)

	final, res := v.Resolve(0)
	assert.Equal(t, netlist.NetID(2), final)
	assert.EqualValues(t, 12, res)

	// Intermediate net resolves correctly too.
	final1, res1 := v.Resolve(1)
	assert.Equal(t, netlist.NetID(2), final1)
	assert.EqualValues(t, 7, res1)
}

func TestResolveCacheInvalidatedByWrite(t *testing.T) {
	v := New(3)
	v.Set(0, 1, 1)
	v.Set(1, 2, 1)
	final, res := v.Resolve(0)
	assert.Equal(t, netlist.NetID(2), final)
	assert.EqualValues(t, 2, res)

	// Rewriting an upstream net changes the result on next resolve.
	v.Set(1, 2, 10)
	final, res = v.Resolve(0)
	assert.Equal(t, netlist.NetID(2), final)
	assert.EqualValues(t, 11, res)
}

func TestResolveSaturatesResistance(t *testing.T) {
	v := New(2)
	v.Set(0, 1, netlist.MaxResistance-1)
	_, res := v.Resolve(0)
	assert.Equal(t, netlist.MaxResistance, res+1) // accumulated at or just under saturation

	v2 := New(2)
	v2.Set(0, 1, netlist.MaxResistance)
	_, res2 := v2.Resolve(0)
	assert.Equal(t, netlist.MaxResistance, res2)
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	v := New(2)
	v.Set(0, 1, 3)
	snap := v.Snapshot()
	v.Set(0, 1, 99)

	_, res := snap.Resolve(0)
	assert.EqualValues(t, 3, res)
}
