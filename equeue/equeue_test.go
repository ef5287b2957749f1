package equeue

import (
	"testing"

	"github.com/katalvlaran/cvc/cvcerr"
	"github.com/katalvlaran/cvc/netlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCircuitWithDevices(n int) *netlist.Circuit {
	c := netlist.NewCircuit("t")
	for i := 0; i < n; i++ {
		c.AddDevice(netlist.InvalidInstance, netlist.InvalidModel, [4]netlist.NetID{}, netlist.Params{}, "")
	}

	return c
}

func mustDequeue(t *testing.T, q *Queue) netlist.DeviceID {
	t.Helper()
	d, _, ok, err := q.Dequeue()
	require.NoError(t, err)
	require.True(t, ok)

	return d
}

func TestMaxQueueOrdersHighestVoltageFirst(t *testing.T) {
	c := newCircuitWithDevices(3)
	q := New(netlist.DirMax, c)
	q.Enqueue(0, NewEventKey(100, 0, q.NextPosition()))
	q.Enqueue(1, NewEventKey(500, 0, q.NextPosition()))
	q.Enqueue(2, NewEventKey(300, 0, q.NextPosition()))

	assert.Equal(t, netlist.DeviceID(1), mustDequeue(t, q))
	assert.Equal(t, netlist.DeviceID(2), mustDequeue(t, q))
	assert.Equal(t, netlist.DeviceID(0), mustDequeue(t, q))
}

func TestMinQueueOrdersLowestVoltageFirst(t *testing.T) {
	c := newCircuitWithDevices(3)
	q := New(netlist.DirMin, c)
	q.Enqueue(0, NewEventKey(100, 0, q.NextPosition()))
	q.Enqueue(1, NewEventKey(500, 0, q.NextPosition()))
	q.Enqueue(2, NewEventKey(300, 0, q.NextPosition()))

	assert.Equal(t, netlist.DeviceID(0), mustDequeue(t, q))
	assert.Equal(t, netlist.DeviceID(2), mustDequeue(t, q))
	assert.Equal(t, netlist.DeviceID(1), mustDequeue(t, q))
}

func TestPendingBitPreventsDoubleEnqueue(t *testing.T) {
	c := newCircuitWithDevices(1)
	q := New(netlist.DirMin, c)
	q.Enqueue(0, NewEventKey(100, 0, q.NextPosition()))
	q.Enqueue(0, NewEventKey(200, 0, q.NextPosition()))
	assert.EqualValues(t, 1, q.EnqueueCount)

	mustDequeue(t, q)
	_, _, ok, err := q.Dequeue()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelayQueueDrainsAfterMainEmpty(t *testing.T) {
	c := newCircuitWithDevices(2)
	q := New(netlist.DirMin, c)
	q.Defer(1, NewEventKey(50, 0, q.NextPosition()))
	q.Enqueue(0, NewEventKey(999, 0, q.NextPosition()))

	assert.Equal(t, netlist.DeviceID(0), mustDequeue(t, q), "main queue drains before delay queue")
	assert.Equal(t, netlist.DeviceID(1), mustDequeue(t, q))
	assert.True(t, q.Empty())
}

func TestSimQueueBreaksTiesByInsertionOrder(t *testing.T) {
	c := newCircuitWithDevices(3)
	q := New(netlist.DirSim, c)
	q.Enqueue(0, NewEventKey(100, 0, q.NextPosition()))
	q.Enqueue(1, NewEventKey(100, 0, q.NextPosition()))
	q.Enqueue(2, NewEventKey(100, 0, q.NextPosition()))

	assert.Equal(t, netlist.DeviceID(0), mustDequeue(t, q))
	assert.Equal(t, netlist.DeviceID(1), mustDequeue(t, q))
	assert.Equal(t, netlist.DeviceID(2), mustDequeue(t, q))
}

func TestDequeueNotPendingIsFatal(t *testing.T) {
	c := newCircuitWithDevices(1)
	q := New(netlist.DirMin, c)
	q.Enqueue(0, NewEventKey(100, 0, q.NextPosition()))
	// Clearing the bit behind the queue's back violates invariant 4.
	c.Devices[0].SetPending(netlist.DirMin, false)

	_, _, _, err := q.Dequeue()
	require.Error(t, err)
	assert.ErrorIs(t, err, cvcerr.ErrDequeueNotPending)
}

func TestCancelClearsInactiveBit(t *testing.T) {
	c := newCircuitWithDevices(1)
	q := New(netlist.DirMin, c)
	c.Devices[0].SetInactive(netlist.DirMin, true)
	q.Cancel(0)
	assert.False(t, c.Devices[0].Inactive(netlist.DirMin))
}
