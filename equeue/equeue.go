package equeue

import (
	"container/heap"
	"fmt"

	"github.com/katalvlaran/cvc/cvcerr"
	"github.com/katalvlaran/cvc/netlist"
)

// keyHeap is a container/heap of distinct EventKeys, ordered by a
// direction-parameterized Less. Each key in the heap corresponds to a
// non-empty bucket in the owning Queue.
type keyHeap struct {
	keys []EventKey
	dir  netlist.Direction
}

func (h keyHeap) Len() int            { return len(h.keys) }
func (h keyHeap) Less(i, j int) bool  { return Less(h.dir, h.keys[i], h.keys[j]) }
func (h keyHeap) Swap(i, j int)       { h.keys[i], h.keys[j] = h.keys[j], h.keys[i] }
func (h *keyHeap) Push(x interface{}) { h.keys = append(h.keys, x.(EventKey)) }
func (h *keyHeap) Pop() interface{} {
	old := h.keys
	n := len(old)
	k := old[n-1]
	h.keys = old[:n-1]

	return k
}

// Queue is one direction's event queue: a main priority queue plus a
// delayed subqueue drained only after the main queue is entirely empty,
// not per key. EnqueueCount/DequeueCount are diagnostics counters.
type Queue struct {
	Dir     netlist.Direction
	circuit *netlist.Circuit

	main      *keyHeap
	mainBkt   map[EventKey][]netlist.DeviceID
	delay     *keyHeap
	delayBkt  map[EventKey][]netlist.DeviceID
	nextSeq   int64

	EnqueueCount int64
	DequeueCount int64
}

// New builds an empty queue for direction dir over circuit c. Devices
// are tracked via c.Devices[d].Status pending/inactive bits, shared
// with the other two directions' queues.
func New(dir netlist.Direction, c *netlist.Circuit) *Queue {
	return &Queue{
		Dir:      dir,
		circuit:  c,
		main:     &keyHeap{dir: dir},
		mainBkt:  make(map[EventKey][]netlist.DeviceID),
		delay:    &keyHeap{dir: dir},
		delayBkt: make(map[EventKey][]netlist.DeviceID),
	}
}

// NextPosition returns the next insertion-sequence number, used by
// callers building an EventKey so that Sim-queue ties break FIFO.
func (q *Queue) NextPosition() int64 {
	q.nextSeq++

	return q.nextSeq
}

// Enqueue inserts device d under key into the main queue; if d's
// pending bit for this direction is already set, it does nothing.
func (q *Queue) Enqueue(d netlist.DeviceID, key EventKey) {
	dev := &q.circuit.Devices[d]
	if dev.Pending(q.Dir) {
		return
	}
	dev.SetPending(q.Dir, true)
	if _, ok := q.mainBkt[key]; !ok {
		heap.Push(q.main, key)
	}
	q.mainBkt[key] = append(q.mainBkt[key], d)
	q.EnqueueCount++
}

// Defer inserts device d under key into the delay queue. Used by
// conduction rules that must not re-examine a
// device within the same sweep of the current key (e.g. a device
// whose own action would otherwise immediately re-trigger itself).
func (q *Queue) Defer(d netlist.DeviceID, key EventKey) {
	dev := &q.circuit.Devices[d]
	if dev.Pending(q.Dir) {
		return
	}
	dev.SetPending(q.Dir, true)
	if _, ok := q.delayBkt[key]; !ok {
		heap.Push(q.delay, key)
	}
	q.delayBkt[key] = append(q.delayBkt[key], d)
	q.EnqueueCount++
}

// Dequeue pops the smallest-key entry from the main queue, clearing
// the device's pending bit. If the main queue is empty, it first moves
// the whole delay queue into it (see promoteDelay). Returns ok=false once both
// queues are empty.
//
// A popped device whose pending bit is not set violates the
// pending-iff-enqueued invariant; that is returned as a KindFatal
// error for the engine to abort on.
func (q *Queue) Dequeue() (netlist.DeviceID, EventKey, bool, error) {
	if q.main.Len() == 0 && q.delay.Len() > 0 {
		q.promoteDelay()
	}
	if q.main.Len() == 0 {
		return netlist.InvalidDevice, EventKey{}, false, nil
	}

	key := q.main.keys[0]
	bucket := q.mainBkt[key]
	d := bucket[0]
	bucket = bucket[1:]
	if len(bucket) == 0 {
		delete(q.mainBkt, key)
		heap.Pop(q.main)
	} else {
		q.mainBkt[key] = bucket
	}

	dev := &q.circuit.Devices[d]
	if !dev.Pending(q.Dir) {
		return netlist.InvalidDevice, EventKey{}, false,
			cvcerr.Fatal(fmt.Errorf("%w: device=%d queue=%s", cvcerr.ErrDequeueNotPending, d, q.Dir))
	}
	dev.SetPending(q.Dir, false)
	q.DequeueCount++

	return d, key, true, nil
}

// promoteDelay moves every delay-queue bucket into the main queue
// wholesale once the main queue is empty. A device's pending bit is
// untouched by the move since it was already set when deferred.
func (q *Queue) promoteDelay() {
	for q.delay.Len() > 0 {
		key := heap.Pop(q.delay).(EventKey)
		bucket := q.delayBkt[key]
		delete(q.delayBkt, key)
		if _, ok := q.mainBkt[key]; !ok {
			heap.Push(q.main, key)
		}
		q.mainBkt[key] = append(q.mainBkt[key], bucket...)
	}
}

// Empty reports whether both the main and delay queues are drained.
func (q *Queue) Empty() bool { return q.main.Len() == 0 && q.delay.Len() == 0 }

// Cancel clears device d's inactive bit for this direction, making it
// eligible for re-enqueue. A stale entry already sitting in a bucket
// is discarded lazily: Dequeue still returns it (its pending bit is
// still set), and the caller's conduction rule is expected to re-check
// Inactive before doing further work.
func (q *Queue) Cancel(d netlist.DeviceID) {
	q.circuit.Devices[d].SetInactive(q.Dir, false)
}
