// Package equeue implements the priority event queues: one queue
// instance per propagation direction, each keyed by a compound
// (voltage, queue_position) composite, with a main queue and a delayed
// subqueue drained only once the main queue is entirely empty. Delayed
// entries are not interleaved with main entries key by key: a delayed
// entry waits behind every main entry, whatever its key.
//
// Go's stdlib has no generic ordered map, so ordering lives in a
// container/heap of distinct keys over a map[EventKey][]DeviceID of
// buckets, with a direction-parameterized Less.
package equeue
