package vnet

import "github.com/katalvlaran/cvc/netlist"

// entry is the per-net, per-direction virtual-net record: the one-hop
// pointer toward driving power, its resistance, and the cached
// fixed-point of the chain.
type entry struct {
	next            netlist.NetID
	resistance      netlist.Resistance
	final           netlist.NetID
	finalResistance netlist.Resistance
	lastUpdate      uint64 // stamped with the global counter at write time
	resolvedAt      uint64 // global counter value observed at last successful resolve
}

// Vectors is one of the three parallel virtual-net vectors (min, sim,
// max); the two leak-envelope snapshots are plain Vectors values taken
// via Snapshot between propagation stages.
type Vectors struct {
	entries []entry
	counter uint64
}

// New allocates a Vectors sized for n nets, with every net initialized
// as its own terminal (next == self): a self-terminal net is either a
// power anchor or has no path to power in this direction.
func New(n int) *Vectors {
	v := &Vectors{entries: make([]entry, n)}
	for i := range v.entries {
		v.entries[i] = entry{next: netlist.NetID(i), final: netlist.NetID(i)}
	}

	return v
}

// Set writes next/res for net n and bumps the vector's global update
// counter, invalidating every net's resolve cache (a conservative but
// simple invalidation rule: any write anywhere forces the next Resolve
// call to re-walk, rather than tracking fine-grained upstream
// dependency sets).
func (v *Vectors) Set(n netlist.NetID, next netlist.NetID, res netlist.Resistance) {
	v.counter++
	v.entries[n].next = next
	v.entries[n].resistance = res
	v.entries[n].lastUpdate = v.counter
}

// IsTerminal reports whether n currently points at itself: a power
// anchor, or a net with no path to power in this direction.
func (v *Vectors) IsTerminal(n netlist.NetID) bool {
	return v.entries[n].next == n
}

// Resolve walks next pointers from n, accumulating resistance
// (saturating at netlist.MaxResistance), until a fixed point
// (next==self) or a cycle is detected by counting hops against the
// number of entries. It back-fills the path-compression cache for
// every net it touches along the walk, and returns the cached result
// immediately if n's cache is already valid.
func (v *Vectors) Resolve(n netlist.NetID) (netlist.NetID, netlist.Resistance) {
	e := &v.entries[n]
	if e.resolvedAt == v.counter {
		return e.final, e.finalResistance
	}

	limit := len(v.entries)
	path := make([]netlist.NetID, 0, 8)
	cur := n
	var acc netlist.Resistance
	for hops := 0; ; hops++ {
		if hops > limit {
			// Cycle: treat the last-seen net as its own final net.
			// The engine's shiftVirtualNet skip rule prevents cycles
			// in practice; this is the backstop.
			break
		}
		path = append(path, cur)
		ce := &v.entries[cur]
		if ce.next == cur {
			break
		}
		acc = netlist.AddResistance(acc, ce.resistance)
		cur = ce.next
	}

	final := cur
	finalRes := acc
	stamp := v.counter
	// Back-fill the path-compression cache: each net on the path gets
	// final and its own remaining resistance to final (acc minus the
	// prefix sum of hops already walked to reach it).
	var prefix netlist.Resistance
	for _, net := range path {
		pe := &v.entries[net]
		pe.final = final
		pe.finalResistance = finalRes - prefix
		pe.resolvedAt = stamp
		prefix = netlist.AddResistance(prefix, pe.resistance)
	}

	return final, finalRes
}

// Snapshot returns a deep copy of v, used to capture the leak
// envelopes between the min/max passes and the sim pass.
func (v *Vectors) Snapshot() *Vectors {
	cp := &Vectors{entries: make([]entry, len(v.entries)), counter: v.counter}
	copy(cp.entries, v.entries)

	return cp
}

// Len returns the number of nets tracked.
func (v *Vectors) Len() int { return len(v.entries) }
