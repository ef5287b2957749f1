package detect

import (
	"fmt"

	"github.com/katalvlaran/cvc/netlist"
)

// Finding is one electrical-error predicate firing on one device.
// Signature is a human-readable one-liner suitable for direct
// report output; Detail carries the numeric values that produced it
// for callers that want structured access instead of re-parsing
// Signature.
type Finding struct {
	Kind     Kind
	Device   netlist.DeviceID
	Instance netlist.InstanceID
	Cell     string

	// LogicOK marks the logic-ok overvoltage variant: the predicate
	// fired only because the leak envelope (the min/max vectors saved
	// before the sim pass narrowed them) breaches the limit, while the
	// simulated value itself does not. Both the envelope and the sim
	// reading stay available to callers rather than collapsing to one
	// tightest value; see DESIGN.md.
	LogicOK bool

	Detail    string
	Signature string
}

func newFinding(kind Kind, d netlist.DeviceID, inst netlist.InstanceID, cell, detail string) *Finding {
	return &Finding{
		Kind:      kind,
		Device:    d,
		Instance:  inst,
		Cell:      cell,
		Detail:    detail,
		Signature: fmt.Sprintf("%s: device %d (%s): %s", kind, d, cell, detail),
	}
}

// throttleKey is the identity detail printing is throttled by.
// "Circuit" here is the device's parent instance, since instances are
// the flattened stand-in for a subcircuit call site.
type throttleKey struct {
	Instance netlist.InstanceID
	Kind     Kind
}

// Throttle counts findings per (instance, kind) and reports
// whether detail printing should still happen for a given kind within
// an instance. Past the limit, detail is suppressed but totals keep
// counting.
type Throttle struct {
	limit  int64
	counts map[throttleKey]int64
	totals map[Kind]int64
}

// NewThrottle builds a Throttle that suppresses detail printing after
// limit occurrences of the same kind within the same instance. limit<=0
// disables suppression (every occurrence prints).
func NewThrottle(limit int64) *Throttle {
	return &Throttle{
		limit:  limit,
		counts: make(map[throttleKey]int64),
		totals: make(map[Kind]int64),
	}
}

// Record tallies one occurrence of f and reports whether its detail
// should still be printed (true) or only counted toward the total
// (false).
func (t *Throttle) Record(f *Finding) (printDetail bool) {
	t.totals[f.Kind]++
	key := throttleKey{Instance: f.Instance, Kind: f.Kind}
	t.counts[key]++
	if t.limit <= 0 {
		return true
	}

	return t.counts[key] <= t.limit
}

// Total returns the running total for kind across every instance,
// including occurrences past the per-instance print limit.
func (t *Throttle) Total(kind Kind) int64 {
	return t.totals[kind]
}
