package equiv

import (
	"github.com/katalvlaran/cvc/cvcerr"
	"github.com/katalvlaran/cvc/netlist"
	"github.com/sirupsen/logrus"
)

// LeakConflict records a switch whose two terminals carried
// incompatible power declarations: the merge still happens, and the
// conflict is reported. equiv stays decoupled from package detect
// (which owns the Finding/Kind vocabulary); cvc.Database turns these
// into detect.Finding records after Resolve returns.
type LeakConflict struct {
	Device netlist.DeviceID
	NetA   netlist.NetID
	NetB   netlist.NetID
}

// netMap is a scratch side-table from canonical net to every net
// previously folded into it, so re-pointing power pointers on a later
// merge doesn't require a full scan.
type netMap map[netlist.NetID][]netlist.NetID

// Resolve performs the union-find pass: for every device whose model
// tag is SWITCH_ON, union its two non-gate terminals (source and
// drain), keeping every canonical representative the minimum ID of
// its class and merging only power-compatible nets silently.
//
// Returns the conflicts observed during merging; the caller
// (cvc.Database) is responsible for turning them into detect.Finding
// records. A structural invariant violation (chain length exceeding
// net count) returns a *cvcerr.CvcError of KindEquivalence: that
// signals a parser bug, not user error.
func Resolve(c *netlist.Circuit, log *logrus.Logger) ([]LeakConflict, error) {
	n := len(c.Nets)
	equiv := make([]netlist.NetID, n)
	for i := range equiv {
		equiv[i] = netlist.NetID(i)
	}
	nm := make(netMap, n)
	var conflicts []LeakConflict

	canonical := func(x netlist.NetID) netlist.NetID {
		hops := 0
		for equiv[x] != x {
			x = equiv[x]
			hops++
			if hops > n {
				return x // overflow detected by caller via separate check
			}
		}

		return x
	}

	for did := range c.Devices {
		dev := &c.Devices[did]
		m := c.ModelOf(netlist.DeviceID(did))
		if m == nil || m.Tag != netlist.TagSwitchOn {
			continue
		}
		x := dev.Terminals[netlist.RoleSource]
		y := dev.Terminals[netlist.RoleDrain]
		if x == netlist.InvalidNet || y == netlist.InvalidNet {
			continue
		}
		a := canonical(x)
		b := canonical(y)
		if a == b {
			continue // already equivalent
		}
		if a > b {
			a, b = b, a
		}

		pa, pb := &c.Nets[a].PowerRef, &c.Nets[b].PowerRef
		if *pa != netlist.InvalidPower && *pb != netlist.InvalidPower {
			if powersEqual(&c.Powers[*pa], &c.Powers[*pb]) {
				log.WithFields(logrus.Fields{
					"stage": "equiv", "net_a": a, "net_b": b,
				}).Info("ignored short between same power")
			} else {
				conflicts = append(conflicts, LeakConflict{
					Device: netlist.DeviceID(did), NetA: a, NetB: b,
				})
				// Keep going so downstream analysis remains useful:
				// fall through to the merge below.
			}
		}

		// Gather all nets previously mapped to either a or b before
		// mutating equiv[b], so the side-table reflects pre-merge
		// membership.
		members := append([]netlist.NetID{a}, nm[a]...)
		members = append(members, b)
		members = append(members, nm[b]...)

		equiv[b] = a
		// Keep one power declaration on the surviving canonical a: a's
		// own if it has one, otherwise b's. b's pointer is cleared.
		if *pa == netlist.InvalidPower {
			*pa = *pb
		}
		*pb = netlist.InvalidPower

		delete(nm, b)
		nm[a] = members

		if canonical(b) != a {
			return nil, cvcerr.Equivalence(cvcerr.ErrEquivalenceOverflow)
		}
	}

	// Final compression pass: every entry points directly to its
	// canonical representative.
	for i := range equiv {
		equiv[i] = canonical(netlist.NetID(i))
		if int(equiv[i]) < 0 || int(equiv[i]) >= n {
			return nil, cvcerr.Equivalence(cvcerr.ErrEquivalenceOverflow)
		}
	}
	c.Equiv = equiv

	return conflicts, nil
}

// powersEqual reports whether two power declarations are equal by
// definition: same pinned kinds and identical voltage/expected
// fields.
func powersEqual(a, b *netlist.Power) bool {
	return a.Kinds == b.Kinds &&
		a.Min == b.Min && a.Sim == b.Sim && a.Max == b.Max &&
		a.Expected == b.Expected
}
