package equiv

import "github.com/katalvlaran/cvc/netlist"

// ShortDirection names which of the three propagation directions a
// user override forces a normally-resistive net to behave as shorted
// in.
type ShortDirection int

const (
	ShortNone ShortDirection = iota
	ShortMin
	ShortMax
	ShortSim
	ShortAll
)

// ShortOverride pairs one net with the direction it should be treated
// as a zero-resistance short in, regardless of its device's compiled
// resistance expression.
type ShortOverride struct {
	Net       netlist.NetID
	Direction ShortDirection
}

// ShortSet is a small ordered collection of net/direction overrides,
// built by an external driver and consulted by the propagation
// engine's resistive conduction rule. A plain slice scanned linearly,
// not a map: overrides number in the single digits per run.
type ShortSet []ShortOverride

// DirectionFor returns the override direction recorded for net, or
// ShortNone if net carries no override.
func (s ShortSet) DirectionFor(net netlist.NetID) ShortDirection {
	for _, o := range s {
		if o.Net == net {
			return o.Direction
		}
	}

	return ShortNone
}

// Applies reports whether net is overridden to behave as a short in
// direction dir.
func (s ShortSet) Applies(net netlist.NetID, dir netlist.Direction) bool {
	switch d := s.DirectionFor(net); d {
	case ShortAll:
		return true
	case ShortMin:
		return dir == netlist.DirMin
	case ShortMax:
		return dir == netlist.DirMax
	case ShortSim:
		return dir == netlist.DirSim
	default:
		return false
	}
}
