// Package equiv implements the equivalence resolver: a union-find over
// nets shorted by always-on switches, with a power-consistency check on
// every merge. User-directed non-conducting-resistor shorts
// (ShortOverride) are not merged here; the propagation engine's
// resistive rule reads them and treats those resistors as zero ohms.
//
// Union is by canonical-minimum net ID rather than by rank, so that
// every canonical representative is the smallest ID in its class.
package equiv
