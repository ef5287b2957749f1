// Package netlist holds the flattened circuit database: the arena of
// Nets, Devices, Models, Powers and Instances that every other cvc
// package treats as its input.
//
// Everything here is produced by the (out-of-scope) CDL/model/power
// parsers; the engine packages (equiv, vnet, equeue, propagate, detect)
// mostly read it; the writes they make are listed on Circuit.
package netlist
