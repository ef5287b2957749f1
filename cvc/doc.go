// Package cvc is the root façade: a Database struct wiring the lower
// components (netlist, equiv, vnet/equeue/propagate, detect) into one
// verification run. All mutable run state lives on the one struct;
// its functionality is split across files by stage (run.go,
// stage_equiv.go, stage_propagate.go, stage_detect.go) rather than by
// type.
package cvc
