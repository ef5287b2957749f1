package propagate

import (
	"github.com/katalvlaran/cvc/netlist"
	"github.com/sirupsen/logrus"
)

// DefaultMinVoltage returns net's resolved minimum voltage, falling
// back to DefaultMinNet when net itself has no known minimum.
//
// The fallback net may itself carry no known minimum. In that case the
// lookup stops: it logs at Debug and returns (UnknownVoltage, false)
// instead of recursing through the fallback's own fallback. The quiet
// stop is deliberate; see DESIGN.md.
func (e *Engine) DefaultMinVoltage(net netlist.NetID) (netlist.Voltage, bool) {
	return e.defaultVoltage(netlist.DirMin, net, e.DefaultMinNet)
}

// DefaultMaxVoltage is the max-direction mirror of DefaultMinVoltage,
// consulting DefaultMaxNet. The same quiet recursion stop applies.
func (e *Engine) DefaultMaxVoltage(net netlist.NetID) (netlist.Voltage, bool) {
	return e.defaultVoltage(netlist.DirMax, net, e.DefaultMaxNet)
}

func (e *Engine) defaultVoltage(dir netlist.Direction, net, fallback netlist.NetID) (netlist.Voltage, bool) {
	if v := e.resolveTerminal(dir, net).Voltage; v != netlist.UnknownVoltage {
		return v, true
	}
	if fallback == netlist.InvalidNet {
		return netlist.UnknownVoltage, false
	}
	v := e.resolveTerminal(dir, fallback).Voltage
	if v == netlist.UnknownVoltage {
		e.Log.WithFields(logrus.Fields{
			"direction": dir.String(), "net": net, "fallback": fallback,
		}).Debug("default net has no known voltage either")

		return netlist.UnknownVoltage, false
	}

	return v, true
}
