package netlist

import (
	"fmt"
	"regexp"

	"github.com/Knetic/govaluate"
)

// Model is the compile-time-bound record describing a device class:
// tag, threshold, tolerances, a resistance formula and optional
// parameter-range/cell-name conditions, plus the parasitic diode list.
type Model struct {
	ID       ModelID
	Name     string
	Tag      ModelTag
	Vth      Voltage
	VgsTol   Voltage
	VdsTol   Voltage
	VbsTol   Voltage
	VbgTol   Voltage
	Override string // "model=" indirection to another named model

	// ResistanceExpr is compiled once at model-load time and never
	// re-parsed in the propagation inner loop.
	ResistanceExpr *govaluate.EvaluableExpression

	Condition *Condition

	Diodes []DiodePair
}

// Condition is the pre-compiled form of a model's "condition=(...)"
// clause: a cell-name regex plus parameter-range comparisons over
// L/W/R, evaluated once at flattening time rather than per event.
type Condition struct {
	CellName *regexp.Regexp
	Ranges   []ParamRange
}

// ParamRange is one compiled "L<0.4u" style comparison.
type ParamRange struct {
	Param string // "L", "W", or "R"
	Op    string // "<", "<=", ">", ">=", "=="
	Value float64
}

// Matches reports whether a device's cell name and bound parameters
// satisfy the model's compiled condition. A model with a nil Condition
// always matches.
func (c *Condition) Matches(cellName string, p Params) bool {
	if c == nil {
		return true
	}
	if c.CellName != nil && !c.CellName.MatchString(cellName) {
		return false
	}
	for _, r := range c.Ranges {
		var v float64
		switch r.Param {
		case "L":
			v = p.L
		case "W":
			v = p.W
		case "R":
			v = p.R
		default:
			continue
		}
		if !r.satisfied(v) {
			return false
		}
	}

	return true
}

func (r ParamRange) satisfied(v float64) bool {
	switch r.Op {
	case "<":
		return v < r.Value
	case "<=":
		return v <= r.Value
	case ">":
		return v > r.Value
	case ">=":
		return v >= r.Value
	case "==":
		return v == r.Value
	default:
		return false
	}
}

// CompileResistanceExpr parses a "R=<expr>" formula over L, W, R into
// a govaluate expression, compiled once at model load so the
// propagation inner loop never re-parses it.
func CompileResistanceExpr(expr string) (*govaluate.EvaluableExpression, error) {
	e, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, fmt.Errorf("netlist: bad resistance expression %q: %w", expr, err)
	}

	return e, nil
}

// Resistance evaluates a device's bound model resistance expression
// against its L/W/R parameters, saturating at MaxResistance. Devices
// whose model carries no expression (mosfets in
// their conducting approximation, switches, diodes) report a zero base
// resistance; callers add series resistance explicitly where the
// conduction rule calls for it.
func (m *Model) Resistance(p Params) (Resistance, error) {
	if m == nil || m.ResistanceExpr == nil {
		return 0, nil
	}
	result, err := m.ResistanceExpr.Evaluate(map[string]interface{}{
		"L": p.L,
		"W": p.W,
		"R": p.R,
	})
	if err != nil {
		return 0, fmt.Errorf("netlist: resistance expr for model %q: %w", m.Name, err)
	}
	f, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("netlist: resistance expr for model %q did not evaluate to a number", m.Name)
	}
	if f < 0 {
		f = 0
	}
	if f >= float64(MaxResistance) {
		return MaxResistance, nil
	}

	return Resistance(f), nil
}
