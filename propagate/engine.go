package propagate

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/cvc/config"
	"github.com/katalvlaran/cvc/cvcerr"
	"github.com/katalvlaran/cvc/equeue"
	"github.com/katalvlaran/cvc/equiv"
	"github.com/katalvlaran/cvc/netlist"
	"github.com/katalvlaran/cvc/vnet"
	"github.com/sirupsen/logrus"
)

// Engine is the propagation engine's mutable state: the three
// virtual-net vectors, their paired event queues, the two
// leak-envelope snapshots, and the cross-coupled-inverter
// bookkeeping. One monolithic struct, with its functionality split by
// stage file (minmax.go, sim.go) rather than by type.
type Engine struct {
	Circuit *netlist.Circuit
	Config  config.Config
	Log     *logrus.Logger

	Min *vnet.Vectors
	Max *vnet.Vectors
	Sim *vnet.Vectors

	// MinLeak/MaxLeak are the saved envelope snapshots taken after the
	// first min/max pass, before the sim pass runs.
	MinLeak *vnet.Vectors
	MaxLeak *vnet.Vectors

	// InitialSim is the saved snapshot taken after the first sim
	// sub-phase, before latch/SCRC resolution feeds the second
	// sub-phase.
	InitialSim *vnet.Vectors

	qMin *equeue.Queue
	qMax *equeue.Queue
	qSim *equeue.Queue

	Inverters InverterMap
	Latches   LatchGuess

	// Shorts carries user net-short overrides; empty unless the caller
	// populates it.
	Shorts equiv.ShortSet

	// LatchResolved accumulates every cross-coupled pair resolveLatches
	// settled, for detectors and reports to consult.
	LatchResolved []LatchResult

	// DefaultMinNet/DefaultMaxNet are the fallback nets consulted by
	// DefaultMinVoltage/DefaultMaxVoltage when a net has no resolved
	// bound of its own. InvalidNet disables the fallback.
	DefaultMinNet netlist.NetID
	DefaultMaxNet netlist.NetID

	// resWarned latches the once-per-net resistance-saturation warning.
	resWarned map[netlist.NetID]bool
}

// NewEngine allocates an Engine over circuit c. BuildAdjacency and
// equiv.Resolve must already have run.
func NewEngine(c *netlist.Circuit, cfg config.Config, log *logrus.Logger) *Engine {
	n := len(c.Nets)
	e := &Engine{
		Circuit:   c,
		Config:    cfg,
		Log:       log,
		Min:       vnet.New(n),
		Max:       vnet.New(n),
		Sim:       vnet.New(n),
		Inverters: make(InverterMap),
		Latches:   make(LatchGuess),

		DefaultMinNet: netlist.InvalidNet,
		DefaultMaxNet: netlist.InvalidNet,

		resWarned: make(map[netlist.NetID]bool),
	}
	e.qMin = equeue.New(netlist.DirMin, c)
	e.qMax = equeue.New(netlist.DirMax, c)
	e.qSim = equeue.New(netlist.DirSim, c)

	// A fresh engine owns the pending/inactive bits outright. Clearing
	// them here makes repeat runs over the same circuit start from the
	// same state, so rerunning reports identically and a fuse toggled
	// off and back on restores the original final-net vectors.
	for i := range c.Devices {
		c.Devices[i].Status = 0
	}

	return e
}

func (e *Engine) vectors(dir netlist.Direction) *vnet.Vectors {
	switch dir {
	case netlist.DirMin:
		return e.Min
	case netlist.DirMax:
		return e.Max
	default:
		return e.Sim
	}
}

func (e *Engine) queue(dir netlist.Direction) *equeue.Queue {
	switch dir {
	case netlist.DirMin:
		return e.qMin
	case netlist.DirMax:
		return e.qMax
	default:
		return e.qSim
	}
}

// SaveLeakSnapshots captures MinLeak/MaxLeak from the current Min/Max
// vectors, between the first min/max pass and the first sim pass.
func (e *Engine) SaveLeakSnapshots() {
	e.MinLeak = e.Min.Snapshot()
	e.MaxLeak = e.Max.Snapshot()
}

// enqueueNeighbors schedules every device attached to net (across all
// four terminal roles), excluding the device that just drove the
// update and any device already inactive in dir, with a key adjusted
// per terminal role and model tag.
func (e *Engine) enqueueNeighbors(dir netlist.Direction, q *equeue.Queue, net netlist.NetID, exclude netlist.DeviceID, voltage netlist.Voltage, resistance netlist.Resistance) {
	excludeFn := func(d netlist.DeviceID) bool {
		return d == exclude || e.Circuit.Devices[d].Inactive(dir)
	}
	for role := 0; role < netlist.RoleCount; role++ {
		it := e.Circuit.DevicesAt(net, netlist.Role(role), excludeFn)
		for {
			d, ok := it.Next()
			if !ok {
				break
			}
			key := e.adjustKey(dir, d, netlist.Role(role), voltage, resistance)
			q.Enqueue(d, key)
		}
	}
}

// adjustKey computes a device's ordering key for re-enqueue, adding
// terminal-specific offsets: series resistance for resistive devices,
// a Vth shift for the diode-connected mos leakage path.
func (e *Engine) adjustKey(dir netlist.Direction, d netlist.DeviceID, role netlist.Role, voltage netlist.Voltage, resistance netlist.Resistance) equeue.EventKey {
	m := e.Circuit.ModelOf(d)
	v := voltage
	r := resistance
	if m != nil {
		switch {
		case m.Tag == netlist.TagResistor:
			res, err := m.Resistance(e.Circuit.Devices[d].Params)
			if err == nil {
				r = netlist.AddResistance(r, res)
			}
		case m.Tag.IsMos() && role == netlist.RoleGate:
			if dir == netlist.DirMin && m.Tag.IsNType() {
				v -= m.Vth
			} else if dir == netlist.DirMax && m.Tag.IsPType() {
				v -= m.Vth
			}
		}
	}
	q := e.queue(dir)

	return equeue.NewEventKey(v, r, q.NextPosition())
}

// propagateDevice classifies d by model tag and performs its
// conduction rule for direction dir. An unrecognized tag is a fatal
// internal-invariant violation.
func (e *Engine) propagateDevice(dir netlist.Direction, d netlist.DeviceID) error {
	m := e.Circuit.ModelOf(d)
	if m == nil {
		// No resolved model is a user-data error recorded upstream at
		// flattening time; here it simply stops this device from
		// conducting further.
		e.Circuit.Devices[d].SetInactive(dir, true)

		return nil
	}
	switch e.Circuit.EffectiveTag(d) {
	case netlist.TagResistor, netlist.TagSwitchOn, netlist.TagFuseOn:
		return e.propagateResistive(dir, d, m)
	case netlist.TagNMOS, netlist.TagLDDN:
		return e.propagateMos(dir, d, m, true)
	case netlist.TagPMOS, netlist.TagLDDP:
		return e.propagateMos(dir, d, m, false)
	case netlist.TagDiode:
		return e.propagateDiode(dir, d, m)
	case netlist.TagCapacitor, netlist.TagSwitchOff, netlist.TagFuseOff, netlist.TagBox:
		e.Circuit.Devices[d].SetInactive(dir, true)

		return nil
	case netlist.TagBipolar:
		// Parasitic BJT: recognized but never propagated; see
		// DESIGN.md.
		e.Circuit.Devices[d].SetInactive(dir, true)

		return nil
	default:
		return cvcerr.Fatal(fmt.Errorf("%w: tag=%v", cvcerr.ErrUnknownModelTag, m.Tag))
	}
}

// isFatal reports whether err is a *cvcerr.CvcError, i.e. an internal
// invariant violation that must abort the run rather than being
// recovered locally.
func isFatal(err error) bool {
	var ce *cvcerr.CvcError

	return errors.As(err, &ce)
}
