package propagate

import (
	"context"

	"github.com/katalvlaran/cvc/equeue"
	"github.com/katalvlaran/cvc/netlist"
	"github.com/katalvlaran/cvc/vnet"
	"github.com/sirupsen/logrus"
)

// PropagateMinMax runs one direction of the mirrored min/max envelope
// pass: seed the queue from every net with a declared min/max
// voltage, then drain it, dequeuing the smallest-key event each time
// and evaluating the dequeued device's conduction rule.
func (e *Engine) PropagateMinMax(ctx context.Context, dir netlist.Direction) error {
	vv := e.vectors(dir)
	q := e.queue(dir)

	e.seedMinMax(dir, q)

	devices := len(e.Circuit.Devices)
	nets := len(e.Circuit.Nets)
	e.Log.WithFields(logrus.Fields{
		"stage": "propagate", "direction": dir.String(),
		"device_count": devices, "net_count": nets,
	}).Info("starting pass")

	return e.drain(ctx, dir, vv, q)
}

// seedMinMax enqueues every device attached to a declared power
// anchor for direction dir.
func (e *Engine) seedMinMax(dir netlist.Direction, q *equeue.Queue) {
	for i := range e.Circuit.Nets {
		net := netlist.NetID(i)
		pw := e.Circuit.Nets[net].PowerRef
		if pw == netlist.InvalidPower {
			continue
		}
		p := &e.Circuit.Powers[pw]
		var v netlist.Voltage
		var has bool
		switch dir {
		case netlist.DirMin:
			v, has = p.Min, p.HasKind(netlist.PowerMin)
		case netlist.DirMax:
			v, has = p.Max, p.HasKind(netlist.PowerMax)
		}
		if !has {
			continue
		}
		e.enqueueNeighbors(dir, q, net, netlist.InvalidDevice, v, 0)
	}
}

// drain is the shared dequeue/classify/requeue loop for a single
// direction's queue, used by both the min/max passes and the sim pass.
// It checks ctx at each iteration so an interrupt exits cleanly at a
// safe point; a fatal internal error aborts immediately, while any
// other error from a device's conduction rule is recovered locally by
// marking that device inactive for this direction so a single
// pathological node cannot mask downstream problems.
func (e *Engine) drain(ctx context.Context, dir netlist.Direction, vv *vnet.Vectors, q *equeue.Queue) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		d, _, ok, err := q.Dequeue()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		dev := &e.Circuit.Devices[d]
		if dev.Inactive(dir) {
			continue
		}
		if err := e.propagateDevice(dir, d); err != nil {
			if isFatal(err) {
				return err
			}
			e.Log.WithFields(logrus.Fields{
				"stage": "propagate", "direction": dir.String(), "device": d, "error": err,
			}).Warn("device recovered: marked inactive")
			dev.SetInactive(dir, true)
		}
	}
}

// propagateResistive implements the resistor/switch-on/fuse-on
// conduction rule: propagate from whichever terminal already has a
// resolved path to the other, adding the device's resistance. If the
// target net already has a lower-or-equal final resistance to power,
// the write is skipped.
func (e *Engine) propagateResistive(dir netlist.Direction, d netlist.DeviceID, m *netlist.Model) error {
	vv := e.vectors(dir)
	q := e.queue(dir)
	dev := &e.Circuit.Devices[d]

	aNet := e.Circuit.Canonical(dev.Terminals[netlist.RoleSource])
	bNet := e.Circuit.Canonical(dev.Terminals[netlist.RoleDrain])
	if aNet == netlist.InvalidNet || bNet == netlist.InvalidNet {
		dev.SetInactive(dir, true)

		return nil
	}

	seriesRes, err := m.Resistance(dev.Params)
	if err != nil {
		return err
	}
	if m.Tag == netlist.TagSwitchOn || m.Tag == netlist.TagFuseOn {
		seriesRes = 0
	}
	if e.Shorts.Applies(aNet, dir) || e.Shorts.Applies(bNet, dir) {
		seriesRes = 0 // user short override forces a zero-resistance path
	}

	driveNet, targetNet, driveRes, ok := pickDriver(e.Circuit, vv, aNet, bNet)
	if !ok {
		return nil
	}

	return e.shiftVirtualNet(dir, vv, q, d, driveNet, targetNet, driveRes, seriesRes)
}

// propagateMos implements the NMOS/LDDN/PMOS/LDDP conduction rule: a
// device conducts fully on the envelope pass matching its
// polarity (max for n-type gate-high, min for p-type gate-low) and,
// for the opposite pass, only as a diode-connected leakage path
// (gated by the Vth offset already folded into its event key by
// adjustKey). Source and drain are interchangeable until whichever
// side resolves first commits the direction.
func (e *Engine) propagateMos(dir netlist.Direction, d netlist.DeviceID, m *netlist.Model, isN bool) error {
	vv := e.vectors(dir)
	q := e.queue(dir)
	dev := &e.Circuit.Devices[d]

	sNet := e.Circuit.Canonical(dev.Terminals[netlist.RoleSource])
	dNet := e.Circuit.Canonical(dev.Terminals[netlist.RoleDrain])
	gNet := e.Circuit.Canonical(dev.Terminals[netlist.RoleGate])
	if sNet == netlist.InvalidNet || dNet == netlist.InvalidNet {
		dev.SetInactive(dir, true)

		return nil
	}

	driveNet, targetNet, driveRes, ok := pickDriver(e.Circuit, vv, sNet, dNet)
	if !ok {
		return nil
	}
	if !e.mosConducts(dir, isN, gNet, driveNet, m.Vth) {
		return nil
	}
	dev.Status |= netlist.StatusDirectionCommitted

	channelRes, err := m.Resistance(dev.Params)
	if err != nil {
		return err
	}

	return e.shiftVirtualNet(dir, vv, q, d, driveNet, targetNet, driveRes, channelRes)
}

// mosConducts evaluates the gate condition for direction dir: full
// threshold conduction on the envelope pass matching the device's
// polarity, diode-connected leakage (any known gate voltage at all) on
// the opposite envelope pass, and an exact Vgs evaluation against the
// committed source side on the sim pass. MinVthGates settles the
// exactly-at-threshold boundary: with it set, Vgs == Vth conducts.
func (e *Engine) mosConducts(dir netlist.Direction, isN bool, gNet, driveNet netlist.NetID, vth netlist.Voltage) bool {
	gate := e.resolveTerminal(dir, gNet)
	if gate.Voltage == netlist.UnknownVoltage {
		return false
	}
	switch {
	case isN && dir == netlist.DirMax:
		if e.Config.MinVthGates {
			return gate.Voltage >= vth
		}

		return gate.Voltage > vth
	case !isN && dir == netlist.DirMin:
		if e.Config.MinVthGates {
			return gate.Voltage <= vth
		}

		return gate.Voltage < vth
	case isN && dir == netlist.DirMin:
		return true // diode-connected leakage path
	case !isN && dir == netlist.DirMax:
		return true
	case dir == netlist.DirSim:
		src := e.resolveTerminal(dir, driveNet)
		if src.Voltage == netlist.UnknownVoltage {
			return false
		}
		vgs := gate.Voltage - src.Voltage
		if isN {
			if e.Config.MinVthGates {
				return vgs >= vth
			}

			return vgs > vth
		}
		if e.Config.MinVthGates {
			return vgs <= vth
		}

		return vgs < vth
	default:
		return false
	}
}

// propagateDiode implements the forward-direction-dependent diode
// conduction rule: cathode-to-anode on the min pass,
// anode-to-cathode on the max pass, for every parasitic junction in
// the model's diode list (a bare D device without an explicit list
// uses its own two terminals).
func (e *Engine) propagateDiode(dir netlist.Direction, d netlist.DeviceID, m *netlist.Model) error {
	vv := e.vectors(dir)
	q := e.queue(dir)
	dev := &e.Circuit.Devices[d]

	diodes := m.Diodes
	if len(diodes) == 0 {
		diodes = []netlist.DiodePair{{Anode: netlist.RoleSource, Cathode: netlist.RoleDrain}}
	}

	for _, dp := range diodes {
		fromRole, toRole := dp.Anode, dp.Cathode
		if dir == netlist.DirMin {
			fromRole, toRole = dp.Cathode, dp.Anode
		}
		fromNet := e.Circuit.Canonical(dev.Terminals[fromRole])
		toNet := e.Circuit.Canonical(dev.Terminals[toRole])
		if fromNet == netlist.InvalidNet || toNet == netlist.InvalidNet {
			continue
		}
		if !isKnown(e.Circuit, vv, fromNet) {
			continue
		}
		_, fromRes := vv.Resolve(fromNet)
		if err := e.shiftVirtualNet(dir, vv, q, d, fromNet, toNet, fromRes, 0); err != nil {
			return err
		}
	}

	return nil
}

// pickDriver decides which of a device's two propagation-relevant
// terminals already has a resolved path to power and should drive the
// other. Returns ok=false if neither side is known yet.
func pickDriver(c *netlist.Circuit, vv *vnet.Vectors, a, b netlist.NetID) (drive, target netlist.NetID, driveRes netlist.Resistance, ok bool) {
	aKnown := isKnown(c, vv, a)
	bKnown := isKnown(c, vv, b)
	_, aRes := vv.Resolve(a)
	_, bRes := vv.Resolve(b)

	switch {
	case aKnown && (!bKnown || aRes <= bRes):
		return a, b, aRes, true
	case bKnown:
		return b, a, bRes, true
	default:
		return 0, 0, 0, false
	}
}

// shiftVirtualNet re-points targetNet's next pointer through device d
// toward driveNet, adding seriesRes, unless targetNet already has an
// equal-or-better resolved path. A declared power anchor for this
// direction is never re-pointed. On a successful shift it re-enqueues
// every device on targetNet's adjacency lists except d itself.
func (e *Engine) shiftVirtualNet(dir netlist.Direction, vv *vnet.Vectors, q *equeue.Queue, d netlist.DeviceID, driveNet, targetNet netlist.NetID, driveRes, seriesRes netlist.Resistance) error {
	if e.isAnchor(dir, targetNet) {
		return nil
	}
	newRes := netlist.AddResistance(driveRes, seriesRes)
	if uint64(driveRes)+uint64(seriesRes) > uint64(netlist.MaxResistance) && !e.resWarned[targetNet] {
		e.resWarned[targetNet] = true
		e.Log.WithFields(logrus.Fields{
			"direction": dir.String(), "net": targetNet, "device": d,
		}).Warn("accumulated resistance saturated")
	}
	_, targetRes := vv.Resolve(targetNet)
	if isKnown(e.Circuit, vv, targetNet) && targetRes <= newRes {
		return nil
	}

	vv.Set(targetNet, driveNet, seriesRes)
	voltage := e.resolveTerminal(dir, targetNet).Voltage
	e.enqueueNeighbors(dir, q, targetNet, d, voltage, newRes)

	return nil
}

// isAnchor reports whether n carries a declared voltage pin for dir,
// i.e. it seeds this direction's propagation and must keep next==self.
func (e *Engine) isAnchor(dir netlist.Direction, n netlist.NetID) bool {
	pw := e.Circuit.Nets[n].PowerRef
	if pw == netlist.InvalidPower {
		return false
	}
	p := &e.Circuit.Powers[pw]
	switch dir {
	case netlist.DirMin:
		return p.HasKind(netlist.PowerMin)
	case netlist.DirMax:
		return p.HasKind(netlist.PowerMax)
	default:
		return p.HasKind(netlist.PowerSim)
	}
}
