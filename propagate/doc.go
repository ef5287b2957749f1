// Package propagate implements the three coupled voltage-propagation
// passes over a flattened circuit: two mirror-image envelope passes
// (min, max) and one coherent-value pass (sim), all driven by
// priority-ordered event queues over shared virtual-net vectors.
//
// Overview:
//
//   - Each pass seeds its queue from declared power nets, then drains
//     it: dequeue the smallest-key event, classify the device by model
//     tag, evaluate its conduction rule, and re-enqueue every neighbor
//     of any net the rule re-pointed.
//   - The min pass finds, per net, the lowest voltage any conduction
//     path can drag it to; the max pass the highest. Together they
//     bound the envelope every error predicate reads.
//   - The sim pass runs after both envelopes are stable and computes a
//     single coherent value per net. Unlike the envelopes, mos
//     conduction is evaluated exactly (Vgs against Vth, relative to
//     the committed source side), and resistance is tracked but never
//     gates correctness.
//
// Pass sequencing (driven by cvc.Database):
//
//   - PropagateMinMax(ctx, DirMin), then PropagateMinMax(ctx, DirMax).
//   - SaveLeakSnapshots: MinLeak/MaxLeak capture the widest envelopes
//     before the sim pass narrows anything; the logic-ok overvoltage
//     variant reads these, not the live vectors.
//   - PropagateSimPhase1: first sim sub-phase, seeded from declared
//     sim-power nets only. Fuse devices dequeued here are parked on
//     the delay queue for the second sub-phase. Afterwards,
//     resolveLatches settles any cross-coupled inverter pair left
//     undriven (see "Latch resolution" below).
//   - SaveInitialSim: snapshot between the sub-phases.
//   - PropagateSimPhase2: second sub-phase, seeded from sim-power
//     nets, latch anchors, and every net whose min and max envelopes
//     converged to one value; fuses now participate. With SCRC
//     enabled, propagateSCRC then anchors still-unknown Hi-Z nets.
//   - PropagateMinMax a second time in each direction, picking up
//     nets the latch/SCRC resolution newly made resolvable.
//
// Conduction rules, by model tag:
//
//   - R / SWITCH_ON / FUSE_ON: conduct unconditionally from whichever
//     terminal has a resolved path to power, adding the device's
//     compiled series resistance (zero for switches and fuses).
//   - NMOS / LDDN: full conduction on the max pass when the gate
//     clears Vth; diode-connected leakage on the min pass; exact Vgs
//     evaluation on the sim pass. PMOS / LDDP mirror this.
//   - D: cathode-to-anode on the min pass, anode-to-cathode on the
//     max pass, once per junction in the model's diode list (a bare
//     diode uses its own two terminals).
//   - C / SWITCH_OFF / FUSE_OFF / BOX / BIPOLAR: never conduct; the
//     device is marked inactive for the pass.
//
// Cycle breaking and the skip rule:
//
//   - shiftVirtualNet refuses to re-point a net that already resolves
//     to power with equal-or-lower resistance, and never re-points a
//     declared power anchor. When a cycle forms (two resistors in
//     parallel), the first path to settle wins; later attempts see the
//     existing resolution and abort the write.
//   - Accumulated resistance saturates at netlist.MaxResistance; the
//     first saturation per net logs one warning.
//
// Latch resolution:
//
//   - BuildInverterMap records, per net, whose inverted output it is;
//     a mutual pair is a cross-coupled latch. After the first sim
//     sub-phase, each still-undriven pair is settled to the stable
//     assignment chosen by LatchGuess (lower-numbered net high by
//     default): the high side anchors at its pull-up's supply rail,
//     the low side at its pull-down's ground, via synthetic sim-only
//     power declarations the second sub-phase seeds from. Every
//     settled pair is recorded in Engine.LatchResolved.
//
// Failure semantics:
//
//   - Recoverable: any error from a single device's conduction rule
//     (bad resistance expression, missing model). The device is
//     marked inactive for that pass and the drain continues, so one
//     pathological node cannot mask downstream problems.
//   - Fatal (*cvcerr.CvcError, aborts the run): a model tag the
//     classifier does not recognize, or a dequeued device whose
//     pending bit was not set. These signal database corruption, not
//     user error, and propagate unmodified to the driver.
//   - Cancellation: every drain loop checks ctx.Err() once per
//     iteration and returns the context's error cleanly.
//
// API reference:
//
//	NewEngine(c, cfg, log)               construct; resets device status bits
//	(*Engine).PropagateMinMax(ctx, dir)  one envelope pass
//	(*Engine).SaveLeakSnapshots()        capture MinLeak/MaxLeak
//	(*Engine).PropagateSim(ctx)          both sim sub-phases in one call
//	(*Engine).PropagateSimPhase1(ctx)    first sub-phase + latch resolution
//	(*Engine).SaveInitialSim()           capture InitialSim
//	(*Engine).PropagateSimPhase2(ctx)    second sub-phase (+ SCRC)
//	(*Engine).ResolveTerminal(dir, net)  Connection view of one net
//	(*Engine).ResolveLeak(dir, net)      same, against the leak snapshots
//	(*Engine).Materialize(dir, d)        all four terminals of a device
//	(*Engine).DefaultMinVoltage(net)     min with DefaultMinNet fallback
//	(*Engine).DefaultMaxVoltage(net)     max with DefaultMaxNet fallback
//	BuildInverterMap(c, counts)          output -> input inverter map
//
// Thread safety:
//
//   - None. The engine mutates the shared device-status bitset and its
//     vectors from a single goroutine; callers must not run two passes
//     concurrently over one Engine or Circuit.
package propagate
