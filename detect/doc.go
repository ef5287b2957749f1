// Package detect implements the electrical-error predicates: pure
// functions over an already-propagated circuit's virtual-net vectors,
// filtered by model tag, rather than methods on a device class
// hierarchy.
//
// Overview:
//
//   - Every predicate takes a fully-settled propagate.Engine (both
//     envelope passes and the sim pass complete, leak snapshots saved)
//     and evaluates one device or one net against its rule, returning
//     a *Finding when the rule fires.
//   - Predicates never mutate the circuit or the engine; they only
//     resolve terminals through the equivalence map and the virtual-net
//     vectors. Running the battery twice yields identical findings.
//   - The Detectors slice lists every device-scoped predicate, so
//     callers can run the full battery without naming each function;
//     ExpectedValue is net-scoped (an expectation rides on a Power
//     declaration, not a device) and is invoked separately over nets.
//
// Predicate catalog:
//
//   - ForwardDiode (KindForwardDiode): a junction's resolved anode-max
//     exceeds its resolved cathode-min by more than the configured
//     threshold and the two sides do not share a final power net. A
//     bare diode without an explicit junction list checks its own two
//     terminals.
//   - Overvoltage (KindVgs, KindVds, KindVbs, KindVbg): the four
//     terminal-pair spread checks against the model's tolerance,
//     falling back to the matching CVC_*_ERROR_THRESHOLD when the
//     model leaves a tolerance at zero. The logic-ok variant fires
//     when only the saved leak envelope breaches the limit while the
//     simulated values do not; such findings carry LogicOK=true.
//   - SourceBulk (KindSourceBulk): the bulk voltage is not dominated
//     by the min (n-type) or max (p-type) of the attached source and
//     drain. Bulk nets resolving to a Hi-Z power family are exempt,
//     as is the whole check in SOI mode.
//   - GateSource (KindGateSource): the pass-gate threshold-loss
//     signature. The gate clears its conduction bound against one
//     diffusion terminal while the opposite terminal's envelope still
//     reaches past the gate, evaluated symmetrically with source and
//     drain swapped; capacitor-like shorts to a non-power plate are
//     exempt.
//   - PossibleLeak (KindPossibleLeak): source and drain carry known,
//     differing sim voltages whose implied channel current exceeds
//     LeakLimit; or, with sim values unknown, the envelope-implied
//     current does. Devices with a zero channel resistance are
//     skipped.
//   - FloatingInput (KindFloatingInput): the gate net's sim voltage is
//     unknown and its min/max envelope is fully open. With
//     IgnoreNoLeakFloating set, a gate whose attached devices are all
//     purely capacitive is not reported.
//   - LDDSource (KindLDDSource): an LDD-flavored mos conducting in the
//     wrong topological direction, source higher-min than drain while
//     the gate is off.
//   - ExpectedValue (KindExpectedValue): a declared expected min, sim,
//     or max voltage whose actual resolved value mismatches.
//   - KindPowerConflict is produced by cvc.Database, not here: it
//     records an incompatible-power merge observed during the
//     equivalence pass.
//
// Throttling and totals:
//
//   - Throttle counts findings per (instance, kind) and reports
//     whether the detail line should still print; past the configured
//     limit it answers false but keeps counting, so post-run totals
//     stay exact. A limit <= 0 disables suppression entirely.
//   - Throttling is a presentation concern: cvc.Database collects the
//     complete, unthrottled finding set, and report.ErrorStream applies
//     its own Throttle when writing.
//
// Boundary behavior:
//
//   - A spread exactly at tolerance is reported only when the
//     effective threshold is zero; any positive threshold makes the
//     exact-boundary case pass.
//   - Predicates answer (nil, false) whenever a voltage they need is
//     unknown; absence of data never fires an error, except for
//     FloatingInput, whose rule is precisely that the data is absent,
//     and ExpectedValue, which reports a net that resolves to no known
//     voltage as not matching its declared expectation.
//
// API reference:
//
//	Detectors                       every device-scoped predicate, in order
//	ForwardDiode(c, e, cfg, d)      forward-biased junction
//	Overvoltage(c, e, cfg, d)       Vgs/Vds/Vbs/Vbg spreads
//	SourceBulk(c, e, cfg, d)        bulk-biasing check
//	GateSource(c, e, cfg, d)        pass-gate threshold loss
//	PossibleLeak(c, e, cfg, d)      channel leak estimate vs LeakLimit
//	FloatingInput(c, e, cfg, d)     undriven gate
//	LDDSource(c, e, cfg, d)         LDD wrong-direction conduction
//	ExpectedValue(c, e, net)        declared-expectation mismatch (net-scoped)
//	NewThrottle(limit)              per-(instance, kind) print limiter
//	(*Throttle).Record(f)           tally; reports whether to print detail
//	(*Throttle).Total(kind)         running total, unaffected by suppression
//
// Thread safety:
//
//   - Predicates are read-only over the circuit and engine, but the
//     engine's resolve caches are not synchronized; run detectors from
//     a single goroutine.
package detect
