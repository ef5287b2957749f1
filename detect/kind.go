package detect

// Kind names one of the electrical-error predicates. Vbg/Vbs/Vds/Vgs
// are four distinct tolerance checks, so each gets its own Kind.
type Kind int

const (
	KindForwardDiode Kind = iota
	KindVbg
	KindVbs
	KindVds
	KindVgs
	KindSourceBulk
	KindGateSource
	KindPossibleLeak
	KindFloatingInput
	KindExpectedValue
	KindLDDSource

	// KindPowerConflict is not a device predicate: it records a
	// recoverable power-consistency conflict observed during the
	// equivalence pass, converted from an equiv.LeakConflict by
	// cvc.Database after Resolve returns.
	KindPowerConflict
)

// String renders a Kind for log fields, report lines and throttle keys.
func (k Kind) String() string {
	switch k {
	case KindForwardDiode:
		return "forward-diode"
	case KindVbg:
		return "vbg"
	case KindVbs:
		return "vbs"
	case KindVds:
		return "vds"
	case KindVgs:
		return "vgs"
	case KindSourceBulk:
		return "source-bulk"
	case KindGateSource:
		return "gate-source"
	case KindPossibleLeak:
		return "possible-leak"
	case KindFloatingInput:
		return "floating-input"
	case KindExpectedValue:
		return "expected-value"
	case KindLDDSource:
		return "ldd-source"
	case KindPowerConflict:
		return "power-conflict"
	default:
		return "unknown-kind"
	}
}
