package netlist

// NetID indexes Circuit.Nets. InvalidNet marks "no net" (end of an
// adjacency list, an unattached bulk terminal in SOI mode, etc).
type NetID int32

// InvalidNet is the sentinel for "no net".
const InvalidNet NetID = -1

// DeviceID indexes Circuit.Devices. InvalidDevice marks end-of-list.
type DeviceID int32

// InvalidDevice is the sentinel for "no device".
const InvalidDevice DeviceID = -1

// InstanceID indexes Circuit.Instances.
type InstanceID int32

// InvalidInstance is the sentinel for "no parent instance" (top level).
const InvalidInstance InstanceID = -1

// ModelID indexes Circuit.Models.
type ModelID int32

// InvalidModel marks a device with no resolved model (a user-data error,
// not a fatal one; propagation treats it as inactive).
const InvalidModel ModelID = -1

// PowerID indexes Circuit.Powers.
type PowerID int32

// InvalidPower marks "no power declaration on this net".
const InvalidPower PowerID = -1

// Role identifies a device terminal. Bulk is unused in SOI mode; the
// arena always reserves the slot, SOI devices simply leave it
// InvalidNet.
type Role int

const (
	RoleSource Role = iota
	RoleGate
	RoleDrain
	RoleBulk
	roleCount // sentinel, not a real role
)

// RoleCount is the number of terminal roles (exported for callers that
// need to range over all roles without reaching into the package's
// internal sentinel).
const RoleCount = int(roleCount)

// String renders a Role for log fields and error signatures.
func (r Role) String() string {
	switch r {
	case RoleSource:
		return "source"
	case RoleGate:
		return "gate"
	case RoleDrain:
		return "drain"
	case RoleBulk:
		return "bulk"
	default:
		return "unknown-role"
	}
}

// ModelTag is the device class: NMOS/PMOS/LDDN/LDDP/R/C/D/FUSE_ON/
// FUSE_OFF/SWITCH_ON/SWITCH_OFF/BIPOLAR/BOX. Devices differ by tag
// only — there is no type hierarchy; the propagation classifier and
// the detectors both dispatch on this tag alone.
type ModelTag int

const (
	TagUnknown ModelTag = iota
	TagNMOS
	TagPMOS
	TagLDDN
	TagLDDP
	TagResistor
	TagCapacitor
	TagDiode
	TagFuseOn
	TagFuseOff
	TagSwitchOn
	TagSwitchOff
	TagBipolar
	TagBox
)

// String renders a ModelTag for logging and error signatures.
func (t ModelTag) String() string {
	switch t {
	case TagNMOS:
		return "NMOS"
	case TagPMOS:
		return "PMOS"
	case TagLDDN:
		return "LDDN"
	case TagLDDP:
		return "LDDP"
	case TagResistor:
		return "R"
	case TagCapacitor:
		return "C"
	case TagDiode:
		return "D"
	case TagFuseOn:
		return "FUSE_ON"
	case TagFuseOff:
		return "FUSE_OFF"
	case TagSwitchOn:
		return "SWITCH_ON"
	case TagSwitchOff:
		return "SWITCH_OFF"
	case TagBipolar:
		return "BIPOLAR"
	case TagBox:
		return "BOX"
	default:
		return "UNKNOWN"
	}
}

// IsMos reports whether the tag is one of the four mos flavors.
func (t ModelTag) IsMos() bool {
	return t == TagNMOS || t == TagPMOS || t == TagLDDN || t == TagLDDP
}

// IsNType reports whether the tag conducts like an n-channel device.
func (t ModelTag) IsNType() bool { return t == TagNMOS || t == TagLDDN }

// IsPType reports whether the tag conducts like a p-channel device.
func (t ModelTag) IsPType() bool { return t == TagPMOS || t == TagLDDP }

// IsLDD reports the asymmetric lightly-doped-drain variants, which
// carry a directional leakage check.
func (t ModelTag) IsLDD() bool { return t == TagLDDN || t == TagLDDP }

// Voltage is an internal millivolt integer; textual I/O uses decimal
// volts.
type Voltage int64

// VoltageScale converts between the internal integer and decimal volts.
const VoltageScale = 1000

// UnknownVoltage marks "no bound known in this direction".
const UnknownVoltage Voltage = 1<<62 - 1

// Resistance is a saturating 30-bit unsigned quantity.
type Resistance uint32

// MaxResistance is the saturation ceiling, (2^30)-1.
const MaxResistance Resistance = (1 << 30) - 1

// AddResistance accumulates two resistances, saturating at
// MaxResistance rather than wrapping.
func AddResistance(a, b Resistance) Resistance {
	sum := uint64(a) + uint64(b)
	if sum >= uint64(MaxResistance) {
		return MaxResistance
	}

	return Resistance(sum)
}

// DiodePair names one parasitic junction as an ordered
// (anode, cathode) terminal-role pair.
type DiodePair struct {
	Anode   Role
	Cathode Role
}

// Params carries the L/W/R device parameters bound at instantiation,
// used both by the resistance-expression evaluator and by model
// condition predicates.
type Params struct {
	L float64
	W float64
	R float64
}

// PowerKind enumerates what a Power declaration pins.
type PowerKind int

const (
	PowerMin PowerKind = 1 << iota
	PowerSim
	PowerMax
	PowerExpectedMin
	PowerExpectedSim
	PowerExpectedMax
	PowerHiZ
	PowerReference
)

// Power is a declaration pinning a net (or a bus/wildcard-expanded
// set of nets) to one or more known voltages.
type Power struct {
	ID       PowerID
	Signal   string
	Kinds    PowerKind
	Min      Voltage
	Sim      Voltage
	Max      Voltage
	Expected struct {
		Min, Sim, Max Voltage
	}
	Family string // Hi-Z propagation scoping
	Macro  string // indirection through a power-file #define
}

// HasKind reports whether k is one of the declaration's pinned kinds.
func (p *Power) HasKind(k PowerKind) bool { return p != nil && p.Kinds&k != 0 }

// Net is an identifier in [0,N); nets are created during flattening
// and never destroyed.
type Net struct {
	ID              NetID
	Name            string
	ParentInstance  InstanceID
	PowerRef        PowerID
	Analog          bool
	NeedsMinCheck   bool
	NeedsMaxCheck   bool
	MinPowerNet     bool
	MaxPowerNet     bool
	SimPowerNet     bool
	FloatingWarned  bool // debug-message-once latch for the default-net fallback
}

// DeviceStatus carries independent pending/inactive bits per queue
// direction, packed into one status word.
type DeviceStatus uint16

const (
	StatusPendingMin DeviceStatus = 1 << iota
	StatusPendingMax
	StatusPendingSim
	StatusInactiveMin
	StatusInactiveMax
	StatusInactiveSim
	StatusDirectionCommitted // source/drain swap has been fixed for this device
)

// Device is an identifier in [0,D). Source/drain are interchangeable
// (for mosfets) until the engine commits a direction.
type Device struct {
	ID             DeviceID
	ParentInstance InstanceID
	ModelRef       ModelID
	Terminals      [4]NetID // raw, pre-equivalence; index by Role
	Params         Params
	CellName       string
	Status         DeviceStatus
	FuseOverride   *bool // nil = use model tag; non-nil = user fuse-file override
}

// Pending reports whether d is currently enqueued in queue dir.
func (d *Device) Pending(dir Direction) bool {
	return d.Status&pendingBit(dir) != 0
}

// SetPending sets or clears the pending bit for dir.
func (d *Device) SetPending(dir Direction, v bool) {
	setBit(&d.Status, pendingBit(dir), v)
}

// Inactive reports whether d has permanently settled (or been recovered
// past) in queue dir.
func (d *Device) Inactive(dir Direction) bool {
	return d.Status&inactiveBit(dir) != 0
}

// SetInactive sets or clears the inactive bit for dir. Clearing it
// externally (fuse override toggled back) makes the device eligible
// for re-enqueue; any stale queue entry is discarded lazily at next
// dequeue.
func (d *Device) SetInactive(dir Direction, v bool) {
	setBit(&d.Status, inactiveBit(dir), v)
}

func pendingBit(dir Direction) DeviceStatus {
	switch dir {
	case DirMin:
		return StatusPendingMin
	case DirMax:
		return StatusPendingMax
	default:
		return StatusPendingSim
	}
}

func inactiveBit(dir Direction) DeviceStatus {
	switch dir {
	case DirMin:
		return StatusInactiveMin
	case DirMax:
		return StatusInactiveMax
	default:
		return StatusInactiveSim
	}
}

func setBit(s *DeviceStatus, bit DeviceStatus, v bool) {
	if v {
		*s |= bit
	} else {
		*s &^= bit
	}
}

// Direction names one of the three coupled propagation passes. It is
// shared by netlist (device status bits), vnet (which of
// the three vectors) and equeue (which ordering rule applies).
type Direction int

const (
	DirMin Direction = iota
	DirMax
	DirSim
)

// String renders a Direction for log fields.
func (d Direction) String() string {
	switch d {
	case DirMin:
		return "min"
	case DirMax:
		return "max"
	case DirSim:
		return "sim"
	default:
		return "unknown-direction"
	}
}

// Instance is a flattened subcircuit or box instantiation; the engine
// only needs it for error-location context.
type Instance struct {
	ID       InstanceID
	Name     string
	CellName string
	Parent   InstanceID
}
