package netlist

// Circuit is the flattened representation produced by the external
// parser: instances, devices, nets, and per-terminal adjacency lists.
// The engine writes Devices[i].Status throughout; beyond that, the
// equivalence resolver writes Equiv and moves Nets[i].PowerRef onto
// canonical nets, latch resolution appends to Powers and sets
// PowerRef on the nets it anchors, and fuse overrides set
// Devices[i].FuseOverride.
type Circuit struct {
	Name string

	Instances []Instance
	Nets      []Net
	Devices   []Device
	Models    []Model
	Powers    []Power

	// Equiv is the union-find canonical map populated by package
	// equiv. Equiv[n] == n until resolution runs; after resolution
	// Equiv[Equiv[n]] == Equiv[n].
	Equiv []NetID

	// firstDevice[role][net] / nextDevice[role][device] form intrusive
	// singly-linked adjacency lists, built by BuildAdjacency over
	// canonical (post-equivalence) nets.
	firstDevice [4][]DeviceID
	nextDevice  [4][]DeviceID

	adjacencyBuilt bool
}

// NewCircuit allocates an empty, named arena. The parser (or, in tests, the caller) appends via AddNet /
// AddDevice / AddModel / AddPower and then calls BuildAdjacency once
// flattening and equivalence resolution are complete.
func NewCircuit(name string) *Circuit {
	return &Circuit{Name: name}
}

// AddNet appends a new net and returns its ID. Nets are created
// during flattening and never destroyed.
func (c *Circuit) AddNet(name string, parent InstanceID) NetID {
	id := NetID(len(c.Nets))
	c.Nets = append(c.Nets, Net{ID: id, Name: name, ParentInstance: parent, PowerRef: InvalidPower})

	return id
}

// AddDevice appends a new device with the given raw (pre-equivalence)
// terminal nets and returns its ID.
func (c *Circuit) AddDevice(parent InstanceID, model ModelID, terminals [4]NetID, params Params, cellName string) DeviceID {
	id := DeviceID(len(c.Devices))
	c.Devices = append(c.Devices, Device{
		ID:             id,
		ParentInstance: parent,
		ModelRef:       model,
		Terminals:      terminals,
		Params:         params,
		CellName:       cellName,
	})

	return id
}

// AddModel appends a compiled model record and returns its ID.
func (c *Circuit) AddModel(m Model) ModelID {
	id := ModelID(len(c.Models))
	m.ID = id
	c.Models = append(c.Models, m)

	return id
}

// AddPower appends a power declaration and returns its ID. Callers are
// responsible for setting Nets[n].PowerRef for every net the
// declaration expands to (bus/wildcard expansion is a parser concern,
// out of scope here).
func (c *Circuit) AddPower(p Power) PowerID {
	id := PowerID(len(c.Powers))
	p.ID = id
	c.Powers = append(c.Powers, p)

	return id
}

// AddInstance appends a flattened instance record.
func (c *Circuit) AddInstance(name, cellName string, parent InstanceID) InstanceID {
	id := InstanceID(len(c.Instances))
	c.Instances = append(c.Instances, Instance{ID: id, Name: name, CellName: cellName, Parent: parent})

	return id
}

// ModelOf resolves a device's model, or nil if its ModelRef is
// InvalidModel (a user-data error recorded separately).
func (c *Circuit) ModelOf(d DeviceID) *Model {
	m := c.Devices[d].ModelRef
	if m == InvalidModel {
		return nil
	}

	return &c.Models[m]
}

// EffectiveTag returns the model tag the propagation classifier should
// treat d as, folding in any per-device fuse-state override loaded
// from CVC_FUSE_FILE: true forces FUSE_ON, false forces
// FUSE_OFF. Devices whose model is not a fuse ignore the override.
func (c *Circuit) EffectiveTag(d DeviceID) ModelTag {
	m := c.ModelOf(d)
	if m == nil {
		return TagUnknown
	}
	dev := &c.Devices[d]
	if dev.FuseOverride != nil && (m.Tag == TagFuseOn || m.Tag == TagFuseOff) {
		if *dev.FuseOverride {
			return TagFuseOn
		}

		return TagFuseOff
	}

	return m.Tag
}

// Canonical resolves a raw net through the equivalence map. Before
// equiv.Resolve runs, Circuit.Equiv is nil and Canonical is the
// identity.
func (c *Circuit) Canonical(n NetID) NetID {
	if n == InvalidNet || c.Equiv == nil {
		return n
	}

	return c.Equiv[n]
}

// TerminalNets resolves a device's four raw terminals through the
// equivalence map.
func (c *Circuit) TerminalNets(d DeviceID) (source, gate, drain, bulk NetID) {
	t := c.Devices[d].Terminals

	return c.Canonical(t[RoleSource]), c.Canonical(t[RoleGate]), c.Canonical(t[RoleDrain]), c.Canonical(t[RoleBulk])
}

// BuildAdjacency constructs the per-role intrusive adjacency lists over
// canonical nets. Must run after equiv.Resolve has populated
// Circuit.Equiv (or been skipped, leaving Equiv nil, for flat
// no-switch circuits). Idempotent: a second call rebuilds from
// scratch, which the fuse-override path relies on being safe to skip
// (fuse toggling only flips device status bits, not adjacency).
func (c *Circuit) BuildAdjacency() {
	n := len(c.Nets)
	d := len(c.Devices)
	for role := Role(0); role < roleCount; role++ {
		first := make([]DeviceID, n)
		for i := range first {
			first[i] = InvalidDevice
		}
		next := make([]DeviceID, d)
		for i := range next {
			next[i] = InvalidDevice
		}
		// Insert in descending device-ID order so the resulting list
		// walks in ascending device-ID order: stable, deterministic
		// iteration for byte-equal reruns.
		for did := d - 1; did >= 0; did-- {
			raw := c.Devices[did].Terminals[role]
			if raw == InvalidNet {
				continue
			}
			net := c.Canonical(raw)
			next[did] = first[net]
			first[net] = DeviceID(did)
		}
		c.firstDevice[role] = first
		c.nextDevice[role] = next
	}
	c.adjacencyBuilt = true
}

// DeviceIter walks one role's intrusive adjacency list for a net,
// optionally filtering out devices an exclude predicate rejects
// (typically "inactive for queue Q").
type DeviceIter struct {
	c       *Circuit
	role    Role
	cur     DeviceID
	exclude func(DeviceID) bool
}

// DevicesAt returns an iterator over every device attached to net by
// terminal role, in adjacency-list order.
func (c *Circuit) DevicesAt(net NetID, role Role, exclude func(DeviceID) bool) *DeviceIter {
	var start DeviceID = InvalidDevice
	if net != InvalidNet {
		start = c.firstDevice[role][net]
	}

	return &DeviceIter{c: c, role: role, cur: start, exclude: exclude}
}

// Next advances the iterator, returning (InvalidDevice, false) once
// exhausted.
func (it *DeviceIter) Next() (DeviceID, bool) {
	for it.cur != InvalidDevice {
		d := it.cur
		it.cur = it.c.nextDevice[it.role][d]
		if it.exclude != nil && it.exclude(d) {
			continue
		}

		return d, true
	}

	return InvalidDevice, false
}

// All drains the iterator into a slice; a convenience for call sites
// that are not hot-loop propagation code (detectors, tests).
func (it *DeviceIter) All() []DeviceID {
	var out []DeviceID
	for {
		d, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, d)
	}
}
