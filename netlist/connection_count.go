package netlist

// ConnectionCount caches, per net, how many source/gate/drain/bulk
// terminals attach to it. Consumers like the inverter-map builder need
// to know quickly whether a net has exactly one driver pair, and
// re-walking the adjacency lists per query would waste the cost
// BuildAdjacency already paid.
type ConnectionCount struct {
	Source int32
	Gate   int32
	Drain  int32
	Bulk   int32
}

// Total returns the sum across all four roles.
func (cc ConnectionCount) Total() int32 { return cc.Source + cc.Gate + cc.Drain + cc.Bulk }

// ComputeConnectionCounts walks the adjacency lists built by
// BuildAdjacency once and returns one ConnectionCount per net. Callers
// should compute this exactly once, after flattening and equivalence
// resolution, not per propagation event.
func ComputeConnectionCounts(c *Circuit) []ConnectionCount {
	counts := make([]ConnectionCount, len(c.Nets))
	for net := range c.Nets {
		counts[net].Source = int32(len(c.DevicesAt(NetID(net), RoleSource, nil).All()))
		counts[net].Gate = int32(len(c.DevicesAt(NetID(net), RoleGate, nil).All()))
		counts[net].Drain = int32(len(c.DevicesAt(NetID(net), RoleDrain, nil).All()))
		counts[net].Bulk = int32(len(c.DevicesAt(NetID(net), RoleBulk, nil).All()))
	}

	return counts
}
