package cvc

import (
	"github.com/katalvlaran/cvc/config"
	"github.com/katalvlaran/cvc/detect"
	"github.com/katalvlaran/cvc/equiv"
	"github.com/katalvlaran/cvc/netlist"
	"github.com/katalvlaran/cvc/propagate"
	"github.com/sirupsen/logrus"
)

// Database is one verification run's state: the flattened circuit,
// its settings, the equivalence conflicts observed, the propagation
// engine, and the findings the detectors produced.
type Database struct {
	Circuit *netlist.Circuit
	Config  config.Config
	Log     *logrus.Logger

	Engine *propagate.Engine

	// Counts caches per-net terminal-role attachment counts, computed
	// once after adjacency construction, never per event.
	Counts []netlist.ConnectionCount

	Conflicts []equiv.LeakConflict
	Findings  []*detect.Finding
}

// New allocates a Database over an already-flattened circuit (the CDL
// parser that produces c is an external collaborator). BuildAdjacency
// need not have run yet; Run calls it after equivalence resolution.
func New(c *netlist.Circuit, cfg config.Config, log *logrus.Logger) *Database {
	return &Database{
		Circuit: c,
		Config:  cfg,
		Log:     log,
	}
}

// OverrideFuse applies one CVC_FUSE_FILE-style per-device fuse-state
// override: conducting=true forces FUSE_ON, false forces FUSE_OFF,
// nil restores the model's own tag. The device's inactive bits are
// cleared so the next Run re-examines it; any stale queue entry is
// discarded lazily at dequeue.
func (db *Database) OverrideFuse(d netlist.DeviceID, conducting *bool) {
	dev := &db.Circuit.Devices[d]
	dev.FuseOverride = conducting
	dev.SetInactive(netlist.DirMin, false)
	dev.SetInactive(netlist.DirMax, false)
	dev.SetInactive(netlist.DirSim, false)
}
