package cvc

import (
	"github.com/katalvlaran/cvc/detect"
	"github.com/katalvlaran/cvc/netlist"
)

// runDetectors runs every device-scoped predicate over every device
// and the net-scoped ExpectedValue predicate over every net, appending
// every firing to db.Findings.
// Throttling detail output is a report-layer concern (report.ErrorStream
// carries its own detect.Throttle); this stage collects the complete,
// unthrottled set so a caller that wants every occurrence (not just
// the ones a particular report chose to print) still can.
func (db *Database) runDetectors() {
	for d := range db.Circuit.Devices {
		for _, det := range detect.Detectors {
			if f, ok := det(db.Circuit, db.Engine, db.Config, netlist.DeviceID(d)); ok {
				db.Findings = append(db.Findings, f)
			}
		}
	}
	for n := range db.Circuit.Nets {
		findings := detect.ExpectedValue(db.Circuit, db.Engine, netlist.NetID(n))
		db.Findings = append(db.Findings, findings...)
	}
}
