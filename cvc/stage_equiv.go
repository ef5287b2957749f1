package cvc

import (
	"github.com/katalvlaran/cvc/detect"
	"github.com/katalvlaran/cvc/equiv"
	"github.com/sirupsen/logrus"
)

// resolveEquivalence runs the union-find stage and folds its power
// conflicts into Findings as detect.KindPowerConflict records. equiv
// stays decoupled from package detect's vocabulary, so the conversion
// happens here, the one place both types are in scope.
func (db *Database) resolveEquivalence() error {
	conflicts, err := equiv.Resolve(db.Circuit, db.Log)
	if err != nil {
		return err
	}
	db.Conflicts = conflicts

	for _, lc := range conflicts {
		cell, inst := "", db.Circuit.Nets[lc.NetA].ParentInstance
		f := &detect.Finding{
			Kind:      detect.KindPowerConflict,
			Device:    lc.Device,
			Instance:  inst,
			Cell:      cell,
			Detail:    "incompatible power declarations merged across a SWITCH_ON device",
			Signature: "power-conflict: device merges nets with incompatible power declarations",
		}
		db.Findings = append(db.Findings, f)
		db.Log.WithFields(logrus.Fields{
			"stage": "equiv", "device": lc.Device, "net_a": lc.NetA, "net_b": lc.NetB,
		}).Warn("power-consistency conflict recorded, merge performed anyway")
	}

	db.Circuit.BuildAdjacency()

	return nil
}
