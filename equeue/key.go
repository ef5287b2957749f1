package equeue

import "github.com/katalvlaran/cvc/netlist"

// eventKeyCutoff is the 2^24 mV·Ω-units cutoff below which the
// composite key equals the raw voltage.
const eventKeyCutoff = 1 << 24

// eventKeyCompression is the factor (2^7) by which the excess above
// the cutoff is compressed, keeping tail events finite.
const eventKeyCompression = 1 << 7

// Compose combines a raw voltage and an accumulated resistance into
// the compressed composite used to order queue entries.
func Compose(voltage netlist.Voltage, resistance netlist.Resistance) int64 {
	raw := int64(voltage) + int64(resistance)
	if raw >= -eventKeyCutoff && raw < eventKeyCutoff {
		return raw
	}
	if raw >= eventKeyCutoff {
		return eventKeyCutoff + (raw-eventKeyCutoff)/eventKeyCompression
	}

	return -eventKeyCutoff - (-eventKeyCutoff-raw)/eventKeyCompression
}

// EventKey is the compound (voltage, queue_position) ordering key.
// Key is the compressed voltage+resistance composite (primary
// ordering); Resistance breaks ties between equal Key values; Position
// is the insertion sequence, the final tie-break and the sole ordering
// signal the sim queue relies on within equal keys.
type EventKey struct {
	Key        int64
	Resistance netlist.Resistance
	Position   int64
}

// NewEventKey builds a key from a device's resolved voltage and
// resistance plus its insertion sequence number.
func NewEventKey(voltage netlist.Voltage, resistance netlist.Resistance, position int64) EventKey {
	return EventKey{Key: Compose(voltage, resistance), Resistance: resistance, Position: position}
}

// Less orders two keys according to dir:
//   - Max queue: highest voltage (Key) first, then lowest resistance.
//   - Min queue: lowest voltage (Key) first, then lowest resistance.
//   - Sim queue: FIFO within equal keys; Position is the tie-break.
func Less(dir netlist.Direction, a, b EventKey) bool {
	switch dir {
	case netlist.DirMax:
		if a.Key != b.Key {
			return a.Key > b.Key
		}
		if a.Resistance != b.Resistance {
			return a.Resistance < b.Resistance
		}
	case netlist.DirMin:
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		if a.Resistance != b.Resistance {
			return a.Resistance < b.Resistance
		}
	case netlist.DirSim:
		if a.Key != b.Key {
			return a.Key < b.Key
		}
	}

	return a.Position < b.Position
}
