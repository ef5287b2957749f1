package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/katalvlaran/cvc/detect"
)

// Tally keeps running per-kind and per-cell totals that keep counting
// past the CircuitErrorLimit a detect.Throttle applies to detail
// printing, for the post-run per-cell error summary.
type Tally struct {
	byKind map[detect.Kind]int64
	byCell map[cellKind]int64
}

type cellKind struct {
	cell string
	kind detect.Kind
}

// NewTally allocates an empty Tally.
func NewTally() *Tally {
	return &Tally{
		byKind: make(map[detect.Kind]int64),
		byCell: make(map[cellKind]int64),
	}
}

// Record adds one finding to the running totals, independent of
// whether its detail line was suppressed by throttling.
func (t *Tally) Record(f *detect.Finding) {
	t.byKind[f.Kind]++
	t.byCell[cellKind{cell: f.Cell, kind: f.Kind}]++
}

// Total returns the running total for kind across every cell.
func (t *Tally) Total(kind detect.Kind) int64 {
	return t.byKind[kind]
}

// WriteSummary renders the post-run per-cell, per-kind summary in a
// stable (cell, then kind) order.
func (t *Tally) WriteSummary(w io.Writer) error {
	keys := make([]cellKind, 0, len(t.byCell))
	for k := range t.byCell {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].cell != keys[j].cell {
			return keys[i].cell < keys[j].cell
		}

		return keys[i].kind < keys[j].kind
	})
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\n", k.cell, k.kind, t.byCell[k]); err != nil {
			return err
		}
	}

	return nil
}
