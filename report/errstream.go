package report

import (
	"compress/gzip"
	"fmt"
	"io"

	"github.com/katalvlaran/cvc/detect"
)

// ErrorStream is the throttled, gzip-compressed electrical-error
// sink: every detect.Finding is tallied, but detail lines stop
// printing once its (instance, kind) pair has been seen
// CircuitErrorLimit times.
type ErrorStream struct {
	gz       *gzip.Writer
	throttle *detect.Throttle
	tally    *Tally
}

// NewErrorStream wraps w (typically a `.err.gz` file) with gzip
// compression and a throttle at limit occurrences per (instance, kind).
func NewErrorStream(w io.Writer, limit int64) *ErrorStream {
	return &ErrorStream{
		gz:       gzip.NewWriter(w),
		throttle: detect.NewThrottle(limit),
		tally:    NewTally(),
	}
}

// Write records f: always tallies it, and writes its Signature line to
// the gzip stream unless throttling has suppressed detail for its
// (instance, kind) pair.
func (s *ErrorStream) Write(f *detect.Finding) error {
	s.tally.Record(f)
	if !s.throttle.Record(f) {
		return nil
	}
	_, err := fmt.Fprintln(s.gz, f.Signature)

	return err
}

// Tally exposes the running per-kind/per-cell totals for the post-run
// summary, surviving whatever this stream's own throttling suppressed.
func (s *ErrorStream) Tally() *Tally {
	return s.tally
}

// Close flushes and closes the underlying gzip writer.
func (s *ErrorStream) Close() error {
	return s.gz.Close()
}
