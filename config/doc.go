// Package config holds the typed settings the engine reads at runtime
// from a .cvcrc-style file: per-kind error thresholds, the
// leak-current limit, SOI/SCRC mode flags, and the circuit-wide error
// throttle.
//
// Only the narrow "KEY = 'value'" + shell-expansion dialect is
// handled here; the CDL/model/power/fuse file parsers are external
// collaborators that hand the engine already-flattened structures.
package config
