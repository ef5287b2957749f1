// Package vnet implements the virtual-net vectors: three parallel
// per-net records (min/sim/max), each mapping a net to a "next net +
// accumulated resistance" pointer toward the driving power, with path
// compression and a monotonic-stamp cache invalidation scheme.
//
// The resolvedAt-versus-counter check against a stale cached resolve plays the
// same role as a visited[] check against stale heap pops in a
// lazy-decrease-key shortest-path queue.
package vnet
