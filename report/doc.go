// Package report is the output layer: a logrus-backed operational
// logger, a throttled gzip error stream for structured detect.Finding
// records, and per-kind totals that survive throttling for the
// post-run summary.
package report
