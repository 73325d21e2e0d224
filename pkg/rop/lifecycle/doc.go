// Package lifecycle runs one harness invocation: a before phase once, a
// process phase per input, an after phase once, then a single result line.
//
// Failure rules:
// - before fails: process is skipped and every entry carries before's error
// - process fails on an item: only that entry fails, later items still run
// - after fails: every entry is replaced with after's error
// - malformed request: an *InvocationError, nothing written to stdout
//
// Items are processed sequentially. For parallel fan-out of independent work
// see package pool.
package lifecycle
