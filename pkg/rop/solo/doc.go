// Package solo contains single-value, synchronous ROP primitives that operate
// on Result[T]. The lifecycle coordinator is composed from them.
//
// Highlights:
// - Succeed/Fail: construct Result[T]; Fail classifies the error via fault
// - Guard: run a phase with failure capture (errors and panics)
// - Try: Guard a call on the successful value of a Result
// - Switch/Map: move from Result[In] to Result[Out]
// - DoubleTee: side effects on success or failure
// - Override: replace a whole result sequence with one failure
// - Finally: reduce to a concrete value via success/error handlers
package solo
