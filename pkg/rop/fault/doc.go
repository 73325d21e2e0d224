// Package fault normalizes whatever a phase failed with (an error, a panic
// value, a string, nil) into a Record holding a message and, when one is
// known, a stack trace.
//
// - Classify: any value -> Record, empty messages replaced by DefaultMessage
// - FromPanic: Classify plus the recovered goroutine stack
// - WithStack/New: errors that remember their origin; Classify preserves it
package fault
