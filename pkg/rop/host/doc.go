// Package host is the calling side of a harness: it starts harness binaries
// with a request argument, finds the result prefix in their stdout and turns
// the result line back into phase results.
//
// InvokeAll fans many requests out over a pool of worker lines; the pool's
// fail-fast rule applies, so one invocation that produces no result line
// fails the whole batch.
package host
