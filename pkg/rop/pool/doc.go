// Package pool runs homogeneous work on a fixed number of worker lines.
//
// Workers share one cursor over the task indexes and claim the next index
// until the tasks run out. Start order follows index order, completion order
// does not; results are stored by index and returned in input order.
//
// Unlike the lifecycle coordinator, the pool does not isolate failures: the
// first task error (or panic) aborts the batch and Run returns it as a
// *TaskError with no partial results.
package pool
