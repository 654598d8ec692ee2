// Package workqueue provides an unbounded FIFO of tasks with task-completion
// accounting.
//
// Producers Put items; consumers block in Get until an item arrives or the
// queue is closed and drained. Every item handed out must be acknowledged with
// TaskDone, and Join blocks until all items put so far have been
// acknowledged. The queue is the only synchronization point between the batch
// driver and the worker pool.
package workqueue
