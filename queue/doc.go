// Package queue provides an unbounded, thread-safe FIFO for pipeline
// stages.
//
// Queue supports concurrent producers and consumers. Pop blocks until an
// element is available; it returns ok=false only once the queue has been
// closed and fully emptied. Push never blocks: the queue is unbounded, so
// the only failure mode is pushing after close.
//
// Shutdown of consumers is signaled in-band (the pipeline package pushes
// sentinel tasks), not by closing the queue, so Pop deliberately has no
// timeout. Drain closes the queue and harvests everything left, and is
// how final results are collected.
package queue
