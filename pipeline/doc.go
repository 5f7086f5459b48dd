// Package pipeline provides a concurrent, push-based pipeline engine:
// chained stages of parallel workers, each stage reading tasks from one
// queue and writing results to the next, from an input queue to a final
// results queue.
//
// Stages are appended fluently and always bind to the current tail queue:
//
//	p := pipeline.New()
//	p.Map(20, square).
//	    Map(5, squareRoot).
//	    Compact(1)
//	p.Input(1, 2, 3)
//	results, err := p.Results()
//
// # Worker variants
//
// All variants share the same lifecycle and differ only in how a computed
// value is forwarded:
//
//   - Base: push the result unconditionally
//   - Filter: push the original task when the predicate returns true
//   - Compact: push the result only when it is non-nil
//   - Flatten: push each element of a returned collection individually
//
// # Shutdown
//
// Finish injects one sentinel per worker into each stage's input queue in
// pipeline order and joins every worker before moving on. Workers stop only
// after consuming their own sentinel, so every real task queued before
// shutdown is processed. Results calls Finish and drains the tail queue.
//
// # Failure policy
//
// A work function error or panic is handled per Config.OnError:
// ErrorPolicyAbort (default) terminates the process on the first failure;
// ErrorPolicyPropagate records the first error and surfaces it from
// Results while the remaining workers keep draining.
package pipeline
