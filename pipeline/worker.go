package pipeline

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/kbukum/flowkit/errors"
	"github.com/kbukum/flowkit/logger"
	"github.com/kbukum/flowkit/queue"
)

// Task is an opaque value flowing through the pipeline.
type Task = any

// WorkFunc transforms a task. It runs on a worker goroutine, once per task.
type WorkFunc func(ctx context.Context, task Task) (Task, error)

// Predicate decides whether a task is kept by a Filter stage.
type Predicate func(ctx context.Context, task Task) (bool, error)

// Variant selects how a worker forwards a computed value.
type Variant string

const (
	// Base pushes the result to the output queue unconditionally.
	Base Variant = "base"
	// Filter pushes the original task when the work function returns true.
	Filter Variant = "filter"
	// Compact pushes the result only when it is non-nil.
	Compact Variant = "compact"
	// Flatten pushes each element of a returned collection individually.
	Flatten Variant = "flatten"
)

// stopSignal is the sentinel type. The single process-wide instance is
// distinct from every possible task value, including nil.
type stopSignal struct{}

var sentinel = &stopSignal{}

func isSentinel(t Task) bool {
	return t == Task(sentinel)
}

// Identity returns its task unchanged. It is the work function behind the
// Compact and Flatten convenience stages.
func Identity(_ context.Context, task Task) (Task, error) {
	return task, nil
}

// worker is a unit of execution bound to one input and one output queue.
// It repeatedly pops a task and, unless the task is the sentinel, applies
// the work function and forwards the output.
type worker struct {
	id      string
	stage   int
	variant Variant
	fn      WorkFunc
	input   *queue.Queue[Task]
	output  *queue.Queue[Task]
	busy    atomic.Bool
	log     *logger.Logger
	owner   *Pipeline
}

// Busy reports whether the worker is currently processing a task. Written
// only by the worker itself, read by progress introspection.
func (w *worker) Busy() bool {
	return w.busy.Load()
}

// run is the worker loop: Idle -> Processing -> Idle until the sentinel
// arrives, then Terminated. A terminal queue read (closed and empty) also
// terminates; during normal operation shutdown is signaled by the sentinel.
func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		task, ok := w.input.Pop()
		if !ok || isSentinel(task) {
			return
		}

		w.busy.Store(true)
		w.process(task)
		w.busy.Store(false)
	}
}

// process applies the work function to one task and forwards the result
// per the worker's variant. Panics in the work function are converted to
// worker failures.
func (w *worker) process(task Task) {
	defer func() {
		if r := recover(); r != nil {
			w.fail(fmt.Errorf("panic: %v", r))
		}
	}()

	result, err := w.fn(w.owner.ctx, task)
	if err != nil {
		w.fail(err)
		return
	}
	w.forward(task, result)
}

// forward implements the per-variant forwarding policy.
func (w *worker) forward(task, result Task) {
	switch w.variant {
	case Filter:
		keep, ok := result.(bool)
		if !ok {
			w.fail(fmt.Errorf("filter work function returned %T, want bool", result))
			return
		}
		if keep {
			w.push(task)
		}
	case Compact:
		if result != nil {
			w.push(result)
		}
	case Flatten:
		rv := reflect.ValueOf(result)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			for i := 0; i < rv.Len(); i++ {
				w.push(rv.Index(i).Interface())
			}
			return
		}
		// Non-collection results pass through whole.
		w.push(result)
	default:
		w.push(result)
	}
}

func (w *worker) push(v Task) {
	if err := w.output.Push(v); err != nil {
		w.fail(err)
	}
}

// fail handles a work function error per the pipeline's error policy.
func (w *worker) fail(cause error) {
	werr := errors.WorkerFailed(w.stage, cause)
	fields := logger.Fields(
		logger.FieldStage, w.stage,
		logger.FieldWorker, w.id,
		logger.FieldVariant, string(w.variant),
		logger.FieldError, cause.Error(),
	)

	if w.owner.cfg.OnError == ErrorPolicyPropagate {
		w.log.Error("work function failed", fields)
		w.owner.recordError(werr)
		return
	}

	// Fail fast: a worker crash anywhere is a process-ending condition.
	w.log.Fatal("work function failed", fields)
}
