package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/flowkit/errors"
)

func TestSentinelIdentity(t *testing.T) {
	if isSentinel(nil) {
		t.Error("nil must not be the sentinel")
	}
	if isSentinel(false) || isSentinel(0) || isSentinel("") {
		t.Error("falsy values must not be the sentinel")
	}
	if !isSentinel(Task(sentinel)) {
		t.Error("sentinel must recognize itself")
	}
	if isSentinel(&stopSignal{}) {
		t.Error("a different stopSignal instance must not match")
	}
}

func TestBusyFlagObservable(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	p := New(quiet())
	p.Map(1, func(_ context.Context, task Task) (Task, error) {
		close(started)
		<-release
		return task, nil
	})
	p.Input(1)

	<-started
	progress := p.Progress()
	if len(progress) != 1 || progress[0].Busy != 1 {
		t.Errorf("expected 1 busy worker, got %+v", progress)
	}

	close(release)
	if _, err := p.Results(); err != nil {
		t.Fatalf("Results failed: %v", err)
	}

	progress = p.Progress()
	if progress[0].Busy != 0 {
		t.Errorf("expected 0 busy workers after finish, got %+v", progress)
	}
}

func TestErrorPropagatePolicy(t *testing.T) {
	boom := fmt.Errorf("boom")

	p := New(quiet(), WithErrorPolicy(ErrorPolicyPropagate))
	p.Map(1, func(_ context.Context, task Task) (Task, error) {
		if task.(int) == 3 {
			return nil, boom
		}
		return task, nil
	})
	p.Input(1, 2, 3, 4)

	results, err := p.Results()
	if !errors.IsCode(err, errors.ErrCodeWorkerFailed) {
		t.Fatalf("expected WORKER_FAILED error, got %v", err)
	}

	// Remaining tasks still drained: the failing task is dropped, the
	// rest are processed.
	if got := sortedInts(t, results); len(got) != 3 {
		t.Errorf("expected 3 surviving results, got %v", got)
	}
}

func TestPanicRecoveredUnderPropagate(t *testing.T) {
	p := New(quiet(), WithErrorPolicy(ErrorPolicyPropagate))
	p.Map(1, func(_ context.Context, task Task) (Task, error) {
		if task.(int) == 2 {
			panic("worker exploded")
		}
		return task, nil
	})
	p.Input(1, 2, 3)

	results, err := p.Results()
	if !errors.IsCode(err, errors.ErrCodeWorkerFailed) {
		t.Fatalf("expected WORKER_FAILED error from panic, got %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 surviving results, got %v", results)
	}
}

func TestFirstErrorWins(t *testing.T) {
	p := New(quiet(), WithErrorPolicy(ErrorPolicyPropagate))
	p.Map(1, func(_ context.Context, task Task) (Task, error) {
		return nil, fmt.Errorf("fail %d", task.(int))
	})
	p.Input(1, 2, 3)

	_, err := p.Results()
	if err == nil {
		t.Fatal("expected an error")
	}
	// Single worker processes FIFO, so the first failure is task 1.
	if got := err.Error(); !strings.Contains(got, "fail 1") {
		t.Errorf("expected first failure to win, got %q", got)
	}
}

func TestFilterNonBoolResultFails(t *testing.T) {
	p := New(quiet(), WithErrorPolicy(ErrorPolicyPropagate))
	p.AddStage(1, Filter, Identity) // identity returns the task, not a bool
	p.Input(42)

	_, err := p.Results()
	if !errors.IsCode(err, errors.ErrCodeWorkerFailed) {
		t.Errorf("expected WORKER_FAILED for non-bool filter result, got %v", err)
	}
}

func TestWorkFunctionContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "present")

	p := New(quiet(), WithContext(ctx))
	p.Map(1, func(ctx context.Context, task Task) (Task, error) {
		return ctx.Value(key{}), nil
	})
	p.Input(1)

	results, err := p.Results()
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	if len(results) != 1 || results[0] != "present" {
		t.Errorf("expected base context to reach work functions, got %v", results)
	}
}

func TestWorkersIdleBeforeInput(t *testing.T) {
	p := New(quiet())
	p.Map(2, Identity)

	// Workers block on an empty queue without spinning busy.
	time.Sleep(10 * time.Millisecond)
	if !p.Idle() {
		t.Error("expected idle pipeline before input")
	}
	p.Finish()
}
