package pipeline

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kbukum/flowkit/logger"
)

// Finish shuts the pipeline down gracefully: for each pool in creation
// order it pushes one sentinel per worker into the pool's input queue,
// then joins every worker in that pool before moving to the next. A
// worker stops only after consuming its own sentinel, so every real task
// queued before the sentinel is processed first.
//
// Finish assumes all real input was pushed before it is called. It is
// idempotent, and every caller blocks until all workers have terminated:
// concurrent callers (a signal-triggered Interrupted racing a Results)
// wait for the first caller's join to complete.
func (p *Pipeline) Finish() {
	p.mu.Lock()
	if p.finished {
		p.mu.Unlock()
		<-p.finishDone
		return
	}
	p.finished = true
	pools := p.pools
	sigStop := p.sigStop
	p.mu.Unlock()
	defer close(p.finishDone)

	// Side-tasks are terminated forcibly, not via sentinel.
	p.bgCancel()
	p.bg.Wait()
	if sigStop != nil {
		sigStop()
	}

	start := time.Now()
	for _, pl := range pools {
		for range pl.workers {
			if err := pl.input.Push(Task(sentinel)); err != nil {
				// Input queue can only be closed once the pipeline is
				// already drained; the workers are gone either way.
				break
			}
		}
		pl.wg.Wait()
	}

	p.log.Info("pipeline finished", logger.DurationFields("finish", time.Since(start)))
}

// Finished reports whether Finish has been called.
func (p *Pipeline) Finished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finished
}

// Results finishes the pipeline, drains the final queue, and returns the
// collected tasks in drain order, stripping any residual sentinels. Under
// ErrorPolicyPropagate the first worker failure is returned alongside the
// tasks collected so far.
//
// Results is terminal: every queue is closed afterwards and the pipeline
// cannot be reused. Input fails with a QUEUE_CLOSED error from then on.
func (p *Pipeline) Results() ([]Task, error) {
	p.Finish()

	p.mu.Lock()
	queues := p.queues
	firstErr := p.firstErr
	p.mu.Unlock()

	// Close every stage boundary so late Input calls fail loudly instead
	// of silently dropping data.
	for _, q := range queues[:len(queues)-1] {
		q.Drain()
	}

	drained := queues[len(queues)-1].Drain()
	results := make([]Task, 0, len(drained))
	for _, t := range drained {
		if isSentinel(t) {
			continue
		}
		results = append(results, t)
	}

	return results, firstErr
}

// Periodic starts a repeating background side-task invoked with the
// pipeline at best-effort fixed intervals, typically for progress
// polling. It runs concurrently with the worker pools and is stopped by
// Finish.
func (p *Pipeline) Periodic(interval time.Duration, fn func(*Pipeline)) {
	p.bg.Add(1)
	go func() {
		defer p.bg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-p.bgCtx.Done():
				return
			case <-ticker.C:
				fn(p)
			}
		}
	}()
}

// Interrupted cancels pending, not-yet-started input by clearing the
// first non-empty queue in pipeline order, then drains in-flight work via
// Finish. Best-effort graceful cancellation: a worker mid-task is not
// preempted.
func (p *Pipeline) Interrupted() {
	p.mu.Lock()
	queues := p.queues
	p.mu.Unlock()

	for i, q := range queues {
		if !q.Empty() {
			n := q.Clear()
			p.log.Warn("interrupt: cleared pending tasks", logger.Fields(
				logger.FieldStage, i,
				"cleared", n,
			))
			break
		}
	}

	p.Finish()
}

// NotifySignals registers an interrupt handler so that an external
// signal triggers Interrupted instead of abrupt termination. With no
// signals given it watches SIGINT and SIGTERM. The returned stop
// function unregisters the handler; Finish also unregisters it.
func (p *Pipeline) NotifySignals(sigs ...os.Signal) (stop func()) {
	if len(sigs) == 0 {
		sigs = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	done := make(chan struct{})
	var once sync.Once
	stop = func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}

	p.mu.Lock()
	p.sigStop = stop
	p.mu.Unlock()

	go func() {
		select {
		case sig := <-ch:
			p.log.Warn("interrupt received", logger.Fields("signal", sig.String()))
			p.Interrupted()
		case <-done:
		}
	}()

	return stop
}
