package pipeline

import (
	"context"

	"github.com/kbukum/flowkit/logger"
	"github.com/kbukum/flowkit/observability"
)

// StageProgress is a best-effort snapshot of one stage, safe to collect
// while the pipeline is running. Counts may be stale under concurrent
// mutation; suitable for reporting, not for correctness decisions.
type StageProgress struct {
	// Stage is the stage index, front to back.
	Stage int
	// Variant is the stage's worker variant.
	Variant Variant
	// Workers is the pool size.
	Workers int
	// Busy is the number of workers currently processing a task.
	Busy int
	// Pending is the depth of the stage's input queue.
	Pending int
}

// Progress returns a snapshot of every stage.
func (p *Pipeline) Progress() []StageProgress {
	p.mu.Lock()
	pools := p.pools
	p.mu.Unlock()

	out := make([]StageProgress, 0, len(pools))
	for _, pl := range pools {
		sp := StageProgress{
			Stage:   pl.stage,
			Variant: pl.variant,
			Workers: len(pl.workers),
			Pending: pl.input.Len(),
		}
		for _, w := range pl.workers {
			if w.Busy() {
				sp.Busy++
			}
		}
		out = append(out, sp)
	}
	return out
}

// PendingResults returns the current depth of the final queue.
func (p *Pipeline) PendingResults() int {
	p.mu.Lock()
	tail := p.queues[len(p.queues)-1]
	p.mu.Unlock()
	return tail.Len()
}

// Idle reports whether no worker is processing and every stage queue is
// empty. Snapshot semantics as for Progress.
func (p *Pipeline) Idle() bool {
	for _, sp := range p.Progress() {
		if sp.Busy > 0 || sp.Pending > 0 {
			return false
		}
	}
	return true
}

// LogProgress returns a side-task for Periodic that logs one line per
// stage.
func LogProgress(log *logger.Logger) func(*Pipeline) {
	return func(p *Pipeline) {
		for _, sp := range p.Progress() {
			log.Info("stage progress", logger.Fields(
				logger.FieldStage, sp.Stage,
				logger.FieldVariant, string(sp.Variant),
				"busy", sp.Busy,
				"workers", sp.Workers,
				"pending", sp.Pending,
			))
		}
		log.Info("results pending", logger.Fields("pending", p.PendingResults()))
	}
}

// ObserveProgress returns a side-task for Periodic that records queue
// depths on the given metrics.
func ObserveProgress(m *observability.Metrics) func(*Pipeline) {
	return func(p *Pipeline) {
		ctx := context.Background()
		for _, sp := range p.Progress() {
			m.RecordQueueDepth(ctx, sp.Stage, sp.Pending)
		}
	}
}
