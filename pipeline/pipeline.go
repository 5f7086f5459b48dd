package pipeline

import (
	"context"
	"reflect"
	"regexp"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/flowkit/errors"
	"github.com/kbukum/flowkit/logger"
	"github.com/kbukum/flowkit/observability"
	"github.com/kbukum/flowkit/queue"
)

// Pipeline owns an ordered list of queues (stage boundaries) and one
// worker pool per stage. Stage-construction operators always bind to the
// current tail queue, appending a new queue and a pool wired
// input=tail, output=new queue.
//
// Invariant: len(queues) == len(pools)+1, and pool i reads queues[i] and
// writes queues[i+1].
type Pipeline struct {
	id      string
	cfg     Config
	log     *logger.Logger
	reg     *Registry
	metrics *observability.Metrics
	ctx     context.Context

	mu         sync.Mutex
	queues     []*queue.Queue[Task]
	pools      []*pool
	finished   bool
	finishDone chan struct{}
	firstErr   error

	bgCtx    context.Context
	bgCancel context.CancelFunc
	bg       sync.WaitGroup
	sigStop  func()
}

// pool is the set of workers assigned to one stage, sharing that stage's
// input and output queues.
type pool struct {
	stage   int
	variant Variant
	workers []*worker
	input   *queue.Queue[Task]
	output  *queue.Queue[Task]
	wg      sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConfig sets the pipeline configuration. Defaults are applied.
func WithConfig(cfg Config) Option {
	return func(p *Pipeline) { p.cfg = cfg }
}

// WithErrorPolicy sets the worker failure policy.
func WithErrorPolicy(policy ErrorPolicy) Option {
	return func(p *Pipeline) { p.cfg.OnError = policy }
}

// WithDefaultWorkers sets the pool size used when a stage is added with n <= 0.
func WithDefaultWorkers(n int) Option {
	return func(p *Pipeline) { p.cfg.DefaultWorkers = n }
}

// WithLogger sets the pipeline logger.
func WithLogger(log *logger.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithRegistry sets the named-operation registry consumed by Call.
func WithRegistry(reg *Registry) Option {
	return func(p *Pipeline) { p.reg = reg }
}

// WithInstruments attaches metric instruments; when Config.ProgressInterval
// is set, queue depths are recorded on them periodically via ObserveProgress.
func WithInstruments(m *observability.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithContext sets the base context passed to work functions.
func WithContext(ctx context.Context) Option {
	return func(p *Pipeline) { p.ctx = ctx }
}

// New creates an empty pipeline holding only the input queue.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		id:  uuid.NewString(),
		ctx: context.Background(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.cfg.ApplyDefaults()
	if p.log == nil {
		p.log = logger.GetGlobalLogger().WithComponent("pipeline")
	}
	p.log = p.log.WithFields(logger.Fields(logger.FieldPipeline, shortID(p.id)))
	if p.reg == nil {
		p.reg = NewRegistry()
	}

	p.queues = []*queue.Queue[Task]{queue.New[Task]()}
	p.finishDone = make(chan struct{})
	p.bgCtx, p.bgCancel = context.WithCancel(context.Background())

	if p.cfg.ProgressInterval > 0 {
		p.Periodic(p.cfg.ProgressInterval, LogProgress(p.log))
		if p.metrics != nil {
			p.Periodic(p.cfg.ProgressInterval, ObserveProgress(p.metrics))
		}
	}

	return p
}

// ID returns the pipeline's unique identifier.
func (p *Pipeline) ID() string { return p.id }

// AddStage appends a stage of n workers of the given variant, all sharing
// fn, reading the current tail queue and writing a newly appended queue.
// n <= 0 uses Config.DefaultWorkers. Returns the pipeline for chaining.
//
// Workers in the same pool race on the shared input queue, so output
// order across workers is not guaranteed; FIFO order holds within any
// single-worker pool.
func (p *Pipeline) AddStage(n int, v Variant, fn WorkFunc) *Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished {
		p.log.Warn("stage added after finish, ignoring", logger.Fields(logger.FieldVariant, string(v)))
		return p
	}
	if n <= 0 {
		n = p.cfg.DefaultWorkers
	}

	in := p.queues[len(p.queues)-1]
	out := queue.New[Task]()
	p.queues = append(p.queues, out)

	pl := &pool{
		stage:   len(p.pools),
		variant: v,
		input:   in,
		output:  out,
	}
	for i := 0; i < n; i++ {
		w := &worker{
			id:      shortID(uuid.NewString()),
			stage:   pl.stage,
			variant: v,
			fn:      fn,
			input:   in,
			output:  out,
			log:     p.log.WithComponent("worker"),
			owner:   p,
		}
		pl.workers = append(pl.workers, w)
		pl.wg.Add(1)
		go w.run(&pl.wg)
	}
	p.pools = append(p.pools, pl)

	p.log.Debug("stage added", logger.Fields(
		logger.FieldStage, pl.stage,
		logger.FieldVariant, string(v),
		"workers", n,
	))
	return p
}

// Map appends a Base stage applying fn to every task.
func (p *Pipeline) Map(n int, fn WorkFunc) *Pipeline {
	return p.AddStage(n, Base, fn)
}

// Filter appends a Filter stage keeping only tasks for which pred is true.
func (p *Pipeline) Filter(n int, pred Predicate) *Pipeline {
	return p.AddStage(n, Filter, func(ctx context.Context, task Task) (Task, error) {
		keep, err := pred(ctx, task)
		return keep, err
	})
}

// Compact appends a Compact stage dropping nil tasks.
func (p *Pipeline) Compact(n int) *Pipeline {
	return p.AddStage(n, Compact, Identity)
}

// Flatten appends a single-worker Flatten stage splicing nested
// collections into individual tasks. One worker keeps the per-task
// expansion order deterministic.
func (p *Pipeline) Flatten() *Pipeline {
	return p.AddStage(1, Flatten, Identity)
}

// Call appends a Base stage running the named operation from the
// registry. The name is resolved at construction time; operations must
// be registered before the stage is built. An unregistered name records
// a MISSING_OPERATION error surfaced by Results and installs an identity
// pass-through so shutdown still converges.
func (p *Pipeline) Call(name string, n int) *Pipeline {
	fn, ok := p.reg.Get(name)
	if !ok {
		p.log.Error("operation not registered",
			logger.Fields(logger.FieldOperation, name))
		p.recordError(errors.MissingOperation(name))
		fn = Identity
	}
	return p.AddStage(n, Base, fn)
}

// Match appends a Filter stage keeping string tasks that match re.
// Non-string tasks are dropped.
func (p *Pipeline) Match(n int, re *regexp.Regexp) *Pipeline {
	return p.Filter(n, func(_ context.Context, task Task) (bool, error) {
		s, ok := task.(string)
		return ok && re.MatchString(s), nil
	})
}

// Extract appends a Compact stage mapping each string task to its first
// capture group of re (or the whole match if re has no groups).
// Non-matching and non-string tasks yield nil and are dropped.
func (p *Pipeline) Extract(n int, re *regexp.Regexp) *Pipeline {
	return p.AddStage(n, Compact, func(_ context.Context, task Task) (Task, error) {
		s, ok := task.(string)
		if !ok {
			return nil, nil
		}
		m := re.FindStringSubmatch(s)
		switch {
		case m == nil:
			return nil, nil
		case len(m) > 1:
			return m[1], nil
		default:
			return m[0], nil
		}
	})
}

// Member appends a Filter stage keeping tasks present in set. Tasks of
// uncomparable types cannot be set members and are dropped.
func (p *Pipeline) Member(n int, set map[Task]struct{}) *Pipeline {
	return p.Filter(n, func(_ context.Context, task Task) (bool, error) {
		if task != nil && !reflect.TypeOf(task).Comparable() {
			return false, nil
		}
		_, ok := set[task]
		return ok, nil
	})
}

// Scrub appends a Base stage blanking string tasks that do not match re,
// leaving matching tasks unchanged. Pair with Compact via Prune to remove
// the blanks.
func (p *Pipeline) Scrub(n int, re *regexp.Regexp) *Pipeline {
	return p.Map(n, func(_ context.Context, task Task) (Task, error) {
		s, ok := task.(string)
		if !ok || !re.MatchString(s) {
			return "", nil
		}
		return s, nil
	})
}

// Prune appends a Compact stage that drops nil tasks and empty strings.
func (p *Pipeline) Prune(n int) *Pipeline {
	return p.AddStage(n, Compact, func(_ context.Context, task Task) (Task, error) {
		if s, ok := task.(string); ok && s == "" {
			return nil, nil
		}
		return task, nil
	})
}

// Input pushes initial values into the front queue. It fails with a
// QUEUE_CLOSED error once the pipeline has been finished.
func (p *Pipeline) Input(vs ...Task) error {
	p.mu.Lock()
	front := p.queues[0]
	p.mu.Unlock()

	return front.PushAll(vs...)
}

// Registry returns the pipeline's named-operation registry.
func (p *Pipeline) Registry() *Registry { return p.reg }

// Stages returns the number of stages added so far.
func (p *Pipeline) Stages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pools)
}

// recordError stores the first worker failure for Results to surface.
func (p *Pipeline) recordError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.firstErr == nil {
		p.firstErr = err
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
