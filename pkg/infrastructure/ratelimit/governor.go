package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"
	"go.uber.org/zap"

	"statsboard-backend/config"
	"statsboard-backend/pkg/infrastructure/metrics"
	"statsboard-backend/pkg/util/logger"
)

// Work is one deferred upstream operation. It runs at most MaxAttempts times.
type Work func(ctx context.Context) (any, error)

// Future is the handle for a submitted work unit. It is resolved exactly once.
type Future struct {
	done     chan struct{}
	value    any
	err      error
	attempts int
}

// Done is closed once the work unit succeeded or failed for good.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the unit resolves or ctx is done. Giving up on a unit does not
// cancel it: it still runs in its turn.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.done:
		return f.value, f.err
	}
}

// Attempts is the number of times the unit was executed. Only meaningful after Done.
func (f *Future) Attempts() int {
	select {
	case <-f.done:
		return f.attempts
	default:
		return 0
	}
}

func (f *Future) resolve(value any, err error, attempts int) {
	f.value = value
	f.err = err
	f.attempts = attempts
	close(f.done)
}

type unit struct {
	ctx    context.Context
	work   Work
	future *Future
}

// Governor serializes every upstream request of the process. Units are dispatched
// in submission order, the start of two consecutive dispatches is at least
// MinInterval apart, and rate-limited units are retried before the next unit runs.
type Governor struct {
	clock       quartz.Clock
	minInterval time.Duration
	maxAttempts int
	policy      Policy
	metrics     metrics.Sink
	logger      *zap.SugaredLogger

	// mu also orders queue depth reports.
	mu      sync.Mutex
	pending []*unit
	running bool

	// lastStart is only touched by the active drain goroutine.
	lastStart time.Time
}

// Option configures a Governor.
type Option func(*Governor)

func WithClock(clock quartz.Clock) Option {
	return func(g *Governor) { g.clock = clock }
}

func WithMinInterval(d time.Duration) Option {
	return func(g *Governor) { g.minInterval = d }
}

func WithMaxAttempts(n int) Option {
	return func(g *Governor) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

func WithPolicy(p Policy) Option {
	return func(g *Governor) { g.policy = p }
}

func WithMetrics(sink metrics.Sink) Option {
	return func(g *Governor) {
		if sink != nil {
			g.metrics = sink
		}
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(g *Governor) {
		if l != nil {
			g.logger = l
		}
	}
}

// New builds a governor. Without options it paces at 300ms and retries up to 3 attempts.
func New(opts ...Option) *Governor {
	g := &Governor{
		clock:       quartz.NewReal(),
		minInterval: DefaultMinInterval,
		maxAttempts: DefaultMaxAttempts,
		policy:      DefaultPolicy(),
		metrics:     metrics.NoopSink{},
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var (
	defaultGovernor     *Governor
	defaultGovernorOnce sync.Once
)

// Default returns the process-wide governor with default settings.
func Default() *Governor {
	defaultGovernorOnce.Do(func() {
		defaultGovernor = New()
	})
	return defaultGovernor
}

// Submit enqueues work and starts the drain loop if it is not already running.
// The work runs with ctx's values but is never cancelled by it.
func (g *Governor) Submit(ctx context.Context, work Work) *Future {
	u := &unit{
		ctx:    context.WithoutCancel(ctx),
		work:   work,
		future: &Future{done: make(chan struct{})},
	}

	g.mu.Lock()
	g.pending = append(g.pending, u)
	g.metrics.QueueDepth(len(g.pending))
	start := !g.running
	g.running = true
	g.mu.Unlock()

	if start {
		go g.drain()
	}
	return u.future
}

// Len is the number of units waiting for dispatch.
func (g *Governor) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

func (g *Governor) drain() {
	for {
		g.mu.Lock()
		if len(g.pending) == 0 {
			g.running = false
			g.mu.Unlock()
			return
		}
		u := g.pending[0]
		g.pending[0] = nil
		g.pending = g.pending[1:]
		g.metrics.QueueDepth(len(g.pending))
		g.mu.Unlock()

		g.run(u)
	}
}

func (g *Governor) run(u *unit) {
	for attempt := 1; ; attempt++ {
		g.pace()

		value, err := execute(u)
		if err == nil {
			g.metrics.Dispatched("success")
			u.future.resolve(value, nil, attempt)
			return
		}

		if attempt >= g.maxAttempts || !IsRateLimited(err) {
			g.metrics.Dispatched("failure")
			u.future.resolve(nil, err, attempt)
			return
		}

		delay := g.policy.Delay(err, attempt)
		g.metrics.RetryScheduled(delay)
		g.logger.Infow("rate limited, backing off",
			"attempt", attempt,
			"max_attempts", g.maxAttempts,
			"sleep", delay,
		)
		g.sleep(delay, "backoff")
	}
}

// pace blocks until MinInterval has passed since the previous dispatch started.
func (g *Governor) pace() {
	if !g.lastStart.IsZero() {
		elapsed := g.clock.Now("governor", "pace").Sub(g.lastStart)
		if wait := g.minInterval - elapsed; wait > 0 {
			g.metrics.PacingWait(wait)
			g.sleep(wait, "pace")
		}
	}
	g.lastStart = g.clock.Now("governor", "dispatch")
}

func (g *Governor) sleep(d time.Duration, tag string) {
	t := g.clock.NewTimer(d, "governor", tag)
	defer t.Stop()
	<-t.C
}

func execute(u *unit) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("work unit panicked: %v", r)
		}
	}()
	return u.work(u.ctx)
}

// Do submits fn to g and waits for its typed result.
func Do[T any](ctx context.Context, g *Governor, fn func(ctx context.Context) (T, error)) (T, error) {
	f := g.Submit(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})

	v, err := f.Wait(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	t, _ := v.(T)
	return t, nil
}

// NewFromConfig builds a governor from config.C.Provider. Zero settings keep the defaults.
func NewFromConfig(opts ...Option) *Governor {
	cfg := config.C.Provider

	policy := DefaultPolicy()
	if cfg.BackoffBaseMs > 0 {
		policy.Base = time.Duration(cfg.BackoffBaseMs) * time.Millisecond
	}
	if cfg.MaxJitterMs > 0 {
		policy.MaxJitter = time.Duration(cfg.MaxJitterMs) * time.Millisecond
	}

	base := []Option{
		WithPolicy(policy),
		WithMaxAttempts(cfg.MaxAttempts),
		WithLogger(logger.New("governor")),
	}
	if cfg.MinIntervalMs > 0 {
		interval := time.Duration(cfg.MinIntervalMs) * time.Millisecond
		policy.Floor = interval
		base[0] = WithPolicy(policy)
		base = append(base, WithMinInterval(interval))
	}
	return New(append(base, opts...)...)
}
