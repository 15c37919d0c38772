// Package sender runs outbound Telegram API calls through a small worker
// pool with a shared retry policy.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/vaultbot/core/logger"
	"github.com/m3rciful/vaultbot/core/telegram/netutil"
)

const component = "tg.sender"

var (
	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull is returned by Enqueue when no slot is free.
	ErrQueueFull = errors.New("telegram sender: queue full")

	errNilRun = errors.New("telegram sender: nil run function")
)

// DefaultMaxRetries is used when Options.MaxRetries is zero.
const DefaultMaxRetries = 2

// Options tunes the dispatcher. Zero values pick the defaults in NewDispatcher.
type Options struct {
	QueueSize int
	Workers   int
	// MaxRetries counts repeats after the first attempt; negative disables them.
	MaxRetries int
	// RetryBackoff grows linearly with the attempt number.
	RetryBackoff time.Duration
	// MaxDuration bounds one call including all of its retries.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	o.MaxRetries = max(o.MaxRetries, 0)
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

// call is one outbound API request. run must be safe to repeat.
type call struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

func (c call) attrs(extra ...slog.Attr) []slog.Attr {
	attrs := []slog.Attr{slog.String("op", c.action)}
	if c.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", c.endpoint))
	}
	return append(attrs, extra...)
}

// Dispatcher executes calls either on its worker pool (Enqueue) or on the
// caller's goroutine (Do). Both paths share the retry policy.
type Dispatcher struct {
	opts  Options
	queue chan call
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	failed atomic.Uint64
}

// NewDispatcher starts opts.Workers workers.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{opts: opts, queue: make(chan call, opts.QueueSize)}
	for range opts.Workers {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for c := range d.queue {
				_ = d.execute(c)
			}
		}()
	}
	return d
}

// Enqueue schedules run without waiting. It never blocks: a full queue
// yields ErrQueueFull so the caller can fall back to a direct call.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errNilRun
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.queue <- call{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Do runs the call inline and returns its final error.
func (d *Dispatcher) Do(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errNilRun
	}
	return d.execute(call{ctx: ctx, action: action, endpoint: endpoint, run: run})
}

// ErrorCount reports how many calls failed after exhausting retries.
func (d *Dispatcher) ErrorCount() uint64 { return d.failed.Load() }

// Close rejects new work, drains the queue and waits for the workers.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) execute(c call) error {
	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	bounded, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	logger.Debug(ctx, component, "send.start", c.attrs()...)

	attempt, err := d.retry(bounded, c)
	took := slog.Duration("duration", time.Since(start))
	if err == nil {
		event := "send.success"
		if attempt > 1 {
			event = "send.retry.success"
		}
		logger.Debug(ctx, component, event, c.attrs(slog.Int("attempts", attempt), took)...)
		return nil
	}

	d.failed.Add(1)
	logger.Error(ctx, component, "send.fail", c.attrs(
		slog.Int("attempts", attempt),
		slog.String("err", logger.Redact(err.Error())),
		slog.String("err_code", classifyError(err)),
		took,
	)...)
	return err
}

// retry runs c until it succeeds, fails permanently, runs out of attempts
// or ctx expires. It returns the number of attempts made.
func (d *Dispatcher) retry(ctx context.Context, c call) (int, error) {
	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return attempt - 1, errors.Join(err, ctxErr)
		}
		if err = c.run(); err == nil {
			return attempt, nil
		}
		if attempt > d.opts.MaxRetries || !netutil.ShouldRetry(err) {
			return attempt, err
		}

		delay := max(d.opts.RetryBackoff*time.Duration(attempt), netutil.RetryAfter(err))
		logger.Debug(ctx, component, "send.retry.backoff",
			c.attrs(slog.Int("attempts", attempt), slog.Duration("backoff", delay))...)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
}
