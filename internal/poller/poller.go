// Package poller runs the poll-notify loop: fetch statuses, relay the latest
// verdict, classify failures, sleep, repeat.
package poller

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/robfig/cron/v3"

	"hwbot/internal/fault"
	"hwbot/internal/homework"
	logx "hwbot/pkg/logx"
)

const DefaultInterval = 10 * time.Minute

// Source fetches the raw API response for a cursor.
type Source interface {
	Fetch(ctx context.Context, cursor int64) (any, error)
}

// Sink delivers a message to the chat.
type Sink interface {
	Notify(ctx context.Context, text string) error
}

type Config struct {
	Interval time.Duration
	// ResetErrorOnSuccess forgets the last notified error kind after a clean
	// cycle, so the same kind is reported again when it reappears.
	ResetErrorOnSuccess bool
}

// Outcome describes one finished cycle.
type Outcome struct {
	Cursor   int64
	Err      *fault.Error // nil on success
	Notified bool
	Message  string
}

type Option func(*Poller)

// WithCycleHook runs fn after every cycle, before the sleep.
func WithCycleHook(fn func(Outcome)) Option {
	return func(p *Poller) { p.hook = fn }
}

// Poller is not safe for concurrent use; Run owns it.
type Poller struct {
	cfg  Config
	src  Source
	sink Sink
	log  logx.Logger
	hook func(Outcome)

	sched cron.Schedule
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	cursor       int64
	lastNotified *fault.Kind
}

func New(cfg Config, src Source, sink Sink, log logx.Logger, opts ...Option) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	p := &Poller{
		cfg:   cfg,
		src:   src,
		sink:  sink,
		log:   log,
		sched: cron.Every(cfg.Interval),
		now:   time.Now,
		sleep: sleepCtx,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Cursor returns the current poll cursor.
func (p *Poller) Cursor() int64 { return p.cursor }

// LastNotified returns the kind of the last error relayed to the chat.
func (p *Poller) LastNotified() (fault.Kind, bool) {
	if p.lastNotified == nil {
		return fault.Unknown, false
	}
	return *p.lastNotified, true
}

// Run cycles until ctx is canceled, sleeping the fixed interval after every
// cycle whatever its outcome.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info("poller started", logx.Duration("interval", p.cfg.Interval), logx.Int64("cursor", p.cursor))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		out := p.Cycle(ctx)
		if p.hook != nil {
			p.hook(out)
		}

		now := p.now()
		next := p.sched.Next(now)
		p.log.Debug("sleeping until next cycle", logx.Time("next", next))
		if err := p.sleep(ctx, next.Sub(now)); err != nil {
			p.log.Info("poller stopped", logx.Int64("cursor", p.cursor))
			return err
		}
	}
}

// Cycle performs one fetch-validate-notify pass and handles its error.
func (p *Poller) Cycle(ctx context.Context) Outcome {
	var out Outcome
	err := p.poll(ctx, &out)
	out.Cursor = p.cursor
	if err == nil {
		if p.cfg.ResetErrorOnSuccess {
			p.lastNotified = nil
		}
		return out
	}
	out.Err = fault.As(err)
	p.report(ctx, out.Err, &out)
	return out
}

func (p *Poller) poll(ctx context.Context, out *Outcome) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("cycle panicked", logx.Any("panic", r), logx.Stack(string(debug.Stack())))
			err = fault.NewUnknown(fmt.Errorf("panic: %v", r))
		}
	}()

	resp, err := p.src.Fetch(ctx, p.cursor)
	if err != nil {
		return err
	}
	homeworks, err := homework.CheckResponse(resp)
	if err != nil {
		return err
	}
	p.cursor = homework.Cursor(resp, p.cursor)

	if len(homeworks) == 0 {
		p.log.Debug("no new homework statuses in server response", logx.Int64("cursor", p.cursor))
		return nil
	}

	// Only the latest submission is reported.
	msg, err := homework.ParseStatus(homeworks[0])
	if err != nil {
		return err
	}
	if err := p.sink.Notify(ctx, msg); err != nil {
		return err
	}
	out.Notified = true
	out.Message = msg
	return nil
}

func (p *Poller) report(ctx context.Context, fe *fault.Error, out *Outcome) {
	if fe.Silent() {
		p.log.Error("we have got an error, not sending it to telegram",
			logx.String("kind", fe.Kind.String()), logx.Err(fe))
		return
	}

	p.log.Error("homework bot has encountered an error",
		logx.String("kind", fe.Kind.String()), logx.Err(fe))

	if p.lastNotified != nil && *p.lastNotified == fe.Kind {
		p.log.Debug("repeated error kind; not notifying", logx.String("kind", fe.Kind.String()))
		return
	}

	text := "Homework bot has encountered an error: " + fe.Error()
	if err := p.sink.Notify(ctx, text); err != nil {
		p.log.Error("error notification not sent", logx.Err(err))
		return
	}
	k := fe.Kind
	p.lastNotified = &k
	out.Notified = true
	out.Message = text
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsStop reports whether err is the normal end of Run.
func IsStop(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
