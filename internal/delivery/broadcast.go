package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Mode selects how a block reaches each recipient.
type Mode string

const (
	// ModeDirect passes the block value as is.
	ModeDirect Mode = "direct"
	// ModeJSON round-trips the block through encoding/json per recipient.
	ModeJSON Mode = "json"
)

// ErrNoHandler is returned for a target without a handler.
var ErrNoHandler = errors.New("target has no handler")

// Handler receives one copy of a block.
type Handler[B, R any] func(ctx context.Context, block B) (R, error)

// Target is one recipient of a delivery.
type Target[B, R any] struct {
	ID     string
	Handle Handler[B, R]
}

// Result is the outcome of delivering to one recipient.
type Result[R any] struct {
	RecipientID string
	Success     bool
	Value       R
	Err         error
}

// Config holds broadcaster configuration.
type Config struct {
	// Mode is the delivery mode. If empty, defaults to ModeDirect.
	Mode Mode

	// Concurrency limits parallel handler calls.
	// If zero, defaults to runtime.NumCPU().
	Concurrency int

	// Logger receives per-recipient failures. If nil, nothing is logged.
	Logger *zap.Logger
}

// Broadcaster delivers blocks of type B to handlers returning R.
// It is safe for concurrent use.
type Broadcaster[B, R any] struct {
	mode        Mode
	concurrency int
	log         *zap.Logger
}

// New creates a broadcaster.
func New[B, R any](cfg Config) *Broadcaster[B, R] {
	b := &Broadcaster[B, R]{
		mode:        cfg.Mode,
		concurrency: cfg.Concurrency,
		log:         cfg.Logger,
	}
	if b.mode == "" {
		b.mode = ModeDirect
	}
	if b.concurrency <= 0 {
		b.concurrency = runtime.NumCPU()
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	return b
}

// Name returns the delivery mode name.
func (b *Broadcaster[B, R]) Name() string { return string(b.mode) }

// Deliver calls every target's handler with its copy of block and
// returns the results in target order. Targets not yet started when ctx
// is cancelled fail with the context error.
func (b *Broadcaster[B, R]) Deliver(ctx context.Context, block B, targets []Target[B, R]) []Result[R] {
	results := make([]Result[R], len(targets))
	for i, t := range targets {
		results[i].RecipientID = t.ID
	}

	copyFn, err := b.copier(block)
	if err != nil {
		for i := range results {
			results[i].Err = err
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(b.concurrency)

	for i, t := range targets {
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			results[i].Value, results[i].Err = b.deliverOne(ctx, t, copyFn)
			results[i].Success = results[i].Err == nil
			if results[i].Err != nil {
				b.log.Debug("delivery failed",
					zap.String("recipient", t.ID),
					zap.String("mode", string(b.mode)),
					zap.Error(results[i].Err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (b *Broadcaster[B, R]) deliverOne(ctx context.Context, t Target[B, R], copyFn func() (B, error)) (R, error) {
	var zero R
	if t.Handle == nil {
		return zero, ErrNoHandler
	}
	blk, err := copyFn()
	if err != nil {
		return zero, err
	}
	return t.Handle(ctx, blk)
}

// copier returns a function producing each recipient's copy of block.
func (b *Broadcaster[B, R]) copier(block B) (func() (B, error), error) {
	switch b.mode {
	case ModeDirect:
		return func() (B, error) { return block, nil }, nil
	case ModeJSON:
		data, err := json.Marshal(block)
		if err != nil {
			return nil, fmt.Errorf("encode block: %w", err)
		}
		return func() (B, error) {
			var out B
			if err := json.Unmarshal(data, &out); err != nil {
				return out, fmt.Errorf("decode block: %w", err)
			}
			return out, nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown delivery mode %q", b.mode)
	}
}
