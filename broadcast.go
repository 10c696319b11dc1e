package hybridmsg

import (
	"context"

	"github.com/hybridmsg/hybridmsg-go/internal/delivery"
)

// DeliveryMode selects how a Broadcast hands blocks to recipients.
type DeliveryMode = delivery.Mode

const (
	// DeliveryDirect passes the block value to every recipient.
	DeliveryDirect = delivery.ModeDirect
	// DeliveryJSON gives every recipient a JSON-decoded copy of the block.
	DeliveryJSON = delivery.ModeJSON
)

// DeliveryResult is the outcome of delivering a block to one participant.
// Value holds the decryption result whether or not it succeeded.
type DeliveryResult = delivery.Result[*DecryptResult]

// Broadcast delivers blocks to participants in-process.
type Broadcast struct {
	b *delivery.Broadcaster[*SharedBlock, *DecryptResult]
}

// NewBroadcast creates a Broadcast. WithLogger and WithConcurrency apply;
// other options are ignored.
func NewBroadcast(mode DeliveryMode, opts ...Option) *Broadcast {
	cfg := newConfig(opts)
	return &Broadcast{
		b: delivery.New[*SharedBlock, *DecryptResult](delivery.Config{
			Mode:        mode,
			Concurrency: cfg.concurrency,
			Logger:      cfg.logger.Named("delivery"),
		}),
	}
}

// Deliver has every recipient decrypt and verify block. A recipient that
// cannot decrypt is a failed result, not an error; one result is returned
// per recipient, in order.
func (b *Broadcast) Deliver(ctx context.Context, block *SharedBlock, recipients []*Participant) []DeliveryResult {
	targets := make([]delivery.Target[*SharedBlock, *DecryptResult], len(recipients))
	for i, p := range recipients {
		targets[i] = delivery.Target[*SharedBlock, *DecryptResult]{
			ID: p.ID(),
			Handle: func(ctx context.Context, blk *SharedBlock) (*DecryptResult, error) {
				res := p.DecryptAndVerifyBlock(ctx, blk)
				if !res.Valid {
					return res, res.Err
				}
				return res, nil
			},
		}
	}
	return b.b.Deliver(ctx, block, targets)
}
