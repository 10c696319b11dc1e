package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	hybridmsg "github.com/hybridmsg/hybridmsg-go"
)

// edit is the payload each participant sends.
type edit struct {
	Document string `json:"document"`
	Seq      int    `json:"seq"`
	Author   string `json:"author"`
	Text     string `json:"text"`
}

func simulate(ctx context.Context, s Scenario, logger *zap.Logger) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	opts := []hybridmsg.Option{
		hybridmsg.WithScheme(s.Scheme),
		hybridmsg.WithLogger(logger),
		hybridmsg.WithConcurrency(s.Concurrency),
	}

	names := s.names()
	users := make([]*hybridmsg.Participant, len(names))
	for i, name := range names {
		p, err := hybridmsg.NewParticipant(ctx, name, opts...)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot create participant %q", name)
		}
		users[i] = p
		logger.Debug("participant ready", zap.Object("participant", p))
	}

	mode := hybridmsg.EncryptorType(s.Mode)
	if mode == hybridmsg.EncryptorTeam {
		shared, err := users[0].GenerateTeamKeys(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "cannot generate team keys")
		}
		for _, p := range users[1:] {
			if err := p.SetTeamKeys(ctx, shared); err != nil {
				return nil, errors.Wrapf(err, "cannot share team keys with %q", p.ID())
			}
		}
	}

	broadcast := hybridmsg.NewBroadcast(hybridmsg.DeliveryMode(s.Delivery), opts...)
	report := newReport(s)

	for seq := 0; seq < s.Messages; seq++ {
		sender := users[seq%len(users)]
		recipients := make([]*hybridmsg.Participant, 0, len(users)-1)
		keys := make([][]byte, 0, len(users)-1)
		for _, p := range users {
			if p == sender {
				continue
			}
			recipients = append(recipients, p)
			keys = append(keys, p.KEMPublicKey())
		}

		block, err := sender.EncryptAndSignBlockForMany(ctx, edit{
			Document: "shared-doc",
			Seq:      seq,
			Author:   sender.ID(),
			Text:     "edit from " + sender.ID(),
		}, keys, mode)
		if err != nil {
			return nil, errors.Wrapf(err, "message %d from %q", seq, sender.ID())
		}

		for _, res := range broadcast.Deliver(ctx, block, recipients) {
			report.Deliveries++
			if !res.Success {
				report.Failures++
				logger.Warn("delivery failed",
					zap.Int("seq", seq),
					zap.String("recipient", res.RecipientID),
					zap.Error(res.Err),
				)
			}
		}
	}

	for _, p := range users {
		report.add(p.Stats())
	}
	report.Elapsed = time.Since(start)
	return report, nil
}
