package hybridmsg

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hybridmsg/hybridmsg-go/internal/crypto"
)

// Participant owns one KEM key pair, one signature key pair and a
// Coordinator bound to them. Its secret keys never leave it.
type Participant struct {
	id         string
	kemPublic  []byte
	signPublic []byte
	coord      *Coordinator
}

// NewParticipant generates key pairs for the configured scheme and
// returns an initialized participant. An empty id is replaced by a
// random UUID.
func NewParticipant(ctx context.Context, id string, opts ...Option) (*Participant, error) {
	if id == "" {
		id = uuid.NewString()
	}

	cfg := newConfig(opts)
	p := newProvider(cfg)
	if err := p.Init(ctx); err != nil {
		return nil, err
	}

	kemKP, err := p.GenerateKEMKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generate KEM key pair: %w", err)
	}
	signKP, err := p.GenerateDSAKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generate signature key pair: %w", err)
	}

	coord := newCoordinator(id, Keys{KEM: kemKP, Sign: signKP}, cfg, p)
	if err := coord.Init(ctx); err != nil {
		return nil, err
	}

	participant := &Participant{
		id:         id,
		kemPublic:  kemKP.PublicKey,
		signPublic: signKP.PublicKey,
		coord:      coord,
	}
	cfg.logger.Debug("participant created", zap.Object("participant", participant))
	return participant, nil
}

// ID returns the participant identifier.
func (p *Participant) ID() string { return p.id }

// Scheme returns the scheme the participant's keys belong to.
func (p *Participant) Scheme() string { return p.coord.Scheme() }

// KEMPublicKey returns a copy of the KEM public key. Senders address
// mailbox blocks to it.
func (p *Participant) KEMPublicKey() []byte { return append([]byte(nil), p.kemPublic...) }

// SignPublicKey returns a copy of the signature public key.
func (p *Participant) SignPublicKey() []byte { return append([]byte(nil), p.signPublic...) }

// Coordinator returns the participant's coordinator.
func (p *Participant) Coordinator() *Coordinator { return p.coord }

// EncryptAndSignBlockForMany creates a block for recipients; see
// Coordinator.CreateSharedBlock.
func (p *Participant) EncryptAndSignBlockForMany(ctx context.Context, data any, recipients [][]byte, typ EncryptorType) (*SharedBlock, error) {
	return p.coord.CreateSharedBlock(ctx, data, recipients, typ)
}

// DecryptAndVerifyBlock decrypts a block; see Coordinator.DecryptSharedBlock.
func (p *Participant) DecryptAndVerifyBlock(ctx context.Context, block *SharedBlock) *DecryptResult {
	return p.coord.DecryptSharedBlock(ctx, block)
}

// HasTeamKeys reports whether team keys are bound.
func (p *Participant) HasTeamKeys() bool { return p.coord.HasTeamKeys() }

// SetTeamKeys binds a team key set received from another member.
func (p *Participant) SetTeamKeys(ctx context.Context, keys *TeamKeySet) error {
	return p.coord.SetTeamKeys(ctx, keys)
}

// GenerateTeamKeys creates a team key set and returns the copy to share.
func (p *Participant) GenerateTeamKeys(ctx context.Context) (*TeamKeySet, error) {
	return p.coord.GenerateTeamKeys(ctx)
}

// TeamKeys returns the bound team keys without the member pair, or nil.
func (p *Participant) TeamKeys() *TeamKeySet { return p.coord.TeamKeys() }

// Stats returns a copy of the participant's append-only operation stats.
func (p *Participant) Stats() []OperationStats { return p.coord.Stats() }

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (p *Participant) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", p.id)
	enc.AddString("scheme", p.coord.Scheme())
	enc.AddString("kem", crypto.Fingerprint(p.kemPublic))
	enc.AddString("sign", crypto.Fingerprint(p.signPublic))
	enc.AddBool("hasTeamKeys", p.coord.HasTeamKeys())
	return nil
}

// String returns the identifier and public key fingerprints.
func (p *Participant) String() string {
	return fmt.Sprintf("%s (%s kem=%s)", p.id, p.coord.Scheme(), crypto.Fingerprint(p.kemPublic))
}
