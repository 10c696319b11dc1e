package provider

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hybridmsg/hybridmsg-go/internal/crypto"
)

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger used for initialization events.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.log = logger
		}
	}
}

// WithLookup replaces the suite registry lookup. Tests use it to observe
// how often a suite is initialized.
func WithLookup(lookup func(scheme string) (*crypto.Suite, error)) Option {
	return func(p *Provider) {
		if lookup != nil {
			p.lookup = lookup
		}
	}
}

// Provider exposes key generation and encryptor factories for one scheme.
// It is safe for concurrent use.
type Provider struct {
	scheme string
	log    *zap.Logger
	lookup func(scheme string) (*crypto.Suite, error)
	suite  func() (*crypto.Suite, error)
	ready  chan struct{}
}

// New creates a provider for scheme. The suite is not resolved until the
// first call to Init or any method that needs it.
func New(scheme string, opts ...Option) *Provider {
	p := &Provider{
		scheme: scheme,
		log:    zap.NewNop(),
		lookup: crypto.Lookup,
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.suite = sync.OnceValues(func() (*crypto.Suite, error) {
		defer close(p.ready)
		suite, err := p.lookup(p.scheme)
		if err != nil {
			p.log.Error("suite initialization failed", zap.String("scheme", p.scheme), zap.Error(err))
			return nil, err
		}
		p.log.Debug("suite initialized",
			zap.String("scheme", p.scheme),
			zap.String("algorithms", suite.Algorithms()),
			zap.Stringer("signatureTarget", suite.Target),
		)
		return suite, nil
	})

	return p
}

// Scheme returns the scheme identifier the provider was created with.
func (p *Provider) Scheme() string { return p.scheme }

// Init resolves and validates the suite. It is idempotent: the first
// caller performs the work and every other caller, concurrent or later,
// receives the same result. ctx bounds only how long this caller waits
// for an initialization still in flight.
func (p *Provider) Init(ctx context.Context) error {
	select {
	case <-p.ready:
		_, err := p.suite()
		return err
	default:
	}

	go func() { _, _ = p.suite() }()

	select {
	case <-p.ready:
	case <-ctx.Done():
		select {
		case <-p.ready:
		default:
			return ctx.Err()
		}
	}
	_, err := p.suite()
	return err
}

// Suite returns the initialized suite, initializing it if needed.
func (p *Provider) Suite() (*crypto.Suite, error) {
	return p.suite()
}

// GenerateKEMKeyPair creates a KEM key pair with the provider's suite.
func (p *Provider) GenerateKEMKeyPair() (crypto.KeyPair, error) {
	suite, err := p.suite()
	if err != nil {
		return crypto.KeyPair{}, err
	}
	kp, err := suite.GenerateKEMKeyPair()
	if err != nil {
		return crypto.KeyPair{}, &crypto.EncryptionError{Stage: crypto.StageKeygen, Err: err}
	}
	return kp, nil
}

// GenerateDSAKeyPair creates a signature key pair with the provider's suite.
func (p *Provider) GenerateDSAKeyPair() (crypto.KeyPair, error) {
	suite, err := p.suite()
	if err != nil {
		return crypto.KeyPair{}, err
	}
	kp, err := suite.GenerateSignKeyPair()
	if err != nil {
		return crypto.KeyPair{}, &crypto.EncryptionError{Stage: crypto.StageKeygen, Err: err}
	}
	return kp, nil
}

// GenerateTeamKeys creates a full team key set. member becomes the
// author identity of the set; if it is zero a fresh KEM key pair is used.
func (p *Provider) GenerateTeamKeys(member crypto.KeyPair) (*TeamKeySet, error) {
	teamKEM, err := p.GenerateKEMKeyPair()
	if err != nil {
		return nil, err
	}
	teamSign, err := p.GenerateDSAKeyPair()
	if err != nil {
		return nil, err
	}
	if member.IsZero() {
		if member, err = p.GenerateKEMKeyPair(); err != nil {
			return nil, err
		}
	}

	keys := &TeamKeySet{
		TeamKEMPublic:  teamKEM.PublicKey,
		TeamKEMSecret:  teamKEM.SecretKey,
		TeamSignPublic: teamSign.PublicKey,
		TeamSignSecret: teamSign.SecretKey,
	}
	return keys.WithMember(member), nil
}

// NewMailboxEncryptor returns a mailbox encryptor closing over the
// caller's own key pairs.
func (p *Provider) NewMailboxEncryptor(keys MailboxKeys) (*MailboxEncryptor, error) {
	suite, err := p.suite()
	if err != nil {
		return nil, err
	}
	return newMailboxEncryptor(suite, keys)
}

// NewTeamEncryptor validates keys and returns a team encryptor whose
// capability flags reflect the supplied key material.
func (p *Provider) NewTeamEncryptor(keys *TeamKeySet) (*TeamEncryptor, error) {
	suite, err := p.suite()
	if err != nil {
		return nil, err
	}
	return newTeamEncryptor(suite, keys)
}
