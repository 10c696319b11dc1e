package hybridmsg

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hybridmsg/hybridmsg-go/internal/crypto"
	"github.com/hybridmsg/hybridmsg-go/internal/provider"
)

// teamState pairs a bound key set with its encryptor so both are swapped
// together.
type teamState struct {
	keys *TeamKeySet
	enc  *provider.TeamEncryptor
}

// Coordinator encrypts and decrypts blocks for one owner, independent of
// the encryptor type. It is safe for concurrent use.
type Coordinator struct {
	userID   string
	keys     Keys
	cfg      *config
	log      *zap.Logger
	provider *provider.Provider

	init    func() error
	ready   chan struct{}
	mailbox *provider.MailboxEncryptor
	team    atomic.Pointer[teamState]

	stats statsLog
}

// NewCoordinator creates a coordinator for userID owning keys. No suite
// work happens until Init or the first operation.
func NewCoordinator(userID string, keys Keys, opts ...Option) *Coordinator {
	cfg := newConfig(opts)
	return newCoordinator(userID, keys, cfg, newProvider(cfg))
}

func newProvider(cfg *config) *provider.Provider {
	return provider.New(cfg.scheme, provider.WithLogger(cfg.logger.Named("provider")))
}

func newCoordinator(userID string, keys Keys, cfg *config, p *provider.Provider) *Coordinator {
	c := &Coordinator{
		userID:   userID,
		keys:     Keys{KEM: keys.KEM.Clone(), Sign: keys.Sign.Clone()},
		cfg:      cfg,
		log:      cfg.logger.Named("coordinator").With(zap.String("userId", userID)),
		provider: p,
		ready:    make(chan struct{}),
	}
	c.init = sync.OnceValue(c.initialize)
	return c
}

func (c *Coordinator) initialize() error {
	defer close(c.ready)
	mailbox, err := c.provider.NewMailboxEncryptor(c.keys)
	if err != nil {
		return err
	}
	c.mailbox = mailbox

	if c.cfg.teamKeys != nil {
		if err := c.bindTeamKeys(c.cfg.teamKeys); err != nil {
			return err
		}
	}
	return nil
}

// Init initializes the provider and the mailbox encryptor. The work is
// done once; concurrent callers wait for it and share its result. ctx
// bounds only how long this caller waits for an initialization still in
// flight; once initialization has finished its result is returned as is.
func (c *Coordinator) Init(ctx context.Context) error {
	select {
	case <-c.ready:
		return c.init()
	default:
	}

	go func() { _ = c.init() }()

	select {
	case <-c.ready:
	case <-ctx.Done():
		select {
		case <-c.ready:
		default:
			return ctx.Err()
		}
	}
	return c.init()
}

// UserID returns the owner's identifier.
func (c *Coordinator) UserID() string { return c.userID }

// Scheme returns the configured scheme identifier.
func (c *Coordinator) Scheme() string { return c.cfg.scheme }

// Stats returns a copy of the recorded operation stats.
func (c *Coordinator) Stats() []OperationStats { return c.stats.snapshot() }

// HasTeamKeys reports whether team keys are bound.
func (c *Coordinator) HasTeamKeys() bool { return c.team.Load() != nil }

// TeamKeys returns the bound team keys without the member pair, or nil.
func (c *Coordinator) TeamKeys() *TeamKeySet {
	st := c.team.Load()
	if st == nil {
		return nil
	}
	return st.keys.Shared()
}

// SetTeamKeys binds keys, replacing their member pair with the owner's
// KEM key pair.
func (c *Coordinator) SetTeamKeys(ctx context.Context, keys *TeamKeySet) error {
	if err := c.Init(ctx); err != nil {
		return err
	}
	return c.bindTeamKeys(keys)
}

func (c *Coordinator) bindTeamKeys(keys *TeamKeySet) error {
	bound := keys.WithMember(c.keys.KEM)
	enc, err := c.provider.NewTeamEncryptor(bound)
	if err != nil {
		return err
	}
	c.team.Store(&teamState{keys: bound, enc: enc})
	c.log.Debug("team keys bound",
		zap.Object("teamKeys", bound),
		zap.Bool("canEncrypt", enc.CanEncrypt()),
		zap.Bool("canDecrypt", enc.CanDecrypt()),
	)
	return nil
}

// GenerateTeamKeys creates and binds a new team key set and returns it
// without the member pair, ready to hand to other members.
func (c *Coordinator) GenerateTeamKeys(ctx context.Context) (*TeamKeySet, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	keys, err := c.provider.GenerateTeamKeys(c.keys.KEM)
	if err != nil {
		return nil, err
	}
	if err := c.bindTeamKeys(keys); err != nil {
		return nil, err
	}
	return keys.Shared(), nil
}

// EncryptForMailbox encrypts plaintext once per recipient KEM public key.
// The result is keyed by RecipientKey. A recipient whose encryption fails
// is logged and left out; that is not an error. A cancelled ctx stops
// scheduling further recipients and its error is returned together with
// the messages produced so far.
func (c *Coordinator) EncryptForMailbox(ctx context.Context, plaintext []byte, dataType string, recipients [][]byte) (map[string]*MailboxMessage, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	stats := OperationStats{
		Operation:     OperationEncrypt,
		EncryptorType: EncryptorMailbox,
		Scheme:        c.cfg.scheme,
		Timestamp:     c.cfg.clock(),
	}
	start := c.cfg.clock()

	var (
		mu     sync.Mutex
		out    = make(map[string]*MailboxMessage, len(recipients))
		failed int
		g      errgroup.Group
	)
	g.SetLimit(c.cfg.concurrency)

	var ctxErr error
	for _, pub := range recipients {
		if ctxErr = ctx.Err(); ctxErr != nil {
			break
		}
		g.Go(func() error {
			msg, tm, err := c.mailbox.Encrypt(plaintext, dataType, pub)
			if err != nil {
				c.log.Warn("recipient omitted",
					zap.String("recipient", crypto.Fingerprint(pub)),
					zap.Error(err),
				)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			out[RecipientKey(pub)] = msg
			stats.addTimings(tm)
			stats.EncryptedSize += len(msg.EncryptedData) + len(msg.Ciphertext)
			stats.SignatureSize += len(msg.Signature)
			return nil
		})
	}
	_ = g.Wait()

	stats.TotalTime = c.cfg.clock().Sub(start)
	stats.Recipients = len(out)
	stats.Success = failed == 0 && ctxErr == nil
	c.stats.append(stats)

	c.log.Debug("mailbox batch encrypted",
		zap.Int("requested", len(recipients)),
		zap.Int("encrypted", len(out)),
		zap.Duration("total", stats.TotalTime),
	)
	return out, ctxErr
}

// EncryptForTeam encrypts plaintext under the team keys, generating a
// key set first if none is bound.
func (c *Coordinator) EncryptForTeam(ctx context.Context, plaintext []byte) (*TeamEnvelope, error) {
	env, _, err := c.encryptForTeam(ctx, plaintext)
	return env, err
}

// encryptForTeam also returns the shareable keys of the team state the
// envelope was encrypted under.
func (c *Coordinator) encryptForTeam(ctx context.Context, plaintext []byte) (*TeamEnvelope, *TeamKeySet, error) {
	st, err := c.teamForEncrypt(ctx)
	if err != nil {
		return nil, nil, err
	}

	start := c.cfg.clock()
	env, tm, err := st.enc.Encrypt(plaintext)

	stats := OperationStats{
		Operation:     OperationEncrypt,
		EncryptorType: EncryptorTeam,
		Scheme:        c.cfg.scheme,
		Timestamp:     start,
		Success:       err == nil,
		TotalTime:     c.cfg.clock().Sub(start),
	}
	stats.addTimings(tm)
	if env != nil {
		stats.Recipients = 1
		stats.EncryptedSize = len(env.OuterBundle.EncryptedData) + len(env.OuterBundle.Ciphertext)
		stats.SignatureSize = len(env.Signature)
	}
	c.stats.append(stats)

	if err != nil {
		return nil, nil, err
	}
	return env, st.keys.Shared(), nil
}

func (c *Coordinator) teamForEncrypt(ctx context.Context) (*teamState, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	if c.team.Load() == nil {
		if _, err := c.GenerateTeamKeys(ctx); err != nil {
			return nil, err
		}
	}
	st := c.team.Load()
	if !st.enc.CanEncrypt() {
		return nil, &CapabilityError{Operation: "team encryption"}
	}
	return st, nil
}

// CreateSharedBlock normalizes data, encrypts it with the given encryptor
// type and stamps the block metadata. Strings and byte slices are kept as
// is, json.RawMessage must be valid JSON and any other value is JSON
// encoded. recipients is ignored for team blocks.
func (c *Coordinator) CreateSharedBlock(ctx context.Context, data any, recipients [][]byte, typ EncryptorType) (*SharedBlock, error) {
	payload, dataType, err := normalize(data)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	block := &SharedBlock{
		UserID: c.userID,
		BlockData: BlockData{
			ID:       uuid.NewString(),
			DataType: dataType,
			Size:     len(payload),
		},
		SignPublicKey: c.keys.Sign.PublicKey,
		Timestamp:     c.cfg.clock().UTC(),
		Scheme:        c.cfg.scheme,
		EncryptorType: typ,
	}

	switch typ {
	case EncryptorMailbox:
		versions, err := c.EncryptForMailbox(ctx, payload, dataType, recipients)
		if err != nil {
			return nil, err
		}
		block.EncryptedVersions = versions
	case EncryptorTeam:
		env, keys, err := c.encryptForTeam(ctx, payload)
		if err != nil {
			return nil, err
		}
		block.TeamEncrypted = env
		block.TeamKeys = keys
	default:
		return nil, &ConfigurationError{Scheme: c.cfg.scheme, Message: fmt.Sprintf("unknown encryptor type %q", typ)}
	}

	return block, nil
}

// DecryptSharedBlock decrypts and verifies a block addressed to the owner.
// It never fails: problems are reported in the result with Valid false.
//
// Team blocks use the keys embedded in the block when present, otherwise
// the bound team keys. Mailbox blocks use the entry for the owner's KEM
// public key.
func (c *Coordinator) DecryptSharedBlock(ctx context.Context, block *SharedBlock) *DecryptResult {
	start := c.cfg.clock()
	res := &DecryptResult{}

	stats := OperationStats{
		Operation: OperationDecrypt,
		Scheme:    c.cfg.scheme,
		Timestamp: start,
	}
	if block != nil {
		stats.EncryptorType = block.EncryptorType
	}

	err := c.safeDecrypt(ctx, block, res)
	if err != nil {
		res.Valid = false
		res.DecryptedData = ""
		res.Err = err
		res.Error = err.Error()
		c.log.Debug("block rejected", zap.Error(err))
	} else {
		res.Valid = true
	}

	stats.addTimings(res.Timings)
	stats.Success = res.Valid
	stats.TotalTime = c.cfg.clock().Sub(start)
	c.stats.append(stats)
	return res
}

// safeDecrypt turns a panic in a primitive fed with malformed input into
// a decryption failure.
func (c *Coordinator) safeDecrypt(ctx context.Context, block *SharedBlock, res *DecryptResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("decryption panicked", zap.Any("panic", r))
			err = &DecryptionError{Stage: crypto.StageDecode, Err: fmt.Errorf("malformed block: %v", r)}
		}
	}()
	return c.decryptBlock(ctx, block, res)
}

func (c *Coordinator) decryptBlock(ctx context.Context, block *SharedBlock, res *DecryptResult) error {
	if block == nil {
		return &DecryptionError{Stage: crypto.StageDecode, Err: errors.New("nil block")}
	}
	if err := c.Init(ctx); err != nil {
		return err
	}
	if block.Scheme != "" && block.Scheme != c.cfg.scheme {
		return &ConfigurationError{Scheme: c.cfg.scheme, Message: fmt.Sprintf("block uses scheme %q", block.Scheme)}
	}
	res.DataType = block.BlockData.DataType

	switch block.EncryptorType {
	case EncryptorTeam:
		return c.decryptTeam(block, res)
	case EncryptorMailbox:
		return c.decryptMailbox(block, res)
	default:
		return &ConfigurationError{Scheme: c.cfg.scheme, Message: fmt.Sprintf("unknown encryptor type %q", block.EncryptorType)}
	}
}

func (c *Coordinator) decryptTeam(block *SharedBlock, res *DecryptResult) error {
	if block.TeamKeys != nil {
		if err := c.bindTeamKeys(block.TeamKeys); err != nil {
			return err
		}
	}
	st := c.team.Load()
	if st == nil {
		return &MissingKeyError{Operation: "team decryption"}
	}
	if block.TeamEncrypted == nil {
		return &DecryptionError{Stage: crypto.StageDecode, Err: errors.New("block has no team envelope")}
	}

	dec, tm, err := st.enc.Decrypt(block.TeamEncrypted, false)
	res.Timings = tm
	if err != nil {
		return err
	}
	res.SignatureValid = true
	res.DecryptionValid = true
	res.DecryptedData = string(dec.Content)
	res.Author = dec.Author
	return nil
}

func (c *Coordinator) decryptMailbox(block *SharedBlock, res *DecryptResult) error {
	msg := block.EncryptedVersions[RecipientKey(c.keys.KEM.PublicKey)]
	if msg == nil {
		return &NoMatchingRecipientError{Recipient: c.keys.KEM.Fingerprint()}
	}

	plaintext, tm, err := c.mailbox.Decrypt(msg, block.SignPublicKey)
	res.Timings = tm
	if err != nil {
		// Plaintext-signing suites decrypt before they verify.
		if errors.Is(err, ErrInvalidSignature) && c.signsPlaintext() {
			res.DecryptionValid = true
		}
		return err
	}
	res.SignatureValid = true
	res.DecryptionValid = true
	res.DecryptedData = string(plaintext)
	return nil
}

func (c *Coordinator) signsPlaintext() bool {
	suite, err := c.provider.Suite()
	return err == nil && suite.Target == crypto.SignPlaintext
}
