package hybridmsg

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hybridmsg/hybridmsg-go/internal/crypto"
	"github.com/hybridmsg/hybridmsg-go/internal/provider"
)

func newTestParticipant(t *testing.T, id string, opts ...Option) *Participant {
	t.Helper()
	p, err := NewParticipant(context.Background(), id, opts...)
	require.NoError(t, err)
	return p
}

func TestScenario_MailboxAliceBobCarolDave(t *testing.T) {
	ctx := context.Background()
	alice := newTestParticipant(t, "alice", WithScheme(SchemePQ1))
	bob := newTestParticipant(t, "bob", WithScheme(SchemePQ1))
	carol := newTestParticipant(t, "carol", WithScheme(SchemePQ1))
	dave := newTestParticipant(t, "dave", WithScheme(SchemePQ1))

	block, err := alice.EncryptAndSignBlockForMany(ctx, "hello",
		[][]byte{bob.KEMPublicKey(), carol.KEMPublicKey()}, EncryptorMailbox)
	require.NoError(t, err)

	assert.Equal(t, "alice", block.UserID)
	assert.Equal(t, SchemePQ1, block.Scheme)
	assert.Equal(t, EncryptorMailbox, block.EncryptorType)
	assert.Equal(t, DataTypeString, block.BlockData.DataType)
	assert.Equal(t, 5, block.BlockData.Size)
	assert.Nil(t, block.TeamEncrypted)
	assert.Nil(t, block.TeamKeys)
	require.Len(t, block.EncryptedVersions, 2)
	assert.Contains(t, block.EncryptedVersions, RecipientKey(bob.KEMPublicKey()))
	assert.Contains(t, block.EncryptedVersions, RecipientKey(carol.KEMPublicKey()))

	for _, p := range []*Participant{bob, carol} {
		res := p.DecryptAndVerifyBlock(ctx, block)
		assert.True(t, res.Valid, p.ID())
		assert.True(t, res.SignatureValid)
		assert.True(t, res.DecryptionValid)
		assert.Equal(t, "hello", res.DecryptedData)
		assert.Empty(t, res.Error)
	}

	res := dave.DecryptAndVerifyBlock(ctx, block)
	assert.False(t, res.Valid)
	assert.Empty(t, res.DecryptedData)
	assert.ErrorIs(t, res.Err, ErrNoMatchingRecipient)
	var nmr *NoMatchingRecipientError
	require.ErrorAs(t, res.Err, &nmr)
	assert.Equal(t, crypto.Fingerprint(dave.KEMPublicKey()), nmr.Recipient)
	assert.Equal(t, res.Err.Error(), res.Error)
}

func TestMailbox_AllSchemes(t *testing.T) {
	ctx := context.Background()
	for _, scheme := range []string{SchemePQ1, SchemePQ5, SchemeClassical, SchemeHybridECDH} {
		t.Run(scheme, func(t *testing.T) {
			alice := newTestParticipant(t, "alice", WithScheme(scheme))
			bob := newTestParticipant(t, "bob", WithScheme(scheme))

			block, err := alice.EncryptAndSignBlockForMany(ctx, map[string]int{"pos": 3},
				[][]byte{bob.KEMPublicKey()}, EncryptorMailbox)
			require.NoError(t, err)

			res := bob.DecryptAndVerifyBlock(ctx, block)
			require.True(t, res.Valid, res.Error)
			assert.Equal(t, `{"pos":3}`, res.DecryptedData)
			assert.Equal(t, DataTypeJSON, res.DataType)
		})
	}
}

func TestEncryptForMailbox_PartialFailure(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.DebugLevel)
	alice := newTestParticipant(t, "alice", WithLogger(zap.New(core)), WithConcurrency(2))

	recipients := make([][]byte, 0, 5)
	for i := 0; i < 4; i++ {
		recipients = append(recipients, newTestParticipant(t, "").KEMPublicKey())
	}
	malformed := []byte("definitely not an ML-KEM public key")
	recipients = append(recipients[:2], append([][]byte{malformed}, recipients[2:]...)...)
	require.Len(t, recipients, 5)

	out, err := alice.Coordinator().EncryptForMailbox(ctx, []byte("payload"), DataTypeBytes, recipients)
	require.NoError(t, err)
	assert.Len(t, out, 4)
	assert.NotContains(t, out, RecipientKey(malformed))

	omitted := logs.FilterMessage("recipient omitted").All()
	require.Len(t, omitted, 1)
	assert.Equal(t, crypto.Fingerprint(malformed), omitted[0].ContextMap()["recipient"])

	stats := alice.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, OperationEncrypt, stats[0].Operation)
	assert.Equal(t, EncryptorMailbox, stats[0].EncryptorType)
	assert.Equal(t, 4, stats[0].Recipients)
	assert.False(t, stats[0].Success)
	assert.Positive(t, stats[0].EncryptedSize)
	assert.Positive(t, stats[0].SignatureSize)
	assert.Positive(t, stats[0].EncryptTime)
	assert.Positive(t, stats[0].SignTime)
	assert.Positive(t, stats[0].TotalTime)
}

func TestEncryptForMailbox_CancelledContext(t *testing.T) {
	alice := newTestParticipant(t, "alice")
	bob := newTestParticipant(t, "bob")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := alice.Coordinator().EncryptForMailbox(ctx, []byte("x"), DataTypeBytes, [][]byte{bob.KEMPublicKey()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out)
}

func TestTeamBlock_RoundTripWithAuthor(t *testing.T) {
	ctx := context.Background()
	alice := newTestParticipant(t, "alice")
	bob := newTestParticipant(t, "bob")

	require.False(t, alice.HasTeamKeys())
	block, err := alice.EncryptAndSignBlockForMany(ctx, "team notes", nil, EncryptorTeam)
	require.NoError(t, err)
	assert.True(t, alice.HasTeamKeys())
	require.NotNil(t, block.TeamEncrypted)
	require.NotNil(t, block.TeamKeys)
	assert.Empty(t, block.TeamKeys.MemberKEMPublic)
	assert.Empty(t, block.TeamKeys.MemberKEMSecret)
	assert.Empty(t, block.EncryptedVersions)

	res := bob.DecryptAndVerifyBlock(ctx, block)
	require.True(t, res.Valid, res.Error)
	assert.Equal(t, "team notes", res.DecryptedData)
	assert.Equal(t, alice.KEMPublicKey(), []byte(res.Author))
	assert.True(t, bob.HasTeamKeys())

	reply, err := bob.EncryptAndSignBlockForMany(ctx, "ack", nil, EncryptorTeam)
	require.NoError(t, err)
	reply.TeamKeys = nil

	res = alice.DecryptAndVerifyBlock(ctx, reply)
	require.True(t, res.Valid, res.Error)
	assert.Equal(t, "ack", res.DecryptedData)
	assert.Equal(t, bob.KEMPublicKey(), []byte(res.Author))
}

func TestTeamBlock_MissingKey(t *testing.T) {
	ctx := context.Background()
	alice := newTestParticipant(t, "alice")
	dave := newTestParticipant(t, "dave")

	block, err := alice.EncryptAndSignBlockForMany(ctx, "secret plan", nil, EncryptorTeam)
	require.NoError(t, err)
	block.TeamKeys = nil

	res := dave.DecryptAndVerifyBlock(ctx, block)
	assert.False(t, res.Valid)
	assert.False(t, res.DecryptionValid)
	assert.Empty(t, res.DecryptedData)
	assert.ErrorIs(t, res.Err, ErrMissingKey)
	var mk *MissingKeyError
	assert.ErrorAs(t, res.Err, &mk)
}

func TestTeamBlock_SharedKeysWithoutEmbedding(t *testing.T) {
	ctx := context.Background()
	alice := newTestParticipant(t, "alice")
	bob := newTestParticipant(t, "bob")

	shared, err := alice.GenerateTeamKeys(ctx)
	require.NoError(t, err)
	require.NoError(t, bob.SetTeamKeys(ctx, shared))

	block, err := alice.EncryptAndSignBlockForMany(ctx, []byte("bytes payload"), nil, EncryptorTeam)
	require.NoError(t, err)
	block.TeamKeys = nil

	res := bob.DecryptAndVerifyBlock(ctx, block)
	require.True(t, res.Valid, res.Error)
	assert.Equal(t, "bytes payload", res.DecryptedData)
	assert.Equal(t, DataTypeBytes, res.DataType)
}

func TestEncryptForTeam_Capability(t *testing.T) {
	ctx := context.Background()
	alice := newTestParticipant(t, "alice")
	carol := newTestParticipant(t, "carol")

	full, err := alice.GenerateTeamKeys(ctx)
	require.NoError(t, err)

	decryptOnly := &TeamKeySet{
		TeamKEMSecret:  full.TeamKEMSecret,
		TeamSignPublic: full.TeamSignPublic,
	}
	require.NoError(t, carol.SetTeamKeys(ctx, decryptOnly))

	_, err = carol.Coordinator().EncryptForTeam(ctx, []byte("x"))
	assert.ErrorIs(t, err, ErrCapability)

	block, err := alice.EncryptAndSignBlockForMany(ctx, "readable", nil, EncryptorTeam)
	require.NoError(t, err)
	block.TeamKeys = nil

	res := carol.DecryptAndVerifyBlock(ctx, block)
	require.True(t, res.Valid, res.Error)
	assert.Equal(t, "readable", res.DecryptedData)
}

func TestSetTeamKeys_Invalid(t *testing.T) {
	ctx := context.Background()
	alice := newTestParticipant(t, "alice")

	err := alice.SetTeamKeys(ctx, &TeamKeySet{TeamKEMPublic: []byte{1, 2, 3}})
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.False(t, alice.HasTeamKeys())
}

func TestDecryptSharedBlock_Tampered(t *testing.T) {
	ctx := context.Background()
	alice := newTestParticipant(t, "alice")
	bob := newTestParticipant(t, "bob")

	tests := []struct {
		name   string
		mutate func(m *MailboxMessage)
	}{
		{"encryptedData", func(m *MailboxMessage) { m.EncryptedData[len(m.EncryptedData)-1] ^= 0x80 }},
		{"ciphertext", func(m *MailboxMessage) { m.Ciphertext[0] ^= 0x80 }},
		{"signature", func(m *MailboxMessage) { m.Signature[0] ^= 0x80 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, err := alice.EncryptAndSignBlockForMany(ctx, "original", [][]byte{bob.KEMPublicKey()}, EncryptorMailbox)
			require.NoError(t, err)
			tt.mutate(block.EncryptedVersions[RecipientKey(bob.KEMPublicKey())])

			res := bob.DecryptAndVerifyBlock(ctx, block)
			assert.False(t, res.Valid)
			assert.Empty(t, res.DecryptedData)
			assert.NotEmpty(t, res.Error)
			assert.True(t, errors.Is(res.Err, ErrDecryption) || errors.Is(res.Err, ErrInvalidSignature), res.Error)
		})
	}
}

func TestDecryptSharedBlock_WrongSenderKey(t *testing.T) {
	ctx := context.Background()
	alice := newTestParticipant(t, "alice")
	bob := newTestParticipant(t, "bob")
	mallory := newTestParticipant(t, "mallory")

	block, err := alice.EncryptAndSignBlockForMany(ctx, "from alice", [][]byte{bob.KEMPublicKey()}, EncryptorMailbox)
	require.NoError(t, err)
	block.SignPublicKey = mallory.SignPublicKey()

	res := bob.DecryptAndVerifyBlock(ctx, block)
	assert.False(t, res.Valid)
	assert.False(t, res.SignatureValid)
	assert.True(t, res.DecryptionValid)
	assert.Empty(t, res.DecryptedData)
	assert.ErrorIs(t, res.Err, ErrInvalidSignature)
}

func TestDecryptSharedBlock_Rejects(t *testing.T) {
	ctx := context.Background()
	bob := newTestParticipant(t, "bob")

	tests := []struct {
		name  string
		block *SharedBlock
		want  error
	}{
		{"nil block", nil, ErrDecryption},
		{"unknown type", &SharedBlock{Scheme: SchemePQ1, EncryptorType: "carrier"}, ErrConfiguration},
		{"scheme mismatch", &SharedBlock{Scheme: SchemePQ5, EncryptorType: EncryptorMailbox}, ErrConfiguration},
		{"empty mailbox", &SharedBlock{Scheme: SchemePQ1, EncryptorType: EncryptorMailbox}, ErrNoMatchingRecipient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res *DecryptResult
			assert.NotPanics(t, func() { res = bob.DecryptAndVerifyBlock(ctx, tt.block) })
			require.NotNil(t, res)
			assert.False(t, res.Valid)
			assert.ErrorIs(t, res.Err, tt.want)
		})
	}

	stats := bob.Stats()
	require.Len(t, stats, len(tests))
	for _, s := range stats {
		assert.Equal(t, OperationDecrypt, s.Operation)
		assert.False(t, s.Success)
	}
}

func TestCreateSharedBlock_UnknownEncryptorType(t *testing.T) {
	alice := newTestParticipant(t, "alice")
	_, err := alice.EncryptAndSignBlockForMany(context.Background(), "x", nil, "carrier")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestCreateSharedBlock_UsesClock(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	alice := newTestParticipant(t, "alice", WithClock(func() time.Time { return fixed }))

	block, err := alice.EncryptAndSignBlockForMany(context.Background(), "x", nil, EncryptorMailbox)
	require.NoError(t, err)
	assert.Equal(t, fixed, block.Timestamp)
	assert.Empty(t, block.EncryptedVersions)
	_, err = uuid.Parse(block.BlockData.ID)
	assert.NoError(t, err)
}

func TestSharedBlock_JSONWireRoundTrip(t *testing.T) {
	ctx := context.Background()
	alice := newTestParticipant(t, "alice", WithScheme(SchemeClassical))
	bob := newTestParticipant(t, "bob", WithScheme(SchemeClassical))

	for _, typ := range []EncryptorType{EncryptorMailbox, EncryptorTeam} {
		t.Run(string(typ), func(t *testing.T) {
			block, err := alice.EncryptAndSignBlockForMany(ctx, "over the wire", [][]byte{bob.KEMPublicKey()}, typ)
			require.NoError(t, err)

			data, err := json.Marshal(block)
			require.NoError(t, err)

			var fields map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(data, &fields))
			for _, name := range []string{"userId", "blockData", "signPublicKey", "timestamp", "scheme", "encryptorType"} {
				assert.Contains(t, fields, name)
			}

			var decoded SharedBlock
			require.NoError(t, json.Unmarshal(data, &decoded))

			res := bob.DecryptAndVerifyBlock(ctx, &decoded)
			require.True(t, res.Valid, res.Error)
			assert.Equal(t, "over the wire", res.DecryptedData)
		})
	}
}

func TestCoordinator_ConcurrentInit(t *testing.T) {
	var lookups atomic.Int32
	scheme := "counting-" + uuid.NewString()
	require.NoError(t, crypto.Register(scheme, func() (*crypto.Suite, error) {
		lookups.Add(1)
		time.Sleep(5 * time.Millisecond)
		return crypto.Lookup(SchemePQ1)
	}))

	p := provider.New(SchemePQ1)
	kemKP, err := p.GenerateKEMKeyPair()
	require.NoError(t, err)
	signKP, err := p.GenerateDSAKeyPair()
	require.NoError(t, err)

	c := NewCoordinator("alice", Keys{KEM: kemKP, Sign: signKP}, WithScheme(scheme))
	assert.Zero(t, lookups.Load())

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.Init(context.Background())
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), lookups.Load())

	require.NoError(t, c.Init(context.Background()))
	assert.Equal(t, int32(1), lookups.Load())
}

func TestCoordinator_InitInvalidKeys(t *testing.T) {
	c := NewCoordinator("broken", Keys{})
	err := c.Init(context.Background())
	assert.ErrorIs(t, err, ErrInvalidKey)

	res := c.DecryptSharedBlock(context.Background(), &SharedBlock{EncryptorType: EncryptorMailbox})
	assert.False(t, res.Valid)
	assert.ErrorIs(t, res.Err, ErrInvalidKey)
}

func TestCoordinator_WithTeamKeys(t *testing.T) {
	ctx := context.Background()
	alice := newTestParticipant(t, "alice")
	shared, err := alice.GenerateTeamKeys(ctx)
	require.NoError(t, err)

	p := provider.New(SchemePQ1)
	kemKP, err := p.GenerateKEMKeyPair()
	require.NoError(t, err)
	signKP, err := p.GenerateDSAKeyPair()
	require.NoError(t, err)

	c := NewCoordinator("bob", Keys{KEM: kemKP, Sign: signKP}, WithTeamKeys(shared))
	require.NoError(t, c.Init(ctx))
	assert.True(t, c.HasTeamKeys())

	env, err := c.EncryptForTeam(ctx, []byte("hi"))
	require.NoError(t, err)

	block := &SharedBlock{Scheme: SchemePQ1, EncryptorType: EncryptorTeam, TeamEncrypted: env}
	res := alice.DecryptAndVerifyBlock(ctx, block)
	require.True(t, res.Valid, res.Error)
	assert.Equal(t, kemKP.PublicKey, []byte(res.Author))
}

func TestNewParticipant_UnknownScheme(t *testing.T) {
	_, err := NewParticipant(context.Background(), "x", WithScheme("pq-9"))
	assert.ErrorIs(t, err, ErrConfiguration)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestDecryptSharedBlock_MalformedFields(t *testing.T) {
	ctx := context.Background()

	mailbox := func(mutate func(m *MailboxMessage)) func(b *SharedBlock, bob *Participant) {
		return func(b *SharedBlock, bob *Participant) {
			mutate(b.EncryptedVersions[RecipientKey(bob.KEMPublicKey())])
		}
	}
	tests := []struct {
		name   string
		typ    EncryptorType
		mutate func(b *SharedBlock, bob *Participant)
	}{
		{"truncated signature", EncryptorMailbox, mailbox(func(m *MailboxMessage) { m.Signature = m.Signature[:1] })},
		{"empty signature", EncryptorMailbox, mailbox(func(m *MailboxMessage) { m.Signature = nil })},
		{"truncated ciphertext", EncryptorMailbox, mailbox(func(m *MailboxMessage) { m.Ciphertext = m.Ciphertext[:2] })},
		{"nil encryptedData", EncryptorMailbox, mailbox(func(m *MailboxMessage) { m.EncryptedData = nil })},
		{"short sender key", EncryptorMailbox, func(b *SharedBlock, _ *Participant) { b.SignPublicKey = b.SignPublicKey[:5] }},
		{"truncated team signature", EncryptorTeam, func(b *SharedBlock, _ *Participant) { b.TeamEncrypted.Signature = b.TeamEncrypted.Signature[:1] }},
		{"truncated team ciphertext", EncryptorTeam, func(b *SharedBlock, _ *Participant) {
			b.TeamEncrypted.OuterBundle.Ciphertext = b.TeamEncrypted.OuterBundle.Ciphertext[:2]
		}},
	}

	for _, scheme := range []string{SchemePQ1, SchemePQ5, SchemeClassical, SchemeHybridECDH} {
		alice := newTestParticipant(t, "alice", WithScheme(scheme))
		bob := newTestParticipant(t, "bob", WithScheme(scheme))

		for _, tt := range tests {
			t.Run(scheme+"/"+tt.name, func(t *testing.T) {
				block, err := alice.EncryptAndSignBlockForMany(ctx, "original", [][]byte{bob.KEMPublicKey()}, tt.typ)
				require.NoError(t, err)
				tt.mutate(block, bob)

				var res *DecryptResult
				require.NotPanics(t, func() { res = bob.DecryptAndVerifyBlock(ctx, block) })
				assert.False(t, res.Valid)
				assert.Empty(t, res.DecryptedData)
				assert.True(t, errors.Is(res.Err, ErrDecryption) || errors.Is(res.Err, ErrInvalidSignature), res.Error)
			})
		}
	}
}

func TestBroadcast_MalformedBlockDoesNotStopDelivery(t *testing.T) {
	ctx := context.Background()
	alice := newTestParticipant(t, "alice", WithScheme(SchemeHybridECDH))
	bob := newTestParticipant(t, "bob", WithScheme(SchemeHybridECDH))
	carol := newTestParticipant(t, "carol", WithScheme(SchemeHybridECDH))

	block, err := alice.EncryptAndSignBlockForMany(ctx, "hi", [][]byte{bob.KEMPublicKey(), carol.KEMPublicKey()}, EncryptorMailbox)
	require.NoError(t, err)
	m := block.EncryptedVersions[RecipientKey(bob.KEMPublicKey())]
	m.Signature = m.Signature[:1]

	results := NewBroadcast(DeliveryDirect).Deliver(ctx, block, []*Participant{bob, carol})
	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.ErrorIs(t, results[0].Err, ErrInvalidSignature)
	assert.True(t, results[1].Success)
}

func TestCreateSharedBlock_TeamKeysOpenOwnEnvelope(t *testing.T) {
	ctx := context.Background()
	alice := newTestParticipant(t, "alice", WithScheme(SchemeClassical))
	carol := newTestParticipant(t, "carol", WithScheme(SchemeClassical))
	reader := newTestParticipant(t, "reader", WithScheme(SchemeClassical))

	foreign, err := carol.EncryptAndSignBlockForMany(ctx, "other team", nil, EncryptorTeam)
	require.NoError(t, err)

	const n = 50
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				alice.DecryptAndVerifyBlock(ctx, foreign)
			}
		}
	}()

	blocks := make([]*SharedBlock, 0, n)
	for i := 0; i < n; i++ {
		block, err := alice.EncryptAndSignBlockForMany(ctx, "own team", nil, EncryptorTeam)
		require.NoError(t, err)
		blocks = append(blocks, block)
	}
	close(stop)
	wg.Wait()

	for i, block := range blocks {
		res := reader.DecryptAndVerifyBlock(ctx, block)
		require.True(t, res.Valid, "block %d: %s", i, res.Error)
		assert.Equal(t, "own team", res.DecryptedData)
	}
}

func TestCoordinator_InitCompletedIgnoresCancelledContext(t *testing.T) {
	alice := newTestParticipant(t, "alice")
	bob := newTestParticipant(t, "bob")

	block, err := alice.EncryptAndSignBlockForMany(context.Background(), "hi", [][]byte{bob.KEMPublicKey()}, EncryptorMailbox)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 100; i++ {
		require.NoError(t, bob.Coordinator().Init(ctx))
		res := bob.DecryptAndVerifyBlock(ctx, block)
		require.True(t, res.Valid, res.Error)
	}
}

func TestEncryptForMailbox_DuplicateRecipients(t *testing.T) {
	alice := newTestParticipant(t, "alice")
	bob := newTestParticipant(t, "bob")

	out, err := alice.Coordinator().EncryptForMailbox(context.Background(), []byte("x"), DataTypeBytes,
		[][]byte{bob.KEMPublicKey(), bob.KEMPublicKey()})
	require.NoError(t, err)
	assert.Len(t, out, 1)

	stats := alice.Stats()
	require.Len(t, stats, 1)
	assert.True(t, stats[0].Success)
	assert.Equal(t, 1, stats[0].Recipients)
}
