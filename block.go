package hybridmsg

import (
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/hybridmsg/hybridmsg-go/internal/crypto"
	"github.com/hybridmsg/hybridmsg-go/internal/provider"
)

// Re-exported wire and key types.
type (
	// KeyPair is a packed public/secret key pair.
	KeyPair = crypto.KeyPair
	// Secret is secret key material; it formats as [REDACTED].
	Secret = crypto.Secret
	// Bytes is a byte slice that encodes as unpadded base64url in JSON.
	Bytes = crypto.Bytes
	// Keys are a participant's own KEM and signature key pairs.
	Keys = provider.MailboxKeys
	// TeamKeySet is the key material shared by a team.
	TeamKeySet = provider.TeamKeySet
	// MailboxMessage is one recipient's copy of a mailbox payload.
	MailboxMessage = provider.MailboxMessage
	// TeamEnvelope is a signed two-layer team payload.
	TeamEnvelope = provider.TeamEnvelope
	// Timings holds measured time per protocol phase.
	Timings = provider.Timings
)

// EncryptorType selects how a block is encrypted.
type EncryptorType string

const (
	// EncryptorMailbox encrypts one copy per recipient.
	EncryptorMailbox EncryptorType = "mailbox"
	// EncryptorTeam encrypts one copy under the team keys.
	EncryptorTeam EncryptorType = "team"
)

// Data types recorded for normalized payloads.
const (
	DataTypeString = "string"
	DataTypeBytes  = "bytes"
	DataTypeJSON   = "json"
)

// BlockData describes the payload of a block without revealing it.
type BlockData struct {
	ID       string `json:"id"`
	DataType string `json:"dataType"`
	Size     int    `json:"size"`
}

// SharedBlock is the unit exchanged between participants. It is safe to
// serialize with encoding/json and send over any channel.
type SharedBlock struct {
	UserID        string        `json:"userId"`
	BlockData     BlockData     `json:"blockData"`
	SignPublicKey Bytes         `json:"signPublicKey"`
	Timestamp     time.Time     `json:"timestamp"`
	Scheme        string        `json:"scheme"`
	EncryptorType EncryptorType `json:"encryptorType"`

	// EncryptedVersions maps RecipientKey(recipient KEM public key) to
	// that recipient's message. Mailbox blocks only.
	EncryptedVersions map[string]*MailboxMessage `json:"encryptedVersions,omitempty"`

	// TeamEncrypted is set on team blocks.
	TeamEncrypted *TeamEnvelope `json:"teamEncrypted,omitempty"`

	// TeamKeys is the shared team key set, embedded so that members can
	// decrypt without prior key exchange. It carries the team secret keys
	// and must only travel between team members.
	TeamKeys *TeamKeySet `json:"teamKeys,omitempty"`
}

// RecipientKey returns the EncryptedVersions key for a KEM public key.
func RecipientKey(publicKey []byte) string {
	return crypto.ToBase64URL(publicKey)
}

// Recipients returns the EncryptedVersions keys in sorted order.
func (b *SharedBlock) Recipients() []string {
	keys := make([]string, 0, len(b.EncryptedVersions))
	for k := range b.EncryptedVersions {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// DecryptResult is the outcome of decrypting a block. Failures are
// reported through Err and Error, never as a returned error.
type DecryptResult struct {
	Valid           bool `json:"valid"`
	SignatureValid  bool `json:"signatureValid"`
	DecryptionValid bool `json:"decryptionValid"`

	// DecryptedData is the normalized payload. Empty unless Valid.
	DecryptedData string `json:"decryptedData,omitempty"`
	DataType      string `json:"dataType,omitempty"`

	// Author is the KEM public key recorded by the team member that
	// encrypted the block. Team blocks only.
	Author Bytes `json:"author,omitempty"`

	Err     error   `json:"-"`
	Error   string  `json:"error,omitempty"`
	Timings Timings `json:"timings"`
}

var errInvalidJSON = errors.New("invalid JSON payload")

// normalize converts block input to its canonical byte form.
func normalize(data any) ([]byte, string, error) {
	switch v := data.(type) {
	case string:
		return []byte(v), DataTypeString, nil
	case json.RawMessage:
		if !json.Valid(v) {
			return nil, "", &EncryptionError{Stage: crypto.StageEncode, Err: errInvalidJSON}
		}
		return slices.Clone([]byte(v)), DataTypeJSON, nil
	case []byte:
		return slices.Clone(v), DataTypeBytes, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", &EncryptionError{Stage: crypto.StageEncode, Err: err}
		}
		return b, DataTypeJSON, nil
	}
}
