package provider

import (
	"encoding/binary"
	"errors"

	"github.com/hybridmsg/hybridmsg-go/internal/crypto"
)

// mailboxContext domain-separates envelope signatures.
const mailboxContext = "hybridmsg:mailbox:v1"

// MailboxKeys are the caller's own key pairs.
type MailboxKeys struct {
	KEM  crypto.KeyPair
	Sign crypto.KeyPair
}

// MailboxMessage is one recipient's copy of a mailbox-encrypted payload.
type MailboxMessage struct {
	// EncryptedData is the AEAD ciphertext of the payload.
	EncryptedData crypto.Bytes `json:"encryptedData"`
	// Ciphertext is the KEM encapsulation bound to the recipient key.
	Ciphertext crypto.Bytes `json:"ciphertext"`
	// Signature authenticates the plaintext or the serialized message,
	// depending on the suite.
	Signature crypto.Bytes `json:"signature"`
	// SenderPublicKey is the sender's signature public key.
	SenderPublicKey crypto.Bytes `json:"senderPublicKey"`
	// DataType describes how the plaintext was normalized.
	DataType string `json:"dataType"`
}

// MailboxEncryptor encrypts and decrypts pairwise messages. It closes
// over the owner's secret keys and never exposes them.
type MailboxEncryptor struct {
	suite *crypto.Suite
	keys  MailboxKeys
}

func newMailboxEncryptor(suite *crypto.Suite, keys MailboxKeys) (*MailboxEncryptor, error) {
	var malformed []string
	if len(keys.KEM.SecretKey) != suite.KEMSecretKeySize() {
		malformed = append(malformed, "kemSecretKey")
	}
	if len(keys.Sign.SecretKey) != suite.SignSecretKeySize() {
		malformed = append(malformed, "signSecretKey")
	}
	if len(keys.Sign.PublicKey) != suite.SignPublicKeySize() {
		malformed = append(malformed, "signPublicKey")
	}
	if len(malformed) > 0 {
		return nil, &crypto.InvalidKeyError{Malformed: malformed}
	}

	return &MailboxEncryptor{suite: suite, keys: keys.cloned()}, nil
}

func (k MailboxKeys) cloned() MailboxKeys {
	return MailboxKeys{KEM: k.KEM.Clone(), Sign: k.Sign.Clone()}
}

// Encrypt produces a message for one recipient KEM public key.
func (m *MailboxEncryptor) Encrypt(plaintext []byte, dataType string, recipientPublicKey []byte) (*MailboxMessage, Timings, error) {
	var t Timings
	msg := &MailboxMessage{
		SenderPublicKey: m.keys.Sign.PublicKey,
		DataType:        dataType,
	}

	err := measure(&t.Encrypt, func() error {
		ct, sealed, err := m.suite.SealTo(recipientPublicKey, plaintext)
		msg.Ciphertext, msg.EncryptedData = ct, sealed
		return err
	})
	if err != nil {
		return nil, t, err
	}

	err = measure(&t.Sign, func() error {
		sig, err := m.suite.Sign(m.keys.Sign.SecretKey, m.signedBytes(msg, plaintext))
		msg.Signature = sig
		return err
	})
	if err != nil {
		return nil, t, &crypto.EncryptionError{Stage: crypto.StageSign, Err: err}
	}

	return msg, t, nil
}

// Decrypt recovers the plaintext of a message addressed to the owner.
// senderPublicKey is the claimed sender signature key; when empty the key
// carried in the message is used. Plaintext is returned only after the
// signature verifies.
func (m *MailboxEncryptor) Decrypt(msg *MailboxMessage, senderPublicKey []byte) ([]byte, Timings, error) {
	var t Timings
	if msg == nil {
		return nil, t, &crypto.DecryptionError{Stage: crypto.StageDecode, Err: errors.New("nil message")}
	}
	if len(senderPublicKey) == 0 {
		senderPublicKey = msg.SenderPublicKey
	}
	sigErr := &crypto.InvalidSignatureError{Signer: crypto.Fingerprint(senderPublicKey)}

	if m.suite.Target == crypto.SignEnvelope {
		var ok bool
		_ = measure(&t.Verify, func() error {
			ok = m.suite.Verify(senderPublicKey, m.signedBytes(msg, nil), msg.Signature)
			return nil
		})
		if !ok {
			return nil, t, sigErr
		}
	}

	var plaintext []byte
	err := measure(&t.Decrypt, func() error {
		var err error
		plaintext, err = m.suite.OpenFrom(m.keys.KEM.SecretKey, msg.Ciphertext, msg.EncryptedData)
		return err
	})
	if err != nil {
		return nil, t, err
	}

	if m.suite.Target == crypto.SignPlaintext {
		var ok bool
		_ = measure(&t.Verify, func() error {
			ok = m.suite.Verify(senderPublicKey, plaintext, msg.Signature)
			return nil
		})
		if !ok {
			clear(plaintext)
			return nil, t, sigErr
		}
	}

	return plaintext, t, nil
}

// signedBytes returns what the suite signs for msg.
func (m *MailboxEncryptor) signedBytes(msg *MailboxMessage, plaintext []byte) []byte {
	if m.suite.Target == crypto.SignPlaintext {
		return plaintext
	}
	return envelopeTranscript(msg)
}

// envelopeTranscript serializes the signed fields of a message:
// context || for each field: length (4 bytes BE) || bytes.
func envelopeTranscript(msg *MailboxMessage) []byte {
	fields := [][]byte{
		[]byte(msg.DataType),
		msg.Ciphertext,
		msg.EncryptedData,
		msg.SenderPublicKey,
	}

	size := len(mailboxContext)
	for _, f := range fields {
		size += 4 + len(f)
	}

	transcript := make([]byte, 0, size)
	transcript = append(transcript, mailboxContext...)
	for _, f := range fields {
		transcript = binary.BigEndian.AppendUint32(transcript, uint32(len(f)))
		transcript = append(transcript, f...)
	}
	return transcript
}
