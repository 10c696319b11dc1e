package crypto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap/zapcore"
)

const redacted = "[REDACTED]"

// Secret holds secret key bytes. It never renders its contents through
// fmt, zap or errors; only JSON encoding exposes the bytes.
type Secret []byte

// String implements fmt.Stringer.
func (s Secret) String() string { return redacted }

// GoString implements fmt.GoStringer.
func (s Secret) GoString() string { return redacted }

// Format implements fmt.Formatter so that every verb is redacted.
func (s Secret) Format(f fmt.State, _ rune) { _, _ = io.WriteString(f, redacted) }

// MarshalJSON encodes the secret as base64url.
func (s Secret) MarshalJSON() ([]byte, error) { return Bytes(s).MarshalJSON() }

// UnmarshalJSON decodes a base64 secret.
func (s *Secret) UnmarshalJSON(data []byte) error {
	var b Bytes
	if err := b.UnmarshalJSON(data); err != nil {
		return err
	}
	*s = Secret(b)
	return nil
}

// KeyPair is a public/secret key pair for either a KEM or a signature
// scheme, in the scheme's packed binary encoding.
type KeyPair struct {
	// PublicKey is the packed public key.
	PublicKey Bytes `json:"publicKey"`
	// SecretKey is the packed secret key.
	SecretKey Secret `json:"secretKey"`
}

// Fingerprint returns the fingerprint of the public half.
func (k KeyPair) Fingerprint() string { return Fingerprint(k.PublicKey) }

// IsZero reports whether neither half is set.
func (k KeyPair) IsZero() bool { return len(k.PublicKey) == 0 && len(k.SecretKey) == 0 }

// MarshalLogObject implements zapcore.ObjectMarshaler. Only the public
// fingerprint is emitted.
func (k KeyPair) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("fingerprint", k.Fingerprint())
	enc.AddInt("publicKeySize", len(k.PublicKey))
	return nil
}

// validateKeyPair checks both halves against the expected sizes.
func validateKeyPair(kp KeyPair, publicSize, secretSize int) bool {
	return len(kp.PublicKey) == publicSize && len(kp.SecretKey) == secretSize
}

// Equal reports whether two public keys are identical.
func Equal(a, b []byte) bool { return bytes.Equal(a, b) }

// Clone returns an independent copy of a key pair.
func (k KeyPair) Clone() KeyPair {
	return KeyPair{
		PublicKey: bytes.Clone(k.PublicKey),
		SecretKey: Secret(bytes.Clone(k.SecretKey)),
	}
}

var _ json.Marshaler = Secret(nil)
