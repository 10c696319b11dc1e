package crypto

import (
	"errors"
	"fmt"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/sign"
)

// SignatureTarget selects what a mailbox signature covers.
type SignatureTarget int

const (
	// SignPlaintext signs the plaintext; verification happens after
	// decryption and the plaintext is discarded if it fails.
	SignPlaintext SignatureTarget = iota
	// SignEnvelope signs the serialized message; verification happens
	// before any decryption is attempted.
	SignEnvelope
)

func (t SignatureTarget) String() string {
	switch t {
	case SignPlaintext:
		return "plaintext"
	case SignEnvelope:
		return "envelope"
	default:
		return fmt.Sprintf("SignatureTarget(%d)", int(t))
	}
}

// Suite bundles a KEM, a signature scheme and an AEAD cipher.
// A Suite is immutable once validated and safe for concurrent use.
type Suite struct {
	// Name is the scheme identifier the suite is registered under.
	Name string
	// KEM is the key encapsulation mechanism.
	KEM kem.Scheme
	// Signer is the signature scheme.
	Signer sign.Scheme
	// Cipher is the authenticated cipher used for payloads.
	Cipher Cipher
	// Target selects what mailbox signatures cover.
	Target SignatureTarget
}

// Validate checks that the suite is complete and that the KEM produces
// enough key material for the cipher.
func (s *Suite) Validate() error {
	if s == nil {
		return &ConfigurationError{Message: "nil suite"}
	}
	if s.KEM == nil || s.Signer == nil || s.Cipher == nil {
		return &ConfigurationError{Scheme: s.Name, Message: "suite is missing a KEM, signer or cipher"}
	}
	if s.KEM.SharedKeySize() < s.Cipher.KeySize() {
		return &ConfigurationError{
			Scheme: s.Name,
			Message: fmt.Sprintf("%s shared secret is %d bytes, %s needs %d",
				s.KEM.Name(), s.KEM.SharedKeySize(), s.Cipher.Name(), s.Cipher.KeySize()),
		}
	}
	return nil
}

// Algorithms returns the canonical algorithm string, e.g.
// "ML-KEM-768:ML-DSA-65:AES-256-GCM:HKDF-SHA-512".
func (s *Suite) Algorithms() string {
	return fmt.Sprintf("%s:%s:%s:HKDF-SHA-512", s.KEM.Name(), s.Signer.Name(), s.Cipher.Name())
}

func (s *Suite) String() string {
	return s.Name + " (" + s.Algorithms() + ")"
}

// KEMPublicKeySize is the packed size of a KEM public key.
func (s *Suite) KEMPublicKeySize() int { return s.KEM.PublicKeySize() }

// KEMSecretKeySize is the packed size of a KEM secret key.
func (s *Suite) KEMSecretKeySize() int { return s.KEM.PrivateKeySize() }

// SignPublicKeySize is the packed size of a signature public key.
func (s *Suite) SignPublicKeySize() int { return s.Signer.PublicKeySize() }

// SignSecretKeySize is the packed size of a signature secret key.
func (s *Suite) SignSecretKeySize() int { return s.Signer.PrivateKeySize() }

// SignatureSize is the size of a signature in bytes.
func (s *Suite) SignatureSize() int { return s.Signer.SignatureSize() }

// GenerateKEMKeyPair creates a new KEM key pair.
func (s *Suite) GenerateKEMKeyPair() (KeyPair, error) {
	pk, sk, err := s.KEM.GenerateKeyPair()
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate %s key pair: %w", s.KEM.Name(), err)
	}
	return packKeyPair(pk, sk)
}

// GenerateSignKeyPair creates a new signature key pair.
func (s *Suite) GenerateSignKeyPair() (KeyPair, error) {
	pk, sk, err := s.Signer.GenerateKey()
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate %s key pair: %w", s.Signer.Name(), err)
	}
	return packKeyPair(pk, sk)
}

type binaryMarshaler interface {
	MarshalBinary() ([]byte, error)
}

func packKeyPair(pk, sk binaryMarshaler) (KeyPair, error) {
	pub, err := pk.MarshalBinary()
	if err != nil {
		return KeyPair{}, fmt.Errorf("marshal public key: %w", err)
	}
	sec, err := sk.MarshalBinary()
	if err != nil {
		return KeyPair{}, fmt.Errorf("marshal secret key: %w", err)
	}
	return KeyPair{PublicKey: pub, SecretKey: sec}, nil
}

// ValidKEMKeyPair reports whether kp has the suite's KEM key sizes.
func (s *Suite) ValidKEMKeyPair(kp KeyPair) bool {
	return validateKeyPair(kp, s.KEMPublicKeySize(), s.KEMSecretKeySize())
}

// ValidSignKeyPair reports whether kp has the suite's signature key sizes.
func (s *Suite) ValidSignKeyPair(kp KeyPair) bool {
	return validateKeyPair(kp, s.SignPublicKeySize(), s.SignSecretKeySize())
}

// Encapsulate generates a shared secret for the packed public key and
// returns it together with its encapsulation.
func (s *Suite) Encapsulate(publicKey []byte) (ct, sharedSecret []byte, err error) {
	pk, err := s.KEM.UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("unmarshal public key: %w", err)
	}
	return s.KEM.Encapsulate(pk)
}

// Decapsulate recovers the shared secret in ct with the packed secret key.
// A secret key that does not match the encapsulation yields a different
// secret (implicit rejection) rather than an error for most KEMs.
func (s *Suite) Decapsulate(ct []byte, secretKey Secret) ([]byte, error) {
	if len(ct) != s.KEM.CiphertextSize() {
		return nil, fmt.Errorf("ciphertext is %d bytes, want %d", len(ct), s.KEM.CiphertextSize())
	}
	sk, err := s.KEM.UnmarshalBinaryPrivateKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("unmarshal secret key: %w", err)
	}
	return s.KEM.Decapsulate(sk, ct)
}

// Sign signs message with the packed secret key.
func (s *Suite) Sign(secretKey Secret, message []byte) ([]byte, error) {
	sk, err := s.Signer.UnmarshalBinaryPrivateKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("unmarshal secret key: %w", err)
	}
	return s.Signer.Sign(sk, message, nil), nil
}

// Verify reports whether signature is valid for message under the packed
// public key. A malformed public key or a signature of the wrong size
// never verifies.
func (s *Suite) Verify(publicKey, message, signature []byte) bool {
	if len(signature) != s.Signer.SignatureSize() {
		return false
	}
	pk, err := s.Signer.UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return false
	}
	return s.Signer.Verify(pk, message, signature, nil)
}

// MessageKey derives the AEAD key for one encapsulation.
func (s *Suite) MessageKey(sharedSecret, ct []byte) ([]byte, error) {
	if len(sharedSecret) < s.Cipher.KeySize() {
		return nil, fmt.Errorf("%w: shared secret is %d bytes", ErrInvalidKeySize, len(sharedSecret))
	}
	return messageKey(s.Name, sharedSecret, ct, s.Cipher.KeySize())
}

// Seal encrypts plaintext under key with the suite cipher.
func (s *Suite) Seal(key, plaintext []byte) ([]byte, error) {
	return Seal(s.Cipher, key, plaintext)
}

// Open decrypts the output of Seal.
func (s *Suite) Open(key, ciphertext []byte) ([]byte, error) {
	return Open(s.Cipher, key, ciphertext)
}

// SealTo encapsulates against publicKey and seals plaintext under the
// derived message key. Errors are *EncryptionError values.
func (s *Suite) SealTo(publicKey, plaintext []byte) (ct, sealed []byte, err error) {
	ct, ss, err := s.Encapsulate(publicKey)
	if err != nil {
		return nil, nil, &EncryptionError{Stage: StageKEM, Err: err}
	}
	key, err := s.MessageKey(ss, ct)
	if err != nil {
		return nil, nil, &EncryptionError{Stage: StageKDF, Err: err}
	}
	sealed, err = s.Seal(key, plaintext)
	if err != nil {
		return nil, nil, &EncryptionError{Stage: StageAEAD, Err: err}
	}
	return ct, sealed, nil
}

// OpenFrom reverses SealTo with the recipient's secret key. Errors are
// *DecryptionError values; tampering surfaces as ErrDecryptionFailed.
func (s *Suite) OpenFrom(secretKey Secret, ct, sealed []byte) ([]byte, error) {
	ss, err := s.Decapsulate(ct, secretKey)
	if err != nil {
		return nil, &DecryptionError{Stage: StageKEM, Err: err}
	}
	key, err := s.MessageKey(ss, ct)
	if err != nil {
		return nil, &DecryptionError{Stage: StageKDF, Err: err}
	}
	plaintext, err := s.Open(key, sealed)
	if err != nil {
		return nil, &DecryptionError{Stage: StageAEAD, Err: err}
	}
	return plaintext, nil
}

// IsTamper reports whether err indicates authentication failure rather
// than a configuration or encoding problem.
func IsTamper(err error) bool {
	return errors.Is(err, ErrDecryptionFailed) || errors.Is(err, ErrInvalidSignature)
}
