package hybridmsg

import (
	"github.com/hybridmsg/hybridmsg-go/internal/crypto"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrConfiguration is returned for an unknown scheme or unusable suite.
	ErrConfiguration = crypto.ErrConfiguration

	// ErrInvalidKey is returned when key material is missing or malformed.
	ErrInvalidKey = crypto.ErrInvalidKey

	// ErrCapability is returned when the bound keys do not allow an operation.
	ErrCapability = crypto.ErrCapability

	// ErrEncryption is returned when an encryption step fails.
	ErrEncryption = crypto.ErrEncryption

	// ErrDecryption is returned when a decryption step fails, including
	// authenticated-cipher tamper detection.
	ErrDecryption = crypto.ErrDecryption

	// ErrInvalidSignature is returned when signature verification fails.
	ErrInvalidSignature = crypto.ErrInvalidSignature

	// ErrNoMatchingRecipient is returned when a mailbox block holds no
	// entry for the decrypting participant.
	ErrNoMatchingRecipient = crypto.ErrNoMatchingRecipient

	// ErrMissingKey is returned when a team block is decrypted without
	// team keys.
	ErrMissingKey = crypto.ErrMissingKey
)

// HybridError is implemented by all errors of this package.
type HybridError = crypto.HybridError

// Typed errors. Each matches its sentinel through errors.Is and carries
// key fingerprints, never key bytes.
type (
	ConfigurationError       = crypto.ConfigurationError
	InvalidKeyError          = crypto.InvalidKeyError
	CapabilityError          = crypto.CapabilityError
	EncryptionError          = crypto.EncryptionError
	DecryptionError          = crypto.DecryptionError
	InvalidSignatureError    = crypto.InvalidSignatureError
	NoMatchingRecipientError = crypto.NoMatchingRecipientError
	MissingKeyError          = crypto.MissingKeyError
)
