package crypto

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is() checks.
var (
	// ErrConfiguration is returned for unknown schemes or unusable suites.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidKey is returned when key material is missing or malformed.
	ErrInvalidKey = errors.New("invalid key")

	// ErrCapability is returned when an operation is attempted without the
	// key material it needs.
	ErrCapability = errors.New("capability error")

	// ErrEncryption is returned when any encryption step fails.
	ErrEncryption = errors.New("encryption failed")

	// ErrDecryption is returned when any decryption step fails, including
	// AEAD tamper detection.
	ErrDecryption = errors.New("decryption failed")

	// ErrInvalidSignature is returned when signature verification fails.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrNoMatchingRecipient is returned when a mailbox block holds no
	// entry for the decrypting participant.
	ErrNoMatchingRecipient = errors.New("no matching recipient")

	// ErrMissingKey is returned when a team block is decrypted without
	// any team keys available.
	ErrMissingKey = errors.New("missing team keys")

	// ErrDecryptionFailed is returned by the AEAD layer on authentication
	// failure. It is wrapped in a DecryptionError by the callers.
	ErrDecryptionFailed = errors.New("message authentication failed")

	// ErrInvalidKeySize is returned when a symmetric key has the wrong size.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidNonceSize is returned when a nonce has the wrong size.
	ErrInvalidNonceSize = errors.New("invalid nonce size")
)

// Stage names used in EncryptionError and DecryptionError.
const (
	StageKEM    = "kem"
	StageKDF    = "kdf"
	StageAEAD   = "aead"
	StageSign   = "sign"
	StageVerify = "verify"
	StageEncode = "encode"
	StageDecode = "decode"
	StageKeygen = "keygen"
)

// HybridError is implemented by all protocol errors.
type HybridError interface {
	error
	HybridError() // marker method
}

// ConfigurationError reports an unknown scheme or a suite that fails
// validation.
type ConfigurationError struct {
	Scheme  string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration error: scheme %q: %s", e.Scheme, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is implements errors.Is for sentinel error matching.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// HybridError implements the HybridError interface.
func (e *ConfigurationError) HybridError() {}

// InvalidKeyError lists the key fields that are missing or malformed.
type InvalidKeyError struct {
	Missing   []string
	Malformed []string
	Err       error
}

func (e *InvalidKeyError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Malformed) > 0 {
		parts = append(parts, "malformed "+strings.Join(e.Malformed, ", "))
	}
	if len(parts) == 0 {
		parts = append(parts, "unusable key material")
	}
	msg := "invalid key: " + strings.Join(parts, "; ")
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *InvalidKeyError) Unwrap() error { return e.Err }

// Is implements errors.Is for sentinel error matching.
func (e *InvalidKeyError) Is(target error) bool { return target == ErrInvalidKey }

// HybridError implements the HybridError interface.
func (e *InvalidKeyError) HybridError() {}

// CapabilityError reports an operation the bound key material cannot perform.
type CapabilityError struct {
	Operation string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("capability error: key material does not allow %s", e.Operation)
}

// Is implements errors.Is for sentinel error matching.
func (e *CapabilityError) Is(target error) bool { return target == ErrCapability }

// HybridError implements the HybridError interface.
func (e *CapabilityError) HybridError() {}

// EncryptionError wraps a failure at one stage of an encryption.
type EncryptionError struct {
	Stage string
	Err   error
}

func (e *EncryptionError) Error() string {
	return fmt.Sprintf("encryption failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *EncryptionError) Unwrap() error { return e.Err }

// Is implements errors.Is for sentinel error matching.
func (e *EncryptionError) Is(target error) bool { return target == ErrEncryption }

// HybridError implements the HybridError interface.
func (e *EncryptionError) HybridError() {}

// DecryptionError wraps a failure at one stage of a decryption.
type DecryptionError struct {
	Stage string
	Err   error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecryptionError) Unwrap() error { return e.Err }

// Is implements errors.Is for sentinel error matching.
func (e *DecryptionError) Is(target error) bool { return target == ErrDecryption }

// HybridError implements the HybridError interface.
func (e *DecryptionError) HybridError() {}

// InvalidSignatureError indicates tampering or a wrong sender key.
type InvalidSignatureError struct {
	// Signer is the fingerprint of the public key the signature was
	// checked against.
	Signer string
	Err    error
}

func (e *InvalidSignatureError) Error() string {
	msg := "invalid signature"
	if e.Signer != "" {
		msg += " for signer " + e.Signer
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *InvalidSignatureError) Unwrap() error { return e.Err }

// Is implements errors.Is for sentinel error matching.
func (e *InvalidSignatureError) Is(target error) bool { return target == ErrInvalidSignature }

// HybridError implements the HybridError interface.
func (e *InvalidSignatureError) HybridError() {}

// NoMatchingRecipientError reports a mailbox block with no entry for the
// decrypting participant.
type NoMatchingRecipientError struct {
	// Recipient is the fingerprint of the key that was looked up.
	Recipient string
}

func (e *NoMatchingRecipientError) Error() string {
	return fmt.Sprintf("no matching recipient: block has no entry for %s", e.Recipient)
}

// Is implements errors.Is for sentinel error matching.
func (e *NoMatchingRecipientError) Is(target error) bool { return target == ErrNoMatchingRecipient }

// HybridError implements the HybridError interface.
func (e *NoMatchingRecipientError) HybridError() {}

// MissingKeyError reports a team block decrypted without team keys.
type MissingKeyError struct {
	Operation string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing team keys for %s", e.Operation)
}

// Is implements errors.Is for sentinel error matching.
func (e *MissingKeyError) Is(target error) bool { return target == ErrMissingKey }

// HybridError implements the HybridError interface.
func (e *MissingKeyError) HybridError() {}
