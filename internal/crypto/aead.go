package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// Cipher is an authenticated cipher with a fixed key size.
type Cipher interface {
	// Name returns the algorithm name, e.g. "AES-256-GCM".
	Name() string
	// KeySize is the required key length in bytes.
	KeySize() int
	// NonceSize is the nonce length in bytes.
	NonceSize() int
	// Overhead is the authentication tag length in bytes.
	Overhead() int
	// AEAD builds the keyed cipher.
	AEAD(key []byte) (cipher.AEAD, error)
}

// AES256GCM is AES-256 in Galois/Counter Mode.
var AES256GCM Cipher = aesGCM{}

// ChaCha20Poly1305 is the RFC 8439 AEAD.
var ChaCha20Poly1305 Cipher = chachaPoly{}

type aesGCM struct{}

func (aesGCM) Name() string   { return "AES-256-GCM" }
func (aesGCM) KeySize() int   { return AESKeySize }
func (aesGCM) NonceSize() int { return AESNonceSize }
func (aesGCM) Overhead() int  { return AESTagSize }

func (aesGCM) AEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != AESKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), AESKeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

type chachaPoly struct{}

func (chachaPoly) Name() string   { return "ChaCha20-Poly1305" }
func (chachaPoly) KeySize() int   { return chacha20poly1305.KeySize }
func (chachaPoly) NonceSize() int { return chacha20poly1305.NonceSize }
func (chachaPoly) Overhead() int  { return chacha20poly1305.Overhead }

func (chachaPoly) AEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), chacha20poly1305.KeySize)
	}
	return chacha20poly1305.New(key)
}

// SealWithNonce encrypts plaintext under key with an explicit nonce.
// Returns: nonce || ciphertext || tag
func SealWithNonce(c Cipher, key, nonce, plaintext []byte) ([]byte, error) {
	if len(nonce) != c.NonceSize() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), c.NonceSize())
	}
	aead, err := c.AEAD(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(nonce)+len(plaintext)+c.Overhead())
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// Seal encrypts plaintext under key with a fresh random nonce.
func Seal(c Cipher, key, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.NonceSize())
	if _, err := io.ReadFull(nonceReader(), nonce); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}
	return SealWithNonce(c, key, nonce, plaintext)
}

// Open decrypts the output of Seal. Authentication failures return
// ErrDecryptionFailed.
func Open(c Cipher, key, ciphertext []byte) ([]byte, error) {
	aead, err := c.AEAD(key)
	if err != nil {
		return nil, err
	}

	ns := c.NonceSize()
	if len(ciphertext) < ns+c.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
	}

	plaintext, err := aead.Open(nil, ciphertext[:ns], ciphertext[ns:], nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

func nonceReader() io.Reader {
	if randReader != nil {
		return randReader
	}
	return rand.Reader
}
