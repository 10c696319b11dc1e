package crypto

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey derives a key using HKDF-SHA-512.
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	if len(salt) == 0 {
		salt = make([]byte, sha512.Size)
	}

	reader := hkdf.New(sha512.New, secret, salt, info)
	key := make([]byte, length)

	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	return key, nil
}

// messageKey derives the AEAD key for one encapsulation.
//
//   - IKM: the KEM shared secret
//   - Salt: SHA-256 hash of the KEM ciphertext
//   - Info: context string || suite name length (4 bytes BE) || suite name
func messageKey(suiteName string, sharedSecret, ctKem []byte, length int) ([]byte, error) {
	saltHash := sha256.Sum256(ctKem)

	nameLength := make([]byte, 4)
	binary.BigEndian.PutUint32(nameLength, uint32(len(suiteName)))

	info := make([]byte, 0, len(HKDFContext)+4+len(suiteName))
	info = append(info, HKDFContext...)
	info = append(info, nameLength...)
	info = append(info, suiteName...)

	return DeriveKey(sharedSecret, saltHash[:], info, length)
}
