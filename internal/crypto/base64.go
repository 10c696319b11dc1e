package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// ToBase64URL encodes bytes to URL-safe base64 without padding.
func ToBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// FromBase64URL decodes URL-safe base64 without padding.
func FromBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}

// DecodeBase64 decodes base64 in any of the four RFC 4648 variants
// (url or standard alphabet, with or without padding).
func DecodeBase64(s string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{
		base64.RawURLEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
	} {
		if data, err := enc.DecodeString(s); err == nil {
			return data, nil
		}
	}
	return base64.StdEncoding.DecodeString(s)
}

// Fingerprint returns a short, non-reversible identifier for a public key,
// suitable for logs and error messages.
func Fingerprint(publicKey []byte) string {
	if len(publicKey) == 0 {
		return ""
	}
	sum := sha256.Sum256(publicKey)
	return ToBase64URL(sum[:FingerprintSize])
}

// Bytes is a byte slice that travels as base64url text in JSON.
type Bytes []byte

// MarshalJSON implements json.Marshaler for Bytes.
func (b Bytes) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	return json.Marshal(ToBase64URL(b))
}

// UnmarshalJSON implements json.Unmarshaler for Bytes.
// It accepts any base64 variant.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = nil
		return nil
	}

	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return fmt.Errorf("bytes field must be a base64 string: %w", err)
	}
	if encoded == "" {
		*b = Bytes{}
		return nil
	}

	decoded, err := DecodeBase64(encoded)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}
