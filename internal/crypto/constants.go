package crypto

const (
	// HKDFContext is the context string used in HKDF key derivation
	// for domain separation.
	HKDFContext = "hybridmsg:message-key:v1"

	// AESKeySize is the size of an AES-256 key in bytes.
	AESKeySize = 32
	// AESNonceSize is the size of an AES-GCM nonce in bytes.
	AESNonceSize = 12
	// AESTagSize is the size of an AES-GCM authentication tag in bytes.
	AESTagSize = 16

	// FingerprintSize is the number of hash bytes kept in a key fingerprint.
	FingerprintSize = 8
)

// Scheme identifiers of the built-in suites.
const (
	SchemePQ1        = "pq-1"
	SchemePQ5        = "pq-5"
	SchemeClassical  = "classical"
	SchemeHybridECDH = "hybrid-ecdh"
)

// DefaultScheme is used when no scheme is configured.
const DefaultScheme = SchemePQ1
