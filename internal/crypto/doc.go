// Package crypto provides the primitive suites used by the hybridmsg
// protocol layer. A suite bundles a key encapsulation mechanism, a
// signature scheme and an AEAD cipher behind one byte-oriented API so the
// mailbox and team encryptors can run unchanged over post-quantum,
// classical or hybrid primitives.
//
// # Registered Suites
//
//   - pq-1: ML-KEM-768 (FIPS 203), ML-DSA-65 (FIPS 204), AES-256-GCM.
//
//   - pq-5: ML-KEM-1024, ML-DSA-87, AES-256-GCM.
//
//   - classical: DHKEM(X25519, HKDF-SHA256), Ed25519, ChaCha20-Poly1305.
//     Signatures cover the serialized message rather than the plaintext.
//
//   - hybrid-ecdh: X25519MLKEM768, Ed25519-Dilithium3, AES-256-GCM.
//
// Additional suites can be added with [Register]. Suites are resolved by
// name through [Lookup]; unknown names fail with a [ConfigurationError].
//
// # Key Derivation
//
// KEM shared secrets are never used directly as cipher keys. [Suite.MessageKey]
// runs HKDF-SHA-512 over the shared secret, salted with the SHA-256 hash
// of the KEM ciphertext and bound to the suite name, to produce the AEAD
// key. A suite whose KEM produces fewer bytes than the cipher key size is
// rejected when it is validated.
//
// # Ciphertext Format
//
// AEAD output is nonce || ciphertext || tag. Nonces are drawn from
// crypto/rand for every call to [Suite.Seal]; a nonce is never reused
// with the same key because every message key comes from a fresh
// encapsulation.
//
// # Key Handling
//
// Secret key bytes are carried in [Secret], which formats as [REDACTED]
// under every fmt verb and in zap fields. Keep it that way: never convert
// a Secret to a string for logging.
package crypto
