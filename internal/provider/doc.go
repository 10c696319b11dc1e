// Package provider binds a primitive suite to the two hybridmsg encryption
// schemes.
//
// A [Provider] resolves its suite once, on the first call to [Provider.Init]
// (or any method that needs the suite); concurrent callers wait for that
// single initialization and share its result.
//
// # Mailbox Encryption
//
// A [MailboxEncryptor] produces one [MailboxMessage] per recipient:
//
//  1. KEM encapsulation against the recipient public key
//  2. HKDF-SHA-512 message key, AEAD encryption of the payload
//  3. Detached signature with the sender's signature key, over either the
//     plaintext or the serialized message depending on the suite
//
// Decryption never returns plaintext whose signature did not verify.
//
// # Team Encryption
//
// A [TeamEncryptor] wraps the payload twice, both times against the team
// KEM public key. The inner layer records the author's KEM public key; the
// outer layer is signed with the team signature key. Every holder of the
// [TeamKeySet] secret halves can decrypt, and the decrypted result carries
// the author attribution from the inner layer.
//
// The outer bundle also carries a freshly generated ephemeral KEM public
// key. It is not an input to decryption.
package provider
