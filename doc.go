// Package hybridmsg implements multi-recipient encryption with hybrid
// post-quantum and classical primitives.
//
// A [Participant] owns a KEM key pair and a signature key pair. It encrypts
// blocks either per recipient (mailbox) or once for a team sharing a
// [TeamKeySet], and decrypts blocks addressed to it. Every block is signed;
// plaintext whose signature does not verify is never returned.
//
// Basic usage:
//
//	alice, err := hybridmsg.NewParticipant(ctx, "alice")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	bob, err := hybridmsg.NewParticipant(ctx, "bob")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	block, err := alice.EncryptAndSignBlockForMany(ctx, "hello",
//	    [][]byte{bob.KEMPublicKey()}, hybridmsg.EncryptorMailbox)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res := bob.DecryptAndVerifyBlock(ctx, block)
//	fmt.Println(res.Valid, res.DecryptedData)
//
// # Schemes
//
// The primitive suite is chosen with [WithScheme]: [SchemePQ1] (the
// default), [SchemePQ5], [SchemeClassical] or [SchemeHybridECDH].
// All participants exchanging blocks must use the same scheme.
//
// # Team Keys
//
// Team blocks embed the team key set, including its secret halves, so that
// any member can decrypt without a prior key exchange. Deliver team blocks
// to team members only.
package hybridmsg
