package provider

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hybridmsg/hybridmsg-go/internal/crypto"
)

// OuterBundle is the signed outer layer of a team envelope.
type OuterBundle struct {
	EncryptedData crypto.Bytes `json:"encryptedData"`
	Ciphertext    crypto.Bytes `json:"ciphertext"`
	// EphemeralPublicKey is a fresh KEM public key generated per
	// envelope. It is carried but not used for decryption.
	EphemeralPublicKey crypto.Bytes `json:"ephemeralPublicKey"`
}

// TeamEnvelope is the wire form of a team-encrypted payload.
type TeamEnvelope struct {
	OuterBundle OuterBundle  `json:"outerBundle"`
	Signature   crypto.Bytes `json:"signature"`
}

// InnerBundle is the author-bound inner layer, JSON encoded inside the
// outer layer.
type InnerBundle struct {
	AuthorPublicKey crypto.Bytes `json:"authorPublicKey"`
	EncryptedData   crypto.Bytes `json:"encryptedData"`
	Ciphertext      crypto.Bytes `json:"ciphertext"`
}

// TeamDecryption is the result of a successful team decryption.
type TeamDecryption struct {
	Content []byte
	// Author is the KEM public key recorded in the inner layer.
	Author []byte
}

// TeamEncryptor encrypts and decrypts team envelopes. Its capability flags
// report which directions the bound key material supports.
type TeamEncryptor struct {
	suite      *crypto.Suite
	keys       *TeamKeySet
	canEncrypt bool
	canDecrypt bool
}

func newTeamEncryptor(suite *crypto.Suite, keys *TeamKeySet) (*TeamEncryptor, error) {
	if keys == nil {
		return nil, &crypto.InvalidKeyError{Missing: allTeamFields()}
	}

	present, missing, malformed := keys.inspect(suite)
	if len(malformed) > 0 {
		return nil, &crypto.InvalidKeyError{Missing: missing, Malformed: malformed}
	}

	t := &TeamEncryptor{
		suite: suite,
		keys:  keys.Clone(),
		canEncrypt: present[FieldTeamKEMPublic] &&
			present[FieldMemberKEMPublic] &&
			present[FieldTeamSignSecret],
		canDecrypt: present[FieldTeamKEMSecret] &&
			present[FieldTeamSignPublic],
	}
	if !t.canEncrypt && !t.canDecrypt {
		return nil, &crypto.InvalidKeyError{Missing: missing}
	}
	return t, nil
}

// CanEncrypt reports whether the key material allows encryption.
func (t *TeamEncryptor) CanEncrypt() bool { return t.canEncrypt }

// CanDecrypt reports whether the key material allows decryption.
func (t *TeamEncryptor) CanDecrypt() bool { return t.canDecrypt }

// Author returns the member KEM public key used as author identity.
func (t *TeamEncryptor) Author() []byte { return t.keys.MemberKEMPublic }

// Encrypt wraps plaintext in a signed two-layer envelope.
func (t *TeamEncryptor) Encrypt(plaintext []byte) (*TeamEnvelope, Timings, error) {
	var tm Timings
	if !t.canEncrypt {
		return nil, tm, &crypto.CapabilityError{Operation: "team encryption"}
	}

	env := &TeamEnvelope{}
	err := measure(&tm.Encrypt, func() error {
		innerCt, innerSealed, err := t.suite.SealTo(t.keys.TeamKEMPublic, plaintext)
		if err != nil {
			return err
		}

		inner, err := json.Marshal(InnerBundle{
			AuthorPublicKey: t.keys.MemberKEMPublic,
			EncryptedData:   innerSealed,
			Ciphertext:      innerCt,
		})
		if err != nil {
			return &crypto.EncryptionError{Stage: crypto.StageEncode, Err: err}
		}

		outerCt, outerSealed, err := t.suite.SealTo(t.keys.TeamKEMPublic, inner)
		if err != nil {
			return err
		}

		ephemeral, err := t.suite.GenerateKEMKeyPair()
		if err != nil {
			return &crypto.EncryptionError{Stage: crypto.StageKeygen, Err: err}
		}

		env.OuterBundle = OuterBundle{
			EncryptedData:      outerSealed,
			Ciphertext:         outerCt,
			EphemeralPublicKey: ephemeral.PublicKey,
		}
		return nil
	})
	if err != nil {
		return nil, tm, err
	}

	err = measure(&tm.Sign, func() error {
		outer, err := json.Marshal(env.OuterBundle)
		if err != nil {
			return &crypto.EncryptionError{Stage: crypto.StageEncode, Err: err}
		}
		sig, err := t.suite.Sign(t.keys.TeamSignSecret, outer)
		if err != nil {
			return &crypto.EncryptionError{Stage: crypto.StageSign, Err: err}
		}
		env.Signature = sig
		return nil
	})
	if err != nil {
		return nil, tm, err
	}

	return env, tm, nil
}

// Decrypt verifies (unless skipSignatureCheck is set) and unwraps a team
// envelope. Both layers are decapsulated with the team KEM secret key.
func (t *TeamEncryptor) Decrypt(env *TeamEnvelope, skipSignatureCheck bool) (*TeamDecryption, Timings, error) {
	var tm Timings
	if !t.canDecrypt {
		return nil, tm, &crypto.CapabilityError{Operation: "team decryption"}
	}
	if env == nil {
		return nil, tm, &crypto.DecryptionError{Stage: crypto.StageDecode, Err: errors.New("nil envelope")}
	}

	if !skipSignatureCheck {
		err := measure(&tm.Verify, func() error {
			outer, err := json.Marshal(env.OuterBundle)
			if err != nil {
				return &crypto.DecryptionError{Stage: crypto.StageEncode, Err: err}
			}
			if !t.suite.Verify(t.keys.TeamSignPublic, outer, env.Signature) {
				return &crypto.InvalidSignatureError{Signer: crypto.Fingerprint(t.keys.TeamSignPublic)}
			}
			return nil
		})
		if err != nil {
			return nil, tm, err
		}
	}

	var result *TeamDecryption
	err := measure(&tm.Decrypt, func() error {
		innerJSON, err := t.suite.OpenFrom(t.keys.TeamKEMSecret, env.OuterBundle.Ciphertext, env.OuterBundle.EncryptedData)
		if err != nil {
			return fmt.Errorf("outer layer: %w", err)
		}

		var inner InnerBundle
		if err := json.Unmarshal(innerJSON, &inner); err != nil {
			return &crypto.DecryptionError{Stage: crypto.StageDecode, Err: err}
		}

		content, err := t.suite.OpenFrom(t.keys.TeamKEMSecret, inner.Ciphertext, inner.EncryptedData)
		if err != nil {
			return fmt.Errorf("inner layer: %w", err)
		}

		result = &TeamDecryption{Content: content, Author: inner.AuthorPublicKey}
		return nil
	})
	if err != nil {
		return nil, tm, err
	}

	return result, tm, nil
}
