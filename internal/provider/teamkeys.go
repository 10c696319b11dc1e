package provider

import (
	"go.uber.org/zap/zapcore"

	"github.com/hybridmsg/hybridmsg-go/internal/crypto"
)

// TeamKeySet is the key material shared by all members of a team.
// The team KEM and signature pairs are identical for every member; the
// member KEM pair identifies the author of team encryptions.
type TeamKeySet struct {
	TeamKEMPublic   crypto.Bytes  `json:"teamCurvePublic,omitempty"`
	TeamKEMSecret   crypto.Secret `json:"teamCurvePrivate,omitempty"`
	TeamSignPublic  crypto.Bytes  `json:"teamEdPublic,omitempty"`
	TeamSignSecret  crypto.Secret `json:"teamEdPrivate,omitempty"`
	MemberKEMPublic crypto.Bytes  `json:"myCurvePublic,omitempty"`
	MemberKEMSecret crypto.Secret `json:"myCurvePrivate,omitempty"`
}

// Field names as they appear on the wire and in InvalidKeyError.
const (
	FieldTeamKEMPublic   = "teamCurvePublic"
	FieldTeamKEMSecret   = "teamCurvePrivate"
	FieldTeamSignPublic  = "teamEdPublic"
	FieldTeamSignSecret  = "teamEdPrivate"
	FieldMemberKEMPublic = "myCurvePublic"
	FieldMemberKEMSecret = "myCurvePrivate"
)

// Clone returns a deep copy of the key set.
func (k *TeamKeySet) Clone() *TeamKeySet {
	if k == nil {
		return nil
	}
	team := crypto.KeyPair{PublicKey: k.TeamKEMPublic, SecretKey: k.TeamKEMSecret}.Clone()
	sign := crypto.KeyPair{PublicKey: k.TeamSignPublic, SecretKey: k.TeamSignSecret}.Clone()
	member := crypto.KeyPair{PublicKey: k.MemberKEMPublic, SecretKey: k.MemberKEMSecret}.Clone()
	return &TeamKeySet{
		TeamKEMPublic:   team.PublicKey,
		TeamKEMSecret:   team.SecretKey,
		TeamSignPublic:  sign.PublicKey,
		TeamSignSecret:  sign.SecretKey,
		MemberKEMPublic: member.PublicKey,
		MemberKEMSecret: member.SecretKey,
	}
}

// WithMember returns a copy of the set bound to the given member KEM pair.
func (k *TeamKeySet) WithMember(member crypto.KeyPair) *TeamKeySet {
	c := k.Clone()
	if c == nil {
		c = &TeamKeySet{}
	}
	member = member.Clone()
	c.MemberKEMPublic = member.PublicKey
	c.MemberKEMSecret = member.SecretKey
	return c
}

// Shared returns a copy without the member pair, suitable for handing to
// other team members.
func (k *TeamKeySet) Shared() *TeamKeySet {
	c := k.Clone()
	if c == nil {
		return nil
	}
	c.MemberKEMPublic = nil
	c.MemberKEMSecret = nil
	return c
}

// MarshalLogObject implements zapcore.ObjectMarshaler with public
// fingerprints only.
func (k *TeamKeySet) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("teamKEM", crypto.Fingerprint(k.TeamKEMPublic))
	enc.AddString("teamSign", crypto.Fingerprint(k.TeamSignPublic))
	enc.AddString("member", crypto.Fingerprint(k.MemberKEMPublic))
	return nil
}

type keyField struct {
	name string
	data []byte
	size int
}

func (k *TeamKeySet) fields(suite *crypto.Suite) []keyField {
	return []keyField{
		{FieldTeamKEMPublic, k.TeamKEMPublic, suite.KEMPublicKeySize()},
		{FieldTeamKEMSecret, k.TeamKEMSecret, suite.KEMSecretKeySize()},
		{FieldTeamSignPublic, k.TeamSignPublic, suite.SignPublicKeySize()},
		{FieldTeamSignSecret, k.TeamSignSecret, suite.SignSecretKeySize()},
		{FieldMemberKEMPublic, k.MemberKEMPublic, suite.KEMPublicKeySize()},
		{FieldMemberKEMSecret, k.MemberKEMSecret, suite.KEMSecretKeySize()},
	}
}

// inspect sorts fields into missing and malformed (present, wrong size).
func (k *TeamKeySet) inspect(suite *crypto.Suite) (present map[string]bool, missing, malformed []string) {
	present = make(map[string]bool, 6)
	for _, f := range k.fields(suite) {
		switch {
		case len(f.data) == 0:
			missing = append(missing, f.name)
		case len(f.data) != f.size:
			malformed = append(malformed, f.name)
		default:
			present[f.name] = true
		}
	}
	return present, missing, malformed
}

// Validate checks the set against suite: every field must be present and
// correctly sized.
func (k *TeamKeySet) Validate(suite *crypto.Suite) error {
	if k == nil {
		return &crypto.InvalidKeyError{Missing: allTeamFields()}
	}
	_, missing, malformed := k.inspect(suite)
	if len(missing) > 0 || len(malformed) > 0 {
		return &crypto.InvalidKeyError{Missing: missing, Malformed: malformed}
	}
	return nil
}

func allTeamFields() []string {
	return []string{
		FieldTeamKEMPublic, FieldTeamKEMSecret,
		FieldTeamSignPublic, FieldTeamSignSecret,
		FieldMemberKEMPublic, FieldMemberKEMSecret,
	}
}
