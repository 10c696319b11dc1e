package hybridmsg

import (
	"slices"
	"sync"
	"time"
)

// Operation names recorded in OperationStats.
const (
	OperationEncrypt = "encrypt"
	OperationDecrypt = "decrypt"
)

// OperationStats records one encryption or decryption.
//
// TotalTime is the wall clock time of the whole operation; for a mailbox
// batch encrypted in parallel it is less than the sum of the phase times,
// which add up the time spent in each primitive across all recipients.
type OperationStats struct {
	Operation     string        `json:"operation"`
	EncryptorType EncryptorType `json:"encryptorType"`
	Scheme        string        `json:"scheme"`
	Recipients    int           `json:"recipients"`
	Success       bool          `json:"success"`
	Timestamp     time.Time     `json:"timestamp"`

	EncryptTime time.Duration `json:"encryptTime"`
	SignTime    time.Duration `json:"signTime"`
	DecryptTime time.Duration `json:"decryptTime"`
	VerifyTime  time.Duration `json:"verifyTime"`
	TotalTime   time.Duration `json:"totalTime"`

	// EncryptedSize is the byte length of all KEM and AEAD ciphertexts
	// produced. SignatureSize is the byte length of all signatures.
	EncryptedSize int `json:"encryptedSize,omitempty"`
	SignatureSize int `json:"signatureSize,omitempty"`
}

func (s *OperationStats) addTimings(t Timings) {
	s.EncryptTime += t.Encrypt
	s.SignTime += t.Sign
	s.DecryptTime += t.Decrypt
	s.VerifyTime += t.Verify
}

// statsLog is an append-only list of OperationStats.
type statsLog struct {
	mu      sync.Mutex
	entries []OperationStats
}

func (l *statsLog) append(s OperationStats) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, s)
}

func (l *statsLog) snapshot() []OperationStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}
